// Package io reads and writes flow documents and action scripts.
//
// # Flow Documents
//
// A flow document is the serialized form of a [flow.Graph]. Elements are
// listed in id order; go-to edges and the highlight overlay travel alongside:
//
//	{
//	  "nodes": [
//	    {"guid": "start", "kind": "start", "next": "check"},
//	    {"guid": "check", "kind": "branching", "next": "end",
//	     "children": ["", ""], "childReferences": [{"name": "ok"}]},
//	    {"guid": "end", "kind": "end"}
//	  ],
//	  "goTos": [{"source": {"id": "check", "index": 1}, "target": "end"}]
//	}
//
// The same shape is accepted as YAML. [ReadFlow] and [ReadFlowFile]
// recompute terminal flags and validate the result, so a document that
// decodes is always safe to lay out. Decoding problems are reported as
// INVALID_FORMAT errors, structural problems as INVALID_GRAPH.
//
// # Action Scripts
//
// An action script is a list of reducer actions in wire form:
//
//	[
//	  {"type": "AddElement", "payload": {"source": {"id": "start", "index": -4},
//	                                     "element": {"guid": "a", "kind": "simple"}}},
//	  {"type": "AddFault", "payload": {"elementId": "a"}}
//	]
//
// Unknown types decode to [reducer.Unrecognized], which the reducer ignores.
// An Init payload may carry a whole flow document under "flow".
//
// # Formats
//
// [FormatFromPath] picks the format from a file extension: ".yaml" and ".yml"
// select YAML, everything else JSON.
package io
