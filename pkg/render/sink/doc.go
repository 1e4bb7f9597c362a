// Package sink turns render trees into output documents.
//
// A "sink" consumes a [render.FlowRenderInfo] built by [render.Flow] and
// writes it in a concrete format:
//
//   - SVG: a static preview of the flow with its connectors and icons
//   - JSON: the render tree itself, optionally with the layout it came from
//
// # SVG Output
//
// [RenderSVG] draws every connector path at its geometry, every element icon
// as a rounded square and branch labels as badges. Connector and element
// state becomes CSS classes ("fault", "deleting", "highlighted", "selected")
// so a host page can restyle the preview:
//
//	svg := sink.RenderSVG(tree,
//	    sink.WithStyle(sink.Simple{}),
//	    sink.WithLabels(),
//	)
//
// The output is deterministic: the same tree always produces the same bytes.
//
// # JSON Output
//
// [RenderJSON] encodes the render tree. [WithJSONLayout] attaches the
// layout maps so that a client can animate from them later.
package sink
