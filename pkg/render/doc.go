// Package render builds render trees for flows.
//
// # Overview
//
// [Flow] walks a process graph together with its layout and produces a tree
// of view descriptors: one [NodeRenderInfo] per element and one
// [ConnectorRenderInfo] per line, each carrying absolute geometry, the SVG
// path from the [connector] package and the interaction flags the canvas
// needs (selection, open menus, highlights, pending deletion).
//
//	tree, err := render.Flow(render.Context{
//	    Graph:  g,
//	    Config: layout.DefaultConfig(),
//	}, 1)
//
// # Tree Shape
//
// The root [FlowRenderInfo] lists the elements of the root chain. Branching
// and loop elements nest one [FlowRenderInfo] per branch, and elements with
// a fault branch carry it separately. Connectors are attached to the element
// they leave:
//
//   - NextConnector links an element to its successor, jumps through a
//     go-to, or extends a branch tail down to its merge line
//   - LogicConnectors hold branch-out, merge-back, loop and fault lines
//   - each branch flow starts with a pre-connector carrying its badge
//
// Only the outermost branches get branch-out lines, and only the leftmost and
// rightmost merging branches get merge-back lines. Branches in between
// share the horizontal lines drawn by their outer neighbours.
//
// # Sub-packages
//
//   - [sink]: SVG preview documents and JSON encoding of render trees
//   - [nodelink]: Graphviz node-link diagrams of the process graph
//
// [connector]: github.com/matzehuels/flowlayout/pkg/connector
// [sink]: github.com/matzehuels/flowlayout/pkg/render/sink
// [nodelink]: github.com/matzehuels/flowlayout/pkg/render/nodelink
package render
