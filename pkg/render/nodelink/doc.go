// Package nodelink renders flow graphs as plain node-link diagrams.
//
// The diagram is a debugging view of the graph structure: every element is
// a Graphviz node shaped by its kind, and every pointer is an edge. It does
// not use the flow layout at all.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Merges: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [ToDOT] output can also be saved and processed with the dot tool.
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
