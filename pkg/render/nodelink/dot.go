package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the element id and kind to every node label.
	// When false, only the label (or the id if there is none) is shown.
	Detailed bool
	// Merges draws the implicit edges from branch tails back to the
	// element they merge into.
	Merges bool
}

var shapes = map[flow.Kind]string{
	flow.KindStart:     "shape=circle, fillcolor=\"#e3f3e1\"",
	flow.KindEnd:       "shape=doublecircle, fillcolor=\"#fbe3e2\"",
	flow.KindBranching: "shape=diamond, fillcolor=\"#fff1d6\"",
	flow.KindLoop:      "shape=hexagon, fillcolor=\"#e6f1fb\"",
}

// ToDOT converts a flow graph to Graphviz DOT format. The result can be
// rendered with [RenderSVG] or with external Graphviz tools.
//
// Next pointers are solid edges, branches are labeled with their branch
// label, fault branches are red and go-to connections are dashed.
// Decorated elements and connectors are drawn with a thicker outline.
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := g.IDs()
	for _, id := range ids {
		n := g.Nodes[id]
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(g, n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, id := range ids {
		n := g.Nodes[id]
		if n.Next != "" {
			edge(&buf, g, flow.NextSlot(id), n.Next)
		}
		for i, c := range n.Children {
			if c != "" {
				edge(&buf, g, flow.ChildSlot(id, i), c, fmt.Sprintf("label=%q", n.BranchLabel(i)))
			} else if opts.Merges {
				if _, jump := g.GoTo(flow.ChildSlot(id, i)); !jump {
					if t, ok := g.MergeTarget(flow.ChildSlot(id, i)); ok {
						edge(&buf, g, flow.ChildSlot(id, i), t, fmt.Sprintf("label=%q", n.BranchLabel(i)), "style=dotted")
					}
				}
			}
		}
		if n.Fault != "" {
			edge(&buf, g, flow.FaultSlot(id), n.Fault, "color=\"#c23934\"", "fontcolor=\"#c23934\"", "label=\"fault\"")
		}
		if opts.Merges && n.Next == "" && n.Kind != flow.KindEnd && !n.IsTerminal {
			if _, jump := g.GoTo(flow.NextSlot(id)); !jump {
				if t, ok := g.MergeTarget(flow.NextSlot(id)); ok {
					edge(&buf, g, flow.NextSlot(id), t, "style=dotted")
				}
			}
		}
	}

	slots := make([]flow.Slot, 0, len(g.GoTos))
	for s := range g.GoTos {
		slots = append(slots, s)
	}
	slices.SortFunc(slots, func(a, b flow.Slot) int {
		return strings.Compare(a.String(), b.String())
	})
	for _, s := range slots {
		attrs := []string{"style=dashed", "constraint=false"}
		if s.IsBranch() {
			attrs = append(attrs, fmt.Sprintf("label=%q", g.Nodes[s.ID].BranchLabel(s.Index)))
		}
		edge(&buf, g, s, g.GoTos[s], attrs...)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(g *flow.Graph, n *flow.Node, detailed bool) []string {
	label := n.Label
	if label == "" {
		label = n.GUID
	}
	if detailed {
		label = fmt.Sprintf("%s\nid: %s\nkind: %s", label, n.GUID, n.Kind)
		if n.IsTerminal {
			label += "\nterminal"
		}
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if s, ok := shapes[n.Kind]; ok {
		attrs = append(attrs, s)
	}
	if g.IsInFault(n.GUID) {
		attrs = append(attrs, "color=\"#c23934\"")
	}
	if g.Decoration.HasElement(n.GUID) {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func edge(buf *bytes.Buffer, g *flow.Graph, s flow.Slot, to string, attrs ...string) {
	if g.Decoration.HasConnector(s) {
		attrs = append(attrs, "penwidth=3")
	}
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %q -> %q;\n", s.ID, to)
		return
	}
	fmt.Fprintf(buf, "  %q -> %q [%s];\n", s.ID, to, strings.Join(attrs, ", "))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-based <svg> header with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
