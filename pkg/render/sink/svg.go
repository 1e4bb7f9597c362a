package sink

import (
	"bytes"
	"fmt"

	"github.com/matzehuels/flowlayout/pkg/connector"
	"github.com/matzehuels/flowlayout/pkg/render"
)

// SVGOption configures RenderSVG.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	style   Style
	labels  bool
	padding float64
}

func WithStyle(s Style) SVGOption     { return func(r *svgRenderer) { r.style = s } }
func WithLabels() SVGOption           { return func(r *svgRenderer) { r.labels = true } }
func WithPadding(p float64) SVGOption { return func(r *svgRenderer) { r.padding = p } }

// RenderSVG draws tree as a standalone SVG document. Connectors are drawn
// first so that icons sit on top of them.
func RenderSVG(tree *render.FlowRenderInfo, opts ...SVGOption) []byte {
	r := svgRenderer{style: Simple{}, padding: 16}
	for _, opt := range opts {
		opt(&r)
	}

	var conns []Connector
	var elems []Element
	var labels []Label
	tree.Walk(func(n *render.NodeRenderInfo) {
		elems = append(elems, buildElement(n))
		if r.labels {
			labels = append(labels, Label{
				Text:  n.Label,
				X:     n.Icon.X + n.Icon.W + 6,
				Y:     n.Icon.Y + n.Icon.H/2,
				Class: "label",
			})
		}
	})
	for _, c := range tree.Connectors() {
		conns = append(conns, buildConnector(c))
		if r.labels && c.LabelType != connector.LabelNone && c.Label != "" {
			labels = append(labels, Label{
				Text:  c.Label,
				X:     c.Geometry.X + c.Geometry.W/2,
				Y:     c.Geometry.Y + c.AddOffset,
				Class: "badge",
			})
		}
	}

	w := tree.Geometry.W + 2*r.padding
	h := tree.Geometry.H + 2*r.padding

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n", w, h, w, h)
	r.style.RenderDefs(&buf)
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f,%.2f)">`+"\n", r.padding, r.padding)
	for _, c := range conns {
		r.style.RenderConnector(&buf, c)
	}
	for _, e := range elems {
		r.style.RenderElement(&buf, e)
	}
	for _, l := range labels {
		r.style.RenderLabel(&buf, l)
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func buildConnector(c *render.ConnectorRenderInfo) Connector {
	var classes []string
	classes = append(classes, c.Type.String())
	if c.Variant != connector.VariantDefault {
		classes = append(classes, c.Variant.String())
	}
	if c.Type == connector.TypeGoTo {
		classes = append(classes, "goto")
	}
	classes = appendIf(classes, c.IsFault, "fault")
	classes = appendIf(classes, c.ToBeDeleted, "deleting")
	classes = appendIf(classes, c.IsHighlighted, "highlighted")
	classes = appendIf(classes, c.MenuOpened, "menu")
	return Connector{
		ID:      "conn-" + c.Type.String() + "-" + c.Source.String(),
		Path:    c.Path,
		Rect:    c.Geometry,
		Classes: classes,
	}
}

func buildElement(n *render.NodeRenderInfo) Element {
	classes := []string{n.Kind.String()}
	classes = appendIf(classes, n.IsFault, "fault")
	classes = appendIf(classes, n.ToBeDeleted, "deleting")
	classes = appendIf(classes, n.IsHighlighted, "highlighted")
	classes = appendIf(classes, n.IsSelected, "selected")
	classes = appendIf(classes, n.IsTerminal, "terminal")
	return Element{
		ID:      "element-" + n.GUID,
		Kind:    n.Kind,
		Label:   n.Label,
		Icon:    n.Icon,
		Classes: classes,
	}
}

func appendIf(s []string, cond bool, v string) []string {
	if cond {
		return append(s, v)
	}
	return s
}
