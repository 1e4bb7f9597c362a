package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/geometry"
)

// Style defines the visual appearance of a flow preview.
type Style interface {
	// RenderDefs writes SVG <defs> and <style> content.
	RenderDefs(buf *bytes.Buffer)
	// RenderConnector writes one connector path.
	RenderConnector(buf *bytes.Buffer, c Connector)
	// RenderElement writes one element icon.
	RenderElement(buf *bytes.Buffer, e Element)
	// RenderLabel writes a text label, centered at (X, Y).
	RenderLabel(buf *bytes.Buffer, l Label)
}

// Connector contains everything needed to draw one connector.
type Connector struct {
	ID      string
	Path    string
	Rect    geometry.Rect
	Classes []string
}

// Element contains everything needed to draw one element icon.
type Element struct {
	ID      string
	Kind    flow.Kind
	Label   string
	Icon    geometry.Rect
	Classes []string
}

// Label is a piece of text placed on the canvas.
type Label struct {
	Text  string
	X, Y  float64
	Class string
}

// Simple draws flat icons and plain strokes.
type Simple struct {
	StrokeWidth float64
}

const simpleCSS = `
    .connector { fill: none; stroke: #9aa5b1; stroke-linecap: butt; }
    .connector.fault { stroke: #c23934; }
    .connector.highlighted { stroke: #0176d3; }
    .connector.goto { stroke-dasharray: 6 4; }
    .deleting { opacity: 0.35; }
    .element { fill: #ffffff; stroke: #747474; stroke-width: 2; }
    .element.start { fill: #e3f3e1; }
    .element.end { fill: #fbe3e2; }
    .element.branching { fill: #fff1d6; }
    .element.loop { fill: #e6f1fb; }
    .element.selected { stroke: #0176d3; stroke-width: 4; }
    .element.highlighted { stroke: #fe9339; }
    .element.fault { stroke: #c23934; }
    .label { font-family: sans-serif; font-size: 12px; fill: #181818; text-anchor: middle; }
    .badge { font-family: sans-serif; font-size: 10px; fill: #444444; text-anchor: middle; }`

func (s Simple) RenderDefs(buf *bytes.Buffer) {
	fmt.Fprintf(buf, "  <style>%s\n  </style>\n", simpleCSS)
}

func (s Simple) RenderConnector(buf *bytes.Buffer, c Connector) {
	w := s.StrokeWidth
	if w <= 0 {
		w = 2
	}
	fmt.Fprintf(buf, `  <path id="%s" class="%s" transform="translate(%.2f,%.2f)" stroke-width="%.2f" d="%s"/>`+"\n",
		escape(c.ID), classList("connector", c.Classes), c.Rect.X, c.Rect.Y, w, oneLine(c.Path))
}

func (s Simple) RenderElement(buf *bytes.Buffer, e Element) {
	r := e.Icon
	if r.W <= 0 || r.H <= 0 {
		return
	}
	radius := min(r.W, r.H) / 4
	if e.Kind == flow.KindBranching {
		// Decisions are drawn as diamonds.
		cx, cy := r.X+r.W/2, r.Y+r.H/2
		fmt.Fprintf(buf, `  <polygon id="%s" class="%s" points="%.2f,%.2f %.2f,%.2f %.2f,%.2f %.2f,%.2f"/>`+"\n",
			escape(e.ID), classList("element", e.Classes), cx, r.Y, r.X+r.W, cy, cx, r.Y+r.H, r.X, cy)
		return
	}
	fmt.Fprintf(buf, `  <rect id="%s" class="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
		escape(e.ID), classList("element", e.Classes), r.X, r.Y, r.W, r.H, radius)
}

func (s Simple) RenderLabel(buf *bytes.Buffer, l Label) {
	if l.Text == "" {
		return
	}
	fmt.Fprintf(buf, `  <text class="%s" x="%.2f" y="%.2f">%s</text>`+"\n", escape(l.Class), l.X, l.Y, escape(l.Text))
}

func classList(base string, extra []string) string {
	return escape(strings.Join(append([]string{base}, extra...), " "))
}

// oneLine joins the path commands onto a single attribute line.
func oneLine(path string) string {
	return escape(strings.ReplaceAll(path, "\n", " "))
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
