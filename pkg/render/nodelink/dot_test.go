package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/flow"
)

func sample() *flow.Graph {
	g := flow.New(
		&flow.Node{GUID: "start", Kind: flow.KindStart, Next: "d"},
		&flow.Node{GUID: "d", Kind: flow.KindBranching, Label: "Route", Next: "end",
			Children:        []string{"a", "", ""},
			ChildReferences: []flow.ChildReference{{Name: "left", Label: "Left"}, {Name: "skip"}},
			DefaultLabel:    "Default"},
		&flow.Node{GUID: "a", Kind: flow.KindSimple, Fault: "oops"},
		&flow.Node{GUID: "oops", Kind: flow.KindEnd},
		&flow.Node{GUID: "end", Kind: flow.KindEnd},
	)
	g.GoTos[flow.ChildSlot("d", 1)] = "end"
	g.Decoration.Elements = []string{"a"}
	flow.RecomputeTerminals(g)
	return g
}

func TestToDOT(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
		deny []string
	}{
		{
			name: "Basic",
			want: []string{
				"digraph G {",
				`"d" [label="Route", shape=diamond`,
				`"start" -> "d";`,
				`"d" -> "a" [label="Left"]`,
				`"a" -> "oops" [color="#c23934"`,
				`"d" -> "end" [style=dashed, constraint=false, label="skip"]`,
				`penwidth=3`,
			},
			deny: []string{"style=dotted", "kind:"},
		},
		{
			name: "Detailed",
			opts: Options{Detailed: true},
			want: []string{`label="Route\nid: d\nkind: branching"`},
		},
		{
			name: "Merges",
			opts: Options{Merges: true},
			want: []string{
				`"a" -> "end" [style=dotted]`,
				`"d" -> "end" [label="Default", style=dotted]`,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dot := ToDOT(sample(), tt.opts)
			for _, w := range tt.want {
				if !strings.Contains(dot, w) {
					t.Errorf("ToDOT() missing %q\n%s", w, dot)
				}
			}
			for _, d := range tt.deny {
				if strings.Contains(dot, d) {
					t.Errorf("ToDOT() unexpectedly contains %q\n%s", d, dot)
				}
			}
		})
	}
}

func TestToDOTDeterministic(t *testing.T) {
	if ToDOT(sample(), Options{Merges: true}) != ToDOT(sample(), Options{Merges: true}) {
		t.Error("ToDOT() output differs between runs")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := string(normalizeViewBox([]byte("<svg/>"))); got != "<svg/>" {
		t.Errorf("normalizeViewBox() without viewBox = %s", got)
	}
}
