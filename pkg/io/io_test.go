package io

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/reducer"
)

const sampleJSON = `{
  "nodes": [
    {"guid": "start", "kind": "start", "next": "check"},
    {"guid": "check", "kind": "branching", "next": "end",
     "children": ["ok", ""], "childReferences": [{"name": "ok", "label": "Valid"}]},
    {"guid": "ok", "kind": "simple", "label": "Save", "fault": "oops"},
    {"guid": "oops", "kind": "end"},
    {"guid": "end", "kind": "end"}
  ],
  "goTos": [{"source": {"id": "check", "index": 1}, "target": "end"}],
  "decoration": {"elements": ["ok"]}
}`

const sampleYAML = `
nodes:
  - guid: start
    kind: start
    next: loop
  - guid: loop
    kind: loop
    next: end
    children: [body]
    defaultLabel: For Each
  - guid: body
    kind: simple
  - guid: end
    kind: end
`

func TestReadFlow(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		nodes  int
		check  func(t *testing.T, g *flow.Graph)
	}{
		{
			name:   "JSON",
			input:  sampleJSON,
			format: FormatJSON,
			nodes:  5,
			check: func(t *testing.T, g *flow.Graph) {
				if target, _ := g.GoTo(flow.ChildSlot("check", 1)); target != "end" {
					t.Errorf("go-to target = %q, want end", target)
				}
				if got := g.Nodes["check"].BranchLabel(0); got != "Valid" {
					t.Errorf("BranchLabel(0) = %q, want Valid", got)
				}
				if !g.Decoration.HasElement("ok") {
					t.Error("decoration lost")
				}
			},
		},
		{
			name:   "YAML",
			input:  sampleYAML,
			format: FormatYAML,
			nodes:  4,
			check: func(t *testing.T, g *flow.Graph) {
				if g.Nodes["loop"].Kind != flow.KindLoop {
					t.Errorf("kind = %v, want loop", g.Nodes["loop"].Kind)
				}
				if g.Nodes["loop"].DefaultLabel != "For Each" {
					t.Errorf("DefaultLabel = %q", g.Nodes["loop"].DefaultLabel)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ReadFlow(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadFlow() error: %v", err)
			}
			if g.Len() != tt.nodes {
				t.Errorf("Len() = %d, want %d", g.Len(), tt.nodes)
			}
			if tt.check != nil {
				tt.check(t, g)
			}
		})
	}
}

func TestReadFlowComputesTerminals(t *testing.T) {
	input := `{"nodes": [
		{"guid": "s", "kind": "start", "next": "d"},
		{"guid": "d", "kind": "branching", "children": ["a", "b"], "childReferences": [{"name": "x"}]},
		{"guid": "a", "kind": "end"},
		{"guid": "b", "kind": "end"}
	]}`
	g, err := ReadFlow(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("ReadFlow() error: %v", err)
	}
	if !g.Nodes["d"].IsTerminal {
		t.Error("d.IsTerminal = false, want true")
	}
}

func TestReadFlowErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  errors.Code
	}{
		{"Malformed", `{"nodes": [`, errors.ErrCodeInvalidFormat},
		{"UnknownField", `{"nodes": [], "edges": []}`, errors.ErrCodeInvalidFormat},
		{"UnknownKind", `{"nodes": [{"guid": "s", "kind": "fork"}]}`, errors.ErrCodeInvalidFormat},
		{"MissingGUID", `{"nodes": [{"kind": "start"}]}`, errors.ErrCodeInvalidFormat},
		{"Duplicate", `{"nodes": [{"guid": "s", "kind": "start"}, {"guid": "s", "kind": "end"}]}`, errors.ErrCodeInvalidFormat},
		{"NoEnd", `{"nodes": [{"guid": "s", "kind": "start"}]}`, errors.ErrCodeInvalidGraph},
		{"Dangling", `{"nodes": [{"guid": "s", "kind": "start", "next": "x"}]}`, errors.ErrCodeInvalidGraph},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFlow(strings.NewReader(tt.input), FormatJSON)
			if !errors.Is(err, tt.code) {
				t.Errorf("ReadFlow() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestFlowRoundTrip(t *testing.T) {
	g, err := ReadFlow(strings.NewReader(sampleJSON), FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := MarshalFlow(g, f)
			if err != nil {
				t.Fatalf("MarshalFlow() error: %v", err)
			}
			back, err := ReadFlow(bytes.NewReader(data), f)
			if err != nil {
				t.Fatalf("ReadFlow() error: %v\n%s", err, data)
			}
			if !reflect.DeepEqual(FromGraph(g), FromGraph(back)) {
				t.Errorf("round trip changed the document:\n%s", data)
			}
		})
	}
}

func TestFlowFile(t *testing.T) {
	g, err := ReadFlow(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "flow.yml")
	if err := WriteFlowFile(g, path); err != nil {
		t.Fatalf("WriteFlowFile() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "kind: loop") {
		t.Errorf("expected YAML output, got:\n%s", data)
	}
	back, err := ReadFlowFile(path)
	if err != nil {
		t.Fatalf("ReadFlowFile() error: %v", err)
	}
	if back.Len() != g.Len() {
		t.Errorf("Len() = %d, want %d", back.Len(), g.Len())
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := map[string]Format{
		"flow.json": FormatJSON,
		"flow.yaml": FormatYAML,
		"FLOW.YML":  FormatYAML,
		"flow":      FormatJSON,
	}
	for path, want := range tests {
		if got := FormatFromPath(path); got != want {
			t.Errorf("FormatFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestReadActions(t *testing.T) {
	input := `[
		{"type": "AddElement", "payload": {"source": {"id": "start", "index": -4}, "element": {"guid": "a", "kind": "simple"}}},
		{"type": "DeleteElement", "payload": {"elementId": "d", "childIndexToKeep": 1}},
		{"type": "CreateGoToConnection", "payload": {"sourceId": "d", "branchIndex": 0, "targetId": "end"}},
		{"type": "UpdateChildren", "payload": {"parentId": "d", "references": [{"name": "yes"}]}},
		{"type": "ClearCanvasDecoration"},
		{"type": "Teleport", "payload": {"anywhere": true}}
	]`
	actions, err := ReadActions(strings.NewReader(input), FormatJSON)
	if err != nil {
		t.Fatalf("ReadActions() error: %v", err)
	}
	keep := 1
	want := []reducer.Action{
		reducer.AddElement{Source: flow.NextSlot("start"), Element: flow.Node{GUID: "a", Kind: flow.KindSimple}},
		reducer.DeleteElement{ElementID: "d", ChildIndexToKeep: &keep},
		reducer.CreateGoToConnection{SourceID: "d", BranchIndex: 0, TargetID: "end"},
		reducer.UpdateChildren{ParentID: "d", References: []flow.ChildReference{{Name: "yes"}}},
		reducer.ClearCanvasDecoration{},
		reducer.Unrecognized{Name: "Teleport"},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("ReadActions() = %#v, want %#v", actions, want)
	}
}

func TestActionsRoundTrip(t *testing.T) {
	g, err := ReadFlow(strings.NewReader(sampleYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	actions := []reducer.Action{
		reducer.Init{Graph: g},
		reducer.AddFault{ElementID: "body", EndID: "fe"},
		reducer.DecorateCanvas{Decoration: flow.Decoration{Connectors: []flow.Slot{flow.NextSlot("body")}}},
	}
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			data, err := MarshalActions(actions, f)
			if err != nil {
				t.Fatalf("MarshalActions() error: %v", err)
			}
			back, err := ReadActions(bytes.NewReader(data), f)
			if err != nil {
				t.Fatalf("ReadActions() error: %v\n%s", err, data)
			}
			if len(back) != len(actions) {
				t.Fatalf("len = %d, want %d", len(back), len(actions))
			}
			init, ok := back[0].(reducer.Init)
			if !ok || init.Graph == nil || init.Graph.Len() != g.Len() {
				t.Errorf("Init payload lost: %#v", back[0])
			}
			if !reflect.DeepEqual(back[1:], actions[1:]) {
				t.Errorf("actions = %#v, want %#v", back[1:], actions[1:])
			}
		})
	}
}
