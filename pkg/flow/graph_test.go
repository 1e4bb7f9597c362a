package flow

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// decisionFlow builds start -> d{x | (empty)} -> s -> end, with x -> y.
func decisionFlow() *Graph {
	return New(
		&Node{GUID: "start", Kind: KindStart, Next: "d"},
		&Node{GUID: "d", Kind: KindBranching, Next: "s",
			Children:        []string{"x", ""},
			ChildReferences: []ChildReference{{Name: "yes", Label: "Yes"}},
			DefaultLabel:    "Default"},
		&Node{GUID: "x", Kind: KindSimple, Next: "y"},
		&Node{GUID: "y", Kind: KindSimple},
		&Node{GUID: "s", Kind: KindSimple, Next: "end"},
		&Node{GUID: "end", Kind: KindEnd},
	)
}

// terminalFlow builds start -> d{e1 | e2} where both branches end.
func terminalFlow() *Graph {
	return New(
		&Node{GUID: "start", Kind: KindStart, Next: "d"},
		&Node{GUID: "d", Kind: KindBranching, Children: []string{"e1", "e2"},
			ChildReferences: []ChildReference{{Name: "a"}}, IsTerminal: true},
		&Node{GUID: "e1", Kind: KindEnd},
		&Node{GUID: "e2", Kind: KindEnd},
	)
}

func TestRootAndResolve(t *testing.T) {
	g := decisionFlow()
	root, err := g.Root()
	if err != nil {
		t.Fatalf("Root() error: %v", err)
	}
	if root.GUID != "start" {
		t.Errorf("Root() = %q, want start", root.GUID)
	}

	if _, err := g.Resolve("missing"); !errors.Is(err, errors.ErrCodeNodeNotFound) {
		t.Errorf("Resolve(missing) error = %v, want NODE_NOT_FOUND", err)
	}

	g.Nodes["start2"] = &Node{GUID: "start2", Kind: KindStart}
	if _, err := g.Root(); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("Root() with two starts error = %v, want INVALID_GRAPH", err)
	}
}

func TestSlots(t *testing.T) {
	g := decisionFlow()
	tests := []struct {
		slot    Slot
		want    string
		wantErr bool
	}{
		{NextSlot("d"), "s", false},
		{ChildSlot("d", 0), "x", false},
		{ChildSlot("d", 1), "", false},
		{ChildSlot("d", 2), "", true},
		{FaultSlot("d"), "", false},
		{Slot{ID: "d", Index: LoopBackIndex}, "", true},
		{NextSlot("nope"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.slot.String(), func(t *testing.T) {
			got, err := g.SlotContent(tt.slot)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SlotContent(%v) error = %v, wantErr %v", tt.slot, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SlotContent(%v) = %q, want %q", tt.slot, got, tt.want)
			}
		})
	}
}

func TestBranchHead(t *testing.T) {
	g := decisionFlow()
	g.Nodes["s"].Fault = "fe"
	g.Nodes["fe"] = &Node{GUID: "fe", Kind: KindEnd}

	tests := []struct {
		parent  string
		index   int
		want    string
		wantErr errors.Code
	}{
		{"d", 0, "x", ""},
		{"d", 1, "", ""},
		{"s", FaultIndex, "fe", ""},
		{"d", NextIndex, "", errors.ErrCodeInvalidBranchIndex},
		{"d", 5, "", errors.ErrCodeInvalidBranchIndex},
		{"ghost", 0, "", errors.ErrCodeNodeNotFound},
	}
	for _, tt := range tests {
		got, err := g.BranchHead(tt.parent, tt.index)
		if tt.wantErr != "" {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("BranchHead(%q, %d) error = %v, want %s", tt.parent, tt.index, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("BranchHead(%q, %d) error: %v", tt.parent, tt.index, err)
			continue
		}
		if got != tt.want {
			t.Errorf("BranchHead(%q, %d) = %q, want %q", tt.parent, tt.index, got, tt.want)
		}
	}
}

func TestChain(t *testing.T) {
	g := decisionFlow()
	chain, err := g.Chain("start")
	if err != nil {
		t.Fatalf("Chain() error: %v", err)
	}
	var ids []string
	for _, n := range chain {
		ids = append(ids, n.GUID)
	}
	if want := []string{"start", "d", "s", "end"}; !slices.Equal(ids, want) {
		t.Errorf("Chain(start) = %v, want %v", ids, want)
	}

	if chain, _ := g.Chain(""); len(chain) != 0 {
		t.Errorf("Chain(\"\") = %v, want empty", chain)
	}

	g.Nodes["s"].Next = "d"
	if _, err := g.Chain("d"); !errors.Is(err, errors.ErrCodeInvalidGraph) {
		t.Errorf("Chain() on cycle error = %v, want INVALID_GRAPH", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := decisionFlow()
	g.GoTos[ChildSlot("d", 1)] = "s"
	c := g.Clone()
	c.Nodes["d"].Children[0] = "changed"
	c.GoTos[NextSlot("y")] = "end"
	c.Decoration.Elements = append(c.Decoration.Elements, "x")

	if g.Nodes["d"].Children[0] != "x" {
		t.Error("Clone() shares children with the original")
	}
	if len(g.GoTos) != 1 {
		t.Error("Clone() shares go-tos with the original")
	}
	if !g.Decoration.IsEmpty() {
		t.Error("Clone() shares decoration with the original")
	}
}

func TestOwnerAndAncestors(t *testing.T) {
	g := decisionFlow()
	if s, ok := g.Owner("y"); !ok || s != ChildSlot("d", 0) {
		t.Errorf("Owner(y) = %v, %v; want d[0]", s, ok)
	}
	if _, ok := g.Owner("s"); ok {
		t.Error("Owner(s) on the root chain should report false")
	}
	if got := g.Ancestors("y"); !slices.Equal(got, []string{"d"}) {
		t.Errorf("Ancestors(y) = %v, want [d]", got)
	}
	if p, ok := g.Predecessor("y"); !ok || p != NextSlot("x") {
		t.Errorf("Predecessor(y) = %v, %v; want x.next", p, ok)
	}
}

func TestIsInFault(t *testing.T) {
	g := decisionFlow()
	g.Nodes["fe"] = &Node{GUID: "fe", Kind: KindEnd}
	g.Nodes["f"] = &Node{GUID: "f", Kind: KindSimple, Next: "fe"}
	g.Nodes["s"].Fault = "f"

	if !g.IsInFault("fe") {
		t.Error("IsInFault(fe) = false, want true")
	}
	if g.IsInFault("y") {
		t.Error("IsInFault(y) = true, want false")
	}
}

func TestMergeTarget(t *testing.T) {
	g := decisionFlow()
	loop := New(
		&Node{GUID: "start", Kind: KindStart, Next: "l"},
		&Node{GUID: "l", Kind: KindLoop, Next: "end", Children: []string{"b"}},
		&Node{GUID: "b", Kind: KindSimple},
		&Node{GUID: "end", Kind: KindEnd},
	)

	tests := []struct {
		name   string
		g      *Graph
		slot   Slot
		want   string
		wantOK bool
	}{
		{"BranchTail", g, NextSlot("y"), "s", true},
		{"EmptyBranch", g, ChildSlot("d", 1), "s", true},
		{"RootChain", g, NextSlot("s"), "", false},
		{"LoopBody", loop, NextSlot("b"), "l", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.g.MergeTarget(tt.slot)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MergeTarget(%v) = %q, %v; want %q, %v", tt.slot, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDeletionSet(t *testing.T) {
	g := decisionFlow()
	keep := 1
	got := g.DeletionSet("d", &keep)
	for _, id := range []string{"d", "x", "y"} {
		if !got[id] {
			t.Errorf("DeletionSet(d, keep=1) missing %q", id)
		}
	}
	if got["s"] {
		t.Error("DeletionSet(d) must not include the continuation")
	}

	keep = 0
	if got := g.DeletionSet("d", &keep); got["x"] || got["y"] {
		t.Errorf("DeletionSet(d, keep=0) = %v, want kept branch excluded", got)
	}
	if d := g.Descendants("d"); len(d) != 2 {
		t.Errorf("Descendants(d) = %v, want 2 nodes", d)
	}
}
