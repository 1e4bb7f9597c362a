package reducer

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// base builds start -> a -> d{x | <empty>} -> end.
func base() *flow.Graph {
	return flow.New(
		&flow.Node{GUID: "start", Kind: flow.KindStart, Next: "a"},
		&flow.Node{GUID: "a", Kind: flow.KindSimple, Next: "d"},
		&flow.Node{GUID: "d", Kind: flow.KindBranching, Next: "end",
			Children:        []string{"x", ""},
			ChildReferences: []flow.ChildReference{{Name: "yes", Label: "Yes"}}},
		&flow.Node{GUID: "x", Kind: flow.KindSimple},
		&flow.Node{GUID: "end", Kind: flow.KindEnd},
	)
}

func reduce(t *testing.T, g *flow.Graph, a Action) *flow.Graph {
	t.Helper()
	before := g.Clone()
	next, err := Reduce(g, a)
	require.NoError(t, err)
	require.NoError(t, flow.Validate(next))
	assert.Equal(t, before, g, "input graph was modified")
	return next
}

func rejected(t *testing.T, g *flow.Graph, a Action, code errors.Code) {
	t.Helper()
	before := g.Clone()
	next, err := Reduce(g, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, code), "got %v, want %s", err, code)
	assert.Same(t, g, next)
	assert.Equal(t, before, g)
}

func TestInit(t *testing.T) {
	g, err := Reduce(nil, Init{})
	require.NoError(t, err)
	require.NoError(t, flow.Validate(g))
	assert.Equal(t, 2, g.Len())
	root, err := g.Root()
	require.NoError(t, err)
	_, err = uuid.Parse(root.GUID)
	assert.NoError(t, err)

	fixed := reduce(t, g, Init{Graph: base()})
	assert.Equal(t, 5, fixed.Len())

	broken := base()
	broken.Nodes["x"].Next = "ghost"
	rejected(t, g, Init{Graph: broken}, errors.ErrCodeInvalidGraph)
}

func TestAddElement(t *testing.T) {
	g := base()
	next := reduce(t, g, AddElement{
		Source:  flow.NextSlot("start"),
		Element: flow.Node{GUID: "n", Kind: flow.KindSimple, Label: "Assign"},
	})
	assert.Equal(t, "n", next.Nodes["start"].Next)
	assert.Equal(t, "a", next.Nodes["n"].Next)
	assert.Equal(t, "Assign", next.Nodes["n"].Label)

	next = reduce(t, g, AddElement{
		Source:  flow.ChildSlot("d", 1),
		Element: flow.Node{Kind: flow.KindBranching, ChildReferences: []flow.ChildReference{{Name: "k"}}},
	})
	id := next.Nodes["d"].Children[1]
	require.NotEmpty(t, id)
	assert.Equal(t, []string{"", ""}, next.Nodes[id].Children)

	next = reduce(t, g, AddElement{Source: flow.ChildSlot("d", 1), Element: flow.Node{GUID: "l", Kind: flow.KindLoop}})
	assert.Equal(t, []string{""}, next.Nodes["l"].Children)
}

func TestAddElementRejections(t *testing.T) {
	g := base()
	tests := []struct {
		name string
		a    AddElement
		code errors.Code
	}{
		{"unknown source", AddElement{Source: flow.NextSlot("ghost")}, errors.ErrCodeNodeNotFound},
		{"bad branch", AddElement{Source: flow.ChildSlot("d", 7)}, errors.ErrCodeInvalidBranchIndex},
		{"after end", AddElement{Source: flow.NextSlot("end")}, errors.ErrCodeInvalidAction},
		{"second start", AddElement{Source: flow.NextSlot("a"), Element: flow.Node{Kind: flow.KindStart}}, errors.ErrCodeInvalidAction},
		{"padded id", AddElement{Source: flow.NextSlot("a"), Element: flow.Node{GUID: " n "}}, errors.ErrCodeInvalidAction},
		{"duplicate id", AddElement{Source: flow.NextSlot("a"), Element: flow.Node{GUID: "x"}}, errors.ErrCodeInvalidAction},
		{"end into occupied slot", AddElement{Source: flow.NextSlot("a"), Element: flow.Node{Kind: flow.KindEnd}}, errors.ErrCodeSlotOccupied},
		{"missing fault", AddElement{Source: flow.FaultSlot("a")}, errors.ErrCodeInvalidAction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rejected(t, g, tt.a, tt.code)
		})
	}
}

func TestAddElementMovesGoTo(t *testing.T) {
	g := reduce(t, base(), CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "a"})
	next := reduce(t, g, AddElement{Source: flow.ChildSlot("d", 1), Element: flow.Node{GUID: "n"}})

	_, stale := next.GoTo(flow.ChildSlot("d", 1))
	assert.False(t, stale)
	target, ok := next.GoTo(flow.NextSlot("n"))
	assert.True(t, ok)
	assert.Equal(t, "a", target)
}

func TestTerminalRecomputedUpTheAncestors(t *testing.T) {
	// start -> d{ i{e0 | <empty>} | <empty> } -> end
	g := flow.New(
		&flow.Node{GUID: "start", Kind: flow.KindStart, Next: "d"},
		&flow.Node{GUID: "d", Kind: flow.KindBranching, Next: "end",
			Children: []string{"i", ""}, ChildReferences: []flow.ChildReference{{Name: "a"}}},
		&flow.Node{GUID: "i", Kind: flow.KindBranching,
			Children: []string{"e0", ""}, ChildReferences: []flow.ChildReference{{Name: "b"}}},
		&flow.Node{GUID: "e0", Kind: flow.KindEnd},
		&flow.Node{GUID: "end", Kind: flow.KindEnd},
	)
	require.NoError(t, flow.Validate(g))

	next := reduce(t, g, AddElement{Source: flow.ChildSlot("i", 1), Element: flow.Node{GUID: "e1", Kind: flow.KindEnd}})
	assert.True(t, next.Nodes["i"].IsTerminal)
	assert.False(t, next.Nodes["d"].IsTerminal)
	assert.False(t, g.Nodes["i"].IsTerminal)

	// Closing d's last open branch makes d terminal and drops its continuation.
	ended := reduce(t, next, AddElement{Source: flow.ChildSlot("d", 1), Element: flow.Node{GUID: "e2", Kind: flow.KindEnd}})
	assert.True(t, ended.Nodes["d"].IsTerminal)
	assert.Empty(t, ended.Nodes["d"].Next)
	assert.NotContains(t, ended.Nodes, "end")

	back := reduce(t, next, DeleteElement{ElementID: "e1"})
	assert.False(t, back.Nodes["i"].IsTerminal)
}

// terminalRoot builds start -> d{e1 | e2}, where d ends the flow.
func terminalRoot() *flow.Graph {
	return flow.New(
		&flow.Node{GUID: "start", Kind: flow.KindStart, Next: "d"},
		&flow.Node{GUID: "d", Kind: flow.KindBranching, IsTerminal: true,
			Children: []string{"e1", "e2"}, ChildReferences: []flow.ChildReference{{Name: "yes"}}},
		&flow.Node{GUID: "e1", Kind: flow.KindEnd},
		&flow.Node{GUID: "e2", Kind: flow.KindEnd},
	)
}

func TestTerminalTransitions(t *testing.T) {
	// start -> d{e1 | <empty>} -> a -> end
	merging := func() *flow.Graph {
		g := flow.New(
			&flow.Node{GUID: "start", Kind: flow.KindStart, Next: "d"},
			&flow.Node{GUID: "d", Kind: flow.KindBranching, Next: "a",
				Children: []string{"e1", ""}, ChildReferences: []flow.ChildReference{{Name: "yes"}}},
			&flow.Node{GUID: "e1", Kind: flow.KindEnd},
			&flow.Node{GUID: "a", Kind: flow.KindSimple, Next: "end"},
			&flow.Node{GUID: "end", Kind: flow.KindEnd},
		)
		require.NoError(t, flow.Validate(g))
		return g
	}

	tests := []struct {
		name  string
		graph func() *flow.Graph
		a     Action
		check func(t *testing.T, g *flow.Graph)
	}{
		{
			name:  "new outcome of a terminal decision ends",
			graph: terminalRoot,
			a:     UpdateChildren{ParentID: "d", References: []flow.ChildReference{{Name: "yes"}, {Name: "no"}}},
			check: func(t *testing.T, g *flow.Graph) {
				d := g.Nodes["d"]
				require.Len(t, d.Children, 3)
				assert.Equal(t, "e1", d.Children[0])
				assert.Equal(t, "e2", d.Children[2])
				assert.Equal(t, flow.KindEnd, g.Nodes[d.Children[1]].Kind)
				assert.True(t, d.IsTerminal)
				assert.Empty(t, d.Next)
			},
		},
		{
			name:  "dropping an outcome keeps a terminal decision closed",
			graph: terminalRoot,
			a:     UpdateChildren{ParentID: "d", References: nil},
			check: func(t *testing.T, g *flow.Graph) {
				assert.Equal(t, []string{"e2"}, g.Nodes["d"].Children)
				assert.NotContains(t, g.Nodes, "e1")
				assert.True(t, g.Nodes["d"].IsTerminal)
			},
		},
		{
			name:  "reopened root decision is followed by an end",
			graph: terminalRoot,
			a:     DeleteElement{ElementID: "e1"},
			check: func(t *testing.T, g *flow.Graph) {
				d := g.Nodes["d"]
				assert.Equal(t, []string{"", "e2"}, d.Children)
				assert.False(t, d.IsTerminal)
				require.NotEmpty(t, d.Next)
				assert.Equal(t, flow.KindEnd, g.Nodes[d.Next].Kind)
			},
		},
		{
			name:  "reopened inner decision closes the outer one",
			graph: func() *flow.Graph {
				g := terminalRoot()
				g.Nodes["start"].Next = "o"
				g.Nodes["o"] = &flow.Node{GUID: "o", Kind: flow.KindBranching, IsTerminal: true,
					Children: []string{"d", "e3"}, ChildReferences: []flow.ChildReference{{Name: "inner"}}}
				g.Nodes["e3"] = &flow.Node{GUID: "e3", Kind: flow.KindEnd}
				require.NoError(t, flow.Validate(g))
				return g
			},
			a: DeleteElement{ElementID: "e2"},
			check: func(t *testing.T, g *flow.Graph) {
				assert.False(t, g.Nodes["d"].IsTerminal)
				assert.Empty(t, g.Nodes["d"].Next)
				o := g.Nodes["o"]
				assert.False(t, o.IsTerminal)
				require.NotEmpty(t, o.Next)
				assert.Equal(t, flow.KindEnd, g.Nodes[o.Next].Kind)
			},
		},
		{
			name:  "closing the last merging branch drops the continuation",
			graph: merging,
			a:     AddElement{Source: flow.ChildSlot("d", 1), Element: flow.Node{GUID: "e2", Kind: flow.KindEnd}},
			check: func(t *testing.T, g *flow.Graph) {
				d := g.Nodes["d"]
				assert.Equal(t, []string{"e1", "e2"}, d.Children)
				assert.True(t, d.IsTerminal)
				assert.Empty(t, d.Next)
				assert.NotContains(t, g.Nodes, "a")
				assert.NotContains(t, g.Nodes, "end")
			},
		},
		{
			name:  "go-to on the last merging branch drops the continuation",
			graph: merging,
			a:     CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "e1"},
			check: func(t *testing.T, g *flow.Graph) {
				assert.True(t, g.Nodes["d"].IsTerminal)
				assert.Empty(t, g.Nodes["d"].Next)
				assert.Equal(t, 3, g.Len())
				target, ok := g.GoTo(flow.ChildSlot("d", 1))
				assert.True(t, ok)
				assert.Equal(t, "e1", target)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, reduce(t, tt.graph(), tt.a))
		})
	}
}

func TestTerminalDecisionHasNoContinuation(t *testing.T) {
	g := terminalRoot()
	rejected(t, g, AddElement{Source: flow.NextSlot("d"), Element: flow.Node{GUID: "n"}}, errors.ErrCodeInvalidAction)
	rejected(t, g, ConnectToElement{Source: flow.NextSlot("d"), TargetID: "e1"}, errors.ErrCodeInvalidAction)
}

func TestDeleteElement(t *testing.T) {
	g := base()

	next := reduce(t, g, DeleteElement{ElementID: "x"})
	assert.Equal(t, []string{"", ""}, next.Nodes["d"].Children)
	assert.NotContains(t, next.Nodes, "x")

	next = reduce(t, g, DeleteElement{ElementID: "d"})
	assert.Equal(t, "end", next.Nodes["a"].Next)
	assert.NotContains(t, next.Nodes, "d")
	assert.NotContains(t, next.Nodes, "x")

	keep := 0
	next = reduce(t, g, DeleteElement{ElementID: "d", ChildIndexToKeep: &keep})
	assert.Equal(t, "x", next.Nodes["a"].Next)
	assert.Equal(t, "end", next.Nodes["x"].Next)
	assert.Equal(t, 4, next.Len())

	keep = 1
	next = reduce(t, g, DeleteElement{ElementID: "d", ChildIndexToKeep: &keep})
	assert.Equal(t, "end", next.Nodes["a"].Next)
	assert.Equal(t, 3, next.Len())
}

func TestDeleteElementRejections(t *testing.T) {
	g := base()
	bad := 5
	rejected(t, g, DeleteElement{ElementID: "start"}, errors.ErrCodeInvalidAction)
	rejected(t, g, DeleteElement{ElementID: "ghost"}, errors.ErrCodeNodeNotFound)
	rejected(t, g, DeleteElement{ElementID: "d", ChildIndexToKeep: &bad}, errors.ErrCodeInvalidBranchIndex)
	// The flow would no longer reach an end.
	rejected(t, g, DeleteElement{ElementID: "end"}, errors.ErrCodeInvalidGraph)

	// Keeping a branch that ends would drop d's continuation.
	ended := reduce(t, g, AddElement{Source: flow.NextSlot("x"), Element: flow.Node{GUID: "xe", Kind: flow.KindEnd}})
	keep := 0
	rejected(t, ended, DeleteElement{ElementID: "d", ChildIndexToKeep: &keep}, errors.ErrCodeInvalidAction)
}

func TestDeleteReplacesDanglingGoTos(t *testing.T) {
	g := reduce(t, base(), CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "x"})
	assert.True(t, g.IsBranchTerminal(flow.ChildSlot("d", 1)))

	next := reduce(t, g, DeleteElement{ElementID: "x"})
	assert.Empty(t, next.GoTos)
	closer := next.Nodes["d"].Children[1]
	require.NotEmpty(t, closer)
	assert.Equal(t, flow.KindEnd, next.Nodes[closer].Kind)
}

func TestFaults(t *testing.T) {
	g := base()
	next := reduce(t, g, AddFault{ElementID: "a", EndID: "fe"})
	assert.Equal(t, "fe", next.Nodes["a"].Fault)
	assert.Equal(t, flow.KindEnd, next.Nodes["fe"].Kind)

	rejected(t, next, AddFault{ElementID: "a"}, errors.ErrCodeSlotOccupied)
	rejected(t, g, AddFault{ElementID: "start"}, errors.ErrCodeInvalidAction)
	rejected(t, g, AddFault{ElementID: "end"}, errors.ErrCodeInvalidAction)
	rejected(t, g, AddFault{ElementID: "ghost"}, errors.ErrCodeNodeNotFound)

	inner := reduce(t, next, AddElement{Source: flow.FaultSlot("a"), Element: flow.Node{GUID: "log"}})
	assert.Equal(t, "log", inner.Nodes["a"].Fault)
	assert.Equal(t, "fe", inner.Nodes["log"].Next)
	rejected(t, inner, AddFault{ElementID: "log"}, errors.ErrCodeInvalidAction)

	cleared := reduce(t, inner, DeleteFault{ElementID: "a"})
	assert.Empty(t, cleared.Nodes["a"].Fault)
	assert.NotContains(t, cleared.Nodes, "log")
	assert.NotContains(t, cleared.Nodes, "fe")
	rejected(t, cleared, DeleteFault{ElementID: "a"}, errors.ErrCodeInvalidAction)
}

func TestGoToConnections(t *testing.T) {
	g := base()
	next := reduce(t, g, CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "end"})
	target, ok := next.GoTo(flow.ChildSlot("d", 1))
	require.True(t, ok)
	assert.Equal(t, "end", target)

	rejected(t, next, CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "a"}, errors.ErrCodeSlotOccupied)
	rejected(t, g, CreateGoToConnection{SourceID: "d", BranchIndex: 0, TargetID: "a"}, errors.ErrCodeSlotOccupied)
	rejected(t, g, CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "start"}, errors.ErrCodeInvalidAction)
	rejected(t, g, CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "ghost"}, errors.ErrCodeNodeNotFound)
	rejected(t, g, CreateGoToConnection{SourceID: "d", BranchIndex: 9, TargetID: "a"}, errors.ErrCodeInvalidBranchIndex)

	closed := reduce(t, next, DeleteGoToConnection{SourceID: "d", BranchIndex: 1, EndID: "e1"})
	assert.Empty(t, closed.GoTos)
	assert.Equal(t, "e1", closed.Nodes["d"].Children[1])
	rejected(t, closed, DeleteGoToConnection{SourceID: "d", BranchIndex: 1}, errors.ErrCodeNotFound)

	// A lone end element is replaced by the go-to.
	reopened := reduce(t, closed, CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "a"})
	assert.NotContains(t, reopened.Nodes, "e1")
	assert.Equal(t, "", reopened.Nodes["d"].Children[1])
}

func TestConnectToMergeTarget(t *testing.T) {
	g := reduce(t, base(), AddElement{Source: flow.ChildSlot("d", 1), Element: flow.Node{GUID: "e1", Kind: flow.KindEnd}})

	next := reduce(t, g, ConnectToElement{Source: flow.ChildSlot("d", 1), TargetID: "end", IsMergeableTarget: true})
	assert.Equal(t, "", next.Nodes["d"].Children[1])
	assert.NotContains(t, next.Nodes, "e1")
	assert.Empty(t, next.GoTos)

	rejected(t, g, ConnectToElement{Source: flow.ChildSlot("d", 1), TargetID: "a", IsMergeableTarget: true}, errors.ErrCodeInvalidAction)
	rejected(t, g, ConnectToElement{Source: flow.ChildSlot("d", 1), TargetID: "e1"}, errors.ErrCodeInvalidAction)
	rejected(t, g, ConnectToElement{Source: flow.FaultSlot("a"), TargetID: "end"}, errors.ErrCodeInvalidBranchIndex)

	jump := reduce(t, g, ConnectToElement{Source: flow.ChildSlot("d", 1), TargetID: "a"})
	target, _ := jump.GoTo(flow.ChildSlot("d", 1))
	assert.Equal(t, "a", target)
}

func TestUpdateChildren(t *testing.T) {
	g := reduce(t, base(), CreateGoToConnection{SourceID: "d", BranchIndex: 1, TargetID: "a"})

	next := reduce(t, g, UpdateChildren{ParentID: "d", References: []flow.ChildReference{{Name: "no"}, {Name: "yes", Label: "Sure"}}})
	d := next.Nodes["d"]
	assert.Equal(t, []string{"", "x", ""}, d.Children)
	assert.Equal(t, "Sure", d.BranchLabel(1))
	_, moved := next.GoTo(flow.ChildSlot("d", 2))
	assert.True(t, moved, "the default branch keeps its go-to")

	dropped := reduce(t, next, UpdateChildren{ParentID: "d", References: []flow.ChildReference{{Name: "no"}}})
	assert.Equal(t, []string{"", ""}, dropped.Nodes["d"].Children)
	assert.NotContains(t, dropped.Nodes, "x")
	_, kept := dropped.GoTo(flow.ChildSlot("d", 1))
	assert.True(t, kept)

	rejected(t, g, UpdateChildren{ParentID: "d", References: []flow.ChildReference{{Name: "a"}, {Name: "a"}}}, errors.ErrCodeInvalidAction)
	rejected(t, g, UpdateChildren{ParentID: "d", References: []flow.ChildReference{{}}}, errors.ErrCodeInvalidAction)
	rejected(t, g, UpdateChildren{ParentID: "a"}, errors.ErrCodeInvalidAction)
}

func TestDecoration(t *testing.T) {
	g := base()
	deco := flow.Decoration{Elements: []string{"x"}, Connectors: []flow.Slot{flow.NextSlot("a")}}
	next := reduce(t, g, DecorateCanvas{Decoration: deco})
	assert.True(t, next.Decoration.HasElement("x"))
	assert.True(t, next.Decoration.HasConnector(flow.NextSlot("a")))
	assert.True(t, g.Decoration.IsEmpty())

	rejected(t, g, DecorateCanvas{Decoration: flow.Decoration{Elements: []string{"ghost"}}}, errors.ErrCodeNodeNotFound)

	// Highlights on removed elements disappear with them.
	pruned := reduce(t, next, DeleteElement{ElementID: "x"})
	assert.False(t, pruned.Decoration.HasElement("x"))

	cleared := reduce(t, next, ClearCanvasDecoration{})
	assert.True(t, cleared.Decoration.IsEmpty())
}

func TestUnknownActionIsNoop(t *testing.T) {
	g := base()
	next, err := Reduce(g, Unrecognized{Name: "Frobnicate"})
	require.NoError(t, err)
	assert.Same(t, g, next)

	next, err = Reduce(g, nil)
	require.NoError(t, err)
	assert.Same(t, g, next)

	_, err = Reduce(nil, AddFault{ElementID: "a"})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

func TestActionSequenceKeepsInvariants(t *testing.T) {
	g, err := Reduce(nil, Init{})
	require.NoError(t, err)
	root, err := g.Root()
	require.NoError(t, err)

	keep := 0
	steps := []Action{
		AddElement{Source: flow.NextSlot(root.GUID), Element: flow.Node{GUID: "dec", Kind: flow.KindBranching,
			ChildReferences: []flow.ChildReference{{Name: "one"}, {Name: "two"}}}},
		AddElement{Source: flow.ChildSlot("dec", 0), Element: flow.Node{GUID: "s1"}},
		AddElement{Source: flow.ChildSlot("dec", 1), Element: flow.Node{GUID: "loop", Kind: flow.KindLoop}},
		AddElement{Source: flow.ChildSlot("loop", 0), Element: flow.Node{GUID: "body"}},
		AddFault{ElementID: "body"},
		CreateGoToConnection{SourceID: "dec", BranchIndex: 2, TargetID: "s1"},
		UpdateChildren{ParentID: "dec", References: []flow.ChildReference{{Name: "two"}, {Name: "three"}, {Name: "one"}}},
		DeleteElement{ElementID: "loop", ChildIndexToKeep: new(int)},
		DeleteGoToConnection{SourceID: "dec", BranchIndex: 3},
		DeleteElement{ElementID: "dec", ChildIndexToKeep: &keep},
	}
	for i, a := range steps {
		g, err = Reduce(g, a)
		require.NoError(t, err, "step %d %s", i, a.Type())
		require.NoError(t, flow.Validate(g), "step %d %s", i, a.Type())
	}
	assert.Contains(t, g.Nodes, "body")
	assert.NotContains(t, g.Nodes, "s1")
}
