package flow

import (
	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Validate checks every structural invariant the layout relies on and
// returns the first violation as an [errors.ErrCodeInvalidGraph] error:
//
//   - exactly one start node, from which every node is reachable
//   - every referenced id exists
//   - every node other than the start has exactly one structural predecessor
//   - branch arity matches the node kind
//   - end nodes have no continuation, start and end nodes have no fault
//   - nodes inside a fault branch carry no fault of their own
//   - go-tos leave empty slots and target existing non-start nodes
//   - stored terminal flags match the structure
//   - terminal branching nodes have no continuation
//   - the root chain is terminal
func Validate(g *Graph) error {
	root, err := g.Root()
	if err != nil {
		return err
	}

	incoming := make(map[string]int, len(g.Nodes))
	ref := func(from Slot, id string) error {
		if id == "" {
			return nil
		}
		if _, ok := g.Nodes[id]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "%s references unknown element %q", from, id)
		}
		incoming[id]++
		return nil
	}

	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if n.GUID != id {
			return errors.New(errors.ErrCodeInvalidGraph, "element %q stored under key %q", n.GUID, id)
		}
		if err := validateShape(n); err != nil {
			return err
		}
		if err := ref(NextSlot(id), n.Next); err != nil {
			return err
		}
		if err := ref(FaultSlot(id), n.Fault); err != nil {
			return err
		}
		for i, c := range n.Children {
			if err := ref(ChildSlot(id, i), c); err != nil {
				return err
			}
		}
	}

	for _, id := range g.IDs() {
		want := 1
		if id == root.GUID {
			want = 0
		}
		if incoming[id] != want {
			return errors.New(errors.ErrCodeInvalidGraph, "element %q has %d structural predecessors, want %d", id, incoming[id], want)
		}
	}

	reached := g.Subtree(root.GUID)
	if len(reached) != len(g.Nodes) {
		for _, id := range g.IDs() {
			if !reached[id] {
				return errors.New(errors.ErrCodeInvalidGraph, "element %q is not reachable from the start", id)
			}
		}
	}

	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if n.Fault == "" {
			continue
		}
		for inner := range g.Subtree(n.Fault) {
			if g.Nodes[inner].Fault != "" {
				return errors.New(errors.ErrCodeInvalidGraph, "element %q inside the fault branch of %q has its own fault", inner, id)
			}
		}
	}

	for s, target := range g.GoTos {
		content, err := g.SlotContent(s)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidGraph, err, "go-to source %s", s)
		}
		if content != "" {
			return errors.New(errors.ErrCodeInvalidGraph, "go-to source %s is not empty", s)
		}
		if _, ok := g.Nodes[target]; !ok {
			return errors.New(errors.ErrCodeInvalidGraph, "go-to from %s targets unknown element %q", s, target)
		}
		if target == root.GUID {
			return errors.New(errors.ErrCodeInvalidGraph, "go-to from %s targets the start element", s)
		}
	}

	t := NewTerminals(g)
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if v := t.Node(id); v != n.IsTerminal {
			return errors.New(errors.ErrCodeInvalidGraph, "element %q has isTerminal=%t, want %t", id, n.IsTerminal, v)
		}
		if n.IsTerminal && n.Next != "" {
			return errors.New(errors.ErrCodeInvalidGraph, "terminal element %q has a continuation", id)
		}
	}
	if !t.Chain(root.GUID) {
		return errors.New(errors.ErrCodeInvalidGraph, "flow does not reach an end element")
	}
	return nil
}

func validateShape(n *Node) error {
	if want := n.ExpectedChildren(); len(n.Children) != want {
		return errors.New(errors.ErrCodeInvalidGraph, "%s element %q has %d branches, want %d", n.Kind, n.GUID, len(n.Children), want)
	}
	switch n.Kind {
	case KindEnd:
		if n.Next != "" {
			return errors.New(errors.ErrCodeInvalidGraph, "end element %q has a continuation", n.GUID)
		}
		if n.Fault != "" {
			return errors.New(errors.ErrCodeInvalidGraph, "end element %q has a fault branch", n.GUID)
		}
	case KindStart:
		if n.Fault != "" {
			return errors.New(errors.ErrCodeInvalidGraph, "start element %q has a fault branch", n.GUID)
		}
	case KindSimple, KindBranching, KindLoop:
	default:
		return errors.New(errors.ErrCodeInvalidGraph, "element %q has unknown kind %s", n.GUID, n.Kind)
	}
	return nil
}
