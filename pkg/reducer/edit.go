package reducer

import (
	"cmp"
	"maps"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// addEnd adds a detached end element and returns its GUID.
func addEnd(g *flow.Graph, id string) (string, error) {
	if id == "" {
		id = newID()
	}
	if _, dup := g.Nodes[id]; dup {
		return "", errors.New(errors.ErrCodeInvalidAction, "element %q already exists", id)
	}
	g.Nodes[id] = &flow.Node{GUID: id, Kind: flow.KindEnd}
	return id, nil
}

// open empties s. A slot holding a lone end element is opened by removing
// it; any other content is left alone and reported.
func open(g *flow.Graph, s flow.Slot) error {
	content, err := g.SlotContent(s)
	if err != nil || content == "" {
		return err
	}
	if n := g.Nodes[content]; n == nil || n.Kind != flow.KindEnd {
		return errors.New(errors.ErrCodeSlotOccupied, "%s already continues with %q", s, content)
	}
	if err := g.SetSlot(s, ""); err != nil {
		return err
	}
	return removeNodes(g, map[string]bool{content: true})
}

// removeNodes deletes the given nodes and everything that refers to them
// outside the structure: go-tos leaving them are dropped, go-tos pointing at
// them are replaced by an end element at their source, and highlights are
// cleared.
func removeNodes(g *flow.Graph, removed map[string]bool) error {
	if len(removed) == 0 {
		return nil
	}
	for id := range removed {
		delete(g.Nodes, id)
	}

	for _, s := range sortedSlots(g.GoTos) {
		target := g.GoTos[s]
		switch {
		case removed[s.ID]:
			delete(g.GoTos, s)
		case removed[target]:
			delete(g.GoTos, s)
			end, err := addEnd(g, "")
			if err != nil {
				return err
			}
			if err := g.SetSlot(s, end); err != nil {
				return err
			}
		}
	}

	d := &g.Decoration
	d.Elements = slices.DeleteFunc(d.Elements, func(id string) bool { return removed[id] })
	d.Connectors = slices.DeleteFunc(d.Connectors, func(s flow.Slot) bool { return removed[s.ID] })
	return nil
}

// remapBranches moves go-tos and highlighted connectors leaving the branches
// of parent to their new indices. moved[old] is the new index, or -1 for a
// branch that disappears.
func remapBranches(g *flow.Graph, parent string, moved []int) {
	remap := func(s flow.Slot) (flow.Slot, bool) {
		if s.ID != parent || s.Index < 0 {
			return s, true
		}
		if s.Index >= len(moved) || moved[s.Index] < 0 {
			return s, false
		}
		return flow.ChildSlot(parent, moved[s.Index]), true
	}

	gotos := make(map[flow.Slot]string, len(g.GoTos))
	for s, target := range g.GoTos {
		if to, ok := remap(s); ok {
			gotos[to] = target
		}
	}
	g.GoTos = gotos

	var conns []flow.Slot
	for _, s := range g.Decoration.Connectors {
		if to, ok := remap(s); ok {
			conns = append(conns, to)
		}
	}
	g.Decoration.Connectors = conns
}

func sortedSlots(m map[flow.Slot]string) []flow.Slot {
	return slices.SortedFunc(maps.Keys(m), func(a, b flow.Slot) int {
		if c := cmp.Compare(a.ID, b.ID); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
}
