package reducer

import (
	"slices"

	"github.com/google/uuid"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// newID generates element GUIDs.
var newID = uuid.NewString

// Reduce applies a to g and returns the resulting graph. g is never
// modified: every accepted action works on a clone.
//
// A rejected action returns g itself together with a coded error. After a
// structural action the result is settled and must pass [flow.Validate]:
// a branching element whose branches all end loses its continuation, and a
// root-level branching element that stops being terminal is followed by a
// new end element.
//
// Actions outside the closed set are a no-op.
func Reduce(g *flow.Graph, a Action) (*flow.Graph, error) {
	if init, ok := a.(Init); ok {
		return reduceInit(g, init)
	}
	if g == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no graph to apply %s to", typeName(a))
	}

	var apply func(*flow.Graph) error
	structural := true
	switch a := a.(type) {
	case AddElement:
		apply = a.apply
	case DeleteElement:
		apply = a.apply
	case AddFault:
		apply = a.apply
	case DeleteFault:
		apply = a.apply
	case ConnectToElement:
		apply = a.apply
	case CreateGoToConnection:
		apply = a.apply
	case DeleteGoToConnection:
		apply = a.apply
	case UpdateChildren:
		apply = a.apply
	case DecorateCanvas:
		apply, structural = a.apply, false
	case ClearCanvasDecoration:
		apply, structural = a.apply, false
	default:
		return g, nil
	}

	next := g.Clone()
	if err := apply(next); err != nil {
		return g, err
	}
	if structural {
		if err := settle(g, next); err != nil {
			return g, err
		}
		if err := flow.Validate(next); err != nil {
			return g, errors.Wrap(errors.ErrCodeInvalidGraph, err, "%s", a.Type())
		}
	}
	return next, nil
}

// settle recomputes terminal flags on g and repairs the continuations that a
// change in terminal status since prev invalidates.
func settle(prev, g *flow.Graph) error {
	for {
		flow.RecomputeTerminals(g)
		removed := make(map[string]bool)
		for _, id := range g.IDs() {
			n := g.Nodes[id]
			if !n.IsTerminal || removed[id] {
				continue
			}
			delete(g.GoTos, flow.NextSlot(id))
			if n.Next != "" {
				for r := range g.Subtree(n.Next) {
					removed[r] = true
				}
				n.Next = ""
			}
		}
		if len(removed) == 0 {
			break
		}
		if err := removeNodes(g, removed); err != nil {
			return err
		}
	}

	root, err := g.Root()
	if err != nil {
		return nil
	}
	tail, err := g.Tail(root.GUID)
	if err != nil || tail == nil || tail.Kind != flow.KindBranching || tail.IsTerminal {
		return nil
	}
	if !prev.ComputeTerminal(tail.GUID) {
		return nil
	}
	if _, jump := g.GoTo(flow.NextSlot(tail.GUID)); jump {
		return nil
	}
	end, err := addEnd(g, "")
	if err != nil {
		return err
	}
	tail.Next = end
	return nil
}

// closed rejects filling the next slot of a terminal branching element.
func closed(g *flow.Graph, s flow.Slot) error {
	if s.Index == flow.NextIndex && g.ComputeTerminal(s.ID) {
		return errors.New(errors.ErrCodeInvalidAction, "terminal element %q has no continuation", s.ID)
	}
	return nil
}

func typeName(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return string(a.Type())
}

func reduceInit(g *flow.Graph, a Init) (*flow.Graph, error) {
	var next *flow.Graph
	if a.Graph == nil {
		start, end := newID(), newID()
		next = flow.New(
			&flow.Node{GUID: start, Kind: flow.KindStart, Next: end},
			&flow.Node{GUID: end, Kind: flow.KindEnd},
		)
	} else {
		next = a.Graph.Clone()
	}
	flow.RecomputeTerminals(next)
	if err := flow.Validate(next); err != nil {
		return g, err
	}
	return next, nil
}

// =============================================================================
// Structural actions
// =============================================================================

func (a AddElement) apply(g *flow.Graph) error {
	src, err := g.Resolve(a.Source.ID)
	if err != nil {
		return err
	}
	content, err := g.SlotContent(a.Source)
	if err != nil {
		return err
	}
	switch {
	case a.Source.Index == flow.NextIndex && src.Kind == flow.KindEnd:
		return errors.New(errors.ErrCodeInvalidAction, "nothing can follow end element %q", src.GUID)
	case a.Source.Index == flow.FaultIndex && content == "":
		return errors.New(errors.ErrCodeInvalidAction, "element %q has no fault branch", src.GUID)
	case a.Element.Kind == flow.KindStart:
		return errors.New(errors.ErrCodeInvalidAction, "a flow has a single start element")
	}
	if err := closed(g, a.Source); err != nil {
		return err
	}

	n := a.Element.Clone()
	if n.GUID == "" {
		n.GUID = newID()
	}
	if err := errors.ValidateElementID(n.GUID); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidAction, err, "add element")
	}
	if _, dup := g.Nodes[n.GUID]; dup {
		return errors.New(errors.ErrCodeInvalidAction, "element %q already exists", n.GUID)
	}
	n.Next, n.Fault, n.IsTerminal = "", "", false
	n.Children = make([]string, n.ExpectedChildren())

	target, jump := g.GoTo(a.Source)
	if n.Kind == flow.KindEnd {
		if content != "" || jump {
			return errors.New(errors.ErrCodeSlotOccupied, "%s is not open; an end element cannot be inserted", a.Source)
		}
	} else {
		n.Next = content
		if jump {
			delete(g.GoTos, a.Source)
			g.GoTos[flow.NextSlot(n.GUID)] = target
		}
	}
	g.Nodes[n.GUID] = n
	return g.SetSlot(a.Source, n.GUID)
}

func (a DeleteElement) apply(g *flow.Graph) error {
	n, err := g.Resolve(a.ElementID)
	if err != nil {
		return err
	}
	if n.Kind == flow.KindStart {
		return errors.New(errors.ErrCodeInvalidAction, "the start element cannot be deleted")
	}
	if k := a.ChildIndexToKeep; k != nil && (*k < 0 || *k >= len(n.Children)) {
		return errors.New(errors.ErrCodeInvalidBranchIndex, "element %q has no branch %d to keep", n.GUID, *k)
	}
	pred, ok := g.Predecessor(n.GUID)
	if !ok {
		return errors.New(errors.ErrCodeInvalidGraph, "element %q has no predecessor", n.GUID)
	}

	removed := g.DeletionSet(n.GUID, a.ChildIndexToKeep)
	nextSlot := flow.NextSlot(n.GUID)
	target, jump := g.GoTo(nextSlot)
	delete(g.GoTos, nextSlot)

	replacement := n.Next
	var kept string
	if k := a.ChildIndexToKeep; k != nil {
		kept = n.Children[*k]
	}
	if kept != "" {
		tail, err := g.Tail(kept)
		if err != nil {
			return err
		}
		if g.IsChainTerminal(kept) {
			if n.Next != "" || jump {
				return errors.New(errors.ErrCodeInvalidAction, "branch %d of %q ends the flow; its continuation would be lost", *a.ChildIndexToKeep, n.GUID)
			}
		} else {
			tail.Next = n.Next
			if jump {
				g.GoTos[flow.NextSlot(tail.GUID)] = target
			}
		}
		replacement = kept
	} else if jump {
		g.GoTos[pred] = target
	}

	if err := g.SetSlot(pred, replacement); err != nil {
		return err
	}
	n.Next = ""
	return removeNodes(g, removed)
}

func (a AddFault) apply(g *flow.Graph) error {
	n, err := g.Resolve(a.ElementID)
	if err != nil {
		return err
	}
	switch {
	case !n.CanHaveFault():
		return errors.New(errors.ErrCodeInvalidAction, "%s element %q cannot have a fault branch", n.Kind, n.GUID)
	case n.Fault != "":
		return errors.New(errors.ErrCodeSlotOccupied, "element %q already has a fault branch", n.GUID)
	case g.IsInFault(n.GUID):
		return errors.New(errors.ErrCodeInvalidAction, "element %q lies inside a fault branch", n.GUID)
	}
	end, err := addEnd(g, a.EndID)
	if err != nil {
		return err
	}
	n.Fault = end
	return nil
}

func (a DeleteFault) apply(g *flow.Graph) error {
	n, err := g.Resolve(a.ElementID)
	if err != nil {
		return err
	}
	if n.Fault == "" {
		return errors.New(errors.ErrCodeInvalidAction, "element %q has no fault branch", n.GUID)
	}
	removed := g.Subtree(n.Fault)
	n.Fault = ""
	return removeNodes(g, removed)
}

func (a ConnectToElement) apply(g *flow.Graph) error {
	src, err := g.Resolve(a.Source.ID)
	if err != nil {
		return err
	}
	if _, err := g.Resolve(a.TargetID); err != nil {
		return err
	}
	switch {
	case a.Source.Index == flow.FaultIndex:
		return errors.New(errors.ErrCodeInvalidBranchIndex, "a fault branch cannot be connected")
	case a.Source.Index == flow.NextIndex && src.Kind == flow.KindEnd:
		return errors.New(errors.ErrCodeInvalidAction, "end element %q has no outgoing connector", src.GUID)
	}
	if _, jump := g.GoTo(a.Source); jump {
		return errors.New(errors.ErrCodeSlotOccupied, "%s already has a go-to", a.Source)
	}
	if err := closed(g, a.Source); err != nil {
		return err
	}

	if content, err := g.SlotContent(a.Source); err != nil {
		return err
	} else if content == a.TargetID {
		return errors.New(errors.ErrCodeInvalidAction, "%s already continues with %q", a.Source, a.TargetID)
	}

	merge, merges := g.MergeTarget(a.Source)
	if err := open(g, a.Source); err != nil {
		return err
	}

	if a.IsMergeableTarget {
		if !merges || merge != a.TargetID {
			return errors.New(errors.ErrCodeInvalidAction, "%s does not merge into %q", a.Source, a.TargetID)
		}
		return nil
	}
	if g.Nodes[a.TargetID].Kind == flow.KindStart {
		return errors.New(errors.ErrCodeInvalidAction, "the start element cannot be a go-to target")
	}
	g.GoTos[a.Source] = a.TargetID
	return nil
}

func (a CreateGoToConnection) apply(g *flow.Graph) error {
	return ConnectToElement{
		Source:   flow.Slot{ID: a.SourceID, Index: a.BranchIndex},
		TargetID: a.TargetID,
	}.apply(g)
}

func (a DeleteGoToConnection) apply(g *flow.Graph) error {
	s := flow.Slot{ID: a.SourceID, Index: a.BranchIndex}
	if _, err := g.Resolve(s.ID); err != nil {
		return err
	}
	if _, jump := g.GoTo(s); !jump {
		return errors.New(errors.ErrCodeNotFound, "%s has no go-to", s)
	}
	delete(g.GoTos, s)
	end, err := addEnd(g, a.EndID)
	if err != nil {
		return err
	}
	return g.SetSlot(s, end)
}

func (a UpdateChildren) apply(g *flow.Graph) error {
	p, err := g.Resolve(a.ParentID)
	if err != nil {
		return err
	}
	if p.Kind != flow.KindBranching {
		return errors.New(errors.ErrCodeInvalidAction, "%s element %q has no outcomes", p.Kind, p.GUID)
	}
	seen := make(map[string]bool, len(a.References))
	for _, r := range a.References {
		if r.Name == "" || seen[r.Name] {
			return errors.New(errors.ErrCodeInvalidAction, "outcome names must be unique and non-empty, got %q", r.Name)
		}
		seen[r.Name] = true
	}

	terminal := g.ComputeTerminal(p.GUID)

	// moved maps each old branch index to its new one, -1 when dropped.
	moved := make([]int, len(p.Children))
	for i := range moved {
		moved[i] = -1
	}
	children := make([]string, len(a.References)+1)
	for i, r := range a.References {
		j := slices.IndexFunc(p.ChildReferences, func(old flow.ChildReference) bool { return old.Name == r.Name })
		if j >= 0 && j < len(p.Children)-1 {
			children[i] = p.Children[j]
			moved[j] = i
		}
	}
	if last := len(p.Children) - 1; last >= 0 {
		children[len(children)-1] = p.Children[last]
		moved[last] = len(children) - 1
	}

	removed := make(map[string]bool)
	for j, to := range moved {
		if to < 0 {
			for id := range g.Subtree(p.Children[j]) {
				removed[id] = true
			}
		}
	}
	remapBranches(g, p.GUID, moved)

	// New outcomes of a terminal element end too, so it stays terminal.
	if terminal {
		kept := make(map[int]bool, len(moved))
		for _, to := range moved {
			kept[to] = true
		}
		for i := range children {
			if kept[i] {
				continue
			}
			end, err := addEnd(g, "")
			if err != nil {
				return err
			}
			children[i] = end
		}
	}

	p.Children = children
	p.ChildReferences = slices.Clone(a.References)
	return removeNodes(g, removed)
}

// =============================================================================
// Canvas decoration
// =============================================================================

func (a DecorateCanvas) apply(g *flow.Graph) error {
	for _, id := range a.Decoration.Elements {
		if _, err := g.Resolve(id); err != nil {
			return err
		}
	}
	for _, s := range a.Decoration.Connectors {
		if _, err := g.Resolve(s.ID); err != nil {
			return err
		}
	}
	g.Decoration = a.Decoration.Clone()
	return nil
}

func (ClearCanvasDecoration) apply(g *flow.Graph) error {
	g.Decoration = flow.Decoration{}
	return nil
}
