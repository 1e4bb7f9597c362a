package flow

// Terminals computes terminal flags from structure alone, ignoring the
// stored IsTerminal fields. Results are memoized per node.
type Terminals struct {
	g    *Graph
	memo map[string]bool
	busy map[string]bool
}

// NewTerminals returns an evaluator over g. g must not change while it is in use.
func NewTerminals(g *Graph) *Terminals {
	return &Terminals{g: g, memo: make(map[string]bool), busy: make(map[string]bool)}
}

// Node reports whether id is a terminal branching node.
func (t *Terminals) Node(id string) bool {
	if v, ok := t.memo[id]; ok {
		return v
	}
	n, ok := t.g.Nodes[id]
	if !ok || n.Kind != KindBranching || len(n.Children) == 0 || t.busy[id] {
		return false
	}
	t.busy[id] = true
	v := true
	for i := range n.Children {
		if !t.Branch(ChildSlot(id, i)) {
			v = false
			break
		}
	}
	delete(t.busy, id)
	t.memo[id] = v
	return v
}

// Branch reports whether the branch held by slot is terminal.
func (t *Terminals) Branch(s Slot) bool {
	head, err := t.g.SlotContent(s)
	if err != nil {
		return false
	}
	if head == "" {
		_, jump := t.g.GoTos[s]
		return jump
	}
	return t.Chain(head)
}

// Chain reports whether the chain starting at head is terminal.
func (t *Terminals) Chain(head string) bool {
	id := head
	for steps := 0; steps <= len(t.g.Nodes); steps++ {
		n, ok := t.g.Nodes[id]
		if !ok {
			return false
		}
		switch n.Kind {
		case KindEnd:
			return true
		case KindBranching:
			if t.Node(id) {
				return true
			}
		case KindSimple, KindLoop, KindStart:
		}
		if n.Next == "" {
			_, jump := t.g.GoTos[NextSlot(id)]
			return jump
		}
		id = n.Next
	}
	return false
}

// IsBranchTerminal reports whether the branch held by slot never merges back
// into its parent's continuation. Slot may address an ordinary branch or the
// fault branch.
func (g *Graph) IsBranchTerminal(s Slot) bool {
	return NewTerminals(g).Branch(s)
}

// IsChainTerminal reports whether the chain starting at head ends without
// falling through its last node.
func (g *Graph) IsChainTerminal(head string) bool {
	return NewTerminals(g).Chain(head)
}

// ComputeTerminal returns the terminal flag id should carry.
func (g *Graph) ComputeTerminal(id string) bool {
	return NewTerminals(g).Node(id)
}

// RecomputeTerminals refreshes IsTerminal on every node of g in place and
// returns the ids whose flag changed. It must only be called on a graph the
// caller owns, typically a fresh Clone.
func RecomputeTerminals(g *Graph) []string {
	t := NewTerminals(g)
	var changed []string
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		v := t.Node(id)
		if n.IsTerminal != v {
			n.IsTerminal = v
			changed = append(changed, id)
		}
	}
	return changed
}

// Ancestors returns the branching and loop nodes that own id, innermost
// first.
func (g *Graph) Ancestors(id string) []string {
	preds := g.Predecessors()
	var out []string
	for steps := 0; steps <= len(g.Nodes); steps++ {
		s, ok := owner(preds, id)
		if !ok {
			break
		}
		out = append(out, s.ID)
		id = s.ID
	}
	return out
}
