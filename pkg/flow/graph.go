package flow

import (
	"maps"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// Graph is a process graph: nodes keyed by GUID, rooted at a single start
// node, plus the go-to overlay and the canvas highlight overlay.
//
// Graphs are treated as immutable snapshots. Edits go through Clone and
// produce a new Graph, so a previous snapshot stays valid for readers such
// as an in-flight animation.
type Graph struct {
	Nodes map[string]*Node
	// GoTos maps an empty source slot to the node it jumps to. Go-to edges
	// are the only edges allowed to give a node a second incoming edge.
	GoTos map[Slot]string
	// Decoration is a highlight overlay with no structural meaning.
	Decoration Decoration
}

// New creates a graph holding the given nodes.
func New(nodes ...*Node) *Graph {
	g := &Graph{
		Nodes: make(map[string]*Node, len(nodes)),
		GoTos: make(map[Slot]string),
	}
	for _, n := range nodes {
		g.Nodes[n.GUID] = n
	}
	return g
}

// Clone returns a deep copy of g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		Nodes:      make(map[string]*Node, len(g.Nodes)),
		GoTos:      maps.Clone(g.GoTos),
		Decoration: g.Decoration.Clone(),
	}
	if c.GoTos == nil {
		c.GoTos = make(map[Slot]string)
	}
	for id, n := range g.Nodes {
		c.Nodes[id] = n.Clone()
	}
	return c
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.Nodes) }

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.Nodes[id]
	return n, ok
}

// Resolve returns the node with the given id or a NODE_NOT_FOUND error.
func (g *Graph) Resolve(id string) (*Node, error) {
	if n, ok := g.Nodes[id]; ok {
		return n, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "unknown element %q", id)
}

// IDs returns all node ids in sorted order.
func (g *Graph) IDs() []string {
	return slices.Sorted(maps.Keys(g.Nodes))
}

// Root returns the start node.
func (g *Graph) Root() (*Node, error) {
	var root *Node
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		if n.Kind != KindStart {
			continue
		}
		if root != nil {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "multiple start elements: %q and %q", root.GUID, n.GUID)
		}
		root = n
	}
	if root == nil {
		return nil, errors.New(errors.ErrCodeInvalidGraph, "flow has no start element")
	}
	return root, nil
}

// SlotContent returns the id stored in slot ("" when the slot is empty).
// Loop connector sentinels never hold nodes and are rejected.
func (g *Graph) SlotContent(s Slot) (string, error) {
	n, err := g.Resolve(s.ID)
	if err != nil {
		return "", err
	}
	switch {
	case s.Index == NextIndex:
		return n.Next, nil
	case s.Index == FaultIndex:
		return n.Fault, nil
	case s.Index >= 0 && s.Index < len(n.Children):
		return n.Children[s.Index], nil
	}
	return "", errors.New(errors.ErrCodeInvalidBranchIndex, "element %q has no branch %d", s.ID, s.Index)
}

// SetSlot stores id in slot. It performs no invariant checks; callers are
// responsible for keeping the graph a tree.
func (g *Graph) SetSlot(s Slot, id string) error {
	n, err := g.Resolve(s.ID)
	if err != nil {
		return err
	}
	switch {
	case s.Index == NextIndex:
		n.Next = id
	case s.Index == FaultIndex:
		n.Fault = id
	case s.Index >= 0 && s.Index < len(n.Children):
		n.Children[s.Index] = id
	default:
		return errors.New(errors.ErrCodeInvalidBranchIndex, "element %q has no branch %d", s.ID, s.Index)
	}
	return nil
}

// BranchHead returns the head of branch index of parent, where index may
// also be FaultIndex.
func (g *Graph) BranchHead(parentID string, index int) (string, error) {
	if index == NextIndex {
		return "", errors.New(errors.ErrCodeInvalidBranchIndex, "next slot of %q is not a branch", parentID)
	}
	return g.SlotContent(Slot{ID: parentID, Index: index})
}

// Chain returns the nodes reached by following next pointers from head.
// An empty head yields an empty chain.
func (g *Graph) Chain(head string) ([]*Node, error) {
	var chain []*Node
	for id := head; id != ""; {
		n, err := g.Resolve(id)
		if err != nil {
			return nil, err
		}
		chain = append(chain, n)
		if len(chain) > len(g.Nodes) {
			return nil, errors.New(errors.ErrCodeInvalidGraph, "cycle through %q", id)
		}
		id = n.Next
	}
	return chain, nil
}

// GoTo returns the go-to target attached to slot.
func (g *Graph) GoTo(s Slot) (string, bool) {
	t, ok := g.GoTos[s]
	return t, ok
}

// Predecessors indexes every structural edge by its target: the returned map
// holds, for each node with an incoming edge, the slot pointing at it. When a
// node has several incoming edges the map keeps the first one in sorted id
// order; Validate reports such graphs.
func (g *Graph) Predecessors() map[string]Slot {
	idx := make(map[string]Slot, len(g.Nodes))
	add := func(target string, s Slot) {
		if target == "" {
			return
		}
		if _, dup := idx[target]; !dup {
			idx[target] = s
		}
	}
	for _, id := range g.IDs() {
		n := g.Nodes[id]
		add(n.Next, NextSlot(id))
		add(n.Fault, FaultSlot(id))
		for i, c := range n.Children {
			add(c, ChildSlot(id, i))
		}
	}
	return idx
}

// Predecessor returns the slot pointing at id.
func (g *Graph) Predecessor(id string) (Slot, bool) {
	s, ok := g.Predecessors()[id]
	return s, ok
}

// Owner returns the branch slot (child or fault) whose chain contains id.
// Nodes on the root chain have no owner.
func (g *Graph) Owner(id string) (Slot, bool) {
	return owner(g.Predecessors(), id)
}

func owner(preds map[string]Slot, id string) (Slot, bool) {
	for steps := 0; steps <= len(preds); steps++ {
		s, ok := preds[id]
		if !ok {
			return Slot{}, false
		}
		if s.Index != NextIndex {
			return s, true
		}
		id = s.ID
	}
	return Slot{}, false
}

// IsInFault reports whether id lies inside some node's fault branch.
func (g *Graph) IsInFault(id string) bool {
	preds := g.Predecessors()
	for steps := 0; steps <= len(g.Nodes); steps++ {
		s, ok := owner(preds, id)
		if !ok {
			return false
		}
		if s.Index == FaultIndex {
			return true
		}
		id = s.ID
	}
	return false
}

// Tail returns the last node of the chain starting at head.
func (g *Graph) Tail(head string) (*Node, error) {
	chain, err := g.Chain(head)
	if err != nil || len(chain) == 0 {
		return nil, err
	}
	return chain[len(chain)-1], nil
}

// MergeTarget returns the node that a branch tail in slot's branch flows
// into when it merges back: the owning branching node's continuation, or the
// loop node itself for a loop body. It reports false when nothing follows
// (root chain, fault branches, or a continuation that is itself a go-to).
func (g *Graph) MergeTarget(s Slot) (string, bool) {
	preds := g.Predecessors()
	var o Slot
	if s.Index == NextIndex {
		var ok bool
		if o, ok = owner(preds, s.ID); !ok {
			return "", false
		}
	} else {
		o = s
	}
	for steps := 0; steps <= len(g.Nodes); steps++ {
		if o.Index == FaultIndex {
			return "", false
		}
		parent, ok := g.Nodes[o.ID]
		if !ok {
			return "", false
		}
		if parent.Kind == KindLoop {
			return parent.GUID, true
		}
		if parent.Next != "" {
			return parent.Next, true
		}
		if _, jump := g.GoTos[NextSlot(parent.GUID)]; jump {
			return "", false
		}
		if o, ok = owner(preds, parent.GUID); !ok {
			return "", false
		}
	}
	return "", false
}

// Subtree returns every node reachable from head through next pointers,
// branches and fault branches, head included.
func (g *Graph) Subtree(head string) map[string]bool {
	out := make(map[string]bool)
	g.collect(head, out)
	return out
}

// Descendants returns the nodes inside id's branches and fault branch,
// excluding id itself and its continuation.
func (g *Graph) Descendants(id string) map[string]bool {
	out := make(map[string]bool)
	n, ok := g.Nodes[id]
	if !ok {
		return out
	}
	for _, c := range n.Children {
		g.collect(c, out)
	}
	g.collect(n.Fault, out)
	return out
}

func (g *Graph) collect(head string, out map[string]bool) {
	for id := head; id != "" && !out[id]; {
		n, ok := g.Nodes[id]
		if !ok {
			return
		}
		out[id] = true
		for _, c := range n.Children {
			g.collect(c, out)
		}
		g.collect(n.Fault, out)
		id = n.Next
	}
}

// DeletionSet returns the nodes that disappear when id is deleted while
// keeping branch keep (nil keeps none): id itself, its fault branch and every
// branch other than the kept one.
func (g *Graph) DeletionSet(id string, keep *int) map[string]bool {
	n, ok := g.Nodes[id]
	if !ok || keep == nil {
		out := g.Descendants(id)
		out[id] = true
		return out
	}
	out := map[string]bool{id: true}
	for i, c := range n.Children {
		if *keep == i {
			continue
		}
		g.collect(c, out)
	}
	g.collect(n.Fault, out)
	return out
}
