package flow

import (
	"fmt"
	"slices"
)

// Kind is the discriminant of a [Node]. Behavior that differs between kinds
// switches on it exhaustively.
type Kind int

const (
	// KindSimple has a single predecessor and a single successor.
	KindSimple Kind = iota
	// KindBranching owns an ordered, fixed-arity list of branches
	// (decision outcomes, fork paths). The last branch is the default one.
	KindBranching
	// KindLoop owns exactly one body branch plus an implicit continuation.
	KindLoop
	// KindStart is the root of the flow.
	KindStart
	// KindEnd terminates a branch.
	KindEnd
)

var kindNames = map[Kind]string{
	KindSimple:    "simple",
	KindBranching: "branching",
	KindLoop:      "loop",
	KindStart:     "start",
	KindEnd:       "end",
}

// String returns the lowercase kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind converts a kind name back into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Sentinel branch indices. They lie outside the ordinary [0, n) range of
// Node.Children so they can never collide with a real branch.
const (
	// FaultIndex addresses a node's fault branch.
	FaultIndex = -1
	// LoopBackIndex addresses a loop's back-edge connector.
	LoopBackIndex = -2
	// LoopAfterLastIndex addresses a loop's exit connector.
	LoopAfterLastIndex = -3
	// NextIndex addresses a node's outgoing next slot.
	NextIndex = -4
)

// Slot names one outgoing structural position of a node: its next pointer,
// one of its branches, or its fault branch.
type Slot struct {
	ID    string `json:"id" yaml:"id"`
	Index int    `json:"index" yaml:"index"`
}

// NextSlot returns the slot of id's next pointer.
func NextSlot(id string) Slot { return Slot{ID: id, Index: NextIndex} }

// ChildSlot returns the slot of id's i-th branch.
func ChildSlot(id string, i int) Slot { return Slot{ID: id, Index: i} }

// FaultSlot returns the slot of id's fault branch.
func FaultSlot(id string) Slot { return Slot{ID: id, Index: FaultIndex} }

// IsBranch reports whether the slot addresses an ordinary branch.
func (s Slot) IsBranch() bool { return s.Index >= 0 }

func (s Slot) String() string {
	switch s.Index {
	case NextIndex:
		return s.ID + ".next"
	case FaultIndex:
		return s.ID + ".fault"
	case LoopBackIndex:
		return s.ID + ".loopBack"
	case LoopAfterLastIndex:
		return s.ID + ".afterLast"
	}
	return fmt.Sprintf("%s[%d]", s.ID, s.Index)
}

// ChildReference names one outcome of a branching node.
type ChildReference struct {
	Name  string `json:"name" yaml:"name"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
}

// Node is one element of a process graph.
//
// Empty strings stand for null references: Next == "" means the node is the
// tail of its branch, Children[i] == "" means branch i is empty.
type Node struct {
	GUID  string `json:"guid" yaml:"guid"`
	Type  string `json:"type,omitempty" yaml:"type,omitempty"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Kind  Kind   `json:"kind" yaml:"kind"`

	Next  string `json:"next,omitempty" yaml:"next,omitempty"`
	Fault string `json:"fault,omitempty" yaml:"fault,omitempty"`

	// Children holds branch heads for branching and loop nodes.
	Children []string `json:"children,omitempty" yaml:"children,omitempty"`
	// ChildReferences names the non-default outcomes of a branching node.
	ChildReferences []ChildReference `json:"childReferences,omitempty" yaml:"childReferences,omitempty"`
	// DefaultLabel labels the default outcome, or a loop's body connector.
	DefaultLabel string `json:"defaultLabel,omitempty" yaml:"defaultLabel,omitempty"`

	// IsTerminal is computed: no branch of the node ever reaches the
	// continuation. Only branching nodes can be terminal.
	IsTerminal bool `json:"isTerminal,omitempty" yaml:"isTerminal,omitempty"`
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := *n
	c.Children = slices.Clone(n.Children)
	c.ChildReferences = slices.Clone(n.ChildReferences)
	return &c
}

// ExpectedChildren returns the number of branches the node's kind requires.
func (n *Node) ExpectedChildren() int {
	switch n.Kind {
	case KindBranching:
		return len(n.ChildReferences) + 1
	case KindLoop:
		return 1
	case KindSimple, KindStart, KindEnd:
		return 0
	}
	return 0
}

// CanHaveFault reports whether a fault branch may be attached to the node.
func (n *Node) CanHaveFault() bool {
	switch n.Kind {
	case KindSimple, KindBranching, KindLoop:
		return true
	case KindStart, KindEnd:
		return false
	}
	return false
}

// BranchLabel returns the badge label of branch i: the outcome label for
// ordinary outcomes and DefaultLabel for the default branch or loop body.
func (n *Node) BranchLabel(i int) string {
	if i >= 0 && i < len(n.ChildReferences) {
		ref := n.ChildReferences[i]
		if ref.Label != "" {
			return ref.Label
		}
		return ref.Name
	}
	return n.DefaultLabel
}
