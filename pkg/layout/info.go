package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/geometry"
)

// Info is the computed geometry of one element.
//
// X and Y are the top-left corner of the element's box. The box spans the
// element and everything nested inside its branches, but not its fault
// branch. Elements may be asymmetric around their centerline, which lies
// LeftWidth to the right of X.
type Info struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	LeftWidth float64 `json:"leftWidth"`
	// JoinOffsetY is the offset from Y at which the element's branches
	// reconverge. For elements without branches it is the icon bottom.
	JoinOffsetY float64 `json:"joinOffsetY"`
	// AddOffset is the offset from Y of the insertion affordance on the
	// element's outgoing connector.
	AddOffset float64 `json:"addOffset"`

	// Prev is the snapshot this info was interpolated from.
	Prev *Info `json:"prevLayout,omitempty"`
}

// CenterX returns the x coordinate of the element's centerline.
func (i *Info) CenterX() float64 { return i.X + i.LeftWidth }

// Rect returns the element's box.
func (i *Info) Rect() geometry.Rect { return geometry.Rect{X: i.X, Y: i.Y, W: i.W, H: i.H} }

// BranchInfo is the computed geometry of one branch of an element, or of its
// fault branch. Y is the top of the branch's pre-connector.
type BranchInfo struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	// OffsetX is the branch centerline relative to the parent centerline.
	OffsetX   float64 `json:"offsetX"`
	LeftWidth float64 `json:"leftWidth"`

	IsTerminal bool `json:"isTerminal,omitempty"`

	Prev *BranchInfo `json:"prevLayout,omitempty"`
}

// CenterX returns the x coordinate of the branch centerline.
func (b *BranchInfo) CenterX() float64 { return b.X + b.LeftWidth }

// Bottom returns the y coordinate of the branch's last element bottom.
func (b *BranchInfo) Bottom() float64 { return b.Y + b.H }

// BranchKey addresses a branch by its parent and index. The fault branch
// uses [flow.FaultIndex].
type BranchKey struct {
	ParentID string
	Index    int
}

// Key returns the branch key addressing slot.
func Key(s flow.Slot) BranchKey { return BranchKey{ParentID: s.ID, Index: s.Index} }

// MarshalText implements encoding.TextMarshaler so that branch maps encode
// as JSON objects keyed "parent/index".
func (k BranchKey) MarshalText() ([]byte, error) {
	return []byte(k.ParentID + "/" + strconv.Itoa(k.Index)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BranchKey) UnmarshalText(b []byte) error {
	s := string(b)
	i := strings.LastIndexByte(s, '/')
	if i < 0 {
		return fmt.Errorf("invalid branch key %q", s)
	}
	idx, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return fmt.Errorf("invalid branch key %q: %w", s, err)
	}
	k.ParentID, k.Index = s[:i], idx
	return nil
}

// Maps is the layout of a whole flow.
type Maps struct {
	Nodes    map[string]*Info          `json:"nodes"`
	Branches map[BranchKey]*BranchInfo `json:"branches"`
	// Width and Height bound every element and branch, fault branches
	// included. The flow's left edge is at x = 0.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func newMaps(n int) *Maps {
	return &Maps{
		Nodes:    make(map[string]*Info, n),
		Branches: make(map[BranchKey]*BranchInfo),
	}
}

// Node returns the layout of id.
func (m *Maps) Node(id string) (*Info, bool) {
	i, ok := m.Nodes[id]
	return i, ok
}

// Branch returns the layout of the branch at key.
func (m *Maps) Branch(parentID string, index int) (*BranchInfo, bool) {
	b, ok := m.Branches[BranchKey{ParentID: parentID, Index: index}]
	return b, ok
}
