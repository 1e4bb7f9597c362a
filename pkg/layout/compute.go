package layout

import (
	"math"

	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
)

// Option configures Compute.
type Option func(*options)

type options struct {
	progress float64
	previous *Maps
	deleting map[string]bool
}

// WithProgress sets the animation progress in [0, 1]. It only has an effect
// together with WithPrevious. The default is 1.
func WithProgress(p float64) Option { return func(o *options) { o.progress = p } }

// WithPrevious supplies the layout to animate from.
func WithPrevious(m *Maps) Option { return func(o *options) { o.previous = m } }

// WithDeleting marks elements that are being removed. They stay in the
// layout with their vertical extent collapsed to zero so that an animation
// can shrink them away before the edit is committed.
func WithDeleting(ids ...string) Option {
	return func(o *options) {
		for _, id := range ids {
			o.deleting[id] = true
		}
	}
}

// Compute lays out g.
//
// The calculation runs in two passes. The measure pass walks every chain
// bottom-up and sizes elements and branches: extents left and right of each
// centerline, heights and join offsets. The place pass walks top-down from
// the start element and assigns absolute coordinates. When a previous layout
// is supplied the result is interpolated from it at the given progress.
//
// Compute does not validate g. An id that cannot be resolved yields an
// [errors.ErrCodeNodeNotFound] error.
func Compute(g *flow.Graph, cfg Config, opts ...Option) (*Maps, error) {
	o := options{progress: 1, deleting: make(map[string]bool)}
	for _, opt := range opts {
		opt(&o)
	}
	if err := errors.ValidateProgress(o.progress); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := g.Root()
	if err != nil {
		return nil, err
	}

	c := &calculator{
		g:        g,
		cfg:      cfg,
		deleting: o.deleting,
		terms:    flow.NewTerminals(g),
		nodes:    make(map[string]*nodeSize, len(g.Nodes)),
		branches: make(map[BranchKey]*branchSize),
	}
	ext, _, err := c.measureChain(root.GUID)
	if err != nil {
		return nil, err
	}

	out := newMaps(len(g.Nodes))
	c.placeChain(root.GUID, ext.L, 0, out)

	if o.previous != nil {
		out = interpolate(out, o.previous, o.progress)
	}
	out.Width, out.Height = bounds(out)
	return out, nil
}

type extent struct {
	L, R float64
}

type nodeSize struct {
	extent
	H, Join, Add float64
	// scale is 0 for elements being deleted and 1 otherwise.
	scale float64
}

type branchSize struct {
	extent
	H, Pre   float64
	Offset   float64
	Terminal bool
}

type calculator struct {
	g        *flow.Graph
	cfg      Config
	deleting map[string]bool
	terms    *flow.Terminals

	nodes    map[string]*nodeSize
	branches map[BranchKey]*branchSize
}

// =============================================================================
// Measure pass
// =============================================================================

// measureChain sizes every element of the chain starting at head and returns
// the chain's extents, fault branches included, and its height.
func (c *calculator) measureChain(head string) (extent, float64, error) {
	chain, err := c.g.Chain(head)
	if err != nil {
		return extent{}, 0, err
	}

	var h float64
	sizes := make([]*nodeSize, len(chain))
	for i, n := range chain {
		ns, err := c.measureNode(n)
		if err != nil {
			return extent{}, 0, err
		}
		sizes[i] = ns
		h += ns.H
	}

	// Fault branches hang to the right of everything below their element,
	// so walk the chain bottom-up tracking the rightmost extent seen so far.
	var ext extent
	var reach float64
	for i := len(chain) - 1; i >= 0; i-- {
		n, ns := chain[i], sizes[i]
		if n.Fault != "" {
			fb, err := c.measureBranch(flow.FaultSlot(n.GUID), ns.scale)
			if err != nil {
				return extent{}, 0, err
			}
			fb.Offset = math.Max(ns.R, reach) + fb.L
			reach = math.Max(reach, fb.Offset+fb.R)
		}
		reach = math.Max(reach, ns.R)
		ext.L = math.Max(ext.L, ns.L)
	}
	ext.R = reach
	return ext, h, nil
}

func (c *calculator) measureBranch(s flow.Slot, parentScale float64) (*branchSize, error) {
	head, err := c.g.SlotContent(s)
	if err != nil {
		return nil, err
	}
	ext, h, err := c.measureChain(head)
	if err != nil {
		return nil, err
	}
	if head == "" {
		half := c.cfg.Grid.Width / 2
		ext = extent{L: half, R: half}
	}
	pre := parentScale * c.cfg.Connector.PreConnectorHeight
	bs := &branchSize{
		extent:   ext,
		H:        pre + h,
		Pre:      pre,
		Terminal: c.terms.Branch(s),
	}
	c.branches[Key(s)] = bs
	return bs, nil
}

func (c *calculator) measureNode(n *flow.Node) (*nodeSize, error) {
	cfg := c.cfg
	ns := &nodeSize{scale: 1}
	if c.deleting[n.GUID] {
		ns.scale = 0
	}
	icon := ns.scale * cfg.Node.IconHeight

	switch n.Kind {
	case flow.KindSimple, flow.KindStart, flow.KindEnd:
		half := cfg.Grid.Width / 2
		ns.extent = extent{L: half, R: half}
		ns.Join = icon

	case flow.KindBranching:
		sizes := make([]*branchSize, len(n.Children))
		for i := range n.Children {
			bs, err := c.measureBranch(flow.ChildSlot(n.GUID, i), ns.scale)
			if err != nil {
				return nil, err
			}
			sizes[i] = bs
		}
		ns.extent = arrange(sizes, cfg.Grid.Width/2)
		ns.Join = joinOffset(sizes, ns.scale*(cfg.Node.IconHeight+cfg.Connector.BranchHeight), ns.scale*cfg.Connector.MergeHeight, icon)

	case flow.KindLoop:
		if len(n.Children) == 0 {
			return nil, errors.New(errors.ErrCodeInvalidBranchIndex, "loop %q has no body", n.GUID)
		}
		body, err := c.measureBranch(flow.ChildSlot(n.GUID, 0), ns.scale)
		if err != nil {
			return nil, err
		}
		ns.extent = extent{L: body.L + cfg.Loop.Padding, R: body.R + cfg.Loop.Padding}
		ns.Join = icon + body.H + ns.scale*cfg.Loop.BottomHeight
	}

	var straight float64
	if c.hasContinuation(n) && (ns.scale > 0 || c.keepsBranch(n)) {
		straight = cfg.Connector.StraightHeight
	}
	ns.H = ns.Join + straight
	ns.Add = ns.Join + straight/2
	c.nodes[n.GUID] = ns
	return ns, nil
}

// hasContinuation reports whether a straight connector leaves n.
func (c *calculator) hasContinuation(n *flow.Node) bool {
	if n.Next != "" {
		return true
	}
	_, jump := c.g.GoTos[flow.NextSlot(n.GUID)]
	return jump
}

// keepsBranch reports whether a deleted element leaves one of its branches
// behind. That branch inherits the element's outgoing connector.
func (c *calculator) keepsBranch(n *flow.Node) bool {
	for _, head := range n.Children {
		if head != "" && !c.deleting[head] {
			return true
		}
	}
	return false
}

// arrange assigns branch offsets relative to the parent centerline and
// returns the parent's extents. Branches are packed side by side. With an odd
// count the middle branch sits on the centerline; with an even count the two
// middle branches meet on it.
func arrange(sizes []*branchSize, half float64) extent {
	n := len(sizes)
	if n == 0 {
		return extent{L: half, R: half}
	}
	lo, hi := n/2, n/2
	if n%2 == 0 {
		lo = hi - 1
		sizes[lo].Offset = -sizes[lo].R
		sizes[hi].Offset = sizes[hi].L
	} else {
		sizes[lo].Offset = 0
	}
	for i := hi + 1; i < n; i++ {
		sizes[i].Offset = sizes[i-1].Offset + sizes[i-1].R + sizes[i].L
	}
	for i := lo - 1; i >= 0; i-- {
		sizes[i].Offset = sizes[i+1].Offset - sizes[i+1].L - sizes[i].R
	}
	return extent{
		L: sizes[0].L - sizes[0].Offset,
		R: sizes[n-1].Offset + sizes[n-1].R,
	}
}

// joinOffset returns where the branches of an element reconverge, measured
// from the element's top. Terminal branches never merge and are ignored
// unless every branch is terminal, in which case the deepest one bounds the
// element.
func joinOffset(sizes []*branchSize, top, merge, icon float64) float64 {
	if len(sizes) == 0 {
		return icon
	}
	var deepest, merging float64
	anyMerging := false
	for _, bs := range sizes {
		bottom := top + bs.H
		deepest = math.Max(deepest, bottom)
		if !bs.Terminal {
			merging = math.Max(merging, bottom)
			anyMerging = true
		}
	}
	if anyMerging {
		return merging + merge
	}
	return deepest
}

// =============================================================================
// Place pass
// =============================================================================

func (c *calculator) placeChain(head string, cx, y float64, out *Maps) {
	for id := head; id != ""; {
		n := c.g.Nodes[id]
		ns := c.nodes[id]
		c.placeNode(n, ns, cx, y, out)
		y += ns.H
		id = n.Next
	}
}

func (c *calculator) placeNode(n *flow.Node, ns *nodeSize, cx, y float64, out *Maps) {
	out.Nodes[n.GUID] = &Info{
		X:           cx - ns.L,
		Y:           y,
		W:           ns.L + ns.R,
		H:           ns.H,
		LeftWidth:   ns.L,
		JoinOffsetY: ns.Join,
		AddOffset:   ns.Add,
	}

	icon := ns.scale * c.cfg.Node.IconHeight
	switch n.Kind {
	case flow.KindBranching:
		top := y + ns.scale*(c.cfg.Node.IconHeight+c.cfg.Connector.BranchHeight)
		for i := range n.Children {
			c.placeBranch(flow.ChildSlot(n.GUID, i), cx, top, out)
		}
	case flow.KindLoop:
		c.placeBranch(flow.ChildSlot(n.GUID, 0), cx, y+icon, out)
	case flow.KindSimple, flow.KindStart, flow.KindEnd:
	}
	if n.Fault != "" {
		c.placeBranch(flow.FaultSlot(n.GUID), cx, y+icon, out)
	}
}

func (c *calculator) placeBranch(s flow.Slot, parentCX, top float64, out *Maps) {
	key := Key(s)
	bs := c.branches[key]
	bx := parentCX + bs.Offset
	out.Branches[key] = &BranchInfo{
		X:          bx - bs.L,
		Y:          top,
		W:          bs.L + bs.R,
		H:          bs.H,
		OffsetX:    bs.Offset,
		LeftWidth:  bs.L,
		IsTerminal: bs.Terminal,
	}
	head, _ := c.g.SlotContent(s)
	c.placeChain(head, bx, top+bs.Pre, out)
}

// bounds returns the width and height covering every element and branch.
func bounds(m *Maps) (w, h float64) {
	for _, i := range m.Nodes {
		w = math.Max(w, i.X+i.W)
		h = math.Max(h, i.Y+i.H)
	}
	for _, b := range m.Branches {
		w = math.Max(w, b.X+b.W)
		h = math.Max(h, b.Y+b.H)
	}
	return w, h
}
