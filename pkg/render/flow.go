package render

import (
	"maps"
	"math"
	"slices"

	"github.com/matzehuels/flowlayout/pkg/connector"
	"github.com/matzehuels/flowlayout/pkg/errors"
	"github.com/matzehuels/flowlayout/pkg/flow"
	"github.com/matzehuels/flowlayout/pkg/geometry"
	"github.com/matzehuels/flowlayout/pkg/layout"
)

const eps = 1e-9

// Flow lays out ctx.Graph at the given animation progress and builds its
// render tree. When ctx.PreviousLayout is set the layout is interpolated from
// it, and a pending deletion collapses the elements it removes.
func Flow(ctx Context, progress float64) (*FlowRenderInfo, error) {
	if ctx.Graph == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render context has no graph")
	}
	m, err := layout.Compute(ctx.Graph, ctx.Config, LayoutOptions(ctx, progress)...)
	if err != nil {
		return nil, err
	}
	return Build(ctx, m)
}

// LayoutOptions returns the layout options Flow computes ctx's layout with.
func LayoutOptions(ctx Context, progress float64) []layout.Option {
	opts := []layout.Option{layout.WithProgress(progress)}
	if ctx.PreviousLayout != nil {
		opts = append(opts, layout.WithPrevious(ctx.PreviousLayout))
		if d := ctx.Interaction.Deletion; d != nil && ctx.Graph != nil {
			set := ctx.Graph.DeletionSet(d.ElementID, d.ChildIndexToKeep)
			opts = append(opts, layout.WithDeleting(slices.Sorted(maps.Keys(set))...))
		}
	}
	return opts
}

// Build builds the render tree of ctx.Graph from a precomputed layout.
func Build(ctx Context, m *layout.Maps) (*FlowRenderInfo, error) {
	if ctx.Graph == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "render context has no graph")
	}
	if d := ctx.Interaction.Deletion; d != nil {
		if _, err := ctx.Graph.Resolve(d.ElementID); err != nil {
			return nil, err
		}
	}
	root, err := ctx.Graph.Root()
	if err != nil {
		return nil, err
	}

	b := &builder{
		g:        ctx.Graph,
		cfg:      ctx.Config,
		style:    ctx.Config.Style(),
		m:        m,
		ia:       ctx.Interaction,
		selected: make(map[string]bool, len(ctx.Interaction.Selected)),
	}
	for _, id := range ctx.Interaction.Selected {
		b.selected[id] = true
	}

	nodes, err := b.chain(root.GUID, state{}, tail{})
	if err != nil {
		return nil, err
	}
	return &FlowRenderInfo{
		Geometry:   geometry.Rect{W: m.Width, H: m.Height},
		Nodes:      nodes,
		IsTerminal: ctx.Graph.IsChainTerminal(root.GUID),
	}, nil
}

// state is threaded by value through the recursion. A branch renders with
// its parent's state plus whatever its own position adds.
type state struct {
	isFault          bool
	isDeletingBranch bool
}

// tail tells the last element of a branch how far its outgoing connector must
// reach to meet the merge line.
type tail struct {
	set      bool
	extendTo float64
}

type builder struct {
	g        *flow.Graph
	cfg      layout.Config
	style    connector.Style
	m        *layout.Maps
	ia       Interaction
	selected map[string]bool
}

func (b *builder) chain(head string, st state, t tail) ([]*NodeRenderInfo, error) {
	var out []*NodeRenderInfo
	for id := head; id != ""; {
		n, err := b.g.Resolve(id)
		if err != nil {
			return nil, err
		}
		var nt tail
		if n.Next == "" {
			nt = t
		}
		ni, err := b.node(n, st, nt)
		if err != nil {
			return nil, err
		}
		out = append(out, ni)
		id = n.Next
	}
	return out, nil
}

func (b *builder) node(n *flow.Node, st state, t tail) (*NodeRenderInfo, error) {
	info, err := b.nodeInfo(n.GUID)
	if err != nil {
		return nil, err
	}
	deleting := st.isDeletingBranch || b.ia.Deletion.deletes(n.GUID)
	iconH := b.iconHeight(n, info)
	cx := info.CenterX()

	ni := &NodeRenderInfo{
		GUID:          n.GUID,
		Type:          n.Type,
		Label:         n.Label,
		Kind:          n.Kind,
		Geometry:      info.Rect(),
		Icon:          geometry.Rect{X: cx - b.cfg.Node.IconWidth/2, Y: info.Y, W: b.cfg.Node.IconWidth, H: iconH},
		IsTerminal:    n.IsTerminal,
		IsSelected:    b.selected[n.GUID],
		IsHighlighted: b.g.Decoration.HasElement(n.GUID),
		MenuOpened:    b.ia.MenuElement == n.GUID,
		ToBeDeleted:   deleting,
		IsFault:       st.isFault,
	}

	switch n.Kind {
	case flow.KindBranching:
		if err := b.branches(n, info, ni, st, iconH); err != nil {
			return nil, err
		}
	case flow.KindLoop:
		if err := b.loop(n, info, ni, st, iconH); err != nil {
			return nil, err
		}
	case flow.KindSimple, flow.KindStart, flow.KindEnd:
	}
	if n.Fault != "" {
		if err := b.fault(n, info, ni, st, iconH); err != nil {
			return nil, err
		}
	}

	next, err := b.nextConnector(n, info, st, t)
	if err != nil {
		return nil, err
	}
	ni.NextConnector = next
	return ni, nil
}

// =============================================================================
// Connectors leaving an element
// =============================================================================

func (b *builder) nextConnector(n *flow.Node, info *layout.Info, st state, t tail) (*ConnectorRenderInfo, error) {
	slot := flow.NextSlot(n.GUID)
	anchor := geometry.Point{X: info.CenterX(), Y: info.Y + info.JoinOffsetY}
	straight := info.H - info.JoinOffsetY
	margins := b.cfg.Connector.Margins

	var c *ConnectorRenderInfo
	var err error
	switch target, jump := b.g.GoTo(slot); {
	case jump:
		c, err = b.connector(connector.TypeGoTo, slot, anchor, connector.Dimensions{Height: straight}, margins.GoTo, 0)
		if c != nil {
			c.GoToTarget = target
		}
	case n.Next != "":
		c, err = b.connector(connector.TypeStraight, slot, anchor, connector.Dimensions{Height: straight}, margins.Straight,
			info.AddOffset-info.JoinOffsetY)
	case t.set && t.extendTo > anchor.Y+eps:
		h := t.extendTo - anchor.Y
		c, err = b.connector(connector.TypeStraight, slot, anchor, connector.Dimensions{Height: h},
			connector.Margins{Top: margins.Straight.Top}, math.Min(h, b.cfg.Connector.StraightHeight)/2)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.IsFault = st.isFault
	c.ToBeDeleted = st.isDeletingBranch || (b.ia.Deletion.deletes(n.GUID) && !b.keepsContent(n))
	return c, nil
}

func (b *builder) branches(n *flow.Node, info *layout.Info, ni *NodeRenderInfo, st state, iconH float64) error {
	count := len(n.Children)
	infos := make([]*layout.BranchInfo, count)
	left, right := -1, -1
	for i := range n.Children {
		bi, err := b.branchInfo(n.GUID, i)
		if err != nil {
			return err
		}
		infos[i] = bi
		if !bi.IsTerminal {
			if left < 0 {
				left = i
			}
			right = i
		}
	}

	margins := b.cfg.Connector.Margins
	iconBottom := info.Y + iconH
	joinY := info.Y + info.JoinOffsetY
	mergeLine := joinY - margins.Merge.Bottom - 2*b.mergeRadius(infos, left, right, joinY)

	for i, bi := range infos {
		slot := flow.ChildSlot(n.GUID, i)
		head := n.Children[i]
		cst := st
		if b.ia.Deletion.deletes(n.GUID) && !b.ia.Deletion.keeps(n.GUID, i) {
			cst.isDeletingBranch = true
		}

		center := math.Abs(bi.OffsetX) < eps
		edge := i == 0 || i == count-1
		variant := branchVariant(center, edge, i == left || i == right)
		bx := bi.CenterX()

		pre, err := b.preHeight(head, bi)
		if err != nil {
			return err
		}

		// Merging branches that do not own a merge-back line extend their
		// tail down to the shared merge line, or to the join on the centerline.
		ownsMerge := !bi.IsTerminal && !center &&
			((i == left && bi.OffsetX < 0) || (i == right && bi.OffsetX > 0))
		var t tail
		if !bi.IsTerminal && !ownsMerge {
			t = tail{set: true, extendTo: mergeLine}
			if center {
				t.extendTo = joinY
			}
		}

		top := bi.Y
		switch {
		case center:
			top = iconBottom
		case !edge:
			top = math.Min(iconBottom+margins.Branch.Top, bi.Y)
		}
		h := bi.Y + pre - top
		if head == "" && t.set {
			h = math.Max(h, t.extendTo-top)
		}
		pc, err := b.branchConnector(slot, geometry.Point{X: bx, Y: top}, h, bi.Y+pre/2-top)
		if err != nil {
			return err
		}
		pc.Variant = variant
		pc.LabelType = connector.LabelBranch
		pc.Label = n.BranchLabel(i)
		pc.IsFault = st.isFault
		pc.ToBeDeleted = cst.isDeletingBranch

		if edge && !center {
			typ := connector.TypeBranchRight
			if bi.OffsetX < 0 {
				typ = connector.TypeBranchLeft
			}
			c, err := b.connector(typ, slot, geometry.Point{X: bx, Y: iconBottom},
				connector.Dimensions{Width: math.Abs(bi.OffsetX), Height: bi.Y - iconBottom}, margins.Branch, 0)
			if err != nil {
				return err
			}
			c.Variant = variant
			c.IsFault = st.isFault
			c.ToBeDeleted = cst.isDeletingBranch
			ni.LogicConnectors = append(ni.LogicConnectors, c)
		}

		if ownsMerge {
			typ := connector.TypeMergeRight
			if bi.OffsetX < 0 {
				typ = connector.TypeMergeLeft
			}
			c, err := b.connector(typ, slot, geometry.Point{X: bx, Y: bi.Bottom()},
				connector.Dimensions{Width: math.Abs(bi.OffsetX), Height: joinY - bi.Bottom()}, margins.Merge, 0)
			if err != nil {
				return err
			}
			c.Variant = variant
			c.IsFault = st.isFault
			c.ToBeDeleted = cst.isDeletingBranch
			ni.LogicConnectors = append(ni.LogicConnectors, c)
		}

		nodes, err := b.chain(head, cst, t)
		if err != nil {
			return err
		}
		ni.Flows = append(ni.Flows, &FlowRenderInfo{
			Geometry:     branchRect(bi),
			Nodes:        nodes,
			IsTerminal:   bi.IsTerminal,
			IsFault:      st.isFault,
			IsDeleting:   cst.isDeletingBranch,
			PreConnector: pc,
		})
	}
	return nil
}

func (b *builder) loop(n *flow.Node, info *layout.Info, ni *NodeRenderInfo, st state, iconH float64) error {
	bi, err := b.branchInfo(n.GUID, 0)
	if err != nil {
		return err
	}
	cst := st
	if b.ia.Deletion.deletes(n.GUID) && !b.ia.Deletion.keeps(n.GUID, 0) {
		cst.isDeletingBranch = true
	}
	head := n.Children[0]
	cx := info.CenterX()
	margins := b.cfg.Connector.Margins
	lane := b.cfg.Loop.Padding / 2
	iconMid := info.Y + iconH/2

	pre, err := b.preHeight(head, bi)
	if err != nil {
		return err
	}
	pc, err := b.branchConnector(flow.ChildSlot(n.GUID, 0), geometry.Point{X: cx, Y: bi.Y}, pre, pre/2)
	if err != nil {
		return err
	}
	pc.Variant = connector.VariantLoop
	pc.LabelType = connector.LabelLoop
	pc.Label = n.BranchLabel(0)
	pc.IsFault = st.isFault
	pc.ToBeDeleted = cst.isDeletingBranch

	if !bi.IsTerminal {
		c, err := b.connector(connector.TypeLoopBack, flow.Slot{ID: n.GUID, Index: flow.LoopBackIndex},
			geometry.Point{X: cx, Y: bi.Bottom()},
			connector.Dimensions{Width: info.LeftWidth - lane, Height: bi.Bottom() - iconMid}, margins.Loop, 0)
		if err != nil {
			return err
		}
		c.Variant = connector.VariantLoop
		c.IsFault = st.isFault
		c.ToBeDeleted = cst.isDeletingBranch
		ni.LogicConnectors = append(ni.LogicConnectors, c)
	}

	c, err := b.connector(connector.TypeLoopAfterLast, flow.Slot{ID: n.GUID, Index: flow.LoopAfterLastIndex},
		geometry.Point{X: cx, Y: iconMid},
		connector.Dimensions{Width: info.W - info.LeftWidth - lane, Height: info.JoinOffsetY - iconH/2}, margins.Loop, 0)
	if err != nil {
		return err
	}
	c.Variant = connector.VariantLoop
	c.IsFault = st.isFault
	c.ToBeDeleted = st.isDeletingBranch || b.ia.Deletion.deletes(n.GUID)
	ni.LogicConnectors = append(ni.LogicConnectors, c)

	nodes, err := b.chain(head, cst, tail{})
	if err != nil {
		return err
	}
	ni.Flows = append(ni.Flows, &FlowRenderInfo{
		Geometry:     branchRect(bi),
		Nodes:        nodes,
		IsTerminal:   bi.IsTerminal,
		IsFault:      st.isFault,
		IsDeleting:   cst.isDeletingBranch,
		PreConnector: pc,
	})
	return nil
}

func (b *builder) fault(n *flow.Node, info *layout.Info, ni *NodeRenderInfo, st state, iconH float64) error {
	fb, err := b.branchInfo(n.GUID, flow.FaultIndex)
	if err != nil {
		return err
	}
	fst := state{isFault: true, isDeletingBranch: st.isDeletingBranch || b.ia.Deletion.deletes(n.GUID)}
	slot := flow.FaultSlot(n.GUID)
	iconMid := info.Y + iconH/2

	c, err := b.connector(connector.TypeFault, slot, geometry.Point{X: info.CenterX(), Y: iconMid},
		connector.Dimensions{Width: fb.OffsetX, Height: fb.Y - iconMid}, b.cfg.Connector.Margins.Fault, 0)
	if err != nil {
		return err
	}
	c.LabelType = connector.LabelFault
	c.Label = "Fault"
	c.IsFault = true
	c.ToBeDeleted = fst.isDeletingBranch
	ni.LogicConnectors = append(ni.LogicConnectors, c)

	pre, err := b.preHeight(n.Fault, fb)
	if err != nil {
		return err
	}
	pc, err := b.branchConnector(slot, geometry.Point{X: fb.CenterX(), Y: fb.Y}, pre, pre/2)
	if err != nil {
		return err
	}
	pc.IsFault = true
	pc.ToBeDeleted = fst.isDeletingBranch

	nodes, err := b.chain(n.Fault, fst, tail{})
	if err != nil {
		return err
	}
	ni.FaultFlow = &FlowRenderInfo{
		Geometry:     branchRect(fb),
		Nodes:        nodes,
		IsTerminal:   fb.IsTerminal,
		IsFault:      true,
		IsDeleting:   fst.isDeletingBranch,
		PreConnector: pc,
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

// connector generates a connector anchored at anchor. add is the insertion
// affordance's offset below the anchor, or 0 for none.
func (b *builder) connector(typ connector.Type, src flow.Slot, anchor geometry.Point, d connector.Dimensions, m connector.Margins, add float64) (*ConnectorRenderInfo, error) {
	svg, err := connector.Generate(typ, d, m, b.style)
	if err != nil {
		return nil, err
	}
	c := &ConnectorRenderInfo{
		Type:          typ,
		Source:        src,
		Geometry:      svg.Geometry.Translate(anchor.X, anchor.Y),
		Path:          svg.Path,
		IsHighlighted: b.g.Decoration.HasConnector(src),
		MenuOpened:    b.ia.MenuConnector != nil && *b.ia.MenuConnector == src,
	}
	if add > 0 {
		c.AddOffset = add - svg.Geometry.Y
	}
	return c, nil
}

// branchConnector renders the connector leading into a branch: a straight
// line, or a go-to stub when the empty branch jumps elsewhere.
func (b *builder) branchConnector(slot flow.Slot, anchor geometry.Point, h, add float64) (*ConnectorRenderInfo, error) {
	margins := b.cfg.Connector.Margins
	if target, jump := b.g.GoTo(slot); jump {
		c, err := b.connector(connector.TypeGoTo, slot, anchor, connector.Dimensions{Height: h}, margins.GoTo, 0)
		if err != nil {
			return nil, err
		}
		c.GoToTarget = target
		return c, nil
	}
	return b.connector(connector.TypeStraight, slot, anchor, connector.Dimensions{Height: h}, margins.Straight, add)
}

func (b *builder) nodeInfo(id string) (*layout.Info, error) {
	if info, ok := b.m.Node(id); ok {
		return info, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "no layout for element %q", id)
}

func (b *builder) branchInfo(id string, i int) (*layout.BranchInfo, error) {
	if bi, ok := b.m.Branch(id, i); ok {
		return bi, nil
	}
	return nil, errors.New(errors.ErrCodeNodeNotFound, "no layout for branch %s", flow.Slot{ID: id, Index: i})
}

// preHeight returns the height of a branch's pre-connector: the gap between
// the branch top and its first element, or the whole branch when empty.
func (b *builder) preHeight(head string, bi *layout.BranchInfo) (float64, error) {
	if head == "" {
		return bi.H, nil
	}
	info, err := b.nodeInfo(head)
	if err != nil {
		return 0, err
	}
	return info.Y - bi.Y, nil
}

// iconHeight recovers the drawn icon height from the layout, which shrinks
// it while an element is animated away.
func (b *builder) iconHeight(n *flow.Node, info *layout.Info) float64 {
	icon := b.cfg.Node.IconHeight
	switch n.Kind {
	case flow.KindBranching:
		if bi, ok := b.m.Branch(n.GUID, 0); ok {
			if span := icon + b.cfg.Connector.BranchHeight; span > 0 {
				return (bi.Y - info.Y) * icon / span
			}
		}
	case flow.KindLoop:
		if bi, ok := b.m.Branch(n.GUID, 0); ok {
			return bi.Y - info.Y
		}
	case flow.KindSimple, flow.KindStart, flow.KindEnd:
		return info.JoinOffsetY
	}
	return math.Min(icon, info.H)
}

// mergeRadius returns the curve radius the outer merge-back lines end up
// with. Their horizontal run lies two radii above the join point, which is
// where interior branches stop.
func (b *builder) mergeRadius(infos []*layout.BranchInfo, left, right int, joinY float64) float64 {
	r := b.cfg.Connector.CurveRadius
	m := b.cfg.Connector.Margins.Merge
	for _, i := range []int{left, right} {
		if i < 0 || math.Abs(infos[i].OffsetX) < eps {
			continue
		}
		fall := math.Max(joinY-infos[i].Bottom()-m.Top-m.Bottom, 0)
		r = math.Min(r, math.Min(math.Abs(infos[i].OffsetX)/2, fall/3))
	}
	return math.Max(r, 0)
}

// keepsContent reports whether a pending deletion of n leaves a non-empty
// branch behind to take over n's outgoing connector.
func (b *builder) keepsContent(n *flow.Node) bool {
	d := b.ia.Deletion
	if d == nil || d.ChildIndexToKeep == nil {
		return false
	}
	i := *d.ChildIndexToKeep
	return i >= 0 && i < len(n.Children) && n.Children[i] != ""
}

// branchVariant selects the styling of a branch's connectors.
func branchVariant(center, edge, outermostMerging bool) connector.Variant {
	switch {
	case center:
		return connector.VariantCenter
	case edge:
		return connector.VariantEdge
	case outermostMerging:
		return connector.VariantEdgeBottom
	}
	return connector.VariantDefault
}

func branchRect(bi *layout.BranchInfo) geometry.Rect {
	return geometry.Rect{X: bi.X, Y: bi.Y, W: bi.W, H: bi.H}
}
