package connector

import (
	"math"

	"github.com/matzehuels/flowlayout/pkg/geometry"
)

type offset = geometry.Offset

// Straight draws a vertical line of the given height, starting Top below the
// anchor and ending Bottom above the nominal end.
func Straight(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	return build(geometry.Point{Y: m.Top}, []offset{
		{DY: d.Height - m.Top - m.Bottom},
	}, s.StrokeWidth)
}

// GoTo draws a vertical run that turns right into a short horizontal stub,
// a quarter grid cell wide, marking a jump to another element.
func GoTo(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	run := nonNegative(d.Height - m.Top - m.Bottom)
	stub := s.GridWidth / 4
	r := radius(s, run, stub/2)
	return build(geometry.Point{Y: m.Top}, []offset{
		{DY: run - r},
		{DX: r, DY: r},
		{DX: stub - 2*r},
	}, s.StrokeWidth)
}

// BranchLeft draws the branch-out line of a branch lying left of its parent.
// It starts on the parent centerline, Width to the right of the anchor, runs
// left, turns down onto the branch centerline and drops to Height.
func BranchLeft(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	return branch(d, m, s, -1)
}

// BranchRight mirrors BranchLeft for a branch right of its parent.
func BranchRight(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	return branch(d, m, s, 1)
}

func branch(d Dimensions, m Margins, s Style, dir float64) (SVGInfo, error) {
	w := math.Abs(d.Width)
	drop := nonNegative(d.Height - m.Top - m.Bottom)
	r := radius(s, w, drop)
	return build(geometry.Point{X: -dir * w, Y: m.Top}, []offset{
		{DX: dir * (w - r)},
		{DX: dir * r, DY: r},
		{DY: drop - r},
	}, s.StrokeWidth)
}

// MergeLeft draws the merge-back line of a branch lying left of its parent.
// It runs down from the branch bottom, turns toward the parent centerline,
// crosses Width horizontally, turns down again and runs one curve radius to
// the join point at Height. Horizontal travel is split evenly around the two
// turns.
func MergeLeft(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	return merge(d, m, s, 1)
}

// MergeRight mirrors MergeLeft for a branch right of its parent.
func MergeRight(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	return merge(d, m, s, -1)
}

func merge(d Dimensions, m Margins, s Style, dir float64) (SVGInfo, error) {
	w := math.Abs(d.Width)
	fall := nonNegative(d.Height - m.Top - m.Bottom)
	r := radius(s, w/2, fall/3)
	return build(geometry.Point{Y: m.Top}, []offset{
		{DY: fall - 3*r},
		{DX: dir * r, DY: r},
		{DX: dir * (w - 2*r)},
		{DX: dir * r, DY: r},
		{DY: r},
	}, s.StrokeWidth)
}

// LoopBack draws a loop's return edge. It leaves the bottom of the loop body,
// turns left into a horizontal run out to the loop lane Width left of the
// centerline, climbs Height back to the icon center and turns right into the
// left edge of the loop icon.
func LoopBack(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	w := math.Abs(d.Width)
	half := s.IconWidth / 2
	climb := nonNegative(d.Height + m.Top)
	r := radius(s, w/2, w-half, climb/2)
	return build(geometry.Point{Y: m.Top}, []offset{
		{DX: -r, DY: r},
		{DX: -(w - 2*r)},
		{DX: -r, DY: -r},
		{DY: -(climb - r)},
		{DX: r, DY: -r},
		{DX: w - r - half},
	}, s.StrokeWidth)
}

// LoopAfterLast draws a loop's exit edge. It leaves the right edge of the loop
// icon, runs out to the loop lane Width right of the centerline, descends,
// and turns back under the loop onto the centerline, ending Height below the
// anchor at the loop's join point.
func LoopAfterLast(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	w := math.Abs(d.Width)
	half := s.IconWidth / 2
	fall := nonNegative(d.Height - m.Top - m.Bottom)
	r := radius(s, w/2, w-half, fall/3)
	return build(geometry.Point{X: half, Y: m.Top}, []offset{
		{DX: w - half - r},
		{DX: r, DY: r},
		{DY: fall - 3*r},
		{DX: -r, DY: r},
		{DX: -(w - 2*r)},
		{DX: -r, DY: r},
	}, s.StrokeWidth)
}

// Fault draws the line from the right edge of an element's icon out to its
// fault branch, Width right of the centerline, dropping Height to the top of
// the fault branch.
func Fault(d Dimensions, m Margins, s Style) (SVGInfo, error) {
	w := math.Abs(d.Width)
	half := s.IconWidth / 2
	drop := nonNegative(d.Height - m.Top - m.Bottom)
	r := radius(s, w-half, drop)
	return build(geometry.Point{X: half, Y: m.Top}, []offset{
		{DX: w - half - r},
		{DX: r, DY: r},
		{DY: drop - r},
	}, s.StrokeWidth)
}

// Generate dispatches to the generator for t.
func Generate(t Type, d Dimensions, m Margins, s Style) (SVGInfo, error) {
	switch t {
	case TypeStraight:
		return Straight(d, m, s)
	case TypeGoTo:
		return GoTo(d, m, s)
	case TypeBranchLeft:
		return BranchLeft(d, m, s)
	case TypeBranchRight:
		return BranchRight(d, m, s)
	case TypeMergeLeft:
		return MergeLeft(d, m, s)
	case TypeMergeRight:
		return MergeRight(d, m, s)
	case TypeLoopBack:
		return LoopBack(d, m, s)
	case TypeLoopAfterLast:
		return LoopAfterLast(d, m, s)
	case TypeFault:
		return Fault(d, m, s)
	}
	return Straight(d, m, s)
}

// build derives bounds and path from one offset list. The bounds include the
// anchor and the path is shifted into the bounds' frame.
func build(start geometry.Point, offsets []offset, strokeWidth float64) (SVGInfo, error) {
	bounds := geometry.Bounds(start, offsets, strokeWidth).Union(geometry.Rect{})
	local := geometry.Point{X: start.X - bounds.X, Y: start.Y - bounds.Y}
	path, err := geometry.BuildPath(local, offsets)
	if err != nil {
		return SVGInfo{}, err
	}
	return SVGInfo{Path: path, Geometry: bounds}, nil
}

// radius returns the style's curve radius shrunk to fit every limit.
func radius(s Style, limits ...float64) float64 {
	r := s.CurveRadius
	for _, l := range limits {
		r = math.Min(r, l)
	}
	return nonNegative(r)
}

func nonNegative(v float64) float64 {
	return math.Max(v, 0)
}
