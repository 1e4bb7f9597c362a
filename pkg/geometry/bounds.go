package geometry

// Bounds returns the rectangle covered by the path described by start and
// offsets when stroked with the given width.
//
// A vertical run bleeds half the stroke width to its left and right, a
// horizontal run above and below, and a quarter turn on every side of the
// square it spans. Line ends are butt-capped and add no bleed along the run.
// A path without segments yields an empty rectangle at start.
func Bounds(start Point, offsets []Offset, strokeWidth float64) Rect {
	half := strokeWidth / 2
	pos := start
	r := Rect{X: start.X, Y: start.Y}
	seen := false

	for _, o := range offsets {
		if o.IsZero() {
			continue
		}
		end := pos.Add(o)
		seg := rectFromPoints(pos, end)
		switch {
		case o.IsCurve():
			seg = Rect{X: seg.X - half, Y: seg.Y - half, W: seg.W + strokeWidth, H: seg.H + strokeWidth}
		case o.DX == 0:
			seg = Rect{X: seg.X - half, Y: seg.Y, W: strokeWidth, H: seg.H}
		default:
			seg = Rect{X: seg.X, Y: seg.Y - half, W: seg.W, H: strokeWidth}
		}
		if seen {
			r = r.Union(seg)
		} else {
			r, seen = seg, true
		}
		pos = end
	}
	return r
}

