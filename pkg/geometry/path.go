package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlayout/pkg/errors"
)

// BuildPath renders the offset list as SVG path data starting at start.
//
// Zero offsets are skipped. Straight offsets become line commands. Curve
// offsets become quarter-circle arcs with radius |dx|; the sweep flag is
// chosen so the arc leaves in the direction the previous segment was heading,
// which keeps the path tangent-continuous. When a curve opens the path its
// entry direction is derived from the segment that follows it: a following
// vertical run means the arc ends vertically and therefore starts
// horizontally, anything else means it starts vertically.
//
// It returns an [errors.ErrCodeInvalidCurve] error for a curve offset whose
// horizontal and vertical magnitudes differ.
func BuildPath(start Point, offsets []Offset) (string, error) {
	cmds := []string{moveTo(start)}
	pos := start
	var heading Offset

	for i, o := range offsets {
		if o.IsZero() {
			continue
		}
		end := pos.Add(o)
		if o.IsCurve() {
			if math.Abs(o.DX) != math.Abs(o.DY) {
				return "", errors.New(errors.ErrCodeInvalidCurve,
					"invalid offsets for curve: [%s, %s]", formatNumber(o.DX), formatNumber(o.DY))
			}
			in := heading
			if in.IsZero() {
				next, ok := nextSegment(offsets, i)
				in = entryHeading(o, next, ok)
			}
			cmds = append(cmds, arcTo(math.Abs(o.DX), sweepFlag(in, o), end))
			heading = exitHeading(in, o)
		} else {
			cmds = append(cmds, lineTo(end))
			heading = Offset{DX: sign(o.DX), DY: sign(o.DY)}
		}
		pos = end
	}

	return strings.Join(cmds, "\n"), nil
}

// MustBuildPath is like BuildPath but panics on a contract violation.
// It is meant for offset lists constructed from constants.
func MustBuildPath(start Point, offsets []Offset) string {
	path, err := BuildPath(start, offsets)
	if err != nil {
		panic(err)
	}
	return path
}

// nextSegment returns the first non-zero offset after index i.
func nextSegment(offsets []Offset, i int) (Offset, bool) {
	for _, o := range offsets[i+1:] {
		if !o.IsZero() {
			return o, true
		}
	}
	return Offset{}, false
}

// entryHeading infers the direction a path is travelling when curve c opens it.
func entryHeading(c Offset, next Offset, ok bool) Offset {
	if ok && !next.IsCurve() && next.DX == 0 {
		return Offset{DX: sign(c.DX)}
	}
	return Offset{DY: sign(c.DY)}
}

// exitHeading returns the direction a quarter turn leaves in.
func exitHeading(in, c Offset) Offset {
	if in.DY == 0 {
		return Offset{DY: sign(c.DY)}
	}
	return Offset{DX: sign(c.DX)}
}

// sweepFlag returns 1 for a clockwise turn on screen (y grows downward).
func sweepFlag(in, c Offset) int {
	if in.DX*c.DY-in.DY*c.DX > 0 {
		return 1
	}
	return 0
}

func moveTo(p Point) string {
	return "M " + formatPoint(p)
}

func lineTo(p Point) string {
	return "L " + formatPoint(p)
}

func arcTo(r float64, sweep int, p Point) string {
	rs := formatNumber(r)
	return "A " + rs + " " + rs + " 0 0 " + strconv.Itoa(sweep) + " " + formatPoint(p)
}

func formatPoint(p Point) string {
	return formatNumber(p.X) + "," + formatNumber(p.Y)
}

// formatNumber prints v in its shortest round-tripping decimal form.
func formatNumber(v float64) string {
	if v == 0 {
		v = 0 // normalizes -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
