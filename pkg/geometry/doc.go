// Package geometry provides the path and bounding-box math used by connector
// generation.
//
// Connectors are described as a start [Point] and a list of signed [Offset]
// segments. An offset with only a dx or only a dy component is a straight
// segment; an offset with both components is a quarter-circle turn and must
// have |dx| == |dy|. [BuildPath] turns such a list into SVG path data using a
// fixed command grammar:
//
//	M x,y
//	L x,y
//	A r r 0 0 <sweep> x,y
//
// with one command per line. [Bounds] computes the rectangle covered by the
// stroked path, including half the stroke width of bleed on every side a
// stroke touches.
//
// A curve offset whose magnitudes differ is a contract violation reported as
// an [errors.ErrCodeInvalidCurve] error. Callers must treat it as fatal: it
// means an upstream generator produced malformed input.
//
// [errors.ErrCodeInvalidCurve]: github.com/matzehuels/flowlayout/pkg/errors
package geometry
