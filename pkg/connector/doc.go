// Package connector generates SVG paths for the lines joining flow elements.
//
// Each generator is a pure function of [Dimensions], [Margins] and [Style]
// that returns an [SVGInfo]: the path string and the bounding rectangle of the
// stroked path. The rectangle is expressed relative to the connector's anchor,
// the point the caller positions the connector at, and always contains the
// anchor itself. The path is translated into the rectangle's frame, so it can
// be drawn directly into an SVG element of that size.
//
// Every generator first builds an offset list (see [geometry.BuildPath]) and
// derives both the path and the bounds from it, so the two always agree.
// Curve radii shrink when the requested dimensions are too small to fit them.
//
// The generators and their anchors:
//
//	Straight       top of a vertical line
//	GoTo           top of a vertical line that turns right into a jump stub
//	BranchLeft     branch centerline at the level of the horizontal branch line;
//	BranchRight    the line runs from the parent centerline out to the branch
//	MergeLeft      branch centerline at the branch bottom; the line runs back
//	MergeRight     to the parent centerline and ends at the join point
//	LoopBack       loop centerline at the bottom of the loop body
//	LoopAfterLast  loop centerline at the icon center
//	Fault          element centerline at the icon center
package connector
