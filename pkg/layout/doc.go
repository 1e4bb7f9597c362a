// Package layout computes pixel geometry for process graphs.
//
// [Compute] turns a [flow.Graph] into [Maps]: one [Info] per element and one
// [BranchInfo] per branch, keyed by parent and branch index. Coordinates are
// absolute, with the flow's left edge at x = 0 and its start element at
// y = 0.
//
// # Widths
//
// Simple elements are one grid cell wide. A branching element is exactly as
// wide as its branches side by side, and a branch is as wide as the widest
// element in it. With an odd number of branches the middle one sits on the
// parent centerline; with an even number the two middle ones meet there.
// Elements can therefore extend further on one side than the other, which is
// why [Info] carries LeftWidth. Loops add padding on both sides of their body
// for the loop-back and exit lanes. Fault branches hang to the right of
// everything below their element and do not count toward its width.
//
// # Heights
//
// Elements stack along their chain, separated by straight connectors. All
// branches of an element start at the same y. The join offset of a branching
// element lies below its deepest merging branch; terminal branches never
// merge and do not push it down.
//
// # Animation
//
// Given a previous layout via [WithPrevious], every field is interpolated
// linearly at [WithProgress]. Elements missing from the previous layout grow
// from zero height, and elements passed to [WithDeleting] collapse to zero
// height, so an edit can be animated before it is committed.
//
// # Example
//
//	m, err := layout.Compute(g, layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	info := m.Nodes["decision-1"]
//	fmt.Println(info.X, info.Y, info.W, info.H)
package layout
