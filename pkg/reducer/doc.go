// Package reducer applies editing actions to process graphs.
//
// [Reduce] is a pure function from a graph and an [Action] to a new graph.
// The action set is closed: adding and deleting elements, attaching and
// removing fault branches, go-to edges, reordering decision outcomes and the
// canvas highlight overlay. Each accepted structural edit leaves a graph that
// passes [flow.Validate]: single predecessors, consistent branch arity and
// terminal flags recomputed up every affected ancestor chain.
//
// A rejected action never produces a partial edit. Reduce returns the input
// graph unchanged together with a coded error from [errors]:
//
//	next, err := reducer.Reduce(g, reducer.AddElement{
//		Source:  flow.NextSlot("start"),
//		Element: flow.Node{Kind: flow.KindSimple, Label: "Assign"},
//	})
//	if errors.Is(err, errors.ErrCodeSlotOccupied) {
//		// next == g
//	}
package reducer
