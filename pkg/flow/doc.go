// Package flow models process graphs for the auto-layout engine.
//
// A [Graph] is a tree of [Node] values rooted at a single start node. Every
// node except the start has exactly one structural predecessor: some node's
// next pointer, one of a branching or loop node's branches, or some node's
// fault branch. Go-to jumps are kept apart from the tree in [Graph.GoTos] so
// the layout can rely on tree shape.
//
// Structural positions are addressed with [Slot] values. Ordinary branches use
// their index; the fault branch, loop connectors and next pointer use the
// sentinel indices [FaultIndex], [LoopBackIndex], [LoopAfterLastIndex] and
// [NextIndex].
//
// # Terminal branches
//
// A branch is terminal when it never merges back into its parent's
// continuation: its chain reaches an end node or a terminal branching node, or
// its last slot jumps elsewhere through a go-to. A branching node is terminal
// when all of its branches are. Loops are never terminal since their exit is
// always reachable. [RecomputeTerminals] refreshes the stored flags and
// [Validate] checks the full set of invariants.
package flow
