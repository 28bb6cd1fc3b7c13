// Package cfgutil provides the three leaf-level CFG utilities every later
// pass in the ARC pipeline is built on (spec §4.1): postorder traversal,
// predecessor maps, and invoke-def collection. These are pure functions of
// a single ir.Function — no analysis, no mutation.
package cfgutil

import "oriarc/internal/ir"

// Postorder returns the function's blocks in DFS-completion order from the
// entry block: every block appears after all of its successors that are
// reachable without passing back through it first. Unreachable blocks
// (no path from entry) are appended afterward in block-id order, so every
// block in the function appears exactly once — liveness and RC insertion
// must still process unreachable blocks safely (spec §4.1 edge case).
//
// The backward liveness fixed point (internal/liveness) iterates this
// order as returned, scheduling successors before predecessors (spec
// §4.1); internal/ownership walks it in reverse for its forward scan.
func Postorder(fn *ir.Function) []ir.BlockId {
	visited := make([]bool, len(fn.Blocks))
	order := make([]ir.BlockId, 0, len(fn.Blocks))

	var visit func(id ir.BlockId)
	visit = func(id ir.BlockId) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, succ := range fn.Block(id).Terminator.Successors() {
			visit(succ)
		}
		order = append(order, id)
	}
	visit(fn.Entry)

	for i := range fn.Blocks {
		if !visited[i] {
			visited[i] = true
			order = append(order, ir.BlockId(i))
		}
	}
	return order
}

// Predecessors returns, for every block, the list of blocks whose
// terminator names it as a successor, derived by scanning all terminators
// once. Predecessor lists are in block-id ascending order — spec §4.6
// requires this for deterministic edge-cleanup iteration.
func Predecessors(fn *ir.Function) [][]ir.BlockId {
	preds := make([][]ir.BlockId, len(fn.Blocks))
	for i, b := range fn.Blocks {
		for _, succ := range b.Terminator.Successors() {
			preds[succ] = append(preds[succ], ir.BlockId(i))
		}
	}
	return preds
}

// InvokeDefs maps each block to the VarIds defined at its entry because it
// is the normal successor of some Invoke elsewhere in the function (spec
// §4.1: "treated like additional block parameters ... but not on the
// unwind successor"). A block may be the normal successor of at most one
// Invoke in valid IR (a block's entry can't be simultaneously defined by
// two different Invokes without a phi to reconcile them), but this
// returns a slice per block to mirror the original's data shape and stay
// robust to a malformed input that violates that assumption.
func InvokeDefs(fn *ir.Function) map[ir.BlockId][]ir.VarId {
	defs := make(map[ir.BlockId][]ir.VarId)
	for _, b := range fn.Blocks {
		if inv, ok := b.Terminator.(ir.Invoke); ok {
			defs[inv.Normal] = append(defs[inv.Normal], inv.Dst)
		}
	}
	return defs
}
