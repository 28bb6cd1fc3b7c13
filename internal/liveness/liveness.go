// Package liveness implements the refined backward liveness dataflow of
// spec §4.4: a standard live_in/live_out fixed point restricted to
// reference-counted variables, plus a refined per-block split of the live
// set into live_for_use (genuinely consumed downstream) and live_for_drop
// (only ever reaches an explicit RcDec). internal/rcinsert's edge cleanup
// consumes live_in/live_out directly; the refined split is a separate,
// independently useful classification for callers that need to know why a
// variable is live, not just that it is.
package liveness

import (
	"oriarc/internal/cfgutil"
	"oriarc/internal/ir"
)

// VarSet is a set of variables, used throughout this package instead of a
// slice since liveness sets are combined by repeated union during the
// fixed point.
type VarSet map[ir.VarId]bool

func (s VarSet) clone() VarSet {
	out := make(VarSet, len(s))
	for v := range s {
		out[v] = true
	}
	return out
}

func (s VarSet) equal(other VarSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other[v] {
			return false
		}
	}
	return true
}

// Liveness holds, for every block, the set of reference-counted variables
// live on entry (LiveIn) and on exit (LiveOut). Scalar variables never
// appear in either set — they carry no refcount, so liveness has nothing to
// say about them (spec §4.4: "scalars are not tracked").
type Liveness struct {
	LiveIn  []VarSet
	LiveOut []VarSet
}

// ComputeLiveness runs the backward fixed point to completion. Block
// parameters and Invoke-bound variables are killed at the block that
// defines them — a predecessor never needs to keep such a variable live
// purely on the successor's behalf, since the value arrives through the
// Jump/Branch/Switch/Invoke's own argument list or binding, not through an
// implicit carry-over.
func ComputeLiveness(fn *ir.Function, classifier ir.Classifier) *Liveness {
	n := len(fn.Blocks)
	liveIn := make([]VarSet, n)
	liveOut := make([]VarSet, n)
	for i := range liveIn {
		liveIn[i] = VarSet{}
		liveOut[i] = VarSet{}
	}

	order := cfgutil.Postorder(fn)
	invokeDefs := cfgutil.InvokeDefs(fn)

	for changed := true; changed; {
		changed = false
		for _, id := range order {
			b := fn.Block(id)

			out := VarSet{}
			for _, succ := range b.Terminator.Successors() {
				for v := range liveIn[succ] {
					out[v] = true
				}
			}

			in := blockGenKill(fn, classifier, b, out)
			for _, v := range invokeDefs[id] {
				delete(in, v)
			}

			if !out.equal(liveOut[id]) {
				liveOut[id] = out
				changed = true
			}
			if !in.equal(liveIn[id]) {
				liveIn[id] = in
				changed = true
			}
		}
	}

	return &Liveness{LiveIn: liveIn, LiveOut: liveOut}
}

// blockGenKill computes one block's live_in from its live_out by walking
// the terminator and body in reverse: live = (live - kill) ∪ gen at every
// step, then the block's own parameters are removed (they are defined at
// entry, not demanded of predecessors).
func blockGenKill(fn *ir.Function, classifier ir.Classifier, b *ir.Block, out VarSet) VarSet {
	live := out.clone()

	for _, v := range b.Terminator.UsedVars() {
		if ir.NeedsRCVar(fn, classifier, v) {
			live[v] = true
		}
	}

	for i := len(b.Body) - 1; i >= 0; i-- {
		instr := b.Body[i]
		if dst, ok := instr.DefinedVar(); ok && ir.NeedsRCVar(fn, classifier, dst) {
			delete(live, dst)
		}
		for _, v := range instr.UsedVars() {
			if ir.NeedsRCVar(fn, classifier, v) {
				live[v] = true
			}
		}
	}

	for _, p := range b.Params {
		delete(live, p.Var)
	}
	return live
}

// RefinedLiveness splits one block's live variables by why they're live:
// LiveForUse holds variables consumed by a genuine operand position
// (anything other than RcDec); LiveForDrop holds variables whose only
// remaining reference in the block is an explicit RcDec. A variable that is
// both used and dec'd is LiveForUse only — a real consumer always wins over
// an incidental drop (spec §4.4).
type RefinedLiveness struct {
	LiveForUse  VarSet
	LiveForDrop VarSet
}

// ComputeRefinedLiveness computes the base Liveness and, per block, the
// refined use/drop split over every variable that appears in that block's
// instructions or terminator (not limited to LiveIn/LiveOut — this
// classification answers "why is this occurrence live", independent of
// whether the variable survives to the block boundary).
func ComputeRefinedLiveness(fn *ir.Function, classifier ir.Classifier) ([]RefinedLiveness, *Liveness) {
	base := ComputeLiveness(fn, classifier)

	refined := make([]RefinedLiveness, len(fn.Blocks))
	for i, b := range fn.Blocks {
		use := VarSet{}
		drop := VarSet{}

		for _, instr := range b.Body {
			if dec, ok := instr.(ir.RcDec); ok {
				if ir.NeedsRCVar(fn, classifier, dec.Var) && !use[dec.Var] {
					drop[dec.Var] = true
				}
				continue
			}
			for _, v := range instr.UsedVars() {
				if !ir.NeedsRCVar(fn, classifier, v) {
					continue
				}
				use[v] = true
				delete(drop, v)
			}
		}
		for _, v := range b.Terminator.UsedVars() {
			if !ir.NeedsRCVar(fn, classifier, v) {
				continue
			}
			use[v] = true
			delete(drop, v)
		}

		refined[i] = RefinedLiveness{LiveForUse: use, LiveForDrop: drop}
	}
	return refined, base
}
