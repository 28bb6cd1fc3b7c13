// Package rcinsert implements the Perceus-style RC insertion pass of spec
// §4.5 and its edge-cleanup companion (spec §4.6): given precomputed
// liveness, it walks every block backward inserting RcInc/RcDec so that
// every heap-allocated value is freed exactly once at its last use, then
// patches up the "asymmetric gap" problem at control-flow merges either by
// prepending decrements at a block's head or by splitting an edge into a
// trampoline block when predecessors disagree on what's dead.
package rcinsert

import (
	"sort"

	"oriarc/internal/borrow"
	"oriarc/internal/cfgutil"
	"oriarc/internal/ir"
	"oriarc/internal/liveness"
	"oriarc/internal/ownership"
	"oriarc/internal/telemetry"
)

// rcContext groups the parameters every per-block helper needs, mirroring
// the teacher's convention of bundling related read-only state rather than
// threading five arguments through every call.
type rcContext struct {
	fn             *ir.Function
	classifier     ir.Classifier
	borrowedParams liveness.VarSet
	// borrows holds variables derived from borrowed parameters via
	// projection or aliasing: skip RC tracking except at owned positions.
	borrows liveness.VarSet
	// sigs and blockLiveOut are both non-nil only when called from
	// InsertRcOpsWithOwnership, enabling the closure-escape check in
	// isBorrowedCapture.
	sigs         borrow.SignatureMap
	blockLiveOut liveness.VarSet
}

// InsertRcOps inserts RcInc/RcDec using only per-block liveness and a
// per-block borrow computation (computeBlockBorrows) — the liveness-only
// variant that does not see cross-block borrow propagation. Prefer
// InsertRcOpsWithOwnership in the full pipeline; this entry point exists
// for isolating the liveness-driven half of the algorithm in tests.
func InsertRcOps(fn *ir.Function, classifier ir.Classifier, l *liveness.Liveness, log telemetry.Logger) telemetry.PassCounters {
	ir.AssertFresh(fn)
	log.Debug(string(fn.Name), "inserting RC operations")

	borrowedParams := collectBorrowedParams(fn)
	invokeDefs := cfgutil.InvokeDefs(fn)
	perBlockBorrows := make([]liveness.VarSet, len(fn.Blocks))
	counters := telemetry.PassCounters{Function: string(fn.Name)}

	for idx, b := range fn.Blocks {
		borrows := computeBlockBorrows(b, borrowedParams)
		perBlockBorrows[idx] = borrows

		ctx := &rcContext{fn: fn, classifier: classifier, borrowedParams: borrowedParams, borrows: borrows}
		newBody, newSpans := processBlockRc(ctx, b, l.LiveOut[idx], invokeDefs, ir.BlockId(idx) == fn.Entry)
		b.Body = newBody
		b.Spans = newSpans
	}

	globalBorrows := liveness.VarSet{}
	for _, bs := range perBlockBorrows {
		for v := range bs {
			globalBorrows[v] = true
		}
	}

	insertEdgeCleanup(fn, classifier, l, borrowedParams, globalBorrows, &counters)
	log.ReportCounters(counters)
	return counters
}

// InsertRcOpsWithOwnership is the pipeline's main entry point: it uses the
// whole-function DerivedOwnership vector (internal/ownership) instead of a
// per-block recomputation, so a borrowed-derived value that crosses a block
// boundary is still recognized as such everywhere it flows — and, given
// sigs, treats an Apply argument as an owned position only when the known
// callee's parameter is Owned, and performs the closure-capture check of
// spec §4.5/SPEC_FULL §C.1: a
// PartialApply capture of a borrowed-derived value at a Borrowed callee
// position skips its RcInc when the closure doesn't escape the block.
func InsertRcOpsWithOwnership(
	fn *ir.Function,
	classifier ir.Classifier,
	l *liveness.Liveness,
	derived []ownership.Derived,
	sigs borrow.SignatureMap,
	log telemetry.Logger,
) telemetry.PassCounters {
	ir.AssertFresh(fn)
	log.Debug(string(fn.Name), "inserting RC operations (ownership-enhanced)")

	borrowedParams := collectBorrowedParams(fn)

	globalBorrows := liveness.VarSet{}
	for i, d := range derived {
		if d.Kind == ownership.BorrowedFrom {
			globalBorrows[ir.VarId(i)] = true
		}
	}

	invokeDefs := cfgutil.InvokeDefs(fn)
	counters := telemetry.PassCounters{Function: string(fn.Name)}

	for idx, b := range fn.Blocks {
		ctx := &rcContext{
			fn:             fn,
			classifier:     classifier,
			borrowedParams: borrowedParams,
			borrows:        globalBorrows,
			sigs:           sigs,
			blockLiveOut:   l.LiveOut[idx],
		}
		newBody, newSpans := processBlockRc(ctx, b, l.LiveOut[idx], invokeDefs, ir.BlockId(idx) == fn.Entry)
		b.Body = newBody
		b.Spans = newSpans
	}

	insertEdgeCleanup(fn, classifier, l, borrowedParams, globalBorrows, &counters)
	log.ReportCounters(counters)
	return counters
}

func collectBorrowedParams(fn *ir.Function) liveness.VarSet {
	out := liveness.VarSet{}
	for _, p := range fn.Params {
		if p.Ownership == ir.Borrowed {
			out[p.Var] = true
		}
	}
	return out
}

// processBlockRc runs the backward walk over one block's terminator, body,
// and parameters, returning the block's rebuilt instruction list and
// parallel span list.
func processBlockRc(
	ctx *rcContext,
	b *ir.Block,
	liveOut liveness.VarSet,
	invokeDefs map[ir.BlockId][]ir.VarId,
	isEntry bool,
) ([]ir.Instruction, []*ir.Span) {
	live := liveness.VarSet{}
	for v := range liveOut {
		live[v] = true
	}
	var newBody []ir.Instruction
	var newSpans []*ir.Span

	processTerminatorUses(b.Terminator, live, &newBody, &newSpans, ctx)

	for i := len(b.Body) - 1; i >= 0; i-- {
		instr := b.Body[i]
		var span *ir.Span
		if i < len(b.Spans) {
			span = b.Spans[i]
		}

		if dst, ok := instr.DefinedVar(); ok {
			killOrDec(dst, live, &newBody, &newSpans, ctx)
		}

		newBody = append(newBody, instr)
		newSpans = append(newSpans, span)

		processInstructionUses(instr, live, &newBody, &newSpans, ctx)
	}

	for i := len(b.Params) - 1; i >= 0; i-- {
		killOrDec(b.Params[i].Var, live, &newBody, &newSpans, ctx)
	}

	if dsts, ok := invokeDefs[b.Id]; ok {
		for i := len(dsts) - 1; i >= 0; i-- {
			killOrDec(dsts[i], live, &newBody, &newSpans, ctx)
		}
	}

	if isEntry {
		for i := len(ctx.fn.Params) - 1; i >= 0; i-- {
			p := ctx.fn.Params[i]
			if p.Ownership == ir.Owned && ctx.classifier.NeedsRC(p.Type) {
				killOrDec(p.Var, live, &newBody, &newSpans, ctx)
			}
		}
	}

	reverseInstructions(newBody)
	reverseSpans(newSpans)
	return newBody, newSpans
}

// killOrDec is the shared "definition" step used for instruction dsts,
// block params, Invoke dsts, and entry-block function params: if v is
// RC-trackable and currently live, remove it from live (it was used later);
// otherwise it's dead on definition, so emit a decrement.
func killOrDec(v ir.VarId, live liveness.VarSet, newBody *[]ir.Instruction, newSpans *[]*ir.Span, ctx *rcContext) {
	if !needsRcTrackable(v, ctx) {
		return
	}
	if live[v] {
		delete(live, v)
		return
	}
	*newBody = append(*newBody, ir.RcDec{Var: v})
	*newSpans = append(*newSpans, nil)
}

// processTerminatorUses handles step 1 of the backward walk: a borrowed
// param or borrowed-derived value used in a Return always gets exactly one
// RcInc (ownership transfers to the caller) and is never added to live;
// elsewhere they're skipped entirely. A normal variable already live gets
// an RcInc (it survives past the terminator); either way it joins live.
func processTerminatorUses(term ir.Terminator, live liveness.VarSet, newBody *[]ir.Instruction, newSpans *[]*ir.Span, ctx *rcContext) {
	_, isReturn := term.(ir.Return)

	for _, v := range term.UsedVars() {
		if !ctx.classifier.NeedsRC(ctx.fn.VarType(v)) {
			continue
		}
		if ctx.borrowedParams[v] || ctx.borrows[v] {
			if isReturn {
				*newBody = append(*newBody, ir.RcInc{Var: v, Count: 1})
				*newSpans = append(*newSpans, nil)
			}
			continue
		}
		if live[v] {
			*newBody = append(*newBody, ir.RcInc{Var: v, Count: 1})
			*newSpans = append(*newSpans, nil)
		}
		live[v] = true
	}
}

// processInstructionUses handles step 2's use side: borrowed params are
// never touched; borrowed-derived values get an RcInc only at an owned
// position (and not even then if isBorrowedCapture applies); normal
// variables get an RcInc on every use after the first — including a second
// occurrence of the same variable within one instruction's argument list.
func processInstructionUses(instr ir.Instruction, live liveness.VarSet, newBody *[]ir.Instruction, newSpans *[]*ir.Span, ctx *rcContext) {
	used := instr.UsedVars()
	seen := liveness.VarSet{}

	for pos, v := range used {
		if !ctx.classifier.NeedsRC(ctx.fn.VarType(v)) {
			continue
		}
		if ctx.borrowedParams[v] {
			continue
		}
		if ctx.borrows[v] {
			owned := instr.IsOwnedPosition(pos)
			if ap, ok := instr.(ir.Apply); ok && ctx.sigs != nil {
				if sig, inSet := ctx.sigs[ap.Func]; inSet && pos < len(sig.Params) {
					owned = sig.Params[pos].Ownership == ir.Owned
				}
			}
			if owned && !isBorrowedCapture(instr, pos, ctx) {
				*newBody = append(*newBody, ir.RcInc{Var: v, Count: 1})
				*newSpans = append(*newSpans, nil)
			}
			continue
		}
		if seen[v] {
			*newBody = append(*newBody, ir.RcInc{Var: v, Count: 1})
			*newSpans = append(*newSpans, nil)
			continue
		}
		seen[v] = true
		if live[v] {
			*newBody = append(*newBody, ir.RcInc{Var: v, Count: 1})
			*newSpans = append(*newSpans, nil)
		}
		live[v] = true
	}
}

// isBorrowedCapture reports whether a PartialApply capture at pos can skip
// its RcInc: the closure must not escape the block (its dst isn't in
// block_live_out) and the callee must expect this parameter Borrowed. Only
// available when sigs/blockLiveOut were supplied (InsertRcOpsWithOwnership).
func isBorrowedCapture(instr ir.Instruction, pos int, ctx *rcContext) bool {
	if ctx.sigs == nil || ctx.blockLiveOut == nil {
		return false
	}
	pa, ok := instr.(ir.PartialApply)
	if !ok {
		return false
	}
	if ctx.blockLiveOut[pa.Dst] {
		return false
	}
	sig, ok := ctx.sigs[pa.Func]
	if !ok || pos >= len(sig.Params) {
		return false
	}
	return sig.Params[pos].Ownership == ir.Borrowed
}

// computeBlockBorrows computes, for one block in isolation, the set of
// variables derived from borrowedParams via Project or a VarCopy alias.
// Unlike internal/ownership's whole-function analysis, this never sees a
// value that crosses a block boundary — it exists for InsertRcOps, the
// liveness-only variant used to test the RC-insertion core independent of
// ownership inference.
func computeBlockBorrows(b *ir.Block, borrowedParams liveness.VarSet) liveness.VarSet {
	allBorrowed := liveness.VarSet{}
	for v := range borrowedParams {
		allBorrowed[v] = true
	}
	derived := liveness.VarSet{}

	for _, instr := range b.Body {
		switch i := instr.(type) {
		case ir.Project:
			if allBorrowed[i.Value] {
				allBorrowed[i.Dst] = true
				derived[i.Dst] = true
			}
		case ir.Let:
			if vc, ok := i.Value.(ir.VarCopy); ok && allBorrowed[vc.Var] {
				allBorrowed[i.Dst] = true
				derived[i.Dst] = true
			}
		}
	}
	return derived
}

// needsRcTrackable reports whether v should be Inc/Dec-tracked at all: not
// a borrowed param, not borrowed-derived, and its type needs_rc.
func needsRcTrackable(v ir.VarId, ctx *rcContext) bool {
	return !ctx.borrowedParams[v] && !ctx.borrows[v] && ctx.classifier.NeedsRC(ctx.fn.VarType(v))
}

func reverseInstructions(s []ir.Instruction) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func reverseSpans(s []*ir.Span) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// insertEdgeCleanup is spec §4.6's edge-cleanup pass: for every block with
// at least one predecessor, compute each predecessor's "gap" — variables
// live at the predecessor's exit that this block doesn't need — and either
// prepend decrements to the block (every predecessor agrees on the gap) or
// split each disagreeing edge into its own trampoline block.
func insertEdgeCleanup(
	fn *ir.Function,
	classifier ir.Classifier,
	l *liveness.Liveness,
	borrowedParams, globalBorrows liveness.VarSet,
	counters *telemetry.PassCounters,
) {
	preds := cfgutil.Predecessors(fn)

	type blockDec struct {
		blockIdx int
		vars     []ir.VarId
	}
	type edgeSplit struct {
		predIdx ir.BlockId
		succ    ir.BlockId
		vars    []ir.VarId
	}
	var blockDecs []blockDec
	var edgeSplits []edgeSplit

	for blockIdx, ps := range preds {
		if len(ps) == 0 {
			continue
		}
		liveInB := l.LiveIn[blockIdx]

		gaps := make([][]ir.VarId, len(ps))
		for gi, predIdx := range ps {
			var gap []ir.VarId
			for v := range l.LiveOut[predIdx] {
				if liveInB[v] || borrowedParams[v] || globalBorrows[v] {
					continue
				}
				if !classifier.NeedsRC(fn.VarType(v)) {
					continue
				}
				gap = append(gap, v)
			}
			sort.Slice(gap, func(a, b int) bool { return gap[a] < gap[b] })
			gaps[gi] = gap
		}

		allEmpty := true
		for _, g := range gaps {
			if len(g) > 0 {
				allEmpty = false
				break
			}
		}
		if allEmpty {
			continue
		}

		if len(ps) == 1 {
			if len(gaps[0]) > 0 {
				blockDecs = append(blockDecs, blockDec{blockIdx, gaps[0]})
			}
			continue
		}

		allIdentical := true
		for i := 1; i < len(gaps); i++ {
			if !varsEqual(gaps[0], gaps[i]) {
				allIdentical = false
				break
			}
		}
		if allIdentical {
			if len(gaps[0]) > 0 {
				blockDecs = append(blockDecs, blockDec{blockIdx, gaps[0]})
			}
			continue
		}

		for gi, predIdx := range ps {
			if len(gaps[gi]) > 0 {
				edgeSplits = append(edgeSplits, edgeSplit{predIdx, fn.Block(ir.BlockId(blockIdx)).Id, gaps[gi]})
			}
		}
	}

	for _, bd := range blockDecs {
		b := fn.Blocks[bd.blockIdx]
		decs := make([]ir.Instruction, len(bd.vars))
		spans := make([]*ir.Span, len(bd.vars))
		for i, v := range bd.vars {
			decs[i] = ir.RcDec{Var: v}
		}
		b.Body = append(append([]ir.Instruction{}, decs...), b.Body...)
		b.Spans = append(append([]*ir.Span{}, spans...), b.Spans...)
		counters.BlockStartDecrements += len(bd.vars)
	}

	for _, es := range edgeSplits {
		trampolineID := fn.NextBlockId()
		body := make([]ir.Instruction, len(es.vars))
		spans := make([]*ir.Span, len(es.vars))
		for i, v := range es.vars {
			body[i] = ir.RcDec{Var: v}
		}
		fn.PushBlock(&ir.Block{
			Id:         trampolineID,
			Body:       body,
			Spans:      spans,
			Terminator: ir.Jump{Target: es.succ},
		})
		fn.Blocks[es.predIdx].Terminator = redirectEdges(fn.Blocks[es.predIdx].Terminator, es.succ, trampolineID)
		counters.EdgeSplitTrampolines++
	}
}

func varsEqual(a, b []ir.VarId) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// redirectEdges returns term with every occurrence of oldTarget replaced by
// newTarget. Return, Resume, and Unreachable carry no successors and pass
// through unchanged.
func redirectEdges(term ir.Terminator, oldTarget, newTarget ir.BlockId) ir.Terminator {
	switch t := term.(type) {
	case ir.Branch:
		if t.Then == oldTarget {
			t.Then = newTarget
		}
		if t.Else == oldTarget {
			t.Else = newTarget
		}
		return t
	case ir.Switch:
		cases := make([]ir.SwitchCase, len(t.Cases))
		copy(cases, t.Cases)
		for i := range cases {
			if cases[i].Target == oldTarget {
				cases[i].Target = newTarget
			}
		}
		t.Cases = cases
		if t.Default == oldTarget {
			t.Default = newTarget
		}
		return t
	case ir.Jump:
		if t.Target == oldTarget {
			t.Target = newTarget
		}
		return t
	case ir.Invoke:
		if t.Normal == oldTarget {
			t.Normal = newTarget
		}
		if t.Unwind == oldTarget {
			t.Unwind = newTarget
		}
		return t
	default:
		return term
	}
}
