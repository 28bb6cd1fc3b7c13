// Package borrow implements the whole-program borrow inference and
// apply-back of spec §4.2: a monotone fixed point over every function's
// parameter list, starting every reference-counted parameter at Borrowed
// and promoting to Owned only when an owned position in some function body
// demands it, directly or through a chain of parameter aliases
// (VarCopy/Project).
package borrow

import (
	"github.com/sasha-s/go-deadlock"

	"oriarc/internal/ir"
	"oriarc/internal/typepool"
)

// ParamInfo is the inferred calling convention for one parameter position.
type ParamInfo struct {
	Ownership ir.Ownership
}

// AnnotatedSig is one function's inferred signature: every parameter's
// ownership, keyed separately from ir.Function so the whole-program fixed
// point can converge before any function body is mutated.
type AnnotatedSig struct {
	Name       ir.Name
	ReturnType typepool.TypeIdx
	Params     []ParamInfo
}

// SignatureMap collects every function's inferred signature by name.
// Functions not present (calls to external/unknown code) are treated
// conservatively as Owned at every parameter position (spec §7).
type SignatureMap map[ir.Name]*AnnotatedSig

// InferBorrows computes the whole-program fixed point. Every
// reference-counted parameter starts Borrowed; scalar parameters start (and
// stay) Owned, since borrowing is only meaningful for values that carry a
// refcount. A parameter is promoted to Owned the first time any owned
// position in any function body demands it of that parameter, or of a
// variable derived from it through a chain of VarCopy aliases or Project
// extractions. The loop repeats until a full pass over every function
// changes nothing — functions may depend on each other's signatures in
// either direction (spec §4.2: "whole-program", not "per-function").
func InferBorrows(functions []*ir.Function, classifier ir.Classifier) SignatureMap {
	sigs := make(SignatureMap, len(functions))
	for _, fn := range functions {
		sig := &AnnotatedSig{Name: fn.Name, ReturnType: fn.ReturnType, Params: make([]ParamInfo, len(fn.Params))}
		for i, p := range fn.Params {
			if classifier.NeedsRC(p.Type) {
				sig.Params[i] = ParamInfo{Ownership: ir.Borrowed}
			} else {
				sig.Params[i] = ParamInfo{Ownership: ir.Owned}
			}
		}
		sigs[fn.Name] = sig
	}

	for {
		changed := false
		for _, fn := range functions {
			if promoteFunction(fn, sigs) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return sigs
}

// ApplyBorrows writes the converged signatures back onto each function's
// own Params, in place. Applying an already-applied SignatureMap is a
// no-op (spec §8's round-trip law): every write assigns the same
// ir.Ownership value that is already present.
func ApplyBorrows(functions []*ir.Function, sigs SignatureMap) {
	for _, fn := range functions {
		sig, ok := sigs[fn.Name]
		if !ok {
			continue
		}
		for i := range fn.Params {
			fn.Params[i].Ownership = sig.Params[i].Ownership
		}
	}
}

// promoteFunction scans one function body for owned-position uses and
// promotes the corresponding parameter (of this function, found by tracing
// the use back through alias/projection chains) to Owned in sigs. Reports
// whether it changed anything.
func promoteFunction(fn *ir.Function, sigs SignatureMap) bool {
	sig := sigs[fn.Name]
	defOf, paramIdx := buildIndex(fn)
	changed := false

	promote := func(v ir.VarId) {
		idx, ok := rootParam(v, defOf, paramIdx)
		if !ok {
			return
		}
		if sig.Params[idx].Ownership == ir.Borrowed {
			sig.Params[idx].Ownership = ir.Owned
			changed = true
		}
	}

	for _, b := range fn.Blocks {
		for _, instr := range b.Body {
			uses := instr.UsedVars()
			for i, v := range uses {
				if isOwnedUse(instr, i, sigs) {
					promote(v)
				}
			}
		}

		switch t := b.Terminator.(type) {
		case ir.Return:
			if t.HasValue {
				promote(t.Value)
			}
		case ir.Jump:
			// Jump arguments land on a block parameter, which is always
			// Owned — an unconditional owned position.
			for _, v := range t.Args {
				promote(v)
			}
		case ir.Invoke:
			callee, inSet := sigs[t.Func]
			for i, v := range t.Args {
				if !inSet || i >= len(callee.Params) || callee.Params[i].Ownership == ir.Owned {
					promote(v)
				}
			}
		}
		// Branch and Switch carry only a scalar condition/scrutinee, never
		// an owned position.
	}
	return changed
}

// isOwnedUse reports whether the use at useIndex within instr is an owned
// position. Every instruction kind except Apply has a fixed (signature
// independent) answer, already expressed on ir.Instruction itself. Apply is
// the one case whose owned-ness depends on the callee's current signature
// (spec §4.2: "owned iff the callee's corresponding parameter is currently
// Owned, or the callee is unknown").
func isOwnedUse(instr ir.Instruction, useIndex int, sigs SignatureMap) bool {
	ap, ok := instr.(ir.Apply)
	if !ok {
		return instr.IsOwnedPosition(useIndex)
	}
	callee, inSet := sigs[ap.Func]
	if !inSet || useIndex >= len(callee.Params) {
		return true
	}
	return callee.Params[useIndex].Ownership == ir.Owned
}

// buildIndex builds, for one function, a map from every defined variable to
// the instruction that defines it, and a map from every parameter variable
// to its index in fn.Params.
func buildIndex(fn *ir.Function) (map[ir.VarId]ir.Instruction, map[ir.VarId]int) {
	defOf := make(map[ir.VarId]ir.Instruction)
	for _, b := range fn.Blocks {
		for _, instr := range b.Body {
			if dst, ok := instr.DefinedVar(); ok {
				defOf[dst] = instr
			}
		}
	}
	paramIdx := make(map[ir.VarId]int, len(fn.Params))
	for i, p := range fn.Params {
		paramIdx[p.Var] = i
	}
	return defOf, paramIdx
}

// rootParam walks v back through VarCopy aliases and Project extractions
// until it either reaches one of fn's own parameters (returning its index)
// or reaches a value with no further alias to follow (returning false) —
// e.g. a value freshly produced by Apply, Construct, or a block parameter,
// which has no parameter of this function to promote.
func rootParam(v ir.VarId, defOf map[ir.VarId]ir.Instruction, paramIdx map[ir.VarId]int) (int, bool) {
	visited := make(map[ir.VarId]bool)
	cur := v
	for {
		if visited[cur] {
			return 0, false
		}
		visited[cur] = true

		if idx, ok := paramIdx[cur]; ok {
			return idx, true
		}
		instr, ok := defOf[cur]
		if !ok {
			return 0, false
		}
		switch i := instr.(type) {
		case ir.Project:
			cur = i.Value
		case ir.Let:
			vc, ok := i.Value.(ir.VarCopy)
			if !ok {
				return 0, false
			}
			cur = vc.Var
		default:
			return 0, false
		}
	}
}

// SyncSignatureMap is a read-mostly, concurrency-safe wrapper around a
// converged SignatureMap. In internal/arcpipeline's parallel RC-insertion
// driver, every per-function worker checks through one of these that its
// function has a converged signature; RC insertion itself is then given
// the plain SignatureMap. A plain map read racing a hypothetical future
// writer — e.g. a host re-running
// inference incrementally for a changed function while other workers are
// still mid-pass — is exactly the class of bug go-deadlock's drop-in
// sync.RWMutex is kept around to catch fast in tests.
type SyncSignatureMap struct {
	mu   deadlock.RWMutex
	sigs SignatureMap
}

// NewSyncSignatureMap wraps an already-converged SignatureMap.
func NewSyncSignatureMap(sigs SignatureMap) *SyncSignatureMap {
	return &SyncSignatureMap{sigs: sigs}
}

// Get returns fn's annotated signature, if any.
func (s *SyncSignatureMap) Get(name ir.Name) (*AnnotatedSig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.sigs[name]
	return sig, ok
}

// Put replaces (or adds) one function's signature — used when a host
// re-infers a single function's signature after an edit and needs to update
// the shared map without taking every other worker offline.
func (s *SyncSignatureMap) Put(name ir.Name, sig *AnnotatedSig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sigs[name] = sig
}
