package ir

import "github.com/pkg/errors"

// ValidateFresh checks the one precondition spec §7 calls out as a
// pipeline-ordering bug rather than a soundly-handled default: that the
// input IR carries no RcInc/RcDec yet. Every entry point in
// internal/rcinsert asserts this with a panic; ValidateFresh gives
// internal/arcpipeline a chance to report it as a wrapped error before
// that panic would fire, since a whole-pipeline driver processing many
// functions in parallel would rather fail one function with a clear error
// than crash the process.
func ValidateFresh(f *Function) error {
	for _, b := range f.Blocks {
		for _, instr := range b.Body {
			switch instr.(type) {
			case RcInc, RcDec:
				return errors.Errorf("ir: function %q already contains RcInc/RcDec — pipeline ordering error", f.Name)
			}
		}
	}
	return nil
}

// AssertFresh panics if f is not fresh, per ValidateFresh. Used at the top
// of internal/rcinsert's insertion entry points, mirroring the
// debug_assert! precondition in the original ori_arc rc_insert module.
func AssertFresh(f *Function) {
	if err := ValidateFresh(f); err != nil {
		panic(err)
	}
}

// ValidateDefs checks part of the SSA invariant of spec §3.2: every VarId
// used in a body or terminator has a definition somewhere in the function,
// either as a function parameter, a block parameter, an instruction
// destination, or an Invoke's implicit definition at its normal
// successor's entry. It does not check that the VarId is in range
// (Function.VarType already panics on that), that it is defined only once,
// or that its definition precedes or dominates the use: all definitions
// are collected first, then every use is looked up among them.
//
// This is best-effort, single-pass bookkeeping, not a full dominance
// check — spec §7 treats "VarId in use but not defined" as unchecked
// undefined behavior in the general case. ValidateDefs exists to catch the
// common, cheap-to-detect mistake of a completely undefined variable
// (never assigned anywhere in the function), which a malformed lowering
// pass is far more likely to produce than a dominance violation.
func ValidateDefs(f *Function) error {
	defined := make([]bool, f.NumVars())
	for _, p := range f.Params {
		defined[p.Var] = true
	}
	invokeDsts := make(map[VarId]bool)
	for _, b := range f.Blocks {
		if inv, ok := b.Terminator.(Invoke); ok {
			invokeDsts[inv.Dst] = true
		}
	}
	for _, b := range f.Blocks {
		for _, bp := range b.Params {
			defined[bp.Var] = true
		}
		for _, instr := range b.Body {
			if dst, ok := instr.DefinedVar(); ok {
				defined[dst] = true
			}
		}
		if inv, ok := b.Terminator.(Invoke); ok {
			defined[inv.Dst] = true
		}
	}
	for _, b := range f.Blocks {
		for _, instr := range b.Body {
			for _, v := range instr.UsedVars() {
				if !defined[v] {
					return errors.Errorf("ir: function %q uses v%d with no definition", f.Name, v)
				}
			}
		}
		for _, v := range b.Terminator.UsedVars() {
			if !defined[v] {
				return errors.Errorf("ir: function %q uses v%d with no definition", f.Name, v)
			}
		}
	}
	return nil
}
