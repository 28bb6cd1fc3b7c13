// Package ownership implements the per-function derived-ownership analysis
// of spec §4.3: a flow-sensitive forward scan classifying every variable in
// a function as Owned, Fresh, or BorrowedFrom(root). RC insertion
// (internal/rcinsert) consults this classification to decide whether a
// borrowed-derived value needs an RcInc before it can be returned or stored,
// without re-deriving the chain itself.
//
// This pass runs after internal/borrow has annotated the function's own
// parameters (ir.Param.Ownership) — it reads that annotation directly and
// does not need the whole-program signature map.
package ownership

import (
	"oriarc/internal/cfgutil"
	"oriarc/internal/ir"
)

// Kind is the three-way classification spec §4.3/GLOSSARY calls
// "DerivedOwnership".
type Kind int

const (
	// Owned means the variable holds a value this function (or block) is
	// responsible for eventually dropping.
	Owned Kind = iota
	// Fresh means the variable was just allocated by this function (a
	// Construct, PartialApply, or Reuse) and carries no borrowed-from
	// obligation of its own.
	Fresh
	// BorrowedFrom means the variable's value is a view into Root's
	// storage: using it at an owned position requires an RcInc first.
	BorrowedFrom
)

func (k Kind) String() string {
	switch k {
	case Fresh:
		return "fresh"
	case BorrowedFrom:
		return "borrowed_from"
	default:
		return "owned"
	}
}

// Derived is one variable's classification. Root is meaningful only when
// Kind == BorrowedFrom, and always names the ultimate source — a function
// parameter or a value produced by Apply/ApplyIndirect/Construct/etc. —
// never an intermediate Project hop (spec §4.3: projection chains compress
// to their root rather than nesting).
type Derived struct {
	Kind Kind
	Root ir.VarId
}

// Infer classifies every variable in fn. fn.Params must already carry their
// final ir.Ownership annotation (typically via borrow.ApplyBorrows) —
// Infer does not run borrow inference itself.
func Infer(fn *ir.Function, classifier ir.Classifier) []Derived {
	result := make([]Derived, fn.NumVars())
	for i := range result {
		result[i] = Derived{Kind: Owned}
	}

	for _, p := range fn.Params {
		if p.Ownership == ir.Borrowed {
			result[p.Var] = Derived{Kind: BorrowedFrom, Root: p.Var}
		} else {
			result[p.Var] = Derived{Kind: Owned}
		}
	}

	// Block parameters are always Owned (spec §4.3): a loop-carried or
	// merge-point value is re-materialized at the block boundary, so RC
	// insertion treats it as a fresh obligation regardless of what fed it
	// on any one predecessor edge.
	for _, b := range fn.Blocks {
		for _, bp := range b.Params {
			result[bp.Var] = Derived{Kind: Owned}
		}
	}

	order := cfgutil.Postorder(fn)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}

	for _, id := range order {
		b := fn.Block(id)
		for _, instr := range b.Body {
			dst, ok := instr.DefinedVar()
			if !ok {
				continue
			}
			result[dst] = classify(instr, result)
		}
		if inv, ok := b.Terminator.(ir.Invoke); ok {
			result[inv.Dst] = Derived{Kind: Owned}
		}
	}

	return result
}

func classify(instr ir.Instruction, result []Derived) Derived {
	switch i := instr.(type) {
	case ir.Let:
		if vc, ok := i.Value.(ir.VarCopy); ok {
			// Alias: inherits the source's classification unchanged,
			// including its Root if it is itself BorrowedFrom.
			return result[vc.Var]
		}
		// Literal or PrimOp: a fresh scalar or owned primitive result.
		return Derived{Kind: Owned}
	case ir.Apply, ir.ApplyIndirect:
		return Derived{Kind: Owned}
	case ir.PartialApply, ir.Construct, ir.Reuse:
		return Derived{Kind: Fresh}
	case ir.Project:
		return projectDerived(i.Value, result)
	case ir.Reset:
		return Derived{Kind: Fresh}
	case ir.IsShared:
		return Derived{Kind: Owned}
	default:
		return Derived{Kind: Owned}
	}
}

// projectDerived classifies the result of projecting a field out of value.
// If value is itself BorrowedFrom some root, the projection is BorrowedFrom
// that same root (root-compression: the chain never nests). Otherwise the
// projection borrows from value directly.
func projectDerived(value ir.VarId, result []Derived) Derived {
	src := result[value]
	if src.Kind == BorrowedFrom {
		return Derived{Kind: BorrowedFrom, Root: src.Root}
	}
	return Derived{Kind: BorrowedFrom, Root: value}
}
