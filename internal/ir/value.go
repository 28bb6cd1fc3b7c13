package ir

import "oriarc/internal/typepool"

// Value is the right-hand side of a Let instruction: a literal, a copy of
// another variable, or a pure primitive operation over variables. Let is
// the only instruction whose payload varies in shape, so it gets its own
// small sum type rather than forcing every Let variant into the
// Instruction sum directly.
type Value interface {
	isValue()
	Uses() []VarId
}

// Literal is a compile-time constant of scalar or string type. The payload
// is carried opaquely (interface{}) since the core never interprets it —
// constant folding and representation are a different pass's concern.
type Literal struct {
	Payload interface{}
}

func (Literal) isValue()        {}
func (Literal) Uses() []VarId   { return nil }

// VarCopy aliases another variable — `let dst = v`. Ownership analysis
// propagates v's classification to dst unchanged (spec §4.3).
type VarCopy struct {
	Var VarId
}

func (VarCopy) isValue()      {}
func (v VarCopy) Uses() []VarId { return []VarId{v.Var} }

// PrimOp is a pure primitive operation (arithmetic, comparison, string
// concatenation) over one or more variables. It never allocates on its
// own; if its result type needs_rc (e.g. string concatenation), the result
// is Owned (spec §4.3: "Owned if result is RC-typed, else unused").
type PrimOp struct {
	Op   string
	Args []VarId
}

func (PrimOp) isValue()        {}
func (p PrimOp) Uses() []VarId { return p.Args }

// Param describes one function parameter: its variable, its type, and its
// inferred (or default) ownership.
type Param struct {
	Var       VarId
	Type      typepool.TypeIdx
	Ownership Ownership
}

// Ownership is the calling-convention classification of a function
// parameter, per spec §3.4.
type Ownership int

const (
	// Owned is the conservative default: the callee consumes one unit of
	// refcount.
	Owned Ownership = iota
	// Borrowed means the caller retains ownership; the callee must not
	// increment, decrement, or store the value anywhere persistent.
	Borrowed
)

func (o Ownership) String() string {
	if o == Borrowed {
		return "borrowed"
	}
	return "owned"
}
