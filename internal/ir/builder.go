package ir

import "oriarc/internal/typepool"

// FuncBuilder assembles a Function one block at a time. Unlike the
// teacher's AST-to-IR Builder (kanso-lang-kanso/internal/ir.Builder),
// nothing here lowers source syntax — the ARC core's input IR is produced
// by an external collaborator (spec §1). FuncBuilder exists purely so
// tests and tooling can construct well-formed fixture functions without
// hand-assembling VarId/BlockId bookkeeping, keeping the teacher's
// "builder holds counters, exposes fluent step methods" shape while
// dropping everything AST/semantic-analysis specific.
type FuncBuilder struct {
	fn      *Function
	block   *Block
	pending []*Span
}

// NewFuncBuilder starts building a function named name with the given
// return type.
func NewFuncBuilder(name Name, returnType typepool.TypeIdx) *FuncBuilder {
	return &FuncBuilder{fn: NewFunction(name, returnType)}
}

// Param declares a new function parameter of type t and returns its VarId.
func (b *FuncBuilder) Param(t typepool.TypeIdx) VarId {
	v := b.fn.NewVar(t)
	b.fn.AddParam(v, t)
	return v
}

// Block starts (or switches to) a new basic block and returns its id.
// Subsequent Let/Apply/etc. calls append to this block until the next
// Block call; setting a terminator does not end appending.
func (b *FuncBuilder) Block() BlockId {
	b.block = b.fn.AddBlock()
	return b.block.Id
}

// BlockParam declares a parameter of type t on the current block and
// returns its VarId.
func (b *FuncBuilder) BlockParam(t typepool.TypeIdx) VarId {
	v := b.fn.NewVar(t)
	b.block.Params = append(b.block.Params, BlockParam{Var: v, Type: t})
	return v
}

// emit appends instr (with a nil span — builder-constructed fixtures carry
// no source positions) to the current block.
func (b *FuncBuilder) emit(instr Instruction) {
	b.block.Body = append(b.block.Body, instr)
	b.block.Spans = append(b.block.Spans, nil)
}

// Let binds a fresh variable of type t to value and returns it.
func (b *FuncBuilder) Let(t typepool.TypeIdx, value Value) VarId {
	dst := b.fn.NewVar(t)
	b.emit(Let{Dst: dst, Value: value})
	return dst
}

// Apply emits a direct call to fn with args, binding the result (of type
// resultTy) to a fresh variable.
func (b *FuncBuilder) Apply(resultTy typepool.TypeIdx, fn Name, args ...VarId) VarId {
	dst := b.fn.NewVar(resultTy)
	b.emit(Apply{Dst: dst, Func: fn, Args: args})
	return dst
}

// ApplyIndirect emits a call through a closure value.
func (b *FuncBuilder) ApplyIndirect(resultTy typepool.TypeIdx, closure VarId, args ...VarId) VarId {
	dst := b.fn.NewVar(resultTy)
	b.emit(ApplyIndirect{Dst: dst, Closure: closure, Args: args})
	return dst
}

// PartialApply emits a closure-construction capturing args for a later
// call of fn.
func (b *FuncBuilder) PartialApply(closureTy typepool.TypeIdx, fn Name, args ...VarId) VarId {
	dst := b.fn.NewVar(closureTy)
	b.emit(PartialApply{Dst: dst, Func: fn, Args: args})
	return dst
}

// Project emits a field extraction.
func (b *FuncBuilder) Project(fieldTy typepool.TypeIdx, value VarId, field int) VarId {
	dst := b.fn.NewVar(fieldTy)
	b.emit(Project{Dst: dst, Value: value, Field: field})
	return dst
}

// Construct emits an aggregate build.
func (b *FuncBuilder) Construct(resultTy typepool.TypeIdx, ctor string, args ...VarId) VarId {
	dst := b.fn.NewVar(resultTy)
	b.emit(Construct{Dst: dst, Ctor: ctor, Args: args})
	return dst
}

// Set emits an in-place field write.
func (b *FuncBuilder) Set(base VarId, field int, value VarId) {
	b.emit(Set{Base: base, Field: field, Value: value})
}

// Reset emits a reuse-token probe.
func (b *FuncBuilder) Reset(tokenTy typepool.TypeIdx, v VarId) VarId {
	token := b.fn.NewVar(tokenTy)
	b.emit(Reset{Var: v, Token: token})
	return token
}

// Reuse emits a reuse-or-allocate construction.
func (b *FuncBuilder) Reuse(resultTy typepool.TypeIdx, token VarId, ctor string, args ...VarId) VarId {
	dst := b.fn.NewVar(resultTy)
	b.emit(Reuse{Dst: dst, Token: token, Ctor: ctor, Args: args})
	return dst
}

// Return terminates the current block returning value.
func (b *FuncBuilder) Return(value VarId) {
	b.block.Terminator = Return{Value: value, HasValue: true}
}

// ReturnVoid terminates the current block with no return value.
func (b *FuncBuilder) ReturnVoid() {
	b.block.Terminator = Return{HasValue: false}
}

// Jump terminates the current block with an unconditional jump.
func (b *FuncBuilder) Jump(target BlockId, args ...VarId) {
	b.block.Terminator = Jump{Target: target, Args: args}
}

// Branch terminates the current block with a conditional branch.
func (b *FuncBuilder) Branch(cond VarId, then, els BlockId) {
	b.block.Terminator = Branch{Cond: cond, Then: then, Else: els}
}

// Invoke terminates the current block with a call that may unwind,
// binding the result (of type resultTy) at the normal successor's entry.
func (b *FuncBuilder) Invoke(resultTy typepool.TypeIdx, fn Name, args []VarId, normal, unwind BlockId) VarId {
	dst := b.fn.NewVar(resultTy)
	b.block.Terminator = Invoke{Dst: dst, Func: fn, Args: args, Normal: normal, Unwind: unwind}
	return dst
}

// Build returns the assembled function.
func (b *FuncBuilder) Build() *Function { return b.fn }
