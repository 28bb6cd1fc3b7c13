package ir

import "oriarc/internal/typepool"

// Span is an opaque source-span handle carried alongside instructions for
// diagnostics. The ARC core never interprets it; it exists purely so
// inserted RC instructions can be distinguished (nil span) from
// lowering-emitted ones (non-nil span), per spec §4.5 ("Spans for
// inserted RC instructions are None").
type Span struct {
	File        string
	Line, Col   int
}

// BlockParam is one explicit phi-like parameter of a basic block, bound
// from the matching position of every predecessor Jump/Branch/Switch/
// Invoke's argument list.
type BlockParam struct {
	Var  VarId
	Type typepool.TypeIdx
}

// Block is one basic block: an id, its explicit parameters, a straight-line
// body, and exactly one terminator.
type Block struct {
	Id         BlockId
	Params     []BlockParam
	Body       []Instruction
	Spans      []*Span // parallel to Body; nil entries are synthesized instructions
	Terminator Terminator
}

// Function is one function's control-flow graph plus its variable table.
type Function struct {
	Name       Name
	Params     []Param
	ReturnType typepool.TypeIdx
	Blocks     []*Block
	Entry      BlockId

	// varTypes holds the type of every VarId that appears anywhere in this
	// function: parameters, block parameters, and instruction destinations.
	// Per spec §3.1, the table grows by appending as fresh variables are
	// allocated.
	varTypes []typepool.TypeIdx
}

// NewFunction creates an empty function named name, with no blocks yet.
// Callers typically follow with AddParam for every parameter and then
// AddBlock for the entry block and beyond.
func NewFunction(name Name, returnType typepool.TypeIdx) *Function {
	return &Function{Name: name, ReturnType: returnType}
}

// NewVar allocates a fresh VarId of the given type, appending to the
// variable table.
func (f *Function) NewVar(t typepool.TypeIdx) VarId {
	id := VarId(len(f.varTypes))
	f.varTypes = append(f.varTypes, t)
	return id
}

// VarType returns the type of v. Panics if v was never allocated via NewVar
// (FuncBuilder's Param and BlockParam call NewVar; AddParam does not) — an
// out-of-range VarId is malformed input per spec §7.
func (f *Function) VarType(v VarId) typepool.TypeIdx {
	if int(v) >= len(f.varTypes) {
		panic("ir: VarId out of range — malformed input IR")
	}
	return f.varTypes[v]
}

// NumVars returns the number of variables in the table — the size every
// per-variable analysis array (liveness sets, ownership classifications)
// must be allocated to.
func (f *Function) NumVars() int { return len(f.varTypes) }

// AddParam declares function parameter v of type t, defaulting to Owned
// ownership (the conservative default of spec §3.4). v must already be
// registered in the variable table with the same type (callers normally
// call NewVar immediately before AddParam).
func (f *Function) AddParam(v VarId, t typepool.TypeIdx) {
	f.Params = append(f.Params, Param{Var: v, Type: t, Ownership: Owned})
}

// Block looks up a block by id. Panics on an out-of-range BlockId.
func (f *Function) Block(id BlockId) *Block {
	if int(id) >= len(f.Blocks) {
		panic("ir: BlockId out of range — malformed input IR")
	}
	return f.Blocks[id]
}

// AddBlock appends a new block and returns its id. The first block ever
// added becomes the entry block.
func (f *Function) AddBlock() *Block {
	id := BlockId(len(f.Blocks))
	b := &Block{Id: id}
	f.Blocks = append(f.Blocks, b)
	if len(f.Blocks) == 1 {
		f.Entry = id
	}
	return b
}

// NextBlockId returns the id a freshly appended block would receive,
// without appending one. Used by internal/rcinsert to synthesize
// trampoline blocks that must know their own id before being linked in.
func (f *Function) NextBlockId() BlockId { return BlockId(len(f.Blocks)) }

// PushBlock appends an already-constructed block (whose Id must equal
// NextBlockId()) — the counterpart to NextBlockId for trampoline
// insertion.
func (f *Function) PushBlock(b *Block) {
	if b.Id != f.NextBlockId() {
		panic("ir: PushBlock called with non-sequential BlockId")
	}
	f.Blocks = append(f.Blocks, b)
}
