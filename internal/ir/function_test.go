package ir

import (
	"testing"

	"oriarc/internal/typepool"
)

func TestNewVar_AllocatesDenselyIncreasingIds(t *testing.T) {
	fn := NewFunction("f", typepool.Int)
	a := fn.NewVar(typepool.Int)
	b := fn.NewVar(typepool.Bool)

	if a != 0 || b != 1 {
		t.Errorf("NewVar() = %v, %v, want 0, 1", a, b)
	}
	if fn.NumVars() != 2 {
		t.Errorf("NumVars() = %d, want 2", fn.NumVars())
	}
	if fn.VarType(a) != typepool.Int || fn.VarType(b) != typepool.Bool {
		t.Error("VarType did not return the types passed to NewVar")
	}
}

func TestVarType_PanicsOnOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("VarType should panic on an unallocated VarId")
		}
	}()
	NewFunction("f", typepool.Int).VarType(0)
}

func TestAddParam_DefaultsToOwned(t *testing.T) {
	fn := NewFunction("f", typepool.Int)
	v := fn.NewVar(typepool.Int)
	fn.AddParam(v, typepool.Int)

	if fn.Params[0].Ownership != Owned {
		t.Errorf("AddParam's default ownership = %v, want Owned", fn.Params[0].Ownership)
	}
}

func TestAddBlock_FirstBlockBecomesEntry(t *testing.T) {
	fn := NewFunction("f", typepool.Int)
	first := fn.AddBlock()
	fn.AddBlock()

	if fn.Entry != first.Id {
		t.Errorf("Entry = %v, want first block's id %v", fn.Entry, first.Id)
	}
}

func TestBlock_PanicsOnOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Block should panic on an out-of-range BlockId")
		}
	}()
	NewFunction("f", typepool.Int).Block(0)
}

func TestNextBlockIdAndPushBlock(t *testing.T) {
	fn := NewFunction("f", typepool.Int)
	fn.AddBlock()

	next := fn.NextBlockId()
	if next != 1 {
		t.Errorf("NextBlockId() = %v, want 1", next)
	}

	fn.PushBlock(&Block{Id: next, Terminator: Return{HasValue: false}})
	if len(fn.Blocks) != 2 {
		t.Errorf("len(Blocks) = %d, want 2", len(fn.Blocks))
	}
}

func TestPushBlock_PanicsOnNonSequentialId(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("PushBlock should panic when Id does not equal NextBlockId()")
		}
	}()
	fn := NewFunction("f", typepool.Int)
	fn.PushBlock(&Block{Id: 5})
}
