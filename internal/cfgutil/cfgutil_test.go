package cfgutil

import (
	"reflect"
	"testing"

	"oriarc/internal/ir"
	"oriarc/internal/typepool"
)

func TestPostorder_Linear(t *testing.T) {
	b := ir.NewFuncBuilder("lin", typepool.Int)
	b.Block()
	v := b.Param(typepool.Int)
	b.Block()
	b.Block()

	fn := b.Build()
	fn.Blocks[0].Terminator = ir.Jump{Target: 1}
	fn.Blocks[1].Terminator = ir.Jump{Target: 2}
	fn.Blocks[2].Terminator = ir.Return{Value: v, HasValue: true}

	order := Postorder(fn)
	want := []ir.BlockId{2, 1, 0}
	if !reflect.DeepEqual(order, want) {
		t.Fatalf("Postorder = %v, want %v", order, want)
	}
}

func TestPostorder_UnreachableBlockStillVisited(t *testing.T) {
	b := ir.NewFuncBuilder("f", typepool.Int)
	b.Block()
	v := b.Param(typepool.Int)
	b.Block() // unreachable: nothing jumps here

	fn := b.Build()
	fn.Blocks[0].Terminator = ir.Return{Value: v, HasValue: true}
	fn.Blocks[1].Terminator = ir.Return{Value: v, HasValue: true}

	order := Postorder(fn)
	if len(order) != 2 {
		t.Fatalf("expected both blocks visited, got %v", order)
	}
}

func TestPredecessors_Diamond(t *testing.T) {
	b := ir.NewFuncBuilder("f", typepool.Int)
	b.Block() // 0: entry
	cond := b.Param(typepool.Bool)
	b.Block() // 1: then
	b.Block() // 2: else
	b.Block() // 3: join

	fn := b.Build()
	fn.Blocks[0].Terminator = ir.Branch{Cond: cond, Then: 1, Else: 2}
	fn.Blocks[1].Terminator = ir.Jump{Target: 3}
	fn.Blocks[2].Terminator = ir.Jump{Target: 3}
	fn.Blocks[3].Terminator = ir.Return{HasValue: false}

	preds := Predecessors(fn)
	if !reflect.DeepEqual(preds[3], []ir.BlockId{1, 2}) {
		t.Fatalf("preds[3] = %v, want [1 2]", preds[3])
	}
	if len(preds[0]) != 0 {
		t.Fatalf("preds[0] should be empty, got %v", preds[0])
	}
}

func TestInvokeDefs(t *testing.T) {
	b := ir.NewFuncBuilder("f", typepool.Int)
	b.Block() // 0: entry
	b.Block() // 1: normal
	b.Block() // 2: unwind

	fn := b.Build()
	dst := fn.NewVar(typepool.Int)
	fn.Blocks[0].Terminator = ir.Invoke{Dst: dst, Func: "g", Normal: 1, Unwind: 2}
	fn.Blocks[1].Terminator = ir.Return{Value: dst, HasValue: true}
	fn.Blocks[2].Terminator = ir.Resume{}

	defs := InvokeDefs(fn)
	if !reflect.DeepEqual(defs[1], []ir.VarId{dst}) {
		t.Fatalf("defs[1] = %v, want [%v]", defs[1], dst)
	}
	if _, ok := defs[2]; ok {
		t.Fatalf("unwind block must not have an invoke-def")
	}
}
