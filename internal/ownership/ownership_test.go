package ownership

import (
	"testing"

	"github.com/stretchr/testify/require"

	"oriarc/internal/ir"
	"oriarc/internal/typepool"
)

// A borrowed parameter is classified BorrowedFrom itself.
func TestInfer_BorrowedParam(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)

	b := ir.NewFuncBuilder("len_of", typepool.Int)
	b.Block()
	list := b.Param(lt)
	n := b.Let(typepool.Int, ir.PrimOp{Op: "list_len", Args: []ir.VarId{list}})
	b.Return(n)
	fn := b.Build()
	fn.Params[0].Ownership = ir.Borrowed

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, BorrowedFrom, d[list].Kind)
	require.Equal(t, list, d[list].Root)
}

// An owned parameter is classified Owned.
func TestInfer_OwnedParam(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)

	b := ir.NewFuncBuilder("identity", lt)
	b.Block()
	list := b.Param(lt)
	b.Return(list)
	fn := b.Build()
	fn.Params[0].Ownership = ir.Owned

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, Owned, d[list].Kind)
}

// Construct and Reuse results are Fresh.
func TestInfer_ConstructIsFresh(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)
	boxTy := pool.Box(lt)

	b := ir.NewFuncBuilder("wrap", boxTy)
	b.Block()
	list := b.Param(lt)
	box := b.Construct(boxTy, "Box", list)
	b.Return(box)
	fn := b.Build()

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, Fresh, d[box].Kind)
}

// Apply/ApplyIndirect results are Owned.
func TestInfer_ApplyResultIsOwned(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)

	b := ir.NewFuncBuilder("forward", lt)
	b.Block()
	list := b.Param(lt)
	out := b.Apply(lt, "transform", list)
	b.Return(out)
	fn := b.Build()

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, Owned, d[out].Kind)
}

// Block parameters are always Owned, regardless of what fed them.
func TestInfer_BlockParamsAreOwned(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)

	b := ir.NewFuncBuilder("loop_head", lt)
	b.Block()
	list := b.Param(lt)
	b.Jump(1, list)
	b.Block()
	bp := b.BlockParam(lt)
	b.Return(bp)
	fn := b.Build()
	fn.Params[0].Ownership = ir.Borrowed

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, Owned, d[bp].Kind)
}

// A VarCopy alias inherits its source's classification, including Root.
func TestInfer_LetAliasInherits(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)

	b := ir.NewFuncBuilder("alias", lt)
	b.Block()
	list := b.Param(lt)
	alias := b.Let(lt, ir.VarCopy{Var: list})
	b.Return(alias)
	fn := b.Build()
	fn.Params[0].Ownership = ir.Borrowed

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, BorrowedFrom, d[alias].Kind)
	require.Equal(t, list, d[alias].Root)
}

// Projecting from an Owned/Fresh value borrows from that value directly;
// projecting again from the result compresses to the same root rather than
// nesting.
func TestInfer_ProjectionChainCompressesToRoot(t *testing.T) {
	pool := typepool.New()
	lt := pool.List(typepool.Int)
	innerTy := pool.Tuple(lt, typepool.Int)
	outerTy := pool.Tuple(innerTy, typepool.Int)

	b := ir.NewFuncBuilder("deep_project", lt)
	b.Block()
	outer := b.Param(outerTy)
	inner := b.Project(innerTy, outer, 0)
	elem := b.Project(lt, inner, 0)
	b.Return(elem)
	fn := b.Build()
	fn.Params[0].Ownership = ir.Borrowed

	d := Infer(fn, ir.PoolClassifier{Pool: pool})
	require.Equal(t, BorrowedFrom, d[inner].Kind)
	require.Equal(t, outer, d[inner].Root)
	require.Equal(t, BorrowedFrom, d[elem].Kind)
	require.Equal(t, outer, d[elem].Root, "projection chain must compress to the ultimate root, not nest")
}
