package typepool

import "testing"

func TestNew_SeedsScalarsAtFixedIndices(t *testing.T) {
	p := New()
	for _, tc := range []struct {
		idx  TypeIdx
		kind Kind
	}{
		{Int, KindInt},
		{Bool, KindBool},
		{Float, KindFloat},
		{Byte, KindByte},
		{Char, KindChar},
		{Unit, KindUnit},
	} {
		if p.Kind(tc.idx) != tc.kind {
			t.Errorf("Kind(%v) = %v, want %v", tc.idx, p.Kind(tc.idx), tc.kind)
		}
		if p.NeedsRC(tc.idx) {
			t.Errorf("NeedsRC(%v) = true, want false for a scalar", tc.idx)
		}
	}
}

func TestTuple_StructurallyEqualTypesIntern(t *testing.T) {
	p := New()
	a := p.Tuple(Int, Bool)
	b := p.Tuple(Int, Bool)
	c := p.Tuple(Bool, Int)

	if a != b {
		t.Error("two Tuples with identical element types should intern to the same TypeIdx")
	}
	if a == c {
		t.Error("Tuples with different element order should not intern to the same TypeIdx")
	}
	if !p.NeedsRC(a) {
		t.Error("a Tuple needs RC even if every element is scalar")
	}
}

func TestFieldType_ReturnsTupleElementTypes(t *testing.T) {
	p := New()
	str := p.String()
	pair := p.Tuple(str, Int)

	if got := p.FieldType(pair, 0); got != str {
		t.Errorf("FieldType(pair, 0) = %v, want %v", got, str)
	}
	if got := p.FieldType(pair, 1); got != Int {
		t.Errorf("FieldType(pair, 1) = %v, want %v", got, Int)
	}
}

func TestFieldType_PanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("FieldType should panic for an out-of-range field index")
		}
	}()
	p := New()
	pair := p.Tuple(Int, Bool)
	p.FieldType(pair, 5)
}

func TestList_And_Box_NeedRC(t *testing.T) {
	p := New()
	list := p.List(Int)
	box := p.Box(Int)

	if !p.NeedsRC(list) {
		t.Error("List needs RC even over a scalar element")
	}
	if !p.NeedsRC(box) {
		t.Error("Box needs RC even over a scalar inner type")
	}
}

func TestClosure_ZeroArgIsValid(t *testing.T) {
	p := New()
	clo := p.Closure()

	if p.Kind(clo) != KindClosure {
		t.Errorf("Kind(clo) = %v, want KindClosure", p.Kind(clo))
	}
	if !p.NeedsRC(clo) {
		t.Error("a Closure always needs RC, even with no captures")
	}
}

func TestSum_DistinctVariantsInternSeparately(t *testing.T) {
	p := New()
	some := p.Sum("Option::Some", Int)
	none := p.Sum("Option::None")

	if some == none {
		t.Error("differently-named Sum variants must not collide")
	}
}
