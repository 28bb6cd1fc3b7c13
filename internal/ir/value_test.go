package ir

import "testing"

func TestLiteral_UsesNothing(t *testing.T) {
	if got := (Literal{Payload: 3}).Uses(); got != nil {
		t.Errorf("Uses() = %v, want nil", got)
	}
}

func TestVarCopy_UsesItsSource(t *testing.T) {
	if got := (VarCopy{Var: 7}).Uses(); len(got) != 1 || got[0] != 7 {
		t.Errorf("Uses() = %v, want [7]", got)
	}
}

func TestPrimOp_UsesEveryArg(t *testing.T) {
	p := PrimOp{Op: "add", Args: []VarId{1, 2}}
	got := p.Uses()
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("Uses() = %v, want [1 2]", got)
	}
}

func TestOwnership_String(t *testing.T) {
	if Owned.String() != "owned" {
		t.Errorf("Owned.String() = %q, want %q", Owned.String(), "owned")
	}
	if Borrowed.String() != "borrowed" {
		t.Errorf("Borrowed.String() = %q, want %q", Borrowed.String(), "borrowed")
	}
}
