package ir

import "testing"

func TestReturn_UsesValueOnlyWhenPresent(t *testing.T) {
	withValue := Return{Value: 5, HasValue: true}
	if got := withValue.UsedVars(); len(got) != 1 || got[0] != 5 {
		t.Errorf("UsedVars() = %v, want [5]", got)
	}

	voidReturn := Return{HasValue: false}
	if got := voidReturn.UsedVars(); len(got) != 0 {
		t.Errorf("a void Return should use no variables, got %v", got)
	}
	if got := withValue.Successors(); got != nil {
		t.Errorf("Return has no successors, got %v", got)
	}
}

func TestBranch_SuccessorsInThenElseOrder(t *testing.T) {
	b := Branch{Cond: 1, Then: 2, Else: 3}
	got := b.Successors()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Successors() = %v, want [2 3]", got)
	}
}

func TestSwitch_SuccessorsAreCasesThenDefault(t *testing.T) {
	s := Switch{
		Scrutinee: 1,
		Cases:     []SwitchCase{{Tag: 0, Target: 2}, {Tag: 1, Target: 3}},
		Default:   4,
	}
	got := s.Successors()
	want := []BlockId{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Successors() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Successors()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestInvoke_SuccessorsAreNormalThenUnwind(t *testing.T) {
	inv := Invoke{Dst: 1, Func: "f", Args: []VarId{2}, Normal: 3, Unwind: 4}
	got := inv.Successors()
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Errorf("Successors() = %v, want [3 4]", got)
	}
	if got := inv.UsedVars(); len(got) != 1 || got[0] != 2 {
		t.Errorf("UsedVars() = %v, want [2]", got)
	}
}

func TestResumeUnreachable_NoUsesNoSuccessors(t *testing.T) {
	if got := (Resume{}).Successors(); got != nil {
		t.Errorf("Resume has no successors, got %v", got)
	}
	if got := (Unreachable{}).UsedVars(); got != nil {
		t.Errorf("Unreachable uses no variables, got %v", got)
	}
}
