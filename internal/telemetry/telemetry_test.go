package telemetry

import "testing"

func TestZeroValueLogger_NeverPanics(t *testing.T) {
	var l Logger
	l.Debug("f", "message")
	l.Debugf("f", "x=%d", 1)
	l.Trace("f", "message")
	l.ReportCounters(PassCounters{Function: "f", BlockStartDecrements: 1, EdgeSplitTrampolines: 2})
}

func TestNewRunID_ProducesDistinctIds(t *testing.T) {
	a := NewRunID()
	b := NewRunID()
	if a == "" || b == "" {
		t.Fatal("NewRunID() returned an empty id")
	}
	if a == b {
		t.Error("two calls to NewRunID() produced the same id")
	}
}

func TestNew_AttachesRunIDAndDoesNotPanic(t *testing.T) {
	l := New(NewRunID())
	l.Debug("f", "ran")
}
