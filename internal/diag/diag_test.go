package diag

import "testing"

func TestErrorFormatsWarningAndErrorSeverity(t *testing.T) {
	warn := &Diagnostic{Severity: Warning, Pos: Pos{Line: 3, Column: 7}, Message: "unused variable x"}
	if got, want := warn.Error(), "Warning at line 3, column 7: unused variable x"; got != want {
		t.Errorf("warn.Error() = %q, want %q", got, want)
	}
	fail := &Diagnostic{Severity: Error, Pos: Pos{Line: 1, Column: 1}, Message: "undeclared symbol x"}
	if got, want := fail.Error(), "Error at line 1, column 1: undeclared symbol x"; got != want {
		t.Errorf("fail.Error() = %q, want %q", got, want)
	}
}

func TestSinkWarnAccumulatesAndFlushClears(t *testing.T) {
	s := NewSink()
	s.Warn(Pos{Line: 1, Column: 1}, "first")
	s.Warn(Pos{Line: 2, Column: 1}, "second %d", 2)
	got := s.Flush()
	if len(got) != 2 {
		t.Fatalf("len(Flush()) = %d, want 2", len(got))
	}
	if got[1].Message != "second 2" {
		t.Errorf("got[1].Message = %q, want %q", got[1].Message, "second 2")
	}
	if more := s.Flush(); len(more) != 0 {
		t.Errorf("Flush() after Flush() = %+v, want empty", more)
	}
}

func TestFailPanicsWithDiagnostic(t *testing.T) {
	defer func() {
		r := recover()
		d, ok := r.(*Diagnostic)
		if !ok {
			t.Fatalf("recovered %T, want *Diagnostic", r)
		}
		if d.Severity != Error {
			t.Errorf("Severity = %v, want Error", d.Severity)
		}
	}()
	Fail(Pos{Line: 5, Column: 2}, "boom %s", "now")
}

func TestFailUnreachablePanicsWithUnreachable(t *testing.T) {
	defer func() {
		r := recover()
		if _, ok := r.(*Unreachable); !ok {
			t.Fatalf("recovered %T, want *Unreachable", r)
		}
	}()
	FailUnreachable("invariant broken")
}

func TestRecoverConvertsDiagnosticPanicToError(t *testing.T) {
	err := runRecovering(func() { Fail(Pos{Line: 1, Column: 1}, "bad") })
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if _, ok := err.(*Diagnostic); !ok {
		t.Fatalf("err is %T, want *Diagnostic", err)
	}
}

func TestRecoverConvertsUnreachablePanicToError(t *testing.T) {
	err := runRecovering(func() { FailUnreachable("nope") })
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if _, ok := err.(*Unreachable); !ok {
		t.Fatalf("err is %T, want *Unreachable", err)
	}
}

func TestRecoverReturnsNilOnCleanReturn(t *testing.T) {
	err := runRecovering(func() {})
	if err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestRecoverRepanicsOnUnknownPanic(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected the unrelated panic to propagate")
		}
	}()
	runRecovering(func() { panic("not a diagnostic") })
}

func runRecovering(fn func()) (err error) {
	defer Recover(&err)
	fn()
	return
}

func TestUnreachableErrorMessage(t *testing.T) {
	u := &Unreachable{Message: "cfg inconsistent"}
	if got, want := u.Error(), "unreachable: cfg inconsistent"; got != want {
		t.Errorf("u.Error() = %q, want %q", got, want)
	}
}
