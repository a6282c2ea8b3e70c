package scope

import "testing"

func TestPushLookupAtSameDepth(t *testing.T) {
	s := New()
	s.Push("x", 1)
	if e := s.Lookup("x"); e == nil || e.Value != 1 {
		t.Fatalf("Lookup(x) = %+v, want value 1", e)
	}
}

func TestShadowingInnerScopeWins(t *testing.T) {
	s := New()
	s.Push("x", "outer")
	s.StartScope()
	s.Push("x", "inner")

	if e := s.Lookup("x"); e == nil || e.Value != "inner" {
		t.Fatalf("Lookup(x) = %+v, want value inner", e)
	}

	s.EndScope()
	if e := s.Lookup("x"); e == nil || e.Value != "outer" {
		t.Fatalf("Lookup(x) after EndScope = %+v, want value outer", e)
	}
}

func TestEndScopeBalance(t *testing.T) {
	s := New()
	if s.Depth() != 0 {
		t.Fatalf("initial Depth() = %d, want 0", s.Depth())
	}
	s.StartScope()
	s.StartScope()
	if s.Depth() != 2 {
		t.Fatalf("Depth() = %d, want 2", s.Depth())
	}
	s.EndScope()
	s.EndScope()
	if s.Depth() != 0 {
		t.Fatalf("Depth() after matched EndScope calls = %d, want 0", s.Depth())
	}
}

func TestDeclaredAtCurrentDepth(t *testing.T) {
	s := New()
	s.Push("x", nil)
	if !s.DeclaredAtCurrentDepth("x") {
		t.Error("expected x to be declared at current depth")
	}
	s.StartScope()
	if s.DeclaredAtCurrentDepth("x") {
		t.Error("expected x (declared at outer depth) not to count at the new depth")
	}
}

func TestLookupMissingReturnsNil(t *testing.T) {
	s := New()
	if e := s.Lookup("missing"); e != nil {
		t.Fatalf("Lookup(missing) = %+v, want nil", e)
	}
}

func TestAddUseIncrementsInnermostEntry(t *testing.T) {
	s := New()
	s.Push("x", nil)
	s.AddUse("x")
	s.AddUse("x")
	if e := s.Lookup("x"); e == nil || e.Uses != 2 {
		t.Fatalf("Uses = %+v, want 2", e)
	}
}

func TestCurrScopeUsesEnumeratesOnlyCurrentDepth(t *testing.T) {
	s := New()
	s.Push("outer", nil)
	s.StartScope()
	s.Push("a", nil)
	s.Push("b", nil)

	got := s.CurrScopeUses()
	if len(got) != 2 {
		t.Fatalf("CurrScopeUses() = %+v, want 2 entries", got)
	}
}

func TestEndScopeRemovesShadowedEntryNotOuter(t *testing.T) {
	s := New()
	s.Push("x", "outer")
	s.StartScope()
	s.Push("x", "inner")
	s.EndScope()

	bucket := s.entries["x"]
	if len(bucket) != 1 || bucket[0].Value != "outer" {
		t.Fatalf("entries[x] after EndScope = %+v, want only the outer entry", bucket)
	}
}
