package ir

import "testing"

func TestEmitAssignsInstrIdxOnlyToSlotOccupyingKinds(t *testing.T) {
	b := NewBuilder()

	imm := b.Emit(&Node{Kind: Imm, ImmVal: &ImmPayload{Type: ImmInt, Int: 1}})
	if imm.InstrIdx != -1 {
		t.Errorf("Imm InstrIdx = %d, want -1", imm.InstrIdx)
	}

	alloca := b.Emit(&Node{Kind: Alloca, Alloca: &AllocaPayload{DataType: Int}})
	if alloca.InstrIdx != 0 {
		t.Errorf("first slot-occupying InstrIdx = %d, want 0", alloca.InstrIdx)
	}

	sym := b.Emit(&Node{Kind: Sym, SymVal: &SymPayload{Idx: 0}})
	if sym.InstrIdx != -1 {
		t.Errorf("Sym InstrIdx = %d, want -1", sym.InstrIdx)
	}

	ret := b.Emit(&Node{Kind: Ret, RetVal: &RetPayload{IsVoid: true}})
	if ret.InstrIdx != 1 {
		t.Errorf("second slot-occupying InstrIdx = %d, want 1", ret.InstrIdx)
	}
}

func TestEmitLinksProgramOrder(t *testing.T) {
	b := NewBuilder()
	a := b.Emit(&Node{Kind: Alloca, Alloca: &AllocaPayload{DataType: Int}})
	c := b.Emit(&Node{Kind: Ret, RetVal: &RetPayload{IsVoid: true}})

	if a.Next != c {
		t.Error("expected a.Next == c")
	}
	if c.Prev != a {
		t.Error("expected c.Prev == a")
	}
	if b.Body() != a {
		t.Error("expected Body() to return the first emitted node")
	}
	if b.Tail() != c {
		t.Error("expected Tail() to return the last emitted node")
	}
}

func TestInstructionsFlattensInProgramOrder(t *testing.T) {
	b := NewBuilder()
	a := b.Emit(&Node{Kind: Alloca, Alloca: &AllocaPayload{DataType: Int}})
	r := b.Emit(&Node{Kind: Ret, RetVal: &RetPayload{IsVoid: true}})

	got := Instructions(b.Body())
	if len(got) != 2 || got[0] != a || got[1] != r {
		t.Fatalf("Instructions() = %+v, want [a, r]", got)
	}
}

func TestInstructionsOfNilHeadIsEmpty(t *testing.T) {
	if got := Instructions(nil); len(got) != 0 {
		t.Fatalf("Instructions(nil) = %+v, want empty", got)
	}
}
