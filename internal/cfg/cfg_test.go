package cfg

import (
	"testing"

	"weakc/internal/ir"
)

func fn(body []*ir.Node) *ir.Node {
	for i, n := range body {
		n.InstrIdx = i
	}
	return &ir.Node{Kind: ir.FuncDecl, FuncDeclVal: &ir.FuncDeclPayload{Body: body}}
}

func TestBuildFallsThroughByDefault(t *testing.T) {
	a := &ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{}}
	r := &ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}}
	f := fn([]*ir.Node{a, r})

	Build(f)

	if len(a.Succs) != 1 || a.Succs[0] != r {
		t.Fatalf("a.Succs = %+v, want [r]", a.Succs)
	}
	if len(r.Preds) != 1 || r.Preds[0] != a {
		t.Fatalf("r.Preds = %+v, want [a]", r.Preds)
	}
	if len(r.Succs) != 0 {
		t.Fatalf("ret must have zero successors, got %+v", r.Succs)
	}
}

func TestBuildJumpHasSingleSuccessor(t *testing.T) {
	j := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{Idx: 2}}
	filler := &ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{}}
	target := &ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}}
	f := fn([]*ir.Node{j, filler, target})

	Build(f)

	if len(j.Succs) != 1 || j.Succs[0] != target {
		t.Fatalf("jump Succs = %+v, want [target]", j.Succs)
	}
}

func TestBuildCondHasTwoSuccessors(t *testing.T) {
	cond := &ir.Node{Kind: ir.Cond, CondVal: &ir.CondPayload{GotoLabel: 2}}
	fallthrough_ := &ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{}}
	target := &ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}}
	f := fn([]*ir.Node{cond, fallthrough_, target})

	Build(f)

	if len(cond.Succs) != 2 {
		t.Fatalf("cond Succs = %+v, want 2 entries", cond.Succs)
	}
	if cond.Succs[0] != target || cond.Succs[1] != fallthrough_ {
		t.Fatalf("cond Succs = %+v, want [target, fallthrough]", cond.Succs)
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	a := &ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{}}
	r := &ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}}
	f := fn([]*ir.Node{a, r})

	Build(f)
	first := append([]*ir.Node(nil), a.Succs...)
	Build(f)

	if len(a.Succs) != len(first) || a.Succs[0] != first[0] {
		t.Fatalf("Build is not idempotent: %+v vs %+v", a.Succs, first)
	}
}

func TestBuildEmptyBodyIsNoOp(t *testing.T) {
	f := fn(nil)
	Build(f) // must not panic
}
