package ircodec

import (
	"bytes"
	"testing"

	"weakc/internal/cfg"
	"weakc/internal/ir"
	"weakc/internal/token"
)

// buildSample constructs a tiny "fn add(a, b) { ret a + b }" function by
// hand, bypassing irgen, to exercise the codec in isolation.
func buildSample() *ir.Unit {
	b := ir.NewBuilder()

	a := b.Emit(&ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{DataType: ir.Int}})
	a.Alloca.Idx = int32(a.InstrIdx)
	p := b.Emit(&ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{DataType: ir.Int}})
	p.Alloca.Idx = int32(p.InstrIdx)

	bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{
		Op:  token.Plus,
		LHS: &ir.Node{Kind: ir.Sym, SymVal: &ir.SymPayload{Idx: a.Alloca.Idx}},
		RHS: &ir.Node{Kind: ir.Sym, SymVal: &ir.SymPayload{Idx: p.Alloca.Idx}},
	}}
	ret := b.Emit(&ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: false, Body: bin}})
	_ = ret

	fn := &ir.Node{Kind: ir.FuncDecl, FuncDeclVal: &ir.FuncDeclPayload{
		RetType: ir.Int,
		Name:    "add",
		Args:    []*ir.Node{a, p},
		Body:    ir.Instructions(b.Body()),
	}}

	return &ir.Unit{Funcs: []*ir.Node{fn}}
}

func TestWriteReadRoundTrip(t *testing.T) {
	unit := buildSample()

	var buf bytes.Buffer
	if err := Write(&buf, unit); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	if len(got.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(got.Funcs))
	}
	fn := got.Funcs[0]
	if fn.FuncDeclVal.Name != "add" {
		t.Errorf("Name = %q, want add", fn.FuncDeclVal.Name)
	}
	if fn.FuncDeclVal.RetType != ir.Int {
		t.Errorf("RetType = %v, want Int", fn.FuncDeclVal.RetType)
	}
	if len(fn.FuncDeclVal.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(fn.FuncDeclVal.Args))
	}
	if len(fn.FuncDeclVal.Body) != 3 {
		t.Fatalf("expected 3 body instructions, got %d", len(fn.FuncDeclVal.Body))
	}

	retNode := fn.FuncDeclVal.Body[2]
	if retNode.Kind != ir.Ret || retNode.RetVal.IsVoid {
		t.Fatalf("expected non-void ret, got %+v", retNode)
	}
	binNode := retNode.RetVal.Body
	if binNode.Kind != ir.Bin || binNode.BinVal.Op != token.Plus {
		t.Fatalf("expected bin(+), got %+v", binNode)
	}
}

func TestReadRelinksProgramOrder(t *testing.T) {
	unit := buildSample()

	var buf bytes.Buffer
	if err := Write(&buf, unit); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	body := got.Funcs[0].FuncDeclVal.Body
	for i := 0; i+1 < len(body); i++ {
		if body[i].Next != body[i+1] {
			t.Errorf("body[%d].Next not relinked to body[%d]", i, i+1)
		}
		if body[i+1].Prev != body[i] {
			t.Errorf("body[%d].Prev not relinked to body[%d]", i+1, i)
		}
	}
}

func TestReadRebuildsCFG(t *testing.T) {
	unit := buildSample()

	var buf bytes.Buffer
	if err := Write(&buf, unit); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}

	fn := got.Funcs[0]
	// Build should be idempotent (spec's CFG-determinism invariant): calling
	// it again must produce identical edges to what Read already installed.
	before := len(fn.FuncDeclVal.Body[0].Succs)
	cfg.Build(fn)
	after := len(fn.FuncDeclVal.Body[0].Succs)
	if before != after {
		t.Errorf("cfg.Build not idempotent: %d succs before, %d after", before, after)
	}
	if before == 0 {
		t.Errorf("expected Read to have linked at least one successor edge")
	}
}
