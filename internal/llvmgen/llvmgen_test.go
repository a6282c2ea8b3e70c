package llvmgen

import (
	"strings"
	"testing"

	weakir "weakc/internal/ir"
	"weakc/internal/token"
)

// buildAdd constructs "fn add(a, b) { ret a + b }" by hand, the same shape
// internal/irgen would produce for a two-parameter int function.
func buildAdd() *weakir.Unit {
	b := weakir.NewBuilder()

	a := b.Emit(&weakir.Node{Kind: weakir.Alloca, Alloca: &weakir.AllocaPayload{DataType: weakir.Int}})
	a.Alloca.Idx = int32(a.InstrIdx)
	p := b.Emit(&weakir.Node{Kind: weakir.Alloca, Alloca: &weakir.AllocaPayload{DataType: weakir.Int}})
	p.Alloca.Idx = int32(p.InstrIdx)

	bin := &weakir.Node{Kind: weakir.Bin, BinVal: &weakir.BinPayload{
		Op:  token.Plus,
		LHS: &weakir.Node{Kind: weakir.Sym, SymVal: &weakir.SymPayload{Idx: a.Alloca.Idx}},
		RHS: &weakir.Node{Kind: weakir.Sym, SymVal: &weakir.SymPayload{Idx: p.Alloca.Idx}},
	}}
	b.Emit(&weakir.Node{Kind: weakir.Ret, RetVal: &weakir.RetPayload{IsVoid: false, Body: bin}})

	fn := &weakir.Node{Kind: weakir.FuncDecl, FuncDeclVal: &weakir.FuncDeclPayload{
		RetType: weakir.Int,
		Name:    "add",
		Args:    []*weakir.Node{a, p},
		Body:    weakir.Instructions(b.Body()),
	}}
	return &weakir.Unit{Funcs: []*weakir.Node{fn}}
}

func TestEmitSimpleFunction(t *testing.T) {
	unit := buildAdd()

	mod, err := Emit(unit)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}

	if len(mod.Funcs) != 1 {
		t.Fatalf("expected 1 LLVM function, got %d", len(mod.Funcs))
	}
	lf := mod.Funcs[0]
	if lf.Name() != "add" {
		t.Errorf("function name = %q, want add", lf.Name())
	}
	if len(lf.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(lf.Params))
	}
	if len(lf.Blocks) == 0 {
		t.Fatal("expected at least one basic block")
	}

	text := mod.String()
	if !strings.Contains(text, "ret i32") {
		t.Errorf("expected an `ret i32` terminator in emitted module:\n%s", text)
	}
}

func TestEmitRejectsCallToUndeclaredFunction(t *testing.T) {
	b := weakir.NewBuilder()
	call := &weakir.Node{Kind: weakir.FuncCall, FuncCallVal: &weakir.FuncCallPayload{Name: "missing"}}
	b.Emit(&weakir.Node{Kind: weakir.Ret, RetVal: &weakir.RetPayload{IsVoid: true}})

	fn := &weakir.Node{Kind: weakir.FuncDecl, FuncDeclVal: &weakir.FuncDeclPayload{
		RetType: weakir.Void,
		Name:    "caller",
		Body:    weakir.Instructions(b.Body()),
	}}
	// Inject the bad call as a standalone statement ahead of the ret.
	fn.FuncDeclVal.Body = append([]*weakir.Node{call}, fn.FuncDeclVal.Body...)

	_, err := Emit(&weakir.Unit{Funcs: []*weakir.Node{fn}})
	if err == nil {
		t.Fatal("expected an error for a call to an undeclared function")
	}
}
