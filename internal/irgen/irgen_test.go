package irgen

import (
	"testing"

	"weakc/internal/ir"
	"weakc/internal/lexer"
	"weakc/internal/parser"
)

func generateString(t *testing.T, input string) *ir.Unit {
	t.Helper()
	toks := lexer.New([]byte(input)).Analyze()
	root, err := parser.New(toks).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", input, err)
	}
	return Generate(root)
}

func funcByName(t *testing.T, u *ir.Unit, name string) *ir.Node {
	t.Helper()
	for _, fn := range u.Funcs {
		if fn.FuncDeclVal.Name == name {
			return fn
		}
	}
	t.Fatalf("no function named %q in unit", name)
	return nil
}

func TestGenerateSkipsPrototypesAndStructs(t *testing.T) {
	u := generateString(t, `
		struct point { int x; int y; };
		int add(int a, int b);
		int add(int a, int b) { return a + b; }
	`)
	if len(u.Funcs) != 1 {
		t.Fatalf("len(u.Funcs) = %d, want exactly 1 (only the definition)", len(u.Funcs))
	}
}

func TestGenerateParamsBecomeLeadingAllocas(t *testing.T) {
	u := generateString(t, "int add(int a, int b) { return a + b; }")
	fn := funcByName(t, u, "add")
	if len(fn.FuncDeclVal.Args) != 2 {
		t.Fatalf("len(Args) = %d, want 2", len(fn.FuncDeclVal.Args))
	}
	if fn.FuncDeclVal.Args[0].Kind != ir.Alloca || fn.FuncDeclVal.Args[1].Kind != ir.Alloca {
		t.Fatalf("expected both params to lower to Alloca nodes")
	}
}

func TestGenerateImplicitVoidReturnAppended(t *testing.T) {
	u := generateString(t, "void f() { int x; }")
	fn := funcByName(t, u, "f")
	body := fn.FuncDeclVal.Body
	last := body[len(body)-1]
	if last.Kind != ir.Ret || !last.RetVal.IsVoid {
		t.Fatalf("expected an implicit void return appended, got last = %+v", last)
	}
}

func TestGenerateExplicitReturnIsNotDuplicated(t *testing.T) {
	u := generateString(t, "int f() { return 1; }")
	fn := funcByName(t, u, "f")
	body := fn.FuncDeclVal.Body
	retCount := 0
	for _, n := range body {
		if n.Kind == ir.Ret {
			retCount++
		}
	}
	if retCount != 1 {
		t.Fatalf("ret count = %d, want exactly 1 (no duplicate implicit return)", retCount)
	}
}

func TestGenerateIfWithoutElseProducesCondAndSkipJump(t *testing.T) {
	u := generateString(t, "void f() { int x; if (x) { x = 1; } }")
	fn := funcByName(t, u, "f")
	var sawCond, sawJump bool
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.Cond {
			sawCond = true
		}
		if n.Kind == ir.Jump {
			sawJump = true
		}
	}
	if !sawCond || !sawJump {
		t.Fatalf("expected at least one Cond and one Jump in lowered if, body = %+v", fn.FuncDeclVal.Body)
	}
}

func TestGenerateWhileLoopsBackToCond(t *testing.T) {
	u := generateString(t, "void f() { int x; while (x) { x = 0; } }")
	fn := funcByName(t, u, "f")
	body := fn.FuncDeclVal.Body
	var condIdx int = -1
	for i, n := range body {
		if n.Kind == ir.Cond {
			condIdx = i
			break
		}
	}
	if condIdx == -1 {
		t.Fatalf("expected a Cond instruction in the lowered while")
	}
	var loopsBack bool
	for _, n := range body {
		if n.Kind == ir.Jump && int(n.JumpVal.Idx) == condIdx {
			loopsBack = true
		}
	}
	if !loopsBack {
		t.Fatalf("expected a trailing jump back to the loop condition at idx %d, body = %+v", condIdx, body)
	}
}

func TestGenerateBreakJumpsPastLoop(t *testing.T) {
	u := generateString(t, "void f() { while (1) { break; } }")
	fn := funcByName(t, u, "f")
	body := fn.FuncDeclVal.Body
	last := body[len(body)-1]
	if last.Kind != ir.Ret {
		t.Fatalf("expected the function to end in a Ret node, got %+v", last)
	}
	var breakTargetsExit bool
	for _, n := range body {
		if n.Kind == ir.Jump && int(n.JumpVal.Idx) == last.InstrIdx {
			breakTargetsExit = true
		}
	}
	if !breakTargetsExit {
		t.Fatalf("expected the break jump to target the implicit exit return, body = %+v", body)
	}
}

func TestGenerateCompoundAssignDesugarsToBinary(t *testing.T) {
	u := generateString(t, "void f() { int x; x += 1; }")
	fn := funcByName(t, u, "f")
	var sawPlus bool
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.Store && n.StoreVal.Body != nil && n.StoreVal.Body.Kind == ir.Bin && n.StoreVal.Body.BinVal.Op.String() == "+" {
			sawPlus = true
		}
	}
	if !sawPlus {
		t.Fatalf("expected x += 1 to desugar to an underlying + bin node, body = %+v", fn.FuncDeclVal.Body)
	}
}

func TestGeneratePostfixIncReturnsOldValue(t *testing.T) {
	u := generateString(t, "void f() { int x; int y; y = x++; }")
	fn := funcByName(t, u, "f")
	var storeCount int
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.Store {
			storeCount++
		}
	}
	if storeCount < 2 {
		t.Fatalf("expected at least 2 stores (x's increment, y's assignment), got %d", storeCount)
	}
	// x and y are the first two allocas (instr_idx 0 and 1). The store into
	// y must read a copy of x's value taken before the increment, not x's
	// own slot, which already holds the incremented value by then.
	var yStore *ir.Node
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.Store && n.StoreVal.Idx == 1 {
			yStore = n
		}
	}
	if yStore == nil || yStore.StoreVal.Body.Kind != ir.Sym || yStore.StoreVal.Body.SymVal.Idx == 0 {
		t.Fatalf("expected y to be assigned from a copy of x's old value, got store %+v", yStore)
	}
}

func TestGenerateArrayAccessEmitsArrayAccessNode(t *testing.T) {
	u := generateString(t, "void f() { int a[4]; int x; x = a[0]; }")
	fn := funcByName(t, u, "f")
	var sawArrayAccess bool
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.ArrayAccess {
			sawArrayAccess = true
		}
	}
	if !sawArrayAccess {
		t.Fatalf("expected an ArrayAccess instruction, body = %+v", fn.FuncDeclVal.Body)
	}
}

func TestGenerateFunctionCallStoresResultInTemp(t *testing.T) {
	u := generateString(t, `
		int g() { return 1; }
		void f() { int x; x = g(); }
	`)
	fn := funcByName(t, u, "f")
	var sawCall bool
	for _, n := range fn.FuncDeclVal.Body {
		if n.Kind == ir.Store && n.StoreVal.Type == ir.StoreCall && n.StoreVal.Body.Kind == ir.FuncCall {
			sawCall = true
		}
	}
	if !sawCall {
		t.Fatalf("expected a FuncCall instruction, body = %+v", fn.FuncDeclVal.Body)
	}
}

func TestGenerateVoidFunctionRetType(t *testing.T) {
	u := generateString(t, "void f() { }")
	fn := funcByName(t, u, "f")
	if fn.FuncDeclVal.RetType != ir.Void {
		t.Fatalf("RetType = %v, want Void", fn.FuncDeclVal.RetType)
	}
}
