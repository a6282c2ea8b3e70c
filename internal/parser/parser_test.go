package parser

import (
	"fmt"
	"testing"

	"weakc/internal/ast"
	"weakc/internal/lexer"
)

// parseString tokenizes and parses input, converting a diag panic into a
// returned error the way Parse itself does, so test helpers can exercise
// both the lexer and parser stage together.
func parseString(input string) (root *ast.Compound, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	toks := lexer.New([]byte(input)).Analyze()
	return New(toks).Parse()
}

func assertParseSuccess(t *testing.T, input, description string) *ast.Compound {
	t.Helper()
	root, err := parseString(input)
	if err != nil {
		t.Errorf("%s: parsing %q failed: %v", description, input, err)
		return nil
	}
	return root
}

func assertParseError(t *testing.T, input, description string) {
	t.Helper()
	_, err := parseString(input)
	if err == nil {
		t.Errorf("%s: expected parsing %q to fail", description, input)
	}
}

func TestTopLevelDecls(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"function prototype", "int add(int a, int b);", true},
		{"function decl", "int add(int a, int b) { return a + b; }", true},
		{"struct decl", "struct point { int x; int y; };", true},
		{"void function", "void main() { }", true},
		{"bare expression at top level", "1 + 2;", false},
		{"missing semicolon after prototype", "int add(int a)", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.shouldPass {
				assertParseSuccess(t, tc.input, tc.name)
			} else {
				assertParseError(t, tc.input, tc.name)
			}
		})
	}
}

func TestVarAndArrayDeclDisambiguation(t *testing.T) {
	root := assertParseSuccess(t, "void f() { int x = 1; int y[4]; }", "var/array decl")
	if root == nil {
		return
	}
	fn := root.Stmts[0].(*ast.FunctionDecl)
	if _, ok := fn.Body.Stmts[0].(*ast.VarDecl); !ok {
		t.Errorf("expected first stmt to be VarDecl, got %T", fn.Body.Stmts[0])
	}
	if _, ok := fn.Body.Stmts[1].(*ast.ArrayDecl); !ok {
		t.Errorf("expected second stmt to be ArrayDecl, got %T", fn.Body.Stmts[1])
	}
}

func TestExpressionPrecedence(t *testing.T) {
	root := assertParseSuccess(t, "void f() { 1 + 2 * 3; }", "precedence")
	if root == nil {
		return
	}
	fn := root.Stmts[0].(*ast.FunctionDecl)
	bin := fn.Body.Stmts[0].(*ast.Binary)
	if bin.Op.String() != "+" {
		t.Fatalf("expected top-level op +, got %s", bin.Op)
	}
	rhs, ok := bin.RHS.(*ast.Binary)
	if !ok || rhs.Op.String() != "*" {
		t.Fatalf("expected RHS to be a * node, got %+v", bin.RHS)
	}
}

func TestAssignmentIsRightAssociative(t *testing.T) {
	root := assertParseSuccess(t, "void f() { int a; int b; int c; a = b = c; }", "right-assoc assignment")
	if root == nil {
		return
	}
	fn := root.Stmts[0].(*ast.FunctionDecl)
	assign := fn.Body.Stmts[3].(*ast.Binary)
	if _, ok := assign.RHS.(*ast.Binary); !ok {
		t.Fatalf("expected RHS of outer assignment to itself be an assignment, got %T", assign.RHS)
	}
}

func TestIfElseIfChain(t *testing.T) {
	assertParseSuccess(t, `void f() { if (1) { } else if (2) { } else { } }`, "if/else if/else chain")
}

func TestLoopsAndBreakContinue(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		shouldPass bool
	}{
		{"while with break", "void f() { while (1) { break; } }", true},
		{"for with continue", "void f() { for (int i = 0; i < 10; i++) { continue; } }", true},
		{"do-while", "void f() { do { } while (1); }", true},
		{"break outside loop", "void f() { break; }", false},
		{"continue outside loop", "void f() { continue; }", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.shouldPass {
				assertParseSuccess(t, tc.input, tc.name)
			} else {
				assertParseError(t, tc.input, tc.name)
			}
		})
	}
}

func TestFunctionCallAndArrayAccess(t *testing.T) {
	root := assertParseSuccess(t, "void f() { g(1, 2); a[0] = 1; }", "call/index")
	if root == nil {
		return
	}
	fn := root.Stmts[0].(*ast.FunctionDecl)
	call, ok := fn.Body.Stmts[0].(*ast.FunctionCall)
	if !ok || call.Name != "g" || len(call.Args) != 2 {
		t.Fatalf("unexpected call node: %+v", fn.Body.Stmts[0])
	}
	assign, ok := fn.Body.Stmts[1].(*ast.Binary)
	if !ok {
		t.Fatalf("expected an assignment, got %T", fn.Body.Stmts[1])
	}
	if _, ok := assign.LHS.(*ast.ArrayAccess); !ok {
		t.Fatalf("expected LHS to be ArrayAccess, got %T", assign.LHS)
	}
}

func TestMemberAccessChain(t *testing.T) {
	root := assertParseSuccess(t, "void f() { a.b.c; }", "chained member access")
	if root == nil {
		return
	}
	fn := root.Stmts[0].(*ast.FunctionDecl)
	outer, ok := fn.Body.Stmts[0].(*ast.MemberAccess)
	if !ok || outer.Member != "c" {
		t.Fatalf("unexpected outer member access: %+v", fn.Body.Stmts[0])
	}
	if _, ok := outer.BaseExpr.(*ast.MemberAccess); !ok {
		t.Fatalf("expected BaseExpr to itself be a MemberAccess, got %T", outer.BaseExpr)
	}
}

func TestPositionsAreAlwaysOneIndexed(t *testing.T) {
	root := assertParseSuccess(t, "int f() { return 1; }", "position check")
	if root == nil {
		return
	}
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if n == nil {
			return
		}
		pos := n.Position()
		if pos.Line < 1 || pos.Column < 1 {
			t.Errorf("node %T has invalid position %+v", n, pos)
		}
	}
	walk(root)
	fn := root.Stmts[0].(*ast.FunctionDecl)
	walk(fn)
	walk(fn.Body)
	for _, s := range fn.Body.Stmts {
		walk(s)
	}
}
