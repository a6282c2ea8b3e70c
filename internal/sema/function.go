// Function analysis: call-site arity, void/non-void return correctness
// (spec §4.5). Grounded on
// original_source/lib/src/FrontEnd/Analysis/FunctionAnalysis.cpp. Assumes
// VariableUse has already run (so every call resolves to a declaration).
package sema

import (
	"weakc/internal/ast"
	"weakc/internal/diag"
)

// Function runs arity and return-correctness checks over a translation
// unit's function declarations.
type Function struct {
	protos map[string]*ast.FunctionPrototype
	decls  map[string]*ast.FunctionDecl
}

// NewFunction returns a Function analysis.
func NewFunction() *Function {
	return &Function{protos: map[string]*ast.FunctionPrototype{}, decls: map[string]*ast.FunctionDecl{}}
}

// Analyze runs over root's top-level declarations.
func (f *Function) Analyze(root *ast.Compound) {
	for _, d := range root.Stmts {
		switch decl := d.(type) {
		case *ast.FunctionPrototype:
			f.protos[decl.Name] = decl
		case *ast.FunctionDecl:
			f.decls[decl.Name] = decl
		}
	}
	for _, d := range root.Stmts {
		if decl, ok := d.(*ast.FunctionDecl); ok {
			f.analyzeFunctionDecl(decl)
		}
	}
}

func (f *Function) paramCount(name string) (int, bool) {
	if d, ok := f.decls[name]; ok {
		return len(d.Params), true
	}
	if d, ok := f.protos[name]; ok {
		return len(d.Params), true
	}
	return 0, false
}

func (f *Function) analyzeFunctionDecl(d *ast.FunctionDecl) {
	sawReturn := false
	sawReturnValue := false
	var lastReturn *ast.Return

	var walk func(n ast.Node)
	walkExpr := func(n ast.Node) {
		walkCalls(n, func(call *ast.FunctionCall) {
			if n, ok := f.paramCount(call.Name); ok && n != len(call.Args) {
				diag.Fail(p(call), "Function `%s` expects %d argument(s), got %d", call.Name, n, len(call.Args))
			}
		})
	}
	walk = func(n ast.Node) {
		switch s := n.(type) {
		case *ast.Compound:
			for _, st := range s.Stmts {
				walk(st)
			}
		case *ast.If:
			walkExpr(s.Cond)
			walk(s.Then)
			if s.Else != nil {
				walk(s.Else)
			}
		case *ast.For:
			if s.Init != nil {
				walk(s.Init)
			}
			if s.Cond != nil {
				walkExpr(s.Cond)
			}
			if s.Step != nil {
				walkExpr(s.Step)
			}
			walk(s.Body)
		case *ast.While:
			walkExpr(s.Cond)
			walk(s.Body)
		case *ast.DoWhile:
			walk(s.Body)
			walkExpr(s.Cond)
		case *ast.Return:
			sawReturn = true
			lastReturn = s
			if s.Operand != nil {
				sawReturnValue = true
				walkExpr(s.Operand)
				if d.ReturnType == ast.Void {
					diag.Fail(p(s), "Cannot return value from void function")
				}
			}
		case *ast.VarDecl:
			if s.Init != nil {
				walkExpr(s.Init)
			}
		default:
			walkExpr(n)
		}
	}

	walk(d.Body)

	if d.ReturnType != ast.Void && !sawReturn {
		diag.Fail(p(d), "Expected return value")
	}
	_ = sawReturnValue
	_ = lastReturn
}

// walkCalls visits every FunctionCall reachable from n (a shallow
// expression walk; statements are not descended into here, since
// analyzeFunctionDecl's walk already recurses statements).
func walkCalls(n ast.Node, visit func(*ast.FunctionCall)) {
	if n == nil {
		return
	}
	switch e := n.(type) {
	case *ast.FunctionCall:
		visit(e)
		for _, a := range e.Args {
			walkCalls(a, visit)
		}
	case *ast.Binary:
		walkCalls(e.LHS, visit)
		walkCalls(e.RHS, visit)
	case *ast.Unary:
		walkCalls(e.Operand, visit)
	case *ast.ArrayAccess:
		for _, idx := range e.Indices {
			walkCalls(idx, visit)
		}
	case *ast.MemberAccess:
		walkCalls(e.BaseExpr, visit)
	}
}
