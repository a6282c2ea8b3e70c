// Package sema runs weak's three coupled semantic analyses over the AST in
// sequence: variable-use, function, and type analysis (spec §4.4–§4.6).
// Grounded on original_source/lib/src/FrontEnd/Analysis/
// VariableUseAnalysis.cpp, FunctionAnalysis.cpp, and TypeAnalysis.cpp.
package sema

import (
	"weakc/internal/ast"
	"weakc/internal/diag"
	"weakc/internal/scope"
)

// VariableUse walks root, resolving every symbol/array-access/function-call
// reference against scope.Storage and raising redeclaration/undeclared
// errors and unused-variable/function warnings (spec §4.4).
type VariableUse struct {
	storage *scope.Storage
	sink    *diag.Sink
}

// NewVariableUse returns an analysis using sink for warnings.
func NewVariableUse(sink *diag.Sink) *VariableUse {
	return &VariableUse{storage: scope.New(), sink: sink}
}

// Analyze runs the analysis over root (a Compound of top-level
// declarations). It panics via diag.Fail on the first error; callers
// recover at the pipeline stage boundary.
func (v *VariableUse) Analyze(root *ast.Compound) {
	v.storage.StartScope()
	for _, d := range root.Stmts {
		v.visitTopLevel(d)
	}
	v.storage.EndScope()
}

func p(n ast.Node) diag.Pos { pp := n.Position(); return diag.Pos{Line: pp.Line, Column: pp.Column} }

func (v *VariableUse) assertDeclared(name string, n ast.Node, isCall bool) *scope.Entry {
	e := v.storage.Lookup(name)
	if e == nil {
		what := "Variable"
		if isCall {
			what = "Function"
		}
		diag.Fail(p(n), "%s `%s` not found", what, name)
	}
	return e
}

func (v *VariableUse) assertNotDeclared(name string, n ast.Node) {
	if v.storage.DeclaredAtCurrentDepth(name) {
		diag.Fail(p(n), "Variable `%s` already declared", name)
	}
}

func (v *VariableUse) visitTopLevel(n ast.Node) {
	switch d := n.(type) {
	case *ast.FunctionPrototype:
		v.assertNotDeclared(d.Name, d)
		for _, a := range d.Params {
			_ = a
		}
		v.storage.Push(d.Name, d)
	case *ast.FunctionDecl:
		v.visitFunctionDecl(d)
	case *ast.StructDecl:
		v.assertNotDeclared(d.Name, d)
		v.storage.Push(d.Name, d)
	default:
		diag.FailUnreachable("unexpected top-level declaration kind")
	}
}

func (v *VariableUse) visitFunctionDecl(d *ast.FunctionDecl) {
	v.storage.StartScope()
	// Push before visiting the body, to support recursive calls.
	v.storage.Push(d.Name, d)
	for _, param := range d.Params {
		v.assertNotDeclared(param.Name, param)
		v.storage.Push(param.Name, param)
	}
	v.visitCompoundNoScope(d.Body)

	v.makeUnusedVarAnalysis()
	v.storage.EndScope()
	// Push again so the function is visible outside its own body.
	v.storage.Push(d.Name, d)
}

func (v *VariableUse) visitCompound(c *ast.Compound) {
	v.storage.StartScope()
	v.visitCompoundNoScope(c)
	v.makeUnusedVarAndFuncAnalysis()
	v.storage.EndScope()
}

func (v *VariableUse) visitCompoundNoScope(c *ast.Compound) {
	for _, s := range c.Stmts {
		v.visitStmt(s)
	}
}

func (v *VariableUse) visitStmt(n ast.Node) {
	switch s := n.(type) {
	case *ast.VarDecl:
		v.assertNotDeclared(s.Name, s)
		if s.Init != nil {
			v.visitExpr(s.Init)
		}
		v.storage.Push(s.Name, s)
	case *ast.ArrayDecl:
		v.assertNotDeclared(s.Name, s)
		v.storage.Push(s.Name, s)
	case *ast.If:
		v.visitExpr(s.Cond)
		v.visitCompound(s.Then)
		if s.Else != nil {
			v.visitCompound(s.Else)
		}
	case *ast.For:
		v.storage.StartScope()
		if s.Init != nil {
			v.visitStmt(s.Init)
		}
		if s.Cond != nil {
			v.visitExpr(s.Cond)
		}
		if s.Step != nil {
			v.visitExpr(s.Step)
		}
		v.visitCompoundNoScope(s.Body)
		v.makeUnusedVarAndFuncAnalysis()
		v.storage.EndScope()
	case *ast.While:
		v.visitExpr(s.Cond)
		v.visitCompound(s.Body)
	case *ast.DoWhile:
		v.visitCompound(s.Body)
		v.visitExpr(s.Cond)
	case *ast.Break, *ast.Continue:
		// no references
	case *ast.Return:
		if s.Operand != nil {
			v.visitExpr(s.Operand)
		}
	case *ast.Compound:
		v.visitCompound(s)
	default:
		v.visitExpr(n)
	}
}

func (v *VariableUse) addUseOnVarAccess(n ast.Node) {
	switch s := n.(type) {
	case *ast.Symbol:
		v.storage.AddUse(s.Name)
	case *ast.ArrayAccess:
		v.storage.AddUse(s.Name)
	}
}

func (v *VariableUse) visitExpr(n ast.Node) {
	switch e := n.(type) {
	case *ast.Binary:
		v.visitExpr(e.LHS)
		v.visitExpr(e.RHS)
		v.addUseOnVarAccess(e.LHS)
		v.addUseOnVarAccess(e.RHS)
	case *ast.Unary:
		if _, ok := e.Operand.(*ast.Symbol); !ok {
			if _, ok := e.Operand.(*ast.ArrayAccess); !ok {
				diag.Fail(p(e), "Variable as argument of unary operator expected")
			}
		}
		v.visitExpr(e.Operand)
		v.addUseOnVarAccess(e.Operand)
	case *ast.FunctionCall:
		v.assertDeclared(e.Name, e, true)
		entry := v.storage.Lookup(e.Name)
		switch entry.Value.(type) {
		case *ast.FunctionDecl, *ast.FunctionPrototype:
		default:
			diag.Fail(p(e), "`%s` is not a function", e.Name)
		}
		v.storage.AddUse(e.Name)
		for _, a := range e.Args {
			v.visitExpr(a)
		}
	case *ast.ArrayAccess:
		v.assertDeclared(e.Name, e, false)
		v.storage.AddUse(e.Name)
		for _, idx := range e.Indices {
			v.visitExpr(idx)
		}
	case *ast.MemberAccess:
		v.visitExpr(e.BaseExpr)
	case *ast.Symbol:
		v.assertDeclared(e.Name, e, false)
		v.storage.AddUse(e.Name)
	case *ast.CharLit, *ast.IntLit, *ast.FloatLit, *ast.StringLit, *ast.BoolLit:
		// literals reference nothing
	default:
		diag.FailUnreachable("unexpected expression kind in variable-use analysis")
	}
}

// makeUnusedVarAndFuncAnalysis warns about both unused variables and unused
// functions declared at the current scope, with `main` exempt (compound
// block exit, per VariableUseAnalysis.cpp's MakeUnusedVarAndFuncAnalysis).
func (v *VariableUse) makeUnusedVarAndFuncAnalysis() {
	for _, e := range v.storage.CurrScopeUses() {
		decl, isFunc := e.Value.(*ast.FunctionDecl)
		isMain := isFunc && decl.Name == "main"
		if e.Uses == 0 && !isMain {
			what := "Variable"
			if isFunc {
				what = "Function"
			}
			pos := e.Value.(ast.Node).Position()
			v.sink.Warn(diag.Pos{Line: pos.Line, Column: pos.Column}, "%s `%s` is never used", what, e.Name)
		}
	}
}

// makeUnusedVarAnalysis warns only about unused variables, not functions
// (function-scope exit, per VariableUseAnalysis.cpp's MakeUnusedVarAnalysis).
func (v *VariableUse) makeUnusedVarAnalysis() {
	for _, e := range v.storage.CurrScopeUses() {
		if _, isFunc := e.Value.(*ast.FunctionDecl); isFunc {
			continue
		}
		if e.Uses == 0 {
			pos := e.Value.(ast.Node).Position()
			v.sink.Warn(diag.Pos{Line: pos.Line, Column: pos.Column}, "Variable `%s` is never used", e.Name)
		}
	}
}
