// Type analysis: operator admissibility, assignment compatibility, array
// bounds (spec §4.6). Grounded on
// original_source/lib/src/FrontEnd/Analysis/TypeAnalysis.cpp. Assumes
// VariableUse and Function analyses have already run.
package sema

import (
	"weakc/internal/ast"
	"weakc/internal/diag"
	"weakc/internal/token"
)

// Type runs the type-checking pass over a translation unit.
type Type struct {
	vars  map[string]ast.DataType
	funcs map[string]funcSig
	arrays map[string][]int64
}

type funcSig struct {
	ret    ast.DataType
	params []ast.DataType
}

// NewType returns a Type analysis.
func NewType() *Type {
	return &Type{vars: map[string]ast.DataType{}, funcs: map[string]funcSig{}, arrays: map[string][]int64{}}
}

// Analyze runs over root's top-level declarations.
func (t *Type) Analyze(root *ast.Compound) {
	for _, d := range root.Stmts {
		switch decl := d.(type) {
		case *ast.FunctionPrototype:
			t.funcs[decl.Name] = sigOf(decl.ReturnType, decl.Params)
		case *ast.FunctionDecl:
			t.funcs[decl.Name] = sigOf(decl.ReturnType, decl.Params)
		}
	}
	for _, d := range root.Stmts {
		if decl, ok := d.(*ast.FunctionDecl); ok {
			t.analyzeFunctionDecl(decl)
		}
	}
}

func sigOf(ret ast.DataType, params []*ast.Param) funcSig {
	s := funcSig{ret: ret}
	for _, pm := range params {
		s.params = append(s.params, pm.DataType)
	}
	return s
}

// admitsWide: int, char, bool, float.
func admitsWide(dt ast.DataType) bool {
	switch dt {
	case ast.Int, ast.Char, ast.Bool, ast.Float:
		return true
	}
	return false
}

// admitsNarrow: int, char, bool (no float) — bitwise ops, %, shifts.
func admitsNarrow(dt ast.DataType) bool {
	switch dt {
	case ast.Int, ast.Char, ast.Bool:
		return true
	}
	return false
}

func isNarrowOp(k token.Kind) bool {
	switch k {
	case token.BitOr, token.BitAnd, token.Xor, token.Shl, token.Shr, token.Mod,
		token.BitOrAssign, token.BitAndAssign, token.XorAssign, token.ShlAssign, token.ShrAssign, token.ModAssign:
		return true
	}
	return false
}

func (t *Type) analyzeFunctionDecl(d *ast.FunctionDecl) {
	saved := map[string]ast.DataType{}
	for k, v := range t.vars {
		saved[k] = v
	}
	for _, pm := range d.Params {
		t.vars[pm.Name] = pm.DataType
	}

	var lastExprType ast.DataType
	var walkStmt func(n ast.Node)
	walkStmt = func(n ast.Node) {
		switch s := n.(type) {
		case *ast.Compound:
			for _, st := range s.Stmts {
				walkStmt(st)
			}
		case *ast.VarDecl:
			t.vars[s.Name] = s.DataType
			if s.Init != nil {
				ty := t.exprType(s.Init)
				lastExprType = ty
			}
		case *ast.ArrayDecl:
			for _, dim := range s.Dimensions {
				if dim == 0 {
					diag.Fail(p(s), "Array size cannot be equal '0'")
				}
			}
			t.vars[s.Name] = s.DataType
			t.arrays[s.Name] = s.Dimensions
		case *ast.If:
			t.exprType(s.Cond)
			walkStmt(s.Then)
			if s.Else != nil {
				walkStmt(s.Else)
			}
		case *ast.For:
			if s.Init != nil {
				walkStmt(s.Init)
			}
			if s.Cond != nil {
				t.exprType(s.Cond)
			}
			if s.Step != nil {
				t.exprType(s.Step)
			}
			walkStmt(s.Body)
		case *ast.While:
			t.exprType(s.Cond)
			walkStmt(s.Body)
		case *ast.DoWhile:
			walkStmt(s.Body)
			t.exprType(s.Cond)
		case *ast.Return:
			if s.Operand != nil {
				lastExprType = t.exprType(s.Operand)
			}
		default:
			t.exprType(n)
		}
	}

	walkStmt(d.Body)

	if d.ReturnType != ast.Void && lastExprType != ast.Unknown && lastExprType != d.ReturnType {
		diag.Fail(p(d), "Cannot return %s from function `%s` declared to return %s", lastExprType, d.Name, d.ReturnType)
	}

	t.vars = saved
}

// exprType computes (and validates) the data type of an expression,
// raising the operator-admissibility/mismatch errors of spec §4.6.
func (t *Type) exprType(n ast.Node) ast.DataType {
	switch e := n.(type) {
	case *ast.IntLit:
		return ast.Int
	case *ast.FloatLit:
		return ast.Float
	case *ast.CharLit:
		return ast.Char
	case *ast.BoolLit:
		return ast.Bool
	case *ast.StringLit:
		return ast.StringType
	case *ast.Symbol:
		if dt, ok := t.vars[e.Name]; ok {
			return dt
		}
		return ast.Unknown
	case *ast.ArrayAccess:
		dims, isArray := t.arrays[e.Name]
		base, ok := t.vars[e.Name]
		if !ok {
			return ast.Unknown
		}
		if !isArray && base != ast.StringType {
			diag.Fail(p(e), "Array access on non-array, non-string symbol `%s`", e.Name)
		}
		if isArray && len(e.Indices) > len(dims) {
			diag.Fail(p(e), "Too many indices for array `%s`", e.Name)
		}
		for i, idx := range e.Indices {
			ity := t.exprType(idx)
			if ity != ast.Int {
				diag.Fail(p(idx), "Array index must be int, got %s", ity)
			}
			if isArray && i < len(dims) {
				if lit, ok := idx.(*ast.IntLit); ok {
					if lit.Value < 0 || int64(lit.Value) >= dims[i] {
						diag.Fail(p(idx), "Out of range! Index (which is %d) >= array size (which is %d)", lit.Value, dims[i])
					}
				}
			}
		}
		return base
	case *ast.Unary:
		ty := t.exprType(e.Operand)
		switch e.Op {
		case token.Inc, token.Dec:
			if ty != ast.Int && ty != ast.Char {
				diag.Fail(p(e), "Cannot apply `%s` to %s", e.Op, ty)
			}
		}
		return ty
	case *ast.Binary:
		lt := t.exprType(e.LHS)
		rt := t.exprType(e.RHS)
		if lt != rt {
			diag.Fail(p(e), "Cannot apply `%s` to %s and %s", e.Op, lt, rt)
		}
		if isNarrowOp(e.Op) {
			if !admitsNarrow(lt) {
				diag.Fail(p(e), "Cannot apply `%s` to %s", e.Op, lt)
			}
		} else if !admitsWide(lt) {
			diag.Fail(p(e), "Cannot apply `%s` to %s", e.Op, lt)
		}
		switch e.Op {
		case token.Eq, token.Neq, token.Lt, token.Le, token.Gt, token.Ge, token.And, token.Or:
			return ast.Bool
		}
		return lt
	case *ast.FunctionCall:
		sig, ok := t.funcs[e.Name]
		argTypes := make([]ast.DataType, len(e.Args))
		for i, a := range e.Args {
			argTypes[i] = t.exprType(a)
		}
		if ok {
			for i, at := range argTypes {
				if i < len(sig.params) && sig.params[i] != at {
					diag.Fail(p(e), "Argument %d of `%s` has type %s, expected %s", i+1, e.Name, at, sig.params[i])
				}
			}
			return sig.ret
		}
		return ast.Unknown
	case *ast.MemberAccess:
		t.exprType(e.BaseExpr)
		return ast.Unknown
	default:
		return ast.Unknown
	}
}
