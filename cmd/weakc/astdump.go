package main

import (
	"fmt"
	"io"
	"strings"

	"weakc/internal/ast"
)

// dumpAST prints a parenthesized s-expression rendering of root for
// --dump-ast. There is no Stringer on ast.Node (the package deliberately
// has no visitor/Accept dispatch, per its doc comment), so this switches
// on the same concrete types callers are expected to switch on.
func dumpAST(w io.Writer, root *ast.Compound) {
	dumpNode(w, root, 0)
	fmt.Fprintln(w)
}

func indent(w io.Writer, depth int) {
	fmt.Fprint(w, strings.Repeat("  ", depth))
}

func dumpNode(w io.Writer, n ast.Node, depth int) {
	if n == nil {
		fmt.Fprint(w, "<nil>")
		return
	}
	pos := n.Position()
	switch v := n.(type) {
	case *ast.Compound:
		fmt.Fprintf(w, "(compound %d:%d\n", pos.Line, pos.Column)
		for _, s := range v.Stmts {
			indent(w, depth+1)
			dumpNode(w, s, depth+1)
			fmt.Fprintln(w)
		}
		indent(w, depth)
		fmt.Fprint(w, ")")
	case *ast.FunctionPrototype:
		fmt.Fprintf(w, "(proto %s %s(%s))", v.ReturnType, v.Name, dumpParams(v.Params))
	case *ast.FunctionDecl:
		fmt.Fprintf(w, "(fn %s %s(%s) ", v.ReturnType, v.Name, dumpParams(v.Params))
		dumpNode(w, v.Body, depth)
		fmt.Fprint(w, ")")
	case *ast.StructDecl:
		fmt.Fprintf(w, "(struct %s fields=%d)", v.Name, len(v.Fields))
	case *ast.VarDecl:
		fmt.Fprintf(w, "(var %s %s", v.DataType, v.Name)
		if v.Init != nil {
			fmt.Fprint(w, " = ")
			dumpNode(w, v.Init, depth)
		}
		fmt.Fprint(w, ")")
	case *ast.ArrayDecl:
		fmt.Fprintf(w, "(array %s %s%v)", v.DataType, v.Name, v.Dimensions)
	case *ast.If:
		fmt.Fprint(w, "(if ")
		dumpNode(w, v.Cond, depth)
		fmt.Fprint(w, " then ")
		dumpNode(w, v.Then, depth)
		if v.Else != nil {
			fmt.Fprint(w, " else ")
			dumpNode(w, v.Else, depth)
		}
		fmt.Fprint(w, ")")
	case *ast.While:
		fmt.Fprint(w, "(while ")
		dumpNode(w, v.Cond, depth)
		fmt.Fprint(w, " ")
		dumpNode(w, v.Body, depth)
		fmt.Fprint(w, ")")
	case *ast.DoWhile:
		fmt.Fprint(w, "(do ")
		dumpNode(w, v.Body, depth)
		fmt.Fprint(w, " while ")
		dumpNode(w, v.Cond, depth)
		fmt.Fprint(w, ")")
	case *ast.For:
		fmt.Fprint(w, "(for ")
		dumpNode(w, v.Init, depth)
		fmt.Fprint(w, "; ")
		dumpNode(w, v.Cond, depth)
		fmt.Fprint(w, "; ")
		dumpNode(w, v.Step, depth)
		fmt.Fprint(w, " ")
		dumpNode(w, v.Body, depth)
		fmt.Fprint(w, ")")
	case *ast.Break:
		fmt.Fprint(w, "(break)")
	case *ast.Continue:
		fmt.Fprint(w, "(continue)")
	case *ast.Return:
		fmt.Fprint(w, "(return")
		if v.Operand != nil {
			fmt.Fprint(w, " ")
			dumpNode(w, v.Operand, depth)
		}
		fmt.Fprint(w, ")")
	case *ast.Binary:
		fmt.Fprintf(w, "(%s ", v.Op)
		dumpNode(w, v.LHS, depth)
		fmt.Fprint(w, " ")
		dumpNode(w, v.RHS, depth)
		fmt.Fprint(w, ")")
	case *ast.Unary:
		fmt.Fprintf(w, "(%s ", v.Op)
		dumpNode(w, v.Operand, depth)
		fmt.Fprint(w, ")")
	case *ast.ArrayAccess:
		fmt.Fprintf(w, "(index %s", v.Name)
		for _, idx := range v.Indices {
			fmt.Fprint(w, " ")
			dumpNode(w, idx, depth)
		}
		fmt.Fprint(w, ")")
	case *ast.MemberAccess:
		fmt.Fprint(w, "(member ")
		dumpNode(w, v.BaseExpr, depth)
		fmt.Fprintf(w, " .%s)", v.Member)
	case *ast.FunctionCall:
		fmt.Fprintf(w, "(call %s", v.Name)
		for _, a := range v.Args {
			fmt.Fprint(w, " ")
			dumpNode(w, a, depth)
		}
		fmt.Fprint(w, ")")
	case *ast.Symbol:
		fmt.Fprint(w, v.Name)
	case *ast.IntLit:
		fmt.Fprintf(w, "%d", v.Value)
	case *ast.FloatLit:
		fmt.Fprintf(w, "%g", v.Value)
	case *ast.CharLit:
		fmt.Fprintf(w, "%q", v.Value)
	case *ast.StringLit:
		fmt.Fprintf(w, "%q", v.Value)
	case *ast.BoolLit:
		fmt.Fprintf(w, "%t", v.Value)
	case *ast.ImplicitCast:
		fmt.Fprintf(w, "(cast %s ", v.Target)
		dumpNode(w, v.Expr, depth)
		fmt.Fprint(w, ")")
	default:
		fmt.Fprintf(w, "(%T)", v)
	}
}

func dumpParams(params []*ast.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s %s", p.DataType, p.Name)
	}
	return strings.Join(parts, ", ")
}
