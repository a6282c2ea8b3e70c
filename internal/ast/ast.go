// Package ast defines weak's abstract syntax tree as tagged variants: one
// struct per node kind, joined by the Node interface. There is no
// visitor/Accept dispatch (spec §9 Design Notes) — callers type-switch
// exhaustively on the concrete Go type.
package ast

import "weakc/internal/token"

// DataType is weak's closed set of data-type tags (spec §3).
type DataType int

const (
	Unknown DataType = iota
	Void
	Int
	Char
	Float
	Bool
	StringType
	Struct
	Func
)

func (d DataType) String() string {
	switch d {
	case Void:
		return "void"
	case Int:
		return "int"
	case Char:
		return "char"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case StringType:
		return "string"
	case Struct:
		return "struct"
	case Func:
		return "func"
	default:
		return "unknown"
	}
}

// Pos is the 1-based (line, column) every node carries. Embedding Pos
// anonymously in each node type both promotes its Position() method
// (satisfying Node) and lets literals set it with the plain `Pos: ...`
// key, since the implicit field name of an anonymous embed is its type
// name.
type Pos struct {
	Line   int
	Column int
}

// Position satisfies Node for every type that embeds Pos.
func (p Pos) Position() Pos { return p }

func fromToken(t token.Token) Pos { return Pos{Line: t.Pos.Line, Column: t.Pos.Column} }

// Node is implemented by every concrete AST node type.
type Node interface {
	Position() Pos
}

// --- Literals ---

type CharLit struct {
	Pos
	Value byte
}

type IntLit struct {
	Pos
	Value int32
}

type FloatLit struct {
	Pos
	Value float32
}

type StringLit struct {
	Pos
	Value string
}

type BoolLit struct {
	Pos
	Value bool
}

// Symbol is a variable reference.
type Symbol struct {
	Pos
	Name string
}

// --- Declarations ---

type VarDecl struct {
	Pos
	DataType DataType
	Name     string
	Init     Node // optional, nil if absent
}

type ArrayDecl struct {
	Pos
	DataType   DataType
	Name       string
	Dimensions []int64
}

type FieldDecl struct {
	Pos
	DataType DataType
	Name     string
}

type StructDecl struct {
	Pos
	Name   string
	Fields []*FieldDecl
}

// --- Operators ---

type Binary struct {
	Pos
	Op  token.Kind
	LHS Node
	RHS Node
}

// Fixity distinguishes prefix from postfix unary operators.
type Fixity int

const (
	Prefix Fixity = iota
	Postfix
)

type Unary struct {
	Pos
	Fixity  Fixity
	Op      token.Kind
	Operand Node
}

type ArrayAccess struct {
	Pos
	Name    string
	Indices []Node
}

type MemberAccess struct {
	Pos
	BaseExpr Node
	Member   string
}

// --- Control flow ---

type If struct {
	Pos
	Cond Node
	Then *Compound
	Else *Compound // optional, nil if absent
}

type For struct {
	Pos
	Init Node // optional init statement (var_decl or expression)
	Cond Node // optional
	Step Node // optional
	Body *Compound
}

type While struct {
	Pos
	Cond Node
	Body *Compound
}

type DoWhile struct {
	Pos
	Body *Compound
	Cond Node
}

type Break struct{ Pos }

type Continue struct{ Pos }

type Return struct {
	Pos
	Operand Node // optional, nil if absent
}

// --- Blocks ---

type Compound struct {
	Pos
	Stmts []Node
}

// --- Functions ---

type Param struct {
	Pos
	DataType DataType
	Name     string
}

type FunctionPrototype struct {
	Pos
	ReturnType DataType
	Name       string
	Params     []*Param
}

type FunctionDecl struct {
	Pos
	ReturnType DataType
	Name       string
	Params     []*Param
	Body       *Compound
}

type FunctionCall struct {
	Pos
	Name string
	Args []Node
}

// ImplicitCast is reserved for future use (spec §3, §9 Open Questions); it
// is never constructed by the parser or IR generator.
type ImplicitCast struct {
	Pos
	Target DataType
	Expr   Node
}

// NewPos constructs a Pos directly, used where no token is at hand (e.g.
// desugared nodes synthesized during IR generation).
func NewPos(line, column int) Pos { return Pos{Line: line, Column: column} }

// At builds a Pos from a token, for use by the parser.
func At(t token.Token) Pos { return fromToken(t) }
