// Package ir defines weak's custom three-address IR: typed instructions in
// a doubly linked list, with CFG and dominator-tree fields on every node
// (spec §3 "IR instruction model"). Grounded on
// original_source/lib/middle_end/ir/ir.h (definitive for the payload shape)
// and ir.c (instr_idx assignment-timing rule).
package ir

import "weakc/internal/token"

// Kind is the closed set of IR instruction kinds.
type Kind int

const (
	Alloca Kind = iota
	AllocaArray
	Imm
	Str
	Sym
	Store
	Bin
	Jump
	Cond
	Ret
	Member
	ArrayAccess
	TypeDecl
	FuncDecl
	FuncCall
	Phi // reserved for SSA extension; never constructed
)

// DataType mirrors ast.DataType without importing the ast package, since
// the IR layer must not depend back on the tree it was lowered from.
type DataType int

const (
	Unknown DataType = iota
	Void
	Int
	Char
	Float
	Bool
	StringType
	StructType
)

// StoreKind distinguishes the allowed bodies of a store instruction.
type StoreKind int

const (
	StoreImm StoreKind = iota
	StoreSym
	StoreBin
	StoreCall
)

// ImmKind tags the union inside an imm instruction.
type ImmKind int

const (
	ImmBool ImmKind = iota
	ImmChar
	ImmFloat
	ImmInt
)

// Node is one instruction. Every node carries CFG/dominator fields
// regardless of kind, matching ir_node's shape: a single struct with a
// payload discriminated by Kind, rather than an interface, since the CFG
// builder and dominator engine need uniform next/prev/idom access without
// a type switch on every traversal step.
type Node struct {
	Kind Kind
	// InstrIdx is assigned just before emission (spec §3); only
	// slot-occupying kinds advance the counter (ir.c: imm/sym do not).
	InstrIdx int
	BasicBlock int
	Meta       any

	// Doubly linked program-order list.
	Next *Node
	Prev *Node

	// CFG (populated by internal/cfg).
	Succs []*Node
	Preds []*Node

	// Dominator tree (populated by internal/dominator).
	Idom     *Node
	DF       []*Node
	Children []*Node

	// Payload, discriminated by Kind.
	Alloca      *AllocaPayload
	AllocaArray *AllocaArrayPayload
	ImmVal      *ImmPayload
	StrVal      *StrPayload
	SymVal      *SymPayload
	StoreVal    *StorePayload
	BinVal      *BinPayload
	JumpVal     *JumpPayload
	CondVal     *CondPayload
	RetVal      *RetPayload
	MemberVal   *MemberPayload
	ArrAccess   *ArrayAccessPayload
	TypeDeclVal *TypeDeclPayload
	FuncDeclVal *FuncDeclPayload
	FuncCallVal *FuncCallPayload
}

type AllocaPayload struct {
	DataType DataType
	Idx      int32
}

type AllocaArrayPayload struct {
	DataType       DataType
	EnclosureLvls  []uint64
	Idx            int32
}

type ImmPayload struct {
	Type  ImmKind
	Bool  bool
	Char  byte
	Float float32
	Int   int32
}

type StrPayload struct {
	Value []byte
}

type SymPayload struct {
	Idx int32
}

type StorePayload struct {
	Idx  int32
	Type StoreKind
	Body *Node
}

type BinPayload struct {
	Op  token.Kind
	LHS *Node
	RHS *Node
}

type JumpPayload struct {
	Idx int32
}

type CondPayload struct {
	Cond      *Node
	GotoLabel int32
}

type RetPayload struct {
	IsVoid bool
	Body   *Node
}

type MemberPayload struct {
	Idx      int32
	FieldIdx int32
}

type ArrayAccessPayload struct {
	Idx  int32
	Body *Node
}

type TypeDeclPayload struct {
	Name  string
	Decls []*Node
}

type FuncDeclPayload struct {
	RetType DataType
	Name    string
	Args    []*Node
	Body    []*Node
}

type FuncCallPayload struct {
	Name string
	Args []*Node
}

// Unit is a whole translation unit: the ordered list of function
// declarations produced by the IR generator.
type Unit struct {
	Funcs []*Node // each a FuncDecl node
}

// Builder assigns instr_idx values and appends to a function body in
// program order. A Builder is scoped to one function body (fresh index
// counter per function), matching ir.c's ir_reset_internal_state() reset
// between functions.
type Builder struct {
	nextIdx int32
	head    *Node
	tail    *Node
}

// NewBuilder returns a Builder with a fresh index counter.
func NewBuilder() *Builder { return &Builder{nextIdx: 0} }

// slotOccupying reports whether kind k advances the instruction-index
// counter; pure value-producing
// kinds (Imm, Sym) do not, per ir.c's constructor split.
func slotOccupying(k Kind) bool {
	switch k {
	case Imm, Sym:
		return false
	default:
		return true
	}
}

// Emit appends n to the body in program order, assigning its InstrIdx if
// its kind occupies a program-order slot.
func (b *Builder) Emit(n *Node) *Node {
	if slotOccupying(n.Kind) {
		n.InstrIdx = int(b.nextIdx)
		b.nextIdx++
	} else {
		n.InstrIdx = -1
	}

	if b.head == nil {
		b.head = n
		b.tail = n
	} else {
		b.tail.Next = n
		n.Prev = b.tail
		b.tail = n
	}
	return n
}

// Body returns the head of the linked list built so far.
func (b *Builder) Body() *Node { return b.head }

// Tail returns the most recently emitted node, or nil if nothing has been
// emitted yet. Used by internal/irgen to find the first instruction a
// nested lowering step produced, for backpatching jump/cond targets.
func (b *Builder) Tail() *Node { return b.tail }

// Instructions flattens the linked list starting at head into a slice, in
// program order.
func Instructions(head *Node) []*Node {
	var out []*Node
	for n := head; n != nil; n = n.Next {
		out = append(out, n)
	}
	return out
}
