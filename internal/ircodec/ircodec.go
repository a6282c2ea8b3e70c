// Package ircodec serializes and deserializes an ir.Unit to a deterministic
// binary format (spec §4.10/§6): every node writes a fixed meta header
// followed by a kind-specific payload, and every variable-length collection
// (strings, instruction bodies, argument lists) is a little-endian uint64
// count followed by that many elements. Grounded on
// original_source/lib/middle_end/ir/ir_bin.c's per-kind write_node/read_node
// split and its length-prefix-then-elements shape, reimplemented with
// encoding/binary instead of the original's fwrite/fread macros.
//
// CFG edges (Succs/Preds) and dominator-tree fields are never written: they
// are derived data, rebuilt by internal/cfg.Build after a read.
package ircodec

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"weakc/internal/cfg"
	"weakc/internal/ir"
	"weakc/internal/token"
)

var order = binary.LittleEndian

// Write serializes unit to w.
func Write(w io.Writer, unit *ir.Unit) error {
	e := &encoder{w: w}
	e.u64(uint64(len(unit.Funcs)))
	for _, fn := range unit.Funcs {
		e.node(fn)
	}
	return e.err
}

// Read deserializes a Unit previously produced by Write, re-linking each
// function's CFG via internal/cfg.Build before returning.
func Read(r io.Reader) (*ir.Unit, error) {
	d := &decoder{r: r}
	numFns := d.u64()
	unit := &ir.Unit{}
	for i := uint64(0); i < numFns && d.err == nil; i++ {
		fn := d.node()
		if fn != nil {
			cfg.Build(fn)
		}
		unit.Funcs = append(unit.Funcs, fn)
	}
	if d.err != nil {
		return nil, d.err
	}
	return unit, nil
}

type encoder struct {
	w   io.Writer
	err error
}

func (e *encoder) raw(p []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(p)
}

func (e *encoder) u64(v uint64) {
	var b [8]byte
	order.PutUint64(b[:], v)
	e.raw(b[:])
}

func (e *encoder) i32(v int32) {
	var b [4]byte
	order.PutUint32(b[:], uint32(v))
	e.raw(b[:])
}

func (e *encoder) i(v int) { e.i32(int32(v)) }

func (e *encoder) f32(v float32) { e.i32(int32(math.Float32bits(v))) }

func (e *encoder) b(v bool) {
	if v {
		e.raw([]byte{1})
	} else {
		e.raw([]byte{0})
	}
}

func (e *encoder) byteVal(v byte) { e.raw([]byte{v}) }

func (e *encoder) str(s string) {
	e.u64(uint64(len(s)))
	e.raw([]byte(s))
}

func (e *encoder) bytes(v []byte) {
	e.u64(uint64(len(v)))
	e.raw(v)
}

// node writes n's meta header then its kind-specific payload, or a single
// "absent" sentinel byte if n is nil (ret/store bodies are optional).
func (e *encoder) node(n *ir.Node) {
	if n == nil {
		e.b(false)
		return
	}
	e.b(true)

	e.i32(int32(n.Kind))
	e.i(n.InstrIdx)
	e.i(n.BasicBlock)

	switch n.Kind {
	case ir.Alloca:
		e.i32(int32(n.Alloca.DataType))
		e.i32(n.Alloca.Idx)
	case ir.AllocaArray:
		e.i32(int32(n.AllocaArray.DataType))
		e.u64(uint64(len(n.AllocaArray.EnclosureLvls)))
		for _, lvl := range n.AllocaArray.EnclosureLvls {
			e.u64(lvl)
		}
		e.i32(n.AllocaArray.Idx)
	case ir.Imm:
		e.i32(int32(n.ImmVal.Type))
		e.b(n.ImmVal.Bool)
		e.byteVal(n.ImmVal.Char)
		e.f32(n.ImmVal.Float)
		e.i32(n.ImmVal.Int)
	case ir.Str:
		e.bytes(n.StrVal.Value)
	case ir.Sym:
		e.i32(n.SymVal.Idx)
	case ir.Store:
		e.i32(n.StoreVal.Idx)
		e.i32(int32(n.StoreVal.Type))
		e.node(n.StoreVal.Body)
	case ir.Bin:
		e.i32(int32(n.BinVal.Op))
		e.node(n.BinVal.LHS)
		e.node(n.BinVal.RHS)
	case ir.Jump:
		e.i32(n.JumpVal.Idx)
	case ir.Cond:
		e.node(n.CondVal.Cond)
		e.i32(n.CondVal.GotoLabel)
	case ir.Ret:
		e.b(n.RetVal.IsVoid)
		if !n.RetVal.IsVoid {
			e.node(n.RetVal.Body)
		}
	case ir.Member:
		e.i32(n.MemberVal.Idx)
		e.i32(n.MemberVal.FieldIdx)
	case ir.ArrayAccess:
		e.i32(n.ArrAccess.Idx)
		e.node(n.ArrAccess.Body)
	case ir.TypeDecl:
		e.str(n.TypeDeclVal.Name)
		e.u64(uint64(len(n.TypeDeclVal.Decls)))
		for _, d := range n.TypeDeclVal.Decls {
			e.node(d)
		}
	case ir.FuncDecl:
		e.i32(int32(n.FuncDeclVal.RetType))
		e.str(n.FuncDeclVal.Name)
		e.u64(uint64(len(n.FuncDeclVal.Args)))
		for _, a := range n.FuncDeclVal.Args {
			e.node(a)
		}
		e.u64(uint64(len(n.FuncDeclVal.Body)))
		for _, b := range n.FuncDeclVal.Body {
			e.node(b)
		}
	case ir.FuncCall:
		e.str(n.FuncCallVal.Name)
		e.u64(uint64(len(n.FuncCallVal.Args)))
		for _, a := range n.FuncCallVal.Args {
			e.node(a)
		}
	case ir.Phi:
		// never constructed; nothing to write.
	default:
		if e.err == nil {
			e.err = fmt.Errorf("ircodec: write: unknown ir.Kind %d", n.Kind)
		}
	}
}

type decoder struct {
	r   io.Reader
	err error
}

func (d *decoder) raw(p []byte) {
	if d.err != nil {
		return
	}
	_, err := io.ReadFull(d.r, p)
	if err != nil {
		d.err = fmt.Errorf("ircodec: read: %w", err)
	}
}

func (d *decoder) u64() uint64 {
	var b [8]byte
	d.raw(b[:])
	return order.Uint64(b[:])
}

func (d *decoder) i32() int32 {
	var b [4]byte
	d.raw(b[:])
	return int32(order.Uint32(b[:]))
}

func (d *decoder) i() int { return int(d.i32()) }

func (d *decoder) f32() float32 { return math.Float32frombits(uint32(d.i32())) }

func (d *decoder) b() bool {
	var b [1]byte
	d.raw(b[:])
	return b[0] != 0
}

func (d *decoder) byteVal() byte {
	var b [1]byte
	d.raw(b[:])
	return b[0]
}

func (d *decoder) str() string {
	n := d.u64()
	if d.err != nil || n == 0 {
		return ""
	}
	buf := make([]byte, n)
	d.raw(buf)
	return string(buf)
}

func (d *decoder) bytes() []byte {
	n := d.u64()
	if d.err != nil || n == 0 {
		return nil
	}
	buf := make([]byte, n)
	d.raw(buf)
	return buf
}

// node reads one node written by encoder.node, or returns nil for the
// "absent" sentinel.
func (d *decoder) node() *ir.Node {
	if d.err != nil {
		return nil
	}
	present := d.b()
	if d.err != nil || !present {
		return nil
	}

	n := &ir.Node{
		Kind:       ir.Kind(d.i32()),
		InstrIdx:   d.i(),
		BasicBlock: d.i(),
	}

	switch n.Kind {
	case ir.Alloca:
		n.Alloca = &ir.AllocaPayload{DataType: ir.DataType(d.i32()), Idx: d.i32()}
	case ir.AllocaArray:
		dt := ir.DataType(d.i32())
		count := d.u64()
		lvls := make([]uint64, count)
		for i := range lvls {
			lvls[i] = d.u64()
		}
		n.AllocaArray = &ir.AllocaArrayPayload{DataType: dt, EnclosureLvls: lvls, Idx: d.i32()}
	case ir.Imm:
		n.ImmVal = &ir.ImmPayload{Type: ir.ImmKind(d.i32())}
		n.ImmVal.Bool = d.b()
		n.ImmVal.Char = d.byteVal()
		n.ImmVal.Float = d.f32()
		n.ImmVal.Int = d.i32()
	case ir.Str:
		n.StrVal = &ir.StrPayload{Value: d.bytes()}
	case ir.Sym:
		n.SymVal = &ir.SymPayload{Idx: d.i32()}
	case ir.Store:
		idx := d.i32()
		typ := ir.StoreKind(d.i32())
		body := d.node()
		n.StoreVal = &ir.StorePayload{Idx: idx, Type: typ, Body: body}
	case ir.Bin:
		op := d.i32()
		lhs := d.node()
		rhs := d.node()
		n.BinVal = &ir.BinPayload{Op: token.Kind(op), LHS: lhs, RHS: rhs}
	case ir.Jump:
		n.JumpVal = &ir.JumpPayload{Idx: d.i32()}
	case ir.Cond:
		cond := d.node()
		n.CondVal = &ir.CondPayload{Cond: cond, GotoLabel: d.i32()}
	case ir.Ret:
		isVoid := d.b()
		var body *ir.Node
		if !isVoid {
			body = d.node()
		}
		n.RetVal = &ir.RetPayload{IsVoid: isVoid, Body: body}
	case ir.Member:
		n.MemberVal = &ir.MemberPayload{Idx: d.i32(), FieldIdx: d.i32()}
	case ir.ArrayAccess:
		idx := d.i32()
		body := d.node()
		n.ArrAccess = &ir.ArrayAccessPayload{Idx: idx, Body: body}
	case ir.TypeDecl:
		name := d.str()
		count := d.u64()
		decls := make([]*ir.Node, count)
		for i := range decls {
			decls[i] = d.node()
		}
		n.TypeDeclVal = &ir.TypeDeclPayload{Name: name, Decls: decls}
	case ir.FuncDecl:
		retType := ir.DataType(d.i32())
		name := d.str()
		argCount := d.u64()
		args := make([]*ir.Node, argCount)
		for i := range args {
			args[i] = d.node()
		}
		bodyCount := d.u64()
		body := make([]*ir.Node, bodyCount)
		for i := range body {
			body[i] = d.node()
		}
		relink(body)
		n.FuncDeclVal = &ir.FuncDeclPayload{RetType: retType, Name: name, Args: args, Body: body}
	case ir.FuncCall:
		name := d.str()
		count := d.u64()
		args := make([]*ir.Node, count)
		for i := range args {
			args[i] = d.node()
		}
		n.FuncCallVal = &ir.FuncCallPayload{Name: name, Args: args}
	case ir.Phi:
		// never constructed; nothing to read.
	default:
		if d.err == nil {
			d.err = fmt.Errorf("ircodec: read: unknown ir.Kind %d", n.Kind)
		}
	}

	return n
}

// relink restores the doubly linked Next/Prev program-order list a
// ir.Builder would have produced, since the wire format only stores body
// as a flat slice.
func relink(body []*ir.Node) {
	for i, n := range body {
		if i > 0 {
			n.Prev = body[i-1]
		}
		if i+1 < len(body) {
			n.Next = body[i+1]
		}
	}
}
