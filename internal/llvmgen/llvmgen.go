// Package llvmgen is a thin translation surface from weak's custom IR (C7)
// to an in-memory github.com/llir/llvm module: one llvm function per
// fn_decl, alloca/store/br/condbr/ret mapped one-to-one onto their LLVM
// counterparts (SPEC_FULL.md §2). It stops at the in-memory module —
// object-code emission, target triples, and linking are out of scope
// (spec.md §1 Non-goals: "a linker").
//
// Grounded on other_examples/bb9c4e55_golint-fixer-exp__cmd-bin2ll-ll.go.go's
// translateFunc/translateBlock/translateInst/translateTerm split (there
// translating x86 machine code; here translating weak's IR), including its
// use of github.com/pkg/errors to carry translation failures with a stack
// trace back to the CLI driver's --dump-llvm path.
package llvmgen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"

	weakir "weakc/internal/ir"
	"weakc/internal/token"
)

// Emit translates unit into a fresh LLVM module.
func Emit(unit *weakir.Unit) (*ir.Module, error) {
	m := ir.NewModule()

	t := &translator{
		module: m,
		funcs:  map[string]*ir.Func{},
	}

	// Declare every function signature first so forward calls resolve.
	for _, fn := range unit.Funcs {
		decl := fn.FuncDeclVal
		params := make([]*ir.Param, len(decl.Args))
		for i, arg := range decl.Args {
			params[i] = ir.NewParam(fmt.Sprintf("arg%d", i), llvmType(arg.Alloca.DataType))
		}
		lf := m.NewFunc(decl.Name, llvmType(decl.RetType), params...)
		t.funcs[decl.Name] = lf
	}

	for _, fn := range unit.Funcs {
		if err := t.translateFunc(fn); err != nil {
			return nil, errors.Wrapf(err, "translate function %q", fn.FuncDeclVal.Name)
		}
	}

	return m, nil
}

// translator carries per-module state (declared functions) across
// translateFunc calls; slotVals/slotTypes are reset per function.
type translator struct {
	module *ir.Module
	funcs  map[string]*ir.Func

	// slotVals maps a weak instr_idx to the LLVM pointer value that
	// instruction produced (alloca, alloca_array, array_access, member) —
	// the "SSA-like name" sym(idx) resolves against.
	slotVals  map[int32]value.Value
	slotTypes map[int32]types.Type

	blocks map[int]*ir.Block // leader instr_idx -> LLVM block

	// paramSlot maps an argument alloca's own Idx to its position in the
	// LLVM function's parameter list, so its incoming value can be stored
	// the moment the alloca is translated.
	paramSlot map[int32]int
}

func (t *translator) translateFunc(fn *weakir.Node) error {
	decl := fn.FuncDeclVal
	lf := t.funcs[decl.Name]

	t.slotVals = map[int32]value.Value{}
	t.slotTypes = map[int32]types.Type{}
	t.blocks = map[int]*ir.Block{}
	t.paramSlot = map[int32]int{}
	for i, arg := range decl.Args {
		t.paramSlot[arg.Alloca.Idx] = i
	}

	if len(decl.Body) == 0 {
		return nil
	}

	entry := lf.NewBlock("entry")
	t.blocks[decl.Body[0].InstrIdx] = entry

	leaders := leaderSet(decl.Body)
	cur := entry
	for _, inst := range decl.Body {
		if inst.InstrIdx != decl.Body[0].InstrIdx && leaders[inst.InstrIdx] {
			if b, ok := t.blocks[inst.InstrIdx]; ok {
				cur = b
			} else {
				cur = lf.NewBlock(fmt.Sprintf("L%d", inst.InstrIdx))
				t.blocks[inst.InstrIdx] = cur
			}
		}

		if err := t.translateInst(lf, cur, inst); err != nil {
			return err
		}
	}

	return nil
}

// leaderSet identifies basic-block leaders within body: the entry, every
// jump/cond target, and the instruction immediately after a cond
// (fall-through), matching internal/cfg.Build's edge shape.
func leaderSet(body []*weakir.Node) map[int]bool {
	leaders := map[int]bool{body[0].InstrIdx: true}
	byIdx := make(map[int]*weakir.Node, len(body))
	for _, n := range body {
		byIdx[n.InstrIdx] = n
	}
	for i, n := range body {
		switch n.Kind {
		case weakir.Jump:
			leaders[int(n.JumpVal.Idx)] = true
		case weakir.Cond:
			leaders[int(n.CondVal.GotoLabel)] = true
			if i+1 < len(body) {
				leaders[body[i+1].InstrIdx] = true
			}
		}
	}
	return leaders
}

func (t *translator) translateInst(lf *ir.Func, block *ir.Block, n *weakir.Node) error {
	switch n.Kind {
	case weakir.Alloca:
		typ := llvmType(n.Alloca.DataType)
		a := block.NewAlloca(typ)
		t.slotVals[n.Alloca.Idx] = a
		t.slotTypes[n.Alloca.Idx] = typ
		if paramIdx, ok := t.paramSlot[n.Alloca.Idx]; ok {
			block.NewStore(lf.Params[paramIdx], a)
		}
	case weakir.AllocaArray:
		elem := llvmType(n.AllocaArray.DataType)
		typ := types.Type(elem)
		for i := len(n.AllocaArray.EnclosureLvls) - 1; i >= 0; i-- {
			typ = types.NewArray(n.AllocaArray.EnclosureLvls[i], typ)
		}
		a := block.NewAlloca(typ)
		t.slotVals[n.AllocaArray.Idx] = a
		t.slotTypes[n.AllocaArray.Idx] = typ
	case weakir.Store:
		ptr := t.slotVals[n.StoreVal.Idx]
		if ptr == nil {
			return errors.Errorf("store: unknown target slot %d", n.StoreVal.Idx)
		}
		val, err := t.valueOf(block, n.StoreVal.Body)
		if err != nil {
			return errors.Wrap(err, "store body")
		}
		block.NewStore(val, ptr)
	case weakir.Jump:
		block.NewBr(t.blocks[int(n.JumpVal.Idx)])
	case weakir.Cond:
		cond, err := t.valueOf(block, n.CondVal.Cond)
		if err != nil {
			return errors.Wrap(err, "cond")
		}
		target := t.blocks[int(n.CondVal.GotoLabel)]
		fallthroughBlock := t.blocks[n.InstrIdx+1]
		block.NewCondBr(cond, target, fallthroughBlock)
	case weakir.Ret:
		if n.RetVal.IsVoid {
			block.NewRet(nil)
			return nil
		}
		val, err := t.valueOf(block, n.RetVal.Body)
		if err != nil {
			return errors.Wrap(err, "ret body")
		}
		block.NewRet(val)
	case weakir.ArrayAccess:
		base := t.slotVals[n.ArrAccess.Idx]
		if base == nil {
			return errors.Errorf("array_access: unknown base slot %d", n.ArrAccess.Idx)
		}
		idx, err := t.valueOf(block, n.ArrAccess.Body)
		if err != nil {
			return errors.Wrap(err, "array_access index")
		}
		arrType := t.slotTypes[n.ArrAccess.Idx]
		zero := constant.NewInt(types.I64, 0)
		gep := block.NewGetElementPtr(arrType, base, zero, idx)
		t.slotVals[int32(n.InstrIdx)] = gep
		if at, ok := arrType.(*types.ArrayType); ok {
			t.slotTypes[int32(n.InstrIdx)] = at.ElemType
		} else {
			t.slotTypes[int32(n.InstrIdx)] = arrType
		}
	case weakir.Member:
		// Field layout is not tracked past FieldIdx (irgen's documented
		// simplification); forward the base address unchanged.
		base := t.slotVals[n.MemberVal.Idx]
		if base == nil {
			return errors.Errorf("member: unknown base slot %d", n.MemberVal.Idx)
		}
		t.slotVals[int32(n.InstrIdx)] = base
		t.slotTypes[int32(n.InstrIdx)] = t.slotTypes[n.MemberVal.Idx]
	case weakir.FuncCall:
		if _, err := t.call(block, n.FuncCallVal); err != nil {
			return err
		}
	case weakir.TypeDecl, weakir.Phi:
		// no LLVM-visible effect (types are opaque, SSA phi is unconstructed).
	default:
		return errors.Errorf("unsupported top-level instruction kind %d", n.Kind)
	}
	return nil
}

// valueOf computes the LLVM value an imm/sym/bin/call expression node
// stands for, without installing anything into the slot tables (those are
// only populated for slot-occupying instructions, by translateInst).
func (t *translator) valueOf(block *ir.Block, n *weakir.Node) (value.Value, error) {
	if n == nil {
		return nil, errors.New("nil value expression")
	}
	switch n.Kind {
	case weakir.Imm:
		return immConst(n.ImmVal), nil
	case weakir.Str:
		data := constant.NewCharArrayFromString(string(n.StrVal.Value) + "\x00")
		g := t.module.NewGlobalDef(fmt.Sprintf("str.%p", n), data)
		zero := constant.NewInt(types.I64, 0)
		return constant.NewGetElementPtr(data.Typ, g, zero, zero), nil
	case weakir.Sym:
		ptr, ok := t.slotVals[n.SymVal.Idx]
		if !ok {
			return nil, errors.Errorf("sym: unknown slot %d", n.SymVal.Idx)
		}
		elem := t.slotTypes[n.SymVal.Idx]
		return block.NewLoad(elem, ptr), nil
	case weakir.Bin:
		return t.bin(block, n.BinVal)
	case weakir.FuncCall:
		return t.call(block, n.FuncCallVal)
	default:
		return nil, errors.Errorf("value expression of kind %d not supported", n.Kind)
	}
}

func (t *translator) call(block *ir.Block, c *weakir.FuncCallPayload) (value.Value, error) {
	callee, ok := t.funcs[c.Name]
	if !ok {
		return nil, errors.Errorf("call to undeclared function %q", c.Name)
	}
	args := make([]value.Value, len(c.Args))
	for i, a := range c.Args {
		v, err := t.valueOf(block, a)
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d of call to %q", i, c.Name)
		}
		args[i] = v
	}
	return block.NewCall(callee, args...), nil
}

func (t *translator) bin(block *ir.Block, b *weakir.BinPayload) (value.Value, error) {
	lhs, err := t.valueOf(block, b.LHS)
	if err != nil {
		return nil, errors.Wrap(err, "bin lhs")
	}
	rhs, err := t.valueOf(block, b.RHS)
	if err != nil {
		return nil, errors.Wrap(err, "bin rhs")
	}

	float := isFloatType(lhs.Type())

	switch b.Op {
	case token.Plus:
		if float {
			return block.NewFAdd(lhs, rhs), nil
		}
		return block.NewAdd(lhs, rhs), nil
	case token.Minus:
		if float {
			return block.NewFSub(lhs, rhs), nil
		}
		return block.NewSub(lhs, rhs), nil
	case token.Star:
		if float {
			return block.NewFMul(lhs, rhs), nil
		}
		return block.NewMul(lhs, rhs), nil
	case token.Slash:
		if float {
			return block.NewFDiv(lhs, rhs), nil
		}
		return block.NewSDiv(lhs, rhs), nil
	case token.Mod:
		if float {
			return block.NewFRem(lhs, rhs), nil
		}
		return block.NewSRem(lhs, rhs), nil
	case token.BitAnd:
		return block.NewAnd(lhs, rhs), nil
	case token.BitOr:
		return block.NewOr(lhs, rhs), nil
	case token.Xor:
		return block.NewXor(lhs, rhs), nil
	case token.Shl:
		return block.NewShl(lhs, rhs), nil
	case token.Shr:
		return block.NewAShr(lhs, rhs), nil
	case token.Eq:
		return cmp(block, float, enum.IPredEQ, enum.FPredOEQ, lhs, rhs), nil
	case token.Neq:
		return cmp(block, float, enum.IPredNE, enum.FPredONE, lhs, rhs), nil
	case token.Lt:
		return cmp(block, float, enum.IPredSLT, enum.FPredOLT, lhs, rhs), nil
	case token.Le:
		return cmp(block, float, enum.IPredSLE, enum.FPredOLE, lhs, rhs), nil
	case token.Gt:
		return cmp(block, float, enum.IPredSGT, enum.FPredOGT, lhs, rhs), nil
	case token.Ge:
		return cmp(block, float, enum.IPredSGE, enum.FPredOGE, lhs, rhs), nil
	case token.And:
		return block.NewAnd(lhs, rhs), nil
	case token.Or:
		return block.NewOr(lhs, rhs), nil
	default:
		return nil, errors.Errorf("unsupported binary operator token %d", b.Op)
	}
}

func cmp(block *ir.Block, float bool, ip enum.IPred, fp enum.FPred, lhs, rhs value.Value) value.Value {
	if float {
		return block.NewFCmp(fp, lhs, rhs)
	}
	return block.NewICmp(ip, lhs, rhs)
}

func isFloatType(t types.Type) bool {
	switch t.(type) {
	case *types.FloatType:
		return true
	}
	return false
}

func immConst(v *weakir.ImmPayload) value.Value {
	switch v.Type {
	case weakir.ImmBool:
		if v.Bool {
			return constant.True
		}
		return constant.False
	case weakir.ImmChar:
		return constant.NewInt(types.I8, int64(v.Char))
	case weakir.ImmFloat:
		return constant.NewFloat(types.Float, float64(v.Float))
	case weakir.ImmInt:
		return constant.NewInt(types.I32, int64(v.Int))
	default:
		return constant.NewInt(types.I32, 0)
	}
}

// llvmType maps a weak IR data type to its LLVM counterpart. Struct is an
// opaque, fieldless aggregate since ir.DataType carries no field list
// (irgen's documented MemberPayload.FieldIdx-only simplification); Unknown
// (the result type the IR generator assigns to fn_call temporaries, since
// it never re-derives a callee's return type) falls back to a 32-bit int,
// adequate for this thin debug-output surface.
func llvmType(dt weakir.DataType) types.Type {
	switch dt {
	case weakir.Void:
		return types.Void
	case weakir.Int:
		return types.I32
	case weakir.Char:
		return types.I8
	case weakir.Float:
		return types.Float
	case weakir.Bool:
		return types.I1
	case weakir.StringType:
		return types.NewPointer(types.I8)
	case weakir.StructType:
		return types.NewStruct()
	default:
		return types.I32
	}
}
