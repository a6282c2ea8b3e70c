// Package irgen lowers a type-checked AST into weak's custom three-address
// IR (spec §4.7). Grounded on original_source/lib/middle_end/ir/ir.c's
// instruction constructors and lib/src/MiddleEnd/CodeGen/CodeGen.cpp's
// statement/expression lowering and ResolveAssignmentOperation desugaring
// table. Assumes the three sema passes have already accepted the tree.
package irgen

import (
	"weakc/internal/ast"
	"weakc/internal/diag"
	"weakc/internal/ir"
	"weakc/internal/token"
)

// Generate lowers every function_decl in root into an ir.Unit. Struct and
// function-prototype declarations contribute no instructions.
func Generate(root *ast.Compound) *ir.Unit {
	u := &ir.Unit{}
	for _, d := range root.Stmts {
		if fd, ok := d.(*ast.FunctionDecl); ok {
			u.Funcs = append(u.Funcs, lowerFunctionDecl(fd))
		}
	}
	return u
}

// pendingPatch is a forward jump/cond instruction whose target is not yet
// known because it depends on "whatever instruction comes next" — resolved
// once that instruction exists.
type pendingPatch struct {
	node   *ir.Node
	isCond bool
}

func (p pendingPatch) resolve(target *ir.Node) {
	if p.isCond {
		p.node.CondVal.GotoLabel = int32(target.InstrIdx)
	} else {
		p.node.JumpVal.Idx = int32(target.InstrIdx)
	}
}

// loopCtx tracks the break/continue targets of the innermost enclosing
// loop. continueTarget is set immediately when known (while); for for/do
// lowering it is nil until the step or condition position is determined,
// and continueJumps collects jumps to patch at that point.
type loopCtx struct {
	continueTarget *ir.Node
	continueJumps  []*ir.Node
	breakJumps     []*ir.Node
}

// funcGen lowers one function_decl's body. Variable names resolve to the
// instr_idx of the alloca/alloca_array/array_access/member instruction that
// defines their storage (an SSA-like naming scheme, per spec §3's "sym:
// index"), not a separate slot space.
type funcGen struct {
	b         *ir.Builder
	vars      map[string]int32
	varTypes  map[string]ir.DataType
	arrayDims map[string][]int64
	args      []*ir.Node
	loops     []*loopCtx
}

func lowerFunctionDecl(d *ast.FunctionDecl) *ir.Node {
	fg := &funcGen{
		b:         ir.NewBuilder(),
		vars:      map[string]int32{},
		varTypes:  map[string]ir.DataType{},
		arrayDims: map[string][]int64{},
	}
	for _, param := range d.Params {
		dt := dataTypeOf(param.DataType)
		n := fg.emitAlloca(dt)
		fg.vars[param.Name] = int32(n.InstrIdx)
		fg.varTypes[param.Name] = dt
		fg.args = append(fg.args, n)
	}

	pending := fg.lowerStmts(d.Body.Stmts)
	lastIsReturn := len(d.Body.Stmts) > 0
	if lastIsReturn {
		_, lastIsReturn = d.Body.Stmts[len(d.Body.Stmts)-1].(*ast.Return)
	}
	if len(pending) > 0 || !lastIsReturn {
		exit := &ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}}
		fg.emit(exit)
		for _, p := range pending {
			p.resolve(exit)
		}
	}

	body := ir.Instructions(fg.b.Body())
	return &ir.Node{Kind: ir.FuncDecl, FuncDeclVal: &ir.FuncDeclPayload{
		RetType: dataTypeOf(d.ReturnType),
		Name:    d.Name,
		Args:    fg.args,
		Body:    body,
	}}
}

func dataTypeOf(dt ast.DataType) ir.DataType {
	switch dt {
	case ast.Void:
		return ir.Void
	case ast.Int:
		return ir.Int
	case ast.Char:
		return ir.Char
	case ast.Float:
		return ir.Float
	case ast.Bool:
		return ir.Bool
	case ast.StringType:
		return ir.StringType
	case ast.Struct:
		return ir.StructType
	default:
		return ir.Unknown
	}
}

func immInt(v int32) *ir.Node   { return &ir.Node{Kind: ir.Imm, ImmVal: &ir.ImmPayload{Type: ir.ImmInt, Int: v}} }
func immFloat(v float32) *ir.Node {
	return &ir.Node{Kind: ir.Imm, ImmVal: &ir.ImmPayload{Type: ir.ImmFloat, Float: v}}
}
func immChar(v byte) *ir.Node { return &ir.Node{Kind: ir.Imm, ImmVal: &ir.ImmPayload{Type: ir.ImmChar, Char: v}} }
func immBool(v bool) *ir.Node { return &ir.Node{Kind: ir.Imm, ImmVal: &ir.ImmPayload{Type: ir.ImmBool, Bool: v}} }
func sym(idx int32) *ir.Node  { return &ir.Node{Kind: ir.Sym, SymVal: &ir.SymPayload{Idx: idx}} }

func (fg *funcGen) emit(n *ir.Node) *ir.Node { return fg.b.Emit(n) }

func (fg *funcGen) emitAlloca(dt ir.DataType) *ir.Node {
	n := &ir.Node{Kind: ir.Alloca, Alloca: &ir.AllocaPayload{DataType: dt}}
	fg.emit(n)
	n.Alloca.Idx = int32(n.InstrIdx)
	return n
}

// newTemp allocates a fresh, unnamed storage slot for a flattened
// sub-expression result (spec §4.7: "every sub-expression result is placed
// into a symbol index").
func (fg *funcGen) newTemp(dt ir.DataType) int32 {
	return int32(fg.emitAlloca(dt).InstrIdx)
}

func (fg *funcGen) emitStore(idx int32, body *ir.Node) {
	fg.emit(&ir.Node{Kind: ir.Store, StoreVal: &ir.StorePayload{Idx: idx, Type: storeKindOf(body), Body: body}})
}

func storeKindOf(n *ir.Node) ir.StoreKind {
	switch n.Kind {
	case ir.Imm:
		return ir.StoreImm
	case ir.Bin:
		return ir.StoreBin
	case ir.FuncCall:
		return ir.StoreCall
	default:
		return ir.StoreSym
	}
}

// captureFirst runs fn and returns the first instruction it emitted, or
// nil if it emitted nothing — used to resolve a forward jump/cond target
// to "whatever comes next".
func (fg *funcGen) captureFirst(fn func()) *ir.Node {
	before := fg.b.Tail()
	fn()
	if before == nil {
		return fg.b.Body()
	}
	return before.Next
}

// withScope saves and restores the name bindings visible to fn, so that a
// declaration inside a nested block does not leak out (and a shadowed
// outer binding of the same name is restored on exit), matching
// sema.Type's save/restore-around-body pattern.
func (fg *funcGen) withScope(fn func()) {
	savedVars := cloneInt32Map(fg.vars)
	savedTypes := cloneDataTypeMap(fg.varTypes)
	savedDims := cloneDimsMap(fg.arrayDims)
	fn()
	fg.vars = savedVars
	fg.varTypes = savedTypes
	fg.arrayDims = savedDims
}

func cloneInt32Map(m map[string]int32) map[string]int32 {
	out := make(map[string]int32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDataTypeMap(m map[string]ir.DataType) map[string]ir.DataType {
	out := make(map[string]ir.DataType, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneDimsMap(m map[string][]int64) map[string][]int64 {
	out := make(map[string][]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (fg *funcGen) pushLoop(continueTarget *ir.Node) *loopCtx {
	ctx := &loopCtx{continueTarget: continueTarget}
	fg.loops = append(fg.loops, ctx)
	return ctx
}

func (fg *funcGen) popLoop() *loopCtx {
	ctx := fg.loops[len(fg.loops)-1]
	fg.loops = fg.loops[:len(fg.loops)-1]
	return ctx
}

func (fg *funcGen) currentLoop() *loopCtx {
	if len(fg.loops) == 0 {
		diag.FailUnreachable("break/continue outside of a loop")
	}
	return fg.loops[len(fg.loops)-1]
}

// --- statements ---

func (fg *funcGen) lowerStmts(stmts []ast.Node) []pendingPatch {
	var carry []pendingPatch
	for _, st := range stmts {
		var stmtPending []pendingPatch
		first := fg.captureFirst(func() { stmtPending = fg.lowerStmt(st) })
		if first != nil && len(carry) > 0 {
			for _, p := range carry {
				p.resolve(first)
			}
			carry = nil
		}
		carry = append(carry, stmtPending...)
	}
	return carry
}

func (fg *funcGen) lowerStmt(n ast.Node) []pendingPatch {
	switch s := n.(type) {
	case *ast.VarDecl:
		fg.lowerVarDecl(s)
	case *ast.ArrayDecl:
		fg.lowerArrayDecl(s)
	case *ast.If:
		return fg.lowerIf(s)
	case *ast.For:
		return fg.lowerFor(s)
	case *ast.While:
		return fg.lowerWhile(s)
	case *ast.DoWhile:
		return fg.lowerDoWhile(s)
	case *ast.Break:
		ctx := fg.currentLoop()
		j := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
		fg.emit(j)
		ctx.breakJumps = append(ctx.breakJumps, j)
	case *ast.Continue:
		ctx := fg.currentLoop()
		j := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
		fg.emit(j)
		if ctx.continueTarget != nil {
			j.JumpVal.Idx = int32(ctx.continueTarget.InstrIdx)
		} else {
			ctx.continueJumps = append(ctx.continueJumps, j)
		}
	case *ast.Return:
		fg.lowerReturn(s)
	case *ast.Compound:
		var pending []pendingPatch
		fg.withScope(func() { pending = fg.lowerStmts(s.Stmts) })
		return pending
	case *ast.FunctionCall:
		// Standalone call statement: result unused, stands alone (spec §4.7).
		args := fg.lowerArgs(s.Args)
		fg.emit(&ir.Node{Kind: ir.FuncCall, FuncCallVal: &ir.FuncCallPayload{Name: s.Name, Args: args}})
	default:
		fg.lowerExpr(n)
	}
	return nil
}

func (fg *funcGen) lowerVarDecl(s *ast.VarDecl) {
	dt := dataTypeOf(s.DataType)
	n := fg.emitAlloca(dt)
	fg.vars[s.Name] = int32(n.InstrIdx)
	fg.varTypes[s.Name] = dt
	if s.Init != nil {
		val := fg.lowerExpr(s.Init)
		fg.emitStore(int32(n.InstrIdx), val)
	}
}

func (fg *funcGen) lowerArrayDecl(s *ast.ArrayDecl) {
	dt := dataTypeOf(s.DataType)
	lvls := make([]uint64, len(s.Dimensions))
	for i, d := range s.Dimensions {
		lvls[i] = uint64(d)
	}
	n := &ir.Node{Kind: ir.AllocaArray, AllocaArray: &ir.AllocaArrayPayload{DataType: dt, EnclosureLvls: lvls}}
	fg.emit(n)
	n.AllocaArray.Idx = int32(n.InstrIdx)
	fg.vars[s.Name] = int32(n.InstrIdx)
	fg.varTypes[s.Name] = dt
	fg.arrayDims[s.Name] = s.Dimensions
}

func (fg *funcGen) lowerReturn(s *ast.Return) {
	if s.Operand == nil {
		fg.emit(&ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: true}})
		return
	}
	val := fg.lowerExpr(s.Operand)
	fg.emit(&ir.Node{Kind: ir.Ret, RetVal: &ir.RetPayload{IsVoid: false, Body: val}})
}

// lowerIf lowers: cond(thenStart); jump(else-or-after); <then>; [jump(after);
// <else>]; — returning patches that still need "whatever comes after the
// whole if" (spec §4.7, §4.8's cond/jump successor shape).
func (fg *funcGen) lowerIf(s *ast.If) []pendingPatch {
	bin := fg.lowerCondition(s.Cond)
	condNode := &ir.Node{Kind: ir.Cond, CondVal: &ir.CondPayload{Cond: bin}}
	fg.emit(condNode)
	skipThen := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
	fg.emit(skipThen)

	var thenPending []pendingPatch
	thenFirst := fg.captureFirst(func() {
		fg.withScope(func() { thenPending = fg.lowerStmts(s.Then.Stmts) })
	})
	if thenFirst != nil {
		condNode.CondVal.GotoLabel = int32(thenFirst.InstrIdx)
	}

	if s.Else == nil {
		pending := append([]pendingPatch{{node: skipThen}}, thenPending...)
		if thenFirst == nil {
			pending = append(pending, pendingPatch{node: condNode, isCond: true})
		}
		return pending
	}

	skipElse := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
	fg.emit(skipElse)
	for _, p := range thenPending {
		p.resolve(skipElse)
	}

	var elsePending []pendingPatch
	elseFirst := fg.captureFirst(func() {
		fg.withScope(func() { elsePending = fg.lowerStmts(s.Else.Stmts) })
	})
	if elseFirst != nil {
		skipThen.JumpVal.Idx = int32(elseFirst.InstrIdx)
	}

	pending := append([]pendingPatch{{node: skipElse}}, elsePending...)
	if elseFirst == nil {
		pending = append(pending, pendingPatch{node: skipThen})
	}
	if thenFirst == nil {
		pending = append(pending, pendingPatch{node: condNode, isCond: true})
	}
	return pending
}

// lowerWhile lowers: loopStart: cond(bodyStart); jump(after); <body>;
// jump(loopStart). continue targets loopStart directly (known up front).
func (fg *funcGen) lowerWhile(s *ast.While) []pendingPatch {
	var condNode *ir.Node
	loopStart := fg.captureFirst(func() {
		bin := fg.lowerCondition(s.Cond)
		condNode = &ir.Node{Kind: ir.Cond, CondVal: &ir.CondPayload{Cond: bin}}
		fg.emit(condNode)
	})

	fg.pushLoop(loopStart)
	skip := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
	fg.emit(skip)

	var bodyPending []pendingPatch
	bodyFirst := fg.captureFirst(func() {
		fg.withScope(func() { bodyPending = fg.lowerStmts(s.Body.Stmts) })
	})
	if bodyFirst != nil {
		condNode.CondVal.GotoLabel = int32(bodyFirst.InstrIdx)
	}
	back := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{Idx: int32(loopStart.InstrIdx)}}
	fg.emit(back)
	for _, p := range bodyPending {
		p.resolve(back)
	}

	ctx := fg.popLoop()
	pending := []pendingPatch{{node: skip}}
	if bodyFirst == nil {
		pending = append(pending, pendingPatch{node: condNode, isCond: true})
	}
	for _, bj := range ctx.breakJumps {
		pending = append(pending, pendingPatch{node: bj})
	}
	return pending
}

// lowerCondition builds a stand-alone bin node for a cond instruction's
// operand (spec §8's "cond operand is exactly a bin").
func (fg *funcGen) lowerCondition(e ast.Node) *ir.Node {
	if b, ok := e.(*ast.Binary); ok && !isAssignOp(b.Op) {
		lhs := fg.lowerExpr(b.LHS)
		rhs := fg.lowerExpr(b.RHS)
		return &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: b.Op, LHS: lhs, RHS: rhs}}
	}
	val := fg.lowerExpr(e)
	return &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Neq, LHS: val, RHS: immBool(false)}}
}

// lowerFor lowers: [init]; loopStart: cond(target); jump(after); <body>;
// [step]; jump(loopStart). continue targets the step if present, else
// loopStart; both are only known once body/step have been lowered, so
// continue jumps inside the body are deferred.
func (fg *funcGen) lowerFor(s *ast.For) []pendingPatch {
	var forPending []pendingPatch
	fg.withScope(func() {
		if s.Init != nil {
			fg.lowerStmt(s.Init)
		}
		var condNode *ir.Node
		loopStart := fg.captureFirst(func() {
			var bin *ir.Node
			if s.Cond != nil {
				bin = fg.lowerCondition(s.Cond)
			} else {
				bin = &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Eq, LHS: immBool(true), RHS: immBool(true)}}
			}
			condNode = &ir.Node{Kind: ir.Cond, CondVal: &ir.CondPayload{Cond: bin}}
			fg.emit(condNode)
		})

		fg.pushLoop(nil)
		skip := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{}}
		fg.emit(skip)

		var bodyPending []pendingPatch
		bodyFirst := fg.captureFirst(func() {
			fg.withScope(func() { bodyPending = fg.lowerStmts(s.Body.Stmts) })
		})
		var stepFirst *ir.Node
		if s.Step != nil {
			stepFirst = fg.captureFirst(func() { fg.lowerExpr(s.Step) })
		}
		target := bodyFirst
		if target == nil {
			target = stepFirst
		}
		if target != nil {
			condNode.CondVal.GotoLabel = int32(target.InstrIdx)
		}
		back := &ir.Node{Kind: ir.Jump, JumpVal: &ir.JumpPayload{Idx: int32(loopStart.InstrIdx)}}
		fg.emit(back)
		afterBody := stepFirst
		if afterBody == nil {
			afterBody = back
		}
		for _, p := range bodyPending {
			p.resolve(afterBody)
		}

		ctx := fg.popLoop()
		continueTarget := stepFirst
		if continueTarget == nil {
			continueTarget = loopStart
		}
		for _, cj := range ctx.continueJumps {
			cj.JumpVal.Idx = int32(continueTarget.InstrIdx)
		}

		forPending = []pendingPatch{{node: skip}}
		if target == nil {
			forPending = append(forPending, pendingPatch{node: condNode, isCond: true})
		}
		for _, bj := range ctx.breakJumps {
			forPending = append(forPending, pendingPatch{node: bj})
		}
	})
	return forPending
}

// lowerDoWhile lowers: bodyStart: <body>; condStart: cond(bodyStart-or-
// condStart). The false path is simply the next instruction after the
// loop, so only break jumps need an "after-loop" patch.
func (fg *funcGen) lowerDoWhile(s *ast.DoWhile) []pendingPatch {
	fg.pushLoop(nil)
	var bodyPending []pendingPatch
	bodyFirst := fg.captureFirst(func() {
		fg.withScope(func() { bodyPending = fg.lowerStmts(s.Body.Stmts) })
	})

	var condNode *ir.Node
	condFirst := fg.captureFirst(func() {
		bin := fg.lowerCondition(s.Cond)
		condNode = &ir.Node{Kind: ir.Cond, CondVal: &ir.CondPayload{Cond: bin}}
		fg.emit(condNode)
	})
	target := bodyFirst
	if target == nil {
		target = condFirst
	}
	condNode.CondVal.GotoLabel = int32(target.InstrIdx)
	for _, p := range bodyPending {
		p.resolve(condFirst)
	}

	ctx := fg.popLoop()
	for _, cj := range ctx.continueJumps {
		cj.JumpVal.Idx = int32(condFirst.InstrIdx)
	}

	var pending []pendingPatch
	for _, bj := range ctx.breakJumps {
		pending = append(pending, pendingPatch{node: bj})
	}
	return pending
}

// --- expressions ---

func isAssignOp(k token.Kind) bool {
	switch k {
	case token.Assign, token.MulAssign, token.DivAssign, token.ModAssign,
		token.PlusAssign, token.MinusAssign, token.ShlAssign, token.ShrAssign,
		token.BitAndAssign, token.BitOrAssign, token.XorAssign:
		return true
	}
	return false
}

// compoundAssignOp is CodeGen.cpp's ResolveAssignmentOperation table
// (SPEC_FULL.md §3): every compound-assignment kind maps to its underlying
// binary operator. Plain `=` has no entry (nothing to desugar).
var compoundAssignOp = map[token.Kind]token.Kind{
	token.MulAssign:    token.Star,
	token.DivAssign:    token.Slash,
	token.ModAssign:    token.Mod,
	token.PlusAssign:   token.Plus,
	token.MinusAssign:  token.Minus,
	token.ShlAssign:    token.Shl,
	token.ShrAssign:    token.Shr,
	token.BitAndAssign: token.BitAnd,
	token.BitOrAssign:  token.BitOr,
	token.XorAssign:    token.Xor,
}

func (fg *funcGen) lowerArgs(args []ast.Node) []*ir.Node {
	out := make([]*ir.Node, len(args))
	for i, a := range args {
		out[i] = fg.lowerExpr(a)
	}
	return out
}

// lowerExpr flattens e into a sym or imm value usable directly as a bin
// operand, store body, or return body (spec §8 invariants).
func (fg *funcGen) lowerExpr(e ast.Node) *ir.Node {
	switch n := e.(type) {
	case *ast.IntLit:
		return immInt(n.Value)
	case *ast.FloatLit:
		return immFloat(n.Value)
	case *ast.CharLit:
		return immChar(n.Value)
	case *ast.BoolLit:
		return immBool(n.Value)
	case *ast.StringLit:
		idx := fg.newTemp(ir.StringType)
		fg.emitStore(idx, &ir.Node{Kind: ir.Str, StrVal: &ir.StrPayload{Value: []byte(n.Value)}})
		return sym(idx)
	case *ast.Symbol:
		return sym(fg.vars[n.Name])
	case *ast.ArrayAccess:
		return sym(fg.addressOf(n))
	case *ast.MemberAccess:
		return sym(fg.addressOf(n))
	case *ast.Unary:
		return fg.lowerUnary(n)
	case *ast.Binary:
		return fg.lowerBinary(n)
	case *ast.FunctionCall:
		args := fg.lowerArgs(n.Args)
		call := &ir.Node{Kind: ir.FuncCall, FuncCallVal: &ir.FuncCallPayload{Name: n.Name, Args: args}}
		// The callee's return type was already checked against the call site
		// by sema; this layer only needs a temp to hold the result, so the
		// DataType tag itself is left Unknown rather than re-deriving it.
		idx := fg.newTemp(ir.Unknown)
		fg.emitStore(idx, call)
		return sym(idx)
	default:
		diag.FailUnreachable("unexpected expression kind in irgen")
		return nil
	}
}

func (fg *funcGen) lowerBinary(e *ast.Binary) *ir.Node {
	if isAssignOp(e.Op) {
		return fg.lowerAssignment(e)
	}
	lhs := fg.lowerExpr(e.LHS)
	rhs := fg.lowerExpr(e.RHS)
	bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: e.Op, LHS: lhs, RHS: rhs}}
	idx := fg.newTemp(fg.exprType(e))
	fg.emitStore(idx, bin)
	return sym(idx)
}

// lowerAssignment desugars `a op= b` to `a = a op b` (SPEC_FULL.md §3's
// ResolveAssignmentOperation table) and resolves the store target via
// addressOf, returning the stored value (so chained assignment `a = b = c`
// flattens correctly).
func (fg *funcGen) lowerAssignment(e *ast.Binary) *ir.Node {
	var value *ir.Node
	if op, isCompound := compoundAssignOp[e.Op]; isCompound {
		lhsVal := fg.lowerExpr(e.LHS)
		rhsVal := fg.lowerExpr(e.RHS)
		bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: op, LHS: lhsVal, RHS: rhsVal}}
		idx := fg.newTemp(fg.exprType(e.LHS))
		fg.emitStore(idx, bin)
		value = sym(idx)
	} else {
		value = fg.lowerExpr(e.RHS)
	}
	target := fg.addressOf(e.LHS)
	fg.emitStore(target, value)
	return value
}

func (fg *funcGen) lowerUnary(e *ast.Unary) *ir.Node {
	switch e.Op {
	case token.Inc, token.Dec:
		target := fg.addressOf(e.Operand)
		oldVal := sym(target)
		op := token.Plus
		if e.Op == token.Dec {
			op = token.Minus
		}
		bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: op, LHS: oldVal, RHS: immInt(1)}}
		idx := fg.newTemp(fg.exprType(e.Operand))
		fg.emitStore(idx, bin)
		newVal := sym(idx)
		result := newVal
		if e.Fixity == ast.Postfix {
			// Copy the old value out before target is overwritten below.
			saved := fg.newTemp(fg.exprType(e.Operand))
			fg.emitStore(saved, sym(target))
			result = sym(saved)
		}
		fg.emitStore(target, newVal)
		return result
	case token.Minus:
		operand := fg.lowerExpr(e.Operand)
		bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Minus, LHS: immInt(0), RHS: operand}}
		idx := fg.newTemp(fg.exprType(e.Operand))
		fg.emitStore(idx, bin)
		return sym(idx)
	case token.Not:
		operand := fg.lowerExpr(e.Operand)
		bin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Eq, LHS: operand, RHS: immBool(false)}}
		idx := fg.newTemp(ir.Bool)
		fg.emitStore(idx, bin)
		return sym(idx)
	default: // token.Plus: unary plus is a no-op
		return fg.lowerExpr(e.Operand)
	}
}

// addressOf resolves n (a Symbol, ArrayAccess, or MemberAccess) to the
// instr_idx of the instruction that owns its storage, emitting an
// array_access/member instruction when needed.
func (fg *funcGen) addressOf(n ast.Node) int32 {
	switch e := n.(type) {
	case *ast.Symbol:
		return fg.vars[e.Name]
	case *ast.ArrayAccess:
		base := fg.vars[e.Name]
		offset := fg.flattenIndices(e.Name, e.Indices)
		node := &ir.Node{Kind: ir.ArrayAccess, ArrAccess: &ir.ArrayAccessPayload{Idx: base, Body: offset}}
		fg.emit(node)
		return int32(node.InstrIdx)
	case *ast.MemberAccess:
		base := fg.addressOf(e.BaseExpr)
		// Field layout is not resolvable at this layer: sema's own type
		// analysis treats member_access as an unconstrained Unknown-typed
		// access (internal/sema/type.go), so field index is left at 0.
		node := &ir.Node{Kind: ir.Member, MemberVal: &ir.MemberPayload{Idx: base, FieldIdx: 0}}
		fg.emit(node)
		return int32(node.InstrIdx)
	default:
		diag.FailUnreachable("invalid assignment target")
		return 0
	}
}

// flattenIndices combines a possibly multi-dimensional index list into a
// single row-major offset expression, since array_access's payload carries
// one index body (spec §8).
func (fg *funcGen) flattenIndices(name string, indices []ast.Node) *ir.Node {
	dims := fg.arrayDims[name]
	var combined *ir.Node
	for i, idxExpr := range indices {
		idxVal := fg.lowerExpr(idxExpr)
		if combined == nil {
			combined = idxVal
			continue
		}
		dim := int32(1)
		if i < len(dims) {
			dim = int32(dims[i])
		}
		mulBin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Star, LHS: combined, RHS: immInt(dim)}}
		mulIdx := fg.newTemp(ir.Int)
		fg.emitStore(mulIdx, mulBin)
		addBin := &ir.Node{Kind: ir.Bin, BinVal: &ir.BinPayload{Op: token.Plus, LHS: sym(mulIdx), RHS: idxVal}}
		addIdx := fg.newTemp(ir.Int)
		fg.emitStore(addIdx, addBin)
		combined = sym(addIdx)
	}
	return combined
}

// exprType is a light local re-derivation of an expression's data type,
// used only to pick the DataType tag on a temp alloca (never to validate —
// sema has already done that).
func (fg *funcGen) exprType(n ast.Node) ir.DataType {
	switch e := n.(type) {
	case *ast.IntLit:
		return ir.Int
	case *ast.FloatLit:
		return ir.Float
	case *ast.CharLit:
		return ir.Char
	case *ast.BoolLit:
		return ir.Bool
	case *ast.StringLit:
		return ir.StringType
	case *ast.Symbol:
		return fg.varTypes[e.Name]
	case *ast.ArrayAccess:
		return fg.varTypes[e.Name]
	case *ast.Binary:
		switch e.Op {
		case token.Eq, token.Neq, token.Lt, token.Le, token.Gt, token.Ge, token.And, token.Or:
			return ir.Bool
		}
		return fg.exprType(e.LHS)
	case *ast.Unary:
		return fg.exprType(e.Operand)
	default:
		return ir.Unknown
	}
}
