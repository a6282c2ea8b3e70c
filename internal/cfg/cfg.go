// Package cfg links an IR function's instructions into a control-flow
// graph (spec §4.8): fall-through by default, single successor for jump,
// two successors for cond, zero for ret/ret_void.
package cfg

import "weakc/internal/ir"

// Build links n.Succs/n.Preds for every instruction in fn's body (fn must
// be a FuncDecl node). Building twice on the same body produces identical
// successor/predecessor sets (spec §8 invariant 5, "CFG determinism") since
// it first clears every node's Succs/Preds and then reads only the body's
// slice order and the Jump/Cond payloads' target indices, never external
// state.
func Build(fn *ir.Node) {
	body := fn.FuncDeclVal.Body
	if len(body) == 0 {
		return
	}

	for _, n := range body {
		n.Succs = nil
		n.Preds = nil
	}

	byIdx := make(map[int]*ir.Node, len(body))
	for _, n := range body {
		byIdx[n.InstrIdx] = n
	}

	for i, n := range body {
		switch n.Kind {
		case ir.Jump:
			if target, ok := byIdx[int(n.JumpVal.Idx)]; ok {
				link(n, target)
			}
		case ir.Cond:
			if target, ok := byIdx[int(n.CondVal.GotoLabel)]; ok {
				link(n, target)
			}
			if i+1 < len(body) {
				link(n, body[i+1])
			}
		case ir.Ret:
			// zero successors
		default:
			if i+1 < len(body) {
				link(n, body[i+1])
			}
		}
	}
}

func link(from, to *ir.Node) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}
