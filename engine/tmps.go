package engine

import (
	"github.com/wuggen/static-jump-resolution/ir"
)

// tmpBindings maps an IR temporary index to the (tmp-free) expression it
// was assigned.
type tmpBindings map[int]ir.Expr

// computeTmpBindings scans a block's statements once, substituting each
// WrTmp's right-hand side forward through any temps it itself reads, so
// that every temp ends up bound to an expression containing no further
// RdTmp (spec.md §4.4 step 1: "tmp elimination pre-pass"). Thanks to the
// IR's SSA-like temp discipline, this removes temps as a factor in every
// later step (engine.py's `_preprocess_block`).
func computeTmpBindings(block *ir.Block) tmpBindings {
	tmps := make(tmpBindings)
	for _, stmt := range block.Statements {
		if w, ok := stmt.(ir.WrTmp); ok {
			tmps[w.Tmp] = replaceTmps(w.Data, tmps)
		}
	}
	return tmps
}

// replaceTmps recursively replaces every RdTmp in expr with its bound
// value from tmps.
func replaceTmps(expr ir.Expr, tmps tmpBindings) ir.Expr {
	switch e := expr.(type) {
	case ir.RdTmp:
		val, ok := tmps[e.Tmp]
		if !ok {
			logf().Errorf("[replaceTmps] t%d not bound in the given map", e.Tmp)
			return e
		}
		return replaceTmps(val, tmps)

	case ir.Unop, ir.Binop, ir.Triop, ir.Qop:
		args, _ := ir.NaryArgs(e)
		newArgs := make([]ir.Expr, len(args))
		for i, a := range args {
			newArgs[i] = replaceTmps(a, tmps)
		}
		return ir.WithNaryArgs(e, newArgs)

	case ir.Load:
		return ir.Load{End: e.End, Ty: e.Ty, Addr: replaceTmps(e.Addr, tmps)}

	case ir.ITE:
		return ir.ITE{
			Cond:    replaceTmps(e.Cond, tmps),
			IfFalse: replaceTmps(e.IfFalse, tmps),
			IfTrue:  replaceTmps(e.IfTrue, tmps),
			Ty:      e.Ty,
		}

	case ir.CCall:
		newArgs := make([]ir.Expr, len(e.Args))
		for i, a := range e.Args {
			newArgs[i] = replaceTmps(a, tmps)
		}
		return ir.CCall{RetTy: e.RetTy, Callee: e.Callee, Args: newArgs}

	case ir.GetI:
		return ir.GetI{Descr: e.Descr, Ix: replaceTmps(e.Ix, tmps), Bias: e.Bias, Ty: e.Ty}

	case ir.Get, ir.Const:
		return e

	default:
		logf().Warnf("[replaceTmps] unimplemented for expression type %T", e)
		return e
	}
}

// replaceTmpsStmt replaces every RdTmp in stmt's operand expressions with
// its bound value from tmps. A WrTmp statement becomes a NoOp: its
// definition has been folded forward into every place that reads it.
func replaceTmpsStmt(stmt ir.Stmt, tmps tmpBindings) ir.Stmt {
	switch s := stmt.(type) {
	case ir.Put:
		return ir.Put{Offset: s.Offset, Data: replaceTmps(s.Data, tmps)}

	case ir.WrTmp:
		return ir.NoOp{}

	case ir.Store:
		return ir.Store{Addr: replaceTmps(s.Addr, tmps), Data: replaceTmps(s.Data, tmps), End: s.End}

	case ir.Exit:
		return ir.Exit{
			Guard:    replaceTmps(s.Guard, tmps),
			Dst:      replaceTmps(s.Dst, tmps),
			Jumpkind: s.Jumpkind,
			OffsIP:   s.OffsIP,
		}

	case ir.IMark, ir.AbiHint, ir.NoOp:
		return stmt

	default:
		logf().Warnf("[replaceTmpsStmt] unimplemented for statement type %T", s)
		return stmt
	}
}
