package engine

import (
	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/ir"
	"github.com/wuggen/static-jump-resolution/vars"
)

// VarsModified returns the set of variables modified by stmt under ctx
// (spec.md §4.4). Put to the stack/base/instruction pointer's offset
// does not produce a Register: those are tracked separately, as concrete
// frame-space integers on the owning LiveVars rather than as tracked
// variables (spec.md's "Design decision -- stack-pointer tracking";
// updating those concrete values from the block's own Put statements is
// the caller's responsibility, since it depends on information the CFG
// already carries -- see DESIGN.md).
func VarsModified(stmt ir.Stmt, ctx callctx.ExecutionCtx, a arch.Arch) []vars.Var {
	switch s := stmt.(type) {
	case ir.Put:
		if s.Offset == a.SPOffset() || s.Offset == a.BPOffset() || s.Offset == a.IPOffset() {
			return nil
		}
		return []vars.Var{vars.Register{Offset: s.Offset, Size: vars.GetTypeSizeBytes(s.Data.ResultType(), a)}}

	case ir.Store:
		return []vars.Var{vars.MemoryLocationFor(s.Addr, ctx, a, s.Data.ResultType())}

	default:
		logf().Warnf("[VarsModified] unimplemented for statement type %T", s)
		return nil
	}
}

// VarsUsedExpr returns the set of variables whose values are used in
// expr under ctx (spec.md §4.4).
func VarsUsedExpr(expr ir.Expr, ctx callctx.ExecutionCtx, a arch.Arch) []vars.Var {
	recurse := func(e ir.Expr) []vars.Var { return VarsUsedExpr(e, ctx, a) }

	switch e := expr.(type) {
	case ir.Get:
		if e.Offset == a.SPOffset() || e.Offset == a.BPOffset() {
			return nil
		}
		return []vars.Var{vars.Register{Offset: e.Offset, Size: vars.GetTypeSizeBytes(e.Ty, a)}}

	case ir.Load:
		out := []vars.Var{vars.MemoryLocationFor(e.Addr, ctx, a, e.Ty)}
		return append(out, recurse(e.Addr)...)

	case ir.Unop, ir.Binop, ir.Triop, ir.Qop:
		args, _ := ir.NaryArgs(e)
		var out []vars.Var
		for _, arg := range args {
			out = append(out, recurse(arg)...)
		}
		return out

	case ir.ITE:
		var out []vars.Var
		out = append(out, recurse(e.Cond)...)
		out = append(out, recurse(e.IfFalse)...)
		out = append(out, recurse(e.IfTrue)...)
		return out

	default:
		return nil
	}
}

// VarsUsed returns the set of variables whose values are used by stmt
// under ctx (spec.md §4.4).
func VarsUsed(stmt ir.Stmt, ctx callctx.ExecutionCtx, a arch.Arch) []vars.Var {
	fromExpr := func(e ir.Expr) []vars.Var { return VarsUsedExpr(e, ctx, a) }

	switch s := stmt.(type) {
	case ir.Put:
		return fromExpr(s.Data)

	case ir.Store:
		return append(fromExpr(s.Addr), fromExpr(s.Data)...)

	case ir.Exit:
		return append(fromExpr(s.Guard), fromExpr(s.Dst)...)

	default:
		logf().Warnf("[VarsUsed] unimplemented for statement type %T", s)
		return nil
	}
}
