package vars

import (
	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/ir"
)

// StackVarFromAddr returns the StackVar corresponding to addr if addr is
// a direct dereference of SP/BP, or SP/BP plus or minus a constant;
// otherwise it returns false. ty is the type of the load or store that
// uses addr as its address (spec.md §4.1 "stack_var").
func StackVarFromAddr(addr ir.Expr, ctx callctx.ExecutionCtx, a arch.Arch, ty ir.Type) (StackVar, bool) {
	size := GetTypeSizeBytes(ty, a)

	switch e := addr.(type) {
	case ir.Get:
		switch e.Offset {
		case a.SPOffset():
			return StackVar{FnAddr: ctx.FnAddr, Offset: ctx.SP, Size: size}, true
		case a.BPOffset():
			if ctx.BP == nil {
				return StackVar{}, false
			}
			return StackVar{FnAddr: ctx.FnAddr, Offset: *ctx.BP, Size: size}, true
		default:
			return StackVar{}, false
		}

	case ir.Binop:
		reg, con, ok := regPlusConst(e)
		if !ok {
			return StackVar{}, false
		}
		delta, ok := signedDelta(e.Op, con)
		if !ok {
			return StackVar{}, false
		}

		switch reg.Offset {
		case a.SPOffset():
			return StackVar{FnAddr: ctx.FnAddr, Offset: ctx.SP + delta, Size: size}, true
		case a.BPOffset():
			if ctx.BP == nil {
				return StackVar{}, false
			}
			return StackVar{FnAddr: ctx.FnAddr, Offset: *ctx.BP + delta, Size: size}, true
		default:
			return StackVar{}, false
		}

	default:
		return StackVar{}, false
	}
}

// regPlusConst recognizes a Binop of a register Get and a Const operand
// in either argument order, returning the register and the constant.
func regPlusConst(e ir.Binop) (ir.Get, ir.Const, bool) {
	get0, ok0 := e.Args[0].(ir.Get)
	get1, ok1 := e.Args[1].(ir.Get)
	con0, okc0 := e.Args[0].(ir.Const)
	con1, okc1 := e.Args[1].(ir.Const)

	switch {
	case ok0 && okc1:
		return get0, con1, true
	case ok1 && okc0:
		return get1, con0, true
	default:
		return ir.Get{}, ir.Const{}, false
	}
}

var addOps = map[string]bool{"Iop_Add8": true, "Iop_Add16": true, "Iop_Add32": true, "Iop_Add64": true}
var subOps = map[string]bool{"Iop_Sub8": true, "Iop_Sub16": true, "Iop_Sub32": true, "Iop_Sub64": true}

func signedDelta(op string, con ir.Const) (int64, bool) {
	switch {
	case addOps[op]:
		return int64(con.Value), true
	case subOps[op]:
		return -int64(con.Value), true
	default:
		return 0, false
	}
}

// MemoryLocationFor returns the StackVar or MemoryLocation corresponding
// to interpreting addr as a memory address of type ty (spec.md §4.1
// "memory_location").
func MemoryLocationFor(addr ir.Expr, ctx callctx.ExecutionCtx, a arch.Arch, ty ir.Type) Var {
	if sv, ok := StackVarFromAddr(addr, ctx, a, ty); ok {
		return sv
	}
	return MemoryLocation{Addr: addr, Size: GetTypeSizeBytes(ty, a)}
}
