package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/engine"
	"github.com/wuggen/static-jump-resolution/ir"
	"github.com/wuggen/static-jump-resolution/vars"
)

const (
	defaultSP = -24
	defaultBP = -8
	testFn    = 128
	rax       = 100
	rbx       = 101
)

func arbitraryCtx() callctx.ExecutionCtx {
	bp := int64(defaultBP)
	return callctx.ExecutionCtx{FnAddr: testFn, SP: defaultSP, BP: &bp}
}

func TestVarsModifiedStore(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	stmt := ir.Store{
		Addr: ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64},
		Data: ir.Const{Value: 0, Ty: ir.I32},
		End:  ir.LE,
	}
	got := engine.VarsModified(stmt, ctx, a)
	assert.Equal(t, []vars.Var{vars.StackVar{FnAddr: testFn, Offset: defaultSP, Size: 4}}, got)

	stmt = ir.Store{
		Addr: ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
			ir.Const{Value: uint64(int64(-8)), Ty: ir.I64},
			ir.Get{Offset: arch.TestBPOffset, Ty: ir.I64},
		}, Ty: ir.I64},
		Data: ir.Get{Offset: rax, Ty: ir.I16},
		End:  ir.LE,
	}
	got = engine.VarsModified(stmt, ctx, a)
	assert.Equal(t, []vars.Var{vars.StackVar{FnAddr: testFn, Offset: defaultBP - 8, Size: 2}}, got)

	addr := ir.Get{Offset: rax, Ty: ir.I64}
	stmt = ir.Store{Addr: addr, Data: ir.Const{Value: 0, Ty: ir.I64}, End: ir.LE}
	got = engine.VarsModified(stmt, ctx, a)
	assert.Equal(t, []vars.Var{vars.MemoryLocation{Addr: addr, Size: 8}}, got)
}

func TestVarsModifiedPut(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	stmt := ir.Put{Offset: rax, Data: ir.Const{Value: 0, Ty: ir.I64}}
	got := engine.VarsModified(stmt, ctx, a)
	assert.Equal(t, []vars.Var{vars.Register{Offset: rax, Size: 8}}, got)
}

func TestVarsModifiedSPBPNeverProducesRegister(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	stmt := ir.Put{Offset: arch.TestSPOffset, Data: ir.Const{Value: 0, Ty: ir.I64}}
	assert.Empty(t, engine.VarsModified(stmt, ctx, a))
}

func TestVarsUsedPut(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	stmt := ir.Put{Offset: rax, Data: ir.Const{Value: 0, Ty: ir.I64}}
	assert.Empty(t, engine.VarsUsed(stmt, ctx, a))

	stmt = ir.Put{Offset: rbx, Data: ir.Get{Offset: rax, Ty: ir.I32}}
	assert.Equal(t, []vars.Var{vars.Register{Offset: rax, Size: 4}}, engine.VarsUsed(stmt, ctx, a))

	addr := ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
		ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64},
		ir.Const{Value: 8, Ty: ir.I64},
	}, Ty: ir.I64}
	stmt = ir.Put{Offset: rax, Data: ir.Load{End: ir.LE, Ty: ir.I32, Addr: addr}}
	assert.Equal(t, []vars.Var{vars.StackVar{FnAddr: testFn, Offset: defaultSP + 8, Size: 4}}, engine.VarsUsed(stmt, ctx, a))

	loadAddr := ir.Get{Offset: rax, Ty: ir.I64}
	stmt = ir.Put{Offset: rax, Data: ir.Load{End: ir.LE, Ty: ir.I64, Addr: loadAddr}}
	got := engine.VarsUsed(stmt, ctx, a)
	assert.ElementsMatch(t, []vars.Var{
		vars.MemoryLocation{Addr: loadAddr, Size: 8},
		vars.Register{Offset: rax, Size: 8},
	}, got)
}

func TestVarsUsedStore(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	addr := ir.Get{Offset: rax, Ty: ir.I64}
	data := ir.Get{Offset: rbx, Ty: ir.I32}
	stmt := ir.Store{Addr: addr, Data: data, End: ir.LE}
	got := engine.VarsUsed(stmt, ctx, a)
	assert.ElementsMatch(t, []vars.Var{
		vars.Register{Offset: rax, Size: 8},
		vars.Register{Offset: rbx, Size: 4},
	}, got)

	innerAddr := ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
		ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64},
		ir.Const{Value: 8, Ty: ir.I64},
	}, Ty: ir.I64}
	stmt = ir.Store{
		Addr: ir.Load{End: ir.LE, Ty: ir.I64, Addr: innerAddr},
		Data: ir.Const{Value: 0, Ty: ir.I32},
		End:  ir.LE,
	}
	got = engine.VarsUsed(stmt, ctx, a)
	assert.Equal(t, []vars.Var{vars.StackVar{FnAddr: testFn, Offset: defaultSP + 8, Size: 8}}, got)

	addr1 := ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
		ir.Get{Offset: rax, Ty: ir.I64},
		ir.Const{Value: 8, Ty: ir.I64},
	}, Ty: ir.I64}
	addr2 := ir.Load{End: ir.LE, Ty: ir.I64, Addr: addr1}
	data2 := ir.Get{Offset: rbx, Ty: ir.I32}
	stmt = ir.Store{Addr: addr2, Data: data2, End: ir.LE}
	got = engine.VarsUsed(stmt, ctx, a)
	assert.ElementsMatch(t, []vars.Var{
		vars.MemoryLocation{Addr: addr1, Size: 8},
		vars.Register{Offset: rax, Size: 8},
		vars.Register{Offset: rbx, Size: 4},
	}, got)
}
