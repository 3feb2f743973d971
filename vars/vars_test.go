package vars_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/ir"
	"github.com/wuggen/static-jump-resolution/vars"
)

const (
	defaultSP = -24
	defaultBP = -8
	testFn    = 128
	rax       = 100
)

func arbitraryCtx() callctx.ExecutionCtx {
	bp := int64(defaultBP)
	return callctx.ExecutionCtx{FnAddr: testFn, SP: defaultSP, BP: &bp}
}

func TestStackVarFromAddrDirectAccess(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	sv, ok := vars.StackVarFromAddr(ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64}, ctx, a, ir.I32)
	assert.True(t, ok)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultSP, Size: 4}, sv)

	sv, ok = vars.StackVarFromAddr(ir.Get{Offset: arch.TestBPOffset, Ty: ir.I64}, ctx, a, ir.I64)
	assert.True(t, ok)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultBP, Size: 8}, sv)
}

func TestStackVarFromAddrOffset(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	addr := ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
		ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64},
		ir.Const{Value: 8, Ty: ir.I64},
	}, Ty: ir.I64}
	sv, ok := vars.StackVarFromAddr(addr, ctx, a, ir.I32)
	assert.True(t, ok)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultSP + 8, Size: 4}, sv)

	// Commuted operand order gives the same result.
	addr = ir.Binop{Op: "Iop_Add64", Args: [2]ir.Expr{
		ir.Const{Value: 8, Ty: ir.I64},
		ir.Get{Offset: arch.TestSPOffset, Ty: ir.I64},
	}, Ty: ir.I64}
	sv, ok = vars.StackVarFromAddr(addr, ctx, a, ir.I32)
	assert.True(t, ok)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultSP + 8, Size: 4}, sv)

	addr = ir.Binop{Op: "Iop_Sub64", Args: [2]ir.Expr{
		ir.Get{Offset: arch.TestBPOffset, Ty: ir.I64},
		ir.Const{Value: 8, Ty: ir.I64},
	}, Ty: ir.I64}
	sv, ok = vars.StackVarFromAddr(addr, ctx, a, ir.I64)
	assert.True(t, ok)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultBP - 8, Size: 8}, sv)
}

func TestStackVarFromAddrNone(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	_, ok := vars.StackVarFromAddr(ir.Get{Offset: rax, Ty: ir.I64}, ctx, a, ir.I32)
	assert.False(t, ok)
}

func TestMemoryLocationForActuallyStackVar(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	addr := ir.Binop{Op: "Iop_Sub64", Args: [2]ir.Expr{
		ir.Get{Offset: arch.TestBPOffset, Ty: ir.I64},
		ir.Const{Value: 16, Ty: ir.I64},
	}, Ty: ir.I64}
	got := vars.MemoryLocationFor(addr, ctx, a, ir.I64)
	assert.Equal(t, vars.StackVar{FnAddr: testFn, Offset: defaultBP - 16, Size: 8}, got)
}

func TestMemoryLocationForGeneral(t *testing.T) {
	a := arch.Test{}
	ctx := arbitraryCtx()

	addr := ir.Get{Offset: rax, Ty: ir.I64}
	got := vars.MemoryLocationFor(addr, ctx, a, ir.I64)
	ml, ok := got.(vars.MemoryLocation)
	assert.True(t, ok)
	assert.True(t, ir.ExprEqual(addr, ml.Addr))
	assert.Equal(t, 8, ml.Size)
}

func TestRegisterEqualAndHash(t *testing.T) {
	r1 := vars.Register{Offset: rax, Size: 8}
	r2 := vars.Register{Offset: rax, Size: 8}
	r3 := vars.Register{Offset: rax, Size: 4}

	assert.True(t, r1.Equal(r2))
	assert.Equal(t, r1.Hash(), r2.Hash())
	assert.False(t, r1.Equal(r3))
}

func TestStackVarOverlaps(t *testing.T) {
	a := vars.StackVar{FnAddr: testFn, Offset: -16, Size: 4}
	b := vars.StackVar{FnAddr: testFn, Offset: -14, Size: 4}
	c := vars.StackVar{FnAddr: testFn, Offset: -8, Size: 4}

	assert.True(t, a.Overlaps(b))
	assert.False(t, a.Overlaps(c))
}

func TestRegisterOverlaps(t *testing.T) {
	rax8 := vars.Register{Offset: rax, Size: 8}
	eax4 := vars.Register{Offset: rax, Size: 4}
	ah := vars.Register{Offset: rax + 1, Size: 1}
	rbx := vars.Register{Offset: rax + 8, Size: 8}

	assert.True(t, rax8.Overlaps(eax4), "eax is the low 4 bytes of rax")
	assert.True(t, rax8.Overlaps(ah), "ah sits inside rax's byte range")
	assert.False(t, rax8.Overlaps(rbx), "adjacent, non-overlapping registers")
	assert.True(t, rax8.Overlaps(rax8), "a register overlaps itself")
}
