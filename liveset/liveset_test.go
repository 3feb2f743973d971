package liveset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/liveset"
	"github.com/wuggen/static-jump-resolution/supergraph"
	"github.com/wuggen/static-jump-resolution/vars"
)

const defaultSP = -24
const defaultBP = -8

func arbitraryRecords(n int) []callctx.CallRecord {
	bp := int64(defaultBP)
	recs := make([]callctx.CallRecord, n)
	for i := 0; i < n; i++ {
		recs[i] = callctx.CallRecord{Node: supergraph.NodeID(i), CallAddr: uint64(i), SP: defaultSP, BP: &bp}
	}
	return recs
}

func buildCallString(recs []callctx.CallRecord) callctx.CallString {
	var cs callctx.CallString
	for _, r := range recs {
		cs = cs.Push(r)
	}
	return cs
}

func arbitraryVars(n int) []vars.Var {
	out := make([]vars.Var, n)
	for i := 0; i < n; i++ {
		out[i] = vars.Register{Offset: -i, Size: 1}
	}
	return out
}

// TestQualifiedLiveSetCanRepresent mirrors test_live_vars.py's
// test_qualified_use_represent: a set qualified by a shorter (prefix)
// context can represent one qualified by a longer context extending it,
// only when their uses match too.
func TestQualifiedLiveSetCanRepresent(t *testing.T) {
	records := arbitraryRecords(2)
	vs := arbitraryVars(2)

	cs1 := buildCallString(records[:1])
	cs2 := buildCallString(records)

	ls1 := liveset.NewQualifiedLiveSet(cs1)
	ls1.GenUses(liveset.VarUse{Var: vs[0], CodeLoc: liveset.CodeLoc{BlockAddr: 0, StmtIdx: 0}})
	ls2 := liveset.NewQualifiedLiveSet(cs2)
	ls2.GenUses(liveset.VarUse{Var: vs[0], CodeLoc: liveset.CodeLoc{BlockAddr: 0, StmtIdx: 0}})

	assert.True(t, ls1.CanRepresent(ls2))
	assert.False(t, ls2.CanRepresent(ls1))

	ls3 := liveset.NewQualifiedLiveSet(cs1)
	ls3.GenUses(liveset.VarUse{Var: vs[1], CodeLoc: liveset.CodeLoc{BlockAddr: 0, StmtIdx: 0}})
	assert.False(t, ls3.CanRepresent(ls2))
	assert.False(t, ls2.CanRepresent(ls3))
}

func TestLiveVarsDefaultsToEmptyContextEmptyUses(t *testing.T) {
	lv := liveset.NewLiveVars(arch.Test{}, 0x100)
	sets := lv.Sets()
	assert.Len(t, sets, 1)
	assert.Equal(t, 0, sets[0].Ctx.Len())
	assert.Equal(t, 0, sets[0].Uses.Len())
}

func TestLiveVarsUnionContractsByRepresentative(t *testing.T) {
	records := arbitraryRecords(1)
	v := vars.Register{Offset: 1, Size: 1}
	use := liveset.VarUse{Var: v, CodeLoc: liveset.CodeLoc{BlockAddr: 1, StmtIdx: 0}}

	// A qualified live set under a one-record context...
	withCtx := liveset.FromQualifiedLiveSets(arch.Test{}, 0x100, 0, nil,
		func() liveset.QualifiedLiveSet {
			ls := liveset.NewQualifiedLiveSet(buildCallString(records))
			ls.GenUses(use)
			return ls
		}())

	// ...unioned with the same use under the empty context should be
	// represented by (collapse down to) the empty-context entry, since an
	// empty context is a prefix of every context and the uses match.
	empty := liveset.FromQualifiedLiveSets(arch.Test{}, 0x100, 0, nil,
		func() liveset.QualifiedLiveSet {
			ls := liveset.NewQualifiedLiveSet(callctx.CallString{})
			ls.GenUses(use)
			return ls
		}())

	merged := withCtx.Union(empty)
	sets := merged.Sets()
	assert.Len(t, sets, 1)
	assert.Equal(t, 0, sets[0].Ctx.Len())
}

func TestLiveVarsEqual(t *testing.T) {
	a := liveset.NewLiveVars(arch.Test{}, 0x100)
	b := liveset.NewLiveVars(arch.Test{}, 0x100)
	assert.True(t, a.Equal(b))

	v := vars.Register{Offset: 2, Size: 1}
	a.Sets()[0].GenUses(liveset.VarUse{Var: v, CodeLoc: liveset.CodeLoc{BlockAddr: 1, StmtIdx: 0}})
	assert.False(t, a.Equal(b))
}
