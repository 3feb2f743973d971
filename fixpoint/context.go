package fixpoint

import (
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/ir"
	"github.com/wuggen/static-jump-resolution/liveset"
	"github.com/wuggen/static-jump-resolution/supergraph"
)

// callRecordFor builds the CallRecord identifying the call made at the
// dummy call node id, against the state currently assigned to it
// (context.py's CtxRecord, constructed fresh at every call-dummy
// crossing rather than stored).
func callRecordFor(g *supergraph.Graph, id supergraph.NodeID, state *liveset.LiveVars) callctx.CallRecord {
	bp := state.BP
	if bp != nil {
		v := *bp
		bp = &v
	}
	return callctx.CallRecord{Node: id, CallAddr: g.CallAddr(id), SP: state.SP, BP: bp}
}

// popAtCall is the backward-direction transform for a Call edge
// (DummyCall -> entry(callee)), spec.md §4.5: a qualified live set
// flowing backward out of the callee's entry either
//
//   - carries an empty context, meaning it was already contracted to a
//     representative that holds regardless of which call reached this
//     callee (spec.md §4.2's representative contraction) -- it passes
//     through unchanged, since an empty context is (trivially) a prefix
//     of the one this call would have pushed; or
//   - has rec as the top of its context, meaning it really was pushed at
//     this call site -- rec is popped off and the set applies to the
//     caller; or
//   - has some other record on top, meaning it only applies to a
//     different call into the same callee -- it does not cross this
//     particular edge and is dropped.
func popAtCall(ls liveset.QualifiedLiveSet, rec callctx.CallRecord) (liveset.QualifiedLiveSet, bool) {
	if ls.Ctx.Len() == 0 {
		return ls, true
	}
	top, _ := ls.Ctx.Top()
	if !top.Equal(rec) {
		return liveset.QualifiedLiveSet{}, false
	}
	newCtx, _ := ls.Ctx.Pop()
	return liveset.QualifiedLiveSet{Ctx: newCtx, Uses: ls.Uses}, true
}

// pushAtRet is the backward-direction transform for a Ret edge (callee's
// returning node -> DummyRet), spec.md §4.5: going backward out of a
// specific call site's own dummy ret node and into the callee's (shared)
// returning block, rec is pushed onto a qualified live set, tagging the
// contribution with which caller it came from before it is merged with
// the contributions of the callee's other callers.
func pushAtRet(ls liveset.QualifiedLiveSet, rec callctx.CallRecord) liveset.QualifiedLiveSet {
	return liveset.QualifiedLiveSet{Ctx: ls.Ctx.Push(rec), Uses: ls.Uses.Clone()}
}

// expandAtRet regenerates the concrete contexts a (possibly contracted)
// qualified live set stands for before it is pushed across a Ret edge
// (spec.md §4.3/§4.5's representative contraction: "When a ret dummy is
// traversed, the driver uses represented_by to expand the representative
// back into the concrete contexts that were elided, preserving soundness
// at return sites", testable property S5). ls may be the sole survivor of
// a whole family of longer, equal-uses contexts that representative
// contraction collapsed it into; `from` is consulted for any context
// length ls's own context can represent (regardless of which uses that
// entry was originally stored under -- recursion depths that remain
// reachable for some live variable remain reachable for all of them), and
// every one of those lengths is re-tagged with ls's own uses before being
// returned. ls itself is always included, since a context represents
// itself.
func expandAtRet(from *liveset.LiveVars, ls liveset.QualifiedLiveSet) []liveset.QualifiedLiveSet {
	return from.RepresentedBy(ls)
}

// crossEdgeBackward applies the appropriate context transform to the
// state already computed for successor node `to`, reached from `n` by an
// edge of the given jumpkind, producing n's contribution along that
// single edge. Non-call/ret edges (ordinary intraprocedural edges, and
// the n->DummyCall / DummyRet->fallthrough Boring edges) pass the state
// through unchanged; the caller still runs it through the block transfer
// function afterwards if n is a real block. Ret edges additionally expand
// each qualified live set via expandAtRet before pushing, so a
// representative contracted by an earlier merge (spec.md §4.3) regenerates
// every concrete context it was standing in for, rather than propagating
// only the single shortest one.
func crossEdgeBackward(g *supergraph.Graph, n, to supergraph.NodeID, jumpkind ir.Jumpkind, from *liveset.LiveVars) *liveset.LiveVars {
	fnAddr := g.FunctionAddr(n)

	switch jumpkind {
	case ir.Call:
		rec := callRecordFor(g, n, from)
		out := liveset.Empty(from.Arch, fnAddr, from.SP, from.BP)
		for _, ls := range from.Sets() {
			if popped, ok := popAtCall(*ls, rec); ok {
				out = out.Union(liveset.FromQualifiedLiveSets(from.Arch, fnAddr, from.SP, from.BP, popped))
			}
		}
		return out

	case ir.Ret:
		// rec must be keyed by the same node popAtCall compares against:
		// the DummyCall half of this call site's pair, not the DummyRet
		// half (`to`) we are crossing into here. Using `to` directly would
		// tag every pushed record with the wrong node id, so it could
		// never compare equal at the matching popAtCall and no context
		// would ever actually pop.
		rec := callRecordFor(g, g.PairedNode(to), from)
		out := liveset.Empty(from.Arch, fnAddr, from.SP, from.BP)
		for _, ls := range from.Sets() {
			for _, expanded := range expandAtRet(from, *ls) {
				out = out.Union(liveset.FromQualifiedLiveSets(from.Arch, fnAddr, from.SP, from.BP, pushAtRet(expanded, rec)))
			}
		}
		return out

	default:
		return from
	}
}
