package supergraph

import (
	"github.com/wuggen/static-jump-resolution/cfg"
	"github.com/wuggen/static-jump-resolution/ir"
)

// BuildFromCFG constructs a supergraph from a CFG analysis, per spec.md
// §4.3 and the original's supergraph_from_cfg: every non-simprocedure
// node whose block ends in a call gets a DummyCall/DummyRet pair spliced
// in; every other edge is copied over with its original jumpkind.
//
// FakeRet edges (the CFG's own optimistic "control returns here"
// shortcut around a call) are not copied; the dummy call/ret pair models
// that transition precisely instead.
func BuildFromCFG(c cfg.Analysis) *Graph {
	g := newGraph()

	nodes := c.Nodes()
	for _, n := range nodes {
		if !n.IsSimprocedure() {
			g.internBlock(n)
		}
	}

	// Collect each function's returning/simprocedure nodes once, so call
	// sites don't re-scan the whole node list per call (functionReturns,
	// grounded on supergraph.py's fn_rets precomputation).
	functionReturns := make(map[uint64][]NodeID)
	for _, n := range nodes {
		if n.HasReturn() || n.IsSimprocedure() {
			functionReturns[n.FunctionAddr()] = append(functionReturns[n.FunctionAddr()], g.internBlock(n))
		}
	}

	for _, n := range nodes {
		if n.IsSimprocedure() {
			continue
		}
		nID := g.internBlock(n)
		block := n.Block()

		if block.Jumpkind != ir.Call {
			for _, e := range c.SuccessorsAndJumpkind(n) {
				if e.Jumpkind == ir.FakeRet {
					continue
				}
				g.addEdge(nID, g.internBlock(e.To), e.Jumpkind)
			}
			continue
		}

		callID := g.addDummy(KindDummyCall, nID)
		retID := g.addDummy(KindDummyRet, nID)
		g.nodes[callID].pair = retID
		g.nodes[retID].pair = callID

		g.addEdge(nID, callID, ir.Boring)

		callTargets := c.Successors(n, ir.Call)
		for _, t := range callTargets {
			tID := g.internBlock(t)
			g.addEdge(callID, tID, ir.Call)

			// The returning nodes of the CALL TARGET feed this call
			// site's own dummy ret node. (The original's fn_rets loop
			// indexes by n.function_address -- the caller's function,
			// not the callee's -- which cannot be right and does not
			// match its own test_multiple_returns fixture; see
			// DESIGN.md.)
			for _, r := range functionReturns[t.FunctionAddr()] {
				g.addEdge(r, retID, ir.Ret)
			}
		}

		fallthroughTargets := c.Successors(n, ir.FakeRet)
		for _, s := range fallthroughTargets {
			g.addEdge(retID, g.internBlock(s), ir.Boring)
		}
	}

	return g
}
