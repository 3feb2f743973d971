// Package fixpoint runs the interprocedural live-variables analysis to a
// fixpoint over a supergraph, producing a BlockResults per function
// (spec.md §4.5, static_jump_resolution.py's StaticJumpResolutionAnalysis).
package fixpoint

import (
	"github.com/sirupsen/logrus"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/config"
	"github.com/wuggen/static-jump-resolution/engine"
	"github.com/wuggen/static-jump-resolution/liveset"
	"github.com/wuggen/static-jump-resolution/sjrerr"
	"github.com/wuggen/static-jump-resolution/supergraph"
)

var log = logrus.WithField("pkg", "fixpoint")

// BlockResults is the per-function outcome of a Driver run: the live
// variables computed on entry to (In) and exit from (Out) every node
// belonging to that function, grouped the way
// static_jump_resolution.py's BlockResults/results_for_function group
// theirs.
type BlockResults struct {
	FnAddr uint64
	In     map[supergraph.NodeID]*liveset.LiveVars
	Out    map[supergraph.NodeID]*liveset.LiveVars
}

// UnqualifiedUsesAt returns every live variable at entry to id,
// regardless of calling context -- the answer to "what needs to be
// resolved to determine this node's indirect jump target," per spec.md
// §1's motivating question.
func (r *BlockResults) UnqualifiedUsesAt(id supergraph.NodeID) liveset.UseSet {
	lv, ok := r.In[id]
	if !ok {
		return liveset.NewUseSet()
	}
	return lv.UnqualifiedUses()
}

// Driver runs the analysis over a supergraph to a fixpoint. Per-node
// state SP/BP are fixed at 0/nil for every node (spec.md §4.1's
// frame-space convention, sp=0 at function entry): the retrieved
// original never updates sp/bp from a block's own Put statements either
// (live_vars.py's LiveVars.copy propagates them unchanged) -- concrete
// stack-pointer tracking across instructions is an external analysis
// this package does not attempt to reproduce (see DESIGN.md).
type Driver struct {
	Graph  *supergraph.Graph
	Engine *engine.Engine
	Arch   arch.Arch
	Opts   config.Options

	in  map[supergraph.NodeID]*liveset.LiveVars
	out map[supergraph.NodeID]*liveset.LiveVars
}

// NewDriver builds a Driver for the given supergraph.
func NewDriver(g *supergraph.Graph, eng *engine.Engine, a arch.Arch, opts config.Options) *Driver {
	return &Driver{
		Graph:  g,
		Engine: eng,
		Arch:   a,
		Opts:   opts,
		in:     make(map[supergraph.NodeID]*liveset.LiveVars),
		out:    make(map[supergraph.NodeID]*liveset.LiveVars),
	}
}

// Run iterates the worklist to a fixpoint. It returns the first
// programming error computeIn reports, and the first lift-gap error when
// FailFast is set; without FailFast a lift-gap error is logged and the run
// continues. The partial results computed so far remain available via
// ResultsForFunction even when it returns an error.
func (d *Driver) Run() error {
	wl := NewWorklist(Backward)
	for _, id := range d.Graph.Nodes() {
		fnAddr := d.Graph.FunctionAddr(id)
		d.in[id] = liveset.NewLiveVars(d.Arch, fnAddr)
		d.out[id] = liveset.NewLiveVars(d.Arch, fnAddr)
		wl.Push(d.Graph, id)
	}

	for {
		id, ok := wl.Pop()
		if !ok {
			break
		}

		newOut := d.computeOut(id)
		newIn, err := d.computeIn(id, newOut)
		if err != nil {
			if d.Opts.FailFast || err != sjrerr.ErrUnsupportedConstruct {
				return err
			}
			log.Warnf("node %d: %v (treated as empty, continuing)", id, err)
		}

		if limit := d.Opts.MaxCallStringLen; limit > 0 {
			for _, ls := range newIn.Sets() {
				if ls.Ctx.Len() > limit {
					log.Warnf("node %d: call string length %d exceeds %d; representative contraction does not seem to be converging", id, ls.Ctx.Len(), limit)
					break
				}
			}
		}

		outChanged := !newOut.Equal(d.out[id])
		inChanged := !newIn.Equal(d.in[id])
		d.out[id] = newOut
		d.in[id] = newIn

		if inChanged || outChanged {
			log.Debugf("node %d changed, requeueing %d predecessor(s)", id, len(d.Graph.Predecessors(id)))
			for _, p := range d.Graph.Predecessors(id) {
				wl.Push(d.Graph, p)
			}
		}
	}

	return nil
}

// computeOut computes the state flowing into node id from its
// successors (the meet/merge step of spec.md §4.5), applying each
// successor edge's context transform (crossEdgeBackward) before
// unioning.
func (d *Driver) computeOut(id supergraph.NodeID) *liveset.LiveVars {
	fnAddr := d.Graph.FunctionAddr(id)
	edges := d.Graph.SuccessorEdges(id)

	if len(edges) == 0 {
		// An exit node of the supergraph (a returning block with no
		// crafted dummy successor, i.e. the function boundary itself):
		// seed with the baseline empty-use, empty-context state (spec.md
		// §3, "Initial state at a function exit").
		return liveset.NewLiveVars(d.Arch, fnAddr)
	}

	out := liveset.Empty(d.Arch, fnAddr, 0, nil)
	for _, e := range edges {
		contrib := crossEdgeBackward(d.Graph, id, e.To, e.Jumpkind, d.in[e.To])
		out = out.Union(contrib)
	}
	return out
}

// computeIn derives the state on entry to id from its (already merged)
// exit state: the block transfer function for a real block, or a
// straight pass-through for a dummy call/ret node (dummy nodes carry no
// statements of their own; all killing/generating happens in real
// blocks, and all context bookkeeping happens on the edges crossing into
// and out of them, per crossEdgeBackward).
func (d *Driver) computeIn(id supergraph.NodeID, out *liveset.LiveVars) (*liveset.LiveVars, error) {
	switch d.Graph.Kind(id) {
	case supergraph.KindBlock:
		block := d.Graph.CFGNode(id).Block()
		return d.Engine.Process(out, block)
	case supergraph.KindDummyCall, supergraph.KindDummyRet:
		return out, nil
	default:
		return out, sjrerr.ErrUnknownDummyKind
	}
}

// ResultsForFunction gathers the current In/Out state of every
// supergraph node belonging to the given function (static_jump_resolution
// .py's `results_for_function`). Dummy call/ret nodes spliced in at this
// function's own call sites are included (their parent block belongs to
// this function); dummy nodes at call sites reached from elsewhere are
// not.
func (d *Driver) ResultsForFunction(fnAddr uint64) *BlockResults {
	r := &BlockResults{
		FnAddr: fnAddr,
		In:     make(map[supergraph.NodeID]*liveset.LiveVars),
		Out:    make(map[supergraph.NodeID]*liveset.LiveVars),
	}
	for _, id := range d.Graph.Nodes() {
		if d.Graph.FunctionAddr(id) != fnAddr {
			continue
		}
		r.In[id] = d.in[id]
		r.Out[id] = d.out[id]
	}
	return r
}
