package fixpoint

import "github.com/wuggen/static-jump-resolution/supergraph"

// Direction is the direction a fixpoint traversal runs in. Live-variables
// analysis is a backward problem (spec.md §4.5), but Worklist models both
// so the pop-order rule below has somewhere to hang its direction check.
type Direction int

const (
	Backward Direction = iota
	Forward
)

type itemKind int

const (
	kindIntra itemKind = iota
	kindFnBoundary
	kindCall
	kindRet
)

func classify(g *supergraph.Graph, id supergraph.NodeID) itemKind {
	switch g.Kind(id) {
	case supergraph.KindDummyCall:
		return kindCall
	case supergraph.KindDummyRet:
		return kindRet
	default:
		if g.IsEntry(id) || g.IsExit(id) {
			return kindFnBoundary
		}
		return kindIntra
	}
}

// Worklist is the traversal queue the driver pulls nodes from, grounded
// on the four-sublist structure of the original's supergraph.Worklist:
// nodes are bucketed by what kind of node they are rather than kept in a
// single FIFO/LIFO, so the driver can be "intraprocedurally eager" --
// draining all the cheap, purely local work in a function before paying
// for a context-sensitive call/ret crossing.
//
// Pop order: intra nodes always drain first (cheapest, most local), then
// function-boundary blocks (every function's entry block and its
// returning blocks), then the two dummy-node sublists in an
// order that depends on direction. Backward is the direction this
// analysis actually runs in: a return edge is crossed (pushing a fresh
// call record, spec.md §4.5) before the matching call edge is crossed
// (popping it back off), so that a calling context is fully assembled
// walking backward out of a callee before it is torn back down walking
// backward out of the call site itself. Forward inverts both the push/pop
// roles and this order, for symmetry.
type Worklist struct {
	dir    Direction
	intra  []supergraph.NodeID
	fn     []supergraph.NodeID
	call   []supergraph.NodeID
	ret    []supergraph.NodeID
	queued map[supergraph.NodeID]bool
}

// NewWorklist builds an empty Worklist for the given traversal direction.
func NewWorklist(dir Direction) *Worklist {
	return &Worklist{dir: dir, queued: make(map[supergraph.NodeID]bool)}
}

// Push enqueues id if it is not already queued.
func (w *Worklist) Push(g *supergraph.Graph, id supergraph.NodeID) {
	if w.queued[id] {
		return
	}
	w.queued[id] = true
	switch classify(g, id) {
	case kindIntra:
		w.intra = append(w.intra, id)
	case kindFnBoundary:
		w.fn = append(w.fn, id)
	case kindCall:
		w.call = append(w.call, id)
	case kindRet:
		w.ret = append(w.ret, id)
	}
}

// Empty reports whether every sublist is drained.
func (w *Worklist) Empty() bool {
	return len(w.intra) == 0 && len(w.fn) == 0 && len(w.call) == 0 && len(w.ret) == 0
}

// Pop removes and returns the next node to process, per the pop-order
// rule documented on Worklist, or false if the worklist is empty.
func (w *Worklist) Pop() (supergraph.NodeID, bool) {
	if len(w.intra) > 0 {
		return w.popFrom(&w.intra)
	}
	if len(w.fn) > 0 {
		return w.popFrom(&w.fn)
	}
	first, second := &w.ret, &w.call
	if w.dir == Forward {
		first, second = &w.call, &w.ret
	}
	if len(*first) > 0 {
		return w.popFrom(first)
	}
	if len(*second) > 0 {
		return w.popFrom(second)
	}
	return 0, false
}

func (w *Worklist) popFrom(list *[]supergraph.NodeID) (supergraph.NodeID, bool) {
	id := (*list)[0]
	*list = (*list)[1:]
	delete(w.queued, id)
	return id, true
}
