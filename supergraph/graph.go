// Package supergraph builds the interprocedural supergraph the fixpoint
// driver runs over: the CFG with synthetic call/return nodes spliced in
// at call sites, so that crossing into and out of a callee is visible to
// the traversal as ordinary edges (spec.md §4.3).
package supergraph

import "github.com/wuggen/static-jump-resolution/cfg"
import "github.com/wuggen/static-jump-resolution/ir"

// NodeID is an arena handle for a supergraph node. Using an integer
// handle rather than a cfg.Node pointer or a *DummyNode as the node
// identity (spec.md §9: "use arena allocation with integer indices for
// supergraph nodes") keeps node identity cheap to compare and hash
// regardless of what the underlying CFG node implementation looks like.
type NodeID int

// Kind classifies a supergraph node.
type Kind int

const (
	KindBlock Kind = iota
	KindDummyCall
	KindDummyRet
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "Block"
	case KindDummyCall:
		return "Dummy_Call"
	case KindDummyRet:
		return "Dummy_Ret"
	default:
		return "Invalid"
	}
}

type nodeEntry struct {
	kind    Kind
	cfgNode cfg.Node // valid when kind == KindBlock
	parent  NodeID   // valid when kind != KindBlock: the parent (calling) block
	pair    NodeID   // valid when kind != KindBlock: the matching DummyCall/DummyRet
}

type edge struct {
	to       NodeID
	jumpkind ir.Jumpkind
}

// Graph is an interprocedural supergraph: CFG nodes plus synthetic
// dummy call/return nodes at call sites.
type Graph struct {
	nodes []nodeEntry
	index map[cfg.Node]NodeID
	succs map[NodeID][]edge
	preds map[NodeID][]edge
}

func newGraph() *Graph {
	return &Graph{
		index: make(map[cfg.Node]NodeID),
		succs: make(map[NodeID][]edge),
		preds: make(map[NodeID][]edge),
	}
}

func (g *Graph) internBlock(n cfg.Node) NodeID {
	if id, ok := g.index[n]; ok {
		return id
	}
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, nodeEntry{kind: KindBlock, cfgNode: n})
	g.index[n] = id
	return id
}

func (g *Graph) addDummy(kind Kind, parent NodeID) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, nodeEntry{kind: kind, parent: parent})
	return id
}

func (g *Graph) addEdge(from, to NodeID, jk ir.Jumpkind) {
	g.succs[from] = append(g.succs[from], edge{to: to, jumpkind: jk})
	g.preds[to] = append(g.preds[to], edge{to: from, jumpkind: jk})
}

// NumNodes returns the number of nodes in the graph.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Kind returns a node's kind.
func (g *Graph) Kind(id NodeID) Kind { return g.nodes[id].kind }

// CFGNode returns the underlying cfg.Node for a KindBlock node. It
// panics if id does not name a block node; callers should check Kind
// first.
func (g *Graph) CFGNode(id NodeID) cfg.Node {
	e := g.nodes[id]
	if e.kind != KindBlock {
		panic("supergraph: CFGNode called on a non-block node")
	}
	return e.cfgNode
}

// ParentBlock returns the calling block of a dummy call/ret node. It
// panics if id names a block node.
func (g *Graph) ParentBlock(id NodeID) NodeID {
	e := g.nodes[id]
	if e.kind == KindBlock {
		panic("supergraph: ParentBlock called on a block node")
	}
	return e.parent
}

// PairedNode returns the matching DummyRet for a DummyCall, or the
// matching DummyCall for a DummyRet.
func (g *Graph) PairedNode(id NodeID) NodeID {
	e := g.nodes[id]
	if e.kind == KindBlock {
		panic("supergraph: PairedNode called on a block node")
	}
	return e.pair
}

// CallAddr returns the call-site address associated with a dummy node:
// the address of the last instruction in its parent block.
func (g *Graph) CallAddr(id NodeID) uint64 {
	parent := g.ParentBlock(id)
	return g.CFGNode(parent).Block().LastInstructionAddr()
}

// FunctionAddr returns the function a node belongs to: its own function
// address for a block node, or its parent block's function address for
// a dummy node.
func (g *Graph) FunctionAddr(id NodeID) uint64 {
	e := g.nodes[id]
	if e.kind == KindBlock {
		return e.cfgNode.FunctionAddr()
	}
	return g.FunctionAddr(e.parent)
}

// IsEntry reports whether a node is the entry node of its function.
func (g *Graph) IsEntry(id NodeID) bool {
	e := g.nodes[id]
	return e.kind == KindBlock && e.cfgNode.Addr() == e.cfgNode.FunctionAddr()
}

// IsExit reports whether a node is a returning node of its function.
func (g *Graph) IsExit(id NodeID) bool {
	e := g.nodes[id]
	return e.kind == KindBlock && e.cfgNode.HasReturn()
}

// Successors returns the node IDs reachable by a single forward edge
// from id.
func (g *Graph) Successors(id NodeID) []NodeID {
	edges := g.succs[id]
	out := make([]NodeID, len(edges))
	for i, e := range edges {
		out[i] = e.to
	}
	return out
}

// Predecessors returns the node IDs with a single forward edge into id.
func (g *Graph) Predecessors(id NodeID) []NodeID {
	edges := g.preds[id]
	out := make([]NodeID, len(edges))
	for i, e := range edges {
		out[i] = e.to
	}
	return out
}

// Edge is a supergraph edge, exposed with its jumpkind so a caller can
// tell a Call/Ret fn-boundary edge apart from an ordinary intraprocedural
// one (the node-kind pair alone is not enough: a DummyCall's incoming
// edge and a DummyRet's outgoing edge are both ir.Boring).
type Edge struct {
	To       NodeID
	Jumpkind ir.Jumpkind
}

// SuccessorEdges returns every outgoing edge from id, with jumpkind.
func (g *Graph) SuccessorEdges(id NodeID) []Edge {
	edges := g.succs[id]
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{To: e.to, Jumpkind: e.jumpkind}
	}
	return out
}

// PredecessorEdges returns every incoming edge into id, with jumpkind.
func (g *Graph) PredecessorEdges(id NodeID) []Edge {
	edges := g.preds[id]
	out := make([]Edge, len(edges))
	for i, e := range edges {
		out[i] = Edge{To: e.to, Jumpkind: e.jumpkind}
	}
	return out
}

// Nodes returns every node ID in the graph.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, len(g.nodes))
	for i := range g.nodes {
		out[i] = NodeID(i)
	}
	return out
}
