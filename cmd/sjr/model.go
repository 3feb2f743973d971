package main

import (
	"fmt"

	"github.com/wuggen/static-jump-resolution/cfg"
	"github.com/wuggen/static-jump-resolution/ir"
)

// progNode is the concrete cfg.Node this command builds from a
// wireBlock. cfg.Node implementations must be comparable (used as a map
// key by the supergraph builder); a pointer to this struct is.
type progNode struct {
	addr         uint64
	fnAddr       uint64
	simprocedure bool
	hasReturn    bool
	block        *ir.Block
	succs        []cfg.Edge
}

func (n *progNode) Addr() uint64          { return n.addr }
func (n *progNode) FunctionAddr() uint64  { return n.fnAddr }
func (n *progNode) HasReturn() bool       { return n.hasReturn }
func (n *progNode) IsSimprocedure() bool  { return n.simprocedure }
func (n *progNode) Block() *ir.Block      { return n.block }

// program is the cfg.Analysis built from a decoded wireProgram.
type program struct {
	nodes    []cfg.Node
	byAddr   map[uint64]*progNode
	fnAddrs  []uint64
}

func (p *program) Nodes() []cfg.Node { return p.nodes }

func (p *program) Successors(n cfg.Node, jumpkind ir.Jumpkind) []cfg.Node {
	pn := n.(*progNode)
	var out []cfg.Node
	for _, e := range pn.succs {
		if e.Jumpkind == jumpkind {
			out = append(out, e.To)
		}
	}
	return out
}

func (p *program) SuccessorsAndJumpkind(n cfg.Node) []cfg.Edge {
	return n.(*progNode).succs
}

// buildProgram decodes a wireProgram into a program (cfg.Analysis),
// recording in it the function addresses it declares, in the order given.
func buildProgram(w *wireProgram) (*program, error) {
	p := &program{byAddr: make(map[uint64]*progNode)}

	for _, fn := range w.Functions {
		p.fnAddrs = append(p.fnAddrs, fn.Addr)
		for _, wb := range fn.Blocks {
			block, err := decodeBlock(wb)
			if err != nil {
				return nil, err
			}
			pn := &progNode{
				addr:         wb.Addr,
				fnAddr:       fn.Addr,
				simprocedure: wb.Simprocedure,
				hasReturn:    wb.HasReturn,
				block:        block,
			}
			p.byAddr[wb.Addr] = pn
			p.nodes = append(p.nodes, pn)
		}
	}

	for _, fn := range w.Functions {
		for _, wb := range fn.Blocks {
			pn := p.byAddr[wb.Addr]
			for _, s := range wb.Successors {
				to, ok := p.byAddr[s.To]
				if !ok {
					return nil, fmt.Errorf("sjr: block 0x%x: successor 0x%x not defined", wb.Addr, s.To)
				}
				jk, ok := wireJumpkinds[s.Jumpkind]
				if s.Jumpkind != "" && !ok {
					return nil, fmt.Errorf("sjr: block 0x%x: unknown successor jumpkind %q", wb.Addr, s.Jumpkind)
				}
				pn.succs = append(pn.succs, cfg.Edge{To: to, Jumpkind: jk})
			}
		}
	}

	return p, nil
}
