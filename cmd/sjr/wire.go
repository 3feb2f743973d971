// Command sjr runs the interprocedural live-variables analysis over a
// program description and prints, for each function, the variables live
// at the entry to every block -- in particular at every block ending in
// an indirect jump, the information needed to resolve it.
//
// The analysis core (packages ir, arch, vars, callctx, liveset, cfg,
// supergraph, engine, fixpoint) knows nothing about how a real CFG is
// recovered or how real machine code is lifted to IR (spec.md §6); this
// command's job is entirely the glue of reading a JSON-encoded program
// description into those types and driving the analysis, the way a real
// integration would sit on top of an actual disassembler/lifter.
package main

import (
	"github.com/wuggen/static-jump-resolution/ir"
)

// wireProgram is the on-disk JSON shape of a program to analyze.
type wireProgram struct {
	Functions []wireFunction `json:"functions"`
}

type wireFunction struct {
	Addr   uint64      `json:"addr"`
	Blocks []wireBlock `json:"blocks"`
}

// wireBlock is one CFG node: a block of IR plus its outgoing edges. A
// block with HasReturn true and no successors is a function-return node.
type wireBlock struct {
	Addr          uint64       `json:"addr"`
	Simprocedure  bool         `json:"simprocedure,omitempty"`
	HasReturn     bool         `json:"has_return,omitempty"`
	Statements    []wireStmt   `json:"statements"`
	Next          wireExpr     `json:"next"`
	Jumpkind      string       `json:"jumpkind"`
	Successors    []wireSucc   `json:"successors"`
}

type wireSucc struct {
	To       uint64 `json:"to"`
	Jumpkind string `json:"jumpkind"`
}

// wireStmt/wireExpr are tagged unions over ir.Stmt/ir.Expr, decoded by
// Kind. Only the fields relevant to that Kind need to be set; the rest
// are zero.
type wireStmt struct {
	Kind string `json:"kind"`

	// Put, Store, Exit
	Offset int      `json:"offset,omitempty"`
	Data   *wireExpr `json:"data,omitempty"`
	Addr   *wireExpr `json:"addr,omitempty"`
	Guard  *wireExpr `json:"guard,omitempty"`
	Dst    *wireExpr `json:"dst,omitempty"`
	End    string   `json:"end,omitempty"`
	Jumpkind string `json:"jumpkind,omitempty"`
	OffsIP int      `json:"offs_ip,omitempty"`

	// WrTmp
	Tmp int `json:"tmp,omitempty"`

	// IMark
	InsnAddr uint64 `json:"insn_addr,omitempty"`
	Len      int    `json:"len,omitempty"`
	Delta    int    `json:"delta,omitempty"`
}

type wireExpr struct {
	Kind string `json:"kind"`

	Offset int        `json:"offset,omitempty"`
	Ty     string     `json:"ty,omitempty"`
	Tmp    int        `json:"tmp,omitempty"`
	Value  uint64     `json:"value,omitempty"`
	End    string     `json:"end,omitempty"`
	Addr   *wireExpr  `json:"addr,omitempty"`
	Op     string     `json:"op,omitempty"`
	Args   []wireExpr `json:"args,omitempty"`
	Cond   *wireExpr  `json:"cond,omitempty"`
	IfTrue *wireExpr  `json:"if_true,omitempty"`
	IfFalse *wireExpr `json:"if_false,omitempty"`
	Callee string     `json:"callee,omitempty"`
}

var wireTypes = map[string]ir.Type{
	"I1": ir.I1, "I8": ir.I8, "I16": ir.I16, "I32": ir.I32, "I64": ir.I64,
	"F32": ir.F32, "F64": ir.F64, "V128": ir.V128, "V256": ir.V256,
}

var wireJumpkinds = map[string]ir.Jumpkind{
	"Boring": ir.Boring, "Call": ir.Call, "Ret": ir.Ret, "FakeRet": ir.FakeRet,
	"Syscall": ir.Syscall, "NoDecode": ir.NoDecode, "Invalid": ir.Invalid,
}

var wireEndians = map[string]ir.Endian{"LE": ir.LE, "BE": ir.BE}
