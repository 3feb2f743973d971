package engine

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/config"
	"github.com/wuggen/static-jump-resolution/ir"
	"github.com/wuggen/static-jump-resolution/liveset"
	"github.com/wuggen/static-jump-resolution/sjrerr"
	"github.com/wuggen/static-jump-resolution/vars"
)

var log = logrus.WithField("pkg", "engine")

func logf() *logrus.Entry { return log }

const defaultTmpCacheSize = 4096

// Engine is the per-block transfer function (spec.md §4.4): given a
// node's live-variables state on exit from a block and the block's IR,
// it computes the state on entry to the block.
type Engine struct {
	arch     arch.Arch
	opts     config.Options
	tmpCache *lru.Cache[uint64, tmpBindings]
}

// New builds an Engine for the given architecture and options. The
// per-block tmp cache is bounded by an LRU (spec.md §5, §9): block
// revisits are common during fixpoint iteration, so caching tmp
// substitutions pays for itself, but an unbounded map would grow with
// the whole binary.
func New(a arch.Arch, opts config.Options) *Engine {
	cache, err := lru.New[uint64, tmpBindings](defaultTmpCacheSize)
	if err != nil {
		panic(err) // defaultTmpCacheSize is a positive constant; New only errors on size <= 0
	}
	return &Engine{arch: a, opts: opts, tmpCache: cache}
}

func (e *Engine) tmpsFor(block *ir.Block) tmpBindings {
	if cached, ok := e.tmpCache.Get(block.Addr); ok {
		return cached
	}
	tmps := computeTmpBindings(block)
	e.tmpCache.Add(block.Addr, tmps)
	return tmps
}

// Process computes the live-variables state on entry to block, given its
// state on exit (state), per spec.md §4.4:
//
//  1. tmps are eliminated (cached per block address);
//  2. if the block itself ends in an indirect jump, the variables used
//     in its target expression are unconditionally generated;
//  3. statements are processed in reverse order, each one killing the
//     variables it modifies, then generating either the variables it
//     uses (unconditionally, if the statement is itself an indirect
//     jump) or only if one of the variables just killed was already
//     live (spec.md §4.4 step 4, "gen_if_live").
//
// The returned state is a fresh copy; state is not mutated.
func (e *Engine) Process(state *liveset.LiveVars, block *ir.Block) (*liveset.LiveVars, error) {
	out := state.Copy()
	tmps := e.tmpsFor(block)

	if target := IsIndirectJumpBlock(block); target != nil {
		for _, ls := range out.Sets() {
			ctx := out.ExecutionCtx(ls.Ctx)
			used := VarsUsedExpr(replaceTmps(target, tmps), ctx, e.arch)
			ls.GenUses(wrapUses(used, liveset.CodeLoc{BlockAddr: block.Addr, StmtIdx: len(block.Statements)})...)
		}
	}

	for i := len(block.Statements) - 1; i >= 0; i-- {
		stmt := block.Statements[i]
		switch stmt.(type) {
		case ir.IMark, ir.WrTmp, ir.AbiHint, ir.NoOp:
			continue
		}

		stmt = replaceTmpsStmt(stmt, tmps)
		loc := liveset.CodeLoc{BlockAddr: block.Addr, StmtIdx: i}
		indirect := IsIndirectJumpStmt(stmt) != nil

		for _, ls := range out.Sets() {
			ctx := out.ExecutionCtx(ls.Ctx)
			used := VarsUsed(stmt, ctx, e.arch)
			modified := VarsModified(stmt, ctx, e.arch)

			hadModifiedUse := ls.Uses.AnyVarIn(modified)
			ls.KillVars(modified...)

			if indirect || hadModifiedUse {
				ls.GenUses(wrapUses(used, loc)...)
			}
		}

		if e.opts.FailFast {
			if _, unsupported := unsupportedStmt(stmt); unsupported {
				return out, sjrerr.ErrUnsupportedConstruct
			}
		}
	}

	return out, nil
}

func wrapUses(vs []vars.Var, loc liveset.CodeLoc) []liveset.VarUse {
	out := make([]liveset.VarUse, len(vs))
	for i, v := range vs {
		out[i] = liveset.VarUse{Var: v, CodeLoc: loc}
	}
	return out
}

// unsupportedStmt reports whether stmt is outside the set of statement
// kinds the transfer function implements, for FailFast promotion of the
// lift-gap warnings VarsUsed/VarsModified already logged.
func unsupportedStmt(stmt ir.Stmt) (ir.Stmt, bool) {
	switch stmt.(type) {
	case ir.Put, ir.Store, ir.Exit:
		return stmt, false
	default:
		return stmt, true
	}
}

// ExecutionCtxFor is a convenience for callers outside this package to
// build the ExecutionCtx a given qualified live set's context implies for
// a node's state.
func ExecutionCtxFor(state *liveset.LiveVars, cs callctx.CallString) callctx.ExecutionCtx {
	return state.ExecutionCtx(cs)
}
