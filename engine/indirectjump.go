package engine

import "github.com/wuggen/static-jump-resolution/ir"

// IsIndirectJumpBlock returns the block's terminating jump-target
// expression if the block ends in a (possibly indirect) Boring or Call
// jump to a non-constant target, or nil otherwise.
func IsIndirectJumpBlock(block *ir.Block) ir.Expr {
	if block.Jumpkind != ir.Boring && block.Jumpkind != ir.Call {
		return nil
	}
	if _, isConst := block.Next.(ir.Const); isConst {
		return nil
	}
	return block.Next
}

// IsIndirectJumpStmt returns an Exit statement's destination expression
// if it is a (possibly conditional) indirect jump, or nil otherwise.
func IsIndirectJumpStmt(stmt ir.Stmt) ir.Expr {
	exit, ok := stmt.(ir.Exit)
	if !ok {
		return nil
	}
	if exit.Jumpkind != ir.Boring && exit.Jumpkind != ir.Call {
		return nil
	}
	if _, isConst := exit.Dst.(ir.Const); isConst {
		return nil
	}
	return exit.Dst
}
