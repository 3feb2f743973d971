// Package liveset implements the per-node analysis state: sets of
// variable uses qualified by calling context (spec.md §3 "Qualified live
// set", §4.2 "Per-node state").
package liveset

import (
	"fmt"
	"hash/fnv"

	"github.com/wuggen/static-jump-resolution/vars"
)

// CodeLoc identifies a program point: a block address and a statement
// index within it.
type CodeLoc struct {
	BlockAddr uint64
	StmtIdx   int
}

// VarUse is a use of a variable at a particular program point.
type VarUse struct {
	Var     vars.Var
	CodeLoc CodeLoc
}

func (u VarUse) Equal(other VarUse) bool {
	return u.CodeLoc == other.CodeLoc && u.Var.Equal(other.Var)
}

func (u VarUse) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "VarUse:%d:%d:%d", u.CodeLoc.BlockAddr, u.CodeLoc.StmtIdx, u.Var.Hash())
	return h.Sum64()
}

func (u VarUse) String() string {
	return fmt.Sprintf("<Use of %s at %+v>", u.Var, u.CodeLoc)
}
