package liveset

import (
	"fmt"

	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/vars"
)

// QualifiedLiveSet is a set of variable uses qualified by the calling
// context under which they were found live.
type QualifiedLiveSet struct {
	Ctx  callctx.CallString
	Uses UseSet
}

// NewQualifiedLiveSet builds a QualifiedLiveSet with an empty use set
// under the given context.
func NewQualifiedLiveSet(ctx callctx.CallString) QualifiedLiveSet {
	return QualifiedLiveSet{Ctx: ctx, Uses: NewUseSet()}
}

// CanRepresent reports whether this QualifiedLiveSet can stand in as the
// representative of other: their use sets must be equal, and this one's
// context must be a prefix of other's (spec.md §4.2).
func (q QualifiedLiveSet) CanRepresent(other QualifiedLiveSet) bool {
	return q.Uses.Equal(other.Uses) && q.Ctx.CanRepresent(other.Ctx)
}

// GenUses adds uses to the live set.
func (q *QualifiedLiveSet) GenUses(uses ...VarUse) {
	for _, u := range uses {
		q.Uses.Add(u)
	}
}

// KillVars removes all uses of the given variables from the live set.
func (q *QualifiedLiveSet) KillVars(vs ...vars.Var) {
	q.Uses.RemoveVars(vs)
}

// Clone returns an independent copy.
func (q QualifiedLiveSet) Clone() QualifiedLiveSet {
	return QualifiedLiveSet{Ctx: q.Ctx, Uses: q.Uses.Clone()}
}

func (q QualifiedLiveSet) Equal(other QualifiedLiveSet) bool {
	return q.Uses.Equal(other.Uses) && q.Ctx.Equal(other.Ctx)
}

func (q QualifiedLiveSet) String() string {
	return fmt.Sprintf("<QualifiedUse %s %v>", q.Ctx, q.Uses.Slice())
}
