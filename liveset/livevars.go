package liveset

import (
	"fmt"

	"github.com/wuggen/static-jump-resolution/arch"
	"github.com/wuggen/static-jump-resolution/callctx"
	"github.com/wuggen/static-jump-resolution/vars"
)

// LiveVars is the per-node state of the interprocedural live-variables
// analysis: the guest architecture, the function this node belongs to,
// the current frame-space stack/base pointer values, and the set of
// qualified live sets computed so far (spec.md §3, §4.2).
//
// By default a LiveVars is initialized with a single empty set of
// variable uses qualified by an empty call string (one of §8's boundary
// properties).
type LiveVars struct {
	Arch   arch.Arch
	FnAddr uint64
	SP     int64
	BP     *int64

	// byUsesHash indexes qualified live sets by their use set's hash, to
	// make Representative/RepresentedBy lookups proportional to the
	// number of qualified live sets sharing the same uses rather than to
	// the whole state (spec.md §9: "an index from uses-hash to sorted
	// list of contexts"). This is a plain map, not an LRU: evicting an
	// entry here would unsound the representative contraction, unlike
	// the engine's per-block tmp cache (see DESIGN.md).
	byUsesHash map[uint64][]*QualifiedLiveSet
}

// NewLiveVars builds the initial LiveVars for a node of the given
// function: one qualified live set, empty uses, empty call string.
func NewLiveVars(a arch.Arch, fnAddr uint64) *LiveVars {
	lv := &LiveVars{Arch: a, FnAddr: fnAddr, SP: 0, byUsesHash: make(map[uint64][]*QualifiedLiveSet)}
	ls := NewQualifiedLiveSet(callctx.CallString{})
	lv.insert(ls)
	return lv
}

// FromQualifiedLiveSets builds a LiveVars holding exactly the given
// qualified live sets, with no further contraction applied beyond what
// insert naturally gives a single bucket (used by the fixpoint driver to
// wrap one transformed qualified live set back into a LiveVars before
// folding it into a running Union).
func FromQualifiedLiveSets(a arch.Arch, fnAddr uint64, sp int64, bp *int64, sets ...QualifiedLiveSet) *LiveVars {
	lv := &LiveVars{Arch: a, FnAddr: fnAddr, SP: sp, BP: bp, byUsesHash: make(map[uint64][]*QualifiedLiveSet)}
	for _, ls := range sets {
		lv.insert(ls)
	}
	return lv
}

// Empty builds a LiveVars with no qualified live sets at all (the bottom
// element for Union, distinct from NewLiveVars's single empty-use
// baseline set).
func Empty(a arch.Arch, fnAddr uint64, sp int64, bp *int64) *LiveVars {
	return &LiveVars{Arch: a, FnAddr: fnAddr, SP: sp, BP: bp, byUsesHash: make(map[uint64][]*QualifiedLiveSet)}
}

func (lv *LiveVars) usesHash(uses UseSet) uint64 {
	h := uint64(1469598103934665603) // fnv offset basis, combined order-independently below
	for _, u := range uses.Slice() {
		h ^= u.Hash()
	}
	return h
}

func (lv *LiveVars) insert(ls QualifiedLiveSet) {
	h := lv.usesHash(ls.Uses)
	cp := ls
	lv.byUsesHash[h] = append(lv.byUsesHash[h], &cp)
}

// Sets returns every qualified live set in this LiveVars.
func (lv *LiveVars) Sets() []*QualifiedLiveSet {
	var out []*QualifiedLiveSet
	for _, bucket := range lv.byUsesHash {
		out = append(out, bucket...)
	}
	return out
}

// UnqualifiedUses aggregates every variable use in every context into a
// single set, discarding contexts.
func (lv *LiveVars) UnqualifiedUses() UseSet {
	out := NewUseSet()
	for _, ls := range lv.Sets() {
		out = out.Union(ls.Uses)
	}
	return out
}

// UsesOfVar returns every use of v in this LiveVars, across all contexts.
func (lv *LiveVars) UsesOfVar(v vars.Var) []VarUse {
	var out []VarUse
	for _, u := range lv.UnqualifiedUses().Slice() {
		if u.Var.Equal(v) {
			out = append(out, u)
		}
	}
	return out
}

// Representative returns the qualified live set in this LiveVars that is
// the lexicographically-least-context representative of liveset (i.e.
// the shortest stored context whose use set matches and whose context is
// a prefix of liveset's), or nil if none exists.
func (lv *LiveVars) Representative(liveset QualifiedLiveSet) *QualifiedLiveSet {
	h := lv.usesHash(liveset.Uses)
	var best *QualifiedLiveSet
	for _, ls := range lv.byUsesHash[h] {
		if !ls.CanRepresent(liveset) {
			continue
		}
		if best == nil || ls.Ctx.Less(best.Ctx) {
			best = ls
		}
	}
	return best
}

// RepresentedBy returns every qualified live set in this LiveVars whose
// context is represented by liveset's (i.e. liveset.Ctx is a prefix of
// theirs), re-tagged with liveset's use set. Used to expand a contracted
// representative context back into the concrete contexts it stands for
// at a return site (spec.md §4.2, §9).
func (lv *LiveVars) RepresentedBy(liveset QualifiedLiveSet) []QualifiedLiveSet {
	var out []QualifiedLiveSet
	for _, ls := range lv.Sets() {
		if liveset.Ctx.CanRepresent(ls.Ctx) {
			out = append(out, QualifiedLiveSet{Ctx: ls.Ctx, Uses: liveset.Uses.Clone()})
		}
	}
	return out
}

// ExecutionCtx wraps this LiveVars's function address and frame pointers
// in an ExecutionCtx, qualified by the given calling context.
func (lv *LiveVars) ExecutionCtx(cs callctx.CallString) callctx.ExecutionCtx {
	return callctx.ExecutionCtx{FnAddr: lv.FnAddr, SP: lv.SP, BP: lv.BP, CallString: cs}
}

// Copy returns a deep-enough copy of this LiveVars suitable for the
// fixpoint driver to mutate in place without affecting the original
// (static_jump_resolution.py's `state = state.copy()` pattern: the
// mutation-in-place engine style is preserved from the original rather
// than rewritten as purely functional).
func (lv *LiveVars) Copy() *LiveVars {
	cp := &LiveVars{Arch: lv.Arch, FnAddr: lv.FnAddr, SP: lv.SP, BP: lv.BP, byUsesHash: make(map[uint64][]*QualifiedLiveSet)}
	for _, ls := range lv.Sets() {
		cp.insert(ls.Clone())
	}
	return cp
}

// Equal reports whether two LiveVars contain the same set of qualified
// live sets, regardless of order (used by the fixpoint driver to detect
// convergence).
func (lv *LiveVars) Equal(other *LiveVars) bool {
	mine := lv.Sets()
	theirs := other.Sets()
	if len(mine) != len(theirs) {
		return false
	}
	for _, a := range mine {
		found := false
		for _, b := range theirs {
			if a.Equal(*b) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Union merges other into a new LiveVars, unioning qualified live sets
// subject to representative contraction: a qualified live set already
// represented by an existing one (same uses, prefix context) is dropped
// rather than added again, keeping the number of distinct contexts
// tracked for a given use set bounded (spec.md §4.2, §8 invariant 2).
// sp/bp on the result are taken from lv (merging is only ever performed
// over states belonging to the same node).
func (lv *LiveVars) Union(other *LiveVars) *LiveVars {
	out := &LiveVars{Arch: lv.Arch, FnAddr: lv.FnAddr, SP: lv.SP, BP: lv.BP, byUsesHash: make(map[uint64][]*QualifiedLiveSet)}
	for _, ls := range lv.Sets() {
		out.mergeIn(*ls)
	}
	for _, ls := range other.Sets() {
		out.mergeIn(*ls)
	}
	return out
}

// mergeIn adds ls to out unless an existing qualified live set already
// represents it, and removes any existing qualified live sets that ls
// newly represents (ls's context may be shorter and thus subsume them).
func (lv *LiveVars) mergeIn(ls QualifiedLiveSet) {
	h := lv.usesHash(ls.Uses)
	bucket := lv.byUsesHash[h]

	for _, existing := range bucket {
		if existing.CanRepresent(ls) {
			return
		}
	}

	kept := bucket[:0]
	for _, existing := range bucket {
		if ls.CanRepresent(*existing) {
			continue
		}
		kept = append(kept, existing)
	}
	cp := ls
	kept = append(kept, &cp)
	lv.byUsesHash[h] = kept
}

func (lv *LiveVars) String() string {
	return fmt.Sprintf("LiveVars(%v)", lv.Sets())
}
