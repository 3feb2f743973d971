package liveset

import "github.com/wuggen/static-jump-resolution/vars"

// UseSet is a set of VarUse. vars.Var implementations may embed an
// ir.Expr (MemoryLocation), which is not Go-comparable, so UseSet cannot
// be backed by a plain map[VarUse]struct{}; instead it is hash-bucketed,
// resolving collisions with VarUse.Equal, mirroring Python's use of
// __eq__/__hash__-based sets over the same values.
type UseSet struct {
	buckets map[uint64][]VarUse
}

// NewUseSet builds a UseSet from the given uses.
func NewUseSet(uses ...VarUse) UseSet {
	s := UseSet{buckets: make(map[uint64][]VarUse)}
	for _, u := range uses {
		s.Add(u)
	}
	return s
}

// Add inserts u into the set if not already present.
func (s *UseSet) Add(u VarUse) {
	if s.buckets == nil {
		s.buckets = make(map[uint64][]VarUse)
	}
	h := u.Hash()
	for _, existing := range s.buckets[h] {
		if existing.Equal(u) {
			return
		}
	}
	s.buckets[h] = append(s.buckets[h], u)
}

// RemoveVars deletes every use of any variable in vs from the set
// (QualifiedLiveSet.kill_vars).
func (s *UseSet) RemoveVars(vs []vars.Var) {
	for h, bucket := range s.buckets {
		var kept []VarUse
		for _, u := range bucket {
			killed := false
			for _, v := range vs {
				if v.Equal(u.Var) {
					killed = true
					break
				}
			}
			if !killed {
				kept = append(kept, u)
			}
		}
		if len(kept) == 0 {
			delete(s.buckets, h)
		} else {
			s.buckets[h] = kept
		}
	}
}

// Len returns the number of uses in the set.
func (s UseSet) Len() int {
	n := 0
	for _, b := range s.buckets {
		n += len(b)
	}
	return n
}

// Slice returns every use in the set, in no particular order.
func (s UseSet) Slice() []VarUse {
	out := make([]VarUse, 0, s.Len())
	for _, b := range s.buckets {
		out = append(out, b...)
	}
	return out
}

// Contains reports whether u is in the set.
func (s UseSet) Contains(u VarUse) bool {
	for _, existing := range s.buckets[u.Hash()] {
		if existing.Equal(u) {
			return true
		}
	}
	return false
}

// Equal reports whether two UseSets contain the same uses.
func (s UseSet) Equal(other UseSet) bool {
	if s.Len() != other.Len() {
		return false
	}
	for _, u := range s.Slice() {
		if !other.Contains(u) {
			return false
		}
	}
	return true
}

// Union returns a new UseSet containing every use in either set.
func (s UseSet) Union(other UseSet) UseSet {
	out := NewUseSet(s.Slice()...)
	for _, u := range other.Slice() {
		out.Add(u)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s UseSet) Clone() UseSet {
	return NewUseSet(s.Slice()...)
}

// AnyVarIn reports whether any use in the set has a variable equal to
// one of vs.
func (s UseSet) AnyVarIn(vs []vars.Var) bool {
	for _, u := range s.Slice() {
		for _, v := range vs {
			if u.Var.Equal(v) {
				return true
			}
		}
	}
	return false
}
