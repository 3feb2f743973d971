package callctx

import "hash/fnv"

// callStringNode is a cons cell of a persistent call-record stack: pushing
// shares the previous cell instead of copying it, giving Push/Pop O(1)
// time and O(1) extra space (spec.md §9: "implement as pure functions
// returning new call strings ... structural sharing ... keeps push/pop
// O(1)").
type callStringNode struct {
	rec  CallRecord
	prev *callStringNode
}

// CallString is a full calling context: an ordered stack of CallRecords,
// bottom (oldest call) first.
type CallString struct {
	top *callStringNode
	len int
}

// Push returns a new CallString with r as its new top record. The
// receiver is left unmodified; this and the original can both still be
// used (they share the unchanged tail).
func (cs CallString) Push(r CallRecord) CallString {
	return CallString{top: &callStringNode{rec: r, prev: cs.top}, len: cs.len + 1}
}

// Pop returns a new CallString with the top record removed, along with
// the record that was removed. Pop on an empty CallString returns the
// receiver unchanged and the zero CallRecord.
func (cs CallString) Pop() (CallString, CallRecord) {
	if cs.top == nil {
		return cs, CallRecord{}
	}
	return CallString{top: cs.top.prev, len: cs.len - 1}, cs.top.rec
}

// Top returns the most recent call record, or false if the CallString is
// empty.
func (cs CallString) Top() (CallRecord, bool) {
	if cs.top == nil {
		return CallRecord{}, false
	}
	return cs.top.rec, true
}

// Len returns the number of records in the CallString.
func (cs CallString) Len() int { return cs.len }

// Records returns the CallString's records, bottom (oldest) first.
func (cs CallString) Records() []CallRecord {
	out := make([]CallRecord, cs.len)
	n := cs.top
	for i := cs.len - 1; i >= 0; i-- {
		out[i] = n.rec
		n = n.prev
	}
	return out
}

// Equal reports structural equality: same length, and equal records at
// every position.
func (cs CallString) Equal(other CallString) bool {
	if cs.len != other.len {
		return false
	}
	a, b := cs.top, other.top
	for a != nil {
		if !a.rec.Equal(b.rec) {
			return false
		}
		a, b = a.prev, b.prev
	}
	return true
}

// Compare implements the total lexicographic order of spec.md §3: the
// primary key is length (shorter < longer), ties broken by per-position
// call-site address (bottom to top). It returns a negative number, zero,
// or a positive number as cs is less than, equal to, or greater than
// other.
//
// The Python original's CallString.__lt__ and __le__ disagree on which
// key is primary; this follows spec.md's prose, which matches __le__
// (see DESIGN.md).
func (cs CallString) Compare(other CallString) int {
	if cs.len != other.len {
		if cs.len < other.len {
			return -1
		}
		return 1
	}
	a, b := cs.Records(), other.Records()
	for i := range a {
		if a[i].CallAddr < b[i].CallAddr {
			return -1
		}
		if a[i].CallAddr > b[i].CallAddr {
			return 1
		}
	}
	return 0
}

func (cs CallString) Less(other CallString) bool { return cs.Compare(other) < 0 }

// CanRepresent reports whether cs can stand in as the representative of
// other: cs must be a prefix of other's records (spec.md §3, §4.2).
func (cs CallString) CanRepresent(other CallString) bool {
	if other.len < cs.len {
		return false
	}
	a := cs.Records()
	b := other.Records()
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Hash computes a hash consistent with Equal.
func (cs CallString) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte("CallString"))
	for _, r := range cs.Records() {
		var buf [8]byte
		rh := r.Hash()
		for i := range buf {
			buf[i] = byte(rh >> (8 * i))
		}
		h.Write(buf[:])
	}
	return h.Sum64()
}

func (cs CallString) String() string {
	recs := cs.Records()
	prefix := ""
	if len(recs) > 3 {
		prefix = "..., "
		recs = recs[len(recs)-3:]
	}
	s := "<CallString [" + prefix
	for i, r := range recs {
		if i > 0 {
			s += ", "
		}
		s += r.String()
	}
	return s + "]>"
}
