// Package callctx implements the calling-context model used to make the
// analysis context-sensitive across call and return boundaries (spec.md
// §3 "Context model", §4.2, §4.5).
package callctx

import (
	"fmt"
	"hash/fnv"

	"github.com/wuggen/static-jump-resolution/supergraph"
)

// CallRecord is one call site's contribution to a calling context: the
// dummy call node it was pushed at, and the frame-space stack/base
// pointer values of the caller at the moment the call was entered.
//
// Equality and hashing include SP and BP, not just the call node: two
// records that name the same call site but were pushed with different
// stack-pointer snapshots must compare unequal (spec.md §3; see
// DESIGN.md for why this is authoritative over the Python original's
// narrower CtxRecord.__eq__, which ignores sp/bp).
type CallRecord struct {
	Node supergraph.NodeID
	// CallAddr is the address of the call instruction associated with
	// this record, denormalized at construction time from Node's parent
	// block (context.py's CtxRecord.call_addr property).
	CallAddr uint64
	SP       int64
	BP       *int64
}

func (r CallRecord) Equal(o CallRecord) bool {
	if r.Node != o.Node || r.SP != o.SP {
		return false
	}
	if (r.BP == nil) != (o.BP == nil) {
		return false
	}
	return r.BP == nil || *r.BP == *o.BP
}

func (r CallRecord) Hash() uint64 {
	h := fnv.New64a()
	bp := int64(0)
	hasBP := 0
	if r.BP != nil {
		bp = *r.BP
		hasBP = 1
	}
	fmt.Fprintf(h, "CallRecord:%d:%d:%d:%d", r.Node, r.SP, hasBP, bp)
	return h.Sum64()
}

func (r CallRecord) String() string {
	if r.BP == nil {
		return fmt.Sprintf("<CallRecord 0x%x (sp=%d, bp=?)>", r.CallAddr, r.SP)
	}
	return fmt.Sprintf("<CallRecord 0x%x (sp=%d, bp=%d)>", r.CallAddr, r.SP, *r.BP)
}
