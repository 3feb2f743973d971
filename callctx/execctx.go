package callctx

import "fmt"

// ExecutionCtx is a snapshot of the currently executing function, its
// current frame-space stack/base pointer values, and the calling context
// that brought control here (spec.md §3).
type ExecutionCtx struct {
	FnAddr     uint64
	SP         int64
	BP         *int64
	CallString CallString
}

func (e ExecutionCtx) Equal(other ExecutionCtx) bool {
	if e.FnAddr != other.FnAddr || e.SP != other.SP {
		return false
	}
	if (e.BP == nil) != (other.BP == nil) {
		return false
	}
	if e.BP != nil && *e.BP != *other.BP {
		return false
	}
	return e.CallString.Equal(other.CallString)
}

func (e ExecutionCtx) String() string {
	bp := "?"
	if e.BP != nil {
		bp = fmt.Sprintf("%d", *e.BP)
	}
	return fmt.Sprintf("<ExecutionCtx [%d] 0x%x sp=%d bp=%s>", e.CallString.Len(), e.FnAddr, e.SP, bp)
}
