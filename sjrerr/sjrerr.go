// Package sjrerr defines the two classes of error the analysis can
// raise (spec.md §7): programming errors, which are typed, fail fast,
// and are never silently recovered from; and lift gaps, which are
// diagnostic, treated as "this variable set is empty," and only escalate
// to a hard failure when FailFast is set.
package sjrerr

import "errors"

// Programming errors: invariant violations that indicate a bug in the
// driver or engine itself, never expected in normal operation.
var (
	// ErrWrongStateKind names a state value of the wrong concrete type for
	// the node being processed (engine.py's `_process` TypeError check).
	// Nothing in this module returns it: the driver's per-node state is
	// statically typed as *liveset.LiveVars.
	ErrWrongStateKind = errors.New("sjrerr: state is not a *liveset.LiveVars")

	// ErrUnknownDummyKind is returned when a supergraph node claims to be
	// a dummy node but has a kind other than DummyCall/DummyRet.
	ErrUnknownDummyKind = errors.New("sjrerr: supergraph node has an unrecognized dummy kind")

	// ErrMissingCallRecord names a CallRecord pop attempted on an empty
	// context. The driver does not return it: at a call edge, popAtCall
	// passes a qualified live set with an empty context through unchanged.
	ErrMissingCallRecord = errors.New("sjrerr: call string is empty at a return boundary")

	// ErrUnmatchedCall names a qualified live set whose top CallRecord
	// does not match the call site being crossed. The driver does not
	// return it: at a call edge, popAtCall drops such a set, so it only
	// reaches the call site that pushed its record.
	ErrUnmatchedCall = errors.New("sjrerr: call record does not match the call site being crossed")
)

// ErrUnsupportedConstruct represents a lift gap: an IR statement or
// expression variant the transfer function does not implement. Per §7,
// the engine's caller treats the affected variable set as empty and
// continues, logging a warning each time, unless FailFast is set.
var ErrUnsupportedConstruct = errors.New("sjrerr: unsupported IR construct")
