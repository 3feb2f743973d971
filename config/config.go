// Package config holds the engine options a caller tunes the analysis
// with (spec.md §7, engine.py's `process(..., fail_fast=False)`).
package config

import "github.com/sirupsen/logrus"

// Options configures a single analysis run.
type Options struct {
	// FailFast promotes lift-gap errors (sjrerr.ErrUnsupportedConstruct)
	// from "log and treat as empty" to a hard failure that aborts the
	// run, per spec.md §7.
	FailFast bool

	// LogLevel records the logrus level chosen for the run. The engine and
	// driver do not apply it themselves; they log through the global
	// logrus logger, whose level the sjr command sets from --verbose.
	LogLevel logrus.Level

	// MaxCallStringLen is a soft diagnostic tripwire: if a call string
	// grows past this length, the driver logs a warning that
	// representative contraction does not seem to be converging. It
	// does not itself bound recursion -- representative contraction
	// (spec.md §4.2, §4.3) is what actually guarantees termination.
	// Zero means no warning is ever emitted.
	MaxCallStringLen int
}

// Default returns the default Options.
func Default() Options {
	return Options{FailFast: false, LogLevel: logrus.InfoLevel, MaxCallStringLen: 0}
}
