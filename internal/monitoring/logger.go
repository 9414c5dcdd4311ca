// Package monitoring holds cross-cutting diagnostic plumbing shared by every
// pipeline stage.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger, e.g. to capture or silence the normalizer's
// per-record drop messages and the orchestrator's slow-subscriber drops.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
