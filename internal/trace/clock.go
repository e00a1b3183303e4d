// Package trace records engine transitions for offline inspection.
//
// The engine itself has no I/O; tracing hangs off its transition observer.
// A Recorder accumulates ordered events in memory and a Store persists them
// to SQLite for the trace CLI. Neither persists any engine state - a trace
// is diagnostics, not a checkpoint.
package trace

import "sync/atomic"

// Clock is a monotonic logical clock stamping trace events.
//
// Events are ordered by seq, never by wall-clock time: replayed or re-run
// traces compare equal when the transitions and their order are equal.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Reset rewinds the clock to 0 for test reuse.
func (c *Clock) Reset() {
	c.seq.Store(0)
}
