package testutil

import (
	"sync"
	"time"
)

// ManualClock is a thread-safe clock frozen at a settable instant.
//
// Tests pin it to a known time so event timestamps, session rollover, and
// minutes-active math are reproducible across runs.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock creates a clock frozen at t.
func NewManualClock(t time.Time) *ManualClock {
	return &ManualClock{now: t}
}

// NewManualClockAtMillis creates a clock frozen at a unix epoch millisecond
// instant, the unit the event log stores.
func NewManualClockAtMillis(ms int64) *ManualClock {
	return &ManualClock{now: time.UnixMilli(ms).UTC()}
}

// Now returns the frozen instant.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative durations are allowed for
// tests that need to construct out-of-order timestamps.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set pins the clock to t.
func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
