// Package testutil provides deterministic time sources for tests and the
// simulate command: a fake wall clock and a manually driven frame
// scheduler, replacing the real ticker so playback advances exactly as
// scripted.
package testutil

import (
	"sync"
	"time"
)

// FakeClock is a controllable wall clock.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock at a fixed, arbitrary epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{
		now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
