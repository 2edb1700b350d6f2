package testutil

import (
	"sync"
	"time"
)

// ManualFrames is a FrameScheduler driven by explicit Frame calls instead
// of a ticker. Each Frame advances the shared fake clock and delivers one
// tick, so a test controls exactly how much playback time elapses.
type ManualFrames struct {
	mu      sync.Mutex
	clock   *FakeClock
	tick    func(now time.Time)
	running bool
}

// NewManualFrames creates a manual scheduler over the given clock.
func NewManualFrames(clock *FakeClock) *ManualFrames {
	return &ManualFrames{clock: clock}
}

// Start records the tick callback. Idempotent while running.
func (m *ManualFrames) Start(tick func(now time.Time)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.tick = tick
	m.running = true
}

// Stop halts frame delivery. Safe to call repeatedly.
func (m *ManualFrames) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.running = false
	m.tick = nil
}

// Running reports whether the scheduler has been started and not stopped.
func (m *ManualFrames) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Frame advances the clock by elapsed and delivers one tick. Frames while
// stopped still advance the clock (wall time passes whether or not the
// engine is playing) but deliver nothing.
func (m *ManualFrames) Frame(elapsed time.Duration) {
	now := m.clock.Advance(elapsed)

	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()

	if tick != nil {
		tick(now)
	}
}
