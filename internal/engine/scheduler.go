package engine

import (
	"sync"
	"time"
)

// FrameScheduler drives the engine's tick loop. Start begins delivering
// frames to the callback; Stop halts delivery. Both must be idempotent.
//
// Implemented by TickerScheduler (production) and testutil.ManualFrames
// (deterministic tests and the simulate command).
type FrameScheduler interface {
	Start(tick func(now time.Time))
	Stop()
}

// DefaultFrameRate is the tick rate used when none is configured.
const DefaultFrameRate = 60

// TickerScheduler delivers frames from a time.Ticker on its own goroutine,
// yielding between frames rather than busy-waiting.
type TickerScheduler struct {
	mu       sync.Mutex
	interval time.Duration
	stop     chan struct{}
}

// NewTickerScheduler creates a scheduler targeting the given frames per
// second. Non-positive fps falls back to DefaultFrameRate.
func NewTickerScheduler(fps int) *TickerScheduler {
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	return &TickerScheduler{
		interval: time.Second / time.Duration(fps),
	}
}

// Start begins frame delivery. Calling Start while running is a no-op.
func (s *TickerScheduler) Start(tick func(now time.Time)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return
	}
	stop := make(chan struct{})
	s.stop = stop

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				tick(now)
			}
		}
	}()
}

// Stop halts frame delivery. Safe to call repeatedly.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return
	}
	close(s.stop)
	s.stop = nil
}
