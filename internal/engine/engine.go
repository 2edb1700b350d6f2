package engine

import (
	"log/slog"
	"math"
	"sync"
	"time"
)

// PlaybackState is the engine's authoritative playback snapshot.
//
// Owned exclusively by one Engine instance: created on construction,
// mutated only through engine methods, observed via listeners.
type PlaybackState struct {
	CurrentTime  float64
	Duration     float64
	IsPlaying    bool
	PlaybackRate float64
	Loop         bool
}

// StoreWriters are the external store's field mirrors, invoked on every
// internal state change for the field that changed. Nil writers are skipped.
type StoreWriters struct {
	SetCurrentTime func(float64)
	SetIsPlaying   func(bool)
	SetDuration    func(float64)
}

const (
	// DefaultMaxFrameDelta absorbs large gaps between frames, e.g. after
	// host suspension. A frame can never advance time by more than this.
	DefaultMaxFrameDelta = 250 * time.Millisecond

	// DefaultStepFPS backs StepForward/StepBackward when the caller passes
	// a non-positive frame rate.
	DefaultStepFPS = 30.0
)

// Engine is the playback clock state machine.
//
// All mutations go through engine methods under a single mutex; listeners
// and store writers are invoked outside the lock with a state snapshot, so
// a subscriber can call back into the engine without deadlocking.
type Engine struct {
	mu            sync.Mutex
	state         PlaybackState
	scheduler     FrameScheduler
	now           func() time.Time
	lastFrame     time.Time
	maxFrameDelta time.Duration
	listeners     []func(PlaybackState)
	store         StoreWriters
	disposed      bool
}

// Option configures engine construction.
type Option func(*Engine)

// WithScheduler replaces the default ticker scheduler. Used by tests and
// the simulate command to drive frames manually.
func WithScheduler(s FrameScheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithClock replaces the wall-clock source. Used with a fake clock for
// deterministic tick tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithMaxFrameDelta overrides the per-frame elapsed-time clamp.
func WithMaxFrameDelta(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maxFrameDelta = d
		}
	}
}

// New creates a paused engine with the given duration (clamped to >= 0),
// rate 1.0 and currentTime 0.
func New(duration float64, opts ...Option) *Engine {
	if !isFinite(duration) || duration < 0 {
		duration = 0
	}
	e := &Engine{
		state: PlaybackState{
			Duration:     duration,
			PlaybackRate: 1.0,
		},
		now:           time.Now,
		maxFrameDelta: DefaultMaxFrameDelta,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.scheduler == nil {
		e.scheduler = NewTickerScheduler(DefaultFrameRate)
	}
	return e
}

// State returns a snapshot of the current playback state.
func (e *Engine) State() PlaybackState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Play starts the frame scheduler. Idempotent: playing while playing is a
// no-op, as is playing a disposed engine.
func (e *Engine) Play() {
	e.mu.Lock()
	if e.disposed || e.state.IsPlaying {
		e.mu.Unlock()
		return
	}
	prev := e.state
	e.state.IsPlaying = true
	e.lastFrame = e.now()
	cur, listeners, store := e.state, e.snapshotListeners(), e.store
	e.mu.Unlock()

	e.scheduler.Start(e.tick)
	e.publish(prev, cur, listeners, store)
}

// Pause stops the frame scheduler. Idempotent.
func (e *Engine) Pause() {
	e.mu.Lock()
	if e.disposed || !e.state.IsPlaying {
		e.mu.Unlock()
		return
	}
	prev := e.state
	e.state.IsPlaying = false
	cur, listeners, store := e.state, e.snapshotListeners(), e.store
	e.mu.Unlock()

	e.scheduler.Stop()
	e.publish(prev, cur, listeners, store)
}

// TogglePlayback plays when paused and pauses when playing.
func (e *Engine) TogglePlayback() {
	if e.State().IsPlaying {
		e.Pause()
	} else {
		e.Play()
	}
}

// Seek moves currentTime to t, clamped to [0, duration]. Non-finite input
// is rejected and the previous position retained.
func (e *Engine) Seek(t float64) {
	if !isFinite(t) {
		slog.Debug("seek rejected: non-finite time", "time", t)
		return
	}
	e.mutate(func(s *PlaybackState) {
		s.CurrentTime = clamp(t, 0, s.Duration)
	})
}

// SeekForward seeks ahead by amount seconds, with Seek's clamp rules.
func (e *Engine) SeekForward(amount float64) {
	if !isFinite(amount) {
		slog.Debug("seek forward rejected: non-finite amount", "amount", amount)
		return
	}
	e.Seek(e.State().CurrentTime + amount)
}

// SeekBackward seeks back by amount seconds, with Seek's clamp rules.
func (e *Engine) SeekBackward(amount float64) {
	if !isFinite(amount) {
		slog.Debug("seek backward rejected: non-finite amount", "amount", amount)
		return
	}
	e.Seek(e.State().CurrentTime - amount)
}

// GoToStart seeks to 0.
func (e *Engine) GoToStart() {
	e.Seek(0)
}

// GoToEnd seeks to the duration.
func (e *Engine) GoToEnd() {
	e.Seek(e.State().Duration)
}

// StepForward advances by one frame at the given frame rate. Non-positive
// or non-finite fps falls back to DefaultStepFPS.
func (e *Engine) StepForward(fps float64) {
	e.SeekForward(1 / stepFPS(fps))
}

// StepBackward rewinds by one frame at the given frame rate.
func (e *Engine) StepBackward(fps float64) {
	e.SeekBackward(1 / stepFPS(fps))
}

// SetPlaybackRate updates the rate. Non-finite or non-positive rates are
// rejected and the previous rate retained.
func (e *Engine) SetPlaybackRate(rate float64) {
	if !isFinite(rate) || rate <= 0 {
		slog.Debug("playback rate rejected", "rate", rate)
		return
	}
	e.mutate(func(s *PlaybackState) {
		s.PlaybackRate = rate
	})
}

// SetLoop sets whether playback wraps at the duration.
func (e *Engine) SetLoop(loop bool) {
	e.mutate(func(s *PlaybackState) {
		s.Loop = loop
	})
}

// ToggleLoop flips the loop flag.
func (e *Engine) ToggleLoop() {
	e.mutate(func(s *PlaybackState) {
		s.Loop = !s.Loop
	})
}

// SetDuration updates the timeline duration. Negative or non-finite input
// is rejected; currentTime is clamped down if it now exceeds the duration.
func (e *Engine) SetDuration(d float64) {
	if !isFinite(d) || d < 0 {
		slog.Debug("duration rejected", "duration", d)
		return
	}
	e.mutate(func(s *PlaybackState) {
		s.Duration = d
		if s.CurrentTime > d {
			s.CurrentTime = d
		}
	})
}

// SyncWithStore registers external mirrors invoked on every internal state
// change. A second call replaces the previous writers.
func (e *Engine) SyncWithStore(writers StoreWriters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed {
		return
	}
	e.store = writers
}

// OnChange registers a listener invoked with a state snapshot after every
// mutation. The returned function unregisters it; Dispose detaches all.
func (e *Engine) OnChange(listener func(PlaybackState)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.disposed || listener == nil {
		return func() {}
	}
	e.listeners = append(e.listeners, listener)
	idx := len(e.listeners) - 1
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if idx < len(e.listeners) {
			e.listeners[idx] = nil
		}
	}
}

// Dispose stops the scheduler and detaches all listeners and store
// writers. Safe to call repeatedly; every method on a disposed engine is
// a no-op.
func (e *Engine) Dispose() {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	e.disposed = true
	e.state.IsPlaying = false
	e.listeners = nil
	e.store = StoreWriters{}
	e.mu.Unlock()

	e.scheduler.Stop()
	slog.Debug("engine disposed")
}

// tick advances playback by the elapsed wall time since the previous
// frame, scaled by the playback rate. Runs once per scheduler frame.
func (e *Engine) tick(now time.Time) {
	e.mu.Lock()
	if e.disposed || !e.state.IsPlaying {
		e.mu.Unlock()
		return
	}

	dt := now.Sub(e.lastFrame)
	if dt < 0 {
		dt = 0
	}
	if dt > e.maxFrameDelta {
		dt = e.maxFrameDelta
	}
	e.lastFrame = now

	prev := e.state
	newTime := e.state.CurrentTime + dt.Seconds()*e.state.PlaybackRate
	reachedEnd := false
	if newTime >= e.state.Duration {
		if e.state.Loop {
			if e.state.Duration == 0 {
				newTime = 0
			} else {
				newTime = math.Mod(newTime, e.state.Duration)
			}
		} else {
			newTime = e.state.Duration
			e.state.IsPlaying = false
			reachedEnd = true
		}
	}
	e.state.CurrentTime = newTime
	cur, listeners, store := e.state, e.snapshotListeners(), e.store
	e.mu.Unlock()

	if reachedEnd {
		e.scheduler.Stop()
	}
	e.publish(prev, cur, listeners, store)
}

// mutate applies fn to the state under lock and publishes the change.
// No-op on a disposed engine or when fn leaves the state unchanged.
func (e *Engine) mutate(fn func(*PlaybackState)) {
	e.mu.Lock()
	if e.disposed {
		e.mu.Unlock()
		return
	}
	prev := e.state
	fn(&e.state)
	cur, listeners, store := e.state, e.snapshotListeners(), e.store
	e.mu.Unlock()

	if cur == prev {
		return
	}
	e.publish(prev, cur, listeners, store)
}

// snapshotListeners copies the listener slice. Must be called under lock.
func (e *Engine) snapshotListeners() []func(PlaybackState) {
	if len(e.listeners) == 0 {
		return nil
	}
	out := make([]func(PlaybackState), len(e.listeners))
	copy(out, e.listeners)
	return out
}

// publish mirrors changed fields to the store writers, then notifies
// listeners. Every callback is panic-isolated: a failing subscriber is
// logged and never halts the scheduler loop.
func (e *Engine) publish(prev, cur PlaybackState, listeners []func(PlaybackState), store StoreWriters) {
	if cur.CurrentTime != prev.CurrentTime && store.SetCurrentTime != nil {
		safeCall("store.set_current_time", func() { store.SetCurrentTime(cur.CurrentTime) })
	}
	if cur.IsPlaying != prev.IsPlaying && store.SetIsPlaying != nil {
		safeCall("store.set_is_playing", func() { store.SetIsPlaying(cur.IsPlaying) })
	}
	if cur.Duration != prev.Duration && store.SetDuration != nil {
		safeCall("store.set_duration", func() { store.SetDuration(cur.Duration) })
	}
	for _, l := range listeners {
		if l == nil {
			continue
		}
		listener := l
		safeCall("listener", func() { listener(cur) })
	}
}

// safeCall invokes fn, converting a panic into an error log.
func safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("callback panicked", "callback", name, "panic", r)
		}
	}()
	fn()
}

func stepFPS(fps float64) float64 {
	if !isFinite(fps) || fps <= 0 {
		return DefaultStepFPS
	}
	return fps
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
