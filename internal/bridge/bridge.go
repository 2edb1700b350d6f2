// Package bridge keeps a playback engine and an externally-owned reactive
// store mutually consistent without feedback loops.
//
// Engine -> store: every engine mutation is mirrored into the store, gated
// by an epsilon comparison so a value the store already holds is never
// rewritten. Each real push records a wall-clock timestamp.
//
// Store -> engine: store change notifications are applied back through the
// engine's own methods. A notification explicitly tagged as
// engine-originated is always skipped; an untagged notification landing
// inside a short grace window after the bridge's own last push is treated
// as the echo of that push and skipped too. There is no locking across the
// two state holders, only eventual best-effort convergence.
//
// All values crossing the bridge are validated for finiteness in both
// directions; non-finite values are dropped and logged, never propagated.
package bridge

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/splicekit/splicekit/internal/engine"
)

// Origin tags who caused a store mutation. Stores that cannot attribute
// their mutations use OriginUntagged and rely on the grace window.
type Origin int

const (
	OriginUntagged Origin = iota
	OriginEngine
	OriginExternal
)

// State is the store-side view of playback.
type State struct {
	CurrentTime  float64
	Duration     float64
	IsPlaying    bool
	PlaybackRate float64
	Loop         bool
}

// Notification signals that the store changed.
type Notification struct {
	Origin Origin
}

// Store is the external state holder being mirrored. Subscribe returns an
// unsubscribe function; notifications may fire synchronously from setters.
type Store interface {
	State() State
	SetCurrentTime(t float64)
	SetIsPlaying(playing bool)
	SetDuration(d float64)
	Subscribe(listener func(Notification)) (unsubscribe func())
}

const (
	// DefaultEpsilon is the float equivalence tolerance for times and rates.
	DefaultEpsilon = 1e-6

	// DefaultGraceWindow is how long after an engine push an untagged store
	// notification is still attributed to that push.
	DefaultGraceWindow = 50 * time.Millisecond
)

// Bridge is one live engine<->store subscription.
type Bridge struct {
	mu       sync.Mutex
	engine   *engine.Engine
	store    Store
	now      func() time.Time
	epsilon  float64
	grace    time.Duration
	lastPush time.Time
	hasPush  bool
	applying bool
	disposed bool
	unsub    func()
}

// Option configures bridge construction.
type Option func(*Bridge)

// WithEpsilon overrides the float equivalence tolerance.
func WithEpsilon(eps float64) Option {
	return func(b *Bridge) {
		if eps > 0 {
			b.epsilon = eps
		}
	}
}

// WithGraceWindow overrides the engine-echo attribution window.
func WithGraceWindow(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.grace = d
		}
	}
}

// WithClock replaces the wall-clock source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bridge) { b.now = now }
}

// New wires the engine's store mirrors and subscribes to store changes.
// The bridge is live until Dispose.
func New(eng *engine.Engine, store Store, opts ...Option) *Bridge {
	b := &Bridge{
		engine:  eng,
		store:   store,
		now:     time.Now,
		epsilon: DefaultEpsilon,
		grace:   DefaultGraceWindow,
	}
	for _, opt := range opts {
		opt(b)
	}

	eng.SyncWithStore(engine.StoreWriters{
		SetCurrentTime: b.pushCurrentTime,
		SetIsPlaying:   b.pushIsPlaying,
		SetDuration:    b.pushDuration,
	})
	b.unsub = store.Subscribe(b.onStoreChange)
	return b
}

// Dispose stops all cross-propagation immediately. Idempotent.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	if b.disposed {
		b.mu.Unlock()
		return
	}
	b.disposed = true
	unsub := b.unsub
	b.unsub = nil
	b.mu.Unlock()

	b.engine.SyncWithStore(engine.StoreWriters{})
	if unsub != nil {
		unsub()
	}
	slog.Debug("bridge disposed")
}

// LastPushAt returns the timestamp of the bridge's most recent store write
// and whether any write has happened. Used by tests and diagnostics.
func (b *Bridge) LastPushAt() (time.Time, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastPush, b.hasPush
}

// pushCurrentTime mirrors an engine time change into the store.
func (b *Bridge) pushCurrentTime(t float64) {
	if !finite(t) {
		slog.Warn("dropping non-finite current time from engine", "time", t)
		return
	}
	if b.closed() {
		return
	}
	if math.Abs(b.store.State().CurrentTime-t) <= b.epsilon {
		return
	}
	b.recordPush()
	b.store.SetCurrentTime(t)
}

// pushIsPlaying mirrors an engine play/pause change into the store.
func (b *Bridge) pushIsPlaying(playing bool) {
	if b.closed() {
		return
	}
	if b.store.State().IsPlaying == playing {
		return
	}
	b.recordPush()
	b.store.SetIsPlaying(playing)
}

// pushDuration mirrors an engine duration change into the store.
func (b *Bridge) pushDuration(d float64) {
	if !finite(d) {
		slog.Warn("dropping non-finite duration from engine", "duration", d)
		return
	}
	if b.closed() {
		return
	}
	if math.Abs(b.store.State().Duration-d) <= b.epsilon {
		return
	}
	b.recordPush()
	b.store.SetDuration(d)
}

// onStoreChange applies a store mutation back onto the engine, unless the
// notification is attributable to the bridge's own push.
func (b *Bridge) onStoreChange(n Notification) {
	b.mu.Lock()
	if b.disposed || b.applying {
		b.mu.Unlock()
		return
	}
	if n.Origin == OriginEngine {
		b.mu.Unlock()
		return
	}
	if n.Origin == OriginUntagged && b.hasPush && b.now().Sub(b.lastPush) < b.grace {
		b.mu.Unlock()
		return
	}
	b.applying = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.applying = false
		b.mu.Unlock()
	}()

	ss := b.store.State()
	es := b.engine.State()

	if ss.IsPlaying != es.IsPlaying {
		if ss.IsPlaying {
			b.engine.Play()
		} else {
			b.engine.Pause()
		}
	}
	if !finite(ss.CurrentTime) {
		slog.Warn("dropping non-finite current time from store", "time", ss.CurrentTime)
	} else if math.Abs(ss.CurrentTime-es.CurrentTime) > b.epsilon {
		b.engine.Seek(ss.CurrentTime)
	}
	if !finite(ss.PlaybackRate) {
		slog.Warn("dropping non-finite playback rate from store", "rate", ss.PlaybackRate)
	} else if math.Abs(ss.PlaybackRate-es.PlaybackRate) > b.epsilon {
		b.engine.SetPlaybackRate(ss.PlaybackRate)
	}
	if ss.Loop != es.Loop {
		b.engine.SetLoop(ss.Loop)
	}
}

// recordPush stamps the bridge's last engine->store write.
func (b *Bridge) recordPush() {
	b.mu.Lock()
	b.lastPush = b.now()
	b.hasPush = true
	b.mu.Unlock()
}

func (b *Bridge) closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
