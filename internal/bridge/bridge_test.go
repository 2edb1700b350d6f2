package bridge_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/splicekit/splicekit/internal/bridge"
	"github.com/splicekit/splicekit/internal/engine"
	"github.com/splicekit/splicekit/internal/testutil"
)

type fixture struct {
	eng    *engine.Engine
	store  *bridge.MemoryStore
	bridge *bridge.Bridge
	clock  *testutil.FakeClock
	frames *testutil.ManualFrames
}

func newFixture(t *testing.T, duration float64) *fixture {
	t.Helper()
	clock := testutil.NewFakeClock()
	frames := testutil.NewManualFrames(clock)
	eng := engine.New(duration,
		engine.WithClock(clock.Now),
		engine.WithScheduler(frames),
	)
	store := bridge.NewMemoryStore()
	br := bridge.New(eng, store, bridge.WithClock(clock.Now))
	t.Cleanup(func() {
		br.Dispose()
		eng.Dispose()
	})
	return &fixture{eng: eng, store: store, bridge: br, clock: clock, frames: frames}
}

func TestEngineToStore_MirrorsChanges(t *testing.T) {
	f := newFixture(t, 60)

	f.eng.Seek(12)
	assert.Equal(t, 12.0, f.store.State().CurrentTime)

	f.eng.Play()
	assert.True(t, f.store.State().IsPlaying)

	f.eng.SetDuration(30)
	assert.Equal(t, 30.0, f.store.State().Duration)
}

func TestEngineToStore_ExactlyOneWritePerToggle(t *testing.T) {
	f := newFixture(t, 60)

	writes := 0
	unsub := f.store.Subscribe(func(bridge.Notification) { writes++ })
	defer unsub()

	f.eng.TogglePlayback()
	assert.Equal(t, 1, writes, "one store write per toggle, no bounce")

	f.eng.TogglePlayback()
	assert.Equal(t, 2, writes)
}

func TestEngineToStore_EpsilonSkipsEqualValues(t *testing.T) {
	f := newFixture(t, 60)

	writes := 0
	unsub := f.store.Subscribe(func(bridge.Notification) { writes++ })
	defer unsub()

	f.eng.Seek(12)
	require.Equal(t, 1, writes)

	// The store already holds a value within epsilon: no write.
	f.eng.Seek(12 + 1e-9)
	assert.Equal(t, 1, writes)
}

func TestStoreToEngine_UntaggedWithinGraceIsSkipped(t *testing.T) {
	f := newFixture(t, 60)

	// Push something so the grace window is armed.
	f.eng.Seek(5)
	_, pushed := f.bridge.LastPushAt()
	require.True(t, pushed)

	// An untagged store write landing immediately after the push is
	// attributed to the engine and not applied back.
	f.store.SetCurrentTime(20)
	assert.Equal(t, 5.0, f.eng.State().CurrentTime)
}

func TestStoreToEngine_UntaggedBeyondGraceApplies(t *testing.T) {
	f := newFixture(t, 60)

	f.eng.Seek(5)
	f.clock.Advance(bridge.DefaultGraceWindow + time.Millisecond)

	f.store.SetCurrentTime(20)
	assert.Equal(t, 20.0, f.eng.State().CurrentTime)
}

func TestStoreToEngine_TaggedExternalBypassesGrace(t *testing.T) {
	f := newFixture(t, 60)

	f.eng.Seek(5)

	// Explicitly external mutation applies even inside the grace window.
	f.store.Update(bridge.OriginExternal, func(s *bridge.State) {
		s.CurrentTime = 33
	})
	assert.Equal(t, 33.0, f.eng.State().CurrentTime)
}

func TestStoreToEngine_TaggedEngineNeverApplies(t *testing.T) {
	f := newFixture(t, 60)

	f.clock.Advance(time.Hour)
	f.store.Update(bridge.OriginEngine, func(s *bridge.State) {
		s.CurrentTime = 33
	})
	assert.Equal(t, 0.0, f.eng.State().CurrentTime)
}

func TestStoreToEngine_AppliesAllTrackedFields(t *testing.T) {
	f := newFixture(t, 60)
	f.clock.Advance(time.Hour)

	f.store.Update(bridge.OriginExternal, func(s *bridge.State) {
		s.IsPlaying = true
		s.CurrentTime = 7
		s.PlaybackRate = 1.5
		s.Loop = true
	})

	state := f.eng.State()
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 7.0, state.CurrentTime)
	assert.Equal(t, 1.5, state.PlaybackRate)
	assert.True(t, state.Loop)
}

func TestStoreToEngine_DropsNonFinite(t *testing.T) {
	f := newFixture(t, 60)
	f.eng.Seek(5)
	f.clock.Advance(time.Hour)

	f.store.Update(bridge.OriginExternal, func(s *bridge.State) {
		s.CurrentTime = math.NaN()
		s.PlaybackRate = math.Inf(1)
	})

	state := f.eng.State()
	assert.Equal(t, 5.0, state.CurrentTime)
	assert.Equal(t, 1.0, state.PlaybackRate)
}

func TestBurst_RemainsConsistent(t *testing.T) {
	f := newFixture(t, 60)

	// 100 rapid seek+toggle pairs must not bounce, diverge, or panic.
	require.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			f.eng.Seek(float64(i % 60))
			f.eng.TogglePlayback()
		}
	})

	engState := f.eng.State()
	storeState := f.store.State()
	assert.InDelta(t, engState.CurrentTime, storeState.CurrentTime, bridge.DefaultEpsilon)
	assert.Equal(t, engState.IsPlaying, storeState.IsPlaying)
}

func TestDispose_StopsPropagationBothWays(t *testing.T) {
	f := newFixture(t, 60)

	f.bridge.Dispose()
	f.bridge.Dispose() // idempotent

	f.eng.Seek(9)
	assert.Equal(t, 0.0, f.store.State().CurrentTime)

	f.clock.Advance(time.Hour)
	f.store.Update(bridge.OriginExternal, func(s *bridge.State) {
		s.CurrentTime = 44
	})
	assert.Equal(t, 9.0, f.eng.State().CurrentTime)
}

func TestMemoryStore_SubscribeUnsubscribe(t *testing.T) {
	store := bridge.NewMemoryStore()

	calls := 0
	unsub := store.Subscribe(func(bridge.Notification) { calls++ })

	store.SetCurrentTime(1)
	require.Equal(t, 1, calls)

	// Unchanged writes do not notify.
	store.SetCurrentTime(1)
	require.Equal(t, 1, calls)

	unsub()
	store.SetCurrentTime(2)
	assert.Equal(t, 1, calls)
}
