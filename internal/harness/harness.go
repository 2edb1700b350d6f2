package harness

import (
	"fmt"
	"time"

	"github.com/splicekit/splicekit/internal/bridge"
	"github.com/splicekit/splicekit/internal/engine"
	"github.com/splicekit/splicekit/internal/testutil"
)

// TraceEvent is the state snapshot recorded after each step.
type TraceEvent struct {
	AtMS        int64   `json:"at_ms"`
	Op          string  `json:"op"`
	CurrentTime float64 `json:"current_time"`
	Duration    float64 `json:"duration"`
	Rate        float64 `json:"rate"`
	IsPlaying   bool    `json:"is_playing"`
	Loop        bool    `json:"loop"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string       `json:"scenario"`
	Trace    []TraceEvent `json:"trace"`

	// Final and Store are the end states of the two sides of the bridge.
	// They are excluded from golden traces but available to assertions.
	Final engine.PlaybackState `json:"-"`
	Store bridge.State         `json:"-"`
}

// RunOptions carry environment-derived defaults into a run. Zero values
// keep the engine and bridge defaults; a scenario's own settings win.
type RunOptions struct {
	GraceWindow   time.Duration
	MaxFrameDelta time.Duration
}

// Run executes a scenario with default options.
func Run(s *Scenario) (*Result, error) {
	return RunWith(s, RunOptions{})
}

// RunWith executes a scenario against a fresh engine wired through a
// bridge to an in-memory store, all driven by a fake clock and manual
// frames so the trace is fully deterministic.
func RunWith(s *Scenario, ro RunOptions) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	clock := testutil.NewFakeClock()
	frames := testutil.NewManualFrames(clock)

	opts := []engine.Option{
		engine.WithClock(clock.Now),
		engine.WithScheduler(frames),
	}
	switch {
	case s.MaxFrameDeltaMS > 0:
		opts = append(opts, engine.WithMaxFrameDelta(time.Duration(s.MaxFrameDeltaMS)*time.Millisecond))
	case ro.MaxFrameDelta > 0:
		opts = append(opts, engine.WithMaxFrameDelta(ro.MaxFrameDelta))
	}
	eng := engine.New(s.Duration, opts...)
	defer eng.Dispose()

	bridgeOpts := []bridge.Option{bridge.WithClock(clock.Now)}
	if ro.GraceWindow > 0 {
		bridgeOpts = append(bridgeOpts, bridge.WithGraceWindow(ro.GraceWindow))
	}
	store := bridge.NewMemoryStore()
	br := bridge.New(eng, store, bridgeOpts...)
	defer br.Dispose()

	if s.Rate > 0 {
		eng.SetPlaybackRate(s.Rate)
	}
	if s.Loop {
		eng.SetLoop(true)
	}

	start := clock.Now()
	result := &Result{Scenario: s.Name}

	for i, step := range s.Steps {
		if err := apply(eng, frames, step); err != nil {
			return nil, fmt.Errorf("scenario %s: step %d: %w", s.Name, i, err)
		}
		state := eng.State()
		result.Trace = append(result.Trace, TraceEvent{
			AtMS:        clock.Now().Sub(start).Milliseconds(),
			Op:          step.Op,
			CurrentTime: state.CurrentTime,
			Duration:    state.Duration,
			Rate:        state.PlaybackRate,
			IsPlaying:   state.IsPlaying,
			Loop:        state.Loop,
		})
	}

	result.Final = eng.State()
	result.Store = store.State()
	return result, nil
}

// apply executes one step against the engine.
func apply(eng *engine.Engine, frames *testutil.ManualFrames, step Step) error {
	switch step.Op {
	case "play":
		eng.Play()
	case "pause":
		eng.Pause()
	case "toggle":
		eng.TogglePlayback()
	case "seek":
		eng.Seek(step.Time)
	case "seek_forward":
		eng.SeekForward(step.Amount)
	case "seek_backward":
		eng.SeekBackward(step.Amount)
	case "step_forward":
		eng.StepForward(step.FPS)
	case "step_backward":
		eng.StepBackward(step.FPS)
	case "go_to_start":
		eng.GoToStart()
	case "go_to_end":
		eng.GoToEnd()
	case "set_rate":
		eng.SetPlaybackRate(step.Rate)
	case "set_loop":
		eng.SetLoop(step.Loop)
	case "toggle_loop":
		eng.ToggleLoop()
	case "set_duration":
		eng.SetDuration(step.Duration)
	case "advance":
		frames.Frame(time.Duration(step.MS) * time.Millisecond)
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}
