package harness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PlaySeekPause(t *testing.T) {
	s := &Scenario{
		Name:            "basic",
		Duration:        10,
		MaxFrameDeltaMS: 1000,
		Steps: []Step{
			{Op: "play"},
			{Op: "advance", MS: 500},
			{Op: "seek", Time: 5},
			{Op: "pause"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	require.Len(t, result.Trace, 4)

	assert.True(t, result.Trace[0].IsPlaying)
	assert.InDelta(t, 0.5, result.Trace[1].CurrentTime, 1e-9)
	assert.Equal(t, int64(500), result.Trace[1].AtMS)
	assert.Equal(t, 5.0, result.Trace[2].CurrentTime)
	assert.False(t, result.Trace[3].IsPlaying)

	// The bridged store converged with the engine.
	assert.InDelta(t, result.Final.CurrentTime, result.Store.CurrentTime, 1e-6)
	assert.Equal(t, result.Final.IsPlaying, result.Store.IsPlaying)
}

func TestRun_RateAndStepping(t *testing.T) {
	s := &Scenario{
		Name:     "stepping",
		Duration: 60,
		Rate:     2.0,
		Steps: []Step{
			{Op: "play"},
			{Op: "advance", MS: 100},
			{Op: "pause"},
			{Op: "step_forward", FPS: 30},
			{Op: "step_backward", FPS: 30},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.InDelta(t, 0.2, result.Trace[1].CurrentTime, 1e-9, "dt scales by rate")
	assert.InDelta(t, 0.2+1.0/30, result.Trace[3].CurrentTime, 1e-9)
	assert.InDelta(t, 0.2, result.Trace[4].CurrentTime, 1e-9)
}

func TestRun_SetDurationClampsTime(t *testing.T) {
	s := &Scenario{
		Name:     "shrink",
		Duration: 60,
		Steps: []Step{
			{Op: "seek", Time: 50},
			{Op: "set_duration", Duration: 40},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Equal(t, 40.0, result.Final.Duration)
	assert.Equal(t, 40.0, result.Final.CurrentTime)
	assert.Equal(t, 40.0, result.Store.Duration, "duration change reaches the store")
}

func TestRunWith_AppliesRunOptions(t *testing.T) {
	s := &Scenario{
		Name:     "frame-clamp",
		Duration: 60,
		Steps: []Step{
			{Op: "play"},
			{Op: "advance", MS: 5000},
		},
	}

	result, err := RunWith(s, RunOptions{MaxFrameDelta: 100 * time.Millisecond})
	require.NoError(t, err)
	assert.InDelta(t, 0.1, result.Final.CurrentTime, 1e-9)
}

func TestLoad_ParsesScenarioFile(t *testing.T) {
	s, err := Load("testdata/play-seek-pause.yaml")
	require.NoError(t, err)

	assert.Equal(t, "play-seek-pause", s.Name)
	assert.Equal(t, 10.0, s.Duration)
	assert.Len(t, s.Steps, 6)
	assert.Equal(t, "advance", s.Steps[1].Op)
	assert.Equal(t, 500, s.Steps[1].MS)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name     string
		scenario Scenario
		wantErr  string
	}{
		{
			name:     "missing name",
			scenario: Scenario{Duration: 10, Steps: []Step{{Op: "play"}}},
			wantErr:  "name is required",
		},
		{
			name:     "negative duration",
			scenario: Scenario{Name: "x", Duration: -1, Steps: []Step{{Op: "play"}}},
			wantErr:  "duration must be finite",
		},
		{
			name:     "no steps",
			scenario: Scenario{Name: "x", Duration: 10},
			wantErr:  "at least one step",
		},
		{
			name:     "unknown op",
			scenario: Scenario{Name: "x", Duration: 10, Steps: []Step{{Op: "rewind"}}},
			wantErr:  "unknown op",
		},
		{
			name:     "advance without ms",
			scenario: Scenario{Name: "x", Duration: 10, Steps: []Step{{Op: "advance"}}},
			wantErr:  "advance requires ms > 0",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.scenario.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestGolden_PlaySeekPause(t *testing.T) {
	s, err := Load("testdata/play-seek-pause.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}

func TestGolden_LoopWrap(t *testing.T) {
	s, err := Load("testdata/loop-wrap.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}
