package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeClock_Advance(t *testing.T) {
	c := NewFakeClock()
	start := c.Now()

	got := c.Advance(250 * time.Millisecond)

	assert.Equal(t, start.Add(250*time.Millisecond), got)
	assert.Equal(t, got, c.Now())
}

func TestManualFrames_DeliversTicksWhileRunning(t *testing.T) {
	c := NewFakeClock()
	m := NewManualFrames(c)

	var ticks []time.Time
	m.Start(func(now time.Time) { ticks = append(ticks, now) })
	assert.True(t, m.Running())

	m.Frame(100 * time.Millisecond)
	m.Frame(100 * time.Millisecond)

	assert.Len(t, ticks, 2)
	assert.Equal(t, 100*time.Millisecond, ticks[1].Sub(ticks[0]))
}

func TestManualFrames_FrameWhileStoppedAdvancesClockOnly(t *testing.T) {
	c := NewFakeClock()
	m := NewManualFrames(c)

	var ticks int
	m.Start(func(time.Time) { ticks++ })
	m.Stop()
	assert.False(t, m.Running())

	before := c.Now()
	m.Frame(time.Second)

	assert.Zero(t, ticks, "stopped scheduler delivers no ticks")
	assert.Equal(t, before.Add(time.Second), c.Now(), "clock still advances")
}

func TestManualFrames_StartIsIdempotentWhileRunning(t *testing.T) {
	c := NewFakeClock()
	m := NewManualFrames(c)

	var first, second int
	m.Start(func(time.Time) { first++ })
	m.Start(func(time.Time) { second++ })

	m.Frame(time.Millisecond)

	assert.Equal(t, 1, first, "original callback stays installed")
	assert.Zero(t, second)
}
