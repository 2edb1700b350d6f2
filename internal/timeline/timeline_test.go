package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequence_Duration(t *testing.T) {
	seq := NewSequence("Main")
	track := NewTrack("Video 1", TrackVideo)

	clip1 := NewClip("asset_1").WithSourceRange(0, 10).PlaceAt(0)
	clip2 := NewClip("asset_2").WithSourceRange(0, 5).PlaceAt(10)
	track.AddClip(clip1)
	track.AddClip(clip2)
	seq.AddTrack(track)

	assert.Equal(t, 15.0, seq.Duration())
}

func TestSequence_Duration_Empty(t *testing.T) {
	seq := NewSequence("Empty")
	assert.Equal(t, 0.0, seq.Duration())
}

func TestTrack_AddRemoveClip(t *testing.T) {
	track := NewTrack("Video 1", TrackVideo)
	clip := NewClip("asset_1").WithSourceRange(0, 10)

	track.AddClip(clip)
	require.Len(t, track.Clips, 1)
	require.NotNil(t, track.Clip(clip.ID))

	removed, ok := track.RemoveClip(clip.ID)
	assert.True(t, ok)
	assert.Equal(t, clip.ID, removed.ID)
	assert.Empty(t, track.Clips)

	_, ok = track.RemoveClip("missing")
	assert.False(t, ok)
}

func TestTrack_Kinds(t *testing.T) {
	assert.True(t, (&Track{Kind: TrackVideo}).IsVideo())
	assert.True(t, (&Track{Kind: TrackOverlay}).IsVideo())
	assert.False(t, (&Track{Kind: TrackAudio}).IsVideo())
}

func TestClip_WithSourceRange(t *testing.T) {
	clip := NewClip("asset_123").WithSourceRange(5, 15)

	assert.Equal(t, 5.0, clip.Range.SourceInSec)
	assert.Equal(t, 15.0, clip.Range.SourceOutSec)
	assert.Equal(t, 10.0, clip.EffectiveDuration())
	assert.Equal(t, 10.0, clip.Place.DurationSec)
}

func TestClip_Speed(t *testing.T) {
	clip := NewClip("asset_123").WithSourceRange(0, 10)
	clip.Speed = 2.0

	assert.Equal(t, 5.0, clip.EffectiveDuration())
}

func TestClip_DegenerateSpeedTreatedAsUnity(t *testing.T) {
	clip := NewClip("asset_123").WithSourceRange(0, 10)
	clip.Speed = 0

	assert.Equal(t, 10.0, clip.EffectiveDuration())
}

func TestClip_ContainsTime(t *testing.T) {
	clip := NewClip("asset_123").WithSourceRange(0, 10).PlaceAt(0)

	assert.True(t, clip.ContainsTime(0))
	assert.True(t, clip.ContainsTime(5))
	assert.True(t, clip.ContainsTime(10))
	assert.False(t, clip.ContainsTime(11))
}

func TestClip_TimelineToSource(t *testing.T) {
	clip := NewClip("asset_123").WithSourceRange(10, 20).PlaceAt(5)

	assert.Equal(t, 10.0, clip.TimelineToSource(5))
	assert.Equal(t, 15.0, clip.TimelineToSource(10))
}

func TestClipPlace_Overlaps(t *testing.T) {
	a := ClipPlace{TimelineInSec: 0, DurationSec: 10}
	b := ClipPlace{TimelineInSec: 5, DurationSec: 10}
	c := ClipPlace{TimelineInSec: 10, DurationSec: 10}

	assert.True(t, a.Overlaps(b))
	// Touching placements do not overlap.
	assert.False(t, a.Overlaps(c))
}

func TestSequence_TrackLookup(t *testing.T) {
	seq := NewSequence("Main")
	track := NewTrack("Video 1", TrackVideo)
	seq.AddTrack(track)

	require.NotNil(t, seq.Track(track.ID))
	assert.Nil(t, seq.Track("missing"))
}

func TestNewMarker(t *testing.T) {
	m := NewMarker(3.5, "hook")

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, 3.5, m.TimeSec)
	assert.Equal(t, MarkerGeneric, m.Kind)
}
