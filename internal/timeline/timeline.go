// Package timeline defines the sequence, track, clip and marker model that
// the editing core operates on.
//
// The structure is denormalized: a Sequence holds its Tracks directly and a
// Track holds its Clips directly, so a whole sequence can be snapshotted or
// diffed without ID chasing. All times are float64 seconds on the timeline
// axis unless a field name says otherwise.
package timeline

import (
	"math"

	"github.com/google/uuid"
)

// TrackKind distinguishes what a track carries.
type TrackKind string

const (
	TrackVideo   TrackKind = "video"
	TrackAudio   TrackKind = "audio"
	TrackCaption TrackKind = "caption"
	TrackOverlay TrackKind = "overlay"
)

// MarkerKind categorizes timeline markers.
type MarkerKind string

const (
	MarkerGeneric MarkerKind = "generic"
	MarkerChapter MarkerKind = "chapter"
	MarkerHook    MarkerKind = "hook"
	MarkerCTA     MarkerKind = "cta"
	MarkerTodo    MarkerKind = "todo"
)

// ClipRange is the trimmed window into the source media, in source seconds.
//
// INVARIANT: SourceOutSec > SourceInSec for any playable clip.
type ClipRange struct {
	SourceInSec  float64 `yaml:"source_in_sec" json:"sourceInSec"`
	SourceOutSec float64 `yaml:"source_out_sec" json:"sourceOutSec"`
}

// Duration returns the length of the range in source seconds.
func (r ClipRange) Duration() float64 {
	return r.SourceOutSec - r.SourceInSec
}

// ClipPlace is the clip's position on the timeline axis.
type ClipPlace struct {
	TimelineInSec float64 `yaml:"timeline_in_sec" json:"timelineInSec"`
	DurationSec   float64 `yaml:"duration_sec" json:"durationSec"`
}

// TimelineOutSec returns the end position on the timeline.
func (p ClipPlace) TimelineOutSec() float64 {
	return p.TimelineInSec + p.DurationSec
}

// Overlaps reports whether two placements share any open interval.
// Placements that merely touch do not overlap.
func (p ClipPlace) Overlaps(other ClipPlace) bool {
	return p.TimelineInSec < other.TimelineOutSec() &&
		p.TimelineOutSec() > other.TimelineInSec
}

// Contains reports whether a timeline position falls within the placement,
// inclusive of both edges.
func (p ClipPlace) Contains(timeSec float64) bool {
	return timeSec >= p.TimelineInSec && timeSec <= p.TimelineOutSec()
}

// Marker is a named point of interest on the timeline.
type Marker struct {
	ID      string     `yaml:"id" json:"id"`
	TimeSec float64    `yaml:"time_sec" json:"timeSec"`
	Label   string     `yaml:"label" json:"label"`
	Kind    MarkerKind `yaml:"kind" json:"kind"`
}

// NewMarker creates a generic marker at the given time.
func NewMarker(timeSec float64, label string) Marker {
	return Marker{
		ID:      uuid.NewString(),
		TimeSec: timeSec,
		Label:   label,
		Kind:    MarkerGeneric,
	}
}

// Clip is a media segment placed on the timeline.
type Clip struct {
	ID      string    `yaml:"id" json:"id"`
	AssetID string    `yaml:"asset_id" json:"assetId"`
	Range   ClipRange `yaml:"range" json:"range"`
	Place   ClipPlace `yaml:"place" json:"place"`
	// Speed is the playback speed multiplier; 1.0 is normal.
	Speed float64 `yaml:"speed" json:"speed"`
	Label string  `yaml:"label,omitempty" json:"label,omitempty"`
}

// NewClip creates a clip for an asset with default range and placement.
func NewClip(assetID string) Clip {
	return Clip{
		ID:      uuid.NewString(),
		AssetID: assetID,
		Speed:   1.0,
	}
}

// WithSourceRange sets the source window and recomputes the timeline
// duration from it, honoring the current speed.
func (c Clip) WithSourceRange(sourceIn, sourceOut float64) Clip {
	c.Range = ClipRange{SourceInSec: sourceIn, SourceOutSec: sourceOut}
	c.Place.DurationSec = c.EffectiveDuration()
	return c
}

// PlaceAt moves the clip to a timeline position, keeping its duration.
func (c Clip) PlaceAt(timelineIn float64) Clip {
	c.Place.TimelineInSec = timelineIn
	return c
}

// EffectiveDuration returns the clip's timeline duration given its speed.
// Zero or negative speed is treated as 1.0 so degenerate clips stay finite.
func (c Clip) EffectiveDuration() float64 {
	speed := c.Speed
	if speed <= 0 || math.IsNaN(speed) {
		speed = 1.0
	}
	return c.Range.Duration() / speed
}

// TimelineEnd returns the clip's end position on the timeline.
func (c Clip) TimelineEnd() float64 {
	return c.Place.TimelineOutSec()
}

// ContainsTime reports whether a timeline position falls inside the clip.
func (c Clip) ContainsTime(timeSec float64) bool {
	return c.Place.Contains(timeSec)
}

// TimelineToSource maps a timeline position to the corresponding source
// position, accounting for placement offset and speed.
func (c Clip) TimelineToSource(timelineSec float64) float64 {
	speed := c.Speed
	if speed <= 0 || math.IsNaN(speed) {
		speed = 1.0
	}
	offset := timelineSec - c.Place.TimelineInSec
	return c.Range.SourceInSec + offset*speed
}

// Track holds clips of one kind in playback order.
type Track struct {
	ID    string    `yaml:"id" json:"id"`
	Kind  TrackKind `yaml:"kind" json:"kind"`
	Name  string    `yaml:"name" json:"name"`
	Clips []Clip    `yaml:"clips" json:"clips"`
	Muted bool      `yaml:"muted" json:"muted"`
	// Locked tracks reject interactive edits at the controller layer.
	Locked bool `yaml:"locked" json:"locked"`
}

// NewTrack creates an empty track of the given kind.
func NewTrack(name string, kind TrackKind) Track {
	return Track{
		ID:   uuid.NewString(),
		Kind: kind,
		Name: name,
	}
}

// AddClip appends a clip to the track.
func (t *Track) AddClip(c Clip) {
	t.Clips = append(t.Clips, c)
}

// RemoveClip removes a clip by ID, returning it and whether it was found.
func (t *Track) RemoveClip(clipID string) (Clip, bool) {
	for i, c := range t.Clips {
		if c.ID == clipID {
			removed := c
			t.Clips = append(t.Clips[:i], t.Clips[i+1:]...)
			return removed, true
		}
	}
	return Clip{}, false
}

// Clip returns a pointer to the clip with the given ID, or nil.
func (t *Track) Clip(clipID string) *Clip {
	for i := range t.Clips {
		if t.Clips[i].ID == clipID {
			return &t.Clips[i]
		}
	}
	return nil
}

// IsVideo reports whether the track renders video frames.
func (t *Track) IsVideo() bool {
	return t.Kind == TrackVideo || t.Kind == TrackOverlay
}

// Sequence is the timeline container: ordered tracks plus markers.
type Sequence struct {
	ID      string   `yaml:"id" json:"id"`
	Name    string   `yaml:"name" json:"name"`
	Tracks  []Track  `yaml:"tracks" json:"tracks"`
	Markers []Marker `yaml:"markers" json:"markers"`
}

// NewSequence creates an empty sequence.
func NewSequence(name string) Sequence {
	return Sequence{
		ID:   uuid.NewString(),
		Name: name,
	}
}

// AddTrack appends a track to the sequence.
func (s *Sequence) AddTrack(t Track) {
	s.Tracks = append(s.Tracks, t)
}

// Track returns a pointer to the track with the given ID, or nil.
func (s *Sequence) Track(trackID string) *Track {
	for i := range s.Tracks {
		if s.Tracks[i].ID == trackID {
			return &s.Tracks[i]
		}
	}
	return nil
}

// AddMarker appends a marker to the sequence.
func (s *Sequence) AddMarker(m Marker) {
	s.Markers = append(s.Markers, m)
}

// Duration returns the sequence length: the maximum clip out-point across
// all tracks, or 0 for an empty sequence.
func (s *Sequence) Duration() float64 {
	var max float64
	for i := range s.Tracks {
		for j := range s.Tracks[i].Clips {
			if end := s.Tracks[i].Clips[j].TimelineEnd(); end > max {
				max = end
			}
		}
	}
	return max
}
