// Package snap resolves a proposed timeline position against a set of
// candidate snap points, picking the nearest one within a threshold and
// breaking distance ties by point priority.
package snap

import (
	"math"

	"github.com/splicekit/splicekit/internal/timeline"
)

// PointType identifies what a snap point is anchored to. The declaration
// order below is the tie-break priority: playhead beats clip edges, clip
// edges beat markers, markers beat grid lines.
type PointType int

const (
	Playhead PointType = iota
	ClipStart
	ClipEnd
	Marker
	Grid
)

// String returns the wire name of the point type.
func (t PointType) String() string {
	switch t {
	case Playhead:
		return "playhead"
	case ClipStart:
		return "clip-start"
	case ClipEnd:
		return "clip-end"
	case Marker:
		return "marker"
	case Grid:
		return "grid"
	default:
		return "unknown"
	}
}

// priority collapses clip-start and clip-end into one rank. Ordering is
// playhead > clip-edge > marker > grid.
func (t PointType) priority() int {
	switch t {
	case Playhead:
		return 0
	case ClipStart, ClipEnd:
		return 1
	case Marker:
		return 2
	case Grid:
		return 3
	default:
		return 4
	}
}

// Point is a candidate position a dragged object gravitates toward.
// Points are recomputed per interaction frame and never persisted.
type Point struct {
	Time  float64
	Type  PointType
	Label string
}

// Result is the outcome of a resolution. When Snapped is false the caller
// keeps its proposed time unchanged.
type Result struct {
	Snapped  bool
	Point    Point
	Distance float64
}

// Resolve finds the candidate nearest to proposedTime. It snaps only when
// the nearest distance is within threshold; equidistant candidates are
// ranked by priority, then by candidate order for full determinism.
//
// An empty candidate set, a non-positive threshold, or a non-finite
// proposal all yield no snap.
func Resolve(proposedTime float64, candidates []Point, threshold float64) Result {
	if len(candidates) == 0 || threshold <= 0 {
		return Result{}
	}
	if math.IsNaN(proposedTime) || math.IsInf(proposedTime, 0) {
		return Result{}
	}

	best := -1
	bestDist := math.Inf(1)
	for i, c := range candidates {
		if math.IsNaN(c.Time) || math.IsInf(c.Time, 0) {
			continue
		}
		dist := math.Abs(proposedTime - c.Time)
		switch {
		case dist < bestDist:
			best, bestDist = i, dist
		case dist == bestDist && best >= 0 &&
			c.Type.priority() < candidates[best].Type.priority():
			best = i
		}
	}

	if best < 0 || bestDist > threshold {
		return Result{}
	}
	return Result{Snapped: true, Point: candidates[best], Distance: bestDist}
}

// Candidates assembles the snap points for a sequence: every clip edge,
// every marker, and the current playhead. The clip being dragged is
// excluded so it cannot snap to itself.
func Candidates(seq *timeline.Sequence, playheadSec float64, excludeClipID string) []Point {
	points := []Point{{Time: playheadSec, Type: Playhead}}
	for i := range seq.Tracks {
		for j := range seq.Tracks[i].Clips {
			clip := &seq.Tracks[i].Clips[j]
			if clip.ID == excludeClipID {
				continue
			}
			points = append(points,
				Point{Time: clip.Place.TimelineInSec, Type: ClipStart, Label: clip.Label},
				Point{Time: clip.TimelineEnd(), Type: ClipEnd, Label: clip.Label},
			)
		}
	}
	for _, m := range seq.Markers {
		points = append(points, Point{Time: m.TimeSec, Type: Marker, Label: m.Label})
	}
	return points
}
