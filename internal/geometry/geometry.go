// Package geometry converts between timeline seconds and on-screen pixels
// and computes clip layout rectangles. All functions are pure and
// numerically defensive: out-of-range zoom is clamped, degenerate speeds
// are treated as unity, and pixel values are bounded so extreme zoom or
// time cannot overflow downstream layout math.
package geometry

import (
	"math"

	"github.com/splicekit/splicekit/internal/timeline"
)

const (
	// ZoomMin and ZoomMax bound the pixels-per-second ratio.
	ZoomMin = 0.001
	ZoomMax = 100000.0

	// MaxPixels caps any converted pixel coordinate.
	MaxPixels = 1e9

	// MinClipWidthPx keeps degenerate clips wide enough to grab.
	MinClipWidthPx = 4.0

	// minSpeed guards the speed divisor in duration math.
	minSpeed = 1e-9
)

// ClampZoom forces zoom into [ZoomMin, ZoomMax]. Non-finite zoom collapses
// to ZoomMin.
func ClampZoom(zoom float64) float64 {
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return ZoomMin
	}
	return math.Min(math.Max(zoom, ZoomMin), ZoomMax)
}

// ToPixels converts timeline seconds to pixels at the given zoom,
// saturating at ±MaxPixels.
func ToPixels(seconds, zoom float64) float64 {
	px := seconds * ClampZoom(zoom)
	if math.IsNaN(px) {
		return 0
	}
	return math.Min(math.Max(px, -MaxPixels), MaxPixels)
}

// ToSeconds converts pixels back to timeline seconds at the given zoom.
func ToSeconds(pixels, zoom float64) float64 {
	return pixels / ClampZoom(zoom)
}

// ClipDuration returns the timeline duration of a source range played at
// the given speed. Zero, negative, or non-finite speed is treated as 1.0.
func ClipDuration(r timeline.ClipRange, speed float64) float64 {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		speed = 1.0
	}
	return r.Duration() / math.Max(speed, minSpeed)
}

// Rect is a clip's horizontal layout in pixels.
type Rect struct {
	Left  float64
	Width float64
}

// ClipRect computes where a clip lands on screen. Width is floored to
// MinClipWidthPx so a zero-length clip remains interactable.
func ClipRect(place timeline.ClipPlace, r timeline.ClipRange, speed, zoom float64) Rect {
	left := ToPixels(place.TimelineInSec, zoom)
	width := ToPixels(ClipDuration(r, speed), zoom)
	return Rect{
		Left:  left,
		Width: math.Max(width, MinClipWidthPx),
	}
}
