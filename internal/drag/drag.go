// Package drag implements the per-gesture state machine for moving and
// trimming clips on the timeline.
//
// A gesture is one pointer-down .. pointer-up/cancel interaction:
//
//	Idle -> PendingDrag -> Dragging -> Committed
//	              \------------------> Idle      (click, threshold not met)
//	               \-----------------> Cancelled
//
// Click-vs-drag disambiguation is a single authoritative transition: the
// gesture enters Dragging only once pointer movement exceeds the
// activation threshold. There are no timers. The controller only ever
// emits previews; committing the final position to the document is the
// caller's job via the OnDragEnd callback.
package drag

import (
	"log/slog"
	"math"

	"github.com/google/uuid"

	"github.com/splicekit/splicekit/internal/geometry"
	"github.com/splicekit/splicekit/internal/snap"
	"github.com/splicekit/splicekit/internal/timeline"
)

// Type identifies which clip edge the gesture manipulates.
type Type string

const (
	Move      Type = "move"
	TrimLeft  Type = "trim-left"
	TrimRight Type = "trim-right"
)

// Phase is the gesture state.
type Phase int

const (
	Idle Phase = iota
	PendingDrag
	Dragging
	Committed
	Cancelled
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case PendingDrag:
		return "pending"
	case Dragging:
		return "dragging"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DefaultActivationPx is how far the pointer must travel before a pending
// gesture becomes a drag. Below it, pointer-up is a plain click.
const DefaultActivationPx = 3.0

// DefaultMinDurationSec is the smallest source window a trim may leave.
const DefaultMinDurationSec = 0.1

// Constraints bound what a gesture may do to the clip.
type Constraints struct {
	// MinDurationSec floors the trimmed source window. Zero or negative
	// falls back to DefaultMinDurationSec.
	MinDurationSec float64
	// MaxSourceDurationSec is the total source media length; sourceOut can
	// never trim past it. Zero means unbounded.
	MaxSourceDurationSec float64
	// GridIntervalSec rounds the moving edge to a grid. Zero disables.
	GridIntervalSec float64
	// SnapPoints are the candidate positions the moving edge gravitates
	// toward. A snap hit overrides grid rounding.
	SnapPoints []snap.Point
	// SnapThresholdSec is the maximum snap distance. Zero disables snapping.
	SnapThresholdSec float64
}

// Session is the immutable snapshot taken at pointer-down. It lives for
// one gesture and is never persisted.
type Session struct {
	ID            string
	ClipID        string
	Type          Type
	StartPointerX float64
	OrigPlace     timeline.ClipPlace
	OrigRange     timeline.ClipRange
	Speed         float64
	Zoom          float64
	Constraints   Constraints
}

// Preview is a candidate placement emitted during the gesture. The
// committed clip is never mutated by this package.
type Preview struct {
	Place timeline.ClipPlace
	Range timeline.ClipRange
	Snap  snap.Result
}

// Callbacks are emitted to the rendering layer. Any of them may be nil.
type Callbacks struct {
	OnDragStart func(Session)
	OnDrag      func(Session, Preview)
	OnDragEnd   func(Session, Preview)
}

// Controller runs one gesture at a time. Pointer events are expected to
// arrive synchronously from a single event loop; methods called in any
// other phase than they expect are no-ops.
type Controller struct {
	callbacks    Callbacks
	activationPx float64

	phase   Phase
	session Session
	preview Preview
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithActivationThreshold overrides the pixel distance that turns a
// pending gesture into a drag.
func WithActivationThreshold(px float64) ControllerOption {
	return func(c *Controller) {
		if px > 0 {
			c.activationPx = px
		}
	}
}

// NewController creates an idle controller.
func NewController(callbacks Callbacks, opts ...ControllerOption) *Controller {
	c := &Controller{
		callbacks:    callbacks,
		activationPx: DefaultActivationPx,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Phase returns the current gesture phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Preview returns the most recent preview. Meaningful only while Dragging
// or after Committed.
func (c *Controller) Preview() Preview {
	return c.preview
}

// PointerDown snapshots the clip and starts a pending gesture. Ignored
// while another gesture is active.
func (c *Controller) PointerDown(clip timeline.Clip, dragType Type, pointerX float64, zoom float64, constraints Constraints) {
	if c.phase == PendingDrag || c.phase == Dragging {
		slog.Debug("pointer down ignored: gesture already active", "phase", c.phase.String())
		return
	}
	if !finite(pointerX) {
		slog.Debug("pointer down rejected: non-finite pointer", "pointer_x", pointerX)
		return
	}
	if constraints.MinDurationSec <= 0 {
		constraints.MinDurationSec = DefaultMinDurationSec
	}
	speed := clip.Speed
	if speed <= 0 || !finite(speed) {
		speed = 1.0
	}
	c.session = Session{
		ID:            uuid.NewString(),
		ClipID:        clip.ID,
		Type:          dragType,
		StartPointerX: pointerX,
		OrigPlace:     clip.Place,
		OrigRange:     clip.Range,
		Speed:         speed,
		Zoom:          geometry.ClampZoom(zoom),
		Constraints:   constraints,
	}
	c.preview = Preview{Place: clip.Place, Range: clip.Range}
	c.phase = PendingDrag
}

// PointerMove updates the gesture with a new absolute pointer position.
// While pending, movement under the activation threshold does nothing; the
// first move beyond it transitions to Dragging and fires OnDragStart.
func (c *Controller) PointerMove(pointerX float64) {
	if c.phase != PendingDrag && c.phase != Dragging {
		return
	}
	if !finite(pointerX) {
		slog.Debug("pointer move rejected: non-finite pointer", "pointer_x", pointerX)
		return
	}

	deltaX := pointerX - c.session.StartPointerX
	if c.phase == PendingDrag {
		if math.Abs(deltaX) <= c.activationPx {
			return
		}
		c.phase = Dragging
		if c.callbacks.OnDragStart != nil {
			c.callbacks.OnDragStart(c.session)
		}
	}

	deltaSec := geometry.ToSeconds(deltaX, c.session.Zoom)
	c.preview = computePreview(c.session, deltaSec)
	if c.callbacks.OnDrag != nil {
		c.callbacks.OnDrag(c.session, c.preview)
	}
}

// PointerUp ends the gesture. A drag commits its final preview through
// OnDragEnd; a pending gesture that never crossed the threshold returns to
// Idle so the caller can treat it as a click.
func (c *Controller) PointerUp() {
	switch c.phase {
	case Dragging:
		c.phase = Committed
		if c.callbacks.OnDragEnd != nil {
			c.callbacks.OnDragEnd(c.session, c.preview)
		}
	case PendingDrag:
		c.phase = Idle
	default:
		// No matching pointer-down: nothing to end.
	}
}

// Cancel discards the gesture without committing. No callback fires after
// cancellation, including for events already in flight. Idempotent.
func (c *Controller) Cancel() {
	if c.phase == PendingDrag || c.phase == Dragging {
		c.phase = Cancelled
	}
	c.callbacks = Callbacks{}
}

// computePreview derives the candidate placement for a timeline delta.
func computePreview(s Session, deltaSec float64) Preview {
	switch s.Type {
	case TrimLeft:
		return previewTrimLeft(s, deltaSec)
	case TrimRight:
		return previewTrimRight(s, deltaSec)
	default:
		return previewMove(s, deltaSec)
	}
}

// previewMove shifts the whole clip, snapping its start edge.
func previewMove(s Session, deltaSec float64) Preview {
	in := s.OrigPlace.TimelineInSec + deltaSec
	in, result := adjustEdge(in, s.Constraints)
	if in < 0 {
		in = 0
		result = snap.Result{}
	}
	return Preview{
		Place: timeline.ClipPlace{TimelineInSec: in, DurationSec: s.OrigPlace.DurationSec},
		Range: s.OrigRange,
		Snap:  result,
	}
}

// previewTrimLeft moves the clip's left edge: sourceIn and timelineIn
// shift together so the content under the right edge stays fixed.
func previewTrimLeft(s Session, deltaSec float64) Preview {
	edge := s.OrigPlace.TimelineInSec + deltaSec
	edge, result := adjustEdge(edge, s.Constraints)

	// Translate the timeline edge into a source-in candidate and bound it.
	shift := edge - s.OrigPlace.TimelineInSec
	sourceIn := s.OrigRange.SourceInSec + shift*s.Speed

	lo := math.Max(0, s.OrigRange.SourceInSec-s.OrigPlace.TimelineInSec*s.Speed)
	hi := s.OrigRange.SourceOutSec - s.Constraints.MinDurationSec
	bounded := clamp(sourceIn, lo, hi)
	if bounded != sourceIn {
		sourceIn = bounded
		result = snap.Result{}
	}

	timelineIn := s.OrigPlace.TimelineInSec + (sourceIn-s.OrigRange.SourceInSec)/s.Speed
	duration := (s.OrigRange.SourceOutSec - sourceIn) / s.Speed
	return Preview{
		Place: timeline.ClipPlace{TimelineInSec: timelineIn, DurationSec: duration},
		Range: timeline.ClipRange{SourceInSec: sourceIn, SourceOutSec: s.OrigRange.SourceOutSec},
		Snap:  result,
	}
}

// previewTrimRight moves the clip's right edge by adjusting sourceOut.
func previewTrimRight(s Session, deltaSec float64) Preview {
	edge := s.OrigPlace.TimelineOutSec() + deltaSec
	edge, result := adjustEdge(edge, s.Constraints)

	sourceOut := s.OrigRange.SourceInSec + (edge-s.OrigPlace.TimelineInSec)*s.Speed
	lo := s.OrigRange.SourceInSec + s.Constraints.MinDurationSec
	hi := math.Inf(1)
	if s.Constraints.MaxSourceDurationSec > 0 {
		hi = s.Constraints.MaxSourceDurationSec
	}
	bounded := clamp(sourceOut, lo, hi)
	if bounded != sourceOut {
		sourceOut = bounded
		result = snap.Result{}
	}

	duration := (sourceOut - s.OrigRange.SourceInSec) / s.Speed
	return Preview{
		Place: timeline.ClipPlace{TimelineInSec: s.OrigPlace.TimelineInSec, DurationSec: duration},
		Range: timeline.ClipRange{SourceInSec: s.OrigRange.SourceInSec, SourceOutSec: sourceOut},
		Snap:  result,
	}
}

// adjustEdge applies snapping and grid rounding to a moving edge. A snap
// hit wins outright; grid rounding is the fallback when nothing snaps.
func adjustEdge(edge float64, c Constraints) (float64, snap.Result) {
	result := snap.Resolve(edge, c.SnapPoints, c.SnapThresholdSec)
	if result.Snapped {
		return result.Point.Time, result
	}
	if c.GridIntervalSec > 0 {
		edge = math.Round(edge/c.GridIntervalSec) * c.GridIntervalSec
	}
	return edge, result
}

func finite(v float64) bool {
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
