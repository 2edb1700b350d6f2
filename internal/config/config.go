// Package config loads tunable defaults for the timeline core from the
// environment. Libraries take plain values; only the CLI entry point reads
// the environment, once.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Defaults are the environment-tunable knobs.
type Defaults struct {
	// SnapThresholdSec is the maximum snap distance in timeline seconds.
	SnapThresholdSec float64 `env:"SPLICEKIT_SNAP_THRESHOLD" envDefault:"0.05"`

	// GraceWindowMS is how long after a bridge push an untagged store
	// notification is attributed to the engine.
	GraceWindowMS int `env:"SPLICEKIT_GRACE_WINDOW_MS" envDefault:"50"`

	// MaxFrameDeltaMS clamps the elapsed time a single frame may advance.
	MaxFrameDeltaMS int `env:"SPLICEKIT_MAX_FRAME_DELTA_MS" envDefault:"250"`

	// DefaultFPS backs frame stepping when no rate is supplied.
	DefaultFPS int `env:"SPLICEKIT_DEFAULT_FPS" envDefault:"30"`

	// DragActivationPx is the pointer travel that turns a click into a drag.
	DragActivationPx float64 `env:"SPLICEKIT_DRAG_ACTIVATION_PX" envDefault:"3"`
}

// Load parses the defaults from environment variables.
func Load() (Defaults, error) {
	var d Defaults
	if err := env.Parse(&d); err != nil {
		return Defaults{}, fmt.Errorf("parse env: %w", err)
	}
	return d, nil
}

// GraceWindow returns the grace window as a duration.
func (d Defaults) GraceWindow() time.Duration {
	return time.Duration(d.GraceWindowMS) * time.Millisecond
}

// MaxFrameDelta returns the frame delta clamp as a duration.
func (d Defaults) MaxFrameDelta() time.Duration {
	return time.Duration(d.MaxFrameDeltaMS) * time.Millisecond
}
