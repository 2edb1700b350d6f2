// Package harness runs scripted playback scenarios against a fully wired
// engine + bridge + in-memory store, producing a deterministic trace.
// Scenarios are YAML files; traces are compared against golden files in
// tests and printed by the simulate command.
package harness

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a scripted playback session.
type Scenario struct {
	// Name uniquely identifies this scenario; it is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what the scenario exercises.
	Description string `yaml:"description,omitempty"`

	// Duration is the timeline duration in seconds.
	Duration float64 `yaml:"duration"`

	// Rate is the initial playback rate; 0 means 1.0.
	Rate float64 `yaml:"rate,omitempty"`

	// Loop sets the initial loop flag.
	Loop bool `yaml:"loop,omitempty"`

	// MaxFrameDeltaMS overrides the engine's frame delta clamp. 0 keeps
	// the engine default.
	MaxFrameDeltaMS int `yaml:"max_frame_delta_ms,omitempty"`

	// Steps is the script, executed in order.
	Steps []Step `yaml:"steps"`
}

// Step is one scripted operation. Which value field applies depends on Op.
type Step struct {
	// Op is one of: play, pause, toggle, seek, seek_forward, seek_backward,
	// step_forward, step_backward, go_to_start, go_to_end, set_rate,
	// set_loop, toggle_loop, set_duration, advance.
	Op string `yaml:"op"`

	// Time is the seek target (seek).
	Time float64 `yaml:"time,omitempty"`

	// Amount is the relative seek distance (seek_forward, seek_backward).
	Amount float64 `yaml:"amount,omitempty"`

	// Rate is the playback rate (set_rate).
	Rate float64 `yaml:"rate,omitempty"`

	// FPS is the frame rate for stepping (step_forward, step_backward).
	FPS float64 `yaml:"fps,omitempty"`

	// Loop is the loop flag (set_loop).
	Loop bool `yaml:"loop,omitempty"`

	// MS is the wall-clock advance for one frame (advance).
	MS int `yaml:"ms,omitempty"`

	// Duration is the new timeline duration (set_duration).
	Duration float64 `yaml:"duration,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the scenario is runnable.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario name is required")
	}
	if math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) || s.Duration < 0 {
		return fmt.Errorf("scenario %s: duration must be finite and >= 0", s.Name)
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario %s: at least one step is required", s.Name)
	}
	for i, step := range s.Steps {
		if !knownOp(step.Op) {
			return fmt.Errorf("scenario %s: step %d: unknown op %q", s.Name, i, step.Op)
		}
		if step.Op == "advance" && step.MS <= 0 {
			return fmt.Errorf("scenario %s: step %d: advance requires ms > 0", s.Name, i)
		}
	}
	return nil
}

func knownOp(op string) bool {
	switch op {
	case "play", "pause", "toggle", "seek", "seek_forward", "seek_backward",
		"step_forward", "step_backward", "go_to_start", "go_to_end",
		"set_rate", "set_loop", "toggle_loop", "set_duration", "advance":
		return true
	}
	return false
}
