package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a playback test scenario.
// Scenarios run a compiled timeline definition through a scripted sequence
// of ticks and mutations, then assert on the resulting event trace and
// final runner positions.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Definition is a path to a CUE definition file to compile and load.
	// Relative paths resolve against the scenario file location.
	// Exactly one of Definition and Source must be set.
	Definition string `yaml:"definition,omitempty"`

	// Source is an inline CUE definition. Keeps small scenarios
	// self-contained in one file.
	Source string `yaml:"source,omitempty"`

	// Steps is the scripted playback: ticks and runner mutations,
	// executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and positions.
	// Supported types: events_contain, events_order, events_count,
	// final_position
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one scripted playback action. Exactly one field must be set.
type Step struct {
	// Tick advances the engine by the given delta seconds.
	Tick *float64 `yaml:"tick,omitempty"`

	// Seek repositions a runner, evaluating the crossed gap immediately.
	Seek *SeekStep `yaml:"seek,omitempty"`

	// Pause sets a runner's pause flag.
	Pause *PauseStep `yaml:"pause,omitempty"`

	// Speed sets a runner's speed scale.
	Speed *SpeedStep `yaml:"speed,omitempty"`

	// Direction sets a runner's playback direction.
	Direction *DirectionStep `yaml:"direction,omitempty"`

	// Skip sets a runner's skip flag.
	Skip *SkipStep `yaml:"skip,omitempty"`

	// AddSpan schedules a span on a runner mid-flight.
	AddSpan *AddSpanStep `yaml:"add_span,omitempty"`

	// RemoveSpan unschedules a span.
	RemoveSpan *RemoveSpanStep `yaml:"remove_span,omitempty"`
}

// SeekStep repositions a runner.
type SeekStep struct {
	Runner string  `yaml:"runner"`
	To     float64 `yaml:"to"`
}

// PauseStep sets a runner's pause flag.
type PauseStep struct {
	Runner string `yaml:"runner"`
	Paused bool   `yaml:"paused"`
}

// SpeedStep sets a runner's speed scale.
type SpeedStep struct {
	Runner string  `yaml:"runner"`
	Value  float64 `yaml:"value"`
}

// DirectionStep sets a runner's playback direction.
type DirectionStep struct {
	Runner   string `yaml:"runner"`
	Backward bool   `yaml:"backward"`
}

// SkipStep sets a runner's skip flag.
type SkipStep struct {
	Runner  string `yaml:"runner"`
	Skipped bool   `yaml:"skipped"`
}

// AddSpanStep schedules a span on a runner.
type AddSpanStep struct {
	Runner string  `yaml:"runner"`
	Span   string  `yaml:"span"`
	Start  float64 `yaml:"start"`
	End    float64 `yaml:"end"`
}

// RemoveSpanStep unschedules a span from a runner.
type RemoveSpanStep struct {
	Runner string `yaml:"runner"`
	Span   string `yaml:"span"`
}

// Assertion validates the trace or final positions.
type Assertion struct {
	// Type specifies the assertion type:
	// - "events_contain": Check a matching event appears in the trace
	// - "events_order": Check events appear in the given order
	// - "events_count": Check matching events appear exactly N times
	// - "final_position": Check a runner's position after all steps
	Type string `yaml:"type"`

	// Runner filters by runner id (events_contain, events_count) or
	// names the runner to check (final_position).
	Runner string `yaml:"runner,omitempty"`

	// Span filters by span id (events_contain, events_count).
	Span string `yaml:"span,omitempty"`

	// Kind filters by event kind name, e.g. "entered_forward"
	// (events_contain, events_count).
	Kind string `yaml:"kind,omitempty"`

	// Count is the expected number of matches (events_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected event order (events_order). Matches are
	// subsequence matches: intervening events are allowed.
	Events []EventRef `yaml:"events,omitempty"`

	// Position is the expected final position (final_position).
	Position float64 `yaml:"position,omitempty"`
}

// EventRef identifies one expected event in an events_order assertion.
type EventRef struct {
	Runner string `yaml:"runner"`
	Span   string `yaml:"span"`
	Kind   string `yaml:"kind"`
}

// Assertion type constants.
const (
	AssertEventsContain = "events_contain"
	AssertEventsOrder   = "events_order"
	AssertEventsCount   = "events_count"
	AssertFinalPosition = "final_position"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
// A relative Definition path is resolved against the scenario file's
// directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Definition != "" && !filepath.IsAbs(scenario.Definition) {
		scenario.Definition = filepath.Join(filepath.Dir(path), scenario.Definition)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Definition == "" && s.Source == "" {
		return fmt.Errorf("one of definition or source is required")
	}
	if s.Definition != "" && s.Source != "" {
		return fmt.Errorf("definition and source are mutually exclusive")
	}

	if s.Definition != "" {
		if _, err := os.Stat(s.Definition); os.IsNotExist(err) {
			return fmt.Errorf("definition file not found: %s", s.Definition)
		}
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that exactly one action is set and its fields are
// usable.
func validateStep(index int, s *Step) error {
	set := 0
	if s.Tick != nil {
		set++
		if *s.Tick < 0 {
			return fmt.Errorf("steps[%d]: tick delta must be non-negative", index)
		}
	}
	if s.Seek != nil {
		set++
		if s.Seek.Runner == "" {
			return fmt.Errorf("steps[%d]: seek.runner is required", index)
		}
	}
	if s.Pause != nil {
		set++
		if s.Pause.Runner == "" {
			return fmt.Errorf("steps[%d]: pause.runner is required", index)
		}
	}
	if s.Speed != nil {
		set++
		if s.Speed.Runner == "" {
			return fmt.Errorf("steps[%d]: speed.runner is required", index)
		}
	}
	if s.Direction != nil {
		set++
		if s.Direction.Runner == "" {
			return fmt.Errorf("steps[%d]: direction.runner is required", index)
		}
	}
	if s.Skip != nil {
		set++
		if s.Skip.Runner == "" {
			return fmt.Errorf("steps[%d]: skip.runner is required", index)
		}
	}
	if s.AddSpan != nil {
		set++
		if s.AddSpan.Runner == "" || s.AddSpan.Span == "" {
			return fmt.Errorf("steps[%d]: add_span.runner and add_span.span are required", index)
		}
	}
	if s.RemoveSpan != nil {
		set++
		if s.RemoveSpan.Runner == "" || s.RemoveSpan.Span == "" {
			return fmt.Errorf("steps[%d]: remove_span.runner and remove_span.span are required", index)
		}
	}

	if set == 0 {
		return fmt.Errorf("steps[%d]: empty step", index)
	}
	if set > 1 {
		return fmt.Errorf("steps[%d]: exactly one action per step", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertEventsContain:
		if a.Runner == "" && a.Span == "" && a.Kind == "" {
			return fmt.Errorf("assertions[%d]: at least one of runner, span, kind is required for events_contain", index)
		}
	case AssertEventsOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for events_order", index)
		}
	case AssertEventsCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for events_count", index)
		}
	case AssertFinalPosition:
		if a.Runner == "" {
			return fmt.Errorf("assertions[%d]: runner is required for final_position", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
