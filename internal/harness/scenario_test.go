package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestDefinition writes a minimal CUE definition file for testing.
func createTestDefinition(t *testing.T, dir, name string) string {
	t.Helper()
	defsDir := filepath.Join(dir, "defs")
	if err := os.MkdirAll(defsDir, 0755); err != nil {
		t.Fatal(err)
	}
	defPath := filepath.Join(defsDir, name)
	content := `timeline: main: {
	span: a: {start: 0.0, end: 5.0}
}
`
	if err := os.WriteFile(defPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return defPath
}

func TestLoadScenario_ValidFile(t *testing.T) {
	dir := t.TempDir()
	defPath := createTestDefinition(t, dir, "main.cue")
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: test_scenario
description: "Playback smoke test"
definition: ` + defPath + `
steps:
  - tick: 4.0
assertions:
  - type: events_contain
    runner: main
    span: a
    kind: entered_forward
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, defPath, scenario.Definition)
	require.Len(t, scenario.Steps, 1)
	require.NotNil(t, scenario.Steps[0].Tick)
	assert.Equal(t, 4.0, *scenario.Steps[0].Tick)
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertEventsContain, scenario.Assertions[0].Type)
}

func TestLoadScenario_ResolvesRelativeDefinition(t *testing.T) {
	dir := t.TempDir()
	createTestDefinition(t, dir, "main.cue")
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: relative_path
description: "Definition path resolves against scenario dir"
definition: defs/main.cue
steps:
  - tick: 1.0
assertions:
  - type: final_position
    runner: main
    position: 1.0
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "defs", "main.cue"), scenario.Definition)
}

func TestLoadScenario_InlineSource(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "test.yaml")

	content := `
name: inline
description: "Inline CUE source"
source: |
  timeline: main: {
          span: a: {start: 0.0, end: 5.0}
  }
steps:
  - tick: 1.0
assertions:
  - type: final_position
    runner: main
    position: 1.0
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	scenario, err := LoadScenario(scenarioPath)
	require.NoError(t, err)
	assert.Contains(t, scenario.Source, "timeline")
}

func TestLoadScenario_RejectsUnknownFields(t *testing.T) {
	dir := t.TempDir()
	scenarioPath := filepath.Join(dir, "test.yaml")

	// "assertion" (singular) is a typo for "assertions".
	content := `
name: typo
description: "x"
source: "timeline: main: {}"
steps:
  - tick: 1.0
assertion:
  - type: events_count
`
	require.NoError(t, os.WriteFile(scenarioPath, []byte(content), 0644))

	_, err := LoadScenario(scenarioPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestValidateScenario_RequiredFields(t *testing.T) {
	tick := 1.0
	base := func() *Scenario {
		return &Scenario{
			Name:        "s",
			Description: "d",
			Source:      "timeline: main: {}",
			Steps:       []Step{{Tick: &tick}},
			Assertions:  []Assertion{{Type: AssertEventsCount}},
		}
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, validateScenario(base()))
	})

	t.Run("missing name", func(t *testing.T) {
		s := base()
		s.Name = ""
		assert.ErrorContains(t, validateScenario(s), "name is required")
	})

	t.Run("missing description", func(t *testing.T) {
		s := base()
		s.Description = ""
		assert.ErrorContains(t, validateScenario(s), "description is required")
	})

	t.Run("missing definition and source", func(t *testing.T) {
		s := base()
		s.Source = ""
		assert.ErrorContains(t, validateScenario(s), "definition or source")
	})

	t.Run("both definition and source", func(t *testing.T) {
		s := base()
		s.Definition = "x.cue"
		assert.ErrorContains(t, validateScenario(s), "mutually exclusive")
	})

	t.Run("missing steps", func(t *testing.T) {
		s := base()
		s.Steps = nil
		assert.ErrorContains(t, validateScenario(s), "steps list is required")
	})

	t.Run("missing assertions", func(t *testing.T) {
		s := base()
		s.Assertions = nil
		assert.ErrorContains(t, validateScenario(s), "assertions list is required")
	})
}

func TestValidateStep(t *testing.T) {
	tick := 1.0
	negative := -1.0

	t.Run("empty step", func(t *testing.T) {
		assert.ErrorContains(t, validateStep(0, &Step{}), "empty step")
	})

	t.Run("two actions", func(t *testing.T) {
		step := &Step{Tick: &tick, Seek: &SeekStep{Runner: "main"}}
		assert.ErrorContains(t, validateStep(0, step), "exactly one action")
	})

	t.Run("negative tick", func(t *testing.T) {
		step := &Step{Tick: &negative}
		assert.ErrorContains(t, validateStep(0, step), "non-negative")
	})

	t.Run("seek without runner", func(t *testing.T) {
		step := &Step{Seek: &SeekStep{To: 2}}
		assert.ErrorContains(t, validateStep(0, step), "seek.runner")
	})

	t.Run("add_span without span", func(t *testing.T) {
		step := &Step{AddSpan: &AddSpanStep{Runner: "main"}}
		assert.ErrorContains(t, validateStep(0, step), "add_span")
	})
}

func TestValidateAssertion(t *testing.T) {
	t.Run("missing type", func(t *testing.T) {
		assert.ErrorContains(t, validateAssertion(0, &Assertion{}), "type is required")
	})

	t.Run("unknown type", func(t *testing.T) {
		a := &Assertion{Type: "trace_contains"}
		assert.ErrorContains(t, validateAssertion(0, a), "unknown assertion type")
	})

	t.Run("events_contain without filters", func(t *testing.T) {
		a := &Assertion{Type: AssertEventsContain}
		assert.ErrorContains(t, validateAssertion(0, a), "at least one of")
	})

	t.Run("events_order without events", func(t *testing.T) {
		a := &Assertion{Type: AssertEventsOrder}
		assert.ErrorContains(t, validateAssertion(0, a), "events list is required")
	})

	t.Run("events_count negative", func(t *testing.T) {
		a := &Assertion{Type: AssertEventsCount, Count: -1}
		assert.ErrorContains(t, validateAssertion(0, a), "non-negative")
	})

	t.Run("final_position without runner", func(t *testing.T) {
		a := &Assertion{Type: AssertFinalPosition}
		assert.ErrorContains(t, validateAssertion(0, a), "runner is required")
	})
}
