package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_SimplePlayback(t *testing.T) {
	scenario := &Scenario{
		Name:        "golden_playback",
		Description: "One span crossed on the first tick",
		Source: `timeline: main: {
	span: a: {start: 0.0, end: 5.0}
}
`,
		Steps: []Step{tick(3)},
		Assertions: []Assertion{
			{Type: AssertEventsCount, Runner: "main", Count: 1},
		},
	}

	require.NoError(t, RunWithGolden(t, scenario))
}

func TestAssertGolden_PrebuiltResult(t *testing.T) {
	result := NewResult()
	result.Trace = []TraceEvent{
		{Step: 0, Seq: 1, Runner: "main", Span: "a", Kind: "entered_forward", Position: 0},
	}
	result.Positions = map[string]float64{"main": 3}

	require.NoError(t, AssertGolden(t, "golden_playback", result))
}
