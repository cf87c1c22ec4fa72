package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Step: 0, Seq: 1, Runner: "main", Span: "a", Kind: "entered_forward", Position: 0},
		{Step: 0, Seq: 2, Runner: "main", Span: "b", Kind: "entered_forward", Position: 3},
		{Step: 1, Seq: 3, Runner: "main", Span: "a", Kind: "exited_forward", Position: 5},
	}
}

func TestAssertEventsContain(t *testing.T) {
	trace := sampleTrace()

	t.Run("match", func(t *testing.T) {
		err := assertEventsContain(trace, Assertion{Runner: "main", Span: "a", Kind: "exited_forward"})
		assert.NoError(t, err)
	})

	t.Run("partial filters", func(t *testing.T) {
		err := assertEventsContain(trace, Assertion{Span: "b"})
		assert.NoError(t, err)
	})

	t.Run("no match", func(t *testing.T) {
		err := assertEventsContain(trace, Assertion{Span: "a", Kind: "entered_backward"})
		assert.Error(t, err)

		var ae *AssertionError
		assert.ErrorAs(t, err, &ae)
		assert.Equal(t, AssertEventsContain, ae.Type)
		assert.Contains(t, ae.Error(), "Full trace")
	})
}

func TestAssertEventsOrder(t *testing.T) {
	trace := sampleTrace()

	t.Run("exact order", func(t *testing.T) {
		err := assertEventsOrder(trace, Assertion{Events: []EventRef{
			{Span: "a", Kind: "entered_forward"},
			{Span: "b", Kind: "entered_forward"},
			{Span: "a", Kind: "exited_forward"},
		}})
		assert.NoError(t, err)
	})

	t.Run("subsequence", func(t *testing.T) {
		err := assertEventsOrder(trace, Assertion{Events: []EventRef{
			{Span: "a", Kind: "entered_forward"},
			{Span: "a", Kind: "exited_forward"},
		}})
		assert.NoError(t, err)
	})

	t.Run("wrong order", func(t *testing.T) {
		err := assertEventsOrder(trace, Assertion{Events: []EventRef{
			{Span: "a", Kind: "exited_forward"},
			{Span: "b", Kind: "entered_forward"},
		}})
		assert.Error(t, err)
	})

	t.Run("missing event", func(t *testing.T) {
		err := assertEventsOrder(trace, Assertion{Events: []EventRef{
			{Span: "c", Kind: "entered_forward"},
		}})
		assert.Error(t, err)
	})
}

func TestAssertEventsCount(t *testing.T) {
	trace := sampleTrace()

	t.Run("filtered count", func(t *testing.T) {
		err := assertEventsCount(trace, Assertion{Span: "a", Count: 2})
		assert.NoError(t, err)
	})

	t.Run("unfiltered counts everything", func(t *testing.T) {
		err := assertEventsCount(trace, Assertion{Count: 3})
		assert.NoError(t, err)
	})

	t.Run("zero count", func(t *testing.T) {
		err := assertEventsCount(trace, Assertion{Span: "c", Count: 0})
		assert.NoError(t, err)
	})

	t.Run("wrong count", func(t *testing.T) {
		err := assertEventsCount(trace, Assertion{Span: "a", Count: 1})
		assert.Error(t, err)
	})
}

func TestAssertFinalPosition(t *testing.T) {
	positions := map[string]float64{"main": 8}

	t.Run("match", func(t *testing.T) {
		err := assertFinalPosition(positions, Assertion{Runner: "main", Position: 8})
		assert.NoError(t, err)
	})

	t.Run("within tolerance", func(t *testing.T) {
		err := assertFinalPosition(positions, Assertion{Runner: "main", Position: 8 + 1e-12})
		assert.NoError(t, err)
	})

	t.Run("mismatch", func(t *testing.T) {
		err := assertFinalPosition(positions, Assertion{Runner: "main", Position: 7})
		assert.Error(t, err)
	})

	t.Run("unknown runner", func(t *testing.T) {
		err := assertFinalPosition(positions, Assertion{Runner: "ghost", Position: 0})
		assert.Error(t, err)
	})
}

func TestEvaluateAssertions_CollectsAllFailures(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.Positions = map[string]float64{"main": 8}

	failures := EvaluateAssertions(result, []Assertion{
		{Type: AssertEventsContain, Span: "a"},                    // passes
		{Type: AssertEventsCount, Span: "a", Count: 5},            // fails
		{Type: AssertFinalPosition, Runner: "main", Position: 1},  // fails
		{Type: "bogus"},                                           // fails
	})

	assert.Len(t, failures, 3)
}
