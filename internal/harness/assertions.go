package harness

import (
	"fmt"
	"math"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for i, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] step=%d seq=%d %s/%s %s @%v\n",
			i+1, event.Step, event.Seq, event.Runner, event.Span, event.Kind, event.Position)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and
// returns the failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertEventsContain:
			err = assertEventsContain(result.Trace, assertion)
		case AssertEventsOrder:
			err = assertEventsOrder(result.Trace, assertion)
		case AssertEventsCount:
			err = assertEventsCount(result.Trace, assertion)
		case AssertFinalPosition:
			err = assertFinalPosition(result.Positions, assertion)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// matchEvent checks an event against an assertion's filters. Empty
// filter fields match anything.
func matchEvent(ev TraceEvent, runner, span, kind string) bool {
	if runner != "" && ev.Runner != runner {
		return false
	}
	if span != "" && ev.Span != span {
		return false
	}
	if kind != "" && ev.Kind != kind {
		return false
	}
	return true
}

// assertEventsContain checks that at least one trace event matches the
// assertion's filters.
func assertEventsContain(trace []TraceEvent, assertion Assertion) error {
	for _, ev := range trace {
		if matchEvent(ev, assertion.Runner, assertion.Span, assertion.Kind) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertEventsContain,
		Expected: fmt.Sprintf("event runner=%q span=%q kind=%q", assertion.Runner, assertion.Span, assertion.Kind),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertEventsOrder checks that the referenced events appear in the
// given order. Matches are subsequence matches: intervening events are
// allowed.
func assertEventsOrder(trace []TraceEvent, assertion Assertion) error {
	next := 0
	for _, ev := range trace {
		if next >= len(assertion.Events) {
			break
		}
		want := assertion.Events[next]
		if matchEvent(ev, want.Runner, want.Span, want.Kind) {
			next++
		}
	}

	if next < len(assertion.Events) {
		missing := assertion.Events[next]
		return &AssertionError{
			Type:     AssertEventsOrder,
			Expected: fmt.Sprintf("events in order: %v", assertion.Events),
			Actual:   fmt.Sprintf("no match for events[%d] = %+v", next, missing),
			Trace:    trace,
		}
	}
	return nil
}

// assertEventsCount checks that exactly Count trace events match the
// assertion's filters.
func assertEventsCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, ev := range trace {
		if matchEvent(ev, assertion.Runner, assertion.Span, assertion.Kind) {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertEventsCount,
			Expected: fmt.Sprintf("%d events matching runner=%q span=%q kind=%q", assertion.Count, assertion.Runner, assertion.Span, assertion.Kind),
			Actual:   fmt.Sprintf("%d events", count),
			Trace:    trace,
		}
	}
	return nil
}

// positionTolerance absorbs float accumulation across many ticks.
const positionTolerance = 1e-9

// assertFinalPosition checks a runner's position after all steps.
func assertFinalPosition(positions map[string]float64, assertion Assertion) error {
	pos, ok := positions[assertion.Runner]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalPosition,
			Expected: fmt.Sprintf("runner %q present", assertion.Runner),
			Actual:   "runner not registered",
		}
	}

	if math.Abs(pos-assertion.Position) > positionTolerance {
		return &AssertionError{
			Type:     AssertFinalPosition,
			Expected: fmt.Sprintf("runner %q at %v", assertion.Runner, assertion.Position),
			Actual:   fmt.Sprintf("position %v", pos),
		}
	}
	return nil
}
