package timeline

// SpanID identifies a span on its runner's timeline.
type SpanID string

// Span is an interval [Start, End] on a runner's local timeline.
//
// A span is immutable once created. Rescheduling is remove-then-add: the
// re-added span counts as a fresh span for crossing purposes (it fires an
// Entered event if the runner's position is already inside it).
//
// Start == End is a valid zero-width span: an instantaneous marker that
// fires Entered then Exited within the tick that passes over it.
type Span struct {
	// ID is the span's stable identity, unique within its runner.
	ID SpanID

	// Start is the inclusive lower bound.
	Start Time

	// End is the inclusive upper bound. Start <= End always holds.
	End Time
}

// NewSpan creates a span, rejecting start > end with an INVALID_RANGE
// error. The bounds are never silently swapped or clamped: guessing intent
// would produce surprising event ordering for the consumer.
func NewSpan(id SpanID, start, end Time) (Span, error) {
	if start > end {
		return Span{}, newRangeError(id, start, end)
	}
	return Span{ID: id, Start: start, End: end}, nil
}

// MustSpan is NewSpan that panics on an invalid range. For literals in
// tests and examples.
func MustSpan(id SpanID, start, end Time) Span {
	s, err := NewSpan(id, start, end)
	if err != nil {
		panic(err)
	}
	return s
}

// Contains reports whether p lies inside the span (bounds inclusive).
func (s Span) Contains(p Time) bool {
	return s.Start <= p && p <= s.End
}

// Length returns End - Start. Zero for instantaneous markers.
func (s Span) Length() Time {
	return s.End - s.Start
}
