package timeline

// Cross is the crossing algorithm: given a previous and a new position, it
// reports which directional crossings of span occurred, in temporal order.
//
// Cross is a pure function. It returns 0, 1, or 2 events: a single tick's
// delta can be large enough to both enter and exit a short span, and a
// seek can straddle a span entirely, in which case exactly one Entered and
// one Exited event bound the span regardless of how large the gap is.
// Multiple full traversals within one call cannot be expressed and must
// not be requested: boundary handling (wrap, reflect) always resolves at a
// tick boundary, never mid-evaluation.
//
// The formulation is boundary-crossing, not containment comparison:
//
//	forward:  Entered iff prev <  span.Start <= next
//	          Exited  iff prev <= span.End   <  next
//	backward: Entered iff next <= span.End   <  prev
//	          Exited  iff next <  span.Start <= prev
//
// This is what makes a 10000-second seek and a 16-millisecond frame behave
// identically: a rhythm game must not miss a note because one frame's
// delta skipped past it.
//
// Stillness is idempotent: prev == next never fires, regardless of
// containment. Re-entry for a span whose position is already inside on
// first evaluation is the engine's responsibility (see Engine), not
// Cross's: Cross only reports movement across bounds.
//
// Returned events carry Span, Kind, and Position; Runner and Seq are
// stamped by the caller.
func Cross(prev, next Time, span Span) []Event {
	if prev == next {
		return nil
	}

	var events []Event
	if next > prev {
		if prev < span.Start && span.Start <= next {
			events = append(events, Event{Span: span.ID, Kind: EnteredForward, Position: span.Start})
		}
		if prev <= span.End && span.End < next {
			events = append(events, Event{Span: span.ID, Kind: ExitedForward, Position: span.End})
		}
		return events
	}

	// Moving down: the end bound is crossed before the start bound, so the
	// entry event is appended first to preserve temporal order.
	if next <= span.End && span.End < prev {
		events = append(events, Event{Span: span.ID, Kind: EnteredBackward, Position: span.End})
	}
	if next < span.Start && span.Start <= prev {
		events = append(events, Event{Span: span.ID, Kind: ExitedBackward, Position: span.Start})
	}
	return events
}
