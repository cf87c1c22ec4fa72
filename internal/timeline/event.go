package timeline

// Kind distinguishes the four directional crossings.
type Kind int

const (
	// EnteredForward fires when the position crosses a span's start moving up.
	EnteredForward Kind = iota + 1
	// EnteredBackward fires when the position crosses a span's end moving down.
	EnteredBackward
	// ExitedForward fires when the position crosses a span's end moving up.
	ExitedForward
	// ExitedBackward fires when the position crosses a span's start moving down.
	ExitedBackward
)

// String returns the snake_case name used in traces and stored sessions.
func (k Kind) String() string {
	switch k {
	case EnteredForward:
		return "entered_forward"
	case EnteredBackward:
		return "entered_backward"
	case ExitedForward:
		return "exited_forward"
	case ExitedBackward:
		return "exited_backward"
	}
	return "unknown"
}

// KindFromString parses a trace kind name. Returns 0 for unknown names.
func KindFromString(s string) Kind {
	switch s {
	case "entered_forward":
		return EnteredForward
	case "entered_backward":
		return EnteredBackward
	case "exited_forward":
		return ExitedForward
	case "exited_backward":
		return ExitedBackward
	}
	return 0
}

// Entered reports whether the kind is an entry crossing.
func (k Kind) Entered() bool {
	return k == EnteredForward || k == EnteredBackward
}

// Exited reports whether the kind is an exit crossing.
func (k Kind) Exited() bool {
	return k == ExitedForward || k == ExitedBackward
}

// Event is one crossing, produced and consumed within a single tick.
// Events are never persisted by the core itself; the optional trace store
// records them for replay and inspection.
type Event struct {
	// Runner identifies the runner whose position crossed.
	Runner RunnerID

	// Span identifies the crossed span.
	Span SpanID

	// Kind is the directional crossing that occurred.
	Kind Kind

	// Position is the runner position at the crossing: the span boundary
	// actually crossed, or the current position for a span that fires its
	// entry on first evaluation. Using the boundary value keeps fast ticks
	// and slow ticks byte-identical.
	Position Time

	// Seq is the logical sequence number stamped by the engine's clock.
	// Seq gives a total order across runners within a run.
	Seq int64
}
