package timeline

import (
	"math"
)

// RunnerID identifies one independently-paced timeline.
type RunnerID string

// Direction is the way a runner's clock is ticking.
type Direction int

const (
	// Forward advances the position by positive deltas.
	Forward Direction = iota
	// Backward advances the position by negated deltas.
	Backward
)

// String returns "forward" or "backward".
func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

func (d Direction) sign() float64 {
	if d == Backward {
		return -1
	}
	return 1
}

func (d Direction) flip() Direction {
	if d == Backward {
		return Forward
	}
	return Backward
}

// RepeatPolicy governs what happens when a runner's position reaches a
// timeline boundary.
type RepeatPolicy int

const (
	// RepeatNone clamps at the boundary; the runner completes and further
	// ticks produce no movement until the position is externally reset.
	RepeatNone RepeatPolicy = iota
	// RepeatLoop wraps to the opposite boundary, preserving the overshoot
	// remainder. The wrap and the re-entry at the wrapped position are
	// never fused into one tick's crossing computation.
	RepeatLoop
	// RepeatPingPong flips the direction at the boundary, reflecting the
	// overshoot remainder back into the timeline.
	RepeatPingPong
)

// String returns the policy name used in definitions and scenarios.
func (p RepeatPolicy) String() string {
	switch p {
	case RepeatLoop:
		return "loop"
	case RepeatPingPong:
		return "pingpong"
	}
	return "none"
}

// Unbounded marks a repeat budget with no limit.
const Unbounded = -1

// Ended is the notification emitted when a runner reaches a timeline
// boundary: on every loop wrap or ping-pong reflection, and once when a
// runner completes.
type Ended struct {
	// Runner is the runner that reached a boundary.
	Runner RunnerID

	// Direction is the runner's direction after boundary handling. For a
	// ping-pong reflection this is the already-flipped direction.
	Direction Direction

	// Completed reports that the runner will not move again until it is
	// externally reset (policy RepeatNone, or repeat budget exhausted).
	Completed bool
}

// Runner owns a local clock position and the set of spans it schedules.
//
// A runner is created by the consumer, mutated every frame by the engine's
// tick, and destroyed by the consumer; its spans are owned exclusively and
// die with it. All state access is single-threaded with the tick loop: if
// a host distributes runners across worker threads, each runner must be
// exclusively owned for the duration of its own tick.
type Runner struct {
	id        RunnerID
	position  Time
	previous  Time
	direction Direction
	speed     float64
	paused    bool
	skipped   bool
	completed bool
	policy    RepeatPolicy
	remaining int // boundary repeats left; Unbounded for no limit

	spans  []Span // insertion order, the evaluation order every tick
	index  map[SpanID]int
	seen   map[SpanID]bool
	length Time // derived: max span end

	sink    Sink
	clock   *Clock
	onEnded func(Ended)
}

// RunnerOption configures a runner at construction.
type RunnerOption func(*Runner)

// WithSpans schedules spans at construction, in the given order.
// Panics on a duplicate span id; use AddSpan for fallible scheduling.
func WithSpans(spans ...Span) RunnerOption {
	return func(r *Runner) {
		for _, s := range spans {
			if err := r.AddSpan(s); err != nil {
				panic(err)
			}
		}
	}
}

// WithRepeat sets the repeat policy with an unbounded budget.
func WithRepeat(policy RepeatPolicy) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
		r.remaining = Unbounded
	}
}

// WithRepeatTimes sets the repeat policy with a bounded budget: after
// times boundary hits the runner completes.
func WithRepeatTimes(policy RepeatPolicy, times int) RunnerOption {
	return func(r *Runner) {
		r.policy = policy
		if times < 0 {
			times = 0
		}
		r.remaining = times
	}
}

// WithSpeed sets the initial speed scale.
func WithSpeed(speed float64) RunnerOption {
	return func(r *Runner) { r.SetSpeed(speed) }
}

// WithDirection sets the initial playback direction.
func WithDirection(d Direction) RunnerOption {
	return func(r *Runner) { r.direction = d }
}

// WithPaused sets the initial pause flag.
func WithPaused(paused bool) RunnerOption {
	return func(r *Runner) { r.paused = paused }
}

// WithSink replaces the default in-core event sink with a host-provided
// delivery mechanism.
func WithSink(sink Sink) RunnerOption {
	return func(r *Runner) { r.sink = sink }
}

// NewRunner creates a runner at position 0, playing forward at speed 1
// with no repeat policy.
func NewRunner(id RunnerID, opts ...RunnerOption) *Runner {
	r := &Runner{
		id:        id,
		direction: Forward,
		speed:     1,
		policy:    RepeatNone,
		remaining: Unbounded,
		index:     make(map[SpanID]int),
		seen:      make(map[SpanID]bool),
		sink:      NewEventSink(),
		clock:     NewClock(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ID returns the runner's identity.
func (r *Runner) ID() RunnerID { return r.id }

// Position returns the current clock position.
func (r *Runner) Position() Time { return r.position }

// PreviousPosition returns the position as of the end of the last
// evaluated segment. It differs from Position only while a wrap or seek
// gap is pending evaluation.
func (r *Runner) PreviousPosition() Time { return r.previous }

// Direction returns the current playback direction.
func (r *Runner) Direction() Direction { return r.direction }

// SetDirection sets the playback direction.
func (r *Runner) SetDirection(d Direction) { r.direction = d }

// Speed returns the speed scale applied to tick deltas.
func (r *Runner) Speed() float64 { return r.speed }

// SetSpeed sets the speed scale. Negative values saturate to zero; use
// SetDirection for reverse playback.
func (r *Runner) SetSpeed(speed float64) {
	if speed < 0 || math.IsNaN(speed) {
		speed = 0
	}
	r.speed = speed
}

// Paused returns the pause flag.
func (r *Runner) Paused() bool { return r.paused }

// SetPaused stops or resumes position advancement. Pausing does not clear
// pending events; they are discarded at the next tick like any others.
func (r *Runner) SetPaused(paused bool) { r.paused = paused }

// Skipped returns the skip flag.
func (r *Runner) Skipped() bool { return r.skipped }

// SetSkipped marks the runner to be left alone entirely by the engine:
// not ticked, spans not evaluated.
func (r *Runner) SetSkipped(skipped bool) { r.skipped = skipped }

// Completed reports that the runner reached a terminal boundary and will
// not move again until Seek resets it.
func (r *Runner) Completed() bool { return r.completed }

// Policy returns the repeat policy.
func (r *Runner) Policy() RepeatPolicy { return r.policy }

// RepeatsLeft returns the remaining boundary repeat budget, or Unbounded.
func (r *Runner) RepeatsLeft() int { return r.remaining }

// Length returns the runner's effective timeline length: the maximum span
// end, recomputed whenever spans are added or removed. Zero for a runner
// with no spans.
func (r *Runner) Length() Time { return r.length }

// Spans returns the scheduled spans in insertion order.
func (r *Runner) Spans() []Span {
	out := make([]Span, len(r.spans))
	copy(out, r.spans)
	return out
}

// AddSpan schedules a span. The span id must be unique on this runner.
// If the runner's position is already inside the new span, the span fires
// an Entered event on the next tick it is evaluated.
func (r *Runner) AddSpan(s Span) error {
	if s.Start > s.End {
		return newRangeError(s.ID, s.Start, s.End)
	}
	if _, exists := r.index[s.ID]; exists {
		return newDuplicateSpanError(r.id, s.ID)
	}
	r.index[s.ID] = len(r.spans)
	r.spans = append(r.spans, s)
	if s.End > r.length {
		r.length = s.End
	}
	return nil
}

// RemoveSpan unschedules a span. Removing an unknown id is a no-op; the
// return value reports whether a span was removed.
func (r *Runner) RemoveSpan(id SpanID) bool {
	idx, ok := r.index[id]
	if !ok {
		return false
	}
	r.spans = append(r.spans[:idx], r.spans[idx+1:]...)
	delete(r.index, id)
	delete(r.seen, id)
	for i := idx; i < len(r.spans); i++ {
		r.index[r.spans[i].ID] = i
	}
	r.recomputeLength()
	return true
}

func (r *Runner) recomputeLength() {
	r.length = 0
	for _, s := range r.spans {
		if s.End > r.length {
			r.length = s.End
		}
	}
}

// Seek moves the position directly. The gap between the last evaluated
// position and the target runs through the standard crossing algorithm
// immediately, exactly as if it were one fast tick; there is no separate
// seek mode. An out-of-range target gets the same clamp, wrap, or reflect
// treatment a tick would apply. Seek resets a completed runner.
//
// Events produced by a seek join the runner's current sink and are
// discarded at the next tick's start like any others, so a host seeking
// mid-frame should drain before ticking again.
func (r *Runner) Seek(to Time) {
	r.completed = false
	r.advance(float64(to))
}

// Drain returns and clears the events emitted this tick, in emission
// order. Returns nil if a custom sink was installed; the host owns
// delivery in that case.
func (r *Runner) Drain() []Event {
	if s, ok := r.sink.(*EventSink); ok {
		return s.Drain()
	}
	return nil
}

// Events returns the undrained events without consuming them. Nil for a
// custom sink.
func (r *Runner) Events() []Event {
	if s, ok := r.sink.(*EventSink); ok {
		return s.Events()
	}
	return nil
}

// Progress is the span-relative elapsed time for an active span.
type Progress struct {
	// Now is the position relative to the span's start.
	Now Time

	// Percent is Now as a fraction of the span's length. For a zero-width
	// span it is +Inf when playing forward and -Inf when playing backward;
	// the consumer decides how to treat an instantaneous marker.
	Percent float64
}

// Progress reports the span-relative progress for the given span, or
// false if the span is unknown or the position is outside it.
func (r *Runner) Progress(id SpanID) (Progress, bool) {
	idx, ok := r.index[id]
	if !ok {
		return Progress{}, false
	}
	span := r.spans[idx]
	if !span.Contains(r.position) {
		return Progress{}, false
	}
	now := r.position.Sub(span.Start)
	var pct float64
	if span.Length() > 0 {
		pct = float64(now) / float64(span.Length())
	} else if r.direction == Forward {
		pct = math.Inf(1)
	} else {
		pct = math.Inf(-1)
	}
	return Progress{Now: now, Percent: pct}, true
}

// collapse sets the previous position to the current one, with no
// evaluation. Used for paused and completed runners so stillness never
// re-fires events.
func (r *Runner) collapse() {
	r.previous = r.position
}

// advance resolves boundary handling for a raw target position, evaluates
// every span over the covered segment, and commits the new state.
//
// The raw target may lie far outside [0, length]: it is the un-clamped
// result of position + signed delta, or a seek target. Boundary handling
// is two-phase: when the segment reaches a boundary, spans are evaluated
// only up to the boundary this call, the position moves to the wrapped or
// reflected remainder, and the previous position is left at the segment's
// re-entry origin so the next tick evaluates the remaining gap.
func (r *Runner) advance(raw float64) {
	if len(r.spans) == 0 {
		// Inert runner: the position still ticks, saturating at zero, but
		// there is nothing to evaluate and no boundary to hit.
		if raw < 0 {
			raw = 0
		}
		r.position = Time(raw)
		r.previous = r.position
		return
	}

	length := float64(r.length)
	base := r.previous
	travelUp := raw > float64(base) || (raw == float64(base) && r.direction == Forward)

	var (
		evalTo     Time
		wrapped    bool
		wrapOrigin Time
		wrapPos    Time
		clearSeen  bool
		forceExit  int // +1 exit spans ending at length, -1 exit spans starting at 0
		newDir     = r.direction
		ended      *Ended
	)

	overBoundary := raw >= length && travelUp || raw < 0
	if length == 0 {
		// All spans are markers at zero. The position pins to the origin;
		// markers fire through first evaluation, never through movement.
		evalTo = 0
		if raw != 0 {
			r.completed = true
			ended = &Ended{Runner: r.id, Direction: r.direction, Completed: true}
		}
	} else if !overBoundary {
		evalTo = Time(raw)
	} else {
		switch r.policy {
		case RepeatNone:
			if travelUp {
				evalTo = Time(length)
			} else {
				evalTo = 0
			}
			r.completed = true
			ended = &Ended{Runner: r.id, Direction: r.direction, Completed: true}

		case RepeatLoop:
			hits := boundaryHits(raw, length)
			allowed := r.consumeRepeats(hits)
			if allowed < hits {
				// Budget ran out: clamp at the terminal boundary. Spans
				// touching the boundary stay inside, so no forced exits.
				if travelUp {
					evalTo = Time(length)
				} else {
					evalTo = 0
				}
				r.completed = true
				ended = &Ended{Runner: r.id, Direction: r.direction, Completed: true}
				break
			}
			wrapped = true
			clearSeen = true
			wrapPos = Time(euclidMod(raw, length))
			if travelUp {
				evalTo = Time(length)
				wrapOrigin = 0
				forceExit = 1
			} else {
				evalTo = 0
				wrapOrigin = Time(length)
				forceExit = -1
			}
			ended = &Ended{Runner: r.id, Direction: r.direction, Completed: false}

		case RepeatPingPong:
			hits := boundaryHits(raw, length)
			allowed := r.consumeRepeats(hits)
			if travelUp {
				evalTo = Time(length)
			} else {
				evalTo = 0
			}
			if allowed < hits {
				r.completed = true
				ended = &Ended{Runner: r.id, Direction: r.direction, Completed: true}
				break
			}
			// Reflection parity decides the final direction; the reflected
			// remainder is where the next tick resumes from.
			if int(math.Floor(raw/length))%2 != 0 {
				newDir = r.direction.flip()
			}
			wrapped = true
			wrapPos = Time(triangleReflect(raw, length))
			if newDir == Forward {
				wrapOrigin = 0
			} else {
				wrapOrigin = Time(length)
			}
			ended = &Ended{Runner: r.id, Direction: newDir, Completed: false}
		}
	}

	r.evaluate(base, evalTo, forceExit)

	if wrapped {
		r.previous = wrapOrigin
		r.position = wrapPos
	} else {
		r.previous = evalTo
		r.position = evalTo
	}
	if clearSeen {
		// A wrap exits everything; re-entry at the wrapped origin is
		// computed fresh on the following tick.
		r.seen = make(map[SpanID]bool, len(r.spans))
	}
	r.direction = newDir

	if ended != nil && r.onEnded != nil {
		r.onEnded(*ended)
	}
}

// evaluate runs the crossing algorithm for every span over [base, next]
// (or [next, base] moving down), stamps the events, and delivers them to
// the sink in span-insertion order.
func (r *Runner) evaluate(base, next Time, forceExit int) {
	for _, span := range r.spans {
		events := Cross(base, next, span)

		if !r.seen[span.ID] {
			r.seen[span.ID] = true
			if span.Contains(base) && !containsEntry(events) {
				// Span newly scheduled (or freshly wrapped) with the
				// position already inside: immediate entry at the current
				// position, before any exit this tick produces.
				kind := EnteredForward
				if next < base || (next == base && r.direction == Backward) {
					kind = EnteredBackward
				}
				events = append([]Event{{Span: span.ID, Kind: kind, Position: base}}, events...)
			}
		}

		switch {
		case forceExit > 0 && span.End == next && !containsExit(events):
			events = append(events, Event{Span: span.ID, Kind: ExitedForward, Position: span.End})
		case forceExit < 0 && span.Start == next && !containsExit(events):
			events = append(events, Event{Span: span.ID, Kind: ExitedBackward, Position: span.Start})
		}

		for _, ev := range events {
			ev.Runner = r.id
			ev.Seq = r.clock.Next()
			r.sink.Deliver(ev)
		}
	}
}

func containsEntry(events []Event) bool {
	for _, ev := range events {
		if ev.Kind.Entered() {
			return true
		}
	}
	return false
}

func containsExit(events []Event) bool {
	for _, ev := range events {
		if ev.Kind.Exited() {
			return true
		}
	}
	return false
}

// consumeRepeats deducts up to hits boundary crossings from the repeat
// budget and returns how many were granted.
func (r *Runner) consumeRepeats(hits int) int {
	if r.remaining == Unbounded {
		return hits
	}
	allowed := hits
	if allowed > r.remaining {
		allowed = r.remaining
	}
	r.remaining -= allowed
	return allowed
}

// boundaryHits counts how many timeline boundaries a raw target implies
// were crossed. A target exactly at length counts as one forward hit; a
// target exactly at zero counts as none (the backward boundary triggers
// strictly below zero), mirroring the saw-wave arithmetic of the repeat
// handling.
func boundaryHits(raw, length float64) int {
	n := int(math.Floor(raw / length))
	if n < 0 {
		n = -n
	}
	return n
}

// euclidMod is the non-negative remainder of x mod period.
func euclidMod(x, period float64) float64 {
	m := math.Mod(x, period)
	if m < 0 {
		m += period
	}
	return m
}

// triangleReflect folds x into [0, period] with mirror symmetry at both
// boundaries, giving the ping-pong resting position for an overshoot.
func triangleReflect(x, period float64) float64 {
	return math.Abs(euclidMod(x+period, period*2) - period)
}
