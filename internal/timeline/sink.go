package timeline

// Sink receives the crossing events a runner emits during one tick.
//
// The engine clears every runner's sink at the start of each tick, so a
// consumer must drain (or forward) events within the same frame; undrained
// events are discarded. The default implementation is EventSink, an
// ordered in-memory sequence. Hosts with their own delivery mechanism
// (an ECS event writer, an observer bus) plug in via SinkFunc or a custom
// implementation; the crossing algorithm itself stays decoupled from
// delivery.
type Sink interface {
	// Deliver appends one event. Called in emission order.
	Deliver(Event)

	// Reset discards events accumulated since the last reset. Called by
	// the engine at the start of every tick.
	Reset()
}

// EventSink is the default in-core sink: an ordered, per-runner event
// sequence, consumed once and cleared.
type EventSink struct {
	events []Event
}

// NewEventSink creates an empty sink.
func NewEventSink() *EventSink {
	return &EventSink{}
}

// Deliver implements Sink.
func (s *EventSink) Deliver(ev Event) {
	s.events = append(s.events, ev)
}

// Reset implements Sink.
func (s *EventSink) Reset() {
	// Keep the backing array; per-tick event counts are small and stable.
	s.events = s.events[:0]
}

// Events returns the events emitted this tick, in order, without
// consuming them.
func (s *EventSink) Events() []Event {
	return s.events
}

// Drain returns the events emitted this tick and clears the sink.
func (s *EventSink) Drain() []Event {
	out := make([]Event, len(s.events))
	copy(out, s.events)
	s.events = s.events[:0]
	return out
}

// Len returns the number of undrained events.
func (s *EventSink) Len() int {
	return len(s.events)
}

// SinkFunc adapts a function to the Sink interface, for hosts that push
// events straight into their own delivery mechanism. Reset is a no-op:
// the host owns event lifetime past the point of delivery.
type SinkFunc func(Event)

// Deliver implements Sink.
func (f SinkFunc) Deliver(ev Event) { f(ev) }

// Reset implements Sink.
func (f SinkFunc) Reset() {}
