package timeline

import (
	"log/slog"
	"math"
)

// Engine is the per-frame tick loop over a collection of runners.
//
// The host calls Tick once per frame or update step with the frame's
// delta; Tick fully completes before consumers read any sink. Runners are
// processed in registration order every call, and each runner's spans in
// insertion order, so the event stream for identical inputs is
// byte-identical across runs.
//
// The engine has no access to any ambient clock: the injected delta is
// the only time source.
//
// INVARIANTS:
//   - Runner registration order never changes while registered
//   - previous positions are mutated only by the tick loop (and Seek)
//   - Evaluation is single-threaded for determinism
type Engine struct {
	runners []*Runner
	index   map[RunnerID]*Runner
	clock   *Clock
	logger  *slog.Logger
	onEnded func(Ended)
}

// Option configures an engine.
type Option func(*Engine)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock sets the logical clock used to stamp event seqs. Used when
// resuming a recorded session at a known sequence number.
func WithClock(clock *Clock) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithOnEnded registers a hook for runner boundary notifications (loop
// wraps, ping-pong reflections, completions). The hook runs inside Tick;
// it must not mutate runners.
func WithOnEnded(fn func(Ended)) Option {
	return func(e *Engine) { e.onEnded = fn }
}

// New creates an empty engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		index:  make(map[RunnerID]*Runner),
		clock:  NewClock(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Add registers a runner. The runner's events are stamped by the engine's
// shared clock from this point on. Returns a DUPLICATE_RUNNER error if
// the id is already registered.
func (e *Engine) Add(r *Runner) error {
	if _, exists := e.index[r.id]; exists {
		return newDuplicateRunnerError(r.id)
	}
	r.clock = e.clock
	r.onEnded = e.notifyEnded
	e.runners = append(e.runners, r)
	e.index[r.id] = r
	return nil
}

// Remove unregisters and destroys a runner; its spans die with it.
// Removing an unknown id is a no-op.
func (e *Engine) Remove(id RunnerID) bool {
	r, ok := e.index[id]
	if !ok {
		return false
	}
	delete(e.index, id)
	for i, candidate := range e.runners {
		if candidate == r {
			e.runners = append(e.runners[:i], e.runners[i+1:]...)
			break
		}
	}
	return true
}

// Runner returns a registered runner by id.
func (e *Engine) Runner(id RunnerID) (*Runner, bool) {
	r, ok := e.index[id]
	return r, ok
}

// Runners returns the registered runners in registration order.
func (e *Engine) Runners() []*Runner {
	out := make([]*Runner, len(e.runners))
	copy(out, e.runners)
	return out
}

// Clock returns the engine's logical clock.
func (e *Engine) Clock() *Clock {
	return e.clock
}

// Tick advances every runner by delta, scaled by each runner's speed and
// signed by its direction, and populates each runner's sink with the
// tick's crossing events. Stale events from the previous tick are
// discarded first, for every runner including paused and skipped ones.
//
// delta must be finite and non-negative; reverse playback is a runner
// direction, not a negative delta.
func (e *Engine) Tick(delta Delta) error {
	if math.IsNaN(float64(delta)) || math.IsInf(float64(delta), 0) {
		return newInvalidDeltaError("tick delta must be finite")
	}
	if delta < 0 {
		return newInvalidDeltaError("tick delta must be non-negative")
	}

	for _, r := range e.runners {
		r.sink.Reset()
		if r.skipped {
			continue
		}
		if r.paused || r.completed {
			r.collapse()
			continue
		}
		signed := Delta(float64(delta) * r.speed * r.direction.sign())
		raw := float64(r.position) + float64(signed)
		r.advance(raw)
	}
	return nil
}

// Drain collects and clears the events of every runner with a default
// sink, in registration order. Runners with custom sinks deliver through
// their own mechanism and contribute nothing here.
func (e *Engine) Drain() []Event {
	var out []Event
	for _, r := range e.runners {
		out = append(out, r.Drain()...)
	}
	return out
}

func (e *Engine) notifyEnded(ended Ended) {
	e.logger.Debug("runner reached boundary",
		"runner", string(ended.Runner),
		"direction", ended.Direction.String(),
		"completed", ended.Completed)
	if e.onEnded != nil {
		e.onEnded(ended)
	}
}
