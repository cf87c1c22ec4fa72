package timeline

import "sync/atomic"

// Clock is a monotonic logical clock for crossing-event ordering.
//
// Every event emitted by an Engine is stamped with a strictly increasing
// seq from its clock. This gives a total order across runners within one
// run without consulting wall-clock time, so:
//   - Two runs with identical inputs stamp identical seqs
//   - Replay of a recorded session can compare event streams exactly
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// though the engine's single-writer tick loop means only one goroutine
// typically calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a specific sequence number.
// Used when resuming a recorded session.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.seq.Store(start)
	return c
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
