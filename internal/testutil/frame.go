package testutil

import "sync"

// FrameClock feeds a scripted sequence of frame deltas to a tick loop.
//
// Tests use it to drive an engine with a known delta sequence, so the
// same script always produces byte-identical event logs.
//
// Thread-safety: All methods are safe for concurrent use via internal
// mutex.
type FrameClock struct {
	mu     sync.Mutex
	deltas []float64
	idx    int
}

// NewFrameClock creates a clock that returns the given deltas in order.
//
// Example:
//
//	clock := NewFrameClock(0.016, 0.016, 0.033)
//	clock.Next() // 0.016, true
//	clock.Next() // 0.016, true
//	clock.Next() // 0.033, true
//	clock.Next() // 0, false
func NewFrameClock(deltas ...float64) *FrameClock {
	return &FrameClock{deltas: deltas}
}

// Next returns the next scripted delta.
// The second return is false once the script is exhausted.
func (c *FrameClock) Next() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.idx >= len(c.deltas) {
		return 0, false
	}
	delta := c.deltas[c.idx]
	c.idx++
	return delta, true
}

// Remaining returns how many deltas are left in the script.
func (c *FrameClock) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deltas) - c.idx
}

// Reset rewinds the script to the beginning.
// Used for test reuse: the same clock can drive a scenario twice to
// check determinism.
func (c *FrameClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.idx = 0
}
