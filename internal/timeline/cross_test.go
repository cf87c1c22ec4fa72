package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(t *testing.T, id SpanID, start, end Time) Span {
	t.Helper()
	s, err := NewSpan(id, start, end)
	require.NoError(t, err)
	return s
}

func TestCross_StillnessIsIdempotent(t *testing.T) {
	s := span(t, "s", 3, 8)
	for _, p := range []Time{0, 3, 5, 8, 100} {
		assert.Empty(t, Cross(p, p, s), "no movement must never fire, p=%v", p)
	}
}

func TestCross_ForwardEnter(t *testing.T) {
	s := span(t, "s", 3, 8)
	events := Cross(2, 4, s)
	require.Len(t, events, 1)
	assert.Equal(t, EnteredForward, events[0].Kind)
	assert.Equal(t, Time(3), events[0].Position)
	assert.Equal(t, SpanID("s"), events[0].Span)
}

func TestCross_ForwardExit(t *testing.T) {
	s := span(t, "s", 3, 8)
	events := Cross(7, 9, s)
	require.Len(t, events, 1)
	assert.Equal(t, ExitedForward, events[0].Kind)
	assert.Equal(t, Time(8), events[0].Position)
}

func TestCross_ForwardStraddle(t *testing.T) {
	// A span fully contained in the tick emits exactly one Entered and one
	// Exited, bounding the span, no matter how large the jump.
	s := span(t, "s", 3, 8)
	for _, next := range []Time{9, 100, 1e9} {
		events := Cross(0, next, s)
		require.Len(t, events, 2, "next=%v", next)
		assert.Equal(t, EnteredForward, events[0].Kind)
		assert.Equal(t, Time(3), events[0].Position)
		assert.Equal(t, ExitedForward, events[1].Kind)
		assert.Equal(t, Time(8), events[1].Position)
	}
}

func TestCross_BackwardEnter(t *testing.T) {
	s := span(t, "s", 3, 8)
	events := Cross(9, 5, s)
	require.Len(t, events, 1)
	assert.Equal(t, EnteredBackward, events[0].Kind)
	assert.Equal(t, Time(8), events[0].Position)
}

func TestCross_BackwardExit(t *testing.T) {
	s := span(t, "s", 3, 8)
	events := Cross(4, 1, s)
	require.Len(t, events, 1)
	assert.Equal(t, ExitedBackward, events[0].Kind)
	assert.Equal(t, Time(3), events[0].Position)
}

func TestCross_BackwardStraddle(t *testing.T) {
	s := span(t, "s", 3, 8)
	events := Cross(100, 0, s)
	require.Len(t, events, 2)
	assert.Equal(t, EnteredBackward, events[0].Kind)
	assert.Equal(t, Time(8), events[0].Position)
	assert.Equal(t, ExitedBackward, events[1].Kind)
	assert.Equal(t, Time(3), events[1].Position)
}

func TestCross_BoundaryInclusivity(t *testing.T) {
	s := span(t, "s", 3, 8)

	// Landing exactly on the start enters, nothing more.
	events := Cross(2, 3, s)
	require.Len(t, events, 1)
	assert.Equal(t, EnteredForward, events[0].Kind)

	// Leaving from exactly the end exits, nothing more.
	events = Cross(8, 9, s)
	require.Len(t, events, 1)
	assert.Equal(t, ExitedForward, events[0].Kind)
}

func TestCross_ZeroWidthSpan(t *testing.T) {
	marker := span(t, "m", 3, 3)

	// Passing over the marker fires both, entry first.
	events := Cross(2, 4, marker)
	require.Len(t, events, 2)
	assert.Equal(t, EnteredForward, events[0].Kind)
	assert.Equal(t, ExitedForward, events[1].Kind)

	// Landing exactly on the marker enters only; the exit follows on the
	// tick that moves past it.
	events = Cross(2, 3, marker)
	require.Len(t, events, 1)
	assert.Equal(t, EnteredForward, events[0].Kind)

	events = Cross(3, 5, marker)
	require.Len(t, events, 1)
	assert.Equal(t, ExitedForward, events[0].Kind)
}

// reverseKind maps a forward-interval crossing onto the kind the same
// boundary produces when the interval is replayed in reverse.
func reverseKind(k Kind) Kind {
	switch k {
	case EnteredForward:
		return ExitedBackward
	case ExitedForward:
		return EnteredBackward
	case EnteredBackward:
		return ExitedForward
	case ExitedBackward:
		return EnteredForward
	}
	return 0
}

func TestCross_DirectionSymmetry(t *testing.T) {
	s := span(t, "s", 3, 8)
	intervals := []struct{ prev, next Time }{
		{0, 100}, {2, 4}, {7, 9}, {2, 3}, {8, 9}, {3, 8}, {0, 5.5}, {4, 6},
	}
	for _, iv := range intervals {
		forward := Cross(iv.prev, iv.next, s)
		backward := Cross(iv.next, iv.prev, s)
		require.Len(t, backward, len(forward), "interval [%v,%v]", iv.prev, iv.next)
		for i, fw := range forward {
			bw := backward[len(backward)-1-i]
			assert.Equal(t, reverseKind(fw.Kind), bw.Kind, "interval [%v,%v] event %d", iv.prev, iv.next, i)
			assert.Equal(t, fw.Position, bw.Position, "interval [%v,%v] event %d", iv.prev, iv.next, i)
		}
	}
}
