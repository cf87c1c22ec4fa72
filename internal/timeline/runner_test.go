package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_LengthDerivedFromSpans(t *testing.T) {
	r := NewRunner("r", WithSpans(
		MustSpan("a", 0, 5),
		MustSpan("b", 3, 8),
	))
	assert.Equal(t, Time(8), r.Length())

	assert.True(t, r.RemoveSpan("b"))
	assert.Equal(t, Time(5), r.Length(), "length recomputed on removal")

	require.NoError(t, r.AddSpan(MustSpan("c", 0, 12)))
	assert.Equal(t, Time(12), r.Length())
}

func TestRunner_AddSpanRejectsDuplicates(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("a", 0, 5)))
	err := r.AddSpan(MustSpan("a", 1, 2))
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
}

func TestRunner_AddSpanRejectsInvertedRange(t *testing.T) {
	r := NewRunner("r")
	err := r.AddSpan(Span{ID: "bad", Start: 5, End: 3})
	require.Error(t, err)
	assert.True(t, IsInvalidRange(err))
}

func TestRunner_RemoveUnknownSpanIsNoOp(t *testing.T) {
	r := NewRunner("r")
	assert.False(t, r.RemoveSpan("ghost"))
}

func TestRunner_SpeedSaturatesAtZero(t *testing.T) {
	r := NewRunner("r")
	r.SetSpeed(-2)
	assert.Equal(t, float64(0), r.Speed())
	r.SetSpeed(math.NaN())
	assert.Equal(t, float64(0), r.Speed())
	r.SetSpeed(1.5)
	assert.Equal(t, 1.5, r.Speed())
}

func TestRunner_SeekEvaluatesTheGapImmediately(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("s", 3, 8)))
	r.Seek(5)

	events := r.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EnteredForward, events[0].Kind)
	assert.Equal(t, Time(3), events[0].Position)
	assert.Equal(t, Time(5), r.Position())
	assert.Equal(t, Time(5), r.PreviousPosition())
}

func TestRunner_SeekStraddlesLikeAFastTick(t *testing.T) {
	r := NewRunner("r", WithSpans(
		MustSpan("a", 1, 2),
		MustSpan("b", 3, 8),
	))
	r.Seek(8)

	events := r.Drain()
	require.Len(t, events, 3)
	assert.Equal(t, EnteredForward, events[0].Kind)
	assert.Equal(t, SpanID("a"), events[0].Span)
	assert.Equal(t, ExitedForward, events[1].Kind)
	assert.Equal(t, SpanID("a"), events[1].Span)
	assert.Equal(t, EnteredForward, events[2].Kind)
	assert.Equal(t, SpanID("b"), events[2].Span)
}

func TestRunner_SeekBeyondLengthClampsAndCompletes(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("s", 3, 8)))
	r.Seek(100)
	assert.Equal(t, Time(8), r.Position(), "out-of-bound seek clamps like a tick would")
	assert.True(t, r.Completed())

	// A later seek resets the completed state.
	r.Seek(0)
	assert.False(t, r.Completed())
	assert.Equal(t, Time(0), r.Position())
}

func TestRunner_SeekBackward(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("s", 3, 8)))
	r.Seek(5)
	r.Drain()

	r.Seek(1)
	events := r.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, ExitedBackward, events[0].Kind)
	assert.Equal(t, Time(3), events[0].Position)
	assert.Equal(t, Time(1), r.Position())
}

func TestRunner_ProgressInsideSpan(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("s", 2, 6)))
	r.Seek(4)

	p, ok := r.Progress("s")
	require.True(t, ok)
	assert.Equal(t, Time(2), p.Now)
	assert.Equal(t, 0.5, p.Percent)
}

func TestRunner_ProgressOutsideSpan(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("s", 2, 6), MustSpan("tail", 0, 10)))
	r.Seek(8)

	_, ok := r.Progress("s")
	assert.False(t, ok)
	_, ok = r.Progress("ghost")
	assert.False(t, ok)
}

func TestRunner_ProgressZeroWidthSpan(t *testing.T) {
	r := NewRunner("r", WithSpans(MustSpan("m", 4, 4), MustSpan("tail", 0, 10)))
	r.Seek(4)

	p, ok := r.Progress("m")
	require.True(t, ok)
	assert.True(t, math.IsInf(p.Percent, 1), "forward zero-width span reports +Inf")

	r.SetDirection(Backward)
	p, _ = r.Progress("m")
	assert.True(t, math.IsInf(p.Percent, -1), "backward zero-width span reports -Inf")
}

func TestRunner_InertWithoutSpans(t *testing.T) {
	r := NewRunner("r")
	r.Seek(42)
	assert.Equal(t, Time(42), r.Position(), "position still ticks with nothing scheduled")
	assert.False(t, r.Completed())
	assert.Empty(t, r.Drain())
}

func TestRunner_EventsAccessorsNilForCustomSink(t *testing.T) {
	r := NewRunner("r", WithSink(SinkFunc(func(Event) {})), WithSpans(MustSpan("s", 0, 5)))
	r.Seek(1)
	assert.Nil(t, r.Drain())
	assert.Nil(t, r.Events())
}
