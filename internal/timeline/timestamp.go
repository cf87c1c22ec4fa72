package timeline

// Time is a position on a runner's local timeline, in seconds.
//
// Time is never negative: arithmetic that would go below zero saturates
// at zero. Use Delta for signed quantities (reverse-playback movement).
type Time float64

// Delta is a signed duration, in seconds. A tick's global delta is
// non-negative; a runner's effective per-tick movement is a Delta whose
// sign carries the playback direction.
type Delta float64

// Advance returns t moved by d, saturating at zero.
func (t Time) Advance(d Delta) Time {
	moved := float64(t) + float64(d)
	if moved < 0 {
		return 0
	}
	return Time(moved)
}

// Sub returns t - u, saturating at zero.
func (t Time) Sub(u Time) Time {
	if u >= t {
		return 0
	}
	return t - u
}

// Seconds returns the position as a plain float64.
func (t Time) Seconds() float64 {
	return float64(t)
}

// Scale returns d multiplied by factor. Scaling by a negative factor
// flips the sign, which is how direction is applied to a tick's delta.
func (d Delta) Scale(factor float64) Delta {
	return Delta(float64(d) * factor)
}
