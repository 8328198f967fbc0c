package arena

import (
	"time"
)

// Input is the keyboard as seen by a single tick
type Input interface {
	// Held is level-triggered, used for rotation
	Held(k Key) bool
	// JustPressed is edge-triggered, used for menus, pause and round control
	JustPressed(k Key) bool
	// Pressed lists the just pressed keys in arrival order
	Pressed() []Key
}

// Clock is a monotonic time source
type Clock interface {
	Now() time.Time
}

// Rand is the random source used for spawn positions, headings and fuses.
// *math/rand.Rand satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Viewport reports the current drawable size
type Viewport interface {
	Size() (w, h float64)
}

// SystemClock reads the real monotonic clock
type SystemClock struct{}

// Now returns time.Now, which carries a monotonic reading
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedViewport is a viewport with a constant size
type FixedViewport struct {
	W, H float64
}

// Size returns the fixed dimensions
func (v FixedViewport) Size() (float64, float64) {
	return v.W, v.H
}

// randRange returns a uniform float in [lo, hi)
func randRange(r Rand, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}

// randDuration returns a uniform duration in [lo, hi), at millisecond granularity
func randDuration(r Rand, lo, hi time.Duration) time.Duration {
	span := int((hi - lo) / time.Millisecond)
	if span <= 0 {
		return lo
	}
	return lo + time.Duration(r.Intn(span))*time.Millisecond
}
