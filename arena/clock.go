package arena

import "time"

// PausableClock provides game time that stands still while the round is paused.
// Trail fuses, power-up timeouts and phase timers all read this clock.
type PausableClock struct {
	base Clock

	paused      bool
	pauseStart  time.Time     // base time when the current pause began
	totalPaused time.Duration // cumulative pause duration
}

// NewPausableClock wraps base
func NewPausableClock(base Clock) *PausableClock {
	return &PausableClock{base: base}
}

// Now returns the current game time
func (c *PausableClock) Now() time.Time {
	if c.paused {
		return c.pauseStart.Add(-c.totalPaused)
	}
	return c.base.Now().Add(-c.totalPaused)
}

// Since returns game time elapsed since t
func (c *PausableClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Pause freezes game time. Pausing twice is a no-op.
func (c *PausableClock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pauseStart = c.base.Now()
}

// Resume continues game time from where it was frozen
func (c *PausableClock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.totalPaused += c.base.Now().Sub(c.pauseStart)
	c.pauseStart = time.Time{}
}

// IsPaused reports the pause state
func (c *PausableClock) IsPaused() bool {
	return c.paused
}
