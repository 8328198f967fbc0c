package arena

import (
	"math"
	"time"
)

// Curve is a player's moving head and the trail it leaves behind
type Curve struct {
	Position      Point
	Heading       float64 // radians, direction of movement
	Velocity      float64 // px per second
	RotationSpeed float64 // radians per tick
	Girth         Girth
	Alive         bool

	// TrailActive is false during gaps. While false the curve can not be
	// eliminated by any collision check, border included.
	TrailActive bool
	TrailTS     time.Time     // when the trail was last switched on or off
	TrailFuse   time.Duration // how long the trail stays on before the next gap

	// Lines is the trail history, oldest first
	Lines []Line

	invulnerable int    // active invulnerability effects, keeps the trail off while > 0
	girthBase    Girth  // girth before any active effect
	girthShift   int    // net girth steps of active effects, unclamped
	epoch        uint32 // bumped every time Lines is cleared
	appended     uint64 // lines appended during the current epoch
}

// NewCurve spawns a curve at a random position and heading inside bounds
func NewCurve(bounds ArenaBounds, r Rand, now time.Time) Curve {
	var c Curve
	c.Reset(bounds, r, now)
	return c
}

// Reset puts the curve back into its start of round state
func (c *Curve) Reset(bounds ArenaBounds, r Rand, now time.Time) {
	c.Position = bounds.RandomPos(r)
	c.Heading = randRange(r, 0, 2*math.Pi)
	c.Velocity = DefaultVelocity
	c.RotationSpeed = DefaultRotation
	c.Girth = DefaultGirth
	c.Alive = true
	c.TrailActive = true
	c.TrailTS = now
	c.TrailFuse = newTrailFuse(r)
	c.invulnerable = 0
	c.girthShift = 0
	c.ClearTrail()
}

// ClearTrail drops all lines and starts a new epoch
func (c *Curve) ClearTrail() {
	c.Lines = c.Lines[:0]
	c.epoch++
	c.appended = 0
}

// Kill stops the curve in place. Its trail stays as an obstacle.
func (c *Curve) Kill() {
	c.Velocity = 0
	c.Alive = false
}

// AdvanceHeading rotates the curve for every held rotation key.
// Held keys apply every tick, so holding a key keeps turning.
func (c *Curve) AdvanceHeading(ccw, cw bool) {
	if cw {
		c.Heading += c.RotationSpeed
	}
	if ccw {
		c.Heading -= c.RotationSpeed
	}
}

// Steer reads the curve's rotation keys from in
func (c *Curve) Steer(in Input, keys MoveKeys) {
	c.AdvanceHeading(in.Held(keys.CCW), in.Held(keys.CW))
}

// NextPos returns where the curve will be after dt without moving it
func (c *Curve) NextPos(dt time.Duration) Point {
	d := c.Velocity * dt.Seconds()
	return Point{
		X: c.Position.X + d*math.Cos(c.Heading),
		Y: c.Position.Y + d*math.Sin(c.Heading),
	}
}

// Move commits the position advance for dt
func (c *Curve) Move(dt time.Duration) {
	c.Position = c.NextPos(dt)
}

// ProjectRotation returns a point ProjectLength ahead along the heading,
// used to show where a curve will go during the countdown
func (c *Curve) ProjectRotation() Point {
	return Point{
		X: c.Position.X + ProjectLength*math.Cos(c.Heading),
		Y: c.Position.Y + ProjectLength*math.Sin(c.Heading),
	}
}

// TickTrail appends one line if the trail was active at the start of the tick,
// then runs the gap timers: the trail goes off once its fuse burns down and
// comes back with a fresh fuse after InvDuration.
func (c *Curve) TickTrail(dt time.Duration, now time.Time, r Rand) {
	if c.TrailActive {
		c.appendLine(Interpolate(c.Position, c.NextPos(dt), c.Girth))
	}

	if c.invulnerable > 0 {
		return
	}

	if c.TrailActive && now.Sub(c.TrailTS) > c.TrailFuse {
		c.TrailActive = false
		c.TrailTS = now
	}

	if !c.TrailActive && now.Sub(c.TrailTS) > InvDuration {
		c.TrailActive = true
		c.TrailFuse = newTrailFuse(r)
		c.TrailTS = now
	}
}

// TrimTrail evicts the oldest lines beyond limit
func (c *Curve) TrimTrail(limit int) {
	if over := len(c.Lines) - limit; over > 0 {
		c.Lines = append(c.Lines[:0], c.Lines[over:]...)
	}
}

// BoundingBox returns the collision box at the curve's next position
func (c *Curve) BoundingBox(dt time.Duration) BoundingBox {
	return NewBoundingBox(c.NextPos(dt), c.Girth.Radius())
}

// shiftGirth moves the girth by d steps. Girth is derived from the unclamped
// sum of active steps, so effects undo exactly in any order.
func (c *Curve) shiftGirth(d int) {
	if c.girthShift == 0 {
		c.girthBase = c.Girth
	}
	c.girthShift += d
	c.Girth = (c.girthBase + Girth(c.girthShift)).clamp()
}

// Invulnerable reports whether an invulnerability effect is active
func (c *Curve) Invulnerable() bool {
	return c.invulnerable > 0
}

func (c *Curve) appendLine(l Line) {
	c.Lines = append(c.Lines, l)
	c.appended++
}

// newTrailFuse draws how long the trail stays on before the next gap
func newTrailFuse(r Rand) time.Duration {
	return randDuration(r, TrailFuseMin, TrailFuseMax)
}
