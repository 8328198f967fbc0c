package arena

import (
	"fmt"
	"math/rand"
	"testing"
	"time"
)

const tick = 16 * time.Millisecond

// FakeClock is a controllable time source for tests
type FakeClock struct {
	now time.Time
}

func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// resizableViewport lets a test change the drawable size between ticks
type resizableViewport struct {
	w, h float64
}

func (v *resizableViewport) Size() (float64, float64) {
	return v.w, v.h
}

var noInput = NewKeyFrame(nil)

func press(keys ...Key) KeyFrame {
	return NewKeyFrame(nil, keys...)
}

func hold(keys ...Key) KeyFrame {
	return NewKeyFrame(keys)
}

func newTestGame(t *testing.T) (*Kurve, *FakeClock) {
	t.Helper()
	clock := NewFakeClock()
	n := 0
	k := New(Options{
		Clock:    clock,
		Rand:     rand.New(rand.NewSource(1)),
		Viewport: FixedViewport{W: 1000, H: 800},
		NewID: func() string {
			n++
			return fmt.Sprintf("p%d", n)
		},
	})
	return k, clock
}

// runningGame starts a round and runs the countdown out
func runningGame(t *testing.T) (*Kurve, *FakeClock) {
	t.Helper()
	k, clock := newTestGame(t)
	k.startRound()
	clock.Advance(CountdownDuration)
	k.Update(noInput, tick)
	if k.State.Phase != PhaseRunning {
		t.Fatalf("phase after countdown = %s, want running", k.State.Phase)
	}
	return k, clock
}

func testCurve(x, y, heading float64) *Curve {
	return &Curve{
		Position:      Point{X: x, Y: y},
		Heading:       heading,
		Velocity:      DefaultVelocity,
		RotationSpeed: DefaultRotation,
		Girth:         GirthNormal,
		Alive:         true,
		TrailActive:   true,
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// parkCurves lines the curves up in the middle of the arena, heading right
func parkCurves(k *Kurve) {
	cx := (k.Bounds.XMin + k.Bounds.XMax) / 2
	cy := (k.Bounds.YMin + k.Bounds.YMax) / 2
	for i, p := range k.Players {
		p.Curve.Position = Point{X: cx - 100 + float64(i)*50, Y: cy}
		p.Curve.Heading = 0
	}
}
