package arena

import (
	"testing"
	"time"
)

func TestKeyStateEdges(t *testing.T) {
	s := NewKeyState()
	s.Press("KeyQ")
	s.Press("KeyQ") // auto repeat
	s.Press(KeyEnter)

	f := s.Frame()
	if !f.Held("KeyQ") || !f.JustPressed("KeyQ") || !f.JustPressed(KeyEnter) {
		t.Fatalf("first frame = %+v", f)
	}
	if got := f.Pressed(); len(got) != 2 || got[0] != "KeyQ" || got[1] != KeyEnter {
		t.Fatalf("pressed = %v, want [KeyQ Enter]", got)
	}

	f = s.Frame()
	if !f.Held("KeyQ") || f.JustPressed("KeyQ") {
		t.Fatal("held key reported as just pressed twice")
	}

	s.Release("KeyQ")
	if f = s.Frame(); f.Held("KeyQ") {
		t.Fatal("released key still held")
	}
}

func TestKeyStateTapBetweenFrames(t *testing.T) {
	s := NewKeyState()
	s.Press(KeySpace)
	s.Release(KeySpace)

	f := s.Frame()
	if f.Held(KeySpace) || !f.JustPressed(KeySpace) {
		t.Fatal("tap between frames lost")
	}
	if s.Frame().JustPressed(KeySpace) {
		t.Fatal("tap reported twice")
	}
}

func TestKeyStateReleaseAll(t *testing.T) {
	s := NewKeyState()
	s.Press("KeyJ")
	s.Press("KeyK")
	s.ReleaseAll()
	f := s.Frame()
	if f.Held("KeyJ") || f.Held("KeyK") {
		t.Fatal("keys still held after ReleaseAll")
	}
}

func TestKeyRuneAndLabel(t *testing.T) {
	cases := []struct {
		k     Key
		r     rune
		ok    bool
		label string
	}{
		{"KeyQ", 'q', true, "Q"},
		{"Digit7", '7', true, "7"},
		{KeySpace, ' ', true, "Space"},
		{KeyLeft, 0, false, "Left"},
		{KeyPageDown, 0, false, "PgDn"},
		{KeyUnset, 0, false, "???"},
	}
	for _, c := range cases {
		r, ok := c.k.Rune()
		if r != c.r || ok != c.ok {
			t.Errorf("%q.Rune() = %q %v, want %q %v", c.k, r, ok, c.r, c.ok)
		}
		if got := c.k.Label(); got != c.label {
			t.Errorf("%q.Label() = %q, want %q", c.k, got, c.label)
		}
	}
	if got := (MoveKeys{CCW: "KeyQ", CW: "KeyW"}).String(); got != "Q/W" {
		t.Fatalf("MoveKeys.String() = %q", got)
	}
}

func TestPausableClock(t *testing.T) {
	base := NewFakeClock()
	c := NewPausableClock(base)
	start := c.Now()

	base.Advance(time.Second)
	if got := c.Since(start); got != time.Second {
		t.Fatalf("elapsed = %v, want 1s", got)
	}

	c.Pause()
	c.Pause()
	base.Advance(time.Hour)
	if got := c.Since(start); got != time.Second {
		t.Fatalf("elapsed while paused = %v, want 1s", got)
	}

	c.Resume()
	if c.IsPaused() {
		t.Fatal("still paused after resume")
	}
	base.Advance(time.Second)
	if got := c.Since(start); got != 2*time.Second {
		t.Fatalf("elapsed after resume = %v, want 2s", got)
	}
}
