package main

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"kurve-server/arena"
)

func TestTranslateKey(t *testing.T) {
	cases := []struct {
		ev   *tcell.EventKey
		want arena.Key
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), arena.KeyLeft, true},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), arena.KeyEnter, true},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), arena.KeyEscape, true},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), arena.KeyBackspace, true},
		{tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), arena.KeySpace, true},
		{tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), "KeyQ", true},
		{tcell.NewEventKey(tcell.KeyRune, 'W', tcell.ModShift), "KeyW", true},
		{tcell.NewEventKey(tcell.KeyRune, '7', tcell.ModNone), "Digit7", true},
		{tcell.NewEventKey(tcell.KeyRune, '-', tcell.ModNone), "Minus", true},
		{tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), arena.KeyUnset, false},
		{tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone), arena.KeyUnset, false},
	}
	for _, c := range cases {
		got, ok := translateKey(c.ev)
		if got != c.want || ok != c.ok {
			t.Fatalf("translateKey(%s) = %q, %v, want %q, %v", c.ev.Name(), got, ok, c.want, c.ok)
		}
	}
}

func TestHoldTracker(t *testing.T) {
	h := newHoldTracker(100 * time.Millisecond)
	t0 := time.Unix(0, 0)

	if !h.touch("KeyQ", t0) {
		t.Fatalf("first touch should be a new press")
	}
	if h.touch("KeyQ", t0.Add(50*time.Millisecond)) {
		t.Fatalf("repeat should not be a new press")
	}
	if got := h.expire(t0.Add(120 * time.Millisecond)); len(got) != 0 {
		t.Fatalf("expired %v while repeats kept coming", got)
	}
	got := h.expire(t0.Add(200 * time.Millisecond))
	if len(got) != 1 || got[0] != "KeyQ" {
		t.Fatalf("expired = %v, want [KeyQ]", got)
	}
	if !h.touch("KeyQ", t0.Add(300*time.Millisecond)) {
		t.Fatalf("touch after expiry should be a new press")
	}
}

func newSimTerminal(t *testing.T) (*Terminal, *arena.KeyState) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	if err := screen.Init(); err != nil {
		t.Fatalf("init simulation screen: %v", err)
	}
	screen.SetSize(100, 40)
	keys := arena.NewKeyState()
	term := newTerminal(screen, keys, NewSound(false))
	t.Cleanup(term.Close)
	return term, keys
}

func TestTerminalSize(t *testing.T) {
	term, _ := newSimTerminal(t)
	w, h := term.Size()
	if w != 100*CellWidth || h != 39*CellHeight {
		t.Fatalf("size = %vx%v, want %vx%v", w, h, 100*CellWidth, 39*CellHeight)
	}
}

func TestTerminalHandleKey(t *testing.T) {
	term, keys := newSimTerminal(t)
	now := time.Now()

	if !term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), now) {
		t.Fatalf("plain key should not quit")
	}
	term.handleKey(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), now.Add(30*time.Millisecond))

	f := keys.Frame()
	if !f.Held("KeyQ") || len(f.Pressed()) != 1 {
		t.Fatalf("held=%v pressed=%v, want one press of KeyQ", f.Held("KeyQ"), f.Pressed())
	}
	if term.handleKey(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), now) {
		t.Fatalf("ctrl-c should quit")
	}
}

func TestTerminalObserveDraws(t *testing.T) {
	term, _ := newSimTerminal(t)
	game := arena.New(arena.Options{Viewport: term})
	term.Observe(1, game, nil)
	game.Update(arena.NewKeyFrame(nil), 16*time.Millisecond)
	term.Observe(2, game, []arena.Event{{Kind: arena.EventEliminated}})
}

func TestCueFor(t *testing.T) {
	if _, ok := cueFor(arena.Event{Kind: arena.EventPowerSpawned}); ok {
		t.Fatalf("spawns should be silent")
	}
	good, ok := cueFor(arena.Event{Kind: arena.EventPowerCollected, Power: arena.PowerSpeedUp})
	if !ok {
		t.Fatalf("collecting should make a sound")
	}
	bad, _ := cueFor(arena.Event{Kind: arena.EventPowerCollected, Power: arena.PowerSpeedDown})
	if good.freq <= bad.freq {
		t.Fatalf("good cue %v Hz should be higher than bad cue %v Hz", good.freq, bad.freq)
	}
	won, _ := cueFor(arena.Event{Kind: arena.EventRoundWon})
	if won.duration <= good.duration {
		t.Fatalf("round cue should outlast pickup cue")
	}
}
