package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"kurve-server/arena"
)

type recordingObserver struct {
	ticks  []int
	phases []arena.Phase
}

func (o *recordingObserver) Observe(tick int, game *arena.Kurve, _ []arena.Event) {
	o.ticks = append(o.ticks, tick)
	o.phases = append(o.phases, game.State.Phase)
}

func newLoopGame() *arena.Kurve {
	return arena.New(arena.Options{
		Rand:     rand.New(rand.NewSource(1)),
		Viewport: arena.FixedViewport{W: 1000, H: 800},
	})
}

func TestGameLoopTickFeedsKeysAndObservers(t *testing.T) {
	game := newLoopGame()
	keys := arena.NewKeyState()
	obs := &recordingObserver{}
	loop := NewGameLoop(game, keys, DefaultTickRate, obs)

	loop.tick(16 * time.Millisecond)
	keys.Press(arena.KeyUp) // wraps to the start row
	keys.Release(arena.KeyUp)
	loop.tick(16 * time.Millisecond)
	keys.Press(arena.KeyEnter)
	loop.tick(16 * time.Millisecond)

	if len(obs.ticks) != 3 || obs.ticks[2] != 3 {
		t.Fatalf("observed ticks = %v, want [1 2 3]", obs.ticks)
	}
	if obs.phases[2] != arena.PhaseCountdown {
		t.Fatalf("phase after enter on start = %s, want countdown", obs.phases[2])
	}
}

func TestGameLoopRunStopsOnCancel(t *testing.T) {
	game := newLoopGame()
	obs := &recordingObserver{}
	loop := NewGameLoop(game, arena.NewKeyState(), 200, obs)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	done := make(chan struct{})
	go func() {
		loop.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("loop did not stop after cancel")
	}
	if len(obs.ticks) == 0 {
		t.Fatalf("loop never ticked")
	}
}

func TestBroadcasterThrottlesState(t *testing.T) {
	game := newLoopGame()
	conns := NewConnManager(true)
	a, wsA := newFakeConn()
	b, wsB := newFakeConn()
	conns.Add(a)
	conns.Add(b)
	bc := NewBroadcaster(conns, 2)

	bc.Observe(1, game, nil)
	if len(wsA.written) != 0 {
		t.Fatalf("state sent on off tick")
	}
	bc.Observe(2, game, nil)
	bc.Observe(3, game, []arena.Event{{Kind: arena.EventEliminated, PlayerID: "x", Name: "X"}})

	for _, ws := range []*fakeSocket{wsA, wsB} {
		got := ws.types(t)
		if len(got) != 2 || got[0] != MsgState || got[1] != MsgEvents {
			t.Fatalf("frames = %v, want [s e]", got)
		}
	}
	if len(a.cursors) != len(game.Players) {
		t.Fatalf("cursors = %d, want one per player", len(a.cursors))
	}
}

func TestBroadcasterWithoutConnections(t *testing.T) {
	bc := NewBroadcaster(NewConnManager(true), 0)
	if bc.every != 1 {
		t.Fatalf("every = %d, want 1", bc.every)
	}
	bc.Observe(1, newLoopGame(), nil)
}
