package main

import (
	"context"
	"log"
	"time"

	"kurve-server/arena"
)

// Observer is told about every tick. Observers run on the loop goroutine
// and may read the game but must not keep references into it.
type Observer interface {
	Observe(tick int, game *arena.Kurve, events []arena.Event)
}

// GameLoop drives the game at a fixed tick rate
type GameLoop struct {
	game      *arena.Kurve
	keys      *arena.KeyState
	observers []Observer
	tickRate  int
	tickCount int // total ticks elapsed
}

// NewGameLoop creates a game loop feeding keys into game
func NewGameLoop(game *arena.Kurve, keys *arena.KeyState, tickRate int, observers ...Observer) *GameLoop {
	return &GameLoop{
		game:      game,
		keys:      keys,
		observers: observers,
		tickRate:  tickRate,
	}
}

// Run starts the fixed-timestep loop. Blocks until ctx is done.
func (gl *GameLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second / time.Duration(gl.tickRate))
	defer ticker.Stop()
	log.Printf("game loop started at %d ticks/sec", gl.tickRate)

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			log.Printf("game loop stopped after %d ticks", gl.tickCount)
			return
		case now := <-ticker.C:
			dt := now.Sub(last)
			last = now
			gl.tick(dt)
		}
	}
}

// tick executes a single game update
func (gl *GameLoop) tick(dt time.Duration) {
	gl.tickCount++
	events := gl.game.Update(gl.keys.Frame(), dt)
	gl.logEvents(events)
	for _, o := range gl.observers {
		o.Observe(gl.tickCount, gl.game, events)
	}
}

func (gl *GameLoop) logEvents(events []arena.Event) {
	for _, e := range events {
		switch e.Kind {
		case arena.EventPowerSpawned:
			// too frequent to be interesting
		default:
			log.Printf("%s", e)
		}
	}
}

// Broadcaster sends events every tick and the state every n ticks to all
// connections
type Broadcaster struct {
	conns *ConnManager
	every int
}

// NewBroadcaster creates a broadcaster sending state every n ticks
func NewBroadcaster(conns *ConnManager, every int) *Broadcaster {
	return &Broadcaster{conns: conns, every: max(every, 1)}
}

// Observe implements Observer
func (b *Broadcaster) Observe(tick int, game *arena.Kurve, events []arena.Event) {
	conns := b.conns.Snapshot()
	if len(conns) == 0 {
		return
	}

	if len(events) > 0 {
		msg := NewEventsMsg(events)
		for _, c := range conns {
			if err := c.Send(msg); err != nil {
				log.Printf("send error to %s: %v", c.ID, err)
			}
		}
	}

	if tick%b.every != 0 {
		return
	}
	snap := game.Snapshot()
	for _, c := range conns {
		if err := c.Send(NewStateMsg(snap, c.cursors)); err != nil {
			log.Printf("send error to %s: %v", c.ID, err)
		}
	}
}
