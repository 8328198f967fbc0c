package main

import (
	"log"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"kurve-server/arena"
)

const sampleRate = beep.SampleRate(44100)

// cue is a short sine tone
type cue struct {
	freq     float64
	duration time.Duration
}

// cueFor picks the tone for an event, if it has one
func cueFor(e arena.Event) (cue, bool) {
	switch e.Kind {
	case arena.EventEliminated:
		return cue{freq: 220, duration: 150 * time.Millisecond}, true
	case arena.EventRoundWon:
		return cue{freq: 880, duration: 300 * time.Millisecond}, true
	case arena.EventRoundDrawn:
		return cue{freq: 330, duration: 300 * time.Millisecond}, true
	case arena.EventPowerCollected:
		if e.Power.Good() {
			return cue{freq: 660, duration: 60 * time.Millisecond}, true
		}
		return cue{freq: 440, duration: 60 * time.Millisecond}, true
	}
	return cue{}, false
}

// Sound plays event cues through the system speaker
type Sound struct {
	enabled bool
}

// NewSound initializes the speaker. Failure is not fatal, the game just
// runs silent.
func NewSound(enabled bool) *Sound {
	if !enabled {
		return &Sound{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("audio initialization failed: %v", err)
		return &Sound{}
	}
	return &Sound{enabled: true}
}

// Play plays the cues of a tick's events
func (s *Sound) Play(events []arena.Event) {
	if !s.enabled {
		return
	}
	for _, e := range events {
		c, ok := cueFor(e)
		if !ok {
			continue
		}
		sine, err := generators.SineTone(sampleRate, c.freq)
		if err != nil {
			log.Printf("sine tone %.0f Hz: %v", c.freq, err)
			continue
		}
		speaker.Play(beep.Take(sampleRate.N(c.duration), sine))
	}
}

// Close releases the speaker
func (s *Sound) Close() {
	if s.enabled {
		speaker.Close()
		s.enabled = false
	}
}
