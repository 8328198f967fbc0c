package arena

import "fmt"

// EventKind identifies what happened during a tick
type EventKind int

const (
	EventPhaseChanged EventKind = iota
	EventEliminated
	EventRoundWon
	EventRoundDrawn
	EventPowerSpawned
	EventPowerCollected
	EventPowerExpired
	EventPlayerAdded
	EventPlayerRemoved
)

var eventNames = map[EventKind]string{
	EventPhaseChanged:   "phase_changed",
	EventEliminated:     "eliminated",
	EventRoundWon:       "round_won",
	EventRoundDrawn:     "round_drawn",
	EventPowerSpawned:   "power_spawned",
	EventPowerCollected: "power_collected",
	EventPowerExpired:   "power_expired",
	EventPlayerAdded:    "player_added",
	EventPlayerRemoved:  "player_removed",
}

func (k EventKind) String() string {
	if n, ok := eventNames[k]; ok {
		return n
	}
	return "unknown"
}

// Event is a notable state change reported by Update. Only the fields
// relevant to Kind are set.
type Event struct {
	Kind     EventKind
	PlayerID string
	Name     string
	Phase    Phase
	Power    PowerKind
	PowerID  int
}

func (e Event) String() string {
	switch e.Kind {
	case EventPhaseChanged:
		return fmt.Sprintf("phase -> %s", e.Phase)
	case EventEliminated, EventRoundWon, EventPlayerAdded, EventPlayerRemoved:
		return fmt.Sprintf("%s %s (%s)", e.Kind, e.Name, e.PlayerID)
	case EventPowerSpawned:
		return fmt.Sprintf("%s #%d %s", e.Kind, e.PowerID, e.Power)
	case EventPowerCollected, EventPowerExpired:
		return fmt.Sprintf("%s %s by %s (%s)", e.Kind, e.Power, e.Name, e.PlayerID)
	}
	return e.Kind.String()
}
