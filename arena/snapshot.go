package arena

import "time"

// Snapshot is a read-only view of the game for renderers. Line point slices
// are shared with the game; lines are never modified once appended.
type Snapshot struct {
	Phase     Phase
	Remaining time.Duration // left in countdown or winner phase
	Winner    string
	Bounds    ArenaBounds
	Players   []PlayerView
	PowerUps  []PowerUp
	Timeouts  []TimeoutView
	Menu      MenuView
}

// PlayerView is a player with its curve state flattened
type PlayerView struct {
	ID    string
	Name  string
	Color Color
	Keys  MoveKeys
	Score int

	Position     Point
	Heading      float64
	Projection   Point
	Girth        Girth
	Alive        bool
	TrailActive  bool
	Invulnerable bool

	// Lines holds the retained trail. Appended counts every line added in
	// the current Epoch, so Lines[i] is line number Appended-len(Lines)+i.
	Lines    []Line
	Epoch    uint32
	Appended uint64
}

// TimeoutView is an active effect with its remaining time
type TimeoutView struct {
	PlayerID  string
	Kind      PowerKind
	Remaining time.Duration
}

// MenuView is the roster editor as drawn
type MenuView struct {
	Items       []MenuItem
	Selected    int
	Modifier    *ModifierView
	AddDisabled bool
	CanStart    bool
}

// ModifierView describes the open editor
type ModifierView struct {
	Kind     ModifierKind
	Text     string
	Colors   []Color
	Selected int
	Step     RotationDirection
	CCW      Key
	CW       Key
}

// Snapshot copies out everything a renderer needs
func (k *Kurve) Snapshot() Snapshot {
	now := k.clock.Now()
	s := Snapshot{
		Phase:    k.State.Phase,
		Winner:   k.State.Winner,
		Bounds:   k.Bounds,
		Players:  make([]PlayerView, 0, len(k.Players)),
		PowerUps: k.Powers.Sorted(),
		Timeouts: make([]TimeoutView, 0, len(k.Powers.Timeouts)),
		Menu: MenuView{
			Items:       append([]MenuItem(nil), k.Menu.Items...),
			Selected:    k.Menu.Selected,
			AddDisabled: k.Menu.AddDisabled(),
			CanStart:    k.CanStart(),
		},
	}

	switch k.State.Phase {
	case PhaseCountdown:
		s.Remaining = max(CountdownDuration-now.Sub(k.State.Started), 0)
	case PhaseWinner:
		s.Remaining = max(WinnerGloatDuration-now.Sub(k.State.Started), 0)
	}

	for _, p := range k.Players {
		c := &p.Curve
		s.Players = append(s.Players, PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			Color:        p.Color,
			Keys:         p.Keys,
			Score:        p.Score,
			Position:     c.Position,
			Heading:      c.Heading,
			Projection:   c.ProjectRotation(),
			Girth:        c.Girth,
			Alive:        c.Alive,
			TrailActive:  c.TrailActive,
			Invulnerable: c.Invulnerable(),
			Lines:        append([]Line(nil), c.Lines...),
			Epoch:        c.epoch,
			Appended:     c.appended,
		})
	}

	for _, t := range k.Powers.Timeouts {
		s.Timeouts = append(s.Timeouts, TimeoutView{
			PlayerID:  t.PlayerID,
			Kind:      t.Kind,
			Remaining: t.Remaining(now),
		})
	}

	if m := k.Menu.Active; m != nil {
		s.Menu.Modifier = &ModifierView{
			Kind:     m.Kind,
			Text:     string(m.Buf),
			Colors:   append([]Color(nil), m.Colors...),
			Selected: m.Selected,
			Step:     m.Step,
			CCW:      m.CCW,
			CW:       m.CW,
		}
	}
	return s
}

// LinesSince returns the lines a reader that has seen sent lines of epoch
// still lacks. A reader on an older epoch gets the whole retained trail.
func (v PlayerView) LinesSince(epoch uint32, sent uint64) []Line {
	if epoch != v.Epoch || sent > v.Appended {
		return v.Lines
	}
	missing := v.Appended - sent
	if missing >= uint64(len(v.Lines)) {
		return v.Lines
	}
	return v.Lines[len(v.Lines)-int(missing):]
}
