package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"kurve-server/arena"
)

// translateKey maps a terminal key event to its browser key code
func translateKey(ev *tcell.EventKey) (arena.Key, bool) {
	switch ev.Key() {
	case tcell.KeyUp:
		return arena.KeyUp, true
	case tcell.KeyDown:
		return arena.KeyDown, true
	case tcell.KeyLeft:
		return arena.KeyLeft, true
	case tcell.KeyRight:
		return arena.KeyRight, true
	case tcell.KeyEnter:
		return arena.KeyEnter, true
	case tcell.KeyEscape:
		return arena.KeyEscape, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return arena.KeyBackspace, true
	case tcell.KeyPgUp:
		return arena.KeyPageUp, true
	case tcell.KeyPgDn:
		return arena.KeyPageDown, true
	case tcell.KeyRune:
		r := ev.Rune()
		switch {
		case r == ' ':
			return arena.KeySpace, true
		case r == '-':
			return "Minus", true
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			return arena.Key("Key" + strings.ToUpper(string(r))), true
		case r >= '0' && r <= '9':
			return arena.Key("Digit" + string(r)), true
		}
	}
	return arena.KeyUnset, false
}

// holdTracker turns key repeats into held keys. A key is held from its first
// event until window passes without another one.
type holdTracker struct {
	mu     sync.Mutex
	last   map[arena.Key]time.Time
	window time.Duration
}

func newHoldTracker(window time.Duration) *holdTracker {
	return &holdTracker{last: make(map[arena.Key]time.Time), window: window}
}

// touch records an event for k and reports whether k was not held before
func (h *holdTracker) touch(k arena.Key, now time.Time) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, held := h.last[k]
	h.last[k] = now
	return !held
}

// expire drops and returns the keys that stopped repeating
func (h *holdTracker) expire(now time.Time) []arena.Key {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []arena.Key
	for k, t := range h.last {
		if now.Sub(t) > h.window {
			delete(h.last, k)
			out = append(out, k)
		}
	}
	return out
}

// Terminal is the tcell frontend: keyboard in, viewport size, renderer
type Terminal struct {
	screen tcell.Screen
	keys   *arena.KeyState
	holds  *holdTracker
	sound  *Sound
}

// NewTerminal takes over the terminal
func NewTerminal(keys *arena.KeyState, sound *Sound) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return newTerminal(screen, keys, sound), nil
}

func newTerminal(screen tcell.Screen, keys *arena.KeyState, sound *Sound) *Terminal {
	screen.HideCursor()
	return &Terminal{
		screen: screen,
		keys:   keys,
		holds:  newHoldTracker(HoldWindow),
		sound:  sound,
	}
}

// Size implements arena.Viewport in arena px
func (t *Terminal) Size() (float64, float64) {
	w, h := t.screen.Size()
	// last row is the status line
	return float64(w) * CellWidth, float64(max(h-1, 1)) * CellHeight
}

// Run reads terminal events until the screen is closed or ctx is done.
// Ctrl-C calls quit.
func (t *Terminal) Run(ctx context.Context, quit func()) {
	for ctx.Err() == nil {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if !t.handleKey(ev, time.Now()) {
				quit()
				return
			}
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
}

// handleKey feeds a key event into the key state. It returns false on Ctrl-C.
func (t *Terminal) handleKey(ev *tcell.EventKey, now time.Time) bool {
	if ev.Key() == tcell.KeyCtrlC ||
		(ev.Key() == tcell.KeyRune && ev.Modifiers()&tcell.ModCtrl != 0 && (ev.Rune() == 'c' || ev.Rune() == 'C')) {
		return false
	}
	if k, ok := translateKey(ev); ok && t.holds.touch(k, now) {
		t.keys.Press(k)
	}
	return true
}

// Observe implements Observer: releases keys, plays cues and redraws
func (t *Terminal) Observe(_ int, game *arena.Kurve, events []arena.Event) {
	for _, k := range t.holds.expire(time.Now()) {
		t.keys.Release(k)
	}
	t.sound.Play(events)
	t.draw(game.Snapshot())
}

// Close restores the terminal
func (t *Terminal) Close() {
	t.sound.Close()
	t.screen.Fini()
}

func toCell(p arena.Point) (int, int) {
	return int(p.X / CellWidth), int(p.Y / CellHeight)
}

var powerRunes = map[arena.PowerKind]rune{
	arena.PowerSpeedUp:         '»',
	arena.PowerSpeedDown:       '«',
	arena.PowerRotUp:           '↻',
	arena.PowerRotDown:         '↺',
	arena.PowerInvulnerability: '◊',
	arena.PowerAnorexia:        '-',
	arena.PowerChungus:         '+',
}

func (t *Terminal) draw(s arena.Snapshot) {
	t.screen.Clear()
	t.drawBorder(s.Bounds)

	for _, p := range s.Players {
		style := tcell.StyleDefault.Foreground(tcell.GetColor(string(p.Color)))
		for _, l := range p.Lines {
			for _, pt := range l.Points {
				x, y := toCell(pt)
				t.screen.SetContent(x, y, '█', nil, style)
			}
		}
		x, y := toCell(p.Position)
		head := '●'
		if !p.Alive {
			head = 'x'
		}
		t.screen.SetContent(x, y, head, nil, style.Bold(true))
		if s.Phase == arena.PhaseCountdown {
			px, py := toCell(p.Projection)
			t.screen.SetContent(px, py, '·', nil, style)
		}
	}

	for _, pu := range s.PowerUps {
		color := tcell.ColorRed
		if pu.Kind.Good() {
			color = tcell.ColorGreen
		}
		x, y := toCell(pu.Point)
		t.screen.SetContent(x, y, powerRunes[pu.Kind], nil, tcell.StyleDefault.Foreground(color).Bold(true))
	}

	if s.Phase == arena.PhaseSetup || s.Phase == arena.PhasePaused {
		t.drawMenu(s)
	}
	t.drawStatus(s)
	t.screen.Show()
}

func (t *Terminal) drawBorder(b arena.ArenaBounds) {
	x0, y0 := toCell(arena.Point{X: b.XMin, Y: b.YMin})
	x1, y1 := toCell(arena.Point{X: b.XMax, Y: b.YMax})
	style := tcell.StyleDefault.Foreground(tcell.ColorGray)
	for x := x0 + 1; x < x1; x++ {
		t.screen.SetContent(x, y0, '─', nil, style)
		t.screen.SetContent(x, y1, '─', nil, style)
	}
	for y := y0 + 1; y < y1; y++ {
		t.screen.SetContent(x0, y, '│', nil, style)
		t.screen.SetContent(x1, y, '│', nil, style)
	}
	t.screen.SetContent(x0, y0, '┌', nil, style)
	t.screen.SetContent(x1, y0, '┐', nil, style)
	t.screen.SetContent(x0, y1, '└', nil, style)
	t.screen.SetContent(x1, y1, '┘', nil, style)
}

func (t *Terminal) drawMenu(s arena.Snapshot) {
	players := make(map[string]arena.PlayerView, len(s.Players))
	for _, p := range s.Players {
		players[p.ID] = p
	}

	row := 1
	for i, item := range s.Menu.Items {
		base := tcell.StyleDefault
		marker := "  "
		if i == s.Menu.Selected {
			marker = "> "
		}
		switch item.Kind {
		case arena.ItemPlayer:
			p := players[item.PlayerID]
			fields := []struct {
				focus arena.Focus
				text  string
				style tcell.Style
			}{
				{arena.FocusName, fmt.Sprintf("%-20s", p.Name), base},
				{arena.FocusKeys, fmt.Sprintf("%-9s", p.Keys), base},
				{arena.FocusColor, "■", base.Foreground(tcell.GetColor(string(p.Color)))},
				{arena.FocusRemove, "[x]", base},
			}
			x := t.drawText(1, row, marker, base)
			for _, f := range fields {
				style := f.style
				if i == s.Menu.Selected && item.Focus == f.focus {
					style = style.Reverse(true)
				}
				x = t.drawText(x, row, f.text, style) + 1
			}
			t.drawText(x, row, fmt.Sprintf("%d", p.Score), base.Bold(true))
		case arena.ItemAddPlayer:
			style := base
			if s.Menu.AddDisabled {
				style = style.Dim(true)
			}
			t.drawText(1, row, marker+"+ add player", style)
		case arena.ItemStart:
			style := base
			if !s.Menu.CanStart {
				style = style.Dim(true)
			}
			t.drawText(1, row, marker+"start", style)
		}
		row++
	}

	if m := s.Menu.Modifier; m != nil {
		row++
		switch m.Kind {
		case arena.ModifierName:
			t.drawText(1, row, "name: "+m.Text+"_", tcell.StyleDefault)
		case arena.ModifierColor:
			x := t.drawText(1, row, "color: ", tcell.StyleDefault)
			for i, c := range m.Colors {
				style := tcell.StyleDefault.Foreground(tcell.GetColor(string(c)))
				if i == m.Selected {
					style = style.Reverse(true)
				}
				x = t.drawText(x, row, "■", style) + 1
			}
		case arena.ModifierKeys:
			step := "ccw"
			if m.Step == arena.RotationCW {
				step = "cw"
			}
			t.drawText(1, row, fmt.Sprintf("keys: %s/%s, press %s", m.CCW.Label(), m.CW.Label(), step), tcell.StyleDefault)
		}
	}
}

func (t *Terminal) drawStatus(s arena.Snapshot) {
	_, h := t.screen.Size()
	var b strings.Builder
	b.WriteString(s.Phase.String())
	switch s.Phase {
	case arena.PhaseCountdown:
		fmt.Fprintf(&b, " %d", int(s.Remaining.Seconds())+1)
	case arena.PhaseWinner:
		winner := "draw"
		for _, p := range s.Players {
			if p.ID == s.Winner {
				winner = p.Name + " wins"
			}
		}
		fmt.Fprintf(&b, " %s", winner)
	}
	for _, p := range s.Players {
		fmt.Fprintf(&b, " | %s %d", p.Name, p.Score)
	}
	b.WriteString(" | space pause, ctrl-c quit")
	t.drawText(0, h-1, b.String(), tcell.StyleDefault.Reverse(true))
}

// drawText writes str at x, y and returns the column after it
func (t *Terminal) drawText(x, y int, str string, style tcell.Style) int {
	for _, r := range str {
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
