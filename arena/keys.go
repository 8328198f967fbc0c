package arena

import (
	"fmt"
	"strings"
	"sync"
)

// Key identifies a physical key by its browser KeyboardEvent.code name,
// e.g. "KeyQ", "ArrowLeft", "Digit1".
type Key string

// Keys used by the round state machine and the menu
const (
	KeyUp        Key = "ArrowUp"
	KeyDown      Key = "ArrowDown"
	KeyLeft      Key = "ArrowLeft"
	KeyRight     Key = "ArrowRight"
	KeyEnter     Key = "Enter"
	KeyEscape    Key = "Escape"
	KeySpace     Key = "Space"
	KeyBackspace Key = "Backspace"
	KeyPageUp    Key = "PageUp"
	KeyPageDown  Key = "PageDown"
	KeyUnset     Key = ""
)

// Rune returns the character a key types in the name editor, if any
func (k Key) Rune() (rune, bool) {
	s := string(k)
	switch {
	case k == KeySpace:
		return ' ', true
	case k == "Minus":
		return '-', true
	case strings.HasPrefix(s, "Key") && len(s) == 4:
		return rune(strings.ToLower(s[3:])[0]), true
	case strings.HasPrefix(s, "Digit") && len(s) == 6:
		return rune(s[5]), true
	}
	return 0, false
}

// Label returns a short human readable name
func (k Key) Label() string {
	s := string(k)
	switch {
	case k == KeyUnset:
		return "???"
	case strings.HasPrefix(s, "Key") && len(s) == 4:
		return s[3:]
	case strings.HasPrefix(s, "Digit") && len(s) == 6:
		return s[5:]
	case strings.HasPrefix(s, "Arrow"):
		return s[5:]
	case k == KeyPageUp:
		return "PgUp"
	case k == KeyPageDown:
		return "PgDn"
	}
	return s
}

// MoveKeys are the two rotation keys of a player
type MoveKeys struct {
	CCW Key
	CW  Key
}

// String formats the keys as "ccw/cw"
func (m MoveKeys) String() string {
	return fmt.Sprintf("%s/%s", m.CCW.Label(), m.CW.Label())
}

// KeyFrame is an immutable per-tick snapshot of keyboard state
type KeyFrame struct {
	held    map[Key]bool
	pressed []Key
}

// NewKeyFrame builds a frame directly, mostly useful in tests
func NewKeyFrame(held []Key, pressed ...Key) KeyFrame {
	f := KeyFrame{held: make(map[Key]bool, len(held)), pressed: pressed}
	for _, k := range held {
		f.held[k] = true
	}
	return f
}

// Held reports whether k is currently held down
func (f KeyFrame) Held(k Key) bool {
	return f.held[k]
}

// JustPressed reports whether k went down since the previous tick
func (f KeyFrame) JustPressed(k Key) bool {
	for _, p := range f.pressed {
		if p == k {
			return true
		}
	}
	return false
}

// Pressed returns the keys that went down since the previous tick, in arrival order
func (f KeyFrame) Pressed() []Key {
	return f.pressed
}

// KeyState accumulates key events from a frontend between ticks.
// Safe for concurrent use: frontends write from their read loops,
// the game loop takes one Frame per tick.
type KeyState struct {
	mu      sync.Mutex
	held    map[Key]bool
	pressed []Key
}

// NewKeyState creates an empty key state
func NewKeyState() *KeyState {
	return &KeyState{held: make(map[Key]bool)}
}

// Press records a key down event. Repeats of an already held key are ignored.
func (s *KeyState) Press(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.held[k] {
		return
	}
	s.held[k] = true
	s.pressed = append(s.pressed, k)
}

// Release records a key up event
func (s *KeyState) Release(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, k)
}

// ReleaseAll drops every held key, used when the input source goes away
func (s *KeyState) ReleaseAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.held = make(map[Key]bool)
}

// Frame snapshots the current state and starts a new edge window.
// A key pressed and released between two frames is reported as just pressed once.
func (s *KeyState) Frame() KeyFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := KeyFrame{held: make(map[Key]bool, len(s.held)), pressed: s.pressed}
	for k := range s.held {
		f.held[k] = true
	}
	s.pressed = nil
	return f
}
