package arena

import "fmt"

// Color is a hex color string, e.g. "#00ff00"
type Color string

// Player is one roster entry together with its curve. Keeping both in a
// single record means they can never fall out of step on removal.
type Player struct {
	ID    string
	Name  string
	Color Color
	Keys  MoveKeys
	Score int
	Curve Curve
}

// Focus is the sub-element of a player row the left/right keys move between
type Focus int

const (
	FocusName Focus = iota
	FocusKeys
	FocusColor
	FocusRemove
)

// Next moves focus right, wrapping around
func (f Focus) Next() Focus {
	return (f + 1) % 4
}

// Previous moves focus left, wrapping around
func (f Focus) Previous() Focus {
	return (f + 3) % 4
}

func (f Focus) String() string {
	switch f {
	case FocusName:
		return "name"
	case FocusKeys:
		return "keys"
	case FocusColor:
		return "color"
	case FocusRemove:
		return "remove"
	}
	return "unknown"
}

// ItemKind tells what a menu row does
type ItemKind int

const (
	ItemPlayer ItemKind = iota
	ItemAddPlayer
	ItemStart
)

// MenuItem is a single menu row. PlayerID and Focus are only set for ItemPlayer.
type MenuItem struct {
	Kind     ItemKind
	PlayerID string
	Focus    Focus
}

// ModifierKind selects the editor variant held by a Modifier
type ModifierKind int

const (
	ModifierName ModifierKind = iota
	ModifierColor
	ModifierKeys
)

func (k ModifierKind) String() string {
	switch k {
	case ModifierName:
		return "name"
	case ModifierColor:
		return "color"
	case ModifierKeys:
		return "keys"
	}
	return "unknown"
}

// RotationDirection is the key currently being captured by the keys editor
type RotationDirection int

const (
	RotationCCW RotationDirection = iota
	RotationCW
)

// Modifier is an open editor for one field of the selected player.
// Only the fields of its Kind are meaningful.
type Modifier struct {
	Kind ModifierKind

	// ModifierName
	Buf []rune

	// ModifierColor
	Colors   []Color
	Selected int

	// ModifierKeys
	Step RotationDirection
	CCW  Key
	CW   Key
}

// NewNameModifier opens an empty name editor
func NewNameModifier() *Modifier {
	return &Modifier{Kind: ModifierName}
}

// NewColorModifier opens a color picker over the free colors
func NewColorModifier(colors []Color) *Modifier {
	return &Modifier{Kind: ModifierColor, Colors: append([]Color(nil), colors...)}
}

// NewKeysModifier opens the key capture editor, CCW first
func NewKeysModifier() *Modifier {
	return &Modifier{Kind: ModifierKeys, Step: RotationCCW}
}

// Update feeds one tick of input to the editor
func (m *Modifier) Update(in Input) {
	switch m.Kind {
	case ModifierName:
		if in.JustPressed(KeyBackspace) {
			if len(m.Buf) > 0 {
				m.Buf = m.Buf[:len(m.Buf)-1]
			}
			return
		}
		for _, k := range in.Pressed() {
			if r, ok := k.Rune(); ok && len(m.Buf) < MaxNameLength {
				m.Buf = append(m.Buf, r)
			}
		}

	case ModifierColor:
		if len(m.Colors) == 0 {
			return
		}
		if in.JustPressed(KeyLeft) {
			m.Selected = (m.Selected + len(m.Colors) - 1) % len(m.Colors)
		}
		if in.JustPressed(KeyRight) {
			m.Selected = (m.Selected + 1) % len(m.Colors)
		}

	case ModifierKeys:
		if in.JustPressed(KeyBackspace) {
			if m.Step == RotationCW {
				m.Step = RotationCCW
				m.CW = KeyUnset
			}
			return
		}
		pressed := in.Pressed()
		if len(pressed) == 0 {
			return
		}
		switch m.Step {
		case RotationCCW:
			m.CCW = pressed[0]
		case RotationCW:
			m.CW = pressed[0]
		}
		m.Step = RotationCW
	}
}

// Apply writes the edited value into the player. The color editor also
// hands the player's previous color back to the pool in place of the new one.
func (m *Modifier) Apply(p *Player, menu *Menu) {
	switch m.Kind {
	case ModifierName:
		if len(m.Buf) > 0 {
			p.Name = string(m.Buf)
		}

	case ModifierColor:
		if len(m.Colors) == 0 {
			return
		}
		chosen := m.Colors[m.Selected]
		for i, c := range menu.Colors {
			if c == chosen {
				menu.Colors[i] = p.Color
				p.Color = chosen
				return
			}
		}

	case ModifierKeys:
		if m.CCW == KeyUnset || m.CW == KeyUnset {
			return
		}
		p.Keys = MoveKeys{CCW: m.CCW, CW: m.CW}
	}
}

// SelectAction is the result of pressing Enter on a player row
type SelectAction int

const (
	ActionNone SelectAction = iota
	ActionModifier
	ActionRemove
)

// Menu is the roster editor shared by the setup and pause screens
type Menu struct {
	Items    []MenuItem
	Selected int

	// Free colors and key pairs, handed out from the back
	Colors []Color
	Keys   []MoveKeys

	Active *Modifier
}

// newMenu builds the menu with fresh copies of the default pools
func newMenu() Menu {
	return Menu{
		Items: []MenuItem{
			{Kind: ItemAddPlayer},
			{Kind: ItemStart},
		},
		Colors: append([]Color(nil), PlayerColors...),
		Keys:   append([]MoveKeys(nil), PlayerKeys...),
	}
}

// SelectedItem returns the highlighted row
func (m *Menu) SelectedItem() MenuItem {
	return m.Items[m.Selected]
}

// AddDisabled reports whether the pools are exhausted
func (m *Menu) AddDisabled() bool {
	return len(m.Colors) == 0 || len(m.Keys) == 0
}

// SelectItem resolves Enter on the selected row. The selected row must be a
// player row; anything else is a bookkeeping bug in the caller.
func (m *Menu) SelectItem() (SelectAction, *Modifier) {
	item := m.Items[m.Selected]
	if item.Kind != ItemPlayer {
		panic(fmt.Sprintf("menu: select called on non-player item %d", m.Selected))
	}
	switch item.Focus {
	case FocusName:
		return ActionModifier, NewNameModifier()
	case FocusColor:
		if len(m.Colors) == 0 {
			return ActionNone, nil
		}
		return ActionModifier, NewColorModifier(m.Colors)
	case FocusKeys:
		return ActionModifier, NewKeysModifier()
	case FocusRemove:
		return ActionRemove, nil
	}
	return ActionNone, nil
}

// navigate moves the focus of every player row at once
func (m *Menu) navigate(in Input) {
	right, left := in.JustPressed(KeyRight), in.JustPressed(KeyLeft)
	for i := range m.Items {
		if m.Items[i].Kind != ItemPlayer {
			continue
		}
		if right {
			m.Items[i].Focus = m.Items[i].Focus.Next()
		}
		if left {
			m.Items[i].Focus = m.Items[i].Focus.Previous()
		}
	}
}

// resetFocus puts every player row back on the name field
func (m *Menu) resetFocus() {
	for i := range m.Items {
		m.Items[i].Focus = FocusName
	}
}

// insertPlayer adds a row after the last player row and returns its index
func (m *Menu) insertPlayer(id string) int {
	idx := 0
	for idx < len(m.Items) && m.Items[idx].Kind == ItemPlayer {
		idx++
	}
	m.Items = append(m.Items, MenuItem{})
	copy(m.Items[idx+1:], m.Items[idx:])
	m.Items[idx] = MenuItem{Kind: ItemPlayer, PlayerID: id, Focus: FocusName}
	return idx
}

// removeItem drops row i
func (m *Menu) removeItem(i int) {
	m.Items = append(m.Items[:i], m.Items[i+1:]...)
	if m.Selected >= len(m.Items) {
		m.Selected = len(m.Items) - 1
	}
}

// popResources takes the next free color and key pair
func (m *Menu) popResources() (Color, MoveKeys) {
	c := m.Colors[len(m.Colors)-1]
	m.Colors = m.Colors[:len(m.Colors)-1]
	k := m.Keys[len(m.Keys)-1]
	m.Keys = m.Keys[:len(m.Keys)-1]
	return c, k
}

// pushResources hands a removed player's color and keys back
func (m *Menu) pushResources(c Color, k MoveKeys) {
	m.Colors = append(m.Colors, c)
	m.Keys = append(m.Keys, k)
}

// tickMenu runs one tick of roster editing, shared by Setup and Paused
func (k *Kurve) tickMenu(in Input) {
	menu := &k.Menu

	if menu.Active != nil {
		switch {
		case in.JustPressed(KeyEscape):
			menu.Active = nil
		case in.JustPressed(KeyEnter):
			mod := menu.Active
			menu.Active = nil
			mod.Apply(k.selectedPlayer(), menu)
		default:
			menu.Active.Update(in)
		}
		return
	}

	menu.navigate(in)

	if in.JustPressed(KeyEnter) {
		switch menu.SelectedItem().Kind {
		case ItemPlayer:
			switch action, mod := menu.SelectItem(); action {
			case ActionModifier:
				menu.Active = mod
			case ActionRemove:
				k.RemovePlayer(menu.SelectedItem().PlayerID)
				menu.Selected = max(menu.Selected-1, 0)
			}
		case ItemAddPlayer:
			if _, ok := k.AddPlayer(); ok {
				menu.resetFocus()
			}
		case ItemStart:
			if k.CanStart() {
				k.startRound()
				menu.Selected = 0
				return
			}
		}
	}

	if in.JustPressed(KeyUp) {
		menu.Selected = (menu.Selected + len(menu.Items) - 1) % len(menu.Items)
	}
	if in.JustPressed(KeyDown) {
		menu.Selected = (menu.Selected + 1) % len(menu.Items)
	}
}

// selectedPlayer returns the player of the selected row, which must be a player row
func (k *Kurve) selectedPlayer() *Player {
	item := k.Menu.SelectedItem()
	if item.Kind != ItemPlayer {
		panic("menu: modifier applied to non-player item")
	}
	return k.mustPlayer(item.PlayerID)
}
