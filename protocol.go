package main

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"

	"kurve-server/arena"
)

// Protocol uses single-character keys to minimize wire size. The same keys
// are used for JSON text frames and msgpack binary frames.
//
// Message type constants (value of "t" field):
//   Client → Server:
//     "kd" = key down {"t":"kd","k":"KeyQ"}   (k = KeyboardEvent.code)
//     "ku" = key up   {"t":"ku","k":"KeyQ"}
//     "v"  = viewport {"t":"v","w":1280,"h":720}
//   Server → Client:
//     "w" = welcome {"t":"w","i":"id","c":1}   (c = 1 when this client steers)
//     "s" = state   {"t":"s","p":"running","r":0,"b":[xmin,xmax,ymin,ymax],"pl":[players],...}
//     "e" = events  {"t":"e","e":[events]}
//     "x" = error   {"t":"x","m":"message"}
//
// PlayerDTO trails are incremental: "l" holds only lines this client has not
// seen yet. When "e" (epoch) changes the client drops its trail first, then
// appends "l" and keeps the newest "kp" lines.

// Message type identifiers
const (
	MsgKeyDown  = "kd"
	MsgKeyUp    = "ku"
	MsgViewport = "v"
	MsgWelcome  = "w"
	MsgState    = "s"
	MsgEvents   = "e"
	MsgError    = "x"
)

// ClientMessage is any message from the browser
type ClientMessage struct {
	Type   string  `json:"t"`
	Key    string  `json:"k,omitempty"`
	Width  float64 `json:"w,omitempty"`
	Height float64 `json:"h,omitempty"`
}

// WelcomeMsg is sent on connect and again when a spectator is promoted
type WelcomeMsg struct {
	Type       string `json:"t"`
	ID         string `json:"i"`
	Controller int    `json:"c"`
}

// ErrorMsg is sent right before the server closes a connection
type ErrorMsg struct {
	Type    string `json:"t"`
	Message string `json:"m"`
}

// LineDTO is one trail segment. g = girth radius
type LineDTO struct {
	Girth  float64      `json:"g"`
	Points [][2]float64 `json:"p"`
}

// PlayerDTO is a player and its curve
type PlayerDTO struct {
	ID           string     `json:"i"`
	Name         string     `json:"n"`
	Color        string     `json:"c"`
	Keys         [2]string  `json:"k"`
	Score        int        `json:"p"`
	X            float64    `json:"x"`
	Y            float64    `json:"y"`
	Heading      float64    `json:"h"`
	Projection   [2]float64 `json:"pr"`
	Girth        float64    `json:"g"`
	Alive        int        `json:"a"`
	Trail        int        `json:"tr"`
	Invulnerable int        `json:"iv,omitempty"`
	Epoch        uint32     `json:"e"`
	Total        uint64     `json:"tt"`
	Keep         int        `json:"kp"`
	Lines        []LineDTO  `json:"l"`
}

// PowerUpDTO is a pickup on the field. k = kind name, g = 1 for good effects
type PowerUpDTO struct {
	ID   int     `json:"i"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Kind string  `json:"k"`
	Good int     `json:"g"`
}

// TimeoutDTO is an active effect. r = remaining ms
type TimeoutDTO struct {
	PlayerID  string `json:"i"`
	Kind      string `json:"k"`
	Remaining int64  `json:"r"`
}

// MenuItemDTO is one menu row. k = player|add|start, f = focused field
type MenuItemDTO struct {
	Kind     string `json:"k"`
	PlayerID string `json:"i,omitempty"`
	Focus    string `json:"f,omitempty"`
}

// ModifierDTO is the open roster editor
type ModifierDTO struct {
	Kind     string   `json:"k"`
	Text     string   `json:"x,omitempty"`
	Colors   []string `json:"c,omitempty"`
	Selected int      `json:"s"`
	Step     int      `json:"st"`
	CCW      string   `json:"l,omitempty"`
	CW       string   `json:"r,omitempty"`
}

// MenuDTO is the roster editor, only sent in setup and paused
type MenuDTO struct {
	Items       []MenuItemDTO `json:"i"`
	Selected    int           `json:"s"`
	Modifier    *ModifierDTO  `json:"m,omitempty"`
	AddDisabled int           `json:"ad"`
	CanStart    int           `json:"cs"`
}

// StateMsg is the periodic state update
type StateMsg struct {
	Type      string       `json:"t"`
	Phase     string       `json:"p"`
	Remaining int64        `json:"r"` // ms left in countdown or winner
	Winner    string       `json:"wi,omitempty"`
	Bounds    [4]float64   `json:"b"`
	Players   []PlayerDTO  `json:"pl"`
	PowerUps  []PowerUpDTO `json:"pu"`
	Timeouts  []TimeoutDTO `json:"to"`
	Menu      *MenuDTO     `json:"m,omitempty"`
}

// EventDTO is one game event
type EventDTO struct {
	Kind     string `json:"k"`
	PlayerID string `json:"i,omitempty"`
	Name     string `json:"n,omitempty"`
	Phase    string `json:"p,omitempty"`
	Power    string `json:"pw,omitempty"`
}

// EventsMsg carries the events of one tick
type EventsMsg struct {
	Type   string     `json:"t"`
	Events []EventDTO `json:"e"`
}

// trailCursor is what a client has seen of one curve's trail
type trailCursor struct {
	epoch uint32
	sent  uint64
}

// NewStateMsg converts a snapshot for one client and advances its cursors
func NewStateMsg(s arena.Snapshot, cursors map[string]trailCursor) StateMsg {
	msg := StateMsg{
		Type:      MsgState,
		Phase:     s.Phase.String(),
		Remaining: s.Remaining.Milliseconds(),
		Winner:    s.Winner,
		Bounds:    [4]float64{s.Bounds.XMin, s.Bounds.XMax, s.Bounds.YMin, s.Bounds.YMax},
		Players:   make([]PlayerDTO, 0, len(s.Players)),
		PowerUps:  make([]PowerUpDTO, 0, len(s.PowerUps)),
		Timeouts:  make([]TimeoutDTO, 0, len(s.Timeouts)),
	}

	seen := make(map[string]bool, len(s.Players))
	for _, p := range s.Players {
		seen[p.ID] = true
		cur, ok := cursors[p.ID]
		if !ok {
			cur = trailCursor{epoch: p.Epoch - 1}
		}
		lines := p.LinesSince(cur.epoch, cur.sent)
		cursors[p.ID] = trailCursor{epoch: p.Epoch, sent: p.Appended}

		msg.Players = append(msg.Players, PlayerDTO{
			ID:           p.ID,
			Name:         p.Name,
			Color:        string(p.Color),
			Keys:         [2]string{string(p.Keys.CCW), string(p.Keys.CW)},
			Score:        p.Score,
			X:            round1(p.Position.X),
			Y:            round1(p.Position.Y),
			Heading:      round3(p.Heading),
			Projection:   [2]float64{round1(p.Projection.X), round1(p.Projection.Y)},
			Girth:        p.Girth.Radius(),
			Alive:        boolInt(p.Alive),
			Trail:        boolInt(p.TrailActive),
			Invulnerable: boolInt(p.Invulnerable),
			Epoch:        p.Epoch,
			Total:        p.Appended,
			Keep:         len(p.Lines),
			Lines:        lineDTOs(lines),
		})
	}
	for id := range cursors {
		if !seen[id] {
			delete(cursors, id)
		}
	}

	for _, pu := range s.PowerUps {
		msg.PowerUps = append(msg.PowerUps, PowerUpDTO{
			ID:   pu.ID,
			X:    round1(pu.Point.X),
			Y:    round1(pu.Point.Y),
			Kind: pu.Kind.String(),
			Good: boolInt(pu.Kind.Good()),
		})
	}
	for _, t := range s.Timeouts {
		msg.Timeouts = append(msg.Timeouts, TimeoutDTO{
			PlayerID:  t.PlayerID,
			Kind:      t.Kind.String(),
			Remaining: t.Remaining.Milliseconds(),
		})
	}

	if s.Phase == arena.PhaseSetup || s.Phase == arena.PhasePaused {
		msg.Menu = newMenuDTO(s.Menu)
	}
	return msg
}

func newMenuDTO(m arena.MenuView) *MenuDTO {
	dto := &MenuDTO{
		Items:       make([]MenuItemDTO, 0, len(m.Items)),
		Selected:    m.Selected,
		AddDisabled: boolInt(m.AddDisabled),
		CanStart:    boolInt(m.CanStart),
	}
	for _, it := range m.Items {
		item := MenuItemDTO{}
		switch it.Kind {
		case arena.ItemPlayer:
			item.Kind = "player"
			item.PlayerID = it.PlayerID
			item.Focus = it.Focus.String()
		case arena.ItemAddPlayer:
			item.Kind = "add"
		case arena.ItemStart:
			item.Kind = "start"
		}
		dto.Items = append(dto.Items, item)
	}
	if mod := m.Modifier; mod != nil {
		colors := make([]string, len(mod.Colors))
		for i, c := range mod.Colors {
			colors[i] = string(c)
		}
		dto.Modifier = &ModifierDTO{
			Kind:     mod.Kind.String(),
			Text:     mod.Text,
			Colors:   colors,
			Selected: mod.Selected,
			Step:     int(mod.Step),
			CCW:      string(mod.CCW),
			CW:       string(mod.CW),
		}
	}
	return dto
}

// NewEventsMsg converts one tick's events
func NewEventsMsg(events []arena.Event) EventsMsg {
	msg := EventsMsg{Type: MsgEvents, Events: make([]EventDTO, 0, len(events))}
	for _, e := range events {
		dto := EventDTO{Kind: e.Kind.String(), PlayerID: e.PlayerID, Name: e.Name}
		switch e.Kind {
		case arena.EventPhaseChanged:
			dto.Phase = e.Phase.String()
		case arena.EventPowerSpawned, arena.EventPowerCollected, arena.EventPowerExpired:
			dto.Power = e.Power.String()
		}
		msg.Events = append(msg.Events, dto)
	}
	return msg
}

func lineDTOs(lines []arena.Line) []LineDTO {
	out := make([]LineDTO, len(lines))
	for i, l := range lines {
		pts := make([][2]float64, len(l.Points))
		for j, p := range l.Points {
			pts[j] = [2]float64{p.X, p.Y}
		}
		out[i] = LineDTO{Girth: l.Girth.Radius(), Points: pts}
	}
	return out
}

// Codec serializes outgoing messages for one connection
type Codec interface {
	Encode(v any) ([]byte, error)
	// MessageType is the websocket frame type the encoding needs
	MessageType() int
}

// NewCodec returns the codec for a ?enc= query value, JSON by default
func NewCodec(name string) Codec {
	if name == "msgpack" {
		return msgpackCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Encode(v any) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) MessageType() int             { return websocket.TextMessage }

// msgpackCodec reuses the json tags so both encodings share the short keys
type msgpackCodec struct{}

func (msgpackCodec) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	enc.UseCompactInts(true)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) MessageType() int { return websocket.BinaryMessage }

// DecodeClientMessage parses a frame from the browser. Text frames are JSON,
// binary frames msgpack.
func DecodeClientMessage(frameType int, raw []byte) (ClientMessage, error) {
	var msg ClientMessage
	if frameType == websocket.BinaryMessage {
		dec := msgpack.NewDecoder(bytes.NewReader(raw))
		dec.SetCustomStructTag("json")
		err := dec.Decode(&msg)
		return msg, err
	}
	err := json.Unmarshal(raw, &msg)
	return msg, err
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
