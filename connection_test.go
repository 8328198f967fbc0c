package main

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	"github.com/gorilla/websocket"

	"kurve-server/arena"
)

type frame struct {
	typ  int
	data []byte
}

// fakeSocket replays scripted frames and records writes
type fakeSocket struct {
	mu      sync.Mutex
	reads   []frame
	written []frame
	closes  int
}

func (s *fakeSocket) ReadMessage() (int, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.reads) == 0 {
		return 0, nil, io.EOF
	}
	f := s.reads[0]
	s.reads = s.reads[1:]
	return f.typ, f.data, nil
}

func (s *fakeSocket) WriteMessage(typ int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.written = append(s.written, frame{typ: typ, data: data})
	return nil
}

func (s *fakeSocket) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

// types decodes the "t" field of every JSON frame written so far
func (s *fakeSocket) types(t *testing.T) []string {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, f := range s.written {
		var m struct {
			Type string `json:"t"`
		}
		if err := json.Unmarshal(f.data, &m); err != nil {
			t.Fatalf("written frame is not json: %v", err)
		}
		out = append(out, m.Type)
	}
	return out
}

func newFakeConn() (*Conn, *fakeSocket) {
	ws := &fakeSocket{}
	return NewConn(ws, jsonCodec{}), ws
}

func TestConnManagerPromotesOldestSpectator(t *testing.T) {
	m := NewConnManager(true)
	a, _ := newFakeConn()
	b, _ := newFakeConn()
	c, _ := newFakeConn()

	if !m.Add(a) {
		t.Fatalf("first connection should control")
	}
	if m.Add(b) || m.Add(c) {
		t.Fatalf("later connections should spectate")
	}

	if was, promoted := m.Remove(b.ID); was || promoted != nil {
		t.Fatalf("removing a spectator = %v, %v", was, promoted)
	}
	was, promoted := m.Remove(a.ID)
	if !was || promoted != c {
		t.Fatalf("removing controller = %v, %v, want true, c", was, promoted)
	}
	if !m.IsController(c.ID) {
		t.Fatalf("c should control after promotion")
	}
	if was, promoted := m.Remove(c.ID); !was || promoted != nil {
		t.Fatalf("removing last controller = %v, %v", was, promoted)
	}
	if m.Count() != 0 {
		t.Fatalf("count = %d, want 0", m.Count())
	}
}

func TestConnManagerSpectatorsOnly(t *testing.T) {
	m := NewConnManager(false)
	a, _ := newFakeConn()
	if m.Add(a) {
		t.Fatalf("no connection may control")
	}
	if m.IsController(a.ID) {
		t.Fatalf("IsController true without control")
	}
}

func TestConnManagerSnapshotOrder(t *testing.T) {
	m := NewConnManager(true)
	var ids []string
	for i := 0; i < 4; i++ {
		c, _ := newFakeConn()
		m.Add(c)
		ids = append(ids, c.ID)
	}
	m.Remove(ids[1])
	got := m.Snapshot()
	want := []string{ids[0], ids[2], ids[3]}
	if len(got) != len(want) {
		t.Fatalf("snapshot len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("snapshot[%d] = %s, want %s", i, got[i].ID, want[i])
		}
	}
	if _, ok := m.Get(ids[1]); ok {
		t.Fatalf("removed connection still found")
	}
}

func TestConnSendAfterClose(t *testing.T) {
	c, ws := newFakeConn()
	if err := c.Send(ErrorMsg{Type: MsgError, Message: "x"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	c.Close()
	c.Close()
	if err := c.Send(ErrorMsg{Type: MsgError, Message: "y"}); err != nil {
		t.Fatalf("send after close: %v", err)
	}
	if len(ws.written) != 1 {
		t.Fatalf("written = %d, want 1", len(ws.written))
	}
	if ws.written[0].typ != websocket.TextMessage {
		t.Fatalf("frame type = %d, want text", ws.written[0].typ)
	}
	if ws.closes != 1 {
		t.Fatalf("socket closed %d times, want 1", ws.closes)
	}
}

func TestReadLoopSkipsBadFrames(t *testing.T) {
	c, ws := newFakeConn()
	ws.reads = []frame{
		{websocket.TextMessage, []byte(`{"t":"kd","k":"KeyQ"}`)},
		{websocket.TextMessage, []byte(`{`)},
		{websocket.TextMessage, []byte(`{"t":"ku","k":"KeyQ"}`)},
	}

	var got []ClientMessage
	disconnects := 0
	c.ReadLoop(
		func(_ *Conn, msg ClientMessage) { got = append(got, msg) },
		func(*Conn) { disconnects++ },
	)

	if len(got) != 2 || got[0].Type != MsgKeyDown || got[1].Type != MsgKeyUp {
		t.Fatalf("messages = %+v", got)
	}
	if disconnects != 1 {
		t.Fatalf("disconnects = %d, want 1", disconnects)
	}
	if ws.closes != 1 {
		t.Fatalf("socket not closed after read loop")
	}
}

func TestControlHandler(t *testing.T) {
	m := NewConnManager(true)
	ctrl, _ := newFakeConn()
	watcher, _ := newFakeConn()
	m.Add(ctrl)
	m.Add(watcher)

	keys := arena.NewKeyState()
	vp := NewRemoteViewport(DefaultViewportWidth, DefaultViewportHeight)
	handle := ControlHandler(m, keys, vp)

	handle(watcher, ClientMessage{Type: MsgKeyDown, Key: "KeyW"})
	handle(watcher, ClientMessage{Type: MsgViewport, Width: 10, Height: 10})
	handle(ctrl, ClientMessage{Type: MsgKeyDown, Key: "KeyQ"})
	handle(ctrl, ClientMessage{Type: MsgKeyDown})

	f := keys.Frame()
	if !f.Held("KeyQ") || !f.JustPressed("KeyQ") {
		t.Fatalf("controller key not pressed")
	}
	if f.Held("KeyW") {
		t.Fatalf("spectator key was applied")
	}
	if len(f.Pressed()) != 1 {
		t.Fatalf("pressed = %v, want only KeyQ", f.Pressed())
	}
	if w, h := vp.Size(); w != DefaultViewportWidth || h != DefaultViewportHeight {
		t.Fatalf("spectator changed viewport to %vx%v", w, h)
	}

	handle(ctrl, ClientMessage{Type: MsgKeyUp, Key: "KeyQ"})
	if keys.Frame().Held("KeyQ") {
		t.Fatalf("key still held after key up")
	}

	handle(ctrl, ClientMessage{Type: MsgViewport, Width: 0, Height: 500})
	handle(ctrl, ClientMessage{Type: MsgViewport, Width: 900, Height: 500})
	if w, h := vp.Size(); w != 900 || h != 500 {
		t.Fatalf("viewport = %vx%v, want 900x500", w, h)
	}
}
