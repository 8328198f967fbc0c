package main

import (
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"kurve-server/arena"
)

// socket is the part of *websocket.Conn a Conn uses
type socket interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn manages a single WebSocket client session
type Conn struct {
	ID     string
	ws     socket
	codec  Codec
	mu     sync.Mutex // protects ws writes and closed
	closed bool

	// trail cursors per player id, only touched by the game loop
	cursors map[string]trailCursor
}

// NewConn creates a new connection wrapper
func NewConn(ws socket, codec Codec) *Conn {
	return &Conn{
		ID:      uuid.New().String(),
		ws:      ws,
		codec:   codec,
		cursors: make(map[string]trailCursor),
	}
}

// Send serializes msg with the connection's codec and writes it
func (c *Conn) Send(msg any) error {
	data, err := c.codec.Encode(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	return c.ws.WriteMessage(c.codec.MessageType(), data)
}

// Close marks connection closed
func (c *Conn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.ws.Close()
}

// ConnManager manages all active connections. The oldest connection is the
// controller whose keys steer the game, everyone else spectates.
type ConnManager struct {
	mu           sync.RWMutex
	conns        map[string]*Conn
	order        []string // connect order, oldest first
	controller   string
	allowControl bool
}

// NewConnManager creates an empty connection manager. With allowControl
// false every connection is a spectator.
func NewConnManager(allowControl bool) *ConnManager {
	return &ConnManager{
		conns:        make(map[string]*Conn),
		allowControl: allowControl,
	}
}

// Add registers a connection and reports whether it became the controller
func (m *ConnManager) Add(c *Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conns[c.ID] = c
	m.order = append(m.order, c.ID)
	if m.allowControl && m.controller == "" {
		m.controller = c.ID
		return true
	}
	return false
}

// Remove unregisters a connection and reports whether it was the controller.
// The oldest remaining connection is then promoted and returned.
func (m *ConnManager) Remove(id string) (bool, *Conn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.conns[id]; !ok {
		return false, nil
	}
	delete(m.conns, id)
	for i, oid := range m.order {
		if oid == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.controller != id {
		return false, nil
	}
	m.controller = ""
	if len(m.order) == 0 {
		return true, nil
	}
	m.controller = m.order[0]
	return true, m.conns[m.controller]
}

// IsController reports whether id currently steers the game
func (m *ConnManager) IsController(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.controller != "" && m.controller == id
}

// Get returns a connection by ID
func (m *ConnManager) Get(id string) (*Conn, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.conns[id]
	return c, ok
}

// Count returns the number of active connections
func (m *ConnManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.conns)
}

// Snapshot returns all current connections, oldest first
func (m *ConnManager) Snapshot() []*Conn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := make([]*Conn, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, m.conns[id])
	}
	return list
}

// ReadLoop handles incoming messages for a connection until it disconnects.
// onMessage is called for every well formed message, onDisconnect once
// when the connection closes.
func (c *Conn) ReadLoop(
	onMessage func(conn *Conn, msg ClientMessage),
	onDisconnect func(conn *Conn),
) {
	defer func() {
		onDisconnect(c)
		c.Close()
	}()

	for {
		mt, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws read error for %s: %v", c.ID, err)
			}
			return
		}

		msg, err := DecodeClientMessage(mt, raw)
		if err != nil {
			log.Printf("bad message from %s: %v", c.ID, err)
			continue
		}
		onMessage(c, msg)
	}
}

// ControlHandler routes client messages into the game. Only the
// controller's keys and viewport are used.
func ControlHandler(conns *ConnManager, keys *arena.KeyState, vp *RemoteViewport) func(*Conn, ClientMessage) {
	return func(c *Conn, msg ClientMessage) {
		if !conns.IsController(c.ID) {
			return
		}
		switch msg.Type {
		case MsgKeyDown:
			if msg.Key != "" {
				keys.Press(arena.Key(msg.Key))
			}
		case MsgKeyUp:
			keys.Release(arena.Key(msg.Key))
		case MsgViewport:
			if msg.Width > 0 && msg.Height > 0 {
				vp.Set(msg.Width, msg.Height)
			}
		}
	}
}

// RemoteViewport is the drawable size reported by the controlling client
type RemoteViewport struct {
	mu   sync.Mutex
	w, h float64
}

// NewRemoteViewport starts with the given size
func NewRemoteViewport(w, h float64) *RemoteViewport {
	return &RemoteViewport{w: w, h: h}
}

// Set updates the size
func (v *RemoteViewport) Set(w, h float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.w, v.h = w, h
}

// Size returns the last reported size
func (v *RemoteViewport) Size() (float64, float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.w, v.h
}
