package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"kurve-server/arena"
)

// ipRateLimiter tracks last connection time per IP to prevent abuse
type ipRateLimiter struct {
	mu       sync.Mutex
	times    map[string]time.Time
	cooldown time.Duration
}

func newIPRateLimiter(ctx context.Context, cooldown time.Duration) *ipRateLimiter {
	rl := &ipRateLimiter{times: make(map[string]time.Time), cooldown: cooldown}
	// Cleanup stale entries every 60s
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				rl.sweep(now)
			}
		}
	}()
	return rl
}

// allow returns true if this IP can connect, and records the attempt
func (rl *ipRateLimiter) allow(ip string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if last, ok := rl.times[ip]; ok && now.Sub(last) < rl.cooldown {
		return false
	}
	rl.times[ip] = now
	return true
}

func (rl *ipRateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := now.Add(-rl.cooldown)
	for ip, t := range rl.times {
		if t.Before(cutoff) {
			delete(rl.times, ip)
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for development; tighten in production
		return true
	},
	ReadBufferSize:    1024,
	WriteBufferSize:   4096,
	EnableCompression: true,
}

// sendErrorAndClose sends an error message via WebSocket then closes the connection
func sendErrorAndClose(ws *websocket.Conn, msg string) {
	data, _ := json.Marshal(ErrorMsg{Type: MsgError, Message: msg})
	_ = ws.WriteMessage(websocket.TextMessage, data)
	ws.Close()
}

// wsHandler upgrades browser connections and wires them to the game
func wsHandler(ctx context.Context, conns *ConnManager, onMessage func(*Conn, ClientMessage), onLeave func(*Conn)) http.HandlerFunc {
	rateLimiter := newIPRateLimiter(ctx, IPCooldown)

	return func(w http.ResponseWriter, r *http.Request) {
		// Extract client IP (handle X-Forwarded-For for reverse proxies)
		ip := r.Header.Get("X-Forwarded-For")
		if ip == "" {
			ip, _, _ = net.SplitHostPort(r.RemoteAddr)
		}

		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("ws upgrade error: %v", err)
			return
		}

		// Check limits after upgrade so client can receive error messages
		if conns.Count() >= MaxConnections {
			sendErrorAndClose(ws, "Server full. Please try again later.")
			return
		}
		if !rateLimiter.allow(ip, time.Now()) {
			sendErrorAndClose(ws, "Too many connections. Please wait a moment.")
			return
		}
		ws.EnableWriteCompression(true)

		conn := NewConn(ws, NewCodec(r.URL.Query().Get("enc")))
		controller := conns.Add(conn)
		log.Printf("client connected: %s (controller=%v)", conn.ID, controller)

		_ = conn.Send(WelcomeMsg{Type: MsgWelcome, ID: conn.ID, Controller: boolInt(controller)})

		onDisconnect := func(c *Conn) {
			wasController, promoted := conns.Remove(c.ID)
			if wasController {
				onLeave(c)
			}
			if promoted != nil {
				log.Printf("controller handed to %s", promoted.ID)
				_ = promoted.Send(WelcomeMsg{Type: MsgWelcome, ID: promoted.ID, Controller: 1})
			}
			log.Printf("client disconnected: %s", c.ID)
		}

		// Blocking read loop, runs until client disconnects
		conn.ReadLoop(onMessage, onDisconnect)
	}
}

func main() {
	cfg, err := LoadConfig(DefaultEnvFile, os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(ctx context.Context, cfg Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	} else if cfg.Frontend == FrontendTerm {
		// stderr would scribble over the screen
		log.SetOutput(io.Discard)
	}

	keys := arena.NewKeyState()
	conns := NewConnManager(cfg.Frontend == FrontendWeb)
	observers := []Observer{NewBroadcaster(conns, cfg.BroadcastEvery())}

	var viewport arena.Viewport
	remote := NewRemoteViewport(DefaultViewportWidth, DefaultViewportHeight)
	onLeave := func(*Conn) { keys.ReleaseAll() }

	switch cfg.Frontend {
	case FrontendTerm:
		term, err := NewTerminal(keys, NewSound(!cfg.Mute))
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		defer term.Close()
		go term.Run(ctx, cancel)
		viewport = term
		observers = append(observers, term)
	default:
		viewport = remote
	}

	game := arena.New(arena.Options{
		Rand:     rand.New(rand.NewSource(cfg.Seed)),
		Viewport: viewport,
	})
	loop := NewGameLoop(game, keys, cfg.TickRate, observers...)

	mux := http.NewServeMux()
	mux.HandleFunc(WebSocketPath, wsHandler(ctx, conns, ControlHandler(conns, keys, remote), onLeave))
	mux.Handle("/", http.FileServer(http.Dir(cfg.StaticDir)))

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	// Start game loop in background
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		loop.Run(ctx)
	}()

	log.Printf("server listening on %s (frontend=%s, seed=%d)", cfg.Addr, cfg.Frontend, cfg.Seed)
	err := srv.ListenAndServe()
	cancel()
	<-loopDone
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
