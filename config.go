package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Server configuration defaults
const (
	// Server
	DefaultAddr      = ":8080"
	DefaultStaticDir = "./client"
	DefaultEnvFile   = ".env"
	WebSocketPath    = "/ws"

	// Connections
	MaxConnections = 32
	IPCooldown     = 2 * time.Second // min time between connects from one IP

	// Game loop
	DefaultTickRate      = 60 // ticks per second
	DefaultBroadcastRate = 30 // state messages per second

	// Viewport used until the controlling client reports its own
	DefaultViewportWidth  = 1280.0
	DefaultViewportHeight = 720.0

	// Terminal frontend
	CellWidth  = 8.0  // arena px per terminal column
	CellHeight = 16.0 // arena px per terminal row
	// Terminals only report key repeats, so a key counts as held until
	// no repeat arrived for this long
	HoldWindow = 500 * time.Millisecond
)

// Frontend selects what drives the game
type Frontend string

const (
	// FrontendWeb takes input from the first browser connection
	FrontendWeb Frontend = "web"
	// FrontendTerm plays in the terminal; browsers can only watch
	FrontendTerm Frontend = "term"
)

// Config is the resolved server configuration
type Config struct {
	Addr          string
	StaticDir     string
	TickRate      int
	BroadcastRate int
	Seed          int64
	Frontend      Frontend
	Mute          bool
	LogFile       string
}

// LoadConfig resolves the configuration. Later sources win:
// defaults, the env file, the process environment, then args.
// A missing env file is not an error.
func LoadConfig(envFile string, args []string) (Config, error) {
	cfg := Config{
		Addr:          DefaultAddr,
		StaticDir:     DefaultStaticDir,
		TickRate:      DefaultTickRate,
		BroadcastRate: DefaultBroadcastRate,
		Seed:          time.Now().UnixNano(),
		Frontend:      FrontendWeb,
	}

	fileEnv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("read %s: %w", envFile, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	if v, ok := lookup("KURVE_ADDR"); ok {
		cfg.Addr = v
	}
	if v, ok := lookup("KURVE_STATIC_DIR"); ok {
		cfg.StaticDir = v
	}
	if v, ok := lookup("KURVE_FRONTEND"); ok {
		cfg.Frontend = Frontend(v)
	}
	if v, ok := lookup("KURVE_LOG_FILE"); ok {
		cfg.LogFile = v
	}
	if v, ok := lookup("KURVE_TICK_RATE"); ok {
		if cfg.TickRate, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("KURVE_TICK_RATE: %w", err)
		}
	}
	if v, ok := lookup("KURVE_BROADCAST_RATE"); ok {
		if cfg.BroadcastRate, err = strconv.Atoi(v); err != nil {
			return cfg, fmt.Errorf("KURVE_BROADCAST_RATE: %w", err)
		}
	}
	if v, ok := lookup("KURVE_SEED"); ok {
		if cfg.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			return cfg, fmt.Errorf("KURVE_SEED: %w", err)
		}
	}
	if v, ok := lookup("KURVE_MUTE"); ok {
		if cfg.Mute, err = strconv.ParseBool(v); err != nil {
			return cfg, fmt.Errorf("KURVE_MUTE: %w", err)
		}
	}

	fset := flag.NewFlagSet("kurve", flag.ContinueOnError)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fset.StringVar(&cfg.StaticDir, "static", cfg.StaticDir, "directory with the browser client")
	fset.IntVar(&cfg.TickRate, "tick", cfg.TickRate, "simulation ticks per second")
	fset.IntVar(&cfg.BroadcastRate, "broadcast", cfg.BroadcastRate, "state broadcasts per second")
	fset.Int64Var(&cfg.Seed, "seed", cfg.Seed, "random seed")
	frontend := fset.String("frontend", string(cfg.Frontend), "input and display: web or term")
	fset.BoolVar(&cfg.Mute, "mute", cfg.Mute, "disable terminal sound cues")
	fset.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file, stderr when empty")
	if err := fset.Parse(args); err != nil {
		return cfg, err
	}
	cfg.Frontend = Frontend(*frontend)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive, got %d", c.TickRate)
	}
	if c.BroadcastRate <= 0 {
		return fmt.Errorf("broadcast rate must be positive, got %d", c.BroadcastRate)
	}
	if c.BroadcastRate > c.TickRate {
		return fmt.Errorf("broadcast rate %d exceeds tick rate %d", c.BroadcastRate, c.TickRate)
	}
	switch c.Frontend {
	case FrontendWeb, FrontendTerm:
	default:
		return fmt.Errorf("unknown frontend %q", c.Frontend)
	}
	return nil
}

// BroadcastEvery is the number of ticks between two state broadcasts
func (c Config) BroadcastEvery() int {
	return max(c.TickRate/c.BroadcastRate, 1)
}
