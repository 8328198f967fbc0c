package arena

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Phase is the current state of the round state machine
type Phase int

const (
	// PhaseSetup edits the roster while curves roam the staging area
	PhaseSetup Phase = iota
	// PhaseCountdown lets curves aim before the round starts
	PhaseCountdown
	// PhaseRunning is live play
	PhaseRunning
	// PhasePaused freezes a running round, only entered from PhaseRunning
	PhasePaused
	// PhaseWinner gloats the round winner before the next countdown
	PhaseWinner
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseCountdown:
		return "countdown"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseWinner:
		return "winner"
	}
	return "unknown"
}

// State is the active phase with its payload. Started is set for
// PhaseCountdown and PhaseWinner; Winner is the winning player id
// in PhaseWinner, empty for a draw.
type State struct {
	Phase   Phase
	Started time.Time
	Winner  string
}

// Options injects the collaborators of a Kurve. Zero fields get defaults:
// the system clock, a time seeded math/rand source, a 1280x720 viewport
// and random UUIDs for player ids.
type Options struct {
	Clock    Clock
	Rand     Rand
	Viewport Viewport
	NewID    func() string

	// Players is the initial roster size, 2 when zero
	Players int
}

// Kurve is the whole game: roster, arena, round state and power-ups.
// It is not safe for concurrent use; a single loop owns it and calls Update
// once per frame.
type Kurve struct {
	Bounds  ArenaBounds
	Players []*Player
	State   State
	Powers  *PowerSupply
	Menu    Menu

	clock    *PausableClock
	rand     Rand
	viewport Viewport
	newID    func() string

	viewW, viewH float64
	events       []Event
}

// New creates a game in the setup phase with the initial roster
func New(opts Options) *Kurve {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.Viewport == nil {
		opts.Viewport = FixedViewport{W: 1280, H: 720}
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Players == 0 {
		opts.Players = 2
	}

	k := &Kurve{
		State:    State{Phase: PhaseSetup},
		Menu:     newMenu(),
		clock:    NewPausableClock(opts.Clock),
		rand:     opts.Rand,
		viewport: opts.Viewport,
		newID:    opts.NewID,
	}
	k.viewW, k.viewH = k.viewport.Size()
	k.Bounds = StagingBounds(k.viewW, k.viewH)
	k.Powers = NewPowerSupply(k.clock.Now(), k.rand)

	for i := 0; i < opts.Players; i++ {
		if _, ok := k.AddPlayer(); !ok {
			break
		}
	}
	k.Menu.Selected = 0
	k.events = nil
	return k
}

// Now returns the current game time
func (k *Kurve) Now() time.Time {
	return k.clock.Now()
}

// Update advances the game by one frame and returns what happened
func (k *Kurve) Update(in Input, dt time.Duration) []Event {
	k.events = nil
	k.checkViewport()

	if in.JustPressed(KeySpace) && k.Menu.Active == nil {
		k.TogglePause()
	}

	switch k.State.Phase {
	case PhaseSetup:
		k.tickMenu(in)
		if k.State.Phase == PhaseSetup {
			k.tickStaging(in, dt)
		}
	case PhaseCountdown:
		k.tickCountdown(in)
	case PhaseRunning:
		k.tickRunning(in, dt)
	case PhaseWinner:
		k.tickWinner(in, dt)
	case PhasePaused:
		editing := k.Menu.Active != nil
		k.tickMenu(in)
		if !editing && in.JustPressed(KeyEscape) {
			k.cancelRound()
		}
	}
	return k.events
}

// TogglePause switches between running and paused, anything else is a no-op
func (k *Kurve) TogglePause() {
	switch k.State.Phase {
	case PhaseRunning:
		k.clock.Pause()
		k.setState(State{Phase: PhasePaused})
	case PhasePaused:
		k.clock.Resume()
		k.setState(State{Phase: PhaseRunning})
	}
}

// AddPlayer creates a player from the free pools. It is a no-op returning
// false when no colors or keys are left. Players added while paused sit out
// the rest of the round.
func (k *Kurve) AddPlayer() (*Player, bool) {
	if k.Menu.AddDisabled() || len(k.Players) >= maxCurves {
		return nil, false
	}
	color, keys := k.Menu.popResources()
	p := &Player{
		ID:    k.newID(),
		Name:  fmt.Sprintf("Player %d", len(k.Players)+1),
		Color: color,
		Keys:  keys,
		Curve: NewCurve(k.Bounds, k.rand, k.clock.Now()),
	}
	if k.State.Phase == PhasePaused {
		p.Curve.Kill()
	}
	k.Players = append(k.Players, p)

	if idx := k.Menu.insertPlayer(p.ID); idx <= k.Menu.Selected {
		k.Menu.Selected++
	}
	k.emit(Event{Kind: EventPlayerAdded, PlayerID: p.ID, Name: p.Name})
	return p, true
}

// RemovePlayer drops a player and its curve and returns its color and keys
// to the pools. The id must exist.
func (k *Kurve) RemovePlayer(id string) {
	idx := k.playerIndex(id)
	if idx < 0 {
		panic(fmt.Sprintf("kurve: remove of unknown player %q", id))
	}
	p := k.Players[idx]
	k.Players = append(k.Players[:idx], k.Players[idx+1:]...)
	k.Menu.pushResources(p.Color, p.Keys)

	for i, item := range k.Menu.Items {
		if item.Kind == ItemPlayer && item.PlayerID == id {
			if i < k.Menu.Selected {
				k.Menu.Selected--
			}
			k.Menu.removeItem(i)
			break
		}
	}
	k.emit(Event{Kind: EventPlayerRemoved, PlayerID: p.ID, Name: p.Name})
}

// Player looks a player up by id
func (k *Kurve) Player(id string) *Player {
	if i := k.playerIndex(id); i >= 0 {
		return k.Players[i]
	}
	return nil
}

// CanStart reports whether the Start row starts a round: only in setup and
// with at least MinPlayers on the roster
func (k *Kurve) CanStart() bool {
	return k.State.Phase == PhaseSetup && len(k.Players) >= MinPlayers
}

// Winner returns the index of the only living curve, if exactly one is alive
func Winner(curves []*Curve) (int, bool) {
	winner := -1
	for i, c := range curves {
		if !c.Alive {
			continue
		}
		if winner >= 0 {
			return -1, false
		}
		winner = i
	}
	return winner, winner >= 0
}

// startRound leaves setup: play sized bounds, fresh curves and power-ups
func (k *Kurve) startRound() {
	k.Bounds = PlayBounds(k.viewW, k.viewH, len(k.Players))
	k.resetCurves()
	k.Powers.Reset(k.clock.Now(), k.rand)
	k.setState(State{Phase: PhaseCountdown, Started: k.clock.Now()})
}

// cancelRound abandons a paused round and goes back to setup
func (k *Kurve) cancelRound() {
	k.clock.Resume()
	k.Bounds = StagingBounds(k.viewW, k.viewH)
	k.resetCurves()
	k.Powers.Reset(k.clock.Now(), k.rand)
	k.setState(State{Phase: PhaseSetup})
}

// tickStaging moves the setup preview. Curves wrap to the opposite edge
// instead of dying and only keep a short trail.
func (k *Kurve) tickStaging(in Input, dt time.Duration) {
	now := k.clock.Now()
	for _, p := range k.Players {
		c := &p.Curve
		box := c.BoundingBox(dt)
		switch CheckBorderAxisCollision(k.Bounds.XMin, k.Bounds.XMax, box.Xs()) {
		case AxisMin:
			c.Position.X = k.Bounds.XMax
		case AxisMax:
			c.Position.X = k.Bounds.XMin
		}
		switch CheckBorderAxisCollision(k.Bounds.YMin, k.Bounds.YMax, box.Ys()) {
		case AxisMin:
			c.Position.Y = k.Bounds.YMax
		case AxisMax:
			c.Position.Y = k.Bounds.YMin
		}

		c.Steer(in, p.Keys)
		c.TickTrail(dt, now, k.rand)
		c.Move(dt)
		c.TrimTrail(StagingTrailCap)
	}
}

// tickCountdown lets curves rotate in place until the countdown is over
func (k *Kurve) tickCountdown(in Input) {
	for _, p := range k.Players {
		p.Curve.Steer(in, p.Keys)
	}
	now := k.clock.Now()
	if now.Sub(k.State.Started) < CountdownDuration {
		return
	}
	for _, p := range k.Players {
		p.Curve.TrailTS = now
	}
	k.setState(State{Phase: PhaseRunning})
}

// tickRunning is one tick of live play. The collision and pickup scans only
// read state; eliminations and effects are applied once both are done.
func (k *Kurve) tickRunning(in Input, dt time.Duration) {
	now := k.clock.Now()

	if pu, ok := k.Powers.SpawnTick(now, k.Bounds, k.rand); ok {
		k.emit(Event{Kind: EventPowerSpawned, PowerID: pu.ID, Power: pu.Kind})
	}

	curves := k.curves()
	pickups := k.Powers.detect(k.Players, dt)
	hits := detectCollisions(curves, k.Bounds, dt)

	for _, t := range k.Powers.expire(k.Player, now, k.rand) {
		k.emit(k.powerEvent(EventPowerExpired, t))
	}
	for _, pk := range pickups {
		t := k.Powers.collect(k.Players[pk.player], pk.power, now)
		k.emit(k.powerEvent(EventPowerCollected, t))
	}

	for i, p := range k.Players {
		if !hits.has(i) || !p.Curve.Alive {
			continue
		}
		p.Curve.Kill()
		k.emit(Event{Kind: EventEliminated, PlayerID: p.ID, Name: p.Name})
	}

	if i, ok := Winner(curves); ok {
		w := k.Players[i]
		w.Score++
		k.emit(Event{Kind: EventRoundWon, PlayerID: w.ID, Name: w.Name})
		k.setState(State{Phase: PhaseWinner, Started: now, Winner: w.ID})
		return
	}
	if k.aliveCount() == 0 {
		k.emit(Event{Kind: EventRoundDrawn})
		k.setState(State{Phase: PhaseWinner, Started: now})
		return
	}

	k.advance(in, dt, now)
}

// tickWinner keeps the survivors moving for the gloat, then starts the next round
func (k *Kurve) tickWinner(in Input, dt time.Duration) {
	now := k.clock.Now()
	k.advance(in, dt, now)

	if now.Sub(k.State.Started) < WinnerGloatDuration {
		return
	}
	k.resetCurves()
	k.Powers.Reset(now, k.rand)
	k.setState(State{Phase: PhaseCountdown, Started: now})
}

// advance rotates, draws and moves every living curve
func (k *Kurve) advance(in Input, dt time.Duration, now time.Time) {
	for _, p := range k.Players {
		c := &p.Curve
		if !c.Alive {
			continue
		}
		c.Steer(in, p.Keys)
		c.TickTrail(dt, now, k.rand)
		c.Move(dt)
	}
}

// resetCurves respawns every curve inside the current bounds
func (k *Kurve) resetCurves() {
	now := k.clock.Now()
	for _, p := range k.Players {
		p.Curve.Reset(k.Bounds, k.rand, now)
	}
}

// checkViewport recomputes the bounds when the drawable size changed
func (k *Kurve) checkViewport() {
	w, h := k.viewport.Size()
	if w == k.viewW && h == k.viewH {
		return
	}
	k.viewW, k.viewH = w, h
	if k.State.Phase == PhaseSetup {
		k.Bounds = StagingBounds(w, h)
		return
	}
	k.Bounds = PlayBounds(w, h, len(k.Players))
}

func (k *Kurve) setState(s State) {
	k.State = s
	k.emit(Event{Kind: EventPhaseChanged, Phase: s.Phase, PlayerID: s.Winner})
}

func (k *Kurve) emit(e Event) {
	k.events = append(k.events, e)
}

func (k *Kurve) powerEvent(kind EventKind, t PowerTimeout) Event {
	e := Event{Kind: kind, PlayerID: t.PlayerID, Power: t.Kind}
	if p := k.Player(t.PlayerID); p != nil {
		e.Name = p.Name
	}
	return e
}

func (k *Kurve) curves() []*Curve {
	out := make([]*Curve, len(k.Players))
	for i, p := range k.Players {
		out[i] = &p.Curve
	}
	return out
}

func (k *Kurve) aliveCount() int {
	n := 0
	for _, p := range k.Players {
		if p.Curve.Alive {
			n++
		}
	}
	return n
}

func (k *Kurve) playerIndex(id string) int {
	for i, p := range k.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (k *Kurve) mustPlayer(id string) *Player {
	p := k.Player(id)
	if p == nil {
		panic(fmt.Sprintf("kurve: unknown player %q", id))
	}
	return p
}
