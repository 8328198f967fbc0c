package arena

import (
	"sort"
	"time"
)

// PowerKind is the effect a pickup has on the curve that collects it
type PowerKind int

const (
	// PowerSpeedUp increases velocity
	PowerSpeedUp PowerKind = iota
	// PowerRotUp increases rotation speed
	PowerRotUp
	// PowerInvulnerability switches the trail off, and with it every collision check
	PowerInvulnerability
	// PowerAnorexia makes the curve thinner
	PowerAnorexia
	// PowerSpeedDown decreases velocity
	PowerSpeedDown
	// PowerRotDown decreases rotation speed
	PowerRotDown
	// PowerChungus makes the curve thicker
	PowerChungus
)

// PowerKinds lists every kind a spawn may roll
var PowerKinds = []PowerKind{
	PowerSpeedUp, PowerRotUp, PowerInvulnerability, PowerAnorexia,
	PowerSpeedDown, PowerRotDown, PowerChungus,
}

var powerNames = map[PowerKind]string{
	PowerSpeedUp:         "speed_up",
	PowerRotUp:           "rot_up",
	PowerInvulnerability: "invulnerability",
	PowerAnorexia:        "anorexia",
	PowerSpeedDown:       "speed_down",
	PowerRotDown:         "rot_down",
	PowerChungus:         "chungus",
}

func (k PowerKind) String() string {
	if n, ok := powerNames[k]; ok {
		return n
	}
	return "unknown"
}

// Good reports whether the effect helps the collector
func (k PowerKind) Good() bool {
	switch k {
	case PowerSpeedUp, PowerRotUp, PowerInvulnerability, PowerAnorexia:
		return true
	}
	return false
}

// PowerUp is a spawned, not yet collected pickup
type PowerUp struct {
	ID    int
	Point Point
	Kind  PowerKind
}

// Bounds is the pickup square, PowerSize wide around its point
func (p PowerUp) Bounds() ArenaBounds {
	half := PowerSize * 0.5
	return ArenaBounds{
		XMin: p.Point.X - half,
		XMax: p.Point.X + half,
		YMin: p.Point.Y - half,
		YMax: p.Point.Y + half,
	}
}

// Touches reports whether any box point falls inside the pickup square
func (p PowerUp) Touches(box BoundingBox) bool {
	b := p.Bounds()
	for _, bp := range box {
		if b.Contains(bp) {
			return true
		}
	}
	return false
}

// PowerTimeout is an active effect waiting to be reversed
type PowerTimeout struct {
	PlayerID string
	Kind     PowerKind
	Started  time.Time

	// applied is false when the effect was a no-op (speed or rotation already
	// at the floor), in which case there is nothing to reverse either
	applied bool
}

// Remaining returns how long the effect still lasts
func (t PowerTimeout) Remaining(now time.Time) time.Duration {
	return max(PowerDuration-now.Sub(t.Started), 0)
}

// ApplyPower mutates the curve for kind and returns whether anything changed
func ApplyPower(kind PowerKind, c *Curve, now time.Time) bool {
	switch kind {
	case PowerSpeedUp:
		c.Velocity += PowerVelocityStep
	case PowerSpeedDown:
		if c.Velocity <= PowerVelocityStep {
			return false
		}
		c.Velocity -= PowerVelocityStep
	case PowerRotUp:
		c.RotationSpeed += PowerRotationStep
	case PowerRotDown:
		if c.RotationSpeed <= PowerRotationStep {
			return false
		}
		c.RotationSpeed -= PowerRotationStep
	case PowerChungus:
		c.shiftGirth(1)
	case PowerAnorexia:
		c.shiftGirth(-1)
	case PowerInvulnerability:
		c.invulnerable++
		c.TrailActive = false
		c.TrailTS = now
	default:
		return false
	}
	return true
}

// ReversePower undoes exactly what ApplyPower did for kind
func ReversePower(kind PowerKind, c *Curve, now time.Time, r Rand) {
	switch kind {
	case PowerSpeedUp:
		c.Velocity -= PowerVelocityStep
	case PowerSpeedDown:
		c.Velocity += PowerVelocityStep
	case PowerRotUp:
		c.RotationSpeed -= PowerRotationStep
	case PowerRotDown:
		c.RotationSpeed += PowerRotationStep
	case PowerChungus:
		c.shiftGirth(-1)
	case PowerAnorexia:
		c.shiftGirth(1)
	case PowerInvulnerability:
		c.invulnerable--
		if c.invulnerable <= 0 {
			c.invulnerable = 0
			c.TrailActive = true
			c.TrailTS = now
			c.TrailFuse = newTrailFuse(r)
		}
	}
}

// pickup is a (player, power-up) pair matched during the collision scan
type pickup struct {
	player int
	power  PowerUp
}

// PowerSupply spawns pickups and tracks active effects
type PowerSupply struct {
	PowerUps map[int]PowerUp
	Timeouts []PowerTimeout

	fuse      time.Duration // time until the next spawn attempt
	lastSpawn time.Time
	nextID    int
}

// NewPowerSupply creates an empty supply with a fresh spawn fuse
func NewPowerSupply(now time.Time, r Rand) *PowerSupply {
	s := &PowerSupply{
		PowerUps: make(map[int]PowerUp, PowerCap),
		Timeouts: make([]PowerTimeout, 0, 2*PowerCap),
	}
	s.Reset(now, r)
	return s
}

// Reset discards every pickup and active effect without reversing anything,
// re-rolls the spawn fuse and restarts ids from zero
func (s *PowerSupply) Reset(now time.Time, r Rand) {
	clear(s.PowerUps)
	s.Timeouts = s.Timeouts[:0]
	s.fuse = newPowerFuse(r)
	s.lastSpawn = now
	s.nextID = 0
}

// Fuse returns the current spawn interval
func (s *PowerSupply) Fuse() time.Duration {
	return s.fuse
}

// SpawnTick spawns a pickup once the fuse has burnt down and the cap allows it.
// The fuse is re-rolled whether or not something spawned.
func (s *PowerSupply) SpawnTick(now time.Time, bounds ArenaBounds, r Rand) (PowerUp, bool) {
	if now.Sub(s.lastSpawn) < s.fuse {
		return PowerUp{}, false
	}
	s.lastSpawn = now
	s.fuse = newPowerFuse(r)

	if len(s.PowerUps) >= PowerCap {
		return PowerUp{}, false
	}
	p := PowerUp{
		ID:    s.nextID,
		Point: bounds.RandomPos(r),
		Kind:  PowerKinds[r.Intn(len(PowerKinds))],
	}
	s.PowerUps[p.ID] = p
	s.nextID++
	return p, true
}

// Sorted returns the spawned pickups ordered by id
func (s *PowerSupply) Sorted() []PowerUp {
	out := make([]PowerUp, 0, len(s.PowerUps))
	for _, p := range s.PowerUps {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// detect matches living curves' next boxes against spawned pickups. Each pickup
// goes to the first curve (in roster order) touching it.
func (s *PowerSupply) detect(players []*Player, dt time.Duration) []pickup {
	if len(s.PowerUps) == 0 {
		return nil
	}
	var found []pickup
	claimed := make(map[int]bool)
	powers := s.Sorted()
	for i, p := range players {
		if !p.Curve.Alive {
			continue
		}
		box := p.Curve.BoundingBox(dt)
		for _, pu := range powers {
			if claimed[pu.ID] || !pu.Touches(box) {
				continue
			}
			claimed[pu.ID] = true
			found = append(found, pickup{player: i, power: pu})
		}
	}
	return found
}

// collect removes the pickup, applies it and starts its timeout
func (s *PowerSupply) collect(p *Player, pu PowerUp, now time.Time) PowerTimeout {
	delete(s.PowerUps, pu.ID)
	t := PowerTimeout{
		PlayerID: p.ID,
		Kind:     pu.Kind,
		Started:  now,
		applied:  ApplyPower(pu.Kind, &p.Curve, now),
	}
	s.Timeouts = append(s.Timeouts, t)
	return t
}

// expire reverses and drops timeouts older than PowerDuration. Effects on
// curves that died or left the roster are dropped without reversing.
func (s *PowerSupply) expire(lookup func(id string) *Player, now time.Time, r Rand) []PowerTimeout {
	var expired []PowerTimeout
	kept := s.Timeouts[:0]
	for _, t := range s.Timeouts {
		if now.Sub(t.Started) < PowerDuration {
			kept = append(kept, t)
			continue
		}
		expired = append(expired, t)
		p := lookup(t.PlayerID)
		if p == nil || !p.Curve.Alive || !t.applied {
			continue
		}
		ReversePower(t.Kind, &p.Curve, now, r)
	}
	s.Timeouts = kept
	return expired
}

// newPowerFuse draws the interval until the next spawn attempt
func newPowerFuse(r Rand) time.Duration {
	return randDuration(r, PowerFuseMin, PowerFuseMax)
}
