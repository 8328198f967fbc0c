package arena

import (
	"math"
	"time"
)

// Game tuning constants
const (
	// Curve
	DefaultVelocity = 60.0              // px per second
	DefaultRotation = math.Pi / 8 * 0.1 // radians per tick while a rotation key is held
	DefaultGirth    = GirthNormal
	ProjectLength   = 20.0 // px, heading indicator length during countdown

	// Trail gaps: the trail is drawn for a random 2-4s, then skipped for InvDuration.
	TrailFuseMin = 2000 * time.Millisecond
	TrailFuseMax = 4000 * time.Millisecond
	InvDuration  = 300 * time.Millisecond

	// Self collision grace: SelfGraceLines * (girth radius - 1) most recent lines are ignored
	SelfGraceLines = 15

	// Staging area only keeps this many recent lines per curve
	StagingTrailCap = 20

	// Round phases
	CountdownDuration   = 3 * time.Second
	WinnerGloatDuration = 3 * time.Second

	// Power-ups
	PowerFuseMin      = 3000 * time.Millisecond
	PowerFuseMax      = 6000 * time.Millisecond
	PowerCap          = 10               // max spawned pickups at once
	PowerDuration     = 30 * time.Second // how long an effect lasts
	PowerSize         = 16.0             // px, side length of a pickup square
	PowerVelocityStep = 10.0             // px per second
	PowerRotationStep = 0.005            // radians per tick

	// Menu
	MaxNameLength = 20
	MinPlayers    = 2 // fewest players a round can start with
)

// Arena placement as fractions of the viewport
var (
	// StagingCenter positions the staging area right of the setup menu
	StagingCenter = [2]float64{0.7, 0.5}
	// StagingSize is the staging rectangle multiplier
	StagingSize = [2]float64{0.35, 0.55}
	// PlaySizeSmall is used for rounds with up to 3 players
	PlaySizeSmall = [2]float64{0.6, 0.8}
	// PlaySizeLarge is used for rounds with 4 or more players
	PlaySizeLarge = [2]float64{0.8, 0.9}
)

// PlayerColors is the default color pool, handed out from the back
var PlayerColors = []Color{
	"#ff1a1a", "#00ffff", "#ff00ff", "#ffff00", "#00ff00",
}

// PlayerKeys is the default key pool, handed out from the back
var PlayerKeys = []MoveKeys{
	{CCW: KeyPageUp, CW: KeyPageDown},
	{CCW: "KeyJ", CW: "KeyK"},
	{CCW: "KeyV", CW: "KeyB"},
	{CCW: "KeyO", CW: "KeyP"},
	{CCW: "KeyQ", CW: "KeyW"},
}
