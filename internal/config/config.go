// Package config holds every tunable constant for the simulation, the
// wire protocol, and the reconciliation engine, plus the overridable
// Server/Client structs cmd/server and cmd/client bind cobra/pflag
// flags over.
package config

import (
	"encoding/hex"
	"time"
)

// World is the circular arena. Boundary is death, not wrap.
const (
	WorldCenterX = 10500.0
	WorldCenterY = 10500.0
	WorldRadius  = 10500.0
	SpawnMargin  = 500.0
)

// Simulation ticks at SimTickRate Hz; the reconciliation engine's
// ProcessTick mirrors this on the client. Input is produced at half
// that rate.
const (
	SimTickRate   = 64
	SimTickPeriod = time.Second / SimTickRate
	InputTickRate = SimTickRate / 2
)

// Snake movement and growth.
const (
	SnakeNormalSpeed     = 3.0
	SnakeBoostSpeed      = 5.0
	SnakeBoostCostTicks  = 3
	SnakeInitSegments    = 10
	SnakeSegmentSpacing  = 8.0
	SnakeHeadRadius      = 10.0
	SnakeBodyRadius      = 8.0
	SnakeMinSegments     = 3
	SnakeMaxTurnRate     = 0.18
	SnakeTurnScaleFactor = 0.008
	SnakeBaseWidth       = 10.0
	SnakeMaxWidth        = 28.0

	// StepDistance is the fixed spacing the body-step rule enforces
	// between adjacent segments.
	StepDistance = SnakeSegmentSpacing
	// ExperiencePerSegment derives segment count from experience:
	// len(segments) == round(experience / ExperiencePerSegment).
	ExperiencePerSegment = 10
	MinSegments          = SnakeMinSegments
)

// Food.
const (
	InitialFoodCount = 12500
	TargetFoodCount  = 12500
	FoodRadius       = 5.0
	FoodBaseValue    = 1
	DeathFoodPerUnit = 2
	FoodSpawnPerTick = 100

	FoodLevel1  = 1
	FoodLevel3  = 3
	FoodLevel5  = 5
	FoodLevel10 = 10
)

// Moving (level 10) food.
const (
	MovingFoodSpawnInterval = 300
	MovingFoodMaxCount      = 3
	MovingFoodSpeed         = 4.0
	MovingFoodDirMinTicks   = 60
	MovingFoodDirMaxTicks   = 120
)

// Magnetic attraction.
const (
	MagnetRadius = 16.0
	MagnetSpeed  = 3.0
)

// Viewport / visibility.
const (
	ViewportWidth  = 1536.0
	ViewportHeight = 864.0
	ViewportBuffer = 200.0

	// VisibilityPaddingPercent inflates the player's camera radius when
	// deciding TTL-eviction visibility.
	VisibilityPaddingPercent = 0.20
)

// Spatial grid.
const GridCellSize = 200.0

const LeaderboardSize = 10

const CollisionCheckRadius = 20.0

// Bot AI.
const (
	BotCount          = 50
	BotRespawnDelay   = 100
	BotDangerRadius   = 80.0
	BotFoodSeekRadius = 500.0
	BotChaseRadius    = 300.0
	BotFleeRadius     = 200.0
	BotBoundaryBuffer = 500.0
)

// Reconciliation engine tunables.
const (
	TTLSeqDelta             = 8
	SnapshotRequestsPerTick = 16
	SnapshotCooldownFrames  = 64

	// DriftMinThreshold and DriftThresholdFactor implement
	// threshold = max(120, 3*minDist).
	DriftMinThreshold  = 120.0
	DriftThresholdFactor = 3.0

	// DriftMinFailureBudget and DriftFailureBudgetDivisor implement
	// budget = max(2, n/10).
	DriftMinFailureBudget    = 2
	DriftFailureBudgetDivisor = 10
)

// PlayerColors is the spawn color palette — cosmetic, not
// protocol-relevant.
var PlayerColors = []string{
	"#e74c3c", "#3498db", "#2ecc71", "#f39c12", "#9b59b6",
	"#1abc9c", "#e67e22", "#e91e63", "#00bcd4", "#8bc34a",
	"#ff5722", "#607d8b", "#795548", "#673ab7", "#03a9f4",
	"#4caf50", "#ffeb3b", "#ff9800", "#f44336", "#9c27b0",
}

// ColorFromHex parses a "#rrggbb" string from PlayerColors into
// (r,g,b,a) bytes; malformed input yields opaque white. Returns plain
// uint8s rather than proto.Color to keep this package free of an
// internal/proto import.
func ColorFromHex(s string) (r, g, b, a uint8) {
	a = 255
	if len(s) != 7 || s[0] != '#' {
		return 255, 255, 255, a
	}
	var buf [3]byte
	if _, err := hex.Decode(buf[:], []byte(s[1:])); err != nil {
		return 255, 255, 255, a
	}
	return buf[0], buf[1], buf[2], a
}

// Server holds the process-level settings cmd/server exposes as cobra
// flags; everything else in this package stays a compile-time constant.
type Server struct {
	ListenAddr  string
	JoinAddr    string
	LogLevel    string
	MetricsAddr string
}

func DefaultServer() Server {
	return Server{
		ListenAddr:  ":9001",
		JoinAddr:    ":8080",
		LogLevel:    "info",
		MetricsAddr: ":9100",
	}
}

// Client holds cmd/client's runtime settings.
type Client struct {
	ServerJoinAddr string
	LogLevel       string
}

func DefaultClient() Client {
	return Client{
		ServerJoinAddr: "ws://127.0.0.1:8080/join",
		LogLevel:       "info",
	}
}
