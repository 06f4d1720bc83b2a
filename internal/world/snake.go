// Package world is the server-side simulation: snakes, food, the
// spatial grid, and the collision/growth physics that run entirely
// server-side — the wire protocol only ever replicates their results,
// never the rules that produced them.
package world

import (
	"math"
	"math/rand"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
)

// Snake is the authoritative server-side snake record. EntityID is
// assigned once by the World and never reused within a session.
type Snake struct {
	EntityID uint32
	Name     string
	Segments []proto.Point // index 0 = head
	Angle    float64
	Speed    float64

	// Experience tracks growth; segment count is always
	// round(experience/ExperiencePerSegment).
	Experience uint32

	Color       proto.Color
	Alive       bool
	BoostActive bool
	BoostTicks  int
	Width       float64

	CreationFrame uint32
}

// NewSnake spawns a snake at a random position inside the circular
// world, SpawnMargin px from the boundary.
func NewSnake(id uint32, name string, color proto.Color, frame uint32) *Snake {
	spawnRadius := config.WorldRadius - config.SpawnMargin
	r := spawnRadius * math.Sqrt(rand.Float64())
	spawnAngle := rand.Float64() * 2 * math.Pi
	x := config.WorldCenterX + r*math.Cos(spawnAngle)
	y := config.WorldCenterY + r*math.Sin(spawnAngle)

	angle := rand.Float64() * 2 * math.Pi

	segments := make([]proto.Point, config.SnakeInitSegments)
	for i := 0; i < config.SnakeInitSegments; i++ {
		segments[i] = proto.Point{
			X: float32(x - float64(i)*config.SnakeSegmentSpacing*math.Cos(angle)),
			Y: float32(y - float64(i)*config.SnakeSegmentSpacing*math.Sin(angle)),
		}
	}

	return &Snake{
		EntityID:      id,
		Name:          name,
		Segments:      segments,
		Angle:         angle,
		Speed:         config.SnakeNormalSpeed,
		Experience:    uint32(config.SnakeInitSegments * config.ExperiencePerSegment),
		Color:         color,
		Alive:         true,
		Width:         config.SnakeBaseWidth,
		CreationFrame: frame,
	}
}

func (s *Snake) Head() proto.Point { return s.Segments[0] }

// Move advances the snake one tick. Returns true if the new head
// crossed the circular boundary (caller kills it).
func (s *Snake) Move() bool {
	head := s.Head()
	newX := float64(head.X) + s.Speed*math.Cos(s.Angle)
	newY := float64(head.Y) + s.Speed*math.Sin(s.Angle)

	dx := newX - config.WorldCenterX
	dy := newY - config.WorldCenterY
	outOfBounds := (dx*dx + dy*dy) > config.WorldRadius*config.WorldRadius

	newHead := proto.Point{X: float32(newX), Y: float32(newY)}
	s.Segments = append([]proto.Point{newHead}, s.Segments[:len(s.Segments)-1]...)
	return outOfBounds
}

// Grow adds segments at the tail and recomputes experience so the
// entity-store invariant (segments.len == round(experience/ExperiencePerSegment))
// stays consistent on the wire.
func (s *Snake) Grow(amount int) {
	tail := s.Segments[len(s.Segments)-1]
	for i := 0; i < amount; i++ {
		s.Segments = append(s.Segments, tail)
	}
	s.Experience = uint32(len(s.Segments) * config.ExperiencePerSegment)

	widthGain := 4.0 * float64(amount) / float64(len(s.Segments))
	s.Width += widthGain
	if s.Width > config.SnakeMaxWidth {
		s.Width = config.SnakeMaxWidth
	}
}

// ApplyInput steers toward destination (the ClientInputPayload's
// destination point) at a size-limited turn rate, and applies boost
// cost. Returns level-3 food dropped from the tail when boosting (nil
// if none dropped). The wire protocol carries a destination point, not
// a raw angle, so the angle is derived here from the snake's head.
func (s *Snake) ApplyInput(dest proto.Point, boost bool) *Food {
	head := s.Head()
	targetAngle := math.Atan2(float64(dest.Y-head.Y), float64(dest.X-head.X))
	return s.Steer(targetAngle, boost)
}

// Steer is the angle-based core of ApplyInput, exposed directly for
// internal/bot's AI (which decides a target angle, not a destination
// point — there's no wire payload in its path to carry one).
func (s *Snake) Steer(targetAngle float64, boost bool) *Food {
	maxTurn := config.SnakeMaxTurnRate / (1.0 + float64(len(s.Segments))*config.SnakeTurnScaleFactor)
	diff := targetAngle - s.Angle
	for diff > math.Pi {
		diff -= 2 * math.Pi
	}
	for diff < -math.Pi {
		diff += 2 * math.Pi
	}
	if diff > maxTurn {
		diff = maxTurn
	} else if diff < -maxTurn {
		diff = -maxTurn
	}
	s.Angle += diff
	s.BoostActive = boost

	if boost {
		s.Speed = config.SnakeBoostSpeed
		s.BoostTicks++
		if s.BoostTicks%config.SnakeBoostCostTicks == 0 && len(s.Segments) > config.SnakeMinSegments {
			tail := s.Segments[len(s.Segments)-1]
			s.Segments = s.Segments[:len(s.Segments)-1]
			s.Experience = uint32(len(s.Segments) * config.ExperiencePerSegment)

			widthLoss := 4.0 / float64(len(s.Segments)+1)
			s.Width -= widthLoss
			if s.Width < config.SnakeBaseWidth {
				s.Width = config.SnakeBaseWidth
			}
			if rand.Float64() < 0.5 {
				f := NewFoodWithLevel(tail.X, tail.Y, config.FoodLevel3, false)
				f.Color = s.Color
				return f
			}
			return nil
		}
	} else {
		s.Speed = config.SnakeNormalSpeed
		s.BoostTicks = 0
	}
	return nil
}

// DropFood converts 70% of the body into food items and marks the
// snake dead.
func (s *Snake) DropFood() []*Food {
	s.Alive = false
	totalDrops := len(s.Segments) / config.DeathFoodPerUnit
	dropCount := int(float64(totalDrops) * 0.7)
	food := make([]*Food, 0, dropCount+1)
	for i, seg := range s.Segments {
		if i%config.DeathFoodPerUnit == 0 {
			if len(food) >= dropCount {
				break
			}
			food = append(food, NewFoodAt(0, seg.X, seg.Y))
		}
	}
	return food
}

// ToWireState converts the snake to the wire SnakeState, carrying
// either the full segment list (FullSegments) or a head-to-tail
// validation-sample subsequence (ValidationSamples).
func (s *Snake) ToWireState(kind proto.PointsKind) proto.SnakeState {
	points := s.Segments
	if kind == proto.PointsValidationSamples {
		points = buildValidationSamples(s.Segments, float32(config.SnakeBodyRadius))
	}
	out := make([]proto.Point, len(points))
	copy(out, points)
	head := s.Head()
	return proto.SnakeState{
		HeadX:         head.X,
		HeadY:         head.Y,
		Experience:    s.Experience,
		Kind:          kind,
		TotalSegments: uint16(len(s.Segments)),
		Points:        out,
	}
}

// buildValidationSamples mirrors internal/client's buildExpectedSamples
// exactly — the server must sample the same way the client predicts,
// or every ValidationSamples delta would spuriously fail drift
// validation.
func buildValidationSamples(segments []proto.Point, minDist float32) []proto.Point {
	if len(segments) == 0 {
		return nil
	}
	samples := make([]proto.Point, 0, 8)
	samples = append(samples, segments[0])
	var accum float32
	last := segments[0]
	for i := 1; i < len(segments); i++ {
		dx := float64(last.X - segments[i].X)
		dy := float64(last.Y - segments[i].Y)
		accum += float32(math.Sqrt(dx*dx + dy*dy))
		last = segments[i]
		if accum >= minDist {
			samples = append(samples, segments[i])
			accum = 0
		}
	}
	tail := segments[len(segments)-1]
	if samples[len(samples)-1] != tail {
		samples = append(samples, tail)
	}
	return samples
}
