package world

import (
	"testing"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnakeSpacingInvariant(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{R: 1, G: 2, B: 3, A: 255}, 0)
	require.Len(t, s.Segments, config.SnakeInitSegments)
	for i := 1; i < len(s.Segments); i++ {
		a, b := s.Segments[i-1], s.Segments[i]
		dx := float64(a.X - b.X)
		dy := float64(a.Y - b.Y)
		d := dx*dx + dy*dy
		// Segments are stored as float32 at coordinates up to ~20500,
		// where rounding alone moves d by up to ~0.045.
		assert.InDelta(t, config.SnakeSegmentSpacing*config.SnakeSegmentSpacing, d, 0.05)
	}
}

func TestGrowRecomputesExperience(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{A: 255}, 0)
	before := len(s.Segments)
	s.Grow(5)
	assert.Equal(t, before+5, len(s.Segments))
	assert.EqualValues(t, len(s.Segments)*config.ExperiencePerSegment, s.Experience)
}

func TestApplyInputSteersTowardDestination(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{A: 255}, 0)
	head := s.Head()
	dest := proto.Point{X: head.X + 1000, Y: head.Y}
	startAngle := s.Angle
	s.ApplyInput(dest, false)
	assert.NotEqual(t, startAngle, s.Angle)
	assert.Equal(t, config.SnakeNormalSpeed, s.Speed)
}

func TestDropFoodMarksDeadAndScattersBody(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{A: 255}, 0)
	dropped := s.DropFood()
	assert.False(t, s.Alive)
	for _, f := range dropped {
		assert.Equal(t, uint32(0), f.EntityID, "entity id assignment is deferred to World.AddFood")
	}
}

func TestToWireStateFullSegments(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{A: 255}, 0)
	state := s.ToWireState(proto.PointsFullSegments)
	assert.EqualValues(t, len(s.Segments), state.TotalSegments)
	assert.Len(t, state.Points, len(s.Segments))
}

func TestToWireStateValidationSamplesIncludesHeadAndTail(t *testing.T) {
	s := NewSnake(1, "Alice", proto.Color{A: 255}, 0)
	state := s.ToWireState(proto.PointsValidationSamples)
	require.NotEmpty(t, state.Points)
	assert.Equal(t, s.Head(), state.Points[0])
	assert.Equal(t, s.Segments[len(s.Segments)-1], state.Points[len(state.Points)-1])
}
