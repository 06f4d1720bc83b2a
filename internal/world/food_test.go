package world

import (
	"math"
	"testing"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFoodWithinWorldBounds(t *testing.T) {
	f := NewFood(7)
	assert.EqualValues(t, 7, f.EntityID)
	dx := float64(f.Position.X) - config.WorldCenterX
	dy := float64(f.Position.Y) - config.WorldCenterY
	assert.LessOrEqual(t, math.Sqrt(dx*dx+dy*dy), config.WorldRadius)
}

func TestNewMovingFoodHasMotion(t *testing.T) {
	f := NewMovingFood(3)
	assert.True(t, f.IsMoving)
	assert.Equal(t, config.MovingFoodSpeed, f.MoveSpeed)
	assert.Greater(t, f.MoveTicks, 0)
}

func TestUpdateMovingBouncesOffBoundary(t *testing.T) {
	f := NewMovingFood(1)
	f.Position.X = float32(config.WorldCenterX + config.WorldRadius - 1)
	f.Position.Y = float32(config.WorldCenterY)
	f.MoveAngle = 0 // heading straight out of bounds

	f.UpdateMoving()

	dx := float64(f.Position.X) - config.WorldCenterX
	dy := float64(f.Position.Y) - config.WorldCenterY
	require.LessOrEqual(t, math.Sqrt(dx*dx+dy*dy), config.WorldRadius)
}

func TestNewFoodClusterAssignsDistinctIDs(t *testing.T) {
	var next uint32 = 100
	alloc := func() uint32 {
		id := next
		next++
		return id
	}
	cluster := NewFoodCluster(alloc)
	seen := map[uint32]bool{}
	for _, f := range cluster {
		assert.False(t, seen[f.EntityID], "duplicate id in cluster")
		seen[f.EntityID] = true
	}
	assert.GreaterOrEqual(t, len(cluster), 5)
	assert.LessOrEqual(t, len(cluster), 12)
}
