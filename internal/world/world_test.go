package world

import (
	"testing"

	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFoodAssignsIDToPlaceholder(t *testing.T) {
	w := NewWorld()
	w.Lock()
	defer w.Unlock()

	before := w.nextEntityID
	f := NewFoodAt(0, 100, 100)
	w.AddFood(f)

	assert.NotEqual(t, uint32(0), f.EntityID)
	assert.Equal(t, before, f.EntityID)
	stored, ok := w.Foods[f.EntityID]
	require.True(t, ok)
	assert.Same(t, f, stored)
}

func TestAddFoodKeepsExplicitID(t *testing.T) {
	w := NewWorld()
	w.Lock()
	defer w.Unlock()

	f := NewFood(999999)
	w.AddFood(f)
	stored, ok := w.Foods[999999]
	require.True(t, ok)
	assert.Same(t, f, stored)
}

func TestRemoveSnakeAndFood(t *testing.T) {
	w := NewWorld()
	w.Lock()
	s := NewSnake(w.AllocID(), "Bob", proto.Color{A: 255}, 0)
	w.AddSnake(s)
	require.Contains(t, w.Snakes, s.EntityID)
	w.RemoveSnake(s.EntityID)
	assert.NotContains(t, w.Snakes, s.EntityID)
	w.Unlock()
}

func TestRebuildGridIndexesAliveSnakesAndFood(t *testing.T) {
	w := NewWorld()
	w.Lock()
	s := NewSnake(w.AllocID(), "Carol", proto.Color{A: 255}, 0)
	w.AddSnake(s)
	w.RebuildGrid()
	w.Unlock()

	w.RLock()
	defer w.RUnlock()
	nearby := w.Grid.NearbySnakeBody(float64(s.Segments[1].X), float64(s.Segments[1].Y), 1.0, 0)
	assert.NotEmpty(t, nearby)

	for id, f := range w.Foods {
		assert.Contains(t, w.Grid.NearbyFood(float64(f.Position.X), float64(f.Position.Y), 1.0), id)
		break
	}
}

func TestLeaderboardSortedByExperienceDescending(t *testing.T) {
	w := NewWorld()
	w.Lock()
	a := NewSnake(w.AllocID(), "A", proto.Color{A: 255}, 0)
	a.Grow(50)
	b := NewSnake(w.AllocID(), "B", proto.Color{A: 255}, 0)
	b.Grow(5)
	w.AddSnake(a)
	w.AddSnake(b)
	w.Unlock()

	w.RLock()
	defer w.RUnlock()
	board := w.Leaderboard()
	require.Len(t, board, 2)
	assert.Equal(t, a.EntityID, board[0].EntityID)
	assert.Equal(t, b.EntityID, board[1].EntityID)
}

func TestMaintainFoodCountToleratesAlreadyFullWorld(t *testing.T) {
	w := NewWorld()
	w.Lock()
	defer w.Unlock()
	before := len(w.Foods)
	w.MaintainFoodCount()
	assert.GreaterOrEqual(t, len(w.Foods), before)
}
