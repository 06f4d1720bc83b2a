package bot

import (
	"math"
	"testing"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpawnBotRegistersSnakeInWorld(t *testing.T) {
	w := world.NewWorld()
	m := NewManager(w)

	m.SpawnBot(0)

	require.Len(t, m.bots, 1)
	var id uint32
	for k := range m.bots {
		id = k
	}
	w.RLock()
	_, ok := w.Snakes[id]
	w.RUnlock()
	assert.True(t, ok)
}

func TestMaintainBotCountFillsUpToTarget(t *testing.T) {
	w := world.NewWorld()
	m := NewManager(w)

	for i := 0; i < 3; i++ {
		m.MaintainBotCount(0)
	}
	assert.Len(t, m.bots, 3)
}

func TestHandleDeathsStartsRespawnCountdown(t *testing.T) {
	w := world.NewWorld()
	m := NewManager(w)
	m.SpawnBot(0)

	var id uint32
	for k := range m.bots {
		id = k
	}

	w.Lock()
	w.Snakes[id].Alive = false
	m.HandleDeaths(map[uint32]uint32{})
	w.Unlock()

	assert.Equal(t, config.BotRespawnDelay, m.bots[id].respawnIn)
}

func TestDecideInputAvoidsBoundary(t *testing.T) {
	w := world.NewWorld()
	m := NewManager(w)
	m.SpawnBot(0)

	var id uint32
	for k := range m.bots {
		id = k
	}
	snake := w.Snakes[id]
	snake.Segments[0].X = float32(config.WorldCenterX + config.WorldRadius - 10)
	snake.Segments[0].Y = float32(config.WorldCenterY)

	angle, boost := m.decideInput(m.bots[id], snake)
	assert.False(t, boost)
	// The head sits due east of the center, so steering toward the
	// center is atan2(0, -10490) = pi.
	assert.InDelta(t, math.Pi, angle, 1e-9)
}
