package world

import (
	"sort"
	"sync"

	"github.com/acherenovich/snake-app/internal/config"
)

// LeaderboardEntry is one row of World.Leaderboard's result.
type LeaderboardEntry struct {
	EntityID   uint32
	Name       string
	Experience uint32
}

// World holds all authoritative server-side game state: every snake,
// every food item, and the spatial grid used for collision and
// viewport queries. Entity ids are minted by a monotonic uint32
// allocator owned by the world.
type World struct {
	mu sync.RWMutex

	Snakes map[uint32]*Snake
	Foods  map[uint32]*Food
	Grid   *SpatialGrid

	nextEntityID uint32
}

func NewWorld() *World {
	w := &World{
		Snakes:       make(map[uint32]*Snake),
		Foods:        make(map[uint32]*Food),
		Grid:         NewSpatialGrid(config.GridCellSize),
		nextEntityID: 1, // 0 is reserved "none"
	}
	w.spawnInitialFood()
	return w
}

// AllocID mints the next entity id. Caller must hold w.mu.
func (w *World) AllocID() uint32 {
	id := w.nextEntityID
	w.nextEntityID++
	return id
}

func (w *World) Lock()    { w.mu.Lock() }
func (w *World) Unlock()  { w.mu.Unlock() }
func (w *World) RLock()   { w.mu.RLock() }
func (w *World) RUnlock() { w.mu.RUnlock() }

func (w *World) spawnInitialFood() {
	clustered := int(float64(config.InitialFoodCount) * 0.7)
	scattered := config.InitialFoodCount - clustered

	for spawned := 0; spawned < clustered; {
		cluster := NewFoodCluster(w.AllocID)
		for _, f := range cluster {
			if spawned >= clustered {
				break
			}
			w.Foods[f.EntityID] = f
			spawned++
		}
	}
	for i := 0; i < scattered; i++ {
		f := NewFood(w.AllocID())
		w.Foods[f.EntityID] = f
	}
}

// AddSnake registers a new snake. Caller must hold w.mu (Lock).
func (w *World) AddSnake(s *Snake) {
	w.Snakes[s.EntityID] = s
}

// RemoveSnake removes a snake. Caller must hold w.mu (Lock).
func (w *World) RemoveSnake(id uint32) {
	delete(w.Snakes, id)
}

// AddFood registers food items, assigning a real entity id to any item
// still carrying the placeholder id 0 (Snake.DropFood and the boost-
// cost drop mint food without access to the allocator). Caller must
// hold w.mu (Lock).
func (w *World) AddFood(items ...*Food) {
	for _, f := range items {
		if f == nil {
			continue
		}
		if f.EntityID == 0 {
			f.EntityID = w.AllocID()
		}
		w.Foods[f.EntityID] = f
	}
}

// RemoveFood removes a food item. Caller must hold w.mu (Lock).
func (w *World) RemoveFood(id uint32) {
	delete(w.Foods, id)
}

// RebuildGrid rebuilds the spatial grid from current state. Caller
// must hold at least w.mu (RLock).
func (w *World) RebuildGrid() {
	w.Grid.Clear()
	for _, f := range w.Foods {
		w.Grid.InsertFood(f)
	}
	for _, s := range w.Snakes {
		if s.Alive {
			w.Grid.InsertSnakeBody(s)
		}
	}
}

// MaintainFoodCount spawns food up to config.TargetFoodCount. Moving
// (level 10) food is not counted against the normal budget. Caller
// must hold w.mu (Lock).
func (w *World) MaintainFoodCount() {
	normalCount := 0
	for _, f := range w.Foods {
		if !f.IsMoving {
			normalCount++
		}
	}
	deficit := config.TargetFoodCount - normalCount
	if deficit <= 0 {
		return
	}
	spawn := deficit
	if spawn > config.FoodSpawnPerTick {
		spawn = config.FoodSpawnPerTick
	}
	for spawned := 0; spawned < spawn; {
		if spawn-spawned >= 5 {
			cluster := NewFoodCluster(w.AllocID)
			for _, f := range cluster {
				if spawned >= spawn {
					break
				}
				w.Foods[f.EntityID] = f
				spawned++
			}
		} else {
			f := NewFood(w.AllocID())
			w.Foods[f.EntityID] = f
			spawned++
		}
	}
}

// Leaderboard returns the top config.LeaderboardSize snakes ranked by
// experience. Caller must hold at least w.mu (RLock).
func (w *World) Leaderboard() []LeaderboardEntry {
	snakes := make([]*Snake, 0, len(w.Snakes))
	for _, s := range w.Snakes {
		if s.Alive {
			snakes = append(snakes, s)
		}
	}
	sort.Slice(snakes, func(i, j int) bool {
		return snakes[i].Experience > snakes[j].Experience
	})
	if len(snakes) > config.LeaderboardSize {
		snakes = snakes[:config.LeaderboardSize]
	}
	entries := make([]LeaderboardEntry, len(snakes))
	for i, s := range snakes {
		entries[i] = LeaderboardEntry{EntityID: s.EntityID, Name: s.Name, Experience: s.Experience}
	}
	return entries
}

// SnakesInViewport returns snakes with at least one segment inside the
// viewport rectangle centered on (cx, cy). Caller must hold at least
// w.mu (RLock).
func (w *World) SnakesInViewport(cx, cy float64) []*Snake {
	halfW := config.ViewportWidth/2 + config.ViewportBuffer
	halfH := config.ViewportHeight/2 + config.ViewportBuffer
	minX := cx - halfW
	maxX := cx + halfW
	minY := cy - halfH
	maxY := cy + halfH

	result := []*Snake{}
	for _, s := range w.Snakes {
		if !s.Alive {
			continue
		}
		visible := false
		for _, seg := range s.Segments {
			x, y := float64(seg.X), float64(seg.Y)
			if x >= minX && x <= maxX && y >= minY && y <= maxY {
				visible = true
				break
			}
		}
		if visible {
			result = append(result, s)
		}
	}
	return result
}

// FoodInViewport returns food visible from a viewport centered on
// (cx, cy). Caller must hold at least w.mu (RLock).
func (w *World) FoodInViewport(cx, cy float64) []*Food {
	halfW := config.ViewportWidth/2 + config.ViewportBuffer
	halfH := config.ViewportHeight/2 + config.ViewportBuffer
	vx := cx - halfW
	vy := cy - halfH
	return w.Grid.FoodInViewport(w.Foods, vx, vy, halfW*2, halfH*2)
}
