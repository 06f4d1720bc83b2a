package world

import "math"

// cellKey identifies one cell of the uniform hash grid.
type cellKey struct {
	cx, cy int
}

// gridEntry references either a food item or one snake body segment
// placed into a cell. snakeID == 0 means "no snake" since EntityID 0 is
// reserved for "none"; likewise foodID == 0 means "no food".
type gridEntry struct {
	foodID  uint32
	snakeID uint32
	segIdx  int
	x, y    float64
}

// SpatialGrid is a uniform hash grid for proximity queries, keyed by
// uint32 entity id.
type SpatialGrid struct {
	cells    map[cellKey][]gridEntry
	cellSize float64
}

func NewSpatialGrid(cellSize float64) *SpatialGrid {
	return &SpatialGrid{
		cells:    make(map[cellKey][]gridEntry),
		cellSize: cellSize,
	}
}

func (g *SpatialGrid) Clear() {
	g.cells = make(map[cellKey][]gridEntry)
}

func (g *SpatialGrid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cy: int(math.Floor(y / g.cellSize)),
	}
}

func (g *SpatialGrid) InsertFood(f *Food) {
	k := g.keyFor(float64(f.Position.X), float64(f.Position.Y))
	g.cells[k] = append(g.cells[k], gridEntry{foodID: f.EntityID, x: float64(f.Position.X), y: float64(f.Position.Y)})
}

// InsertSnakeBody indexes body segments, skipping the head (collision
// against the head is checked separately by the caller).
func (g *SpatialGrid) InsertSnakeBody(s *Snake) {
	for i := 1; i < len(s.Segments); i++ {
		seg := s.Segments[i]
		k := g.keyFor(float64(seg.X), float64(seg.Y))
		g.cells[k] = append(g.cells[k], gridEntry{
			snakeID: s.EntityID,
			segIdx:  i,
			x:       float64(seg.X),
			y:       float64(seg.Y),
		})
	}
}

func (g *SpatialGrid) NearbyFood(x, y, radius float64) []uint32 {
	results := []uint32{}
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCY := int(math.Floor((y - radius) / g.cellSize))
	maxCY := int(math.Floor((y + radius) / g.cellSize))

	r2 := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.foodID == 0 {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				if dx*dx+dy*dy <= r2 {
					results = append(results, e.foodID)
				}
			}
		}
	}
	return results
}

// BodyHit is one body-segment match from NearbySnakeBody, exported so
// callers outside this package (internal/bot, internal/gameloop) can
// read the hit without reaching into gridEntry's unexported fields.
type BodyHit struct {
	SnakeID uint32
	SegIdx  int
	X, Y    float64
}

// NearbySnakeBody returns body-segment hits within radius of (x,y),
// excluding the snake identified by excludeID.
func (g *SpatialGrid) NearbySnakeBody(x, y, radius float64, excludeID uint32) []BodyHit {
	results := []BodyHit{}
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCY := int(math.Floor((y - radius) / g.cellSize))
	maxCY := int(math.Floor((y + radius) / g.cellSize))

	r2 := radius * radius
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.snakeID == 0 || e.snakeID == excludeID {
					continue
				}
				dx := e.x - x
				dy := e.y - y
				if dx*dx+dy*dy <= r2 {
					results = append(results, BodyHit{SnakeID: e.snakeID, SegIdx: e.segIdx, X: e.x, Y: e.y})
				}
			}
		}
	}
	return results
}

// FoodInViewport returns food entities whose cell falls within the
// given rectangle, deduplicated by id.
func (g *SpatialGrid) FoodInViewport(food map[uint32]*Food, vx, vy, vw, vh float64) []*Food {
	result := []*Food{}
	minCX := int(math.Floor(vx / g.cellSize))
	maxCX := int(math.Floor((vx + vw) / g.cellSize))
	minCY := int(math.Floor(vy / g.cellSize))
	maxCY := int(math.Floor((vy + vh) / g.cellSize))

	seen := map[uint32]bool{}
	for cx := minCX; cx <= maxCX; cx++ {
		for cy := minCY; cy <= maxCY; cy++ {
			for _, e := range g.cells[cellKey{cx, cy}] {
				if e.foodID == 0 || seen[e.foodID] {
					continue
				}
				if f, ok := food[e.foodID]; ok {
					seen[e.foodID] = true
					result = append(result, f)
				}
			}
		}
	}
	return result
}
