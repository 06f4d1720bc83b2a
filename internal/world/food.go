package world

import (
	"math"
	"math/rand"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
)

// Food is the authoritative server-side food record. Level selects the
// color palette and wire Power value; IsMoving marks the rare level-10
// moving food.
type Food struct {
	EntityID uint32
	Position proto.Point
	Color    proto.Color
	Level    int
	IsMoving bool

	MoveAngle float64
	MoveSpeed float64
	MoveTicks int
}

// NewFood creates a food item at a random position: 90% level 1, 10%
// level 3.
func NewFood(id uint32) *Food {
	x, y := randomCirclePoint(config.WorldCenterX, config.WorldCenterY, config.WorldRadius)
	level := config.FoodLevel1
	if rand.Float64() < 0.10 {
		level = config.FoodLevel3
	}
	return newFoodWithLevel(id, x, y, level, false)
}

// NewFoodAt creates a level-3 food item scattered near (x, y), used on
// snake death to spread drops along the body.
func NewFoodAt(id uint32, x, y float32) *Food {
	scatter := 20.0
	sx := float64(x) + (rand.Float64()*2-1)*scatter
	sy := float64(y) + (rand.Float64()*2-1)*scatter
	cx, cy := clampToCircle(sx, sy, config.WorldCenterX, config.WorldCenterY, config.WorldRadius)
	return newFoodWithLevel(id, cx, cy, config.FoodLevel3, false)
}

// NewFoodWithLevel is the exported constructor used by Snake's boost-
// cost drop (level 3, tagged with the snake's own color by the caller).
func NewFoodWithLevel(x, y float32, level int, isMoving bool) *Food {
	return newFoodWithLevel(0, float64(x), float64(y), level, isMoving)
}

// NewMovingFood creates a level-10 moving food at a random position.
func NewMovingFood(id uint32) *Food {
	x, y := randomCirclePoint(config.WorldCenterX, config.WorldCenterY, config.WorldRadius)
	f := newFoodWithLevel(id, x, y, config.FoodLevel10, true)
	f.MoveAngle = rand.Float64() * 2 * math.Pi
	f.MoveSpeed = config.MovingFoodSpeed
	f.MoveTicks = config.MovingFoodDirMinTicks + rand.Intn(config.MovingFoodDirMaxTicks-config.MovingFoodDirMinTicks)
	return f
}

func newFoodWithLevel(id uint32, x, y float64, level int, isMoving bool) *Food {
	return &Food{
		EntityID: id,
		Position: proto.Point{X: float32(x), Y: float32(y)},
		Color:    colorForLevel(level),
		Level:    level,
		IsMoving: isMoving,
	}
}

// UpdateMoving advances moving food one tick: moves, bounces off the
// circular boundary, counts down the direction-change timer.
func (f *Food) UpdateMoving() {
	if !f.IsMoving {
		return
	}
	x := float64(f.Position.X) + math.Cos(f.MoveAngle)*f.MoveSpeed
	y := float64(f.Position.Y) + math.Sin(f.MoveAngle)*f.MoveSpeed

	dx := x - config.WorldCenterX
	dy := y - config.WorldCenterY
	d := math.Sqrt(dx*dx + dy*dy)
	if d > config.WorldRadius {
		nx := -dx / d
		ny := -dy / d
		vx := math.Cos(f.MoveAngle)
		vy := math.Sin(f.MoveAngle)
		dot := vx*nx + vy*ny
		vx = vx - 2*dot*nx
		vy = vy - 2*dot*ny
		f.MoveAngle = math.Atan2(vy, vx)
		x = config.WorldCenterX - nx*(config.WorldRadius-1)
		y = config.WorldCenterY - ny*(config.WorldRadius-1)
	}
	f.Position = proto.Point{X: float32(x), Y: float32(y)}

	f.MoveTicks--
	if f.MoveTicks <= 0 {
		f.MoveAngle = rand.Float64() * 2 * math.Pi
		f.MoveTicks = config.MovingFoodDirMinTicks + rand.Intn(config.MovingFoodDirMaxTicks-config.MovingFoodDirMinTicks)
	}
}

// ToWireState converts Food to the wire FoodState.
func (f *Food) ToWireState() proto.FoodState {
	return proto.FoodState{
		X:     f.Position.X,
		Y:     f.Position.Y,
		Power: uint8(f.Level),
		Color: f.Color,
	}
}

func (f *Food) DistanceTo(p proto.Point) float64 {
	dx := float64(f.Position.X - p.X)
	dy := float64(f.Position.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func colorForLevel(level int) proto.Color {
	switch level {
	case config.FoodLevel3:
		return randomColor(foodColorsLevel3)
	case config.FoodLevel5:
		return randomColor(foodColorsLevel5)
	case config.FoodLevel10:
		return proto.Color{R: 255, G: 215, B: 0, A: 255} // gold
	default:
		return randomColor(foodColorsLevel1)
	}
}

var foodColorsLevel1 = []proto.Color{
	{R: 0xff, G: 0x6b, B: 0x6b, A: 255}, {R: 0xff, G: 0xd9, B: 0x3d, A: 255},
	{R: 0x6b, G: 0xcb, B: 0x77, A: 255}, {R: 0x4d, G: 0x96, B: 0xff, A: 255},
	{R: 0xff, G: 0x92, B: 0x2b, A: 255},
}

var foodColorsLevel3 = []proto.Color{
	{R: 0xf3, G: 0x9c, B: 0x12, A: 255}, {R: 0xe6, G: 0x7e, B: 0x22, A: 255},
	{R: 0xd3, G: 0x54, B: 0x00, A: 255}, {R: 0xc0, G: 0x39, B: 0x2b, A: 255},
}

var foodColorsLevel5 = []proto.Color{
	{R: 0x8e, G: 0x44, B: 0xad, A: 255}, {R: 0x9b, G: 0x59, B: 0xb6, A: 255},
	{R: 0x6c, G: 0x34, B: 0x83, A: 255},
}

func randomColor(colors []proto.Color) proto.Color {
	return colors[rand.Intn(len(colors))]
}

// NewFoodCluster creates a group of 5-12 food items clustered around a
// random center point, ~80-150px spread.
func NewFoodCluster(allocID func() uint32) []*Food {
	cx, cy := randomCirclePoint(config.WorldCenterX, config.WorldCenterY, config.WorldRadius-200)
	count := 5 + rand.Intn(8)
	clusterRadius := 80.0 + rand.Float64()*70.0

	foods := make([]*Food, count)
	for i := 0; i < count; i++ {
		angle := rand.Float64() * 2 * math.Pi
		r := clusterRadius * math.Sqrt(rand.Float64())
		fx := cx + r*math.Cos(angle)
		fy := cy + r*math.Sin(angle)
		fx, fy = clampToCircle(fx, fy, config.WorldCenterX, config.WorldCenterY, config.WorldRadius)

		level := config.FoodLevel1
		if rand.Float64() < 0.10 {
			level = config.FoodLevel3
		}
		foods[i] = newFoodWithLevel(allocID(), fx, fy, level, false)
	}
	return foods
}

func randomCirclePoint(cx, cy, radius float64) (float64, float64) {
	r := radius * math.Sqrt(rand.Float64())
	angle := rand.Float64() * 2 * math.Pi
	return cx + r*math.Cos(angle), cy + r*math.Sin(angle)
}

func clampToCircle(x, y, cx, cy, radius float64) (float64, float64) {
	dx := x - cx
	dy := y - cy
	d := math.Sqrt(dx*dx + dy*dy)
	if d <= radius {
		return x, y
	}
	scale := (radius - 1) / d
	return cx + dx*scale, cy + dy*scale
}
