// Package bot drives AI-controlled snakes that share the exact same
// internal/world physics as player snakes — the replication path
// (FullUpdate/PartialUpdate/SnakeSnapshot traffic) cannot be
// meaningfully exercised by a single human player alone, so bots keep
// the world populated and moving.
package bot

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/acherenovich/snake-app/internal/world"
)

// botNames is a multilingual pool of snake/warrior themed names,
// purely cosmetic and not protocol-relevant.
var botNames = []string{
	"Rắn Thần", "Sấm Sét", "Bão Tố", "Tia Chớp", "Ma Tốc Độ",
	"Rồng Lửa", "Bóng Đêm", "Sát Thủ", "Độc Xà", "Vua Rắn",
	"Hắc Mamba", "Kim Xà", "Thanh Xà", "Bạch Xà", "Thần Xà",
	"Hỏa Long", "Băng Xà", "Quỷ Xà", "Điện Xà", "Lôi Thần",
	"Viper", "Cobra", "Mamba", "Python", "Anaconda",
	"Sidewinder", "Rattlesnake", "Phantom", "Shadow", "Blaze",
	"Frostbite", "Venom", "Reaper", "Striker", "Apex",
	"Cyclone", "Tempest", "Havoc", "Wraith", "Spectre",
	"蛇神", "雷蛇", "龍王", "鬼蛇", "忍者",
	"侍", "影", "嵐", "炎蛇", "氷龍",
	"독사왕", "번개뱀", "용의발톱", "그림자", "폭풍",
	"흑사", "천둥", "불뱀", "얼음독", "광전사",
	"毒蛇王", "雷电蛇", "火龙", "冰蟒", "暗影",
	"狂蛇", "风暴", "霸蛇", "鬼火", "战神",
	"Serpiente", "Víbora", "Trueno", "Tormenta", "Fuego",
	"Sombra", "Veneno", "Relámpago", "Fantasma", "Dragón",
	"Гадюка", "Кобра", "Гром", "Буря", "Тень",
	"Пламя", "Мороз", "Ужас", "Змей", "Дракон",
}

// Bot tracks one AI snake's decision-making state across ticks.
type Bot struct {
	EntityID    uint32
	name        string
	wanderTicks int
	targetAngle float64
	boostTicks  int
	respawnIn   int

	seekTicks      int
	lastExperience uint32
	lastFoodDist   float64
	orbitCount     int

	// deathFoodX/Y/Ticks drive a rush toward a kill's dropped food.
	deathFoodX     float64
	deathFoodY     float64
	deathFoodTicks int
}

// Manager owns every bot snake and runs their AI against a shared
// world.World. SpawnBot acquires the world lock itself; Update and
// HandleDeaths must run while the caller already holds it;
// MaintainBotCount must run while the caller does NOT hold it (it
// calls SpawnBot internally).
type Manager struct {
	world     *world.World
	bots      map[uint32]*Bot
	usedNames map[string]bool
}

func NewManager(w *world.World) *Manager {
	return &Manager{
		world:     w,
		bots:      make(map[uint32]*Bot),
		usedNames: make(map[string]bool),
	}
}

// SpawnBot creates a new bot snake and registers it in the world.
// Caller must NOT hold the world lock.
func (m *Manager) SpawnBot(frame uint32) {
	name := m.pickName()
	hex := config.PlayerColors[rand.Intn(len(config.PlayerColors))]
	r, g, b, a := config.ColorFromHex(hex)
	color := proto.Color{R: r, G: g, B: b, A: a}

	m.world.Lock()
	id := m.world.AllocID()
	snake := world.NewSnake(id, name, color, frame)
	m.world.AddSnake(snake)
	m.world.Unlock()

	m.bots[id] = &Bot{
		EntityID:    id,
		name:        name,
		targetAngle: snake.Angle,
		wanderTicks: randomWanderDuration(),
	}
}

// Update runs AI decision-making and physics for every bot snake.
// Caller must hold the world lock.
func (m *Manager) Update() {
	w := m.world
	for _, bot := range m.bots {
		snake, ok := w.Snakes[bot.EntityID]
		if !ok || !snake.Alive {
			continue
		}

		angle, boost := m.decideInput(bot, snake)
		if dropped := snake.Steer(angle, boost); dropped != nil {
			w.AddFood(dropped)
		}
		if outOfBounds := snake.Move(); outOfBounds {
			w.AddFood(snake.DropFood()...)
		}
	}
}

// decideInput applies priority-based AI rules and returns
// (targetAngle, boost). Caller must hold the world lock.
func (m *Manager) decideInput(bot *Bot, snake *world.Snake) (float64, bool) {
	w := m.world
	head := snake.Head()
	hx, hy := float64(head.X), float64(head.Y)
	currentAngle := snake.Angle
	boost := false

	// Priority 1: boundary avoidance.
	dx := hx - config.WorldCenterX
	dy := hy - config.WorldCenterY
	distFromCenter := math.Sqrt(dx*dx + dy*dy)
	if distFromCenter > config.WorldRadius-config.BotBoundaryBuffer {
		bot.targetAngle = math.Atan2(config.WorldCenterY-hy, config.WorldCenterX-hx)
		bot.wanderTicks = randomWanderDuration()
		return bot.targetAngle, false
	}

	// Priority 2: danger avoidance — body segments ahead within BotDangerRadius.
	nearby := w.Grid.NearbySnakeBody(hx, hy, config.BotDangerRadius, snake.EntityID)
	for _, entry := range nearby {
		segAngle := math.Atan2(entry.Y-hy, entry.X-hx)
		angleDiff := normalizeAngle(segAngle - currentAngle)
		if math.Abs(angleDiff) < math.Pi/4 {
			if angleDiff >= 0 {
				bot.targetAngle = currentAngle - math.Pi/2
			} else {
				bot.targetAngle = currentAngle + math.Pi/2
			}
			bot.wanderTicks = randomWanderDuration()
			return bot.targetAngle, false
		}
	}

	// Priority 3: flee bigger snakes.
	biggerFound := false
	for _, other := range w.Snakes {
		if other.EntityID == snake.EntityID || !other.Alive {
			continue
		}
		otherHead := other.Head()
		ddx := float64(otherHead.X) - hx
		ddy := float64(otherHead.Y) - hy
		dist := math.Sqrt(ddx*ddx + ddy*ddy)
		if dist < config.BotFleeRadius && other.Experience > snake.Experience {
			bot.targetAngle = math.Atan2(hy-float64(otherHead.Y), hx-float64(otherHead.X))
			bot.boostTicks = 30
			bot.wanderTicks = randomWanderDuration()
			biggerFound = true
			break
		}
	}
	if biggerFound {
		if bot.boostTicks > 0 {
			bot.boostTicks--
			boost = true
		}
		return bot.targetAngle, boost
	}
	if bot.boostTicks > 0 {
		bot.boostTicks--
		boost = true
	}

	// Priority 4: chase smaller snakes.
	for _, other := range w.Snakes {
		if other.EntityID == snake.EntityID || !other.Alive {
			continue
		}
		otherHead := other.Head()
		ddx := float64(otherHead.X) - hx
		ddy := float64(otherHead.Y) - hy
		dist := math.Sqrt(ddx*ddx + ddy*ddy)
		if dist < config.BotChaseRadius && other.Experience < snake.Experience {
			bot.targetAngle = math.Atan2(ddy, ddx)
			bot.wanderTicks = randomWanderDuration()
			if len(snake.Segments) > config.SnakeMinSegments+5 {
				boost = true
			}
			return bot.targetAngle, boost
		}
	}

	// Priority 4.5: rush a kill's dropped food.
	if bot.deathFoodTicks > 0 {
		bot.deathFoodTicks--
		ddx := bot.deathFoodX - hx
		ddy := bot.deathFoodY - hy
		dist := math.Sqrt(ddx*ddx + ddy*ddy)
		if dist < 30 {
			bot.deathFoodTicks = 0
		} else {
			bot.targetAngle = math.Atan2(ddy, ddx)
			if len(snake.Segments) > config.SnakeMinSegments+5 {
				boost = true
			}
			return bot.targetAngle, boost
		}
	}

	// Priority 5: seek nearby food, ignoring anything behind us.
	if snake.Experience > bot.lastExperience {
		bot.seekTicks = 0
		bot.orbitCount = 0
		bot.lastFoodDist = 0
	}
	bot.lastExperience = snake.Experience

	nearFoodIDs := w.Grid.NearbyFood(hx, hy, config.BotFoodSeekRadius)
	if len(nearFoodIDs) > 0 && bot.seekTicks < 60 {
		bestDist := math.MaxFloat64
		var bestFood *world.Food
		for _, fid := range nearFoodIDs {
			f, ok := w.Foods[fid]
			if !ok {
				continue
			}
			fdx := float64(f.Position.X) - hx
			fdy := float64(f.Position.Y) - hy
			d := math.Sqrt(fdx*fdx + fdy*fdy)
			foodAngle := math.Atan2(fdy, fdx)
			angleDiff := math.Abs(normalizeAngle(foodAngle - currentAngle))
			if angleDiff > math.Pi/2 {
				continue
			}
			if d < bestDist {
				bestDist = d
				bestFood = f
			}
		}
		if bestFood != nil {
			if bot.lastFoodDist > 0 && bestDist >= bot.lastFoodDist-1.0 {
				bot.orbitCount++
			} else {
				bot.orbitCount = 0
			}
			bot.lastFoodDist = bestDist

			if bot.orbitCount >= 8 {
				bot.orbitCount = 0
				bot.seekTicks = 0
				bot.lastFoodDist = 0
				bot.targetAngle = currentAngle + math.Pi/2 + rand.Float64()*math.Pi
				bot.wanderTicks = 30 + rand.Intn(40)
				return bot.targetAngle, false
			}

			bot.targetAngle = math.Atan2(float64(bestFood.Position.Y)-hy, float64(bestFood.Position.X)-hx)
			bot.seekTicks++
			return bot.targetAngle, boost
		}
	}
	if bot.seekTicks >= 60 {
		bot.seekTicks = 0
		bot.orbitCount = 0
		bot.lastFoodDist = 0
		bot.targetAngle = currentAngle + math.Pi/2 + rand.Float64()*math.Pi
		bot.wanderTicks = 30 + rand.Intn(40)
		return bot.targetAngle, false
	}

	// Priority 6: roam uniformly across the map.
	if bot.wanderTicks <= 0 {
		targetR := (config.WorldRadius - config.BotBoundaryBuffer) * math.Sqrt(rand.Float64())
		targetA := rand.Float64() * 2 * math.Pi
		tx := config.WorldCenterX + targetR*math.Cos(targetA)
		ty := config.WorldCenterY + targetR*math.Sin(targetA)
		bot.targetAngle = math.Atan2(ty-hy, tx-hx)
		bot.wanderTicks = 40 + rand.Intn(60)
	}
	bot.wanderTicks--
	return bot.targetAngle, boost
}

// HandleDeaths starts respawn countdowns for bots whose snake died
// this tick, and points any bot that scored a kill toward the
// victim's drop zone. deaths maps a victim's entity id to its
// killer's entity id. Caller must hold the world lock.
func (m *Manager) HandleDeaths(deaths map[uint32]uint32) {
	for victimID, killerID := range deaths {
		victim, ok := m.world.Snakes[victimID]
		if !ok {
			continue
		}
		if bot, ok := m.bots[killerID]; ok {
			head := victim.Head()
			bot.deathFoodX = float64(head.X)
			bot.deathFoodY = float64(head.Y)
			bot.deathFoodTicks = 80
		}
	}

	for id, bot := range m.bots {
		snake, ok := m.world.Snakes[id]
		if !ok || !snake.Alive {
			if bot.respawnIn == 0 {
				bot.respawnIn = config.BotRespawnDelay
			}
		}
	}
}

// tickRespawns decrements respawn counters and respawns bots whose
// countdown reached zero. Caller must NOT hold the world lock.
func (m *Manager) tickRespawns(frame uint32) {
	var toRespawn []uint32
	for id, bot := range m.bots {
		if bot.respawnIn <= 0 {
			continue
		}
		bot.respawnIn--
		if bot.respawnIn == 0 {
			toRespawn = append(toRespawn, id)
		}
	}
	for _, oldID := range toRespawn {
		m.world.Lock()
		if s, ok := m.world.Snakes[oldID]; ok {
			delete(m.usedNames, s.Name)
		}
		m.world.RemoveSnake(oldID)
		m.world.Unlock()
		delete(m.bots, oldID)
		m.SpawnBot(frame)
	}
}

// MaintainBotCount ensures config.BotCount bots exist (alive +
// respawning). Caller must NOT hold the world lock.
func (m *Manager) MaintainBotCount(frame uint32) {
	m.tickRespawns(frame)
	if len(m.bots) < config.BotCount {
		m.SpawnBot(frame)
	}
}

// Count returns the number of bots currently tracked, alive or
// respawning.
func (m *Manager) Count() int { return len(m.bots) }

func (m *Manager) pickName() string {
	perm := rand.Perm(len(botNames))
	for _, i := range perm {
		name := botNames[i]
		if !m.usedNames[name] {
			m.usedNames[name] = true
			return name
		}
	}
	base := botNames[rand.Intn(len(botNames))]
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s %d", base, i)
		if !m.usedNames[name] {
			m.usedNames[name] = true
			return name
		}
	}
}

func randomWanderDuration() int { return 60 + rand.Intn(61) }

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
