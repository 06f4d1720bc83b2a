// Package gameloop drives the authoritative simulation at a fixed
// tick rate and is the one place the wire protocol (internal/proto),
// world physics (internal/world, internal/bot), and transport
// (internal/transport) all meet: it is the sole producer of
// FullUpdate/PartialUpdate/SnakeSnapshot datagrams and the sole
// consumer of ClientInput/RequestFullUpdate/RequestSnakeSnapshot.
package gameloop

import (
	"math"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/acherenovich/snake-app/internal/bot"
	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/metrics"
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/acherenovich/snake-app/internal/transport"
	"github.com/acherenovich/snake-app/internal/world"
)

// playerState is everything the loop tracks per human player beyond
// what world.Snake already holds: the last input destination and the
// per-peer replication diff baseline.
type playerState struct {
	destination    proto.Point
	hasDestination bool

	known map[uint32]struct{} // entity ids visible to this peer as of last broadcast

	pendingFull            bool
	pendingFullAllSegments bool
	snapshotRequests       []uint32
}

type inboundDatagram struct {
	peer    *transport.Peer
	payload []byte
}

// Loop is the fixed-timestep server simulation.
type Loop struct {
	world    *world.World
	bots     *bot.Manager
	peers    *transport.PeerTable
	listener *transport.Listener

	inbox chan inboundDatagram

	players   map[uint32]*playerState
	playersMu chanMutex

	tickCount uint32
	log       *logrus.Entry
}

// chanMutex is a trivial channel-based mutex guarding players, the
// single piece of cross-goroutine state in this package outside
// world.World itself.
type chanMutex chan struct{}

func newChanMutex() chanMutex {
	c := make(chanMutex, 1)
	c <- struct{}{}
	return c
}
func (c chanMutex) Lock()   { <-c }
func (c chanMutex) Unlock() { c <- struct{}{} }

func NewLoop(w *world.World, peers *transport.PeerTable, listener *transport.Listener) *Loop {
	gl := &Loop{
		world:     w,
		bots:      bot.NewManager(w),
		peers:     peers,
		listener:  listener,
		inbox:     make(chan inboundDatagram, 1024),
		players:   make(map[uint32]*playerState),
		playersMu: newChanMutex(),
		log:       logrus.WithField("component", "game_loop"),
	}
	for i := 0; i < config.BotCount; i++ {
		gl.bots.SpawnBot(0)
	}
	return gl
}

// AssignPlayer implements transport.AssignFunc: it allocates an entity
// id, spawns the player's snake, and registers replication state for
// it. Called from the join handshake's HTTP goroutine, never from the
// tick goroutine.
func (gl *Loop) AssignPlayer(name string) (uint32, error) {
	gl.world.Lock()
	id := gl.world.AllocID()
	color := randomPlayerColor()
	snake := world.NewSnake(id, name, color, gl.tickCount)
	gl.world.AddSnake(snake)
	gl.world.Unlock()

	gl.playersMu.Lock()
	gl.players[id] = &playerState{
		known:                  make(map[uint32]struct{}),
		pendingFull:            true,
		pendingFullAllSegments: true,
	}
	gl.playersMu.Unlock()

	gl.log.WithField("name", name).WithField("entity_id", id).Info("player assigned")
	return id, nil
}

// OnDatagram is the transport.Handler bound to the UDP listener. It
// never touches world or players state directly — datagrams are
// queued and drained at the start of the next tick, keeping every
// mutation of world/players state on the single tick goroutine.
func (gl *Loop) OnDatagram(peer *transport.Peer, payload []byte) {
	select {
	case gl.inbox <- inboundDatagram{peer: peer, payload: payload}:
	default:
		gl.log.Warn("server inbox full, dropping datagram")
	}
}

// Run blocks, ticking the simulation at config.SimTickRate until
// stop is closed.
func (gl *Loop) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(config.SimTickPeriod)
	defer ticker.Stop()
	gl.log.WithField("rate_hz", config.SimTickRate).Info("game loop started")

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := time.Now()
			gl.tick()
			metrics.TickDuration.Observe(time.Since(start).Seconds())
		}
	}
}

func (gl *Loop) tick() {
	gl.tickCount++
	gl.drainInbox()

	w := gl.world
	w.Lock()

	for _, f := range w.Foods {
		if f.IsMoving {
			f.UpdateMoving()
		}
	}

	gl.bots.Update()
	boundaryDeaths := map[uint32]bool{}
	for id, s := range w.Snakes {
		if !s.Alive {
			boundaryDeaths[id] = true
		}
	}

	gl.playersMu.Lock()
	players := make(map[uint32]*playerState, len(gl.players))
	for id, ps := range gl.players {
		players[id] = ps
	}
	gl.playersMu.Unlock()

	for id, ps := range players {
		snake, ok := w.Snakes[id]
		if !ok || !snake.Alive || !ps.hasDestination {
			continue
		}
		if dropped := snake.ApplyInput(ps.destination, false); dropped != nil {
			w.AddFood(dropped)
		}
		if snake.Move() {
			boundaryDeaths[id] = true
		}
	}

	w.RebuildGrid()

	deaths := gl.detectCollisions()
	for id := range boundaryDeaths {
		if _, already := deaths[id]; !already {
			deaths[id] = 0
		}
	}

	for victimID, killerID := range deaths {
		snake := w.Snakes[victimID]
		if snake == nil || !snake.Alive {
			continue
		}
		dropped := snake.DropFood()
		w.AddFood(dropped...)
		cause := "combat"
		if killerID == 0 {
			cause = "boundary"
		}
		metrics.SnakeDeaths.WithLabelValues(cause).Inc()
		gl.log.WithField("victim", snake.Name).WithField("dropped", len(dropped)).Debug("snake died")
	}
	gl.bots.HandleDeaths(deaths)

	gl.applyFoodMagnet()
	gl.collectFood()
	gl.maybeSpawnMovingFood()
	w.MaintainFoodCount()

	leaderboard := w.Leaderboard()
	metrics.FoodCount.Set(float64(len(w.Foods)))

	w.Unlock()

	gl.bots.MaintainBotCount(gl.tickCount)
	metrics.ActivePlayers.Set(float64(gl.peers.Count()))
	metrics.ActiveBots.Set(float64(gl.bots.Count()))

	gl.broadcast(leaderboard)
}

func (gl *Loop) drainInbox() {
	for {
		select {
		case msg := <-gl.inbox:
			gl.handleDatagram(msg.peer, msg.payload)
		default:
			return
		}
	}
}

func (gl *Loop) handleDatagram(peer *transport.Peer, payload []byte) {
	h, body, err := proto.ParseHeader(payload)
	if err != nil {
		gl.log.WithError(err).Debug("dropped malformed client datagram")
		return
	}

	gl.playersMu.Lock()
	ps, ok := gl.players[peer.PlayerEntityID]
	gl.playersMu.Unlock()
	if !ok {
		return
	}

	switch h.Type {
	case proto.MsgClientInput:
		in, err := proto.DecodeClientInputPayload(body)
		if err != nil {
			return
		}
		ps.destination = proto.Point{X: in.DestX, Y: in.DestY}
		ps.hasDestination = true

	case proto.MsgRequestFullUpdate:
		req, err := proto.DecodeRequestFullUpdatePayload(body)
		if err != nil {
			return
		}
		ps.pendingFull = true
		if req.AllSegments() {
			ps.pendingFullAllSegments = true
		}

	case proto.MsgRequestSnakeSnapshot:
		req, err := proto.DecodeRequestSnakeSnapshotPayload(body)
		if err != nil {
			return
		}
		ps.snapshotRequests = append(ps.snapshotRequests, req.EntityID)

	default:
		// Server-direction-only types should never arrive here.
	}
}

// applyFoodMagnet pulls food within config.MagnetRadius toward each
// alive snake head. Caller must hold the world lock.
func (gl *Loop) applyFoodMagnet() {
	w := gl.world
	for _, snake := range w.Snakes {
		if !snake.Alive {
			continue
		}
		head := snake.Head()
		hx, hy := float64(head.X), float64(head.Y)
		for _, fid := range w.Grid.NearbyFood(hx, hy, config.MagnetRadius) {
			food, ok := w.Foods[fid]
			if !ok {
				continue
			}
			dx := hx - float64(food.Position.X)
			dy := hy - float64(food.Position.Y)
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist <= config.SnakeHeadRadius+config.FoodRadius {
				continue
			}
			moveBy := config.MagnetSpeed
			if moveBy > dist {
				moveBy = dist
			}
			food.Position.X += float32((dx / dist) * moveBy)
			food.Position.Y += float32((dy / dist) * moveBy)
		}
	}
}

// collectFood consumes food within eating radius of each alive snake
// head. Caller must hold the world lock.
func (gl *Loop) collectFood() {
	w := gl.world
	for _, snake := range w.Snakes {
		if !snake.Alive {
			continue
		}
		head := snake.Head()
		for _, fid := range w.Grid.NearbyFood(float64(head.X), float64(head.Y), config.SnakeHeadRadius+config.FoodRadius) {
			food, ok := w.Foods[fid]
			if !ok {
				continue
			}
			w.RemoveFood(fid)
			snake.Grow(food.Level)
		}
	}
}

// maybeSpawnMovingFood spawns a level-10 moving food every
// config.MovingFoodSpawnInterval ticks, capped at
// config.MovingFoodMaxCount. Caller must hold the world lock.
func (gl *Loop) maybeSpawnMovingFood() {
	if gl.tickCount%config.MovingFoodSpawnInterval != 0 {
		return
	}
	w := gl.world
	count := 0
	for _, f := range w.Foods {
		if f.IsMoving {
			count++
		}
	}
	if count >= config.MovingFoodMaxCount {
		return
	}
	mf := world.NewMovingFood(w.AllocID())
	w.Foods[mf.EntityID] = mf
}

// detectCollisions checks head-to-body and head-to-head collisions.
// Returns a map of victim entity id to killer entity id (0 for
// boundary/unattributed deaths). Caller must hold the world lock.
func (gl *Loop) detectCollisions() map[uint32]uint32 {
	w := gl.world
	deaths := map[uint32]uint32{}

	alive := make([]*world.Snake, 0, len(w.Snakes))
	for _, s := range w.Snakes {
		if s.Alive {
			alive = append(alive, s)
		}
	}

	for _, snake := range alive {
		if _, dead := deaths[snake.EntityID]; dead {
			continue
		}
		head := snake.Head()
		hx, hy := float64(head.X), float64(head.Y)
		for _, hit := range w.Grid.NearbySnakeBody(hx, hy, config.CollisionCheckRadius, snake.EntityID) {
			other := w.Snakes[hit.SnakeID]
			if other == nil || !other.Alive {
				continue
			}
			dx := hx - hit.X
			dy := hy - hit.Y
			if math.Sqrt(dx*dx+dy*dy) < config.SnakeHeadRadius+config.SnakeBodyRadius {
				deaths[snake.EntityID] = other.EntityID
			}
		}
	}

	for i := 0; i < len(alive); i++ {
		for j := i + 1; j < len(alive); j++ {
			a, b := alive[i], alive[j]
			if _, dead := deaths[a.EntityID]; dead {
				continue
			}
			if _, dead := deaths[b.EntityID]; dead {
				continue
			}
			ha, hb := a.Head(), b.Head()
			dx := float64(ha.X - hb.X)
			dy := float64(ha.Y - hb.Y)
			if math.Sqrt(dx*dx+dy*dy) < config.SnakeHeadRadius*2 {
				if a.Experience >= b.Experience {
					deaths[b.EntityID] = a.EntityID
				}
				if b.Experience >= a.Experience {
					deaths[a.EntityID] = b.EntityID
				}
			}
		}
	}
	return deaths
}

func randomPlayerColor() proto.Color {
	hex := config.PlayerColors[rand.Intn(len(config.PlayerColors))]
	r, g, b, a := config.ColorFromHex(hex)
	return proto.Color{R: r, G: g, B: b, A: a}
}
