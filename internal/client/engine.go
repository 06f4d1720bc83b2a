// Package client implements the client-side world reconciliation
// engine: sequence tracking, the entity store, the reconciliation
// engine itself, body prediction with drift validation, and the input
// producer.
package client

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/acherenovich/snake-app/internal/config"
	"github.com/acherenovich/snake-app/internal/metrics"
	"github.com/acherenovich/snake-app/internal/proto"
)

// Sender is the subset of the transport adapter the engine needs to
// emit datagrams. internal/transport.UDPTransport implements it and
// delivers received datagrams to a callback wired to OnMessage. It has
// no connect/disconnect/error callbacks: OnConnected, OnDisconnected
// and OnConnectionError are called by the driver (cmd/client calls the
// first two), not by the transport.
type Sender interface {
	Send(payload []byte) error
}

// DebugInfo is a snapshot of the engine's reconciliation state, meant
// for an on-screen or logged diagnostics overlay.
type DebugInfo struct {
	HasSeq                        bool
	LastServerSeq                 uint32
	PendingFullRequest             bool
	PendingFullRequestAllSegments  bool
	AwaitingPlayerRebuild          bool
	BadPacketsDropped              uint32
	PlayerEntityID                 uint32
	LastFullPacketBytes            uint32
	LastPartialPacketBytes         uint32
	LastFullPayloadBytes           uint32
	LastPartialPayloadBytes        uint32
}

// Engine is the reconciliation engine: a single per-connection instance
// owning the entity store, sequence tracker, and every pending-flag /
// cooldown piece of state. No locks are taken within it — ProcessTick
// runs to completion on one goroutine.
type Engine struct {
	store *Store
	seq   sequenceTracker

	sender Sender
	inbox  chan []byte

	localFrame  uint32
	serverFrame uint32

	pendingFullRequest            bool
	pendingFullRequestAllSegments bool
	awaitingPlayerRebuild         bool

	lastInputSeq      uint32
	playerDestination proto.Point

	snapshotQueue    []uint32
	snapshotQueued   map[uint32]struct{}
	snapshotCooldown map[uint32]uint32 // entity id -> frame it may be re-queued

	badPacketsDropped       uint32
	lastFullPacketBytes     uint32
	lastPartialPacketBytes  uint32
	lastFullPayloadBytes    uint32
	lastPartialPayloadBytes uint32

	visibilityRadius float32

	loaded    bool
	timedOut  bool
	killedSeq uint32

	log *logrus.Entry
}

// Create binds the engine to a transport sender. serverID is carried
// only for logging — the transport dial itself is the caller's
// responsibility (internal/transport.Dial).
func Create(sender Sender, serverID uint8) *Engine {
	return &Engine{
		store:            NewStore(),
		sender:           sender,
		inbox:            make(chan []byte, 256),
		snapshotQueued:   make(map[uint32]struct{}),
		snapshotCooldown: make(map[uint32]uint32),
		visibilityRadius: float32(math.Hypot(config.ViewportWidth/2, config.ViewportHeight/2)),
		log:              logrus.WithField("component", "engine").WithField("server_id", serverID),
	}
}

// SetVisibilityRadius lets the rendering layer's camera override the
// default viewport-derived radius used for TTL-eviction visibility and
// GetNearestFoods.
func (e *Engine) SetVisibilityRadius(r float32) { e.visibilityRadius = r }

func (e *Engine) paddedVisibilityRadius() float32 {
	return e.visibilityRadius * (1 + config.VisibilityPaddingPercent)
}

// OnConnected clears the world and all pending flags.
func (e *Engine) OnConnected() {
	e.store.Clear()
	e.seq.reset()
	e.pendingFullRequest = false
	e.pendingFullRequestAllSegments = false
	e.awaitingPlayerRebuild = false
	e.snapshotQueue = nil
	e.snapshotQueued = make(map[uint32]struct{})
	e.snapshotCooldown = make(map[uint32]uint32)
	e.loaded = true
	e.timedOut = false
	e.log.Info("connected")
}

// OnDisconnected marks the session ended; the engine stops emission.
func (e *Engine) OnDisconnected() {
	e.timedOut = true
	e.log.Warn("disconnected")
}

func (e *Engine) OnConnectionError(reason string) {
	e.log.WithField("reason", reason).Warn("connection error")
}

// OnMessage is the transport's delivered-message callback; it is
// queued and drained on the engine's own tick, never processed
// in-line from an I/O goroutine.
func (e *Engine) OnMessage(datagram []byte) {
	select {
	case e.inbox <- datagram:
	default:
		e.log.Warn("inbox full, dropping datagram")
	}
}

// ProcessTick is the engine's single entry point, called at the fixed
// simulation rate. In order: drain incoming datagrams, advance
// predictions (folded into datagram application since predictions are
// driven by ValidationSamples deltas), emit outgoing datagrams, run TTL
// eviction.
func (e *Engine) ProcessTick() {
	e.localFrame++

	for drained := false; !drained; {
		select {
		case datagram := <-e.inbox:
			e.handleDatagram(datagram)
		default:
			drained = true
		}
	}

	e.produceInput()
	e.evictTTL()
	e.reportMetrics()
}

// reportMetrics publishes the engine's current pending-repair state to
// the process-wide Prometheus gauges. Counters (bad packets, TTL
// evictions) are incremented at their call sites instead, since they
// are monotonic events rather than snapshotted state.
func (e *Engine) reportMetrics() {
	pending := 0.0
	if e.pendingFullRequest || e.pendingFullRequestAllSegments || len(e.snapshotQueue) > 0 {
		pending = 1.0
	}
	metrics.PendingRepair.Set(pending)
	metrics.SnapshotRequestsQueued.Set(float64(len(e.snapshotQueue)))
}

func (e *Engine) dropBadPacket() {
	e.badPacketsDropped++
	metrics.DroppedBadPackets.WithLabelValues("protocol_violation").Inc()
}

func (e *Engine) handleDatagram(datagram []byte) {
	h, payload, err := proto.ParseHeader(datagram)
	if err != nil {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		e.log.WithError(err).Debug("dropped malformed datagram")
		return
	}
	if !h.Type.Known() {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		return
	}

	switch h.Type {
	case proto.MsgFullUpdate:
		e.lastFullPacketBytes = uint32(len(datagram))
		e.lastFullPayloadBytes = uint32(len(payload))
		gap := e.seq.accept(h.Seq)
		e.serverFrame = e.seq.lastServerSeq
		e.applyFullUpdate(payload, gap)
	case proto.MsgPartialUpdate:
		e.lastPartialPacketBytes = uint32(len(datagram))
		e.lastPartialPayloadBytes = uint32(len(payload))
		gap := e.seq.accept(h.Seq)
		e.serverFrame = e.seq.lastServerSeq
		if gap {
			e.pendingFullRequest = true
			e.pendingFullRequestAllSegments = true
		}
		e.applyPartialUpdate(payload)
	case proto.MsgSnakeSnapshot:
		// Snapshots bypass the sequence tracker entirely.
		e.applySnakeSnapshot(payload)
	default:
		// Client-to-server message types should never arrive here.
		e.dropBadPacket()
	}
}

// applyFullUpdate clears the store and rebuilds it entirely from the
// entries of one FullUpdate message.
func (e *Engine) applyFullUpdate(payload []byte, gapBeforeApply bool) {
	fu, err := proto.DecodeFullUpdate(payload)
	if err != nil {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		return
	}

	e.store.Clear()
	e.store.SetPlayerEntityID(fu.Header.PlayerEntityID)

	playerRebuiltExact := false
	for _, entry := range fu.Entries {
		switch entry.Header.Type {
		case proto.EntitySnake:
			if entry.Snake.Kind != proto.PointsFullSegments ||
				len(entry.Snake.Points) != int(entry.Snake.TotalSegments) {
				e.dropBadPacket()
				e.pendingFullRequest = true
				e.pendingFullRequestAllSegments = true
				continue
			}
			isPlayer, err := e.store.UpsertSnakeFull(entry.Header.EntityID, *entry.Snake, e.seq.lastServerSeq)
			if err != nil {
				e.dropBadPacket()
				e.pendingFullRequest = true
				e.pendingFullRequestAllSegments = true
				continue
			}
			if isPlayer {
				playerRebuiltExact = true
			}
		case proto.EntityFood:
			e.store.UpsertFood(entry.Header.EntityID, *entry.Food, e.seq.lastServerSeq)
		default:
			e.dropBadPacket()
			e.pendingFullRequest = true
			e.pendingFullRequestAllSegments = true
		}
	}

	if e.awaitingPlayerRebuild {
		if playerRebuiltExact {
			e.awaitingPlayerRebuild = false
		} else {
			e.pendingFullRequest = true
			e.pendingFullRequestAllSegments = true
		}
	}
	if gapBeforeApply {
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
	}
}

// applyPartialUpdate applies one PartialUpdate message's entries:
// removals, food upserts, new-snake full inserts, and per-snake
// full/validation-sample refreshes.
func (e *Engine) applyPartialUpdate(payload []byte) {
	pu, err := proto.DecodePartialUpdate(payload)
	if err != nil {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		return
	}

	for _, entry := range pu.Entries {
		if entry.Header.IsRemove() {
			wasPlayer := e.store.RemoveEntity(entry.Header.Type, entry.Header.EntityID)
			if wasPlayer {
				e.killedSeq = e.seq.lastServerSeq
			}
			continue
		}

		switch entry.Header.Type {
		case proto.EntityFood:
			e.store.UpsertFood(entry.Header.EntityID, *entry.Food, e.seq.lastServerSeq)

		case proto.EntitySnake:
			ss := entry.Snake
			if entry.Header.IsNew() {
				if ss.Kind != proto.PointsFullSegments || len(ss.Points) != int(ss.TotalSegments) {
					e.dropBadPacket()
					e.pendingFullRequest = true
					e.pendingFullRequestAllSegments = true
					continue
				}
				e.upsertSnakeFullChecked(entry.Header.EntityID, *ss)
				continue
			}

			switch ss.Kind {
			case proto.PointsFullSegments:
				if len(ss.Points) != int(ss.TotalSegments) {
					e.dropBadPacket()
					e.pendingFullRequest = true
					e.pendingFullRequestAllSegments = true
					continue
				}
				e.upsertSnakeFullChecked(entry.Header.EntityID, *ss)

			case proto.PointsValidationSamples:
				if err := e.applyValidationSamples(entry.Header.EntityID, *ss); err != nil {
					e.dropBadPacket()
					e.log.WithError(err).WithField("entity_id", entry.Header.EntityID).Debug("validation samples rejected")
				}

			default:
				e.dropBadPacket()
				e.pendingFullRequest = true
				e.pendingFullRequestAllSegments = true
			}
		}
	}
}

func (e *Engine) upsertSnakeFullChecked(id uint32, ss proto.SnakeState) {
	isPlayer, err := e.store.UpsertSnakeFull(id, ss, e.seq.lastServerSeq)
	if err != nil {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		return
	}
	if isPlayer && e.awaitingPlayerRebuild && int(ss.TotalSegments) == len(ss.Points) {
		e.awaitingPlayerRebuild = false
	}
}

// applyValidationSamples runs the predict/drift-check loop for one
// ValidationSamples entry: predict the body from the last known
// segments, compare against the server's samples, and either accept
// the prediction or queue a targeted repair.
func (e *Engine) applyValidationSamples(id uint32, ss proto.SnakeState) error {
	if id == e.store.PlayerEntityID() {
		// The player's snake is pinned: it is only rebuilt from full
		// segments, so samples for it are ignored (including while a
		// rebuild is awaited).
		return nil
	}

	snake, ok := e.store.Snake(id)
	if !ok {
		// Never synthesize a snake from samples alone; queue a targeted
		// repair instead.
		e.queueSnapshotRequest(id)
		return ErrUnknownSnakeSamples
	}

	segments := make([]proto.Point, len(snake.Segments))
	copy(segments, snake.Segments)
	segments[0] = proto.Point{X: ss.HeadX, Y: ss.HeadY}
	stepBody(segments, config.StepDistance)
	segments = applyExperienceGrowShrink(segments, ss.Experience)

	expected := buildExpectedSamples(segments, config.SnakeBodyRadius)
	if len(expected) != len(ss.Points) {
		e.queueSnapshotRequest(id)
		return ErrSampleSizeMismatch
	}
	if !validateSamples(expected, ss.Points, config.SnakeBodyRadius) {
		e.queueSnapshotRequest(id)
		return nil
	}

	snake.Segments = segments
	snake.Experience = ss.Experience
	snake.TotalSegments = uint16(len(segments))
	e.store.snakeLastSeenSeq[id] = e.seq.lastServerSeq
	return nil
}

// applySnakeSnapshot installs a targeted repair answer: always full
// segments, bypasses the sequence tracker.
func (e *Engine) applySnakeSnapshot(payload []byte) {
	snap, err := proto.DecodeSnakeSnapshot(payload)
	if err != nil {
		e.dropBadPacket()
		e.pendingFullRequest = true
		e.pendingFullRequestAllSegments = true
		return
	}
	id := snap.Entry.Header.EntityID
	e.upsertSnakeFullChecked(id, *snap.Entry.Snake)
	delete(e.snapshotCooldown, id)
	delete(e.snapshotQueued, id)
}

// queueSnapshotRequest adds id to the pending per-snake repair set,
// subject to a cooldown so a repeatedly-failing snake doesn't flood
// the outbound queue with redundant requests.
func (e *Engine) queueSnapshotRequest(id uint32) {
	if until, cooling := e.snapshotCooldown[id]; cooling && e.localFrame < until {
		return
	}
	if _, queued := e.snapshotQueued[id]; queued {
		return
	}
	e.snapshotQueued[id] = struct{}{}
	e.snapshotQueue = append(e.snapshotQueue, id)
}

// evictTTL removes entities that are both stale AND out of view.
func (e *Engine) evictTTL() {
	player, hasPlayer := e.store.Snake(e.store.PlayerEntityID())
	var playerPos proto.Point
	if hasPlayer {
		playerPos = player.Head()
	}
	radius := e.paddedVisibilityRadius()

	for id, snake := range e.store.snakes {
		if id == e.store.PlayerEntityID() {
			continue
		}
		lastSeen := e.store.snakeLastSeenSeq[id]
		if e.seq.lastServerSeq-lastSeen < config.TTLSeqDelta {
			continue
		}
		if hasPlayer && dist(playerPos, snake.Head()) <= radius {
			continue
		}
		e.store.RemoveEntity(proto.EntitySnake, id)
		metrics.TTLEvictions.Inc()
	}

	for id, food := range e.store.foods {
		lastSeen := e.store.foodLastSeenSeq[id]
		if e.seq.lastServerSeq-lastSeen < config.TTLSeqDelta {
			continue
		}
		if hasPlayer && dist(playerPos, food.Position) <= radius {
			continue
		}
		e.store.RemoveEntity(proto.EntityFood, id)
		metrics.TTLEvictions.Inc()
	}
}

// ForceFullUpdateRequest sets all three repair flags at once: the next
// input emission sends a RequestFullUpdate with AllSegments, and the
// awaiting-player-rebuild flag stays set until full segments for the
// player arrive.
func (e *Engine) ForceFullUpdateRequest() {
	e.pendingFullRequest = true
	e.pendingFullRequestAllSegments = true
	e.awaitingPlayerRebuild = true
}

func (e *Engine) GetPlayerSnake() (*Snake, bool) {
	return e.store.Snake(e.store.PlayerEntityID())
}

// GetNearestVictims returns all snakes known to the engine except the
// player.
func (e *Engine) GetNearestVictims() map[uint32]*Snake {
	out := make(map[uint32]*Snake, len(e.store.snakes))
	player := e.store.PlayerEntityID()
	for id, s := range e.store.snakes {
		if id == player {
			continue
		}
		out[id] = s
	}
	return out
}

// GetNearestFoods returns all foods within the player's visibility-
// padded radius.
func (e *Engine) GetNearestFoods() map[uint32]*Food {
	out := make(map[uint32]*Food)
	player, hasPlayer := e.store.Snake(e.store.PlayerEntityID())
	if !hasPlayer {
		return out
	}
	radius := e.paddedVisibilityRadius()
	head := player.Head()
	for id, f := range e.store.foods {
		if dist(head, f.Position) <= radius {
			out[id] = f
		}
	}
	return out
}

func (e *Engine) GetServerFrame() uint32 { return e.serverFrame }

func (e *Engine) GetDebugInfo() DebugInfo {
	return DebugInfo{
		HasSeq:                        e.seq.hasSeq,
		LastServerSeq:                 e.seq.lastServerSeq,
		PendingFullRequest:            e.pendingFullRequest,
		PendingFullRequestAllSegments: e.pendingFullRequestAllSegments,
		AwaitingPlayerRebuild:         e.awaitingPlayerRebuild,
		BadPacketsDropped:             e.badPacketsDropped,
		PlayerEntityID:                e.store.PlayerEntityID(),
		LastFullPacketBytes:           e.lastFullPacketBytes,
		LastPartialPacketBytes:        e.lastPartialPacketBytes,
		LastFullPayloadBytes:          e.lastFullPayloadBytes,
		LastPartialPayloadBytes:       e.lastPartialPayloadBytes,
	}
}

func (e *Engine) IsLoaded() bool  { return e.loaded }
func (e *Engine) IsTimeout() bool { return e.timedOut }
