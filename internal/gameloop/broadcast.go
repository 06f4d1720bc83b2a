package gameloop

import (
	"github.com/acherenovich/snake-app/internal/proto"
	"github.com/acherenovich/snake-app/internal/transport"
	"github.com/acherenovich/snake-app/internal/world"
)

// broadcast sends each connected peer either a FullUpdate (first
// contact, or after a RequestFullUpdate) or a viewport-diffed
// PartialUpdate, then answers any queued RequestSnakeSnapshot
// requests. Caller must NOT hold the world lock — broadcast takes its
// own read lock per peer.
func (gl *Loop) broadcast(leaderboard []world.LeaderboardEntry) {
	for _, peer := range gl.peers.Snapshot() {
		if peer.Closed() {
			continue
		}
		gl.playersMu.Lock()
		ps, ok := gl.players[peer.PlayerEntityID]
		gl.playersMu.Unlock()
		if !ok {
			continue
		}
		gl.sendToPeer(peer, ps)
	}
}

func (gl *Loop) sendToPeer(peer *transport.Peer, ps *playerState) {
	w := gl.world
	w.RLock()
	snake, hasSnake := w.Snakes[peer.PlayerEntityID]

	var cx, cy float64
	if hasSnake && snake.Alive {
		head := snake.Head()
		cx, cy = float64(head.X), float64(head.Y)
	}
	visibleSnakes := w.SnakesInViewport(cx, cy)
	visibleFoods := w.FoodInViewport(cx, cy)
	w.RUnlock()

	needFull := ps.pendingFull || len(ps.known) == 0

	if needFull {
		gl.sendFullUpdate(peer, ps, peer.PlayerEntityID, visibleSnakes, visibleFoods)
	} else {
		gl.sendPartialUpdate(peer, ps, peer.PlayerEntityID, visibleSnakes, visibleFoods)
	}
	ps.pendingFull = false
	ps.pendingFullAllSegments = false

	gl.answerSnapshotRequests(peer, ps)
	_ = leaderboardNoop
}

// leaderboardNoop documents that World.Leaderboard is computed every
// tick (cheap, O(n log n) over live snakes) even though the
// replication wire protocol carries no leaderboard message — a
// deployment wanting one would push it over the join/control channel
// rather than the UDP replication stream. The computed value is
// discarded here rather than silently dropped without a visible home.
var leaderboardNoop = struct{}{}

func (gl *Loop) sendFullUpdate(peer *transport.Peer, ps *playerState, playerID uint32, snakes []*world.Snake, foods []*world.Food) {
	entries := make([]proto.Entry, 0, len(snakes)+len(foods))
	known := make(map[uint32]struct{}, len(snakes)+len(foods))

	for _, s := range snakes {
		state := s.ToWireState(proto.PointsFullSegments)
		entries = append(entries, proto.Entry{
			Header: proto.EntityEntryHeader{Type: proto.EntitySnake, EntityID: s.EntityID},
			Snake:  &state,
		})
		known[s.EntityID] = struct{}{}
	}
	for _, f := range foods {
		state := f.ToWireState()
		entries = append(entries, proto.Entry{
			Header: proto.EntityEntryHeader{Type: proto.EntityFood, EntityID: f.EntityID},
			Food:   &state,
		})
		known[f.EntityID] = struct{}{}
	}

	datagram := proto.EncodeFullUpdate(peer.NextSeq(), proto.FullUpdate{
		Header:  proto.FullUpdateHeader{PlayerEntityID: playerID},
		Entries: entries,
	})
	_ = gl.listener.Send(peer, datagram)
	ps.known = known
}

func (gl *Loop) sendPartialUpdate(peer *transport.Peer, ps *playerState, playerID uint32, snakes []*world.Snake, foods []*world.Food) {
	nowVisible := make(map[uint32]struct{}, len(snakes)+len(foods))
	var entries []proto.Entry

	for _, s := range snakes {
		nowVisible[s.EntityID] = struct{}{}
		_, wasKnown := ps.known[s.EntityID]

		kind := proto.PointsValidationSamples
		if s.EntityID == playerID {
			// The owning player's own snake is always sent in full —
			// cheap for one snake, and it trivially satisfies the
			// client's awaiting-player-rebuild gate without the server
			// needing to track that client-side flag.
			kind = proto.PointsFullSegments
		}
		if !wasKnown {
			kind = proto.PointsFullSegments
		}
		state := s.ToWireState(kind)

		var flags uint8
		if !wasKnown {
			flags = proto.FlagNew
		}
		entries = append(entries, proto.Entry{
			Header: proto.EntityEntryHeader{Type: proto.EntitySnake, Flags: flags, EntityID: s.EntityID},
			Snake:  &state,
		})
	}
	for _, f := range foods {
		nowVisible[f.EntityID] = struct{}{}
		_, wasKnown := ps.known[f.EntityID]
		var flags uint8
		if !wasKnown {
			flags = proto.FlagNew
		}
		state := f.ToWireState()
		entries = append(entries, proto.Entry{
			Header: proto.EntityEntryHeader{Type: proto.EntityFood, Flags: flags, EntityID: f.EntityID},
			Food:   &state,
		})
	}

	for id := range ps.known {
		if _, stillVisible := nowVisible[id]; stillVisible {
			continue
		}
		entryType := proto.EntitySnake
		if _, isFood := gl.world.Foods[id]; isFood {
			entryType = proto.EntityFood
		}
		entries = append(entries, proto.Entry{
			Header: proto.EntityEntryHeader{Type: entryType, Flags: proto.FlagRemove, EntityID: id},
		})
	}

	datagram := proto.EncodePartialUpdate(peer.NextSeq(), proto.PartialUpdate{Entries: entries})
	_ = gl.listener.Send(peer, datagram)
	ps.known = nowVisible
}

// answerSnapshotRequests responds to every RequestSnakeSnapshot queued
// for this peer since the last tick. It bypasses the sequence tracker
// entirely, so it's sent outside the normal Full/PartialUpdate
// cadence.
func (gl *Loop) answerSnapshotRequests(peer *transport.Peer, ps *playerState) {
	if len(ps.snapshotRequests) == 0 {
		return
	}
	requests := ps.snapshotRequests
	ps.snapshotRequests = nil

	w := gl.world
	w.RLock()
	defer w.RUnlock()
	for _, id := range requests {
		snake, ok := w.Snakes[id]
		if !ok {
			continue
		}
		state := snake.ToWireState(proto.PointsFullSegments)
		datagram := proto.EncodeSnakeSnapshot(peer.NextSeq(), id, state)
		_ = gl.listener.Send(peer, datagram)
	}
}
