package client

import "github.com/acherenovich/snake-app/internal/proto"

// Snake is the client-side record for one snake entity. Display name is
// carried on the join side-channel, not on the replication wire — the
// wire SnakeState has no name field, so Name is left for the caller to
// populate from elsewhere and is never touched by the store.
type Snake struct {
	EntityID      uint32
	Name          string
	Experience    uint32
	Segments      []proto.Point // head-first; Segments[0] is the head
	TotalSegments uint16
	Destination   proto.Point
	CreationFrame uint32
}

func (s *Snake) Head() proto.Point {
	if len(s.Segments) == 0 {
		return proto.Point{}
	}
	return s.Segments[0]
}

// Food is the client-side record for one food entity. Immutable after
// creation.
type Food struct {
	EntityID uint32
	Position proto.Point
	Color    proto.Color
	Power    uint8
}

// Store is the in-memory indexed entity collection: every snake and
// food entity currently known to the client, plus the per-entity
// sequence number each was last refreshed at. It is owned exclusively
// by the reconciliation Engine.
type Store struct {
	snakes map[uint32]*Snake
	foods  map[uint32]*Food

	snakeLastSeenSeq map[uint32]uint32
	foodLastSeenSeq  map[uint32]uint32

	playerEntityID uint32
}

func NewStore() *Store {
	return &Store{
		snakes:           make(map[uint32]*Snake),
		foods:            make(map[uint32]*Food),
		snakeLastSeenSeq: make(map[uint32]uint32),
		foodLastSeenSeq:  make(map[uint32]uint32),
	}
}

// Clear drops every record. Used on (re)connect and at the start of
// applying a FullUpdate.
func (s *Store) Clear() {
	s.snakes = make(map[uint32]*Snake)
	s.foods = make(map[uint32]*Food)
	s.snakeLastSeenSeq = make(map[uint32]uint32)
	s.foodLastSeenSeq = make(map[uint32]uint32)
}

func (s *Store) SetPlayerEntityID(id uint32) { s.playerEntityID = id }
func (s *Store) PlayerEntityID() uint32      { return s.playerEntityID }

func (s *Store) Snake(id uint32) (*Snake, bool) {
	sn, ok := s.snakes[id]
	return sn, ok
}

func (s *Store) Food(id uint32) (*Food, bool) {
	f, ok := s.foods[id]
	return f, ok
}

func (s *Store) Snakes() map[uint32]*Snake { return s.snakes }
func (s *Store) Foods() map[uint32]*Food   { return s.foods }

// UpsertFood replaces or inserts a food record and records its last
// seen sequence for TTL purposes.
func (s *Store) UpsertFood(id uint32, state proto.FoodState, currentSeq uint32) {
	s.foods[id] = &Food{
		EntityID: id,
		Position: proto.Point{X: state.X, Y: state.Y},
		Color:    state.Color,
		Power:    state.Power,
	}
	s.foodLastSeenSeq[id] = currentSeq
}

// UpsertSnakeFull validates full_segments.len == state.TotalSegments
// and installs the segments verbatim. The caller (Engine) is
// responsible for clearing the awaiting-player-rebuild flag itself;
// this method only reports whether id is the player.
func (s *Store) UpsertSnakeFull(id uint32, state proto.SnakeState, currentSeq uint32) (isPlayer bool, err error) {
	if int(state.TotalSegments) != len(state.Points) {
		return false, ErrSegmentCountMismatch
	}
	segments := make([]proto.Point, len(state.Points))
	copy(segments, state.Points)
	existing, had := s.snakes[id]
	creationFrame := currentSeq
	destination := proto.Point{X: state.HeadX, Y: state.HeadY}
	if had {
		creationFrame = existing.CreationFrame
		destination = existing.Destination
	}
	s.snakes[id] = &Snake{
		EntityID:      id,
		Name:          snakeNameOrEmpty(existing),
		Experience:    state.Experience,
		Segments:      segments,
		TotalSegments: state.TotalSegments,
		Destination:   destination,
		CreationFrame: creationFrame,
	}
	s.snakeLastSeenSeq[id] = currentSeq
	return id == s.playerEntityID, nil
}

func snakeNameOrEmpty(existing *Snake) string {
	if existing == nil {
		return ""
	}
	return existing.Name
}

// RemoveEntity deletes the record. Returns true if the removed entity
// was the player's snake (the caller marks it killed at the current
// server frame).
func (s *Store) RemoveEntity(kind proto.EntityType, id uint32) (wasPlayer bool) {
	switch kind {
	case proto.EntitySnake:
		delete(s.snakes, id)
		delete(s.snakeLastSeenSeq, id)
		return id == s.playerEntityID
	case proto.EntityFood:
		delete(s.foods, id)
		delete(s.foodLastSeenSeq, id)
	}
	return false
}

func (s *Store) SnakeLastSeenSeq(id uint32) (uint32, bool) {
	v, ok := s.snakeLastSeenSeq[id]
	return v, ok
}

func (s *Store) FoodLastSeenSeq(id uint32) (uint32, bool) {
	v, ok := s.foodLastSeenSeq[id]
	return v, ok
}
