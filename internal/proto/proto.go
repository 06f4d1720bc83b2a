// Package proto implements the binary replication wire protocol: a
// 16-byte little-endian header, six message types, and the entity-entry
// encoding shared by FullUpdate, PartialUpdate and SnakeSnapshot.
package proto

import "errors"

// ProtocolVersion is the only version this codec accepts. A mismatched
// version is dropped by the dispatcher, never by this package.
const ProtocolVersion uint16 = 1

// HeaderSize is the fixed size, in bytes, of every message header.
const HeaderSize = 16

// MessageType enumerates the six wire message types.
type MessageType uint16

const (
	MsgFullUpdate           MessageType = 1
	MsgPartialUpdate        MessageType = 2
	MsgSnakeSnapshot        MessageType = 3
	MsgClientInput          MessageType = 4
	MsgRequestFullUpdate    MessageType = 5
	MsgRequestSnakeSnapshot MessageType = 6
)

func (t MessageType) Known() bool {
	switch t {
	case MsgFullUpdate, MsgPartialUpdate, MsgSnakeSnapshot,
		MsgClientInput, MsgRequestFullUpdate, MsgRequestSnakeSnapshot:
		return true
	}
	return false
}

// EntityType tags an entity entry's body.
type EntityType uint8

const (
	EntitySnake EntityType = 1
	EntityFood  EntityType = 2
)

func (t EntityType) Known() bool {
	return t == EntitySnake || t == EntityFood
}

// Entry flag bits.
const (
	FlagNew    uint8 = 1 << 0
	FlagRemove uint8 = 1 << 1
)

// PointsKind distinguishes a full segment refresh from a short
// validation-sample subsequence.
type PointsKind uint8

const (
	PointsFullSegments      PointsKind = 1
	PointsValidationSamples PointsKind = 2
)

// RequestFullUpdate flag bits.
const (
	RequestFlagAllSegments uint8 = 1 << 0
)

// Sanity bounds enforced on decode so a corrupt or hostile payload can
// never allocate an unbounded points slice or an overflowed experience
// value.
const (
	MaxTotalSegments = 60000
	MaxExperience    = 5_000_000
)

// Point is a 2D world-space coordinate, wire-encoded as two float32s.
type Point struct {
	X, Y float32
}

// Color is four 8-bit channels, RGBA.
type Color struct {
	R, G, B, A uint8
}

var (
	ErrTooShort          = errors.New("proto: packet shorter than header")
	ErrVersionMismatch   = errors.New("proto: protocol version mismatch")
	ErrSizeOutOfBounds   = errors.New("proto: payload size out of bounds")
	ErrChecksumMismatch  = errors.New("proto: checksum mismatch")
	ErrUnknownType       = errors.New("proto: unknown message type")
	ErrUnknownEntityType = errors.New("proto: unknown entity type")
	ErrSanityBound       = errors.New("proto: sanity bound violation")
	ErrTruncated         = errors.New("proto: payload truncated mid-entry")
)
