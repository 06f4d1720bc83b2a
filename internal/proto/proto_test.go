package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	datagram := Frame(MsgPartialUpdate, 42, payload)

	h, rest, err := ParseHeader(datagram)
	require.NoError(t, err)
	assert.Equal(t, MsgPartialUpdate, h.Type)
	assert.Equal(t, ProtocolVersion, h.Version)
	assert.EqualValues(t, 42, h.Seq)
	assert.Equal(t, payload, rest)
}

func TestParseHeaderTooShort(t *testing.T) {
	_, _, err := ParseHeader([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrTooShort)
}

func TestParseHeaderVersionMismatch(t *testing.T) {
	datagram := Frame(MsgPartialUpdate, 1, nil)
	datagram[2] = 0xFF
	datagram[3] = 0xFF
	_, _, err := ParseHeader(datagram)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestParseHeaderSizeOutOfBounds(t *testing.T) {
	datagram := Frame(MsgPartialUpdate, 1, []byte{1, 2, 3})
	truncated := datagram[:len(datagram)-1]
	_, _, err := ParseHeader(truncated)
	assert.ErrorIs(t, err, ErrSizeOutOfBounds)
}

func TestParseHeaderChecksumMismatch(t *testing.T) {
	datagram := Frame(MsgPartialUpdate, 1, []byte{1, 2, 3})
	datagram[len(datagram)-1] ^= 0xFF
	_, _, err := ParseHeader(datagram)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFullUpdateRoundTrip(t *testing.T) {
	snake := SnakeState{
		HeadX: 1.5, HeadY: -2.5,
		Experience:    120,
		Kind:          PointsFullSegments,
		TotalSegments: 3,
		Points:        []Point{{X: 1.5, Y: -2.5}, {X: 1.0, Y: -2.0}, {X: 0.5, Y: -1.5}},
	}
	food := FoodState{X: 10, Y: 20, Power: 3, Color: Color{R: 255, G: 0, B: 0, A: 255}}

	fu := FullUpdate{
		Header: FullUpdateHeader{PlayerEntityID: 5},
		Entries: []Entry{
			{Header: EntityEntryHeader{Type: EntitySnake, Flags: FlagNew, EntityID: 5}, Snake: &snake},
			{Header: EntityEntryHeader{Type: EntityFood, Flags: FlagNew, EntityID: 10}, Food: &food},
		},
	}

	datagram := EncodeFullUpdate(1, fu)
	h, payload, err := ParseHeader(datagram)
	require.NoError(t, err)
	assert.Equal(t, MsgFullUpdate, h.Type)

	decoded, err := DecodeFullUpdate(payload)
	require.NoError(t, err)
	assert.EqualValues(t, 5, decoded.Header.PlayerEntityID)
	require.Len(t, decoded.Entries, 2)
	assert.Equal(t, snake, *decoded.Entries[0].Snake)
	assert.Equal(t, food, *decoded.Entries[1].Food)
}

func TestPartialUpdateRemoveOnlyHasNoBody(t *testing.T) {
	pu := PartialUpdate{
		Entries: []Entry{
			{Header: EntityEntryHeader{Type: EntityFood, Flags: FlagRemove, EntityID: 42}},
		},
	}
	datagram := EncodePartialUpdate(7, pu)
	_, payload, err := ParseHeader(datagram)
	require.NoError(t, err)

	decoded, err := DecodePartialUpdate(payload)
	require.NoError(t, err)
	require.Len(t, decoded.Entries, 1)
	assert.True(t, decoded.Entries[0].Header.IsRemove())
	assert.Nil(t, decoded.Entries[0].Food)
}

func TestSnakeSnapshotRoundTrip(t *testing.T) {
	state := SnakeState{
		HeadX: 0, HeadY: 0,
		Experience:    50,
		Kind:          PointsFullSegments,
		TotalSegments: 2,
		Points:        []Point{{X: 0, Y: 0}, {X: 1, Y: 1}},
	}
	datagram := EncodeSnakeSnapshot(9, 5, state)
	h, payload, err := ParseHeader(datagram)
	require.NoError(t, err)
	assert.Equal(t, MsgSnakeSnapshot, h.Type)

	decoded, err := DecodeSnakeSnapshot(payload)
	require.NoError(t, err)
	assert.EqualValues(t, 5, decoded.Entry.Header.EntityID)
	assert.Equal(t, state, *decoded.Entry.Snake)
}

func TestDecodeSnakeStateSanityBounds(t *testing.T) {
	w := NewByteWriter()
	w.WriteF32(0)
	w.WriteF32(0)
	w.WriteU32(0)
	w.WriteU8(uint8(PointsFullSegments))
	w.WriteU16(0)
	w.WriteU16(MaxTotalSegments + 1) // exceeds MaxTotalSegments
	_, err := DecodeSnakeState(NewByteReader(w.Bytes()))
	assert.ErrorIs(t, err, ErrSanityBound)
}

func TestDecodeSnakeStateExperienceBound(t *testing.T) {
	w := NewByteWriter()
	w.WriteF32(0)
	w.WriteF32(0)
	w.WriteU32(MaxExperience + 1)
	w.WriteU8(uint8(PointsFullSegments))
	w.WriteU16(0)
	w.WriteU16(1)
	_, err := DecodeSnakeState(NewByteReader(w.Bytes()))
	assert.ErrorIs(t, err, ErrSanityBound)
}

func TestClientInputPayloadRoundTrip(t *testing.T) {
	p := ClientInputPayload{DestX: 12.5, DestY: -4, ClientFrame: 99}
	decoded, err := DecodeClientInputPayload(p.Encode())
	require.NoError(t, err)
	assert.Equal(t, p, decoded)
}

func TestRequestFullUpdatePayloadAllSegmentsFlag(t *testing.T) {
	p := RequestFullUpdatePayload{Flags: RequestFlagAllSegments}
	decoded, err := DecodeRequestFullUpdatePayload(p.Encode())
	require.NoError(t, err)
	assert.True(t, decoded.AllSegments())
}

func TestMessageTypeKnown(t *testing.T) {
	assert.True(t, MsgFullUpdate.Known())
	assert.False(t, MessageType(999).Known())
}
