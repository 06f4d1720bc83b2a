package proto

import (
	"encoding/binary"
	"hash/crc32"
)

// Header is the fixed 16-byte framing header preceding every message's
// payload: message type, protocol version, sender sequence, declared
// payload size, and a CRC-32 checksum over the payload.
type Header struct {
	Type         MessageType
	Version      uint16
	Seq          uint32
	PayloadBytes uint32
	Checksum     uint32
}

// EncodeHeader writes the header to a fresh 16-byte slice.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint16(buf[0:2], uint16(h.Type))
	binary.LittleEndian.PutUint16(buf[2:4], h.Version)
	binary.LittleEndian.PutUint32(buf[4:8], h.Seq)
	binary.LittleEndian.PutUint32(buf[8:12], h.PayloadBytes)
	binary.LittleEndian.PutUint32(buf[12:16], h.Checksum)
	return buf
}

// ParseHeader validates a received datagram in order: minimum length,
// protocol version, declared payload size against what actually
// arrived, and finally the payload checksum.
func ParseHeader(datagram []byte) (Header, []byte, error) {
	if len(datagram) < HeaderSize {
		return Header{}, nil, ErrTooShort
	}
	h := Header{
		Type:         MessageType(binary.LittleEndian.Uint16(datagram[0:2])),
		Version:      binary.LittleEndian.Uint16(datagram[2:4]),
		Seq:          binary.LittleEndian.Uint32(datagram[4:8]),
		PayloadBytes: binary.LittleEndian.Uint32(datagram[8:12]),
		Checksum:     binary.LittleEndian.Uint32(datagram[12:16]),
	}
	if h.Version != ProtocolVersion {
		return Header{}, nil, ErrVersionMismatch
	}
	rest := datagram[HeaderSize:]
	if uint64(h.PayloadBytes) != uint64(len(rest)) {
		return Header{}, nil, ErrSizeOutOfBounds
	}
	if crc32.ChecksumIEEE(rest) != h.Checksum {
		return Header{}, nil, ErrChecksumMismatch
	}
	return h, rest, nil
}

// Frame encodes a complete datagram: header followed by payload, with
// the checksum computed over payload.
func Frame(msgType MessageType, seq uint32, payload []byte) []byte {
	h := Header{
		Type:         msgType,
		Version:      ProtocolVersion,
		Seq:          seq,
		PayloadBytes: uint32(len(payload)),
		Checksum:     crc32.ChecksumIEEE(payload),
	}
	out := make([]byte, 0, HeaderSize+len(payload))
	out = append(out, EncodeHeader(h)...)
	out = append(out, payload...)
	return out
}
