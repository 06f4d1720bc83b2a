package proto

import (
	"encoding/binary"
	"math"
)

// ByteWriter accumulates a payload body: one append-only method per
// scalar width, little-endian throughout.
type ByteWriter struct {
	buf []byte
}

func NewByteWriter() *ByteWriter {
	return &ByteWriter{buf: make([]byte, 0, 64)}
}

func (w *ByteWriter) Bytes() []byte { return w.buf }

func (w *ByteWriter) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *ByteWriter) WriteU16(v uint16) {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *ByteWriter) WriteU32(v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *ByteWriter) WriteF32(v float32) {
	w.WriteU32(math.Float32bits(v))
}

func (w *ByteWriter) WritePoint(p Point) {
	w.WriteF32(p.X)
	w.WriteF32(p.Y)
}

func (w *ByteWriter) WriteColor(c Color) {
	w.WriteU8(c.R)
	w.WriteU8(c.G)
	w.WriteU8(c.B)
	w.WriteU8(c.A)
}

// ByteReader walks a payload body, returning ErrTruncated as soon as a
// read would run past the end rather than panicking mid-dispatch.
type ByteReader struct {
	buf []byte
	pos int
}

func NewByteReader(buf []byte) *ByteReader {
	return &ByteReader{buf: buf}
}

// Remaining reports whether unread bytes remain — used by dispatch loops
// that read a variable number of entity entries until the payload is
// exhausted.
func (r *ByteReader) Remaining() bool { return r.pos < len(r.buf) }

func (r *ByteReader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return ErrTruncated
	}
	return nil
}

func (r *ByteReader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

func (r *ByteReader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *ByteReader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *ByteReader) ReadF32() (float32, error) {
	bits, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

func (r *ByteReader) ReadPoint() (Point, error) {
	x, err := r.ReadF32()
	if err != nil {
		return Point{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func (r *ByteReader) ReadColor() (Color, error) {
	rr, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	g, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	b, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	a, err := r.ReadU8()
	if err != nil {
		return Color{}, err
	}
	return Color{R: rr, G: g, B: b, A: a}, nil
}
