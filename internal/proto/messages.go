package proto

// FullUpdateHeader precedes the entity entries in a FullUpdate message
// and tells the recipient which snake it owns.
type FullUpdateHeader struct {
	PlayerEntityID uint32
}

func (h FullUpdateHeader) Encode(w *ByteWriter) {
	w.WriteU32(h.PlayerEntityID)
}

func DecodeFullUpdateHeader(r *ByteReader) (FullUpdateHeader, error) {
	id, err := r.ReadU32()
	if err != nil {
		return FullUpdateHeader{}, err
	}
	return FullUpdateHeader{PlayerEntityID: id}, nil
}

// EntityEntryHeader precedes every entity entry's type-specific body.
type EntityEntryHeader struct {
	Type     EntityType
	Flags    uint8
	EntityID uint32
}

func (h EntityEntryHeader) IsNew() bool    { return h.Flags&FlagNew != 0 }
func (h EntityEntryHeader) IsRemove() bool { return h.Flags&FlagRemove != 0 }

func (h EntityEntryHeader) Encode(w *ByteWriter) {
	w.WriteU8(uint8(h.Type))
	w.WriteU8(h.Flags)
	w.WriteU32(h.EntityID)
}

func DecodeEntityEntryHeader(r *ByteReader) (EntityEntryHeader, error) {
	t, err := r.ReadU8()
	if err != nil {
		return EntityEntryHeader{}, err
	}
	flags, err := r.ReadU8()
	if err != nil {
		return EntityEntryHeader{}, err
	}
	id, err := r.ReadU32()
	if err != nil {
		return EntityEntryHeader{}, err
	}
	return EntityEntryHeader{Type: EntityType(t), Flags: flags, EntityID: id}, nil
}

// SnakeState is the per-entry snake body: a head position, experience,
// and a variable-length run of points whose meaning depends on Kind.
type SnakeState struct {
	HeadX, HeadY  float32
	Experience    uint32
	Kind          PointsKind
	TotalSegments uint16
	Points        []Point
}

func (s SnakeState) Encode(w *ByteWriter) {
	w.WriteF32(s.HeadX)
	w.WriteF32(s.HeadY)
	w.WriteU32(s.Experience)
	w.WriteU8(uint8(s.Kind))
	w.WriteU16(uint16(len(s.Points)))
	w.WriteU16(s.TotalSegments)
	for _, p := range s.Points {
		w.WritePoint(p)
	}
}

// DecodeSnakeState reads a SnakeState body and enforces its sanity
// bounds: total_segments in (0, 60000], points_count <= total_segments,
// experience <= 5,000,000.
func DecodeSnakeState(r *ByteReader) (SnakeState, error) {
	headX, err := r.ReadF32()
	if err != nil {
		return SnakeState{}, err
	}
	headY, err := r.ReadF32()
	if err != nil {
		return SnakeState{}, err
	}
	exp, err := r.ReadU32()
	if err != nil {
		return SnakeState{}, err
	}
	kindByte, err := r.ReadU8()
	if err != nil {
		return SnakeState{}, err
	}
	pointsCount, err := r.ReadU16()
	if err != nil {
		return SnakeState{}, err
	}
	totalSegments, err := r.ReadU16()
	if err != nil {
		return SnakeState{}, err
	}
	if exp > MaxExperience {
		return SnakeState{}, ErrSanityBound
	}
	if totalSegments == 0 || int(totalSegments) > MaxTotalSegments {
		return SnakeState{}, ErrSanityBound
	}
	if pointsCount > totalSegments {
		return SnakeState{}, ErrSanityBound
	}
	kind := PointsKind(kindByte)
	if kind != PointsFullSegments && kind != PointsValidationSamples {
		return SnakeState{}, ErrSanityBound
	}
	points := make([]Point, pointsCount)
	for i := range points {
		p, err := r.ReadPoint()
		if err != nil {
			return SnakeState{}, err
		}
		points[i] = p
	}
	return SnakeState{
		HeadX: headX, HeadY: headY,
		Experience:    exp,
		Kind:          kind,
		TotalSegments: totalSegments,
		Points:        points,
	}, nil
}

// FoodState is the per-entry food body: immutable position, color and
// power, with no point array.
type FoodState struct {
	X, Y  float32
	Power uint8
	Color Color
}

func (f FoodState) Encode(w *ByteWriter) {
	w.WriteF32(f.X)
	w.WriteF32(f.Y)
	w.WriteU8(f.Power)
	w.WriteColor(f.Color)
}

func DecodeFoodState(r *ByteReader) (FoodState, error) {
	x, err := r.ReadF32()
	if err != nil {
		return FoodState{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return FoodState{}, err
	}
	power, err := r.ReadU8()
	if err != nil {
		return FoodState{}, err
	}
	color, err := r.ReadColor()
	if err != nil {
		return FoodState{}, err
	}
	return FoodState{X: x, Y: y, Power: power, Color: color}, nil
}

// ClientInputPayload is the ClientInput message body (client→server).
type ClientInputPayload struct {
	DestX, DestY float32
	ClientFrame  uint32
}

func (p ClientInputPayload) Encode() []byte {
	w := NewByteWriter()
	w.WriteF32(p.DestX)
	w.WriteF32(p.DestY)
	w.WriteU32(p.ClientFrame)
	return w.Bytes()
}

func DecodeClientInputPayload(buf []byte) (ClientInputPayload, error) {
	r := NewByteReader(buf)
	x, err := r.ReadF32()
	if err != nil {
		return ClientInputPayload{}, err
	}
	y, err := r.ReadF32()
	if err != nil {
		return ClientInputPayload{}, err
	}
	frame, err := r.ReadU32()
	if err != nil {
		return ClientInputPayload{}, err
	}
	return ClientInputPayload{DestX: x, DestY: y, ClientFrame: frame}, nil
}

// RequestFullUpdatePayload is the RequestFullUpdate message body.
type RequestFullUpdatePayload struct {
	Flags uint8
}

func (p RequestFullUpdatePayload) AllSegments() bool {
	return p.Flags&RequestFlagAllSegments != 0
}

func (p RequestFullUpdatePayload) Encode() []byte {
	w := NewByteWriter()
	w.WriteU8(p.Flags)
	return w.Bytes()
}

func DecodeRequestFullUpdatePayload(buf []byte) (RequestFullUpdatePayload, error) {
	r := NewByteReader(buf)
	flags, err := r.ReadU8()
	if err != nil {
		return RequestFullUpdatePayload{}, err
	}
	return RequestFullUpdatePayload{Flags: flags}, nil
}

// RequestSnakeSnapshotPayload is the RequestSnakeSnapshot message body.
type RequestSnakeSnapshotPayload struct {
	EntityID uint32
}

func (p RequestSnakeSnapshotPayload) Encode() []byte {
	w := NewByteWriter()
	w.WriteU32(p.EntityID)
	return w.Bytes()
}

func DecodeRequestSnakeSnapshotPayload(buf []byte) (RequestSnakeSnapshotPayload, error) {
	r := NewByteReader(buf)
	id, err := r.ReadU32()
	if err != nil {
		return RequestSnakeSnapshotPayload{}, err
	}
	return RequestSnakeSnapshotPayload{EntityID: id}, nil
}
