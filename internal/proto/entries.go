package proto

// Entry is one decoded entity entry: its header plus, unless Remove is
// set, a type-specific body. Exactly one of Snake/Food is populated; the
// header's Type field says which.
type Entry struct {
	Header EntityEntryHeader
	Snake  *SnakeState
	Food   *FoodState
}

func (e Entry) Encode(w *ByteWriter) {
	e.Header.Encode(w)
	if e.Header.IsRemove() {
		return
	}
	switch e.Header.Type {
	case EntitySnake:
		e.Snake.Encode(w)
	case EntityFood:
		e.Food.Encode(w)
	}
}

// DecodeEntry reads one EntityEntryHeader and, unless Remove is set, its
// body. Unknown entity types return ErrUnknownEntityType so the caller
// can drop the remainder of the packet rather than misinterpret it.
func DecodeEntry(r *ByteReader) (Entry, error) {
	h, err := DecodeEntityEntryHeader(r)
	if err != nil {
		return Entry{}, err
	}
	if h.IsRemove() {
		return Entry{Header: h}, nil
	}
	switch h.Type {
	case EntitySnake:
		ss, err := DecodeSnakeState(r)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Header: h, Snake: &ss}, nil
	case EntityFood:
		fs, err := DecodeFoodState(r)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Header: h, Food: &fs}, nil
	default:
		return Entry{}, ErrUnknownEntityType
	}
}

// FullUpdate is a fully decoded FullUpdate message: header plus every
// entity entry for the recipient's visible world.
type FullUpdate struct {
	Header  FullUpdateHeader
	Entries []Entry
}

func EncodeFullUpdate(seq uint32, fu FullUpdate) []byte {
	w := NewByteWriter()
	fu.Header.Encode(w)
	for _, e := range fu.Entries {
		e.Encode(w)
	}
	return Frame(MsgFullUpdate, seq, w.Bytes())
}

func DecodeFullUpdate(payload []byte) (FullUpdate, error) {
	r := NewByteReader(payload)
	h, err := DecodeFullUpdateHeader(r)
	if err != nil {
		return FullUpdate{}, err
	}
	var entries []Entry
	for r.Remaining() {
		e, err := DecodeEntry(r)
		if err != nil {
			return FullUpdate{}, err
		}
		entries = append(entries, e)
	}
	return FullUpdate{Header: h, Entries: entries}, nil
}

// PartialUpdate is a fully decoded PartialUpdate message: zero or more
// entity entries, no header.
type PartialUpdate struct {
	Entries []Entry
}

func EncodePartialUpdate(seq uint32, pu PartialUpdate) []byte {
	w := NewByteWriter()
	for _, e := range pu.Entries {
		e.Encode(w)
	}
	return Frame(MsgPartialUpdate, seq, w.Bytes())
}

func DecodePartialUpdate(payload []byte) (PartialUpdate, error) {
	r := NewByteReader(payload)
	var entries []Entry
	for r.Remaining() {
		e, err := DecodeEntry(r)
		if err != nil {
			return PartialUpdate{}, err
		}
		entries = append(entries, e)
	}
	return PartialUpdate{Entries: entries}, nil
}

// SnakeSnapshot is a fully decoded SnakeSnapshot message: exactly one
// snake entity entry carrying full segments, sent out of band as a
// targeted repair answer to a single snake's drift-validation failure.
type SnakeSnapshot struct {
	Entry Entry
}

func EncodeSnakeSnapshot(seq uint32, entityID uint32, state SnakeState) []byte {
	w := NewByteWriter()
	entry := Entry{
		Header: EntityEntryHeader{Type: EntitySnake, Flags: FlagNew, EntityID: entityID},
		Snake:  &state,
	}
	entry.Encode(w)
	return Frame(MsgSnakeSnapshot, seq, w.Bytes())
}

func DecodeSnakeSnapshot(payload []byte) (SnakeSnapshot, error) {
	r := NewByteReader(payload)
	e, err := DecodeEntry(r)
	if err != nil {
		return SnakeSnapshot{}, err
	}
	if e.Snake == nil {
		return SnakeSnapshot{}, ErrSanityBound
	}
	return SnakeSnapshot{Entry: e}, nil
}
