package marshal

// stringMapper covers STRING, UNICODE, INTERNED, ASCII, and
// ASCII_INTERNED: a 4-byte little-endian length followed by that many
// payload bytes (spec §4.3). Interned variants are appended to the
// intern table after their body is parsed (post-order, spec §5).
type stringMapper struct {
	base
	Value []byte
}

func (m *stringMapper) parse(r *Reader) error {
	length, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	if length < 0 {
		return newError(KindUnknownTypeCode, m.offset, errOutOfBounds)
	}
	payload, err := r.buf.sliceAt(m.offset+5, int(length))
	if err != nil {
		return err
	}
	m.Value = payload
	m.size = 1 + 4 + int(length)

	if isInterned(m.tag.Code()) {
		r.intern.append(m)
	}
	return nil
}

// shortASCIIMapper covers SHORT_ASCII and SHORT_ASCII_INTERNED: a
// single-byte length (0-255) followed by that many payload bytes.
type shortASCIIMapper struct {
	base
	Value []byte
}

func (m *shortASCIIMapper) parse(r *Reader) error {
	length, err := r.buf.byteAt(m.offset + 1)
	if err != nil {
		return err
	}
	payload, err := r.buf.sliceAt(m.offset+2, int(length))
	if err != nil {
		return err
	}
	m.Value = payload
	m.size = 1 + 1 + int(length)

	if isInterned(m.tag.Code()) {
		r.intern.append(m)
	}
	return nil
}

// stringRefMapper is STRINGREF: a 4-byte little-endian intern index.
// Its semantic value is the intern-table entry at that index; it
// consumes 5 bytes and never descends (spec §4.3).
type stringRefMapper struct {
	base
	Index  int
	Target Mapper
}

func (m *stringRefMapper) parse(r *Reader) error {
	idx, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	m.Index = int(idx)
	target, ok := r.intern.At(m.Index)
	if !ok {
		return newError(KindUnknownTypeCode, m.offset, errOutOfBounds)
	}
	m.Target = target
	m.size = 5
	return nil
}
