package marshal

// tupleMapper covers TUPLE: a 4-byte little-endian element count
// followed by that many child mappers read sequentially (spec §4.3).
type tupleMapper struct {
	base
	Items []Mapper
}

func (m *tupleMapper) parse(r *Reader) error {
	count, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	return parseSequenceInto(r, m.offset, &m.base, &m.Items, 5, int(count))
}

// smallTupleMapper covers SMALL_TUPLE: a single-byte element count
// followed by that many children.
type smallTupleMapper struct {
	base
	Items []Mapper
}

func (m *smallTupleMapper) parse(r *Reader) error {
	count, err := r.buf.byteAt(m.offset + 1)
	if err != nil {
		return err
	}
	return parseSequenceInto(r, m.offset, &m.base, &m.Items, 2, int(count))
}

// listMapper covers LIST: a 4-byte count followed by children.
type listMapper struct {
	base
	Items []Mapper
}

func (m *listMapper) parse(r *Reader) error {
	count, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	return parseSequenceInto(r, m.offset, &m.base, &m.Items, 5, int(count))
}

// setMapper covers SET and FROZENSET: laid out identically to LIST.
type setMapper struct {
	base
	Items []Mapper
}

func (m *setMapper) parse(r *Reader) error {
	count, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	return parseSequenceInto(r, m.offset, &m.base, &m.Items, 5, int(count))
}

// parseSequenceInto is the shared body for TUPLE/SMALL_TUPLE/LIST/SET/
// FROZENSET: all five are "fixed-width header, then N children read
// sequentially". It walks count children starting right after a
// headerWidth-byte header at offset, appending them to *items and
// setting b.size to the total consumed length.
func parseSequenceInto(r *Reader, offset int, b *base, items *[]Mapper, headerWidth, count int) error {
	if count < 0 {
		return newError(KindUnknownTypeCode, offset, errOutOfBounds)
	}
	cursor := offset + headerWidth
	*items = make([]Mapper, 0, count)
	for i := 0; i < count; i++ {
		child, consumed, err := r.Read(cursor)
		if err != nil {
			return err
		}
		*items = append(*items, child)
		cursor += consumed
	}
	b.size = cursor - offset
	return nil
}

// dictMapper covers DICT: the only unsized container. Spec §4.3: loop
// reading a key mapper; a NULL key terminates the dict (and is itself
// consumed as part of it); otherwise read a value mapper and record
// the pair.
type dictMapper struct {
	base
	Keys   []Mapper
	Values []Mapper
}

func (m *dictMapper) parse(r *Reader) error {
	cursor := m.offset + 1
	for {
		key, keyConsumed, err := r.Read(cursor)
		if err != nil {
			return err
		}
		cursor += keyConsumed
		if key.Tag().Code() == TagNull {
			break
		}

		value, valueConsumed, err := r.Read(cursor)
		if err != nil {
			return err
		}
		cursor += valueConsumed

		m.Keys = append(m.Keys, key)
		m.Values = append(m.Values, value)
	}
	m.size = cursor - m.offset
	return nil
}
