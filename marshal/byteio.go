package marshal

import "encoding/binary"

// Fixed-width little-endian readers against the input buffer. The
// marshal format (unlike glint's varint wire format) uses fixed-width
// integers throughout, but the shape mirrors the teacher's Reader: a
// small set of typed accessors over a byte slice with explicit bounds
// checking instead of panicking on malformed input.

func (b *Buffers) readUint32(offset int) (uint32, error) {
	raw, err := b.sliceAt(offset, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(raw), nil
}

func (b *Buffers) readInt32(offset int) (int32, error) {
	v, err := b.readUint32(offset)
	return int32(v), err
}

func (b *Buffers) readUint16(offset int) (uint16, error) {
	raw, err := b.sliceAt(offset, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw), nil
}

func (b *Buffers) readInt16(offset int) (int16, error) {
	v, err := b.readUint16(offset)
	return int16(v), err
}

func (b *Buffers) readUint64(offset int) (uint64, error) {
	raw, err := b.sliceAt(offset, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(raw), nil
}

func (b *Buffers) readInt64(offset int) (int64, error) {
	v, err := b.readUint64(offset)
	return int64(v), err
}

// readWidth reads a little-endian signed integer of the given byte
// width (1, 2, or 4), used by the version-sensitive code-object field
// table (code.go) where a field's width changes across CPython versions.
func (b *Buffers) readWidth(offset, width int) (int, error) {
	switch width {
	case 1:
		v, err := b.byteAt(offset)
		return int(int8(v)), err
	case 2:
		v, err := b.readInt16(offset)
		return int(v), err
	case 4:
		v, err := b.readInt32(offset)
		return int(v), err
	default:
		return 0, errOutOfBounds
	}
}
