package marshal

import (
	"math"
	"strconv"
)

// int32Mapper is INT: a 4-byte little-endian signed value (spec §4.3).
type int32Mapper struct {
	base
	Value int32
}

func (m *int32Mapper) parse(r *Reader) error {
	v, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}
	m.Value = v
	m.size = 5
	return nil
}

// int64Mapper is INT64, obsolete: an 8-byte little-endian signed value.
type int64Mapper struct {
	base
	Value int64
}

func (m *int64Mapper) parse(r *Reader) error {
	v, err := r.buf.readInt64(m.offset + 1)
	if err != nil {
		return err
	}
	m.Value = v
	m.size = 9
	return nil
}

// longMapper is LONG: an arbitrary-precision integer encoded as a
// signed 4-byte digit count followed by that many 2-byte little-endian
// digits (spec §4.3, §9). The source's alternate heuristic — treating
// the length field's third byte as a sign nibble — does not match the
// documented CPython marshal convention and is not replicated (spec §9
// Open Question); it is only recorded as an anomaly flag for review.
type longMapper struct {
	base
	Negative  bool
	DigitCount int32 // magnitude digit count, always >= 0
	// NonStandardEncoding is set when the input also happens to match
	// the source's undocumented 0xF0-nibble heuristic, so a reviewer can
	// see the input was produced by a tool that used the non-standard
	// convention even though this walker did not follow it.
	NonStandardEncoding bool
}

func (m *longMapper) parse(r *Reader) error {
	length, err := r.buf.readInt32(m.offset + 1)
	if err != nil {
		return err
	}

	if lenBytes, lerr := r.buf.sliceAt(m.offset+1, 4); lerr == nil {
		if lenBytes[2]&0xF0 == 0xF0 {
			m.NonStandardEncoding = true
		}
	}

	digitCount := length
	if digitCount < 0 {
		m.Negative = true
		digitCount = -digitCount
	}
	m.DigitCount = digitCount

	magnitudeBytes := int(digitCount) * 2
	if magnitudeBytes < 0 {
		return newError(KindMalformedLong, m.offset, errOutOfBounds)
	}
	if _, err := r.buf.sliceAt(m.offset+5, magnitudeBytes); err != nil {
		return newError(KindMalformedLong, m.offset, err)
	}

	m.size = 1 + 4 + magnitudeBytes
	return nil
}

// textFloatMapper is FLOAT: a length byte followed by that many bytes
// of ASCII text, parsed as an IEEE-754 double (spec §4.3).
type textFloatMapper struct {
	base
	Value float64
	// Unsupported is set and Value left at zero when the text could not
	// be parsed as a float — spec §7 treats this as "warn and skip",
	// not fatal.
	Unsupported bool
}

func (m *textFloatMapper) parse(r *Reader) error {
	value, unsupported, consumed, err := parseTextFloatField(r.buf, m.offset+1)
	if err != nil {
		return err
	}
	m.Value = value
	m.Unsupported = unsupported
	m.size = 1 + consumed
	return nil
}

// parseTextFloatField decodes a raw length-prefixed ASCII float field
// at offset with no leading type tag: used directly for the top-level
// FLOAT mapper (after its tag byte) and for both halves of a COMPLEX
// mapper, which has no per-component tag of its own.
func parseTextFloatField(buf *Buffers, offset int) (value float64, unsupported bool, consumed int, err error) {
	n, err := buf.byteAt(offset)
	if err != nil {
		return 0, false, 0, err
	}
	text, err := buf.sliceAt(offset+1, int(n))
	if err != nil {
		return 0, false, 0, err
	}
	if v, perr := strconv.ParseFloat(string(text), 64); perr == nil {
		value = v
	} else {
		unsupported = true
	}
	return value, unsupported, 1 + int(n), nil
}

// binaryFloatMapper is BINARY_FLOAT: 8 raw IEEE-754 little-endian bytes.
type binaryFloatMapper struct {
	base
	Value float64
}

func (m *binaryFloatMapper) parse(r *Reader) error {
	bits, err := r.buf.readUint64(m.offset + 1)
	if err != nil {
		return err
	}
	m.Value = math.Float64frombits(bits)
	m.size = 9
	return nil
}

// textComplexMapper is COMPLEX: two back-to-back text-float fields,
// neither carrying its own type tag (spec §4.3).
type textComplexMapper struct {
	base
	Real, Imag         float64
	RealUnsupported    bool
	ImagUnsupported    bool
}

func (m *textComplexMapper) parse(r *Reader) error {
	real, realUnsupported, realConsumed, err := parseTextFloatField(r.buf, m.offset+1)
	if err != nil {
		return err
	}
	imag, imagUnsupported, imagConsumed, err := parseTextFloatField(r.buf, m.offset+1+realConsumed)
	if err != nil {
		return err
	}
	m.Real, m.RealUnsupported = real, realUnsupported
	m.Imag, m.ImagUnsupported = imag, imagUnsupported
	m.size = 1 + realConsumed + imagConsumed
	return nil
}

// binaryComplexMapper is BINARY_COMPLEX: two 8-byte IEEE-754 doubles.
type binaryComplexMapper struct {
	base
	Real, Imag float64
}

func (m *binaryComplexMapper) parse(r *Reader) error {
	realBits, err := r.buf.readUint64(m.offset + 1)
	if err != nil {
		return err
	}
	imagBits, err := r.buf.readUint64(m.offset + 9)
	if err != nil {
		return err
	}
	m.Real = math.Float64frombits(realBits)
	m.Imag = math.Float64frombits(imagBits)
	m.size = 17
	return nil
}
