package marshal

import "encoding/binary"

// haveArgument is CPython's HAVE_ARGUMENT boundary. The pre-wordcode
// stride rule (defaultStride) treats an opcode strictly above this value
// as carrying a 2-byte operand, making the instruction 3 bytes wide
// instead of 1; opcode 90 itself gets a stride of 1 (spec §9 Open
// Question).
const haveArgument = 90

// wordcodeVersion is the CPython version (encoded major*100+minor) at
// and above which every instruction is exactly 2 bytes (spec §4.4,
// GLOSSARY "Wordcode").
const wordcodeVersion = 306

// payloadRange returns the byte range holding a code object's raw
// instruction stream, given the mapper for its `code` child (a STRING
// or SHORT_ASCII-family mapper). The payload begins 5 bytes after a
// 4-byte-length string's tag, or 2 bytes after a short-ASCII string's
// tag; both variants report their own total Size(), from which the
// payload length falls out directly.
func payloadRange(m Mapper) (start, length int, ok bool) {
	switch m.Tag().Code() {
	case TagString, TagUnicode, TagInterned, TagASCII, TagASCIIInterned:
		return m.Offset() + 5, m.Size() - 5, true
	case TagShortASCII, TagShortASCIIInterned:
		return m.Offset() + 2, m.Size() - 2, true
	default:
		return 0, 0, false
	}
}

// rewriteOpcodes is the Opcode Rewriter (spec §4.4): a tolerant,
// forward-only sweep over a code object's instruction bytes that
// applies the adapter's opcode remap table. It never interprets
// operands and never backtracks — an obfuscated or misaligned stream
// simply gets substituted byte-for-byte wherever a remap entry matches.
func (r *Reader) rewriteOpcodes(code Mapper) error {
	if code == nil {
		return nil
	}
	start, length, ok := payloadRange(code)
	if !ok || length <= 0 {
		return nil
	}

	opSize := r.rules.OpcodeSize()
	if opSize <= 0 {
		opSize = 1
	}
	remap := r.rules.OpcodeRemap()

	end := start + length
	for cursor := start; cursor < end; {
		opBytes, err := r.buf.sliceAt(cursor, opSize)
		if err != nil {
			break // tolerate a stream that runs off the end mid-instruction
		}
		opValue := leInt(opBytes)

		stride := defaultStride(opValue, r.version)
		if entry, found := remap[string(opBytes)]; found {
			if len(entry.To) > 0 {
				if werr := r.buf.writeOutput(cursor, entry.To); werr != nil {
					return werr
				}
			}
			if entry.Stride != nil {
				stride = *entry.Stride
			}
		}

		if stride <= 0 {
			stride = 1 // never spin in place on a degenerate remap entry
		}
		cursor += stride
	}
	return nil
}

// defaultStride is the stride rule spec §4.4 applies when no remap
// entry (or a remap entry with no explicit stride override) governs an
// instruction: 2 for wordcode CPython, else 3 for a pre-wordcode
// opcode above haveArgument, else 1.
func defaultStride(opValue int, version int) int {
	if version >= wordcodeVersion {
		return 2
	}
	if opValue > haveArgument {
		return 3
	}
	return 1
}

// leInt decodes opBytes as a little-endian integer, matching spec
// §4.4's op_i = little_endian_int(op_bytes).
func leInt(opBytes []byte) int {
	switch len(opBytes) {
	case 1:
		return int(opBytes[0])
	case 2:
		return int(binary.LittleEndian.Uint16(opBytes))
	case 4:
		return int(binary.LittleEndian.Uint32(opBytes))
	default:
		var v int
		for i := len(opBytes) - 1; i >= 0; i-- {
			v = v<<8 | int(opBytes[i])
		}
		return v
	}
}
