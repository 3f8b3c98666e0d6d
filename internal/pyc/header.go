// Package pyc decodes the CPython .pyc container header (spec.md §6):
// magic, flags, and either a hash signature or a timestamp+source-size
// pair, immediately followed by the marshal payload.
package pyc

import (
	"encoding/binary"
	"fmt"
)

// magicToVersion maps a .pyc magic number (the first two bytes of the
// 4-byte file magic, read little-endian) to the CPython version it
// identifies, encoded as major*100+minor. Only a
// representative set of magics is carried — enough to exercise every
// code-object field-table tier in marshal/code.go — rather than the
// full historical list CPython ships, since the walker only needs the
// major/minor version to pick the right layout.
var magicToVersion = map[uint16]int{
	20121: 105, // 1.5
	50823: 202, // 2.2
	62011: 203, // 2.3
	62061: 204, // 2.4
	62131: 205, // 2.5
	62161: 206, // 2.6
	62211: 207, // 2.7
	3131:  300, // 3.0
	3141:  301, // 3.1
	3180:  302, // 3.2
	3230:  303, // 3.3
	3310:  304, // 3.4
	3350:  305, // 3.5
	3379:  306, // 3.6
	3394:  307, // 3.7
	3413:  308, // 3.8
	3425:  309, // 3.9
	3439:  310, // 3.10
	3495:  311, // 3.11
	3531:  312, // 3.12
	3559:  313, // 3.13
}

// Header is the parsed .pyc container header (spec.md §3 "Header
// Descriptor"), before any rules-driven repair.
type Header struct {
	Magic      [4]byte
	HeaderSize int
	Version    int

	Flags uint32

	HasHash bool
	SipHash [8]byte

	Timestamp      uint32
	MarshalledSize uint32
}

// Parse decodes the header at the start of input. Versions below 3.7
// have no flags word and are all read as a 12-byte header (magic +
// timestamp + source size), so the marshal payload begins 12 bytes in;
// the shorter magic + timestamp header is not distinguished. Versions
// >= 3.7 add a 4-byte flags word and, when flags&1 is set, an 8-byte
// SipHash in place of the timestamp+size pair (spec.md §6).
func Parse(input []byte) (Header, error) {
	if len(input) < 8 {
		return Header{}, fmt.Errorf("pyc: header too short (%d bytes)", len(input))
	}

	var h Header
	copy(h.Magic[:], input[:4])

	magicWord := binary.LittleEndian.Uint16(input[:2])
	version, known := magicToVersion[magicWord]
	if !known {
		// Unknown magic: fall back to the newest layout shape so the
		// walker still makes forward progress; IsCompatible (in
		// internal/rules) is what actually gates unsupported inputs.
		version = 313
	}
	h.Version = version

	if version < 307 {
		if len(input) < 12 {
			return Header{}, fmt.Errorf("pyc: truncated legacy header")
		}
		h.Timestamp = binary.LittleEndian.Uint32(input[4:8])
		h.MarshalledSize = binary.LittleEndian.Uint32(input[8:12])
		h.HeaderSize = 12
		return h, nil
	}

	if len(input) < 16 {
		return Header{}, fmt.Errorf("pyc: truncated header")
	}
	h.Flags = binary.LittleEndian.Uint32(input[4:8])
	if h.Flags&1 != 0 {
		h.HasHash = true
		copy(h.SipHash[:], input[8:16])
	} else {
		h.Timestamp = binary.LittleEndian.Uint32(input[8:12])
		h.MarshalledSize = binary.LittleEndian.Uint32(input[12:16])
	}
	h.HeaderSize = 16
	return h, nil
}
