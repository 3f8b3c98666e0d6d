// Package rules implements the declarative, config-table realization
// of the rules plug-in architecture spec.md §9 calls for: a YAML file
// describing compatibility, type-code substitutions, and opcode
// substitutions, compiled into a marshal.Adapter. It deliberately does
// not execute any user-supplied code — see spec.md §9 ("The core never
// executes arbitrary code to function").
package rules

import (
	"depyc/marshal"
	"depyc/internal/pyc"
)

// remapEntry is the YAML shape of one substitution row, shared by both
// the type-code and opcode remap tables (spec.md §4.1's adapter
// contract reuses the same {t, i} shape for both).
type remapEntry struct {
	To     string `yaml:"to"`
	Stride *int   `yaml:"stride"`
}

// fileFormat is the raw, YAML-tagged shape of a rules file on disk.
type fileFormat struct {
	CompatibleMagics []string              `yaml:"compatible_magics"`
	OpcodeSize       int                   `yaml:"opcode_size"`
	TypeCodeMap      map[string]string     `yaml:"type_code_map"`
	TypeCodeRemap    map[string]remapEntry `yaml:"type_code_remap"`
	OpcodeMap        map[string]string     `yaml:"opcode_map"`
	OpcodeRemap      map[string]remapEntry `yaml:"opcode_remap"`
	RepairMagic      string                `yaml:"repair_magic"`
}

// Set is a compiled rules file: a declarative marshal.Adapter with no
// callback surface at all. Zero value is the identity rule set (spec.md
// Testable Property 5): every lookup table is empty and every hook is
// a no-op via the embedded marshal.BaseAdapter.
type Set struct {
	marshal.BaseAdapter

	compatibleMagics map[[4]byte]bool // empty means "accept anything pyc-shaped"
	opcodeSize       int
	typeCodeMap      map[string]byte
	typeCodeRemap    map[byte]marshal.Remap
	opcodeMap        map[string]byte
	opcodeRemap      map[string]marshal.Remap
	repairMagic      []byte
}

// Identity returns the rules set with every table empty: the walker
// applies no substitutions and IsCompatible accepts any input of at
// least 8 bytes.
func Identity() *Set {
	return &Set{opcodeSize: 1}
}

func (s *Set) IsCompatible(input []byte) bool {
	if len(s.compatibleMagics) == 0 {
		return len(input) >= 8
	}
	if len(input) < 4 {
		return false
	}
	var magic [4]byte
	copy(magic[:], input[:4])
	return s.compatibleMagics[magic]
}

func (s *Set) HeaderParse(input, output []byte) (marshal.HeaderDescriptor, error) {
	h, err := pyc.Parse(input)
	if err != nil {
		return marshal.HeaderDescriptor{}, err
	}
	if len(s.repairMagic) == 4 {
		copy(output[:4], s.repairMagic)
	}
	return marshal.HeaderDescriptor{
		Magic:          h.Magic,
		HeaderSize:     h.HeaderSize,
		Version:        h.Version,
		Flags:          h.Flags,
		HasSipHash:     h.HasHash,
		SipHash:        h.SipHash,
		Timestamp:      h.Timestamp,
		MarshalledSize: h.MarshalledSize,
	}, nil
}

func (s *Set) TrailerFinalize(input, _ []byte) int { return len(input) }

func (s *Set) OpcodeSize() int {
	if s.opcodeSize <= 0 {
		return 1
	}
	return s.opcodeSize
}

func (s *Set) OpcodeMap() map[string]byte {
	if len(s.opcodeMap) == 0 {
		return marshal.BaseAdapter{}.OpcodeMap()
	}
	return s.opcodeMap
}

func (s *Set) OpcodeRemap() map[string]marshal.Remap { return s.opcodeRemap }

func (s *Set) TypeCodeMap() map[string]byte { return s.typeCodeMap }

func (s *Set) TypeCodeRemap() map[byte]marshal.Remap { return s.typeCodeRemap }
