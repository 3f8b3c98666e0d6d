package rules

import (
	"fmt"
	"os"
	"strconv"

	"depyc/marshal"

	"gopkg.in/yaml.v3"
)

// Load reads a rules file from path and compiles it into a Set. A
// missing file is reported as-is (the CLI maps the error to exit code
// 6, spec.md §6); a malformed rules file is a YAML decode error.
func Load(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var ff fileFormat
	if err := yaml.Unmarshal(raw, &ff); err != nil {
		return nil, fmt.Errorf("rules: parsing %s: %w", path, err)
	}

	return compile(ff)
}

func compile(ff fileFormat) (*Set, error) {
	s := &Set{opcodeSize: ff.OpcodeSize}

	if len(ff.CompatibleMagics) > 0 {
		s.compatibleMagics = make(map[[4]byte]bool, len(ff.CompatibleMagics))
		for _, m := range ff.CompatibleMagics {
			magic, err := magicNumberToFileMagic(m)
			if err != nil {
				return nil, fmt.Errorf("rules: compatible_magics entry %q: %w", m, err)
			}
			s.compatibleMagics[magic] = true
		}
	}

	if len(ff.RepairMagic) > 0 {
		magic, err := magicNumberToFileMagic(ff.RepairMagic)
		if err != nil {
			return nil, fmt.Errorf("rules: repair_magic %q: %w", ff.RepairMagic, err)
		}
		s.repairMagic = magic[:]
	}

	if len(ff.TypeCodeMap) > 0 {
		s.typeCodeMap = make(map[string]byte, len(ff.TypeCodeMap))
		for name, code := range ff.TypeCodeMap {
			v, err := parseUint(code, 8)
			if err != nil {
				return nil, fmt.Errorf("rules: type_code_map[%s] = %q: %w", name, code, err)
			}
			s.typeCodeMap[name] = byte(v)
		}
	}

	if len(ff.TypeCodeRemap) > 0 {
		s.typeCodeRemap = make(map[byte]marshal.Remap, len(ff.TypeCodeRemap))
		for key, entry := range ff.TypeCodeRemap {
			k, err := parseUint(key, 8)
			if err != nil {
				return nil, fmt.Errorf("rules: type_code_remap key %q: %w", key, err)
			}
			to, err := parseUint(entry.To, 8)
			if err != nil {
				return nil, fmt.Errorf("rules: type_code_remap[%s].to = %q: %w", key, entry.To, err)
			}
			s.typeCodeRemap[byte(k)] = marshal.Remap{To: []byte{byte(to)}, Stride: entry.Stride}
		}
	}

	if len(ff.OpcodeMap) > 0 {
		s.opcodeMap = make(map[string]byte, len(ff.OpcodeMap))
		for name, code := range ff.OpcodeMap {
			v, err := parseUint(code, 8)
			if err != nil {
				return nil, fmt.Errorf("rules: opcode_map[%s] = %q: %w", name, code, err)
			}
			s.opcodeMap[name] = byte(v)
		}
	}

	if len(ff.OpcodeRemap) > 0 {
		opSize := ff.OpcodeSize
		if opSize <= 0 {
			opSize = 1
		}
		s.opcodeRemap = make(map[string]marshal.Remap, len(ff.OpcodeRemap))
		for key, entry := range ff.OpcodeRemap {
			keyBytes, err := parseByteSequence(key, opSize)
			if err != nil {
				return nil, fmt.Errorf("rules: opcode_remap key %q: %w", key, err)
			}
			var toBytes []byte
			if entry.To != "" {
				toBytes, err = parseByteSequence(entry.To, opSize)
				if err != nil {
					return nil, fmt.Errorf("rules: opcode_remap[%s].to = %q: %w", key, entry.To, err)
				}
			}
			s.opcodeRemap[string(keyBytes)] = marshal.Remap{To: toBytes, Stride: entry.Stride}
		}
	}

	return s, nil
}

// parseUint accepts both "0x.." hex and plain decimal forms, as a
// rules-file author would naturally write either.
func parseUint(s string, bitSize int) (uint64, error) {
	return strconv.ParseUint(s, 0, bitSize)
}

// magicNumberToFileMagic expands a rules-file author's 2-byte CPython
// magic number (e.g. "0x0DA7") into the canonical 4-byte .pyc file magic:
// the number little-endian, followed by the fixed "\r\n" CPython has
// appended to every magic since the format's introduction.
func magicNumberToFileMagic(s string) ([4]byte, error) {
	v, err := parseUint(s, 16)
	if err != nil {
		return [4]byte{}, err
	}
	return [4]byte{byte(v), byte(v >> 8), 0x0D, 0x0A}, nil
}

// parseByteSequence decodes a hex string such as "0x6400" into its
// constituent bytes, padded/validated against opSize.
func parseByteSequence(s string, opSize int) ([]byte, error) {
	v, err := strconv.ParseUint(s, 0, opSize*8)
	if err != nil {
		return nil, err
	}
	out := make([]byte, opSize)
	for i := 0; i < opSize; i++ {
		out[i] = byte(v >> (8 * i))
	}
	return out, nil
}
