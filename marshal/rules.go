package marshal

// HeaderDescriptor is what a rules adapter's HeaderParse returns (spec
// §3). The core only ever looks at HeaderSize and Version; the rest is
// opaque and exists purely so a concrete adapter can round-trip it
// through TrailerFinalize if it needs to repair the header.
type HeaderDescriptor struct {
	Magic      [4]byte
	HeaderSize int
	Version    int // encoded as major*100 + minor, e.g. CPython 3.11 -> 311

	Flags uint32

	HasSipHash bool
	SipHash    [8]byte

	Timestamp      uint32
	MarshalledSize uint32
}

// Remap describes a single substitution entry shared by the type-code
// and opcode remap tables: a replacement byte sequence and an optional
// stride override. Most type-code remaps leave Stride nil; it exists so
// the same shape serves both tables, matching spec §4.1's adapter
// contract literally.
type Remap struct {
	To     []byte
	Stride *int
}

// StepAction is what a pre/post-step hook asks the Reader to do next.
type StepAction int

const (
	// StepDefault means the hook declined to act; use offset as-is.
	StepDefault StepAction = iota
	// StepContinue means the hook supplied a replacement offset.
	StepContinue
	// StepAbort means the hook asked the walk to terminate immediately.
	StepAbort
)

// Adapter is the narrow interface a caller implements to parameterize
// the walker (spec §4.1). The core only ever calls these methods; it
// never executes arbitrary user code itself (spec §9).
type Adapter interface {
	// IsCompatible inspects the raw input before any parsing begins.
	IsCompatible(input []byte) bool

	// HeaderParse reads the container header from input (and may repair
	// it in output) and returns a HeaderDescriptor.
	HeaderParse(input, output []byte) (HeaderDescriptor, error)

	// TrailerFinalize returns the byte length output should be
	// truncated to before being persisted.
	TrailerFinalize(input, output []byte) int

	// OpcodeSize returns the width, in bytes, of one opcode unit
	// (typically 1).
	OpcodeSize() int

	// OpcodeMap returns a debug mnemonic -> opcode byte table. Never
	// consulted by the rewriter itself.
	OpcodeMap() map[string]byte

	// OpcodeRemap maps an opcode byte sequence (length OpcodeSize()) to
	// a substitution.
	OpcodeRemap() map[string]Remap

	// TypeCodeMap returns a debug mnemonic -> type-code byte table.
	TypeCodeMap() map[string]byte

	// TypeCodeRemap maps a type-code byte (either the whole raw byte
	// including FlagRef, or the bare 7-bit code) to a substitution.
	TypeCodeRemap() map[byte]Remap

	// SubstituteMapper lets the adapter override mapper construction
	// for a given 7-bit tag at offset. Returning nil uses the built-in
	// mapper for that tag.
	SubstituteMapper(tag Tag, r *Reader, offset int) Mapper

	// PreStep/PostStep are optional hooks invoked around each mapper
	// read. Returning (offset, StepDefault) is a no-op.
	PreStep(input, output []byte, offset int) (int, StepAction)
	PostStep(input, output []byte, offset int) (int, StepAction)
}

// BaseAdapter implements Adapter with every method a no-op / empty
// default, so a concrete adapter can embed it and override only the
// behaviors it needs — the normalization spec §4.1 describes ("missing
// callbacks default to empty maps, null returns, no-op hooks").
type BaseAdapter struct{}

func (BaseAdapter) IsCompatible(_ []byte) bool { return true }

func (BaseAdapter) HeaderParse(_, _ []byte) (HeaderDescriptor, error) {
	return HeaderDescriptor{}, nil
}

func (BaseAdapter) TrailerFinalize(input, _ []byte) int { return len(input) }

func (BaseAdapter) OpcodeSize() int { return 1 }

func (BaseAdapter) OpcodeMap() map[string]byte {
	m := make(map[string]byte, 256)
	for i := 0; i < 256; i++ {
		m[placeholderMnemonic(i)] = byte(i)
	}
	return m
}

func (BaseAdapter) OpcodeRemap() map[string]Remap { return nil }

func (BaseAdapter) TypeCodeMap() map[string]byte { return nil }

func (BaseAdapter) TypeCodeRemap() map[byte]Remap { return nil }

func (BaseAdapter) SubstituteMapper(_ Tag, _ *Reader, _ int) Mapper { return nil }

func (BaseAdapter) PreStep(_, _ []byte, offset int) (int, StepAction) {
	return offset, StepDefault
}

func (BaseAdapter) PostStep(_, _ []byte, offset int) (int, StepAction) {
	return offset, StepDefault
}

// placeholderMnemonic builds the "<N>" placeholder name spec §4.1
// requires when an adapter supplies no opcode_map of its own.
func placeholderMnemonic(b int) string {
	const hexDigits = "0123456789ABCDEF"
	return "<" + string([]byte{hexDigits[b>>4], hexDigits[b&0xF]}) + ">"
}
