package marshal

// codeTier is one row of the version-sensitive code-object field table
// (spec §4.3). Tiers are tried in ascending MinVersion order and the
// last one whose MinVersion <= the stream's version wins — each tier
// fully specifies its shape rather than patching the previous one, so
// there is no conditional branching scattered through codeMapper.parse
// (spec §9's design note).
type codeTier struct {
	MinVersion int

	ArgCountWidth      int
	HasPosOnlyArgCount bool
	HasKWOnlyArgCount  bool
	NLocalsWidth       int // 0 means the field is absent
	StackSizeWidth     int
	FlagsWidth         int

	HasVarNames        bool
	HasLocalsPlusKinds bool
	HasFreeVars        bool
	HasCellVars        bool
	HasQualname        bool

	FirstLineNoWidth  int
	HasLineTable      bool
	HasExceptionTable bool
}

// codeTiers is ordered oldest-first; see codeLayout.
var codeTiers = []codeTier{
	{ // CPython <= 1.2: no varnames, no line info at all yet.
		MinVersion: 0,
		ArgCountWidth: 2, NLocalsWidth: 2, StackSizeWidth: 2, FlagsWidth: 2,
	},
	{ // CPython 1.3-1.4: varnames introduced.
		MinVersion: 103,
		ArgCountWidth: 2, NLocalsWidth: 2, StackSizeWidth: 2, FlagsWidth: 2,
		HasVarNames: true,
	},
	{ // CPython 1.5-2.2: firstlineno/lnotab introduced.
		MinVersion: 105,
		ArgCountWidth: 2, NLocalsWidth: 2, StackSizeWidth: 2, FlagsWidth: 2,
		HasVarNames: true, FirstLineNoWidth: 2, HasLineTable: true,
	},
	{ // CPython 2.3-2.9: fields widen to 4 bytes; freevars/cellvars added.
		MinVersion: 203,
		ArgCountWidth: 4, NLocalsWidth: 4, StackSizeWidth: 4, FlagsWidth: 4,
		HasVarNames: true, HasFreeVars: true, HasCellVars: true,
		FirstLineNoWidth: 4, HasLineTable: true,
	},
	{ // CPython 3.0-3.7: kwonlyargcount introduced.
		MinVersion: 300,
		ArgCountWidth: 4, HasKWOnlyArgCount: true, NLocalsWidth: 4,
		StackSizeWidth: 4, FlagsWidth: 4,
		HasVarNames: true, HasFreeVars: true, HasCellVars: true,
		FirstLineNoWidth: 4, HasLineTable: true,
	},
	{ // CPython 3.8-3.10: posonlyargcount introduced.
		MinVersion: 308,
		ArgCountWidth: 4, HasPosOnlyArgCount: true, HasKWOnlyArgCount: true,
		NLocalsWidth: 4, StackSizeWidth: 4, FlagsWidth: 4,
		HasVarNames: true, HasFreeVars: true, HasCellVars: true,
		FirstLineNoWidth: 4, HasLineTable: true,
	},
	{ // CPython >= 3.11: nlocals/freevars/cellvars dropped; the varnames
		// slot carries localsplusnames, followed by localspluskinds;
		// qualname and exceptiontable added.
		MinVersion: 311,
		ArgCountWidth: 4, HasPosOnlyArgCount: true, HasKWOnlyArgCount: true,
		NLocalsWidth: 0, StackSizeWidth: 4, FlagsWidth: 4,
		HasVarNames: true, HasLocalsPlusKinds: true, HasQualname: true,
		FirstLineNoWidth: 4, HasLineTable: true, HasExceptionTable: true,
	},
}

// codeLayout picks the field table row in effect for version.
func codeLayout(version int) codeTier {
	best := codeTiers[0]
	for _, t := range codeTiers {
		if t.MinVersion <= version {
			best = t
		}
	}
	return best
}

// codeMapper covers CODE and LEGACY_CODE: a version-sensitive sequence
// of fixed-width integer fields followed by child object mappers (spec
// §4.3). Immediately after the `code` child (the raw bytecode string)
// is parsed, the Opcode Rewriter runs against that child's byte range,
// before any subsequent field is parsed (spec §4.3's ordering note).
type codeMapper struct {
	base

	ArgCount      int
	PosOnlyArgCount int
	KWOnlyArgCount  int
	NLocals         int
	StackSize       int
	Flags           int
	FirstLineNo     int

	Code             Mapper
	Consts           Mapper
	Names            Mapper
	VarNames         Mapper
	LocalsPlusKinds  Mapper
	FreeVars         Mapper
	CellVars         Mapper
	Filename         Mapper
	Name             Mapper
	Qualname         Mapper
	LineTable        Mapper
	ExceptionTable   Mapper
}

func (m *codeMapper) parse(r *Reader) error {
	tier := codeLayout(r.version)
	cursor := m.offset + 1

	readField := func(width int) (int, error) {
		if width == 0 {
			return 0, nil
		}
		v, err := r.buf.readWidth(cursor, width)
		if err != nil {
			return 0, err
		}
		cursor += width
		return v, nil
	}

	var err error
	if m.ArgCount, err = readField(tier.ArgCountWidth); err != nil {
		return err
	}
	if tier.HasPosOnlyArgCount {
		if m.PosOnlyArgCount, err = readField(4); err != nil {
			return err
		}
	}
	if tier.HasKWOnlyArgCount {
		if m.KWOnlyArgCount, err = readField(4); err != nil {
			return err
		}
	}
	if tier.NLocalsWidth > 0 {
		if m.NLocals, err = readField(tier.NLocalsWidth); err != nil {
			return err
		}
	}
	if m.StackSize, err = readField(tier.StackSizeWidth); err != nil {
		return err
	}
	if m.Flags, err = readField(tier.FlagsWidth); err != nil {
		return err
	}

	readChild := func(dst *Mapper) error {
		child, consumed, err := r.Read(cursor)
		if err != nil {
			return err
		}
		*dst = child
		cursor += consumed
		return nil
	}

	if err := readChild(&m.Code); err != nil {
		return err
	}
	if err := r.rewriteOpcodes(m.Code); err != nil {
		return err
	}

	if err := readChild(&m.Consts); err != nil {
		return err
	}
	if err := readChild(&m.Names); err != nil {
		return err
	}

	if tier.HasVarNames {
		if err := readChild(&m.VarNames); err != nil {
			return err
		}
	}
	if tier.HasLocalsPlusKinds {
		if err := readChild(&m.LocalsPlusKinds); err != nil {
			return err
		}
	}
	if tier.HasFreeVars {
		if err := readChild(&m.FreeVars); err != nil {
			return err
		}
	}
	if tier.HasCellVars {
		if err := readChild(&m.CellVars); err != nil {
			return err
		}
	}

	if err := readChild(&m.Filename); err != nil {
		return err
	}
	if err := readChild(&m.Name); err != nil {
		return err
	}
	if tier.HasQualname {
		if err := readChild(&m.Qualname); err != nil {
			return err
		}
	}

	if m.FirstLineNo, err = readField(tier.FirstLineNoWidth); err != nil {
		return err
	}

	if tier.HasLineTable {
		if err := readChild(&m.LineTable); err != nil {
			return err
		}
	}
	if tier.HasExceptionTable {
		if err := readChild(&m.ExceptionTable); err != nil {
			return err
		}
	}

	m.size = cursor - m.offset
	return nil
}
