package marshal

import (
	"encoding/binary"
	"errors"
)

// Reader is the Type-Code Dispatcher (spec §4.2): given an offset, it
// reads the one-byte tag, applies type-code remapping, resolves
// back-references, and constructs the Mapper for whatever lies there.
type Reader struct {
	buf     *Buffers
	rules   Adapter
	refs    *RefTable
	intern  *InternTable
	version int
}

// NewReader builds a Reader bound to buf, driven by rules, for a stream
// at the given version (spec §3 "version").
func NewReader(buf *Buffers, rules Adapter, version int) *Reader {
	return &Reader{
		buf:     buf,
		rules:   rules,
		refs:    &RefTable{},
		intern:  &InternTable{},
		version: version,
	}
}

// Refs exposes the reference table, mostly for tests and tooling.
func (r *Reader) Refs() *RefTable { return r.refs }

// Intern exposes the intern table, mostly for tests and tooling.
func (r *Reader) Intern() *InternTable { return r.intern }

// Read implements the 9-step protocol of spec §4.2.
func (r *Reader) Read(offset int) (Mapper, int, error) {
	newOffset, action := r.rules.PreStep(r.buf.Input, r.buf.Output, offset)
	switch action {
	case StepAbort:
		return nil, 0, newError(KindAborted, offset, nil)
	case StepContinue:
		offset = newOffset
	}

	mapper, consumed, err := r.read(offset)
	if err != nil {
		return nil, 0, err
	}

	if postOffset, postAction := r.rules.PostStep(r.buf.Input, r.buf.Output, offset+consumed); postAction == StepAbort {
		return nil, 0, newError(KindAborted, offset, nil)
	} else if postAction == StepContinue {
		_ = postOffset // the post-step offset is informational only; the
		// Reader has already committed consumed bytes for this mapper.
	}

	return mapper, consumed, nil
}

func (r *Reader) read(offset int) (Mapper, int, error) {
	// Step 1: read the raw tag byte.
	raw, err := r.buf.byteAt(offset)
	if err != nil {
		return nil, 0, newError(KindUnknownTypeCode, offset, err)
	}

	remapTable := r.rules.TypeCodeRemap()

	// Step 2: a whole-byte remap (including any FlagRef bit) takes
	// precedence over the split-then-remap path below.
	if entry, ok := remapTable[raw]; ok && len(entry.To) > 0 {
		if err := r.buf.writeOutput(offset, entry.To[:1]); err != nil {
			return nil, 0, err
		}
		raw = entry.To[0]
	}

	// Step 3: REF short-circuits everything else — no new mapper, no
	// table registration, just an index lookup.
	if Tag(raw).Code() == TagRef {
		idxBytes, err := r.buf.sliceAt(offset+1, 4)
		if err != nil {
			return nil, 0, newError(KindUnknownTypeCode, offset, err)
		}
		idx := int(int32(binary.LittleEndian.Uint32(idxBytes)))
		target, ok := r.refs.At(idx)
		if !ok {
			return nil, 0, newError(KindUnknownTypeCode, offset, nil)
		}
		return target, 5, nil
	}

	// Step 4: split flag bit from the 7-bit code.
	isRef := raw&byte(FlagRef) != 0
	t7 := Tag(raw) & tagMask

	// Step 5: a 7-bit-keyed remap may still apply even when step 2 did
	// not match (e.g. the raw byte with its ref bit wasn't a key, but
	// the bare code is).
	if entry, ok := remapTable[byte(t7)]; ok && len(entry.To) > 0 {
		newCode := entry.To[0]
		out := newCode
		if isRef {
			out |= byte(FlagRef)
		}
		if err := r.buf.writeOutput(offset, []byte{out}); err != nil {
			return nil, 0, err
		}
		t7 = Tag(newCode)
	}

	// Step 6: let the adapter substitute a mapper outright.
	var m mapper
	if sub := r.rules.SubstituteMapper(t7, r, offset); sub != nil {
		sm, ok := sub.(mapper)
		if !ok {
			return nil, 0, newError(KindUnknownTypeCode, offset, nil)
		}
		m = sm
	} else {
		// Step 7: construct the built-in mapper for t7.
		built, err := newMapper(t7, offset, isRef)
		if err != nil {
			return nil, 0, err
		}
		m = built
	}

	// Step 8: pre-order reference-table registration, before the body
	// is parsed, so self-referential children can resolve upward.
	if isRef {
		r.refs.append(m)
	}

	// Step 9: parse the body, which fills in Size (and, for containers,
	// recurses back into Read for each child).
	if err := m.parse(r); err != nil {
		var merr *Error
		if !errors.As(err, &merr) {
			err = newError(KindUnknownTypeCode, offset, err)
		}
		return nil, 0, err
	}

	return m, m.Size(), nil
}

// newMapper constructs the built-in mapper matching t7, tagged with
// FlagRef if isRef (spec §4.3's catalogue of marshal object kinds).
// Unknown codes are fatal (spec §4.2 step 7, §7).
func newMapper(t7 Tag, offset int, isRef bool) (mapper, error) {
	tag := t7
	if isRef {
		tag |= FlagRef
	}
	b := base{tag: tag, offset: offset}

	switch t7 {
	case TagNull, TagNone, TagFalse, TagTrue, TagStopIter, TagEllipsis:
		return &trivialMapper{base: b}, nil
	case TagInt:
		return &int32Mapper{base: b}, nil
	case TagInt64:
		return &int64Mapper{base: b}, nil
	case TagLong:
		return &longMapper{base: b}, nil
	case TagFloat:
		return &textFloatMapper{base: b}, nil
	case TagBinaryFloat:
		return &binaryFloatMapper{base: b}, nil
	case TagComplex:
		return &textComplexMapper{base: b}, nil
	case TagBinaryComplex:
		return &binaryComplexMapper{base: b}, nil
	case TagString, TagUnicode, TagInterned, TagASCII, TagASCIIInterned:
		return &stringMapper{base: b}, nil
	case TagShortASCII, TagShortASCIIInterned:
		return &shortASCIIMapper{base: b}, nil
	case TagStringRef:
		return &stringRefMapper{base: b}, nil
	case TagTuple:
		return &tupleMapper{base: b}, nil
	case TagSmallTuple:
		return &smallTupleMapper{base: b}, nil
	case TagList:
		return &listMapper{base: b}, nil
	case TagSet, TagFrozenSet:
		return &setMapper{base: b}, nil
	case TagDict:
		return &dictMapper{base: b}, nil
	case TagCode, TagLegacyCode:
		return &codeMapper{base: b}, nil
	default:
		return nil, newError(KindUnknownTypeCode, offset, nil)
	}
}
