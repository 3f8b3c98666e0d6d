package marshal

// Mapper represents one parsed marshal object (spec §3). For any
// Mapper M, input[M.Offset():M.Offset()+M.Size()] is exactly its
// on-wire encoding, and Size() is always at least 1 (the tag byte).
type Mapper interface {
	Tag() Tag
	Offset() int
	Size() int
}

// mapper is the package-internal extension of Mapper that the Reader
// drives to populate a freshly constructed value's fields and Size.
type mapper interface {
	Mapper
	parse(r *Reader) error
}

// base is embedded by every concrete mapper kind to satisfy the public
// Mapper interface's bookkeeping fields.
type base struct {
	tag    Tag
	offset int
	size   int
}

func (b *base) Tag() Tag    { return b.tag }
func (b *base) Offset() int { return b.offset }
func (b *base) Size() int   { return b.size }

// trivialMapper covers the six fixed, bodyless marshal kinds: NULL,
// NONE, FALSE, TRUE, STOPITER, ELLIPSIS. They consume exactly their tag
// byte and have no children (spec §4.3).
type trivialMapper struct{ base }

func (m *trivialMapper) parse(_ *Reader) error {
	m.size = 1
	return nil
}

// A REF occurrence (spec §4.2 step 3) does not construct a new mapper
// at all: Reader.Read returns the already-registered reference-table
// entry directly, with a fixed consumed length of 5. No wrapper type is
// needed since the mapper tree never grows a cycle — the same Mapper
// value is simply returned to more than one caller.
