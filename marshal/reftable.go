package marshal

// InternTable is the ordered, append-only table of interned string
// mappers queried by STRINGREF (spec §3). Strings are appended
// post-order: only after a string mapper's body has been fully parsed.
type InternTable struct {
	entries []Mapper
}

func (t *InternTable) append(m Mapper) { t.entries = append(t.entries, m) }

// Len reports how many strings have been interned so far.
func (t *InternTable) Len() int { return len(t.entries) }

// At returns the intern-table entry at index idx.
func (t *InternTable) At(idx int) (Mapper, bool) {
	if idx < 0 || idx >= len(t.entries) {
		return nil, false
	}
	return t.entries[idx], true
}

// RefTable is the ordered, append-only table of FlagRef-tagged mappers
// queried by REF (spec §3, §5). Entries are appended pre-order: a
// mapper is registered the instant its tag byte is seen, before its
// body is parsed, so a self-referential child can resolve back to its
// still-parsing parent.
type RefTable struct {
	entries []Mapper
}

func (t *RefTable) append(m Mapper) int {
	t.entries = append(t.entries, m)
	return len(t.entries) - 1
}

// Len reports how many references have been registered so far.
func (t *RefTable) Len() int { return len(t.entries) }

// At returns the reference-table entry at index idx.
func (t *RefTable) At(idx int) (Mapper, bool) {
	if idx < 0 || idx >= len(t.entries) {
		return nil, false
	}
	return t.entries[idx], true
}
