package marshal

// Walker is the top-level orchestrator (spec §4.5): it checks
// compatibility, parses the header, drives a single Reader over the
// marshal payload, and asks the adapter to finalize the trailer.
type Walker struct {
	rules Adapter
}

// NewWalker binds a Walker to the given rules adapter.
func NewWalker(rules Adapter) *Walker {
	return &Walker{rules: rules}
}

// Result is what Walk returns: the finalized output bytes to persist
// (already truncated to the trailer finalizer's length), the parsed header, the root mapper, and the reader's tables (handy
// for callers that want to inspect what was interned/referenced).
type Result struct {
	Output     []byte
	Header     HeaderDescriptor
	Root       Mapper
	References *RefTable
	Interned   *InternTable
}

// Walk runs the full pipeline of spec §4.5 over input and returns a
// Result ready to persist (Result.Output[:] is already truncated).
func (w *Walker) Walk(input []byte) (*Result, error) {
	if !w.rules.IsCompatible(input) {
		return nil, newError(KindIncompatible, 0, nil)
	}

	buf := NewBuffers(input)

	header, err := w.rules.HeaderParse(buf.Input, buf.Output)
	if err != nil {
		return nil, err
	}

	reader := NewReader(buf, w.rules, header.Version)
	root, _, err := reader.Read(header.HeaderSize)
	if err != nil {
		return nil, err
	}

	truncateTo := w.rules.TrailerFinalize(buf.Input, buf.Output)
	if truncateTo < 0 || truncateTo > len(buf.Output) {
		truncateTo = len(buf.Output)
	}

	return &Result{
		Output:     buf.Output[:truncateTo],
		Header:     header,
		Root:       root,
		References: reader.refs,
		Interned:   reader.intern,
	}, nil
}

// Walk is the package-level convenience wrapper spec.md's examples
// call: build a Walker around rules and run it once.
func Walk(input []byte, rules Adapter) (*Result, error) {
	return NewWalker(rules).Walk(input)
}
