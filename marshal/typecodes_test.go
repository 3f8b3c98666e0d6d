package marshal

import "testing"

func TestTagCodeAndHasRef(t *testing.T) {
	plain := Tag(0x5A) // SHORT_ASCII_INTERNED, no ref bit
	refd := plain | FlagRef

	if plain.HasRef() {
		t.Fatalf("plain.HasRef() = true, want false")
	}
	if !refd.HasRef() {
		t.Fatalf("refd.HasRef() = false, want true")
	}
	if plain.Code() != refd.Code() {
		t.Fatalf("Code() mismatch: %v vs %v", plain.Code(), refd.Code())
	}
}

func TestTagString(t *testing.T) {
	cases := []struct {
		tag  Tag
		want string
	}{
		{TagNone, "NONE"},
		{TagSmallTuple, "SMALL_TUPLE"},
		{TagShortASCIIInterned, "SHORT_ASCII_INTERNED"},
		{TagRef, "REF"},
	}
	for _, c := range cases {
		if got := c.tag.String(); got != c.want {
			t.Errorf("Tag(%#x).String() = %q, want %q", byte(c.tag), got, c.want)
		}
	}

	unknown := Tag(0x01)
	if got := unknown.String(); got != "0x01" {
		t.Errorf("unknown.String() = %q, want 0x01", got)
	}
	unknownRef := unknown | FlagRef
	if got := unknownRef.String(); got != "0x01|REF" {
		t.Errorf("unknownRef.String() = %q, want 0x01|REF", got)
	}
}

func TestIsInterned(t *testing.T) {
	interned := []Tag{TagInterned, TagASCIIInterned, TagShortASCIIInterned}
	for _, tg := range interned {
		if !isInterned(tg) {
			t.Errorf("isInterned(%v) = false, want true", tg)
		}
	}
	notInterned := []Tag{TagString, TagASCII, TagShortASCII, TagStringRef}
	for _, tg := range notInterned {
		if isInterned(tg) {
			t.Errorf("isInterned(%v) = true, want false", tg)
		}
	}
}
