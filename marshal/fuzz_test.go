package marshal

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzWalkIdentityDoesNotPanic exercises the walker against arbitrary
// byte soup under identity rules: malformed input must come back as a
// *Error (or succeed), never a panic, and a successful walk must leave
// the output untouched (Testable Property 5).
func FuzzWalkIdentityDoesNotPanic(f *testing.F) {
	f.Add([]byte{0x29, 0x02, 'N', 'N'})
	f.Add([]byte{0xDA, 0x02, 'a', 'b', 0x72, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0x7B, 0x7A, 0x01, 'k', 'N', 0x30})
	f.Add([]byte{0x63, 0x00})
	f.Add([]byte{})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, input []byte) {
		res, err := Walk(input, identityRules{})
		if err != nil {
			var merr *Error
			if !errors.As(err, &merr) {
				t.Fatalf("Walk error is %T, want *Error: %v", err, err)
			}
			return
		}
		if !bytes.Equal(res.Output, input) {
			t.Fatalf("identity rules mutated input: got % x, want % x", res.Output, input)
		}
	})
}
