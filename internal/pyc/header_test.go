package pyc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depyc/internal/pyc"
)

func TestParseModernHeaderNoHash(t *testing.T) {
	input := []byte{
		0xA7, 0x0D, 0x0D, 0x0A, // magic -> 3.11
		0x00, 0x00, 0x00, 0x00, // flags, bit0 clear: timestamp-based
		0x11, 0x22, 0x33, 0x44, // timestamp
		0x55, 0x66, 0x77, 0x88, // source size
	}
	h, err := pyc.Parse(input)
	require.NoError(t, err)
	assert.Equal(t, 311, h.Version)
	assert.Equal(t, 16, h.HeaderSize)
	assert.False(t, h.HasHash)
	assert.Equal(t, uint32(0x44332211), h.Timestamp)
	assert.Equal(t, uint32(0x88776655), h.MarshalledSize)
}

func TestParseModernHeaderWithHash(t *testing.T) {
	input := []byte{
		0xA7, 0x0D, 0x0D, 0x0A,
		0x01, 0x00, 0x00, 0x00, // flags, bit0 set: siphash-based
		0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08,
	}
	h, err := pyc.Parse(input)
	require.NoError(t, err)
	assert.True(t, h.HasHash)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, h.SipHash)
}

func TestParseLegacyHeader(t *testing.T) {
	input := []byte{
		0x03, 0xF3, 0x0D, 0x0A, // CPython 2.7 magic (62211, little-endian)
		0x01, 0x02, 0x03, 0x04, // timestamp
		0x05, 0x06, 0x07, 0x08, // size
	}
	h, err := pyc.Parse(input)
	require.NoError(t, err)
	assert.Equal(t, 207, h.Version)
	assert.Equal(t, 12, h.HeaderSize)
}

func TestParseUnknownMagicFallsBackToNewest(t *testing.T) {
	input := make([]byte, 16)
	input[0], input[1] = 0xEE, 0xEE
	h, err := pyc.Parse(input)
	require.NoError(t, err)
	assert.Equal(t, 313, h.Version)
}

func TestParseTruncatedInputIsAnError(t *testing.T) {
	_, err := pyc.Parse([]byte{0x01, 0x02})
	assert.Error(t, err)

	_, err = pyc.Parse([]byte{0xA7, 0x0D, 0x0D, 0x0A, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.Error(t, err)
}
