package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depyc/internal/rules"
)

func TestIdentityAcceptsAnyPycShapedInput(t *testing.T) {
	set := rules.Identity()
	assert.True(t, set.IsCompatible(make([]byte, 8)))
	assert.False(t, set.IsCompatible(make([]byte, 4)))
	assert.Equal(t, 1, set.OpcodeSize())
	assert.Empty(t, set.OpcodeRemap())
	assert.Empty(t, set.TypeCodeRemap())
}

func TestIdentityHeaderParseDelegatesToPyc(t *testing.T) {
	set := rules.Identity()
	input := []byte{
		0xA7, 0x0D, 0x0D, 0x0A,
		0x00, 0x00, 0x00, 0x00,
		0x01, 0x02, 0x03, 0x04,
		0x05, 0x06, 0x07, 0x08,
	}
	output := make([]byte, len(input))
	copy(output, input)

	h, err := set.HeaderParse(input, output)
	require.NoError(t, err)
	assert.Equal(t, 311, h.Version)
	assert.Equal(t, 16, h.HeaderSize)
}

func TestCompatibleMagicsRestrictsAcceptance(t *testing.T) {
	path := writeRulesFile(t, `
compatible_magics:
  - "0x0DA7"
`)
	set, err := rules.Load(path)
	require.NoError(t, err)

	accepted := []byte{0xA7, 0x0D, 0x0D, 0x0A, 0, 0, 0, 0}
	rejected := []byte{0xEE, 0xEE, 0x0D, 0x0A, 0, 0, 0, 0}
	assert.True(t, set.IsCompatible(accepted))
	assert.False(t, set.IsCompatible(rejected))
}

func TestRepairMagicOverwritesOutputHeader(t *testing.T) {
	path := writeRulesFile(t, `
repair_magic: "0x0DA7"
`)
	set, err := rules.Load(path)
	require.NoError(t, err)

	input := []byte{0x00, 0x00, 0x0D, 0x0A, 0, 0, 0, 0, 0, 0, 0, 0}
	output := make([]byte, len(input))
	copy(output, input)

	_, err = set.HeaderParse(input, output)
	require.NoError(t, err)
	assert.Equal(t, byte(0xA7), output[0])
	assert.Equal(t, byte(0x0D), output[1])
}

func TestTrailerFinalizeDefaultsToFullLength(t *testing.T) {
	set := rules.Identity()
	input := []byte{1, 2, 3, 4}
	assert.Equal(t, len(input), set.TrailerFinalize(input, input))
}
