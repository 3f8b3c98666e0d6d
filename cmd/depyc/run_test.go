package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"depyc/marshal"
)

func writeFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

const identityRulesYAML = "opcode_size: 1\n"

// pyc311 prefixes a marshal payload with a timestamp-based CPython 3.11
// .pyc header, the container the rules adapter parses before the walk.
func pyc311(payload ...byte) []byte {
	header := []byte{
		0xA7, 0x0D, 0x0D, 0x0A, // magic (3.11)
		0x00, 0x00, 0x00, 0x00, // flags
		0x01, 0x02, 0x03, 0x04, // timestamp
		0x05, 0x06, 0x07, 0x08, // source size
	}
	return append(header, payload...)
}

func TestProcessFileIdentityRulesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pyc", pyc311(0x29, 0x02, 'N', 'N'))
	rulesPath := writeFile(t, dir, "rules.yaml", []byte(identityRulesYAML))
	output := filepath.Join(dir, "out.pyc")

	opts := &options{rulesPath: rulesPath, silent: true}
	code, err := processFile(zerolog.Nop(), opts, input, output)
	require.NoError(t, err)
	assert.Equal(t, exitOK, code)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, pyc311(0x29, 0x02, 'N', 'N'), got)
}

func TestProcessFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	rulesPath := writeFile(t, dir, "rules.yaml", []byte(identityRulesYAML))
	opts := &options{rulesPath: rulesPath, silent: true}

	code, err := processFile(zerolog.Nop(), opts, filepath.Join(dir, "missing.pyc"), filepath.Join(dir, "out.pyc"))
	assert.Error(t, err)
	assert.Equal(t, exitInputMissing, code)
}

func TestProcessFileOutputExistsWithoutForce(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pyc", []byte{0x4E})
	output := writeFile(t, dir, "out.pyc", []byte{0x00})
	rulesPath := writeFile(t, dir, "rules.yaml", []byte(identityRulesYAML))
	opts := &options{rulesPath: rulesPath, silent: true}

	code, err := processFile(zerolog.Nop(), opts, input, output)
	assert.Error(t, err)
	assert.Equal(t, exitOutputExists, code)
}

func TestProcessFileOutputExistsWithForce(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pyc", pyc311(0x4E))
	output := writeFile(t, dir, "out.pyc", []byte{0x00})
	rulesPath := writeFile(t, dir, "rules.yaml", []byte(identityRulesYAML))
	opts := &options{rulesPath: rulesPath, silent: true, force: true}

	code, err := processFile(zerolog.Nop(), opts, input, output)
	require.NoError(t, err)
	assert.Equal(t, exitOK, code)
}

func TestProcessFileMissingRulesFile(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pyc", []byte{0x4E})
	opts := &options{rulesPath: filepath.Join(dir, "nope.yaml"), silent: true}

	code, err := processFile(zerolog.Nop(), opts, input, filepath.Join(dir, "out.pyc"))
	assert.Error(t, err)
	assert.Equal(t, exitRulesFileMissing, code)
}

func TestProcessFileIncompatibleInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "in.pyc", []byte{0x01, 0x02})
	rulesPath := writeFile(t, dir, "rules.yaml", []byte(`
compatible_magics:
  - "0x0DA7"
`))
	opts := &options{rulesPath: rulesPath, silent: true}

	code, err := processFile(zerolog.Nop(), opts, input, filepath.Join(dir, "out.pyc"))
	assert.Error(t, err)
	assert.Equal(t, exitIncompatibleInput, code)
}

func TestExitCodeForUnwrapsMarshalError(t *testing.T) {
	assert.Equal(t, exitIncompatibleInput, exitCodeFor(fmt.Errorf("walk: %w", marshal.ErrIncompatible)))
	assert.Equal(t, exitBadFlagValue, exitCodeFor(os.ErrClosed))
}
