package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMissingInputArgExitsThree(t *testing.T) {
	code := run(nil)
	assert.Equal(t, exitMissingInputArg, code)
}

func TestRunMissingOutputArgExitsFour(t *testing.T) {
	code := run([]string{"only-one-arg.pyc"})
	assert.Equal(t, exitMissingOutputArg, code)
}

func TestRunEndToEndSuccessExitsZero(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.pyc")
	require.NoError(t, os.WriteFile(input, pyc311(0x4E), 0o644))
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("opcode_size: 1\n"), 0o644))
	output := filepath.Join(dir, "out.pyc")

	code := run([]string{"--rules", rulesPath, "--silent", input, output})
	assert.Equal(t, exitOK, code)

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, pyc311(0x4E), got)
}

func TestRunInputMissingExitsOne(t *testing.T) {
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(rulesPath, []byte("opcode_size: 1\n"), 0o644))

	code := run([]string{"--rules", rulesPath, "--silent", filepath.Join(dir, "missing.pyc"), filepath.Join(dir, "out.pyc")})
	assert.Equal(t, exitInputMissing, code)
}
