package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/efsm/internal/def"
)

func TestValidate_ValidMachine(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/chain.cue")
	require.NoError(t, err)
	assert.Contains(t, out, `✓ machine "chain" valid`)
}

func TestValidate_ValidMachineJSON(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/chain.cue", "--format", "json")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidate_InvalidMachine(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/dup.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, def.ErrDuplicateState)
}

func TestValidate_InvalidMachineJSON(t *testing.T) {
	out, _, err := execute(t, "validate", "testdata/dup.cue", "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, def.ErrDuplicateState, resp.Error.Code)
}

func TestValidate_MissingFile(t *testing.T) {
	_, _, err := execute(t, "validate", "testdata/missing.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
