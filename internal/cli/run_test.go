package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/efsm/internal/harness"
)

func TestRun_PassingScenario(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/chain_lifecycle.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "✓ chain_lifecycle")
	assert.Contains(t, out, "passes: [more_work more_work idle idle]")
	assert.Contains(t, out, "[1] A --msg1--> B")
	assert.Contains(t, out, "[3] D --msg3--> _")
	assert.Contains(t, out, "worker: destroyed")
}

func TestRun_PassingScenarioJSON(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/chain_lifecycle.yaml", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string         `json:"status"`
		Data   harness.Result `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Pass)
	assert.Len(t, resp.Data.Trace, 3)
}

func TestRun_FailingScenario(t *testing.T) {
	out, _, err := execute(t, "run", "testdata/failing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ failing")
	assert.Contains(t, out, "Assertion failed: final_state")
}

func TestRun_MissingScenario(t *testing.T) {
	_, _, err := execute(t, "run", "testdata/missing.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestRun_PersistsTrace(t *testing.T) {
	db := filepath.Join(t.TempDir(), "efsm.db")

	_, _, err := execute(t, "run", "testdata/chain_lifecycle.yaml", "--db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "cli-chain-1")
}

func TestRun_TokenOverride(t *testing.T) {
	db := filepath.Join(t.TempDir(), "efsm.db")

	_, _, err := execute(t, "run", "testdata/chain_lifecycle.yaml", "--db", db, "--token", "override-7")
	require.NoError(t, err)

	out, _, err := execute(t, "trace", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "override-7")
	assert.NotContains(t, out, "cli-chain-1")
}
