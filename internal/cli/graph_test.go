package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainDot = `digraph G {
  A -> B [label="msg1"];
  B -> D [label="msg2"];
  D -> _ [label="msg3"];
}
`

func TestGraph_Stdout(t *testing.T) {
	out, _, err := execute(t, "graph", "testdata/chain.cue")
	require.NoError(t, err)
	assert.Equal(t, chainDot, out)
}

func TestGraph_JSON(t *testing.T) {
	out, _, err := execute(t, "graph", "testdata/chain.cue", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   GraphResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "chain", resp.Data.Machine)
	assert.Equal(t, chainDot, resp.Data.Dot)
}

func TestGraph_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.dot")

	out, _, err := execute(t, "graph", "testdata/chain.cue", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ graph written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, chainDot, string(data))
}

func TestGraph_InvalidMachine(t *testing.T) {
	_, _, err := execute(t, "graph", "testdata/dup.cue")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestGraph_MissingFile(t *testing.T) {
	_, _, err := execute(t, "graph", "testdata/missing.cue")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
