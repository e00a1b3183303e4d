package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_ChainLifecycle(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/chain_lifecycle.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}

func TestRunWithGolden_UnhandledMessage(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unhandled_message.yaml")
	require.NoError(t, err)
	require.NoError(t, RunWithGolden(t, s))
}
