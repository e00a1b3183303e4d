package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_ChainLifecycle(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/chain_lifecycle.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"more_work", "more_work", "idle", "idle"}, result.PassResults)
	assert.Equal(t, map[string]string{"worker": "destroyed", "bystander": "A"}, result.Finals)

	require.Len(t, result.Trace, 3)
	assert.Equal(t, TraceEvent{Seq: 1, Pre: "A", Msg: "msg1", Post: "B"}, result.Trace[0])
	assert.Equal(t, TraceEvent{Seq: 2, Pre: "B", Msg: "msg2", Post: "D"}, result.Trace[1])
	assert.Equal(t, TraceEvent{Seq: 3, Pre: "D", Msg: "msg3", Post: "_"}, result.Trace[2])
}

func TestRun_UnhandledMessage(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/unhandled_message.yaml")
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.True(t, result.Pass, "errors: %v", result.Errors)
	assert.Equal(t, []string{"error"}, result.PassResults)
	assert.Empty(t, result.Trace)
	assert.Equal(t, "A", result.Finals["worker"])
}

func TestRun_ExpectMismatch(t *testing.T) {
	s := &Scenario{
		Name:        "expect_mismatch",
		Description: "pass result differs from expect clause",
		Machine:     filepath.Join("testdata", "machines", "chain.cue"),
		Automatons:  []AutomatonDecl{{Name: "worker", Initial: "A"}},
		Steps: []Step{
			{Send: &SendStep{To: "worker", Msg: "msg1"}},
			{Run: 1, Expect: []string{"idle"}},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "pass 0 returned more_work, expected idle")
}

func TestRun_AssertionFailure(t *testing.T) {
	s := &Scenario{
		Name:        "assertion_failure",
		Description: "final state differs from assertion",
		Machine:     filepath.Join("testdata", "machines", "chain.cue"),
		Automatons:  []AutomatonDecl{{Name: "worker", Initial: "A"}},
		Steps:       []Step{{Run: 1}},
		Assertions: []Assertion{
			{Type: AssertFinalState, Automaton: "worker", State: "B"},
		},
	}

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], `state "A"`)
}

func TestRun_UnknownInitialState(t *testing.T) {
	s := &Scenario{
		Name:        "bad_initial",
		Description: "initial state not declared by the machine",
		Machine:     filepath.Join("testdata", "machines", "chain.cue"),
		Automatons:  []AutomatonDecl{{Name: "worker", Initial: "Z"}},
		Steps:       []Step{{Run: 1}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown state "Z"`)
}

func TestRun_UnknownMessage(t *testing.T) {
	s := &Scenario{
		Name:        "bad_message",
		Description: "send references a message the machine never declares",
		Machine:     filepath.Join("testdata", "machines", "chain.cue"),
		Automatons:  []AutomatonDecl{{Name: "worker", Initial: "A"}},
		Steps:       []Step{{Send: &SendStep{To: "worker", Msg: "nope"}}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown message "nope"`)
}

func TestRun_InvalidMachine(t *testing.T) {
	dir := t.TempDir()
	machine := `machine: {
	name: "dup"
	states: ["A", "A"]
	messages: ["go"]
	transitions: [{from: "A", on: "go", to: "A"}]
}
`
	path := filepath.Join(dir, "dup.cue")
	require.NoError(t, os.WriteFile(path, []byte(machine), 0o644))

	s := &Scenario{
		Name:        "invalid_machine",
		Description: "machine fails validation",
		Machine:     path,
		Automatons:  []AutomatonDecl{{Name: "worker", Initial: "A"}},
		Steps:       []Step{{Run: 1}},
	}

	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid machine definition")
}
