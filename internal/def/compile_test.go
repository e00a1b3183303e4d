package def

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// compileString compiles a CUE snippet's top-level machine field.
func compileString(t *testing.T, src string) (*Definition, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileMachine(v.LookupPath(cue.ParsePath("machine")))
}

const chainCUE = `
machine: {
	name: "chain"
	states: ["A", "B", "D"]
	messages: ["msg1", "msg2", "msg3"]
	transitions: [
		{from: "A", on: "msg1", to: "B", emit: ["msg2"]},
		{from: "B", on: "msg2", to: "D", emit: ["msg3"]},
		{from: "D", on: "msg3", terminal: true, outcome: "destroy"},
	]
}
`

func TestCompileMachine_FullDefinition(t *testing.T) {
	d, err := compileString(t, chainCUE)
	require.NoError(t, err)

	assert.Equal(t, "chain", d.Name)
	assert.Equal(t, []string{"A", "B", "D"}, d.States)
	assert.Equal(t, []string{"msg1", "msg2", "msg3"}, d.Messages)
	require.Len(t, d.Transitions, 3)

	assert.Equal(t, Transition{From: "A", On: "msg1", To: "B", Emit: []string{"msg2"}}, d.Transitions[0])
	assert.Equal(t, Transition{From: "D", On: "msg3", Terminal: true, Outcome: OutcomeDestroy}, d.Transitions[2])
}

func TestCompileMachine_MissingName(t *testing.T) {
	_, err := compileString(t, `
machine: {
	states: ["A"]
	messages: ["m"]
	transitions: []
}
`)
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "name", ce.Field)
}

func TestCompileMachine_MissingStates(t *testing.T) {
	_, err := compileString(t, `
machine: {
	name: "m"
	messages: ["m"]
	transitions: []
}
`)
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "states", ce.Field)
}

func TestCompileMachine_TransitionMissingFrom(t *testing.T) {
	_, err := compileString(t, `
machine: {
	name: "m"
	states: ["A"]
	messages: ["go"]
	transitions: [{on: "go", to: "A"}]
}
`)
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "transitions[0].from", ce.Field)
}

func TestCompileMachine_NamesAreNFCNormalized(t *testing.T) {
	// "café" with a combining acute accent normalizes to the composed form.
	d, err := compileString(t, `
machine: {
	name: "café"
	states: ["A"]
	messages: ["m"]
	transitions: []
}
`)
	require.NoError(t, err)
	assert.Equal(t, "café", d.Name)
}
