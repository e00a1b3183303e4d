package def

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validChain() *Definition {
	return &Definition{
		Name:     "chain",
		States:   []string{"A", "B", "D"},
		Messages: []string{"msg1", "msg2", "msg3"},
		Transitions: []Transition{
			{From: "A", On: "msg1", To: "B", Emit: []string{"msg2"}},
			{From: "B", On: "msg2", To: "D", Emit: []string{"msg3"}},
			{From: "D", On: "msg3", Terminal: true, Outcome: OutcomeDestroy},
		},
	}
}

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_ValidDefinition(t *testing.T) {
	assert.Empty(t, validChain().Validate())
}

func TestValidate_EmptyName(t *testing.T) {
	d := validChain()
	d.Name = ""
	assert.Contains(t, codes(d.Validate()), ErrEmptyName)
}

func TestValidate_NoStates(t *testing.T) {
	d := &Definition{Name: "m"}
	assert.Contains(t, codes(d.Validate()), ErrNoStates)
}

func TestValidate_DuplicateStateAndMessage(t *testing.T) {
	d := validChain()
	d.States = append(d.States, "A")
	d.Messages = append(d.Messages, "msg1")

	got := codes(d.Validate())
	assert.Contains(t, got, ErrDuplicateState)
	assert.Contains(t, got, ErrDuplicateMessage)
}

func TestValidate_UnknownStateRefs(t *testing.T) {
	d := validChain()
	d.Transitions[0].From = "Z"
	d.Transitions[1].To = "Z"

	got := d.Validate()
	require.Len(t, got, 2)
	assert.Equal(t, ErrUnknownState, got[0].Code)
	assert.Equal(t, "transitions[0].from", got[0].Field)
	assert.Equal(t, ErrUnknownState, got[1].Code)
	assert.Equal(t, "transitions[1].to", got[1].Field)
}

func TestValidate_UnknownMessageRefs(t *testing.T) {
	d := validChain()
	d.Transitions[0].On = "nope"
	d.Transitions[1].Emit = []string{"missing"}

	got := codes(d.Validate())
	assert.Equal(t, []string{ErrUnknownMessage, ErrUnknownMessage}, got)
}

func TestValidate_DuplicateTrigger(t *testing.T) {
	d := validChain()
	d.Transitions = append(d.Transitions, Transition{From: "A", On: "msg1", To: "D"})

	got := d.Validate()
	require.Len(t, got, 1)
	assert.Equal(t, ErrDuplicateTrigger, got[0].Code)
}

func TestValidate_TerminalNamesNextState(t *testing.T) {
	d := validChain()
	d.Transitions[2].To = "A"

	got := codes(d.Validate())
	assert.Contains(t, got, ErrTerminalMismatch)
}

func TestValidate_NonTerminalMissingNextState(t *testing.T) {
	d := validChain()
	d.Transitions[0].To = ""

	got := codes(d.Validate())
	assert.Contains(t, got, ErrTerminalMismatch)
}

func TestValidate_DestroyRequiresTerminal(t *testing.T) {
	// The runtime InvalidDestroy error is unauthorable: a destroy outcome
	// on a concrete next state fails validation outright.
	d := validChain()
	d.Transitions[0].Outcome = OutcomeDestroy

	got := d.Validate()
	require.Len(t, got, 1)
	assert.Equal(t, ErrTerminalMismatch, got[0].Code)
}

func TestValidate_TerminalRequiresDestroy(t *testing.T) {
	d := validChain()
	d.Transitions[2].Outcome = OutcomeContinue

	got := codes(d.Validate())
	assert.Contains(t, got, ErrTerminalMismatch)
}

func TestValidate_InvalidOutcome(t *testing.T) {
	d := validChain()
	d.Transitions[0].Outcome = "explode"

	got := d.Validate()
	require.Len(t, got, 1)
	assert.Equal(t, ErrInvalidOutcome, got[0].Code)
}
