package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(a *Automaton, hint, data any, msg MsgType, payload any) (Outcome, error) {
	return Continue, nil
}

func TestCompile_StateCountFromMaxIndex(t *testing.T) {
	table, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: 1},
		{Current: 1, Msg: 1, Action: noop, Next: 5},
	})
	require.NoError(t, err)

	// 1 + max index seen anywhere, including Next.
	assert.Equal(t, 6, table.StateCount())
}

func TestCompile_EmptyRuleList(t *testing.T) {
	table, err := Compile(nil)
	require.NoError(t, err)

	// No rules still yields a single empty state.
	assert.Equal(t, 1, table.StateCount())
	assert.Equal(t, 0, table.TransitionCount(0))
}

func TestCompile_PreservesRuleOrderPerState(t *testing.T) {
	table, err := Compile([]Rule{
		{Current: 0, Msg: 3, Action: noop, Next: 1},
		{Current: 1, Msg: 0, Action: noop, Next: 0},
		{Current: 0, Msg: 1, Action: noop, Next: Terminal},
		{Current: 0, Msg: 2, Action: noop, Next: 1},
	})
	require.NoError(t, err)

	require.Equal(t, 3, table.TransitionCount(0))
	require.Equal(t, 1, table.TransitionCount(1))

	// Same-state rules keep their input order.
	assert.Equal(t, MsgType(3), table.states[0].transitions[0].msg)
	assert.Equal(t, MsgType(1), table.states[0].transitions[1].msg)
	assert.Equal(t, MsgType(2), table.states[0].transitions[2].msg)
}

func TestCompile_RulelessStatesAreEmpty(t *testing.T) {
	table, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: 4},
	})
	require.NoError(t, err)

	require.Equal(t, 5, table.StateCount())
	for s := 1; s < 5; s++ {
		assert.Equal(t, 0, table.TransitionCount(StateID(s)))
	}
}

func TestCompile_MissingAction(t *testing.T) {
	_, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: nil, Next: 1},
	})
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "action", ce.Field)
	assert.Equal(t, 0, ce.Index)
}

func TestCompile_NegativeCurrentState(t *testing.T) {
	_, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: 1},
		{Current: -1, Msg: 0, Action: noop, Next: 1},
	})
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "current", ce.Field)
	assert.Equal(t, 1, ce.Index)
}

func TestCompile_NextBelowTerminal(t *testing.T) {
	_, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: -2},
	})
	require.Error(t, err)

	ce, ok := err.(*CompileError)
	require.True(t, ok)
	assert.Equal(t, "next", ce.Field)
}

func TestTable_Lookup_FirstMatchWins(t *testing.T) {
	table, err := Compile([]Rule{
		{Current: 0, Msg: 7, Action: noop, Next: 1},
		{Current: 0, Msg: 7, Action: noop, Next: 2},
	})
	require.NoError(t, err)

	tr := table.lookup(0, 7)
	require.NotNil(t, tr)
	assert.Equal(t, StateID(1), tr.next)
}

func TestTable_Lookup_NoMatch(t *testing.T) {
	table, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: 1},
	})
	require.NoError(t, err)

	assert.Nil(t, table.lookup(0, 99))
	assert.Nil(t, table.lookup(1, 0))
	assert.Nil(t, table.lookup(Terminal, 0))
}
