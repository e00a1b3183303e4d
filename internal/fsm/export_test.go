package fsm

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exportTable(t *testing.T) *Table {
	t.Helper()
	table, err := Compile([]Rule{
		{Current: 0, Msg: 0, Action: noop, Next: 1},
		{Current: 1, Msg: 1, Action: noop, Next: 2},
		{Current: 2, Msg: 2, Action: noop, Next: Terminal},
	})
	require.NoError(t, err)
	return table
}

func TestExportGraph_ByteExactFormat(t *testing.T) {
	table := exportTable(t)

	out := ExportGraph(table,
		[]string{"A", "B", "D"},
		[]string{"msg1", "msg2", "msg3"},
	)

	want := "digraph G {\n" +
		"  A -> B [label=\"msg1\"];\n" +
		"  B -> D [label=\"msg2\"];\n" +
		"  D -> _ [label=\"msg3\"];\n" +
		"}\n"
	assert.Equal(t, want, out)
}

func TestExportGraph_EmptyTable(t *testing.T) {
	table, err := Compile(nil)
	require.NoError(t, err)

	out := ExportGraph(table, []string{"ONLY"}, nil)
	assert.Equal(t, "digraph G {\n}\n", out)
}

func TestExportGraph_TransitionsInTableOrder(t *testing.T) {
	// Two transitions out of one state keep rule order.
	table, err := Compile([]Rule{
		{Current: 0, Msg: 1, Action: noop, Next: 1},
		{Current: 0, Msg: 0, Action: noop, Next: Terminal},
	})
	require.NoError(t, err)

	out := ExportGraph(table, []string{"S0", "S1"}, []string{"m0", "m1"})
	want := "digraph G {\n" +
		"  S0 -> S1 [label=\"m1\"];\n" +
		"  S0 -> _ [label=\"m0\"];\n" +
		"}\n"
	assert.Equal(t, want, out)
}

func TestExportGraph_Golden(t *testing.T) {
	table := exportTable(t)

	out := ExportGraph(table,
		[]string{"STATE_A", "STATE_B", "STATE_DESTROY"},
		[]string{"MSG_A", "MSG_B", "MSG_DESTROY"},
	)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "basic_graph", []byte(out))
}
