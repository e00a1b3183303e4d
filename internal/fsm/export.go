package fsm

import (
	"fmt"
	"strings"
)

// ExportGraph renders a compiled table as a graphviz dot document.
//
// Both name slices are positional: stateNames must cover the table's full
// state-index space and msgNames every message type the table references.
// Terminal targets render as the fixed placeholder "_".
//
// States appear in index order and transitions in table order. The exact
// formatting - two-space indent, quoted label, trailing semicolon and
// newline - is part of the contract for tooling that consumes the output
// byte-for-byte:
//
//	digraph G {
//	  A -> B [label="msg1"];
//	}
func ExportGraph(t *Table, stateNames, msgNames []string) string {
	var b strings.Builder

	b.WriteString("digraph G {\n")

	for i := range t.states {
		for _, tr := range t.states[i].transitions {
			next := "_"
			if tr.next != Terminal {
				next = stateNames[tr.next]
			}
			fmt.Fprintf(&b, "  %s -> %s [label=\"%s\"];\n", stateNames[i], next, msgNames[tr.msg])
		}
	}

	b.WriteString("}\n")

	return b.String()
}
