// Package def compiles declarative machine definitions, authored in CUE,
// into fsm transition tables.
//
// A definition names its states and message types and lists transitions
// between them. Because actions are code, definition transitions carry a
// small script instead: which messages to emit back to the automaton when
// the transition fires, and whether the transition continues, destroys the
// automaton, or fails. That is enough to express self-driving machines for
// visualization, validation and scenario testing; applications embedding
// real behavior build []fsm.Rule directly.
package def

import "golang.org/x/text/unicode/norm"

// Outcome scripts what a declarative transition's action returns.
type Outcome string

const (
	// OutcomeContinue advances to the transition's target state.
	OutcomeContinue Outcome = "continue"
	// OutcomeDestroy tears the automaton down; requires a terminal
	// transition.
	OutcomeDestroy Outcome = "destroy"
	// OutcomeFail makes the action return an error, aborting the pass.
	OutcomeFail Outcome = "fail"
)

// Definition is a compiled machine definition. State and message order is
// declaration order; positions double as fsm indices.
type Definition struct {
	Name        string
	States      []string
	Messages    []string
	Transitions []Transition
}

// Transition is one declarative edge.
type Transition struct {
	From string
	On   string
	// To names the target state. Empty iff Terminal.
	To string
	// Terminal marks the fsm Terminal sentinel as the target.
	Terminal bool
	// Emit lists messages sent back to the same automaton when the
	// transition fires, in order.
	Emit []string
	// Outcome defaults to OutcomeContinue when empty.
	Outcome Outcome
}

// canonicalName NFC-normalizes an authored name so definitions written with
// different Unicode compositions compare equal.
func canonicalName(s string) string {
	return norm.NFC.String(s)
}
