package fsm

import "fmt"

// StateID identifies a state by its dense, non-negative index into the table.
type StateID int

// Terminal is the sentinel next-state meaning "no further state". A
// transition targeting Terminal may only be taken by an action that returns
// Destroy.
const Terminal StateID = -1

// MsgType tags a message with the transition it should trigger.
type MsgType int

// Outcome is what an action tells the dispatcher to do next.
type Outcome int

const (
	// Continue advances the automaton to the transition's next state.
	Continue Outcome = iota
	// Destroy tears the automaton down. Only valid on a transition whose
	// next state is Terminal; anything else is an InvalidDestroy error.
	Destroy
)

// ActionFunc runs when a transition fires.
//
// It receives the automaton's public handle, the automaton's hint, the
// transition's opaque data, and the triggering message. The payload is
// caller-owned: the engine never inspects it and the action must not assume
// the engine manages its lifetime.
//
// A non-nil error aborts the current pass.
type ActionFunc func(a *Automaton, hint, transitionData any, msg MsgType, payload any) (Outcome, error)

// Rule is one row of the declarative transition list fed to Compile.
type Rule struct {
	Current StateID
	Msg     MsgType
	Action  ActionFunc
	Data    any
	Next    StateID
}

// transition is a compiled table entry. Immutable after Compile.
type transition struct {
	msg    MsgType
	action ActionFunc
	data   any
	next   StateID
}

// state is a list of outgoing transitions in original rule order.
type state struct {
	transitions []transition
}

// Table is the compiled transition table. It is read-only after Compile and
// shared by every automaton of one engine.
type Table struct {
	states []state
}

// CompileError reports a malformed rule list. No partial table is returned
// alongside it.
type CompileError struct {
	Index   int    // position of the offending rule
	Field   string // "current", "next" or "action"
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("rule %d: %s: %s", e.Index, e.Field, e.Message)
}

// Compile builds a Table from an ordered rule list.
//
// The state-index space is 1 + max(Current, Next) over all rules and never
// grows afterward. Each state's transition list collects the rules naming it
// as Current, preserving their relative order. States no rule names are valid
// and simply have no outgoing transitions.
//
// If a state has two rules for the same message type, only the first is ever
// reachable: dispatch is first-match-wins. Compile does not reject
// duplicates; the def package's validator does, for authored definitions.
//
// An empty rule list compiles to a table with a single empty state.
func Compile(rules []Rule) (*Table, error) {
	maxState := StateID(0)
	for i, r := range rules {
		if r.Current < 0 {
			return nil, &CompileError{Index: i, Field: "current", Message: "negative state index"}
		}
		if r.Next < Terminal {
			return nil, &CompileError{Index: i, Field: "next", Message: fmt.Sprintf("invalid state index %d", r.Next)}
		}
		if r.Action == nil {
			return nil, &CompileError{Index: i, Field: "action", Message: "missing action"}
		}
		if r.Current > maxState {
			maxState = r.Current
		}
		if r.Next > maxState {
			maxState = r.Next
		}
	}

	states := make([]state, maxState+1)
	for _, r := range rules {
		s := &states[r.Current]
		s.transitions = append(s.transitions, transition{
			msg:    r.Msg,
			action: r.Action,
			data:   r.Data,
			next:   r.Next,
		})
	}

	return &Table{states: states}, nil
}

// StateCount returns the size of the table's state-index space.
func (t *Table) StateCount() int {
	return len(t.states)
}

// TransitionCount returns the number of transitions out of one state.
// Out-of-range indices report zero.
func (t *Table) TransitionCount(s StateID) int {
	if s < 0 || int(s) >= len(t.states) {
		return 0
	}
	return len(t.states[s].transitions)
}

// lookup finds the first transition out of s matching msg, or nil.
func (t *Table) lookup(s StateID, msg MsgType) *transition {
	if s < 0 || int(s) >= len(t.states) {
		return nil
	}
	trs := t.states[s].transitions
	for i := range trs {
		if trs[i].msg == msg {
			return &trs[i]
		}
	}
	return nil
}
