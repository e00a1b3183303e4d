package def

import (
	"fmt"

	"github.com/roach88/efsm/internal/fsm"
)

// StateID resolves a state name to its table index.
func (d *Definition) StateID(name string) (fsm.StateID, bool) {
	for i, s := range d.States {
		if s == name {
			return fsm.StateID(i), true
		}
	}
	return 0, false
}

// MsgType resolves a message name to its type tag.
func (d *Definition) MsgType(name string) (fsm.MsgType, bool) {
	for i, m := range d.Messages {
		if m == name {
			return fsm.MsgType(i), true
		}
	}
	return 0, false
}

// StateName resolves a table index back to its name; Terminal renders "_".
func (d *Definition) StateName(s fsm.StateID) string {
	if s == fsm.Terminal {
		return "_"
	}
	if int(s) < len(d.States) {
		return d.States[s]
	}
	return fmt.Sprintf("state-%d", s)
}

// MsgName resolves a message type tag back to its name.
func (d *Definition) MsgName(m fsm.MsgType) string {
	if int(m) >= 0 && int(m) < len(d.Messages) {
		return d.Messages[m]
	}
	return fmt.Sprintf("msg-%d", m)
}

// Rules builds the fsm rule list for this definition. Each transition gets a
// scripted action that emits the transition's messages back to the automaton
// and then applies its outcome. The transition itself rides along as the
// rule's opaque data.
//
// Definitions with unresolved references fail here; run Validate first for
// the full report.
func (d *Definition) Rules() ([]fsm.Rule, error) {
	rules := make([]fsm.Rule, 0, len(d.Transitions))

	for i := range d.Transitions {
		tr := &d.Transitions[i]

		from, ok := d.StateID(tr.From)
		if !ok {
			return nil, fmt.Errorf("transition %d: unknown state %q", i, tr.From)
		}
		on, ok := d.MsgType(tr.On)
		if !ok {
			return nil, fmt.Errorf("transition %d: unknown message %q", i, tr.On)
		}

		next := fsm.Terminal
		if !tr.Terminal {
			next, ok = d.StateID(tr.To)
			if !ok {
				return nil, fmt.Errorf("transition %d: unknown state %q", i, tr.To)
			}
		}

		emit := make([]fsm.MsgType, 0, len(tr.Emit))
		for _, name := range tr.Emit {
			m, ok := d.MsgType(name)
			if !ok {
				return nil, fmt.Errorf("transition %d: unknown message %q", i, name)
			}
			emit = append(emit, m)
		}

		rules = append(rules, fsm.Rule{
			Current: from,
			Msg:     on,
			Action:  scriptedAction(emit, tr.Outcome, tr.From+"/"+tr.On),
			Data:    tr,
			Next:    next,
		})
	}

	return rules, nil
}

// Table compiles the definition's rules into an fsm table.
func (d *Definition) Table() (*fsm.Table, error) {
	rules, err := d.Rules()
	if err != nil {
		return nil, err
	}
	return fsm.Compile(rules)
}

// Graph renders the definition as dot, using its declared names.
func (d *Definition) Graph() (string, error) {
	table, err := d.Table()
	if err != nil {
		return "", err
	}
	return fsm.ExportGraph(table, d.States, d.Messages), nil
}

// scriptedAction runs a declarative transition: emit first, then outcome.
// Emitted messages are queued like any other send, so they surface on the
// pass after the one that fired this action.
func scriptedAction(emit []fsm.MsgType, outcome Outcome, label string) fsm.ActionFunc {
	return func(a *fsm.Automaton, hint, data any, msg fsm.MsgType, payload any) (fsm.Outcome, error) {
		for _, m := range emit {
			if err := a.Send(m, nil); err != nil {
				return fsm.Continue, err
			}
		}
		switch outcome {
		case OutcomeDestroy:
			return fsm.Destroy, nil
		case OutcomeFail:
			return fsm.Continue, fmt.Errorf("transition %s scripted to fail", label)
		default:
			return fsm.Continue, nil
		}
	}
}
