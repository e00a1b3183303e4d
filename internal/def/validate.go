package def

import "fmt"

// Validation error codes (E200-E299)
const (
	ErrEmptyName         = "E201" // machine name is empty
	ErrNoStates          = "E202" // at least one state required
	ErrDuplicateState    = "E203" // duplicate state name
	ErrDuplicateMessage  = "E204" // duplicate message name
	ErrUnknownState      = "E205" // transition references unknown state
	ErrUnknownMessage    = "E206" // transition references unknown message
	ErrDuplicateTrigger  = "E207" // two transitions share (from, on)
	ErrTerminalMismatch  = "E208" // terminal/to/outcome disagreement
	ErrInvalidOutcome    = "E209" // outcome not continue|destroy|fail
)

// ValidationError represents one definition validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks a compiled definition for consistency.
// Returns all errors found (does not fail-fast).
//
// The core table dispatches first-match-wins on duplicate (state, message)
// pairs; authored definitions reject them here instead, since the shadowed
// transition can never fire.
func (d *Definition) Validate() []ValidationError {
	var errs []ValidationError

	if d.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "machine name is empty", Code: ErrEmptyName})
	}
	if len(d.States) == 0 {
		errs = append(errs, ValidationError{Field: "states", Message: "at least one state is required", Code: ErrNoStates})
	}

	states := make(map[string]bool, len(d.States))
	for i, s := range d.States {
		if states[s] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("states[%d]", i),
				Message: fmt.Sprintf("duplicate state %q", s),
				Code:    ErrDuplicateState,
			})
		}
		states[s] = true
	}

	msgs := make(map[string]bool, len(d.Messages))
	for i, m := range d.Messages {
		if msgs[m] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("messages[%d]", i),
				Message: fmt.Sprintf("duplicate message %q", m),
				Code:    ErrDuplicateMessage,
			})
		}
		msgs[m] = true
	}

	triggers := make(map[string]bool, len(d.Transitions))
	for i, tr := range d.Transitions {
		field := func(name string) string {
			return fmt.Sprintf("transitions[%d].%s", i, name)
		}

		if !states[tr.From] {
			errs = append(errs, ValidationError{
				Field:   field("from"),
				Message: fmt.Sprintf("unknown state %q", tr.From),
				Code:    ErrUnknownState,
			})
		}
		if !msgs[tr.On] {
			errs = append(errs, ValidationError{
				Field:   field("on"),
				Message: fmt.Sprintf("unknown message %q", tr.On),
				Code:    ErrUnknownMessage,
			})
		}

		trigger := tr.From + "\x00" + tr.On
		if triggers[trigger] {
			errs = append(errs, ValidationError{
				Field:   field("on"),
				Message: fmt.Sprintf("duplicate trigger (%s, %s): shadowed transition can never fire", tr.From, tr.On),
				Code:    ErrDuplicateTrigger,
			})
		}
		triggers[trigger] = true

		switch {
		case tr.Terminal && tr.To != "":
			errs = append(errs, ValidationError{
				Field:   field("to"),
				Message: "terminal transition must not name a next state",
				Code:    ErrTerminalMismatch,
			})
		case !tr.Terminal && tr.To == "":
			errs = append(errs, ValidationError{
				Field:   field("to"),
				Message: "transition must name a next state or be terminal",
				Code:    ErrTerminalMismatch,
			})
		case !tr.Terminal && tr.To != "" && !states[tr.To]:
			errs = append(errs, ValidationError{
				Field:   field("to"),
				Message: fmt.Sprintf("unknown state %q", tr.To),
				Code:    ErrUnknownState,
			})
		}

		switch tr.Outcome {
		case "", OutcomeContinue, OutcomeFail:
			// The dispatcher rejects a destroy on a concrete next state
			// at run time; terminal transitions must opt into destroy
			// here so that error is impossible to author.
			if tr.Terminal {
				errs = append(errs, ValidationError{
					Field:   field("outcome"),
					Message: "terminal transition requires outcome \"destroy\"",
					Code:    ErrTerminalMismatch,
				})
			}
		case OutcomeDestroy:
			if !tr.Terminal {
				errs = append(errs, ValidationError{
					Field:   field("outcome"),
					Message: "destroy outcome requires a terminal transition",
					Code:    ErrTerminalMismatch,
				})
			}
		default:
			errs = append(errs, ValidationError{
				Field:   field("outcome"),
				Message: fmt.Sprintf("invalid outcome %q", tr.Outcome),
				Code:    ErrInvalidOutcome,
			})
		}

		for j, em := range tr.Emit {
			if !msgs[em] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("transitions[%d].emit[%d]", i, j),
					Message: fmt.Sprintf("unknown message %q", em),
					Code:    ErrUnknownMessage,
				})
			}
		}
	}

	return errs
}
