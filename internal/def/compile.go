package def

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/token"
)

// CompileError reports a malformed CUE machine definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// CompileMachine parses a CUE value into a Definition.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
//
// The value should be the machine struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`machine: { ... }`)
//	def, err := CompileMachine(v.LookupPath(cue.ParsePath("machine")))
//
// CompileMachine checks shape only; cross-reference checks (unknown states,
// duplicate triggers) live in Validate.
func CompileMachine(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, &CompileError{Message: err.Error(), Pos: v.Pos()}
	}

	d := &Definition{}

	nameVal := v.LookupPath(cue.ParsePath("name"))
	if !nameVal.Exists() {
		return nil, &CompileError{Field: "name", Message: "name is required", Pos: v.Pos()}
	}
	name, err := nameVal.String()
	if err != nil {
		return nil, &CompileError{Field: "name", Message: err.Error(), Pos: nameVal.Pos()}
	}
	d.Name = canonicalName(name)

	d.States, err = parseNameList(v, "states")
	if err != nil {
		return nil, err
	}
	d.Messages, err = parseNameList(v, "messages")
	if err != nil {
		return nil, err
	}

	trVal := v.LookupPath(cue.ParsePath("transitions"))
	if !trVal.Exists() {
		return nil, &CompileError{Field: "transitions", Message: "transitions is required", Pos: v.Pos()}
	}
	iter, err := trVal.List()
	if err != nil {
		return nil, &CompileError{Field: "transitions", Message: err.Error(), Pos: trVal.Pos()}
	}
	for i := 0; iter.Next(); i++ {
		tr, err := parseTransition(iter.Value(), i)
		if err != nil {
			return nil, err
		}
		d.Transitions = append(d.Transitions, tr)
	}

	return d, nil
}

// parseNameList reads a required list of strings, NFC-normalized.
func parseNameList(v cue.Value, field string) ([]string, error) {
	val := v.LookupPath(cue.ParsePath(field))
	if !val.Exists() {
		return nil, &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	iter, err := val.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: err.Error(), Pos: val.Pos()}
	}

	var names []string
	for i := 0; iter.Next(); i++ {
		s, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: err.Error(),
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, canonicalName(s))
	}
	return names, nil
}

// parseTransition parses one element of the transitions list.
func parseTransition(v cue.Value, idx int) (Transition, error) {
	tr := Transition{}
	field := func(name string) string {
		return fmt.Sprintf("transitions[%d].%s", idx, name)
	}

	var err error
	if tr.From, err = requiredString(v, "from", field("from")); err != nil {
		return tr, err
	}
	if tr.On, err = requiredString(v, "on", field("on")); err != nil {
		return tr, err
	}

	toVal := v.LookupPath(cue.ParsePath("to"))
	if toVal.Exists() {
		to, err := toVal.String()
		if err != nil {
			return tr, &CompileError{Field: field("to"), Message: err.Error(), Pos: toVal.Pos()}
		}
		tr.To = canonicalName(to)
	}

	termVal := v.LookupPath(cue.ParsePath("terminal"))
	if termVal.Exists() {
		term, err := termVal.Bool()
		if err != nil {
			return tr, &CompileError{Field: field("terminal"), Message: err.Error(), Pos: termVal.Pos()}
		}
		tr.Terminal = term
	}

	emitVal := v.LookupPath(cue.ParsePath("emit"))
	if emitVal.Exists() {
		iter, err := emitVal.List()
		if err != nil {
			return tr, &CompileError{Field: field("emit"), Message: err.Error(), Pos: emitVal.Pos()}
		}
		for iter.Next() {
			s, err := iter.Value().String()
			if err != nil {
				return tr, &CompileError{Field: field("emit"), Message: err.Error(), Pos: iter.Value().Pos()}
			}
			tr.Emit = append(tr.Emit, canonicalName(s))
		}
	}

	outVal := v.LookupPath(cue.ParsePath("outcome"))
	if outVal.Exists() {
		out, err := outVal.String()
		if err != nil {
			return tr, &CompileError{Field: field("outcome"), Message: err.Error(), Pos: outVal.Pos()}
		}
		tr.Outcome = Outcome(out)
	}

	return tr, nil
}

func requiredString(v cue.Value, path, field string) (string, error) {
	val := v.LookupPath(cue.ParsePath(path))
	if !val.Exists() {
		return "", &CompileError{Field: field, Message: path + " is required", Pos: v.Pos()}
	}
	s, err := val.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: err.Error(), Pos: val.Pos()}
	}
	return canonicalName(s), nil
}
