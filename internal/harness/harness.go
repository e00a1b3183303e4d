package harness

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/roach88/efsm/internal/def"
	"github.com/roach88/efsm/internal/fsm"
	"github.com/roach88/efsm/internal/trace"
)

// defaultToken keeps traces deterministic when a scenario omits its own.
const defaultToken = "test-run-default"

// Harness drives one scenario against a live engine.
type Harness struct {
	def      *def.Definition
	engine   *fsm.Engine
	recorder *trace.Recorder
	autos    map[string]*fsm.Automaton
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh engine for isolation, with a recorder
// attached as the engine observer so every dispatched transition lands in
// the trace with a deterministic sequence number.
//
// Execution flow:
//  1. Load and validate the machine definition, compile its table
//  2. Create the declared automatons (all start in the New group)
//  3. Execute steps: sends enqueue messages, runs sweep the engine
//  4. Capture final states and the named trace
//  5. Evaluate assertions and return the result
//
// Run returns an error only for scripting problems - unreadable machine,
// unknown state or message names, sending to a destroyed automaton. Behavior
// under test (pass results, trace shape, final states) lands in the Result.
func Run(scenario *Scenario) (*Result, error) {
	result, _, err := RunRecorded(scenario)
	return result, err
}

// RunRecorded executes a scenario like Run and additionally returns the raw
// recorder events, for callers that persist traces.
func RunRecorded(scenario *Scenario) (*Result, []trace.Event, error) {
	d, err := def.Load(scenario.Machine)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load machine definition: %w", err)
	}
	if errs := d.Validate(); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, nil, fmt.Errorf("invalid machine definition: %s", strings.Join(msgs, "; "))
	}

	table, err := d.Table()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compile machine: %w", err)
	}

	token := scenario.Token
	if token == "" {
		token = defaultToken
	}
	rec := trace.NewRecorder(token)

	eng := fsm.NewEngine(table, fsm.WithObserver(rec.Observer()))
	defer eng.Close()

	h := &Harness{
		def:      d,
		engine:   eng,
		recorder: rec,
		autos:    make(map[string]*fsm.Automaton, len(scenario.Automatons)),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	for i, decl := range scenario.Automatons {
		initial, ok := d.StateID(decl.Initial)
		if !ok {
			return nil, nil, fmt.Errorf("automatons[%d]: unknown state %q", i, decl.Initial)
		}
		a, err := eng.NewAutomaton(initial)
		if err != nil {
			return nil, nil, fmt.Errorf("automatons[%d]: %w", i, err)
		}
		h.autos[decl.Name] = a
	}

	result := NewResult()
	if err := h.executeSteps(scenario.Steps, result); err != nil {
		return nil, nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for name, a := range h.autos {
		if a.Destroyed() {
			result.Finals[name] = DestroyedState
		} else {
			result.Finals[name] = d.StateName(a.State())
		}
	}

	for _, ev := range rec.Events() {
		result.Trace = append(result.Trace, TraceEvent{
			Seq:  ev.Seq,
			Pre:  d.StateName(ev.Pre),
			Msg:  d.MsgName(ev.Msg),
			Post: d.StateName(ev.Post),
		})
	}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, rec.Events(), nil
}

// executeSteps runs the flow: sends enqueue, runs sweep.
//
// A run step's pass results are recorded as "idle", "more_work", or "error"
// and checked against its expect list. An erroring pass does not abort the
// flow unless the step didn't expect it - the engine leaves the offending
// message queued, which later assertions can observe.
func (h *Harness) executeSteps(steps []Step, result *Result) error {
	for i, step := range steps {
		switch {
		case step.Send != nil:
			a := h.autos[step.Send.To]
			msg, ok := h.def.MsgType(step.Send.Msg)
			if !ok {
				return fmt.Errorf("steps[%d].send: unknown message %q", i, step.Send.Msg)
			}
			if err := a.Send(msg, nil); err != nil {
				return fmt.Errorf("steps[%d].send: %s: %w", i, step.Send.To, err)
			}
			h.logger.Info("message sent",
				"step", i,
				"to", step.Send.To,
				"msg", step.Send.Msg,
			)

		case step.Run > 0:
			for p := 0; p < step.Run; p++ {
				res, err := h.engine.RunPass()
				name := res.String()
				if err != nil {
					name = ResultError
				}
				result.PassResults = append(result.PassResults, name)

				if p < len(step.Expect) && step.Expect[p] != name {
					detail := ""
					if err != nil {
						detail = ": " + err.Error()
					}
					result.AddError(fmt.Sprintf(
						"steps[%d]: pass %d returned %s, expected %s%s",
						i, p, name, step.Expect[p], detail,
					))
				}

				h.logger.Info("pass completed",
					"step", i,
					"pass", p,
					"result", name,
					"error", err,
				)
			}
		}
	}
	return nil
}
