package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
// Scenarios drive a machine definition through a scripted flow of sends and
// passes, then assert on the resulting trace and final automaton states.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Machine is the path to the CUE machine definition.
	// Relative paths are resolved against the scenario file location.
	Machine string `yaml:"machine"`

	// Token is an optional fixed run token for deterministic traces.
	// If empty, defaults to "test-run-default" so golden files stay stable.
	Token string `yaml:"token,omitempty"`

	// Automatons declares the automatons created before the flow starts,
	// each with a name used by steps and assertions.
	Automatons []AutomatonDecl `yaml:"automatons"`

	// Steps contains the main flow: message sends and engine passes.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions"`
}

// AutomatonDecl declares a named automaton and its initial state.
type AutomatonDecl struct {
	Name    string `yaml:"name"`
	Initial string `yaml:"initial"`
}

// Step is one flow step. Exactly one of Send or Run must be set.
type Step struct {
	// Send delivers a message to a named automaton's mailbox.
	Send *SendStep `yaml:"send,omitempty"`

	// Run executes this many engine passes.
	Run int `yaml:"run,omitempty"`

	// Expect lists the expected result of each pass, in order:
	// "idle", "more_work", or "error". Only valid on run steps; when
	// present it must name one result per pass.
	Expect []string `yaml:"expect,omitempty"`
}

// SendStep names the target automaton and the message to deliver.
type SendStep struct {
	To  string `yaml:"to"`
	Msg string `yaml:"msg"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": Check a transition appears in the trace
	// - "trace_order": Check messages were dispatched in order
	// - "trace_count": Check a message was dispatched exactly N times
	// - "final_state": Check an automaton's final state
	Type string `yaml:"type"`

	// Msg is the message name (used by trace_contains, trace_count).
	Msg string `yaml:"msg,omitempty"`

	// From is the expected pre-state (optional, used by trace_contains).
	From string `yaml:"from,omitempty"`

	// To is the expected post-state (optional, used by trace_contains).
	// Terminal transitions render as "_".
	To string `yaml:"to,omitempty"`

	// Msgs is the expected dispatch order (used by trace_order).
	// Messages need not be consecutive in the trace.
	Msgs []string `yaml:"msgs,omitempty"`

	// Count is the expected number of dispatches (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Automaton names the automaton to check (used by final_state).
	Automaton string `yaml:"automaton,omitempty"`

	// State is the expected final state name, or "destroyed"
	// (used by final_state).
	State string `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Pass result names accepted in a run step's expect list.
const (
	ResultIdle     = "idle"
	ResultMoreWork = "more_work"
	ResultError    = "error"
)

// DestroyedState is the final_state value matching a destroyed automaton.
const DestroyedState = "destroyed"

// LoadScenario reads and parses a scenario YAML file, resolving the machine
// path relative to the scenario file. Returns an error if the file doesn't
// exist, is malformed, contains unknown fields (typos), or is missing
// required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Machine != "" && !filepath.IsAbs(scenario.Machine) {
		scenario.Machine = filepath.Join(filepath.Dir(path), scenario.Machine)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Machine == "" {
		return fmt.Errorf("machine is required")
	}
	if _, err := os.Stat(s.Machine); os.IsNotExist(err) {
		return fmt.Errorf("machine definition not found: %s", s.Machine)
	}

	if len(s.Automatons) == 0 {
		return fmt.Errorf("automatons list is required and must be non-empty")
	}
	seen := make(map[string]bool, len(s.Automatons))
	for i, decl := range s.Automatons {
		if decl.Name == "" {
			return fmt.Errorf("automatons[%d]: name is required", i)
		}
		if decl.Initial == "" {
			return fmt.Errorf("automatons[%d]: initial is required", i)
		}
		if seen[decl.Name] {
			return fmt.Errorf("automatons[%d]: duplicate name %q", i, decl.Name)
		}
		seen[decl.Name] = true
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, step := range s.Steps {
		if err := validateStep(i, &step, seen); err != nil {
			return err
		}
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}
	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion, seen); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks a single flow step.
func validateStep(index int, step *Step, automatons map[string]bool) error {
	switch {
	case step.Send != nil && step.Run > 0:
		return fmt.Errorf("steps[%d]: send and run are mutually exclusive", index)
	case step.Send != nil:
		if step.Send.To == "" {
			return fmt.Errorf("steps[%d].send: to is required", index)
		}
		if !automatons[step.Send.To] {
			return fmt.Errorf("steps[%d].send: unknown automaton %q", index, step.Send.To)
		}
		if step.Send.Msg == "" {
			return fmt.Errorf("steps[%d].send: msg is required", index)
		}
		if len(step.Expect) > 0 {
			return fmt.Errorf("steps[%d]: expect is only valid on run steps", index)
		}
	case step.Run > 0:
		if len(step.Expect) > 0 && len(step.Expect) != step.Run {
			return fmt.Errorf("steps[%d]: expect names %d results for %d passes", index, len(step.Expect), step.Run)
		}
		for j, want := range step.Expect {
			switch want {
			case ResultIdle, ResultMoreWork, ResultError:
			default:
				return fmt.Errorf("steps[%d].expect[%d]: unknown result %q", index, j, want)
			}
		}
	default:
		return fmt.Errorf("steps[%d]: exactly one of send or run is required", index)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion, automatons map[string]bool) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Msg == "" {
			return fmt.Errorf("assertions[%d]: msg is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Msgs) == 0 {
			return fmt.Errorf("assertions[%d]: msgs list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Msg == "" {
			return fmt.Errorf("assertions[%d]: msg is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Automaton == "" {
			return fmt.Errorf("assertions[%d]: automaton is required for final_state", index)
		}
		if !automatons[a.Automaton] {
			return fmt.Errorf("assertions[%d]: unknown automaton %q", index, a.Automaton)
		}
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
