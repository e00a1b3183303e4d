package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s --%s--> %s\n", event.Seq, event.Pre, event.Msg, event.Post)
	}

	return buf.String()
}

// EvaluateAssertions checks every assertion against the result and returns
// the failure messages. An empty slice means all assertions held.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var failures []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.Finals, assertion, result.Trace)
		default:
			err = fmt.Errorf("unknown assertion type %q", assertion.Type)
		}
		if err != nil {
			failures = append(failures, err.Error())
		}
	}
	return failures
}

// assertTraceContains checks if the trace contains a dispatch of the given
// message, optionally constrained to a pre-state and post-state.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Msg != assertion.Msg {
			continue
		}
		if assertion.From != "" && event.Pre != assertion.From {
			continue
		}
		if assertion.To != "" && event.Post != assertion.To {
			continue
		}
		return nil
	}

	want := assertion.Msg
	if assertion.From != "" || assertion.To != "" {
		want = fmt.Sprintf("%s --%s--> %s", orAny(assertion.From), assertion.Msg, orAny(assertion.To))
	}
	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("transition %s", want),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks if messages were first dispatched in the given
// order. Dispatches don't need to be consecutive.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int, len(assertion.Msgs))
	for i, event := range trace {
		if _, seen := positions[event.Msg]; !seen {
			positions[event.Msg] = i
		}
	}

	prev := -1
	for _, msg := range assertion.Msgs {
		pos, ok := positions[msg]
		if !ok {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("messages in order %v", assertion.Msgs),
				Actual:   fmt.Sprintf("message %q never dispatched", msg),
				Trace:    trace,
			}
		}
		if pos <= prev {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("messages in order %v", assertion.Msgs),
				Actual:   fmt.Sprintf("message %q dispatched out of order", msg),
				Trace:    trace,
			}
		}
		prev = pos
	}
	return nil
}

// assertTraceCount checks that a message was dispatched exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Msg == assertion.Msg {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("message %q dispatched %d time(s)", assertion.Msg, assertion.Count),
			Actual:   fmt.Sprintf("dispatched %d time(s)", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks an automaton's final state, where "destroyed"
// matches an automaton that reached a terminal transition.
func assertFinalState(finals map[string]string, assertion Assertion, trace []TraceEvent) error {
	actual, ok := finals[assertion.Automaton]
	if !ok {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("automaton %q in state %q", assertion.Automaton, assertion.State),
			Actual:   "automaton not declared by scenario",
			Trace:    trace,
		}
	}

	if actual != assertion.State {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("automaton %q in state %q", assertion.Automaton, assertion.State),
			Actual:   fmt.Sprintf("state %q", actual),
			Trace:    trace,
		}
	}
	return nil
}

func orAny(name string) string {
	if name == "" {
		return "*"
	}
	return name
}
