package harness

// TraceEvent is one dispatched transition with its names resolved against
// the machine definition. Terminal post-states render as "_".
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Pre  string `json:"pre"`
	Msg  string `json:"msg"`
	Post string `json:"post"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions held.
	Pass bool `json:"pass"`

	// Trace contains every dispatched transition in order.
	Trace []TraceEvent `json:"trace"`

	// PassResults records the result of each engine pass, in order:
	// "idle", "more_work", or "error".
	PassResults []string `json:"pass_results"`

	// Finals maps automaton names to their final state name, or
	// "destroyed" for automatons that reached a terminal transition.
	Finals map[string]string `json:"finals"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		PassResults: []string{},
		Finals:      make(map[string]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
