// Package harness provides conformance testing for machine definitions.
//
// The harness loads a CUE machine definition, runs it on a real engine with
// a deterministic recorder attached, executes a scripted scenario, and
// validates the resulting trace and final automaton states.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	machine: path/to/machine.cue
//	token: fixed-run-token
//	automatons:
//	  - name: worker
//	    initial: A
//	steps:
//	  - send: {to: worker, msg: msg1}
//	  - run: 3
//	    expect: [more_work, more_work, idle]
//	assertions:
//	  - type: trace_contains
//	    msg: msg2
//	    from: B
//	  - type: trace_order
//	    msgs: [msg1, msg2, msg3]
//	  - type: final_state
//	    automaton: worker
//	    state: destroyed
//
// The machine path is resolved relative to the scenario file. Traces can be
// pinned with golden files via RunWithGolden; regenerate them with:
//
//	go test ./internal/harness -update
package harness
