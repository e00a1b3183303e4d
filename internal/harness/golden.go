package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete observable outcome of a scenario
// execution for golden file comparison. JSON field order is fixed and map
// keys marshal sorted, so the serialization is deterministic.
type TraceSnapshot struct {
	ScenarioName string            `json:"scenario_name"`
	Token        string            `json:"token,omitempty"`
	PassResults  []string          `json:"pass_results"`
	Finals       map[string]string `json:"finals"`
	Trace        []TraceEvent      `json:"trace"`
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns an error if scenario execution fails; trace mismatches fail the
// test via goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}

	return AssertGolden(t, scenario, result)
}

// AssertGolden compares an already-computed result against the scenario's
// golden file. Useful when the caller wants to inspect the result before
// pinning it.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Token:        scenario.Token,
		PassResults:  result.PassResults,
		Finals:       result.Finals,
		Trace:        result.Trace,
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return nil
}
