package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/apflow/internal/document"
)

// RunWithGolden executes a scenario and compares the resulting session
// document against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(t.Context(), scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's session document, rendered as wire
// JSON, against the named golden file. Useful when a test has already
// run the scenario and wants the snapshot comparison on its own.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	snapshot, err := document.Encode(result.Flow, document.FormatJSON)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, snapshot)
	return nil
}
