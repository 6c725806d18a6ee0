package harness

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioFailure describes one failed scenario in a suite run.
type ScenarioFailure struct {
	// Scenario is the scenario name, empty when loading failed.
	Scenario string `json:"scenario,omitempty"`

	// Path is the scenario file.
	Path string `json:"path"`

	// Error says what went wrong: a load error, an execution error,
	// or the failed expectations joined together.
	Error string `json:"error"`
}

// SuiteResult summarizes a directory of scenarios.
type SuiteResult struct {
	Total    int               `json:"total"`
	Passed   int               `json:"passed"`
	Failed   int               `json:"failed"`
	Failures []ScenarioFailure `json:"failures,omitempty"`
}

// Pass reports whether every scenario in the suite passed.
func (s *SuiteResult) Pass() bool {
	return s.Failed == 0
}

// RunSuite loads and runs every .yaml and .yml scenario under dir, in
// name order. It returns an error when no scenario files are found;
// individual scenario failures land in the result.
func RunSuite(ctx context.Context, dir string) (*SuiteResult, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("listing scenarios: %w", err)
		}
		paths = append(paths, matches...)
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found under %s", dir)
	}

	suite := &SuiteResult{}
	for _, path := range paths {
		suite.Total++

		scenario, err := LoadScenario(path)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Path:  path,
				Error: err.Error(),
			})
			continue
		}

		result, err := Run(ctx, scenario)
		if err != nil {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Error:    err.Error(),
			})
			continue
		}
		if !result.Pass {
			suite.Failed++
			suite.Failures = append(suite.Failures, ScenarioFailure{
				Scenario: scenario.Name,
				Path:     path,
				Error:    strings.Join(result.Errors, "; "),
			})
			continue
		}

		suite.Passed++
	}
	return suite, nil
}
