package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/harness"
)

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "test <scenarios-dir>",
		Short: "Run conformance scenarios",
		Long: `Run every YAML scenario under the directory through the edit-script
harness: load the starting document, apply the script through a real
editor session, and check the expected state, keys, diagnostic codes,
and renames.

Exit codes:
  0 - all scenarios passed
  1 - one or more scenarios failed
  2 - command error (no scenario files)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runScenarios(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	suite, err := harness.RunSuite(cmd.Context(), dir)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "running scenarios", err)
	}

	if suite.Pass() {
		return outputSuitePass(formatter, suite)
	}
	return outputSuiteFailure(formatter, suite)
}

func outputSuitePass(formatter *OutputFormatter, suite *harness.SuiteResult) error {
	if formatter.Format == "json" {
		return formatter.Success(suite)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d/%d scenarios passed\n", suite.Passed, suite.Total)
	return nil
}

func outputSuiteFailure(formatter *OutputFormatter, suite *harness.SuiteResult) error {
	msg := fmt.Sprintf("%d of %d scenarios failed", suite.Failed, suite.Total)

	if formatter.Format == "json" {
		if err := formatter.FailureData(suite, ErrCodeScenarios, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	for _, failure := range suite.Failures {
		name := failure.Path
		if failure.Scenario != "" {
			name = fmt.Sprintf("%s (%s)", failure.Scenario, failure.Path)
		}
		fmt.Fprintf(formatter.Writer, "✗ %s\n", name)
		for _, line := range strings.Split(failure.Error, "\n") {
			fmt.Fprintf(formatter.Writer, "    %s\n", line)
		}
	}
	fmt.Fprintf(formatter.Writer, "✗ %s\n", msg)
	return NewExitError(ExitFailure, msg)
}
