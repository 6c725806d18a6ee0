package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/validator"
)

// ValidationReport is the validate command's payload.
type ValidationReport struct {
	Valid       bool      `json:"valid"`
	Document    string    `json:"document"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	regFlags := &registryFlags{}

	cmd := &cobra.Command{
		Use:   "validate <document>",
		Short: "Validate a flow document",
		Long: `Validate a flow document in two phases: the wire schema, then the
semantic checks (key order, reference integrity, registry membership,
branch coverage, reachability, dataflow).

Exit codes:
  0 - no ERROR findings (warnings and notes may remain)
  1 - ERROR findings
  2 - command error (unreadable document or registry)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, *regFlags, args[0], cmd)
		},
	}

	regFlags.register(cmd)
	return cmd
}

func runValidate(opts *RootOptions, regFlags registryFlags, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	f, err := loadFlow(formatter, path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("schema ok: %q, %d sections", f.Title, len(f.Sections))

	regs, err := loadRegistries(formatter, opts, regFlags)
	if err != nil {
		return err
	}

	diags := validator.Validate(f, regs)
	report := ValidationReport{
		Valid:       !diags.HasErrors(),
		Document:    path,
		Diagnostics: diags,
	}
	if !report.Valid {
		return outputValidationFailure(formatter, report)
	}
	return outputValidationSuccess(formatter, report)
}

// outputValidationSuccess reports a document with no ERROR findings.
// Advisory findings still print.
func outputValidationSuccess(formatter *OutputFormatter, report ValidationReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid\n", report.Document)
	printDiagnostics(formatter, report.Diagnostics)
	return nil
}

// outputValidationFailure reports ERROR findings and maps them to
// exit code 1. Schema-phase failures arrive here too, via loadFlow.
func outputValidationFailure(formatter *OutputFormatter, report ValidationReport) error {
	errCount := report.Diagnostics.Count(diag.SeverityError)

	if formatter.Format == "json" {
		first := report.Diagnostics.Errors()[0]
		if err := formatter.FailureData(report, string(first.Code), first.Message); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errCount))
	}

	fmt.Fprintf(formatter.Writer, "✗ %s invalid\n", report.Document)
	printDiagnostics(formatter, report.Diagnostics)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", errCount))
}
