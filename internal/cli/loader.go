package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/archive"
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/registry"
	"github.com/roach88/apflow/internal/validator"
)

// newFormatter builds the output formatter for a command invocation.
// Diagnostic chatter goes to stderr so JSON output stays parseable.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// loadFlow reads and decodes a flow document. Unreadable or
// unparseable files are command errors; a document that fails the
// schema phase is reported as a validation failure.
func loadFlow(formatter *OutputFormatter, path string) (*flow.Flow, error) {
	f, diags, err := document.DecodeFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading document", err)
	}
	if f == nil {
		return nil, outputValidationFailure(formatter, ValidationReport{Document: path, Diagnostics: diags})
	}
	return f, nil
}

// registryFlags are the per-command overrides for the registry paths
// configured through the environment.
type registryFlags struct {
	Actors  string
	Actions string
}

// register adds the --actors and --actions flags to a command.
func (rf *registryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&rf.Actors, "actors", "", "actor registry YAML (default $APFLOW_ACTORS)")
	cmd.Flags().StringVar(&rf.Actions, "actions", "", "action registry YAML (default $APFLOW_ACTIONS)")
}

// loadRegistries resolves the registry catalogs for validation: flag
// paths win over configured ones, and an unset path leaves that
// membership check disabled.
func loadRegistries(formatter *OutputFormatter, opts *RootOptions, flags registryFlags) (validator.Registries, error) {
	regs := validator.Registries{}

	actorsPath := flags.Actors
	if actorsPath == "" {
		actorsPath = opts.Config.ActorRegistry
	}
	if actorsPath != "" {
		r, err := registry.LoadFile(actorsPath)
		if err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return regs, WrapExitError(ExitCommandError, "loading actor registry", err)
		}
		regs.Actors = r
	}

	actionsPath := flags.Actions
	if actionsPath == "" {
		actionsPath = opts.Config.ActionRegistry
	}
	if actionsPath != "" {
		r, err := registry.LoadFile(actionsPath)
		if err != nil {
			_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
			return regs, WrapExitError(ExitCommandError, "loading action registry", err)
		}
		regs.Actions = r
	}

	return regs, nil
}

// openArchive opens the revision journal at the given path.
func openArchive(formatter *OutputFormatter, path string) (*archive.Archive, error) {
	if path == "" {
		_ = formatter.Error(ErrCodeUsage, "no archive configured: set APFLOW_ARCHIVE or pass --archive", nil)
		return nil, NewExitError(ExitCommandError, "no archive configured")
	}
	a, err := archive.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "opening archive", err)
	}
	return a, nil
}

// writeFlow encodes f in the format matching path's extension and
// writes it there.
func writeFlow(formatter *OutputFormatter, f *flow.Flow, path string) error {
	data, err := document.Encode(f, document.DetectFormat(path))
	if err != nil {
		_ = formatter.Error(ErrCodeEncode, err.Error(), nil)
		return WrapExitError(ExitCommandError, "encoding document", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = formatter.Error(ErrCodeEncode, err.Error(), nil)
		return WrapExitError(ExitCommandError, "writing document", err)
	}
	return nil
}

// shortID abbreviates a revision id for text output.
func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

// printDiagnostics writes one finding per line, indented.
func printDiagnostics(formatter *OutputFormatter, diags diag.List) {
	for _, d := range diags {
		fmt.Fprintf(formatter.Writer, "  %s\n", d)
	}
}
