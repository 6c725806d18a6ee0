package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/export"
	"github.com/roach88/apflow/internal/validator"
)

// ExportReport is the export command's payload when writing to a file.
type ExportReport struct {
	Format   string `json:"format"`
	Document string `json:"document"`
	Out      string `json:"out"`
	Bytes    int    `json:"bytes"`
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var out string
	reg := export.NewRegistry()

	cmd := &cobra.Command{
		Use:   "export <format> <document>",
		Short: "Export a flow document",
		Long: fmt.Sprintf(`Render a flow document through an exporter. Available formats: %s.

The document must pass validation (without registry checks) first, so
exporters only ever see coherent input. The artifact is written raw to
stdout or --out; the --format flag shapes errors and reports only.`,
			strings.Join(reg.Formats(), ", ")),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(rootOpts, reg, args[0], args[1], out, cmd)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the artifact here instead of stdout")
	return cmd
}

func runExport(opts *RootOptions, reg *export.Registry, format, docPath, out string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	exp, err := reg.Get(format)
	if err != nil {
		_ = formatter.Error(ErrCodeUsage, err.Error(), nil)
		return WrapExitError(ExitCommandError, "unknown export format", err)
	}

	f, err := loadFlow(formatter, docPath)
	if err != nil {
		return err
	}

	if diags := validator.Validate(f, validator.Registries{}); diags.HasErrors() {
		return outputValidationFailure(formatter, ValidationReport{Document: docPath, Diagnostics: diags})
	}

	data, err := exp.Export(f)
	if err != nil {
		_ = formatter.Error(ErrCodeEncode, err.Error(), nil)
		return WrapExitError(ExitCommandError, "exporting document", err)
	}

	if out == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		_ = formatter.Error(ErrCodeEncode, err.Error(), nil)
		return WrapExitError(ExitCommandError, "writing artifact", err)
	}

	report := ExportReport{Format: format, Document: docPath, Out: out, Bytes: len(data)}
	if formatter.Format == "json" {
		return formatter.Success(report)
	}
	fmt.Fprintf(formatter.Writer, "wrote %s (%d bytes)\n", out, len(data))
	return nil
}
