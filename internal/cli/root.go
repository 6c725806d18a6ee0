// Package cli defines the apflow command-line interface: validating
// flow documents, editing them through transactional scripts, exporting
// them, and inspecting the revision archive.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/config"
	"github.com/roach88/apflow/internal/logging"
)

// RootOptions holds global flags and the resolved runtime environment
// shared by all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	LogLevel string // overrides APFLOW_LOG_LEVEL when set
	EnvFiles []string

	// Config is resolved from the environment in PersistentPreRunE.
	Config config.Config

	// Logger is built from the resolved log level.
	Logger *slog.Logger
}

// log returns the resolved logger, or a discard logger when the
// command runs without the root's PersistentPreRunE (direct tests).
func (o *RootOptions) log() *slog.Logger {
	if o.Logger == nil {
		return logging.Discard()
	}
	return o.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the apflow CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "apflow",
		Short: "apflow - atomic process flow editor",
		Long: `apflow edits process flow documents: ordered steps under stable
fractional keys, validated for schema, reference, and dataflow
integrity, and changed only through transactional edit scripts.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}

			cfg, err := config.Load(opts.EnvFiles...)
			if err != nil {
				return err
			}
			opts.Config = cfg

			level := cfg.LogLevel
			if opts.LogLevel != "" {
				level = opts.LogLevel
			}
			opts.Logger = logging.NewLogger(os.Stderr, logging.ParseLevel(level))
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringArrayVar(&opts.EnvFiles, "env-file", nil, "extra .env file (repeatable, later files win)")

	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSeqCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute builds the root command and runs it with the provided args.
func Execute(args []string) error {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	return cmd.Execute()
}
