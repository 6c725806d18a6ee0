package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// RevisionSummary is one archive entry in a history listing.
type RevisionSummary struct {
	Seq      int64  `json:"seq"`
	ID       string `json:"id"`
	Token    string `json:"token"`
	Title    string `json:"title,omitempty"`
	Findings int    `json:"findings"`
}

// HistoryReport is the history command's payload.
type HistoryReport struct {
	Archive   string            `json:"archive"`
	Revisions []RevisionSummary `json:"revisions"`
	Faults    []string          `json:"faults,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	var archivePath string
	var verify bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the revision archive",
		Long: `List every committed revision in the journal, oldest first. With
--verify, each stored document is decoded and its revision id
re-derived; revisions whose content no longer matches are reported
as faults.

Exit codes:
  0 - listed (and, with --verify, every revision intact)
  1 - faults found
  2 - command error (no archive, unreadable archive)`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(rootOpts, archivePath, verify, cmd)
		},
	}

	cmd.Flags().StringVar(&archivePath, "archive", "", "revision journal path (default $APFLOW_ARCHIVE)")
	cmd.Flags().BoolVar(&verify, "verify", false, "re-derive every revision id from its stored document")
	return cmd
}

func runHistory(opts *RootOptions, archivePath string, verify bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	if archivePath == "" {
		archivePath = opts.Config.ArchivePath
	}
	a, err := openArchive(formatter, archivePath)
	if err != nil {
		return err
	}
	defer a.Close()

	revisions, err := a.History(cmd.Context())
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading archive", err)
	}

	report := HistoryReport{Archive: archivePath, Revisions: []RevisionSummary{}}
	for _, rev := range revisions {
		report.Revisions = append(report.Revisions, RevisionSummary{
			Seq:      rev.Seq,
			ID:       rev.ID,
			Token:    rev.CommitToken,
			Title:    rev.Title,
			Findings: len(rev.Diagnostics),
		})
	}

	if verify {
		faults, err := a.Verify(cmd.Context())
		if err != nil {
			_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
			return WrapExitError(ExitCommandError, "verifying archive", err)
		}
		for _, fault := range faults {
			report.Faults = append(report.Faults, fault.String())
		}
		if len(report.Faults) > 0 {
			return outputHistoryFaults(formatter, report)
		}
	}

	return outputHistory(formatter, report, verify)
}

func outputHistory(formatter *OutputFormatter, report HistoryReport, verified bool) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	if len(report.Revisions) == 0 {
		fmt.Fprintf(formatter.Writer, "archive %s is empty\n", report.Archive)
		return nil
	}
	for _, rev := range report.Revisions {
		line := fmt.Sprintf("%5d  %s  txn %s", rev.Seq, shortID(rev.ID), rev.Token)
		if rev.Title != "" {
			line += "  " + rev.Title
		}
		if rev.Findings > 0 {
			line += fmt.Sprintf("  (%d findings)", rev.Findings)
		}
		fmt.Fprintln(formatter.Writer, line)
	}
	if verified {
		fmt.Fprintf(formatter.Writer, "✓ %d revisions verified\n", len(report.Revisions))
	}
	return nil
}

func outputHistoryFaults(formatter *OutputFormatter, report HistoryReport) error {
	msg := fmt.Sprintf("%d corrupt revision(s)", len(report.Faults))

	if formatter.Format == "json" {
		if err := formatter.FailureData(report, ErrCodeArchive, msg); err != nil {
			return err
		}
		return NewExitError(ExitFailure, msg)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n", msg)
	for _, fault := range report.Faults {
		fmt.Fprintf(formatter.Writer, "  %s\n", fault)
	}
	return NewExitError(ExitFailure, msg)
}
