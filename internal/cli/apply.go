package cli

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/archive"
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/editor"
)

// ApplyReport is the payload of apply and the seq subcommands.
type ApplyReport struct {
	State       string            `json:"state"`
	Token       string            `json:"token"`
	Document    string            `json:"document"`
	Revision    string            `json:"revision,omitempty"`
	Keys        []string          `json:"keys,omitempty"`
	Renames     map[string]string `json:"renames,omitempty"`
	Diagnostics diag.List         `json:"diagnostics,omitempty"`
	Cause       string            `json:"cause,omitempty"`
	Archived    bool              `json:"archived,omitempty"`
}

// applyFlags are the options shared by apply and the seq subcommands.
type applyFlags struct {
	registryFlags
	Out     string
	PerOp   bool
	Token   string
	Archive string
}

// register adds the shared edit flags to a command.
func (af *applyFlags) register(cmd *cobra.Command) {
	af.registryFlags.register(cmd)
	cmd.Flags().StringVarP(&af.Out, "out", "o", "", "write the committed document here instead of in place")
	cmd.Flags().BoolVar(&af.PerOp, "per-op", false, "validate after every operation instead of only at commit")
	cmd.Flags().StringVar(&af.Token, "token", "", "fixed transaction token (default: generated)")
	cmd.Flags().StringVar(&af.Archive, "archive", "", "revision journal path (default $APFLOW_ARCHIVE)")
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <document> <script>",
		Short: "Apply an edit script transactionally",
		Long: `Apply a YAML edit script to a flow document. All operations commit
together or none do: the first failure, or any ERROR finding at final
validation, rolls the whole batch back and leaves the document file
untouched.

On commit the document is rewritten in place (or to --out), and the
revision is journaled when an archive is configured.

Exit codes:
  0 - committed
  1 - rolled back
  2 - command error (unreadable document or script)`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(rootOpts, *flags, args[0], args[1], cmd)
		},
	}

	flags.register(cmd)
	return cmd
}

func runApply(opts *RootOptions, flags applyFlags, docPath, scriptPath string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	data, err := os.ReadFile(scriptPath)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "reading script", err)
	}
	script, err := editor.ParseScript(data)
	if err != nil {
		_ = formatter.Error(ErrCodeLoad, err.Error(), nil)
		return WrapExitError(ExitCommandError, "parsing script", err)
	}

	return applyScript(opts, flags, docPath, script, cmd)
}

// applyScript runs a parsed script against the document at docPath
// through a fresh editor session and reports the outcome. The seq
// subcommands funnel their single operations through here so every
// edit shares the same transaction, write-back, and journal behavior.
func applyScript(opts *RootOptions, flags applyFlags, docPath string, script *editor.Script, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	f, err := loadFlow(formatter, docPath)
	if err != nil {
		return err
	}
	regs, err := loadRegistries(formatter, opts, flags.registryFlags)
	if err != nil {
		return err
	}

	sessOpts := []editor.SessionOption{
		editor.WithRegistries(regs),
		editor.WithLogger(opts.log()),
	}
	if flags.PerOp {
		sessOpts = append(sessOpts, editor.WithPerOpValidation())
	}
	if flags.Token != "" {
		sessOpts = append(sessOpts, editor.WithTokenGenerator(editor.NewFixedGenerator(flags.Token)))
	}
	session := editor.NewSession(f, sessOpts...)

	res, applyErr := session.Apply(cmd.Context(), script)
	report := ApplyReport{
		State:       string(res.State),
		Token:       res.Token,
		Document:    docPath,
		Diagnostics: res.Diagnostics,
	}

	if applyErr != nil {
		report.Cause = applyErr.Error()
		return outputApplyRollback(formatter, report)
	}

	report.Revision = res.Revision
	for _, k := range res.Flow.Keys() {
		report.Keys = append(report.Keys, k.String())
	}
	report.Renames = renameText(res)

	outPath := flags.Out
	if outPath == "" {
		outPath = docPath
	}
	if err := writeFlow(formatter, res.Flow, outPath); err != nil {
		return err
	}
	report.Document = outPath

	archivePath := flags.Archive
	if archivePath == "" {
		archivePath = opts.Config.ArchivePath
	}
	if archivePath != "" {
		archived, err := journalRevision(cmd.Context(), formatter, archivePath, script.Title, res)
		if err != nil {
			return err
		}
		report.Archived = archived
	}

	return outputApplyCommit(formatter, report)
}

// renameText flattens the session's rename mapping for reports,
// dropping the identity entries a renumber records for unmoved keys.
func renameText(res *editor.Result) map[string]string {
	out := make(map[string]string)
	for old, to := range res.Renames {
		if to.Normal() == old {
			continue
		}
		out[old] = to.String()
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// journalRevision appends the committed revision to the archive,
// resuming the logical clock from the journal's last position.
func journalRevision(ctx context.Context, formatter *OutputFormatter, path, title string, res *editor.Result) (bool, error) {
	a, err := openArchive(formatter, path)
	if err != nil {
		return false, err
	}
	defer a.Close()

	last, err := a.LastSeq(ctx)
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return false, WrapExitError(ExitCommandError, "reading archive", err)
	}

	canonical, err := res.Flow.CanonicalJSON()
	if err != nil {
		_ = formatter.Error(ErrCodeEncode, err.Error(), nil)
		return false, WrapExitError(ExitCommandError, "canonicalizing document", err)
	}

	inserted, err := a.AppendRevision(ctx, archive.Revision{
		ID:          res.Revision,
		Seq:         last + 1,
		CommitToken: res.Token,
		Title:       title,
		Document:    canonical,
		Diagnostics: res.Diagnostics,
	})
	if err != nil {
		_ = formatter.Error(ErrCodeArchive, err.Error(), nil)
		return false, WrapExitError(ExitCommandError, "journaling revision", err)
	}
	return inserted, nil
}

// outputApplyCommit reports a committed transaction.
func outputApplyCommit(formatter *OutputFormatter, report ApplyReport) error {
	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	fmt.Fprintf(formatter.Writer, "✓ committed %s (txn %s)\n", shortID(report.Revision), report.Token)
	olds := make([]string, 0, len(report.Renames))
	for old := range report.Renames {
		olds = append(olds, old)
	}
	sort.Strings(olds)
	for _, old := range olds {
		fmt.Fprintf(formatter.Writer, "  renamed %s -> %s\n", old, report.Renames[old])
	}
	printDiagnostics(formatter, report.Diagnostics)
	if report.Archived {
		fmt.Fprintf(formatter.Writer, "  journaled to archive\n")
	}
	fmt.Fprintf(formatter.Writer, "wrote %s\n", report.Document)
	return nil
}

// outputApplyRollback reports a rolled-back transaction and maps it
// to exit code 1.
func outputApplyRollback(formatter *OutputFormatter, report ApplyReport) error {
	if formatter.Format == "json" {
		if err := formatter.FailureData(report, ErrCodeRollback, report.Cause); err != nil {
			return err
		}
		return NewExitError(ExitFailure, report.Cause)
	}

	fmt.Fprintf(formatter.Writer, "✗ %s\n", report.Cause)
	printDiagnostics(formatter, report.Diagnostics)
	return NewExitError(ExitFailure, report.Cause)
}
