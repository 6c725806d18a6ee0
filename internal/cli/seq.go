package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/apflow/internal/editor"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// NewSeqCommand creates the seq command group: single sequencing
// operations run as one-op transactions.
func NewSeqCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seq",
		Short: "Sequence operations on a flow document",
		Long: `Run a single sequencing operation as a transaction: the document is
validated after the change and rewritten only when no ERROR findings
remain. For multi-operation changes, use apply with an edit script.`,
	}

	cmd.AddCommand(newInsertCommand(rootOpts, "insert-after"))
	cmd.AddCommand(newInsertCommand(rootOpts, "insert-before"))
	cmd.AddCommand(newDeleteCommand(rootOpts))
	cmd.AddCommand(newMoveCommand(rootOpts))
	cmd.AddCommand(newRenumberCommand(rootOpts))

	return cmd
}

// insertFlags carry the payload of an inserted step.
type insertFlags struct {
	Actor     string
	Action    string
	StepID    string
	Inputs    []string
	Outputs   []string
	DependsOn []string
	Notes     string
}

func (f *insertFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Actor, "actor", "", "acting role (required)")
	cmd.Flags().StringVar(&f.Action, "action", "", "what the actor does (required)")
	cmd.Flags().StringVar(&f.StepID, "step-id", "", "explicit key for the new step (default: computed from the gap)")
	cmd.Flags().StringArrayVar(&f.Inputs, "input", nil, "input the step consumes (repeatable)")
	cmd.Flags().StringArrayVar(&f.Outputs, "output", nil, "output the step produces (repeatable)")
	cmd.Flags().StringArrayVar(&f.DependsOn, "depends-on", nil, "step key this step depends on (repeatable)")
	cmd.Flags().StringVar(&f.Notes, "notes", "", "free-form notes")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("action")
}

// step assembles the flow.Step from the flags.
func (f *insertFlags) step(formatter *OutputFormatter) (flow.Step, error) {
	st := flow.Step{
		Actor:   f.Actor,
		Action:  f.Action,
		Inputs:  f.Inputs,
		Outputs: f.Outputs,
		Notes:   f.Notes,
	}
	if f.StepID != "" {
		id, err := parseKeyArg(formatter, "--step-id", f.StepID)
		if err != nil {
			return flow.Step{}, err
		}
		st.ID = id
	}
	for _, text := range f.DependsOn {
		k, err := parseKeyArg(formatter, "--depends-on", text)
		if err != nil {
			return flow.Step{}, err
		}
		st.DependsOn = append(st.DependsOn, k)
	}
	return st, nil
}

func newInsertCommand(rootOpts *RootOptions, use string) *cobra.Command {
	flags := &applyFlags{}
	stepFlags := &insertFlags{}
	before := use == "insert-before"

	short := "Insert a step after the target"
	if before {
		short = "Insert a step before the target"
	}

	cmd := &cobra.Command{
		Use:           use + " <document> <target>",
		Short:         short,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			target, err := parseKeyArg(formatter, "target", args[1])
			if err != nil {
				return err
			}
			st, err := stepFlags.step(formatter)
			if err != nil {
				return err
			}
			op := editor.InsertAfter(target, st)
			if before {
				op = editor.InsertBefore(target, st)
			}
			return applyScript(rootOpts, *flags, args[0], seqScript(use, op), cmd)
		},
	}

	flags.register(cmd)
	stepFlags.register(cmd)
	return cmd
}

func newDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "delete <document> <target>",
		Short: "Delete a step",
		Long: `Delete the step carrying the target key. References to the deleted
step make the transaction roll back, so retargeting them in the same
change needs an apply script.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			target, err := parseKeyArg(formatter, "target", args[1])
			if err != nil {
				return err
			}
			return applyScript(rootOpts, *flags, args[0], seqScript("delete", editor.Delete(target)), cmd)
		},
	}

	flags.register(cmd)
	return cmd
}

func newMoveCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "move <document> <target> <anchor>",
		Short: "Move a step after the anchor",
		Long: `Relocate the step carrying target to sit immediately after the step
carrying anchor, assigning it a fresh key there. Every reference to
the old key is rewritten in the same transaction.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			target, err := parseKeyArg(formatter, "target", args[1])
			if err != nil {
				return err
			}
			anchor, err := parseKeyArg(formatter, "anchor", args[2])
			if err != nil {
				return err
			}
			return applyScript(rootOpts, *flags, args[0], seqScript("move", editor.Move(target, anchor)), cmd)
		},
	}

	flags.register(cmd)
	return cmd
}

func newRenumberCommand(rootOpts *RootOptions) *cobra.Command {
	flags := &applyFlags{}
	var width int
	var steps []string

	cmd := &cobra.Command{
		Use:   "renumber <document>",
		Short: "Renumber step keys to a canonical width",
		Long: `Re-space step keys as evenly numbered fractions at the given width,
section by section, rewriting every reference to a renamed key. With
--step the renumbering touches only the named steps.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)
			op := editor.RenumberAll(width)
			if len(steps) > 0 {
				targets := make([]stepkey.Key, 0, len(steps))
				for _, text := range steps {
					k, err := parseKeyArg(formatter, "--step", text)
					if err != nil {
						return err
					}
					targets = append(targets, k)
				}
				op = editor.RenumberSteps(width, targets...)
			}
			return applyScript(rootOpts, *flags, args[0], seqScript("renumber", op), cmd)
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&width, "width", stepkey.MinFractionDigits, "canonical fraction width")
	cmd.Flags().StringArrayVar(&steps, "step", nil, "renumber only this step (repeatable)")
	return cmd
}

// seqScript wraps a single operation as a titled script.
func seqScript(title string, op editor.Operation) *editor.Script {
	return &editor.Script{Title: title, Ops: []editor.Operation{op}}
}

// parseKeyArg parses a step key argument, reporting malformed keys as
// usage errors.
func parseKeyArg(formatter *OutputFormatter, name, text string) (stepkey.Key, error) {
	k, err := stepkey.Parse(text)
	if err != nil {
		_ = formatter.Error(ErrCodeUsage, err.Error(), nil)
		return stepkey.Key{}, WrapExitError(ExitCommandError, "invalid "+name, err)
	}
	return k, nil
}
