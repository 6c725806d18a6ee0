package export

import (
	"fmt"
	"strings"

	"github.com/roach88/apflow/internal/flow"
)

// Markdown renders the document as a human-readable procedure file:
// one heading per section, one table row per step, and a closing
// branch list when the document declares branches.
type Markdown struct{}

// Format returns "markdown".
func (Markdown) Format() string { return "markdown" }

// Export renders the document as Markdown.
func (Markdown) Export(f *flow.Flow) ([]byte, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", f.Title)

	for _, sec := range f.Sections {
		b.WriteString("\n")
		if sec.Title != "" {
			fmt.Fprintf(&b, "## %d. %s\n\n", sec.Major, sec.Title)
		} else {
			fmt.Fprintf(&b, "## Section %d\n\n", sec.Major)
		}

		b.WriteString("| Step | Actor | Action | Inputs | Outputs | Control | Notes |\n")
		b.WriteString("|------|-------|--------|--------|---------|---------|-------|\n")
		for _, st := range sec.Steps {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s | %s |\n",
				st.ID,
				cell(st.Actor),
				cell(st.Action),
				cell(strings.Join(st.Inputs, ", ")),
				cell(strings.Join(st.Outputs, ", ")),
				cell(controlSummary(st)),
				cell(st.Notes))
		}
	}

	if len(f.Branches) > 0 {
		b.WriteString("\n## Branches\n\n")
		for _, br := range f.Branches {
			fmt.Fprintf(&b, "- from %s%s\n", br.From, branchQualifier(br))
			for _, g := range br.Guards {
				label := g.Label
				switch {
				case label == "" && g.Default:
					label = "default"
				case g.Default:
					label += " (default)"
				}
				fmt.Fprintf(&b, "  - %s -> %s", label, g.To)
				if g.Expr != "" {
					fmt.Fprintf(&b, " when %s", g.Expr)
				}
				b.WriteString("\n")
			}
		}
	}

	return []byte(b.String()), nil
}

// controlSummary folds a step's control and dataflow edges into one
// cell: "needs 1.001; goto 2.001; call 3.001".
func controlSummary(st flow.Step) string {
	var parts []string
	for _, k := range st.DependsOn {
		parts = append(parts, "needs "+k.String())
	}
	for _, k := range st.Gotos {
		parts = append(parts, "goto "+k.String())
	}
	for _, k := range st.Calls {
		parts = append(parts, "call "+k.String())
	}
	return strings.Join(parts, "; ")
}

// branchQualifier renders the optional cases and merge declarations.
func branchQualifier(br flow.Branch) string {
	var parts []string
	if len(br.Cases) > 0 {
		parts = append(parts, "cases: "+strings.Join(br.Cases, ", "))
	}
	if br.MergeTo != nil {
		parts = append(parts, "merges at "+br.MergeTo.String())
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

// Table cells may not carry pipes or raw newlines.
var cellEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

func cell(s string) string { return cellEscaper.Replace(s) }
