package validator

import (
	"strings"

	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/refs"
	"github.com/roach88/apflow/internal/stepkey"
)

// checkStructure verifies step identity and ordering: unique keys,
// section majors matching their steps, and strictly ascending order at
// both levels.
func checkStructure(f *flow.Flow) diag.List {
	var out diag.List

	for si := range f.Sections {
		sec := &f.Sections[si]
		if si > 0 && sec.Major <= f.Sections[si-1].Major {
			out = append(out, diag.Errorf(diag.SectionOrder,
				&diag.Location{Section: sec.Major},
				"section major %d does not ascend from %d", sec.Major, f.Sections[si-1].Major))
		}
		for ti := range sec.Steps {
			st := &sec.Steps[ti]
			if st.ID.Major() != sec.Major {
				out = append(out, diag.Errorf(diag.SectionMajor,
					&diag.Location{Section: sec.Major, Step: st.ID.String()},
					"step %s is filed under section %d", st.ID, sec.Major))
			}
			// Equal neighbors are duplicates, not an ordering
			// problem; checked below.
			if ti > 0 && st.ID.Compare(sec.Steps[ti-1].ID) < 0 {
				out = append(out, diag.Errorf(diag.StepOrder,
					&diag.Location{Section: sec.Major, Step: st.ID.String()},
					"step %s does not ascend from %s", st.ID, sec.Steps[ti-1].ID))
			}
		}
	}

	seen := make(map[string]stepkey.Key)
	for _, st := range f.Steps() {
		normal := st.ID.Normal()
		if first, dup := seen[normal]; dup {
			out = append(out, diag.Errorf(diag.DupStepID,
				&diag.Location{Section: st.ID.Major(), Step: st.ID.String()},
				"step key %s already used by %s", st.ID, first))
			continue
		}
		seen[normal] = st.ID
	}

	return out
}

// checkReferences verifies that every cross-reference targets an
// existing step, and warns on steps that reference themselves.
func checkReferences(f *flow.Flow) diag.List {
	var out diag.List
	for _, r := range refs.Dangling(f) {
		out = append(out, diag.Errorf(diag.DanglingRef, r.Location(),
			"%s names unknown step %s", r.Kind, r.To))
	}
	for _, r := range refs.Collect(f) {
		if !r.From.IsZero() && r.From.Equal(r.To) {
			out = append(out, diag.Warnf(diag.SelfRef, r.Location(),
				"step %s references itself", r.From))
		}
	}
	return out
}

// checkRegistries verifies actor and action membership against the
// catalogs. A nil catalog disables its check; empty fields belong to
// the schema phase and are skipped here.
func checkRegistries(f *flow.Flow, regs Registries) diag.List {
	var out diag.List
	for _, st := range f.Steps() {
		loc := func(field string) *diag.Location {
			return &diag.Location{Section: st.ID.Major(), Step: st.ID.String(), Field: field}
		}
		if regs.Actors != nil && st.Actor != "" && !regs.Actors.Has(st.Actor) {
			msg := "unknown actor %q"
			args := []any{st.Actor}
			if hint := regs.Actors.Suggest(st.Actor); hint != "" {
				msg += ", did you mean %q"
				args = append(args, hint)
			}
			out = append(out, diag.Errorf(diag.UnknownActor, loc("actor"), msg, args...))
		}
		if regs.Actions != nil && st.Action != "" && !regs.Actions.Has(st.Action) {
			msg := "unknown action %q"
			args := []any{st.Action}
			if hint := regs.Actions.Suggest(st.Action); hint != "" {
				msg += ", did you mean %q"
				args = append(args, hint)
			}
			out = append(out, diag.Errorf(diag.UnknownAction, loc("action"), msg, args...))
		}
	}
	return out
}

// checkBranches verifies each branch table entry: it must have guards,
// declared cases must all be covered unless a default catches the
// rest, and guard labels must not repeat. Branches without declared
// cases are open-ended and exempt from the coverage check.
func checkBranches(f *flow.Flow) diag.List {
	var out diag.List
	for bi := range f.Branches {
		br := &f.Branches[bi]
		loc := &diag.Location{Branch: bi + 1, Step: br.From.String(), Section: br.From.Major()}

		if len(br.Guards) == 0 {
			out = append(out, diag.Errorf(diag.NonexhaustiveBranch, loc,
				"branch from %s has no guards", br.From))
			continue
		}

		hasDefault := false
		labels := make(map[string]bool, len(br.Guards))
		for gi := range br.Guards {
			g := &br.Guards[gi]
			if g.Default {
				if hasDefault {
					out = append(out, diag.Warnf(diag.DuplicateGuard, loc,
						"branch from %s has more than one default guard", br.From))
				}
				hasDefault = true
			}
			if g.Label == "" {
				continue
			}
			if labels[g.Label] {
				out = append(out, diag.Warnf(diag.DuplicateGuard, loc,
					"branch from %s repeats guard label %q", br.From, g.Label))
			}
			labels[g.Label] = true
		}

		if len(br.Cases) == 0 || hasDefault {
			continue
		}
		var missing []string
		for _, c := range br.Cases {
			if !labels[c] {
				missing = append(missing, c)
			}
		}
		if len(missing) > 0 {
			out = append(out, diag.Errorf(diag.NonexhaustiveBranch, loc,
				"branch from %s covers no case %s and has no default",
				br.From, strings.Join(missing, ", ")))
		}
	}
	return out
}

// checkDataflow matches step inputs against outputs produced earlier
// and outputs against inputs consumed later, in document order.
// Neither finding blocks a commit: a dangling input is suspect, an
// unconsumed output merely noted.
func checkDataflow(f *flow.Flow) diag.List {
	var out diag.List
	steps := f.Steps()

	grow := func(set map[string]bool, names []string) map[string]bool {
		if len(names) == 0 {
			return set
		}
		next := make(map[string]bool, len(set)+len(names))
		for k := range set {
			next[k] = true
		}
		for _, n := range names {
			next[n] = true
		}
		return next
	}

	// Snapshots share storage until a step actually adds names.
	producedBefore := make([]map[string]bool, len(steps))
	produced := map[string]bool{}
	for i, st := range steps {
		producedBefore[i] = produced
		produced = grow(produced, st.Outputs)
	}
	consumedAfter := make([]map[string]bool, len(steps))
	consumed := map[string]bool{}
	for i := len(steps) - 1; i >= 0; i-- {
		consumedAfter[i] = consumed
		consumed = grow(consumed, steps[i].Inputs)
	}

	for i, st := range steps {
		for _, in := range st.Inputs {
			if !producedBefore[i][in] {
				out = append(out, diag.Warnf(diag.UndefinedInput,
					&diag.Location{Section: st.ID.Major(), Step: st.ID.String(), Field: "inputs"},
					"input %q is never produced by an earlier step", in))
			}
		}
		for _, o := range st.Outputs {
			if !consumedAfter[i][o] {
				out = append(out, diag.Infof(diag.UnusedOutput,
					&diag.Location{Section: st.ID.Major(), Step: st.ID.String(), Field: "outputs"},
					"output %q is never consumed", o))
			}
		}
	}

	return out
}
