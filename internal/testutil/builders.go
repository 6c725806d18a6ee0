// Package testutil provides test data builders and file helpers for
// flow document tests.
package testutil

import (
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// Keys parses step key literals, panicking on malformed input.
func Keys(texts ...string) []stepkey.Key {
	out := make([]stepkey.Key, len(texts))
	for i, text := range texts {
		out[i] = stepkey.MustParse(text)
	}
	return out
}

// CreateTestStep creates a step with default values that can be overridden.
func CreateTestStep(id string, overrides ...func(*flow.Step)) flow.Step {
	step := flow.Step{
		ID:     stepkey.MustParse(id),
		Actor:  "nurse",
		Action: "record vitals",
	}

	for _, override := range overrides {
		override(&step)
	}

	return step
}

// WithActor sets the acting role.
func WithActor(actor string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Actor = actor
	}
}

// WithAction sets what the actor does.
func WithAction(action string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Action = action
	}
}

// WithInputs sets the artifacts the step consumes.
func WithInputs(names ...string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Inputs = names
	}
}

// WithOutputs sets the artifacts the step produces.
func WithOutputs(names ...string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Outputs = names
	}
}

// WithDependsOn sets the dataflow edges to producing steps.
func WithDependsOn(keys ...string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.DependsOn = Keys(keys...)
	}
}

// WithGotos sets the unconditional control transfers.
func WithGotos(keys ...string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Gotos = Keys(keys...)
	}
}

// WithCalls sets the subroutine invocations.
func WithCalls(keys ...string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Calls = Keys(keys...)
	}
}

// WithNotes sets the free-form commentary.
func WithNotes(notes string) func(*flow.Step) {
	return func(s *flow.Step) {
		s.Notes = notes
	}
}

// CreateTestSection groups steps under one major.
func CreateTestSection(major int64, title string, steps ...flow.Step) flow.Section {
	return flow.Section{
		Major: major,
		Title: title,
		Steps: steps,
	}
}

// CreateTestBranch creates a branch leaving the given step.
func CreateTestBranch(from string, overrides ...func(*flow.Branch)) flow.Branch {
	branch := flow.Branch{
		From: stepkey.MustParse(from),
	}

	for _, override := range overrides {
		override(&branch)
	}

	return branch
}

// WithGuard appends a labeled guard.
func WithGuard(label, to string) func(*flow.Branch) {
	return func(b *flow.Branch) {
		b.Guards = append(b.Guards, flow.Guard{Label: label, To: stepkey.MustParse(to)})
	}
}

// WithGuardExpr appends a labeled guard carrying its condition.
func WithGuardExpr(label, to, expr string) func(*flow.Branch) {
	return func(b *flow.Branch) {
		b.Guards = append(b.Guards, flow.Guard{Label: label, To: stepkey.MustParse(to), Expr: expr})
	}
}

// WithDefaultGuard appends the guard that catches unmatched outcomes.
func WithDefaultGuard(to string) func(*flow.Branch) {
	return func(b *flow.Branch) {
		b.Guards = append(b.Guards, flow.Guard{To: stepkey.MustParse(to), Default: true})
	}
}

// WithCases declares the outcome labels the guards are expected to cover.
func WithCases(labels ...string) func(*flow.Branch) {
	return func(b *flow.Branch) {
		b.Cases = labels
	}
}

// WithMergeTo names the step where the guarded paths reconverge.
func WithMergeTo(to string) func(*flow.Branch) {
	return func(b *flow.Branch) {
		key := stepkey.MustParse(to)
		b.MergeTo = &key
	}
}

// CreateTestFlow creates a patient intake flow with two sections and a
// branch. The default document passes validation without registries.
func CreateTestFlow(overrides ...func(*flow.Flow)) *flow.Flow {
	f := &flow.Flow{
		Title: "patient intake",
		Sections: []flow.Section{
			CreateTestSection(1, "triage",
				CreateTestStep("1.001", WithOutputs("vitals")),
				CreateTestStep("1.002",
					WithAction("assess acuity"),
					WithInputs("vitals"),
					WithOutputs("acuity"),
					WithDependsOn("1.001"),
				),
			),
			CreateTestSection(2, "treatment",
				CreateTestStep("2.001",
					WithActor("doctor"),
					WithAction("treat patient"),
					WithInputs("acuity"),
				),
				CreateTestStep("2.002",
					WithActor("clerk"),
					WithAction("discharge patient"),
				),
			),
		},
		Branches: []flow.Branch{
			CreateTestBranch("1.002",
				WithGuardExpr("urgent", "2.001", "acuity >= 7"),
				WithDefaultGuard("2.002"),
				WithCases("urgent", "routine"),
				WithMergeTo("2.002"),
			),
		},
	}

	for _, override := range overrides {
		override(f)
	}

	return f
}

// WithTitle sets the document title.
func WithTitle(title string) func(*flow.Flow) {
	return func(f *flow.Flow) {
		f.Title = title
	}
}

// WithSections replaces the document's sections.
func WithSections(sections ...flow.Section) func(*flow.Flow) {
	return func(f *flow.Flow) {
		f.Sections = sections
	}
}

// WithBranches replaces the document's branch table.
func WithBranches(branches ...flow.Branch) func(*flow.Flow) {
	return func(f *flow.Flow) {
		f.Branches = branches
	}
}
