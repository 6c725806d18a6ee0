package flow

import (
	"maps"
	"slices"

	"github.com/roach88/apflow/internal/stepkey"
)

// Flow is a complete step document.
type Flow struct {
	// Title names the procedure the document describes.
	Title string `json:"title" yaml:"title"`

	// Sections hold the steps, grouped by key major and ordered by it.
	Sections []Section `json:"sections" yaml:"sections"`

	// Branches is the document's branch table: conditional exits from
	// steps, in declaration order.
	Branches []Branch `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// Section groups the steps that share a key major. Majors are unique
// and strictly ascending across a valid document.
type Section struct {
	// Major is the integer part every step key in the section carries.
	Major int64 `json:"major" yaml:"major"`

	// Title names the phase of the procedure, optional.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Steps are ordered by key.
	Steps []Step `json:"steps" yaml:"steps"`
}

// Step is a single instruction in the flow, identified by its key.
type Step struct {
	// ID is the step's ordering key. Its major matches the owning
	// section in a valid document.
	ID stepkey.Key `json:"step_id" yaml:"step_id"`

	// Actor performs the step.
	Actor string `json:"actor" yaml:"actor"`

	// Action says what the actor does.
	Action string `json:"action" yaml:"action"`

	// Inputs name the artifacts the step consumes.
	Inputs []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`

	// Outputs name the artifacts the step produces.
	Outputs []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`

	// DependsOn lists steps whose outputs this step needs. It is a
	// dataflow edge, not a control transfer.
	DependsOn []stepkey.Key `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`

	// Gotos transfer control unconditionally. A step with gotos does
	// not fall through to its successor.
	Gotos []stepkey.Key `json:"goto,omitempty" yaml:"goto,omitempty"`

	// Calls invoke steps as subroutines; control returns here.
	Calls []stepkey.Key `json:"calls,omitempty" yaml:"calls,omitempty"`

	// Notes carry free-form commentary.
	Notes string `json:"notes,omitempty" yaml:"notes,omitempty"`

	// Meta holds open-ended string annotations tools may attach.
	Meta map[string]string `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// Branch records the conditional exits from a step. Guards are
// ordered; the first whose label matches the outcome wins. Cases
// declares the outcome labels the guards are expected to cover.
type Branch struct {
	// From is the step the branch leaves.
	From stepkey.Key `json:"from_step" yaml:"from_step"`

	// Guards are the labeled exits, in priority order.
	Guards []Guard `json:"guards" yaml:"guards"`

	// Cases enumerates the possible outcome labels. Empty means the
	// outcomes are open-ended and exhaustiveness is not checked.
	Cases []string `json:"cases,omitempty" yaml:"cases,omitempty"`

	// MergeTo optionally names the step where the guarded paths
	// reconverge.
	MergeTo *stepkey.Key `json:"merge_to,omitempty" yaml:"merge_to,omitempty"`
}

// Guard is one conditional exit: when its label matches the branch
// outcome, control moves to the target step.
type Guard struct {
	// Label is the outcome this guard handles. Default guards may
	// leave it empty.
	Label string `json:"label" yaml:"label"`

	// To is the step control moves to.
	To stepkey.Key `json:"to" yaml:"to"`

	// Expr optionally records the machine-checkable condition behind
	// the label.
	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	// Default marks the guard that catches outcomes no label matched.
	Default bool `json:"default,omitempty" yaml:"default,omitempty"`
}

// Clone returns a deep copy sharing no mutable state with f.
func (f *Flow) Clone() *Flow {
	if f == nil {
		return nil
	}
	out := &Flow{Title: f.Title}
	if f.Sections != nil {
		out.Sections = make([]Section, len(f.Sections))
		for i, sec := range f.Sections {
			out.Sections[i] = sec.Clone()
		}
	}
	if f.Branches != nil {
		out.Branches = make([]Branch, len(f.Branches))
		for i, br := range f.Branches {
			out.Branches[i] = br.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the section.
func (s Section) Clone() Section {
	out := s
	if s.Steps != nil {
		out.Steps = make([]Step, len(s.Steps))
		for i, st := range s.Steps {
			out.Steps[i] = st.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the step.
func (st Step) Clone() Step {
	out := st
	out.Inputs = slices.Clone(st.Inputs)
	out.Outputs = slices.Clone(st.Outputs)
	out.DependsOn = slices.Clone(st.DependsOn)
	out.Gotos = slices.Clone(st.Gotos)
	out.Calls = slices.Clone(st.Calls)
	out.Meta = maps.Clone(st.Meta)
	return out
}

// Clone returns a deep copy of the branch.
func (b Branch) Clone() Branch {
	out := b
	out.Guards = slices.Clone(b.Guards)
	out.Cases = slices.Clone(b.Cases)
	if b.MergeTo != nil {
		merge := *b.MergeTo
		out.MergeTo = &merge
	}
	return out
}
