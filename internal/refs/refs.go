// Package refs tracks every place a flow document mentions a step key
// other than a step's own identity: dataflow edges, control transfers,
// and the branch table. It enumerates references, finds the ones that
// dangle, and rewrites them in bulk when keys move.
package refs

import (
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// Kind names the field a reference lives in.
type Kind string

const (
	KindDependsOn Kind = "depends_on"
	KindGoto      Kind = "goto"
	KindCall      Kind = "calls"
	KindGuardTo   Kind = "guard target"
	KindFrom      Kind = "branch from_step"
	KindMerge     Kind = "branch merge_to"
)

// Ref is one occurrence of a step key referring to a step.
type Ref struct {
	// From is the step that owns the reference. It is zero for
	// branch-level references, which belong to the table rather than a
	// step.
	From stepkey.Key

	// Kind says which field holds the reference.
	Kind Kind

	// Branch is the 1-based ordinal in the branch table for
	// branch-level references, 0 otherwise.
	Branch int

	// Index is the position within the owning list field, 0 for
	// scalar fields.
	Index int

	// To is the referenced key.
	To stepkey.Key
}

// Location converts the reference's position into a diagnostic
// location.
func (r Ref) Location() *diag.Location {
	loc := &diag.Location{Field: string(r.Kind)}
	if !r.From.IsZero() {
		loc.Section = r.From.Major()
		loc.Step = r.From.String()
	}
	loc.Branch = r.Branch
	return loc
}

// Collect enumerates every reference in the flow in document order:
// step fields first, then the branch table.
func Collect(f *flow.Flow) []Ref {
	var out []Ref
	for _, st := range f.Steps() {
		for i, to := range st.DependsOn {
			out = append(out, Ref{From: st.ID, Kind: KindDependsOn, Index: i, To: to})
		}
		for i, to := range st.Gotos {
			out = append(out, Ref{From: st.ID, Kind: KindGoto, Index: i, To: to})
		}
		for i, to := range st.Calls {
			out = append(out, Ref{From: st.ID, Kind: KindCall, Index: i, To: to})
		}
	}
	for bi := range f.Branches {
		br := &f.Branches[bi]
		ord := bi + 1
		out = append(out, Ref{Kind: KindFrom, Branch: ord, To: br.From})
		for gi := range br.Guards {
			out = append(out, Ref{Kind: KindGuardTo, Branch: ord, Index: gi, To: br.Guards[gi].To})
		}
		if br.MergeTo != nil {
			out = append(out, Ref{Kind: KindMerge, Branch: ord, To: *br.MergeTo})
		}
	}
	return out
}

// Incoming returns the references whose target is the given step,
// matching numerically.
func Incoming(f *flow.Flow, key stepkey.Key) []Ref {
	var out []Ref
	for _, r := range Collect(f) {
		if r.To.Equal(key) {
			out = append(out, r)
		}
	}
	return out
}

// Dangling returns the references whose target no step carries.
func Dangling(f *flow.Flow) []Ref {
	var out []Ref
	for _, r := range Collect(f) {
		if !f.HasStep(r.To) {
			out = append(out, r)
		}
	}
	return out
}

// Mapping relates old step keys to their replacements. Entries are
// keyed by the Normal form of the old key, so 1.100 and 1.1000 address
// the same entry.
type Mapping map[string]stepkey.Key

// Add records that old has become new. Entries already pointing at old
// are retargeted to new, so chained moves compose: after Add(a, b) and
// Add(b, c) the mapping sends both a and b to c.
func (m Mapping) Add(old, new stepkey.Key) {
	for k, v := range m {
		if v.Equal(old) {
			m[k] = new
		}
	}
	m[old.Normal()] = new
}

// Merge folds another mapping into m, composing entries m already
// renamed through other. Other's entries are simultaneous: they
// retarget m's values but never each other, so a renumber batch
// sending 1.0015 to 1.002 and 1.002 to 1.003 merges without chaining
// the first entry onto the second.
func (m Mapping) Merge(other Mapping) {
	for k, v := range m {
		if to, ok := other.Lookup(v); ok {
			m[k] = to
		}
	}
	for oldNormal, to := range other {
		if _, taken := m[oldNormal]; !taken {
			m[oldNormal] = to
		}
	}
}

// Lookup resolves a key through the mapping.
func (m Mapping) Lookup(k stepkey.Key) (stepkey.Key, bool) {
	to, ok := m[k.Normal()]
	return to, ok
}

// Rewrite replaces every reference that resolves through the mapping
// with its replacement, leaving the rest untouched, and returns the
// number of references rewritten. Step identity fields are not
// touched; renaming steps is the caller's move.
func Rewrite(f *flow.Flow, m Mapping) int {
	n := 0
	rewrite := func(k *stepkey.Key) {
		if to, ok := m.Lookup(*k); ok {
			*k = to
			n++
		}
	}
	for _, st := range f.Steps() {
		for i := range st.DependsOn {
			rewrite(&st.DependsOn[i])
		}
		for i := range st.Gotos {
			rewrite(&st.Gotos[i])
		}
		for i := range st.Calls {
			rewrite(&st.Calls[i])
		}
	}
	for bi := range f.Branches {
		br := &f.Branches[bi]
		rewrite(&br.From)
		for gi := range br.Guards {
			rewrite(&br.Guards[gi].To)
		}
		if br.MergeTo != nil {
			rewrite(br.MergeTo)
		}
	}
	return n
}
