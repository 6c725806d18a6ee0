// Package sequencer implements the ordered mutations of a flow
// document: inserting steps into key gaps, deleting and moving them,
// updating their fields, and canonical renumbering. Each operation
// mutates the flow in place and either completes or leaves it
// untouched; grouping operations into transactions, rewriting
// references, and validating the result belong to the editor.
package sequencer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// InsertAfter adds st immediately after the step carrying target,
// within the same section. A zero st.ID gets a fresh key: the midpoint
// to the next step, or an appended key at the section tail. A non-zero
// st.ID is honored as given, provided it falls strictly inside that
// gap and no step already carries it.
func InsertAfter(f *flow.Flow, target stepkey.Key, st flow.Step) (stepkey.Key, error) {
	si, ti, ok := f.Locate(target)
	if !ok {
		return stepkey.Key{}, &NotFoundError{Key: target}
	}
	sec := &f.Sections[si]

	lower := sec.Steps[ti].ID
	var upper *stepkey.Key
	if ti+1 < len(sec.Steps) {
		upper = &sec.Steps[ti+1].ID
	}
	key, err := placeKey(f, sec.Major, lower, upper, st.ID)
	if err != nil {
		return stepkey.Key{}, err
	}

	st.ID = key
	sec.Steps = slices.Insert(sec.Steps, ti+1, st)
	return key, nil
}

// InsertBefore adds st immediately before the step carrying target,
// within the same section. Keys are assigned as in InsertAfter, with
// the section floor as the lower bound when target is the first step.
func InsertBefore(f *flow.Flow, target stepkey.Key, st flow.Step) (stepkey.Key, error) {
	si, ti, ok := f.Locate(target)
	if !ok {
		return stepkey.Key{}, &NotFoundError{Key: target}
	}
	sec := &f.Sections[si]

	lower := stepkey.Bare(sec.Major)
	if ti > 0 {
		lower = sec.Steps[ti-1].ID
	}
	upper := sec.Steps[ti].ID
	key, err := placeKey(f, sec.Major, lower, &upper, st.ID)
	if err != nil {
		return stepkey.Key{}, err
	}

	st.ID = key
	sec.Steps = slices.Insert(sec.Steps, ti, st)
	return key, nil
}

// Delete removes the step carrying target and returns it. References
// to the removed step stay in the document for final validation to
// find; the owning section stays even when it empties.
func Delete(f *flow.Flow, target stepkey.Key) (flow.Step, error) {
	si, ti, ok := f.Locate(target)
	if !ok {
		return flow.Step{}, &NotFoundError{Key: target}
	}
	sec := &f.Sections[si]
	st := sec.Steps[ti]
	sec.Steps = slices.Delete(sec.Steps, ti, ti+1)
	return st, nil
}

// Move relocates the step carrying target to sit immediately after
// the step carrying anchor, assigning it a fresh key in anchor's
// section. The vacated key may be reused by the new position. Moving a
// step after itself is a no-op that returns its current key.
// References to the old key are not rewritten here; the caller applies
// the old to new rename.
func Move(f *flow.Flow, target, anchor stepkey.Key) (stepkey.Key, error) {
	tsi, tti, ok := f.Locate(target)
	if !ok {
		return stepkey.Key{}, &NotFoundError{Key: target}
	}
	if target.Equal(anchor) {
		return f.Sections[tsi].Steps[tti].ID, nil
	}
	asi, ati, ok := f.Locate(anchor)
	if !ok {
		return stepkey.Key{}, &NotFoundError{Key: anchor}
	}
	anchorSec := &f.Sections[asi]

	// The gap is bounded by anchor and its first follower that is not
	// the step being moved.
	lower := anchorSec.Steps[ati].ID
	var upper *stepkey.Key
	ui := ati + 1
	if asi == tsi && ui == tti {
		ui++
	}
	if ui < len(anchorSec.Steps) {
		u := anchorSec.Steps[ui].ID
		upper = &u
	}
	key, err := placeKey(f, anchorSec.Major, lower, upper, stepkey.Key{})
	if err != nil {
		return stepkey.Key{}, err
	}

	st := f.Sections[tsi].Steps[tti]
	f.Sections[tsi].Steps = slices.Delete(f.Sections[tsi].Steps, tti, tti+1)
	pos := ati + 1
	if asi == tsi && tti < ati {
		pos--
	}
	st.ID = key
	anchorSec.Steps = slices.Insert(anchorSec.Steps, pos, st)
	return key, nil
}

// UpdateField sets one named field on the step carrying target. Scalar
// fields (actor, action, notes) take a string; list fields (inputs,
// outputs) take strings and key list fields (depends_on, goto, calls)
// take key text, either accepting nil to clear; meta.NAME sets one
// annotation and takes nil to remove it.
func UpdateField(f *flow.Flow, target stepkey.Key, field string, value any) error {
	st := f.FindStep(target)
	if st == nil {
		return &NotFoundError{Key: target}
	}

	switch field {
	case "actor":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		st.Actor = s
	case "action":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		st.Action = s
	case "notes":
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		st.Notes = s
	case "inputs":
		list, err := asStringList(field, value)
		if err != nil {
			return err
		}
		st.Inputs = list
	case "outputs":
		list, err := asStringList(field, value)
		if err != nil {
			return err
		}
		st.Outputs = list
	case "depends_on":
		keys, err := asKeyList(field, value)
		if err != nil {
			return err
		}
		st.DependsOn = keys
	case "goto":
		keys, err := asKeyList(field, value)
		if err != nil {
			return err
		}
		st.Gotos = keys
	case "calls":
		keys, err := asKeyList(field, value)
		if err != nil {
			return err
		}
		st.Calls = keys
	default:
		name, ok := strings.CutPrefix(field, "meta.")
		if !ok || name == "" {
			return &FieldError{Field: field, Reason: "no such step field"}
		}
		if value == nil {
			delete(st.Meta, name)
			return nil
		}
		s, err := asString(field, value)
		if err != nil {
			return err
		}
		if st.Meta == nil {
			st.Meta = make(map[string]string)
		}
		st.Meta[name] = s
	}
	return nil
}

// placeKey resolves the key for an insertion into the gap between
// lower and upper, a nil upper meaning the section tail. A zero
// explicit key asks for a computed one.
func placeKey(f *flow.Flow, major int64, lower stepkey.Key, upper *stepkey.Key, explicit stepkey.Key) (stepkey.Key, error) {
	if !explicit.IsZero() {
		if explicit.Major() != major {
			return stepkey.Key{}, fmt.Errorf("explicit key %s outside section %d: %w",
				explicit, major, stepkey.ErrMajorMismatch)
		}
		if f.HasStep(explicit) {
			return stepkey.Key{}, &DuplicateKeyError{Key: explicit}
		}
		if explicit.Compare(lower) <= 0 || (upper != nil && explicit.Compare(*upper) >= 0) {
			return stepkey.Key{}, fmt.Errorf("explicit key %s does not fall after %s: %w",
				explicit, lower, stepkey.ErrNotOrdered)
		}
		return explicit, nil
	}
	if upper == nil {
		return stepkey.AppendAfter(lower), nil
	}
	return stepkey.Midpoint(lower, *upper)
}

func asString(field string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &FieldError{Field: field, Reason: fmt.Sprintf("want a string, got %T", v)}
	}
	return s, nil
}

func asStringList(field string, v any) ([]string, error) {
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return slices.Clone(list), nil
	case []any:
		out := make([]string, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, &FieldError{Field: field, Reason: fmt.Sprintf("element %d: want a string, got %T", i, item)}
			}
			out[i] = s
		}
		return out, nil
	default:
		return nil, &FieldError{Field: field, Reason: fmt.Sprintf("want a list of strings, got %T", v)}
	}
}

func asKeyList(field string, v any) ([]stepkey.Key, error) {
	parse := func(i int, text string) (stepkey.Key, error) {
		k, err := stepkey.Parse(text)
		if err != nil {
			return stepkey.Key{}, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		return k, nil
	}
	switch list := v.(type) {
	case nil:
		return nil, nil
	case []stepkey.Key:
		return slices.Clone(list), nil
	case []string:
		out := make([]stepkey.Key, len(list))
		for i, text := range list {
			k, err := parse(i, text)
			if err != nil {
				return nil, err
			}
			out[i] = k
		}
		return out, nil
	case []any:
		out := make([]stepkey.Key, len(list))
		for i, item := range list {
			text, ok := item.(string)
			if !ok {
				return nil, &FieldError{Field: field, Reason: fmt.Sprintf("element %d: want key text, got %T", i, item)}
			}
			k, err := parse(i, text)
			if err != nil {
				return nil, err
			}
			out[i] = k
		}
		return out, nil
	default:
		return nil, &FieldError{Field: field, Reason: fmt.Sprintf("want a list of keys, got %T", v)}
	}
}
