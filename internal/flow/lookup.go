package flow

import "github.com/roach88/apflow/internal/stepkey"

// Locate finds the step with the given key, matching numerically so
// 1.100 and 1.1000 resolve to the same step. It returns the section
// and step indices, or ok false when no step matches.
func (f *Flow) Locate(key stepkey.Key) (sec, idx int, ok bool) {
	for si := range f.Sections {
		if f.Sections[si].Major != key.Major() {
			continue
		}
		for ti := range f.Sections[si].Steps {
			if f.Sections[si].Steps[ti].ID.Equal(key) {
				return si, ti, true
			}
		}
	}
	return 0, 0, false
}

// FindStep returns a pointer to the step with the given key, or nil.
// The pointer aliases f's storage and goes stale across structural
// edits.
func (f *Flow) FindStep(key stepkey.Key) *Step {
	si, ti, ok := f.Locate(key)
	if !ok {
		return nil
	}
	return &f.Sections[si].Steps[ti]
}

// HasStep reports whether any step carries a key numerically equal to
// the given one.
func (f *Flow) HasStep(key stepkey.Key) bool {
	_, _, ok := f.Locate(key)
	return ok
}

// SectionFor returns the index of the section with the given major, or
// -1.
func (f *Flow) SectionFor(major int64) int {
	for si := range f.Sections {
		if f.Sections[si].Major == major {
			return si
		}
	}
	return -1
}

// Steps returns pointers to every step in document order. The pointers
// alias f's storage.
func (f *Flow) Steps() []*Step {
	var out []*Step
	for si := range f.Sections {
		for ti := range f.Sections[si].Steps {
			out = append(out, &f.Sections[si].Steps[ti])
		}
	}
	return out
}

// Keys returns every step key in document order.
func (f *Flow) Keys() []stepkey.Key {
	var out []stepkey.Key
	for si := range f.Sections {
		for ti := range f.Sections[si].Steps {
			out = append(out, f.Sections[si].Steps[ti].ID)
		}
	}
	return out
}

// StepCount returns the number of steps across all sections.
func (f *Flow) StepCount() int {
	n := 0
	for si := range f.Sections {
		n += len(f.Sections[si].Steps)
	}
	return n
}
