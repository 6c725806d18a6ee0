package sequencer

import (
	"fmt"
	"math"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/refs"
	"github.com/roach88/apflow/internal/stepkey"
)

// Renumber computes canonical keys at the given fraction width for the
// steps named by targets, without mutating the flow. Each named step's
// image is its 1-based position in its section expressed as a fraction,
// so a fully renumbered section reads 1.001, 1.002, 1.003. The returned
// mapping sends every named key to its image, identities included.
//
// Renumbering a strict subset is allowed only when the images keep the
// section's order intact around the untouched keys; otherwise it fails
// with *AmbiguousRenumberError rather than silently reordering. A
// section whose steps do not fit at the width fails with
// *stepkey.PrecisionLossError.
func Renumber(f *flow.Flow, targets []stepkey.Key, width int) (refs.Mapping, error) {
	if width < stepkey.MinFractionDigits {
		return nil, &stepkey.PrecisionLossError{
			Precision: width,
			Reason:    fmt.Sprintf("renumbering needs a fraction width of at least %d", stepkey.MinFractionDigits),
		}
	}

	chosen := make(map[int]map[int]bool)
	for _, target := range targets {
		si, ti, ok := f.Locate(target)
		if !ok {
			return nil, &NotFoundError{Key: target}
		}
		if chosen[si] == nil {
			chosen[si] = make(map[int]bool)
		}
		chosen[si][ti] = true
	}

	capacity := capacityAt(width)
	mapping := refs.Mapping{}
	for si := range f.Sections {
		picks := chosen[si]
		if len(picks) == 0 {
			continue
		}
		sec := &f.Sections[si]

		images := make(map[int]stepkey.Key, len(picks))
		for ti := range sec.Steps {
			if !picks[ti] {
				continue
			}
			pos := ti + 1
			if pos > capacity {
				return nil, &stepkey.PrecisionLossError{
					Precision: width,
					Reason: fmt.Sprintf("section %d holds a step at position %d, past the %d keys width %d can hold",
						sec.Major, pos, capacity, width),
				}
			}
			img, err := stepkey.Parse(fmt.Sprintf("%d.%0*d", sec.Major, width, pos))
			if err != nil {
				return nil, err
			}
			images[ti] = img
		}

		var prev stepkey.Key
		prevPicked := false
		for ti := range sec.Steps {
			cur := sec.Steps[ti].ID
			if picks[ti] {
				cur = images[ti]
			}
			// Disorder between two untouched keys predates the
			// renumber and is the validator's finding, not ours.
			if ti > 0 && cur.Compare(prev) <= 0 {
				switch {
				case picks[ti]:
					return nil, &AmbiguousRenumberError{Key: sec.Steps[ti].ID, Image: cur, Obstacle: prev}
				case prevPicked:
					return nil, &AmbiguousRenumberError{Key: sec.Steps[ti-1].ID, Image: prev, Obstacle: cur}
				}
			}
			prev, prevPicked = cur, picks[ti]
		}

		// All images take effect at once, so entries are set directly:
		// composing through Add would chain 1.002 to 1.003 onto an
		// earlier step's image of 1.002.
		for ti := range sec.Steps {
			if picks[ti] {
				mapping[sec.Steps[ti].ID.Normal()] = images[ti]
			}
		}
	}
	return mapping, nil
}

// Rename applies a renumber mapping to step identity, replacing each
// mapped step's key with its image and returning how many changed.
// References are the refs package's side of the rename.
func Rename(f *flow.Flow, m refs.Mapping) int {
	n := 0
	for _, st := range f.Steps() {
		if to, ok := m.Lookup(st.ID); ok {
			st.ID = to
			n++
		}
	}
	return n
}

// capacityAt returns how many steps a fraction of the given width can
// number, saturating far past any real section.
func capacityAt(width int) int {
	if width >= 10 {
		return math.MaxInt
	}
	c := 1
	for i := 0; i < width; i++ {
		c *= 10
	}
	return c - 1
}
