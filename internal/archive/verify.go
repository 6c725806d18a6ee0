package archive

import (
	"context"
	"fmt"

	"github.com/roach88/apflow/internal/document"
)

// Fault describes one journaled revision whose stored document no
// longer matches its id.
type Fault struct {
	// ID is the journaled revision id.
	ID string

	// Seq is the revision's clock position.
	Seq int64

	// Reason says what the re-check found.
	Reason string
}

func (f Fault) String() string {
	return fmt.Sprintf("revision %s (seq %d): %s", f.ID, f.Seq, f.Reason)
}

// Verify re-derives every journaled revision id from its stored
// document and reports the revisions that no longer match. An intact
// archive yields an empty slice.
//
// Each document is decoded through the schema phase first, so bytes
// altered into a different valid document are caught by the hash and
// bytes altered into garbage are caught by the decoder.
func (a *Archive) Verify(ctx context.Context) ([]Fault, error) {
	revisions, err := a.History(ctx)
	if err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}

	faults := []Fault{}
	for _, rev := range revisions {
		f, diags, err := document.Decode(rev.Document, document.FormatJSON)
		if err != nil {
			return nil, fmt.Errorf("verify revision %s: %w", rev.ID, err)
		}
		if f == nil {
			reason := "stored document fails the schema"
			if len(diags) > 0 {
				reason = fmt.Sprintf("stored document fails the schema: %s", diags[0].Message)
			}
			faults = append(faults, Fault{ID: rev.ID, Seq: rev.Seq, Reason: reason})
			continue
		}

		id, err := f.RevisionID()
		if err != nil {
			return nil, fmt.Errorf("verify revision %s: %w", rev.ID, err)
		}
		if id != rev.ID {
			faults = append(faults, Fault{
				ID:     rev.ID,
				Seq:    rev.Seq,
				Reason: fmt.Sprintf("stored document hashes to %s", id),
			})
		}
	}

	return faults, nil
}
