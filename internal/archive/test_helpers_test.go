package archive

import (
	"path/filepath"
	"testing"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// createTestArchive creates a fresh on-disk archive for testing.
func createTestArchive(t *testing.T) *Archive {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

// intakeFlow builds a small valid document for journaling tests.
// The notes field varies the content so distinct revisions hash to
// distinct ids.
func intakeFlow(notes string) *flow.Flow {
	return &flow.Flow{
		Title: "patient intake",
		Sections: []flow.Section{
			{
				Major: 1,
				Title: "triage",
				Steps: []flow.Step{
					{
						ID:      stepkey.MustParse("1.001"),
						Actor:   "nurse",
						Action:  "assess",
						Outputs: []string{"acuity"},
						Notes:   notes,
					},
					{
						ID:     stepkey.MustParse("1.002"),
						Actor:  "doctor",
						Action: "treat",
						Inputs: []string{"acuity"},
					},
				},
			},
		},
	}
}

// createTestRevision stamps a flow into a Revision at the given seq.
func createTestRevision(t *testing.T, f *flow.Flow, seq int64, token string) Revision {
	t.Helper()
	doc, err := f.CanonicalJSON()
	if err != nil {
		t.Fatalf("CanonicalJSON() failed: %v", err)
	}
	id, err := f.RevisionID()
	if err != nil {
		t.Fatalf("RevisionID() failed: %v", err)
	}
	return Revision{
		ID:          id,
		Seq:         seq,
		CommitToken: token,
		Title:       "intake edits",
		Document:    doc,
	}
}
