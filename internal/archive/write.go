package archive

import (
	"context"
	"fmt"
)

// AppendRevision inserts a revision into the journal and reports
// whether a new row was written.
//
// Uses ON CONFLICT(id) DO NOTHING for idempotency: the id is a content
// hash, so appending a document that is already journaled is a no-op
// and returns inserted=false. Other constraint violations still return
// errors.
func (a *Archive) AppendRevision(ctx context.Context, rev Revision) (inserted bool, err error) {
	if rev.ID == "" {
		return false, fmt.Errorf("append revision: missing id")
	}
	if len(rev.Document) == 0 {
		return false, fmt.Errorf("append revision: missing document")
	}

	diagJSON, err := marshalDiagnostics(rev.Diagnostics)
	if err != nil {
		return false, fmt.Errorf("append revision: %w", err)
	}

	result, err := a.db.ExecContext(ctx, `
		INSERT INTO revisions
		(id, seq, commit_token, title, document, diagnostics)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rev.ID,
		rev.Seq,
		rev.CommitToken,
		rev.Title,
		string(rev.Document),
		diagJSON,
	)
	if err != nil {
		return false, fmt.Errorf("append revision: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("append revision: rows affected: %w", err)
	}
	return rows > 0, nil
}
