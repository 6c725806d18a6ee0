package archive

import (
	"context"
	"database/sql"
	"fmt"
)

// Revision retrieves a single revision by id.
// Returns sql.ErrNoRows if not found.
func (a *Archive) Revision(ctx context.Context, id string) (Revision, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, seq, commit_token, title, document, diagnostics
		FROM revisions
		WHERE id = ?
	`, id)

	return scanRevisionRow(row)
}

// Latest returns the most recently journaled revision.
// Returns sql.ErrNoRows on an empty archive.
func (a *Archive) Latest(ctx context.Context) (Revision, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, seq, commit_token, title, document, diagnostics
		FROM revisions
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT 1
	`)

	return scanRevisionRow(row)
}

// History returns every revision with deterministic ordering:
// ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) for an empty archive.
func (a *Archive) History(ctx context.Context) ([]Revision, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, seq, commit_token, title, document, diagnostics
		FROM revisions
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query revisions: %w", err)
	}
	defer rows.Close()

	var revisions []Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revisions: %w", err)
	}

	if revisions == nil {
		revisions = []Revision{}
	}

	return revisions, nil
}

// LastSeq returns the highest seq position in the journal, 0 when
// empty. Used to resume the logical clock when reopening an archive.
func (a *Archive) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := a.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM revisions
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// scanRevision scans a result row into a Revision.
func scanRevision(rows *sql.Rows) (Revision, error) {
	var rev Revision
	var document, diagJSON string

	if err := rows.Scan(&rev.ID, &rev.Seq, &rev.CommitToken, &rev.Title, &document, &diagJSON); err != nil {
		return Revision{}, fmt.Errorf("scan revision: %w", err)
	}

	rev.Document = []byte(document)

	diags, err := unmarshalDiagnostics(diagJSON)
	if err != nil {
		return Revision{}, err
	}
	rev.Diagnostics = diags

	return rev, nil
}

// scanRevisionRow scans a single row into a Revision.
func scanRevisionRow(row *sql.Row) (Revision, error) {
	var rev Revision
	var document, diagJSON string

	if err := row.Scan(&rev.ID, &rev.Seq, &rev.CommitToken, &rev.Title, &document, &diagJSON); err != nil {
		return Revision{}, err
	}

	rev.Document = []byte(document)

	diags, err := unmarshalDiagnostics(diagJSON)
	if err != nil {
		return Revision{}, err
	}
	rev.Diagnostics = diags

	return rev, nil
}
