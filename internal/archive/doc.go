// Package archive keeps the journal of committed flow revisions.
//
// Every committed transaction appends one revision: the canonical JSON
// of the document, the advisory diagnostics recorded at commit time,
// and the token of the transaction that produced it. Revision ids are
// content hashes of the document, so appending the same document twice
// is a no-op and the journal is append-only by construction.
//
// Storage is SQLite, configured for a single writer:
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL (balance durability/performance)
//   - busy_timeout=5000 for lock contention
//   - foreign_keys=ON
//
// Ordering uses the seq column, a position issued by the logical
// Clock, never wall time. Every multi-row query orders by
// seq ASC, id COLLATE BINARY ASC so history reads come back in the
// same order on every machine.
package archive
