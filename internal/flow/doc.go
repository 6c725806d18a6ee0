// Package flow defines the in-memory document model: titled sections
// of ordered, keyed steps, plus the branch table that records
// conditional paths between them.
//
// Committed flows are treated as immutable. Code that needs to change
// one clones it, edits the clone, and swaps the result in, so readers
// can hold a *Flow without locking. Clone is a full deep copy; nothing
// mutable is shared between a flow and its clone.
//
// The package also provides the canonical serialization used for
// content addressing. CanonicalJSON is deterministic across platforms
// and insertion orders, and RevisionID hashes it with domain
// separation, so two flows with the same canonical form share an
// identity no matter how they were produced.
package flow
