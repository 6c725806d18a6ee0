package flow

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity. The version suffix
// leaves room for algorithm migration.
const (
	// DomainRevision scopes hashes of whole committed documents.
	DomainRevision = "apflow/revision/v1"
)

// RevisionID computes the content-addressed identity of the flow:
// SHA-256 over its canonical JSON with domain separation. Two flows
// with equal canonical forms share a revision id regardless of field
// order or string normalization in the source document.
func (f *Flow) RevisionID() (string, error) {
	canonical, err := f.CanonicalJSON()
	if err != nil {
		return "", fmt.Errorf("revision id: %w", err)
	}
	return hashWithDomain(DomainRevision, canonical), nil
}

// MustRevisionID is like RevisionID but panics on error. Use only in
// tests or when the flow is known to be well formed.
func (f *Flow) MustRevisionID() string {
	id, err := f.RevisionID()
	if err != nil {
		panic(err)
	}
	return id
}

// hashWithDomain computes SHA256(domain + 0x00 + data). The null byte
// separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}
