package editor

import (
	"sync"

	"github.com/google/uuid"
)

// TokenGenerator mints the commit tokens that identify transactions.
// Implemented by UUIDv7Generator for production use and FixedGenerator
// for deterministic tests.
type TokenGenerator interface {
	Generate() string
}

// UUIDv7Generator mints time-sortable UUIDv7 tokens, so a transaction
// log reads in commit order. Stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate returns a new hyphenated UUIDv7.
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined tokens in order, for tests that
// compare exact output. Safe for concurrent use.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that hands out the given
// tokens one by one. Generate panics once they run out, which catches
// a test applying more transactions than it declared.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("editor: fixed token generator exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
