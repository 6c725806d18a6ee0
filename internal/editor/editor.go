// Package editor is the transactional engine over flow documents: it
// applies an edit script to a working copy, rewrites references the
// moment keys move, validates the result, and either swaps the new
// document in atomically or discards it. A session holds one committed
// document; at most one transaction runs against it at a time.
package editor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/refs"
	"github.com/roach88/apflow/internal/sequencer"
	"github.com/roach88/apflow/internal/validator"
)

// State is a transaction's position in its lifecycle. Open and
// Applying are the in-flight phases and show up only in logs; a
// Result carries one of the two terminal states.
type State string

const (
	// StateOpen means the transaction has a token and a working copy
	// but no operation has run yet.
	StateOpen State = "open"

	// StateApplying means operations are mutating the working copy.
	StateApplying State = "applying"

	// StateCommitted means every operation applied and validation
	// found no errors; the session now holds the new document.
	StateCommitted State = "committed"

	// StateRolledBack means the working copy was discarded and the
	// session's document is untouched.
	StateRolledBack State = "rolled_back"
)

// Result reports one transaction.
type Result struct {
	// Token identifies the transaction.
	Token string

	// State is the final transaction state.
	State State

	// Revision is the content id of the committed document, empty on
	// rollback.
	Revision string

	// Diagnostics is the final validation output on commit, or what
	// was collected before a rollback.
	Diagnostics diag.List

	// Renames composes every key change the script made, old to new.
	// Nil on rollback.
	Renames refs.Mapping

	// Flow is a copy of the committed document, nil on rollback.
	Flow *flow.Flow
}

// Session owns one committed flow document and applies scripts to it
// serially. The zero value is not usable; NewSession copies the given
// document so later caller mutations cannot reach the snapshot.
type Session struct {
	mu       sync.Mutex
	flow     *flow.Flow
	revision string

	regs   validator.Registries
	perOp  bool
	tokens TokenGenerator
	logger *slog.Logger
}

// SessionOption configures a session.
type SessionOption func(*Session)

// WithRegistries supplies the actor and action catalogs validation
// runs against. Without it, membership checks are skipped.
func WithRegistries(regs validator.Registries) SessionOption {
	return func(s *Session) { s.regs = regs }
}

// WithPerOpValidation makes the session validate the working copy
// after every operation instead of only at the end, so a script stops
// at the first operation that leaves the document invalid. Slower, and
// stricter: later operations cannot repair earlier damage.
func WithPerOpValidation() SessionOption {
	return func(s *Session) { s.perOp = true }
}

// WithTokenGenerator replaces the UUIDv7 commit token source.
func WithTokenGenerator(g TokenGenerator) SessionOption {
	return func(s *Session) { s.tokens = g }
}

// WithLogger sets the transaction log destination.
func WithLogger(l *slog.Logger) SessionOption {
	return func(s *Session) { s.logger = l }
}

// NewSession builds a session holding a copy of f as its committed
// document.
func NewSession(f *flow.Flow, opts ...SessionOption) *Session {
	s := &Session{
		flow:   f.Clone(),
		tokens: UUIDv7Generator{},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if rev, err := s.flow.RevisionID(); err == nil {
		s.revision = rev
	}
	return s
}

// Flow returns a copy of the committed document.
func (s *Session) Flow() *flow.Flow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flow.Clone()
}

// Revision returns the content id of the committed document.
func (s *Session) Revision() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Apply runs the script as one transaction. Operations mutate a
// working copy in order; every key change is rewritten through the
// reference tracker as it happens; the result is validated and
// committed only when no ERROR diagnostic remains. On any failure the
// working copy is discarded, the committed document is untouched, and
// the returned error is a *OrchestrationError aggregating the first
// hard error with the diagnostics collected so far.
//
// Cancelling ctx between operations rolls the transaction back; once
// the final validation starts, the commit is not cancellable.
func (s *Session) Apply(ctx context.Context, script *Script) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if script == nil {
		script = &Script{}
	}
	token := s.tokens.Generate()
	working := s.flow.Clone()
	renames := refs.Mapping{}
	s.logger.Debug("transaction opened",
		"token", token, "state", StateOpen, "ops", len(script.Ops))

	rollback := func(index int, op string, cause error, diags diag.List) (*Result, error) {
		err := &OrchestrationError{Token: token, Index: index, Op: op, Err: cause, Diagnostics: diags}
		s.logger.Warn("transaction rolled back",
			"token", token, "at", op, "error", cause)
		return &Result{Token: token, State: StateRolledBack, Diagnostics: diags}, err
	}

	for i, op := range script.Ops {
		if err := ctx.Err(); err != nil {
			return rollback(i, op.String(), err, nil)
		}
		if err := s.applyOp(working, op, renames); err != nil {
			return rollback(i, op.String(), err, nil)
		}
		if s.perOp {
			if vd := validator.Validate(working, s.regs); vd.HasErrors() {
				return rollback(i, op.String(), vd.Err(), vd)
			}
		}
		s.logger.Debug("operation applied",
			"token", token, "state", StateApplying, "op", op.String())
	}

	final := validator.Validate(working, s.regs)
	if final.HasErrors() {
		return rollback(-1, "", final.Err(), final)
	}

	revision, err := working.RevisionID()
	if err != nil {
		return rollback(-1, "", err, final)
	}

	s.flow = working
	s.revision = revision
	s.logger.Info("transaction committed",
		"token", token,
		"ops", len(script.Ops),
		"revision", revision,
		"warnings", final.Count(diag.SeverityWarn))
	return &Result{
		Token:       token,
		State:       StateCommitted,
		Revision:    revision,
		Diagnostics: final,
		Renames:     renames,
		Flow:        working.Clone(),
	}, nil
}

// applyOp runs one operation against the working copy, rewriting
// references immediately when keys change and folding the change into
// the transaction's rename mapping.
func (s *Session) applyOp(working *flow.Flow, op Operation, renames refs.Mapping) error {
	switch op.Kind {
	case OpInsertAfter:
		_, err := sequencer.InsertAfter(working, op.Target, op.Step)
		return err

	case OpInsertBefore:
		_, err := sequencer.InsertBefore(working, op.Target, op.Step)
		return err

	case OpDelete:
		_, err := sequencer.Delete(working, op.Target)
		return err

	case OpMove:
		moved, err := sequencer.Move(working, op.Target, op.Anchor)
		if err != nil {
			return err
		}
		m := refs.Mapping{}
		m.Add(op.Target, moved)
		refs.Rewrite(working, m)
		renames.Merge(m)
		return nil

	case OpUpdate:
		return sequencer.UpdateField(working, op.Target, op.Field, op.Value)

	case OpRenumber:
		targets := op.Targets
		if len(targets) == 0 {
			targets = working.Keys()
		}
		m, err := sequencer.Renumber(working, targets, op.Width)
		if err != nil {
			return err
		}
		sequencer.Rename(working, m)
		refs.Rewrite(working, m)
		renames.Merge(m)
		return nil

	default:
		return fmt.Errorf("unknown operation %q", op.Kind)
	}
}
