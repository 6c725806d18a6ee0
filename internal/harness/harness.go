package harness

import (
	"context"
	"fmt"
	"os"

	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/editor"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/registry"
	"github.com/roach88/apflow/internal/validator"
)

// defaultCommitToken keeps scenario output stable when the scenario
// does not pick its own token.
const defaultCommitToken = "txn-1"

// Run executes a scenario through a fresh editor session and evaluates
// its expectations. The returned error covers infrastructure failures
// such as an unreadable document or a malformed script; failed
// expectations land in Result.Errors with Pass false.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	f, err := loadDocument(scenario)
	if err != nil {
		return nil, err
	}

	script, err := scenario.buildScript()
	if err != nil {
		return nil, err
	}

	token := scenario.CommitToken
	if token == "" {
		token = defaultCommitToken
	}
	opts := []editor.SessionOption{
		editor.WithRegistries(registries(scenario)),
		editor.WithTokenGenerator(editor.NewFixedGenerator(token)),
	}
	if scenario.PerOpValidation {
		opts = append(opts, editor.WithPerOpValidation())
	}
	session := editor.NewSession(f, opts...)

	applied, applyErr := session.Apply(ctx, script)

	result := NewResult(scenario.Name)
	result.State = string(applied.State)
	result.Revision = applied.Revision
	result.Diagnostics = applied.Diagnostics
	result.Flow = session.Flow()
	for _, k := range result.Flow.Keys() {
		result.Keys = append(result.Keys, k.String())
	}
	if len(applied.Renames) > 0 {
		result.Renames = make(map[string]string, len(applied.Renames))
		for old, to := range applied.Renames {
			result.Renames[old] = to.String()
		}
	}

	for _, msg := range evaluateExpectations(result, scenario.Expect, applyErr) {
		result.AddError(msg)
	}
	return result, nil
}

// loadDocument reads and decodes the scenario's starting document. The
// document must pass the schema; semantic findings are left to the
// session's validation passes.
func loadDocument(s *Scenario) (*flow.Flow, error) {
	var (
		data   []byte
		format document.Format
		err    error
	)
	if s.DocumentInline != "" {
		data = []byte(s.DocumentInline)
		format = document.FormatJSON
	} else {
		data, err = os.ReadFile(s.Document)
		if err != nil {
			return nil, fmt.Errorf("reading document: %w", err)
		}
		format = document.DetectFormat(s.Document)
	}
	if s.Format != "" {
		format = document.Format(s.Format)
	}

	f, diags, err := document.Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding document: %w", err)
	}
	if f == nil {
		if len(diags) > 0 {
			return nil, fmt.Errorf("starting document fails the schema: %s", diags[0].Message)
		}
		return nil, fmt.Errorf("starting document fails the schema")
	}
	return f, nil
}

// registries builds the catalogs from the scenario's inline entries.
func registries(s *Scenario) validator.Registries {
	regs := validator.Registries{}
	if len(s.Actors) > 0 {
		regs.Actors = registry.FromNames("actors", s.Actors...)
	}
	if len(s.Actions) > 0 {
		regs.Actions = registry.FromNames("actions", s.Actions...)
	}
	return regs
}
