// Package validator implements the semantic validation phase for flow
// documents: every check runs, findings accumulate as diagnostics, and
// nothing short-circuits. The structural schema phase lives in the
// document package; ValidateDocument chains the two.
package validator

import (
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/registry"
)

// Registries carries the catalogs membership checks run against. A nil
// catalog disables its check, so documents validate before the
// catalogs are known.
type Registries struct {
	Actors  *registry.Registry
	Actions *registry.Registry
}

// Validate runs every semantic check against a schema-conformant flow
// and returns the findings in check order: identity and ordering,
// references, registry membership, branches, reachability, dataflow.
// It never mutates the flow, and equal inputs yield equal output.
func Validate(f *flow.Flow, regs Registries) diag.List {
	var out diag.List
	out = append(out, checkStructure(f)...)
	out = append(out, checkReferences(f)...)
	out = append(out, checkRegistries(f, regs)...)
	out = append(out, checkBranches(f)...)
	out = append(out, checkReachability(f)...)
	out = append(out, checkDataflow(f)...)
	return out
}

// ValidateDocument runs both phases over raw document bytes: the
// structural schema first, stopping there when it fails, then the
// semantic checks against the decoded flow. The flow is nil exactly
// when the schema phase failed.
func ValidateDocument(data []byte, format document.Format, regs Registries) (*flow.Flow, diag.List, error) {
	f, diags, err := document.Decode(data, format)
	if err != nil || diags.HasErrors() {
		return nil, diags, err
	}
	return f, append(diags, Validate(f, regs)...), nil
}
