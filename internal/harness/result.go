package harness

import (
	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates every expectation held.
	Pass bool `json:"pass"`

	// ScenarioName echoes the scenario for reports.
	ScenarioName string `json:"scenario_name"`

	// State is the terminal transaction state.
	State string `json:"state"`

	// Revision is the committed document's content id, empty on
	// rollback.
	Revision string `json:"revision,omitempty"`

	// Keys is the session document's step key order after the run.
	Keys []string `json:"keys"`

	// Diagnostics is the final validation output.
	Diagnostics diag.List `json:"diagnostics,omitempty"`

	// Renames records every key change the script made, old normal
	// form to new key text.
	Renames map[string]string `json:"renames,omitempty"`

	// Errors lists failed expectations. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Flow is the session document after the run. On rollback it is
	// the untouched starting document.
	Flow *flow.Flow `json:"-"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(name string) *Result {
	return &Result{
		Pass:         true,
		ScenarioName: name,
		Keys:         []string{},
		Errors:       []string{},
	}
}

// AddError records a failed expectation and marks the result failed.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.Pass = false
}

// Codes returns the diagnostic codes in output order.
func (r *Result) Codes() []string {
	if len(r.Diagnostics) == 0 {
		return nil
	}
	out := make([]string, len(r.Diagnostics))
	for i, d := range r.Diagnostics {
		out[i] = string(d.Code)
	}
	return out
}
