package editor

import (
	"errors"
	"fmt"

	"github.com/roach88/apflow/internal/diag"
)

// OrchestrationError is the single aggregated failure a rolled-back
// transaction returns: the operation that broke, the first hard error,
// and every diagnostic collected before the rollback.
type OrchestrationError struct {
	// Token identifies the failed transaction.
	Token string

	// Index is the zero-based position of the failing operation, or
	// -1 when the final validation pass failed after every operation
	// applied.
	Index int

	// Op describes the failing operation, empty for final validation.
	Op string

	// Err is the first hard error. It is the wrapped cause, a
	// *diag.ValidationError when diagnostics forced the rollback.
	Err error

	// Diagnostics carries everything collected up to the failure.
	Diagnostics diag.List
}

// Error implements the error interface.
func (e *OrchestrationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("transaction %s rolled back: %v", e.Token, e.Err)
	}
	return fmt.Sprintf("transaction %s rolled back at op %d (%s): %v", e.Token, e.Index+1, e.Op, e.Err)
}

// Unwrap exposes the first hard error to errors.Is and errors.As.
func (e *OrchestrationError) Unwrap() error {
	return e.Err
}

// AsOrchestrationError returns the *OrchestrationError in err's chain,
// if any. Uses errors.As to handle wrapped errors.
func AsOrchestrationError(err error) (*OrchestrationError, bool) {
	var oe *OrchestrationError
	if errors.As(err, &oe) {
		return oe, true
	}
	return nil, false
}
