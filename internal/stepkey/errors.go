package stepkey

import (
	"errors"
	"fmt"
)

// Sentinel errors for contract violations in key arithmetic.
var (
	// ErrMajorMismatch reports an operation that needs both keys in the
	// same section.
	ErrMajorMismatch = errors.New("keys are in different majors")

	// ErrNotOrdered reports an operation that needs strictly ascending
	// keys.
	ErrNotOrdered = errors.New("keys are not in ascending order")
)

// FormatError reports text that does not satisfy the key wire contract.
type FormatError struct {
	// Input is the rejected text.
	Input string

	// Reason describes which part of the contract it broke.
	Reason string
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid step key %q: %s", e.Input, e.Reason)
}

// AsFormatError returns the *FormatError in err's chain, if any.
// Uses errors.As to handle wrapped errors.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// AdjacentKeysError reports that no key exists between two keys at a
// fixed fraction width. Midpoint recovers from it internally by
// widening one digit; callers that hold the width fixed see it.
type AdjacentKeysError struct {
	// A and B are the keys with no room between them.
	A, B Key

	// Precision is the fraction width the attempt was made at.
	Precision int
}

// Error implements the error interface.
func (e *AdjacentKeysError) Error() string {
	return fmt.Sprintf("no key between %s and %s at precision %d", e.A, e.B, e.Precision)
}

// AsAdjacentKeysError returns the *AdjacentKeysError in err's chain, if
// any. Uses errors.As to handle wrapped errors.
func AsAdjacentKeysError(err error) (*AdjacentKeysError, bool) {
	var ae *AdjacentKeysError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// PrecisionLossError reports a fraction width that cannot represent a
// key without crossing into the next major, or a renumbering that
// cannot fit its steps at the requested width.
type PrecisionLossError struct {
	// Key is the key that would lose information. It is zero when the
	// error concerns a whole section rather than one key.
	Key Key

	// Precision is the fraction width that was requested.
	Precision int

	// Reason describes the specific failure.
	Reason string
}

// Error implements the error interface.
func (e *PrecisionLossError) Error() string {
	if e.Key.IsZero() {
		return fmt.Sprintf("precision %d: %s", e.Precision, e.Reason)
	}
	return fmt.Sprintf("cannot hold %s at precision %d: %s", e.Key, e.Precision, e.Reason)
}

// AsPrecisionLossError returns the *PrecisionLossError in err's chain,
// if any. Uses errors.As to handle wrapped errors.
func AsPrecisionLossError(err error) (*PrecisionLossError, bool) {
	var pe *PrecisionLossError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
