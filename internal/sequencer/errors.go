package sequencer

import (
	"errors"
	"fmt"

	"github.com/roach88/apflow/internal/stepkey"
)

// NotFoundError reports an operation aimed at a key no step carries.
type NotFoundError struct {
	// Key is the key that resolved to nothing.
	Key stepkey.Key
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no step with key %s", e.Key)
}

// AsNotFoundError returns the *NotFoundError in err's chain, if any.
// Uses errors.As to handle wrapped errors.
func AsNotFoundError(err error) (*NotFoundError, bool) {
	var ne *NotFoundError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// DuplicateKeyError reports an explicit key that another step already
// carries.
type DuplicateKeyError struct {
	// Key is the key that is already in use.
	Key stepkey.Key
}

// Error implements the error interface.
func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("step key %s is already in use", e.Key)
}

// AsDuplicateKeyError returns the *DuplicateKeyError in err's chain,
// if any. Uses errors.As to handle wrapped errors.
func AsDuplicateKeyError(err error) (*DuplicateKeyError, bool) {
	var de *DuplicateKeyError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AmbiguousRenumberError reports a renumbering that would land a key
// on, or push it past, a key outside the renumbered set. Committing it
// would reorder the document, so the whole renumber is refused.
type AmbiguousRenumberError struct {
	// Key is the renumbered key whose image causes the conflict.
	Key stepkey.Key

	// Image is the canonical key the renumbering computed for it.
	Image stepkey.Key

	// Obstacle is the untouched neighbor the image collides with or
	// crosses.
	Obstacle stepkey.Key
}

// Error implements the error interface.
func (e *AmbiguousRenumberError) Error() string {
	return fmt.Sprintf("renumbering %s to %s would disorder it against untouched %s",
		e.Key, e.Image, e.Obstacle)
}

// AsAmbiguousRenumberError returns the *AmbiguousRenumberError in
// err's chain, if any. Uses errors.As to handle wrapped errors.
func AsAmbiguousRenumberError(err error) (*AmbiguousRenumberError, bool) {
	var ae *AmbiguousRenumberError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// FieldError reports an UpdateField aimed at a field that does not
// exist or a value of the wrong shape.
type FieldError struct {
	// Field is the field name as given.
	Field string

	// Reason describes what was wrong with it.
	Reason string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// AsFieldError returns the *FieldError in err's chain, if any. Uses
// errors.As to handle wrapped errors.
func AsFieldError(err error) (*FieldError, bool) {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
