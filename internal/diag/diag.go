package diag

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Severity classifies how a diagnostic affects the validation verdict.
type Severity string

const (
	// SeverityError blocks a document from committing.
	SeverityError Severity = "ERROR"
	// SeverityWarn flags a construct that is legal but suspect.
	SeverityWarn Severity = "WARN"
	// SeverityInfo surfaces observations with no verdict weight.
	SeverityInfo Severity = "INFO"
)

// Location pins a diagnostic to a place in the document. Zero-valued
// fields are omitted from output; a nil *Location means the diagnostic
// applies to the document as a whole.
type Location struct {
	// Section is the major of the owning section, 0 when not tied to
	// one.
	Section int64 `json:"section,omitempty" yaml:"section,omitempty"`

	// Step is the wire form of the owning step key, "" when not tied
	// to one.
	Step string `json:"step,omitempty" yaml:"step,omitempty"`

	// Branch is the 1-based ordinal in the branch table, 0 when not
	// tied to one.
	Branch int `json:"branch,omitempty" yaml:"branch,omitempty"`

	// Field names the document field involved, "" when not tied to
	// one.
	Field string `json:"field,omitempty" yaml:"field,omitempty"`
}

// String renders the location as "section 2, step 2.001, field actor".
// A nil location renders as "".
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	var parts []string
	if l.Section != 0 {
		parts = append(parts, fmt.Sprintf("section %d", l.Section))
	}
	if l.Step != "" {
		parts = append(parts, "step "+l.Step)
	}
	if l.Branch != 0 {
		parts = append(parts, fmt.Sprintf("branch %d", l.Branch))
	}
	if l.Field != "" {
		parts = append(parts, "field "+l.Field)
	}
	return strings.Join(parts, ", ")
}

// Diagnostic is one finding from a validation run.
type Diagnostic struct {
	Severity Severity  `json:"severity" yaml:"severity"`
	Code     Code      `json:"code" yaml:"code"`
	Message  string    `json:"message" yaml:"message"`
	Location *Location `json:"location,omitempty" yaml:"location,omitempty"`
}

// String renders the conventional single-line form:
//
//	ERROR APF0301 DANGLING_REF: goto names unknown step 9.001 (step 1.002)
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s %s %s: %s", d.Severity, d.Code, d.Code.Name(), d.Message)
	if loc := d.Location.String(); loc != "" {
		s += " (" + loc + ")"
	}
	return s
}

// New builds a diagnostic with a printf-style message.
func New(sev Severity, code Code, loc *Location, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Location: loc,
	}
}

// Errorf builds an ERROR diagnostic.
func Errorf(code Code, loc *Location, format string, args ...any) Diagnostic {
	return New(SeverityError, code, loc, format, args...)
}

// Warnf builds a WARN diagnostic.
func Warnf(code Code, loc *Location, format string, args ...any) Diagnostic {
	return New(SeverityWarn, code, loc, format, args...)
}

// Infof builds an INFO diagnostic.
func Infof(code Code, loc *Location, format string, args ...any) Diagnostic {
	return New(SeverityInfo, code, loc, format, args...)
}

// List is an ordered collection of diagnostics, in the order the
// checks produced them.
type List []Diagnostic

// HasErrors reports whether any entry carries SeverityError.
func (l List) HasErrors() bool {
	for _, d := range l {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors returns only the SeverityError entries, preserving order.
func (l List) Errors() List {
	var out List
	for _, d := range l {
		if d.Severity == SeverityError {
			out = append(out, d)
		}
	}
	return out
}

// Count returns how many entries carry the given severity.
func (l List) Count(sev Severity) int {
	n := 0
	for _, d := range l {
		if d.Severity == sev {
			n++
		}
	}
	return n
}

// Err converts the list into an error when it contains at least one
// SeverityError, carrying the full list so callers can still report
// warnings alongside. A list without errors yields nil.
func (l List) Err() error {
	if !l.HasErrors() {
		return nil
	}
	return &ValidationError{Diagnostics: slices.Clone(l)}
}

// ValidationError wraps the diagnostics of a failed validation run.
type ValidationError struct {
	Diagnostics List
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	errs := e.Diagnostics.Errors()
	switch len(errs) {
	case 0:
		return "validation failed"
	case 1:
		return "validation failed: " + errs[0].String()
	default:
		return fmt.Sprintf("validation failed: %s (and %d more)", errs[0].String(), len(errs)-1)
	}
}

// AsValidationError returns the *ValidationError in err's chain, if
// any. Uses errors.As to handle wrapped errors.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
