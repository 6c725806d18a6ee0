package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // clean run, no ERROR findings
	ExitFailure      = 1 // validation errors, rolled-back scripts, failed scenarios
	ExitCommandError = 2 // command errors (bad paths, malformed input, unknown formats)
)

// Error codes for command-level failures, distinct from the APF
// diagnostic codes that validation findings carry.
const (
	ErrCodeLoad      = "LOAD"      // a document, registry, script, or archive could not be read
	ErrCodeUsage     = "USAGE"     // arguments or flags do not make sense
	ErrCodeEncode    = "ENCODE"    // a result could not be rendered or written
	ErrCodeArchive   = "ARCHIVE"   // the revision journal rejected an operation
	ErrCodeRollback  = "ROLLBACK"  // an edit script rolled back
	ErrCodeScenarios = "SCENARIOS" // conformance scenarios failed
)

// ExitError carries a specific exit code out of a command. Command
// output is already written by the time one is returned; main only
// maps it to the process exit status.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error. Errors that are
// not ExitError count as command errors: by the exit code contract,
// status 1 is reserved for findings the run actually produced.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitCommandError
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // diagnostic output, defaults to Writer
	Verbose   bool
}

// Response is the envelope every JSON-mode command writes.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error body of a JSON response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Success writes a successful result in the configured format. Text
// mode prints the data with its String or default formatting; commands
// with richer text output render it themselves and only use Success
// for JSON mode.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.writeJSON(Response{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error writes an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.writeJSON(Response{
			Status: "error",
			Error:  &ResponseError{Code: code, Message: message, Details: details},
		})
	}
	fmt.Fprintf(f.Writer, "error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "details: %v\n", details)
	}
	return nil
}

// FailureData writes an error response that still carries a data
// payload, for failures the caller wants machine-readable detail on
// (validation findings, suite failures).
func (f *OutputFormatter) FailureData(data any, code, message string) error {
	return f.writeJSON(Response{
		Status: "error",
		Data:   data,
		Error:  &ResponseError{Code: code, Message: message},
	})
}

func (f *OutputFormatter) writeJSON(resp Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// VerboseLog writes a message only when verbose mode is on. JSON mode
// routes it to ErrWriter so the response body stays parseable.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}
