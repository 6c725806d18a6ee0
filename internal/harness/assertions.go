package harness

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/roach88/apflow/internal/stepkey"
)

// AssertionError is returned when an expectation fails. It carries
// enough context to debug the failure without re-running the scenario.
type AssertionError struct {
	Check    string   // which expectation failed
	Expected string   // human-readable expected outcome
	Actual   string   // human-readable actual outcome
	Keys     []string // session document key order for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "expectation failed: %s\n", e.Check)
	fmt.Fprintf(&buf, "  expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  actual: %s", e.Actual)
	if len(e.Keys) > 0 {
		fmt.Fprintf(&buf, "\n  document keys: %s", strings.Join(e.Keys, ", "))
	}
	return buf.String()
}

// evaluateExpectations checks every clause and returns one message per
// failed expectation.
func evaluateExpectations(result *Result, expect ExpectClause, applyErr error) []string {
	var errors []string
	record := func(err error) {
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	record(assertState(result, expect.State, applyErr))
	if expect.ErrorContains != "" {
		record(assertErrorContains(result, expect.ErrorContains, applyErr))
	}
	if len(expect.Keys) > 0 {
		record(assertKeys(result, expect.Keys))
	}
	if len(expect.Codes) > 0 {
		record(assertCodes(result, expect.Codes))
	}
	if len(expect.Renames) > 0 {
		record(assertRenames(result, expect.Renames))
	}
	return errors
}

// assertState checks the terminal transaction state.
func assertState(result *Result, want string, applyErr error) error {
	if result.State == want {
		return nil
	}
	actual := result.State
	if applyErr != nil {
		actual = fmt.Sprintf("%s (%v)", result.State, applyErr)
	}
	return &AssertionError{
		Check:    "state",
		Expected: want,
		Actual:   actual,
		Keys:     result.Keys,
	}
}

// assertErrorContains checks the transaction error's text.
func assertErrorContains(result *Result, want string, applyErr error) error {
	if applyErr == nil {
		return &AssertionError{
			Check:    "error_contains",
			Expected: fmt.Sprintf("transaction error containing %q", want),
			Actual:   "no transaction error",
			Keys:     result.Keys,
		}
	}
	if strings.Contains(applyErr.Error(), want) {
		return nil
	}
	return &AssertionError{
		Check:    "error_contains",
		Expected: fmt.Sprintf("transaction error containing %q", want),
		Actual:   applyErr.Error(),
		Keys:     result.Keys,
	}
}

// assertKeys checks the session document's key order, exactly.
func assertKeys(result *Result, want []string) error {
	if slices.Equal(result.Keys, want) {
		return nil
	}
	return &AssertionError{
		Check:    "keys",
		Expected: strings.Join(want, ", "),
		Actual:   strings.Join(result.Keys, ", "),
	}
}

// assertCodes checks that every wanted diagnostic code is present.
func assertCodes(result *Result, want []string) error {
	got := result.Codes()
	var missing []string
	for _, code := range want {
		if !slices.Contains(got, code) {
			missing = append(missing, code)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	actual := "no diagnostics"
	if len(got) > 0 {
		actual = strings.Join(got, ", ")
	}
	return &AssertionError{
		Check:    "codes",
		Expected: fmt.Sprintf("diagnostics including %s", strings.Join(missing, ", ")),
		Actual:   actual,
		Keys:     result.Keys,
	}
}

// assertRenames checks that the script produced the expected key
// changes. Keys compare numerically, so "1.0010" matches "1.001".
func assertRenames(result *Result, want map[string]string) error {
	olds := make([]string, 0, len(want))
	for old := range want {
		olds = append(olds, old)
	}
	sort.Strings(olds)

	for _, old := range olds {
		oldKey := stepkey.MustParse(old)
		wantKey := stepkey.MustParse(want[old])

		gotText, ok := result.Renames[oldKey.Normal()]
		if !ok {
			return &AssertionError{
				Check:    "renames",
				Expected: fmt.Sprintf("%s renamed to %s", old, want[old]),
				Actual:   fmt.Sprintf("no rename recorded for %s", old),
				Keys:     result.Keys,
			}
		}
		if !stepkey.MustParse(gotText).Equal(wantKey) {
			return &AssertionError{
				Check:    "renames",
				Expected: fmt.Sprintf("%s renamed to %s", old, want[old]),
				Actual:   fmt.Sprintf("%s renamed to %s", old, gotText),
				Keys:     result.Keys,
			}
		}
	}
	return nil
}
