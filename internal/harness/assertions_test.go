package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/diag"
)

func TestAssertionErrorFormat(t *testing.T) {
	err := &AssertionError{
		Check:    "keys",
		Expected: "1.001, 1.002",
		Actual:   "1.001, 1.0015, 1.002",
		Keys:     []string{"1.001", "1.0015", "1.002"},
	}
	want := "expectation failed: keys\n" +
		"  expected: 1.001, 1.002\n" +
		"  actual: 1.001, 1.0015, 1.002\n" +
		"  document keys: 1.001, 1.0015, 1.002"
	assert.Equal(t, want, err.Error())

	bare := &AssertionError{Check: "state", Expected: "committed", Actual: "rolled_back"}
	assert.Equal(t, "expectation failed: state\n  expected: committed\n  actual: rolled_back", bare.Error())
}

func TestEvaluateExpectationsAllPass(t *testing.T) {
	result := NewResult("clean")
	result.State = StateCommitted
	result.Keys = []string{"1.001", "1.002"}
	result.Renames = map[string]string{"1.0015": "1.002"}
	result.Diagnostics = diag.List{diag.Warnf(diag.UnusedOutput, nil, "vitals has no consumer")}

	msgs := evaluateExpectations(result, ExpectClause{
		State:   StateCommitted,
		Keys:    []string{"1.001", "1.002"},
		Codes:   []string{"APF0601"},
		Renames: map[string]string{"1.0015": "1.002"},
	}, nil)
	assert.Empty(t, msgs)
}

func TestAssertStateMismatchShowsTheError(t *testing.T) {
	result := NewResult("s")
	result.State = StateRolledBack
	result.Keys = []string{"1.001"}

	err := assertState(result, StateCommitted, errors.New("boom"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected: committed")
	assert.Contains(t, err.Error(), "rolled_back (boom)")
	assert.Contains(t, err.Error(), "document keys: 1.001")
}

func TestAssertErrorContains(t *testing.T) {
	result := NewResult("s")

	err := assertErrorContains(result, "APF0301", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no transaction error")

	err = assertErrorContains(result, "APF0301", errors.New("transaction txn-1 rolled back: APF0404"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `containing "APF0301"`)

	assert.NoError(t, assertErrorContains(result, "APF0301",
		errors.New("transaction txn-1 rolled back: validation failed: ERROR APF0301 DANGLING_REF")))
}

func TestAssertKeysIsOrderSensitive(t *testing.T) {
	result := NewResult("s")
	result.Keys = []string{"1.001", "1.002"}

	assert.NoError(t, assertKeys(result, []string{"1.001", "1.002"}))

	err := assertKeys(result, []string{"1.002", "1.001"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected: 1.002, 1.001")
	assert.Contains(t, err.Error(), "actual: 1.001, 1.002")
}

func TestAssertCodesIsASubsetMatch(t *testing.T) {
	result := NewResult("s")
	result.Diagnostics = diag.List{
		diag.Errorf(diag.DanglingRef, nil, "guard urgent points at a missing step"),
		diag.Warnf(diag.UnusedOutput, nil, "acuity has no consumer"),
	}

	assert.NoError(t, assertCodes(result, []string{"APF0301"}))
	assert.NoError(t, assertCodes(result, []string{"APF0601", "APF0301"}))

	err := assertCodes(result, []string{"APF0301", "APF0503"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "including APF0503")
	assert.Contains(t, err.Error(), "APF0301, APF0601")

	empty := NewResult("s")
	err = assertCodes(empty, []string{"APF0301"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no diagnostics")
}

func TestAssertRenamesComparesNumerically(t *testing.T) {
	result := NewResult("s")
	result.Renames = map[string]string{"1.0015": "1.002", "1.002": "1.003"}

	assert.NoError(t, assertRenames(result, map[string]string{"1.0015": "1.0020"}),
		"trailing zeros do not matter")
	assert.NoError(t, assertRenames(result, map[string]string{"1.0015": "1.002", "1.002": "1.003"}))

	err := assertRenames(result, map[string]string{"1.003": "1.004"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rename recorded for 1.003")

	err = assertRenames(result, map[string]string{"1.0015": "1.003"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected: 1.0015 renamed to 1.003")
	assert.Contains(t, err.Error(), "actual: 1.0015 renamed to 1.002")
}
