package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/harness"
	"github.com/roach88/apflow/internal/testutil"
)

const passingScenario = `
name: touch-notes
description: updating notes commits cleanly
document: intake.json
script:
  - op: update
    target: "1.001"
    field: notes
    value: checked
expect:
  state: committed
`

const failingScenario = `
name: wrong-guess
description: expects a rollback that does not happen
document: intake.json
script:
  - op: update
    target: "1.001"
    field: notes
    value: checked
expect:
  state: rolled_back
`

func TestScenarioSuitePasses(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	testutil.WriteFile(t, dir, "a-touch.yaml", []byte(passingScenario))

	out, _, err := runCommand(t, "test", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ 1/1 scenarios passed")
}

func TestScenarioSuiteReportsFailures(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	testutil.WriteFile(t, dir, "a-touch.yaml", []byte(passingScenario))
	testutil.WriteFile(t, dir, "b-wrong.yaml", []byte(failingScenario))

	out, _, err := runCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong-guess (")
	assert.Contains(t, out, "expectation failed: state")
	assert.Contains(t, out, "✗ 1 of 2 scenarios failed")
}

func TestScenarioSuiteJSONReport(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	testutil.WriteFile(t, dir, "a-touch.yaml", []byte(passingScenario))
	testutil.WriteFile(t, dir, "b-wrong.yaml", []byte(failingScenario))

	out, _, err := runCommand(t, "--format", "json", "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string              `json:"status"`
		Data   harness.SuiteResult `json:"data"`
		Error  *ResponseError      `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
	require.Len(t, resp.Data.Failures, 1)
	assert.Equal(t, "wrong-guess", resp.Data.Failures[0].Scenario)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarios, resp.Error.Code)
}

func TestScenarioSuiteRequiresScenarios(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()

	out, _, err := runCommand(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "error [LOAD]")
	assert.Contains(t, out, "no scenario files found")
}
