package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/testutil"
)

func TestRunSuitePassesOverShippedScenarios(t *testing.T) {
	suite, err := RunSuite(context.Background(), filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)

	assert.Equal(t, 3, suite.Total)
	assert.Equal(t, 3, suite.Passed)
	assert.Equal(t, 0, suite.Failed)
	assert.Empty(t, suite.Failures)
	assert.True(t, suite.Pass())
}

func TestRunSuiteCountsEveryKindOfFailure(t *testing.T) {
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	testutil.WriteFile(t, dir, "a-pass.yaml", []byte(`
name: passing
description: a clean update commits
document: intake.json
script:
  - op: update
    target: "1.001"
    field: notes
    value: fine
expect:
  state: committed
`))
	testutil.WriteFile(t, dir, "b-unloadable.yaml", []byte("name: only\n"))
	testutil.WriteFile(t, dir, "c-missing-doc.yaml", []byte(`
name: missing-doc
description: the starting document does not exist
document: absent.json
script:
  - op: delete
    target: "1.001"
expect:
  state: committed
`))
	testutil.WriteFile(t, dir, "d-wrong-guess.yml", []byte(`
name: wrong-guess
description: a clean commit fails the rollback expectation
document: `+doc+`
script:
  - op: update
    target: "1.001"
    field: notes
    value: fine
expect:
  state: rolled_back
`))

	suite, err := RunSuite(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, 4, suite.Total)
	assert.Equal(t, 1, suite.Passed)
	assert.Equal(t, 3, suite.Failed)
	assert.False(t, suite.Pass())
	require.Len(t, suite.Failures, 3)

	unloadable := suite.Failures[0]
	assert.Empty(t, unloadable.Scenario, "load failures have no scenario name yet")
	assert.Equal(t, filepath.Join(dir, "b-unloadable.yaml"), unloadable.Path)
	assert.Contains(t, unloadable.Error, "invalid scenario")

	missingDoc := suite.Failures[1]
	assert.Equal(t, "missing-doc", missingDoc.Scenario)
	assert.Contains(t, missingDoc.Error, "reading document")

	wrongGuess := suite.Failures[2]
	assert.Equal(t, "wrong-guess", wrongGuess.Scenario)
	assert.Contains(t, wrongGuess.Error, "expectation failed: state")
}

func TestRunSuiteRequiresScenarios(t *testing.T) {
	_, err := RunSuite(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no scenario files found")
}
