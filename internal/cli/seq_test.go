package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/stepkey"
	"github.com/roach88/apflow/internal/testutil"
)

func k(text string) stepkey.Key { return stepkey.MustParse(text) }

func TestSeqInsertAfterWritesBack(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "seq", "insert-after", doc, "1.001",
		"--actor", "nurse", "--action", "check allergies", "--input", "vitals")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ committed")
	assert.Contains(t, out, "wrote "+doc)

	f, diags, err := document.DecodeFile(doc)
	require.NoError(t, err)
	require.Empty(t, diags)
	require.True(t, f.HasStep(k("1.0015")), "the new step lands on the midpoint key")
	assert.Equal(t, "check allergies", f.FindStep(k("1.0015")).Action)
}

func TestSeqInsertExplicitKey(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	_, _, err := runCommand(t, "seq", "insert-before", doc, "1.002",
		"--actor", "nurse", "--action", "check allergies", "--step-id", "1.0012", "--input", "vitals")
	require.NoError(t, err)

	f, _, err := document.DecodeFile(doc)
	require.NoError(t, err)
	assert.True(t, f.HasStep(k("1.0012")))
}

func TestSeqDeleteReferencedRollsBack(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())
	before, err := os.ReadFile(doc)
	require.NoError(t, err)

	out, _, runErr := runCommand(t, "seq", "delete", doc, "2.001")
	require.Error(t, runErr)
	assert.Equal(t, ExitFailure, GetExitCode(runErr))
	assert.Contains(t, out, "rolled back")
	assert.Contains(t, out, "APF0301")

	after, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, before, after, "a rolled-back edit leaves the file untouched")
}

func TestSeqMoveRewritesReferences(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "seq", "move", doc, "2.001", "2.002")
	require.NoError(t, err)
	assert.Contains(t, out, "renamed 2.001 -> 2.003")

	f, _, err := document.DecodeFile(doc)
	require.NoError(t, err)
	assert.True(t, f.HasStep(k("2.003")))
	assert.Equal(t, "2.003", f.Branches[0].Guards[0].To.String(), "the urgent guard follows the moved step")
}

func TestSeqRenumberCanonicalizes(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "seq", "renumber", doc, "--width", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "renamed 1.001 -> 1.0001")

	f, _, err := document.DecodeFile(doc)
	require.NoError(t, err)
	assert.True(t, f.HasStep(k("1.0001")))
	assert.True(t, f.HasStep(k("2.0002")))
	assert.Equal(t, "1.0001", f.FindStep(k("1.0002")).DependsOn[0].String())
}

func TestSeqRejectsMalformedKey(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "seq", "delete", doc, "notakey")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "error [USAGE]")
}

func TestSeqInsertRequiresActorAndAction(t *testing.T) {
	clearConfigEnv(t)
	doc := testutil.WriteFlowFile(t, t.TempDir(), "intake.json", testutil.CreateTestFlow())

	_, _, err := runCommand(t, "seq", "insert-after", doc, "1.001")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}
