package cli

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/archive"
	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/testutil"
)

const allergyScript = `
title: add allergy check
ops:
  - op: insert_after
    target: "1.001"
    step:
      actor: nurse
      action: check allergies
      inputs: [vitals]
  - op: renumber
    width: 3
`

func TestApplyScriptCommits(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(allergyScript))

	out, _, err := runCommand(t, "apply", doc, script, "--token", "txn-9")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ committed")
	assert.Contains(t, out, "txn txn-9")
	assert.Contains(t, out, "renamed 1.0015 -> 1.002")
	assert.Contains(t, out, "renamed 1.002 -> 1.003")

	f, _, err := document.DecodeFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "check allergies", f.FindStep(k("1.002")).Action)
	assert.Equal(t, "assess acuity", f.FindStep(k("1.003")).Action)
}

func TestApplyJSONReport(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(allergyScript))

	out, _, err := runCommand(t, "--format", "json", "apply", doc, script)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   ApplyReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "committed", resp.Data.State)
	assert.NotEmpty(t, resp.Data.Revision)
	assert.Equal(t, []string{"1.001", "1.002", "1.003", "2.001", "2.002"}, resp.Data.Keys)
	assert.Equal(t, "1.003", resp.Data.Renames["1.002"])
	assert.NotContains(t, resp.Data.Renames, "2.001", "identity renames are dropped from reports")
}

func TestApplyRollbackLeavesFileUntouched(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(`
ops:
  - op: delete
    target: "2.001"
`))
	before, err := os.ReadFile(doc)
	require.NoError(t, err)

	out, _, runErr := runCommand(t, "apply", doc, script)
	require.Error(t, runErr)
	assert.Equal(t, ExitFailure, GetExitCode(runErr))
	assert.Contains(t, out, "rolled back")
	assert.Contains(t, out, "APF0301")

	after, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestApplyOutLeavesSourceAlone(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(allergyScript))
	outPath := filepath.Join(dir, "next.json")
	before, err := os.ReadFile(doc)
	require.NoError(t, err)

	_, _, runErr := runCommand(t, "apply", doc, script, "--out", outPath)
	require.NoError(t, runErr)

	after, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, before, after, "--out leaves the source document in place")

	f, _, err := document.DecodeFile(outPath)
	require.NoError(t, err)
	assert.True(t, f.HasStep(k("1.003")))
}

func TestApplyPerOpValidation(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	actors := testutil.WriteRegistryFile(t, dir, "actors.yaml", "actors", "nurse", "doctor", "clerk")
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(`
ops:
  - op: update
    target: "1.001"
    field: actor
    value: intruder
  - op: update
    target: "1.001"
    field: actor
    value: nurse
`))

	// At commit granularity the second op repairs the first.
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	_, _, err := runCommand(t, "apply", doc, script, "--actors", actors)
	require.NoError(t, err)

	// Per-op validation rejects the intermediate state.
	doc = testutil.WriteFlowFile(t, dir, "intake2.json", testutil.CreateTestFlow())
	out, _, err := runCommand(t, "apply", doc, script, "--actors", actors, "--per-op")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "at op 1 (update 1.001 actor)")
	assert.Contains(t, out, "APF0401")
}

func TestApplyJournalsRevision(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	script := testutil.WriteFile(t, dir, "edit.yaml", []byte(`
title: touch notes
ops:
  - op: update
    target: "1.001"
    field: notes
    value: checked at intake
`))
	archivePath := filepath.Join(dir, "journal.db")
	t.Setenv("APFLOW_ARCHIVE", archivePath)

	out, _, err := runCommand(t, "apply", doc, script, "--token", "txn-1")
	require.NoError(t, err)
	assert.Contains(t, out, "journaled to archive")

	a, err := archive.Open(archivePath)
	require.NoError(t, err)
	defer a.Close()

	revs, err := a.History(context.Background())
	require.NoError(t, err)
	require.Len(t, revs, 1)
	assert.Equal(t, int64(1), revs[0].Seq)
	assert.Equal(t, "txn-1", revs[0].CommitToken)
	assert.Equal(t, "touch notes", revs[0].Title)

	f, _, err := document.DecodeFile(doc)
	require.NoError(t, err)
	assert.Equal(t, f.MustRevisionID(), revs[0].ID, "the journaled id matches the written document")
}

func TestApplyScriptErrors(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "apply", doc, filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "error [LOAD]")

	bad := testutil.WriteFile(t, dir, "bad.yaml", []byte("ops:\n  - op: explode\n"))
	out, _, err = runCommand(t, "apply", doc, bad)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "error [LOAD]")
}
