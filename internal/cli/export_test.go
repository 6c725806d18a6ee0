package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/testutil"
)

func TestExportMarkdownToStdout(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "export", "markdown", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "# patient intake")
	assert.Contains(t, out, "## 1. triage")
	assert.Contains(t, out, "| Step | Actor | Action | Inputs | Outputs | Control | Notes |")
	assert.Contains(t, out, "- from 1.002 (cases: urgent, routine; merges at 2.002)")
	assert.Contains(t, out, "  - urgent -> 2.001 when acuity >= 7")

	// The artifact itself is raw in either output format; --format only
	// shapes errors and reports.
	jsonOut, _, err := runCommand(t, "--format", "json", "export", "markdown", doc)
	require.NoError(t, err)
	assert.Equal(t, out, jsonOut)
}

func TestExportMxGraphToStdout(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "export", "mxgraph", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "<mxGraphModel")
	assert.Contains(t, out, `id="step-1.001"`)
	assert.Contains(t, out, "1.001 nurse: record vitals")
	assert.Contains(t, out, "</mxGraphModel>")
}

func TestExportJSONArtifactRoundTrips(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "export", "json", doc)
	require.NoError(t, err)

	var artifact map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &artifact))
	assert.Equal(t, "patient intake", artifact["title"])
}

func TestExportToFile(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())
	artifact := filepath.Join(dir, "intake.md")

	out, _, err := runCommand(t, "export", "markdown", doc, "--out", artifact)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+artifact)
	assert.Contains(t, out, "bytes)")

	data, err := os.ReadFile(artifact)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# patient intake")

	jsonOut, _, err := runCommand(t, "--format", "json", "export", "markdown", doc, "--out", artifact)
	require.NoError(t, err)
	var resp struct {
		Status string       `json:"status"`
		Data   ExportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "markdown", resp.Data.Format)
	assert.Equal(t, artifact, resp.Data.Out)
	assert.Equal(t, len(data), resp.Data.Bytes)
}

func TestExportUnknownFormat(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	doc := testutil.WriteFlowFile(t, dir, "intake.json", testutil.CreateTestFlow())

	out, _, err := runCommand(t, "export", "svg", doc)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "error [USAGE]")
	assert.Contains(t, out, "have json, markdown, mxgraph")
}

func TestExportRejectsIncoherentDocument(t *testing.T) {
	clearConfigEnv(t)
	dir := t.TempDir()
	f := testutil.CreateTestFlow(
		testutil.WithSections(testutil.CreateTestSection(1, "triage",
			testutil.CreateTestStep("1.001", testutil.WithDependsOn("9.001")),
		)),
		testutil.WithBranches(),
	)
	doc := testutil.WriteFlowFile(t, dir, "broken.json", f)

	out, _, err := runCommand(t, "export", "markdown", doc)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "APF0301")
}
