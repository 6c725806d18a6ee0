package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/registry"
	"github.com/roach88/apflow/internal/validator"
)

func TestCreateTestStepDefaults(t *testing.T) {
	step := CreateTestStep("1.001")

	assert.Equal(t, "1.001", step.ID.String())
	assert.Equal(t, "nurse", step.Actor)
	assert.Equal(t, "record vitals", step.Action)
	assert.Empty(t, step.Inputs)
	assert.Empty(t, step.Gotos)
}

func TestCreateTestStepOverrides(t *testing.T) {
	step := CreateTestStep("2.001",
		WithActor("doctor"),
		WithAction("order labs"),
		WithInputs("vitals"),
		WithOutputs("labs"),
		WithDependsOn("1.001"),
		WithGotos("3.001"),
		WithCalls("4.001"),
		WithNotes("stat"),
	)

	assert.Equal(t, "doctor", step.Actor)
	assert.Equal(t, "order labs", step.Action)
	assert.Equal(t, []string{"vitals"}, step.Inputs)
	assert.Equal(t, []string{"labs"}, step.Outputs)
	assert.Equal(t, Keys("1.001"), step.DependsOn)
	assert.Equal(t, Keys("3.001"), step.Gotos)
	assert.Equal(t, Keys("4.001"), step.Calls)
	assert.Equal(t, "stat", step.Notes)
}

func TestCreateTestBranch(t *testing.T) {
	branch := CreateTestBranch("1.002",
		WithGuard("abnormal", "2.001"),
		WithDefaultGuard("2.002"),
		WithCases("abnormal", "normal"),
		WithMergeTo("2.002"),
	)

	assert.Equal(t, "1.002", branch.From.String())
	require.Len(t, branch.Guards, 2)
	assert.Equal(t, "abnormal", branch.Guards[0].Label)
	assert.False(t, branch.Guards[0].Default)
	assert.True(t, branch.Guards[1].Default)
	assert.Equal(t, []string{"abnormal", "normal"}, branch.Cases)
	require.NotNil(t, branch.MergeTo)
	assert.Equal(t, "2.002", branch.MergeTo.String())
}

func TestCreateTestFlowIsValid(t *testing.T) {
	f := CreateTestFlow()

	diags := validator.Validate(f, validator.Registries{})
	assert.Empty(t, diags, "default fixture must validate clean: %v", diags)
}

func TestCreateTestFlowValidatesAgainstOwnRoles(t *testing.T) {
	f := CreateTestFlow()

	regs := validator.Registries{
		Actors:  registry.FromNames("actors", "nurse", "doctor", "clerk"),
		Actions: registry.FromNames("actions", "record vitals", "assess acuity", "treat patient", "discharge patient"),
	}
	diags := validator.Validate(f, regs)
	assert.Empty(t, diags)
}

func TestCreateTestFlowOverrides(t *testing.T) {
	f := CreateTestFlow(
		WithTitle("lab workup"),
		WithBranches(),
	)

	assert.Equal(t, "lab workup", f.Title)
	assert.Empty(t, f.Branches)
	assert.Len(t, f.Sections, 2)
}

func TestWriteFlowFileRoundTrips(t *testing.T) {
	f := CreateTestFlow()
	path := WriteFlowFile(t, t.TempDir(), "intake.json", f)

	got, diags, err := document.DecodeFile(path)
	require.NoError(t, err)
	require.Empty(t, diags)
	assert.Equal(t, f, got)
}

func TestWriteRegistryFile(t *testing.T) {
	path := WriteRegistryFile(t, t.TempDir(), "actors.yaml", "actors", "nurse", "doctor")

	r, err := registry.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "actors", r.Name())
	assert.True(t, r.Has("nurse"))
	assert.True(t, r.Has("doctor"))
}
