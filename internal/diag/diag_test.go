package diag

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagnosticString(t *testing.T) {
	cases := []struct {
		name string
		d    Diagnostic
		want string
	}{
		{
			name: "error with step location",
			d:    Errorf(DanglingRef, &Location{Step: "1.002"}, "goto names unknown step 9.001"),
			want: "ERROR APF0301 DANGLING_REF: goto names unknown step 9.001 (step 1.002)",
		},
		{
			name: "warn with section and field",
			d:    Warnf(UndefinedInput, &Location{Section: 2, Step: "2.001", Field: "inputs"}, "input %q is never produced", "chart"),
			want: `WARN APF0602 UNDEFINED_INPUT: input "chart" is never produced (section 2, step 2.001, field inputs)`,
		},
		{
			name: "info without location",
			d:    Infof(UnreachableStep, nil, "step 3.001 has no incoming path"),
			want: "INFO APF0503 UNREACHABLE_STEP: step 3.001 has no incoming path",
		},
		{
			name: "branch location",
			d:    Errorf(NonexhaustiveBranch, &Location{Branch: 1, Step: "1.002"}, "guards cover no case for \"expired\""),
			want: `ERROR APF0501 NONEXHAUSTIVE_BRANCH: guards cover no case for "expired" (step 1.002, branch 1)`,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.d.String())
		})
	}
}

func TestCodeNamesAndPattern(t *testing.T) {
	for code, name := range codeNames {
		assert.Truef(t, code.Valid(), "%s must match the APF pattern", code)
		assert.Equal(t, name, code.Name())
	}
	assert.False(t, Code("E101").Valid())
	assert.False(t, Code("APF12345").Valid())
	assert.Equal(t, "APF9999", Code("APF9999").Name(), "unregistered codes name themselves")
}

func TestListVerdicts(t *testing.T) {
	l := List{
		Warnf(SelfRef, nil, "step 1.001 depends on itself"),
		Infof(UnusedOutput, nil, "output \"chart\" is never consumed"),
	}
	assert.False(t, l.HasErrors())
	assert.NoError(t, l.Err())
	assert.Equal(t, 1, l.Count(SeverityWarn))
	assert.Equal(t, 1, l.Count(SeverityInfo))
	assert.Empty(t, l.Errors())

	l = append(l, Errorf(DupStepID, nil, "step key 1.001 duplicates 1.0010"))
	require.True(t, l.HasErrors())

	err := l.Err()
	require.Error(t, err)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Diagnostics, 3)
	assert.Contains(t, err.Error(), "DUP_STEP_ID")

	wrapped := fmt.Errorf("applying script: %w", err)
	_, ok = AsValidationError(wrapped)
	assert.True(t, ok)
}

func TestValidationErrorMessageCounts(t *testing.T) {
	err := &ValidationError{Diagnostics: List{
		Errorf(UnknownActor, &Location{Step: "1.001", Field: "actor"}, "actor \"nrse\" is not in the actors registry"),
		Errorf(UnknownAction, &Location{Step: "1.002", Field: "action"}, "action \"chck\" is not in the actions registry"),
	}}
	assert.Contains(t, err.Error(), "and 1 more")
}
