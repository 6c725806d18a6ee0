package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/stepkey"
)

func TestCanonicalJSONExactForm(t *testing.T) {
	f := &Flow{
		Title: "Admission",
		Sections: []Section{{
			Major: 1,
			Title: "Intake",
			Steps: []Step{
				{ID: stepkey.MustParse("1.001"), Actor: "nurse", Action: "record vitals", Outputs: []string{"vitals"}},
				{ID: stepkey.MustParse("1.002"), Actor: "clerk", Action: "verify coverage", Inputs: []string{"vitals"}},
			},
		}},
		Branches: []Branch{{
			From:  stepkey.MustParse("1.002"),
			Cases: []string{"ok", "expired"},
			Guards: []Guard{
				{Label: "ok", To: stepkey.MustParse("1.001")},
				{Label: "expired", To: stepkey.MustParse("1.001")},
			},
		}},
	}

	got, err := f.CanonicalJSON()
	require.NoError(t, err)

	want := `{"branches":[{"cases":["ok","expired"],"from_step":"1.002",` +
		`"guards":[{"label":"ok","to":"1.001"},{"label":"expired","to":"1.001"}]}],` +
		`"sections":[{"major":1,"steps":[` +
		`{"action":"record vitals","actor":"nurse","outputs":["vitals"],"step_id":"1.001"},` +
		`{"action":"verify coverage","actor":"clerk","inputs":["vitals"],"step_id":"1.002"}` +
		`],"title":"Intake"}],"title":"Admission"}`
	assert.Equal(t, want, string(got))
}

func TestCanonicalJSONDeterministic(t *testing.T) {
	f := admissionFlow()
	first, err := f.CanonicalJSON()
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		again, err := f.Clone().CanonicalJSON()
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again), "run %d", i)
	}
}

func TestCanonicalStringNFCNormalization(t *testing.T) {
	composed := "café"
	decomposed := "café"
	require.NotEqual(t, composed, decomposed, "test needs distinct encodings")

	a, err := marshalCanonicalString(composed)
	require.NoError(t, err)
	b, err := marshalCanonicalString(decomposed)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCanonicalStringNoHTMLEscaping(t *testing.T) {
	got, err := marshalCanonicalString(`a<b>&c`)
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestCanonicalStringLineSeparators(t *testing.T) {
	got, err := marshalCanonicalString("a b c")
	require.NoError(t, err)
	assert.Equal(t, "\"a b c\"", string(got))

	// A literal backslash followed by the text u2028 stays escaped.
	got, err = marshalCanonicalString(`a\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(got))
}

func TestMarshalCanonicalRejectsFloatsAndNulls(t *testing.T) {
	_, err := marshalCanonical(map[string]any{"x": 1.5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "floats are forbidden")

	_, err = marshalCanonical(map[string]any{"x": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null is forbidden")
}

func TestUTF16KeyOrdering(t *testing.T) {
	// U+FF21 FULLWIDTH LATIN A sorts after "z" in UTF-16 code units,
	// while a surrogate-pair emoji sorts between them by first unit.
	obj := map[string]any{
		"z":          int64(1),
		"Ａ":     int64(2),
		"\U0001F600": int64(3),
	}
	got, err := marshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"`+"\U0001F600"+`":3,"`+"Ａ"+`":2}`, string(got))
}

func TestRevisionIDStability(t *testing.T) {
	f := admissionFlow()
	id1, err := f.RevisionID()
	require.NoError(t, err)
	assert.Len(t, id1, 64)

	id2, err := f.Clone().RevisionID()
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	changed := f.Clone()
	changed.Title = "Discharge"
	id3, err := changed.RevisionID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id3)

	// representation is identity: widening a key changes the document
	widened := f.Clone()
	widened.Sections[0].Steps[0].ID = stepkey.MustParse("1.0010")
	id4, err := widened.RevisionID()
	require.NoError(t, err)
	assert.NotEqual(t, id1, id4)

	assert.Equal(t, id1, f.MustRevisionID())
}
