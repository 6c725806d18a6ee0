package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

func k(text string) stepkey.Key { return stepkey.MustParse(text) }

// triageFlow is the reference document the golden files snapshot.
func triageFlow() *flow.Flow {
	merge := k("2.002")
	return &flow.Flow{
		Title: "patient intake",
		Sections: []flow.Section{
			{
				Major: 1,
				Title: "triage",
				Steps: []flow.Step{
					{ID: k("1.001"), Actor: "nurse", Action: "assess", Outputs: []string{"acuity"}},
					{
						ID: k("1.002"), Actor: "doctor", Action: "classify",
						Inputs:    []string{"acuity"},
						DependsOn: []stepkey.Key{k("1.001")},
					},
				},
			},
			{
				Major: 2,
				Title: "treatment",
				Steps: []flow.Step{
					{ID: k("2.001"), Actor: "doctor", Action: "treat", Notes: "fast track"},
					{ID: k("2.002"), Actor: "clerk", Action: "discharge"},
				},
			},
		},
		Branches: []flow.Branch{
			{
				From: k("1.002"),
				Guards: []flow.Guard{
					{Label: "urgent", To: k("2.001"), Expr: "acuity >= 7"},
					{To: k("2.002"), Default: true},
				},
				Cases:   []string{"urgent", "routine"},
				MergeTo: &merge,
			},
		},
	}
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"json", "markdown", "mxgraph"}, r.Formats())

	for _, format := range r.Formats() {
		e, err := r.Get(format)
		require.NoError(t, err)
		assert.Equal(t, format, e.Format())
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()

	_, err := r.Get("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"pdf" not registered`)
	assert.Contains(t, err.Error(), "markdown", "error names the available formats")
}

type fakeExporter struct{ format string }

func (f fakeExporter) Format() string { return f.format }

func (f fakeExporter) Export(*flow.Flow) ([]byte, error) { return []byte("fake"), nil }

func TestRegistryRegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register(fakeExporter{format: "markdown"})

	e, err := r.Get("markdown")
	require.NoError(t, err)
	out, err := e.Export(triageFlow())
	require.NoError(t, err)
	assert.Equal(t, "fake", string(out))
}

func TestExportersDoNotMutate(t *testing.T) {
	f := triageFlow()
	before := f.Clone()

	for _, e := range []Exporter{Markdown{}, JSON{}, MxGraph{}} {
		_, err := e.Export(f)
		require.NoError(t, err, "exporter %s", e.Format())
	}
	assert.Equal(t, before, f)
}

func TestMarkdownEscapesCells(t *testing.T) {
	f := &flow.Flow{
		Title: "escapes",
		Sections: []flow.Section{{
			Major: 1,
			Steps: []flow.Step{{
				ID: k("1.001"), Actor: "nurse", Action: "assess",
				Notes: "check a|b\nthen c",
			}},
		}},
	}

	out, err := Markdown{}.Export(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `check a\|b then c`)
	assert.Contains(t, string(out), "## Section 1", "untitled sections get a plain heading")
}

func TestMxGraphSkipsDanglingReferences(t *testing.T) {
	f := &flow.Flow{
		Title: "dangling",
		Sections: []flow.Section{{
			Major: 1,
			Steps: []flow.Step{{
				ID: k("1.001"), Actor: "nurse", Action: "assess",
				Gotos: []stepkey.Key{k("9.999")},
			}},
		}},
	}

	out, err := MxGraph{}.Export(f)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "9.999")
	assert.NotContains(t, string(out), "e1", "no edges drawn for dangling targets")
}

func TestMxGraphResolvesAliasedPrecision(t *testing.T) {
	f := &flow.Flow{
		Title: "aliased",
		Sections: []flow.Section{{
			Major: 1,
			Steps: []flow.Step{
				{ID: k("1.001"), Actor: "nurse", Action: "assess"},
				{
					ID: k("1.002"), Actor: "doctor", Action: "treat",
					DependsOn: []stepkey.Key{k("1.0010")},
				},
			},
		}},
	}

	out, err := MxGraph{}.Export(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), `source="step-1.001" target="step-1.002"`)
	assert.NotContains(t, string(out), "step-1.0010")
}

func TestMxGraphEscapesLabels(t *testing.T) {
	f := triageFlow()

	out, err := MxGraph{}.Export(f)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `acuity >= 7`, "expressions stay out of the diagram")

	f.Sections[0].Steps[0].Action = `audit & <review>`
	out, err = MxGraph{}.Export(f)
	require.NoError(t, err)
	assert.Contains(t, string(out), "audit &amp; &lt;review&gt;")
}

func TestJSONExportRoundTripsWireForm(t *testing.T) {
	out, err := JSON{}.Export(triageFlow())
	require.NoError(t, err)
	s := string(out)
	assert.True(t, strings.HasPrefix(s, "{\n"))
	assert.Contains(t, s, `"step_id": "1.001"`)
	assert.Contains(t, s, `"expr": "acuity >= 7"`, "HTML escaping stays off")
}
