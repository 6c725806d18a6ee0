package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// MxGraph renders the document as an mxGraph model, the XML diagram
// format draw.io reads. Sections become columns of step vertices;
// control transfers become solid edges, calls dashed edges, and
// dataflow dependencies dotted edges. Dangling references are simply
// not drawn; flagging them is the validator's job.
type MxGraph struct{}

// Format returns "mxgraph".
func (MxGraph) Format() string { return "mxgraph" }

// Diagram geometry. One column per section, one row per step.
const (
	mxColumnWidth = 280
	mxRowHeight   = 100
	mxStepWidth   = 220
	mxStepHeight  = 60
	mxMargin      = 40
)

const (
	mxStyleStep = "rounded=1;whiteSpace=wrap;html=1;arcSize=8"
	mxStyleFlow = "edgeStyle=orthogonalEdgeStyle;rounded=0"
	mxStyleCall = "edgeStyle=orthogonalEdgeStyle;rounded=0;dashed=1"
	mxStyleData = "edgeStyle=orthogonalEdgeStyle;rounded=0;dashed=1;dashPattern=1 4"
)

// Export renders the document as mxGraph XML.
func (MxGraph) Export(f *flow.Flow) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(`<mxGraphModel dx="800" dy="600" grid="1" gridSize="10" guides="1" tooltips="1" connect="1" arrows="1" fold="1" page="1" pageScale="1" pageWidth="850" pageHeight="1100" math="0" shadow="0">` + "\n")
	b.WriteString("  <root>\n")
	b.WriteString("    <mxCell id=\"0\" />\n")
	b.WriteString("    <mxCell id=\"1\" parent=\"0\" />\n")

	for si := range f.Sections {
		sec := &f.Sections[si]
		for ti := range sec.Steps {
			st := &sec.Steps[ti]
			label := fmt.Sprintf("%s %s: %s", st.ID, st.Actor, st.Action)
			fmt.Fprintf(&b, "    <mxCell id=\"%s\" value=\"%s\" style=\"%s\" vertex=\"1\" parent=\"1\">\n",
				vertexID(st.ID), xmlEscape(label), mxStyleStep)
			fmt.Fprintf(&b, "      <mxGeometry x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" as=\"geometry\" />\n",
				mxMargin+si*mxColumnWidth, mxMargin+ti*mxRowHeight, mxStepWidth, mxStepHeight)
			b.WriteString("    </mxCell>\n")
		}
	}

	// Endpoints resolve through the key index, so a reference written
	// at another precision still lands on the right vertex.
	edges := 0
	edge := func(value, style string, from, to stepkey.Key) {
		src := f.FindStep(from)
		dst := f.FindStep(to)
		if src == nil || dst == nil {
			return
		}
		edges++
		if value == "" {
			fmt.Fprintf(&b, "    <mxCell id=\"e%d\" style=\"%s\" edge=\"1\" parent=\"1\" source=\"%s\" target=\"%s\">\n",
				edges, style, vertexID(src.ID), vertexID(dst.ID))
		} else {
			fmt.Fprintf(&b, "    <mxCell id=\"e%d\" value=\"%s\" style=\"%s\" edge=\"1\" parent=\"1\" source=\"%s\" target=\"%s\">\n",
				edges, xmlEscape(value), style, vertexID(src.ID), vertexID(dst.ID))
		}
		b.WriteString("      <mxGeometry relative=\"1\" as=\"geometry\" />\n")
		b.WriteString("    </mxCell>\n")
	}

	// A step a guarded branch exits from does not fall through, same
	// rule the validator's reachability walk uses.
	branched := make(map[string]bool, len(f.Branches))
	for bi := range f.Branches {
		if len(f.Branches[bi].Guards) > 0 {
			branched[f.Branches[bi].From.Normal()] = true
		}
	}

	steps := f.Steps()
	for i, st := range steps {
		for _, to := range st.Gotos {
			edge("", mxStyleFlow, st.ID, to)
		}
		for _, to := range st.Calls {
			edge("call", mxStyleCall, st.ID, to)
		}
		if len(st.Gotos) == 0 && !branched[st.ID.Normal()] && i+1 < len(steps) {
			edge("", mxStyleFlow, st.ID, steps[i+1].ID)
		}
		for _, from := range st.DependsOn {
			// Dataflow arrows point producer to consumer.
			edge("", mxStyleData, from, st.ID)
		}
	}

	for bi := range f.Branches {
		br := &f.Branches[bi]
		for gi := range br.Guards {
			g := &br.Guards[gi]
			label := g.Label
			switch {
			case label == "" && g.Default:
				label = "default"
			case g.Default:
				label += " (default)"
			}
			edge(label, mxStyleFlow, br.From, g.To)
		}
		if br.MergeTo != nil {
			edge("merge", mxStyleData, br.From, *br.MergeTo)
		}
	}

	b.WriteString("  </root>\n")
	b.WriteString("</mxGraphModel>\n")
	return b.Bytes(), nil
}

func vertexID(key stepkey.Key) string {
	return "step-" + key.String()
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"\n", "&#10;",
)

func xmlEscape(s string) string { return xmlEscaper.Replace(s) }
