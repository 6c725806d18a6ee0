// Package document moves flow documents between their wire forms and
// the in-memory model. Decoding runs the first validation phase: the
// embedded CUE schema vets shape and field types, and a document that
// fails it produces a single schema diagnostic instead of a flow.
package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/apflow/internal/diag"
	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

//go:embed schema.cue
var schemaSource []byte

// Format identifies a document serialization.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// DetectFormat guesses the serialization from a filename extension,
// defaulting to YAML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Decode checks data against the document schema and, when it passes,
// builds the typed flow. Schema failures come back as a single ERROR
// diagnostic in the list with a nil flow. The error return is reserved
// for faults outside the document itself, such as a broken embedded
// schema.
func Decode(data []byte, format Format) (*flow.Flow, diag.List, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileBytes(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, nil, fmt.Errorf("compiling document schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Flow"))
	if err := def.Err(); err != nil {
		return nil, nil, fmt.Errorf("document schema has no #Flow: %w", err)
	}

	var doc cue.Value
	switch format {
	case FormatJSON:
		expr, err := cuejson.Extract("document.json", data)
		if err != nil {
			return nil, diag.List{schemaDiagnostic(err)}, nil
		}
		doc = ctx.BuildExpr(expr)
	case FormatYAML:
		file, err := cueyaml.Extract("document.yaml", data)
		if err != nil {
			return nil, diag.List{schemaDiagnostic(err)}, nil
		}
		doc = ctx.BuildFile(file)
	default:
		return nil, nil, fmt.Errorf("unknown document format %q", format)
	}
	if err := doc.Err(); err != nil {
		return nil, diag.List{schemaDiagnostic(err)}, nil
	}

	if err := def.Unify(doc).Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return nil, diag.List{schemaDiagnostic(err)}, nil
	}

	f, err := decodeTyped(data, format)
	if err != nil {
		// The schema passed, so this is almost always a key the looser
		// wire pattern admits but Parse rejects.
		code := diag.SchemaDocument
		if _, ok := stepkey.AsFormatError(err); ok {
			code = diag.SchemaKeyFormat
		}
		return nil, diag.List{diag.Errorf(code, nil, "%v", err)}, nil
	}
	return f, nil, nil
}

// DecodeFile reads and decodes a document, detecting the serialization
// from the file extension.
func DecodeFile(path string) (*flow.Flow, diag.List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading document: %w", err)
	}
	return Decode(data, DetectFormat(path))
}

func decodeTyped(data []byte, format Format) (*flow.Flow, error) {
	var f flow.Flow
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, err
		}
	}
	return &f, nil
}

// Encode renders f in the given serialization. JSON output is indented
// two spaces without HTML escaping; YAML uses two-space indents. Both
// end with a newline.
func Encode(f *flow.Flow, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
}

// schemaDiagnostic converts a CUE failure into the single phase-one
// diagnostic: key pattern misses map to SCHEMA_KEY_FORMAT, other field
// level failures to SCHEMA_FIELD, and everything else to
// SCHEMA_DOCUMENT.
func schemaDiagnostic(err error) diag.Diagnostic {
	code := diag.SchemaDocument
	var loc *diag.Location
	msg := err.Error()

	if errs := cueerrors.Errors(err); len(errs) > 0 {
		first := errs[0]
		msg = first.Error()
		if path := first.Path(); len(path) > 0 {
			loc = &diag.Location{Field: strings.Join(path, ".")}
			if isKeyPath(path) {
				code = diag.SchemaKeyFormat
			} else {
				code = diag.SchemaField
			}
		}
	}
	return diag.Errorf(code, loc, "%s", msg)
}

// isKeyPath reports whether a CUE error path lands in a step key
// field, skipping list indices on the way up.
func isKeyPath(path []string) bool {
	for i := len(path) - 1; i >= 0; i-- {
		switch path[i] {
		case "step_id", "from_step", "to", "merge_to", "depends_on", "goto", "calls":
			return true
		}
		if _, err := strconv.Atoi(path[i]); err != nil {
			return false
		}
	}
	return false
}
