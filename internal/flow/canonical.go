package flow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/apflow/internal/stepkey"
)

// CanonicalJSON produces the RFC 8785 style canonical serialization of
// the flow, the only form used for content-addressed identity.
//
// Differences from standard json.Marshal:
//  1. Object keys sorted by UTF-16 code units, not UTF-8 bytes
//  2. No HTML escaping (< > & stay literal)
//  3. Strings are NFC normalized
//  4. No floats or nulls anywhere in the tree
func (f *Flow) CanonicalJSON() ([]byte, error) {
	return marshalCanonical(f.tree())
}

func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("null is forbidden in canonical JSON")
	case string:
		return marshalCanonicalString(val)
	case int64:
		return []byte(fmt.Sprintf("%d", val)), nil
	case int:
		return []byte(fmt.Sprintf("%d", val)), nil
	case bool:
		if val {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case []any:
		return marshalCanonicalArray(val)
	case map[string]any:
		return marshalCanonicalObject(val)
	case float64, float32:
		return nil, fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// marshalCanonicalString produces a canonical JSON string with NFC
// normalization. Only control characters, backslash, and quote are
// escaped; U+2028 and U+2029 stay literal per RFC 8785.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}

	// json.Encoder adds a trailing newline, remove it
	result := buf.Bytes()
	if len(result) > 0 && result[len(result)-1] == '\n' {
		result = result[:len(result)-1]
	}

	// Go's encoder escapes U+2028 and U+2029 for JavaScript
	// compatibility; RFC 8785 keeps them literal.
	return unescapeLineSeparators(result), nil
}

// unescapeLineSeparators converts   and   escape sequences
// back to literal characters, leaving \\u2028 (escaped backslash +
// text) alone. An escape is real exactly when an even number of
// backslashes precedes it.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	out := make([]byte, 0, len(data))
	slashes := 0
	for i := 0; i < len(data); {
		if slashes%2 == 0 && i+6 <= len(data) &&
			data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			if data[i+5] == '8' {
				out = append(out, " "...)
			} else {
				out = append(out, " "...)
			}
			i += 6
			slashes = 0
			continue
		}
		if data[i] == '\\' {
			slashes++
		} else {
			slashes = 0
		}
		out = append(out, data[i])
		i++
	}
	return out
}

func marshalCanonicalArray(arr []any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func marshalCanonicalObject(obj map[string]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	keys := sortedKeysUTF16(obj)
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := marshalCanonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// sortedKeysUTF16 returns the object's keys in UTF-16 code unit order,
// the member ordering RFC 8785 specifies.
func sortedKeysUTF16(obj map[string]any) []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return utf16Less(keys[i], keys[j])
	})
	return keys
}

func utf16Less(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// tree converts the flow into the plain value tree marshalCanonical
// consumes, mirroring the document's JSON field names and dropping
// empty optional fields.
func (f *Flow) tree() map[string]any {
	doc := map[string]any{
		"title": f.Title,
	}
	sections := make([]any, 0, len(f.Sections))
	for _, sec := range f.Sections {
		sections = append(sections, sec.tree())
	}
	doc["sections"] = sections
	if len(f.Branches) > 0 {
		branches := make([]any, 0, len(f.Branches))
		for _, br := range f.Branches {
			branches = append(branches, br.tree())
		}
		doc["branches"] = branches
	}
	return doc
}

func (s Section) tree() map[string]any {
	sec := map[string]any{
		"major": s.Major,
	}
	if s.Title != "" {
		sec["title"] = s.Title
	}
	steps := make([]any, 0, len(s.Steps))
	for _, st := range s.Steps {
		steps = append(steps, st.tree())
	}
	sec["steps"] = steps
	return sec
}

func (st Step) tree() map[string]any {
	step := map[string]any{
		"step_id": st.ID.String(),
		"actor":   st.Actor,
		"action":  st.Action,
	}
	if len(st.Inputs) > 0 {
		step["inputs"] = stringsTree(st.Inputs)
	}
	if len(st.Outputs) > 0 {
		step["outputs"] = stringsTree(st.Outputs)
	}
	if len(st.DependsOn) > 0 {
		step["depends_on"] = keysTree(st.DependsOn)
	}
	if len(st.Gotos) > 0 {
		step["goto"] = keysTree(st.Gotos)
	}
	if len(st.Calls) > 0 {
		step["calls"] = keysTree(st.Calls)
	}
	if st.Notes != "" {
		step["notes"] = st.Notes
	}
	if len(st.Meta) > 0 {
		meta := make(map[string]any, len(st.Meta))
		for k, v := range st.Meta {
			meta[k] = v
		}
		step["meta"] = meta
	}
	return step
}

func (b Branch) tree() map[string]any {
	br := map[string]any{
		"from_step": b.From.String(),
	}
	guards := make([]any, 0, len(b.Guards))
	for _, g := range b.Guards {
		guards = append(guards, g.tree())
	}
	br["guards"] = guards
	if len(b.Cases) > 0 {
		br["cases"] = stringsTree(b.Cases)
	}
	if b.MergeTo != nil {
		br["merge_to"] = b.MergeTo.String()
	}
	return br
}

func (g Guard) tree() map[string]any {
	guard := map[string]any{
		"label": g.Label,
		"to":    g.To.String(),
	}
	if g.Expr != "" {
		guard["expr"] = g.Expr
	}
	if g.Default {
		guard["default"] = true
	}
	return guard
}

func stringsTree(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func keysTree(keys []stepkey.Key) []any {
	out := make([]any, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}
