package archive

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/apflow/internal/diag"
)

// marshalDiagnostics converts a diagnostic list to JSON TEXT for
// storage. HTML escaping is disabled so messages survive the round
// trip byte for byte.
func marshalDiagnostics(list diag.List) (string, error) {
	if len(list) == 0 {
		return "[]", nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(list); err != nil {
		return "", fmt.Errorf("marshal diagnostics: %w", err)
	}
	// Encoder adds a trailing newline, remove it.
	return strings.TrimSpace(buf.String()), nil
}

// unmarshalDiagnostics parses JSON TEXT back into a diagnostic list.
// An empty array comes back as nil.
func unmarshalDiagnostics(data string) (diag.List, error) {
	if data == "" || data == "[]" {
		return nil, nil
	}
	var list diag.List
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		return nil, fmt.Errorf("unmarshal diagnostics: %w", err)
	}
	return list, nil
}
