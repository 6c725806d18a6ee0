package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/flow"
)

// WriteFile writes data to dir/name and returns the path.
func WriteFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFlowFile encodes f in the format matching name's extension and
// writes it to dir/name, returning the path.
func WriteFlowFile(t *testing.T, dir, name string, f *flow.Flow) string {
	t.Helper()
	data, err := document.Encode(f, document.DetectFormat(name))
	if err != nil {
		t.Fatalf("encode flow for %s: %v", name, err)
	}
	return WriteFile(t, dir, name, data)
}

// WriteRegistryFile writes a catalog YAML listing the given entry names
// to dir/name and returns the path.
func WriteRegistryFile(t *testing.T, dir, name, catalog string, entries ...string) string {
	t.Helper()
	var b strings.Builder
	fmt.Fprintf(&b, "name: %s\nentries:\n", catalog)
	for _, entry := range entries {
		fmt.Fprintf(&b, "  - name: %s\n", entry)
	}
	return WriteFile(t, dir, name, []byte(b.String()))
}
