// Package export renders flow documents into external artifact
// formats.
//
// The editing core never renders artifacts itself. Callers compose a
// Registry of exporters and run them over documents the editor has
// committed; anything satisfying Exporter can be registered alongside
// the built-in markdown, json, and mxgraph renderers.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/apflow/internal/flow"
)

// Exporter renders a flow document into one artifact format.
type Exporter interface {
	// Format returns the identifier callers select the exporter by,
	// such as "markdown".
	Format() string

	// Export renders the document. Implementations must not mutate
	// the flow.
	Export(f *flow.Flow) ([]byte, error)
}

// Registry holds the exporters available to a caller, keyed by format.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry returns a registry preloaded with the built-in
// exporters.
func NewRegistry() *Registry {
	r := &Registry{exporters: make(map[string]Exporter)}
	r.Register(Markdown{})
	r.Register(JSON{})
	r.Register(MxGraph{})
	return r
}

// Register adds an exporter, replacing any previous one registered
// for the same format.
func (r *Registry) Register(e Exporter) {
	r.exporters[e.Format()] = e
}

// Get returns the exporter for a format.
func (r *Registry) Get(format string) (Exporter, error) {
	e, ok := r.exporters[format]
	if !ok {
		return nil, fmt.Errorf("export format %q not registered (have %s)",
			format, strings.Join(r.Formats(), ", "))
	}
	return e, nil
}

// Formats lists the registered format names, sorted.
func (r *Registry) Formats() []string {
	formats := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats
}
