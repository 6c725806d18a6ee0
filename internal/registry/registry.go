// Package registry provides the named catalogs a document is checked
// against: the actors allowed to appear in steps and the actions they
// may perform. Catalogs load from YAML files and answer membership and
// closest-match queries.
package registry

import (
	"fmt"
	"os"
	"sort"

	"github.com/agnivade/levenshtein"
	"gopkg.in/yaml.v3"
)

// maxSuggestDistance caps how far a typo may be from a catalog entry
// before Suggest stays silent.
const maxSuggestDistance = 3

// Entry is one catalog member.
type Entry struct {
	// Name is the identifier documents reference.
	Name string `json:"name" yaml:"name"`

	// Description explains the entry for humans.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Deprecated marks entries kept only for old documents.
	Deprecated bool `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
}

// Registry is an immutable named catalog. A nil *Registry means the
// catalog is unknown, and callers skip membership checks entirely
// rather than failing everything.
type Registry struct {
	name    string
	entries map[string]Entry
}

// New builds a registry from entries. Later duplicates of a name
// silently win; use Parse for strict loading.
func New(name string, entries ...Entry) *Registry {
	r := &Registry{name: name, entries: make(map[string]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.Name] = e
	}
	return r
}

// FromNames builds a registry holding bare identifiers, a convenience
// for tests and inline configuration.
func FromNames(name string, names ...string) *Registry {
	entries := make([]Entry, len(names))
	for i, n := range names {
		entries[i] = Entry{Name: n}
	}
	return New(name, entries...)
}

// fileForm is the YAML layout of a catalog file.
type fileForm struct {
	Name    string  `yaml:"name"`
	Entries []Entry `yaml:"entries"`
}

// Parse reads a catalog from YAML bytes. Catalogs must carry a name
// and unique, non-empty entry names.
func Parse(data []byte) (*Registry, error) {
	var file fileForm
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing registry: %w", err)
	}
	if file.Name == "" {
		return nil, fmt.Errorf("parsing registry: catalog has no name")
	}
	r := &Registry{name: file.Name, entries: make(map[string]Entry, len(file.Entries))}
	for i, e := range file.Entries {
		if e.Name == "" {
			return nil, fmt.Errorf("parsing registry %s: entry %d has no name", file.Name, i)
		}
		if _, dup := r.entries[e.Name]; dup {
			return nil, fmt.Errorf("parsing registry %s: duplicate entry %q", file.Name, e.Name)
		}
		r.entries[e.Name] = e
	}
	return r, nil
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading registry: %w", err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// Name returns the catalog's name.
func (r *Registry) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Len returns the number of entries.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Has reports whether the catalog contains the exact name. A nil
// registry contains nothing.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	_, ok := r.entries[name]
	return ok
}

// Get returns the entry for a name.
func (r *Registry) Get(name string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[name]
	return e, ok
}

// Names returns all entry names in sorted order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Suggest returns the catalog entry closest to the given name by edit
// distance, or "" when nothing is within range. Ties go to the
// lexicographically first entry, so output is deterministic.
func (r *Registry) Suggest(name string) string {
	if r == nil {
		return ""
	}
	best := ""
	bestDist := maxSuggestDistance + 1
	for _, candidate := range r.Names() {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best = candidate
			bestDist = d
		}
	}
	return best
}
