package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/apflow/internal/editor"
	"github.com/roach88/apflow/internal/stepkey"
)

// Scenario defines one conformance scenario: a starting document, an
// edit script, and the expected outcome.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description"`

	// Document is the path to the starting flow document. Relative
	// paths are resolved against the scenario file's directory.
	Document string `yaml:"document,omitempty"`

	// DocumentInline embeds the starting document's text directly.
	// Exactly one of Document and DocumentInline must be set.
	DocumentInline string `yaml:"document_inline,omitempty"`

	// Format forces the document format ("json" or "yaml"). Defaults
	// to the document path's extension, or JSON for inline documents.
	Format string `yaml:"format,omitempty"`

	// Actors and Actions inline the registry entries validation runs
	// with. An empty list disables that membership check.
	Actors  []string `yaml:"actors,omitempty"`
	Actions []string `yaml:"actions,omitempty"`

	// CommitToken fixes the transaction token for deterministic
	// output. Defaults to "txn-1".
	CommitToken string `yaml:"commit_token,omitempty"`

	// PerOpValidation makes the session validate after every
	// operation instead of only at commit.
	PerOpValidation bool `yaml:"per_op_validation,omitempty"`

	// Script holds the edit operations, in the same form an edit
	// script file carries under its ops key.
	Script []yaml.Node `yaml:"script"`

	// Expect describes the outcome the run must produce.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause describes the expected outcome of a scenario run.
type ExpectClause struct {
	// State is the expected terminal transaction state: "committed"
	// or "rolled_back".
	State string `yaml:"state"`

	// ErrorContains must appear in the transaction error. Only
	// meaningful on rollback.
	ErrorContains string `yaml:"error_contains,omitempty"`

	// Keys is the expected step key order of the session document
	// after the run. On rollback that is the untouched original.
	Keys []string `yaml:"keys,omitempty"`

	// Codes lists diagnostic codes that must be present in the final
	// validation output. Subset match.
	Codes []string `yaml:"codes,omitempty"`

	// Renames maps old keys to the new keys the script must have
	// produced. Subset match; keys compare numerically.
	Renames map[string]string `yaml:"renames,omitempty"`
}

// Terminal state names accepted by expect.state.
const (
	StateCommitted  = "committed"
	StateRolledBack = "rolled_back"
)

// ParseScenario parses a scenario from YAML bytes. Unknown fields are
// rejected so typos fail loudly. Document paths are kept as written;
// LoadScenario resolves them.
func ParseScenario(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var scenario Scenario
	if err := dec.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// LoadScenario reads a scenario YAML file, resolving its document path
// relative to the file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if scenario.Document != "" && !filepath.IsAbs(scenario.Document) {
		scenario.Document = filepath.Join(filepath.Dir(path), scenario.Document)
	}
	return scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Document == "" && s.DocumentInline == "":
		return fmt.Errorf("document or document_inline is required")
	case s.Document != "" && s.DocumentInline != "":
		return fmt.Errorf("document and document_inline are mutually exclusive")
	}

	if s.Format != "" && s.Format != "json" && s.Format != "yaml" {
		return fmt.Errorf("unknown format %q", s.Format)
	}

	if len(s.Script) == 0 {
		return fmt.Errorf("script is required and must be non-empty")
	}

	switch s.Expect.State {
	case StateCommitted, StateRolledBack:
	case "":
		return fmt.Errorf("expect.state is required")
	default:
		return fmt.Errorf("unknown expect.state %q", s.Expect.State)
	}

	if s.Expect.ErrorContains != "" && s.Expect.State != StateRolledBack {
		return fmt.Errorf("expect.error_contains only applies to rolled_back scenarios")
	}
	if len(s.Expect.Renames) > 0 && s.Expect.State != StateCommitted {
		return fmt.Errorf("expect.renames only applies to committed scenarios")
	}

	for _, text := range s.Expect.Keys {
		if _, err := stepkey.Parse(text); err != nil {
			return fmt.Errorf("expect.keys: %w", err)
		}
	}
	for old, to := range s.Expect.Renames {
		if _, err := stepkey.Parse(old); err != nil {
			return fmt.Errorf("expect.renames: %w", err)
		}
		if _, err := stepkey.Parse(to); err != nil {
			return fmt.Errorf("expect.renames[%s]: %w", old, err)
		}
	}

	return nil
}

// buildScript reassembles the scenario's script entries into the edit
// script layout and runs them through the editor's parser, so scenarios
// accept exactly the operations an apply script does.
func (s *Scenario) buildScript() (*editor.Script, error) {
	doc := struct {
		Title string      `yaml:"title,omitempty"`
		Ops   []yaml.Node `yaml:"ops"`
	}{Title: s.Name, Ops: s.Script}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("reassembling script: %w", err)
	}
	return editor.ParseScript(data)
}
