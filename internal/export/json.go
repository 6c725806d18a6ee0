package export

import (
	"github.com/roach88/apflow/internal/document"
	"github.com/roach88/apflow/internal/flow"
)

// JSON renders the document in its wire serialization, indented two
// spaces.
type JSON struct{}

// Format returns "json".
func (JSON) Format() string { return "json" }

// Export renders the document as wire JSON.
func (JSON) Export(f *flow.Flow) ([]byte, error) {
	return document.Encode(f, document.FormatJSON)
}
