package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"flowboard/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// ContentType returns the MIME type for exported documents
func (c *JSONCodec) ContentType() string {
	return "application/json"
}

// Parse imports a workflow from JSON
func (c *JSONCodec) Parse(r io.Reader) (*domain.Workflow, error) {
	var wf domain.Workflow
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&wf); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := normalize(&wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// Export exports a workflow to JSON with two-space indentation
func (c *JSONCodec) Export(wf *domain.Workflow, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(wf); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
