// Package codec converts workflows to and from their on-disk formats.
package codec

import (
	"fmt"
	"io"
	"strings"

	"flowboard/internal/domain"
)

// Importer interface for importing workflows from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Workflow, error)
	Format() string
}

// Exporter interface for exporting workflows to various formats
type Exporter interface {
	Export(wf *domain.Workflow, w io.Writer) error
	Format() string
}

// Codec both imports and exports a format
type Codec interface {
	Importer
	Exporter
	ContentType() string
}

// ForFormat returns the codec for a format name. An empty name means JSON.
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// normalize fills defaults on a freshly parsed workflow and rejects
// documents written by a newer version.
func normalize(wf *domain.Workflow) error {
	if wf.Version == 0 {
		wf.Version = domain.WorkflowVersion
	}
	if wf.Version > domain.WorkflowVersion {
		return fmt.Errorf("workflow version %d is newer than supported version %d", wf.Version, domain.WorkflowVersion)
	}
	if wf.Nodes == nil {
		wf.Nodes = make([]domain.Node, 0)
	}
	if wf.Edges == nil {
		wf.Edges = make([]domain.Edge, 0)
	}

	seen := make(map[string]bool, len(wf.Nodes))
	for i := range wf.Nodes {
		n := &wf.Nodes[i]
		if n.ID == "" {
			return fmt.Errorf("node %d has no id", i)
		}
		if seen[n.ID] {
			return fmt.Errorf("duplicate node id %s", n.ID)
		}
		seen[n.ID] = true
	}
	for i := range wf.Edges {
		if wf.Edges[i].ID == "" {
			wf.Edges[i].ID = wf.Edges[i].GenerateID()
		}
	}

	wf.Viewport = wf.Viewport.Normalize()
	return nil
}
