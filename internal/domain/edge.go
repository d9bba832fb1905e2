package domain

import (
	"crypto/sha256"
	"fmt"
)

// Edge connects a source handle on one node to a target handle on another
type Edge struct {
	ID           string `json:"id"`
	Source       string `json:"source"`
	Target       string `json:"target"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// NewEdge creates a new edge
func NewEdge(source, target string) *Edge {
	edge := &Edge{
		Source: source,
		Target: target,
	}
	edge.ID = edge.GenerateID()
	return edge
}

// GenerateID creates a deterministic ID for the edge based on its endpoints.
// Edges are directed, so swapping source and target yields a different ID.
func (e *Edge) GenerateID() string {
	key := fmt.Sprintf("%s:%s->%s:%s", e.Source, e.SourceHandle, e.Target, e.TargetHandle)
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", hash[:8])
}
