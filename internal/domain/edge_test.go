package domain

import (
	"testing"
)

func TestNewEdge(t *testing.T) {
	t.Run("creates edge with generated ID", func(t *testing.T) {
		edge := NewEdge("node1", "node2")

		if edge.Source != "node1" {
			t.Errorf("expected Source 'node1', got %s", edge.Source)
		}
		if edge.Target != "node2" {
			t.Errorf("expected Target 'node2', got %s", edge.Target)
		}
		if edge.ID == "" {
			t.Error("expected ID to be generated")
		}
	})
}

func TestEdgeGenerateID(t *testing.T) {
	t.Run("generates consistent ID", func(t *testing.T) {
		edge1 := NewEdge("node1", "node2")
		edge2 := NewEdge("node1", "node2")

		if edge1.ID != edge2.ID {
			t.Error("expected same endpoints to generate same ID")
		}
	})

	t.Run("direction matters", func(t *testing.T) {
		edge1 := NewEdge("node1", "node2")
		edge2 := NewEdge("node2", "node1")

		if edge1.ID == edge2.ID {
			t.Error("expected reversed endpoints to generate different IDs")
		}
	})

	t.Run("handles are part of the ID", func(t *testing.T) {
		edge1 := &Edge{Source: "node1", Target: "node2", SourceHandle: "image"}
		edge2 := &Edge{Source: "node1", Target: "node2", SourceHandle: "text"}

		if edge1.GenerateID() == edge2.GenerateID() {
			t.Error("expected different handles to generate different IDs")
		}
	})
}
