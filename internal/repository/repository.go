package repository

import (
	"context"

	"flowboard/internal/domain"
)

// Repository defines the interface for canvas data access
type Repository interface {
	// Nodes
	ListNodes(ctx context.Context) ([]domain.Node, error)
	GetNode(ctx context.Context, id string) (*domain.Node, error)
	UpsertNode(ctx context.Context, node *domain.Node) error
	DeleteNode(ctx context.Context, id string) error

	// Selection and renderer feedback
	SetSelection(ctx context.Context, ids []string) error
	SetMeasured(ctx context.Context, id string, dims domain.Dimensions) error

	// Layout persistence; the batch is applied atomically and in order
	ApplyPositionChanges(ctx context.Context, batch []domain.PositionUpdate) error

	// Edges
	ListEdges(ctx context.Context) ([]domain.Edge, error)
	UpsertEdge(ctx context.Context, edge *domain.Edge) error
	DeleteEdge(ctx context.Context, id string) error

	// Viewport
	CurrentViewport(ctx context.Context) (domain.Viewport, error)
	SaveViewport(ctx context.Context, vp domain.Viewport) error

	// Bulk operations
	ExportCanvas(ctx context.Context) (*domain.Workflow, error)
	ReplaceCanvas(ctx context.Context, wf *domain.Workflow) error
	ClearCanvas(ctx context.Context) error

	// Close releases resources
	Close() error
}
