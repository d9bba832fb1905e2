package service

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"flowboard/internal/codec"
	"flowboard/internal/domain"
	apperrors "flowboard/internal/errors"
	"flowboard/internal/layout"
	"flowboard/internal/repository"
)

// ToolbarState tells the canvas whether and where to draw the selection toolbar
type ToolbarState struct {
	Visible bool    `json:"visible"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// ArrangeResult is returned by Arrange and published with positions_updated
type ArrangeResult struct {
	Policy  layout.Policy           `json:"policy"`
	Updates []domain.PositionUpdate `json:"updates"`
}

// CanvasService provides business logic for canvas operations
type CanvasService struct {
	repo     repository.Repository
	engine   *layout.Engine
	eventBus *EventBus
	logger   *log.Logger
}

// NewCanvasService creates a new canvas service
func NewCanvasService(repo repository.Repository, eventBus *EventBus, opts layout.Options, logger *log.Logger) *CanvasService {
	if logger == nil {
		logger = log.Default()
	}
	return &CanvasService{
		repo:     repo,
		engine:   layout.NewEngine(repo, repo, opts, logger.WithPrefix("layout")),
		eventBus: eventBus,
		logger:   logger,
	}
}

// LayoutOptions returns the layout options used for arrangements
func (s *CanvasService) LayoutOptions() layout.Options {
	return s.engine.Options()
}

// ============================================================================
// Nodes
// ============================================================================

// ListNodes returns all nodes in insertion order
func (s *CanvasService) ListNodes(ctx context.Context) ([]domain.Node, error) {
	return s.repo.ListNodes(ctx)
}

// GetNode retrieves a single node by ID
func (s *CanvasService) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	node, err := s.repo.GetNode(ctx, id)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "node %s not found", id)
	}
	return node, nil
}

// CreateNode creates a new node, generating an ID when none is given
func (s *CanvasService) CreateNode(ctx context.Context, node *domain.Node) error {
	if node.ID == "" {
		node.ID = uuid.Must(uuid.NewV7()).String()
	}
	if err := s.validateNode(node); err != nil {
		return err
	}

	existing, err := s.repo.GetNode(ctx, node.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.New(apperrors.ErrCodeConflict, "node %s already exists", node.ID)
	}

	if err := s.repo.UpsertNode(ctx, node); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeCreated,
		Payload: map[string]string{"node_id": node.ID, "type": string(node.Type)},
	})
	return nil
}

// UpdateNode replaces an existing node's content
func (s *CanvasService) UpdateNode(ctx context.Context, id string, node *domain.Node) error {
	if node.ID == "" {
		node.ID = id
	}
	if node.ID != id {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "node ID %s does not match path ID %s", node.ID, id)
	}
	if err := s.validateNode(node); err != nil {
		return err
	}

	existing, err := s.GetNode(ctx, id)
	if err != nil {
		return err
	}
	node.CreatedAt = existing.CreatedAt

	if err := s.repo.UpsertNode(ctx, node); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// DeleteNode removes a node and its edges
func (s *CanvasService) DeleteNode(ctx context.Context, id string) error {
	if err := s.repo.DeleteNode(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeDeleted,
		Payload: map[string]string{"node_id": id},
	})
	return nil
}

// SetMeasured records the size the renderer measured for a node
func (s *CanvasService) SetMeasured(ctx context.Context, id string, dims domain.Dimensions) error {
	if dims.Width < 0 || dims.Height < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "measured dimensions must not be negative")
	}
	if err := s.repo.SetMeasured(ctx, id, dims); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventNodeUpdated,
		Payload: map[string]any{"node_id": id, "measured": dims},
	})
	return nil
}

// ============================================================================
// Edges
// ============================================================================

// ListEdges returns all edges
func (s *CanvasService) ListEdges(ctx context.Context) ([]domain.Edge, error) {
	return s.repo.ListEdges(ctx)
}

// CreateEdge connects two existing nodes
func (s *CanvasService) CreateEdge(ctx context.Context, edge *domain.Edge) error {
	if err := s.validateEdge(edge); err != nil {
		return err
	}
	if err := s.repo.UpsertEdge(ctx, edge); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventEdgeCreated,
		Payload: map[string]string{"edge_id": edge.ID, "source": edge.Source, "target": edge.Target},
	})
	return nil
}

// DeleteEdge removes an edge
func (s *CanvasService) DeleteEdge(ctx context.Context, id string) error {
	if err := s.repo.DeleteEdge(ctx, id); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventEdgeDeleted,
		Payload: map[string]string{"edge_id": id},
	})
	return nil
}

// ============================================================================
// Selection, Viewport and Layout
// ============================================================================

// SetSelection makes exactly the given nodes selected. Duplicate IDs are ignored.
func (s *CanvasService) SetSelection(ctx context.Context, ids []string) error {
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			return apperrors.New(apperrors.ErrCodeInvalidInput, "empty node ID in selection")
		}
		if !slices.Contains(unique, id) {
			unique = append(unique, id)
		}
	}

	if err := s.repo.SetSelection(ctx, unique); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventSelectionChanged,
		Payload: map[string]any{"node_ids": unique},
	})
	return nil
}

// Viewport returns the current pan/zoom
func (s *CanvasService) Viewport(ctx context.Context) (domain.Viewport, error) {
	return s.repo.CurrentViewport(ctx)
}

// SaveViewport stores the pan/zoom reported by the renderer
func (s *CanvasService) SaveViewport(ctx context.Context, vp domain.Viewport) error {
	if vp.Zoom < 0 {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "zoom must not be negative")
	}
	vp = vp.Normalize()
	if err := s.repo.SaveViewport(ctx, vp); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventViewportChanged,
		Payload: vp,
	})
	return nil
}

// Toolbar returns where the multi-selection toolbar should be drawn
func (s *CanvasService) Toolbar(ctx context.Context) (ToolbarState, error) {
	anchor, ok, err := s.engine.ToolbarAnchor(ctx)
	if err != nil {
		return ToolbarState{}, err
	}
	if !ok {
		return ToolbarState{}, nil
	}
	return ToolbarState{Visible: true, X: anchor.X, Y: anchor.Y}, nil
}

// Arrange applies an arrangement to the current selection. Nothing is
// published when the selection is too small to arrange.
func (s *CanvasService) Arrange(ctx context.Context, policy layout.Policy) (*ArrangeResult, error) {
	batch, err := s.engine.Arrange(ctx, policy)
	if err != nil {
		return nil, err
	}

	result := &ArrangeResult{Policy: policy, Updates: batch}
	if result.Updates == nil {
		result.Updates = make([]domain.PositionUpdate, 0)
	}
	if len(batch) == 0 {
		return result, nil
	}

	s.eventBus.Publish(Event{
		Type:    EventPositionsUpdated,
		Payload: result,
	})
	return result, nil
}

// ============================================================================
// Workflow Import/Export
// ============================================================================

// Workflow returns the whole canvas as a workflow document
func (s *CanvasService) Workflow(ctx context.Context) (*domain.Workflow, error) {
	return s.repo.ExportCanvas(ctx)
}

// ExportWorkflow writes the canvas in the given format and returns its content type
func (s *CanvasService) ExportWorkflow(ctx context.Context, format string, w io.Writer) (string, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot export workflow")
	}

	wf, err := s.repo.ExportCanvas(ctx)
	if err != nil {
		return "", err
	}
	if err := c.Export(wf, w); err != nil {
		return "", err
	}
	return c.ContentType(), nil
}

// ImportWorkflow parses a workflow and replaces the canvas with it
func (s *CanvasService) ImportWorkflow(ctx context.Context, format string, r io.Reader) (*domain.Workflow, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "cannot import workflow")
	}

	wf, err := c.Parse(r)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "invalid %s workflow", c.Format())
	}
	if err := s.ReplaceCanvas(ctx, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// ReplaceCanvas replaces the canvas with an already parsed workflow
func (s *CanvasService) ReplaceCanvas(ctx context.Context, wf *domain.Workflow) error {
	for i := range wf.Nodes {
		if err := s.validateNode(&wf.Nodes[i]); err != nil {
			return err
		}
	}
	if err := s.repo.ReplaceCanvas(ctx, wf); err != nil {
		return err
	}

	s.logger.Info("canvas replaced", "workflow", wf.Name, "nodes", len(wf.Nodes), "edges", len(wf.Edges))
	s.eventBus.Publish(Event{
		Type:    EventCanvasReplaced,
		Payload: map[string]any{"name": wf.Name, "nodes": len(wf.Nodes), "edges": len(wf.Edges)},
	})
	return nil
}

// ClearCanvas removes all nodes and edges
func (s *CanvasService) ClearCanvas(ctx context.Context) error {
	if err := s.repo.ClearCanvas(ctx); err != nil {
		return err
	}

	s.eventBus.Publish(Event{
		Type:    EventCanvasReplaced,
		Payload: map[string]string{"action": "cleared"},
	})
	return nil
}

// Validation helpers

func (s *CanvasService) validateNode(node *domain.Node) error {
	if node.ID == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "node ID required")
	}
	if node.Type == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "node %s: type required", node.ID)
	}
	if node.Style != nil && (node.Style.Width < 0 || node.Style.Height < 0) {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "node %s: style dimensions must not be negative", node.ID)
	}
	return nil
}

func (s *CanvasService) validateEdge(edge *domain.Edge) error {
	if edge.Source == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "edge source required")
	}
	if edge.Target == "" {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "edge target required")
	}
	if edge.Source == edge.Target {
		return apperrors.New(apperrors.ErrCodeInvalidInput, "edge source and target cannot be the same")
	}
	return nil
}
