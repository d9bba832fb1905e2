package layout

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"flowboard/internal/domain"
)

// NodeStore is the source of truth for nodes and the sink for position batches.
type NodeStore interface {
	ListNodes(ctx context.Context) ([]domain.Node, error)
	ApplyPositionChanges(ctx context.Context, batch []domain.PositionUpdate) error
}

// ViewportProvider returns a snapshot of the renderer's pan/zoom.
type ViewportProvider interface {
	CurrentViewport(ctx context.Context) (domain.Viewport, error)
}

// Engine runs selection geometry and arrangement commands against a store.
type Engine struct {
	store    NodeStore
	viewport ViewportProvider
	opts     Options
	logger   *log.Logger
}

// NewEngine creates an engine. A nil logger falls back to log.Default().
func NewEngine(store NodeStore, viewport ViewportProvider, opts Options, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:    store,
		viewport: viewport,
		opts:     opts.WithDefaults(),
		logger:   logger,
	}
}

// Options returns the layout options in effect.
func (e *Engine) Options() Options {
	return e.opts
}

// Selection reads the current selection from the store.
func (e *Engine) Selection(ctx context.Context) ([]domain.Node, error) {
	nodes, err := e.store.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return domain.Selection(nodes), nil
}

// ToolbarAnchor returns where the selection toolbar should render, or
// ok=false when fewer than two nodes are selected.
func (e *Engine) ToolbarAnchor(ctx context.Context) (anchor Point, ok bool, err error) {
	selection, err := e.Selection(ctx)
	if err != nil {
		return Point{}, false, err
	}
	if len(selection) < MinSelection {
		return Point{}, false, nil
	}

	vp, err := e.viewport.CurrentViewport(ctx)
	if err != nil {
		return Point{}, false, fmt.Errorf("read viewport: %w", err)
	}

	anchor, ok = e.opts.ToolbarAnchor(selection, vp.Normalize())
	return anchor, ok, nil
}

// StackHorizontally arranges the selection in a row.
func (e *Engine) StackHorizontally(ctx context.Context) ([]domain.PositionUpdate, error) {
	return e.Arrange(ctx, PolicyHorizontal)
}

// StackVertically arranges the selection in a column.
func (e *Engine) StackVertically(ctx context.Context) ([]domain.PositionUpdate, error) {
	return e.Arrange(ctx, PolicyVertical)
}

// ArrangeAsGrid arranges the selection in a near-square grid.
func (e *Engine) ArrangeAsGrid(ctx context.Context) ([]domain.PositionUpdate, error) {
	return e.Arrange(ctx, PolicyGrid)
}

// Arrange computes the full batch for the policy and hands it to the store in
// a single call. An empty batch is not sent. Store errors are returned
// wrapped but otherwise unchanged.
func (e *Engine) Arrange(ctx context.Context, p Policy) ([]domain.PositionUpdate, error) {
	selection, err := e.Selection(ctx)
	if err != nil {
		return nil, err
	}

	batch, err := e.opts.Arrange(p, selection)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		e.logger.Debug("arrangement skipped", "policy", p, "selected", len(selection))
		return nil, nil
	}

	if err := e.store.ApplyPositionChanges(ctx, batch); err != nil {
		return nil, fmt.Errorf("apply %s arrangement: %w", p, err)
	}

	e.logger.Info("arranged selection", "policy", p, "nodes", len(batch))
	return batch, nil
}
