package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowboard/internal/domain"
	apperrors "flowboard/internal/errors"
	"flowboard/internal/layout"
	"flowboard/internal/repository/sqlite"
)

type fixture struct {
	svc    *CanvasService
	repo   *sqlite.Repository
	events chan Event
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	bus := NewEventBus()
	events := make(chan Event, 32)
	bus.Subscribe(events)

	svc := NewCanvasService(repo, bus, layout.DefaultOptions(), log.New(io.Discard))
	return &fixture{svc: svc, repo: repo, events: events}
}

// drain returns the event types published so far
func (f *fixture) drain() []EventType {
	var types []EventType
	for {
		select {
		case ev := <-f.events:
			types = append(types, ev.Type)
		default:
			return types
		}
	}
}

func (f *fixture) addNodes(t *testing.T, nodes ...*domain.Node) {
	t.Helper()
	for _, n := range nodes {
		require.NoError(t, f.svc.CreateNode(context.Background(), n))
	}
	f.drain()
}

func sizedNode(id string, x, y, w, h float64) *domain.Node {
	n := domain.NewNode(id, domain.NodeTypeGenerate, x, y)
	n.Style = &domain.Dimensions{Width: w, Height: h}
	return n
}

func TestCanvasServiceValidateNode(t *testing.T) {
	svc := &CanvasService{}

	tests := []struct {
		name    string
		node    *domain.Node
		wantErr bool
	}{
		{"valid node", domain.NewNode("a", domain.NodeTypePrompt, 0, 0), false},
		{"empty ID", &domain.Node{Type: domain.NodeTypePrompt}, true},
		{"empty type", &domain.Node{ID: "a"}, true},
		{"negative style", &domain.Node{ID: "a", Type: domain.NodeTypePrompt, Style: &domain.Dimensions{Width: -1}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.validateNode(tt.node)
			if tt.wantErr {
				assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCanvasServiceValidateEdge(t *testing.T) {
	svc := &CanvasService{}

	assert.NoError(t, svc.validateEdge(domain.NewEdge("a", "b")))
	assert.Error(t, svc.validateEdge(&domain.Edge{Target: "b"}))
	assert.Error(t, svc.validateEdge(&domain.Edge{Source: "a"}))
	assert.Error(t, svc.validateEdge(domain.NewEdge("a", "a")))
}

func TestCreateNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	t.Run("generates an ID", func(t *testing.T) {
		node := &domain.Node{Type: domain.NodeTypePrompt}
		require.NoError(t, f.svc.CreateNode(ctx, node))
		assert.NotEmpty(t, node.ID)
		assert.Equal(t, []EventType{EventNodeCreated}, f.drain())
	})

	t.Run("duplicate ID conflicts", func(t *testing.T) {
		require.NoError(t, f.svc.CreateNode(ctx, domain.NewNode("dup", domain.NodeTypePrompt, 0, 0)))
		err := f.svc.CreateNode(ctx, domain.NewNode("dup", domain.NodeTypePrompt, 0, 0))
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeConflict), "got %v", err)
	})

	t.Run("missing node is not found", func(t *testing.T) {
		_, err := f.svc.GetNode(ctx, "ghost")
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeNotFound), "got %v", err)
	})
}

func TestUpdateNode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addNodes(t, domain.NewNode("a", domain.NodeTypePrompt, 0, 0))

	original, err := f.svc.GetNode(ctx, "a")
	require.NoError(t, err)

	update := domain.NewNode("", domain.NodeTypePrompt, 5, 6)
	update.Label = "Edited"
	update.CreatedAt = time.Now().Add(time.Hour)
	require.NoError(t, f.svc.UpdateNode(ctx, "a", update))

	got, err := f.svc.GetNode(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Edited", got.Label)
	assert.True(t, got.CreatedAt.Equal(original.CreatedAt))
	assert.Equal(t, []EventType{EventNodeUpdated}, f.drain())

	t.Run("mismatched ID", func(t *testing.T) {
		err := f.svc.UpdateNode(ctx, "a", domain.NewNode("b", domain.NodeTypePrompt, 0, 0))
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput), "got %v", err)
	})
}

func TestToolbar(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addNodes(t,
		domain.NewNode("a", domain.NodeTypePrompt, 0, 0),
		domain.NewNode("b", domain.NodeTypePrompt, 0, 0),
	)

	t.Run("hidden below two selected", func(t *testing.T) {
		require.NoError(t, f.svc.SetSelection(ctx, []string{"a"}))
		state, err := f.svc.Toolbar(ctx)
		require.NoError(t, err)
		assert.False(t, state.Visible)
	})

	t.Run("anchored above the selection", func(t *testing.T) {
		require.NoError(t, f.svc.UpdateNode(ctx, "a", sizedNode("a", 0, 10, 100, 50)))
		require.NoError(t, f.svc.UpdateNode(ctx, "b", sizedNode("b", 200, 5, 100, 50)))
		require.NoError(t, f.svc.SetSelection(ctx, []string{"a", "b", "a"}))
		require.NoError(t, f.svc.SaveViewport(ctx, domain.Viewport{Zoom: 0.5, X: 20, Y: 10}))

		state, err := f.svc.Toolbar(ctx)
		require.NoError(t, err)
		// center x = 150 flow units; top y = 5
		assert.Equal(t, ToolbarState{Visible: true, X: 95, Y: -37.5}, state)
	})
}

func TestArrange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addNodes(t,
		sizedNode("a", 300, 50, 150, 80),
		sizedNode("b", 100, 10, 100, 80),
		sizedNode("c", 200, 30, 150, 80),
		domain.NewNode("unselected", domain.NodeTypeOutput, 999, 999),
	)

	t.Run("single selection does nothing", func(t *testing.T) {
		require.NoError(t, f.svc.SetSelection(ctx, []string{"a"}))
		f.drain()

		result, err := f.svc.Arrange(ctx, layout.PolicyHorizontal)
		require.NoError(t, err)
		assert.Empty(t, result.Updates)
		assert.Empty(t, f.drain())
	})

	t.Run("horizontal stack persists and publishes", func(t *testing.T) {
		require.NoError(t, f.svc.SetSelection(ctx, []string{"a", "b", "c"}))
		f.drain()

		result, err := f.svc.Arrange(ctx, layout.PolicyHorizontal)
		require.NoError(t, err)
		assert.Equal(t, []domain.PositionUpdate{
			domain.NewPositionUpdate("b", 100, 10),
			domain.NewPositionUpdate("c", 220, 10),
			domain.NewPositionUpdate("a", 390, 10),
		}, result.Updates)
		assert.Equal(t, []EventType{EventPositionsUpdated}, f.drain())

		nodes, err := f.svc.ListNodes(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.Position{X: 390, Y: 10}, nodes[0].Position)
		assert.Equal(t, domain.Position{X: 999, Y: 999}, nodes[3].Position)
		assert.Len(t, domain.Selection(nodes), 3)
	})
}

func TestImportExportWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	doc := `{
		"name": "sketch",
		"nodes": [
			{"id": "p", "type": "prompt", "position": {"x": 0, "y": 0}},
			{"id": "g", "type": "generate", "position": {"x": 300, "y": 0}}
		],
		"edges": [{"source": "p", "target": "g"}],
		"viewport": {"zoom": 2, "x": 0, "y": 0}
	}`

	wf, err := f.svc.ImportWorkflow(ctx, "json", strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, "sketch", wf.Name)
	assert.Equal(t, []EventType{EventCanvasReplaced}, f.drain())

	var buf bytes.Buffer
	contentType, err := f.svc.ExportWorkflow(ctx, "yaml", &buf)
	require.NoError(t, err)
	assert.Equal(t, "application/yaml", contentType)
	assert.Contains(t, buf.String(), "name: sketch")

	t.Run("unknown format", func(t *testing.T) {
		_, err := f.svc.ExportWorkflow(ctx, "xml", io.Discard)
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput), "got %v", err)
	})

	t.Run("node without type is rejected", func(t *testing.T) {
		_, err := f.svc.ImportWorkflow(ctx, "json", strings.NewReader(`{"nodes":[{"id":"x"}]}`))
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput), "got %v", err)
	})
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus()
	fast := make(chan Event, 1)
	slow := make(chan Event)
	bus.Subscribe(fast)
	bus.Subscribe(slow)

	bus.Publish(Event{Type: EventNodeCreated})
	assert.Equal(t, EventNodeCreated, (<-fast).Type)

	bus.Unsubscribe(fast)
	bus.Publish(Event{Type: EventNodeDeleted})
	select {
	case ev := <-fast:
		t.Fatalf("unsubscribed channel received %v", ev.Type)
	default:
	}
}
