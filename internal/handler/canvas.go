package handler

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"flowboard/internal/domain"
	"flowboard/internal/layout"
	"flowboard/internal/service"
)

// CanvasHandler handles canvas API requests
type CanvasHandler struct {
	responder
	svc *service.CanvasService
}

// NewCanvasHandler creates a new canvas handler
func NewCanvasHandler(svc *service.CanvasService, logger *log.Logger) *CanvasHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &CanvasHandler{responder: responder{logger: logger}, svc: svc}
}

// SelectionRequest replaces the current selection
type SelectionRequest struct {
	NodeIDs []string `json:"node_ids"`
}

// ============================================================================
// Nodes
// ============================================================================

// ListNodes returns all nodes
func (h *CanvasHandler) ListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := h.svc.ListNodes(r.Context())
	if err != nil {
		h.writeAppError(w, r, "Failed to list nodes", err)
		return
	}
	h.writeJSON(w, nodes, http.StatusOK)
}

// GetNode returns a single node
func (h *CanvasHandler) GetNode(w http.ResponseWriter, r *http.Request) {
	node, err := h.svc.GetNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeAppError(w, r, "Failed to get node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// CreateNode creates a new node
func (h *CanvasHandler) CreateNode(w http.ResponseWriter, r *http.Request) {
	var node domain.Node
	if err := decodeJSON(w, r, &node); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.CreateNode(r.Context(), &node); err != nil {
		h.writeAppError(w, r, "Failed to create node", err)
		return
	}
	h.writeJSON(w, node, http.StatusCreated)
}

// UpdateNode replaces an existing node
func (h *CanvasHandler) UpdateNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var node domain.Node
	if err := decodeJSON(w, r, &node); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.UpdateNode(r.Context(), id, &node); err != nil {
		h.writeAppError(w, r, "Failed to update node", err)
		return
	}
	h.writeJSON(w, node, http.StatusOK)
}

// DeleteNode deletes a node
func (h *CanvasHandler) DeleteNode(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNode(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeAppError(w, r, "Failed to delete node", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SetMeasured records the size the renderer measured for a node
func (h *CanvasHandler) SetMeasured(w http.ResponseWriter, r *http.Request) {
	var dims domain.Dimensions
	if err := decodeJSON(w, r, &dims); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.SetMeasured(r.Context(), chi.URLParam(r, "id"), dims); err != nil {
		h.writeAppError(w, r, "Failed to update measured size", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Edges
// ============================================================================

// ListEdges returns all edges
func (h *CanvasHandler) ListEdges(w http.ResponseWriter, r *http.Request) {
	edges, err := h.svc.ListEdges(r.Context())
	if err != nil {
		h.writeAppError(w, r, "Failed to list edges", err)
		return
	}
	h.writeJSON(w, edges, http.StatusOK)
}

// CreateEdge creates a new edge
func (h *CanvasHandler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var edge domain.Edge
	if err := decodeJSON(w, r, &edge); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.CreateEdge(r.Context(), &edge); err != nil {
		h.writeAppError(w, r, "Failed to create edge", err)
		return
	}
	h.writeJSON(w, edge, http.StatusCreated)
}

// DeleteEdge deletes an edge
func (h *CanvasHandler) DeleteEdge(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteEdge(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeAppError(w, r, "Failed to delete edge", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============================================================================
// Selection, Viewport and Layout
// ============================================================================

// SetSelection replaces the selection
func (h *CanvasHandler) SetSelection(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.SetSelection(r.Context(), req.NodeIDs); err != nil {
		h.writeAppError(w, r, "Failed to update selection", err)
		return
	}
	h.Toolbar(w, r)
}

// GetViewport returns the current pan/zoom
func (h *CanvasHandler) GetViewport(w http.ResponseWriter, r *http.Request) {
	vp, err := h.svc.Viewport(r.Context())
	if err != nil {
		h.writeAppError(w, r, "Failed to get viewport", err)
		return
	}
	h.writeJSON(w, vp, http.StatusOK)
}

// SaveViewport stores the pan/zoom
func (h *CanvasHandler) SaveViewport(w http.ResponseWriter, r *http.Request) {
	var vp domain.Viewport
	if err := decodeJSON(w, r, &vp); err != nil {
		h.writeAppError(w, r, "Invalid request body", err)
		return
	}

	if err := h.svc.SaveViewport(r.Context(), vp); err != nil {
		h.writeAppError(w, r, "Failed to save viewport", err)
		return
	}
	h.writeJSON(w, vp.Normalize(), http.StatusOK)
}

// Toolbar returns the multi-selection toolbar state
func (h *CanvasHandler) Toolbar(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Toolbar(r.Context())
	if err != nil {
		h.writeAppError(w, r, "Failed to compute toolbar position", err)
		return
	}
	h.writeJSON(w, state, http.StatusOK)
}

// Arrange applies an arrangement policy to the selection
func (h *CanvasHandler) Arrange(w http.ResponseWriter, r *http.Request) {
	policy, err := layout.ParsePolicy(chi.URLParam(r, "policy"))
	if err != nil {
		h.writeError(w, "Invalid arrangement", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.Arrange(r.Context(), policy)
	if err != nil {
		h.writeAppError(w, r, "Failed to arrange selection", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// ============================================================================
// Workflow Import/Export
// ============================================================================

// ExportWorkflow returns the canvas as a JSON or YAML document
func (h *CanvasHandler) ExportWorkflow(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	contentType, err := h.svc.ExportWorkflow(r.Context(), r.URL.Query().Get("format"), &buf)
	if err != nil {
		h.writeAppError(w, r, "Failed to export workflow", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write export", "err", err)
	}
}

// ImportWorkflow replaces the canvas with the posted document
func (h *CanvasHandler) ImportWorkflow(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" && strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = "yaml"
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	wf, err := h.svc.ImportWorkflow(r.Context(), format, r.Body)
	if err != nil {
		h.writeAppError(w, r, "Failed to import workflow", err)
		return
	}

	h.writeJSON(w, map[string]any{
		"name":  wf.Name,
		"nodes": len(wf.Nodes),
		"edges": len(wf.Edges),
	}, http.StatusOK)
}

// ClearCanvas removes every node and edge
func (h *CanvasHandler) ClearCanvas(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearCanvas(r.Context()); err != nil {
		h.writeAppError(w, r, "Failed to clear canvas", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
