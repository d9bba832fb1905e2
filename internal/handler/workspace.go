package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	apperrors "flowboard/internal/errors"
	"flowboard/internal/workspace"
)

// DirectoryPicker opens a native folder dialog
type DirectoryPicker interface {
	Pick(ctx context.Context) (*workspace.PickResult, error)
}

// WorkspaceHandler handles file-system requests from the editor
type WorkspaceHandler struct {
	responder
	picker     DirectoryPicker
	defaultDir string
	now        func() time.Time
}

// NewWorkspaceHandler creates a workspace handler. defaultDir is used when a
// request leaves directoryPath empty; it may itself be empty.
func NewWorkspaceHandler(picker DirectoryPicker, defaultDir string, logger *log.Logger) *WorkspaceHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &WorkspaceHandler{
		responder:  responder{logger: logger},
		picker:     picker,
		defaultDir: defaultDir,
		now:        time.Now,
	}
}

// SaveWorkflowRequest is the body of POST /api/workflow
type SaveWorkflowRequest struct {
	DirectoryPath string          `json:"directoryPath"`
	Filename      string          `json:"filename"`
	Workflow      json.RawMessage `json:"workflow"`
}

// SaveGenerationRequest is the body of POST /api/save-generation
type SaveGenerationRequest struct {
	DirectoryPath string `json:"directoryPath"`
	Image         string `json:"image"`
	Prompt        string `json:"prompt"`
}

// failure is the editor's error envelope
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *WorkspaceHandler) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("workspace request failed", "path", r.URL.Path, "err", err)
	}
	h.writeJSON(w, failure{Success: false, Error: apperrors.UserMessage(err)}, status)
}

func (h *WorkspaceHandler) directory(requested string) string {
	if requested == "" {
		return h.defaultDir
	}
	return requested
}

// ValidateDirectory reports whether ?path= exists and is a directory
func (h *WorkspaceHandler) ValidateDirectory(w http.ResponseWriter, r *http.Request) {
	status, err := workspace.ValidateDirectory(r.URL.Query().Get("path"))
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.writeJSON(w, map[string]any{
		"success":     true,
		"exists":      status.Exists,
		"isDirectory": status.IsDirectory,
	}, http.StatusOK)
}

// SaveWorkflow writes a workflow document into a directory
func (h *WorkspaceHandler) SaveWorkflow(w http.ResponseWriter, r *http.Request) {
	var req SaveWorkflowRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	path, err := workspace.SaveWorkflow(h.directory(req.DirectoryPath), req.Filename, req.Workflow)
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("workflow saved", "path", path)
	h.writeJSON(w, map[string]any{"success": true, "filePath": path}, http.StatusOK)
}

// SaveGeneration writes a generated image into a directory
func (h *WorkspaceHandler) SaveGeneration(w http.ResponseWriter, r *http.Request) {
	var req SaveGenerationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeFailure(w, r, err)
		return
	}

	file, err := workspace.SaveGeneration(h.directory(req.DirectoryPath), req.Image, req.Prompt, h.now())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	h.logger.Info("generation saved", "path", file.Path)
	h.writeJSON(w, map[string]any{
		"success":  true,
		"filePath": file.Path,
		"filename": file.Filename,
	}, http.StatusOK)
}

// BrowseDirectory opens the native folder picker on the server's desktop
func (h *WorkspaceHandler) BrowseDirectory(w http.ResponseWriter, r *http.Request) {
	result, err := h.picker.Pick(r.Context())
	if err != nil {
		h.writeFailure(w, r, err)
		return
	}

	var path *string
	if !result.Cancelled {
		path = &result.Path
	}
	h.writeJSON(w, map[string]any{
		"success":   true,
		"cancelled": result.Cancelled,
		"path":      path,
	}, http.StatusOK)
}
