package handler

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every endpoint. events serves the SSE stream and may be nil.
func NewRouter(canvas *CanvasHandler, ws *WorkspaceHandler, events http.Handler, logger *log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, Logger(logger))

	r.Route("/api", func(r chi.Router) {
		// Node endpoints
		r.Get("/nodes", canvas.ListNodes)
		r.Post("/nodes", canvas.CreateNode)
		r.Get("/nodes/{id}", canvas.GetNode)
		r.Put("/nodes/{id}", canvas.UpdateNode)
		r.Delete("/nodes/{id}", canvas.DeleteNode)
		r.Put("/nodes/{id}/measured", canvas.SetMeasured)

		// Edge endpoints
		r.Get("/edges", canvas.ListEdges)
		r.Post("/edges", canvas.CreateEdge)
		r.Delete("/edges/{id}", canvas.DeleteEdge)

		// Selection, viewport and layout
		r.Put("/selection", canvas.SetSelection)
		r.Get("/viewport", canvas.GetViewport)
		r.Put("/viewport", canvas.SaveViewport)
		r.Get("/toolbar", canvas.Toolbar)
		r.Post("/arrange/{policy}", canvas.Arrange)
		r.Delete("/canvas", canvas.ClearCanvas)

		// Workflow documents
		r.Get("/workflow/export", canvas.ExportWorkflow)
		r.Post("/workflow/import", canvas.ImportWorkflow)
		r.Get("/workflow", ws.ValidateDirectory)
		r.Post("/workflow", ws.SaveWorkflow)

		// Workspace files
		r.Post("/save-generation", ws.SaveGeneration)
		r.Get("/browse-directory", ws.BrowseDirectory)
	})

	if events != nil {
		r.Method(http.MethodGet, "/events", events)
	}

	return Chain(r, Recover(logger), CORS)
}
