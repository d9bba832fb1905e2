// Package handler implements HTTP request handlers for the flowboard API.
//
// # Handlers
//
// CanvasHandler serves nodes, edges, selection, viewport, the multi-selection
// toolbar anchor and the arrangement commands, plus workflow import/export.
//
// WorkspaceHandler serves the file-system endpoints used by the editor's
// save dialogs: directory validation, saving workflows and generated images,
// and the native folder picker.
//
// # Response Format
//
// Canvas endpoints return JSON data on success and {error, details} on
// failure, with the status derived from the error code. Workspace endpoints
// keep the editor's {success, ...} envelope.
//
// # Server-Sent Events
//
// /events streams every service event so that all open canvases follow
// arrangements and edits made elsewhere.
package handler
