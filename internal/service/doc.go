// Package service implements business logic for the flowboard canvas.
//
// CanvasService sits between the HTTP handlers and the repository. It owns
// validation, ID generation and event publishing, and delegates selection
// geometry and arrangements to a layout.Engine bound to the same repository.
//
// # Event System
//
// Every mutation publishes an Event on the EventBus. The SSE hub subscribes
// to the bus and forwards events to connected canvases so that an
// arrangement performed in one window moves the nodes in every other.
package service
