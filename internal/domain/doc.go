// Package domain defines the core domain types for the Flowboard canvas editor.
//
// This package contains the entities and value objects that describe a
// node-based workflow canvas: nodes with flow-space positions and sizes,
// edges between node handles, the renderer's viewport, and the workflow
// document that is saved to disk.
//
// # Core Types
//
// Node represents a draggable canvas element (prompt, image input, model
// call, output) with a flow-space position, optional explicit and measured
// dimensions, and the selection flag owned by the node store.
//
// Edge connects a source handle on one node to a target handle on another.
//
// Viewport is the pan/zoom transform between flow space and screen space.
//
// PositionUpdate is a single target position for a node. Arrangement
// commands produce batches of them.
//
// Workflow is the persisted document: nodes, edges and the viewport.
//
// # Design Principles
//
// - Value objects where possible
// - No database or external dependencies
// - Pure domain logic without infrastructure concerns
package domain
