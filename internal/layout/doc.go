// Package layout computes multi-selection geometry and arrangements for the
// canvas.
//
// Two concerns live here:
//
//   - Selection geometry: the flow-space bounding box of the selected nodes and
//     the screen-space anchor for the floating selection toolbar.
//   - Arrangement: new positions for every selected node under one of three
//     policies (horizontal stack, vertical stack, grid).
//
// All computations are pure functions of the node list and viewport. Engine
// binds them to a NodeStore and ViewportProvider so that each command reads
// the store once and hands back a single batch of position updates.
//
// # Dimension Fallback
//
// A node's width resolves as explicit style width, then measured width, then
// Options.DefaultWidth (220). Height resolves the same way with
// Options.DefaultHeight (200). A zero value counts as absent.
//
// # Selections Below Two Nodes
//
// With fewer than two selected nodes there is no toolbar anchor and every
// arrangement returns an empty batch. This is a defined empty result, not an
// error.
package layout
