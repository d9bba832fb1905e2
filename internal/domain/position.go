package domain

// Position is a point in flow space
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PositionUpdate is the target position for one node
type PositionUpdate struct {
	NodeID   string   `json:"node_id"`
	Position Position `json:"position"`
}

// NewPositionUpdate creates a position update for a node
func NewPositionUpdate(nodeID string, x, y float64) PositionUpdate {
	return PositionUpdate{
		NodeID:   nodeID,
		Position: Position{X: x, Y: y},
	}
}

// Viewport is the pan/zoom transform applied by the renderer.
// Zoom is screen units per flow unit; X and Y are the screen-space pan.
type Viewport struct {
	Zoom float64 `json:"zoom"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// DefaultViewport returns the identity viewport
func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

// Normalize replaces a non-positive zoom with 1
func (v Viewport) Normalize() Viewport {
	if v.Zoom <= 0 {
		v.Zoom = 1
	}
	return v
}

// ToScreen maps a flow-space point into screen space
func (v Viewport) ToScreen(p Position) Position {
	return Position{
		X: p.X*v.Zoom + v.X,
		Y: p.Y*v.Zoom + v.Y,
	}
}
