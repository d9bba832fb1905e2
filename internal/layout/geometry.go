package layout

import (
	"math"

	"flowboard/internal/domain"
)

// Box is the flow-space extent of a selection. Only the edges the toolbar and
// arrangements need are tracked; the bottom edge is not.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
}

// CenterX returns the horizontal midpoint of the box.
func (b Box) CenterX() float64 {
	return (b.MinX + b.MaxX) / 2
}

// Point is a screen-space coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// BoundingBox returns the extent of the nodes' left, top and right edges.
// ok is false when nodes is empty.
func (o Options) BoundingBox(nodes []domain.Node) (box Box, ok bool) {
	if len(nodes) == 0 {
		return Box{}, false
	}

	box = Box{
		MinX: math.Inf(1),
		MinY: math.Inf(1),
		MaxX: math.Inf(-1),
	}
	for _, n := range nodes {
		box.MinX = math.Min(box.MinX, n.Position.X)
		box.MinY = math.Min(box.MinY, n.Position.Y)
		box.MaxX = math.Max(box.MaxX, n.Position.X+o.ResolveWidth(n))
	}
	return box, true
}

// ToolbarAnchor returns the screen-space point at which the selection toolbar
// is rendered: horizontally centred over the selection and ToolbarOffset
// screen units above its top edge. The offset is not scaled by zoom.
// ok is false when fewer than MinSelection nodes are given.
func (o Options) ToolbarAnchor(selection []domain.Node, vp domain.Viewport) (Point, bool) {
	if len(selection) < MinSelection {
		return Point{}, false
	}

	box, ok := o.BoundingBox(selection)
	if !ok {
		return Point{}, false
	}

	top := vp.ToScreen(domain.Position{X: box.CenterX(), Y: box.MinY})
	return Point{
		X: top.X,
		Y: top.Y - o.ToolbarOffset,
	}, true
}
