package domain

import "time"

// NodeType represents the kind of workflow node
type NodeType string

const (
	NodeTypePrompt     NodeType = "prompt"
	NodeTypeImageInput NodeType = "image_input"
	NodeTypeGenerate   NodeType = "generate"
	NodeTypeAnnotation NodeType = "annotation"
	NodeTypeOutput     NodeType = "output"
)

// Dimensions is a width/height pair in flow units.
// A zero component means the value is not known.
type Dimensions struct {
	Width  float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height float64 `json:"height,omitempty" yaml:"height,omitempty"`
}

// Node represents a draggable element on the canvas
type Node struct {
	ID       string         `json:"id"`
	Type     NodeType       `json:"type"`
	Label    string         `json:"label,omitempty"`
	Position Position       `json:"position"`
	Style    *Dimensions    `json:"style,omitempty"`    // Explicit size override
	Measured *Dimensions    `json:"measured,omitempty"` // Size reported by the renderer
	Selected bool           `json:"selected,omitempty"`
	Data     map[string]any `json:"data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewNode creates a new node at the given flow-space position
func NewNode(id string, nodeType NodeType, x, y float64) *Node {
	now := time.Now()
	return &Node{
		ID:        id,
		Type:      nodeType,
		Position:  Position{X: x, Y: y},
		Data:      make(map[string]any),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StyleWidth returns the explicit width override, or 0 if none
func (n *Node) StyleWidth() float64 {
	if n.Style == nil {
		return 0
	}
	return n.Style.Width
}

// StyleHeight returns the explicit height override, or 0 if none
func (n *Node) StyleHeight() float64 {
	if n.Style == nil {
		return 0
	}
	return n.Style.Height
}

// MeasuredWidth returns the renderer-measured width, or 0 if unmeasured
func (n *Node) MeasuredWidth() float64 {
	if n.Measured == nil {
		return 0
	}
	return n.Measured.Width
}

// MeasuredHeight returns the renderer-measured height, or 0 if unmeasured
func (n *Node) MeasuredHeight() float64 {
	if n.Measured == nil {
		return 0
	}
	return n.Measured.Height
}

// SetData sets a data value
func (n *Node) SetData(key string, value any) {
	if n.Data == nil {
		n.Data = make(map[string]any)
	}
	n.Data[key] = value
}

// GetData gets a data value
func (n *Node) GetData(key string) (any, bool) {
	if n.Data == nil {
		return nil, false
	}
	val, ok := n.Data[key]
	return val, ok
}

// GetDataString gets a data value as a string
func (n *Node) GetDataString(key string) string {
	val, ok := n.GetData(key)
	if !ok {
		return ""
	}
	if s, ok := val.(string); ok {
		return s
	}
	return ""
}

// Selection returns the selected nodes in input order.
// The input slice is not modified.
func Selection(nodes []Node) []Node {
	selected := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Selected {
			selected = append(selected, n)
		}
	}
	return selected
}
