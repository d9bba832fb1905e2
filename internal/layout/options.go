package layout

import "flowboard/internal/domain"

// Default layout constants.
const (
	DefaultGap           = 20.0
	DefaultNodeWidth     = 220.0
	DefaultNodeHeight    = 200.0
	DefaultRowBucket     = 100.0
	DefaultToolbarOffset = 50.0
)

// MinSelection is the smallest selection the toolbar and arrangements act on.
const MinSelection = 2

// Options holds the tunable constants of the layout math.
type Options struct {
	Gap           float64 // Space between stacked nodes and grid cells
	DefaultWidth  float64 // Width used when a node has neither style nor measured width
	DefaultHeight float64 // Height used when a node has neither style nor measured height
	RowBucket     float64 // Vertical band size used to derive grid reading order
	ToolbarOffset float64 // Screen units between the toolbar anchor and the top of the selection
}

// DefaultOptions returns the canvas defaults.
func DefaultOptions() Options {
	return Options{
		Gap:           DefaultGap,
		DefaultWidth:  DefaultNodeWidth,
		DefaultHeight: DefaultNodeHeight,
		RowBucket:     DefaultRowBucket,
		ToolbarOffset: DefaultToolbarOffset,
	}
}

// WithDefaults fills non-positive sizes and row bucket from DefaultOptions.
// A zero Options value becomes DefaultOptions; otherwise Gap and ToolbarOffset
// are kept as given, including zero.
func (o Options) WithDefaults() Options {
	if o == (Options{}) {
		return DefaultOptions()
	}
	d := DefaultOptions()
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = d.DefaultWidth
	}
	if o.DefaultHeight <= 0 {
		o.DefaultHeight = d.DefaultHeight
	}
	if o.RowBucket <= 0 {
		o.RowBucket = d.RowBucket
	}
	return o
}

// ResolveWidth returns the node's width using the style → measured → default chain.
func (o Options) ResolveWidth(n domain.Node) float64 {
	if w := n.StyleWidth(); w != 0 {
		return w
	}
	if w := n.MeasuredWidth(); w != 0 {
		return w
	}
	return o.DefaultWidth
}

// ResolveHeight returns the node's height using the style → measured → default chain.
func (o Options) ResolveHeight(n domain.Node) float64 {
	if h := n.StyleHeight(); h != 0 {
		return h
	}
	if h := n.MeasuredHeight(); h != 0 {
		return h
	}
	return o.DefaultHeight
}
