package domain

// WorkflowVersion is the current workflow document version
const WorkflowVersion = 1

// Workflow is the persisted form of a canvas
type Workflow struct {
	Name     string   `json:"name"`
	Version  int      `json:"version"`
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Viewport Viewport `json:"viewport"`
}

// NewWorkflow creates an empty workflow
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		Name:     name,
		Version:  WorkflowVersion,
		Nodes:    make([]Node, 0),
		Edges:    make([]Edge, 0),
		Viewport: DefaultViewport(),
	}
}

// AddNode adds a node to the workflow
func (w *Workflow) AddNode(node Node) {
	w.Nodes = append(w.Nodes, node)
}

// AddEdge adds an edge to the workflow
func (w *Workflow) AddEdge(edge Edge) {
	w.Edges = append(w.Edges, edge)
}

// ApplyPositions moves nodes to the positions in the batch.
// Updates for unknown node IDs are ignored. Returns the number applied.
func (w *Workflow) ApplyPositions(batch []PositionUpdate) int {
	index := make(map[string]int, len(w.Nodes))
	for i, n := range w.Nodes {
		index[n.ID] = i
	}

	applied := 0
	for _, u := range batch {
		i, ok := index[u.NodeID]
		if !ok {
			continue
		}
		w.Nodes[i].Position = u.Position
		applied++
	}
	return applied
}
