package codec

import (
	"fmt"
	"io"

	"flowboard/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// ContentType returns the MIME type for exported documents
func (c *YAMLCodec) ContentType() string {
	return "application/yaml"
}

// yamlWorkflow represents the YAML structure for a workflow
type yamlWorkflow struct {
	Name     string       `yaml:"name"`
	Version  int          `yaml:"version"`
	Viewport yamlViewport `yaml:"viewport"`
	Nodes    []yamlNode   `yaml:"nodes"`
	Edges    []yamlEdge   `yaml:"edges"`
}

type yamlViewport struct {
	Zoom float64 `yaml:"zoom"`
	X    float64 `yaml:"x"`
	Y    float64 `yaml:"y"`
}

type yamlNode struct {
	ID       string             `yaml:"id"`
	Type     string             `yaml:"type"`
	Label    string             `yaml:"label,omitempty"`
	X        float64            `yaml:"x"`
	Y        float64            `yaml:"y"`
	Style    *domain.Dimensions `yaml:"style,omitempty"`
	Measured *domain.Dimensions `yaml:"measured,omitempty"`
	Selected bool               `yaml:"selected,omitempty"`
	Data     map[string]any     `yaml:"data,omitempty"`
}

type yamlEdge struct {
	ID           string `yaml:"id,omitempty"`
	Source       string `yaml:"source"`
	Target       string `yaml:"target"`
	SourceHandle string `yaml:"source_handle,omitempty"`
	TargetHandle string `yaml:"target_handle,omitempty"`
}

// Parse imports a workflow from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Workflow, error) {
	var yw yamlWorkflow
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&yw); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	wf := domain.NewWorkflow(yw.Name)
	wf.Version = yw.Version
	wf.Viewport = domain.Viewport{Zoom: yw.Viewport.Zoom, X: yw.Viewport.X, Y: yw.Viewport.Y}

	// Convert nodes
	for _, yn := range yw.Nodes {
		node := domain.Node{
			ID:       yn.ID,
			Type:     domain.NodeType(yn.Type),
			Label:    yn.Label,
			Position: domain.Position{X: yn.X, Y: yn.Y},
			Style:    yn.Style,
			Measured: yn.Measured,
			Selected: yn.Selected,
			Data:     yn.Data,
		}
		if node.Data == nil {
			node.Data = make(map[string]any)
		}
		wf.AddNode(node)
	}

	// Convert edges
	for _, ye := range yw.Edges {
		wf.AddEdge(domain.Edge{
			ID:           ye.ID,
			Source:       ye.Source,
			Target:       ye.Target,
			SourceHandle: ye.SourceHandle,
			TargetHandle: ye.TargetHandle,
		})
	}

	if err := normalize(wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// Export exports a workflow to YAML
func (c *YAMLCodec) Export(wf *domain.Workflow, w io.Writer) error {
	yw := yamlWorkflow{
		Name:     wf.Name,
		Version:  wf.Version,
		Viewport: yamlViewport{Zoom: wf.Viewport.Zoom, X: wf.Viewport.X, Y: wf.Viewport.Y},
		Nodes:    make([]yamlNode, 0, len(wf.Nodes)),
		Edges:    make([]yamlEdge, 0, len(wf.Edges)),
	}

	// Convert nodes
	for _, node := range wf.Nodes {
		yw.Nodes = append(yw.Nodes, yamlNode{
			ID:       node.ID,
			Type:     string(node.Type),
			Label:    node.Label,
			X:        node.Position.X,
			Y:        node.Position.Y,
			Style:    node.Style,
			Measured: node.Measured,
			Selected: node.Selected,
			Data:     node.Data,
		})
	}

	// Convert edges
	for _, edge := range wf.Edges {
		yw.Edges = append(yw.Edges, yamlEdge{
			ID:           edge.ID,
			Source:       edge.Source,
			Target:       edge.Target,
			SourceHandle: edge.SourceHandle,
			TargetHandle: edge.TargetHandle,
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&yw); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
