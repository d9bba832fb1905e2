package codec

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"flowboard/internal/domain"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixtureTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func fixtureWorkflow() *domain.Workflow {
	wf := domain.NewWorkflow("portrait-pipeline")

	prompt := domain.NewNode("prompt", domain.NodeTypePrompt, 100, 40)
	prompt.Label = "Prompt"
	prompt.Style = &domain.Dimensions{Width: 300}
	prompt.Selected = true
	prompt.SetData("text", "a lighthouse at dusk")
	prompt.CreatedAt, prompt.UpdatedAt = fixtureTime, fixtureTime

	gen := domain.NewNode("gen", domain.NodeTypeGenerate, 420, 40.5)
	gen.Measured = &domain.Dimensions{Width: 260, Height: 310}
	gen.Data = nil
	gen.CreatedAt, gen.UpdatedAt = fixtureTime, fixtureTime

	wf.AddNode(*prompt)
	wf.AddNode(*gen)
	wf.AddEdge(domain.Edge{ID: "e1", Source: "prompt", Target: "gen", SourceHandle: "out", TargetHandle: "prompt"})
	wf.Viewport = domain.Viewport{Zoom: 1.25, X: -40, Y: 12}
	return wf
}

func TestJSONExportGolden(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONCodec().Export(fixtureWorkflow(), &buf))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "workflow_json", buf.Bytes())
}

func TestJSONRoundTrip(t *testing.T) {
	c := NewJSONCodec()
	want := fixtureWorkflow()

	var buf bytes.Buffer
	require.NoError(t, c.Export(want, &buf))

	got, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Viewport, got.Viewport)
	assert.Equal(t, want.Edges, got.Edges)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, want.Nodes[0].Style, got.Nodes[0].Style)
	assert.Equal(t, want.Nodes[1].Measured, got.Nodes[1].Measured)
	assert.True(t, got.Nodes[0].Selected)
}

func TestYAMLRoundTrip(t *testing.T) {
	c := NewYAMLCodec()
	want := fixtureWorkflow()

	var buf bytes.Buffer
	require.NoError(t, c.Export(want, &buf))
	assert.Contains(t, buf.String(), "name: portrait-pipeline")

	got, err := c.Parse(&buf)
	require.NoError(t, err)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, domain.WorkflowVersion, got.Version)
	assert.Equal(t, want.Viewport, got.Viewport)
	assert.Equal(t, want.Edges, got.Edges)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, domain.Position{X: 420, Y: 40.5}, got.Nodes[1].Position)
	assert.Equal(t, "a lighthouse at dusk", got.Nodes[0].GetDataString("text"))
	assert.Equal(t, &domain.Dimensions{Width: 260, Height: 310}, got.Nodes[1].Measured)
}

func TestParseNormalizes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:  "minimal document",
			input: `{"name":"x"}`,
		},
		{
			name:    "newer version",
			input:   `{"name":"x","version":99}`,
			wantErr: "newer than supported",
		},
		{
			name:    "node without id",
			input:   `{"nodes":[{"type":"prompt"}]}`,
			wantErr: "has no id",
		},
		{
			name:    "duplicate node id",
			input:   `{"nodes":[{"id":"a"},{"id":"a"}]}`,
			wantErr: "duplicate node id a",
		},
		{
			name:    "malformed",
			input:   `{`,
			wantErr: "failed to parse JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wf, err := NewJSONCodec().Parse(strings.NewReader(tt.input))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.WorkflowVersion, wf.Version)
			assert.NotNil(t, wf.Nodes)
			assert.NotNil(t, wf.Edges)
			assert.Equal(t, domain.DefaultViewport(), wf.Viewport)
		})
	}

	t.Run("derives missing edge ids", func(t *testing.T) {
		wf, err := NewJSONCodec().Parse(strings.NewReader(
			`{"nodes":[{"id":"a"},{"id":"b"}],"edges":[{"source":"a","target":"b"}]}`))
		require.NoError(t, err)
		assert.Equal(t, domain.NewEdge("a", "b").ID, wf.Edges[0].ID)
	})
}

func TestForFormat(t *testing.T) {
	for _, format := range []string{"", "json", "JSON"} {
		c, err := ForFormat(format)
		require.NoError(t, err)
		assert.Equal(t, "json", c.Format())
	}
	for _, format := range []string{"yaml", "yml"} {
		c, err := ForFormat(format)
		require.NoError(t, err)
		assert.Equal(t, "yaml", c.Format())
	}

	_, err := ForFormat("xml")
	assert.Error(t, err)
}
