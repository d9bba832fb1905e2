package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "flowboard/internal/errors"
)

func TestValidateDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "note.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	tests := []struct {
		name string
		path string
		want DirStatus
	}{
		{"directory", dir, DirStatus{Exists: true, IsDirectory: true}},
		{"file", file, DirStatus{Exists: true, IsDirectory: false}},
		{"missing", filepath.Join(dir, "nope"), DirStatus{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateDirectory(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("empty path", func(t *testing.T) {
		_, err := ValidateDirectory("")
		assert.True(t, apperrors.Is(err, apperrors.ErrCodeInvalidInput))
		assert.Equal(t, "Path parameter required", apperrors.UserMessage(err))
	})
}

func TestSafeName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"my-workflow_1", "my-workflow_1"},
		{"portrait v2.final", "portrait_v2_final"},
		{"../../etc/passwd", "______etc_passwd"},
		{"café", "caf_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeName(tt.in))
		})
	}
}

func TestSaveWorkflow(t *testing.T) {
	dir := t.TempDir()

	t.Run("writes indented JSON", func(t *testing.T) {
		doc := map[string]any{"name": "sketch", "nodes": []any{}}
		path, err := SaveWorkflow(dir, "my sketch", doc)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "my_sketch.json"), path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"name\": \"sketch\",\n  \"nodes\": []\n}", string(data))
	})

	t.Run("raw JSON is re-indented", func(t *testing.T) {
		path, err := SaveWorkflow(dir, "raw", json.RawMessage(`{"a":1}`))
		require.NoError(t, err)
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1\n}", string(data))
	})

	errTests := []struct {
		name     string
		dir      string
		filename string
		doc      any
		code     apperrors.Code
		message  string
	}{
		{"missing directory field", "", "x", map[string]any{}, apperrors.ErrCodeInvalidInput, "Missing required fields"},
		{"missing filename", dir, "", map[string]any{}, apperrors.ErrCodeInvalidInput, "Missing required fields"},
		{"missing workflow", dir, "x", nil, apperrors.ErrCodeInvalidInput, "Missing required fields"},
		{"null workflow", dir, "x", json.RawMessage("null"), apperrors.ErrCodeInvalidInput, "Missing required fields"},
		{"directory does not exist", filepath.Join(dir, "nope"), "x", map[string]any{}, apperrors.ErrCodeInvalidPath, "Directory does not exist"},
	}

	for _, tt := range errTests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SaveWorkflow(tt.dir, tt.filename, tt.doc)
			require.Error(t, err)
			assert.Equal(t, tt.code, apperrors.GetCode(err))
			assert.Equal(t, tt.message, apperrors.UserMessage(err))
		})
	}

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(dir, "plain.txt")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := SaveWorkflow(file, "x", map[string]any{})
		assert.Equal(t, apperrors.ErrCodeInvalidPath, apperrors.GetCode(err))
		assert.Equal(t, "Path is not a directory", apperrors.UserMessage(err))
	})
}

func TestPromptSnippet(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{"empty", "", "generation"},
		{"simple", "A cat", "a_cat"},
		{"collapses runs", "hello,   world!!", "hello_world"},
		{"trims edges", "  --Sunset--  ", "sunset"},
		{"truncates to thirty characters", "abcdefghijklmnopqrstuvwxyz0123456789", "abcdefghijklmnopqrstuvwxyz0123"},
		{"truncates before sanitising", "a lighthouse on a cliff at dusk, oil painting", "a_lighthouse_on_a_cliff_at_dus"},
		{"symbols only", "!!!", "generation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PromptSnippet(tt.prompt))
		})
	}
}

func TestGenerationFilename(t *testing.T) {
	now := time.Date(2026, 3, 4, 5, 6, 7, 890_000_000, time.FixedZone("CET", 3600))
	assert.Equal(t, "2026-03-04T04-06-07_a_cat.png", GenerationFilename("A cat", now))
}

func TestSaveGeneration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	t.Run("strips data URL prefix", func(t *testing.T) {
		// "png!" in base64
		got, err := SaveGeneration(dir, "data:image/png;base64,cG5nIQ==", "A cat", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-04T05-06-07_a_cat.png", got.Filename)
		assert.Equal(t, filepath.Join(dir, got.Filename), got.Path)

		data, err := os.ReadFile(got.Path)
		require.NoError(t, err)
		assert.Equal(t, "png!", string(data))
	})

	t.Run("plain base64 without prompt", func(t *testing.T) {
		got, err := SaveGeneration(dir, "cG5nIQ==", "", now)
		require.NoError(t, err)
		assert.Equal(t, "2026-03-04T05-06-07_generation.png", got.Filename)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := SaveGeneration(dir, "", "x", now)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})

	t.Run("bad base64", func(t *testing.T) {
		_, err := SaveGeneration(dir, "data:image/png;base64,***", "x", now)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, apperrors.GetCode(err))
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := SaveGeneration(filepath.Join(dir, "nope"), "cG5nIQ==", "x", now)
		assert.Equal(t, apperrors.ErrCodeInvalidPath, apperrors.GetCode(err))
	})
}
