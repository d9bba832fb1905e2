package workspace

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "flowboard/internal/errors"
)

const (
	// DefaultSnippet names a generation saved without a prompt
	DefaultSnippet = "generation"

	// SnippetLength is the number of prompt characters used in a filename
	SnippetLength = 30

	timestampLayout = "2006-01-02T15-04-05"
	fileMode        = 0o644
)

var (
	unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)
	nonAlnum        = regexp.MustCompile(`[^a-zA-Z0-9]+`)
	dataURLPrefix   = regexp.MustCompile(`^data:image/\w+;base64,`)
)

// DirStatus describes what exists at a path
type DirStatus struct {
	Exists      bool `json:"exists"`
	IsDirectory bool `json:"isDirectory"`
}

// GeneratedFile is a saved image
type GeneratedFile struct {
	Path     string `json:"filePath"`
	Filename string `json:"filename"`
}

// ValidateDirectory reports whether path exists and is a directory.
// A path that cannot be stat'ed is reported as missing rather than as an error.
func ValidateDirectory(path string) (DirStatus, error) {
	if path == "" {
		return DirStatus{}, apperrors.New(apperrors.ErrCodeInvalidInput, "Path parameter required")
	}
	info, err := os.Stat(path)
	if err != nil {
		return DirStatus{}, nil
	}
	return DirStatus{Exists: true, IsDirectory: info.IsDir()}, nil
}

// requireDirectory fails with INVALID_PATH unless dir is an existing directory
func requireDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInvalidPath, err, "Directory does not exist")
	}
	if !info.IsDir() {
		return apperrors.New(apperrors.ErrCodeInvalidPath, "Path is not a directory")
	}
	return nil
}

// SafeName replaces every character outside [a-zA-Z0-9_-] with an underscore
func SafeName(name string) string {
	return unsafeNameChars.ReplaceAllString(name, "_")
}

// SaveWorkflow writes workflow as indented JSON to dir/<SafeName(filename)>.json
// and returns the file path.
func SaveWorkflow(dir, filename string, workflow any) (string, error) {
	if dir == "" || filename == "" || isEmptyDocument(workflow) {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "Missing required fields")
	}
	if err := requireDirectory(dir); err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(workflow, "", "  ")
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "workflow is not valid JSON")
	}

	path := filepath.Join(dir, SafeName(filename)+".json")
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return "", apperrors.Wrap(apperrors.ErrCodeInternal, err, "Save failed")
	}
	return path, nil
}

func isEmptyDocument(v any) bool {
	switch doc := v.(type) {
	case nil:
		return true
	case json.RawMessage:
		s := strings.TrimSpace(string(doc))
		return s == "" || s == "null"
	}
	return false
}

// PromptSnippet turns the start of a prompt into a filename fragment:
// lower-case alphanumerics separated by single underscores.
func PromptSnippet(prompt string) string {
	if utf8.RuneCountInString(prompt) > SnippetLength {
		prompt = string([]rune(prompt)[:SnippetLength])
	}
	snippet := nonAlnum.ReplaceAllString(prompt, "_")
	snippet = strings.Trim(snippet, "_")
	if snippet == "" {
		return DefaultSnippet
	}
	return strings.ToLower(snippet)
}

// GenerationFilename names a generated image saved at now
func GenerationFilename(prompt string, now time.Time) string {
	return now.UTC().Format(timestampLayout) + "_" + PromptSnippet(prompt) + ".png"
}

// DecodeImage strips a data:image/...;base64, prefix and decodes the payload
func DecodeImage(image string) ([]byte, error) {
	payload := dataURLPrefix.ReplaceAllString(image, "")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "image is not valid base64")
	}
	return data, nil
}

// SaveGeneration writes a base64 image (optionally a data URL) into dir
func SaveGeneration(dir, image, prompt string, now time.Time) (*GeneratedFile, error) {
	if dir == "" || image == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "Missing required fields")
	}
	if err := requireDirectory(dir); err != nil {
		return nil, err
	}

	data, err := DecodeImage(image)
	if err != nil {
		return nil, err
	}

	filename := GenerationFilename(prompt, now)
	path := filepath.Join(dir, filename)
	if err := os.WriteFile(path, data, fileMode); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "Save failed")
	}
	return &GeneratedFile{Path: path, Filename: filename}, nil
}
