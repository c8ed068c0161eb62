// Package testutil builds temporary workspaces for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TestWorkspace represents a temporary workspace for testing.
type TestWorkspace struct {
	Path  string
	t     *testing.T
	files map[string]string
}

// NewTestWorkspace creates a new workspace builder.
// Call Build() to create the actual directory.
func NewTestWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return &TestWorkspace{t: t, files: make(map[string]string)}
}

// WithFile adds a file relative to the workspace root.
func (w *TestWorkspace) WithFile(path, content string) *TestWorkspace {
	w.files[path] = content
	return w
}

// WithConfig sets the semtext.yaml content.
func (w *TestWorkspace) WithConfig(yaml string) *TestWorkspace {
	w.files["semtext.yaml"] = yaml
	return w
}

// Build creates the workspace directory and all configured files.
func (w *TestWorkspace) Build() *TestWorkspace {
	w.t.Helper()
	w.Path = w.t.TempDir()
	for path, content := range w.files {
		w.WriteFile(path, content)
	}
	return w
}

// WriteFile writes a file into the built workspace, creating directories as needed.
func (w *TestWorkspace) WriteFile(relPath, content string) {
	w.t.Helper()
	fullPath := filepath.Join(w.Path, filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		w.t.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0o644); err != nil {
		w.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}

// ReadFile reads a file from the workspace.
func (w *TestWorkspace) ReadFile(relPath string) string {
	w.t.Helper()
	content, err := os.ReadFile(filepath.Join(w.Path, filepath.FromSlash(relPath)))
	if err != nil {
		w.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

// Abs returns the absolute path of a workspace-relative path.
func (w *TestWorkspace) Abs(relPath string) string {
	return filepath.Join(w.Path, filepath.FromSlash(relPath))
}

// CityWorkspace returns a small workspace of annotated city pages.
func CityWorkspace(t *testing.T) *TestWorkspace {
	t.Helper()
	return NewTestWorkspace(t).
		WithConfig(`namespaces: [Help, Template]
properties:
  Has population: number
  Founded: date
`).
		WithFile("Berlin.md", "---\ntitle: Berlin\n---\nBerlin is the capital of [[Capital of::Germany]] with [[Has population::3,645,000]] people. Founded [[Founded::1237]].\n").
		WithFile("Paris.md", "Paris is the capital of [[Capital of::France]]. See [[Berlin]].\n").
		WithFile("Template/Infobox.md", "[[Has infobox::yes]]").
		WithFile("Help/Editing.md", "Write [[Property::Value]] to annotate.\n")
}
