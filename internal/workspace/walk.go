// Package workspace finds and reads the documents of a workspace directory.
package workspace

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/semtext/semtext/internal/parser"
)

// StateDir holds the index and lock files inside a workspace.
const StateDir = ".semtext"

// Extensions lists the file extensions treated as documents.
var Extensions = []string{".md", ".wiki"}

// WalkResult contains the result of processing one document file.
type WalkResult struct {
	Path         string
	RelativePath string
	Document     *parser.ParsedDocument
	FileMtime    int64 // Unix seconds
	Error        error
}

// IsDocument reports whether path has a document extension.
func IsDocument(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Walk parses every document under root and calls handler for each, in lexical
// order. Hidden directories (including the state directory) are skipped. Per-file
// failures are reported through WalkResult.Error; an error returned by handler
// stops the walk.
func Walk(root string, opts parser.Options, handler func(WalkResult) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		relativePath, _ := filepath.Rel(root, path)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsDocument(path) {
			return nil
		}

		if err := ValidateWithin(root, path); err != nil {
			if errors.Is(err, ErrOutsideRoot) {
				return nil
			}
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		info, err := d.Info()
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		doc, err := parser.ParseDocument(string(content), path, root, opts)
		if err != nil {
			return handler(WalkResult{Path: path, RelativePath: relativePath, Error: err})
		}

		return handler(WalkResult{
			Path:         path,
			RelativePath: filepath.ToSlash(relativePath),
			Document:     doc,
			FileMtime:    info.ModTime().Unix(),
		})
	})
}
