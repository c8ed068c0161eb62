package workspace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/parser"
	"github.com/semtext/semtext/internal/slugs"
)

var (
	// ErrOutsideRoot indicates a path that resolves outside the workspace.
	ErrOutsideRoot = errors.New("path is outside the workspace")
	// ErrPageNotFound indicates that no document holds the requested subject.
	ErrPageNotFound = errors.New("page not found")
)

// ValidateWithin checks that path, after resolving symlinks, stays under root.
func ValidateWithin(root, path string) error {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if r, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = r
	}
	if p, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = p
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return err
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return nil
}

// CandidatePaths returns the relative file paths a subject is usually stored at.
func CandidatePaths(subject annotation.Subject) []string {
	var dirs []string
	if subject.Namespace != "" {
		dirs = append(dirs, subject.Namespace, strings.ToLower(subject.Namespace))
	} else {
		dirs = append(dirs, "")
	}
	names := []string{subject.Title}
	if underscored := strings.ReplaceAll(subject.Title, " ", "_"); underscored != subject.Title {
		names = append(names, underscored)
	}

	seen := make(map[string]bool)
	var out []string
	for _, dir := range dirs {
		for _, name := range names {
			for _, ext := range Extensions {
				p := filepath.ToSlash(filepath.Join(dir, name+ext))
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// ResolvePage finds the file that holds subject. Direct candidate paths are tried
// first; otherwise the workspace is walked and subjects are compared by slug.
func ResolvePage(root string, subject annotation.Subject, opts parser.Options) (string, error) {
	for _, rel := range CandidatePaths(subject) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(p); err == nil {
			if err := ValidateWithin(root, p); err != nil {
				return "", err
			}
			return p, nil
		}
	}

	want := slugs.TitleSlug(subject.String())
	var found string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr
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
		rel, _ := filepath.Rel(root, path)
		if slugs.TitleSlug(parser.SubjectFromPath(filepath.ToSlash(rel), opts).String()) == want {
			found = path
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil && !errors.Is(err, filepath.SkipAll) {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("%w: %s", ErrPageNotFound, subject)
	}
	return found, nil
}

// Source reads page bodies from a workspace directory.
type Source struct {
	Root    string
	Options parser.Options
}

// PageText returns the body of the page holding subject, without frontmatter.
func (s Source) PageText(subject annotation.Subject) (string, error) {
	path, err := ResolvePage(s.Root, subject, s.Options)
	if err != nil {
		return "", err
	}
	doc, err := parser.ParseFile(path, s.Root, s.Options)
	if err != nil {
		return "", err
	}
	return doc.Document.Text, nil
}
