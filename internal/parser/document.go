package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/wikilink"
)

// Options controls how file paths map to subjects.
type Options struct {
	// Namespaces lists the namespace names a leading directory may select.
	Namespaces []string
	// DefaultNamespace applies when neither frontmatter nor path names one.
	DefaultNamespace string
}

// ParsedDocument is a workspace file ready for annotation parsing.
type ParsedDocument struct {
	FilePath    string // relative to the workspace root, slash separated
	Document    annotation.Document
	Frontmatter *Frontmatter
	BodyLine    int // 1-indexed line where the body starts
}

// ParseDocument parses file content into a document. filePath may be absolute or
// relative to root.
func ParseDocument(content, filePath, root string, opts Options) (*ParsedDocument, error) {
	rel := filePath
	if root != "" && filepath.IsAbs(filePath) {
		if r, err := filepath.Rel(root, filePath); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	fm, body, err := ParseFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", rel, err)
	}

	subject := SubjectFromPath(rel, opts)
	doc := annotation.Document{Text: body}
	bodyLine := 1
	if fm != nil {
		bodyLine = fm.EndLine + 1
		if fm.Title != "" {
			parsed := annotation.ParseSubject(fm.Title, opts.Namespaces)
			subject.Title = parsed.Title
			if parsed.Namespace != "" {
				subject.Namespace = parsed.Namespace
			}
		}
		if fm.Namespace != "" {
			subject.Namespace = fm.Namespace
		}
		if fm.Redirect != "" {
			doc.RedirectTarget = redirectTarget(fm.Redirect)
		}
		if fm.Annotations != nil && !*fm.Annotations {
			doc.Meta.InitiallyDisabled = true
		}
	}
	doc.Subject = subject

	return &ParsedDocument{
		FilePath:    rel,
		Document:    doc,
		Frontmatter: fm,
		BodyLine:    bodyLine,
	}, nil
}

// ParseFile reads and parses one file.
func ParseFile(path, root string, opts Options) (*ParsedDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseDocument(string(content), path, root, opts)
}

// SubjectFromPath derives the subject from a relative path: the extension is
// dropped and a leading directory that names a known namespace becomes the
// namespace.
func SubjectFromPath(rel string, opts Options) annotation.Subject {
	title := strings.TrimSuffix(rel, filepath.Ext(rel))
	subject := annotation.Subject{Namespace: opts.DefaultNamespace}
	if dir, rest, ok := strings.Cut(title, "/"); ok {
		for _, ns := range opts.Namespaces {
			if strings.EqualFold(ns, dir) {
				subject.Namespace = ns
				title = rest
				break
			}
		}
	}
	subject.Title = strings.ReplaceAll(title, "_", " ")
	return subject
}

func redirectTarget(s string) string {
	s = strings.TrimSpace(s)
	if target, _, ok := wikilink.ParseExact(s); ok {
		return target
	}
	return s
}
