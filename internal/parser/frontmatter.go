// Package parser turns workspace files into documents for the annotation extractor.
package parser

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter represents parsed frontmatter data.
type Frontmatter struct {
	Title     string `yaml:"title"`
	Namespace string `yaml:"namespace"`
	Redirect  string `yaml:"redirect"`

	// Annotations set to false starts the document with collection switched off.
	Annotations *bool `yaml:"annotations"`

	// Raw is the raw frontmatter content.
	Raw string `yaml:"-"`

	// EndLine is the line where frontmatter ends (1-indexed).
	EndLine int `yaml:"-"`
}

// FrontmatterBounds returns the opening and closing frontmatter line indices.
// It only detects frontmatter when the first line is '---'.
// If frontmatter is present but unclosed, endLine is -1.
func FrontmatterBounds(lines []string) (startLine int, endLine int, ok bool) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return 0, -1, false
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return 0, i, true
		}
	}
	return 0, -1, true
}

// ParseFrontmatter splits YAML frontmatter from content and returns it with the
// remaining body. fm is nil when there is no closed frontmatter block, in which
// case body is content unchanged.
func ParseFrontmatter(content string) (fm *Frontmatter, body string, err error) {
	lines := strings.Split(content, "\n")

	_, endLine, ok := FrontmatterBounds(lines)
	if !ok || endLine == -1 {
		return nil, content, nil
	}

	raw := strings.Join(lines[1:endLine], "\n")
	fm = &Frontmatter{}
	if err := yaml.Unmarshal([]byte(raw), fm); err != nil {
		return nil, content, fmt.Errorf("failed to parse frontmatter as YAML: %w", err)
	}
	fm.Raw = raw
	fm.EndLine = endLine + 1
	return fm, strings.Join(lines[endLine+1:], "\n"), nil
}
