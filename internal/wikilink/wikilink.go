// Package wikilink parses plain wiki links.
//
// Wikilink grammar:
//
//	[[target]]
//	[[target|display text]]
//	[[target#fragment|display text]]
//	[[:Namespace:target]]   (leading colon: link, never a category or annotation)
//
// Notes:
//   - Target and display text are trimmed of surrounding whitespace.
//   - A target containing "::" or ":=" is an annotation, not a link, and is skipped by
//     FindAll. Annotations are handled by the annotation package.
package wikilink

import (
	"regexp"
	"strings"
)

// Match represents a wikilink found in a string.
type Match struct {
	Target      string
	Fragment    string
	DisplayText *string
	Start       int
	End         int
	Literal     string
}

// Text returns the text a reader sees for the link.
func (m Match) Text() string {
	if m.DisplayText != nil {
		return *m.DisplayText
	}
	return m.Target
}

// re matches [[target]] or [[target|display]].
// The target cannot contain [ or ] so [[[ref]]] only matches the inner link.
var re = regexp.MustCompile(`\[\[([^\]\[|]+)(?:\|([^\]\[]*))?\]\]`)

// IsAnnotationTarget reports whether a link target is really an annotation.
func IsAnnotationTarget(target string) bool {
	t := strings.TrimPrefix(strings.TrimSpace(target), ":")
	return strings.Contains(t, "::") || strings.Contains(t, ":=")
}

// ParseExact parses a string that is exactly a wikilink literal, returning its target and optional display text.
func ParseExact(s string) (target string, display *string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "[[") || !strings.HasSuffix(s, "]]") {
		return "", nil, false
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "[["), "]]")
	if strings.ContainsAny(inner, "[]") {
		return "", nil, false
	}
	parts := strings.SplitN(inner, "|", 2)
	target = strings.TrimSpace(parts[0])
	if target == "" {
		return "", nil, false
	}
	if len(parts) == 2 {
		d := strings.TrimSpace(parts[1])
		display = &d
	}
	return target, display, true
}

// SplitFragment splits "Page#Section" into page and fragment.
func SplitFragment(target string) (page, fragment string) {
	if i := strings.Index(target, "#"); i >= 0 {
		return strings.TrimSpace(target[:i]), strings.TrimSpace(target[i+1:])
	}
	return target, ""
}

// FindAll finds the plain wikilinks in text, skipping annotations.
func FindAll(text string) []Match {
	if !strings.Contains(text, "[[") {
		return nil
	}

	var out []Match
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		start, end := m[0], m[1]

		target := strings.TrimSpace(text[m[2]:m[3]])
		if target == "" || IsAnnotationTarget(target) {
			continue
		}
		target = strings.TrimPrefix(target, ":")

		var display *string
		if m[4] >= 0 && m[5] >= 0 {
			d := strings.TrimSpace(text[m[4]:m[5]])
			display = &d
		}

		page, fragment := SplitFragment(target)
		out = append(out, Match{
			Target:      page,
			Fragment:    fragment,
			DisplayText: display,
			Start:       start,
			End:         end,
			Literal:     text[start:end],
		})
	}
	return out
}

// Targets returns the distinct link targets in text, in order of first appearance.
func Targets(text string) []string {
	seen := make(map[string]bool)
	var targets []string
	for _, m := range FindAll(text) {
		if m.Target == "" || seen[m.Target] {
			continue
		}
		seen[m.Target] = true
		targets = append(targets, m.Target)
	}
	return targets
}

// Format renders a link to target, with display text when it differs.
func Format(target, display string) string {
	if display == "" || display == target {
		return "[[" + target + "]]"
	}
	return "[[" + target + "|" + display + "]]"
}
