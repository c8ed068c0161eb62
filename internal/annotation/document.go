package annotation

import "strings"

// RedirectProperty is the property recorded for a redirect document.
const RedirectProperty = "_REDI"

// Subject identifies the page a document describes.
type Subject struct {
	Title     string
	Namespace string
}

// String returns "Namespace:Title", or just the title in the main namespace.
func (s Subject) String() string {
	if s.Namespace == "" {
		return s.Title
	}
	return s.Namespace + ":" + s.Title
}

// Metadata travels alongside the text of a document, outside the text stream.
type Metadata struct {
	// AnnotationBlock suppresses assertion collection for this document while still
	// rewriting annotations to their display form.
	AnnotationBlock bool

	// InitiallyDisabled starts the parse as if the text began with [[SMW::off]].
	InitiallyDisabled bool
}

// Document is one unit of text handed to the extractor.
type Document struct {
	Subject Subject
	Text    string
	// RedirectTarget overrides redirect detection from the text when set.
	RedirectTarget string
	Meta           Metadata
}

// ParseSubject splits "Namespace:Title". A prefix is only treated as a namespace
// when it is listed in known.
func ParseSubject(s string, known []string) Subject {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ":"); i > 0 {
		prefix := strings.TrimSpace(s[:i])
		for _, ns := range known {
			if strings.EqualFold(ns, prefix) {
				return Subject{Namespace: ns, Title: strings.TrimSpace(s[i+1:])}
			}
		}
	}
	return Subject{Title: s}
}
