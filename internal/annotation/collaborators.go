package annotation

import (
	"html"
	"regexp"
	"strings"

	"github.com/semtext/semtext/internal/wikilink"
)

// Hydrated is a raw annotation value interpreted for one property.
type Hydrated struct {
	Property string
	Display  string
	Typed    any
	Valid    bool
	Message  string
}

// ValueFactory interprets an annotation value for a property.
type ValueFactory interface {
	Hydrate(subject Subject, property, value string, caption *string) Hydrated
}

// Sink receives assertions that survived the namespace gate and the on/off toggle.
type Sink interface {
	Add(a Assertion) error
}

// NamespaceGate decides whether a namespace allows annotations at all.
type NamespaceGate interface {
	Enabled(namespace string) bool
}

// RedirectLookup reports the redirect target of a document text.
type RedirectLookup interface {
	RedirectTarget(text string) (string, bool)
}

// ControlWordStripper removes whole-document control words from text and reports
// which of them were present.
type ControlWordStripper interface {
	Strip(text string, words []string) (string, []string)
}

// Assertion is an annotation attached to the subject of the document it came from.
type Assertion struct {
	Subject    Subject
	Properties []string
	Value      string
	Caption    *string
	Values     []Hydrated
	Ordinal    int
}

// PlainFactory displays the caption, or the value when there is no caption. It
// rejects property labels that cannot name a page.
type PlainFactory struct{}

// illegalLabelChars are characters that can never appear in a property name.
const illegalLabelChars = "#<>[]{}|"

// Hydrate implements ValueFactory.
func (PlainFactory) Hydrate(_ Subject, property, value string, caption *string) Hydrated {
	h := Hydrated{Property: property, Display: value, Typed: value, Valid: true}
	if caption != nil {
		h.Display = *caption
	}
	if strings.ContainsAny(property, illegalLabelChars) {
		h.Valid = false
		h.Message = "property name " + quoteForMessage(property) + " contains an illegal character"
	}
	return h
}

// NamespaceSet is a NamespaceGate over a fixed set of namespaces.
type NamespaceSet map[string]bool

// NewNamespaceSet returns a gate open for the given namespaces.
func NewNamespaceSet(namespaces ...string) NamespaceSet {
	set := make(NamespaceSet, len(namespaces))
	for _, ns := range namespaces {
		set[ns] = true
	}
	return set
}

// Enabled implements NamespaceGate.
func (s NamespaceSet) Enabled(namespace string) bool {
	return s[namespace]
}

// AllNamespaces is a NamespaceGate that is always open.
type AllNamespaces struct{}

// Enabled implements NamespaceGate.
func (AllNamespaces) Enabled(string) bool { return true }

var redirectRe = regexp.MustCompile(`(?i)^\s*#REDIRECT\s*:?\s*(\[\[[^\]]+\]\])`)

// WikiRedirects detects "#REDIRECT [[Target]]" at the top of a document.
type WikiRedirects struct{}

// RedirectTarget implements RedirectLookup.
func (WikiRedirects) RedirectTarget(text string) (string, bool) {
	m := redirectRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	target, _, ok := wikilink.ParseExact(m[1])
	return target, ok
}

// Control words recognised by MagicWords.
const (
	NoFactbox   = "__NOFACTBOX__"
	ShowFactbox = "__SHOWFACTBOX__"
)

// MagicWords removes every occurrence of each word.
type MagicWords struct{}

// Strip implements ControlWordStripper.
func (MagicWords) Strip(text string, words []string) (string, []string) {
	var found []string
	for _, w := range words {
		if w == "" || !strings.Contains(text, w) {
			continue
		}
		text = strings.ReplaceAll(text, w, "")
		found = append(found, w)
	}
	return text, found
}

// quoteForMessage quotes s for an inline message without reintroducing brackets
// into the rewritten text.
func quoteForMessage(s string) string {
	s = strings.NewReplacer("[", "&#91;", "]", "&#93;").Replace(s)
	return `"` + s + `"`
}

// errorMarker renders invalid-value messages inline.
func errorMarker(messages []string) string {
	title := html.EscapeString(strings.Join(messages, "; "))
	title = strings.NewReplacer("[", "&#91;", "]", "&#93;").Replace(title)
	return `<span class="smw-error" title="` + title + `">⚠</span>`
}
