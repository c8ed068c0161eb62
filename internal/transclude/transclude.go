// Package transclude expands {{Page}} transclusions before annotation parsing.
//
// {{Page}} inserts the text of another page, so annotations written there are
// attributed to the including page. {{#noannot:Page}} inserts the rendered
// text of the page with annotation collection blocked. Nested expansion is
// bounded by an annotation.Guard.
package transclude

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"

	"github.com/semtext/semtext/internal/annotation"
)

// DefaultNamespace is tried first for a transclusion without a namespace prefix.
const DefaultNamespace = "Template"

// NoAnnotPrefix marks a transclusion whose annotations are not collected.
const NoAnnotPrefix = "#noannot:"

var (
	transclusionRe = regexp.MustCompile(`\{\{\s*([^{}|]+?)\s*\}\}`)
	variableRe     = regexp.MustCompile(`\{\{\s*(PAGENAME|NAMESPACE|FULLPAGENAME)\s*\}\}`)
)

// PageSource returns the text of a page.
type PageSource interface {
	PageText(subject annotation.Subject) (string, error)
}

// Engine expands transclusions and then runs the extractor. It holds no
// per-document state and satisfies the index's Processor interface.
type Engine struct {
	Extractor *annotation.Extractor
	Pages     PageSource
	// Namespaces lists the known namespace prefixes of page names.
	Namespaces []string
	Logger     *slog.Logger
}

// Parse expands doc.Text and parses the result. Recursion errors become
// inline error text and KeyRecursionLimit diagnostics.
func (e *Engine) Parse(doc annotation.Document, sink annotation.Sink) (*annotation.Result, error) {
	logger := e.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &host{engine: e, subject: doc.Subject, logger: logger}
	h.guard = annotation.NewGuard(h, e.Extractor.Options().MaxRecursionDepth, logger)

	expanded, err := h.expand(doc.Text)
	if err != nil {
		return nil, err
	}
	doc.Text = expanded
	res, err := e.Extractor.Parse(doc, sink)
	if err != nil {
		return nil, err
	}
	for _, rerr := range h.guard.Errors() {
		res.Diagnostics = append(res.Diagnostics, annotation.Diagnostic{
			Key:     annotation.KeyRecursionLimit,
			Message: rerr.Error(),
		})
	}
	return res, nil
}

// host implements annotation.Host for one top-level document.
type host struct {
	engine  *Engine
	subject annotation.Subject
	guard   *annotation.Guard
	logger  *slog.Logger
}

// ExpandVariables implements annotation.Host.
func (h *host) ExpandVariables(text string, _ annotation.Metadata) (string, error) {
	return h.expand(text)
}

// ParseTag implements annotation.Host. The text is expanded and then parsed,
// and the rewritten text is returned. Assertions are not kept.
func (h *host) ParseTag(text string, meta annotation.Metadata) (string, error) {
	expanded, err := h.expand(text)
	if err != nil {
		return "", err
	}
	res, err := h.engine.Extractor.Parse(annotation.Document{
		Subject: h.subject,
		Text:    expanded,
		Meta:    meta,
	}, nil)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}

// expand substitutes page variables and then every transclusion in text.
func (h *host) expand(text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}
	text = variableRe.ReplaceAllStringFunc(text, func(m string) string {
		switch strings.TrimSpace(m[2 : len(m)-2]) {
		case "PAGENAME":
			return h.subject.Title
		case "NAMESPACE":
			return h.subject.Namespace
		}
		return h.subject.String()
	})

	matches := transclusionRe.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return text, nil
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		out, err := h.transclude(text[m[2]:m[3]])
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), nil
}

// transclude expands one {{name}} through the guard.
func (h *host) transclude(name string) (string, error) {
	call := name
	noAnnot := false
	if rest, ok := cutPrefixFold(name, NoAnnotPrefix); ok {
		noAnnot = true
		name = strings.TrimSpace(rest)
	}

	subject, raw, err := h.lookup(name)
	if err != nil {
		h.logger.Debug("transclusion target missing", "page", name, "error", err)
		return missingLink(subject, call), nil
	}

	var out string
	if noAnnot {
		h.guard.BlockAnnotations()
		out, err = h.guard.RecursiveTagParse(raw)
	} else {
		out, err = h.guard.ExpandVariables(raw)
	}
	var rerr *annotation.RecursionError
	if errors.As(err, &rerr) {
		return errorText(fmt.Sprintf("transclusion of %s stopped: %v", subject, rerr)), nil
	}
	return out, err
}

// lookup finds the page a transclusion names. A name without a known namespace
// prefix is looked up in DefaultNamespace first and then in the main namespace;
// a leading ':' selects the main namespace directly.
func (h *host) lookup(name string) (annotation.Subject, string, error) {
	if rest, ok := strings.CutPrefix(name, ":"); ok {
		subject := annotation.Subject{Title: strings.TrimSpace(rest)}
		text, err := h.engine.Pages.PageText(subject)
		return subject, text, err
	}

	subject := annotation.ParseSubject(name, h.engine.Namespaces)
	if subject.Namespace != "" {
		text, err := h.engine.Pages.PageText(subject)
		return subject, text, err
	}
	templated := annotation.Subject{Namespace: DefaultNamespace, Title: subject.Title}
	if text, err := h.engine.Pages.PageText(templated); err == nil {
		return templated, text, nil
	}
	text, err := h.engine.Pages.PageText(subject)
	if err != nil {
		return templated, "", err
	}
	return subject, text, nil
}

// missingLink renders a transclusion of a page that does not exist as a link to
// it. A name that would read as an annotation or break the link syntax is left as
// the transclusion was written.
func missingLink(subject annotation.Subject, call string) string {
	target := subject.String()
	if strings.ContainsAny(target, "[]|") || strings.Contains(target, "::") || strings.Contains(target, ":=") {
		return "{{" + call + "}}"
	}
	return "[[" + target + "]]"
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix) {
		return s[len(prefix):], true
	}
	return s, false
}

func errorText(msg string) string {
	return `<strong class="error">` + html.EscapeString(msg) + `</strong>`
}
