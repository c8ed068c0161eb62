// Package annotation extracts in-text property annotations of the form
// [[Property::Value]] from wiki text.
//
// Annotation grammar:
//
//	[[Property::Value]]
//	[[Property::Value|Caption]]
//	[[Property:=Value]]               (legacy spelling)
//	[[Property1::Property2::Value]]   (loose mode only)
//	[[SMW::off]] / [[SMW::on]]        (document toggle)
//
// Both grammars are compiled with Go's RE2 engine, so matching is linear in the
// length of the input and cannot backtrack catastrophically on nested brackets.
package annotation

import (
	"regexp"
	"strings"
)

// Span is a matched annotation literal and its offsets in the scanned text.
type Span struct {
	Text  string
	Start int
	End   int
}

// Groups holds the submatches of one annotation match.
type Groups struct {
	Full     string
	Property string
	Value    string
	HasValue bool
	Caption  *string
}

// simpleRe: the value may not contain brackets.
var simpleRe = regexp.MustCompile(`\[\[(?:([^:][^\]]*):[=:])+([^\[\]]*)\]\]`)

// nestedRe: the value may contain [[links]] and [external links], followed by an
// optional |caption.
var nestedRe = regexp.MustCompile(`\[\[(?:([^:][^\]]*):[=:])+((?:[^|\[\]]|\[\[[^\]]*\]\]|\[[^\]]*\])*)(?:\|([^\]]*))?\]\]`)

var (
	simpleExactRe = regexp.MustCompile(`^` + simpleRe.String() + `$`)
	nestedExactRe = regexp.MustCompile(`^` + nestedRe.String() + `$`)
)

// PatternSet selects one of the two annotation grammars.
type PatternSet struct {
	linksInValues bool
	re            *regexp.Regexp
	exact         *regexp.Regexp
}

// NewPatternSet returns the nested-capable grammar when linksInValues is set and the
// simple grammar otherwise.
func NewPatternSet(linksInValues bool) *PatternSet {
	if linksInValues {
		return &PatternSet{linksInValues: true, re: nestedRe, exact: nestedExactRe}
	}
	return &PatternSet{re: simpleRe, exact: simpleExactRe}
}

// LinksInValues reports whether the nested-capable grammar is active.
func (p *PatternSet) LinksInValues() bool {
	return p.linksInValues
}

// String returns the source of the active grammar.
func (p *PatternSet) String() string {
	return p.re.String()
}

// Match finds the first well-formed annotation in text.
func (p *PatternSet) Match(text string) (Span, bool) {
	if !strings.Contains(text, "[[") {
		return Span{}, false
	}
	loc := p.re.FindStringIndex(text)
	if loc == nil {
		return Span{}, false
	}
	return Span{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]}, true
}

// MatchAll finds every non-overlapping annotation in text, left to right.
func (p *PatternSet) MatchAll(text string) []Span {
	if !strings.Contains(text, "[[") {
		return nil
	}
	var out []Span
	for _, loc := range p.re.FindAllStringIndex(text, -1) {
		out = append(out, Span{Text: text[loc[0]:loc[1]], Start: loc[0], End: loc[1]})
	}
	return out
}

// MatchExact matches span as a whole. A span that only partially conforms to the
// grammar is rejected.
func (p *PatternSet) MatchExact(span string) (Groups, bool) {
	m := p.exact.FindStringSubmatchIndex(span)
	if m == nil {
		return Groups{}, false
	}
	return groupsFromIndex(span, m), true
}

// ReplaceAll rewrites every annotation in text with the result of fn.
func (p *PatternSet) ReplaceAll(text string, fn func(Groups) string) string {
	if !strings.Contains(text, "[[") {
		return text
	}
	matches := p.re.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	pos := 0
	for _, m := range matches {
		b.WriteString(text[pos:m[0]])
		b.WriteString(fn(groupsFromIndex(text, m)))
		pos = m[1]
	}
	b.WriteString(text[pos:])
	return b.String()
}

func groupsFromIndex(s string, m []int) Groups {
	g := Groups{Full: s[m[0]:m[1]]}
	if m[2] >= 0 {
		g.Property = s[m[2]:m[3]]
	}
	if m[4] >= 0 {
		g.Value = s[m[4]:m[5]]
		g.HasValue = true
	}
	if len(m) >= 8 && m[6] >= 0 {
		c := s[m[6]:m[7]]
		g.Caption = &c
	}
	return g
}
