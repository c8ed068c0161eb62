package annotation

import (
	"regexp"
	"strings"
)

// ControlProperty is the reserved pseudo-property of [[SMW::on]] and [[SMW::off]].
const ControlProperty = "SMW"

// propertySeparator splits a multi-property segment such as "A::B" or "A:=B".
var propertySeparator = regexp.MustCompile(`:[=:]`)

// RawAnnotation is one annotation split out of a matched span.
type RawAnnotation struct {
	Properties []string
	Value      string
	Caption    *string
}

// SplitKind classifies the result of splitting a matched span.
type SplitKind int

const (
	// SplitPassthrough means the span is not an annotation and stays as written.
	SplitPassthrough SplitKind = iota
	// SplitEmpty means the span is dropped without producing an annotation.
	SplitEmpty
	// SplitControl means the span is an on/off control token.
	SplitControl
	// SplitAnnotation means the span is a property annotation.
	SplitAnnotation
)

// Split is the outcome of Splitter.Split.
type Split struct {
	Kind       SplitKind
	Text       string // original text for SplitPassthrough
	On         bool   // for SplitControl
	Annotation RawAnnotation
}

// Splitter turns grammar matches into annotations.
type Splitter struct {
	strict bool
}

// NewSplitter returns a splitter. In strict mode only the first "::" separates the
// property from the value; in loose mode every further "::" names another property
// that shares the value.
func NewSplitter(strict bool) *Splitter {
	return &Splitter{strict: strict}
}

// Strict reports whether the splitter runs in strict mode.
func (s *Splitter) Strict() bool {
	return s.strict
}

// Split interprets one grammar match.
func (s *Splitter) Split(g Groups) Split {
	// [[Foo|Bar::Foobar]] is a piped link whose label happens to contain "::".
	if strings.Contains(g.Property, "|") || strings.Contains(g.Property, encodedPipe) {
		return Split{Kind: SplitPassthrough, Text: g.Full}
	}

	property, value := g.Property, g.Value

	// [[Foo::=Bar]] is matched as "Foo:" + ":=" + "Bar".
	if strings.HasSuffix(property, ":") && strings.Contains(g.Full, property+":=") {
		property = strings.TrimSuffix(property, ":")
		value = "=" + value
	}

	// The greedy property group swallows every "::" but the last; strict mode
	// re-splits on the first one, as in [[Foo:::0049 30 12345678]].
	if s.strict && g.HasValue && strings.Contains(property, ":") {
		parts := strings.SplitN(property+"::"+value, "::", 2)
		property, value = parts[0], parts[1]
	}

	caption := g.Caption
	if caption == nil {
		if v, c, ok := splitCaption(value); ok {
			value = v
			caption = &c
		}
	}

	value = strings.TrimSpace(Decode(value))
	if value == "" {
		return Split{Kind: SplitEmpty}
	}

	if strings.TrimSpace(Decode(property)) == ControlProperty {
		switch strings.ToLower(value) {
		case "on":
			return Split{Kind: SplitControl, On: true}
		case "off":
			return Split{Kind: SplitControl, On: false}
		}
		return Split{Kind: SplitEmpty}
	}

	var labels []string
	for _, p := range propertySeparator.Split(property, -1) {
		if p = strings.TrimSpace(Decode(p)); p != "" {
			labels = append(labels, p)
		}
	}
	if len(labels) == 0 {
		return Split{Kind: SplitPassthrough, Text: g.Full}
	}

	if caption != nil {
		c := Decode(*caption)
		caption = &c
	}

	return Split{
		Kind: SplitAnnotation,
		Annotation: RawAnnotation{
			Properties: labels,
			Value:      value,
			Caption:    caption,
		},
	}
}
