package annotation

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"
)

var (
	// ErrNoNamespaceGate is returned by NewExtractor when no gate is configured.
	ErrNoNamespaceGate = errors.New("annotation: namespace gate is required")
)

// Diagnostic keys.
const (
	KeyInvalidValue    = "smw-invalid-value"
	KeySinkRejected    = "smw-sink-rejected"
	KeyNestingTooDeep  = "smw-nesting-too-deep"
	KeyRecursionLimit  = RecursionExceededKey
	HintTooltips       = "ext.smw.tooltips"
	LimitReportTimeKey = "smw-limitreport-intext-parsertime"
)

// Options configures annotation parsing.
type Options struct {
	LinksInValues     bool
	StrictMode        bool
	ShowInlineErrors  bool
	MaxRecursionDepth int
	MaxNesting        int
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		LinksInValues:     true,
		StrictMode:        true,
		ShowInlineErrors:  true,
		MaxRecursionDepth: DefaultMaxRecursionDepth,
		MaxNesting:        DefaultMaxNesting,
	}
}

// Config wires an Extractor to its collaborators. Only Gate is required.
type Config struct {
	Options      Options
	Gate         NamespaceGate
	Factory      ValueFactory
	Redirects    RedirectLookup
	ControlWords ControlWordStripper
	Logger       *slog.Logger
}

// Extractor parses in-text annotations. It holds no per-document state and can be
// shared between goroutines.
type Extractor struct {
	opts         Options
	patterns     *PatternSet
	splitter     *Splitter
	resolver     *Resolver
	gate         NamespaceGate
	factory      ValueFactory
	redirects    RedirectLookup
	controlWords ControlWordStripper
	logger       *slog.Logger
}

// NewExtractor validates cfg and returns an Extractor.
func NewExtractor(cfg Config) (*Extractor, error) {
	if cfg.Gate == nil {
		return nil, ErrNoNamespaceGate
	}
	opts := cfg.Options
	if opts.MaxRecursionDepth <= 0 {
		opts.MaxRecursionDepth = DefaultMaxRecursionDepth
	}
	if opts.MaxNesting <= 0 {
		opts.MaxNesting = DefaultMaxNesting
	}

	e := &Extractor{
		opts:         opts,
		patterns:     NewPatternSet(opts.LinksInValues),
		splitter:     NewSplitter(opts.StrictMode),
		resolver:     NewResolver(opts.MaxNesting),
		gate:         cfg.Gate,
		factory:      cfg.Factory,
		redirects:    cfg.Redirects,
		controlWords: cfg.ControlWords,
		logger:       cfg.Logger,
	}
	if e.factory == nil {
		e.factory = PlainFactory{}
	}
	if e.redirects == nil {
		e.redirects = WikiRedirects{}
	}
	if e.controlWords == nil {
		e.controlWords = MagicWords{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	return e, nil
}

// Options returns the options the extractor was built with.
func (e *Extractor) Options() Options {
	return e.opts
}

// Diagnostic is a recoverable problem found while parsing.
type Diagnostic struct {
	Key      string `json:"key"`
	Message  string `json:"message"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// Metrics summarise one Parse call for the host's limit report.
type Metrics struct {
	ParseTime    time.Duration `json:"-"`
	Annotations  int           `json:"annotations"`
	Suppressed   int           `json:"suppressed"`
	Spans        int           `json:"spans"`
	Compound     int           `json:"compound"`
	DepthReached int           `json:"depth_reached"`
}

// LimitReport renders the metrics as limit-report entries.
func (m Metrics) LimitReport() map[string]string {
	return map[string]string{
		LimitReportTimeKey:              strconv.FormatFloat(m.ParseTime.Seconds(), 'f', 3, 64),
		"smw-limitreport-annotations":   strconv.Itoa(m.Annotations),
		"smw-limitreport-suppressed":    strconv.Itoa(m.Suppressed),
		"smw-limitreport-compoundspans": strconv.Itoa(m.Compound),
	}
}

// Result is the outcome of one Parse call.
type Result struct {
	Text         string
	Assertions   []Assertion
	ControlWords []string
	Redirect     string
	GateOpen     bool
	Diagnostics  []Diagnostic
	Hints        []string
	Metrics      Metrics
}

// HasControlWord reports whether word was stripped from the document.
func (r *Result) HasControlWord(word string) bool {
	for _, w := range r.ControlWords {
		if w == word {
			return true
		}
	}
	return false
}

// parseRun is the state of one Parse call.
type parseRun struct {
	doc            Document
	state          *State
	gateOpen       bool
	errorsRendered bool
	diagnostics    []Diagnostic
}

// Parse rewrites doc.Text so that every annotation shows its display form and hands
// the accepted assertions to sink, in document order. sink may be nil; the accepted
// assertions are always returned in the Result.
//
// Parse only fails when the sink cannot be written to; malformed annotations degrade
// to their display text.
func (e *Extractor) Parse(doc Document, sink Sink) (*Result, error) {
	started := time.Now()
	run := &parseRun{
		doc:   doc,
		state: newState(e.opts, doc.Meta),
	}

	text, words := e.controlWords.Strip(doc.Text, []string{NoFactbox, ShowFactbox})

	run.gateOpen = e.gate.Enabled(doc.Subject.Namespace)
	collect := run.gateOpen && !doc.Meta.AnnotationBlock
	if !collect {
		e.logger.Debug("annotations not collected",
			"subject", doc.Subject.String(),
			"gate_open", run.gateOpen,
			"annotation_block", doc.Meta.AnnotationBlock)
	}

	res := &Result{ControlWords: words, GateOpen: run.gateOpen}

	var events []Event
	if target := e.redirectTarget(doc, text); target != "" {
		res.Redirect = target
		if run.gateOpen {
			events = append(events, Event{
				Kind: EventAssertion,
				Annotation: RawAnnotation{
					Properties: []string{RedirectProperty},
					Value:      target,
				},
				Values: []Hydrated{{Property: RedirectProperty, Display: target, Typed: target, Valid: true}},
			})
		}
	}

	var stats Stats
	if e.opts.LinksInValues {
		var rewritten []Event
		text, rewritten, stats = e.resolver.Resolve(text, e.visitor(run))
		text = Decode(text)
		events = append(events, rewritten...)
	} else {
		text = e.patterns.ReplaceAll(text, func(g Groups) string {
			out, ev := e.rewrite(run, g)
			events = append(events, ev...)
			stats.Spans++
			return out
		})
	}
	if stats.TooDeep > 0 {
		run.diagnostics = append(run.diagnostics, Diagnostic{
			Key:     KeyNestingTooDeep,
			Message: fmt.Sprintf("%d annotation span(s) nested deeper than %d were left as text", stats.TooDeep, e.opts.MaxNesting),
		})
	}

	for _, ev := range events {
		if !run.state.Apply(ev) {
			if ev.Kind == EventAssertion {
				res.Metrics.Suppressed++
				e.logger.Debug("annotation suppressed", "subject", doc.Subject.String(), "properties", ev.Annotation.Properties)
			}
			continue
		}
		if !collect {
			res.Metrics.Suppressed++
			continue
		}
		a := Assertion{
			Subject:    doc.Subject,
			Properties: ev.Annotation.Properties,
			Value:      ev.Annotation.Value,
			Caption:    ev.Annotation.Caption,
			Values:     ev.Values,
			Ordinal:    len(res.Assertions),
		}
		if sink != nil {
			if err := sink.Add(a); err != nil {
				if errors.Is(err, ErrRejected) {
					run.diagnostics = append(run.diagnostics, Diagnostic{
						Key:      KeySinkRejected,
						Message:  err.Error(),
						Property: a.Properties[0],
						Value:    a.Value,
					})
					continue
				}
				return nil, fmt.Errorf("add assertion for %s: %w", doc.Subject, err)
			}
		}
		res.Assertions = append(res.Assertions, a)
	}

	res.Text = text
	res.Diagnostics = run.diagnostics
	if run.errorsRendered {
		res.Hints = append(res.Hints, HintTooltips)
	}
	res.Metrics.Annotations = len(res.Assertions)
	res.Metrics.Spans = stats.Spans
	res.Metrics.Compound = stats.CompoundSpans
	res.Metrics.DepthReached = stats.DepthReached
	res.Metrics.ParseTime = time.Since(started)
	return res, nil
}

// ErrRejected is wrapped by sinks that refuse an assertion as invalid. Parse records
// the refusal as a diagnostic instead of failing.
var ErrRejected = errors.New("assertion rejected")

func (e *Extractor) redirectTarget(doc Document, text string) string {
	if doc.RedirectTarget != "" {
		return doc.RedirectTarget
	}
	if target, ok := e.redirects.RedirectTarget(text); ok {
		return target
	}
	return ""
}

func (e *Extractor) visitor(run *parseRun) VisitFunc {
	return func(span string) (string, []Event) {
		g, ok := e.patterns.MatchExact(span)
		if !ok {
			return span, nil
		}
		return e.rewrite(run, g)
	}
}

// rewrite computes the display text of one match and the event it produces.
func (e *Extractor) rewrite(run *parseRun, g Groups) (string, []Event) {
	sp := e.splitter.Split(g)
	switch sp.Kind {
	case SplitPassthrough:
		return sp.Text, nil
	case SplitEmpty:
		return "", nil
	case SplitControl:
		return "", []Event{{Kind: EventToggle, On: sp.On}}
	}

	ann := sp.Annotation
	values := make([]Hydrated, len(ann.Properties))
	var problems []string
	for i, p := range ann.Properties {
		values[i] = e.factory.Hydrate(run.doc.Subject, p, ann.Value, ann.Caption)
		if !values[i].Valid {
			problems = append(problems, values[i].Message)
			run.diagnostics = append(run.diagnostics, Diagnostic{
				Key:      KeyInvalidValue,
				Message:  values[i].Message,
				Property: p,
				Value:    ann.Value,
			})
		}
	}

	display := values[len(values)-1].Display
	if len(problems) > 0 && e.opts.ShowInlineErrors && run.gateOpen {
		display += errorMarker(problems)
		run.errorsRendered = true
	}
	return display, []Event{{Kind: EventAssertion, Annotation: ann, Values: values}}
}
