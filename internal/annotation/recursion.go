package annotation

import (
	"fmt"
	"log/slog"
)

// DefaultMaxRecursionDepth bounds nested expansion calls.
const DefaultMaxRecursionDepth = 2

// RecursionExceededKey is the message key reported when expansion nests too deeply.
const RecursionExceededKey = "smw-parser-recursion-level-exceeded"

// RecursionError reports that an expansion was refused because it would exceed the
// configured depth. It is recoverable: the refused expansion yields empty text.
type RecursionError struct {
	Key      string
	MaxDepth int
}

func (e *RecursionError) Error() string {
	return fmt.Sprintf("%s: expansion nested deeper than %d levels", e.Key, e.MaxDepth)
}

// ExpandFunc is a host expansion routine. It may call back into the Guard.
type ExpandFunc func(text string, meta Metadata) (string, error)

// Host supplies the two expansion routines the guard wraps.
type Host interface {
	// ExpandVariables substitutes variables and templates in text.
	ExpandVariables(text string, meta Metadata) (string, error)
	// ParseTag fully parses text that appears inside a tag or transclusion.
	ParseTag(text string, meta Metadata) (string, error)
}

// RecursionContext tracks the expansion depth of one top-level parse.
type RecursionContext struct {
	Depth           int
	MaxDepth        int
	AnnotationBlock bool
}

// Guard bounds re-entrant expansion. A Guard belongs to one top-level parse and
// must not be shared between goroutines.
type Guard struct {
	ctx    RecursionContext
	host   Host
	errs   []*RecursionError
	logger *slog.Logger
}

// NewGuard returns a guard around host. maxDepth <= 0 selects the default.
func NewGuard(host Host, maxDepth int, logger *slog.Logger) *Guard {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxRecursionDepth
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Guard{
		ctx:    RecursionContext{MaxDepth: maxDepth},
		host:   host,
		logger: logger,
	}
}

// Context returns a copy of the current recursion context.
func (g *Guard) Context() RecursionContext {
	return g.ctx
}

// BlockAnnotations makes the next expansion run with the annotation block set.
// The flag is consumed by that expansion.
func (g *Guard) BlockAnnotations() {
	g.ctx.AnnotationBlock = true
}

// Errors returns every recursion error recorded so far.
func (g *Guard) Errors() []*RecursionError {
	return g.errs
}

// ExpandVariables runs the host's variable expansion under the depth limit.
func (g *Guard) ExpandVariables(text string) (string, error) {
	return g.run(text, g.host.ExpandVariables)
}

// RecursiveTagParse runs the host's tag-level parse under the depth limit.
func (g *Guard) RecursiveTagParse(text string) (string, error) {
	return g.run(text, g.host.ParseTag)
}

func (g *Guard) run(text string, fn ExpandFunc) (string, error) {
	g.ctx.Depth++
	defer func() { g.ctx.Depth-- }()

	meta := Metadata{AnnotationBlock: g.ctx.AnnotationBlock}
	g.ctx.AnnotationBlock = false

	if g.ctx.Depth > g.ctx.MaxDepth {
		err := &RecursionError{Key: RecursionExceededKey, MaxDepth: g.ctx.MaxDepth}
		g.errs = append(g.errs, err)
		g.logger.Debug("expansion refused", "depth", g.ctx.Depth, "max_depth", g.ctx.MaxDepth)
		return "", err
	}
	return fn(text, meta)
}
