package annotation

import (
	"errors"
	"strings"
	"testing"
)

// chainHost expands "{{x}}" by recursing into the guard once per brace pair.
type chainHost struct {
	guard *Guard
	seen  []Metadata
}

func (h *chainHost) ExpandVariables(text string, meta Metadata) (string, error) {
	h.seen = append(h.seen, meta)
	inner, ok := strings.CutPrefix(text, "{{")
	if !ok {
		return text, nil
	}
	inner = strings.TrimSuffix(inner, "}}")
	out, err := h.guard.ExpandVariables(inner)
	var rerr *RecursionError
	if errors.As(err, &rerr) {
		return "(too deep)", nil
	}
	return "<" + out + ">", err
}

func (h *chainHost) ParseTag(text string, meta Metadata) (string, error) {
	h.seen = append(h.seen, meta)
	return strings.ToUpper(text), nil
}

func TestGuardRefusesDeepExpansion(t *testing.T) {
	host := &chainHost{}
	g := NewGuard(host, 2, nil)
	host.guard = g

	out, err := g.ExpandVariables("{{{{{{x}}}}}}")
	if err != nil {
		t.Fatalf("ExpandVariables: %v", err)
	}
	if out != "<(too deep)>" {
		t.Fatalf("out=%q", out)
	}
	if len(g.Errors()) != 1 || g.Errors()[0].Key != RecursionExceededKey {
		t.Fatalf("errors=%v", g.Errors())
	}
	if g.Context().Depth != 0 {
		t.Fatalf("depth=%d after expansion, want 0", g.Context().Depth)
	}
}

func TestGuardAllowsExpansionWithinLimit(t *testing.T) {
	host := &chainHost{}
	g := NewGuard(host, 0, nil)
	host.guard = g

	out, err := g.ExpandVariables("{{x}}")
	if err != nil {
		t.Fatal(err)
	}
	if out != "<x>" || len(g.Errors()) != 0 {
		t.Fatalf("out=%q errors=%v", out, g.Errors())
	}
	if g.Context().MaxDepth != DefaultMaxRecursionDepth {
		t.Fatalf("max depth=%d", g.Context().MaxDepth)
	}
}

func TestGuardAnnotationBlockIsOneShot(t *testing.T) {
	host := &chainHost{}
	g := NewGuard(host, 2, nil)
	host.guard = g

	g.BlockAnnotations()
	if _, err := g.RecursiveTagParse("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RecursiveTagParse("b"); err != nil {
		t.Fatal(err)
	}
	if len(host.seen) != 2 {
		t.Fatalf("host called %d times", len(host.seen))
	}
	if !host.seen[0].AnnotationBlock || host.seen[1].AnnotationBlock {
		t.Fatalf("annotation block flags=%v,%v", host.seen[0].AnnotationBlock, host.seen[1].AnnotationBlock)
	}
}

func TestRecursionErrorMessage(t *testing.T) {
	err := &RecursionError{Key: RecursionExceededKey, MaxDepth: 2}
	if !strings.Contains(err.Error(), "2 levels") {
		t.Fatalf("Error()=%q", err.Error())
	}
}
