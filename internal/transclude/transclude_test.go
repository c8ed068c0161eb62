package transclude

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/index"
	"github.com/semtext/semtext/internal/testutil"
	"github.com/semtext/semtext/internal/workspace"
)

type mapPages map[string]string

func (m mapPages) PageText(subject annotation.Subject) (string, error) {
	if text, ok := m[subject.String()]; ok {
		return text, nil
	}
	return "", fmt.Errorf("%w: %s", workspace.ErrPageNotFound, subject)
}

func newTestEngine(t *testing.T, pages mapPages) *Engine {
	t.Helper()
	e, err := annotation.NewExtractor(annotation.Config{
		Options: annotation.DefaultOptions(),
		Gate:    annotation.AllNamespaces{},
	})
	if err != nil {
		t.Fatal(err)
	}
	return &Engine{Extractor: e, Pages: pages, Namespaces: []string{"Help", "Template"}}
}

func parse(t *testing.T, e *Engine, subject annotation.Subject, text string) *annotation.Result {
	t.Helper()
	res, err := e.Parse(annotation.Document{Subject: subject, Text: text}, nil)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return res
}

var berlin = annotation.Subject{Title: "Berlin"}

func TestTransclusion(t *testing.T) {
	e := newTestEngine(t, mapPages{
		"Template:Infobox":  "[[Has infobox::yes]]",
		"Template:Greeting": "Hello {{PAGENAME}}",
		"Template:Wrapper":  "<{{Infobox}}>",
		"Help:Editing":      "[[Topic::editing]]",
		"Paris":             "capital",
		"Template:Paris":    "template",
	})

	tests := []struct {
		name     string
		in       string
		wantText string
		wantProp []string
	}{
		{"plain", "{{Infobox}} text", "yes text", []string{"Has infobox"}},
		{"no annotations", "{{#noannot:Infobox}} text", "yes text", nil},
		{"no annotations case insensitive", "{{#NOANNOT: Infobox }}", "yes", nil},
		{"nested", "{{Wrapper}}", "<yes>", []string{"Has infobox"}},
		{"variable", "{{Greeting}}", "Hello Berlin", nil},
		{"namespace prefix", "{{Help:Editing}}", "editing", []string{"Topic"}},
		{"template namespace first", "{{Paris}}", "template", nil},
		{"main namespace", "{{:Paris}}", "capital", nil},
		{"missing page", "{{Nope}}", "[[Template:Nope]]", nil},
		{"missing page named like an annotation", "{{Has x::y}}", "{{Has x::y}}", nil},
		{"missing page with legacy separator", "{{Has x:=y}}", "{{Has x:=y}}", nil},
		{"missing page with bracket", "{{#noannot:a]b}}", "{{#noannot:a]b}}", nil},
		{"no braces", "[[A::b]]", "b", []string{"A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parse(t, e, berlin, tt.in)
			if res.Text != tt.wantText {
				t.Fatalf("text=%q, want %q", res.Text, tt.wantText)
			}
			var props []string
			for _, a := range res.Assertions {
				if a.Subject != berlin {
					t.Fatalf("assertion attributed to %v", a.Subject)
				}
				props = append(props, a.Properties...)
			}
			if diff := cmp.Diff(tt.wantProp, props); diff != "" {
				t.Fatalf("properties (-want +got):\n%s", diff)
			}
			if len(res.Diagnostics) != 0 {
				t.Fatalf("diagnostics=%+v", res.Diagnostics)
			}
		})
	}
}

func TestPageVariables(t *testing.T) {
	e := newTestEngine(t, nil)
	res := parse(t, e, annotation.Subject{Namespace: "Help", Title: "Editing"}, "{{PAGENAME}}|{{ NAMESPACE }}|{{FULLPAGENAME}}")
	if res.Text != "Editing|Help|Help:Editing" {
		t.Fatalf("text=%q", res.Text)
	}
}

func TestSelfTransclusionIsBounded(t *testing.T) {
	e := newTestEngine(t, mapPages{"Template:Loop": "x[[Step::{{PAGENAME}}]]{{Loop}}"})

	res := parse(t, e, berlin, "{{Loop}}")
	if !strings.HasPrefix(res.Text, "xBerlinxBerlin<strong class=\"error\">") {
		t.Fatalf("text=%q", res.Text)
	}
	if len(res.Diagnostics) != 1 || res.Diagnostics[0].Key != annotation.KeyRecursionLimit {
		t.Fatalf("diagnostics=%+v", res.Diagnostics)
	}
	if len(res.Assertions) != annotation.DefaultMaxRecursionDepth {
		t.Fatalf("assertions=%d", len(res.Assertions))
	}

	// The engine keeps no state between documents.
	res = parse(t, e, berlin, "plain")
	if res.Text != "plain" || len(res.Diagnostics) != 0 {
		t.Fatalf("second parse text=%q diagnostics=%+v", res.Text, res.Diagnostics)
	}
}

func TestIndexesThroughEngine(t *testing.T) {
	ws := testutil.CityWorkspace(t).
		WithFile("Rome.md", "Rome {{Infobox}} {{#noannot:Help:Editing}}\n").
		Build()
	wc, err := config.LoadWorkspaceConfig(ws.Path)
	if err != nil {
		t.Fatal(err)
	}
	extractor, err := wc.NewExtractor(nil)
	if err != nil {
		t.Fatal(err)
	}
	db, err := index.OpenInMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	opts := wc.ParseOptions()
	ix := &index.Indexer{
		DB: db,
		Processor: &Engine{
			Extractor:  extractor,
			Pages:      workspace.Source{Root: ws.Path, Options: opts},
			Namespaces: wc.Namespaces,
		},
		Root:    ws.Path,
		Options: opts,
	}
	if _, err := ix.IndexAll(context.Background(), false); err != nil {
		t.Fatalf("IndexAll: %v", err)
	}

	rows, err := db.QueryBySubject("Rome")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0].Property != "Has infobox" {
		t.Fatalf("rows=%+v", rows)
	}
	results, err := db.Search("annotate", 10)
	if err != nil {
		t.Fatal(err)
	}
	var found []string
	for _, r := range results {
		found = append(found, r.Subject)
	}
	if diff := cmp.Diff([]string{"Help:Editing", "Rome"}, found, sortStrings); diff != "" {
		t.Fatalf("search (-want +got):\n%s", diff)
	}
}

var sortStrings = cmpopts.SortSlices(func(a, b string) bool { return a < b })
