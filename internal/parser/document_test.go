package parser

import (
	"path/filepath"
	"testing"

	"github.com/semtext/semtext/internal/annotation"
)

func TestParseFrontmatter(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantNil     bool
		wantTitle   string
		wantBody    string
		wantEndLine int
	}{
		{
			name:        "basic frontmatter",
			content:     "---\ntitle: Berlin\n---\nBody [[Foo::Bar]]",
			wantTitle:   "Berlin",
			wantBody:    "Body [[Foo::Bar]]",
			wantEndLine: 3,
		},
		{
			name:     "no frontmatter",
			content:  "# Just a heading\n\nSome content",
			wantNil:  true,
			wantBody: "# Just a heading\n\nSome content",
		},
		{
			name:        "empty frontmatter",
			content:     "---\n---\ntext",
			wantBody:    "text",
			wantEndLine: 2,
		},
		{
			name:     "unclosed frontmatter is body",
			content:  "---\ntitle: x\ntext",
			wantNil:  true,
			wantBody: "---\ntitle: x\ntext",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fm, body, err := ParseFrontmatter(tt.content)
			if err != nil {
				t.Fatalf("ParseFrontmatter: %v", err)
			}
			if body != tt.wantBody {
				t.Fatalf("body=%q, want %q", body, tt.wantBody)
			}
			if tt.wantNil {
				if fm != nil {
					t.Fatalf("expected no frontmatter, got %+v", fm)
				}
				return
			}
			if fm == nil {
				t.Fatal("expected frontmatter")
			}
			if fm.Title != tt.wantTitle || fm.EndLine != tt.wantEndLine {
				t.Fatalf("title=%q endLine=%d", fm.Title, fm.EndLine)
			}
		})
	}
}

func TestParseFrontmatterInvalidYAML(t *testing.T) {
	if _, _, err := ParseFrontmatter("---\ntitle: [unclosed\n---\n"); err == nil {
		t.Fatal("expected a YAML error")
	}
}

func TestParseDocumentSubject(t *testing.T) {
	opts := Options{Namespaces: []string{"Help", "Project"}}
	root := filepath.FromSlash("/ws")

	tests := []struct {
		name    string
		path    string
		content string
		want    annotation.Subject
	}{
		{name: "main namespace", path: "Berlin.md", want: annotation.Subject{Title: "Berlin"}},
		{name: "underscores become spaces", path: "New_York.md", want: annotation.Subject{Title: "New York"}},
		{name: "namespace directory", path: "help/Editing.md", want: annotation.Subject{Namespace: "Help", Title: "Editing"}},
		{name: "unknown directory stays in title", path: "cities/Paris.md", want: annotation.Subject{Title: "cities/Paris"}},
		{name: "absolute path", path: filepath.Join(root, "Project", "Plan.md"), want: annotation.Subject{Namespace: "Project", Title: "Plan"}},
		{
			name:    "frontmatter title with namespace",
			path:    "x.md",
			content: "---\ntitle: Help:Formatting\n---\n",
			want:    annotation.Subject{Namespace: "Help", Title: "Formatting"},
		},
		{
			name:    "frontmatter namespace",
			path:    "Plan.md",
			content: "---\nnamespace: Project\n---\n",
			want:    annotation.Subject{Namespace: "Project", Title: "Plan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseDocument(tt.content, tt.path, root, opts)
			if err != nil {
				t.Fatalf("ParseDocument: %v", err)
			}
			if doc.Document.Subject != tt.want {
				t.Fatalf("subject=%+v, want %+v", doc.Document.Subject, tt.want)
			}
		})
	}
}

func TestParseDocumentMetadata(t *testing.T) {
	content := "---\nredirect: \"[[Paris]]\"\nannotations: false\n---\n[[Foo::Bar]]"
	doc, err := ParseDocument(content, "Old.md", "", Options{DefaultNamespace: "Main"})
	if err != nil {
		t.Fatal(err)
	}
	d := doc.Document
	if d.RedirectTarget != "Paris" {
		t.Fatalf("redirect=%q", d.RedirectTarget)
	}
	if !d.Meta.InitiallyDisabled {
		t.Fatal("annotations: false should start collection switched off")
	}
	if d.Text != "[[Foo::Bar]]" || doc.BodyLine != 5 {
		t.Fatalf("text=%q bodyLine=%d", d.Text, doc.BodyLine)
	}
	if d.Subject.Namespace != "Main" {
		t.Fatalf("namespace=%q", d.Subject.Namespace)
	}
}
