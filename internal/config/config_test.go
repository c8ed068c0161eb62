package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/semtext/semtext/internal/annotation"
)

func TestLoadFromAndSaveTo(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := &Config{
		DefaultWorkspace: "wiki",
		Workspaces:       map[string]string{"wiki": "/tmp/wiki", "work": "/tmp/work"},
		UI:               UIConfig{Accent: " 39 "},
	}
	if err := SaveTo(path, cfg); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.UI.Accent != "39" || loaded.UI.CodeTheme != "" {
		t.Fatalf("ui=%+v", loaded.UI)
	}
	got, err := loaded.GetWorkspacePath("")
	if err != nil || got != "/tmp/wiki" {
		t.Fatalf("default workspace=%q err=%v", got, err)
	}
	if diff := cmp.Diff([]string{"wiki", "work"}, loaded.WorkspaceNames()); diff != "" {
		t.Fatalf("names (-want +got):\n%s", diff)
	}
	if _, err := loaded.GetWorkspacePath("missing"); err == nil {
		t.Fatal("expected error for unknown workspace")
	}
}

func TestGetWorkspacePathWithoutDefault(t *testing.T) {
	if _, err := (&Config{}).GetWorkspacePath(""); err == nil {
		t.Fatal("expected error without a default workspace")
	}
}

func TestCreateDefaultDoesNotOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	got, err := CreateDefault(path)
	if err != nil || got != path {
		t.Fatalf("CreateDefault=%q err=%v", got, err)
	}
	if _, err := LoadFrom(path); err != nil {
		t.Fatalf("default config must parse: %v", err)
	}
	if err := os.WriteFile(path, []byte("default_workspace = \"mine\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateDefault(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil || cfg.DefaultWorkspace != "mine" {
		t.Fatalf("existing config was replaced: %+v err=%v", cfg, err)
	}
}

func TestLoadWorkspaceConfigDefaults(t *testing.T) {
	cfg, err := LoadWorkspaceConfig(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.AnnotationOptions()
	if !opts.LinksInValues || !opts.StrictMode || !opts.ShowInlineErrors {
		t.Fatalf("opts=%+v", opts)
	}
	if opts.MaxRecursionDepth != 2 || opts.MaxNesting != 4 {
		t.Fatalf("limits=%d,%d", opts.MaxRecursionDepth, opts.MaxNesting)
	}
	gate := cfg.Gate()
	if !gate.Enabled("") || !gate.Enabled("Help") || gate.Enabled("Elsewhere") {
		t.Fatalf("gate=%v", gate)
	}
}

func TestLoadWorkspaceConfigOverrides(t *testing.T) {
	root := t.TempDir()
	yaml := `parser:
  links_in_values: false
  strict_mode: false
  max_nesting: 6
namespaces: [Help, Archive]
disabled_namespaces: [Archive, main]
properties:
  Has population: number
`
	if err := os.WriteFile(filepath.Join(root, WorkspaceFile), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadWorkspaceConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.AnnotationOptions()
	if opts.LinksInValues || opts.StrictMode || !opts.ShowInlineErrors || opts.MaxNesting != 6 {
		t.Fatalf("opts=%+v", opts)
	}
	gate := cfg.Gate()
	if gate.Enabled("") || gate.Enabled("Archive") || !gate.Enabled("Help") {
		t.Fatalf("gate=%v", gate)
	}
	if cfg.Properties["Has population"] != "number" {
		t.Fatalf("properties=%v", cfg.Properties)
	}
}

func TestLoadWorkspaceConfigRejectsNegativeLimits(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, WorkspaceFile), []byte("parser:\n  max_nesting: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadWorkspaceConfig(root); err == nil {
		t.Fatal("expected an error")
	}
}

func TestCreateDefaultWorkspaceConfig(t *testing.T) {
	root := t.TempDir()
	created, err := CreateDefaultWorkspaceConfig(root)
	if err != nil || !created {
		t.Fatalf("created=%v err=%v", created, err)
	}
	created, err = CreateDefaultWorkspaceConfig(root)
	if err != nil || created {
		t.Fatalf("second call created=%v err=%v", created, err)
	}
	cfg, err := LoadWorkspaceConfig(root)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(DefaultWorkspaceConfig().Namespaces, cfg.Namespaces); diff != "" {
		t.Fatalf("namespaces (-want +got):\n%s", diff)
	}
}

func TestWorkspaceNewExtractor(t *testing.T) {
	wc := &WorkspaceConfig{
		Namespaces:         []string{"Help"},
		DisabledNamespaces: []string{"Help"},
		Properties:         map[string]string{"Has population": "number"},
	}
	e, err := wc.NewExtractor(nil)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}

	res, err := e.Parse(annotation.Document{
		Subject: annotation.Subject{Title: "Berlin"},
		Text:    "[[Has population::3,645,000]] and [[Has population::many]]",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Assertions) != 2 || !res.Assertions[0].Values[0].Valid || res.Assertions[1].Values[0].Valid {
		t.Fatalf("assertions=%+v", res.Assertions)
	}

	res, err = e.Parse(annotation.Document{
		Subject: annotation.Subject{Namespace: "Help", Title: "Editing"},
		Text:    "[[Has population::1]]",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.GateOpen || len(res.Assertions) != 0 {
		t.Fatalf("disabled namespace produced assertions: %+v", res)
	}

	wc.Properties = map[string]string{"X": "colour"}
	if _, err := wc.NewExtractor(nil); err == nil {
		t.Fatal("expected error for unknown property type")
	}
}
