package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/atomicfile"
)

// WorkspaceFile is the name of the per-workspace settings file.
const WorkspaceFile = "semtext.yaml"

// MainNamespace names the main (unprefixed) namespace in workspace settings.
const MainNamespace = "Main"

// WorkspaceConfig represents workspace-level configuration from semtext.yaml.
type WorkspaceConfig struct {
	Parser ParserConfig `yaml:"parser"`

	// Namespaces lists the namespace names documents may live in. A leading
	// directory with one of these names selects the namespace.
	Namespaces []string `yaml:"namespaces,omitempty"`

	// DisabledNamespaces lists namespaces whose documents never produce
	// assertions. "Main" names the main namespace.
	DisabledNamespaces []string `yaml:"disabled_namespaces,omitempty"`

	// DefaultNamespace applies to documents outside any namespace directory.
	DefaultNamespace string `yaml:"default_namespace,omitempty"`

	// Properties declares property types by name (page, text, number, date,
	// datetime, boolean, url).
	Properties map[string]string `yaml:"properties,omitempty"`
}

// ParserConfig holds the annotation parser settings.
type ParserConfig struct {
	LinksInValues     *bool `yaml:"links_in_values,omitempty"`
	StrictMode        *bool `yaml:"strict_mode,omitempty"`
	ShowInlineErrors  *bool `yaml:"show_inline_errors,omitempty"`
	MaxRecursionDepth int   `yaml:"max_recursion_depth,omitempty"`
	MaxNesting        int   `yaml:"max_nesting,omitempty"`
}

// DefaultWorkspaceConfig returns the settings used when semtext.yaml is missing.
func DefaultWorkspaceConfig() *WorkspaceConfig {
	return &WorkspaceConfig{
		Namespaces: []string{"Help", "Project", "Property", "Template"},
	}
}

// AnnotationOptions returns the parser options with defaults filled in.
func (wc *WorkspaceConfig) AnnotationOptions() annotation.Options {
	opts := annotation.DefaultOptions()
	p := wc.Parser
	if p.LinksInValues != nil {
		opts.LinksInValues = *p.LinksInValues
	}
	if p.StrictMode != nil {
		opts.StrictMode = *p.StrictMode
	}
	if p.ShowInlineErrors != nil {
		opts.ShowInlineErrors = *p.ShowInlineErrors
	}
	if p.MaxRecursionDepth > 0 {
		opts.MaxRecursionDepth = p.MaxRecursionDepth
	}
	if p.MaxNesting > 0 {
		opts.MaxNesting = p.MaxNesting
	}
	return opts
}

// Gate returns the namespace gate: every known namespace and the main namespace,
// minus the disabled ones.
func (wc *WorkspaceConfig) Gate() annotation.NamespaceSet {
	disabled := make(map[string]bool, len(wc.DisabledNamespaces))
	for _, ns := range wc.DisabledNamespaces {
		disabled[strings.ToLower(ns)] = true
	}

	var enabled []string
	if !disabled[strings.ToLower(MainNamespace)] {
		enabled = append(enabled, "")
	}
	for _, ns := range wc.Namespaces {
		if !disabled[strings.ToLower(ns)] {
			enabled = append(enabled, ns)
		}
	}
	if wc.DefaultNamespace != "" && !disabled[strings.ToLower(wc.DefaultNamespace)] {
		enabled = append(enabled, wc.DefaultNamespace)
	}
	return annotation.NewNamespaceSet(enabled...)
}

// LoadWorkspaceConfig loads semtext.yaml from root. A missing file yields the
// defaults.
func LoadWorkspaceConfig(root string) (*WorkspaceConfig, error) {
	configPath := filepath.Join(root, WorkspaceFile)

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return DefaultWorkspaceConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read workspace config %s: %w", configPath, err)
	}

	var config WorkspaceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse workspace config %s: %w", configPath, err)
	}
	if p := config.Parser; p.MaxRecursionDepth < 0 || p.MaxNesting < 0 {
		return nil, fmt.Errorf("%s: parser limits must not be negative", configPath)
	}
	return &config, nil
}

// SaveWorkspaceConfig writes cfg to root/semtext.yaml.
func SaveWorkspaceConfig(root string, cfg *WorkspaceConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal workspace config: %w", err)
	}
	if err := atomicfile.WriteFile(filepath.Join(root, WorkspaceFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", WorkspaceFile, err)
	}
	return nil
}

// CreateDefaultWorkspaceConfig writes the default semtext.yaml unless one exists.
// It reports whether a file was created.
func CreateDefaultWorkspaceConfig(root string) (bool, error) {
	if _, err := os.Stat(filepath.Join(root, WorkspaceFile)); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return false, fmt.Errorf("failed to create workspace directory: %w", err)
	}
	if err := SaveWorkspaceConfig(root, DefaultWorkspaceConfig()); err != nil {
		return false, err
	}
	return true, nil
}
