package config

import (
	"fmt"
	"log/slog"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/parser"
	"github.com/semtext/semtext/internal/schema"
)

// ParseOptions returns how file paths in this workspace map to subjects.
func (wc *WorkspaceConfig) ParseOptions() parser.Options {
	return parser.Options{
		Namespaces:       wc.Namespaces,
		DefaultNamespace: wc.DefaultNamespace,
	}
}

// NewExtractor builds an annotation extractor for the workspace: declared
// property types, the namespace gate and the parser options.
func (wc *WorkspaceConfig) NewExtractor(logger *slog.Logger) (*annotation.Extractor, error) {
	registry, err := schema.NewRegistry(wc.Properties)
	if err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	return annotation.NewExtractor(annotation.Config{
		Options: wc.AnnotationOptions(),
		Gate:    wc.Gate(),
		Factory: schema.NewFactory(registry),
		Logger:  logger,
	})
}
