// Package cli implements the command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/transclude"
	"github.com/semtext/semtext/internal/ui"
	"github.com/semtext/semtext/internal/workspace"
)

var (
	// Global flags
	workspaceFlag string // directory, or a name from config
	configPath    string
	verbose       bool

	// Resolved values
	resolvedWorkspace string
	cfg               *config.Config
	wsCfg             *config.WorkspaceConfig
	logger            = slog.New(slog.DiscardHandler)
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "semtext",
	Short: "semtext - semantic annotations in plain text",
	Long: `semtext reads [[Property::Value]] annotations out of wiki and markdown pages,
shows the text as a reader sees it, and keeps a queryable index of the facts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger(cmd.ErrOrStderr(), verbose)

		var err error
		cfg, err = loadGlobalConfig()
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix config.toml or pass --config")
		}
		ui.ConfigureTheme(cfg.UI.Accent, cfg.UI.CodeTheme)

		switch cmd.Name() {
		case "version", "help", "completion":
			return nil
		}

		resolvedWorkspace, err = resolveWorkspace()
		if err != nil {
			return handleError(ErrWorkspaceNotFound, err, "Pass --workspace <dir|name> or set default_workspace in config.toml")
		}
		wsCfg, err = config.LoadWorkspaceConfig(resolvedWorkspace)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "Fix "+config.WorkspaceFile+" and try again")
		}
		logger.Debug("workspace resolved", "path", resolvedWorkspace)
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !errors.Is(err, errReported) {
		fmt.Fprintln(os.Stderr, ui.Error(err.Error()))
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "w", "", "Workspace directory, or a workspace name from config")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format (for scripts)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
}

func loadGlobalConfig() (*config.Config, error) {
	if strings.TrimSpace(configPath) != "" {
		return config.LoadFrom(configPath)
	}
	return config.Load()
}

// resolveWorkspace picks the workspace: --workspace as a directory, then as a
// configured name, then the default workspace, then the current directory.
func resolveWorkspace() (string, error) {
	if workspaceFlag != "" {
		if info, err := os.Stat(workspaceFlag); err == nil && info.IsDir() {
			return filepath.Abs(workspaceFlag)
		}
		path, err := cfg.GetWorkspacePath(workspaceFlag)
		if err != nil {
			return "", err
		}
		return checkDir(path)
	}
	if cfg.DefaultWorkspace != "" {
		path, err := cfg.GetWorkspacePath("")
		if err != nil {
			return "", err
		}
		return checkDir(path)
	}
	return os.Getwd()
}

func checkDir(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("workspace not found: %s", path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace is not a directory: %s", path)
	}
	return filepath.Abs(path)
}

// newEngine builds the document processor for the resolved workspace.
func newEngine(wc *config.WorkspaceConfig) (*transclude.Engine, error) {
	extractor, err := wc.NewExtractor(logger)
	if err != nil {
		return nil, err
	}
	return &transclude.Engine{
		Extractor:  extractor,
		Pages:      workspace.Source{Root: resolvedWorkspace, Options: wc.ParseOptions()},
		Namespaces: wc.Namespaces,
		Logger:     logger,
	}, nil
}
