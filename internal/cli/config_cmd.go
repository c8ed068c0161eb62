package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage global and workspace settings",
}

func globalConfigPath() string {
	if strings.TrimSpace(configPath) != "" {
		return configPath
	}
	return config.DefaultPath()
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config.toml and semtext.yaml if they do not exist",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		globalPath, err := config.CreateDefault(globalConfigPath())
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		created, err := config.CreateDefaultWorkspaceConfig(resolvedWorkspace)
		if err != nil {
			return handleError(ErrFileWriteError, err, "")
		}
		workspaceFile := filepath.Join(resolvedWorkspace, config.WorkspaceFile)

		if jsonOutput {
			outputSuccess(map[string]any{
				"config_path":       globalPath,
				"workspace_config":  workspaceFile,
				"workspace_created": created,
			}, nil, nil)
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("Global config: %s", ui.FilePath(globalPath)))
		if created {
			fmt.Fprintln(stdout, ui.Successf("Created %s", ui.FilePath(workspaceFile)))
		} else {
			fmt.Fprintln(stdout, ui.Infof("%s already exists", ui.FilePath(workspaceFile)))
		}
		return nil
	},
}

// effectiveParser is the parser configuration after defaults.
type effectiveParser struct {
	LinksInValues     bool `yaml:"links_in_values" json:"links_in_values"`
	StrictMode        bool `yaml:"strict_mode" json:"strict_mode"`
	ShowInlineErrors  bool `yaml:"show_inline_errors" json:"show_inline_errors"`
	MaxRecursionDepth int  `yaml:"max_recursion_depth" json:"max_recursion_depth"`
	MaxNesting        int  `yaml:"max_nesting" json:"max_nesting"`
}

type effectiveWorkspace struct {
	Path               string            `yaml:"path" json:"path"`
	Parser             effectiveParser   `yaml:"parser" json:"parser"`
	Namespaces         []string          `yaml:"namespaces,omitempty" json:"namespaces,omitempty"`
	DisabledNamespaces []string          `yaml:"disabled_namespaces,omitempty" json:"disabled_namespaces,omitempty"`
	DefaultNamespace   string            `yaml:"default_namespace,omitempty" json:"default_namespace,omitempty"`
	Properties         map[string]string `yaml:"properties,omitempty" json:"properties,omitempty"`
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective workspace settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := wsCfg.AnnotationOptions()
		eff := effectiveWorkspace{
			Path: resolvedWorkspace,
			Parser: effectiveParser{
				LinksInValues:     opts.LinksInValues,
				StrictMode:        opts.StrictMode,
				ShowInlineErrors:  opts.ShowInlineErrors,
				MaxRecursionDepth: opts.MaxRecursionDepth,
				MaxNesting:        opts.MaxNesting,
			},
			Namespaces:         wsCfg.Namespaces,
			DisabledNamespaces: wsCfg.DisabledNamespaces,
			DefaultNamespace:   wsCfg.DefaultNamespace,
			Properties:         wsCfg.Properties,
		}

		if jsonOutput {
			outputSuccess(map[string]any{
				"config_path": globalConfigPath(),
				"workspaces":  cfg.Workspaces,
				"default":     cfg.DefaultWorkspace,
				"workspace":   eff,
			}, nil, nil)
			return nil
		}
		data, err := yaml.Marshal(eff)
		if err != nil {
			return handleError(ErrInternal, err, "")
		}
		fmt.Fprintln(stdout, ui.Hint("# "+globalConfigPath()))
		fmt.Fprint(stdout, string(data))
		return nil
	},
}

var configAddCmd = &cobra.Command{
	Use:   "add <name> <dir>",
	Short: "Register a named workspace in config.toml",
	Long: `Adds a named workspace to the global config. The first workspace added
becomes the default.

Examples:
  semtext config add wiki ~/wiki`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := checkDir(args[1])
		if err != nil {
			return handleError(ErrWorkspaceNotFound, err, "")
		}
		if cfg.Workspaces == nil {
			cfg.Workspaces = make(map[string]string)
		}
		cfg.Workspaces[args[0]] = dir
		if cfg.DefaultWorkspace == "" {
			cfg.DefaultWorkspace = args[0]
		}
		path := globalConfigPath()
		if err := config.SaveTo(path, cfg); err != nil {
			return handleError(ErrFileWriteError, err, "")
		}

		if jsonOutput {
			outputSuccess(map[string]any{"name": args[0], "path": dir, "default": cfg.DefaultWorkspace == args[0]}, nil, nil)
			return nil
		}
		fmt.Fprintln(stdout, ui.Successf("Added workspace %s -> %s", ui.Accent.Render(args[0]), ui.FilePath(dir)))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd, configAddCmd)
	rootCmd.AddCommand(configCmd)
}
