package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/parser"
	"github.com/semtext/semtext/internal/render"
	"github.com/semtext/semtext/internal/schema"
	"github.com/semtext/semtext/internal/ui"
	"github.com/semtext/semtext/internal/workspace"
)

var (
	parseHTML    bool
	parsePretty  bool
	parseBaseURL string
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Show a page as a reader sees it",
	Long: `Parses the annotations of one page and prints the rewritten text.

Each [[Property::Value]] is replaced by its display text, transclusions are
expanded, and problems are reported on stderr.

Examples:
  semtext parse Berlin.md
  semtext parse Berlin.md --html
  semtext parse Berlin.md --json --loose`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, res, err := parseFileArg(cmd.Flags(), args[0])
		if err != nil {
			return err
		}
		renderer := render.New(render.Options{BaseURL: parseBaseURL})

		var html string
		if parseHTML {
			html, err = renderer.HTML(res.Text)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
		}

		if jsonOutput {
			out := newParseJSON(doc, res)
			out.HTML = html
			out.Headings = renderer.Headings(res.Text)
			outputSuccess(out, diagnosticWarnings(doc.FilePath, res.Diagnostics), &Meta{Count: len(res.Assertions)})
			return nil
		}

		switch {
		case parseHTML:
			fmt.Fprint(stdout, html)
		case parsePretty:
			width := ui.NewDisplayContext(stdout).AvailableWidth(ui.MarkdownRenderMargin)
			rendered, err := ui.RenderMarkdown(renderer.Markdown(res.Text), width)
			if err != nil {
				return handleError(ErrInternal, err, "")
			}
			fmt.Fprint(stdout, rendered)
		default:
			fmt.Fprint(stdout, res.Text)
		}
		for _, d := range res.Diagnostics {
			fmt.Fprintln(os.Stderr, ui.Diagnostic(d))
		}
		return nil
	},
}

// parseFileArg resolves a file argument and parses it with the workspace
// settings and any parser flags of flags.
func parseFileArg(flags *pflag.FlagSet, arg string) (*parser.ParsedDocument, *annotation.Result, error) {
	path, err := resolveFileArg(arg)
	if err != nil {
		if errors.Is(err, workspace.ErrOutsideRoot) {
			return nil, nil, handleError(ErrFileOutsideWorkspace, err, "Pass a file inside the workspace")
		}
		return nil, nil, handleError(ErrFileNotFound, err, "")
	}

	wc := *wsCfg
	applyParserFlags(flags, &wc)
	engine, err := newEngine(&wc)
	if err != nil {
		return nil, nil, handleError(ErrConfigInvalid, err, "Fix "+config.WorkspaceFile+" and try again")
	}

	doc, err := parser.ParseFile(path, resolvedWorkspace, wc.ParseOptions())
	if err != nil {
		return nil, nil, handleError(ErrFileReadError, err, "")
	}
	res, err := engine.Parse(doc.Document, nil)
	if err != nil {
		return nil, nil, handleError(ErrInternal, err, "")
	}
	logger.Debug("parsed", "file", doc.FilePath, "annotations", res.Metrics.Annotations, "duration", res.Metrics.ParseTime)
	return doc, res, nil
}

// resolveFileArg finds arg relative to the current directory, then relative
// to the workspace.
func resolveFileArg(arg string) (string, error) {
	candidates := []string{arg}
	if !filepath.IsAbs(arg) {
		candidates = append(candidates, filepath.Join(resolvedWorkspace, arg))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err != nil {
			continue
		}
		abs, err := filepath.Abs(c)
		if err != nil {
			return "", err
		}
		if err := workspace.ValidateWithin(resolvedWorkspace, abs); err != nil {
			return "", err
		}
		return abs, nil
	}
	return "", fmt.Errorf("file not found: %s", arg)
}

// addParserFlags registers the flags that override parser settings.
func addParserFlags(flags *pflag.FlagSet) {
	flags.Bool("loose", false, "Read every '::'-separated label before the value as a property")
	flags.Bool("no-links-in-values", false, "Use the simple grammar: no [[links]] inside values")
	flags.Bool("show-errors", true, "Show inline markers for invalid values")
}

// applyParserFlags copies explicitly set parser flags onto wc.
func applyParserFlags(flags *pflag.FlagSet, wc *config.WorkspaceConfig) {
	p := wc.Parser
	if flags.Changed("loose") {
		loose, _ := flags.GetBool("loose")
		strict := !loose
		p.StrictMode = &strict
	}
	if flags.Changed("no-links-in-values") {
		off, _ := flags.GetBool("no-links-in-values")
		links := !off
		p.LinksInValues = &links
	}
	if flags.Changed("show-errors") {
		show, _ := flags.GetBool("show-errors")
		p.ShowInlineErrors = &show
	}
	wc.Parser = p
}

type valueJSON struct {
	Property  string `json:"property"`
	Display   string `json:"display"`
	Type      string `json:"type,omitempty"`
	Canonical string `json:"canonical,omitempty"`
	Valid     bool   `json:"valid"`
	Message   string `json:"message,omitempty"`
}

type assertionJSON struct {
	Properties []string    `json:"properties"`
	Value      string      `json:"value"`
	Caption    *string     `json:"caption,omitempty"`
	Values     []valueJSON `json:"values"`
}

type parseJSON struct {
	File         string                  `json:"file"`
	Subject      string                  `json:"subject"`
	Text         string                  `json:"text"`
	HTML         string                  `json:"html,omitempty"`
	Redirect     string                  `json:"redirect,omitempty"`
	ControlWords []string                `json:"control_words,omitempty"`
	GateOpen     bool                    `json:"annotations_enabled"`
	Assertions   []assertionJSON         `json:"assertions"`
	Diagnostics  []annotation.Diagnostic `json:"diagnostics,omitempty"`
	Hints        []string                `json:"hints,omitempty"`
	Metrics      annotation.Metrics      `json:"metrics"`
	LimitReport  map[string]string       `json:"limit_report"`
	Headings     []render.Heading        `json:"headings,omitempty"`
}

func newParseJSON(doc *parser.ParsedDocument, res *annotation.Result) parseJSON {
	out := parseJSON{
		File:         doc.FilePath,
		Subject:      doc.Document.Subject.String(),
		Text:         res.Text,
		Redirect:     res.Redirect,
		ControlWords: res.ControlWords,
		GateOpen:     res.GateOpen,
		Assertions:   make([]assertionJSON, 0, len(res.Assertions)),
		Diagnostics:  res.Diagnostics,
		Hints:        res.Hints,
		Metrics:      res.Metrics,
		LimitReport:  res.Metrics.LimitReport(),
	}
	for _, a := range res.Assertions {
		aj := assertionJSON{Properties: a.Properties, Value: a.Value, Caption: a.Caption}
		for _, h := range a.Values {
			vj := valueJSON{Property: h.Property, Display: h.Display, Valid: h.Valid, Message: h.Message}
			switch typed := h.Typed.(type) {
			case schema.Value:
				if !typed.IsNull() {
					vj.Type = string(typed.Type())
					vj.Canonical = typed.Canonical()
				}
			case string:
				vj.Canonical = typed
			}
			aj.Values = append(aj.Values, vj)
		}
		out.Assertions = append(out.Assertions, aj)
	}
	return out
}

func init() {
	parseCmd.Flags().BoolVar(&parseHTML, "html", false, "Render the rewritten text to HTML")
	parseCmd.Flags().BoolVar(&parsePretty, "pretty", false, "Render the rewritten text for the terminal")
	parseCmd.Flags().StringVar(&parseBaseURL, "base-url", "", "Prefix for page links in HTML output")
	addParserFlags(parseCmd.Flags())
	rootCmd.AddCommand(parseCmd)
}
