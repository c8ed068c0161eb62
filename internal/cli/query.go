package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/index"
	"github.com/semtext/semtext/internal/ui"
)

// openIndex opens the workspace index for reading.
func openIndex() (*index.Database, error) {
	db, err := index.Open(resolvedWorkspace)
	if err != nil {
		return nil, handleError(ErrDatabaseError, err, "Run 'semtext index' first")
	}
	return db, nil
}

func printRows(rows []index.Row, showSubject bool) {
	table := ui.NewTable(3)
	for _, r := range rows {
		first := ui.Accent.Render(r.Property)
		if showSubject {
			first = ui.Accent.Render(r.Subject)
		}
		value := r.Value
		if r.Caption != nil && *r.Caption != r.Value {
			value += " " + ui.Hint("("+*r.Caption+")")
		}
		table.AddRow(first, value, ui.Hint(r.ValueType))
	}
	fmt.Fprint(stdout, table.String())
}

var queryCmd = &cobra.Command{
	Use:   "query <property> [value]",
	Short: "Find pages by property",
	Long: `Lists the pages that assert a property, optionally restricted to one value.

Property names match regardless of case, spaces or underscores. Values match
either as written or in their typed form ("3,645,000" and "3645000").

Examples:
  semtext query "Capital of"
  semtext query has_population 3645000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		start := time.Now()
		rows, err := db.QueryByProperty(args[0], value)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if rows == nil {
			rows = []index.Row{}
		}

		if jsonOutput {
			outputSuccess(map[string]any{"property": args[0], "value": value, "items": rows}, nil,
				&Meta{Count: len(rows), QueryTimeMs: time.Since(start).Milliseconds()})
			return nil
		}
		if len(rows) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No pages assert "+args[0]))
			return nil
		}
		printRows(rows, true)
		return nil
	},
}

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "List the properties in use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		props, err := db.Properties()
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if jsonOutput {
			if props == nil {
				props = []index.PropertyCount{}
			}
			outputSuccess(map[string]any{"items": props}, nil, &Meta{Count: len(props)})
			return nil
		}
		table := ui.NewTable(2)
		for _, p := range props {
			table.AddRow(ui.Accent.Render(p.Property), ui.Hint(fmt.Sprint(p.Count)))
		}
		fmt.Fprint(stdout, table.String())
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <subject>",
	Short: "Show the facts stored for a page",
	Long: `Shows the indexed assertions of a page and the pages that link to it.

Examples:
  semtext show Berlin
  semtext show "Template:Infobox"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject := strings.Join(args, " ")
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		page, err := db.Page(subject)
		if err != nil {
			if errors.Is(err, index.ErrPageNotFound) {
				return handleError(ErrPageNotFound, err, "Check the title, or run 'semtext index' to pick up new pages")
			}
			return handleError(ErrDatabaseError, err, "")
		}
		rows, err := db.QueryBySubject(page.Subject)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		backlinks, err := db.Backlinks(page.Subject)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}

		if jsonOutput {
			if rows == nil {
				rows = []index.Row{}
			}
			outputSuccess(map[string]any{"page": page, "assertions": rows, "backlinks": backlinks}, nil, &Meta{Count: len(rows)})
			return nil
		}

		fmt.Fprintln(stdout, ui.Header(page.Subject)+" "+ui.Hint(page.FilePath))
		if page.Redirect != "" {
			fmt.Fprintln(stdout, ui.Infof("Redirects to %s", ui.Accent.Render(page.Redirect)))
		}
		if len(rows) > 0 && page.Factbox != index.FactboxHidden {
			fmt.Fprintln(stdout)
			printRows(rows, false)
		}
		if len(backlinks) > 0 {
			fmt.Fprintln(stdout)
			fmt.Fprintln(stdout, ui.Header("Linked from"))
			for _, b := range backlinks {
				fmt.Fprintln(stdout, "  "+ui.Accent.Render(b))
			}
		}
		return nil
	},
}

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <terms...>",
	Short: "Full-text search over rewritten page text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		query := strings.Join(args, " ")
		results, err := db.Search(query, searchLimit)
		if err != nil {
			return handleError(ErrInvalidInput, err, "Quote phrases with \"...\"; AND, OR and NOT are operators")
		}
		if jsonOutput {
			if results == nil {
				results = []index.SearchResult{}
			}
			outputSuccess(map[string]any{"query": query, "items": results}, nil, &Meta{Count: len(results)})
			return nil
		}
		if len(results) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No matches for "+query))
			return nil
		}
		for _, r := range results {
			fmt.Fprintln(stdout, ui.Accent.Render(r.Subject)+" "+ui.Hint(r.FilePath))
			fmt.Fprintln(stdout, "  "+strings.ReplaceAll(r.Snippet, "\n", " "))
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 20, "Maximum number of results")
	rootCmd.AddCommand(queryCmd, propertiesCmd, showCmd, searchCmd)
}
