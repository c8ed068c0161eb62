package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/ui"
	"github.com/semtext/semtext/internal/wikilink"
)

type linkJSON struct {
	Target   string `json:"target"`
	Fragment string `json:"fragment,omitempty"`
	Text     string `json:"text"`
}

var linksCmd = &cobra.Command{
	Use:   "links <file>",
	Short: "List the plain links of a page",
	Long: `Parses a page and lists the plain [[links]] left in its rewritten text,
including links that appeared inside annotation values.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, res, err := parseFileArg(cmd.Flags(), args[0])
		if err != nil {
			return err
		}

		links := []linkJSON{}
		for _, m := range wikilink.FindAll(res.Text) {
			links = append(links, linkJSON{Target: m.Target, Fragment: m.Fragment, Text: m.Text()})
		}
		if jsonOutput {
			outputSuccess(map[string]any{"file": doc.FilePath, "links": links}, nil, &Meta{Count: len(links)})
			return nil
		}

		if len(links) == 0 {
			fmt.Fprintln(stdout, ui.Hint("No links in "+doc.FilePath))
			return nil
		}
		table := ui.NewTable(2)
		for _, l := range links {
			target := l.Target
			if l.Fragment != "" {
				target += "#" + l.Fragment
			}
			text := ""
			if l.Text != l.Target {
				text = ui.Hint(l.Text)
			}
			table.AddRow(ui.Accent.Render(target), text)
		}
		fmt.Fprint(stdout, table.String())
		return nil
	},
}

func init() {
	addParserFlags(linksCmd.Flags())
	rootCmd.AddCommand(linksCmd)
}
