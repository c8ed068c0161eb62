package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/buildinfo"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the semtext version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			outputSuccess(map[string]string{
				"version": buildinfo.Version,
				"commit":  buildinfo.Commit,
				"date":    buildinfo.Date,
			}, nil, nil)
			return
		}
		fmt.Fprintln(stdout, buildinfo.Summary())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
