package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/index"
	"github.com/semtext/semtext/internal/ui"
)

var indexFull bool

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Index the annotations of every page",
	Long: `Parses every page of the workspace and stores its assertions, links and
text in the SQLite index under .semtext/.

By default only files that changed since the last run are parsed again, and
files that were deleted are dropped. Use --full to rebuild everything.

Examples:
  semtext index
  semtext index ~/wiki --full`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wc := wsCfg
		if len(args) == 1 {
			root, err := checkDir(args[0])
			if err != nil {
				return handleError(ErrWorkspaceNotFound, err, "")
			}
			resolvedWorkspace = root
			if wc, err = config.LoadWorkspaceConfig(root); err != nil {
				return handleError(ErrConfigInvalid, err, "Fix "+config.WorkspaceFile+" and try again")
			}
		}

		db, rebuilt, err := openWritableIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		var warnings []Warning
		if rebuilt {
			warnings = append(warnings, Warning{Code: WarnDatabaseRebuilt, Message: "index was written by another version and has been rebuilt"})
		}

		ix, err := newIndexer(wc, db)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}
		summary, err := ix.IndexAll(cmd.Context(), indexFull || rebuilt)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if err := db.Analyze(); err != nil {
			logger.Warn("analyze failed", "error", err)
		}
		for _, fe := range summary.Errors {
			warnings = append(warnings, Warning{Code: WarnFileSkipped, Message: fe.Error, File: fe.FilePath})
		}

		if jsonOutput {
			outputSuccess(summary, warnings, &Meta{Count: summary.Indexed, QueryTimeMs: summary.Duration.Milliseconds()})
			return nil
		}

		for _, w := range warnings {
			fmt.Fprintln(stdout, ui.Warning(w.Message+" "+ui.Hint(w.File)))
		}
		fmt.Fprintln(stdout, ui.Successf("Indexed %s in %s: %s, %s unchanged, %s removed",
			ui.Count(summary.Indexed, "file", "files"),
			ui.FilePath(filepath.Base(resolvedWorkspace)),
			ui.Count(summary.Assertions, "assertion", "assertions"),
			ui.Count(summary.Unchanged, "file", "files"),
			ui.Count(len(summary.Removed), "file", "files")))
		if summary.Diagnostics > 0 {
			fmt.Fprintln(stdout, ui.Hint(fmt.Sprintf("%s; run 'semtext parse <file>' to see them",
				ui.Count(summary.Diagnostics, "problem", "problems"))))
		}
		return nil
	},
}

// openWritableIndex opens the workspace index for writing. Errors are already
// passed through handleError.
func openWritableIndex() (*index.Database, bool, error) {
	db, rebuilt, err := index.OpenWithRebuild(resolvedWorkspace)
	if err != nil {
		if errors.Is(err, index.ErrIndexLocked) {
			return nil, false, handleError(ErrIndexLocked, err, "Wait for the other semtext process to finish")
		}
		return nil, false, handleError(ErrDatabaseError, err, "")
	}
	return db, rebuilt, nil
}

func newIndexer(wc *config.WorkspaceConfig, db *index.Database) (*index.Indexer, error) {
	engine, err := newEngine(wc)
	if err != nil {
		return nil, err
	}
	return &index.Indexer{
		DB:        db,
		Processor: engine,
		Root:      resolvedWorkspace,
		Options:   wc.ParseOptions(),
		Logger:    logger,
	}, nil
}

func init() {
	indexCmd.Flags().BoolVar(&indexFull, "full", false, "Rebuild the whole index")
	rootCmd.AddCommand(indexCmd)
}
