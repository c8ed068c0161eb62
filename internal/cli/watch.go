package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/semtext/semtext/internal/ui"
	"github.com/semtext/semtext/internal/watcher"
)

var watchDebounce time.Duration

// watchEventJSON is one line of --json watch output.
type watchEventJSON struct {
	File        string    `json:"file"`
	Removed     bool      `json:"removed,omitempty"`
	Assertions  int       `json:"assertions"`
	Diagnostics int       `json:"diagnostics,omitempty"`
	Error       string    `json:"error,omitempty"`
	Time        time.Time `json:"time"`
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the index current while pages change",
	Long: `Brings the index up to date, then watches the workspace and reindexes
pages as they are written, created or deleted. Stop with Ctrl-C.

With --json every reindex is written as one JSON object per line.

Examples:
  semtext watch
  semtext watch --debounce 500ms`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, rebuilt, err := openWritableIndex()
		if err != nil {
			return err
		}
		defer db.Close()

		ix, err := newIndexer(wsCfg, db)
		if err != nil {
			return handleError(ErrConfigInvalid, err, "")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		summary, err := ix.IndexAll(ctx, rebuilt)
		if err != nil {
			return handleError(ErrDatabaseError, err, "")
		}
		if !jsonOutput {
			fmt.Fprintln(stdout, ui.Successf("Index up to date: %s reindexed, %s unchanged",
				ui.Count(summary.Indexed, "file", "files"),
				ui.Count(summary.Unchanged, "file", "files")))
			fmt.Fprintln(stdout, ui.Hint("Watching "+resolvedWorkspace+" for changes..."))
		}

		enc := json.NewEncoder(stdout)
		w, err := watcher.New(watcher.Config{
			Indexer:       ix,
			DebounceDelay: watchDebounce,
			Logger:        logger,
			OnEvent: func(e watcher.Event) {
				if jsonOutput {
					_ = enc.Encode(newWatchEventJSON(e))
					return
				}
				printWatchEvent(e)
			},
		})
		if err != nil {
			return handleError(ErrInternal, err, "")
		}

		if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return handleError(ErrInternal, err, "")
		}
		return nil
	},
}

func newWatchEventJSON(e watcher.Event) watchEventJSON {
	out := watchEventJSON{File: e.FilePath, Removed: e.Removed, Time: time.Now().UTC()}
	if e.Result != nil {
		out.Assertions = len(e.Result.Assertions)
		out.Diagnostics = len(e.Result.Diagnostics)
	}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return out
}

func printWatchEvent(e watcher.Event) {
	switch {
	case e.Err != nil:
		fmt.Fprintln(stdout, ui.Warning(e.FilePath+": "+e.Err.Error()))
	case e.Removed:
		fmt.Fprintln(stdout, ui.Infof("Removed %s", ui.FilePath(e.FilePath)))
	case e.Result != nil:
		fmt.Fprintln(stdout, ui.Successf("Reindexed %s: %s",
			ui.FilePath(e.FilePath),
			ui.Count(len(e.Result.Assertions), "assertion", "assertions")))
		for _, d := range e.Result.Diagnostics {
			fmt.Fprintln(stdout, "  "+ui.Diagnostic(d))
		}
	}
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Wait this long after the last write before reindexing")
	rootCmd.AddCommand(watchCmd)
}
