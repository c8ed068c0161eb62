package index

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/parser"
	"github.com/semtext/semtext/internal/wikilink"
	"github.com/semtext/semtext/internal/workspace"
)

// Processor turns a document into rewritten text and assertions. An
// annotation.Extractor is a Processor; so is a transclusion engine wrapping one.
type Processor interface {
	Parse(doc annotation.Document, sink annotation.Sink) (*annotation.Result, error)
}

// Factbox display modes stored per page.
const (
	FactboxShown  = "shown"
	FactboxHidden = "hidden"
)

// Indexer parses workspace documents and stores their assertions.
type Indexer struct {
	DB        *Database
	Processor Processor
	Root      string
	Options   parser.Options
	Logger    *slog.Logger
}

// FileError is a per-file failure that did not stop indexing.
type FileError struct {
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// Summary reports one IndexAll run.
type Summary struct {
	Indexed     int           `json:"indexed"`
	Unchanged   int           `json:"unchanged"`
	Removed     []string      `json:"removed,omitempty"`
	Assertions  int           `json:"assertions"`
	Skipped     int           `json:"skipped_values"`
	Diagnostics int           `json:"diagnostics"`
	Errors      []FileError   `json:"errors,omitempty"`
	Duration    time.Duration `json:"-"`
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ix.Logger
}

// Build runs the processor over one parsed document and returns what would be
// stored for it, along with the parse result.
func (ix *Indexer) Build(doc *parser.ParsedDocument, mtime int64) (Entry, *annotation.Result, error) {
	collector := NewCollector()
	res, err := ix.Processor.Parse(doc.Document, collector)
	if err != nil {
		return Entry{}, nil, err
	}

	rows := collector.Rows()
	for i := range rows {
		rows[i].FilePath = doc.FilePath
	}
	page := Page{
		Subject:   doc.Document.Subject.String(),
		Namespace: doc.Document.Subject.Namespace,
		Title:     doc.Document.Subject.Title,
		FilePath:  doc.FilePath,
		Redirect:  res.Redirect,
		FileMtime: mtime,
	}
	switch {
	case res.HasControlWord(annotation.NoFactbox):
		page.Factbox = FactboxHidden
	case res.HasControlWord(annotation.ShowFactbox):
		page.Factbox = FactboxShown
	}
	return Entry{
		Page:    page,
		Rows:    rows,
		Links:   wikilink.Targets(res.Text),
		Text:    res.Text,
		Skipped: collector.Skipped(),
	}, res, nil
}

// IndexFile parses and stores a single file.
func (ix *Indexer) IndexFile(path string) (*annotation.Result, error) {
	if err := workspace.ValidateWithin(ix.Root, path); err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	doc, err := parser.ParseFile(path, ix.Root, ix.Options)
	if err != nil {
		return nil, err
	}
	entry, res, err := ix.Build(doc, info.ModTime().Unix())
	if err != nil {
		return nil, err
	}
	if err := ix.DB.Put(entry); err != nil {
		return nil, fmt.Errorf("store %s: %w", doc.FilePath, err)
	}
	return res, nil
}

// IndexAll walks the workspace and stores every document inside one
// transaction. Unless full is set, files whose modification time has not moved
// since they were last indexed are skipped. Files that disappeared are removed.
func (ix *Indexer) IndexAll(ctx context.Context, full bool) (*Summary, error) {
	started := time.Now()
	log := ix.logger()

	known, err := fileMtimes(ix.DB.db)
	if err != nil {
		return nil, fmt.Errorf("read indexed files: %w", err)
	}

	tx, err := ix.DB.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if full {
		if err := clearAll(tx); err != nil {
			return nil, err
		}
	}

	summary := &Summary{}
	seen := make(map[string]bool, len(known))
	err = workspace.Walk(ix.Root, ix.Options, func(result workspace.WalkResult) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if result.Error != nil {
			log.Warn("skipping file", "path", result.RelativePath, "error", result.Error)
			summary.Errors = append(summary.Errors, FileError{FilePath: result.RelativePath, Error: result.Error.Error()})
			return nil
		}
		seen[result.RelativePath] = true

		if !full {
			if mtime, ok := known[result.RelativePath]; ok && mtime > 0 && result.FileMtime <= mtime {
				summary.Unchanged++
				return nil
			}
		}
		return ix.store(tx, result, summary)
	})
	if err != nil {
		return nil, err
	}

	if !full {
		for path := range known {
			if seen[path] {
				continue
			}
			if err := deleteByFilePath(tx, path); err != nil {
				return nil, err
			}
			summary.Removed = append(summary.Removed, path)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit index: %w", err)
	}
	summary.Duration = time.Since(started)
	log.Debug("index complete",
		"indexed", summary.Indexed,
		"unchanged", summary.Unchanged,
		"removed", len(summary.Removed),
		"duration", summary.Duration)
	return summary, nil
}

func (ix *Indexer) store(tx *sql.Tx, result workspace.WalkResult, summary *Summary) error {
	entry, res, err := ix.Build(result.Document, result.FileMtime)
	if err != nil {
		// A failing sink is a storage problem, not a document problem.
		return fmt.Errorf("index %s: %w", result.RelativePath, err)
	}
	if err := putEntry(tx, entry); err != nil {
		return fmt.Errorf("store %s: %w", result.RelativePath, err)
	}
	for _, d := range res.Diagnostics {
		ix.logger().Debug("diagnostic", "path", result.RelativePath, "key", d.Key, "message", d.Message)
	}
	summary.Indexed++
	summary.Assertions += len(entry.Rows)
	summary.Skipped += entry.Skipped
	summary.Diagnostics += len(res.Diagnostics)
	return nil
}
