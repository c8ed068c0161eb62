// Package watcher keeps a workspace index current while documents change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/semtext/semtext/internal/annotation"
	"github.com/semtext/semtext/internal/index"
	"github.com/semtext/semtext/internal/workspace"
)

// DefaultDebounce is used when Config.DebounceDelay is not positive.
const DefaultDebounce = 100 * time.Millisecond

// Event describes one reindex or removal performed by the watcher.
type Event struct {
	FilePath string // workspace-relative, slash separated
	Removed  bool
	Result   *annotation.Result
	Err      error
}

// Config holds configuration options for the Watcher.
type Config struct {
	Indexer       *index.Indexer
	DebounceDelay time.Duration
	Logger        *slog.Logger
	OnEvent       func(Event) // optional
}

// Watcher monitors a workspace directory and reindexes changed documents.
type Watcher struct {
	ix       *index.Indexer
	debounce time.Duration
	log      *slog.Logger
	onEvent  func(Event)

	fsWatcher *fsnotify.Watcher
	pending   map[string]time.Time
	mu        sync.Mutex
}

// New creates a Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	if cfg.Indexer == nil {
		return nil, errors.New("indexer is required")
	}
	if cfg.Indexer.Root == "" {
		return nil, errors.New("workspace root is required")
	}
	debounce := cfg.DebounceDelay
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Watcher{
		ix:       cfg.Indexer,
		debounce: debounce,
		log:      log.With("component", "watcher"),
		onEvent:  cfg.OnEvent,
		pending:  make(map[string]time.Time),
	}, nil
}

// Start watches the workspace until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer w.fsWatcher.Close()

	if err := w.addWatchRecursive(w.ix.Root); err != nil {
		return fmt.Errorf("watch workspace: %w", err)
	}
	w.log.Debug("watching workspace", "root", w.ix.Root)

	go w.processDebounced(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		}
	}
}

// Reindex parses and stores one document. Paths that are not documents or sit
// in hidden directories are ignored and yield a nil result.
func (w *Watcher) Reindex(path string) (*annotation.Result, error) {
	path = w.abs(path)
	if !workspace.IsDocument(path) || w.shouldIgnore(path) {
		return nil, nil
	}
	return w.ix.IndexFile(path)
}

// Remove drops everything stored for a document that no longer exists.
func (w *Watcher) Remove(path string) error {
	rel, err := w.rel(path)
	if err != nil {
		return err
	}
	return w.ix.DB.RemoveFile(rel)
}

func (w *Watcher) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.ix.Root, path)
}

func (w *Watcher) rel(path string) (string, error) {
	rel, err := filepath.Rel(w.ix.Root, w.abs(path))
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name

	if !workspace.IsDocument(path) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !w.shouldIgnore(path) {
				if err := w.addWatchRecursive(path); err != nil {
					w.log.Warn("watch directory", "path", path, "error", err)
				}
			}
		}
		return
	}
	if w.shouldIgnore(path) {
		return
	}

	w.log.Debug("event", "op", event.Op.String(), "path", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		w.schedule(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		rel, _ := w.rel(path)
		err := w.Remove(path)
		if err != nil {
			w.log.Warn("remove from index", "path", rel, "error", err)
		}
		w.emit(Event{FilePath: rel, Removed: true, Err: err})
	}
}

func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.pending[path] = time.Now()
}

func (w *Watcher) processDebounced(ctx context.Context) {
	tick := max(w.debounce/2, 10*time.Millisecond)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.processPending()
		}
	}
}

// processPending reindexes files whose last change is older than the debounce delay.
func (w *Watcher) processPending() {
	w.mu.Lock()
	now := time.Now()
	var ready []string
	for path, scheduledAt := range w.pending {
		if now.Sub(scheduledAt) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		rel, _ := w.rel(path)
		res, err := w.Reindex(path)
		if err != nil {
			w.log.Warn("reindex failed", "path", rel, "error", err)
		} else {
			w.log.Debug("reindexed", "path", rel)
		}
		w.emit(Event{FilePath: rel, Result: res, Err: err})
	}
}

func (w *Watcher) emit(e Event) {
	if w.onEvent != nil {
		w.onEvent(e)
	}
}

func (w *Watcher) addWatchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.ix.Root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			w.log.Warn("watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// shouldIgnore reports whether path lies in a hidden directory (the state
// directory included) or is a hidden file.
func (w *Watcher) shouldIgnore(path string) bool {
	rel, err := filepath.Rel(w.ix.Root, path)
	if err != nil || rel == "." {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
