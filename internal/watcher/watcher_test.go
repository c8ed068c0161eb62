package watcher

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/semtext/semtext/internal/config"
	"github.com/semtext/semtext/internal/index"
	"github.com/semtext/semtext/internal/testutil"
)

func newTestWatcher(t *testing.T, root string, onEvent func(Event)) *Watcher {
	t.Helper()
	wc, err := config.LoadWorkspaceConfig(root)
	if err != nil {
		t.Fatalf("LoadWorkspaceConfig: %v", err)
	}
	e, err := wc.NewExtractor(nil)
	if err != nil {
		t.Fatalf("NewExtractor: %v", err)
	}
	db, err := index.OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	w, err := New(Config{
		Indexer:       &index.Indexer{DB: db, Processor: e, Root: root, Options: wc.ParseOptions()},
		DebounceDelay: 20 * time.Millisecond,
		OnEvent:       onEvent,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestNewRequiresIndexer(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error without indexer")
	}
	if _, err := New(Config{Indexer: &index.Indexer{}}); err == nil {
		t.Fatal("expected error without root")
	}
}

func TestReindexAndRemove(t *testing.T) {
	ws := testutil.CityWorkspace(t).Build()
	w := newTestWatcher(t, ws.Path, nil)

	res, err := w.Reindex("Berlin.md")
	if err != nil {
		t.Fatalf("Reindex: %v", err)
	}
	if res == nil || len(res.Assertions) != 3 {
		t.Fatalf("result=%+v", res)
	}
	rows, err := w.ix.DB.QueryBySubject("Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	if err := w.Remove(ws.Abs("Berlin.md")); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	rows, err = w.ix.DB.QueryBySubject("Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows left after remove: %+v", rows)
	}
}

func TestReindexIgnoresNonDocuments(t *testing.T) {
	ws := testutil.NewTestWorkspace(t).
		WithFile("notes.txt", "[[A::b]]").
		WithFile(".hidden/Page.md", "[[A::b]]").
		Build()
	w := newTestWatcher(t, ws.Path, nil)

	for _, path := range []string{"notes.txt", ".hidden/Page.md"} {
		res, err := w.Reindex(path)
		if err != nil || res != nil {
			t.Errorf("Reindex(%q) = %v, %v; want nil, nil", path, res, err)
		}
	}
}

func TestShouldIgnore(t *testing.T) {
	root := t.TempDir()
	w := &Watcher{ix: &index.Indexer{Root: root}}

	tests := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "Page.md"), false},
		{filepath.Join(root, "Template", "Box.md"), false},
		{filepath.Join(root, ".semtext", "index.db"), true},
		{filepath.Join(root, ".git", "HEAD"), true},
		{root, false},
	}
	for _, tt := range tests {
		if got := w.shouldIgnore(tt.path); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestStartReindexesChangedFiles(t *testing.T) {
	ws := testutil.CityWorkspace(t).Build()
	events := make(chan Event, 8)
	w := newTestWatcher(t, ws.Path, func(e Event) { events <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	// Give the watcher time to register its directories.
	time.Sleep(100 * time.Millisecond)
	ws.WriteFile("Madrid.md", "Madrid is the capital of [[Capital of::Spain]].\n")

	deadline := time.After(5 * time.Second)
	for {
		select {
		case e := <-events:
			if e.FilePath != "Madrid.md" || e.Removed {
				continue
			}
			if e.Err != nil {
				t.Fatalf("reindex: %v", e.Err)
			}
			rows, err := w.ix.DB.QueryByProperty("Capital of", "Spain")
			if err != nil {
				t.Fatal(err)
			}
			if len(rows) != 1 || rows[0].Subject != "Madrid" {
				t.Fatalf("rows=%+v", rows)
			}
			cancel()
			<-done
			return
		case err := <-done:
			t.Fatalf("watcher stopped early: %v", err)
		case <-deadline:
			t.Fatal("timed out waiting for reindex")
		}
	}
}
