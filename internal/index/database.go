// Package index stores extracted assertions in a SQLite database and answers
// property queries against it.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "modernc.org/sqlite"
)

// CurrentDBVersion is the current database schema version. A database written
// with another version is rebuilt by OpenWithRebuild.
const CurrentDBVersion = 1

var (
	// ErrIndexLocked indicates another process holds the index lock.
	ErrIndexLocked = errors.New("index is locked by another process")
	// ErrPageNotFound indicates the subject is not in the index.
	ErrPageNotFound = errors.New("page not found in index")
)

// Database is the SQLite database handle.
type Database struct {
	db *sql.DB
}

// DB returns the underlying sql.DB.
func (d *Database) DB() *sql.DB {
	return d.db
}

// DBPath returns where the index of the workspace at root lives.
func DBPath(root string) string {
	return filepath.Join(root, ".semtext", "index.db")
}

// Open opens or creates the index of the workspace at root.
func Open(root string) (*Database, error) {
	dbPath := DBPath(root)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	return openPath(dbPath)
}

// OpenInMemory opens an in-memory database.
func OpenInMemory() (*Database, error) {
	return openPath(":memory:")
}

func openPath(dsn string) (*Database, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dsn == ":memory:" {
		// Each connection would get its own empty database.
		db.SetMaxOpenConns(1)
	}
	d := &Database{db: db}
	if err := d.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// OpenWithRebuild opens the index, deleting it first when it was written with
// another schema version. It reports whether the index was rebuilt.
func OpenWithRebuild(root string) (*Database, bool, error) {
	dbPath := DBPath(root)
	lock, err := acquireLock(filepath.Dir(dbPath))
	if err != nil {
		return nil, false, err
	}
	defer lock.release()

	rebuilt := false
	if _, err := os.Stat(dbPath); err == nil {
		if v, err := storedVersion(dbPath); err != nil || v != CurrentDBVersion {
			if err := removeDatabaseFiles(dbPath); err != nil {
				return nil, false, err
			}
			rebuilt = true
		}
	}
	d, err := Open(root)
	return d, rebuilt, err
}

func storedVersion(dbPath string) (int, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'version'`).Scan(&v); err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

type indexLock struct {
	file *os.File
}

func acquireLock(dir string) (*indexLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "index.lock"), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index lock: %w", err)
	}
	if err := tryLock(f); err != nil {
		f.Close()
		if errors.Is(err, ErrIndexLocked) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	return &indexLock{file: f}, nil
}

func (l *indexLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}
	unlockErr := unlock(l.file)
	closeErr := l.file.Close()
	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

func removeDatabaseFiles(dbPath string) error {
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}

// Close closes the database.
func (d *Database) Close() error {
	return d.db.Close()
}

// Analyze updates query planner statistics after bulk indexing.
func (d *Database) Analyze() error {
	_, err := d.db.Exec("ANALYZE")
	return err
}

func (d *Database) initialize() error {
	schema := `
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS pages (
			subject TEXT PRIMARY KEY,
			namespace TEXT NOT NULL,
			title TEXT NOT NULL,
			file_path TEXT NOT NULL,
			redirect TEXT,
			factbox TEXT,               -- shown, hidden or NULL for the default
			file_mtime INTEGER,
			indexed_at INTEGER
		);

		CREATE TABLE IF NOT EXISTS assertions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			file_path TEXT NOT NULL,
			property TEXT NOT NULL,
			property_slug TEXT NOT NULL,
			value TEXT NOT NULL,        -- as written
			value_type TEXT NOT NULL,
			canonical TEXT NOT NULL,    -- typed form used for matching
			caption TEXT,
			position INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS links (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			file_path TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_pages_file ON pages(file_path);
		CREATE INDEX IF NOT EXISTS idx_assertions_file ON assertions(file_path);
		CREATE INDEX IF NOT EXISTS idx_assertions_subject ON assertions(subject);
		CREATE INDEX IF NOT EXISTS idx_assertions_property ON assertions(property_slug, canonical);
		CREATE INDEX IF NOT EXISTS idx_links_target ON links(target);
		CREATE INDEX IF NOT EXISTS idx_links_file ON links(file_path);

		CREATE VIRTUAL TABLE IF NOT EXISTS fts_content USING fts5(
			subject,
			content,
			file_path UNINDEXED,
			tokenize='porter unicode61'
		);
	`
	if _, err := d.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}
	if _, err := d.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('version', ?)`,
		strconv.Itoa(CurrentDBVersion)); err != nil {
		return fmt.Errorf("failed to set database version: %w", err)
	}
	return nil
}
