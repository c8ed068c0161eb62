package index

import (
	"database/sql"
	"fmt"
	"time"
)

// Page is one indexed document.
type Page struct {
	Subject   string `json:"subject"`
	Namespace string `json:"namespace"`
	Title     string `json:"title"`
	FilePath  string `json:"file_path"`
	Redirect  string `json:"redirect,omitempty"`
	Factbox   string `json:"factbox,omitempty"`
	FileMtime int64  `json:"file_mtime,omitempty"`
}

// Entry is everything stored for one file.
type Entry struct {
	Page  Page
	Rows  []Row
	Links []string
	Text  string // rewritten text, for full-text search

	Skipped int // invalid values left out of Rows
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

var filePathTables = []string{"pages", "assertions", "links", "fts_content"}

func deleteByFilePath(e execer, filePath string) error {
	for _, table := range filePathTables {
		if _, err := e.Exec("DELETE FROM "+table+" WHERE file_path = ?", filePath); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// Put replaces everything stored for entry.Page.FilePath.
func (d *Database) Put(entry Entry) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := putEntry(tx, entry); err != nil {
		return err
	}
	return tx.Commit()
}

func putEntry(tx *sql.Tx, entry Entry) error {
	p := entry.Page
	if err := deleteByFilePath(tx, p.FilePath); err != nil {
		return err
	}
	// Another file may have claimed the subject before.
	if _, err := tx.Exec(`DELETE FROM pages WHERE subject = ?`, p.Subject); err != nil {
		return fmt.Errorf("delete page: %w", err)
	}

	now := time.Now().Unix()
	mtime := p.FileMtime
	if mtime == 0 {
		mtime = now
	}
	if _, err := tx.Exec(`INSERT INTO pages (subject, namespace, title, file_path, redirect, factbox, file_mtime, indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Subject, p.Namespace, p.Title, p.FilePath, nullString(p.Redirect), nullString(p.Factbox), mtime, now); err != nil {
		return fmt.Errorf("insert page: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO assertions (subject, file_path, property, property_slug, value, value_type, canonical, caption, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, r := range entry.Rows {
		var caption any
		if r.Caption != nil {
			caption = *r.Caption
		}
		if _, err := stmt.Exec(p.Subject, p.FilePath, r.Property, propertySlug(r.Property), r.Value, r.ValueType, r.Canonical, caption, i); err != nil {
			return fmt.Errorf("insert assertion: %w", err)
		}
	}

	for _, target := range entry.Links {
		if _, err := tx.Exec(`INSERT INTO links (source, target, file_path) VALUES (?, ?, ?)`, p.Subject, target, p.FilePath); err != nil {
			return fmt.Errorf("insert link: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO fts_content (subject, content, file_path) VALUES (?, ?, ?)`, p.Subject, entry.Text, p.FilePath); err != nil {
		return fmt.Errorf("insert search text: %w", err)
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// RemoveFile deletes everything stored for a workspace-relative file path.
func (d *Database) RemoveFile(filePath string) error {
	return deleteByFilePath(d.db, filePath)
}

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// fileMtimes maps every indexed file path to its recorded modification time.
func fileMtimes(q querier) (map[string]int64, error) {
	type pair struct {
		path  string
		mtime int64
	}
	pairs, err := queryAll(q, func(rows *sql.Rows) (pair, error) {
		var p pair
		err := rows.Scan(&p.path, &p.mtime)
		return p, err
	}, `SELECT file_path, COALESCE(file_mtime, 0) FROM pages`)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(pairs))
	for _, p := range pairs {
		out[p.path] = p.mtime
	}
	return out, nil
}

func clearAll(e execer) error {
	for _, table := range filePathTables {
		if _, err := e.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// queryAll runs query on q and collects one T per result row. A nil slice
// means no rows matched.
func queryAll[T any](q querier, scan func(*sql.Rows) (T, error), query string, args ...any) ([]T, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
