package index

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const rowColumns = `subject, file_path, property, value, value_type, canonical, caption, position`

func scanRow(rows *sql.Rows) (Row, error) {
	var (
		r       Row
		caption sql.NullString
	)
	if err := rows.Scan(&r.Subject, &r.FilePath, &r.Property, &r.Value, &r.ValueType, &r.Canonical, &caption, &r.Position); err != nil {
		return r, err
	}
	if caption.Valid {
		r.Caption = &caption.String
	}
	return r, nil
}

// QueryByProperty returns the assertions of property, matched by slug. A
// non-empty value restricts the result to rows whose canonical or written value
// equals it, ignoring case.
func (d *Database) QueryByProperty(property, value string) ([]Row, error) {
	q := `SELECT ` + rowColumns + ` FROM assertions WHERE property_slug = ?`
	args := []any{propertySlug(property)}
	if value != "" {
		q += ` AND (canonical = ? COLLATE NOCASE OR value = ? COLLATE NOCASE)`
		args = append(args, value, value)
	}
	q += ` ORDER BY subject, position`
	out, err := queryAll(d.db, scanRow, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query property %q: %w", property, err)
	}
	return out, nil
}

// QueryBySubject returns every assertion made by subject, in document order.
func (d *Database) QueryBySubject(subject string) ([]Row, error) {
	out, err := queryAll(d.db, scanRow, `SELECT `+rowColumns+` FROM assertions WHERE subject = ? ORDER BY position`, subject)
	if err != nil {
		return nil, fmt.Errorf("query subject %q: %w", subject, err)
	}
	return out, nil
}

// Page returns the stored page for subject.
func (d *Database) Page(subject string) (*Page, error) {
	var (
		p                 Page
		redirect, factbox sql.NullString
		mtime             sql.NullInt64
	)
	err := d.db.QueryRow(`SELECT subject, namespace, title, file_path, redirect, factbox, file_mtime
		FROM pages WHERE subject = ?`, subject).
		Scan(&p.Subject, &p.Namespace, &p.Title, &p.FilePath, &redirect, &factbox, &mtime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, subject)
	}
	if err != nil {
		return nil, err
	}
	p.Redirect = redirect.String
	p.Factbox = factbox.String
	p.FileMtime = mtime.Int64
	return &p, nil
}

// PropertyCount is a property and how many assertions use it.
type PropertyCount struct {
	Property string `json:"property"`
	Slug     string `json:"slug"`
	Count    int    `json:"count"`
}

// Properties lists every property in use, most used first.
func (d *Database) Properties() ([]PropertyCount, error) {
	return queryAll(d.db, func(rows *sql.Rows) (PropertyCount, error) {
		var pc PropertyCount
		err := rows.Scan(&pc.Property, &pc.Slug, &pc.Count)
		return pc, err
	}, `SELECT MIN(property), property_slug, COUNT(*) AS n
		FROM assertions GROUP BY property_slug ORDER BY n DESC, property_slug`)
}

// Backlinks returns the subjects that link to target, either with a plain link
// or through a page-valued assertion.
func (d *Database) Backlinks(target string) ([]string, error) {
	return queryAll(d.db, func(rows *sql.Rows) (string, error) {
		var s string
		err := rows.Scan(&s)
		return s, err
	}, `
		SELECT source FROM links WHERE target = ? COLLATE NOCASE
		UNION
		SELECT subject FROM assertions WHERE value_type = 'page' AND canonical = ? COLLATE NOCASE
		ORDER BY 1`, target, target)
}

// SearchResult is one full-text match.
type SearchResult struct {
	Subject  string  `json:"subject"`
	FilePath string  `json:"file_path"`
	Snippet  string  `json:"snippet"`
	Rank     float64 `json:"rank"`
}

// Search runs a full-text query over the rewritten text of every page.
func (d *Database) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	out, err := queryAll(d.db, func(rows *sql.Rows) (SearchResult, error) {
		var r SearchResult
		err := rows.Scan(&r.Subject, &r.FilePath, &r.Snippet, &r.Rank)
		return r, err
	}, `
		SELECT subject, file_path, snippet(fts_content, 1, '»', '«', '…', 12), rank
		FROM fts_content WHERE fts_content MATCH ?
		ORDER BY rank LIMIT ?`, ftsQuery(query), limit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return out, nil
}

// ftsQuery scopes a user query to the content column. Bare tokens are quoted
// so punctuation such as '-' or ':' is not read as FTS syntax; quoted phrases,
// parentheses and the boolean operators pass through.
func ftsQuery(userQuery string) string {
	q := strings.TrimSpace(userQuery)
	if q == "" {
		return `content:""`
	}

	var b strings.Builder
	inQuotes := false
	token := func(tok string) {
		switch strings.ToUpper(tok) {
		case "AND", "OR", "NOT":
			b.WriteString(tok)
		default:
			b.WriteString(`"` + tok + `"`)
		}
	}
	start := -1
	for i := 0; i < len(q); i++ {
		c := q[i]
		if inQuotes {
			b.WriteByte(c)
			if c == '"' {
				inQuotes = false
			}
			continue
		}
		switch c {
		case '"', '(', ')', ' ', '\t', '\n':
			if start >= 0 {
				token(q[start:i])
				start = -1
			}
			b.WriteByte(c)
			if c == '"' {
				inQuotes = true
			}
		default:
			if start < 0 {
				start = i
			}
		}
	}
	if start >= 0 {
		token(q[start:])
	}
	if inQuotes {
		b.WriteByte('"')
	}
	return "content: (" + b.String() + ")"
}

// Stats counts what the index holds.
type Stats struct {
	Pages      int `json:"pages"`
	Assertions int `json:"assertions"`
	Properties int `json:"properties"`
	Links      int `json:"links"`
}

// Stats returns statistics about the index.
func (d *Database) Stats() (*Stats, error) {
	var s Stats
	for _, c := range []struct {
		query string
		dest  *int
	}{
		{"SELECT COUNT(*) FROM pages", &s.Pages},
		{"SELECT COUNT(*) FROM assertions", &s.Assertions},
		{"SELECT COUNT(DISTINCT property_slug) FROM assertions", &s.Properties},
		{"SELECT COUNT(*) FROM links", &s.Links},
	} {
		if err := d.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
