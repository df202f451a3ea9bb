package crawl

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"burrow/document"
)

// Page statuses recorded in the pages table.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Store is the SQLite index written by the crawler.
type Store struct {
	db *sql.DB
}

// PageRecord describes one fetched (or failed) menu.
type PageRecord struct {
	Target
	Depth     int
	Status    string
	Error     string
	Truncated bool
	CrawledAt time.Time
}

// ItemRecord is an indexed menu item together with the menu it was found on.
type ItemRecord struct {
	document.Item
	Page Target
}

// Stats summarises the index.
type Stats struct {
	Pages  int
	Failed int
	Items  int
	Hosts  int
}

// Open opens or creates the index at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps ":memory:" databases and the write path coherent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %s: %w", p, err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		host TEXT NOT NULL,
		port INTEGER NOT NULL,
		selector TEXT NOT NULL,
		depth INTEGER DEFAULT 0,
		status TEXT NOT NULL,
		error TEXT,
		item_count INTEGER DEFAULT 0,
		truncated BOOLEAN DEFAULT FALSE,
		crawled_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (host, port, selector)
	);

	CREATE TABLE IF NOT EXISTS items (
		page_id INTEGER NOT NULL REFERENCES pages(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		selectable BOOLEAN NOT NULL DEFAULT FALSE,
		display TEXT,
		selector TEXT,
		host TEXT,
		port INTEGER,
		PRIMARY KEY (page_id, position)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_host ON pages(host);
	CREATE INDEX IF NOT EXISTS idx_items_target ON items(host, port, selector);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SavePage records a page and replaces its items.
func (s *Store) SavePage(rec PageRecord, items []document.Item) error {
	if rec.CrawledAt.IsZero() {
		rec.CrawledAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var pageID int64
	err = tx.QueryRow(`
		INSERT INTO pages (host, port, selector, depth, status, error, item_count, truncated, crawled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(host, port, selector) DO UPDATE SET
			depth = excluded.depth,
			status = excluded.status,
			error = excluded.error,
			item_count = excluded.item_count,
			truncated = excluded.truncated,
			crawled_at = excluded.crawled_at
		RETURNING id
	`, rec.Host, rec.Port, rec.Selector, rec.Depth, rec.Status, rec.Error, len(items), rec.Truncated, rec.CrawledAt).Scan(&pageID)
	if err != nil {
		return fmt.Errorf("saving page %s: %w", rec.Target, err)
	}

	if _, err := tx.Exec(`DELETE FROM items WHERE page_id = ?`, pageID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO items (page_id, position, kind, selectable, display, selector, host, port)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, item := range items {
		if _, err := stmt.Exec(pageID, i, int(item.Kind), item.Selectable(), item.Display, item.Selector, item.Host, item.Port); err != nil {
			return fmt.Errorf("saving item %d of %s: %w", i, rec.Target, err)
		}
	}

	return tx.Commit()
}

// Stats reports counts over the whole index.
func (s *Store) Stats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT host)
		FROM pages
	`, StatusFailed).Scan(&st.Pages, &st.Failed, &st.Hosts)
	if err != nil {
		return st, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&st.Items); err != nil {
		return st, err
	}
	return st, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Search returns selectable items whose display text contains term, ignoring
// ASCII case. term is matched literally; '%' and '_' are not wildcards.
func (s *Store) Search(term string, limit int) ([]ItemRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT i.kind, i.display, i.selector, i.host, i.port, p.host, p.port, p.selector
		FROM items i JOIN pages p ON p.id = i.page_id
		WHERE i.selectable AND i.display LIKE '%' || ? || '%' ESCAPE '\'
		ORDER BY p.host, p.selector, i.position
		LIMIT ?
	`, likeEscaper.Replace(term), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ItemRecord
	for rows.Next() {
		var (
			rec  ItemRecord
			kind int
		)
		if err := rows.Scan(&kind, &rec.Display, &rec.Selector, &rec.Host, &rec.Port,
			&rec.Page.Host, &rec.Page.Port, &rec.Page.Selector); err != nil {
			return nil, err
		}
		rec.Kind = document.Kind(kind)
		out = append(out, rec)
	}
	return out, rows.Err()
}
