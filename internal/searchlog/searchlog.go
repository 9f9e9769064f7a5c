// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package searchlog persists past search parameters in a SQLite database
// so frequent queries and exclude lists can be recalled and reused.
package searchlog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// maxEntries caps the log; the least recent rows are trimmed past it.
const maxEntries = 100

// Store manages the search log SQLite database.
type Store struct {
	db *sql.DB
}

// Entry is one logged search.
type Entry struct {
	ID              int64
	Keywords        string
	ExcludeKeywords []string
	SearchCount     int
	LastSearchTime  time.Time
}

// NewStore opens or creates the search log database at path, creating the
// schema and any parent directories as needed.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			keywords TEXT NOT NULL,
			exclude_keywords TEXT NOT NULL DEFAULT '',
			search_count INTEGER NOT NULL DEFAULT 1,
			last_search_time TEXT NOT NULL,
			UNIQUE(keywords, exclude_keywords)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_last_time ON searches(last_search_time)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Add records a search. Repeating the same keywords with the same exclude
// list bumps the existing row's count instead of inserting a duplicate.
// The log is trimmed to the most recent entries afterwards.
func (s *Store) Add(ctx context.Context, keywords string, exclude []string) error {
	keywords = strings.TrimSpace(keywords)
	if keywords == "" {
		return fmt.Errorf("empty keywords")
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO searches (keywords, exclude_keywords, search_count, last_search_time)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(keywords, exclude_keywords) DO UPDATE SET
			search_count = search_count + 1,
			last_search_time = excluded.last_search_time`,
		keywords, joinKeywords(exclude), now,
	)
	if err != nil {
		return fmt.Errorf("recording search: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM searches WHERE id NOT IN (
			SELECT id FROM searches ORDER BY last_search_time DESC, id DESC LIMIT ?
		)`, maxEntries,
	)
	if err != nil {
		return fmt.Errorf("trimming search log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxEntries {
		limit = maxEntries
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, keywords, exclude_keywords, search_count, last_search_time
		 FROM searches ORDER BY last_search_time DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying search log: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// Popular returns up to limit entries, most searched first.
func (s *Store) Popular(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > maxEntries {
		limit = maxEntries
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, keywords, exclude_keywords, search_count, last_search_time
		 FROM searches ORDER BY search_count DESC, last_search_time DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying search log: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// PopularExcludes returns the distinct exclude keywords seen across the
// log, ranked by how many logged searches used each one.
func (s *Store) PopularExcludes(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT exclude_keywords, search_count FROM searches WHERE exclude_keywords != ''`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying exclude keywords: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	var order []string
	for rows.Next() {
		var joined string
		var count int
		if err := rows.Scan(&joined, &count); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		for _, kw := range splitKeywords(joined) {
			if counts[kw] == 0 {
				order = append(order, kw)
			}
			counts[kw] += count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}

	// Stable selection sort on the small candidate set.
	for i := 0; i < len(order); i++ {
		best := i
		for j := i + 1; j < len(order); j++ {
			if counts[order[j]] > counts[order[best]] {
				best = j
			}
		}
		order[i], order[best] = order[best], order[i]
	}
	if len(order) > limit {
		order = order[:limit]
	}
	return order, nil
}

// Remove deletes the entry with the given id. Missing ids are not an error.
func (s *Store) Remove(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches WHERE id = ?`, id); err != nil {
		return fmt.Errorf("removing search %d: %w", id, err)
	}
	return nil
}

// Clear deletes every entry.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM searches`); err != nil {
		return fmt.Errorf("clearing search log: %w", err)
	}
	return nil
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	var entries []Entry
	for rows.Next() {
		var e Entry
		var exclude, last string
		if err := rows.Scan(&e.ID, &e.Keywords, &exclude, &e.SearchCount, &last); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.ExcludeKeywords = splitKeywords(exclude)
		if t, err := time.Parse(time.RFC3339, last); err == nil {
			e.LastSearchTime = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading rows: %w", err)
	}
	return entries, nil
}

// joinKeywords normalizes an exclude list to a canonical comma-joined form
// so the same set always hits the same UNIQUE row.
func joinKeywords(keywords []string) string {
	var cleaned []string
	for _, kw := range keywords {
		kw = strings.TrimSpace(strings.ToLower(kw))
		if kw != "" {
			cleaned = append(cleaned, kw)
		}
	}
	sort.Strings(cleaned)
	return strings.Join(cleaned, ",")
}

func splitKeywords(joined string) []string {
	if joined == "" {
		return nil
	}
	var keywords []string
	for _, kw := range strings.Split(joined, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return keywords
}
