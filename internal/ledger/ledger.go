// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger persists the download history: a mapping from dedup key to
// a record of one successfully downloaded paper. The ledger answers "already
// downloaded?" so batches skip papers fetched by earlier searches.
package ledger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const (
	// timestampFmt is the persisted download_date format.
	timestampFmt = "2006-01-02 15:04:05"
	// dateFmt is the persisted date_only format.
	dateFmt = "2006-01-02"
)

// Entry is one download record. Entries are created exactly once, when a
// PDF download succeeds, and are never mutated afterwards. Unknown fields
// in the backing file are ignored on load, so the format stays
// forward-readable.
type Entry struct {
	// Title is the paper title as downloaded.
	Title string `json:"title"`

	// FilePath is the absolute path of the saved PDF.
	FilePath string `json:"file_path"`

	// PDFURL is the URL the PDF was fetched from.
	PDFURL string `json:"pdf_url"`

	// DownloadDate is the download timestamp ("YYYY-MM-DD HH:MM:SS").
	DownloadDate string `json:"download_date"`

	// DateOnly is the date projection of DownloadDate ("YYYY-MM-DD").
	DateOnly string `json:"date_only"`
}

// NewEntry builds an Entry stamped at now.
func NewEntry(title, filePath, pdfURL string, now time.Time) Entry {
	return Entry{
		Title:        title,
		FilePath:     filePath,
		PDFURL:       pdfURL,
		DownloadDate: now.Format(timestampFmt),
		DateOnly:     now.Format(dateFmt),
	}
}

// Ledger is the in-memory view of the download history, flushed to its
// backing file after every mutation. Single writer, single process; callers
// needing concurrent access must wrap it in their own mutual exclusion.
type Ledger struct {
	path    string
	entries map[string]Entry
}

// Open loads the ledger at path. A missing or unreadable file is not an
// error: the process starts with an empty ledger and a warning on warn, so
// a corrupt history never blocks searching or downloading.
func Open(path string, warn io.Writer) *Ledger {
	l := &Ledger{path: path, entries: make(map[string]Entry)}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(warn, "warning: reading download history %s: %v (starting empty)\n", path, err)
		}
		return l
	}
	if err := json.Unmarshal(data, &l.entries); err != nil {
		fmt.Fprintf(warn, "warning: parsing download history %s: %v (starting empty)\n", path, err)
		l.entries = make(map[string]Entry)
	}
	return l
}

// Exists reports whether key has a download record.
func (l *Ledger) Exists(key string) bool {
	_, ok := l.entries[key]
	return ok
}

// Get returns the entry for key, if present.
func (l *Ledger) Get(key string) (Entry, bool) {
	e, ok := l.entries[key]
	return e, ok
}

// Count returns the number of recorded downloads.
func (l *Ledger) Count() int {
	return len(l.entries)
}

// Keys returns all dedup keys in sorted order, for listing.
func (l *Ledger) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for k := range l.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Record inserts or overwrites the entry for key and flushes the ledger.
// Recording an identical entry under an existing key is a no-op. A flush
// failure is returned to the caller, but the in-memory entry is kept so the
// rest of the process still sees the download.
func (l *Ledger) Record(key string, e Entry) error {
	if key == "" {
		return fmt.Errorf("recording download: empty dedup key")
	}
	if existing, ok := l.entries[key]; ok && existing == e {
		return nil
	}
	l.entries[key] = e
	return l.flush()
}

// Clear empties the whole ledger and flushes.
func (l *Ledger) Clear() error {
	l.entries = make(map[string]Entry)
	return l.flush()
}

// flush writes the full mapping to a temp file and renames it into place,
// so a crash mid-write cannot corrupt the history.
func (l *Ledger) flush() error {
	data, err := json.MarshalIndent(l.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling download history: %w", err)
	}

	dir := filepath.Dir(l.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp history file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download history: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp history file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing download history: %w", err)
	}
	return nil
}
