// Package journal keeps a local log of settled submissions made from this
// machine. It is write-only from the submission pipeline's point of view.
package journal

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

const schemaDDL = `CREATE TABLE IF NOT EXISTS submissions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	created_ms INTEGER NOT NULL,
	timestamp TEXT NOT NULL,
	prompt TEXT NOT NULL,
	fields TEXT NOT NULL,
	image_id TEXT,
	output TEXT,
	error TEXT,
	duration_ms INTEGER
);
CREATE INDEX IF NOT EXISTS submissions_created ON submissions(created_ms);`

// SQLiteStore persists journal entries in a SQLite database. When the
// database cannot be opened it degrades to a JSONL file next to it.
type SQLiteStore struct {
	db            *sql.DB
	path          string
	fallback      *FileStore
	retentionDays int
	now           func() time.Time
	mu            sync.Mutex
}

// NewSQLiteStore creates (or opens) the database at path.
func NewSQLiteStore(path string, retentionDays int) *SQLiteStore {
	store := &SQLiteStore{path: path, retentionDays: retentionDays, now: time.Now}
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		store.fallback = NewFileStore(fallbackPath(path))
		return store
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		store.fallback = NewFileStore(fallbackPath(path))
		return store
	}
	db.SetMaxOpenConns(1)
	store.db = db
	if err := store.init(); err != nil {
		_ = db.Close()
		store.db = nil
		store.fallback = NewFileStore(fallbackPath(path))
	}
	return store
}

func fallbackPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".jsonl"
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(schemaDDL)
	return err
}

// Degraded reports whether the store fell back to the JSONL file.
func (s *SQLiteStore) Degraded() bool {
	return s.db == nil
}

// Append inserts a new entry and prunes entries past the retention window.
func (s *SQLiteStore) Append(entry domain.JournalEntry) error {
	if s.db == nil {
		return s.fallback.Append(entry)
	}
	fields, err := json.Marshal(entry.Fields)
	if err != nil {
		return fmt.Errorf("encode fields: %w", err)
	}
	var output sql.NullString
	if entry.Output != nil {
		raw, err := json.Marshal(entry.Output)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		output = sql.NullString{String: string(raw), Valid: true}
	}
	ts := entry.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO submissions
		(created_ms, timestamp, prompt, fields, image_id, output, error, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.UnixMilli(),
		ts.UTC().Format(time.RFC3339Nano),
		entry.Prompt,
		string(fields),
		nullString(string(entry.ImageID)),
		output,
		nullString(entry.Error),
		entry.DurationMS,
	)
	if err != nil {
		return err
	}
	if s.retentionDays > 0 {
		return s.pruneLocked(s.retentionDays)
	}
	return nil
}

// Entries returns journal entries, newest first. A limit of zero or less
// returns all of them.
func (s *SQLiteStore) Entries(limit int) ([]domain.JournalEntry, error) {
	if s.db == nil {
		return s.fallback.Entries(limit)
	}
	query := "SELECT id, timestamp, prompt, fields, image_id, output, error, duration_ms FROM submissions ORDER BY created_ms DESC, id DESC"
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.JournalEntry
	for rows.Next() {
		var (
			entry                   domain.JournalEntry
			ts, fields              string
			imageID, output, errMsg sql.NullString
			duration                sql.NullInt64
		)
		if err := rows.Scan(&entry.ID, &ts, &entry.Prompt, &fields, &imageID, &output, &errMsg, &duration); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Timestamp = t
		}
		if err := json.Unmarshal([]byte(fields), &entry.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of entry %d: %w", entry.ID, err)
		}
		if output.Valid {
			if entry.Output, err = decodeOutput(output.String); err != nil {
				return nil, fmt.Errorf("decode output of entry %d: %w", entry.ID, err)
			}
		}
		entry.ImageID = domain.ImageID(imageID.String)
		entry.Error = errMsg.String
		entry.DurationMS = duration.Int64
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear deletes all journal entries.
func (s *SQLiteStore) Clear() error {
	if s.db == nil {
		return s.fallback.Clear()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM submissions")
	return err
}

// PruneOlderThan removes entries older than N days.
func (s *SQLiteStore) PruneOlderThan(days int) error {
	if days <= 0 {
		return nil
	}
	if s.db == nil {
		return s.fallback.PruneOlderThan(days, s.now())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pruneLocked(days)
}

func (s *SQLiteStore) pruneLocked(days int) error {
	cutoff := s.now().AddDate(0, 0, -days).UnixMilli()
	_, err := s.db.Exec("DELETE FROM submissions WHERE created_ms < ?", cutoff)
	return err
}

// Path returns the backing file path.
func (s *SQLiteStore) Path() string {
	if s.db == nil {
		return s.fallback.Path()
	}
	return s.path
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// decodeOutput keeps numbers as json.Number so replayed values render with
// their original text.
func decodeOutput(raw string) (domain.Output, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var out domain.Output
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

var _ ports.Journal = (*SQLiteStore)(nil)
