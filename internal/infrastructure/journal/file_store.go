package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// FileStore appends journal entries to a jsonl file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a journal backed by the jsonl file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append implements ports.Journal.
func (f *FileStore) Append(entry domain.JournalEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return err
	}
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, domain.SecureFilePermissions)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// Entries loads journal entries newest first (best-effort: unreadable lines
// are skipped).
func (f *FileStore) Entries(limit int) ([]domain.JournalEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.readLocked()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (f *FileStore) readLocked() ([]domain.JournalEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.JournalEntry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(line))
		dec.UseNumber()
		var entry domain.JournalEntry
		if err := dec.Decode(&entry); err == nil {
			entry.ID = int64(len(entries) + 1)
			entries = append(entries, entry)
		}
	}
	return entries, scanner.Err()
}

// Clear removes the journal file.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PruneOlderThan removes entries older than N days relative to now.
func (f *FileStore) PruneOlderThan(days int, now time.Time) error {
	if days <= 0 {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.readLocked()
	if err != nil {
		return err
	}
	cutoff := now.AddDate(0, 0, -days)
	var buf bytes.Buffer
	for _, entry := range entries {
		if entry.Timestamp.Before(cutoff) {
			continue
		}
		entry.ID = 0
		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return os.WriteFile(f.path, buf.Bytes(), domain.SecureFilePermissions)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

var _ ports.Journal = (*FileStore)(nil)
