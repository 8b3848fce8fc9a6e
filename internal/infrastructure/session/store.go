// Package session persists the logged-in identity in a YAML file.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/widgera/internal/domain"
	"github.com/doeshing/widgera/internal/ports"
)

// FileStore keeps the session in memory and mirrors it to path. The file
// holds a bearer token and is written with owner-only permissions.
type FileStore struct {
	path string

	mu      sync.RWMutex
	session domain.Session
}

// Open reads the session at path. A missing file means logged out.
func Open(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.session); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", path, err)
	}
	return s, nil
}

// Path returns the session file location.
func (s *FileStore) Path() string { return s.path }

// Current implements ports.SessionProvider.
func (s *FileStore) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Save implements ports.SessionProvider.
func (s *FileStore) Save(session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, err := yaml.Marshal(session)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("ensure session dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, domain.SecureFilePermissions); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.session = session
	return nil
}

// Expire implements ports.SessionProvider. It removes the file; expiring an
// absent session is not an error.
func (s *FileStore) Expire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = domain.Session{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

var _ ports.SessionProvider = (*FileStore)(nil)
