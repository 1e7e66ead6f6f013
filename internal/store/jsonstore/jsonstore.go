// Package jsonstore is the local key-value cache. Each key is one JSON file
// under the data directory, written atomically so a crash mid-write never
// leaves a torn record behind.
package jsonstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

// Store reads and writes JSON-serialized records keyed by name.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is created lazily on the
// first write.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir returns the per-user data directory (~/.taskman).
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".taskman"), nil
}

func (s *Store) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Read unmarshals the record for key into v. It returns false with a nil
// error when no record exists; a missing record is not a failure.
func (s *Store) Read(key string, v any) (bool, error) {
	b, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return true, nil
}

// Write marshals v and replaces the record for key atomically.
func (s *Store) Write(key string, v any) error {
	// ensure the data dir exists with owner-only perms
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	p := s.path(key)
	if err := atomic.WriteFile(p, bytes.NewReader(b)); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := os.Chmod(p, 0o600); err != nil {
		return fmt.Errorf("chmod %s: %w", key, err)
	}
	return nil
}

// Delete removes the record for key. Deleting an absent record is a no-op.
func (s *Store) Delete(key string) error {
	if err := os.Remove(s.path(key)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}
