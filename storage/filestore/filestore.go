// Package filestore persists session values in a JSON file so that a login survives
// between CLI invocations.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-menu-client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps all values in a single JSON object file. Every mutation rewrites the
// file through a temp file and a rename so a crash never leaves a torn file behind.
type Store struct {
	path   string
	values map[string]string
	loaded bool
	lock   sync.Mutex
}

func New(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	next := s.copyValues()
	next[key] = value
	return s.commit(next)
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.load(); err != nil {
		return err
	}
	next := s.copyValues()
	for _, k := range keys {
		delete(next, k)
	}
	if len(next) == len(s.values) {
		return nil
	}
	return s.commit(next)
}

func (s *Store) Take(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.load(); err != nil {
		return "", false, err
	}
	v, ok := s.values[key]
	if !ok {
		return "", false, nil
	}
	next := s.copyValues()
	delete(next, key)
	if err := s.commit(next); err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *Store) copyValues() map[string]string {
	out := make(map[string]string, len(s.values)+1)
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// commit writes values to disk and only then makes them the in-memory state.
func (s *Store) commit(values map[string]string) error {
	if err := s.flush(values); err != nil {
		return err
	}
	s.values = values
	return nil
}

// load reads the file once; a missing file is an empty store.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}
	s.values = make(map[string]string)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.loaded = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("[filestore load] read %s: %w", s.path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.values); err != nil {
			return fmt.Errorf("[filestore load] decode %s: %w", s.path, err)
		}
	}
	s.loaded = true
	return nil
}

func (s *Store) flush(values map[string]string) error {
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("[filestore flush] encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("[filestore flush] create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("[filestore flush] temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore flush] write: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("[filestore flush] chmod: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("[filestore flush] close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("[filestore flush] rename: %w", err)
	}
	return nil
}
