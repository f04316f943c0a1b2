package memory

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-menu-client/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps values in process memory.
type Store struct {
	values map[string]string
	lock   sync.RWMutex
}

func New() *Store {
	return &Store{
		values: make(map[string]string),
	}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.values[key] = value
	return nil
}

func (s *Store) Delete(_ context.Context, keys ...string) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func (s *Store) Take(_ context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	v, ok := s.values[key]
	if ok {
		delete(s.values, key)
	}
	return v, ok, nil
}
