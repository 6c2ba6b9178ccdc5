package inmemkv

import (
	"context"
	"sync"

	"github.com/trezcool/studio/core/identity"
)

type Store struct {
	mutex  sync.RWMutex
	values map[string]string
}

var _ identity.Store = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{values: make(map[string]string)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.values[key] = value
	return nil
}
