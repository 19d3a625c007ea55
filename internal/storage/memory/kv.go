package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-deeplinks/pkg/interfaces/store"
)

// KeyValueStore keeps values in a process-local map. It is not durable and is
// intended for tests and demos.
type KeyValueStore struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ store.KeyValueStore = (*KeyValueStore)(nil)

func NewKeyValueStore() *KeyValueStore {
	return &KeyValueStore{values: make(map[string]string)}
}

func (s *KeyValueStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *KeyValueStore) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
