package settings

import (
	"context"
	"sync"
)

// StaticStore is an in-memory Store. Err, when set, is returned by Get.
type StaticStore struct {
	mu     sync.RWMutex
	values Settings
	Err    error
}

// NewStaticStore returns a store holding a copy of values.
func NewStaticStore(values Settings) *StaticStore {
	if values == nil {
		values = Settings{}
	}
	return &StaticStore{values: values.Clone()}
}

// Get returns a copy so callers cannot mutate the store.
func (s *StaticStore) Get(_ context.Context) (Settings, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values.Clone(), nil
}

func (s *StaticStore) Set(_ context.Context, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}
