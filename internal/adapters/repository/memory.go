package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// MemoryStore keeps records in process memory. Used by tests and the
// default configuration.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string]map[string][]byte
	closed bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string][]byte)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, collection, key string) ([]byte, error) {
	if err := checkKey(collection, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	b, ok := s.data[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(b), nil
}

// Create implements Store.
func (s *MemoryStore) Create(_ context.Context, collection, key string, data []byte) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if _, ok := s.data[collection][key]; ok {
		return ErrAlreadyExists
	}
	s.put(collection, key, data)
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, collection, key string) (bool, error) {
	if err := checkKey(collection, key); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrClosed
	}
	if _, ok := s.data[collection][key]; !ok {
		return false, nil
	}
	delete(s.data[collection], key)
	return true, nil
}

// List implements Store.
func (s *MemoryStore) List(_ context.Context, collection string) ([]Record, error) {
	if !validName(collection) {
		return nil, wrapInvalid("collection", collection)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make([]Record, 0, len(s.data[collection]))
	for k, v := range s.data[collection] {
		out = append(out, Record{Key: k, Data: clone(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, collection, key string, fn UpdateFunc) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	next, err := fn(clone(s.data[collection][key]))
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	s.put(collection, key, next)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *MemoryStore) put(collection, key string, data []byte) {
	c, ok := s.data[collection]
	if !ok {
		c = make(map[string][]byte)
		s.data[collection] = c
	}
	c[key] = clone(data)
}
