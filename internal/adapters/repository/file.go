package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const recordExt = ".json"

// FileStore keeps one JSON file per record under dir/collection/key.json.
// Writes go through a temp file and a rename so readers never observe a
// partial record. Update is atomic within a single process only.
type FileStore struct {
	dir      string
	fileMode os.FileMode
	mu       sync.RWMutex
}

// NewFileStore creates the root directory if needed.
func NewFileStore(dir string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{dir: dir, fileMode: 0o644}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return s, nil
}

// Get implements Store.
func (s *FileStore) Get(_ context.Context, collection, key string) ([]byte, error) {
	if err := checkKey(collection, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(collection, key)
}

// Create implements Store.
func (s *FileStore) Create(_ context.Context, collection, key string, data []byte) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := s.writeTemp(collection, data)
	if err != nil {
		return err
	}
	defer os.Remove(tmp) //nolint:errcheck // temp file cleanup

	// Link fails if the target exists, even across processes.
	if err := os.Link(tmp, s.path(collection, key)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrAlreadyExists
		}
		return fmt.Errorf("create record: %w", err)
	}
	return nil
}

// Delete implements Store.
func (s *FileStore) Delete(_ context.Context, collection, key string) (bool, error) {
	if err := checkKey(collection, key); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.path(collection, key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("delete record: %w", err)
	}
}

// List implements Store.
func (s *FileStore) List(_ context.Context, collection string) ([]Record, error) {
	if !validName(collection) {
		return nil, wrapInvalid("collection", collection)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := os.ReadDir(filepath.Join(s.dir, collection))
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	out := make([]Record, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		key := strings.TrimSuffix(name, recordExt)
		b, err := s.read(collection, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, Record{Key: key, Data: b})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Update implements Store.
func (s *FileStore) Update(_ context.Context, collection, key string, fn UpdateFunc) error {
	if err := checkKey(collection, key); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.read(collection, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	next, err := fn(current)
	if errors.Is(err, ErrNoChange) {
		return nil
	}
	if err != nil {
		return err
	}
	tmp, err := s.writeTemp(collection, next)
	if err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path(collection, key)); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(collection, key string) string {
	return filepath.Join(s.dir, collection, key+recordExt)
}

func (s *FileStore) read(collection, key string) ([]byte, error) {
	b, err := os.ReadFile(s.path(collection, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return b, nil
}

// writeTemp writes data to a temp file inside the collection directory so
// that the final rename or link stays on one filesystem.
func (s *FileStore) writeTemp(collection string, data []byte) (string, error) {
	dir := filepath.Join(s.dir, collection)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create collection dir: %w", err)
	}
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	name := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(name)
		return "", fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(name, s.fileMode); err != nil {
		_ = os.Remove(name)
		return "", fmt.Errorf("chmod temp file: %w", err)
	}
	return name, nil
}
