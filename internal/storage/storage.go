package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
)

var (
	ErrNotFound = errors.New("storage: object not found")
	ErrNoLink   = errors.New("storage: public links not supported")
)

// ArtifactStore keeps generated files such as batch prediction CSVs.
type ArtifactStore interface {
	// Put stores body under folder/key.<ext of name> and returns that path.
	Put(ctx context.Context, folder, key, name string, body []byte) (string, error)
	Get(ctx context.Context, path string) ([]byte, error)
	// Link returns a time-limited download URL, or ErrNoLink.
	Link(ctx context.Context, path string) (string, error)
}

func objectPath(folder, key, name string) string {
	ext := strings.TrimPrefix(path.Ext(name), ".")
	if ext == "" {
		return fmt.Sprintf("%s/%s", folder, key)
	}
	return fmt.Sprintf("%s/%s.%s", folder, key, ext)
}

// MemoryStore is an in-process ArtifactStore for local runs and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, folder, key, name string, body []byte) (string, error) {
	p := objectPath(folder, key, name)
	m.mu.Lock()
	m.objects[p] = append([]byte(nil), body...)
	m.mu.Unlock()
	return p, nil
}

func (m *MemoryStore) Get(_ context.Context, p string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return append([]byte(nil), body...), nil
}

func (m *MemoryStore) Link(context.Context, string) (string, error) {
	return "", ErrNoLink
}
