package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ruteri/bitstore/interfaces"
)

// MemoryStore is a volatile map-backed store.
// With a non-empty prefix it accepts only URIs of the form "<prefix>:<key>",
// otherwise it accepts any URI.
type MemoryStore struct {
	mu       sync.RWMutex
	contents map[string][]byte
	prefix   string
	writable bool
}

// NewMemoryStore returns a memory store seeded with initial, whose keys are
// given without the prefix.
func NewMemoryStore(prefix string, writable bool, initial map[string][]byte) *MemoryStore {
	contents := make(map[string][]byte, len(initial))
	for key, value := range initial {
		if prefix != "" {
			key = prefix + ":" + key
		}
		contents[key] = value
	}
	return &MemoryStore{
		contents: contents,
		prefix:   prefix,
		writable: writable,
	}
}

func (m *MemoryStore) IsValid(uri string) bool {
	return m.prefix == "" || strings.HasPrefix(uri, m.prefix+":")
}

func (m *MemoryStore) URIHint() string {
	if m.prefix == "" {
		return ""
	}
	return m.prefix + ":<key>"
}

func (m *MemoryStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(m, uri); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.contents[uri]
	if !ok {
		return nil, &interfaces.NotFoundError{Store: m.Name(), URI: uri}
	}
	return data, nil
}

// Put stores data under uri. Read-only memory stores report ErrNotImplemented.
func (m *MemoryStore) Put(ctx context.Context, uri string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.writable {
		return &interfaces.NotImplementedError{Store: m.Name(), Op: "put"}
	}
	if err := CheckValid(m, uri); err != nil {
		return err
	}
	m.contents[uri] = data
	return nil
}

// SetWritable toggles whether Put is accepted.
func (m *MemoryStore) SetWritable(writable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writable = writable
}

// Delete removes uri from the map.
func (m *MemoryStore) Delete(uri string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contents, uri)
}

// Len returns the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.contents)
}

// Has reports whether uri is stored, without validity checking.
func (m *MemoryStore) Has(uri string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.contents[uri]
	return ok
}

func (m *MemoryStore) Name() string {
	if m.prefix == "" {
		return "memory"
	}
	return fmt.Sprintf("memory-%s", m.prefix)
}
