package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/ruteri/bitstore/interfaces"
)

// LRUStore is a bounded in-process store evicting the least recently used
// entries. It is meant as a write-back cache in front of slower backends.
type LRUStore struct {
	entries *lru.Cache[string, []byte]
	prefix  string
	size    int
	log     *slog.Logger
}

// NewLRUStore creates an LRU store holding at most size entries.
// Prefix restricts accepted URIs like MemoryStore does.
func NewLRUStore(prefix string, size int, log *slog.Logger) (*LRUStore, error) {
	if log == nil {
		log = slog.Default()
	}
	entries, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create LRU cache: %w", err)
	}
	return &LRUStore{
		entries: entries,
		prefix:  prefix,
		size:    size,
		log:     log,
	}, nil
}

func (s *LRUStore) IsValid(uri string) bool {
	return s.prefix == "" || strings.HasPrefix(uri, s.prefix+":")
}

func (s *LRUStore) URIHint() string {
	if s.prefix == "" {
		return ""
	}
	return s.prefix + ":<key>"
}

func (s *LRUStore) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(s, uri); err != nil {
		return nil, err
	}
	data, ok := s.entries.Get(uri)
	if !ok {
		return nil, &interfaces.NotFoundError{Store: s.Name(), URI: uri}
	}
	return data, nil
}

func (s *LRUStore) Put(ctx context.Context, uri string, data []byte) error {
	if err := CheckValid(s, uri); err != nil {
		return err
	}
	if evicted := s.entries.Add(uri, data); evicted {
		s.log.Debug("LRU store evicted oldest entry",
			slog.String("store", s.Name()),
			slog.Int("size", s.size))
	}
	return nil
}

// Len returns the number of cached entries.
func (s *LRUStore) Len() int {
	return s.entries.Len()
}

func (s *LRUStore) Name() string {
	return fmt.Sprintf("lru-%d", s.size)
}
