package sha1store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/ruteri/bitstore/storage"
)

// Store maps sha1 keys onto a base store by prepending a prefix to the
// lowercase key, optionally verifying every payload against its key.
type Store struct {
	base   interfaces.Store
	prefix string
	verify bool
	name   string
	log    *slog.Logger
}

// NewStore creates a sha1 store over base. For base stores addressed by
// location URIs the prefix is typically a directory, e.g. "s3://bucket/blobs/".
func NewStore(base interfaces.Store, prefix string, verify bool, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		base:   base,
		prefix: prefix,
		verify: verify,
		name:   fmt.Sprintf("sha1-%s", base.Name()),
		log:    log,
	}
}

// Base returns the wrapped store.
func (s *Store) Base() interfaces.Store {
	return s.base
}

// SetVerify toggles hash verification on get and put.
func (s *Store) SetVerify(verify bool) {
	s.verify = verify
}

func (s *Store) IsValid(uri string) bool {
	return IsSha1(uri)
}

func (s *Store) URIHint() string {
	return URIHint
}

// Get fetches the payload of key from the base store.
// Not found errors of the base store are attributed to this store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.CheckValid(s, key); err != nil {
		return nil, err
	}
	data, err := s.base.Get(ctx, s.baseKey(key))
	if err != nil {
		if errors.Is(err, interfaces.ErrNotFound) {
			return nil, &interfaces.NotFoundError{Store: s.Name(), URI: key, Err: err}
		}
		return nil, err
	}
	if s.verify {
		if err := s.verifier().Verify(data, key); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// Put saves data under key in the base store.
// With verification enabled mismatching data never reaches the base store.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	if err := storage.CheckValid(s, key); err != nil {
		return err
	}
	if s.verify {
		if err := s.verifier().Verify(data, key); err != nil {
			return err
		}
	}
	return storage.Put(ctx, s.base, s.baseKey(key), data)
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) baseKey(key string) string {
	return s.prefix + strings.ToLower(key)
}

func (s *Store) verifier() Verifier {
	return Verifier{Store: s.name, Log: s.log}
}
