package sha1store

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/ruteri/bitstore/storage"
)

// Fetcher retrieves a single payload by lowercase sha1 from a remote API.
// A nil payload with a nil error means the API does not know the key.
type Fetcher interface {
	FetchSha1(ctx context.Context, key string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key string) ([]byte, error)

func (f FetcherFunc) FetchSha1(ctx context.Context, key string) ([]byte, error) {
	return f(ctx, key)
}

// APISource is a read-only sha1 store backed by a remote lookup API.
type APISource struct {
	name    string
	fetcher Fetcher
	verify  bool
	log     *slog.Logger
}

// NewAPISource creates a sha1 source named name that delegates lookups to fetcher.
func NewAPISource(name string, fetcher Fetcher, verify bool, log *slog.Logger) *APISource {
	if log == nil {
		log = slog.Default()
	}
	return &APISource{
		name:    name,
		fetcher: fetcher,
		verify:  verify,
		log:     log,
	}
}

func (a *APISource) IsValid(uri string) bool {
	return IsSha1(uri)
}

func (a *APISource) URIHint() string {
	return URIHint
}

func (a *APISource) Get(ctx context.Context, key string) ([]byte, error) {
	if err := storage.CheckValid(a, key); err != nil {
		return nil, err
	}
	data, err := a.fetcher.FetchSha1(ctx, strings.ToLower(key))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, &interfaces.NotFoundError{Store: a.Name(), URI: key}
	}
	if a.verify {
		if err := (Verifier{Store: a.name, Log: a.log}).Verify(data, key); err != nil {
			return nil, err
		}
	}
	return data, nil
}

func (a *APISource) Name() string {
	return a.name
}
