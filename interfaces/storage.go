package interfaces

import (
	"context"
)

// Store is a validity-checked byte store over an addressable key space.
type Store interface {
	// Name returns identifier for logging and error attribution.
	Name() string

	// IsValid reports whether the store accepts uri. It must not panic and
	// must not contact the backend.
	IsValid(uri string) bool

	// Get retrieves the bytes stored under uri.
	// Returns an *InvalidURIError if IsValid rejects uri, an error matching
	// ErrNotFound if the key is absent and an error matching ErrNotAvailable
	// if the backend cannot be reached.
	Get(ctx context.Context, uri string) ([]byte, error)
}

// WritableStore is a Store that can also save data.
type WritableStore interface {
	Store

	// Put saves data under uri, overwriting any previous value.
	Put(ctx context.Context, uri string, data []byte) error
}

// URIHinter is implemented by stores that can describe their accepted URI syntax.
// The hint is attached to InvalidURIError.
type URIHinter interface {
	URIHint() string
}
