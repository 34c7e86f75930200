package sha1store

import (
	"context"
	"log/slog"

	"github.com/ruteri/bitstore/storage"
)

// Composite is a storage.Composite over sha1 keys. Keys are canonicalized
// before lookup so that every source and the cache see the same lowercase
// key, whatever the caller's casing or sha1:// prefix.
type Composite struct {
	*storage.Composite
}

// NewComposite creates an empty sha1 composite.
func NewComposite(logger *slog.Logger) *Composite {
	composite := storage.NewComposite(logger)
	composite.SetName("sha1-composite")
	return &Composite{Composite: composite}
}

// IsValid reports whether uri is a sha1, optionally prefixed with sha1://.
// It does not depend on the registered sources.
func (c *Composite) IsValid(uri string) bool {
	return IsSha1URI(uri)
}

func (c *Composite) URIHint() string {
	return SchemeURIHint
}

func (c *Composite) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := storage.CheckValid(c, uri); err != nil {
		return nil, err
	}
	key, _ := Canonical(uri)
	return c.Resolve(ctx, key)
}
