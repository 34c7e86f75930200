package sha1store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/bitstore/interfaces"
)

// Cache is a Store whose Put never fails. Payloads that cannot be written,
// including ones failing verification, are logged and dropped.
type Cache struct {
	*Store
}

// NewCache creates a failure-tolerant sha1 cache over base.
func NewCache(base interfaces.Store, prefix string, verify bool, log *slog.Logger) *Cache {
	store := NewStore(base, prefix, verify, log)
	store.name = fmt.Sprintf("sha1-cache-%s", base.Name())
	return &Cache{Store: store}
}

// Put writes data to the base store and always returns nil.
func (c *Cache) Put(ctx context.Context, key string, data []byte) error {
	err := c.Store.Put(ctx, key, data)
	switch {
	case err == nil:
		c.log.Debug("Saved result to binary cache", slog.String("sha1", key))
	case errors.Is(err, interfaces.ErrInvalidData):
		c.log.Debug("Data is invalid and cannot be cached, ignoring", slog.String("sha1", key))
	default:
		c.log.Debug("Failed caching blob, ignoring",
			slog.String("sha1", key),
			"err", err)
	}
	return nil
}
