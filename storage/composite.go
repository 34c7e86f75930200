package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ruteri/bitstore/interfaces"
)

// Composite implements interfaces.Store as an ordered fallback chain of
// sources with one optional write-back cache.
//
// Sources are compared by identity: registered stores must be comparable
// values, in practice pointers. The topology is expected to be assembled
// before Get is called concurrently.
type Composite struct {
	sources   []interfaces.Store
	cacheBack map[interfaces.Store]struct{}
	cache     interfaces.Store
	name      string
	log       *slog.Logger
}

// NewComposite creates an empty composite store.
func NewComposite(logger *slog.Logger) *Composite {
	// If no logger is provided, create a default one
	if logger == nil {
		logger = slog.Default()
	}

	return &Composite{
		cacheBack: make(map[interfaces.Store]struct{}),
		name:      "composite",
		log:       logger,
	}
}

// AppendSource adds store with the lowest priority.
// If cacheResult is set, values found in store are written to the cache.
func (c *Composite) AppendSource(store interfaces.Store, cacheResult bool) {
	c.sources = append(c.sources, store)
	if cacheResult {
		c.cacheBack[store] = struct{}{}
	}
}

// AppendCache makes store the write-back target, replacing any previous cache.
// If read is set, store is also appended as an ordinary source.
// Entries written to a replaced cache stay where they are.
func (c *Composite) AppendCache(store interfaces.Store, read bool) {
	if read {
		c.sources = append(c.sources, store)
	}
	if c.cache != nil {
		c.log.Warn("Replacing configured cache",
			slog.String("old_cache", c.cache.Name()),
			slog.String("new_cache", store.Name()))
	}
	c.cache = store
}

// Cache returns the configured write-back target, or nil.
func (c *Composite) Cache() interfaces.Store {
	return c.cache
}

// Sources returns the registered sources in priority order.
func (c *Composite) Sources() []interfaces.Store {
	return append([]interfaces.Store(nil), c.sources...)
}

// IsValid reports whether any source accepts uri.
func (c *Composite) IsValid(uri string) bool {
	for _, store := range c.sources {
		if store.IsValid(uri) {
			return true
		}
	}
	return false
}

// Get returns the value of uri from the first source that has it.
func (c *Composite) Get(ctx context.Context, uri string) ([]byte, error) {
	if err := CheckValid(c, uri); err != nil {
		return nil, err
	}
	return c.Resolve(ctx, uri)
}

// Resolve runs the fallback lookup for uri without checking the composite's
// own validity predicate. Sources rejecting uri are still skipped.
//
// Not found and not available errors move on to the next source; any other
// error aborts the lookup.
func (c *Composite) Resolve(ctx context.Context, uri string) ([]byte, error) {
	start := time.Now()

	for _, store := range c.sources {
		if !store.IsValid(uri) {
			continue
		}

		data, err := store.Get(ctx, uri)
		if err != nil {
			if errors.Is(err, interfaces.ErrNotFound) || errors.Is(err, interfaces.ErrNotAvailable) {
				c.log.Debug("Source miss",
					slog.String("store", store.Name()),
					slog.String("uri", uri),
					"err", err)
				continue
			}
			c.log.Error("Source failed",
				slog.String("store", store.Name()),
				slog.String("uri", uri),
				"err", err)
			return nil, err
		}

		c.log.Debug("Fetched content",
			slog.String("store", store.Name()),
			slog.String("uri", uri),
			slog.Int("size", len(data)),
			slog.Duration("duration", time.Since(start)))

		if c.shouldCache(store) {
			if err := Put(ctx, c.cache, uri, data); err != nil {
				return nil, err
			}
		}
		return data, nil
	}

	return nil, &interfaces.NotFoundError{Store: c.Name(), URI: uri}
}

func (c *Composite) shouldCache(store interfaces.Store) bool {
	if c.cache == nil || store == c.cache {
		return false
	}
	_, ok := c.cacheBack[store]
	return ok
}

// Name returns the name of this store.
func (c *Composite) Name() string {
	return c.name
}

// SetName changes the name errors and logs attribute to this store.
func (c *Composite) SetName(name string) {
	c.name = name
}
