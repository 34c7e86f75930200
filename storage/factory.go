package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/spf13/afero"
)

// BackendsConfig holds the settings of every backend a Factory can create.
type BackendsConfig struct {
	S3    S3Config    `yaml:"s3"`
	GCS   GCSConfig   `yaml:"gs"`
	Vault VaultConfig `yaml:"vault"`
	IPFS  IPFSConfig  `yaml:"ipfs"`
	LRU   LRUConfig   `yaml:"lru"`
}

// LRUConfig configures the lru: backend.
type LRUConfig struct {
	Size int `yaml:"size"`
}

// Factory creates backend stores from location URIs.
// Each scheme maps to one shared store instance, so stores obtained for
// different locations of the same scheme compare equal.
type Factory struct {
	cfg    BackendsConfig
	fs     afero.Fs
	log    *slog.Logger
	stores map[string]interfaces.Store
}

// NewFactory creates a new factory instance. A nil fs means the operating
// system file system for file:// locations.
func NewFactory(cfg BackendsConfig, fs afero.Fs, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		cfg:    cfg,
		fs:     fs,
		log:    logger,
		stores: make(map[string]interfaces.Store),
	}
}

// StoreFor returns the backend store responsible for location.
// The location may be a full URI or a URI prefix such as s3://bucket/blobs/.
//
// Supported schemes:
//   - s3:// - Amazon S3 or compatible object storage
//   - gs:// - Google Cloud Storage
//   - file:// - Local filesystem storage
//   - vault:// - HashiCorp Vault KV v2
//   - ipfs:// - IPFS node API, read-only
//   - mem: - process memory, unbounded
//   - lru: - process memory, bounded by the configured size
func (f *Factory) StoreFor(location string) (interfaces.Store, error) {
	scheme, err := Scheme(location)
	if err != nil {
		return nil, err
	}

	if store, ok := f.stores[scheme]; ok {
		return store, nil
	}

	store, err := f.create(scheme)
	if err != nil {
		return nil, err
	}
	f.stores[scheme] = store
	return store, nil
}

// Scheme returns the lowercase URI scheme of location. Locations with equal
// schemes are served by the same Factory store.
func Scheme(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", &interfaces.InvalidURIError{Store: "factory", URI: location, Hint: err.Error()}
	}
	return strings.ToLower(u.Scheme), nil
}

func (f *Factory) create(scheme string) (interfaces.Store, error) {
	f.log.Debug("Creating backend store", slog.String("scheme", scheme))

	switch scheme {
	case "s3":
		return NewS3Store(f.cfg.S3, f.log), nil
	case "gs":
		return NewGCSStore(f.cfg.GCS, f.log), nil
	case "file":
		return NewFileStore(f.fs, f.log), nil
	case "vault":
		store, err := NewVaultStore(f.cfg.Vault, f.log)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "ipfs":
		return NewIPFSStore(f.cfg.IPFS, f.log), nil
	case "mem":
		return NewMemoryStore("", true, nil), nil
	case "lru":
		size := f.cfg.LRU.Size
		if size <= 0 {
			size = 1024
		}
		store, err := NewLRUStore("", size, f.log)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported backend scheme: %q", scheme)
	}
}
