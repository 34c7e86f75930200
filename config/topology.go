package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/ruteri/bitstore/sha1store"
	"github.com/ruteri/bitstore/storage"
	"gopkg.in/yaml.v3"
)

// Layer types.
const (
	// TypeRaw registers the backend store for the location's scheme as is.
	TypeRaw = "raw"
	// TypeSha1 registers a sha1 store whose keys live under the location prefix.
	TypeSha1 = "sha1"
	// TypeGitHub registers a read-only sha1 source over a GitHub repository's git blobs.
	TypeGitHub = "github"
)

// Layer describes one source or the cache of a topology.
type Layer struct {
	Type     string `yaml:"type"`
	Location string `yaml:"location"`
	Verify   bool   `yaml:"verify"`

	// CacheResult marks hits of a source for write-back into the cache.
	CacheResult bool `yaml:"cache_result"`

	// Read also registers the cache as a source. Defaults to true.
	Read *bool `yaml:"read"`

	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
	Token string `yaml:"token"`
}

// Topology is the YAML description of a composite store.
//
// Backends are shared per scheme: every raw layer whose location has the
// same scheme is the same store instance. A raw cache_result source can
// therefore not share its scheme with a raw cache.
//
//	sha1: true
//	backends:
//	  s3:
//	    region: us-west-2
//	    credentials: [{profile: blobs}, {anonymous: true}]
//	cache:
//	  type: sha1
//	  location: file:///var/cache/bitstore/
//	  verify: true
//	sources:
//	  - type: sha1
//	    location: s3://bucket/blobs/
//	    cache_result: true
type Topology struct {
	Sha1     bool                   `yaml:"sha1"`
	Backends storage.BackendsConfig `yaml:"backends"`
	Sources  []Layer                `yaml:"sources"`
	Cache    *Layer                 `yaml:"cache"`
}

// Load reads and validates a topology file.
func Load(path string) (*Topology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open topology file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a topology document.
func Parse(r io.Reader) (*Topology, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read topology: %w", err)
	}

	var t Topology
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode topology: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks that every layer is complete.
func (t *Topology) Validate() error {
	if len(t.Sources) == 0 && t.Cache == nil {
		return errors.New("topology has no sources")
	}
	for i, layer := range t.Sources {
		if err := layer.validate(); err != nil {
			return fmt.Errorf("source %d: %w", i, err)
		}
	}
	if t.Cache != nil {
		if t.Cache.Type == TypeGitHub {
			return errors.New("cache: github layers are read-only")
		}
		if t.Cache.CacheResult {
			return errors.New("cache: cache_result is only meaningful for sources")
		}
		if err := t.Cache.validate(); err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		for i, layer := range t.Sources {
			if err := t.checkWriteBack(layer); err != nil {
				return fmt.Errorf("source %d: %w", i, err)
			}
		}
	}
	return nil
}

// checkWriteBack rejects cache_result sources whose hits cannot be written
// back into the configured cache.
func (t *Topology) checkWriteBack(l Layer) error {
	if !l.CacheResult {
		return nil
	}
	switch l.Type {
	case TypeGitHub:
		// Git blob ids are not the sha1 of the content.
		if t.Cache.Type != TypeSha1 || !t.Cache.Verify {
			return errors.New("cache_result on a github layer requires a verifying sha1 cache")
		}
	case TypeRaw:
		if t.Cache.Type != TypeRaw {
			return nil
		}
		sourceScheme, err := storage.Scheme(l.Location)
		if err != nil {
			return err
		}
		cacheScheme, err := storage.Scheme(t.Cache.Location)
		if err != nil {
			return err
		}
		if sourceScheme == cacheScheme {
			return fmt.Errorf("raw source and raw cache share the %q backend, results would never be cached", sourceScheme)
		}
	}
	return nil
}

func (l Layer) validate() error {
	switch l.Type {
	case TypeRaw, TypeSha1:
		if l.Location == "" {
			return fmt.Errorf("%s layer requires a location", l.Type)
		}
	case TypeGitHub:
		if l.Owner == "" || l.Repo == "" {
			return errors.New("github layer requires owner and repo")
		}
	default:
		return fmt.Errorf("unknown layer type %q", l.Type)
	}
	return nil
}

func (l Layer) read() bool {
	return l.Read == nil || *l.Read
}

// Build assembles the composite described by t. Backend stores come from
// factory, so layers sharing a scheme share one backend instance.
func (t *Topology) Build(factory *storage.Factory, log *slog.Logger) (interfaces.Store, error) {
	if log == nil {
		log = slog.Default()
	}

	var composite *storage.Composite
	var root interfaces.Store
	if t.Sha1 {
		c := sha1store.NewComposite(log)
		composite, root = c.Composite, c
	} else {
		composite = storage.NewComposite(log)
		root = composite
	}

	// A readable cache is consulted before any source.
	if t.Cache != nil {
		cache, err := t.buildLayer(*t.Cache, true, factory, log)
		if err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
		composite.AppendCache(cache, t.Cache.read())
	}

	for i, layer := range t.Sources {
		source, err := t.buildLayer(layer, false, factory, log)
		if err != nil {
			return nil, fmt.Errorf("source %d: %w", i, err)
		}
		composite.AppendSource(source, layer.CacheResult)
	}

	log.Debug("Built store topology",
		slog.String("store", root.Name()),
		slog.Int("sources", len(composite.Sources())),
		slog.Bool("cache", composite.Cache() != nil))

	return root, nil
}

func (t *Topology) buildLayer(l Layer, isCache bool, factory *storage.Factory, log *slog.Logger) (interfaces.Store, error) {
	switch l.Type {
	case TypeGitHub:
		return sha1store.NewGitHubSource(l.Owner, l.Repo, l.Token, log), nil
	case TypeRaw:
		return factory.StoreFor(l.Location)
	case TypeSha1:
		base, err := factory.StoreFor(l.Location)
		if err != nil {
			return nil, err
		}
		if isCache {
			return sha1store.NewCache(base, l.Location, l.Verify, log), nil
		}
		return sha1store.NewStore(base, l.Location, l.Verify, log), nil
	default:
		return nil, fmt.Errorf("unknown layer type %q", l.Type)
	}
}
