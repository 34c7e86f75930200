package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/ruteri/bitstore/sha1store"
	"github.com/ruteri/bitstore/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	// sha1 of "epic.bitstore"
	knownSha1 = "4bc39c7d87318382feb3cc5a684c767fbd913968"
	knownData = "epic.bitstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sha1Topology = `
sha1: true
backends:
  lru:
    size: 4
  s3:
    region: eu-west-1
    credentials:
      - profile: blobs
      - anonymous: true
cache:
  type: sha1
  location: "lru:"
  verify: true
sources:
  - type: sha1
    location: "mem:blobs/"
    verify: true
    cache_result: true
  - type: github
    owner: owner
    repo: repo
`

func TestParse(t *testing.T) {
	topology, err := Parse(strings.NewReader(sha1Topology))
	require.NoError(t, err)

	assert.True(t, topology.Sha1)
	assert.Equal(t, 4, topology.Backends.LRU.Size)
	assert.Equal(t, "eu-west-1", topology.Backends.S3.Region)
	require.Len(t, topology.Backends.S3.Credentials, 2)
	assert.Equal(t, "blobs", topology.Backends.S3.Credentials[0].Profile)
	assert.True(t, topology.Backends.S3.Credentials[1].Anonymous)

	require.NotNil(t, topology.Cache)
	assert.True(t, topology.Cache.read())
	require.Len(t, topology.Sources, 2)
	assert.True(t, topology.Sources[0].CacheResult)
	assert.Equal(t, TypeGitHub, topology.Sources[1].Type)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		document string
		err      string
	}{
		{
			name:     "empty",
			document: "",
			err:      "no sources",
		},
		{
			name:     "unknown field",
			document: "sources:\n  - type: raw\n    location: \"mem:\"\n    colour: blue\n",
			err:      "field colour not found",
		},
		{
			name:     "unknown layer type",
			document: "sources:\n  - type: ftp\n    location: ftp://host/\n",
			err:      "unknown layer type",
		},
		{
			name:     "missing location",
			document: "sources:\n  - type: sha1\n",
			err:      "requires a location",
		},
		{
			name:     "github without repo",
			document: "sources:\n  - type: github\n    owner: owner\n",
			err:      "owner and repo",
		},
		{
			name:     "github cache",
			document: "cache:\n  type: github\n  owner: owner\n  repo: repo\n",
			err:      "read-only",
		},
		{
			name:     "cache_result on cache",
			document: "cache:\n  type: raw\n  location: \"mem:\"\n  cache_result: true\n",
			err:      "cache_result",
		},
		{
			name:     "raw source sharing the raw cache backend",
			document: "cache:\n  type: raw\n  location: \"mem:\"\nsources:\n  - type: raw\n    location: \"MEM:\"\n    cache_result: true\n",
			err:      "share the \"mem\" backend",
		},
		{
			name:     "github results into an unverified cache",
			document: "sha1: true\ncache:\n  type: sha1\n  location: \"lru:\"\nsources:\n  - type: github\n    owner: owner\n    repo: repo\n    cache_result: true\n",
			err:      "requires a verifying sha1 cache",
		},
		{
			name:     "github results into a raw cache",
			document: "cache:\n  type: raw\n  location: \"lru:\"\n  verify: true\nsources:\n  - type: github\n    owner: owner\n    repo: repo\n    cache_result: true\n",
			err:      "requires a verifying sha1 cache",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.document))
			assert.ErrorContains(t, err, tt.err)
		})
	}
}

func TestParse_WriteBackCombinations(t *testing.T) {
	documents := []string{
		// Distinct backends.
		"cache:\n  type: raw\n  location: \"lru:\"\nsources:\n  - type: raw\n    location: \"mem:\"\n    cache_result: true\n",
		// Sharing a backend is fine without write-back.
		"cache:\n  type: raw\n  location: \"mem:\"\nsources:\n  - type: raw\n    location: \"mem:\"\n",
		// sha1 layers wrap the shared backend in their own store.
		"sha1: true\ncache:\n  type: sha1\n  location: \"mem:cache/\"\nsources:\n  - type: sha1\n    location: \"mem:blobs/\"\n    cache_result: true\n",
		"sha1: true\ncache:\n  type: sha1\n  location: \"lru:\"\n  verify: true\nsources:\n  - type: github\n    owner: owner\n    repo: repo\n    cache_result: true\n",
		// Without a cache cache_result has no effect.
		"sources:\n  - type: github\n    owner: owner\n    repo: repo\n    cache_result: true\n",
	}
	for _, document := range documents {
		_, err := Parse(strings.NewReader(document))
		assert.NoError(t, err, document)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bitstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sha1Topology), 0644))

	topology, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, topology.Sources, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestBuild_Sha1(t *testing.T) {
	ctx := context.Background()
	topology, err := Parse(strings.NewReader(sha1Topology))
	require.NoError(t, err)

	factory := storage.NewFactory(topology.Backends, afero.NewMemMapFs(), testLogger())
	store, err := topology.Build(factory, testLogger())
	require.NoError(t, err)

	composite, ok := store.(*sha1store.Composite)
	require.True(t, ok)
	assert.Equal(t, "sha1-composite", composite.Name())
	// The readable cache is consulted first, then the two sources.
	require.Len(t, composite.Sources(), 3)
	assert.Same(t, composite.Cache(), composite.Sources()[0])

	mem, err := factory.StoreFor("mem:")
	require.NoError(t, err)
	require.NoError(t, storage.Put(ctx, mem, "mem:blobs/"+knownSha1, []byte(knownData)))

	data, err := store.Get(ctx, "sha1://"+strings.ToUpper(knownSha1))
	require.NoError(t, err)
	assert.Equal(t, []byte(knownData), data)

	lru, err := factory.StoreFor("lru:")
	require.NoError(t, err)
	cached, err := lru.Get(ctx, "lru:"+knownSha1)
	require.NoError(t, err)
	assert.Equal(t, []byte(knownData), cached)

	_, err = store.Get(ctx, "not-a-sha1")
	assert.ErrorIs(t, err, interfaces.ErrInvalidURI)
}

func TestBuild_Raw(t *testing.T) {
	ctx := context.Background()
	topology, err := Parse(strings.NewReader(`
sources:
  - type: raw
    location: "file:///srv/blobs/"
    cache_result: true
cache:
  type: raw
  location: "mem:"
  read: false
`))
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/blobs/one", []byte("1"), 0644))

	factory := storage.NewFactory(topology.Backends, fs, testLogger())
	store, err := topology.Build(factory, testLogger())
	require.NoError(t, err)

	composite, ok := store.(*storage.Composite)
	require.True(t, ok)
	require.Len(t, composite.Sources(), 1, "an unread cache is not a source")

	data, err := store.Get(ctx, "file:///srv/blobs/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), data)

	mem, err := factory.StoreFor("mem:")
	require.NoError(t, err)
	cached, err := mem.Get(ctx, "file:///srv/blobs/one")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), cached)

	_, err = store.Get(ctx, "file:///srv/blobs/two")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)
}

func TestBuild_UnsupportedScheme(t *testing.T) {
	topology := &Topology{Sources: []Layer{{Type: TypeRaw, Location: "ftp://host/"}}}
	_, err := topology.Build(storage.NewFactory(storage.BackendsConfig{}, nil, testLogger()), testLogger())
	assert.ErrorContains(t, err, "unsupported backend scheme")
}
