package storage

import (
	"context"
	"testing"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_StoreFor(t *testing.T) {
	factory := NewFactory(BackendsConfig{
		Vault: VaultConfig{Address: "http://127.0.0.1:8200"},
		IPFS:  IPFSConfig{API: "127.0.0.1:5001"},
		LRU:   LRUConfig{Size: 16},
	}, afero.NewMemMapFs(), testLogger())

	tests := []struct {
		location string
		name     string
	}{
		{"s3://bucket/blobs/", "s3"},
		{"gs://bucket/blobs/", "gcs"},
		{"file:///var/cache/", "file"},
		{"vault://secret/blobs/", "vault"},
		{"ipfs://", "ipfs-127.0.0.1:5001"},
		{"mem:", "memory"},
		{"lru:", "lru-16"},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			store, err := factory.StoreFor(tt.location)
			require.NoError(t, err)
			assert.Equal(t, tt.name, store.Name())
		})
	}
}

func TestFactory_SharesStorePerScheme(t *testing.T) {
	factory := NewFactory(BackendsConfig{}, afero.NewMemMapFs(), testLogger())

	first, err := factory.StoreFor("s3://bucket-a/")
	require.NoError(t, err)
	second, err := factory.StoreFor("S3://bucket-b/prefix/")
	require.NoError(t, err)
	assert.Same(t, first.(*S3Store), second.(*S3Store))

	mem, err := factory.StoreFor("mem:")
	require.NoError(t, err)
	require.NoError(t, Put(context.Background(), mem, "blob", []byte("x")))

	again, err := factory.StoreFor("mem:")
	require.NoError(t, err)
	data, err := again.Get(context.Background(), "blob")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), data)
}

func TestFactory_Errors(t *testing.T) {
	factory := NewFactory(BackendsConfig{}, nil, testLogger())

	_, err := factory.StoreFor("ftp://host/blob")
	assert.ErrorContains(t, err, "unsupported backend scheme")

	_, err = factory.StoreFor("://broken")
	assert.ErrorIs(t, err, interfaces.ErrInvalidURI)
}

func TestIPFSStore_IsValid(t *testing.T) {
	store := NewIPFSStore(IPFSConfig{}, testLogger())
	assert.Equal(t, "ipfs-localhost:5001", store.Name())

	assert.True(t, store.IsValid("ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"))
	assert.True(t, store.IsValid("ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG/readme"))
	assert.False(t, store.IsValid("ipfs://"))
	assert.False(t, store.IsValid("ipns://example.com"))

	_, ok := interface{}(store).(interfaces.WritableStore)
	assert.False(t, ok, "ipfs store is read-only")
}

func TestGCSStore_IsValid(t *testing.T) {
	store := NewGCSStore(GCSConfig{Anonymous: true}, testLogger())
	assert.Equal(t, "gcs", store.Name())

	assert.True(t, store.IsValid("gs://bucket/key"))
	assert.False(t, store.IsValid("gs://bucket/"))
	assert.False(t, store.IsValid("s3://bucket/key"))
}

func TestScheme(t *testing.T) {
	for location, want := range map[string]string{
		"S3://bucket/":  "s3",
		"mem:":          "mem",
		"mem:blobs/":    "mem",
		"file:///srv/":  "file",
		"no-scheme/key": "",
	} {
		scheme, err := Scheme(location)
		require.NoError(t, err, location)
		assert.Equal(t, want, scheme, location)
	}

	_, err := Scheme("://broken")
	assert.ErrorIs(t, err, interfaces.ErrInvalidURI)
}

func TestGCSStore_CancelledFirstRequest(t *testing.T) {
	store := NewGCSStore(GCSConfig{Anonymous: true}, testLogger())

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	client := store.gcsClient(cancelled)
	require.NotNil(t, client)
	assert.Same(t, client, store.gcsClient(context.Background()))
}
