package storage

import (
	"context"
	"testing"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUStore_Eviction(t *testing.T) {
	ctx := context.Background()
	store, err := NewLRUStore("", 2, testLogger())
	require.NoError(t, err)
	assert.Equal(t, "lru-2", store.Name())

	require.NoError(t, store.Put(ctx, "a", []byte("A")))
	require.NoError(t, store.Put(ctx, "b", []byte("B")))

	// Touch a so that b is the least recently used entry.
	data, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("A"), data)

	require.NoError(t, store.Put(ctx, "c", []byte("C")))
	assert.Equal(t, 2, store.Len())

	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, interfaces.ErrNotFound)

	for uri, want := range map[string]string{"a": "A", "c": "C"} {
		data, err := store.Get(ctx, uri)
		require.NoError(t, err)
		assert.Equal(t, []byte(want), data)
	}
}

func TestLRUStore_Prefix(t *testing.T) {
	store, err := NewLRUStore("key", 8, testLogger())
	require.NoError(t, err)

	assert.True(t, store.IsValid("key:a"))
	assert.False(t, store.IsValid("a"))

	err = store.Put(context.Background(), "a", []byte("A"))
	assert.ErrorIs(t, err, interfaces.ErrInvalidURI)
}

func TestLRUStore_InvalidSize(t *testing.T) {
	_, err := NewLRUStore("", 0, testLogger())
	assert.Error(t, err)
}
