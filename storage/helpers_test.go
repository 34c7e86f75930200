package storage

import (
	"context"
	"io"
	"log/slog"

	"github.com/ruteri/bitstore/interfaces"
	"github.com/stretchr/testify/mock"
	"go.uber.org/atomic"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// MockStore implements interfaces.WritableStore for testing
type MockStore struct {
	mock.Mock
	name string
}

func (m *MockStore) Name() string {
	return m.name
}

func (m *MockStore) IsValid(uri string) bool {
	args := m.Called(uri)
	return args.Bool(0)
}

func (m *MockStore) Get(ctx context.Context, uri string) ([]byte, error) {
	args := m.Called(ctx, uri)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStore) Put(ctx context.Context, uri string, data []byte) error {
	args := m.Called(ctx, uri, data)
	return args.Error(0)
}

// countingStore wraps a MemoryStore and counts backend calls.
type countingStore struct {
	*MemoryStore
	gets *atomic.Int64
	puts *atomic.Int64
}

func newCountingStore(prefix string, writable bool, initial map[string][]byte) *countingStore {
	return &countingStore{
		MemoryStore: NewMemoryStore(prefix, writable, initial),
		gets:        atomic.NewInt64(0),
		puts:        atomic.NewInt64(0),
	}
}

func (c *countingStore) Get(ctx context.Context, uri string) ([]byte, error) {
	c.gets.Inc()
	return c.MemoryStore.Get(ctx, uri)
}

func (c *countingStore) Put(ctx context.Context, uri string, data []byte) error {
	c.puts.Inc()
	return c.MemoryStore.Put(ctx, uri, data)
}

var _ interfaces.WritableStore = (*countingStore)(nil)
var _ interfaces.WritableStore = (*MockStore)(nil)
