package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memStore) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return redis.NewStringResult("", m.getErr)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memStore) Set(_ context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func TestBuildKey(t *testing.T) {
	k1 := BuildKey("c", "int a;", "int b;")
	k2 := BuildKey("C ", "int b;", "int a;")

	assert.Equal(t, k1, k2)
	assert.True(t, strings.HasPrefix(k1, keyPrefix))
	assert.NotEqual(t, k1, BuildKey("java", "int a;", "int b;"))
	assert.NotEqual(t, k1, BuildKey("c", "int a;", "int c;"))
}

func TestGetOrCompute(t *testing.T) {
	store := newMemStore()
	c := NewResultCache(store, time.Minute)
	ctx := context.Background()

	var calls atomic.Int32
	compute := func() (*plagiarism.Result, error) {
		calls.Add(1)
		return plagiarism.Compare("int a = 1;", "int b = 2;")
	}

	first, hit, err := c.GetOrCompute(ctx, "c", "int a = 1;", "int b = 2;", compute)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := c.GetOrCompute(ctx, "c", "int b = 2;", "int a = 1;", compute)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())

	key := BuildKey("c", "int a = 1;", "int b = 2;")
	assert.Equal(t, time.Minute, store.ttls[key])
}

func TestGetOrComputeDoesNotCacheErrors(t *testing.T) {
	store := newMemStore()
	c := NewResultCache(store, time.Minute)
	cause := errors.New("boom")

	_, _, err := c.GetOrCompute(context.Background(), "c", "a", "b", func() (*plagiarism.Result, error) {
		return nil, cause
	})
	assert.ErrorIs(t, err, cause)
	assert.Empty(t, store.data)
}

func TestGetOrComputeFallsBackOnStoreErrors(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("connection refused")
	c := NewResultCache(store, time.Minute)

	result, hit, err := c.GetOrCompute(context.Background(), "c", "a", "b", func() (*plagiarism.Result, error) {
		return &plagiarism.Result{Overall: 0.5, Level: plagiarism.LevelLow}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, plagiarism.LevelLow, result.Level)
}

func TestGetOrComputeIgnoresCorruptEntries(t *testing.T) {
	store := newMemStore()
	store.data[BuildKey("c", "a", "b")] = "{not json"
	c := NewResultCache(store, time.Minute)

	_, hit, err := c.GetOrCompute(context.Background(), "c", "a", "b", func() (*plagiarism.Result, error) {
		return &plagiarism.Result{}, nil
	})
	require.NoError(t, err)
	assert.False(t, hit)
}
