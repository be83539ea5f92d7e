package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for cache and limiter tests
type fakeClock struct {
	current time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.current }
func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

func TestCacheKey(t *testing.T) {
	type params struct {
		PersonaID   uint    `json:"persona_id"`
		ContentType string  `json:"content_type"`
		Backend     string  `json:"backend"`
		Temperature float64 `json:"temperature"`
	}

	key1, err := CacheKey(params{PersonaID: 1, ContentType: "tweet", Backend: "openai", Temperature: 0.7})
	require.NoError(t, err)
	key2, err := CacheKey(params{PersonaID: 1, ContentType: "tweet", Backend: "openai", Temperature: 0.7})
	require.NoError(t, err)
	key3, err := CacheKey(params{PersonaID: 1, ContentType: "tweet", Backend: "anthropic", Temperature: 0.7})
	require.NoError(t, err)

	// Identical parameters hash identically; changing the backend changes the key
	assert.Equal(t, key1, key2)
	assert.NotEqual(t, key1, key3)
	assert.Len(t, key1, 64)
}

func TestMemoryGenerationCache(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	cache := NewMemoryGenerationCache(0, clock.Now)
	defer cache.Close()

	// Miss on empty cache
	payload, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// Set then hit
	err = cache.Set(ctx, "key1", []byte(`{"items":[]}`), time.Hour)
	require.NoError(t, err)

	payload, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"items":[]}`), payload)

	// Still live just before the TTL boundary
	clock.Advance(time.Hour - time.Second)
	payload, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.NotNil(t, payload)

	// Expired past the boundary
	clock.Advance(2 * time.Second)
	payload, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestMemoryGenerationCacheSweep(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	cache := NewMemoryGenerationCache(0, clock.Now)
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "old", []byte("a"), time.Minute))
	require.NoError(t, cache.Set(ctx, "fresh", []byte("b"), time.Hour))

	clock.Advance(2 * time.Minute)
	cache.sweep()

	assert.NotContains(t, cache.entries, "old")
	assert.Contains(t, cache.entries, "fresh")
}

func TestMemoryGenerationCacheRejectsZeroTTL(t *testing.T) {
	cache := NewMemoryGenerationCache(0, nil)
	defer cache.Close()

	err := cache.Set(context.Background(), "key", []byte("x"), 0)
	assert.Error(t, err)
}

func TestMemoryGenerationCacheDelete(t *testing.T) {
	ctx := context.Background()
	cache := NewMemoryGenerationCache(0, nil)
	defer cache.Close()

	require.NoError(t, cache.Set(ctx, "key", []byte("x"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "key"))

	payload, err := cache.Get(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestRedisGenerationCache(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	cache := NewRedisGenerationCache(client, "test:")
	ctx := context.Background()

	// Miss
	payload, err := cache.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// Set then hit, prefixed key stored in Redis
	err = cache.Set(ctx, "key1", []byte(`{"score":0.8}`), time.Hour)
	require.NoError(t, err)

	payload, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"score":0.8}`), payload)
	assert.True(t, server.Exists("test:key1"))

	// Redis expiry
	server.FastForward(2 * time.Hour)
	payload, err = cache.Get(ctx, "key1")
	require.NoError(t, err)
	assert.Nil(t, payload)

	// Delete
	require.NoError(t, cache.Set(ctx, "key2", []byte("x"), time.Hour))
	require.NoError(t, cache.Delete(ctx, "key2"))
	payload, err = cache.Get(ctx, "key2")
	require.NoError(t, err)
	assert.Nil(t, payload)
}
