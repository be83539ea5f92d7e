package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GenerationCache stores serialized generation results keyed by request hash.
// Get returns nil with no error on a miss or an expired entry.
type GenerationCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// CacheKey derives a stable key from the full request parameters.
// Marshaling a struct yields deterministic field order, so identical
// parameter sets always hash to the same key.
func CacheKey(params any) (string, error) {
	payload, err := json.Marshal(params)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryGenerationCache is an in-process cache with passive expiry on
// read and a periodic sweep. The clock is injectable for tests.
type MemoryGenerationCache struct {
	mu      sync.RWMutex
	entries map[string]memoryCacheEntry
	now     func() time.Time
	done    chan struct{}
	closed  sync.Once
}

// NewMemoryGenerationCache creates a memory cache sweeping at the given interval.
// A zero interval disables the background sweep.
func NewMemoryGenerationCache(sweepInterval time.Duration, now func() time.Time) *MemoryGenerationCache {
	if now == nil {
		now = time.Now
	}
	c := &MemoryGenerationCache{
		entries: make(map[string]memoryCacheEntry),
		now:     now,
		done:    make(chan struct{}),
	}
	if sweepInterval > 0 {
		go c.sweepLoop(sweepInterval)
	}
	return c
}

func (c *MemoryGenerationCache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.done:
			return
		}
	}
}

func (c *MemoryGenerationCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// Get returns the cached payload or nil when absent or expired
func (c *MemoryGenerationCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.RLock()
	entry, found := c.entries[key]
	c.mu.RUnlock()
	if !found {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	return entry.payload, nil
}

// Set stores a payload under key for ttl
func (c *MemoryGenerationCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = memoryCacheEntry{
		payload:   payload,
		expiresAt: c.now().Add(ttl),
	}
	return nil
}

// Delete removes a key if present
func (c *MemoryGenerationCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Close stops the background sweep
func (c *MemoryGenerationCache) Close() error {
	c.closed.Do(func() { close(c.done) })
	return nil
}

// RedisGenerationCache backs the cache with Redis so results survive
// restarts and are shared across instances.
type RedisGenerationCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisGenerationCache creates a Redis-backed cache
func NewRedisGenerationCache(client redis.UniversalClient, keyPrefix string) *RedisGenerationCache {
	if keyPrefix == "" {
		keyPrefix = "gencache:"
	}
	return &RedisGenerationCache{client: client, keyPrefix: keyPrefix}
}

// Get returns the cached payload or nil when absent. Redis owns expiry.
func (c *RedisGenerationCache) Get(ctx context.Context, key string) ([]byte, error) {
	payload, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return payload, nil
}

// Set stores a payload under key for ttl
func (c *RedisGenerationCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	return c.client.Set(ctx, c.keyPrefix+key, payload, ttl).Err()
}

// Delete removes a key if present
func (c *RedisGenerationCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.keyPrefix+key).Err()
}

// Close releases the underlying client
func (c *RedisGenerationCache) Close() error {
	return c.client.Close()
}
