package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	sharedcache "github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/redis/go-redis/v9"
)

// Cache TTL and key prefix for read-through queries
const (
	DefaultQueryTTL = 5 * time.Minute
	KeyPrefix       = "trocas:returns:"
)

// QueryCache is a read-through cache keyed by query parameters.
// Writers must call Invalidate after every successful mutation.
type QueryCache interface {
	GetOrLoad(ctx context.Context, key string, dst any, ttl time.Duration, loader func() (any, error)) error
	Invalidate(ctx context.Context, keys ...string)
	InvalidatePrefix(ctx context.Context, prefix string)
	Health(ctx context.Context) error
	Stats() *sharedcache.CacheStats
}

// Key builders shared by repositories and services
func StoreListKey(ownerID string) string {
	return fmt.Sprintf("stores:%s", ownerID)
}

func SettingsKey(storeID fmt.Stringer) string {
	return fmt.Sprintf("settings:%s", storeID.String())
}

func ReturnRequestKey(id fmt.Stringer) string {
	return fmt.Sprintf("return:%s", id.String())
}

func ReturnListKey(storeID fmt.Stringer, status string) string {
	if status == "" {
		status = "all"
	}
	return fmt.Sprintf("returns:%s:%s", storeID.String(), status)
}

func ReturnListPrefix(storeID fmt.Stringer) string {
	return fmt.Sprintf("returns:%s:", storeID.String())
}

func OwnerReturnListKey(ownerID string) string {
	return fmt.Sprintf("returns:owner:%s", ownerID)
}

func DashboardKey(ownerID, storeID string) string {
	if storeID == "" {
		storeID = "all"
	}
	return fmt.Sprintf("dashboard:%s:%s", ownerID, storeID)
}

func DashboardPrefix(ownerID string) string {
	return fmt.Sprintf("dashboard:%s:", ownerID)
}

type redisQueryCache struct {
	redis *redis.Client
	layer *sharedcache.CacheLayer
}

// NewQueryCache returns a Redis-backed cache, or a pass-through cache when redisClient is nil
func NewQueryCache(redisClient *redis.Client, ttl time.Duration) QueryCache {
	if redisClient == nil {
		return NoopCache{}
	}
	if ttl <= 0 {
		ttl = DefaultQueryTTL
	}

	cacheConfig := sharedcache.CacheConfig{
		L1Enabled:  true,
		L1MaxItems: 2000,
		L1TTL:      30 * time.Second,
		DefaultTTL: ttl,
		KeyPrefix:  KeyPrefix,
	}

	return &redisQueryCache{
		redis: redisClient,
		layer: sharedcache.NewCacheLayerFromClient(redisClient, cacheConfig),
	}
}

func (c *redisQueryCache) GetOrLoad(ctx context.Context, key string, dst any, ttl time.Duration, loader func() (any, error)) error {
	var loadErr error
	err := c.layer.GetOrSetJSON(ctx, key, dst, ttl, func() (any, error) {
		value, err := loader()
		loadErr = err
		return value, err
	})
	if loadErr != nil {
		return loadErr
	}
	if err == nil {
		return nil
	}

	// Cache failures must not fail reads; fall back to the loader
	log.Printf("[QueryCache] cache read failed for %s: %v", key, err)
	return loadInto(dst, loader)
}

func (c *redisQueryCache) Invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		if err := c.layer.Delete(ctx, key); err != nil {
			log.Printf("[QueryCache] failed to invalidate %s: %v", key, err)
		}
	}
}

func (c *redisQueryCache) InvalidatePrefix(ctx context.Context, prefix string) {
	if err := c.layer.DeletePattern(ctx, prefix+"*"); err != nil {
		log.Printf("[QueryCache] failed to invalidate prefix %s: %v", prefix, err)
	}
}

func (c *redisQueryCache) Health(ctx context.Context) error {
	return c.redis.Ping(ctx).Err()
}

func (c *redisQueryCache) Stats() *sharedcache.CacheStats {
	stats := c.layer.Stats()
	return &stats
}

// NoopCache always calls the loader
type NoopCache struct{}

func (NoopCache) GetOrLoad(_ context.Context, _ string, dst any, _ time.Duration, loader func() (any, error)) error {
	return loadInto(dst, loader)
}

func (NoopCache) Invalidate(context.Context, ...string) {}

func (NoopCache) InvalidatePrefix(context.Context, string) {}

func (NoopCache) Health(context.Context) error {
	return fmt.Errorf("redis not configured")
}

func (NoopCache) Stats() *sharedcache.CacheStats {
	return nil
}

// loadInto runs the loader and copies its result into dst through JSON,
// matching what a cache hit would produce.
func loadInto(dst any, loader func() (any, error)) error {
	value, err := loader()
	if err != nil {
		return err
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cached value: %w", err)
	}
	return json.Unmarshal(data, dst)
}
