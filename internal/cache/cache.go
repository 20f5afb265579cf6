package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/RishiKendai/codesim/internal/metrics"
	"github.com/RishiKendai/codesim/internal/plagiarism"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const keyPrefix = "codesim:result:"

// Store is the subset of the Redis client the cache needs
type Store interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ResultCache memoizes pair comparison results in Redis. Every metric is
// symmetric, so the key does not depend on argument order.
type ResultCache struct {
	store Store
	ttl   time.Duration
	group singleflight.Group
}

func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	return &ResultCache{
		store: store,
		ttl:   ttl,
	}
}

// GetOrCompute returns the cached result for the pair or computes and stores
// it. Concurrent calls for the same pair share one computation. The bool
// reports a cache hit.
func (c *ResultCache) GetOrCompute(
	ctx context.Context,
	language, a, b string,
	computeFn func() (*plagiarism.Result, error),
) (*plagiarism.Result, bool, error) {
	key := BuildKey(language, a, b)

	if result, ok := c.get(ctx, key); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return result, true, nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}

	return v.(*plagiarism.Result), false, nil
}

func (c *ResultCache) get(ctx context.Context, key string) (*plagiarism.Result, bool) {
	data, err := c.store.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Result cache get failed")
		return nil, false
	}

	var result plagiarism.Result
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Result cache unmarshal failed")
		return nil, false
	}

	return &result, true
}

func (c *ResultCache) set(ctx context.Context, key string, result *plagiarism.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Result cache marshal failed")
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Result cache set failed")
	}
}

// BuildKey hashes each source separately and orders the digests so that
// (a, b) and (b, a) share a key.
func BuildKey(language, a, b string) string {
	hashA := digest(a)
	hashB := digest(b)
	if hashB < hashA {
		hashA, hashB = hashB, hashA
	}

	combined := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(language)) + ":" + hashA + ":" + hashB))
	return keyPrefix + hex.EncodeToString(combined[:16])
}

func digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
