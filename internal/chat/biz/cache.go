package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"
)

// AnswerCacheConfig configures the answer cache.
type AnswerCacheConfig struct {
	// Enabled toggles the cache.
	Enabled bool
	// TTL is how long a cached answer lives.
	TTL time.Duration
	// KeyPrefix namespaces the cache keys.
	KeyPrefix string
}

// AnswerCache caches generated answers by question in Redis. Identical
// questions across conversations reuse the same grounded answer, which
// is safe because the corpus is immutable for the process lifetime.
type AnswerCache struct {
	redis  *goredis.Client
	config *AnswerCacheConfig
}

// NewAnswerCache creates an answer cache.
func NewAnswerCache(redis *goredis.Client, config *AnswerCacheConfig) *AnswerCache {
	if config == nil {
		config = &AnswerCacheConfig{
			Enabled:   false,
			TTL:       1 * time.Hour,
			KeyPrefix: "kouzina:answer:",
		}
	}
	return &AnswerCache{
		redis:  redis,
		config: config,
	}
}

func (c *AnswerCache) cacheKey(question string) string {
	hash := sha256.Sum256([]byte(question))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached answer for a question, or "" on a miss. A
// disabled cache always misses.
func (c *AnswerCache) Get(ctx context.Context, question string) (string, bool) {
	if !c.config.Enabled || c.redis == nil {
		return "", false
	}

	key := c.cacheKey(question)
	answer, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("failed to read answer cache", "error", err.Error(), "key", key)
		}
		return "", false
	}

	logger.Debugw("answer cache hit", "key", key, "answer_length", len(answer))
	return answer, true
}

// Set stores an answer. Write failures are logged and swallowed, a cold
// cache never fails a request.
func (c *AnswerCache) Set(ctx context.Context, question, answer string) {
	if !c.config.Enabled || c.redis == nil {
		return
	}

	key := c.cacheKey(question)
	if err := c.redis.Set(ctx, key, answer, c.config.TTL).Err(); err != nil {
		logger.Warnw("failed to write answer cache", "error", err.Error(), "key", key)
		return
	}
	logger.Debugw("answer cached", "key", key, "ttl", c.config.TTL)
}

// Stats reports cache state for the status endpoint.
func (c *AnswerCache) Stats(ctx context.Context) map[string]any {
	if !c.config.Enabled || c.redis == nil {
		return map[string]any{"enabled": false}
	}

	keyCount := 0
	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keyCount++
	}
	if err := iter.Err(); err != nil {
		logger.Warnw("error scanning answer cache", "error", err.Error())
	}

	return map[string]any{
		"enabled":    true,
		"key_count":  keyCount,
		"ttl":        c.config.TTL.String(),
		"key_prefix": c.config.KeyPrefix,
	}
}
