/**
 * @description
 * Redis-backed cache.Store implementation.
 * Drop-in replacement for the in-process store when the dashboard runs more
 * than one replica; TTL and eviction are delegated to Redis itself.
 *
 * @dependencies
 * - github.com/redis/go-redis/v9
 *
 * @notes
 * - Entries are stored as a JSON envelope {value, etag} so the fingerprint
 *   survives alongside the payload.
 * - Backend failures degrade to a miss (Get) or a logged no-op (Set); the
 *   request path recomputes instead of failing.
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dexmark-project/backend/internal/logger"
	"github.com/redis/go-redis/v9"
)

type redisEnvelope struct {
	Value json.RawMessage `json:"value"`
	ETag  string          `json:"etag"`
}

// Redis is a cache.Store backed by a shared Redis instance
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an already-connected client
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Get implements cache.Store
func (r *Redis) Get(ctx context.Context, key string, dest interface{}) (string, bool) {
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Error("cache: redis get %s failed: %v", key, err)
		}
		return "", false
	}

	var env redisEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Error("cache: failed to decode redis entry for %s: %v", key, err)
		return "", false
	}
	if err := json.Unmarshal(env.Value, dest); err != nil {
		logger.Error("cache: failed to decode redis value for %s: %v", key, err)
		return "", false
	}
	return env.ETag, true
}

// Set implements cache.Store
func (r *Redis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration, etag string) {
	payload, err := json.Marshal(value)
	if err != nil {
		logger.Error("cache: failed to encode entry for %s: %v", key, err)
		return
	}

	raw, err := json.Marshal(redisEnvelope{Value: payload, ETag: etag})
	if err != nil {
		logger.Error("cache: failed to encode envelope for %s: %v", key, err)
		return
	}

	if err := r.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Error("cache: redis set %s failed: %v", key, err)
	}
}
