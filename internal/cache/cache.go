/**
 * @description
 * Memoization layer for expensive per-run aggregates.
 * Defines the Store interface shared by the in-process and Redis-backed
 * implementations, plus the deterministic composite key builder.
 *
 * @dependencies
 * - standard "context", "sort", "strings", "time"
 *
 * @notes
 * - Entries pair a JSON payload with its content fingerprint so a cache hit can
 *   reuse the fingerprint without re-hashing the value.
 * - Stores never return errors: a broken backend reads as a miss and writes as
 *   a logged no-op, so the request path stays correct with a flapping cache.
 */

package cache

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Store memoizes JSON-serializable values under string keys with a TTL.
type Store interface {
	// Get unmarshals the cached value for key into dest and returns its
	// fingerprint. ok is false on miss, expiry, or backend failure.
	Get(ctx context.Context, key string, dest interface{}) (etag string, ok bool)

	// Set stores value under key for ttl, tagged with its fingerprint.
	// Overwrites any existing entry and re-arms the TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration, etag string)
}

// MakeKey builds a deterministic composite key from a namespace and a set of
// parameters. Empty values are dropped and the rest are sorted by name, so
// parameter order never affects the key.
func MakeKey(namespace string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k, v := range params {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	return namespace + ":" + strings.Join(pairs, "&")
}
