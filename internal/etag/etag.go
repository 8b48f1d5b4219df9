/**
 * @description
 * Content fingerprinting for cache validators.
 * Produces a deterministic hex digest of any JSON-serializable value, used both
 * as the cache entry version tag and as the HTTP ETag.
 *
 * @dependencies
 * - standard "crypto/sha1"
 * - standard "encoding/json"
 *
 * @notes
 * - encoding/json is deterministic for a given value (struct field order, sorted
 *   map keys), so equal values always produce equal tags.
 * - SHA-1 is fine here: collision resistance only guards change detection, not
 *   any security property.
 */

package etag

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
)

// For returns the fingerprint of v. Strings are hashed as-is so callers can
// fingerprint pre-serialized payloads without double encoding.
func For(v interface{}) string {
	var raw []byte
	switch s := v.(type) {
	case string:
		raw = []byte(s)
	default:
		// Marshal errors are impossible for the value shapes this service
		// fingerprints (no channels, funcs or cycles); hash the empty payload
		// rather than propagating an error nobody can handle.
		raw, _ = json.Marshal(v)
	}

	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:])
}
