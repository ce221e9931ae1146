// Package cache stores small byte payloads between runs.
//
// srcfetch uses it to remember the output of "mvn dependency:list" for a
// given pom.xml, so repeated runs against an unchanged descriptor skip
// re-parsing the tool's output. Source archives themselves are never cached
// here; they live in the Maven repository.
//
// Two implementations are provided:
//   - [FileCache]: JSON entry files under a directory, with expiry
//   - [NullCache]: stores nothing, used with --no-cache
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Cache is a key/value store with per-entry TTL.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and true on a hit. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// GetJSON reads key and decodes it into v.
// Undecodable entries are treated as misses.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
