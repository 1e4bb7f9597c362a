// Package cache stores rendered flow artifacts under content-addressed keys.
//
// Three backends implement [Cache]:
//
//   - [NewFileCache] keeps entries as JSON files, for the CLI
//   - [NewRedisCache] shares entries between server instances
//   - [NewNullCache] disables caching
//
// Keys come from a [Keyer]. Every key embeds a hash of everything the cached
// value depends on, so entries never need invalidation; TTLs only bound disk
// and memory use.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with expiration.
type Cache interface {
	// Get returns the value for key and whether it was found. A miss is not
	// an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Default TTLs per artifact kind.
const (
	LayoutTTL = 7 * 24 * time.Hour
	RenderTTL = 7 * 24 * time.Hour
	ReduceTTL = 24 * time.Hour
)
