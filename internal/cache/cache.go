// Package cache stores rendered responses for a limited time. Entries live
// in an in-memory LRU and, when a path is configured, in a SQLite file that
// survives restarts.
package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Store is a TTL cache of opaque byte values.
type Store interface {
	// Get returns the value for key and whether it was present and fresh.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Close() error
}

// Key derives a cache key from parts: the hex MD5 of the length-prefixed
// parts, so no two part lists share an encoding.
func Key(parts ...string) string {
	h := md5.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:%s", len(p), p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
