// Package db defines the key-value store contract shared by the embedding
// cache and the token budget.
package db

import (
	"context"
	"time"
)

// Store is a key-value store with a connectivity check.
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	// MGet returns one entry per key in order; missing keys yield nil.
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	IncrBy(ctx context.Context, key string, val int64) error
	// Expire sets a key's TTL. With nx it only applies to keys without one.
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
	Close()
}
