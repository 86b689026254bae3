// Package budget persists embedding token counters in the shared key-value store.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/vecgate/internal/db"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Counter lifetimes outlast their window so a late reader still sees the total.
const (
	DefaultDailyTTL   = 48 * time.Hour
	DefaultMonthlyTTL = 62 * 24 * time.Hour
)

// Store keeps one integer counter per budget window key, e.g.
// vecgate:budget:openai:daily:2026-03-07. Keys expire on their own.
type Store struct {
	kv   kv
	ttls map[string]time.Duration
}

// New creates a budget store. Zero TTLs fall back to the defaults.
func New(s kv, dailyTTL, monthlyTTL time.Duration) *Store {
	if dailyTTL <= 0 {
		dailyTTL = DefaultDailyTTL
	}
	if monthlyTTL <= 0 {
		monthlyTTL = DefaultMonthlyTTL
	}
	return &Store{
		kv:   s,
		ttls: map[string]time.Duration{"daily": dailyTTL, "monthly": monthlyTTL},
	}
}

// IncrBy adds val to the counter and arms its expiry on first write.
func (s *Store) IncrBy(ctx context.Context, key string, val int64) error {
	if err := s.kv.IncrBy(ctx, key, val); err != nil {
		return fmt.Errorf("budget incr %s: %w", key, err)
	}
	// NX: later increments must not push the expiry out.
	if err := s.kv.Expire(ctx, key, s.ttlFor(key), true); err != nil {
		return fmt.Errorf("budget expire %s: %w", key, err)
	}
	return nil
}

// Get returns the counter, 0 when the key does not exist yet.
func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	data, err := s.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("budget get %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget get %s: %w", key, err)
	}
	return val, nil
}

// ttlFor reads the window name, the second to last key segment.
// Unknown shapes get the longer monthly lifetime.
func (s *Store) ttlFor(key string) time.Duration {
	parts := strings.Split(key, ":")
	if len(parts) >= 2 {
		if ttl, ok := s.ttls[parts[len(parts)-2]]; ok {
			return ttl
		}
	}
	return s.ttls["monthly"]
}
