// Package redis implements db.Store on top of rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/vecgate/internal/db"
)

var _ db.Store = (*Store)(nil)

// DefaultDialTimeout bounds connection setup when Config leaves it zero.
const DefaultDialTimeout = 2 * time.Second

// Config holds connection parameters.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	DialTimeout time.Duration
	// ClientName is sent with CLIENT SETNAME so the gateway shows up in CLIENT LIST.
	ClientName string
}

func (c Config) clientOption() rueidis.ClientOption {
	dial := c.DialTimeout
	if dial <= 0 {
		dial = DefaultDialTimeout
	}
	return rueidis.ClientOption{
		InitAddress: c.Addrs,
		Username:    c.Username,
		Password:    c.Password,
		SelectDB:    c.DB,
		ClientName:  c.ClientName,
		Dialer:      net.Dialer{Timeout: dial},
		// Server-assisted client caching is pointless for write-once embeddings.
		DisableCache: true,
	}
}

// Store is a db.Store backed by one rueidis client.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis. rueidis dials eagerly, so an unreachable
// server fails here rather than on first use.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	client, err := rueidis.NewClient(cfg.clientOption())
	if err != nil {
		return nil, fmt.Errorf("redis: connect %v: %w", cfg.Addrs, err)
	}
	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.do(ctx, s.b().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}
