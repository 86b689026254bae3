// Package rpc is the engine driver that speaks vector_service.VectorService over gRPC.
package rpc

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/vecgate/internal/engine"
	"github.com/kailas-cloud/vecgate/internal/engine/rpc/enginepb"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultReadyTimeout = 2 * time.Second
	DefaultRPCTimeout   = 10 * time.Second
)

// Config holds connection settings.
type Config struct {
	Host string
	Port int
	// Target overrides Host:Port, e.g. "passthrough:///bufnet" in tests.
	Target       string
	ReadyTimeout time.Duration
	RPCTimeout   time.Duration
	DialOptions  []grpc.DialOption
	Logger       *zap.Logger
}

// Client is an engine.Engine backed by a single gRPC channel.
type Client struct {
	conn         *grpc.ClientConn
	stub         enginepb.VectorServiceClient
	target       string
	readyTimeout time.Duration
	rpcTimeout   time.Duration
	logger       *zap.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ engine.Engine = (*Client)(nil)

// Dial creates the channel. No network I/O happens until the first call or Ping.
func Dial(cfg Config) (*Client, error) {
	target := cfg.Target
	if target == "" {
		target = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	}
	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = DefaultReadyTimeout
	}
	rpcTimeout := cfg.RPCTimeout
	if rpcTimeout <= 0 {
		rpcTimeout = DefaultRPCTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, cfg.DialOptions...)

	conn, err := grpc.NewClient(target, opts...)
	if err != nil {
		return nil, fmt.Errorf("dial engine %s: %w", target, err)
	}

	logger.Info("Engine channel created", zap.String("target", target))
	return &Client{
		conn:         conn,
		stub:         enginepb.NewVectorServiceClient(conn),
		target:       target,
		readyTimeout: readyTimeout,
		rpcTimeout:   rpcTimeout,
		logger:       logger,
	}, nil
}

// Ping waits until the channel is READY, bounded by the ready timeout.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.readyTimeout)
	defer cancel()

	c.conn.Connect()
	for {
		state := c.conn.GetState()
		switch state {
		case connectivity.Ready:
			return nil
		case connectivity.Shutdown:
			return status.Error(codes.Unavailable, "engine connection closed")
		}
		if !c.conn.WaitForStateChange(ctx, state) {
			return status.Errorf(codes.Unavailable,
				"engine %s not ready within %s", c.target, c.readyTimeout)
		}
	}
}

// Upsert sends every vector in one UpsertRequest.
func (c *Client) Upsert(ctx context.Context, namespace string, vectors []engine.Vector) (int, error) {
	req := &enginepb.UpsertRequest{
		Namespace: namespace,
		Vectors:   make([]*enginepb.Vector, len(vectors)),
	}
	for i, v := range vectors {
		req.Vectors[i] = &enginepb.Vector{Id: v.ID, Values: v.Values, Metadata: v.Metadata}
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	resp, err := c.stub.Upsert(ctx, req)
	if err != nil {
		return 0, fmt.Errorf("engine upsert: %w", err)
	}
	return int(resp.UpsertedCount), nil
}

// Query runs one similarity search.
func (c *Client) Query(ctx context.Context, q engine.Query) ([]engine.Match, error) {
	req := &enginepb.QueryRequest{
		Namespace:       q.Namespace,
		Vector:          q.Vector,
		TopK:            int32(q.TopK), //nolint:gosec // top_k is validated to [1,100]
		IncludeValues:   q.IncludeValues,
		IncludeMetadata: q.IncludeMetadata,
	}

	ctx, cancel := context.WithTimeout(ctx, c.rpcTimeout)
	defer cancel()

	resp, err := c.stub.Query(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("engine query: %w", err)
	}

	matches := make([]engine.Match, len(resp.Matches))
	for i, m := range resp.Matches {
		matches[i] = engine.Match{
			ID:       m.Id,
			Score:    m.Score,
			Values:   m.Values,
			Metadata: m.Metadata,
		}
	}
	return matches, nil
}

// Close shuts the channel down once.
func (c *Client) Close() error {
	c.closeOnce.Do(func() {
		c.logger.Info("Closing engine channel", zap.String("target", c.target))
		if err := c.conn.Close(); err != nil {
			c.closeErr = fmt.Errorf("close engine channel: %w", err)
		}
	})
	return c.closeErr
}
