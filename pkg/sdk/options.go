package vecgate

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
)

// Engine drivers.
const (
	driverRPC    = "rpc"
	driverQdrant = "qdrant"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	driver      string // "rpc" or "qdrant"
	host        string
	port        int
	target      string
	apiKey      string
	dialOptions []grpc.DialOption

	readyTimeout time.Duration
	rpcTimeout   time.Duration

	embedder Embedder

	maxBatchSize int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithEngine connects to a gRPC vector engine at host:port.
func WithEngine(host string, port int) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRPC
		c.host = host
		c.port = port
	})
}

// WithEngineTarget connects to a gRPC vector engine at an explicit target,
// e.g. "dns:///engine:50051" or a bufconn "passthrough:///" address.
// Extra dial options are appended after the defaults.
func WithEngineTarget(target string, opts ...grpc.DialOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRPC
		c.target = target
		c.dialOptions = opts
	})
}

// WithQdrant uses a Qdrant instance as the engine. Namespaces map to collections.
func WithQdrant(host string, port int, apiKey string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverQdrant
		c.host = host
		c.port = port
		c.apiKey = apiKey
	})
}

// WithReadyTimeout bounds how long Ping waits for the engine. Default: 2s.
func WithReadyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.readyTimeout = d
	})
}

// WithRPCTimeout bounds each engine call. Default: 10s.
func WithRPCTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.rpcTimeout = d
	})
}

// WithEmbedder sets the text embedding provider.
// Required for text input; vector input works without it.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithMaxBatchSize sets the maximum number of vectors per upsert.
// Default: unlimited.
func WithMaxBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBatchSize = size
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
