package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/kailas-cloud/vecgate/internal/config"
	dbRedis "github.com/kailas-cloud/vecgate/internal/db/redis"
	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/engine"
	"github.com/kailas-cloud/vecgate/internal/engine/qdrant"
	"github.com/kailas-cloud/vecgate/internal/engine/rpc"
	"github.com/kailas-cloud/vecgate/internal/lazy"
	"github.com/kailas-cloud/vecgate/internal/metrics"
	budgetrepo "github.com/kailas-cloud/vecgate/internal/repository/budget"
	"github.com/kailas-cloud/vecgate/internal/repository/embcache"
	"github.com/kailas-cloud/vecgate/internal/tracer"
	openaiEmb "github.com/kailas-cloud/vecgate/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/vecgate/internal/usecase/embedding"
)

var errCacheDisabled = errors.New("embedding cache disabled")

// newEngineHandle builds the engine connection on first use.
func newEngineHandle(cfg config.EngineConfig, logger *zap.Logger) *lazy.Handle[engine.Engine] {
	return lazy.New(func(context.Context) (engine.Engine, error) {
		var (
			inner engine.Engine
			err   error
		)
		switch cfg.Driver {
		case config.DriverQdrant:
			inner, err = qdrant.New(qdrant.Config{
				Host:         cfg.Host,
				Port:         cfg.Port,
				APIKey:       cfg.APIKey,
				UseTLS:       cfg.UseTLS,
				ReadyTimeout: cfg.ReadyTimeout(),
				Logger:       logger,
			})
		default:
			inner, err = rpc.Dial(rpc.Config{
				Host:         cfg.Host,
				Port:         cfg.Port,
				ReadyTimeout: cfg.ReadyTimeout(),
				RPCTimeout:   cfg.RPCTimeout(),
				DialOptions:  []grpc.DialOption{grpc.WithUnaryInterceptor(tracer.UnaryClientInterceptor())},
				Logger:       logger,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("connect %s engine: %w", cfg.Driver, err)
		}
		return engine.NewInstrumented(inner, cfg.Driver), nil
	}, func(e engine.Engine) error {
		return e.Close()
	})
}

// storeRetryBackoff spaces out reconnects to an unreachable cache so requests
// and readiness checks do not each pay a dial timeout.
const storeRetryBackoff = 5 * time.Second

// newStoreHandle builds the Redis client shared by the cache and the budget.
func newStoreHandle(cfg config.CacheConfig, logger *zap.Logger) *lazy.Handle[*dbRedis.Store] {
	return lazy.New(func(context.Context) (*dbRedis.Store, error) {
		if !cfg.Enabled() {
			return nil, errCacheDisabled
		}
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			ClientName: "vecgate",
		})
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Addrs))
		return store, nil
	}, func(s *dbRedis.Store) error {
		s.Close()
		return nil
	}).WithRetryBackoff(storeRetryBackoff)
}

// cacheStore resolves the shared Redis client on every call, so the cache and
// the budget counters resume once Redis is back after an outage.
type cacheStore struct {
	stores *lazy.Handle[*dbRedis.Store]
}

func (c cacheStore) Ping(ctx context.Context) error {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return err //nolint:wrapcheck // reported as a failed check only
	}
	return s.Ping(ctx) //nolint:wrapcheck // same
}

func (c cacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers log and treat it as a miss
	}
	return s.Get(ctx, key) //nolint:wrapcheck // same
}

func (c cacheStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return nil, err //nolint:wrapcheck // same
	}
	return s.MGet(ctx, keys) //nolint:wrapcheck // same
}

func (c cacheStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return err //nolint:wrapcheck // same
	}
	return s.SetWithTTL(ctx, key, value, ttl) //nolint:wrapcheck // same
}

func (c cacheStore) IncrBy(ctx context.Context, key string, val int64) error {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return err //nolint:wrapcheck // same
	}
	return s.IncrBy(ctx, key, val) //nolint:wrapcheck // same
}

func (c cacheStore) Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error {
	s, err := c.stores.Get(ctx)
	if err != nil {
		return err //nolint:wrapcheck // same
	}
	return s.Expire(ctx, key, ttl, nx) //nolint:wrapcheck // same
}

// budgetKV is what the budget counters need from the cache.
type budgetKV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// embeddingKV is what the embedding cache needs, plus a Ping for the startup log.
type embeddingKV interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	MGet(ctx context.Context, keys []string) ([][]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// budgetLoadTimeout bounds reading persisted counters at startup.
const budgetLoadTimeout = 3 * time.Second

// newBudgetTracker counts embedding tokens for the usage report. Without
// configured limits it only counts. With kv the counters are mirrored to the
// cache and loaded now, so /usage keeps its totals across restarts.
func newBudgetTracker(cfg config.EmbeddingConfig, kv budgetKV, logger *zap.Logger) *embeddinguc.BudgetTracker {
	action := embeddinguc.BudgetActionWarn
	if cfg.Budget.Action == string(embeddinguc.BudgetActionReject) {
		action = embeddinguc.BudgetActionReject
	}
	tracker := embeddinguc.NewBudgetTracker(
		cfg.Provider, cfg.Budget.DailyTokenLimit, cfg.Budget.MonthlyTokenLimit, action, logger,
	)
	if kv == nil {
		return tracker
	}

	ctx, cancel := context.WithTimeout(context.Background(), budgetLoadTimeout)
	defer cancel()
	return tracker.WithStore(ctx, budgetrepo.New(kv, 0, 0))
}

// newEmbedderHandle builds the embedder chain on first use:
// OpenAI -> Cached -> Instrumented (budget + metrics).
// kv is nil when no cache is configured. An unreachable cache is not fatal:
// lookups fail as misses until Redis answers again.
func newEmbedderHandle(
	cfg config.EmbeddingConfig,
	cacheCfg config.CacheConfig,
	kv embeddingKV,
	budget *embeddinguc.BudgetTracker,
	logger *zap.Logger,
) *lazy.Handle[domain.Embedder] {
	return lazy.New(func(ctx context.Context) (domain.Embedder, error) {
		var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})

		if kv != nil {
			if err := kv.Ping(ctx); err != nil {
				logger.Warn("Embedding cache unavailable, serving uncached until it recovers", zap.Error(err))
			}
			embedder = embcache.New(embedder, kv, embcache.Config{
				Model: cfg.Model,
				TTL:   cacheCfg.TTL(),
			}, metrics.EmbeddingCacheTotal, logger)
		}

		logger.Info("Embedder created",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.Model),
			zap.Int("dimensions", cfg.Dimensions),
			zap.Bool("cached", kv != nil),
			zap.Bool("budget_limits", cfg.Budget.Enabled()),
		)
		return embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Provider, cfg.Model, budget, logger), nil
	}, nil)
}
