package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecgate/internal/config"
	logpkg "github.com/kailas-cloud/vecgate/internal/logger"
	"github.com/kailas-cloud/vecgate/internal/metrics"
	"github.com/kailas-cloud/vecgate/internal/tracer"
	chiTransport "github.com/kailas-cloud/vecgate/internal/transport/chi"
	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
	usageuc "github.com/kailas-cloud/vecgate/internal/usecase/usage"
	vectorsuc "github.com/kailas-cloud/vecgate/internal/usecase/vectors"
	"github.com/kailas-cloud/vecgate/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting vecgate",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine_driver", cfg.Engine.Driver),
		zap.String("engine_host", cfg.Engine.Host),
		zap.Int("engine_port", cfg.Engine.Port),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.Bool("cache", cfg.Cache.Enabled()),
	)

	ctx := context.Background()
	stopTracing, err := tracer.Setup(ctx, tracer.Config{
		Enabled:     cfg.Tracing.Enabled,
		Export:      cfg.Tracing.Export,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		ServiceName: cfg.Tracing.ServiceName,
		Env:         env,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}

	metrics.Register()

	stores := newStoreHandle(cfg.Cache, logger)
	engines := newEngineHandle(cfg.Engine, logger)

	// Pass nil interfaces (not typed nils) when the cache is off.
	var (
		cachePinger healthuc.CachePinger
		budgetStore budgetKV
		embedStore  embeddingKV
	)
	if cfg.Cache.Enabled() {
		cs := cacheStore{stores: stores}
		cachePinger, budgetStore, embedStore = cs, cs, cs
	}

	// The budget is loaded from the cache now; everything else is built on first use.
	budget := newBudgetTracker(cfg.Embedding, budgetStore, logger)
	embedders := newEmbedderHandle(cfg.Embedding, cfg.Cache, embedStore, budget, logger)

	vectorsSvc := vectorsuc.New(engines, embedders, cfg.Limits.MaxBatchSize)
	healthSvc := healthuc.New(vectorsSvc, cachePinger)

	usageSvc := usageuc.New(budget, cfg.Embedding.Provider)

	server := chiTransport.NewServer(vectorsSvc, healthSvc, logger).WithUsage(usageSvc)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(tracer.Middleware())
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	if err := engines.Close(); err != nil {
		logger.Error("Error closing engine connection", zap.Error(err))
	}
	if err := embedders.Close(); err != nil {
		logger.Error("Error closing embedder", zap.Error(err))
	}
	if err := stores.Close(); err != nil {
		logger.Error("Error closing cache store", zap.Error(err))
	}
	if err := stopTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
