package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"google.golang.org/grpc/status"

	logpkg "github.com/kailas-cloud/vecgate/internal/logger"
	"github.com/kailas-cloud/vecgate/internal/metrics"
	"github.com/kailas-cloud/vecgate/internal/tracer"
)

// Instrumented decorates an Engine with metrics, spans and debug logging.
type Instrumented struct {
	inner  Engine
	driver string
}

var _ Engine = (*Instrumented)(nil)

// NewInstrumented wraps inner. driver labels the metrics ("rpc", "qdrant").
func NewInstrumented(inner Engine, driver string) *Instrumented {
	return &Instrumented{inner: inner, driver: driver}
}

// Ping delegates without a span; health checks would flood traces.
func (e *Instrumented) Ping(ctx context.Context) error {
	return e.inner.Ping(ctx) //nolint:wrapcheck // status error must reach the fault translator intact
}

// Upsert records the call and the number of vectors sent.
func (e *Instrumented) Upsert(ctx context.Context, namespace string, vectors []Vector) (int, error) {
	ctx, span := tracer.StartSpan(ctx, "engine.Upsert",
		attribute.String("engine.driver", e.driver),
		attribute.String("engine.namespace", namespace),
		attribute.Int("engine.vectors", len(vectors)),
	)
	defer span.End()

	start := time.Now()
	n, err := e.inner.Upsert(ctx, namespace, vectors)
	e.observe(ctx, "Upsert", start, err)
	if err != nil {
		tracer.RecordError(span, err)
		return 0, err //nolint:wrapcheck // see Ping
	}
	metrics.EngineVectorsTotal.WithLabelValues(e.driver, "upserted").Add(float64(len(vectors)))
	span.SetAttributes(attribute.Int("engine.upserted_count", n))
	return n, nil
}

// Query records the call and the number of matches returned.
func (e *Instrumented) Query(ctx context.Context, q Query) ([]Match, error) {
	ctx, span := tracer.StartSpan(ctx, "engine.Query",
		attribute.String("engine.driver", e.driver),
		attribute.String("engine.namespace", q.Namespace),
		attribute.Int("engine.top_k", q.TopK),
	)
	defer span.End()

	start := time.Now()
	matches, err := e.inner.Query(ctx, q)
	e.observe(ctx, "Query", start, err)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err //nolint:wrapcheck // see Ping
	}
	metrics.EngineVectorsTotal.WithLabelValues(e.driver, "matched").Add(float64(len(matches)))
	span.SetAttributes(attribute.Int("engine.matches", len(matches)))
	return matches, nil
}

// Close delegates.
func (e *Instrumented) Close() error {
	return e.inner.Close() //nolint:wrapcheck // delegating
}

func (e *Instrumented) observe(ctx context.Context, method string, start time.Time, err error) {
	elapsed := time.Since(start)
	code := status.Code(err).String()

	metrics.EngineRPCDuration.WithLabelValues(e.driver, method).Observe(elapsed.Seconds())
	metrics.EngineRPCTotal.WithLabelValues(e.driver, method, code).Inc()

	logpkg.FromContext(ctx).Debug("engine rpc",
		zap.String("driver", e.driver),
		zap.String("method", method),
		zap.String("code", code),
		zap.Duration("latency", elapsed),
	)
}
