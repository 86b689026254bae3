package vecgate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// sdkMetrics are the collectors registered when WithPrometheus is set.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	items      *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecgate",
		Subsystem: "sdk",
		Name:      "operations_total",
		Help:      "SDK calls by operation and outcome code.",
	}, []string{"operation", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vecgate",
		Subsystem: "sdk",
		Name:      "operation_duration_seconds",
		Help:      "SDK call latency, failures included.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	items := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vecgate",
		Subsystem: "sdk",
		Name:      "items_total",
		Help:      "Vectors upserted and matches returned by successful calls.",
	}, []string{"operation"})

	m := &sdkMetrics{}
	var err error
	if m.operations, err = register(reg, operations); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if m.items, err = register(reg, items); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg. When an equal collector is already registered,
// as with several clients sharing one registry, that one is returned instead.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return c, fmt.Errorf("vecgate: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return c, fmt.Errorf("vecgate: metric already registered as %T", are.ExistingCollector)
	}
	return existing, nil
}

// observer logs and counts SDK calls. A nil observer is valid and silent.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// span measures one SDK call.
type span struct {
	o     *observer
	ctx   context.Context
	op    string
	start time.Time
	items int
}

func (o *observer) begin(ctx context.Context, op string) *span {
	return &span{o: o, ctx: ctx, op: op, start: time.Now()}
}

// end records the call outcome. items counts toward items_total on success.
func (s *span) end(err error) {
	if s.o == nil {
		return
	}
	elapsed := time.Since(s.start)
	code := "ok"
	if err != nil {
		code = StatusOf(err).Code
	}

	if m := s.o.metrics; m != nil {
		m.operations.WithLabelValues(s.op, code).Inc()
		m.duration.WithLabelValues(s.op).Observe(elapsed.Seconds())
		if err == nil && s.items > 0 {
			m.items.WithLabelValues(s.op).Add(float64(s.items))
		}
	}

	if s.o.logger == nil {
		return
	}
	attrs := []slog.Attr{
		slog.String("op", s.op),
		slog.Duration("duration", elapsed),
	}
	if err != nil {
		attrs = append(attrs, slog.String("code", code), slog.Any("error", err))
		s.o.logger.LogAttrs(s.ctx, slog.LevelWarn, "vecgate call failed", attrs...)
		return
	}
	attrs = append(attrs, slog.Int("items", s.items))
	s.o.logger.LogAttrs(s.ctx, slog.LevelDebug, "vecgate call completed", attrs...)
}
