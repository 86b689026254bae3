package metrics

import "github.com/prometheus/client_golang/prometheus"

const engineSubsystem = "engine"

// Engine collectors. driver is "rpc" or "qdrant".
var (
	EngineRPCTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: engineSubsystem,
		Name:      "rpc_total",
		Help:      "Engine calls by method and gRPC status code.",
	}, []string{"driver", "method", "code"})

	EngineRPCDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: engineSubsystem,
		Name:      "rpc_duration_seconds",
		Help:      "Engine call latency, failures included.",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"driver", "method"})

	// EngineVectorsTotal counts vectors sent ("upserted") and hits received ("matched").
	EngineVectorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: engineSubsystem,
		Name:      "vectors_total",
		Help:      "Vectors sent in upserts and matches returned by queries.",
	}, []string{"driver", "direction"})
)
