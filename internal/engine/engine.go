// Package engine defines the gateway's view of the backend vector engine.
package engine

import "context"

// Vector is one outbound upsert record.
type Vector struct {
	ID       string
	Values   []float32
	Metadata map[string]string
}

// NewVector builds an outbound record. A nil metadata map is sent as empty.
func NewVector(id string, values []float32, metadata map[string]string) Vector {
	if metadata == nil {
		metadata = map[string]string{}
	}
	return Vector{ID: id, Values: values, Metadata: metadata}
}

// Query is one outbound similarity search.
type Query struct {
	Namespace       string
	Vector          []float32
	TopK            int
	IncludeValues   bool
	IncludeMetadata bool
}

// Match is one engine hit, in engine order.
type Match struct {
	ID       string
	Score    float64
	Values   []float32
	Metadata map[string]string
}

// Engine is a connection to a vector engine. Implementations are safe for
// concurrent use and return gRPC status errors on backend failure.
type Engine interface {
	// Ping waits for the connection to become ready within the driver's bound.
	Ping(ctx context.Context) error
	// Upsert submits the whole batch in one call and returns the engine's count.
	Upsert(ctx context.Context, namespace string, vectors []Vector) (int, error)
	Query(ctx context.Context, q Query) ([]Match, error)
	// Close releases the connection. Safe to call more than once.
	Close() error
}
