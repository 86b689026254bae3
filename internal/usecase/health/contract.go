package health

import "context"

// EnginePinger checks engine availability.
type EnginePinger interface {
	Ping(ctx context.Context) error
}

// CachePinger checks embedding cache availability.
type CachePinger interface {
	Ping(ctx context.Context) error
}
