package vectors

import (
	"context"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/engine"
)

// EngineSource hands out the shared engine connection, building it on first use.
type EngineSource interface {
	Get(ctx context.Context) (engine.Engine, error)
}

// EmbedderSource hands out the shared embedding provider, building it on first use.
type EmbedderSource interface {
	Get(ctx context.Context) (domain.Embedder, error)
}
