package vectors

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/search/request"
	"github.com/kailas-cloud/vecgate/internal/domain/search/result"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
	"github.com/kailas-cloud/vecgate/internal/domain/vectorid"
	"github.com/kailas-cloud/vecgate/internal/engine"
	"github.com/kailas-cloud/vecgate/internal/tracer"
)

// Service validates upserts and searches, embeds text and forwards to the engine.
type Service struct {
	engines      EngineSource
	embedders    EmbedderSource
	maxBatchSize int
}

// New creates a vectors service. maxBatchSize 0 disables the batch limit.
func New(engines EngineSource, embedders EmbedderSource, maxBatchSize int) *Service {
	return &Service{engines: engines, embedders: embedders, maxBatchSize: maxBatchSize}
}

// Upsert sends items to the engine as one batch and returns the engine's count.
// An empty batch returns 0 without touching the engine.
func (s *Service) Upsert(ctx context.Context, items []vector.Item) (int, error) {
	batch, err := vector.NewBatch(items, s.maxBatchSize)
	if err != nil {
		return 0, fmt.Errorf("normalize batch: %w", err)
	}
	if batch.Len() == 0 {
		return 0, nil
	}

	ctx, span := tracer.StartSpan(ctx, "vectors.Upsert",
		attribute.String("vectors.namespace", batch.Namespace()),
		attribute.Int("vectors.count", batch.Len()),
	)
	defer span.End()

	values, err := s.resolveValues(ctx, &batch)
	if err != nil {
		tracer.RecordError(span, err)
		return 0, err
	}

	out := make([]engine.Vector, batch.Len())
	for i, item := range batch.Items() {
		out[i] = engine.NewVector(vectorid.Resolve(&item), values[i], item.Metadata())
	}

	eng, err := s.engine(ctx)
	if err != nil {
		tracer.RecordError(span, err)
		return 0, err
	}

	n, err := eng.Upsert(ctx, batch.Namespace(), out)
	if err != nil {
		tracer.RecordError(span, err)
		return 0, fmt.Errorf("engine upsert: %w", err)
	}
	return n, nil
}

// Search runs one engine query. Values and metadata the caller did not ask for
// are dropped even if the engine returned them. Engine order is kept.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Match, error) {
	ctx, span := tracer.StartSpan(ctx, "vectors.Search",
		attribute.String("vectors.namespace", req.Namespace()),
		attribute.Int("vectors.top_k", req.TopK()),
	)
	defer span.End()

	query, err := s.queryVector(ctx, req.Source())
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	eng, err := s.engine(ctx)
	if err != nil {
		tracer.RecordError(span, err)
		return nil, err
	}

	matches, err := eng.Query(ctx, engine.Query{
		Namespace:       req.Namespace(),
		Vector:          query,
		TopK:            req.TopK(),
		IncludeValues:   req.IncludeValues(),
		IncludeMetadata: req.IncludeMetadata(),
	})
	if err != nil {
		tracer.RecordError(span, err)
		return nil, fmt.Errorf("engine query: %w", err)
	}

	out := make([]result.Match, len(matches))
	for i, m := range matches {
		var values []float32
		if req.IncludeValues() {
			values = m.Values
			if values == nil {
				values = []float32{}
			}
		}
		var metadata map[string]string
		if req.IncludeMetadata() {
			metadata = m.Metadata
			if metadata == nil {
				metadata = map[string]string{}
			}
		}
		out[i] = result.New(m.ID, m.Score, values, metadata)
	}
	return out, nil
}

// Ping checks that the engine connection is ready.
func (s *Service) Ping(ctx context.Context) error {
	eng, err := s.engine(ctx)
	if err != nil {
		return err
	}
	if err := eng.Ping(ctx); err != nil {
		return fmt.Errorf("engine ping: %w", err)
	}
	return nil
}

// resolveValues returns one vector per item, embedding text items in a single pass.
func (s *Service) resolveValues(ctx context.Context, batch *vector.Batch) ([][]float32, error) {
	values := make([][]float32, batch.Len())
	for i, item := range batch.Items() {
		if v, ok := item.Source().Values(); ok {
			values[i] = v
		}
	}

	positions, texts := batch.Texts()
	if len(texts) == 0 {
		return values, nil
	}

	emb, err := s.embedder(ctx)
	if err != nil {
		return nil, err
	}
	res, err := domain.EmbedAll(ctx, emb, texts)
	if err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)

	for j, pos := range positions {
		values[pos] = res.Embeddings[j]
	}
	return values, nil
}

func (s *Service) queryVector(ctx context.Context, src vector.Source) ([]float32, error) {
	if v, ok := src.Values(); ok {
		return v, nil
	}
	text, _ := src.Text()

	emb, err := s.embedder(ctx)
	if err != nil {
		return nil, err
	}
	res, err := emb.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(res.TotalTokens)
	return res.Embedding, nil
}

func (s *Service) engine(ctx context.Context) (engine.Engine, error) {
	eng, err := s.engines.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEngineUnavailable, err)
	}
	return eng, nil
}

func (s *Service) embedder(ctx context.Context) (domain.Embedder, error) {
	emb, err := s.embedders.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load embedder: %w", err)
	}
	return emb, nil
}
