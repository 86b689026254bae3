package vecgate

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/search/request"
	"github.com/kailas-cloud/vecgate/internal/domain/search/result"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
	"github.com/kailas-cloud/vecgate/internal/engine"
	"github.com/kailas-cloud/vecgate/internal/engine/qdrant"
	"github.com/kailas-cloud/vecgate/internal/engine/rpc"
	"github.com/kailas-cloud/vecgate/internal/lazy"
	healthuc "github.com/kailas-cloud/vecgate/internal/usecase/health"
	vectorsuc "github.com/kailas-cloud/vecgate/internal/usecase/vectors"
)

// vectorsUseCase is the internal interface behind Upsert and Search.
type vectorsUseCase interface {
	Upsert(ctx context.Context, items []vector.Item) (int, error)
	Search(ctx context.Context, req *request.Request) ([]result.Match, error)
}

// Client is the vecgate SDK entry point. It is safe for concurrent use.
type Client struct {
	vectors   vectorsUseCase
	healthSvc healthUseCase
	closeFn   func() error
	obs       *observer
}

// New creates a Client. The engine connection is opened on first use.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	if cfg.driver == "" {
		return nil, errors.New("vecgate: engine address required (use WithEngine, WithEngineTarget or WithQdrant)")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	engines := lazy.New(func(context.Context) (engine.Engine, error) {
		return buildEngine(cfg)
	}, func(e engine.Engine) error {
		return e.Close()
	})

	// Embedder: noop if not set (vectors work, text returns an error)
	var emb domain.Embedder = noopEmbedder{}
	if cfg.embedder != nil {
		emb = adaptEmbedder(cfg.embedder)
	}

	vectors := vectorsuc.New(engines, lazy.Of(emb), cfg.maxBatchSize)
	return &Client{
		vectors:   vectors,
		healthSvc: healthuc.New(vectors, nil),
		closeFn:   engines.Close,
		obs:       obs,
	}, nil
}

func buildEngine(cfg *clientConfig) (engine.Engine, error) {
	switch cfg.driver {
	case driverQdrant:
		e, err := qdrant.New(qdrant.Config{
			Host:         cfg.host,
			Port:         cfg.port,
			APIKey:       cfg.apiKey,
			ReadyTimeout: cfg.readyTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("vecgate: connect qdrant: %w", err)
		}
		return e, nil
	case driverRPC:
		c, err := rpc.Dial(rpc.Config{
			Host:         cfg.host,
			Port:         cfg.port,
			Target:       cfg.target,
			ReadyTimeout: cfg.readyTimeout,
			RPCTimeout:   cfg.rpcTimeout,
			DialOptions:  cfg.dialOptions,
		})
		if err != nil {
			return nil, fmt.Errorf("vecgate: connect engine: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("vecgate: unknown driver %q", cfg.driver)
	}
}

// Close releases the engine connection. Safe to call more than once.
func (c *Client) Close() error {
	if c.closeFn == nil {
		return nil
	}
	if err := c.closeFn(); err != nil {
		return fmt.Errorf("vecgate: close: %w", err)
	}
	return nil
}

// Ping waits for the engine to become ready, bounded by the ready timeout.
func (c *Client) Ping(ctx context.Context) (err error) {
	sp := c.obs.begin(ctx, "ping")
	defer func() { sp.end(err) }()

	if err = c.healthSvc.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Upsert validates the batch, embeds text entries and sends everything to the
// engine in one call. It returns the engine's count. An empty batch returns 0
// without contacting the engine.
func (c *Client) Upsert(ctx context.Context, vectors []Vector) (n int, err error) {
	sp := c.obs.begin(ctx, "upsert")
	defer func() { sp.end(err) }()

	items := make([]vector.Item, 0, len(vectors))
	for i := range vectors {
		item, err := vectors[i].toItem()
		if err != nil {
			return 0, fmt.Errorf("vectors[%d]: %w", i, err)
		}
		items = append(items, item)
	}

	n, err = c.vectors.Upsert(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	sp.items = n
	return n, nil
}

// Search runs one similarity query and returns matches in engine order.
func (c *Client) Search(ctx context.Context, q Query) (_ []Match, err error) {
	sp := c.obs.begin(ctx, "search")
	defer func() { sp.end(err) }()

	req, err := q.toRequest()
	if err != nil {
		return nil, err
	}

	res, err := c.vectors.Search(ctx, &req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	out := make([]Match, len(res))
	for i := range res {
		out[i] = Match{
			ID:       res[i].ID(),
			Score:    res[i].Score(),
			Values:   res[i].Values(),
			Metadata: res[i].Metadata(),
		}
	}
	sp.items = len(out)
	return out, nil
}

func (v *Vector) toItem() (vector.Item, error) {
	src, err := vector.NewSource(optionalText(v.Text), v.Values)
	if err != nil {
		return vector.Item{}, err //nolint:wrapcheck // caller adds the index
	}
	return vector.NewItem(v.ID, v.Namespace, src, v.Metadata), nil
}

func (q *Query) toRequest() (request.Request, error) {
	src, err := vector.NewSource(optionalText(q.Text), q.Values)
	if err != nil {
		return request.Request{}, fmt.Errorf("query: %w", err)
	}
	topK := q.TopK
	if topK == 0 {
		topK = request.DefaultTopK
	}
	req, err := request.New(q.Namespace, src, topK, q.IncludeValues, !q.ExcludeMetadata)
	if err != nil {
		return request.Request{}, fmt.Errorf("query: %w", err)
	}
	return req, nil
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
