// Package qdrant is an engine driver backed by a Qdrant cluster.
// Each namespace maps to one collection, created on first upsert.
package qdrant

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	qc "github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/vecgate/internal/engine"
)

// Payload keys holding the gateway id and metadata.
const (
	payloadID       = "gateway_id"
	payloadMetadata = "metadata"
)

// DefaultPort is the Qdrant gRPC port.
const DefaultPort = 6334

// idNamespace seeds UUIDv5 point ids so gateway ids of any shape become valid Qdrant ids.
var idNamespace = uuid.MustParse("6f1f7c3e-0a4b-5d8e-9c21-7b6a5e4d3c2b")

// Config holds Qdrant connection settings.
type Config struct {
	Host         string
	Port         int
	APIKey       string
	UseTLS       bool
	ReadyTimeout time.Duration
	Logger       *zap.Logger
}

// api is the subset of *qdrant.Client the driver uses.
type api interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qc.CreateCollection) error
	Upsert(ctx context.Context, req *qc.UpsertPoints) (*qc.UpdateResult, error)
	Query(ctx context.Context, req *qc.QueryPoints) ([]*qc.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qc.HealthCheckReply, error)
	Close() error
}

// Engine implements engine.Engine on Qdrant.
type Engine struct {
	api          api
	readyTimeout time.Duration
	logger       *zap.Logger

	mu    sync.Mutex
	known map[string]struct{}

	closeOnce sync.Once
	closeErr  error
}

var _ engine.Engine = (*Engine)(nil)

// New connects to Qdrant. The compatibility check is skipped; Ping reports readiness.
func New(cfg Config) (*Engine, error) {
	port := cfg.Port
	if port == 0 {
		port = DefaultPort
	}
	client, err := qc.NewClient(&qc.Config{
		Host:                   cfg.Host,
		Port:                   port,
		APIKey:                 cfg.APIKey,
		UseTLS:                 cfg.UseTLS,
		SkipCompatibilityCheck: true,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant client: %w", err)
	}
	return newEngine(client, cfg), nil
}

func newEngine(client api, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	readyTimeout := cfg.ReadyTimeout
	if readyTimeout <= 0 {
		readyTimeout = 2 * time.Second
	}
	return &Engine{
		api:          client,
		readyTimeout: readyTimeout,
		logger:       logger,
		known:        make(map[string]struct{}),
	}
}

// Ping calls the Qdrant health check within the ready bound.
func (e *Engine) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.readyTimeout)
	defer cancel()

	if _, err := e.api.HealthCheck(ctx); err != nil {
		return status.Errorf(codes.Unavailable, "qdrant not ready: %v", err)
	}
	return nil
}

// Upsert writes all vectors in one blocking request.
func (e *Engine) Upsert(ctx context.Context, namespace string, vectors []engine.Vector) (int, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	if err := e.ensureCollection(ctx, namespace, len(vectors[0].Values)); err != nil {
		return 0, err
	}

	points := make([]*qc.PointStruct, len(vectors))
	for i, v := range vectors {
		payload, err := buildPayload(v)
		if err != nil {
			return 0, status.Errorf(codes.InvalidArgument, "vector %q: %v", v.ID, err)
		}
		points[i] = &qc.PointStruct{
			Id:      qc.NewIDUUID(PointID(v.ID)),
			Vectors: qc.NewVectors(v.Values...),
			Payload: payload,
		}
	}

	wait := true
	if _, err := e.api.Upsert(ctx, &qc.UpsertPoints{
		CollectionName: namespace,
		Points:         points,
		Wait:           &wait,
	}); err != nil {
		return 0, fmt.Errorf("qdrant upsert: %w", err)
	}
	return len(points), nil
}

// Query runs a nearest-neighbour query against the namespace collection.
func (e *Engine) Query(ctx context.Context, q engine.Query) ([]engine.Match, error) {
	limit := uint64(q.TopK) //nolint:gosec // top_k is validated to [1,100]
	points, err := e.api.Query(ctx, &qc.QueryPoints{
		CollectionName: q.Namespace,
		Query:          qc.NewQuery(q.Vector...),
		Limit:          &limit,
		WithPayload:    qc.NewWithPayload(true),
		WithVectors:    qc.NewWithVectors(q.IncludeValues),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant query: %w", err)
	}

	matches := make([]engine.Match, len(points))
	for i, p := range points {
		matches[i] = toMatch(p, q.IncludeValues, q.IncludeMetadata)
	}
	return matches, nil
}

// Close releases the client once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		if err := e.api.Close(); err != nil {
			e.closeErr = fmt.Errorf("close qdrant client: %w", err)
		}
	})
	return e.closeErr
}

// ensureCollection creates the namespace collection sized to the first batch.
func (e *Engine) ensureCollection(ctx context.Context, name string, dim int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.known[name]; ok {
		return nil
	}
	exists, err := e.api.CollectionExists(ctx, name)
	if err != nil {
		return fmt.Errorf("qdrant collection exists: %w", err)
	}
	if !exists {
		if dim <= 0 {
			return status.Error(codes.InvalidArgument, "vector dimension must be positive")
		}
		err := e.api.CreateCollection(ctx, &qc.CreateCollection{
			CollectionName: name,
			VectorsConfig: qc.NewVectorsConfig(&qc.VectorParams{
				Size:     uint64(dim),
				Distance: qc.Distance_Cosine,
			}),
		})
		if err != nil && status.Code(err) != codes.AlreadyExists {
			return fmt.Errorf("qdrant create collection: %w", err)
		}
		e.logger.Info("Created qdrant collection", zap.String("collection", name), zap.Int("dim", dim))
	}
	e.known[name] = struct{}{}
	return nil
}

// PointID maps a gateway id onto a stable UUIDv5 Qdrant point id.
func PointID(id string) string {
	return uuid.NewSHA1(idNamespace, []byte(id)).String()
}

func buildPayload(v engine.Vector) (map[string]*qc.Value, error) {
	meta := make(map[string]any, len(v.Metadata))
	for k, val := range v.Metadata {
		meta[k] = val
	}
	payload, err := qc.TryValueMap(map[string]any{
		payloadID:       v.ID,
		payloadMetadata: meta,
	})
	if err != nil {
		return nil, errors.Join(errors.New("build payload"), err)
	}
	return payload, nil
}

func toMatch(p *qc.ScoredPoint, includeValues, includeMetadata bool) engine.Match {
	m := engine.Match{Score: float64(p.GetScore())}

	payload := p.GetPayload()
	if idv, ok := payload[payloadID]; ok {
		m.ID = idv.GetStringValue()
	} else {
		m.ID = pointIDString(p.GetId())
	}

	if includeMetadata {
		m.Metadata = map[string]string{}
		if mv, ok := payload[payloadMetadata]; ok {
			for k, v := range mv.GetStructValue().GetFields() {
				m.Metadata[k] = v.GetStringValue()
			}
		}
	}
	if includeValues {
		m.Values = p.GetVectors().GetVector().GetData()
	}
	return m
}

func pointIDString(id *qc.PointId) string {
	switch v := id.GetPointIdOptions().(type) {
	case *qc.PointId_Num:
		return fmt.Sprintf("%d", v.Num)
	case *qc.PointId_Uuid:
		return v.Uuid
	default:
		return ""
	}
}
