package qdrant

import (
	"context"
	"errors"
	"testing"

	qc "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/vecgate/internal/engine"
)

type fakeAPI struct {
	existing  map[string]bool
	created   []*qc.CreateCollection
	upserts   []*qc.UpsertPoints
	queries   []*qc.QueryPoints
	points    []*qc.ScoredPoint
	queryErr  error
	healthErr error
	closed    int
}

func (f *fakeAPI) CollectionExists(_ context.Context, name string) (bool, error) {
	return f.existing[name], nil
}

func (f *fakeAPI) CreateCollection(_ context.Context, req *qc.CreateCollection) error {
	f.created = append(f.created, req)
	if f.existing == nil {
		f.existing = map[string]bool{}
	}
	f.existing[req.CollectionName] = true
	return nil
}

func (f *fakeAPI) Upsert(_ context.Context, req *qc.UpsertPoints) (*qc.UpdateResult, error) {
	f.upserts = append(f.upserts, req)
	return &qc.UpdateResult{}, nil
}

func (f *fakeAPI) Query(_ context.Context, req *qc.QueryPoints) ([]*qc.ScoredPoint, error) {
	f.queries = append(f.queries, req)
	return f.points, f.queryErr
}

func (f *fakeAPI) HealthCheck(context.Context) (*qc.HealthCheckReply, error) {
	return &qc.HealthCheckReply{}, f.healthErr
}

func (f *fakeAPI) Close() error {
	f.closed++
	return nil
}

func TestUpsert_CreatesCollectionOnce(t *testing.T) {
	api := &fakeAPI{}
	e := newEngine(api, Config{})

	vecs := []engine.Vector{
		engine.NewVector("a", []float32{0.1, 0.2, 0.3}, map[string]string{"k": "v"}),
		engine.NewVector("b", []float32{0.4, 0.5, 0.6}, nil),
	}
	for range 2 {
		n, err := e.Upsert(context.Background(), "ns1", vecs)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 2 {
			t.Errorf("count = %d, want 2", n)
		}
	}

	if len(api.created) != 1 {
		t.Fatalf("expected one CreateCollection, got %d", len(api.created))
	}
	if size := api.created[0].GetVectorsConfig().GetParams().GetSize(); size != 3 {
		t.Errorf("collection size = %d, want 3", size)
	}
	if len(api.upserts) != 2 || len(api.upserts[0].Points) != 2 {
		t.Fatalf("unexpected upserts: %d", len(api.upserts))
	}

	p := api.upserts[0].Points[0]
	if p.GetId().GetUuid() != PointID("a") {
		t.Errorf("point id = %q, want %q", p.GetId().GetUuid(), PointID("a"))
	}
	if p.GetPayload()[payloadID].GetStringValue() != "a" {
		t.Errorf("payload id = %v", p.GetPayload()[payloadID])
	}
}

func TestQuery_MapsPayloadAndFlags(t *testing.T) {
	payload, err := buildPayload(engine.NewVector("v1", nil, map[string]string{"k": "v"}))
	if err != nil {
		t.Fatalf("build payload: %v", err)
	}
	api := &fakeAPI{points: []*qc.ScoredPoint{
		{Id: qc.NewIDUUID(PointID("v1")), Score: 0.5, Payload: payload},
		{Id: qc.NewIDNum(7), Score: 0.25},
	}}
	e := newEngine(api, Config{})

	matches, err := e.Query(context.Background(), engine.Query{
		Namespace: "ns1", Vector: []float32{1, 0}, TopK: 2, IncludeMetadata: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].ID != "v1" || matches[0].Score != 0.5 || matches[0].Metadata["k"] != "v" {
		t.Errorf("unexpected first match: %+v", matches[0])
	}
	if matches[1].ID != "7" {
		t.Errorf("numeric id fallback = %q", matches[1].ID)
	}
	if matches[0].Values != nil {
		t.Errorf("values should be nil without include_values")
	}
	if got := api.queries[0].GetLimit(); got != 2 {
		t.Errorf("limit = %d, want 2", got)
	}
}

func TestQuery_PreservesStatus(t *testing.T) {
	api := &fakeAPI{queryErr: status.Error(codes.NotFound, "Collection `ns` doesn't exist")}
	e := newEngine(api, Config{})

	_, err := e.Query(context.Background(), engine.Query{Namespace: "ns", Vector: []float32{1}, TopK: 1})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestPing_UnavailableOnHealthFailure(t *testing.T) {
	e := newEngine(&fakeAPI{healthErr: errors.New("dial tcp: refused")}, Config{})
	if status.Code(e.Ping(context.Background())) != codes.Unavailable {
		t.Fatal("expected Unavailable")
	}
}

func TestClose_Once(t *testing.T) {
	api := &fakeAPI{}
	e := newEngine(api, Config{})
	_ = e.Close()
	_ = e.Close()
	if api.closed != 1 {
		t.Errorf("expected 1 close, got %d", api.closed)
	}
}

func TestPointID_Stable(t *testing.T) {
	if PointID("abc") != PointID("abc") {
		t.Error("expected stable point id")
	}
	if PointID("abc") == PointID("abd") {
		t.Error("expected distinct point ids")
	}
}
