package rpc

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"github.com/kailas-cloud/vecgate/internal/engine"
	"github.com/kailas-cloud/vecgate/internal/engine/rpc/enginepb"
)

// --- Fake engine ---

type fakeEngine struct {
	enginepb.UnimplementedVectorServiceServer

	mu        sync.Mutex
	upserts   []*enginepb.UpsertRequest
	queries   []*enginepb.QueryRequest
	upsertErr error
	queryErr  error
	count     int32
	matches   []*enginepb.Match
}

func (f *fakeEngine) Upsert(_ context.Context, req *enginepb.UpsertRequest) (*enginepb.UpsertResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, req)
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return &enginepb.UpsertResponse{UpsertedCount: f.count}, nil
}

func (f *fakeEngine) Query(_ context.Context, req *enginepb.QueryRequest) (*enginepb.QueryResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, req)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &enginepb.QueryResponse{Matches: f.matches}, nil
}

func startEngine(t *testing.T, fake *fakeEngine) *Client {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodec(enginepb.Codec{}))
	enginepb.RegisterVectorServiceServer(srv, fake)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	c, err := Dial(Config{
		Target:       "passthrough:///bufnet",
		ReadyTimeout: time.Second,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
		},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// --- Tests ---

func TestClient_Ping(t *testing.T) {
	c := startEngine(t, &fakeEngine{})
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestClient_PingNeverReady(t *testing.T) {
	c, err := Dial(Config{
		Target:       "passthrough:///unreachable",
		ReadyTimeout: 100 * time.Millisecond,
		DialOptions: []grpc.DialOption{
			grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
				return nil, errors.New("connection refused")
			}),
		},
	})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer func() { _ = c.Close() }()

	start := time.Now()
	err = c.Ping(context.Background())
	if status.Code(err) != codes.Unavailable {
		t.Fatalf("expected Unavailable, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("ping took %s, expected to give up near the 100ms bound", elapsed)
	}
}

func TestClient_Upsert(t *testing.T) {
	fake := &fakeEngine{count: 2}
	c := startEngine(t, fake)

	n, err := c.Upsert(context.Background(), "ns1", []engine.Vector{
		engine.NewVector("a", []float32{0.1, 0.2}, map[string]string{"k": "v"}),
		engine.NewVector("b", []float32{0.3, 0.4}, nil),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	if len(fake.upserts) != 1 {
		t.Fatalf("expected exactly one Upsert RPC, got %d", len(fake.upserts))
	}
	got := fake.upserts[0]
	if got.Namespace != "ns1" || len(got.Vectors) != 2 {
		t.Fatalf("unexpected request: %+v", got)
	}
	if got.Vectors[0].Id != "a" || got.Vectors[1].Id != "b" {
		t.Errorf("order not preserved: %q, %q", got.Vectors[0].Id, got.Vectors[1].Id)
	}
	if got.Vectors[0].Metadata["k"] != "v" {
		t.Errorf("metadata lost: %v", got.Vectors[0].Metadata)
	}
}

func TestClient_Query(t *testing.T) {
	fake := &fakeEngine{matches: []*enginepb.Match{
		{Id: "v2", Score: 0.95},
		{Id: "v1", Score: 0.9, Values: []float32{0.1, 0.2}, Metadata: map[string]string{"k": "v"}},
	}}
	c := startEngine(t, fake)

	matches, err := c.Query(context.Background(), engine.Query{
		Namespace:       "ns1",
		Vector:          []float32{0.1, 0.2},
		TopK:            5,
		IncludeValues:   true,
		IncludeMetadata: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(matches) != 2 || matches[0].ID != "v2" || matches[1].ID != "v1" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if matches[1].Score != 0.9 || matches[1].Metadata["k"] != "v" || len(matches[1].Values) != 2 {
		t.Errorf("unexpected match payload: %+v", matches[1])
	}

	q := fake.queries[0]
	if q.Namespace != "ns1" || q.TopK != 5 || !q.IncludeValues || !q.IncludeMetadata || len(q.Vector) != 2 {
		t.Errorf("unexpected query request: %+v", q)
	}
}

func TestClient_StatusPreserved(t *testing.T) {
	fake := &fakeEngine{queryErr: status.Error(codes.NotFound, "Namespace not found")}
	c := startEngine(t, fake)

	_, err := c.Query(context.Background(), engine.Query{Namespace: "missing", Vector: []float32{1}, TopK: 1})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}

	var se interface{ GRPCStatus() *status.Status }
	if !errors.As(err, &se) {
		t.Fatal("expected a gRPC status in the error chain")
	}
	if se.GRPCStatus().Message() != "Namespace not found" {
		t.Errorf("detail = %q", se.GRPCStatus().Message())
	}
}

func TestClient_CloseIdempotent(t *testing.T) {
	c := startEngine(t, &fakeEngine{})
	if err := c.Close(); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if err := c.Ping(context.Background()); status.Code(err) != codes.Unavailable {
		t.Errorf("expected Unavailable after close, got %v", err)
	}
}
