package lazy

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type resource struct{ id int }

func TestGet_BuildsOnce(t *testing.T) {
	var builds atomic.Int32
	h := New(func(context.Context) (*resource, error) {
		n := builds.Add(1)
		return &resource{id: int(n)}, nil
	}, nil)

	if h.Ready() {
		t.Fatal("expected handle not ready before first Get")
	}

	var wg sync.WaitGroup
	got := make([]*resource, 32)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := h.Get(context.Background())
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			got[i] = r
		}(i)
	}
	wg.Wait()

	if builds.Load() != 1 {
		t.Fatalf("expected 1 build, got %d", builds.Load())
	}
	for i, r := range got {
		if r != got[0] {
			t.Fatalf("caller %d got a different instance", i)
		}
	}
	if !h.Ready() {
		t.Error("expected handle ready after Get")
	}
}

func TestGet_FailedBuildIsRetried(t *testing.T) {
	calls := 0
	h := New(func(context.Context) (*resource, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("boom")
		}
		return &resource{id: calls}, nil
	}, nil)

	if _, err := h.Get(context.Background()); err == nil {
		t.Fatal("expected first Get to fail")
	}
	r, err := h.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if r.id != 2 {
		t.Errorf("expected second build, got id=%d", r.id)
	}
}

func TestClose_Idempotent(t *testing.T) {
	released := 0
	h := New(func(context.Context) (*resource, error) {
		return &resource{}, nil
	}, func(*resource) error {
		released++
		return nil
	})

	if _, err := h.Get(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected second close error: %v", err)
	}
	if released != 1 {
		t.Errorf("expected 1 release, got %d", released)
	}
	if _, err := h.Get(context.Background()); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed after Close, got %v", err)
	}
}

func TestClose_NeverBuilt(t *testing.T) {
	released := 0
	h := New(func(context.Context) (*resource, error) {
		t.Fatal("build must not run")
		return nil, nil
	}, func(*resource) error {
		released++
		return nil
	})
	if err := h.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if released != 0 {
		t.Errorf("expected no release, got %d", released)
	}
}

func TestOf(t *testing.T) {
	r := &resource{id: 7}
	h := Of(r)
	got, err := h.Get(context.Background())
	if err != nil || got != r {
		t.Fatalf("Of().Get() = %v, %v", got, err)
	}
}

func TestGet_WaitersHonourTheirContext(t *testing.T) {
	unblock := make(chan struct{})
	h := New(func(context.Context) (*resource, error) {
		<-unblock
		return &resource{id: 1}, nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	start := time.Now()
	if _, err := h.Get(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if waited := time.Since(start); waited > time.Second {
		t.Errorf("Get blocked %s past its deadline", waited)
	}

	close(unblock)
	r, err := h.Get(context.Background())
	if err != nil || r.id != 1 {
		t.Fatalf("Get after build = %v, %v", r, err)
	}
}

func TestGet_CancelledStarterDoesNotFailOthers(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	h := New(func(ctx context.Context) (*resource, error) {
		close(started)
		select {
		case <-unblock:
			return &resource{id: 1}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}, nil)

	starterCtx, cancelStarter := context.WithCancel(context.Background())
	starterErr := make(chan error, 1)
	go func() {
		_, err := h.Get(starterCtx)
		starterErr <- err
	}()
	<-started

	other := make(chan error, 1)
	go func() {
		_, err := h.Get(context.Background())
		other <- err
	}()

	cancelStarter()
	if err := <-starterErr; !errors.Is(err, context.Canceled) {
		t.Errorf("starter err = %v, want canceled", err)
	}
	close(unblock)
	if err := <-other; err != nil {
		t.Errorf("other caller failed with %v", err)
	}
}

func TestGet_RetryBackoff(t *testing.T) {
	now := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	var builds atomic.Int32
	h := New(func(context.Context) (*resource, error) {
		builds.Add(1)
		return nil, errors.New("unreachable")
	}, nil).WithRetryBackoff(5 * time.Second)
	h.now = func() time.Time { return now }

	for range 3 {
		if _, err := h.Get(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}
	if n := builds.Load(); n != 1 {
		t.Fatalf("builds within backoff = %d, want 1", n)
	}

	now = now.Add(6 * time.Second)
	if _, err := h.Get(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := builds.Load(); n != 2 {
		t.Errorf("builds after backoff = %d, want 2", n)
	}
}

func TestClose_DuringBuildReleasesValue(t *testing.T) {
	started := make(chan struct{})
	unblock := make(chan struct{})
	released := make(chan *resource, 1)
	h := New(func(context.Context) (*resource, error) {
		close(started)
		<-unblock
		return &resource{id: 9}, nil
	}, func(r *resource) error {
		released <- r
		return nil
	})

	errc := make(chan error, 1)
	go func() {
		_, err := h.Get(context.Background())
		errc <- err
	}()
	<-started
	if err := h.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	close(unblock)

	if err := <-errc; !errors.Is(err, ErrClosed) {
		t.Errorf("Get err = %v, want ErrClosed", err)
	}
	if r := <-released; r.id != 9 {
		t.Errorf("released %v", r)
	}
}
