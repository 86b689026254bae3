// Package lazy provides a process-wide resource that is built on first use.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrClosed is returned by Get after Close.
var ErrClosed = errors.New("lazy: handle closed")

// Handle builds a value at most once and hands the same value to every caller.
// A failed build is not cached, so a later Get tries again.
type Handle[T any] struct {
	mu      sync.Mutex
	build   func(ctx context.Context) (T, error)
	release func(T) error
	val     T
	ready   bool
	closed  bool

	// inflight is the build currently running, if any.
	inflight *attempt
	// lastErr is returned without rebuilding until failedAt+backoff.
	lastErr  error
	failedAt time.Time
	backoff  time.Duration
	now      func() time.Time
}

type attempt struct {
	done chan struct{}
	err  error
}

// New creates a handle. release may be nil.
func New[T any](build func(ctx context.Context) (T, error), release func(T) error) *Handle[T] {
	return &Handle[T]{build: build, release: release, now: time.Now}
}

// Of wraps an already constructed value.
func Of[T any](v T) *Handle[T] {
	return &Handle[T]{val: v, ready: true, now: time.Now}
}

// WithRetryBackoff makes Get return the last build error for d after a
// failure instead of building again on every call.
func (h *Handle[T]) WithRetryBackoff(d time.Duration) *Handle[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.backoff = d
	return h
}

// Get returns the shared value, building it if needed.
// The build runs detached from any single caller: every caller, including the
// one that started it, waits for it or for its own ctx, whichever comes first.
func (h *Handle[T]) Get(ctx context.Context) (T, error) {
	var zero T

	h.mu.Lock()
	switch {
	case h.closed:
		h.mu.Unlock()
		return zero, ErrClosed
	case h.ready:
		v := h.val
		h.mu.Unlock()
		return v, nil
	case h.inflight == nil && h.lastErr != nil && h.now().Sub(h.failedAt) < h.backoff:
		err := h.lastErr
		h.mu.Unlock()
		return zero, err
	}
	a := h.inflight
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		h.inflight = a
		go h.run(context.WithoutCancel(ctx), a)
	}
	h.mu.Unlock()

	select {
	case <-ctx.Done():
		return zero, fmt.Errorf("lazy wait: %w", ctx.Err())
	case <-a.done:
	}
	if a.err != nil {
		return zero, a.err
	}
	return h.Get(ctx)
}

func (h *Handle[T]) run(ctx context.Context, a *attempt) {
	v, err := h.build(ctx)

	h.mu.Lock()
	defer h.mu.Unlock()
	defer close(a.done)

	h.inflight = nil
	switch {
	case err != nil:
		a.err = fmt.Errorf("lazy build: %w", err)
		h.lastErr, h.failedAt = a.err, h.now()
	case h.closed:
		// Closed while building: nobody will ever Get this value.
		a.err = ErrClosed
		if h.release != nil {
			_ = h.release(v)
		}
	default:
		h.val, h.ready = v, true
		h.lastErr = nil
	}
}

// Ready reports whether the value has been built.
func (h *Handle[T]) Ready() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ready
}

// Close releases the value if it was built. Safe to call more than once.
func (h *Handle[T]) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil
	}
	h.closed = true
	if !h.ready || h.release == nil {
		return nil
	}

	var zero T
	v := h.val
	h.val = zero
	h.ready = false
	if err := h.release(v); err != nil {
		return fmt.Errorf("lazy release: %w", err)
	}
	return nil
}
