package request

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/vecgate/internal/domain"
	"github.com/kailas-cloud/vecgate/internal/domain/vector"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("", vector.FromText("hello"), DefaultTopK, DefaultIncludeValues, DefaultIncludeMetadata)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Namespace() != vector.DefaultNamespace {
		t.Errorf("Namespace() = %q", r.Namespace())
	}
	if r.TopK() != 5 {
		t.Errorf("TopK() = %d, want 5", r.TopK())
	}
	if r.IncludeValues() {
		t.Error("IncludeValues() = true, want false")
	}
	if !r.IncludeMetadata() {
		t.Error("IncludeMetadata() = false, want true")
	}
	if txt, ok := r.Source().Text(); !ok || txt != "hello" {
		t.Errorf("Source().Text() = %q, %v", txt, ok)
	}
}

func TestNew_TopKBounds(t *testing.T) {
	tests := []struct {
		topK    int
		wantErr bool
	}{
		{0, true},
		{-1, true},
		{1, false},
		{100, false},
		{101, true},
	}
	for _, tt := range tests {
		_, err := New("ns", vector.FromValues([]float32{1}), tt.topK, false, true)
		if tt.wantErr && !errors.Is(err, domain.ErrValidation) {
			t.Errorf("topK=%d: expected ErrValidation, got %v", tt.topK, err)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("topK=%d: unexpected error %v", tt.topK, err)
		}
	}
}

func TestNew_MissingSource(t *testing.T) {
	_, err := New("ns", vector.Source{}, 5, false, true)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
