package domain

import (
	"context"
	"errors"
	"slices"
	"testing"
)

// singleEmbedder returns one vector per text whose only value is len(text).
type singleEmbedder struct {
	tokens int
	failAt string
	seen   []string
}

func (s *singleEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.seen = append(s.seen, text)
	if text == s.failAt {
		return EmbeddingResult{}, errors.New("provider down")
	}
	return EmbeddingResult{Embedding: []float32{float32(len(text))}, PromptTokens: s.tokens, TotalTokens: s.tokens}, nil
}

type batchingEmbedder struct {
	singleEmbedder
	out     BatchEmbeddingResult
	err     error
	batches [][]string
}

func (b *batchingEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	b.batches = append(b.batches, texts)
	return b.out, b.err
}

func TestEmbedAll_OneCallPerTextWithoutBatching(t *testing.T) {
	e := &singleEmbedder{tokens: 4}

	res, err := EmbedAll(context.Background(), e, []string{"a", "bbb", "cc"})
	if err != nil {
		t.Fatalf("EmbedAll: %v", err)
	}
	if !slices.Equal(e.seen, []string{"a", "bbb", "cc"}) {
		t.Errorf("call order = %v", e.seen)
	}
	for i, want := range []float32{1, 3, 2} {
		if res.Embeddings[i][0] != want {
			t.Errorf("embedding %d = %v, want %v", i, res.Embeddings[i], want)
		}
	}
	if res.PromptTokens != 12 || res.TotalTokens != 12 {
		t.Errorf("tokens = %d/%d, want 12/12", res.PromptTokens, res.TotalTokens)
	}
}

func TestEmbedAll_StopsAtFirstFailure(t *testing.T) {
	e := &singleEmbedder{failAt: "b"}

	_, err := EmbedAll(context.Background(), e, []string{"a", "b", "c"})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(e.seen) != 2 {
		t.Errorf("texts embedded after failure: %v", e.seen)
	}
}

func TestEmbedAll_NoTextsNoCalls(t *testing.T) {
	e := &batchingEmbedder{}

	res, err := EmbedAll(context.Background(), e, nil)
	if err != nil || res.Embeddings != nil {
		t.Fatalf("got %+v, %v", res, err)
	}
	if len(e.batches) != 0 || len(e.seen) != 0 {
		t.Error("provider was called for empty input")
	}
}

func TestEmbedAll_Batching(t *testing.T) {
	boom := errors.New("boom")
	two := BatchEmbeddingResult{Embeddings: [][]float32{{1}, {2}}, TotalTokens: 9}

	tests := []struct {
		name    string
		out     BatchEmbeddingResult
		err     error
		wantErr error
	}{
		{name: "ok", out: two},
		{name: "provider error", err: boom, wantErr: boom},
		{name: "short response", out: BatchEmbeddingResult{Embeddings: [][]float32{{1}}}, wantErr: ErrEmbeddingProviderError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &batchingEmbedder{out: tt.out, err: tt.err}

			res, err := EmbedAll(context.Background(), e, []string{"x", "y"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("EmbedAll: %v", err)
			}
			if res.TotalTokens != 9 || len(res.Embeddings) != 2 {
				t.Errorf("result = %+v", res)
			}
			if len(e.batches) != 1 || len(e.seen) != 0 {
				t.Errorf("batches=%d singles=%d, want one batch", len(e.batches), len(e.seen))
			}
		})
	}
}

func TestBatchEmbeddingResult_AddMerge(t *testing.T) {
	var b BatchEmbeddingResult
	b.Add(EmbeddingResult{Embedding: []float32{1}, PromptTokens: 1, TotalTokens: 2})
	b.Merge(BatchEmbeddingResult{Embeddings: [][]float32{{2}, {3}}, PromptTokens: 3, TotalTokens: 4})

	if len(b.Embeddings) != 3 || b.Embeddings[2][0] != 3 {
		t.Errorf("embeddings = %v", b.Embeddings)
	}
	if b.PromptTokens != 4 || b.TotalTokens != 6 {
		t.Errorf("tokens = %d/%d, want 4/6", b.PromptTokens, b.TotalTokens)
	}
}
