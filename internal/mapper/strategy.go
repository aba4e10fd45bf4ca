package mapper

import (
	"context"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/embeddings"
)

// SemanticScorer scores the semantic similarity of two texts in [0,1].
type SemanticScorer interface {
	Similarity(ctx context.Context, a, b string) (float64, error)
}

// EmbeddingScorer scores similarity as the cosine of text embeddings. Each
// call is bounded by Budget so a slow or unreachable backend degrades the
// mapper to keyword-only instead of stalling it.
type EmbeddingScorer struct {
	embedder embeddings.Embedder

	// Budget bounds a single similarity call. Zero means no extra bound
	// beyond the caller's context.
	Budget time.Duration
}

// NewEmbeddingScorer wraps an embedder with the given per-call budget.
func NewEmbeddingScorer(e embeddings.Embedder, budget time.Duration) *EmbeddingScorer {
	return &EmbeddingScorer{embedder: e, Budget: budget}
}

// Similarity embeds both texts and returns their cosine similarity clamped
// to [0,1]. Negative cosine means no evidential support, not counter-support.
func (s *EmbeddingScorer) Similarity(ctx context.Context, a, b string) (float64, error) {
	if s.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Budget)
		defer cancel()
	}

	vecs, err := s.embedder.EmbedBatch(ctx, []string{a, b})
	if err != nil {
		return 0, err
	}
	return clamp01(embeddings.Cosine(vecs[0], vecs[1])), nil
}
