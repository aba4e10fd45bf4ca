// Package embeddings provides vector embedding backends for the optional
// semantic scoring strategy. The keyword scorer never depends on this package;
// embedding similarity is an injectable augmentation that degrades gracefully
// when the backend is unavailable.
package embeddings

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Embedder generates vector embeddings from text.
type Embedder interface {
	// Embed generates an embedding vector for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts efficiently.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// ModelVersion returns the model identifier for cache invalidation.
	ModelVersion() string

	// Dimensions returns the embedding vector dimension.
	Dimensions() int

	// Close releases resources held by the embedder.
	Close() error
}

// Cosine computes cosine similarity between two vectors, returning 0 for
// mismatched lengths or zero-magnitude inputs.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	fa := make([]float64, len(a))
	fb := make([]float64, len(b))
	for i := range a {
		fa[i] = float64(a[i])
		fb[i] = float64(b[i])
	}

	dot := floats.Dot(fa, fb)
	na := math.Sqrt(floats.Dot(fa, fa))
	nb := math.Sqrt(floats.Dot(fb, fb))
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (na * nb)
}
