package cache

import (
	"context"
	"fmt"
	"os"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/embeddings"
)

// CachedEmbedder wraps an embedding backend with the vector cache. Hits
// skip the backend; misses are embedded and written through. Cache write
// failures degrade to a warning rather than failing the embedding call.
type CachedEmbedder struct {
	inner embeddings.Embedder
	cache *Cache
}

var _ embeddings.Embedder = (*CachedEmbedder)(nil)

// WrapEmbedder returns an embedder that reads and writes through the cache.
func WrapEmbedder(inner embeddings.Embedder, c *Cache) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: c}
}

// Embed returns the cached vector for text, embedding on a miss.
func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	fp := Fingerprint(text)
	model := e.inner.ModelVersion()

	if vec, ok, err := e.cache.GetVector(fp, model); err == nil && ok {
		return vec, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.cache.PutVector(fp, model, vec); err != nil {
		fmt.Fprintf(os.Stderr, "warning: caching vector: %v\n", err)
	}
	return vec, nil
}

// EmbedBatch resolves each text from the cache and embeds only the misses
// in one backend call.
func (e *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	model := e.inner.ModelVersion()
	out := make([][]float32, len(texts))

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		fp := Fingerprint(text)
		if vec, ok, err := e.cache.GetVector(fp, model); err == nil && ok {
			out[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	vecs, err := e.inner.EmbedBatch(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missTexts) {
		return nil, fmt.Errorf("backend returned %d vectors for %d texts", len(vecs), len(missTexts))
	}

	for j, vec := range vecs {
		out[missIdx[j]] = vec
		if err := e.cache.PutVector(Fingerprint(missTexts[j]), model, vec); err != nil {
			fmt.Fprintf(os.Stderr, "warning: caching vector: %v\n", err)
		}
	}
	return out, nil
}

// ModelVersion reports the wrapped backend's model identifier.
func (e *CachedEmbedder) ModelVersion() string {
	return e.inner.ModelVersion()
}

// Dimensions reports the wrapped backend's vector dimension.
func (e *CachedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}

// Close closes the wrapped backend. The cache is owned by the caller.
func (e *CachedEmbedder) Close() error {
	return e.inner.Close()
}
