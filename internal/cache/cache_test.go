package cache

import (
	"context"
	"testing"
)

func TestVectorRoundtrip(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	fp := Fingerprint("faculty qualifications are documented")
	want := []float32{0.1, -0.5, 0.9, 0}

	if _, ok, err := c.GetVector(fp, "all-minilm"); err != nil || ok {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}

	if err := c.PutVector(fp, "all-minilm", want); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := c.GetVector(fp, "all-minilm")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("expected hit after put")
	}
	if len(got) != len(want) {
		t.Fatalf("got %d dims, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("dim %d = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestModelVersionMisses(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	fp := Fingerprint("same text")
	if err := c.PutVector(fp, "model-v1", []float32{1, 2}); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := c.GetVector(fp, "model-v2"); ok {
		t.Error("different model version must miss")
	}
}

func TestClearAndCount(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	for _, text := range []string{"a", "b", "c"} {
		if err := c.PutVector(Fingerprint(text), "m", []float32{1}); err != nil {
			t.Fatal(err)
		}
	}
	if n, _ := c.Count(); n != 3 {
		t.Errorf("count = %d, want 3", n)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if n, _ := c.Count(); n != 0 {
		t.Errorf("count after clear = %d, want 0", n)
	}
}

// countingEmbedder records how many texts reach the backend.
type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return []float32{float32(len(text)), 1}, nil
}

func (e *countingEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		e.calls++
		out[i] = []float32{float32(len(text)), 1}
	}
	return out, nil
}

func (e *countingEmbedder) ModelVersion() string { return "counting-v1" }
func (e *countingEmbedder) Dimensions() int      { return 2 }
func (e *countingEmbedder) Close() error         { return nil }

func TestCachedEmbedderSkipsBackendOnHit(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	backend := &countingEmbedder{}
	emb := WrapEmbedder(backend, c)
	ctx := context.Background()

	if _, err := emb.Embed(ctx, "evidence text"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if _, err := emb.Embed(ctx, "evidence text"); err != nil {
		t.Fatalf("embed: %v", err)
	}
	if backend.calls != 1 {
		t.Errorf("backend calls = %d, want 1", backend.calls)
	}
}

func TestCachedEmbedderBatchEmbedsOnlyMisses(t *testing.T) {
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer c.Close()

	backend := &countingEmbedder{}
	emb := WrapEmbedder(backend, c)
	ctx := context.Background()

	if _, err := emb.Embed(ctx, "cached"); err != nil {
		t.Fatal(err)
	}
	backend.calls = 0

	vecs, err := emb.EmbedBatch(ctx, []string{"cached", "fresh one", "fresh two"})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("got %d vectors, want 3", len(vecs))
	}
	for i, v := range vecs {
		if len(v) == 0 {
			t.Errorf("vector %d is empty", i)
		}
	}
	if backend.calls != 2 {
		t.Errorf("backend calls = %d, want 2", backend.calls)
	}
}
