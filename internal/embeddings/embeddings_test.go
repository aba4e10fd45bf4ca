package embeddings

import (
	"math"
	"testing"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1.0},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0.0},
		{"length mismatch", []float32{1, 2}, []float32{1, 2, 3}, 0.0},
		{"empty", nil, nil, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestOllamaEmbedderMetadata(t *testing.T) {
	e := NewOllamaEmbedderWithConfig("http://localhost:11434", "all-minilm")
	if e.ModelVersion() != "all-minilm" {
		t.Errorf("ModelVersion = %q", e.ModelVersion())
	}
	if e.Dimensions() != EmbeddingDimensions {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
	if err := e.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
