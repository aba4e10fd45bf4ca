package embeddings

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"
)

const (
	// DefaultONNXRepo is the HuggingFace repo of the default local model.
	DefaultONNXRepo = "sentence-transformers/all-MiniLM-L6-v2"
	// onnxDimensions is the output dimension of all-MiniLM-L6-v2.
	onnxDimensions = 384
)

// ONNXEmbedder runs a local sentence-transformer via hugot's ONNX runtime.
// The model is downloaded to the cache directory on first use. Unlike the
// Ollama backend this needs no running service.
type ONNXEmbedder struct {
	repo      string
	cacheDir  string
	modelPath string

	mu       sync.Mutex
	session  *hugot.Session
	pipeline *pipelines.FeatureExtractionPipeline
	loaded   bool
}

// NewONNXEmbedder prepares a local ONNX embedder. The model is loaded lazily
// on the first Embed call.
func NewONNXEmbedder(repo, cacheDir string) (*ONNXEmbedder, error) {
	if repo == "" {
		repo = DefaultONNXRepo
	}
	if cacheDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home dir: %w", err)
		}
		cacheDir = filepath.Join(home, ".a3e", "models")
	}
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create model cache dir: %w", err)
	}

	return &ONNXEmbedder{
		repo:     repo,
		cacheDir: cacheDir,
	}, nil
}

// Embed generates an embedding vector for the given text.
func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	results, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return results[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one pipeline run.
func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		if err := e.loadLocked(); err != nil {
			return nil, err
		}
	}

	output, err := e.pipeline.RunPipeline(texts)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	return output.Embeddings, nil
}

// loadLocked downloads the model if absent and creates the ORT session.
// Caller holds e.mu.
func (e *ONNXEmbedder) loadLocked() error {
	modelPath := e.modelPath
	if modelPath == "" {
		downloaded, err := hugot.DownloadModel(e.repo, e.cacheDir, hugot.NewDownloadOptions())
		if err != nil {
			return fmt.Errorf("download model %s: %w", e.repo, err)
		}
		modelPath = downloaded
	}

	session, err := hugot.NewORTSession(
		options.WithIntraOpNumThreads(runtime.NumCPU()),
	)
	if err != nil {
		return fmt.Errorf("create ORT session: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.FeatureExtractionConfig{
		ModelPath: modelPath,
		Name:      "a3e-embedder",
	})
	if err != nil {
		session.Destroy()
		return fmt.Errorf("create pipeline: %w", err)
	}

	e.modelPath = modelPath
	e.session = session
	e.pipeline = pipeline
	e.loaded = true
	return nil
}

// ModelVersion returns the model identifier for cache invalidation.
func (e *ONNXEmbedder) ModelVersion() string {
	return e.repo
}

// Dimensions returns the embedding vector dimension.
func (e *ONNXEmbedder) Dimensions() int {
	return onnxDimensions
}

// Close destroys the ORT session.
func (e *ONNXEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	var err error
	if e.session != nil {
		err = e.session.Destroy()
		e.session = nil
	}
	e.pipeline = nil
	e.loaded = false
	return err
}
