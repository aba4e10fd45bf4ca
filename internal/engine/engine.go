// Package engine is the service facade over the corpus graph, the evidence
// mapper, and the scoring components. Commands and the MCP server talk to
// this package only; it owns validation, persistence, and the wiring between
// components.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/cache"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/config"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/embeddings"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/mapper"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/risk"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/trust"
)

// ErrValidation marks caller errors: unknown accreditors, unknown standards,
// malformed requests. Callers test with errors.Is.
var ErrValidation = errors.New("validation error")

func validationErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// Engine wires the corpus store, the evidence database, and the scoring
// components behind one API.
type Engine struct {
	cfg    *config.Config
	corpus *corpus.Store
	db     *store.Store

	mapper   *mapper.Mapper
	trust    *trust.Scorer
	risk     *risk.Predictor
	embedder embeddings.Embedder // nil unless an embedding backend is configured
	vectors  *cache.Cache        // nil unless an embedding backend is configured

	locks keyedLocks
}

// New builds an engine from configuration. The embedding backend is
// optional: "none" leaves the mapper keyword-only.
func New(cfg *config.Config, db *store.Store) (*Engine, error) {
	e := &Engine{
		cfg:    cfg,
		corpus: corpus.NewStore(),
		db:     db,
		trust: trust.NewScorer(trust.Weights{
			Quality:      cfg.Trust.Quality,
			Reliability:  cfg.Trust.Reliability,
			Confidence:   cfg.Trust.Confidence,
			Freshness:    cfg.Trust.Freshness,
			Completeness: cfg.Trust.Completeness,
		}),
		risk: risk.NewPredictor(cfg.Risk.MappingTarget),
	}

	opts := mapper.Options{
		MaxExcerpts:    cfg.Mapper.MaxExcerpts,
		WindowWords:    cfg.Mapper.WindowWords,
		MinConfidence:  cfg.Mapper.MinConfidence,
		EmbeddingBlend: cfg.Embedding.Blend,
	}

	switch cfg.Embedding.Backend {
	case "", "none":
		e.mapper = mapper.New(opts)
	case "ollama":
		e.embedder = e.cachedEmbedder(embeddings.NewOllamaEmbedder())
		budget := time.Duration(cfg.Embedding.BudgetSeconds) * time.Second
		e.mapper = mapper.NewWithScorer(opts, mapper.NewEmbeddingScorer(e.embedder, budget))
	case "onnx":
		emb, err := embeddings.NewONNXEmbedder(embeddings.DefaultONNXRepo, "")
		if err != nil {
			return nil, fmt.Errorf("initializing onnx embedder: %w", err)
		}
		e.embedder = e.cachedEmbedder(emb)
		budget := time.Duration(cfg.Embedding.BudgetSeconds) * time.Second
		e.mapper = mapper.NewWithScorer(opts, mapper.NewEmbeddingScorer(e.embedder, budget))
	default:
		return nil, validationErrorf("unknown embedding backend %q", cfg.Embedding.Backend)
	}

	return e, nil
}

// cachedEmbedder wraps the backend with the vector cache next to the
// evidence database. An unopenable cache degrades to the bare backend.
func (e *Engine) cachedEmbedder(inner embeddings.Embedder) embeddings.Embedder {
	vc, err := cache.Open(filepath.Dir(e.db.Path()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: opening vector cache: %v\n", err)
		return inner
	}
	e.vectors = vc
	return cache.WrapEmbedder(inner, vc)
}

// Close releases the embedding backend and vector cache, if any. The
// evidence database is owned by the caller and closed separately.
func (e *Engine) Close() error {
	var firstErr error
	if e.embedder != nil {
		firstErr = e.embedder.Close()
	}
	if e.vectors != nil {
		if err := e.vectors.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// LoadCorpus loads every definition file in dir, publishes the snapshot, and
// persists the per-accreditor metadata.
func (e *Engine) LoadCorpus(dir string) (*corpus.Snapshot, *corpus.LoadReport, error) {
	snap, report, err := e.corpus.Load(dir)
	if err != nil {
		return nil, nil, err
	}
	if err := e.db.ReplaceCorpusMetadata(snap.Metadata()); err != nil {
		return nil, nil, fmt.Errorf("persisting corpus metadata: %w", err)
	}
	return snap, report, nil
}

// ReloadCorpus rebuilds the graph from the last loaded directory and swaps
// the active snapshot. In-flight readers keep their old snapshot.
func (e *Engine) ReloadCorpus() (*corpus.Snapshot, *corpus.LoadReport, error) {
	snap, report, err := e.corpus.Reload()
	if err != nil {
		return nil, nil, err
	}
	if err := e.db.ReplaceCorpusMetadata(snap.Metadata()); err != nil {
		return nil, nil, fmt.Errorf("persisting corpus metadata: %w", err)
	}
	return snap, report, nil
}

// Snapshot returns the active corpus snapshot.
func (e *Engine) Snapshot() (*corpus.Snapshot, error) {
	return e.corpus.Snapshot()
}

// CorpusMetadata returns provenance metadata for the loaded corpora. When no
// corpus is loaded it falls back to what a previous process run persisted.
func (e *Engine) CorpusMetadata() ([]*corpus.CorpusMetadata, error) {
	snap, err := e.corpus.Snapshot()
	if err == nil {
		return snap.Metadata(), nil
	}
	return e.db.GetCorpusMetadata()
}

// MapEvidence maps a document against the loaded standards. Scope narrows
// the candidates to one accreditor; empty scope means every loaded standard.
// Resulting mappings are persisted before they are returned.
func (e *Engine) MapEvidence(ctx context.Context, doc *store.EvidenceDocument, scope string) ([]*store.EvidenceMapping, error) {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.ID == "" {
		return nil, validationErrorf("document must have an id")
	}

	var candidates []*corpus.StandardNode
	if scope == "" {
		candidates = snap.AllStandards()
	} else {
		if !snap.HasAccreditor(scope) {
			return nil, validationErrorf("accreditor %q is not loaded", scope)
		}
		candidates = snap.StandardsFor(scope)
	}

	if doc.PageCount == 0 {
		doc.PageCount = mapper.PageCount(doc.Text)
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}

	mappings, err := e.mapper.MapDocument(ctx, doc, candidates)
	if err != nil {
		return nil, err
	}

	if err := e.db.SaveDocument(doc); err != nil {
		return nil, fmt.Errorf("saving document: %w", err)
	}
	for _, m := range mappings {
		if err := e.upsertLocked(m); err != nil {
			return nil, err
		}
	}
	return mappings, nil
}

// UpsertMapping stores one externally produced mapping. The referenced
// standard must exist in the loaded corpus.
func (e *Engine) UpsertMapping(m *store.EvidenceMapping) error {
	snap, err := e.corpus.Snapshot()
	if err != nil {
		return err
	}
	if m.DocumentID == "" || m.StandardID == "" {
		return validationErrorf("mapping must reference a document and a standard")
	}
	std, ok := snap.Standard(m.StandardID)
	if !ok {
		return validationErrorf("standard %q is not loaded", m.StandardID)
	}
	if m.Accreditor == "" {
		m.Accreditor = std.Accreditor
	}
	if m.Confidence < 0 || m.Confidence > 1 {
		return validationErrorf("confidence %f is outside [0,1]", m.Confidence)
	}
	return e.upsertLocked(m)
}

// upsertLocked serializes writes per (document, standard) key so concurrent
// upserts of the same pair cannot interleave.
func (e *Engine) upsertLocked(m *store.EvidenceMapping) error {
	unlock := e.locks.lock(m.DocumentID + "\x00" + m.StandardID)
	defer unlock()
	return e.db.UpsertMapping(m)
}

// MappingsForStandard returns the stored mappings of one standard.
func (e *Engine) MappingsForStandard(standardID string) ([]*store.EvidenceMapping, error) {
	return e.db.GetMappingsForStandard(standardID)
}

// MappingsForDocument returns the stored mappings of one document.
func (e *Engine) MappingsForDocument(documentID string) ([]*store.EvidenceMapping, error) {
	return e.db.GetMappingsForDocument(documentID)
}
