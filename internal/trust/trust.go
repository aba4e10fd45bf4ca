// Package trust computes multi-factor reliability scores for evidence items
// and aggregates them per standard. Trust is derived state: it is recomputed
// on demand from documents and mappings, never persisted on its own.
package trust

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

// Freshness decay anchors. Evidence newer than freshFloor scores a full 1.0,
// decaying linearly to staleScore at staleCeiling.
const (
	freshFloor   = 6 * 30 * 24 * time.Hour  // ~6 months
	staleCeiling = 5 * 365 * 24 * time.Hour // ~5 years
	staleScore   = 0.2
)

// Weights controls the contribution of each component to the overall score.
type Weights struct {
	Quality      float64 `yaml:"quality"`
	Reliability  float64 `yaml:"reliability"`
	Confidence   float64 `yaml:"confidence"`
	Freshness    float64 `yaml:"freshness"`
	Completeness float64 `yaml:"completeness"`
}

// DefaultWeights weighs all five components equally.
func DefaultWeights() Weights {
	return Weights{Quality: 0.2, Reliability: 0.2, Confidence: 0.2, Freshness: 0.2, Completeness: 0.2}
}

func (w Weights) total() float64 {
	return w.Quality + w.Reliability + w.Confidence + w.Freshness + w.Completeness
}

// Valid reports whether the weights are non-negative and sum to something positive.
func (w Weights) Valid() bool {
	if w.Quality < 0 || w.Reliability < 0 || w.Confidence < 0 || w.Freshness < 0 || w.Completeness < 0 {
		return false
	}
	return w.total() > 0
}

// Score is the trust assessment of one evidence mapping. Every component is
// in [0,1] and carries a human-readable explanation.
type Score struct {
	DocumentID string `json:"document_id"`
	StandardID string `json:"standard_id"`

	Quality      float64 `json:"quality"`
	Reliability  float64 `json:"reliability"`
	Confidence   float64 `json:"confidence"`
	Freshness    float64 `json:"freshness"`
	Completeness float64 `json:"completeness"`
	Overall      float64 `json:"overall"`

	Explanations map[string]string `json:"explanations"`
}

// Scorer computes trust scores.
type Scorer struct {
	weights Weights
	now     func() time.Time // overridable in tests
}

// NewScorer creates a scorer with the given weights. Invalid weights fall
// back to the equal-weight default.
func NewScorer(w Weights) *Scorer {
	if !w.Valid() {
		w = DefaultWeights()
	}
	return &Scorer{weights: w, now: time.Now}
}

// Score computes the five trust components for one mapping and its source
// document. A nil document yields floor scores for the document-derived
// components rather than an error.
func (s *Scorer) Score(doc *store.EvidenceDocument, mapping *store.EvidenceMapping) *Score {
	sc := &Score{
		DocumentID:   mapping.DocumentID,
		StandardID:   mapping.StandardID,
		Explanations: make(map[string]string, 5),
	}

	sc.Quality = s.quality(doc, mapping, sc.Explanations)
	sc.Reliability = s.reliability(doc, sc.Explanations)
	sc.Confidence = clamp01(mapping.Confidence)
	sc.Explanations["confidence"] = fmt.Sprintf("mapping confidence %.2f via %s matching", sc.Confidence, mapping.Method)
	sc.Freshness = s.freshness(doc, sc.Explanations)
	sc.Completeness = s.completeness(doc, mapping, sc.Explanations)

	w := s.weights
	sc.Overall = clamp01((w.Quality*sc.Quality +
		w.Reliability*sc.Reliability +
		w.Confidence*sc.Confidence +
		w.Freshness*sc.Freshness +
		w.Completeness*sc.Completeness) / w.total())
	sc.Explanations["overall"] = fmt.Sprintf("weighted average of 5 components: %.2f", sc.Overall)
	return sc
}

// quality rewards excerpt breadth and document volume: evidence with several
// distinct supporting passages drawn from a substantial document is worth
// more than a single thin match.
func (s *Scorer) quality(doc *store.EvidenceDocument, mapping *store.EvidenceMapping, expl map[string]string) float64 {
	excerptPart := float64(len(mapping.Excerpts)) / 3.0
	if excerptPart > 1 {
		excerptPart = 1
	}

	volumePart := 0.0
	words := 0
	if doc != nil {
		words = len(strings.Fields(doc.Text))
		// 500 words is a full-credit document
		volumePart = float64(words) / 500.0
		if volumePart > 1 {
			volumePart = 1
		}
	}

	q := clamp01(0.6*excerptPart + 0.4*volumePart)
	expl["quality"] = fmt.Sprintf("%d supporting excerpt(s), %d words of source text", len(mapping.Excerpts), words)
	return q
}

// reliability looks at structural signals of the source document: page
// markers and headed sections suggest a real published artifact rather than
// pasted fragments.
func (s *Scorer) reliability(doc *store.EvidenceDocument, expl map[string]string) float64 {
	if doc == nil || strings.TrimSpace(doc.Text) == "" {
		expl["reliability"] = "no source document available"
		return 0.0
	}

	r := 0.4 // baseline for any non-empty document
	signals := []string{"text present"}

	if doc.PageCount > 1 {
		r += 0.3
		signals = append(signals, fmt.Sprintf("%d pages", doc.PageCount))
	}
	if hasSections(doc.Text) {
		r += 0.3
		signals = append(signals, "section headings")
	}

	expl["reliability"] = "structural signals: " + strings.Join(signals, ", ")
	return clamp01(r)
}

// freshness decays with document age: full trust inside six months, linear
// decay to the stale floor at five years.
func (s *Scorer) freshness(doc *store.EvidenceDocument, expl map[string]string) float64 {
	if doc == nil || doc.UploadedAt.IsZero() {
		expl["freshness"] = "no upload timestamp; treated as stale"
		return staleScore
	}

	age := s.now().Sub(doc.UploadedAt)
	var f float64
	switch {
	case age <= freshFloor:
		f = 1.0
	case age >= staleCeiling:
		f = staleScore
	default:
		span := float64(staleCeiling - freshFloor)
		f = 1.0 - (1.0-staleScore)*float64(age-freshFloor)/span
	}
	expl["freshness"] = fmt.Sprintf("evidence is %.0f days old", age.Hours()/24)
	return clamp01(f)
}

// completeness combines page count with how much of the document's pages the
// excerpts actually touch.
func (s *Scorer) completeness(doc *store.EvidenceDocument, mapping *store.EvidenceMapping, expl map[string]string) float64 {
	if doc == nil {
		expl["completeness"] = "no source document available"
		return 0.0
	}

	pagePart := float64(doc.PageCount) / 5.0 // 5+ pages is full credit
	if pagePart > 1 {
		pagePart = 1
	}

	touched := make(map[int]struct{})
	for _, ex := range mapping.Excerpts {
		touched[ex.PageNumber] = struct{}{}
	}
	coveragePart := 0.0
	if doc.PageCount > 0 {
		coveragePart = float64(len(touched)) / float64(doc.PageCount)
		if coveragePart > 1 {
			coveragePart = 1
		}
	}

	c := clamp01(0.5*pagePart + 0.5*coveragePart)
	expl["completeness"] = fmt.Sprintf("%d page(s), excerpts touch %d of them", doc.PageCount, len(touched))
	return c
}

// hasSections reports whether the text contains heading-like lines: short
// lines that are numbered, all-caps, or title-cased without trailing
// punctuation.
func hasSections(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > 80 {
			continue
		}
		if strings.HasSuffix(line, ".") || strings.HasSuffix(line, ",") {
			continue
		}
		if len(line) >= 4 && line == strings.ToUpper(line) && strings.ContainsAny(line, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
			return true
		}
		if len(line) > 2 && line[0] >= '0' && line[0] <= '9' && strings.Contains(line, ".") {
			return true
		}
	}
	return false
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
