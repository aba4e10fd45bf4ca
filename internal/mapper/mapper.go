// Package mapper scores the relevance of evidence documents against standard
// nodes and extracts supporting excerpts. The keyword overlap scorer is the
// deterministic baseline; an embedding-backed semantic scorer can be injected
// to blend in cosine similarity, falling back to the keyword score whenever
// the embedding call fails or exceeds its budget.
package mapper

import (
	"context"
	"sort"
	"strings"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/tokenize"
)

// indicatorWeight counts indicator term hits double relative to terms that
// appear only in the title or description.
const indicatorWeight = 2.0

// Options configures the mapper.
type Options struct {
	// MaxExcerpts caps the number of excerpts kept per mapping.
	MaxExcerpts int

	// WindowWords is the half-width, in words, of the excerpt window around
	// a keyword hit cluster.
	WindowWords int

	// MinConfidence drops mappings scoring below this floor.
	MinConfidence float64

	// EmbeddingBlend is the weight of the semantic score when a scorer is
	// configured: final = blend*semantic + (1-blend)*keyword.
	EmbeddingBlend float64
}

// DefaultOptions returns the default mapper configuration.
func DefaultOptions() Options {
	return Options{
		MaxExcerpts:    3,
		WindowWords:    40,
		MinConfidence:  0.10,
		EmbeddingBlend: 0.5,
	}
}

// Mapper maps evidence documents onto standard nodes.
type Mapper struct {
	opts   Options
	scorer SemanticScorer // nil = keyword-only
}

// New creates a keyword-only mapper.
func New(opts Options) *Mapper {
	if opts.MaxExcerpts <= 0 {
		opts.MaxExcerpts = 3
	}
	if opts.WindowWords <= 0 {
		opts.WindowWords = 40
	}
	return &Mapper{opts: opts}
}

// NewWithScorer creates a mapper that blends keyword and semantic scores.
func NewWithScorer(opts Options, scorer SemanticScorer) *Mapper {
	m := New(opts)
	m.scorer = scorer
	return m
}

// MapDocument scores doc against every candidate standard and returns one
// mapping per (document, standard) pair that clears the confidence floor.
// An empty document yields zero mappings and no error. Standards with no
// scoreable terms are skipped.
func (m *Mapper) MapDocument(ctx context.Context, doc *store.EvidenceDocument, candidates []*corpus.StandardNode) ([]*store.EvidenceMapping, error) {
	if strings.TrimSpace(doc.Text) == "" {
		return nil, nil
	}

	pages := splitPages(doc.Text)
	docTokens := tokenize.Set(doc.Text)

	var mappings []*store.EvidenceMapping
	for _, std := range candidates {
		if err := ctx.Err(); err != nil {
			return mappings, err
		}

		terms := standardTerms(std)
		if len(terms) == 0 {
			continue
		}

		keywordScore, excerpts := m.scoreKeyword(pages, docTokens, terms)

		confidence := keywordScore
		method := store.MethodKeyword
		if m.scorer != nil && keywordScore > 0 {
			if sem, err := m.scorer.Similarity(ctx, semanticInput(doc.Text, excerpts), standardText(std)); err == nil {
				blend := m.opts.EmbeddingBlend
				confidence = clamp01(blend*sem + (1-blend)*keywordScore)
				method = store.MethodHybrid
			}
			// on scorer error the keyword score stands
		}

		if confidence < m.opts.MinConfidence {
			continue
		}

		mappings = append(mappings, &store.EvidenceMapping{
			DocumentID: doc.ID,
			StandardID: std.ID,
			Accreditor: std.Accreditor,
			Confidence: confidence,
			Method:     method,
			Excerpts:   excerpts,
		})
	}

	sort.Slice(mappings, func(i, j int) bool {
		if mappings[i].Confidence != mappings[j].Confidence {
			return mappings[i].Confidence > mappings[j].Confidence
		}
		return mappings[i].StandardID < mappings[j].StandardID
	})
	return mappings, nil
}

// scoreKeyword computes the deterministic keyword confidence together with
// ranked excerpts. Confidence is the document-level weighted term coverage,
// raised to the best excerpt score when a single passage outscores the
// document as a whole (a dense passage in a long document should not be
// diluted by the document's length).
func (m *Mapper) scoreKeyword(pages []page, docTokens map[string]struct{}, terms map[string]float64) (float64, []store.Excerpt) {
	totalWeight := 0.0
	for _, w := range terms {
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, nil
	}

	matchedWeight := 0.0
	for term, w := range terms {
		if _, ok := docTokens[term]; ok {
			matchedWeight += w
		}
	}
	docCoverage := matchedWeight / totalWeight

	var excerpts []store.Excerpt
	for _, pg := range pages {
		excerpts = append(excerpts, m.extractFromPage(pg, terms, totalWeight)...)
	}
	sort.Slice(excerpts, func(i, j int) bool { return excerpts[i].Score > excerpts[j].Score })
	if len(excerpts) > m.opts.MaxExcerpts {
		excerpts = excerpts[:m.opts.MaxExcerpts]
	}

	confidence := docCoverage
	if len(excerpts) > 0 && excerpts[0].Score > confidence {
		confidence = excerpts[0].Score
	}
	return clamp01(confidence), excerpts
}

// extractFromPage finds keyword hit clusters on one page and turns each into
// a bounded excerpt. Hits closer than the window width merge into one cluster.
func (m *Mapper) extractFromPage(pg page, terms map[string]float64, totalWeight float64) []store.Excerpt {
	words := strings.Fields(pg.text)
	if len(words) == 0 {
		return nil
	}

	// hit positions by word index
	type hit struct {
		idx  int
		term string
	}
	var hits []hit
	for i, w := range words {
		toks := tokenize.Tokenize(w)
		if len(toks) == 0 {
			continue
		}
		if _, ok := terms[toks[0]]; ok {
			hits = append(hits, hit{idx: i, term: toks[0]})
		}
	}
	if len(hits) == 0 {
		return nil
	}

	window := m.opts.WindowWords
	var excerpts []store.Excerpt

	clusterStart := 0
	for i := 1; i <= len(hits); i++ {
		if i < len(hits) && hits[i].idx-hits[i-1].idx <= window {
			continue
		}
		cluster := hits[clusterStart:i]
		clusterStart = i

		lo := cluster[0].idx - window/2
		if lo < 0 {
			lo = 0
		}
		hi := cluster[len(cluster)-1].idx + window/2
		if hi > len(words) {
			hi = len(words)
		}

		matched := make(map[string]struct{})
		clusterWeight := 0.0
		for _, h := range cluster {
			if _, seen := matched[h.term]; !seen {
				matched[h.term] = struct{}{}
				clusterWeight += terms[h.term]
			}
		}

		keywords := make([]string, 0, len(matched))
		for t := range matched {
			keywords = append(keywords, t)
		}
		sort.Strings(keywords)

		coverage := clusterWeight / totalWeight
		// one hit per ten words saturates the density bonus
		density := float64(len(cluster)) * 10 / float64(hi-lo)
		if density > 1 {
			density = 1
		}

		excerpts = append(excerpts, store.Excerpt{
			Text:            strings.Join(words[lo:hi], " "),
			PageNumber:      pg.number,
			MatchedKeywords: keywords,
			Score:           clamp01(0.6*coverage + 0.4*density),
		})
	}

	return excerpts
}

// standardTerms builds the weighted term set for a standard from its title,
// description, and clause indicators.
func standardTerms(std *corpus.StandardNode) map[string]float64 {
	terms := make(map[string]float64)
	for _, tok := range tokenize.Tokenize(std.Title + " " + std.Description) {
		if terms[tok] < 1.0 {
			terms[tok] = 1.0
		}
	}
	for _, cl := range std.Clauses {
		for _, tok := range tokenize.Tokenize(cl.Title + " " + cl.Description) {
			if terms[tok] < 1.0 {
				terms[tok] = 1.0
			}
		}
	}
	for _, ind := range std.AllIndicators() {
		for _, tok := range tokenize.Tokenize(ind) {
			terms[tok] = indicatorWeight
		}
	}
	return terms
}

// standardText is the text embedded for semantic comparison.
func standardText(std *corpus.StandardNode) string {
	parts := []string{std.Title, std.Description}
	parts = append(parts, std.AllIndicators()...)
	return strings.Join(parts, ". ")
}

// semanticInput picks the text to embed on the document side: the best
// excerpt when one exists, otherwise the head of the document.
func semanticInput(docText string, excerpts []store.Excerpt) string {
	if len(excerpts) > 0 {
		return excerpts[0].Text
	}
	const headRunes = 2000
	runes := []rune(docText)
	if len(runes) > headRunes {
		runes = runes[:headRunes]
	}
	return string(runes)
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
