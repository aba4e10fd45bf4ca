package trust

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

func fixedScorer(now time.Time) *Scorer {
	s := NewScorer(DefaultWeights())
	s.now = func() time.Time { return now }
	return s
}

func richDocument(uploaded time.Time) *store.EvidenceDocument {
	var b strings.Builder
	b.WriteString("FACULTY CREDENTIALS REPORT\n")
	for i := 0; i < 600; i++ {
		b.WriteString("credential evidence detail ")
	}
	return &store.EvidenceDocument{
		ID:         "doc-1",
		Text:       b.String(),
		PageCount:  6,
		UploadedAt: uploaded,
	}
}

func mappingWithExcerpts(n int) *store.EvidenceMapping {
	m := &store.EvidenceMapping{
		DocumentID: "doc-1",
		StandardID: "HLC_3.C",
		Confidence: 0.85,
		Method:     store.MethodKeyword,
	}
	for i := 0; i < n; i++ {
		m.Excerpts = append(m.Excerpts, store.Excerpt{Text: "passage", PageNumber: i + 1, Score: 0.7})
	}
	return m
}

func TestScoreComponentsInRange(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s := fixedScorer(now)
	sc := s.Score(richDocument(now.AddDate(0, -1, 0)), mappingWithExcerpts(3))

	components := map[string]float64{
		"quality":      sc.Quality,
		"reliability":  sc.Reliability,
		"confidence":   sc.Confidence,
		"freshness":    sc.Freshness,
		"completeness": sc.Completeness,
		"overall":      sc.Overall,
	}
	for name, v := range components {
		if v < 0 || v > 1 {
			t.Errorf("%s = %v, outside [0,1]", name, v)
		}
		if sc.Explanations[name] == "" {
			t.Errorf("%s has no explanation", name)
		}
	}

	if sc.Confidence != 0.85 {
		t.Errorf("confidence = %v, want mapping confidence 0.85", sc.Confidence)
	}
	if sc.Freshness != 1.0 {
		t.Errorf("freshness = %v for month-old evidence, want 1.0", sc.Freshness)
	}
}

func TestFreshnessDecay(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	s := fixedScorer(now)
	mapping := mappingWithExcerpts(1)

	recent := s.Score(richDocument(now.AddDate(0, -2, 0)), mapping)
	midAge := s.Score(richDocument(now.AddDate(-2, 0, 0)), mapping)
	ancient := s.Score(richDocument(now.AddDate(-8, 0, 0)), mapping)

	if recent.Freshness != 1.0 {
		t.Errorf("2-month-old freshness = %v, want 1.0", recent.Freshness)
	}
	if midAge.Freshness >= recent.Freshness || midAge.Freshness <= ancient.Freshness {
		t.Errorf("2-year-old freshness %v not between fresh %v and stale %v",
			midAge.Freshness, recent.Freshness, ancient.Freshness)
	}
	if math.Abs(ancient.Freshness-0.2) > 1e-9 {
		t.Errorf("8-year-old freshness = %v, want floor 0.2", ancient.Freshness)
	}
}

func TestScoreNilDocument(t *testing.T) {
	s := fixedScorer(time.Now())
	sc := s.Score(nil, mappingWithExcerpts(2))

	if sc.Reliability != 0.0 {
		t.Errorf("reliability without document = %v, want 0.0", sc.Reliability)
	}
	if sc.Completeness != 0.0 {
		t.Errorf("completeness without document = %v, want 0.0", sc.Completeness)
	}
	if sc.Freshness != 0.2 {
		t.Errorf("freshness without timestamp = %v, want stale floor 0.2", sc.Freshness)
	}
	if sc.Confidence != 0.85 {
		t.Errorf("confidence = %v, want 0.85 even without document", sc.Confidence)
	}
}

func TestMoreExcerptsScoreHigherQuality(t *testing.T) {
	now := time.Now()
	s := fixedScorer(now)
	doc := richDocument(now)

	one := s.Score(doc, mappingWithExcerpts(1))
	three := s.Score(doc, mappingWithExcerpts(3))
	if three.Quality <= one.Quality {
		t.Errorf("3-excerpt quality %v not above 1-excerpt quality %v", three.Quality, one.Quality)
	}
}

func TestInvalidWeightsFallBackToDefault(t *testing.T) {
	s := NewScorer(Weights{Quality: -1})
	if s.weights != DefaultWeights() {
		t.Errorf("weights = %+v, want default", s.weights)
	}
}

func TestForStandard(t *testing.T) {
	scores := []*Score{{Overall: 0.6}, {Overall: 0.8}, {Overall: 1.0}}
	st := ForStandard("HLC_3.C", scores)
	if math.Abs(st.Trust-0.8) > 1e-9 {
		t.Errorf("trust = %v, want 0.8", st.Trust)
	}
	if st.MappingCount != 3 {
		t.Errorf("mapping count = %d, want 3", st.MappingCount)
	}
	if st.Explanation == "" {
		t.Error("missing explanation")
	}
}

func TestForStandardNoMappings(t *testing.T) {
	st := ForStandard("HLC_9.Z", nil)
	if st.Trust != 0.0 {
		t.Errorf("trust = %v, want 0.0", st.Trust)
	}
	if st.Explanation == "" {
		t.Error("zero-data result must carry an explanation")
	}
}

func TestAverage(t *testing.T) {
	avg, expl := Average([]StandardTrust{
		{StandardID: "A", Trust: 0.9, MappingCount: 2},
		{StandardID: "B", Trust: 0.7, MappingCount: 1},
		{StandardID: "C", Trust: 0.0, MappingCount: 0}, // excluded
	})
	if math.Abs(avg-0.8) > 1e-9 {
		t.Errorf("average = %v, want 0.8 (unmapped standard excluded)", avg)
	}
	if expl == "" {
		t.Error("missing explanation")
	}
}

func TestAverageNoMappedStandards(t *testing.T) {
	avg, expl := Average([]StandardTrust{{StandardID: "A", MappingCount: 0}})
	if avg != 0.0 {
		t.Errorf("average = %v, want 0.0", avg)
	}
	if expl == "" {
		t.Error("zero-data result must carry an explanation")
	}
}
