package risk

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

func fixedPredictor(now time.Time) *Predictor {
	p := NewPredictor(DefaultMappingTarget)
	p.now = func() time.Time { return now }
	return p
}

func mappings(n int) []*store.EvidenceMapping {
	out := make([]*store.EvidenceMapping, n)
	for i := range out {
		out[i] = &store.EvidenceMapping{DocumentID: "doc", StandardID: "std", Confidence: 0.8}
	}
	return out
}

func TestScoreStandardNoEvidence(t *testing.T) {
	p := fixedPredictor(time.Now())
	sc := p.ScoreStandard(Input{StandardID: "HLC_1"})

	if sc.CoverageGap != 1.0 {
		t.Errorf("coverage_gap = %v, want 1.0", sc.CoverageGap)
	}
	if sc.EvidenceQuality != 1.0 {
		t.Errorf("evidence_quality = %v, want default 1.0 without trust data", sc.EvidenceQuality)
	}
	if sc.MappingDensity != 1.0 {
		t.Errorf("mapping_density = %v, want 1.0", sc.MappingDensity)
	}
	if sc.Recency != 1.0 {
		t.Errorf("recency = %v, want 1.0 without timestamps", sc.Recency)
	}
	if sc.FinalRisk != 1.0 {
		t.Errorf("final_risk = %v, want 1.0", sc.FinalRisk)
	}
	if sc.Bucket != BucketCritical {
		t.Errorf("bucket = %s, want critical", sc.Bucket)
	}
	if sc.Explanation == "" {
		t.Error("missing explanation")
	}
}

func TestScoreStandardWellEvidenced(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := fixedPredictor(now)
	sc := p.ScoreStandard(Input{
		StandardID:    "HLC_1",
		Mappings:      mappings(3),
		Trust:         0.9,
		HasTrust:      true,
		EvidenceTimes: []time.Time{now.AddDate(0, -3, 0)},
	})

	if sc.CoverageGap != 0.0 {
		t.Errorf("coverage_gap = %v, want 0.0", sc.CoverageGap)
	}
	if math.Abs(sc.EvidenceQuality-0.1) > 1e-9 {
		t.Errorf("evidence_quality = %v, want 0.1", sc.EvidenceQuality)
	}
	if sc.MappingDensity != 0.0 {
		t.Errorf("mapping_density = %v at target, want 0.0", sc.MappingDensity)
	}
	if sc.Recency != 0.0 {
		t.Errorf("recency = %v for 3-month-old evidence, want 0.0", sc.Recency)
	}
	if sc.Bucket != BucketMinimal {
		t.Errorf("bucket = %s (risk %v), want minimal", sc.Bucket, sc.FinalRisk)
	}
}

func TestMappingDensityPenalty(t *testing.T) {
	p := fixedPredictor(time.Now())
	tests := []struct {
		count int
		want  float64
	}{
		{0, 1.0},
		{1, 1.0 - 1.0/3.0},
		{2, 1.0 - 2.0/3.0},
		{3, 0.0},
		{7, 0.0}, // saturates at target
	}
	for _, tt := range tests {
		sc := p.ScoreStandard(Input{StandardID: "X", Mappings: mappings(tt.count)})
		if math.Abs(sc.MappingDensity-tt.want) > 1e-9 {
			t.Errorf("density with %d mappings = %v, want %v", tt.count, sc.MappingDensity, tt.want)
		}
	}
}

func TestRecencyRamp(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := fixedPredictor(now)

	tests := []struct {
		name string
		age  time.Duration
		want float64
	}{
		{"six months", 182 * 24 * time.Hour, 0.0},
		{"two years", 2 * 365 * 24 * time.Hour, 0.5},
		{"four years", 4 * 365 * 24 * time.Hour, 1.0},
	}
	for _, tt := range tests {
		got := p.recencyRisk([]time.Time{now.Add(-tt.age)})
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("%s: recency = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRecencyUsesNewestEvidence(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := fixedPredictor(now)
	got := p.recencyRisk([]time.Time{
		now.AddDate(-6, 0, 0),
		now.AddDate(0, -2, 0),
	})
	if got != 0.0 {
		t.Errorf("recency = %v, want 0.0 when newest evidence is recent", got)
	}
}

func TestClassifyBoundaries(t *testing.T) {
	tests := []struct {
		risk float64
		want string
	}{
		{1.0, BucketCritical},
		{0.85, BucketCritical},
		{0.849999, BucketHigh},
		{0.70, BucketHigh},
		{0.699999, BucketMedium},
		{0.40, BucketMedium},
		{0.399999, BucketLow},
		{0.15, BucketLow},
		{0.149999, BucketMinimal},
		{0.0, BucketMinimal},
	}
	for _, tt := range tests {
		if got := Classify(tt.risk); got != tt.want {
			t.Errorf("Classify(%v) = %s, want %s", tt.risk, got, tt.want)
		}
	}
}

func TestScoreBulk(t *testing.T) {
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	p := fixedPredictor(now)

	inputs := []Input{
		{StandardID: "HLC_A"}, // no evidence, risk 1.0
		{StandardID: "HLC_B", Mappings: mappings(3), Trust: 0.9, HasTrust: true,
			EvidenceTimes: []time.Time{now.AddDate(0, -1, 0)}},
		{StandardID: "HLC_C", Mappings: mappings(1), Trust: 0.5, HasTrust: true,
			EvidenceTimes: []time.Time{now.AddDate(-2, 0, 0)}},
	}

	scores, err := p.ScoreBulk(context.Background(), inputs)
	if err != nil {
		t.Fatalf("ScoreBulk: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("got %d scores, want 3", len(scores))
	}
	for i := 1; i < len(scores); i++ {
		if scores[i].FinalRisk > scores[i-1].FinalRisk {
			t.Errorf("scores not sorted by descending risk: %v after %v",
				scores[i].FinalRisk, scores[i-1].FinalRisk)
		}
	}
	if scores[0].StandardID != "HLC_A" {
		t.Errorf("highest risk = %s, want HLC_A", scores[0].StandardID)
	}
}

func TestScoreBulkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := fixedPredictor(time.Now())
	if _, err := p.ScoreBulk(ctx, []Input{{StandardID: "X"}}); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestAggregate(t *testing.T) {
	scores := []*Score{
		{StandardID: "A", FinalRisk: 0.9, Bucket: BucketCritical},
		{StandardID: "B", FinalRisk: 0.5, Bucket: BucketMedium},
		{StandardID: "C", FinalRisk: 0.1, Bucket: BucketMinimal},
	}
	sum := Aggregate(scores)
	if sum.Buckets[BucketCritical] != 1 || sum.Buckets[BucketMedium] != 1 || sum.Buckets[BucketMinimal] != 1 {
		t.Errorf("bucket counts = %v", sum.Buckets)
	}
	if math.Abs(sum.AverageRisk-0.5) > 1e-9 {
		t.Errorf("average = %v, want 0.5", sum.AverageRisk)
	}
	if sum.ScoredCount != 3 {
		t.Errorf("scored count = %d, want 3", sum.ScoredCount)
	}
}

func TestAggregateEmpty(t *testing.T) {
	sum := Aggregate(nil)
	if sum.AverageRisk != 0.0 {
		t.Errorf("average = %v, want 0.0", sum.AverageRisk)
	}
	if sum.Explanation == "" {
		t.Error("empty aggregation must carry an explanation")
	}
}
