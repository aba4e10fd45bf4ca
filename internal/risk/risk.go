// Package risk predicts gap risk per standard from evidence coverage,
// quality, density, and recency. Scores are recomputed on demand from the
// current corpus snapshot and mapping state and are never cached across a
// reload.
package risk

import (
	"fmt"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

// Component weights of the final risk score.
const (
	WeightCoverageGap     = 0.40
	WeightEvidenceQuality = 0.25
	WeightMappingDensity  = 0.20
	WeightRecency         = 0.15
)

// DefaultMappingTarget is the mapping count at which the density penalty
// saturates to zero.
const DefaultMappingTarget = 3

// Recency ramp anchors: evidence entirely newer than one year contributes no
// recency risk, evidence entirely older than three years contributes full
// recency risk.
const (
	recencyFloor   = 365 * 24 * time.Hour
	recencyCeiling = 3 * 365 * 24 * time.Hour
)

// Risk buckets, half-open with an inclusive lower bound.
const (
	BucketCritical = "critical" // >= 0.85
	BucketHigh     = "high"     // [0.70, 0.85)
	BucketMedium   = "medium"   // [0.40, 0.70)
	BucketLow      = "low"      // [0.15, 0.40)
	BucketMinimal  = "minimal"  // < 0.15
)

// Score is the gap risk assessment of one standard.
type Score struct {
	StandardID string `json:"standard_id"`

	CoverageGap     float64 `json:"coverage_gap"`
	EvidenceQuality float64 `json:"evidence_quality"`
	MappingDensity  float64 `json:"mapping_density"`
	Recency         float64 `json:"recency"`

	FinalRisk float64 `json:"final_risk"`
	Bucket    string  `json:"bucket"`

	Explanation string `json:"explanation"`
}

// Input is the evidence state of one standard, assembled by the caller from
// a fixed snapshot.
type Input struct {
	StandardID string
	Mappings   []*store.EvidenceMapping

	// Trust is the standard's aggregated trust value; HasTrust is false when
	// no trust data exists, in which case evidence quality risk defaults to
	// maximal.
	Trust    float64
	HasTrust bool

	// EvidenceTimes are the upload timestamps of the standard's evidence
	// documents. Zero times are ignored.
	EvidenceTimes []time.Time
}

// Predictor computes risk scores.
type Predictor struct {
	target int
	now    func() time.Time
}

// NewPredictor creates a predictor with the given mapping density target.
// Non-positive targets fall back to the default.
func NewPredictor(mappingTarget int) *Predictor {
	if mappingTarget <= 0 {
		mappingTarget = DefaultMappingTarget
	}
	return &Predictor{target: mappingTarget, now: time.Now}
}

// ScoreStandard computes the weighted risk score for one standard.
func (p *Predictor) ScoreStandard(in Input) *Score {
	sc := &Score{StandardID: in.StandardID}

	if len(in.Mappings) == 0 {
		sc.CoverageGap = 1.0
	}

	sc.EvidenceQuality = 1.0
	if in.HasTrust {
		sc.EvidenceQuality = clamp01(1.0 - in.Trust)
	}

	density := float64(len(in.Mappings)) / float64(p.target)
	if density > 1 {
		density = 1
	}
	sc.MappingDensity = clamp01(1.0 - density)

	sc.Recency = p.recencyRisk(in.EvidenceTimes)

	sc.FinalRisk = clamp01(WeightCoverageGap*sc.CoverageGap +
		WeightEvidenceQuality*sc.EvidenceQuality +
		WeightMappingDensity*sc.MappingDensity +
		WeightRecency*sc.Recency)
	sc.Bucket = Classify(sc.FinalRisk)
	sc.Explanation = fmt.Sprintf(
		"risk %.2f (%s): %d mapping(s) against target %d, coverage gap %.2f, evidence quality risk %.2f, recency risk %.2f",
		sc.FinalRisk, sc.Bucket, len(in.Mappings), p.target, sc.CoverageGap, sc.EvidenceQuality, sc.Recency)
	return sc
}

// recencyRisk ramps from 0 when the newest evidence is under a year old to 1
// when it is three or more years old. No usable timestamps means full risk.
func (p *Predictor) recencyRisk(times []time.Time) float64 {
	var newest time.Time
	for _, t := range times {
		if t.IsZero() {
			continue
		}
		if t.After(newest) {
			newest = t
		}
	}
	if newest.IsZero() {
		return 1.0
	}

	age := p.now().Sub(newest)
	switch {
	case age <= recencyFloor:
		return 0.0
	case age >= recencyCeiling:
		return 1.0
	default:
		return clamp01(float64(age-recencyFloor) / float64(recencyCeiling-recencyFloor))
	}
}

// Classify maps a final risk value onto its bucket.
func Classify(risk float64) string {
	switch {
	case risk >= 0.85:
		return BucketCritical
	case risk >= 0.70:
		return BucketHigh
	case risk >= 0.40:
		return BucketMedium
	case risk >= 0.15:
		return BucketLow
	default:
		return BucketMinimal
	}
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
