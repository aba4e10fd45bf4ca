// Package compliance combines evidence coverage with average trust into a
// single compliance score. Breadth weighs more than depth: reliable evidence
// for half the standards cannot substitute for the missing half.
package compliance

import (
	"fmt"
)

// Coverage and trust weights of the compliance score.
const (
	WeightCoverage = 0.6
	WeightTrust    = 0.4
)

// Report is the compliance assessment for one scope (a single accreditor or
// every loaded corpus). Every number carries an explanation string; callers
// surface these directly to end users.
type Report struct {
	Scope string `json:"scope"`

	TotalStandards  int `json:"total_standards"`
	MappedStandards int `json:"mapped_standards"`

	Coverage        float64 `json:"coverage"`
	AverageTrust    float64 `json:"average_trust"`
	ComplianceScore float64 `json:"compliance_score"`

	Explanations map[string]string `json:"explanations"`
}

// Compute builds the compliance report for a scope with totalStandards
// loaded standards, mappedStandards of which have at least one evidence
// mapping, and the given average trust over mapped standards.
func Compute(scope string, totalStandards, mappedStandards int, averageTrust float64, trustExplanation string) Report {
	r := Report{
		Scope:           scope,
		TotalStandards:  totalStandards,
		MappedStandards: mappedStandards,
		AverageTrust:    clamp01(averageTrust),
		Explanations:    make(map[string]string, 3),
	}

	if totalStandards > 0 {
		r.Coverage = clamp01(float64(mappedStandards) / float64(totalStandards))
		r.Explanations["coverage"] = fmt.Sprintf("%d of %d standards have at least one evidence mapping (%.0f%%)",
			mappedStandards, totalStandards, r.Coverage*100)
	} else {
		r.Explanations["coverage"] = "no standards are loaded in this scope; coverage is 0.0"
	}

	if trustExplanation != "" {
		r.Explanations["average_trust"] = trustExplanation
	} else {
		r.Explanations["average_trust"] = fmt.Sprintf("average trust %.2f across mapped standards", r.AverageTrust)
	}

	r.ComplianceScore = clamp01(WeightCoverage*r.Coverage + WeightTrust*r.AverageTrust)
	r.Explanations["compliance_score"] = fmt.Sprintf(
		"%.2f = %.1f x coverage (%.2f) + %.1f x average trust (%.2f); breadth of evidence weighs more than its depth",
		r.ComplianceScore, WeightCoverage, r.Coverage, WeightTrust, r.AverageTrust)
	return r
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
