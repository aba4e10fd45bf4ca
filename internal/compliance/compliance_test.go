package compliance

import (
	"math"
	"testing"
)

func TestCompute(t *testing.T) {
	// half the standards covered with trust 0.8:
	// 0.6*0.5 + 0.4*0.8 = 0.62
	r := Compute("HLC", 10, 5, 0.8, "")
	if math.Abs(r.Coverage-0.5) > 1e-9 {
		t.Errorf("coverage = %v, want 0.5", r.Coverage)
	}
	if math.Abs(r.ComplianceScore-0.62) > 1e-9 {
		t.Errorf("compliance = %v, want 0.62", r.ComplianceScore)
	}
	for _, key := range []string{"coverage", "average_trust", "compliance_score"} {
		if r.Explanations[key] == "" {
			t.Errorf("missing explanation for %s", key)
		}
	}
}

func TestComputeFullCoverageFullTrust(t *testing.T) {
	r := Compute("all", 8, 8, 1.0, "")
	if r.ComplianceScore != 1.0 {
		t.Errorf("compliance = %v, want 1.0", r.ComplianceScore)
	}
}

func TestComputeNoStandards(t *testing.T) {
	r := Compute("HLC", 0, 0, 0.0, "")
	if r.Coverage != 0.0 || r.ComplianceScore != 0.0 {
		t.Errorf("coverage = %v, compliance = %v, want both 0.0", r.Coverage, r.ComplianceScore)
	}
	if r.Explanations["coverage"] == "" {
		t.Error("empty scope must still explain its coverage")
	}
}

func TestComputeClampsTrust(t *testing.T) {
	r := Compute("HLC", 4, 4, 1.5, "")
	if r.AverageTrust != 1.0 {
		t.Errorf("trust = %v, want clamped 1.0", r.AverageTrust)
	}
	if r.ComplianceScore > 1.0 {
		t.Errorf("compliance = %v, exceeds 1.0", r.ComplianceScore)
	}
}

func TestComputeForwardsTrustExplanation(t *testing.T) {
	r := Compute("HLC", 2, 0, 0.0, "no standard has any evidence mapping")
	if r.Explanations["average_trust"] != "no standard has any evidence mapping" {
		t.Errorf("trust explanation = %q, want caller's string forwarded", r.Explanations["average_trust"])
	}
}
