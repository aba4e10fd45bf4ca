package engine

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/config"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/risk"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/store"
)

const testDefinition = `accreditor: test
version: "2026"
effective_date: "2026-01-01"
standard_count: 2
standards:
  - id: "A"
    title: Faculty Qualifications
    description: The institution employs qualified faculty with verified credentials.
    clauses:
      - id: "A.1"
        title: Credential review
        indicators:
          - faculty credentials
          - transcript verification
  - id: "B"
    title: Fiscal Resources
    description: The institution maintains audited financial statements and fiscal reserves.
`

func newTestEngine(t *testing.T) (*Engine, string) {
	t.Helper()

	db, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	e, err := New(config.DefaultConfig(), db)
	if err != nil {
		t.Fatalf("building engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })

	corpusDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(corpusDir, "test.yaml"), []byte(testDefinition), 0o644); err != nil {
		t.Fatal(err)
	}
	return e, corpusDir
}

func TestOperationsBeforeLoad(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.MapEvidence(context.Background(), &store.EvidenceDocument{ID: "d"}, "")
	if !errors.Is(err, corpus.ErrNotLoaded) {
		t.Errorf("MapEvidence before load: err = %v, want ErrNotLoaded", err)
	}
	if _, err := e.ScoreRisk("TEST_A"); !errors.Is(err, corpus.ErrNotLoaded) {
		t.Errorf("ScoreRisk before load: err = %v, want ErrNotLoaded", err)
	}
}

func TestEndToEndScenario(t *testing.T) {
	e, corpusDir := newTestEngine(t)

	snap, report, err := e.LoadCorpus(corpusDir)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if report.HasIssues() {
		t.Fatalf("unexpected load issues: %+v", report)
	}
	if snap.TotalStandards() != 2 {
		t.Fatalf("loaded %d standards, want 2", snap.TotalStandards())
	}

	// evidence supporting standard A only
	doc := &store.EvidenceDocument{
		ID: "doc-1",
		Text: `--- Page 1 ---
Faculty credentials are verified for every appointment. Transcript
verification is performed by the registrar, and qualified faculty
credentials are reviewed annually against program requirements.`,
	}
	mappings, err := e.MapEvidence(context.Background(), doc, "TEST")
	if err != nil {
		t.Fatalf("MapEvidence: %v", err)
	}
	if len(mappings) == 0 {
		t.Fatal("expected at least one mapping")
	}
	for _, m := range mappings {
		if m.StandardID == "TEST_B" {
			t.Fatalf("fiscal standard matched faculty evidence with confidence %v", m.Confidence)
		}
		if m.Confidence < 0 || m.Confidence > 1 {
			t.Errorf("confidence %v outside [0,1]", m.Confidence)
		}
	}

	// compliance: one of two standards mapped
	rep, err := e.ComputeCompliance("TEST")
	if err != nil {
		t.Fatalf("ComputeCompliance: %v", err)
	}
	if math.Abs(rep.Coverage-0.5) > 1e-9 {
		t.Errorf("coverage = %v, want 0.5", rep.Coverage)
	}
	wantScore := 0.6*rep.Coverage + 0.4*rep.AverageTrust
	if math.Abs(rep.ComplianceScore-wantScore) > 1e-9 {
		t.Errorf("compliance = %v, want %v", rep.ComplianceScore, wantScore)
	}
	if rep.Explanations["compliance_score"] == "" {
		t.Error("compliance score has no explanation")
	}

	// risk: unmapped standard carries a full coverage gap
	scoreB, err := e.ScoreRisk("TEST_B")
	if err != nil {
		t.Fatalf("ScoreRisk(TEST_B): %v", err)
	}
	if scoreB.CoverageGap != 1.0 {
		t.Errorf("TEST_B coverage_gap = %v, want 1.0", scoreB.CoverageGap)
	}
	if scoreB.Bucket != risk.BucketCritical {
		t.Errorf("TEST_B bucket = %s, want critical", scoreB.Bucket)
	}
	scoreA, err := e.ScoreRisk("TEST_A")
	if err != nil {
		t.Fatalf("ScoreRisk(TEST_A): %v", err)
	}
	if scoreA.FinalRisk >= scoreB.FinalRisk {
		t.Errorf("mapped standard risk %v not below unmapped %v", scoreA.FinalRisk, scoreB.FinalRisk)
	}

	// trust of the mapped standard
	st, err := e.StandardTrust("TEST_A")
	if err != nil {
		t.Fatalf("StandardTrust: %v", err)
	}
	if st.MappingCount == 0 || st.Trust <= 0 || st.Trust > 1 {
		t.Errorf("standard trust = %+v", st)
	}
}

func TestMapEvidenceUnknownScope(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	_, err := e.MapEvidence(context.Background(), &store.EvidenceDocument{ID: "d", Text: "text"}, "WASC")
	if !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestUpsertMappingValidation(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		m    *store.EvidenceMapping
	}{
		{"unknown standard", &store.EvidenceMapping{DocumentID: "d", StandardID: "TEST_Z", Confidence: 0.5}},
		{"missing document id", &store.EvidenceMapping{StandardID: "TEST_A", Confidence: 0.5}},
		{"confidence above 1", &store.EvidenceMapping{DocumentID: "d", StandardID: "TEST_A", Confidence: 1.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := e.UpsertMapping(tt.m); !errors.Is(err, ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}

	valid := &store.EvidenceMapping{DocumentID: "d", StandardID: "TEST_A", Confidence: 0.9, Method: store.MethodKeyword}
	if err := e.UpsertMapping(valid); err != nil {
		t.Fatalf("valid upsert failed: %v", err)
	}
	if valid.Accreditor != "TEST" {
		t.Errorf("accreditor = %q, want filled from standard", valid.Accreditor)
	}
}

func TestScoreRiskUnknownStandard(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ScoreRisk("TEST_Z"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestScoreRiskBulkSkipsUnknown(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	scores, skipped, err := e.ScoreRiskBulk(context.Background(), []string{"TEST_A", "TEST_Z", "TEST_B"})
	if err != nil {
		t.Fatalf("ScoreRiskBulk: %v", err)
	}
	if len(scores) != 2 {
		t.Errorf("scored %d standards, want 2", len(scores))
	}
	if len(skipped) != 1 || skipped[0] != "TEST_Z" {
		t.Errorf("skipped = %v, want [TEST_Z]", skipped)
	}

	sum := e.AggregateRisk(scores)
	if sum.ScoredCount != 2 {
		t.Errorf("aggregate scored count = %d, want 2", sum.ScoredCount)
	}
}

func TestCrosswalkSelfIsValidationError(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	if _, err := e.Crosswalk(context.Background(), "TEST", "TEST", 0.3, 10); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestComplianceUnknownAccreditor(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	if _, err := e.ComputeCompliance("WASC"); !errors.Is(err, ErrValidation) {
		t.Errorf("err = %v, want ErrValidation", err)
	}
}

func TestComplianceEmptyEvidence(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	rep, err := e.ComputeCompliance("")
	if err != nil {
		t.Fatalf("ComputeCompliance: %v", err)
	}
	if rep.Coverage != 0.0 || rep.AverageTrust != 0.0 || rep.ComplianceScore != 0.0 {
		t.Errorf("report = %+v, want all zeros with no evidence", rep)
	}
	if rep.Explanations["average_trust"] == "" {
		t.Error("zero-data trust must carry an explanation")
	}
}

func TestCorpusMetadataFallsBackToStore(t *testing.T) {
	e, corpusDir := newTestEngine(t)
	if _, _, err := e.LoadCorpus(corpusDir); err != nil {
		t.Fatal(err)
	}

	metas, err := e.CorpusMetadata()
	if err != nil {
		t.Fatalf("CorpusMetadata: %v", err)
	}
	if len(metas) != 1 || metas[0].Accreditor != "TEST" {
		t.Fatalf("metadata = %+v", metas)
	}
	if metas[0].StandardCount != 2 || metas[0].LoadedNodeCount != 2 {
		t.Errorf("counts = %d declared / %d loaded, want 2/2", metas[0].StandardCount, metas[0].LoadedNodeCount)
	}
}
