package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertMappingIsIdempotentPerKey(t *testing.T) {
	s := openTestStore(t)

	m := &EvidenceMapping{
		DocumentID: "doc-1",
		StandardID: "HLC_1",
		Accreditor: "HLC",
		Confidence: 0.42,
		Method:     MethodKeyword,
		Excerpts: []Excerpt{
			{Text: "mission statement adopted", PageNumber: 3, MatchedKeywords: []string{"mission"}, Score: 0.42},
		},
	}
	if err := s.UpsertMapping(m); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	m.Confidence = 0.91
	m.Method = MethodHybrid
	if err := s.UpsertMapping(m); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	n, err := s.CountMappings()
	if err != nil {
		t.Fatalf("CountMappings: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 stored mapping, got %d", n)
	}

	got, err := s.GetMapping("doc-1", "HLC_1")
	if err != nil {
		t.Fatalf("GetMapping: %v", err)
	}
	if got.Confidence != 0.91 {
		t.Errorf("confidence = %f, want latest 0.91", got.Confidence)
	}
	if got.Method != MethodHybrid {
		t.Errorf("method = %q, want hybrid", got.Method)
	}
	if len(got.Excerpts) != 1 || got.Excerpts[0].PageNumber != 3 {
		t.Errorf("excerpts not round-tripped: %+v", got.Excerpts)
	}
}

func TestGetMappingsByStandardAndDocument(t *testing.T) {
	s := openTestStore(t)

	mappings := []*EvidenceMapping{
		{DocumentID: "doc-1", StandardID: "HLC_1", Accreditor: "HLC", Confidence: 0.9, Method: MethodKeyword},
		{DocumentID: "doc-2", StandardID: "HLC_1", Accreditor: "HLC", Confidence: 0.5, Method: MethodKeyword},
		{DocumentID: "doc-1", StandardID: "HLC_2", Accreditor: "HLC", Confidence: 0.3, Method: MethodKeyword},
	}
	if err := s.UpsertMappingsBulk(mappings); err != nil {
		t.Fatalf("UpsertMappingsBulk: %v", err)
	}

	byStandard, err := s.GetMappingsForStandard("HLC_1")
	if err != nil {
		t.Fatalf("GetMappingsForStandard: %v", err)
	}
	if len(byStandard) != 2 {
		t.Fatalf("expected 2 mappings for HLC_1, got %d", len(byStandard))
	}
	if byStandard[0].Confidence < byStandard[1].Confidence {
		t.Error("mappings should be ordered by confidence descending")
	}

	byDoc, err := s.GetMappingsForDocument("doc-1")
	if err != nil {
		t.Fatalf("GetMappingsForDocument: %v", err)
	}
	if len(byDoc) != 2 {
		t.Fatalf("expected 2 mappings for doc-1, got %d", len(byDoc))
	}

	ids, err := s.MappedStandardIDs("HLC")
	if err != nil {
		t.Fatalf("MappedStandardIDs: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 distinct mapped standards, got %v", ids)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	s := openTestStore(t)

	doc := &EvidenceDocument{
		ID:          "doc-1",
		Filename:    "self-study.pdf",
		PageCount:   42,
		UploadedAt:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Fingerprint: "abc123",
	}
	if err := s.SaveDocument(doc); err != nil {
		t.Fatalf("SaveDocument: %v", err)
	}

	got, err := s.GetDocument("doc-1")
	if err != nil {
		t.Fatalf("GetDocument: %v", err)
	}
	if got.Filename != "self-study.pdf" || got.PageCount != 42 {
		t.Errorf("document not round-tripped: %+v", got)
	}

	if err := s.UpsertMapping(&EvidenceMapping{
		DocumentID: "doc-1", StandardID: "HLC_1", Accreditor: "HLC",
		Confidence: 0.5, Method: MethodKeyword,
	}); err != nil {
		t.Fatalf("UpsertMapping: %v", err)
	}

	if err := s.DeleteDocument("doc-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if _, err := s.GetDocument("doc-1"); err != sql.ErrNoRows {
		t.Errorf("expected ErrNoRows after delete, got %v", err)
	}
	n, _ := s.CountMappings()
	if n != 0 {
		t.Errorf("expected mappings removed with document, got %d", n)
	}
}

func TestReplaceCorpusMetadata(t *testing.T) {
	s := openTestStore(t)

	metas := []*corpus.CorpusMetadata{
		{Accreditor: "HLC", Version: "2025", StandardCount: 3, LoadedNodeCount: 2, SourceFile: "hlc.yaml"},
	}
	if err := s.ReplaceCorpusMetadata(metas); err != nil {
		t.Fatalf("ReplaceCorpusMetadata: %v", err)
	}

	// A reload with corrected data replaces the row wholesale.
	metas[0].LoadedNodeCount = 3
	metas[0].Version = "2025.1"
	if err := s.ReplaceCorpusMetadata(metas); err != nil {
		t.Fatalf("second ReplaceCorpusMetadata: %v", err)
	}

	got, err := s.GetCorpusMetadata()
	if err != nil {
		t.Fatalf("GetCorpusMetadata: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 metadata row, got %d", len(got))
	}
	if got[0].LoadedNodeCount != 3 || got[0].Version != "2025.1" {
		t.Errorf("metadata not replaced: %+v", got[0])
	}
}

func TestConfidenceBand(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.80, "high"},
		{0.799999, "medium"},
		{0.55, "medium"},
		{0.549999, "low"},
		{0.30, "low"},
		{0.299999, "very_low"},
		{0, "very_low"},
	}
	for _, tt := range tests {
		if got := ConfidenceBand(tt.score); got != tt.want {
			t.Errorf("ConfidenceBand(%f) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
