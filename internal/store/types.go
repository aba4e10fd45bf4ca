package store

import "time"

// Mapping methods recorded on an evidence mapping.
const (
	MethodKeyword   = "keyword"
	MethodEmbedding = "embedding"
	MethodHybrid    = "hybrid"
)

// EvidenceDocument is a caller-supplied evidence document. The raw text is
// held in memory for mapping; only identity and structural metadata are
// persisted; this core never stores blobs.
type EvidenceDocument struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename,omitempty"`
	Text        string    `json:"-"`
	PageCount   int       `json:"page_count"`
	UploadedAt  time.Time `json:"uploaded_at"`
	Fingerprint string    `json:"fingerprint,omitempty"` // content hash for idempotent re-upload
}

// Excerpt is a supporting passage extracted from a document for one standard.
type Excerpt struct {
	Text            string   `json:"text"`
	PageNumber      int      `json:"page_number"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
	Score           float64  `json:"score"`
}

// EvidenceMapping links one document to one standard with a confidence score.
// The (DocumentID, StandardID) pair is unique; re-mapping the same pair
// overwrites the stored record.
type EvidenceMapping struct {
	DocumentID string    `json:"document_id"`
	StandardID string    `json:"standard_id"`
	Accreditor string    `json:"accreditor"`
	Confidence float64   `json:"confidence_score"`
	Method     string    `json:"mapping_method"` // keyword, embedding, hybrid
	Excerpts   []Excerpt `json:"excerpts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ConfidenceBand labels a confidence score for display. Bands are half-open
// with an inclusive lower bound.
func ConfidenceBand(score float64) string {
	switch {
	case score >= 0.80:
		return "high"
	case score >= 0.55:
		return "medium"
	case score >= 0.30:
		return "low"
	default:
		return "very_low"
	}
}
