package corpus

import (
	"sort"
	"time"
)

// CorpusMetadata describes the provenance of one accreditor's loaded corpus.
// It is created during load and replaced wholesale on reload, never partially
// mutated.
type CorpusMetadata struct {
	Accreditor    string `json:"accreditor" yaml:"accreditor"`
	Version       string `json:"version" yaml:"version"`
	EffectiveDate string `json:"effective_date" yaml:"effective_date"`
	LastUpdated   string `json:"last_updated,omitempty" yaml:"last_updated,omitempty"`
	SourceURL     string `json:"source_url,omitempty" yaml:"source_url,omitempty"`
	License       string `json:"license,omitempty" yaml:"license,omitempty"`
	Disclaimer    string `json:"disclaimer,omitempty" yaml:"disclaimer,omitempty"`
	CoverageNotes string `json:"coverage_notes,omitempty" yaml:"coverage_notes,omitempty"`

	// StandardCount is the count declared in the definition file.
	// LoadedNodeCount is what actually survived validation. A mismatch means
	// nodes were rejected during load.
	StandardCount   int    `json:"standard_count" yaml:"standard_count"`
	LoadedNodeCount int    `json:"loaded_node_count" yaml:"loaded_node_count"`
	SourceFile      string `json:"source_file" yaml:"source_file"`
}

// StandardNode is a single accreditation standard. The ID is namespaced as
// {ACCREDITOR}_{original_id} so it is unique across the whole loaded set.
type StandardNode struct {
	ID          string       `json:"id" yaml:"id"`
	Accreditor  string       `json:"accreditor" yaml:"accreditor"`
	OriginalID  string       `json:"original_id" yaml:"original_id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description" yaml:"description"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Clauses     []ClauseNode `json:"clauses,omitempty" yaml:"clauses,omitempty"`
}

// ClauseNode is a sub-requirement nested under a standard.
type ClauseNode struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Indicators  []string `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

// AllIndicators returns every indicator string across all clauses of the standard.
func (n *StandardNode) AllIndicators() []string {
	var out []string
	for _, c := range n.Clauses {
		out = append(out, c.Indicators...)
	}
	return out
}

// Snapshot is an immutable view of every loaded corpus. All readers operate
// against a single snapshot for the duration of one operation; reload publishes
// a new snapshot rather than mutating this one.
type Snapshot struct {
	Generation int64
	LoadedAt   time.Time

	byID         map[string]*StandardNode
	byAccreditor map[string][]*StandardNode
	metadata     map[string]*CorpusMetadata
}

// Standard looks up a standard by its namespaced id.
func (s *Snapshot) Standard(id string) (*StandardNode, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// StandardsFor returns all standards for one accreditor, in definition order.
func (s *Snapshot) StandardsFor(accreditor string) []*StandardNode {
	return s.byAccreditor[accreditor]
}

// HasAccreditor reports whether a corpus is loaded for the given code.
func (s *Snapshot) HasAccreditor(accreditor string) bool {
	_, ok := s.metadata[accreditor]
	return ok
}

// Accreditors returns the loaded accreditor codes in sorted order.
func (s *Snapshot) Accreditors() []string {
	codes := make([]string, 0, len(s.metadata))
	for code := range s.metadata {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Metadata returns provenance metadata for every loaded accreditor, sorted by
// accreditor code.
func (s *Snapshot) Metadata() []*CorpusMetadata {
	out := make([]*CorpusMetadata, 0, len(s.metadata))
	for _, code := range s.Accreditors() {
		out = append(out, s.metadata[code])
	}
	return out
}

// MetadataFor returns provenance metadata for one accreditor.
func (s *Snapshot) MetadataFor(accreditor string) (*CorpusMetadata, bool) {
	m, ok := s.metadata[accreditor]
	return m, ok
}

// AllStandards returns every loaded standard across accreditors.
func (s *Snapshot) AllStandards() []*StandardNode {
	var out []*StandardNode
	for _, code := range s.Accreditors() {
		out = append(out, s.byAccreditor[code]...)
	}
	return out
}

// TotalStandards returns the number of loaded standards across all accreditors.
func (s *Snapshot) TotalStandards() int {
	return len(s.byID)
}
