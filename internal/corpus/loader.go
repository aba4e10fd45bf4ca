// Package corpus loads versioned accreditation standard definitions into an
// immutable in-memory graph. One YAML definition file per accreditor declares
// the accreditor code, version, provenance metadata, and a list of standards
// with nested clauses and indicators.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// definitionFile mirrors the on-disk YAML schema for one accreditor.
type definitionFile struct {
	Accreditor    string         `yaml:"accreditor"`
	Version       string         `yaml:"version"`
	EffectiveDate string         `yaml:"effective_date"`
	StandardCount int            `yaml:"standard_count"`
	Metadata      fileMetadata   `yaml:"metadata"`
	Standards     []fileStandard `yaml:"standards"`
}

type fileMetadata struct {
	SourceURL     string `yaml:"source_url"`
	License       string `yaml:"license"`
	Disclaimer    string `yaml:"disclaimer"`
	CoverageNotes string `yaml:"coverage_notes"`
	LastUpdated   string `yaml:"last_updated"`
}

type fileStandard struct {
	ID          string       `yaml:"id"`
	Title       string       `yaml:"title"`
	Description string       `yaml:"description"`
	Category    string       `yaml:"category"`
	Clauses     []fileClause `yaml:"clauses"`
}

type fileClause struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Indicators  []string `yaml:"indicators"`
}

// LoadReport records what happened during a load: which files parsed, which
// were rejected outright, and which individual nodes were skipped. A file
// or node level failure never aborts the rest of the load.
type LoadReport struct {
	Files []FileReport `json:"files" yaml:"files"`
}

// FileReport describes the outcome of loading one definition file.
type FileReport struct {
	Path       string        `json:"path" yaml:"path"`
	Accreditor string        `json:"accreditor,omitempty" yaml:"accreditor,omitempty"`
	ParseError string        `json:"parse_error,omitempty" yaml:"parse_error,omitempty"`
	Skipped    []SkippedNode `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Loaded     int           `json:"loaded" yaml:"loaded"`
}

// SkippedNode records a standard rejected during validation.
type SkippedNode struct {
	ID     string `json:"id,omitempty" yaml:"id,omitempty"`
	Reason string `json:"reason" yaml:"reason"`
}

// HasIssues reports whether any file failed to parse or any node was skipped.
func (r *LoadReport) HasIssues() bool {
	for _, f := range r.Files {
		if f.ParseError != "" || len(f.Skipped) > 0 {
			return true
		}
	}
	return false
}

// Load reads every *.yaml / *.yml definition file in dir and builds a snapshot.
// Structurally invalid files and standards missing required fields are skipped
// and recorded in the report; the remaining files still load. Load only fails
// outright when the directory itself cannot be read.
func Load(dir string) (*Snapshot, *LoadReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	snap := &Snapshot{
		LoadedAt:     time.Now().UTC(),
		byID:         make(map[string]*StandardNode),
		byAccreditor: make(map[string][]*StandardNode),
		metadata:     make(map[string]*CorpusMetadata),
	}
	report := &LoadReport{}

	for _, path := range paths {
		fr := loadFile(snap, path)
		report.Files = append(report.Files, fr)
	}

	return snap, report, nil
}

// loadFile parses one definition file into the snapshot under construction.
func loadFile(snap *Snapshot, path string) FileReport {
	fr := FileReport{Path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		fr.ParseError = err.Error()
		return fr
	}

	var def definitionFile
	if err := yaml.Unmarshal(data, &def); err != nil {
		fr.ParseError = fmt.Sprintf("parse yaml: %v", err)
		return fr
	}

	code := strings.ToUpper(strings.TrimSpace(def.Accreditor))
	if code == "" {
		fr.ParseError = "missing accreditor code"
		return fr
	}
	fr.Accreditor = code

	if _, dup := snap.metadata[code]; dup {
		fr.ParseError = fmt.Sprintf("accreditor %s already loaded from another file", code)
		return fr
	}

	for _, std := range def.Standards {
		node, reason := buildStandard(code, std)
		if node == nil {
			fr.Skipped = append(fr.Skipped, SkippedNode{ID: std.ID, Reason: reason})
			continue
		}
		if _, exists := snap.byID[node.ID]; exists {
			fr.Skipped = append(fr.Skipped, SkippedNode{ID: std.ID, Reason: "duplicate standard id"})
			continue
		}
		snap.byID[node.ID] = node
		snap.byAccreditor[code] = append(snap.byAccreditor[code], node)
		fr.Loaded++
	}

	snap.metadata[code] = &CorpusMetadata{
		Accreditor:      code,
		Version:         def.Version,
		EffectiveDate:   def.EffectiveDate,
		LastUpdated:     def.Metadata.LastUpdated,
		SourceURL:       def.Metadata.SourceURL,
		License:         def.Metadata.License,
		Disclaimer:      def.Metadata.Disclaimer,
		CoverageNotes:   def.Metadata.CoverageNotes,
		StandardCount:   def.StandardCount,
		LoadedNodeCount: fr.Loaded,
		SourceFile:      filepath.Base(path),
	}
	return fr
}

// buildStandard validates one declared standard and converts it to a node.
// Returns nil and a reason when a required field is missing.
func buildStandard(accreditor string, std fileStandard) (*StandardNode, string) {
	id := strings.TrimSpace(std.ID)
	if id == "" {
		return nil, "missing id"
	}
	if strings.TrimSpace(std.Title) == "" {
		return nil, "missing title"
	}

	node := &StandardNode{
		ID:          accreditor + "_" + id,
		Accreditor:  accreditor,
		OriginalID:  id,
		Title:       strings.TrimSpace(std.Title),
		Description: strings.TrimSpace(std.Description),
		Category:    strings.TrimSpace(std.Category),
	}
	for _, cl := range std.Clauses {
		clause := ClauseNode{
			ID:          strings.TrimSpace(cl.ID),
			Title:       strings.TrimSpace(cl.Title),
			Description: strings.TrimSpace(cl.Description),
		}
		for _, ind := range cl.Indicators {
			if s := strings.TrimSpace(ind); s != "" {
				clause.Indicators = append(clause.Indicators, s)
			}
		}
		node.Clauses = append(node.Clauses, clause)
	}
	return node, ""
}
