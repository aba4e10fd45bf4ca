// Package crosswalk finds equivalent standards across two accreditors'
// corpora by keyword-set similarity over standard descriptions. Matches are
// transient: computed per request from the current snapshot, never persisted.
package crosswalk

import (
	"context"
	"fmt"
	"sort"

	"github.com/jeremyje1/MapMyStandards-sub001/internal/corpus"
	"github.com/jeremyje1/MapMyStandards-sub001/internal/tokenize"
)

// Defaults for match retention.
const (
	DefaultThreshold = 0.3
	DefaultTopK      = 10
)

// ValidationError reports an invalid crosswalk request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "crosswalk: " + e.Reason
}

// Match is one source-to-target equivalence candidate.
type Match struct {
	TargetStandardID    string   `json:"target_standard_id"`
	TargetTitle         string   `json:"target_title"`
	Similarity          float64  `json:"similarity"`
	OverlappingKeywords []string `json:"overlapping_keywords"`
}

// SourceMatches groups the retained matches of one source standard.
type SourceMatches struct {
	SourceStandardID string  `json:"source_standard_id"`
	SourceTitle      string  `json:"source_title"`
	Matches          []Match `json:"matches"`
}

// Result is a full crosswalk between two accreditors.
type Result struct {
	SourceAccreditor string          `json:"source_accreditor"`
	TargetAccreditor string          `json:"target_accreditor"`
	Threshold        float64         `json:"threshold"`
	TopK             int             `json:"top_k"`
	Sources          []SourceMatches `json:"sources"`

	// TimedOut marks a partial result: the time budget expired before every
	// source standard was compared.
	TimedOut bool `json:"timed_out,omitempty"`
}

// Options configures one crosswalk run.
type Options struct {
	Threshold float64
	TopK      int
}

// Run crosswalks every source standard against every target standard in the
// snapshot. Same-accreditor requests and unloaded accreditors fail with a
// ValidationError. A context deadline mid-run returns the sources compared so
// far with TimedOut set, not an error.
func Run(ctx context.Context, snap *corpus.Snapshot, sourceAccreditor, targetAccreditor string, opts Options) (*Result, error) {
	if sourceAccreditor == targetAccreditor {
		return nil, &ValidationError{Reason: fmt.Sprintf("source and target accreditor are both %q", sourceAccreditor)}
	}
	if !snap.HasAccreditor(sourceAccreditor) {
		return nil, &ValidationError{Reason: fmt.Sprintf("accreditor %q is not loaded", sourceAccreditor)}
	}
	if !snap.HasAccreditor(targetAccreditor) {
		return nil, &ValidationError{Reason: fmt.Sprintf("accreditor %q is not loaded", targetAccreditor)}
	}

	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.TopK <= 0 {
		opts.TopK = DefaultTopK
	}

	res := &Result{
		SourceAccreditor: sourceAccreditor,
		TargetAccreditor: targetAccreditor,
		Threshold:        opts.Threshold,
		TopK:             opts.TopK,
	}

	targets := snap.StandardsFor(targetAccreditor)
	targetSets := make([]map[string]struct{}, len(targets))
	for i, tgt := range targets {
		targetSets[i] = keywordSet(tgt)
	}

	for _, src := range snap.StandardsFor(sourceAccreditor) {
		if ctx.Err() != nil {
			res.TimedOut = true
			return res, nil
		}

		srcSet := keywordSet(src)
		if len(srcSet) == 0 {
			continue
		}

		var matches []Match
		for i, tgt := range targets {
			sim := tokenize.Jaccard(srcSet, targetSets[i])
			if sim < opts.Threshold {
				continue
			}
			matches = append(matches, Match{
				TargetStandardID:    tgt.ID,
				TargetTitle:         tgt.Title,
				Similarity:          sim,
				OverlappingKeywords: sortedOverlap(srcSet, targetSets[i]),
			})
		}
		if len(matches) == 0 {
			continue
		}

		sort.Slice(matches, func(i, j int) bool {
			if matches[i].Similarity != matches[j].Similarity {
				return matches[i].Similarity > matches[j].Similarity
			}
			return matches[i].TargetStandardID < matches[j].TargetStandardID
		})
		if len(matches) > opts.TopK {
			matches = matches[:opts.TopK]
		}

		res.Sources = append(res.Sources, SourceMatches{
			SourceStandardID: src.ID,
			SourceTitle:      src.Title,
			Matches:          matches,
		})
	}

	return res, nil
}

// keywordSet tokenizes a standard's title and description into its
// comparison set.
func keywordSet(std *corpus.StandardNode) map[string]struct{} {
	return tokenize.Set(std.Title + " " + std.Description)
}

// sortedOverlap returns the intersection of two keyword sets in lexical order.
func sortedOverlap(a, b map[string]struct{}) []string {
	out := tokenize.Overlap(a, b)
	sort.Strings(out)
	return out
}
