// Package tokenize provides the shared term extraction used by evidence
// mapping and crosswalk matching. Tokenization is deterministic: lowercase,
// punctuation-split, stopword-filtered, short tokens dropped.
package tokenize

import (
	"strings"
	"unicode"
)

// minTokenLen drops tokens too short to carry meaning ("a", "of", "to").
const minTokenLen = 3

// stopwords are common English terms plus boilerplate that appears in nearly
// every accreditation standard and would otherwise dominate overlap scores.
var stopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "with": {}, "that": {},
	"this": {}, "from": {}, "has": {}, "have": {}, "its": {}, "was": {},
	"were": {}, "will": {}, "shall": {}, "should": {}, "must": {}, "may": {},
	"can": {}, "not": {}, "all": {}, "any": {}, "each": {}, "into": {},
	"such": {}, "other": {}, "than": {}, "then": {}, "when": {}, "where": {},
	"which": {}, "while": {}, "who": {}, "whom": {}, "whose": {}, "how": {},
	"institution": {}, "institutional": {}, "institutions": {},
	"standard": {}, "standards": {}, "requirement": {}, "requirements": {},
	"accreditation": {}, "accreditor": {}, "criteria": {}, "criterion": {},
}

// Tokenize splits text into normalized terms, preserving order and duplicates.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < minTokenLen {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Set returns the distinct terms of text.
func Set(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// Jaccard computes |A∩B| / |A∪B| for two term sets. Two empty sets have
// similarity 0, guarding the zero denominator.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for tok := range small {
		if _, ok := large[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Overlap returns the distinct members of both sets, sorted lexically by the
// caller if order matters.
func Overlap(a, b map[string]struct{}) []string {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	var out []string
	for tok := range small {
		if _, ok := large[tok]; ok {
			out = append(out, tok)
		}
	}
	return out
}
