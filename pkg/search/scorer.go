// Package search ranks notes by weighted substring matches of a query
// against their title and plain-text content.
package search

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/notegrid/pkg/core"
	"github.com/aretw0/notegrid/pkg/richtext"
)

const (
	TitleWeight   = 3
	ContentWeight = 2

	DefaultMinQueryLength = 2
)

// Tier multipliers applied to a field weight.
const (
	exactTier    = 10
	prefixTier   = 5
	containsTier = 2
)

// TextExtractor returns the searchable plain text of a note.
type TextExtractor interface {
	PlainText(n core.Note) string
}

// Config holds the configuration of a Scorer.
type Config struct {
	MinQueryLength int           // in runes, after trimming; zero means default
	Extractor      TextExtractor // defaults to richtext.Extractor
}

// Result pairs a note with its relevance. Results are derived per query and
// never persisted.
type Result struct {
	Note  core.Note `json:"note"`
	Score float64   `json:"score"`
}

// Scorer is stateless apart from its configuration and safe for concurrent use.
type Scorer struct {
	minLen    int
	extractor TextExtractor
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) *Scorer {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = DefaultMinQueryLength
	}
	if cfg.Extractor == nil {
		cfg.Extractor = richtext.Extractor{}
	}
	return &Scorer{minLen: cfg.MinQueryLength, extractor: cfg.Extractor}
}

// Active reports whether query is long enough to run a search.
func (s *Scorer) Active(query string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(query)) >= s.minLen
}

// Search scores every note against query and returns the matching ones,
// best first. Queries shorter than the minimum length yield no results.
func (s *Scorer) Search(query string, notes []core.Note) []Result {
	if !s.Active(query) {
		return nil
	}
	q := normalize(query)

	var results []Result
	for _, n := range notes {
		title := FieldScore(n.Title, q, TitleWeight)
		content := FieldScore(s.extractor.PlainText(n), q, ContentWeight)

		score := max(title, content)
		if score > 0 {
			results = append(results, Result{Note: n, Score: score})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// FieldScore scores one field against an already normalized query:
// weight*10 on equality, weight*5 on prefix, weight*2 on any other
// occurrence, zero otherwise.
func FieldScore(field, query string, weight float64) float64 {
	if query == "" {
		return 0
	}
	f := normalize(field)
	switch {
	case f == query:
		return weight * exactTier
	case strings.HasPrefix(f, query):
		return weight * prefixTier
	case strings.Contains(f, query):
		return weight * containsTier
	}
	return 0
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
