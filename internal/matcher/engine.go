// file: internal/matcher/engine.go
// version: 1.0.0
// guid: 94c4c70f-dd13-4d5d-aa5f-fe2dd81410f1

package matcher

import (
	"math"
	"slices"
	"strings"
)

// ScoredCandidate wraps a candidate that passed the threshold.
type ScoredCandidate[T any] struct {
	Candidate  T
	Index      int     // index into the original slice
	Score      int     // 0-100, higher is better
	Similarity float64 // unrounded score in [0, 1]
	Matched    bool    // matched through fuzzy scoring
}

// BrandSuggestion is the best score observed for one distinct brand.
type BrandSuggestion struct {
	Brand string `json:"brand"`
	Score int    `json:"score"`
}

// Percent converts a similarity in [0, 1] to an integer percentage, rounding
// halves up.
func Percent(similarity float64) int {
	return int(math.Round(similarity * 100))
}

// Search scores every candidate's brand against query and returns those at or
// above the threshold, best first. Equal scores keep their input order. The
// input slice is never modified.
func Search[T any](candidates []T, brandOf func(T) string, query string, cfg Config) []ScoredCandidate[T] {
	opts := cfg.Options
	q := []rune(normalize(query, opts.CaseSensitive))
	if len(q) < opts.MinQueryLength {
		return []ScoredCandidate[T]{}
	}

	results := make([]ScoredCandidate[T], 0)
	for i, c := range candidates {
		b := []rune(normalize(brandOf(c), opts.CaseSensitive))
		if len(b) == 0 {
			continue
		}
		sim := explainRunes(q, b, cfg).Combined
		if sim < opts.Threshold {
			continue
		}
		results = append(results, ScoredCandidate[T]{
			Candidate:  c,
			Index:      i,
			Score:      Percent(sim),
			Similarity: sim,
			Matched:    true,
		})
	}

	slices.SortStableFunc(results, func(a, b ScoredCandidate[T]) int {
		return b.Score - a.Score
	})

	if limit := opts.Limit; limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Suggest returns one entry per distinct brand text (surrounding whitespace
// removed, case preserved) carrying the best score among candidates sharing
// it. Ties keep first-seen order. Truncates to DefaultSuggestLimit unless the
// options say otherwise.
func Suggest[T any](candidates []T, brandOf func(T) string, query string, cfg Config) []BrandSuggestion {
	opts := cfg.Options
	q := []rune(normalize(query, opts.CaseSensitive))
	if len(q) < opts.MinQueryLength {
		return []BrandSuggestion{}
	}

	type bucket struct {
		brand string
		best  float64
	}
	var order []*bucket
	seen := make(map[string]*bucket)

	for _, c := range candidates {
		brand := strings.TrimSpace(brandOf(c))
		if brand == "" {
			continue
		}
		b := []rune(normalize(brand, opts.CaseSensitive))
		if len(b) == 0 {
			continue
		}
		sim := explainRunes(q, b, cfg).Combined
		if sim < opts.Threshold {
			continue
		}
		if existing, ok := seen[brand]; ok {
			existing.best = max(existing.best, sim)
			continue
		}
		entry := &bucket{brand: brand, best: sim}
		seen[brand] = entry
		order = append(order, entry)
	}

	suggestions := make([]BrandSuggestion, 0, len(order))
	for _, entry := range order {
		suggestions = append(suggestions, BrandSuggestion{Brand: entry.brand, Score: Percent(entry.best)})
	}
	slices.SortStableFunc(suggestions, func(a, b BrandSuggestion) int {
		return b.Score - a.Score
	})

	limit := opts.Limit
	if limit == 0 {
		limit = DefaultSuggestLimit
	}
	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions
}

// Strings is a convenience brand extractor for plain string candidates.
func Strings(s string) string { return s }
