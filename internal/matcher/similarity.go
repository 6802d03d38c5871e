// file: internal/matcher/similarity.go
// version: 1.0.0
// guid: dc62bf85-44d5-40b0-ae2d-2a3f8d202523

package matcher

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Breakdown exposes the component scores behind a similarity value.
type Breakdown struct {
	Transposition float64 `json:"transposition"`
	Edit          float64 `json:"edit"`
	Substring     float64 `json:"substring"`
	Combined      float64 `json:"combined"`
	Exact         bool    `json:"exact"`
}

// normalize composes, trims and (unless caseSensitive) lowercases s.
func normalize(s string, caseSensitive bool) string {
	s = strings.TrimSpace(norm.NFC.String(s))
	if !caseSensitive {
		s = strings.ToLower(s)
	}
	return s
}

// Similarity scores brand against query in [0, 1]. Equal strings after
// normalization always score 1. A query shorter than MinQueryLength, an empty
// brand or an all-zero weight configuration score 0.
func Similarity(query, brand string, cfg Config) float64 {
	return Explain(query, brand, cfg).Combined
}

// Explain runs the same computation as Similarity and returns each component.
func Explain(query, brand string, cfg Config) Breakdown {
	q := []rune(normalize(query, cfg.Options.CaseSensitive))
	b := []rune(normalize(brand, cfg.Options.CaseSensitive))
	return explainRunes(q, b, cfg)
}

func explainRunes(q, b []rune, cfg Config) Breakdown {
	if len(q) < cfg.Options.MinQueryLength || len(b) == 0 {
		return Breakdown{}
	}
	if string(q) == string(b) {
		return Breakdown{Transposition: 1, Edit: 1, Substring: substringCap, Combined: 1, Exact: true}
	}

	bd := Breakdown{
		Transposition: jaroWinklerRunes(q, b),
		Edit:          editSimilarityRunes(q, b),
		Substring:     substringRunes(q, b),
	}

	w := cfg.Weights
	weightSum := w.Sum()
	if weightSum <= 0 {
		return bd
	}
	total := bd.Transposition * w.Transposition
	total += bd.Edit * w.Edit
	total += bd.Substring * w.Substring
	bd.Combined = min(1, max(0, total/weightSum))
	return bd
}
