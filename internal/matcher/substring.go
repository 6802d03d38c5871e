// file: internal/matcher/substring.go
// version: 1.0.0
// guid: cba25afc-4a4b-4905-9dc7-90c6fbe75922

package matcher

import "strings"

const (
	positionWeight = 0.6
	lengthWeight   = 0.4
	// substringCap keeps a partial hit below an exact match.
	substringCap = 0.9
)

// SubstringScore rewards target containing query, favoring early and long
// matches. Returns 0 when target is empty or does not contain query.
func SubstringScore(query, target string) float64 {
	return substringRunes([]rune(query), []rune(target))
}

func substringRunes(query, target []rune) float64 {
	if len(target) == 0 {
		return 0
	}
	q, t := string(query), string(target)
	byteIdx := strings.Index(t, q)
	if byteIdx < 0 {
		return 0
	}
	position := len([]rune(t[:byteIdx]))

	positionScore := 1 - float64(position)/float64(len(target))
	lengthRatio := float64(len(query)) / float64(len(target))
	return (positionScore*positionWeight + lengthRatio*lengthWeight) * substringCap
}
