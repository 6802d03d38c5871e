// file: internal/matcher/metrics.go
// version: 2.1.0
// guid: a1b2c3d4-e5f6-7890-abcd-ef1234567890

package matcher

import "github.com/agnivade/levenshtein"

// String metrics over already-normalized input. All lengths and positions are
// counted in runes.

// jaroWinklerThreshold is the Jaro score below which no prefix bonus applies.
const jaroWinklerThreshold = 0.7

// maxPrefixBonus caps the common prefix length rewarded by the Winkler bonus.
const maxPrefixBonus = 4

// prefixScale is the per-character Winkler bonus.
const prefixScale = 0.1

// EditDistance computes the Levenshtein distance between two strings with unit
// cost for insertion, deletion and substitution.
func EditDistance(a, b string) int {
	return editDistanceRunes([]rune(a), []rune(b))
}

func editDistanceRunes(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	return levenshtein.ComputeDistance(string(a), string(b))
}

// EditSimilarity converts the edit distance into a similarity in [0, 1].
// Two empty strings are identical and score 1.
func EditSimilarity(a, b string) float64 {
	return editSimilarityRunes([]rune(a), []rune(b))
}

func editSimilarityRunes(a, b []rune) float64 {
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 1.0
	}
	dist := editDistanceRunes(a, b)
	return max(0, 1-float64(dist)/float64(maxLen))
}

// TranspositionSimilarity computes the Jaro similarity of two strings.
func TranspositionSimilarity(a, b string) float64 {
	return jaroRunes([]rune(a), []rune(b))
}

func jaroRunes(a, b []rune) float64 {
	if string(a) == string(b) {
		return 1.0
	}
	la, lb := len(a), len(b)
	if la == 0 || lb == 0 {
		return 0.0
	}

	window := max(0, max(la, lb)/2-1)
	aMatched := make([]bool, la)
	bMatched := make([]bool, lb)

	matches := 0
	for i := 0; i < la; i++ {
		start := max(0, i-window)
		end := min(i+window+1, lb)
		for j := start; j < end; j++ {
			if bMatched[j] || a[i] != b[j] {
				continue
			}
			aMatched[i] = true
			bMatched[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0.0
	}

	transpositions := 0
	k := 0
	for i := 0; i < la; i++ {
		if !aMatched[i] {
			continue
		}
		for !bMatched[k] {
			k++
		}
		if a[i] != b[k] {
			transpositions++
		}
		k++
	}

	m := float64(matches)
	return (m/float64(la) + m/float64(lb) + (m-float64(transpositions)/2)/m) / 3.0
}

// PrefixWeightedTransposition computes the Jaro-Winkler similarity: Jaro
// boosted by the shared prefix (up to four runes) once Jaro reaches 0.7.
func PrefixWeightedTransposition(a, b string) float64 {
	return jaroWinklerRunes([]rune(a), []rune(b))
}

func jaroWinklerRunes(a, b []rune) float64 {
	score := jaroRunes(a, b)
	if score < jaroWinklerThreshold {
		return score
	}

	prefix := 0
	limit := min(maxPrefixBonus, len(a), len(b))
	for i := 0; i < limit; i++ {
		if a[i] != b[i] {
			break
		}
		prefix++
	}
	return score + float64(prefix)*prefixScale*(1-score)
}
