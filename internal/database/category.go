// file: internal/database/category.go
// version: 1.1.0
// guid: 192f243b-ca04-4559-8e4f-a776143dbddf

package database

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ResolveCategory maps user input to the closest known category. An exact
// case-insensitive match wins. Input already contained in a known category is
// returned trimmed and unchanged so the contains filter keeps every category
// it covers. Otherwise the known category containing the input's characters
// in order with the fewest extra characters is chosen. Returns false when
// nothing matches.
func ResolveCategory(input string, known []string) (string, bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", false
	}
	for _, k := range known {
		if strings.EqualFold(k, input) {
			return k, true
		}
	}
	folded := strings.ToLower(input)
	for _, k := range known {
		if strings.Contains(strings.ToLower(k), folded) {
			return input, true
		}
	}

	ranks := fuzzy.RankFindNormalizedFold(input, known)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Stable(ranks)
	return ranks[0].Target, true
}
