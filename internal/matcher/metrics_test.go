// file: internal/matcher/metrics_test.go
// version: 2.0.0
// guid: b2c3d4e5-f6a7-8901-bcde-f23456789012

package matcher

import (
	"math"
	"math/rand/v2"
	"testing"
)

const floatTolerance = 1e-12

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= floatTolerance
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"abc", "abc", 0},
		{"Samsung", "Samung", 1},
		{"ABC", "abc", 3}, // raw metric, no case folding
		{"héllo", "hello", 1},
		{"ab", "ba", 2},
		{"日本語", "日本", 1},
	}
	for _, tt := range tests {
		got := EditDistance(tt.a, tt.b)
		if got != tt.want {
			t.Errorf("EditDistance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestEditSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1.0},
		{"abc", "", 0.0},
		{"samsung", "samung", 1 - 1.0/7},
		{"adidaz", "adidas", 1 - 1.0/6},
		{"nike", "mike", 0.75},
		{"abc", "xyz", 0.0},
	}
	for _, tt := range tests {
		got := EditSimilarity(tt.a, tt.b)
		if !almostEqual(got, tt.want) {
			t.Errorf("EditSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestTranspositionSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "martha", 1.0},
		{"", "", 1.0},
		{"martha", "", 0.0},
		{"", "martha", 0.0},
		{"martha", "marhta", 0.9444444444444445},
		{"dixon", "dicksonx", 0.7666666666666666},
		{"crate", "trace", 0.7333333333333334},
		{"abc", "cba", 0.5555555555555555},
		{"ab", "ba", 0.0}, // window of zero, no positional matches
		{"nike", "mike", 0.8333333333333334},
	}
	for _, tt := range tests {
		got := TranspositionSimilarity(tt.a, tt.b)
		if !almostEqual(got, tt.want) {
			t.Errorf("TranspositionSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPrefixWeightedTransposition(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"martha", "marhta", 0.9611111111111111},
		{"dixon", "dicksonx", 0.8133333333333332},
		{"dwayne", "duane", 0.8400000000000001},
		{"jellyfish", "smellyfish", 0.8962962962962964}, // no shared prefix
		{"abc", "cba", 0.5555555555555555},              // below bonus threshold
		{"sam", "samsung", 0.8666666666666668},
		{"samung", "samsung", 0.9666666666666667},
	}
	for _, tt := range tests {
		got := PrefixWeightedTransposition(tt.a, tt.b)
		if !almostEqual(got, tt.want) {
			t.Errorf("PrefixWeightedTransposition(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestPrefixBonusCappedAtFourRunes(t *testing.T) {
	jaro := TranspositionSimilarity("abcdefgh", "abcdefgx")
	got := PrefixWeightedTransposition("abcdefgh", "abcdefgx")
	want := jaro + 4*0.1*(1-jaro)
	if !almostEqual(got, want) {
		t.Errorf("prefix bonus = %v, want %v", got, want)
	}
}

func TestSubstringScore(t *testing.T) {
	tests := []struct {
		query, target string
		want          float64
	}{
		{"sam", "samsung", 0.6942857142857143},
		{"sung", "samsung", 0.5142857142857142},
		{"ams", "samsung", 0.6171428571428572},
		{"samsung", "samsung", 0.9},
		{"xyz", "samsung", 0},
		{"sam", "", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		got := SubstringScore(tt.query, tt.target)
		if !almostEqual(got, tt.want) {
			t.Errorf("SubstringScore(%q, %q) = %v, want %v", tt.query, tt.target, got, tt.want)
		}
	}
}

func TestSubstringScore_RunePositions(t *testing.T) {
	// "é" is two bytes; the position must be counted in runes.
	got := SubstringScore("ll", "éll")
	want := ((1-1.0/3)*0.6 + (2.0/3)*0.4) * 0.9
	if !almostEqual(got, want) {
		t.Errorf("SubstringScore rune position = %v, want %v", got, want)
	}
}

func randomWord(r *rand.Rand, alphabet string, maxLen int) string {
	n := r.IntN(maxLen + 1)
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.IntN(len(alphabet))]
	}
	return string(b)
}

func TestMetricsSymmetry(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 5000; i++ {
		a := randomWord(r, "abcd", 9)
		b := randomWord(r, "abcd", 9)

		if x, y := EditSimilarity(a, b), EditSimilarity(b, a); x != y {
			t.Fatalf("EditSimilarity not symmetric for %q/%q: %v vs %v", a, b, x, y)
		}
		if x, y := TranspositionSimilarity(a, b), TranspositionSimilarity(b, a); !almostEqual(x, y) {
			t.Fatalf("TranspositionSimilarity not symmetric for %q/%q: %v vs %v", a, b, x, y)
		}
		if x, y := PrefixWeightedTransposition(a, b), PrefixWeightedTransposition(b, a); !almostEqual(x, y) {
			t.Fatalf("PrefixWeightedTransposition not symmetric for %q/%q: %v vs %v", a, b, x, y)
		}
	}
}

func TestMetricsRange(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 5000; i++ {
		a := randomWord(r, "abcxyz", 12)
		b := randomWord(r, "abcxyz", 12)
		for name, v := range map[string]float64{
			"edit":          EditSimilarity(a, b),
			"transposition": TranspositionSimilarity(a, b),
			"jaro-winkler":  PrefixWeightedTransposition(a, b),
			"substring":     SubstringScore(a, b),
		} {
			if v < 0 || v > 1 {
				t.Fatalf("%s(%q, %q) = %v out of range", name, a, b, v)
			}
		}
	}
}

func BenchmarkEditDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		EditDistance("Microsoft Corporation", "Mikrosoft Corp")
	}
}
