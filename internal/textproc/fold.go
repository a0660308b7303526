package textproc

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lower-cases s and strips Vietnamese diacritics so "Ăn uống" and
// "an uong" compare equal. Only heuristic matching uses folded text.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}
	return strings.Map(func(r rune) rune {
		if r == 'đ' {
			return 'd'
		}
		return r
	}, folded)
}

// FoldTokens folds every token.
func FoldTokens(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = Fold(t)
	}
	return out
}

// CharNgrams returns the set of character n-grams of each token, with tokens
// padded by a space on both sides.
func CharNgrams(tokens []string, n int) map[string]struct{} {
	grams := make(map[string]struct{})
	for _, t := range tokens {
		r := []rune(" " + t + " ")
		for i := 0; i+n <= len(r); i++ {
			grams[string(r[i:i+n])] = struct{}{}
		}
	}
	return grams
}
