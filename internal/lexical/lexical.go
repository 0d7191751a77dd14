// Package lexical provides the tokenization and set-similarity primitives
// shared by every stage that inspects keywords.
package lexical

import (
	"strings"
	"unicode"
)

// Tokenize lowercases text and splits it into maximal runs of Unicode
// letters and digits. No stemming or stop-word removal is applied; every
// stage relies on this exact splitting for deterministic keyword matching.
func Tokenize(text string) []string {
	var tokens []string
	var b strings.Builder

	flush := func() {
		if b.Len() > 0 {
			tokens = append(tokens, b.String())
			b.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		flush()
	}
	flush()

	return tokens
}

// TokenSet returns the distinct tokens of text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range Tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// Jaccard computes the Jaccard index |A∩B| / |A∪B| over two token sets.
// Two empty sets have similarity 0.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}

	intersection := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection

	return float64(intersection) / float64(union)
}

// Similarity computes the Jaccard index of the token sets of two texts.
func Similarity(a, b string) float64 {
	return Jaccard(TokenSet(a), TokenSet(b))
}
