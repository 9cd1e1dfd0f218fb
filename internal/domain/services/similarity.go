// Package services contains domain business logic.
package services

import (
	"sort"
	"strings"

	"github.com/thodel/outremer/internal/domain/entities"
)

// Score compares two normalized name strings and returns a score in [0,1]
// plus the matching tier that produced it. Tiers are tried in fixed priority
// order, first match wins:
//
//  1. exact:  equal strings, score 1.0
//  2. alias:  one string contains the other, score min(len)/max(len)
//  3. fuzzy:  token-sort edit-distance ratio
//
// Both inputs are expected to be entities.Normalize output; empty input
// scores 0.0.
func Score(aNorm, bNorm string) (float64, entities.MatchTier) {
	if aNorm == "" || bNorm == "" {
		return 0.0, entities.TierFuzzy
	}
	if aNorm == bNorm {
		return 1.0, entities.TierExact
	}
	if strings.Contains(aNorm, bNorm) || strings.Contains(bNorm, aNorm) {
		la := len([]rune(aNorm))
		lb := len([]rune(bNorm))
		longer, shorter := la, lb
		if lb > la {
			longer, shorter = lb, la
		}
		return float64(shorter) / float64(longer), entities.TierAlias
	}
	return FuzzyRatio(aNorm, bNorm), entities.TierFuzzy
}

// FuzzyRatio is a token-order-insensitive similarity in [0,1]: both strings
// are split into whitespace tokens, the tokens sorted and rejoined, and the
// result compared by Levenshtein distance over the longer length.
func FuzzyRatio(a, b string) float64 {
	sa := sortTokens(a)
	sb := sortTokens(b)
	if sa == "" || sb == "" {
		return 0.0
	}
	if sa == sb {
		return 1.0
	}

	ra := []rune(sa)
	rb := []rune(sb)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	dist := levenshtein(ra, rb)
	return 1.0 - float64(dist)/float64(longest)
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// levenshtein computes the edit distance between two rune slices using a
// two-row dynamic programming table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minInt(vals ...int) int {
	m := vals[0]
	for _, v := range vals[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
