package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thodel/outremer/internal/domain/entities"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected float64
		tier     entities.MatchTier
	}{
		{
			name:     "exact match",
			a:        "baldwin of ibelin",
			b:        "baldwin of ibelin",
			expected: 1.0,
			tier:     entities.TierExact,
		},
		{
			name:     "alias containment scores by length ratio",
			a:        "baldwin",
			b:        "baldwin of ibelin",
			expected: 7.0 / 17.0,
			tier:     entities.TierAlias,
		},
		{
			name:     "alias is symmetric",
			a:        "baldwin of ibelin",
			b:        "baldwin",
			expected: 7.0 / 17.0,
			tier:     entities.TierAlias,
		},
		{
			name:     "single substitution stays fuzzy",
			a:        "baldwyn",
			b:        "baldwin",
			expected: 1.0 - 1.0/7.0,
			tier:     entities.TierFuzzy,
		},
		{
			name:     "empty input scores zero",
			a:        "",
			b:        "baldwin",
			expected: 0.0,
			tier:     entities.TierFuzzy,
		},
		{
			name:     "unrelated names score low",
			a:        "saladin",
			b:        "melisende",
			expected: 2.0 / 9.0,
			tier:     entities.TierFuzzy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, tier := Score(tt.a, tt.b)
			assert.InDelta(t, tt.expected, score, 1e-9)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestScoreTierOrdering(t *testing.T) {
	// The same pair of identities should rank exact > fuzzy variant.
	exact, _ := Score("baldwin of ibelin", "baldwin of ibelin")
	fuzzy, _ := Score("baldwyn of ibelin", "baldwin of ibelin")
	assert.Greater(t, exact, fuzzy)
	assert.GreaterOrEqual(t, fuzzy, 0.90, "one substitution in a long name stays a strong match")
}

func TestFuzzyRatioTokenOrderInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, FuzzyRatio("ibelin baldwin", "baldwin ibelin"))
	assert.Equal(t, 0.0, FuzzyRatio("", "baldwin"))
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a        string
		b        string
		expected int
	}{
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"guy", "gui", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, levenshtein([]rune(tt.a), []rune(tt.b)),
			"levenshtein(%q, %q)", tt.a, tt.b)
	}
}
