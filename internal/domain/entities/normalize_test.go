package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain name",
			input:    "Baldwin of Ibelin",
			expected: "baldwin of ibelin",
		},
		{
			name:     "accents stripped",
			input:    "Raymond de Saint-Gilles, comté",
			expected: "raymond de saint gilles comte",
		},
		{
			name:     "punctuation collapses to single spaces",
			input:    "  Foulques , d'Anjou  ",
			expected: "foulques d anjou",
		},
		{
			name:     "underscore survives",
			input:    "AUTH_0042",
			expected: "auth_0042",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "only punctuation",
			input:    "...---...",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Baudouin de Boulogne",
		"Mélisende, reine de Jérusalem",
		"Usāma ibn Munqidh",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "normalizing twice must equal normalizing once: %q", in)
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "spaces become hyphens",
			input:    "Baldwin of Ibelin",
			expected: "baldwin-of-ibelin",
		},
		{
			name:     "accented runes dropped",
			input:    "comté de Tripoli",
			expected: "comt-de-tripoli",
		},
		{
			name:     "empty falls back",
			input:    "???",
			expected: "person",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
