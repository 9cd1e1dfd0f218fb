package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/infrastructure/config"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LLMConfig
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid config",
			cfg: config.LLMConfig{
				APIKey: "test-key",
			},
			wantErr: false,
		},
		{
			name: "valid config with model",
			cfg: config.LLMConfig{
				APIKey: "test-key",
				Model:  "gpt-4o",
			},
			wantErr: false,
		},
		{
			name:    "missing API key",
			cfg:     config.LLMConfig{},
			wantErr: true,
			errMsg:  "API key is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.cfg)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				assert.Nil(t, client)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, client)
				assert.Equal(t, "openai", client.Mode())
			}
		})
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"persons": []}`,
			expected: `{"persons": []}`,
		},
		{
			name:     "JSON with json code block",
			input:    "```json\n{\"persons\": []}\n```",
			expected: `{"persons": []}`,
		},
		{
			name:     "JSON with plain code block",
			input:    "```\n{\"persons\": []}\n```",
			expected: `{"persons": []}`,
		},
		{
			name:     "JSON with whitespace",
			input:    "  \n{\"persons\": []}\n  ",
			expected: `{"persons": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanJSONResponse(tt.input))
		})
	}
}

func TestCoerceMention(t *testing.T) {
	tests := []struct {
		name     string
		input    entities.Mention
		expected entities.Mention
	}{
		{
			name:     "valid mention untouched",
			input:    entities.Mention{Name: "Baldwin", Gender: entities.GenderMale, Confidence: 0.9},
			expected: entities.Mention{Name: "Baldwin", Gender: entities.GenderMale, Confidence: 0.9},
		},
		{
			name:     "unknown gender string defaulted",
			input:    entities.Mention{Name: "Baldwin", Gender: "male?", Confidence: 0.9},
			expected: entities.Mention{Name: "Baldwin", Gender: entities.GenderUnknown, Confidence: 0.9},
		},
		{
			name:     "out-of-range confidence defaulted",
			input:    entities.Mention{Name: "Baldwin", Gender: entities.GenderFemale, Confidence: 7},
			expected: entities.Mention{Name: "Baldwin", Gender: entities.GenderFemale, Confidence: 0.5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, coerceMention(tt.input))
		})
	}
}
