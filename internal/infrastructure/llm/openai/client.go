// Package openai provides an Extractor implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/infrastructure/config"
)

const extractionPrompt = `You are a historian's assistant extracting person mentions from medieval Latin East source texts (charters, chronicles, letters).

For each distinct person mentioned, identify:
- name: The person's name as it would be cited (e.g. "Baldwin of Ibelin")
- raw_mention: The exact span from the text
- title: Any title (king, count, lord, bishop...) or "" if none
- epithet: Any epithet or byname, or ""
- toponym: The place attached to the name, or ""
- role: Their role in this passage (witness, grantor, ruler...), or ""
- gender: "m", "f", or "unknown"
- group: true only for collective references (e.g. "the Templars")
- context: A short snippet of surrounding text
- confidence: How confident you are this is a person (0.0-1.0)

Also guess document metadata:
- title, author, year, language, doc_type (charter, chronicle, letter, or unknown)

Return ONLY valid JSON, no other text:
{"persons": [...], "metadata": {...}}`

// Client implements the Extractor interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI extraction client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	client := openai.NewClient(cfg.APIKey)

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: client,
		model:  model,
	}, nil
}

// Mode names the extraction backend.
func (c *Client) Mode() string { return "openai" }

// extractionResponse is the JSON shape the model is asked to return.
type extractionResponse struct {
	Persons  []entities.Mention   `json:"persons"`
	Metadata entities.DocMetadata `json:"metadata"`
}

// ExtractMentions extracts person mentions from the given text.
func (c *Client) ExtractMentions(ctx context.Context, text string) ([]entities.Mention, entities.DocMetadata, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: extractionPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, entities.DocMetadata{}, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, entities.DocMetadata{}, errors.New("no response from OpenAI")
	}

	content := cleanJSONResponse(resp.Choices[0].Message.Content)

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return nil, entities.DocMetadata{}, fmt.Errorf("parsing extraction JSON: %w (response: %s)", err, content)
	}

	mentions := make([]entities.Mention, 0, len(parsed.Persons))
	for _, m := range parsed.Persons {
		if strings.TrimSpace(m.Name) == "" {
			continue
		}
		mentions = append(mentions, coerceMention(m))
	}
	return mentions, parsed.Metadata, nil
}

// coerceMention normalizes model output to the schema's value ranges.
func coerceMention(m entities.Mention) entities.Mention {
	switch m.Gender {
	case entities.GenderMale, entities.GenderFemale:
	default:
		m.Gender = entities.GenderUnknown
	}
	if m.Confidence <= 0 || m.Confidence > 1 {
		m.Confidence = 0.5
	}
	return m
}

// cleanJSONResponse removes markdown code blocks around JSON responses.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
