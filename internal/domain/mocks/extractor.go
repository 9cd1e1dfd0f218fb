package mocks

import (
	"context"

	"github.com/thodel/outremer/internal/domain/entities"
)

// Extractor is a mock implementation of ports.Extractor.
type Extractor struct {
	Mentions   []entities.Mention
	Metadata   entities.DocMetadata
	ExtractErr error
}

// ExtractMentions returns the configured mentions or error.
func (m *Extractor) ExtractMentions(ctx context.Context, text string) ([]entities.Mention, entities.DocMetadata, error) {
	if m.ExtractErr != nil {
		return nil, entities.DocMetadata{}, m.ExtractErr
	}
	return m.Mentions, m.Metadata, nil
}

// Mode identifies the mock backend.
func (m *Extractor) Mode() string { return "mock" }
