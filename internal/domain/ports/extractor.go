package ports

import (
	"context"

	"github.com/thodel/outremer/internal/domain/entities"
)

// Extractor is the person-mention extraction collaborator. The extraction
// itself (LLM or heuristic) is outside the resolution engine; this port only
// fixes its output schema.
type Extractor interface {
	// ExtractMentions returns every person mention found in text together
	// with guessed document metadata.
	ExtractMentions(ctx context.Context, text string) ([]entities.Mention, entities.DocMetadata, error)

	// Mode names the extraction backend, recorded on each document.
	Mode() string
}
