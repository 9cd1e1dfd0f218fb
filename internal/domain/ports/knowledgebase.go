// Package ports defines interfaces for external service communication.
package ports

import "context"

// KBCandidate is one raw search result from the external knowledge base,
// before plausibility filtering and scoring.
type KBCandidate struct {
	ID          string
	Label       string
	Description string
}

// Lifespan holds the known birth and death years of a knowledge-base entity.
// Nil means the year is unknown, which is distinct from "outside the window".
type Lifespan struct {
	Birth *int
	Death *int
}

// KnowledgeBase is the external structured knowledge base queried for
// mentions the merger could not resolve.
type KnowledgeBase interface {
	// SearchPersons returns up to limit person entities matching name.
	SearchPersons(ctx context.Context, name string, limit int) ([]KBCandidate, error)

	// FetchLifespan returns the known birth/death years for an entity.
	// Unknown dates are returned as nil fields, not as an error.
	FetchLifespan(ctx context.Context, id string) (Lifespan, error)
}
