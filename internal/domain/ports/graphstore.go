package ports

import (
	"context"

	"github.com/thodel/outremer/internal/domain/entities"
)

// GraphStore persists the unified graph. The merge itself is pure and
// in-memory; the store is the durable snapshot written after a merge, plus
// an audit trail of merge runs.
type GraphStore interface {
	// EnsureSchema creates the storage schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the underlying connection.
	Close() error

	// SaveEntity saves or replaces a unified entity by canonical id.
	SaveEntity(ctx context.Context, entity *entities.UnifiedEntity) error

	// SaveBatch saves multiple entities in one transaction.
	SaveBatch(ctx context.Context, ents []*entities.UnifiedEntity) error

	// FindEntity retrieves an entity by canonical id. Returns nil, nil when
	// the id is unknown.
	FindEntity(ctx context.Context, id string) (*entities.UnifiedEntity, error)

	// CountEntities returns the number of stored entities.
	CountEntities(ctx context.Context) (int, error)

	// CountFlagged returns the number of entities flagged for review.
	CountFlagged(ctx context.Context) (int, error)

	// LogAction appends an entry to the audit log.
	LogAction(ctx context.Context, action, entityID string, details map[string]any) error
}
