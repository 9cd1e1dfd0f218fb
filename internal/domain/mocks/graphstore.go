package mocks

import (
	"context"

	"github.com/thodel/outremer/internal/domain/entities"
)

// GraphStore is an in-memory mock implementation of ports.GraphStore.
type GraphStore struct {
	Entities map[string]*entities.UnifiedEntity
	Actions  []string

	SaveErr error
	FindErr error
}

// NewGraphStore returns an empty mock store.
func NewGraphStore() *GraphStore {
	return &GraphStore{Entities: make(map[string]*entities.UnifiedEntity)}
}

// EnsureSchema is a no-op.
func (m *GraphStore) EnsureSchema(ctx context.Context) error { return nil }

// Close is a no-op.
func (m *GraphStore) Close() error { return nil }

// SaveEntity stores the entity by id.
func (m *GraphStore) SaveEntity(ctx context.Context, entity *entities.UnifiedEntity) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Entities[entity.ID] = entity
	return nil
}

// SaveBatch stores all entities.
func (m *GraphStore) SaveBatch(ctx context.Context, ents []*entities.UnifiedEntity) error {
	for _, e := range ents {
		if err := m.SaveEntity(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// FindEntity retrieves an entity by id, nil if absent.
func (m *GraphStore) FindEntity(ctx context.Context, id string) (*entities.UnifiedEntity, error) {
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	return m.Entities[id], nil
}

// CountEntities returns the number of stored entities.
func (m *GraphStore) CountEntities(ctx context.Context) (int, error) {
	return len(m.Entities), nil
}

// CountFlagged returns the number of entities flagged for review.
func (m *GraphStore) CountFlagged(ctx context.Context) (int, error) {
	n := 0
	for _, e := range m.Entities {
		if e.NeedsReview() {
			n++
		}
	}
	return n, nil
}

// LogAction records the action name.
func (m *GraphStore) LogAction(ctx context.Context, action, entityID string, details map[string]any) error {
	m.Actions = append(m.Actions, action)
	return nil
}
