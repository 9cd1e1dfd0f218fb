// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"

	"github.com/thodel/outremer/internal/domain/ports"
)

// KnowledgeBase is a mock implementation of ports.KnowledgeBase.
type KnowledgeBase struct {
	// SearchPersons return values
	Candidates []ports.KBCandidate
	SearchErr  error

	// FetchLifespan return values, keyed by entity id
	Lifespans   map[string]ports.Lifespan
	LifespanErr error

	// Call counters
	SearchCalls   int
	LifespanCalls int
}

// SearchPersons returns the configured candidates or error.
func (m *KnowledgeBase) SearchPersons(ctx context.Context, name string, limit int) ([]ports.KBCandidate, error) {
	m.SearchCalls++
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if limit < len(m.Candidates) {
		return m.Candidates[:limit], nil
	}
	return m.Candidates, nil
}

// FetchLifespan returns the configured lifespan for the id, or empty.
func (m *KnowledgeBase) FetchLifespan(ctx context.Context, id string) (ports.Lifespan, error) {
	m.LifespanCalls++
	if m.LifespanErr != nil {
		return ports.Lifespan{}, m.LifespanErr
	}
	return m.Lifespans[id], nil
}
