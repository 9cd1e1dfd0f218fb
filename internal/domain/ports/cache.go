package ports

import (
	"time"

	"github.com/thodel/outremer/internal/domain/entities"
)

// CacheEntry is one cached reconciliation result for a normalized name.
type CacheEntry struct {
	Person     string                    `json:"person"`
	Candidates []entities.ReconCandidate `json:"candidates"`
	QueriedAt  time.Time                 `json:"queried_at"`
}

// ReconcileCache stores reconciliation results keyed by document id and
// normalized mention name, so repeated runs are idempotent and avoid
// redundant external calls. Implementations have an explicit lifecycle:
// loaded at start, persisted with Save at the end. Put is last-write-wins
// per key.
type ReconcileCache interface {
	Get(docID, key string) (CacheEntry, bool)
	Put(docID, key string, entry CacheEntry)
	Save() error
}
