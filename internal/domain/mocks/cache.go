package mocks

import "github.com/thodel/outremer/internal/domain/ports"

// ReconcileCache is an in-memory mock implementation of ports.ReconcileCache.
type ReconcileCache struct {
	Entries map[string]map[string]ports.CacheEntry

	SaveErr   error
	SaveCalls int
}

// NewReconcileCache returns an empty mock cache.
func NewReconcileCache() *ReconcileCache {
	return &ReconcileCache{Entries: make(map[string]map[string]ports.CacheEntry)}
}

// Get retrieves a cached entry.
func (m *ReconcileCache) Get(docID, key string) (ports.CacheEntry, bool) {
	entry, ok := m.Entries[docID][key]
	return entry, ok
}

// Put stores an entry, last write wins.
func (m *ReconcileCache) Put(docID, key string, entry ports.CacheEntry) {
	if m.Entries[docID] == nil {
		m.Entries[docID] = make(map[string]ports.CacheEntry)
	}
	m.Entries[docID][key] = entry
}

// Save records the call and returns the configured error.
func (m *ReconcileCache) Save() error {
	m.SaveCalls++
	return m.SaveErr
}
