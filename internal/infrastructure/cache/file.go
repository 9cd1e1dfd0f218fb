// Package cache provides a file-backed reconciliation cache.
package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/thodel/outremer/internal/domain/ports"
)

// FileCache is a JSON-file-backed ReconcileCache. Entries are keyed by
// document id, then by normalized mention name. The file is a regenerable
// artifact: a corrupt cache is discarded and rebuilt rather than aborting
// the run.
type FileCache struct {
	mu      sync.RWMutex
	path    string
	entries map[string]map[string]ports.CacheEntry
}

// Load reads the cache file at path. A missing file yields an empty cache;
// a corrupt one is logged and replaced.
func Load(path string, log *slog.Logger) (*FileCache, error) {
	if log == nil {
		log = slog.Default()
	}

	fc := &FileCache{
		path:    path,
		entries: make(map[string]map[string]ports.CacheEntry),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cache file: %w", err)
	}

	if err := json.Unmarshal(data, &fc.entries); err != nil {
		log.Warn("discarding corrupt reconciliation cache", "path", path, "error", err)
		fc.entries = make(map[string]map[string]ports.CacheEntry)
	}
	return fc, nil
}

// Get returns the cached entry for a document and key.
func (c *FileCache) Get(docID, key string) (ports.CacheEntry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.entries[docID]
	if !ok {
		return ports.CacheEntry{}, false
	}
	entry, ok := doc[key]
	return entry, ok
}

// Put stores an entry, replacing any previous value for the key.
func (c *FileCache) Put(docID, key string, entry ports.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.entries[docID]
	if !ok {
		doc = make(map[string]ports.CacheEntry)
		c.entries[docID] = doc
	}
	doc[key] = entry
}

// Len reports the total number of cached entries.
func (c *FileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, doc := range c.entries {
		n += len(doc)
	}
	return n
}

// Save writes the cache atomically: a temp file in the same directory is
// renamed over the target, so a crash mid-write never truncates the cache.
func (c *FileCache) Save() error {
	c.mu.RLock()
	data, err := json.MarshalIndent(c.entries, "", "  ")
	c.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshaling cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reconcile-cache-*")
	if err != nil {
		return fmt.Errorf("creating temp cache file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp cache file: %w", err)
	}

	if err := os.Rename(tmpName, c.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing cache file: %w", err)
	}
	return nil
}
