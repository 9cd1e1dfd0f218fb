package parsers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thodel/outremer/internal/domain/entities"
)

// reservedDataFiles are artifacts living next to document JSON that are not
// documents themselves.
var reservedDataFiles = map[string]struct{}{
	"authority.json":        {},
	"wikidata_matches.json": {},
	"index.json":            {},
}

// ParseDocument reads one per-document extraction artifact.
func ParseDocument(path string) (*entities.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc entities.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", filepath.Base(path), err)
	}
	if doc.DocID == "" {
		doc.DocID = strings.TrimSuffix(filepath.Base(path), ".json")
	}
	return &doc, nil
}

// LoadDocuments reads every document JSON in dir, sorted by name. Files
// that fail to parse are skipped with a debug log entry - one broken
// document must not abort a multi-document run.
func LoadDocuments(dir string, log *slog.Logger) ([]*entities.Document, error) {
	if log == nil {
		log = slog.Default()
	}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	sort.Strings(paths)

	var docs []*entities.Document
	for _, path := range paths {
		if _, reserved := reservedDataFiles[filepath.Base(path)]; reserved {
			continue
		}
		doc, err := ParseDocument(path)
		if err != nil {
			log.Debug("skipping unparsable document", "path", path, "error", err)
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// CollectMentions gathers every mention from the documents, stamping each
// with its source document id.
func CollectMentions(docs []*entities.Document) []entities.Mention {
	var mentions []entities.Mention
	for _, doc := range docs {
		for _, m := range doc.Persons {
			m.SourceDoc = doc.DocID
			mentions = append(mentions, m)
		}
	}
	return mentions
}
