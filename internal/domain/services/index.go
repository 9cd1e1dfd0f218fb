package services

import (
	"log/slog"

	"github.com/thodel/outremer/internal/domain/entities"
)

// BuildAuthorityIndex flattens parsed authority records into a searchable
// list of entries with deduplicated normalized name variants. Records
// missing either an id or a label are dropped (they can be neither
// referenced nor displayed) and logged at debug level. The returned index
// is read-only: queries never mutate it.
func BuildAuthorityIndex(records []entities.AuthorityRecord, log *slog.Logger) []entities.AuthorityEntry {
	if log == nil {
		log = slog.Default()
	}

	index := make([]entities.AuthorityEntry, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" || rec.Label == "" {
			log.Debug("dropping authority record without id or label",
				"id", rec.ID, "label", rec.Label)
			continue
		}

		// The preferred label always participates in matching, ahead of
		// the declared variants.
		raw := make([]string, 0, len(rec.Variants)+1)
		raw = append(raw, rec.Label)
		raw = append(raw, rec.Variants...)

		seen := make(map[string]struct{}, len(raw))
		variants := make([]string, 0, len(raw))
		norms := make([]string, 0, len(raw))
		for _, v := range raw {
			n := entities.Normalize(v)
			if n == "" {
				continue
			}
			if _, ok := seen[n]; ok {
				continue
			}
			seen[n] = struct{}{}
			variants = append(variants, v)
			norms = append(norms, n)
		}

		entryType := rec.Type
		if entryType == "" {
			entryType = entities.EntityTypePerson
		}

		index = append(index, entities.AuthorityEntry{
			ID:       rec.ID,
			Label:    rec.Label,
			Type:     entryType,
			Variants: variants,
			Norms:    norms,
		})
	}

	return index
}
