// Package parsers reads the heterogeneous input sources of the pipeline:
// the curated authority file, the Wikidata tabular export, and per-document
// extraction output.
package parsers

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/thodel/outremer/internal/domain/entities"
)

// authorityFile is the top-level shape of the authority JSON. Older exports
// used "entities" instead of "persons"; both are accepted.
type authorityFile struct {
	Persons  []authorityRecord `json:"persons"`
	Entities []authorityRecord `json:"entities"`
}

// authorityRecord tolerates every variant layout the authority file has
// carried over time: a flat variants list, a nested "normalized" block, and
// a nested "name" block. Unknown shapes decode to nil and are simply not
// contributed, so a record yields zero variants only when it genuinely has
// none.
type authorityRecord struct {
	AuthorityID    string          `json:"authority_id"`
	PreferredLabel string          `json:"preferred_label"`
	Name           json.RawMessage `json:"name"`
	Type           string          `json:"type"`
	Variants       []string        `json:"variants"`
	Normalized     *struct {
		Preferred string   `json:"preferred"`
		Variants  []string `json:"variants"`
	} `json:"normalized"`
	Provenance *struct {
		SourceFiles []string `json:"source_files"`
	} `json:"provenance"`
}

// nameBlock is the nested "name" object shape. The field may also be a bare
// string in very old records, handled separately.
type nameBlock struct {
	Raw     string `json:"raw"`
	Toponym string `json:"toponym"`
}

// ParseAuthority reads the authority file and resolves each record's shape
// into a flat AuthorityRecord. An unreadable or unparsable file is a hard
// error: a silently empty authority index is indistinguishable from "no
// curation data" and would poison every downstream match.
func ParseAuthority(path string) ([]entities.AuthorityRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening authority file: %w", err)
	}
	defer f.Close()

	records, err := ParseAuthorityReader(f)
	if err != nil {
		return nil, fmt.Errorf("parsing authority file %s: %w", path, err)
	}
	return records, nil
}

// ParseAuthorityReader parses authority JSON from a reader.
func ParseAuthorityReader(r io.Reader) ([]entities.AuthorityRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading authority source: %w", err)
	}

	var file authorityFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decoding authority JSON: %w", err)
	}

	raw := file.Persons
	if len(raw) == 0 {
		raw = file.Entities
	}

	records := make([]entities.AuthorityRecord, 0, len(raw))
	for _, rec := range raw {
		records = append(records, resolveAuthorityShape(rec))
	}
	return records, nil
}

// resolveAuthorityShape applies the ordered extraction rules: preferred
// label, flat variants, normalized block, name block. Order matters - the
// curated label stays first in the variant list.
func resolveAuthorityShape(rec authorityRecord) entities.AuthorityRecord {
	label := rec.PreferredLabel
	toponym := ""

	var variants []string
	appendVariant := func(v string) {
		if v != "" {
			variants = append(variants, v)
		}
	}

	// Rule 1: flat variants list.
	for _, v := range rec.Variants {
		appendVariant(v)
	}

	// Rule 2: nested normalized block.
	if rec.Normalized != nil {
		appendVariant(rec.Normalized.Preferred)
		for _, v := range rec.Normalized.Variants {
			appendVariant(v)
		}
	}

	// Rule 3: name as nested object (raw + toponym) or bare string.
	if len(rec.Name) > 0 {
		var block nameBlock
		if err := json.Unmarshal(rec.Name, &block); err == nil {
			appendVariant(block.Raw)
			toponym = block.Toponym
		} else {
			var s string
			if err := json.Unmarshal(rec.Name, &s); err == nil {
				appendVariant(s)
				if label == "" {
					label = s
				}
			}
		}
	}

	sourceFile := "unknown"
	if rec.Provenance != nil && len(rec.Provenance.SourceFiles) > 0 {
		sourceFile = rec.Provenance.SourceFiles[0]
	}

	return entities.AuthorityRecord{
		ID:         rec.AuthorityID,
		Label:      label,
		Type:       entities.EntityType(rec.Type),
		Variants:   variants,
		Toponym:    toponym,
		SourceFile: sourceFile,
	}
}
