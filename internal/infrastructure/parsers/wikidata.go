package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/thodel/outremer/internal/domain/entities"
)

const wikidataEntityPrefix = "http://www.wikidata.org/entity/"

// Wikidata property suffixes carried by the export rows.
const (
	propGender = "/P21"
	propOffice = "/P39"
	propFather = "/P22"
	propMother = "/P25"
	propSpouse = "/P26"
	propChild  = "/P40"
)

// ParseWikidataExport loads a Wikidata tabular export directory: data page
// CSVs with repeated rows per entity, folded into one UnifiedEntity per QID.
// The returned map is keyed by bare QID. A missing directory yields an
// empty map (the export is optional), but a CSV that exists and cannot be
// parsed is a hard error.
func ParseWikidataExport(dir string, now time.Time, log *slog.Logger) (map[string]entities.UnifiedEntity, error) {
	if log == nil {
		log = slog.Default()
	}

	pagesDir := filepath.Join(dir, "data_pages")
	pages, err := filepath.Glob(filepath.Join(pagesDir, "*.csv"))
	if err != nil {
		return nil, fmt.Errorf("listing export pages: %w", err)
	}
	if len(pages) == 0 {
		log.Warn("no wikidata export pages found", "dir", pagesDir)
		return map[string]entities.UnifiedEntity{}, nil
	}
	sort.Strings(pages)

	persons := make(map[string]entities.UnifiedEntity)
	for _, page := range pages {
		f, err := os.Open(page)
		if err != nil {
			return nil, fmt.Errorf("opening export page: %w", err)
		}
		err = foldExportRows(f, persons, now)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing export page %s: %w", filepath.Base(page), err)
		}
		log.Debug("processed wikidata export page", "page", filepath.Base(page))
	}

	log.Info("loaded wikidata export", "persons", len(persons))
	return persons, nil
}

// foldExportRows reads one CSV page and folds its property rows into the
// per-QID records. Expected columns: item, itemLabel, prop, value,
// valueLabel, birth, death, floruit - resolved by header name, extra
// columns ignored.
func foldExportRows(r io.Reader, persons map[string]entities.UnifiedEntity, now time.Time) error {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("reading CSV header: %w", err)
	}
	colIndex := make(map[string]int, len(header))
	for i, col := range header {
		colIndex[col] = i
	}
	if _, ok := colIndex["item"]; !ok {
		return fmt.Errorf("missing required column: item")
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading CSV record: %w", err)
		}

		item := getColumn(record, colIndex, "item")
		if !strings.HasPrefix(item, wikidataEntityPrefix) {
			continue
		}
		qid := item[strings.LastIndex(item, "/")+1:]

		person, ok := persons[qid]
		if !ok {
			label := getColumn(record, colIndex, "itemLabel")
			person = newWikidataEntity(qid, label, now)
		}

		foldRow(&person, record, colIndex)
		persons[qid] = person
	}

	return nil
}

// newWikidataEntity builds the initial record for a QID.
func newWikidataEntity(qid, label string, now time.Time) entities.UnifiedEntity {
	return entities.UnifiedEntity{
		ID:             "WIKIDATA:" + qid,
		PreferredLabel: label,
		Identifiers:    map[string]string{entities.IdentifierWikidataQID: qid},
		Names: entities.NameSet{
			Preferred:  label,
			Variants:   []string{label},
			Normalized: []string{entities.Normalize(label)},
		},
		Bio: entities.Bio{Gender: entities.GenderUnknown},
		Provenance: entities.Provenance{
			Sources: []entities.SourceRef{{
				Type:       entities.SourceWikidata,
				Confidence: 1.0,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Flags: map[string]bool{},
	}
}

// foldRow merges one property row into the person record. First-seen birth
// and death dates win; later rows never overwrite them.
func foldRow(person *entities.UnifiedEntity, record []string, colIndex map[string]int) {
	if birth := getColumn(record, colIndex, "birth"); birth != "" && person.Bio.Birth == nil {
		person.Bio.Birth = &entities.LifeEvent{Date: trimISODate(birth)}
	}
	if death := getColumn(record, colIndex, "death"); death != "" && person.Bio.Death == nil {
		person.Bio.Death = &entities.LifeEvent{Date: trimISODate(death)}
	}
	if floruit := getColumn(record, colIndex, "floruit"); floruit != "" && person.Bio.Floruit == nil {
		person.Bio.Floruit = &entities.LifeEvent{Date: trimISODate(floruit)}
	}

	prop := getColumn(record, colIndex, "prop")
	valueLabel := getColumn(record, colIndex, "valueLabel")
	valueRef := refFromURI(getColumn(record, colIndex, "value"))

	switch {
	case strings.HasSuffix(prop, propGender):
		lower := strings.ToLower(valueLabel)
		switch {
		case strings.Contains(lower, "female"):
			person.Bio.Gender = entities.GenderFemale
		case strings.Contains(lower, "male"):
			person.Bio.Gender = entities.GenderMale
		}
	case strings.HasSuffix(prop, propOffice):
		person.Roles = append(person.Roles, entities.Role{
			Type:        "title",
			Label:       valueLabel,
			WikidataRef: valueRef,
			Source:      string(entities.SourceWikidata),
		})
	case strings.HasSuffix(prop, propFather):
		appendKinship(person, "parent", valueLabel, valueRef)
	case strings.HasSuffix(prop, propMother):
		appendKinship(person, "parent", valueLabel, valueRef)
	case strings.HasSuffix(prop, propSpouse):
		appendKinship(person, "spouse", valueLabel, valueRef)
	case strings.HasSuffix(prop, propChild):
		appendKinship(person, "child", valueLabel, valueRef)
	}
}

func appendKinship(person *entities.UnifiedEntity, kind, label, ref string) {
	person.Relationships = append(person.Relationships, entities.Kinship{
		Type:        kind,
		PersonLabel: label,
		WikidataRef: ref,
		Source:      string(entities.SourceWikidata),
	})
}

// trimISODate strips the midnight time suffix Wikidata attaches to dates.
func trimISODate(s string) string {
	return strings.TrimSuffix(s, "T00:00:00Z")
}

// refFromURI extracts a QID from an entity URI, or returns "".
func refFromURI(uri string) string {
	if !strings.HasPrefix(uri, "http") {
		return ""
	}
	return uri[strings.LastIndex(uri, "/")+1:]
}

// getColumn safely retrieves a column value from a record.
func getColumn(record []string, colIndex map[string]int, col string) string {
	if idx, ok := colIndex[col]; ok && idx < len(record) {
		return record[idx]
	}
	return ""
}
