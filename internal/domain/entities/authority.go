package entities

// EntityType categorizes authority records. The authority file currently
// only carries persons, but the field is kept so mixed indices stay possible.
type EntityType string

const EntityTypePerson EntityType = "person"

// AuthorityRecord is one raw record from the curated authority file after
// shape resolution. Variants holds every name representation the parser
// found, in source order, before normalization or deduplication.
type AuthorityRecord struct {
	ID         string
	Label      string
	Type       EntityType
	Variants   []string
	Toponym    string
	SourceFile string
}

// AuthorityEntry is one searchable entry of the authority index: a curated
// identity with its deduplicated normalized name variants. Entries are built
// once per run and read-only afterwards.
type AuthorityEntry struct {
	ID       string     `json:"authority_id"`
	Label    string     `json:"preferred_label"`
	Type     EntityType `json:"type"`
	Variants []string   `json:"variants"`
	Norms    []string   `json:"all_norms"`
}
