package entities

import "time"

// SourceType identifies which kind of source contributed to an entity.
type SourceType string

const (
	SourceAuthority      SourceType = "authority"
	SourceWikidata       SourceType = "wikidata"
	SourceExtraction     SourceType = "extraction"
	SourceReconciliation SourceType = "reconciliation"
)

// Identifier map keys used across the unified graph.
const (
	IdentifierAuthority   = "outremer_auth"
	IdentifierWikidataQID = "wikidata_qid"
)

// FlagNeedsReview marks entities that entered the graph from extraction only
// and require human curation before they are considered trustworthy.
const FlagNeedsReview = "needs_review"

// SourceRef records one contributing source of an entity.
type SourceRef struct {
	Type       SourceType `json:"type"`
	SourceFile string     `json:"source_file,omitempty"`
	MatchType  string     `json:"match_type,omitempty"`
	Confidence float64    `json:"confidence"`
}

// Provenance traces every contributing source of an entity with timestamps.
type Provenance struct {
	Sources   []SourceRef `json:"sources"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NameSet is the full name bag of an entity.
type NameSet struct {
	Preferred  string   `json:"preferred"`
	Variants   []string `json:"variants"`
	Normalized []string `json:"normalized"`
}

// LifeEvent is a dated biographical event (birth, death, floruit).
type LifeEvent struct {
	Date  string `json:"date,omitempty"`
	Place string `json:"place,omitempty"`
}

// Bio holds the optional, independently sourced biography fields.
type Bio struct {
	Birth   *LifeEvent `json:"birth,omitempty"`
	Death   *LifeEvent `json:"death,omitempty"`
	Floruit *LifeEvent `json:"floruit,omitempty"`
	Gender  Gender     `json:"gender,omitempty"`
}

// Role is a title or office held by a person.
type Role struct {
	Type        string `json:"type"`
	Label       string `json:"label"`
	WikidataRef string `json:"wikidata_ref,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Kinship is a family relationship to another person.
type Kinship struct {
	Type        string `json:"type"`
	PersonLabel string `json:"person_label"`
	WikidataRef string `json:"wikidata_ref,omitempty"`
	Source      string `json:"source,omitempty"`
}

// Place associates an entity with a location.
type Place struct {
	Type  string `json:"type"`
	Label string `json:"label"`
}

// UnifiedEntity is the canonical merged record for one real-world person.
// Entities are created when a source record first enters the graph, mutated
// additively when later sources match, and never deleted - only flagged.
type UnifiedEntity struct {
	ID             string            `json:"id"`
	PreferredLabel string            `json:"preferred_label"`
	Identifiers    map[string]string `json:"identifiers"`
	Names          NameSet           `json:"names"`
	Bio            Bio               `json:"bio"`
	Roles          []Role            `json:"roles"`
	Relationships  []Kinship         `json:"relationships"`
	Places         []Place           `json:"places"`
	Provenance     Provenance        `json:"provenance"`
	Flags          map[string]bool   `json:"flags"`
}

// NeedsReview reports whether the entity is flagged for human curation.
func (e *UnifiedEntity) NeedsReview() bool {
	return e.Flags[FlagNeedsReview]
}

// AddSource appends a provenance entry and bumps the update timestamp.
func (e *UnifiedEntity) AddSource(ref SourceRef, at time.Time) {
	e.Provenance.Sources = append(e.Provenance.Sources, ref)
	e.Provenance.UpdatedAt = at
}
