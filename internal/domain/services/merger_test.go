package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thodel/outremer/internal/domain/entities"
)

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
}

func testAuthority() []entities.AuthorityRecord {
	return []entities.AuthorityRecord{
		{
			ID:         "AUTH:1",
			Label:      "Baldwin of Ibelin",
			Variants:   []string{"Baudouin d'Ibelin"},
			Toponym:    "Ibelin",
			SourceFile: "charters.json",
		},
		{
			ID:    "AUTH:2",
			Label: "Raymond of Tripoli",
		},
	}
}

func wikidataEntity(qid, label string) entities.UnifiedEntity {
	return entities.UnifiedEntity{
		ID:             "WIKIDATA:" + qid,
		PreferredLabel: label,
		Identifiers:    map[string]string{entities.IdentifierWikidataQID: qid},
		Names: entities.NameSet{
			Preferred:  label,
			Variants:   []string{label},
			Normalized: []string{entities.Normalize(label)},
		},
		Flags: map[string]bool{},
	}
}

func TestMergeAuthoritySeeding(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	unified, stats := merger.Merge(testAuthority(), nil, nil)

	assert.Equal(t, 2, stats.AuthoritySeeded)
	require.Len(t, unified, 2)

	ent := unified["AUTH:1"]
	assert.Equal(t, "Baldwin of Ibelin", ent.PreferredLabel)
	assert.Equal(t, "AUTH:1", ent.Identifiers[entities.IdentifierAuthority])
	assert.Contains(t, ent.Names.Normalized, "baldwin of ibelin")
	assert.Contains(t, ent.Names.Normalized, "baudouin d ibelin")
	require.Len(t, ent.Places, 1)
	assert.Equal(t, "Ibelin", ent.Places[0].Label)
	require.Len(t, ent.Provenance.Sources, 1)
	assert.Equal(t, entities.SourceAuthority, ent.Provenance.Sources[0].Type)
	assert.Equal(t, 1.0, ent.Provenance.Sources[0].Confidence)
	assert.False(t, ent.NeedsReview())
}

func TestMergeUniqueWikidataMatch(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	wikidata := map[string]entities.UnifiedEntity{
		"Q100": wikidataEntity("Q100", "Baldwin of Ibelin"),
	}

	unified, stats := merger.Merge(testAuthority(), wikidata, nil)

	assert.Equal(t, 1, stats.WikidataMatched)
	assert.Equal(t, 0, stats.WikidataAdded)
	require.Len(t, unified, 2, "a matched record must not add an entity")

	ent := unified["AUTH:1"]
	assert.Equal(t, "Q100", ent.Identifiers[entities.IdentifierWikidataQID])
	require.Len(t, ent.Provenance.Sources, 2, "the match adds a provenance entry")
	assert.Equal(t, entities.SourceWikidata, ent.Provenance.Sources[1].Type)
}

func TestMergeAmbiguousNameLeftUnmerged(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	authority := []entities.AuthorityRecord{
		{ID: "AUTH:10", Label: "John"},
		{ID: "AUTH:11", Label: "John"},
	}
	wikidata := map[string]entities.UnifiedEntity{
		"Q7": wikidataEntity("Q7", "John"),
	}

	unified, stats := merger.Merge(authority, wikidata, nil)

	assert.Equal(t, 0, stats.WikidataMatched)
	assert.Equal(t, 1, stats.WikidataAdded)
	require.Len(t, unified, 3, "ambiguity yields a separate entity, never a guess")
	assert.Empty(t, unified["AUTH:10"].Identifiers[entities.IdentifierWikidataQID])
	assert.Empty(t, unified["AUTH:11"].Identifiers[entities.IdentifierWikidataQID])
	assert.Contains(t, unified, "WIKIDATA:Q7")
}

func TestMergeUnmatchedWikidataAdded(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	wikidata := map[string]entities.UnifiedEntity{
		"Q200": wikidataEntity("Q200", "Saladin"),
	}

	unified, stats := merger.Merge(testAuthority(), wikidata, nil)

	assert.Equal(t, 1, stats.WikidataAdded)
	require.Contains(t, unified, "WIKIDATA:Q200")
	assert.Equal(t, "Saladin", unified["WIKIDATA:Q200"].PreferredLabel)
}

func TestMergeExtractedMentions(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	extracted := []entities.Mention{
		{Name: "Baldwin of Ibelin", Confidence: 0.9},                    // covered by authority
		{Name: "Hugh of Caesarea", Confidence: 0.4, SourceDoc: "doc-1"}, // new
		{Name: "Hugh of Caesarea", Confidence: 0.8},                     // duplicate slug
		{Name: "Al", Confidence: 0.5},                                   // too short
		{Name: "...", Confidence: 0.5},                                  // unmatchable
	}

	unified, stats := merger.Merge(testAuthority(), nil, extracted)

	assert.Equal(t, 1, stats.ExtractedAdded)
	assert.Equal(t, 4, stats.ExtractedSkipped)
	require.Len(t, unified, 3)

	ent, ok := unified["EXTRACTED:hugh-of-caesarea"]
	require.True(t, ok)
	assert.True(t, ent.NeedsReview())
	assert.Equal(t, entities.GenderUnknown, ent.Bio.Gender)
	require.Len(t, ent.Provenance.Sources, 1)
	assert.Equal(t, entities.SourceExtraction, ent.Provenance.Sources[0].Type)
	assert.Equal(t, "doc-1", ent.Provenance.Sources[0].SourceFile)
	assert.InDelta(t, 0.4, ent.Provenance.Sources[0].Confidence, 1e-9)
}

func TestMergeExtractedCoveredByWikidata(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	wikidata := map[string]entities.UnifiedEntity{
		"Q200": wikidataEntity("Q200", "Saladin"),
	}
	extracted := []entities.Mention{
		{Name: "Saladin", Confidence: 0.7},
	}

	unified, stats := merger.Merge(nil, wikidata, extracted)

	assert.Equal(t, 0, stats.ExtractedAdded)
	assert.Equal(t, 1, stats.ExtractedSkipped)
	assert.Len(t, unified, 1)
}

func TestMergeIdempotent(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	wikidata := map[string]entities.UnifiedEntity{
		"Q100": wikidataEntity("Q100", "Baldwin of Ibelin"),
		"Q200": wikidataEntity("Q200", "Saladin"),
	}
	extracted := []entities.Mention{
		{Name: "Hugh of Caesarea", Confidence: 0.4},
	}

	first, statsA := merger.Merge(testAuthority(), wikidata, extracted)
	second, statsB := merger.Merge(testAuthority(), wikidata, extracted)

	assert.Equal(t, statsA, statsB)
	assert.Equal(t, first, second, "same inputs and clock must produce an identical graph")
}

func TestMergeEntityCountMonotonic(t *testing.T) {
	merger := NewMerger(nil)
	merger.Now = fixedClock

	base, _ := merger.Merge(testAuthority(), nil, nil)
	withWikidata, _ := merger.Merge(testAuthority(), map[string]entities.UnifiedEntity{
		"Q200": wikidataEntity("Q200", "Saladin"),
	}, nil)

	assert.GreaterOrEqual(t, len(withWikidata), len(base))
	for id := range base {
		assert.Contains(t, withWikidata, id, "adding a source never removes an entity")
	}
}
