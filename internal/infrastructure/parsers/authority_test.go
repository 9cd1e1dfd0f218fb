package parsers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thodel/outremer/internal/domain/entities"
)

func TestParseAuthorityFlatVariants(t *testing.T) {
	src := `{
		"persons": [
			{
				"authority_id": "AUTH:1",
				"preferred_label": "Baldwin of Ibelin",
				"type": "person",
				"variants": ["Baudouin d'Ibelin", "Balduinus"],
				"provenance": {"source_files": ["charters.json"]}
			}
		]
	}`

	records, err := ParseAuthorityReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "AUTH:1", rec.ID)
	assert.Equal(t, "Baldwin of Ibelin", rec.Label)
	assert.Equal(t, entities.EntityTypePerson, rec.Type)
	assert.Equal(t, []string{"Baudouin d'Ibelin", "Balduinus"}, rec.Variants)
	assert.Equal(t, "charters.json", rec.SourceFile)
}

func TestParseAuthorityNormalizedBlock(t *testing.T) {
	src := `{
		"persons": [
			{
				"authority_id": "AUTH:2",
				"preferred_label": "Raymond of Tripoli",
				"normalized": {
					"preferred": "raymond of tripoli",
					"variants": ["raymond iii"]
				}
			}
		]
	}`

	records, err := ParseAuthorityReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"raymond of tripoli", "raymond iii"}, records[0].Variants)
	assert.Equal(t, "unknown", records[0].SourceFile)
}

func TestParseAuthorityNameObject(t *testing.T) {
	src := `{
		"persons": [
			{
				"authority_id": "AUTH:3",
				"preferred_label": "Balian of Ibelin",
				"name": {"raw": "Balian d'Ibelin", "toponym": "Ibelin"}
			}
		]
	}`

	records, err := ParseAuthorityReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Balian d'Ibelin"}, records[0].Variants)
	assert.Equal(t, "Ibelin", records[0].Toponym)
}

func TestParseAuthorityNameStringBackfillsLabel(t *testing.T) {
	src := `{
		"persons": [
			{
				"authority_id": "AUTH:4",
				"name": "Melisende"
			}
		]
	}`

	records, err := ParseAuthorityReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Melisende", records[0].Label, "a bare name string backfills a missing label")
	assert.Equal(t, []string{"Melisende"}, records[0].Variants)
}

func TestParseAuthorityEntitiesKey(t *testing.T) {
	src := `{
		"entities": [
			{"authority_id": "AUTH:5", "preferred_label": "Saladin"}
		]
	}`

	records, err := ParseAuthorityReader(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Saladin", records[0].Label)
}

func TestParseAuthorityInvalidJSON(t *testing.T) {
	_, err := ParseAuthorityReader(strings.NewReader("{not json"))
	require.Error(t, err)
}

func TestParseAuthorityMissingFile(t *testing.T) {
	_, err := ParseAuthority("/nonexistent/authority.json")
	require.Error(t, err, "an unreadable authority file must abort, not yield an empty index")
}
