package handlers

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/domain/mocks"
	"github.com/thodel/outremer/internal/domain/services"
)

const authorityJSON = `{
	"persons": [
		{"authority_id": "AUTH:1", "preferred_label": "Baldwin of Ibelin",
		 "variants": ["Baudouin d'Ibelin"]},
		{"authority_id": "AUTH:2", "preferred_label": "Raymond of Tripoli"}
	]
}`

func writeMergeInputs(t *testing.T) (authorityPath, docsDir string) {
	t.Helper()
	dir := t.TempDir()

	authorityPath = filepath.Join(dir, "authority.json")
	require.NoError(t, os.WriteFile(authorityPath, []byte(authorityJSON), 0o644))

	doc := entities.Document{
		DocID: "doc-1",
		Persons: []entities.Mention{
			{Name: "Baldwin of Ibelin", Confidence: 0.9},
			{Name: "Hugh of Caesarea", Confidence: 0.4},
		},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "doc-1.json"), data, 0o644))

	return authorityPath, dir
}

func TestMergeHandlerHandle(t *testing.T) {
	authorityPath, docsDir := writeMergeInputs(t)
	outPath := filepath.Join(t.TempDir(), "unified_kg.json")
	store := mocks.NewGraphStore()

	h := NewMergeHandler(services.NewMerger(nil), store, nil)
	result, err := h.Handle(context.Background(), MergeOptions{
		AuthorityPath: authorityPath,
		DocumentsDir:  docsDir,
		OutPath:       outPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Entities, "two authority entities plus one extraction-only")
	assert.Equal(t, 1, result.Flagged)
	assert.Equal(t, 2, result.Stats.AuthoritySeeded)
	assert.Equal(t, 1, result.Stats.ExtractedAdded)
	assert.NotEmpty(t, result.RunID)

	// JSON artifact round-trips.
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	var unified map[string]entities.UnifiedEntity
	require.NoError(t, json.Unmarshal(data, &unified))
	assert.Len(t, unified, 3)
	assert.Contains(t, unified, "AUTH:1")
	assert.Contains(t, unified, "EXTRACTED:hugh-of-caesarea")

	// Graph store received the batch and the audit entry.
	assert.Len(t, store.Entities, 3)
	assert.Equal(t, []string{"merge"}, store.Actions)
}

func TestMergeHandlerMissingAuthorityFails(t *testing.T) {
	h := NewMergeHandler(services.NewMerger(nil), mocks.NewGraphStore(), nil)

	_, err := h.Handle(context.Background(), MergeOptions{
		AuthorityPath: filepath.Join(t.TempDir(), "absent.json"),
		OutPath:       filepath.Join(t.TempDir(), "out.json"),
	})
	require.Error(t, err)
}

func TestMergeHandlerWithoutStore(t *testing.T) {
	authorityPath, _ := writeMergeInputs(t)
	outPath := filepath.Join(t.TempDir(), "unified_kg.json")

	h := NewMergeHandler(services.NewMerger(nil), nil, nil)
	result, err := h.Handle(context.Background(), MergeOptions{
		AuthorityPath: authorityPath,
		OutPath:       outPath,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Entities)

	_, err = os.Stat(outPath)
	require.NoError(t, err, "the JSON artifact is written even without a store")
}
