package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/domain/ports"
	"github.com/thodel/outremer/internal/domain/services"
	"github.com/thodel/outremer/internal/infrastructure/parsers"
)

// MergeHandler builds the unified graph from the three person sources and
// persists it as both a JSON artifact and graph store rows.
type MergeHandler struct {
	merger *services.Merger
	store  ports.GraphStore
	log    *slog.Logger
}

// NewMergeHandler creates a new merge handler.
func NewMergeHandler(merger *services.Merger, store ports.GraphStore, log *slog.Logger) *MergeHandler {
	if log == nil {
		log = slog.Default()
	}
	return &MergeHandler{
		merger: merger,
		store:  store,
		log:    log,
	}
}

// MergeOptions names the input locations of one merge run.
type MergeOptions struct {
	// AuthorityPath is the curated authority JSON file.
	AuthorityPath string
	// WikidataDir is the tabular export directory; optional.
	WikidataDir string
	// DocumentsDir holds the per-document linking artifacts; optional.
	DocumentsDir string
	// OutPath is where the unified graph JSON is written.
	OutPath string
}

// MergeResult summarizes one merge run.
type MergeResult struct {
	RunID    string
	Entities int
	Flagged  int
	Stats    services.MergeStats
	OutPath  string
}

// Handle runs a full merge. The authority file is required and a failure to
// read it aborts the run; the Wikidata export and extraction artifacts are
// optional enrichment.
func (h *MergeHandler) Handle(ctx context.Context, opts MergeOptions) (*MergeResult, error) {
	authority, err := parsers.ParseAuthority(opts.AuthorityPath)
	if err != nil {
		return nil, fmt.Errorf("loading authority: %w", err)
	}

	now := h.merger.Now().UTC()
	wikidata := map[string]entities.UnifiedEntity{}
	if opts.WikidataDir != "" {
		wikidata, err = parsers.ParseWikidataExport(opts.WikidataDir, now, h.log)
		if err != nil {
			return nil, fmt.Errorf("loading wikidata export: %w", err)
		}
	}

	var extracted []entities.Mention
	if opts.DocumentsDir != "" {
		docs, err := parsers.LoadDocuments(opts.DocumentsDir, h.log)
		if err != nil {
			return nil, fmt.Errorf("loading documents: %w", err)
		}
		extracted = parsers.CollectMentions(docs)
	}

	unified, stats := h.merger.Merge(authority, wikidata, extracted)

	flagged := 0
	batch := make([]*entities.UnifiedEntity, 0, len(unified))
	for id := range unified {
		ent := unified[id]
		if ent.NeedsReview() {
			flagged++
		}
		batch = append(batch, &ent)
	}

	// JSON map keys serialize sorted, so the artifact is byte-stable across
	// runs with identical inputs.
	if err := writeJSON(opts.OutPath, unified); err != nil {
		return nil, fmt.Errorf("writing unified graph: %w", err)
	}

	runID := uuid.New().String()
	if h.store != nil {
		if err := h.store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("preparing graph store: %w", err)
		}
		if err := h.store.SaveBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("persisting unified graph: %w", err)
		}
		if err := h.store.LogAction(ctx, "merge", "", map[string]any{
			"run_id":            runID,
			"entities":          len(unified),
			"flagged":           flagged,
			"authority_seeded":  stats.AuthoritySeeded,
			"wikidata_matched":  stats.WikidataMatched,
			"wikidata_added":    stats.WikidataAdded,
			"extracted_added":   stats.ExtractedAdded,
			"extracted_skipped": stats.ExtractedSkipped,
		}); err != nil {
			return nil, fmt.Errorf("recording merge run: %w", err)
		}
	}

	h.log.Info("merge complete",
		"run", runID,
		"entities", len(unified),
		"flagged", flagged,
		"out", filepath.Base(opts.OutPath))

	return &MergeResult{
		RunID:    runID,
		Entities: len(unified),
		Flagged:  flagged,
		Stats:    stats,
		OutPath:  opts.OutPath,
	}, nil
}
