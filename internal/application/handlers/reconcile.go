package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thodel/outremer/internal/domain/ports"
	"github.com/thodel/outremer/internal/domain/services"
	"github.com/thodel/outremer/internal/infrastructure/parsers"
)

// ReconcileHandler runs external reconciliation over the unmatched links of
// a document set.
type ReconcileHandler struct {
	reconciler *services.Reconciler
	cache      ports.ReconcileCache
	log        *slog.Logger
}

// NewReconcileHandler creates a new reconcile handler.
func NewReconcileHandler(reconciler *services.Reconciler, cache ports.ReconcileCache, log *slog.Logger) *ReconcileHandler {
	if log == nil {
		log = slog.Default()
	}
	return &ReconcileHandler{
		reconciler: reconciler,
		cache:      cache,
		log:        log,
	}
}

// ReconcileResult summarizes one reconciliation run.
type ReconcileResult struct {
	Documents int
	Queried   int
	Cached    int
}

// Handle reconciles every document in dir. The cache is saved even when the
// run is cut short by cancellation, so completed queries are never repeated.
func (h *ReconcileHandler) Handle(ctx context.Context, dir string) (*ReconcileResult, error) {
	docs, err := parsers.LoadDocuments(dir, h.log)
	if err != nil {
		return nil, fmt.Errorf("loading documents: %w", err)
	}

	result := &ReconcileResult{Documents: len(docs)}
	var runErr error

	for _, doc := range docs {
		queried, cached, err := h.reconciler.ReconcileLinks(ctx, doc.DocID, doc.Links)
		result.Queried += queried
		result.Cached += cached
		if err != nil {
			runErr = err
			break
		}
	}

	if err := h.cache.Save(); err != nil {
		return result, fmt.Errorf("saving reconciliation cache: %w", err)
	}
	if runErr != nil {
		return result, runErr
	}

	h.log.Info("reconciliation complete",
		"documents", result.Documents, "queried", result.Queried, "cached", result.Cached)
	return result, nil
}
