// Package handlers implements the application-level operations behind the
// CLI commands: linking source texts, merging the graph, and reconciling
// unmatched names.
package handlers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/domain/ports"
	"github.com/thodel/outremer/internal/domain/services"
)

// LinkHandler extracts person mentions from source texts and links them
// against the authority index.
type LinkHandler struct {
	extractor ports.Extractor
	linker    *services.Linker
	log       *slog.Logger
}

// NewLinkHandler creates a new link handler.
func NewLinkHandler(extractor ports.Extractor, linker *services.Linker, log *slog.Logger) *LinkHandler {
	if log == nil {
		log = slog.Default()
	}
	return &LinkHandler{
		extractor: extractor,
		linker:    linker,
		log:       log,
	}
}

// LinkResult contains the result of linking one source text.
type LinkResult struct {
	Document   *entities.Document
	OutputPath string
}

// LinkBatchResult contains the result of a directory run.
type LinkBatchResult struct {
	TotalFiles    int
	TotalMentions int
	TotalLinks    int
	Results       []*LinkResult
	Errors        []error
}

// Handle processes one source text file against the given authority index
// and returns the per-document artifact.
func (h *LinkHandler) Handle(ctx context.Context, filePath string, index []entities.AuthorityEntry) (*entities.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading source text: %w", err)
	}
	text := string(data)

	mentions, metadata, err := h.extractor.ExtractMentions(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extracting mentions: %w", err)
	}

	links := h.linker.Link(mentions, index)

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	doc := &entities.Document{
		DocID:          docID(filePath, hash),
		SourceFile:     filepath.Base(filePath),
		InputType:      strings.TrimPrefix(filepath.Ext(filePath), "."),
		Metadata:       metadata,
		Persons:        mentions,
		Links:          links,
		TextSHA256:     hash,
		ExtractionMode: h.extractor.Mode(),
	}

	h.log.Info("linked document",
		"doc", doc.DocID, "mentions", len(mentions), "links", len(links))
	return doc, nil
}

// HandleDirectory processes every .txt file under inputDir and writes one
// JSON artifact per document plus an index manifest into outDir. One broken
// input does not abort the batch; its error is collected in the result.
func (h *LinkHandler) HandleDirectory(ctx context.Context, inputDir, outDir string, index []entities.AuthorityEntry) (*LinkBatchResult, error) {
	paths, err := filepath.Glob(filepath.Join(inputDir, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("listing source texts: %w", err)
	}
	sort.Strings(paths)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	batch := &LinkBatchResult{TotalFiles: len(paths)}
	var manifest []manifestEntry

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return batch, err
		}

		doc, err := h.Handle(ctx, path, index)
		if err != nil {
			h.log.Warn("skipping source text", "path", path, "error", err)
			batch.Errors = append(batch.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}

		outPath := filepath.Join(outDir, doc.DocID+".json")
		if err := writeJSON(outPath, doc); err != nil {
			batch.Errors = append(batch.Errors, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}

		batch.TotalMentions += len(doc.Persons)
		batch.TotalLinks += len(doc.Links)
		batch.Results = append(batch.Results, &LinkResult{Document: doc, OutputPath: outPath})
		manifest = append(manifest, manifestEntry{
			DocID:      doc.DocID,
			SourceFile: doc.SourceFile,
			Mentions:   len(doc.Persons),
			Links:      len(doc.Links),
		})
	}

	if err := writeJSON(filepath.Join(outDir, "index.json"), manifest); err != nil {
		return batch, fmt.Errorf("writing manifest: %w", err)
	}
	return batch, nil
}

// manifestEntry is one row of the index.json manifest.
type manifestEntry struct {
	DocID      string `json:"doc_id"`
	SourceFile string `json:"source_file"`
	Mentions   int    `json:"mentions"`
	Links      int    `json:"links"`
}

// docID derives a stable document id from the file name and content hash,
// so renaming without editing changes only the prefix and editing without
// renaming changes only the suffix.
func docID(path, hash string) string {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return entities.Slugify(stem) + "-" + hash[:12]
}

// writeJSON marshals v with indentation and writes it to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}
