package services

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/thodel/outremer/internal/domain/entities"
	"github.com/thodel/outremer/internal/domain/ports"
)

// Era vocabulary for candidate scoring. Descriptions mentioning the medieval
// Levant milieu are boosted; clearly modern indicators are penalized.
var (
	reEraKeywords = regexp.MustCompile(`(?i)\b(crusad|knight|king|queen|count|bishop|pope|sultan|emir|patriarch|` +
		`noble|pilgrim|merchant|historian|chronicler|medieval|middle age|` +
		`latin east|outremer|templars?|hospitall?er|constable|duke|baron)`)
	reModernIndicators = regexp.MustCompile(`(?i)\b(born 1[5-9]\d\d|20th|21st century|politician|athlete|actor)\b`)
)

// ReconcilerConfig controls the external reconciliation pass.
type ReconcilerConfig struct {
	// Limit is the number of candidates kept per name.
	Limit int
	// SearchOverfetch widens the raw search so that plausible candidates
	// aren't lost to filtered-out modern ones near the top.
	SearchOverfetch int
	// CutoffYear excludes candidates whose known lifespan lies entirely
	// after it. Unknown dates are included.
	CutoffYear int
}

// DefaultReconcilerConfig returns the standard reconciliation settings.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{Limit: 3, SearchOverfetch: 5, CutoffYear: 1500}
}

// Reconciler resolves mentions left unmatched by the merger against an
// external knowledge base, with an era-plausibility filter and a per-name
// cache so repeated runs are idempotent.
type Reconciler struct {
	kb    ports.KnowledgeBase
	cache ports.ReconcileCache
	cfg   ReconcilerConfig
	log   *slog.Logger

	// Now supplies cache timestamps; overridable in tests.
	Now func() time.Time
}

// NewReconciler creates a reconciler. The cache is injected explicitly: its
// lifecycle (load at start, persist at end) belongs to the caller.
func NewReconciler(kb ports.KnowledgeBase, cache ports.ReconcileCache, cfg ReconcilerConfig, log *slog.Logger) *Reconciler {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultReconcilerConfig().Limit
	}
	if cfg.SearchOverfetch <= 0 {
		cfg.SearchOverfetch = DefaultReconcilerConfig().SearchOverfetch
	}
	if cfg.CutoffYear <= 0 {
		cfg.CutoffYear = DefaultReconcilerConfig().CutoffYear
	}
	if log == nil {
		log = slog.Default()
	}
	return &Reconciler{kb: kb, cache: cache, cfg: cfg, log: log, Now: time.Now}
}

// ReconcileName queries the knowledge base for a person name and returns
// scored, era-filtered candidates, best first. External failures are
// absorbed per-query: a failed search yields an empty candidate list, never
// an error that would abort the surrounding run.
func (r *Reconciler) ReconcileName(ctx context.Context, name string) []entities.ReconCandidate {
	results, err := r.kb.SearchPersons(ctx, name, r.cfg.Limit+r.cfg.SearchOverfetch)
	if err != nil {
		r.log.Warn("knowledge base search failed", "name", name, "error", err)
		return nil
	}

	var candidates []entities.ReconCandidate
	filtered := 0

	for _, res := range results {
		if res.ID == "" {
			continue
		}

		span, err := r.kb.FetchLifespan(ctx, res.ID)
		if err != nil {
			// Absence of dates is not evidence of exclusion.
			r.log.Debug("lifespan lookup failed, keeping candidate",
				"id", res.ID, "error", err)
			span = ports.Lifespan{}
		}
		if !withinEra(span, r.cfg.CutoffYear) {
			filtered++
			continue
		}

		candidates = append(candidates, entities.ReconCandidate{
			QID:         res.ID,
			Label:       res.Label,
			Description: res.Description,
			URL:         fmt.Sprintf("https://www.wikidata.org/wiki/%s", res.ID),
			Score:       scoreReconCandidate(name, res),
			BirthYear:   span.Birth,
			DeathYear:   span.Death,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	if len(candidates) > r.cfg.Limit {
		candidates = candidates[:r.cfg.Limit]
	}

	if filtered > 0 {
		r.log.Info("filtered post-era candidates", "name", name, "filtered", filtered)
	}
	return candidates
}

// ReconcileLinks processes the no_match links of one document, consulting
// the cache before querying. Returns how many names were queried and how
// many were served from cache.
func (r *Reconciler) ReconcileLinks(ctx context.Context, docID string, links []entities.Link) (queried, cached int, err error) {
	for _, link := range links {
		if link.Status != entities.StatusNoMatch {
			continue
		}
		// Collectives and very short spans are not reconcilable persons.
		if link.Group || len([]rune(link.Person)) < minMentionRunes {
			continue
		}

		key := entities.Normalize(link.Person)
		if key == "" {
			continue
		}
		if _, ok := r.cache.Get(docID, key); ok {
			cached++
			continue
		}

		if err := ctx.Err(); err != nil {
			return queried, cached, err
		}

		r.log.Info("reconciling", "doc", docID, "person", link.Person)
		candidates := r.ReconcileName(ctx, link.Person)
		r.cache.Put(docID, key, ports.CacheEntry{
			Person:     link.Person,
			Candidates: candidates,
			QueriedAt:  r.Now().UTC(),
		})
		queried++
	}
	return queried, cached, nil
}

// withinEra reports whether a lifespan is plausible for the configured era.
// A candidate is excluded only when both known dates fall after the cutoff;
// unknown dates always pass.
func withinEra(span ports.Lifespan, cutoff int) bool {
	if span.Birth == nil && span.Death == nil {
		return true
	}
	if span.Birth != nil && *span.Birth <= cutoff {
		return true
	}
	if span.Death != nil && *span.Death <= cutoff {
		return true
	}
	if span.Birth != nil && *span.Birth > cutoff {
		return false
	}
	return true
}

// scoreReconCandidate is the heuristic relevance score in [0,1]: label
// similarity plus an era-vocabulary bonus minus a modern-indicator penalty.
func scoreReconCandidate(name string, cand ports.KBCandidate) float64 {
	score := 0.0

	nameNorm := entities.Normalize(name)
	labelNorm := entities.Normalize(cand.Label)
	switch {
	case labelNorm != "" && labelNorm == nameNorm:
		score += 0.5
	case labelNorm != "" && nameNorm != "" &&
		(strings.Contains(nameNorm, labelNorm) || strings.Contains(labelNorm, nameNorm)):
		score += 0.3
	}

	if reEraKeywords.MatchString(cand.Description) {
		score += 0.4
	}
	if reModernIndicators.MatchString(cand.Description) {
		score -= 0.5
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return round4(score)
}
