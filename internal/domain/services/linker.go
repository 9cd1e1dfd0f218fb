package services

import (
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"

	"github.com/thodel/outremer/internal/domain/entities"
)

// MatcherConfig holds the tunable thresholds of the matching engine. The
// defaults are empirical; every value can be overridden from configuration.
type MatcherConfig struct {
	// MinScore is the floor below which candidates are discarded.
	MinScore float64
	// TopK is the number of ranked candidates kept per mention.
	TopK int
	// High, Medium and Low are the status classification thresholds,
	// applied to the best retained score in that order.
	High   float64
	Medium float64
	Low    float64
}

// DefaultMatcherConfig returns the standard thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		MinScore: 0.60,
		TopK:     3,
		High:     0.90,
		Medium:   0.75,
		Low:      0.60,
	}
}

// Status classifies a confidence value under the configured thresholds.
func (c MatcherConfig) Status(confidence float64) entities.LinkStatus {
	switch {
	case confidence >= c.High:
		return entities.StatusHigh
	case confidence >= c.Medium:
		return entities.StatusMedium
	case confidence >= c.Low:
		return entities.StatusLow
	default:
		return entities.StatusNoMatch
	}
}

// Linker resolves person mentions against the authority index.
type Linker struct {
	cfg MatcherConfig

	// Workers bounds the fan-out across mentions. Scoring one mention
	// against the index is independent of every other mention, so the
	// work shards freely; results are reassembled in input order.
	Workers int
}

// NewLinker creates a linker with the given matcher configuration.
func NewLinker(cfg MatcherConfig) *Linker {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultMatcherConfig().TopK
	}
	return &Linker{
		cfg:     cfg,
		Workers: runtime.GOMAXPROCS(0),
	}
}

// Link resolves each mention against the full authority index and returns
// one Link per non-empty mention, preserving input order. Mentions whose
// name normalizes to the empty string are skipped, not errored. A nil or
// empty index degrades gracefully: every mention is classified no_match.
// After linking, repeats of the same (person, top-candidate) pair are
// collapsed to the occurrence with the highest confidence, so verbatim
// repetition in one document counts as one fact rather than many.
func (l *Linker) Link(mentions []entities.Mention, index []entities.AuthorityEntry) []entities.Link {
	results := make([]*entities.Link, len(mentions))

	workers := l.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(mentions) {
		workers = len(mentions)
	}

	if workers > 1 {
		var wg sync.WaitGroup
		jobs := make(chan int)
		for w := 0; w < workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					results[i] = l.linkOne(mentions[i], index)
				}
			}()
		}
		for i := range mentions {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	} else {
		for i := range mentions {
			results[i] = l.linkOne(mentions[i], index)
		}
	}

	links := make([]entities.Link, 0, len(mentions))
	for _, r := range results {
		if r != nil {
			links = append(links, *r)
		}
	}

	return dedupeLinks(links)
}

// linkOne scores a single mention against every index entry. Returns nil
// for mentions with an unmatchable (empty) normalized name.
func (l *Linker) linkOne(mention entities.Mention, index []entities.AuthorityEntry) *entities.Link {
	norm := entities.Normalize(mention.Name)
	if norm == "" {
		return nil
	}

	type scored struct {
		score float64
		tier  entities.MatchTier
		entry *entities.AuthorityEntry
	}

	var retained []scored
	for i := range index {
		entry := &index[i]
		best := 0.0
		bestTier := entities.TierFuzzy

		// Keep only the single best variant score per entry, so an entry
		// cannot appear twice in the candidate list.
		for _, variant := range entry.Norms {
			score, tier := Score(norm, variant)
			if score > best {
				best = score
				bestTier = tier
			}
			if tier == entities.TierExact {
				break
			}
		}

		if best >= l.cfg.MinScore {
			retained = append(retained, scored{score: best, tier: bestTier, entry: entry})
		}
	}

	// Stable by score descending; equal scores keep index order so runs
	// are deterministic.
	sort.SliceStable(retained, func(i, j int) bool {
		return retained[i].score > retained[j].score
	})

	topK := retained
	if len(topK) > l.cfg.TopK {
		topK = topK[:l.cfg.TopK]
	}

	candidates := make([]entities.Candidate, 0, len(topK))
	for _, s := range topK {
		candidates = append(candidates, entities.Candidate{
			ID:        s.entry.ID,
			Label:     s.entry.Label,
			Type:      s.entry.Type,
			Score:     round4(s.score),
			MatchTier: s.tier,
			Evidence:  fmt.Sprintf("%s match: '%s' <-> '%s'", s.tier, norm, s.entry.Label),
		})
	}

	link := entities.Link{
		Person:     mention.Name,
		Group:      mention.Group,
		Candidates: candidates,
		Status:     entities.StatusNoMatch,
	}
	if len(candidates) > 0 {
		link.Top = &candidates[0]
		link.Confidence = candidates[0].Score
		link.Status = l.cfg.Status(link.Confidence)
	}
	return &link
}

// dedupeLinks collapses links that share (person, top-candidate id), keeping
// the one with the higher confidence. Links without a top candidate share
// the no-match pseudo id, so repeated unmatched names also collapse to one.
func dedupeLinks(links []entities.Link) []entities.Link {
	type key struct {
		person string
		id     string
	}

	seen := make(map[key]int, len(links))
	deduped := make([]entities.Link, 0, len(links))

	for _, link := range links {
		id := "__none__"
		if link.Top != nil {
			id = link.Top.ID
		}
		k := key{person: link.Person, id: id}

		if idx, ok := seen[k]; ok {
			if link.Confidence > deduped[idx].Confidence {
				deduped[idx] = link
			}
			continue
		}
		seen[k] = len(deduped)
		deduped = append(deduped, link)
	}

	return deduped
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
