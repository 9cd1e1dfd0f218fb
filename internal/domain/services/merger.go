package services

import (
	"log/slog"
	"sort"
	"time"

	"github.com/thodel/outremer/internal/domain/entities"
)

// minMentionRunes is the shortest extracted name considered for merging;
// shorter spans are almost always NER noise.
const minMentionRunes = 3

// MergeStats summarizes one merge run.
type MergeStats struct {
	AuthoritySeeded  int
	WikidataMatched  int
	WikidataAdded    int
	ExtractedAdded   int
	ExtractedSkipped int
}

// Merger folds the three person sources into one unified graph. Merging is
// a pure function of its inputs: given identical inputs (and a fixed clock)
// it produces an identical graph, so re-running after a crash is safe.
type Merger struct {
	log *slog.Logger

	// Now supplies provenance timestamps; overridable in tests.
	Now func() time.Time
}

// NewMerger creates a merger.
func NewMerger(log *slog.Logger) *Merger {
	if log == nil {
		log = slog.Default()
	}
	return &Merger{log: log, Now: time.Now}
}

// Merge builds the unified graph:
//
//  1. Authority records seed the graph one-to-one (highest trust).
//  2. A reverse index normalized-name -> authority ids is built; ambiguity
//     is preserved, never resolved by tie-break.
//  3. Each Wikidata record whose normalized label maps to exactly one
//     authority id contributes its QID and a provenance entry to that
//     entity. Ambiguous names are left unmerged - precision over recall.
//  4. Every other Wikidata record becomes its own entity, so the graph is
//     a superset of both sources.
//  5. Extracted mentions already represented by an authority or Wikidata
//     normalized name are dropped (presence check only); the rest become
//     new entities flagged for review.
//
// Steps 4-5 are purely additive and authority-seeded entities are never
// overwritten, so entity count is monotonic in the inputs.
func (m *Merger) Merge(
	authority []entities.AuthorityRecord,
	wikidata map[string]entities.UnifiedEntity,
	extracted []entities.Mention,
) (map[string]entities.UnifiedEntity, MergeStats) {
	now := m.Now().UTC()
	unified := make(map[string]entities.UnifiedEntity, len(authority)+len(wikidata))
	var stats MergeStats

	// Step 1: seed from the authority file.
	authByNorm := make(map[string][]string)
	for _, rec := range authority {
		if rec.ID == "" || rec.Label == "" {
			m.log.Debug("skipping authority record without id or label", "id", rec.ID)
			continue
		}
		ent := seedFromAuthority(rec, now)
		unified[ent.ID] = ent
		stats.AuthoritySeeded++

		// Step 2: reverse index, keeping every id that shares a name.
		for _, n := range ent.Names.Normalized {
			authByNorm[n] = append(authByNorm[n], ent.ID)
		}
	}

	wdByNorm := make(map[string]struct{}, len(wikidata))

	// Deterministic iteration: map order would otherwise vary run to run.
	qids := make([]string, 0, len(wikidata))
	for qid := range wikidata {
		qids = append(qids, qid)
	}
	sort.Strings(qids)

	// Step 3: attach uniquely matching Wikidata identifiers.
	matched := make(map[string]bool, len(wikidata))
	for _, qid := range qids {
		wdNorm := entities.Normalize(wikidata[qid].PreferredLabel)
		if wdNorm != "" {
			wdByNorm[wdNorm] = struct{}{}
		}

		ids, ok := authByNorm[wdNorm]
		if !ok || wdNorm == "" {
			continue
		}
		if len(ids) != 1 {
			// Ambiguous: several authority entries share this name.
			m.log.Debug("ambiguous wikidata match left unmerged",
				"qid", qid, "norm", wdNorm, "authority_ids", len(ids))
			continue
		}

		ent := unified[ids[0]]
		ent.Identifiers[entities.IdentifierWikidataQID] = qid
		ent.AddSource(entities.SourceRef{
			Type:       entities.SourceWikidata,
			MatchType:  string(entities.TierExact),
			Confidence: 1.0,
		}, now)
		unified[ids[0]] = ent
		matched[qid] = true
		stats.WikidataMatched++
	}

	// Step 4: unmatched Wikidata records join the graph as new entities.
	for _, qid := range qids {
		if matched[qid] {
			continue
		}
		ent := wikidata[qid]
		if ent.ID == "" {
			ent.ID = "WIKIDATA:" + qid
		}
		unified[ent.ID] = ent
		stats.WikidataAdded++
	}

	// Step 5: extraction-only mentions.
	for _, mention := range extracted {
		norm := entities.Normalize(mention.Name)
		if norm == "" || len([]rune(mention.Name)) < minMentionRunes {
			stats.ExtractedSkipped++
			continue
		}

		// Presence check only: a name already represented by authority or
		// Wikidata is treated as covered, without a field-level merge.
		if _, ok := authByNorm[norm]; ok {
			stats.ExtractedSkipped++
			continue
		}
		if _, ok := wdByNorm[norm]; ok {
			stats.ExtractedSkipped++
			continue
		}

		id := "EXTRACTED:" + entities.Slugify(mention.Name)
		if _, exists := unified[id]; exists {
			// Same slug seen before in this run; one entity per name.
			stats.ExtractedSkipped++
			continue
		}

		gender := mention.Gender
		if gender == "" {
			gender = entities.GenderUnknown
		}

		unified[id] = entities.UnifiedEntity{
			ID:             id,
			PreferredLabel: mention.Name,
			Identifiers:    map[string]string{},
			Names: entities.NameSet{
				Preferred:  mention.Name,
				Variants:   []string{mention.Name},
				Normalized: []string{norm},
			},
			Bio: entities.Bio{Gender: gender},
			Provenance: entities.Provenance{
				Sources: []entities.SourceRef{{
					Type:       entities.SourceExtraction,
					SourceFile: mention.SourceDoc,
					Confidence: mention.Confidence,
				}},
				CreatedAt: now,
				UpdatedAt: now,
			},
			Flags: map[string]bool{entities.FlagNeedsReview: true},
		}
		stats.ExtractedAdded++
	}

	return unified, stats
}

// seedFromAuthority builds the unified entity for one authority record.
func seedFromAuthority(rec entities.AuthorityRecord, now time.Time) entities.UnifiedEntity {
	variants := make([]string, 0, len(rec.Variants))
	norms := make([]string, 0, len(rec.Variants)+1)
	seen := make(map[string]struct{}, len(rec.Variants)+1)

	for _, v := range rec.Variants {
		variants = append(variants, v)
		if n := entities.Normalize(v); n != "" {
			if _, ok := seen[n]; !ok {
				seen[n] = struct{}{}
				norms = append(norms, n)
			}
		}
	}
	if n := entities.Normalize(rec.Label); n != "" {
		if _, ok := seen[n]; !ok {
			norms = append(norms, n)
		}
	}

	ent := entities.UnifiedEntity{
		ID:             rec.ID,
		PreferredLabel: rec.Label,
		Identifiers:    map[string]string{entities.IdentifierAuthority: rec.ID},
		Names: entities.NameSet{
			Preferred:  rec.Label,
			Variants:   variants,
			Normalized: norms,
		},
		Provenance: entities.Provenance{
			Sources: []entities.SourceRef{{
				Type:       entities.SourceAuthority,
				SourceFile: rec.SourceFile,
				Confidence: 1.0,
			}},
			CreatedAt: now,
			UpdatedAt: now,
		},
		Flags: map[string]bool{},
	}

	if rec.Toponym != "" {
		ent.Places = append(ent.Places, entities.Place{
			Type:  "title_seat",
			Label: rec.Toponym,
		})
	}

	return ent
}
