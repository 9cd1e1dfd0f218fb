package services

import (
	"context"
	"regexp"
	"strings"

	"github.com/thodel/outremer/internal/domain/entities"
)

// contextWindow is the number of characters of surrounding text captured
// around each heuristic match.
const contextWindow = 50

var (
	reTitleWords = regexp.MustCompile(`^(King|Queen|Count|Countess|Duke|Duchess|Prince|Princess|Emperor|` +
		`Empress|Pope|Bishop|Archbishop|Sultan|Emir|Amir|Sir|Lord|Lady|Master|` +
		`Brother|Fra|Don|Sire|Baron|Viscount|Constable|Marshal|Seneschal|Abbot|Abbess)\b`)

	rePersonSpan = regexp.MustCompile(`(?:(?:King|Queen|Count|Countess|Duke|Duchess|Prince|Princess|Emperor|` +
		`Empress|Pope|Bishop|Archbishop|Sultan|Emir|Amir|Sir|Lord|Lady|Master|` +
		`Brother|Fra|Don|Sire|Baron|Viscount|Constable|Marshal|Seneschal|Abbot|Abbess)\s+)?` +
		`[A-Z][a-z\x{00c0}-\x{00ff}]+(?:\s+(?:de|of|von|van|le|la|the|du|al|ibn|bin|bar)\s+[A-Z][a-z\x{00c0}-\x{00ff}-]+)?`)

	reGroupSpan = regexp.MustCompile(`(?i)\b(pilgrims?|crusaders?|knights?|Templars?|Hospitallers?|Franks?|` +
		`Saracens?|Muslims?|Christians?|Jews?|Greeks?|Armenians?|Syrians?|` +
		`refugees?|merchants?|artisans?|women|children|clergy|soldiers?|` +
		`captives?|settlers?|colonists?)\b`)

	reHeaderYear = regexp.MustCompile(`\b(1[0-9]{3})\b`)

	stopNorms = map[string]struct{}{
		"the": {}, "and": {}, "but": {}, "for": {}, "nor": {}, "yet": {},
	}
)

// HeuristicExtractor finds person mentions with capitalization and title
// patterns. It is the offline stand-in for the LLM extraction collaborator:
// lower recall, much lower confidence, no external dependency.
type HeuristicExtractor struct{}

// NewHeuristicExtractor creates a heuristic extractor.
func NewHeuristicExtractor() *HeuristicExtractor {
	return &HeuristicExtractor{}
}

// Mode identifies the extraction backend.
func (e *HeuristicExtractor) Mode() string { return "heuristic" }

// ExtractMentions scans text for individual person spans and known
// collective nouns, one mention per distinct normalized name.
func (e *HeuristicExtractor) ExtractMentions(ctx context.Context, text string) ([]entities.Mention, entities.DocMetadata, error) {
	var mentions []entities.Mention
	seen := make(map[string]struct{})

	for _, loc := range rePersonSpan.FindAllStringIndex(text, -1) {
		span := strings.TrimSpace(text[loc[0]:loc[1]])
		if len(span) < 3 || len(strings.Fields(span)) > 6 {
			continue
		}
		// A span that is entirely a collective noun belongs to the group
		// pass below, not here.
		if reGroupSpan.FindString(span) == span {
			continue
		}
		norm := entities.Normalize(span)
		if norm == "" {
			continue
		}
		if _, ok := stopNorms[norm]; ok {
			continue
		}
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}

		title := ""
		if m := reTitleWords.FindString(span); m != "" {
			title = m
		}

		mentions = append(mentions, entities.Mention{
			Name:       span,
			RawMention: span,
			Title:      title,
			Gender:     entities.GenderUnknown,
			Context:    snippet(text, loc[0], loc[1]),
			Confidence: 0.30,
			Offset:     loc[0],
		})
	}

	for _, loc := range reGroupSpan.FindAllStringIndex(text, -1) {
		span := strings.TrimSpace(text[loc[0]:loc[1]])
		norm := entities.Normalize(span)
		if _, ok := seen[norm]; ok {
			continue
		}
		seen[norm] = struct{}{}

		mentions = append(mentions, entities.Mention{
			Name:       span,
			RawMention: span,
			Role:       "collective",
			Gender:     entities.GenderUnknown,
			Group:      true,
			Context:    snippet(text, loc[0], loc[1]),
			Confidence: 0.25,
			Offset:     loc[0],
		})
	}

	return mentions, guessMetadata(text), nil
}

// snippet returns the surrounding context window with newlines flattened.
func snippet(text string, start, end int) string {
	s := start - contextWindow
	if s < 0 {
		s = 0
	}
	e := end + contextWindow
	if e > len(text) {
		e = len(text)
	}
	return strings.ReplaceAll(text[s:e], "\n", " ")
}

// guessMetadata makes a rough guess from the document head: a medieval year
// if one appears early, and a doc type from genre keywords.
func guessMetadata(text string) entities.DocMetadata {
	header := text
	if len(header) > 500 {
		header = header[:500]
	}

	meta := entities.DocMetadata{Language: "en", DocType: "other"}
	if m := reHeaderYear.FindString(header); m != "" {
		meta.Year = m
	}

	head := strings.ToLower(text)
	if len(head) > 300 {
		head = head[:300]
	}
	switch {
	case strings.Contains(head, "charter") || strings.Contains(head, "donation") || strings.Contains(head, "grant"):
		meta.DocType = "charter"
	case strings.Contains(head, "chronicle") || strings.Contains(head, "annal"):
		meta.DocType = "chronicle"
	}

	return meta
}
