package entities

// MatchTier identifies which matching rule produced a candidate score.
type MatchTier string

const (
	TierExact MatchTier = "exact"
	TierAlias MatchTier = "alias"
	TierFuzzy MatchTier = "fuzzy"
)

// LinkStatus classifies the confidence of a resolved link.
type LinkStatus string

const (
	StatusHigh    LinkStatus = "high"
	StatusMedium  LinkStatus = "medium"
	StatusLow     LinkStatus = "low"
	StatusNoMatch LinkStatus = "no_match"
)

// Candidate is the scored outcome of matching one mention against one
// authority entry.
type Candidate struct {
	ID        string     `json:"outremer_id"`
	Label     string     `json:"outremer_name"`
	Type      EntityType `json:"type"`
	Score     float64    `json:"score"`
	MatchTier MatchTier  `json:"match_type"`
	Evidence  string     `json:"evidence"`
}

// Link is the resolved decision for one mention: its ranked candidates, the
// best one, and a status derived from the best score. A non-empty mention
// yields exactly one Link.
type Link struct {
	Person     string      `json:"person"`
	Group      bool        `json:"person_group"`
	Candidates []Candidate `json:"candidates"`
	Top        *Candidate  `json:"top_candidate"`
	Confidence float64     `json:"confidence"`
	Status     LinkStatus  `json:"status"`
}
