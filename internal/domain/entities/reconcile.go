package entities

// ReconCandidate is one external knowledge-base candidate for an unmatched
// mention, scored for era plausibility and label similarity.
type ReconCandidate struct {
	QID         string  `json:"qid"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	URL         string  `json:"url"`
	Score       float64 `json:"score"`
	BirthYear   *int    `json:"birth_year"`
	DeathYear   *int    `json:"death_year"`
}
