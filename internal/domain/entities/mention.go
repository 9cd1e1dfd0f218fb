// Package entities contains core domain data structures.
package entities

// Gender is the gender recorded for a person, when known.
type Gender string

const (
	GenderMale    Gender = "m"
	GenderFemale  Gender = "f"
	GenderUnknown Gender = "unknown"
)

// Mention is a single occurrence of a person name in a source text, as
// emitted by the extraction step. Mentions are immutable once produced;
// the linker only reads them. Every field except Name may be absent.
type Mention struct {
	Name       string  `json:"name"`
	RawMention string  `json:"raw_mention,omitempty"`
	Title      string  `json:"title,omitempty"`
	Epithet    string  `json:"epithet,omitempty"`
	Toponym    string  `json:"toponym,omitempty"`
	Role       string  `json:"role,omitempty"`
	Gender     Gender  `json:"gender,omitempty"`
	Group      bool    `json:"group"`
	Context    string  `json:"context,omitempty"`
	Confidence float64 `json:"confidence"`
	Offset     int     `json:"source_offset,omitempty"`

	// SourceDoc is the id of the document the mention came from. It is set
	// when mentions are aggregated across documents for merging and is not
	// part of the per-document JSON schema.
	SourceDoc string `json:"-"`
}
