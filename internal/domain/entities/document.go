package entities

// DocMetadata is bibliographic metadata guessed or extracted for a document.
type DocMetadata struct {
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
	Year     string `json:"year,omitempty"`
	Language string `json:"language,omitempty"`
	DocType  string `json:"doc_type,omitempty"`
}

// Document is the per-source-text artifact of the linking pipeline: the
// extracted mentions plus one order-preserving Link per non-empty mention.
type Document struct {
	DocID          string      `json:"doc_id"`
	SourceFile     string      `json:"source_file"`
	InputType      string      `json:"input_type"`
	Metadata       DocMetadata `json:"metadata"`
	Persons        []Mention   `json:"persons"`
	Links          []Link      `json:"links"`
	TextSHA256     string      `json:"text_sha256"`
	ExtractionMode string      `json:"extraction_mode"`
}
