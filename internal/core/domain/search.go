package domain

import "time"

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results.
	Limit int

	// Offset is the number of results to skip.
	Offset int
}

// SearchHit is a single result from the search engine.
type SearchHit struct {
	// Name is the source object name.
	Name string

	// Path is the original location the object was ingested from.
	Path string

	// Content is the indexed text of the object.
	Content string

	// Score is the relevance score.
	Score float64
}

// EnrichedHit is a search hit prepared for display.
type EnrichedHit struct {
	Name    string  `json:"name"`
	Path    string  `json:"path,omitempty"`
	Content string  `json:"content,omitempty"`
	Score   float64 `json:"score"`

	// ViewURL opens the highlighted copy, or the original when highlighting failed.
	// Nil when neither could be signed.
	ViewURL *string `json:"view_url"`

	FileType     FileType   `json:"file_type"`
	FileSize     *int64     `json:"file_size,omitempty"`
	LastModified *time.Time `json:"last_modified,omitempty"`

	// HighlightedContent is Content with keyword markers as HTML.
	HighlightedContent string `json:"highlighted_content,omitempty"`

	// Highlighted is true when ViewURL points at a derived artifact.
	Highlighted bool `json:"highlighted"`
}

// IndexDocument is the text representation of a source object fed to the search engine.
type IndexDocument struct {
	// Name is the source object name and the index key.
	Name string

	// Path is the original location.
	Path string

	// Title is the human-readable title.
	Title string

	// Content is the extracted text.
	Content string

	// ModifiedAt is when the source object last changed.
	ModifiedAt time.Time
}

// SweepReport summarises one Sweeper cycle.
type SweepReport struct {
	// Scanned is the number of derived objects listed.
	Scanned int

	// Expired is how many were older than the retention window.
	Expired int

	// Deleted is how many were removed.
	Deleted int

	// Failed is how many raised an error and were skipped.
	Failed int
}
