package domain

// Document is the text form of a source object after normalisation.
type Document struct {
	// Name is the source object name.
	Name string

	// URI is the original location (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full text content after normalisation.
	Content string

	// Metadata contains arbitrary key-value pairs.
	Metadata map[string]any
}
