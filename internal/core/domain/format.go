package domain

import (
	"path"
	"strings"
)

// Format is the closed set of document representations a highlighter can render.
type Format int

const (
	// FormatOther covers anything no highlighter can render.
	FormatOther Format = iota

	// FormatPlainText is UTF-8 text rendered as inline markup.
	FormatPlainText

	// FormatStructuredDoc is a word-processor container of paragraphs and runs.
	FormatStructuredDoc

	// FormatPagedDoc is a paginated document with positioned glyphs.
	FormatPagedDoc
)

// Formats lists every Format value.
var Formats = []Format{FormatPlainText, FormatStructuredDoc, FormatPagedDoc, FormatOther}

// String returns the format tag.
func (f Format) String() string {
	switch f {
	case FormatPlainText:
		return "plain-text"
	case FormatStructuredDoc:
		return "structured-doc"
	case FormatPagedDoc:
		return "paged-doc"
	default:
		return "other"
	}
}

// FileType is the user-facing document category reported with each hit.
type FileType string

// File types.
const (
	FileTypePDF        FileType = "pdf"
	FileTypeWord       FileType = "word"
	FileTypeExcel      FileType = "excel"
	FileTypePowerPoint FileType = "powerpoint"
	FileTypeText       FileType = "text"
	FileTypeOther      FileType = "other"
)

// Extension returns the lowercased extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
}

// FileTypeFromName maps an object name to its FileType by extension.
func FileTypeFromName(name string) FileType {
	switch Extension(name) {
	case "pdf":
		return FileTypePDF
	case "doc", "docx":
		return FileTypeWord
	case "xls", "xlsx":
		return FileTypeExcel
	case "ppt", "pptx":
		return FileTypePowerPoint
	case "txt", "json", "csv", "md", "log":
		return FileTypeText
	default:
		return FileTypeOther
	}
}

// FormatFromName resolves the Format used to highlight an object.
func FormatFromName(name string) Format {
	switch FileTypeFromName(name) {
	case FileTypePDF:
		return FormatPagedDoc
	case FileTypeWord:
		return FormatStructuredDoc
	case FileTypeText:
		return FormatPlainText
	default:
		return FormatOther
	}
}

var contentTypes = map[string]string{
	"pdf":  "application/pdf",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"ppt":  "application/vnd.ms-powerpoint",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"txt":  "text/plain; charset=utf-8",
	"log":  "text/plain; charset=utf-8",
	"md":   "text/markdown; charset=utf-8",
	"json": "application/json",
	"csv":  "text/csv; charset=utf-8",
	"html": "text/html; charset=utf-8",
	"htm":  "text/html; charset=utf-8",
	"eml":  "message/rfc822",
}

// ContentTypeFromName guesses a MIME type from the object name.
// Unknown extensions yield application/octet-stream.
func ContentTypeFromName(name string) string {
	if ct, ok := contentTypes[Extension(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}
