// Package normalisers provides implementations of the Normaliser interface
// for various document formats. Each normaliser knows how to extract text
// content from a specific MIME type.
//
// The Registry selects a normaliser by MIME type and priority. The indexer
// uses it to turn stored objects into searchable text.
package normalisers
