// Package html provides a Normaliser implementation for HTML documents.
// Text is extracted with the golang.org/x/net/html tokenizer: scripts,
// styles and embedded graphics are dropped and entities are decoded.
package html
