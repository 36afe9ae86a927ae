package normalisers

import (
	"github.com/custodia-labs/sercha-view/internal/normalisers/docx"
	"github.com/custodia-labs/sercha-view/internal/normalisers/eml"
	"github.com/custodia-labs/sercha-view/internal/normalisers/html"
	"github.com/custodia-labs/sercha-view/internal/normalisers/markdown"
	"github.com/custodia-labs/sercha-view/internal/normalisers/pdf"
	"github.com/custodia-labs/sercha-view/internal/normalisers/plaintext"
)

// NewDefaultRegistry returns a registry with every built-in normaliser.
func NewDefaultRegistry() *Registry {
	return NewRegistry(
		plaintext.New(),
		markdown.New(),
		html.New(),
		docx.New(),
		pdf.New(),
		eml.New(),
	)
}
