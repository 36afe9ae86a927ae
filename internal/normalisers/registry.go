package normalisers

import (
	"context"
	"fmt"
	"mime"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to the highest-priority normaliser
// registered for their MIME type. Safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byMIME map[string][]driven.Normaliser
}

// NewRegistry creates a registry holding ns.
func NewRegistry(ns ...driven.Normaliser) *Registry {
	r := &Registry{byMIME: make(map[string][]driven.Normaliser)}
	for _, n := range ns {
		r.Register(n)
	}
	return r
}

// Register adds a normaliser for each of its MIME types.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mt := range n.SupportedMIMETypes() {
		mt = baseType(mt)
		list := append(r.byMIME[mt], n)
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Priority() > list[j].Priority()
		})
		r.byMIME[mt] = list
	}
}

// Normalise runs the preferred normaliser for raw.MIMEType.
// A MIME type parameter such as charset is ignored.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	mt := baseType(raw.MIMEType)
	if mt == "" {
		mt = baseType(domain.ContentTypeFromName(raw.Name))
	}

	r.mu.RLock()
	list := r.byMIME[mt]
	r.mu.RUnlock()

	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no normaliser for %q", domain.ErrUnsupportedFormat, mt)
	}
	return list[0].Normalise(ctx, raw)
}

// SupportedMIMETypes returns every registered MIME type, sorted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.byMIME))
	for mt := range r.byMIME {
		out = append(out, mt)
	}
	sort.Strings(out)
	return out
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mt, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mt))
}
