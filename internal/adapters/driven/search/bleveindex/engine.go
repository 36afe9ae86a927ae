// Package bleveindex implements driven.SearchEngine on a Bleve full-text index.
//
// Each document is keyed by its object name. Queries are split on whitespace
// and every term must match either the content or the title, so adding a
// term narrows the results.
package bleveindex

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"

	"github.com/custodia-labs/sercha-view/internal/core/domain"
	"github.com/custodia-labs/sercha-view/internal/core/ports/driven"
)

// Field names.
const (
	fieldName     = "name"
	fieldPath     = "path"
	fieldTitle    = "title"
	fieldContent  = "content"
	fieldModified = "modified"
)

const docType = "object"

// Ensure Engine implements the interface.
var _ driven.SearchEngine = (*Engine)(nil)

// Engine is a Bleve-backed search engine. Safe for concurrent use.
type Engine struct {
	mu     sync.RWMutex
	index  bleve.Index
	closed bool
}

// indexedDoc is the document shape stored in the index.
type indexedDoc struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Modified time.Time `json:"modified"`
}

// Type routes documents to the object mapping.
func (indexedDoc) Type() string { return docType }

// Open opens the index at path, creating it when missing.
// An empty path keeps the index in memory.
func Open(path string) (*Engine, error) {
	if path == "" {
		idx, err := bleve.NewMemOnly(buildMapping())
		if err != nil {
			return nil, fmt.Errorf("create memory index: %w", err)
		}
		return &Engine{index: idx}, nil
	}

	idx, err := bleve.Open(path)
	if err == nil {
		return &Engine{index: idx}, nil
	}
	if !errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		return nil, fmt.Errorf("open index: %w", err)
	}
	idx, err = bleve.New(path, buildMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Engine{index: idx}, nil
}

// buildMapping describes the object document fields.
func buildMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	objectMapping := bleve.NewDocumentMapping()

	// Name and path are exact identifiers.
	nameField := bleve.NewTextFieldMapping()
	nameField.Store = true
	nameField.Index = true
	nameField.Analyzer = keyword.Name
	objectMapping.AddFieldMappingsAt(fieldName, nameField)

	pathField := bleve.NewTextFieldMapping()
	pathField.Store = true
	pathField.Index = true
	pathField.Analyzer = keyword.Name
	objectMapping.AddFieldMappingsAt(fieldPath, pathField)

	titleField := bleve.NewTextFieldMapping()
	titleField.Store = true
	titleField.Index = true
	titleField.Analyzer = standard.Name
	objectMapping.AddFieldMappingsAt(fieldTitle, titleField)

	contentField := bleve.NewTextFieldMapping()
	contentField.Store = true
	contentField.Index = true
	contentField.Analyzer = standard.Name
	objectMapping.AddFieldMappingsAt(fieldContent, contentField)

	modifiedField := bleve.NewDateTimeFieldMapping()
	modifiedField.Store = true
	modifiedField.Index = true
	objectMapping.AddFieldMappingsAt(fieldModified, modifiedField)

	indexMapping.AddDocumentMapping(docType, objectMapping)
	indexMapping.DefaultType = docType
	indexMapping.DefaultAnalyzer = standard.Name
	return indexMapping
}

func (e *Engine) live() (bleve.Index, error) {
	if e.closed {
		return nil, fmt.Errorf("%w: index closed", domain.ErrSearchUnavailable)
	}
	return e.index, nil
}

// Index adds or replaces a document.
func (e *Engine) Index(ctx context.Context, doc domain.IndexDocument) error {
	if doc.Name == "" {
		return fmt.Errorf("%w: document name is empty", domain.ErrInvalidInput)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, err := e.live()
	if err != nil {
		return err
	}

	// The name-derived title is always indexed so name terms stay searchable.
	title := domain.TitleFromName(doc.Name)
	if doc.Title != "" && !strings.EqualFold(doc.Title, title) {
		title = doc.Title + "\n" + title
	}
	if err := idx.Index(doc.Name, indexedDoc{
		Name:     doc.Name,
		Path:     doc.Path,
		Title:    title,
		Content:  doc.Content,
		Modified: doc.ModifiedAt,
	}); err != nil {
		return fmt.Errorf("%w: index %s: %v", domain.ErrSearchUnavailable, doc.Name, err)
	}
	return nil
}

// Delete removes a document. Deleting an unknown name is not an error.
func (e *Engine) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, err := e.live()
	if err != nil {
		return err
	}
	if err := idx.Delete(name); err != nil {
		return fmt.Errorf("%w: delete %s: %v", domain.ErrSearchUnavailable, name, err)
	}
	return nil
}

// Search returns documents matching every term of q.
func (e *Engine) Search(ctx context.Context, q string, opts domain.SearchOptions) ([]domain.SearchHit, error) {
	terms := strings.Fields(q)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSearchLimit
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, err := e.live()
	if err != nil {
		return nil, err
	}

	req := bleve.NewSearchRequestOptions(allTerms(terms), limit, offset, false)
	req.Fields = []string{fieldName, fieldPath, fieldContent}

	res, err := idx.SearchInContext(ctx, req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	hits := make([]domain.SearchHit, 0, len(res.Hits))
	for _, hit := range res.Hits {
		h := domain.SearchHit{Name: hit.ID, Score: hit.Score}
		if name, ok := hit.Fields[fieldName].(string); ok && name != "" {
			h.Name = name
		}
		if path, ok := hit.Fields[fieldPath].(string); ok {
			h.Path = path
		}
		if content, ok := hit.Fields[fieldContent].(string); ok {
			h.Content = content
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// allTerms builds a query where each term must appear in the content or the title.
func allTerms(terms []string) query.Query {
	clauses := make([]query.Query, 0, len(terms))
	for _, term := range terms {
		content := bleve.NewMatchQuery(term)
		content.SetField(fieldContent)
		title := bleve.NewMatchQuery(term)
		title.SetField(fieldTitle)
		clauses = append(clauses, bleve.NewDisjunctionQuery(content, title))
	}
	return bleve.NewConjunctionQuery(clauses...)
}

// Count returns the number of indexed documents.
func (e *Engine) Count(_ context.Context) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	idx, err := e.live()
	if err != nil {
		return 0, err
	}
	n, err := idx.DocCount()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	return n, nil
}

// Close closes the index. Further calls fail with domain.ErrSearchUnavailable.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.index.Close()
}
