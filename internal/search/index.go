// Package search provides keyword search over extracted documentation.
package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/jamescalam/autodocs/internal/model"
	"github.com/jamescalam/autodocs/internal/render"
)

// Entry kinds.
const (
	KindModule   = "module"
	KindClass    = "class"
	KindFunction = "function"
)

const (
	defaultLimit  = 15
	maxLimit      = 100
	batchSize     = 1000
	maxHighlights = 3
)

// Entry is one searchable documentation item.
type Entry struct {
	ID    string `json:"id"`
	Kind  string `json:"kind"`
	Name  string `json:"name"`
	Path  string `json:"path"`
	Page  string `json:"page"`
	Text  string `json:"text"`
	Owner string `json:"owner"`
}

// Result is one search hit.
type Result struct {
	Entry      *Entry   `json:"entry"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights"`
}

// Options narrows a search. A nil Options uses the defaults.
type Options struct {
	Limit int
	Kind  string
}

// Index is an in-memory bleve index of documentation entries.
type Index struct {
	index bleve.Index
	mu    sync.RWMutex
}

// New creates an empty index.
func New() (*Index, error) {
	index, err := bleve.NewMemOnly(buildMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}
	return &Index{index: index}, nil
}

func buildMapping() *mapping.IndexMappingImpl {
	indexMapping := bleve.NewIndexMapping()

	textMapping := bleve.NewTextFieldMapping()
	textMapping.Analyzer = "standard"
	textMapping.Store = true
	textMapping.IncludeTermVectors = true

	nameMapping := bleve.NewTextFieldMapping()
	nameMapping.Analyzer = "standard"
	nameMapping.Store = true

	keywordMapping := bleve.NewTextFieldMapping()
	keywordMapping.Analyzer = "keyword"
	keywordMapping.Store = true

	storedOnly := bleve.NewTextFieldMapping()
	storedOnly.Analyzer = "keyword"
	storedOnly.Store = true
	storedOnly.Index = false

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("text", textMapping)
	docMapping.AddFieldMappingsAt("name", nameMapping)
	docMapping.AddFieldMappingsAt("owner", nameMapping)
	docMapping.AddFieldMappingsAt("kind", keywordMapping)
	docMapping.AddFieldMappingsAt("path", storedOnly)
	docMapping.AddFieldMappingsAt("page", storedOnly)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Entries flattens a module into one entry per module, class and function.
// Function text includes parameter names and descriptions.
func Entries(m *model.Module) []*Entry {
	moduleID := render.ModuleID(m.Name)
	entries := []*Entry{{
		ID:   moduleID,
		Kind: KindModule,
		Name: m.Name,
		Path: m.Name,
		Page: moduleID + ".html",
		Text: m.Description,
	}}

	for _, c := range m.ClassList() {
		classID := render.ClassID(m.Name, c.Name)
		entries = append(entries, &Entry{
			ID:    classID,
			Kind:  KindClass,
			Name:  c.Name,
			Path:  m.Name + "." + c.Name,
			Page:  classID + ".html",
			Text:  c.Description,
			Owner: m.Name,
		})
		for _, fn := range c.FunctionList() {
			entries = append(entries, functionEntry(fn, classID, m.Name+"."+c.Name))
		}
	}
	for _, fn := range m.FunctionList() {
		entries = append(entries, functionEntry(fn, moduleID, m.Name))
	}
	return entries
}

func functionEntry(fn *model.Function, pageID, owner string) *Entry {
	var b strings.Builder
	b.WriteString(fn.Description)
	for _, p := range fn.ParameterList() {
		fmt.Fprintf(&b, "\n%s (%s): %s", p.Name, p.DType, p.Description)
	}
	return &Entry{
		ID:    pageID + "#func_" + fn.Name,
		Kind:  KindFunction,
		Name:  fn.Name,
		Path:  owner + "." + fn.Name,
		Page:  pageID + ".html#func_" + fn.Name,
		Text:  b.String(),
		Owner: owner,
	}
}

// Add indexes the entries of every module in batches.
func (ix *Index) Add(ctx context.Context, mods ...*model.Module) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	batch := ix.index.NewBatch()
	count := 0
	for _, m := range mods {
		for _, e := range Entries(m) {
			if count%batchSize == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			count++

			if err := batch.Index(e.ID, toDocument(e)); err != nil {
				return fmt.Errorf("failed to add entry %s to batch: %w", e.ID, err)
			}
			if batch.Size() >= batchSize {
				if err := ix.index.Batch(batch); err != nil {
					return fmt.Errorf("failed to execute batch: %w", err)
				}
				batch = ix.index.NewBatch()
			}
		}
	}

	if batch.Size() > 0 {
		if err := ix.index.Batch(batch); err != nil {
			return fmt.Errorf("failed to execute final batch: %w", err)
		}
	}
	return nil
}

// Count returns the number of indexed entries.
func (ix *Index) Count() (uint64, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.index.DocCount()
}

func toDocument(e *Entry) map[string]interface{} {
	return map[string]interface{}{
		"kind":  e.Kind,
		"name":  e.Name,
		"path":  e.Path,
		"page":  e.Page,
		"text":  e.Text,
		"owner": e.Owner,
	}
}

// Search runs a bleve query-string search, optionally restricted to one kind.
func (ix *Index) Search(ctx context.Context, queryStr string, opts *Options) ([]*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	limit := opts.Limit
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	var q query.Query = bleve.NewQueryStringQuery(queryStr)
	if opts.Kind != "" {
		kind := bleve.NewTermQuery(opts.Kind)
		kind.SetField("kind")
		q = bleve.NewConjunctionQuery(q, kind)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	style := "html"
	req.Highlight = bleve.NewHighlight()
	req.Highlight.Style = &style
	req.Highlight.Fields = []string{"text"}
	req.Fields = []string{"kind", "name", "path", "page", "text", "owner"}

	ix.mu.RLock()
	res, err := ix.index.SearchInContext(ctx, req)
	ix.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	results := make([]*Result, 0, len(res.Hits))
	for _, hit := range res.Hits {
		e := &Entry{ID: hit.ID}
		e.Kind, _ = hit.Fields["kind"].(string)
		e.Name, _ = hit.Fields["name"].(string)
		e.Path, _ = hit.Fields["path"].(string)
		e.Page, _ = hit.Fields["page"].(string)
		e.Text, _ = hit.Fields["text"].(string)
		e.Owner, _ = hit.Fields["owner"].(string)

		results = append(results, &Result{
			Entry:      e,
			Score:      hit.Score,
			Highlights: highlights(hit.Fragments),
		})
	}
	return results, nil
}

func highlights(fragments map[string][]string) []string {
	var out []string
	for _, snippets := range fragments {
		out = append(out, snippets...)
	}
	if len(out) > maxHighlights {
		out = out[:maxHighlights]
	}
	return out
}

// Close releases the index.
func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.index.Close()
}
