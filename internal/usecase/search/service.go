// Package search answers semantic queries over the indexed library.
package search

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
)

// Limits for Request.Limit.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// filterAliases maps client-facing Zotero field names to stored metadata keys.
var filterAliases = map[string]string{
	"itemType":    domdoc.FieldItemType,
	"itemKey":     domdoc.FieldItemKey,
	"citationKey": domdoc.FieldCitationKey,
	"DOI":         domdoc.FieldDOI,
}

// Request is a semantic search query.
type Request struct {
	Query    string            `json:"query"`
	Limit    int               `json:"limit,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	MinScore float64           `json:"min_score,omitempty"`
}

// ZoteroItem is the full library record attached to a result.
type ZoteroItem struct {
	Key     string         `json:"key"`
	Version int            `json:"version"`
	Data    map[string]any `json:"data"`
}

// Result is one ranked match.
type Result struct {
	ItemKey         string          `json:"item_key"`
	SimilarityScore float64         `json:"similarity_score"`
	MatchedText     string          `json:"matched_text"`
	Metadata        domdoc.Metadata `json:"metadata"`
	ZoteroItem      *ZoteroItem     `json:"zotero_item,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// Response wraps results with the effective query parameters.
type Response struct {
	Query      string            `json:"query"`
	Limit      int               `json:"limit"`
	Filters    map[string]string `json:"filters,omitempty"`
	Results    []Result          `json:"results"`
	TotalFound int               `json:"total_found"`
}

// Service runs searches and enriches hits with library items.
type Service struct {
	index  Index
	items  ItemReader
	logger *zap.Logger
}

// New creates a search service. items can be nil to skip enrichment.
func New(index Index, items ItemReader, logger *zap.Logger) *Service {
	return &Service{index: index, items: items, logger: logger}
}

// Search embeds the query and returns the nearest items. A failed item
// lookup is reported on that result and does not fail the search.
func (s *Service) Search(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery)
	}
	if req.MinScore < 0 || req.MinScore > 1 {
		return Response{}, fmt.Errorf("%w: min_score must be between 0 and 1", domain.ErrInvalidQuery)
	}
	limit := normalizeLimit(req.Limit)
	where := translateFilters(req.Filters)

	hits, err := s.index.Search(ctx, query, limit, where)
	if err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		r := Result{
			ItemKey:         h.Document.ID(),
			SimilarityScore: 1 - h.Distance,
			MatchedText:     h.Document.Text(),
			Metadata:        h.Document.Metadata(),
		}
		if r.SimilarityScore < req.MinScore {
			continue
		}
		s.enrich(ctx, &r)
		results = append(results, r)
	}

	return Response{
		Query:      query,
		Limit:      limit,
		Filters:    where,
		Results:    results,
		TotalFound: len(results),
	}, nil
}

func (s *Service) enrich(ctx context.Context, r *Result) {
	if s.items == nil {
		return
	}
	it, err := s.items.Item(ctx, r.ItemKey)
	if err != nil {
		s.logger.Warn("Failed to fetch item for search result",
			zap.String("item_key", r.ItemKey),
			zap.Error(err),
		)
		r.Error = err.Error()
		return
	}
	r.ZoteroItem = &ZoteroItem{Key: it.Key(), Version: it.Version(), Data: it.Data()}
}

func normalizeLimit(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return min(n, MaxLimit)
}

func translateFilters(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		if alias, ok := filterAliases[k]; ok {
			k = alias
		}
		out[k] = v
	}
	return out
}
