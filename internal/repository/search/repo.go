package search

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/zotsearch/internal/db"
	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/filter"
	"github.com/kailas-cloud/zotsearch/internal/repository/keyspace"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo runs vector queries against the collection index.
type Repo struct {
	store        store
	space        keyspace.Space
	returnFields []string
}

// New creates a search repository.
func New(s store, space keyspace.Space) *Repo {
	fields := append([]string{"__content"}, domdoc.MetadataFields...)
	return &Repo{store: s, space: space, returnFields: fields}
}

// SearchKNN returns up to topK documents closest to vector that satisfy filters,
// nearest first.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, filters filter.Expression, topK int,
) ([]domdoc.Hit, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.space.IndexName(),
		Filters:      filters,
		Vector:       vector,
		K:            topK,
		ReturnFields: r.returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.space.Collection(), err)
	}

	hits := make([]domdoc.Hit, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		id := e.Fields[domdoc.FieldItemKey]
		if id == "" {
			id = r.space.DocID(e.Key)
		}
		hits = append(hits, domdoc.Hit{
			Document: domdoc.Reconstruct(id, e.Fields["__content"], domdoc.MetadataFromFields(e.Fields)),
			Distance: e.Distance,
		})
	}
	return hits, nil
}
