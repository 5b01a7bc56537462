package vectorstore

import (
	"context"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/filter"
	"github.com/kailas-cloud/zotsearch/internal/repository/collection"
)

// CollectionRepository manages the index lifecycle.
type CollectionRepository interface {
	Ensure(ctx context.Context) (created bool, err error)
	Reset(ctx context.Context) (removed int, err error)
	Info(ctx context.Context) (collection.Info, error)
}

// DocumentRepository stores documents with their vectors.
type DocumentRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	UpsertBatch(ctx context.Context, docs []domdoc.Document, vectors [][]float32) error
	Delete(ctx context.Context, id string) error
}

// SearchRepository runs nearest-neighbour queries.
type SearchRepository interface {
	SearchKNN(ctx context.Context, vector []float32, filters filter.Expression, topK int) ([]domdoc.Hit, error)
}
