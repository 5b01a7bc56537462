package search

import (
	"context"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

// Index runs semantic queries against the vector store.
type Index interface {
	Search(ctx context.Context, query string, n int, where map[string]string) ([]domdoc.Hit, error)
}

// ItemReader fetches full items for result enrichment.
type ItemReader interface {
	Item(ctx context.Context, key string) (item.Item, error)
}
