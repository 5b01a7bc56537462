package indexsync

import (
	"context"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
	"github.com/kailas-cloud/zotsearch/internal/domain/update"
)

// Library pages through the remote item catalog.
type Library interface {
	FetchPage(ctx context.Context, offset, limit int) ([]item.Item, error)
}

// Store is the part of the vector store the sync writes to.
type Store interface {
	ResetCollection(ctx context.Context) error
	DocumentExists(ctx context.Context, key string) (bool, error)
	UpsertDocuments(ctx context.Context, docs []domdoc.Document) error
}

// ConfigSaver persists the update state after a successful run.
type ConfigSaver interface {
	Save(cfg update.Config) error
}
