package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/zotsearch/internal/db"
	"github.com/kailas-cloud/zotsearch/internal/domain"
	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/repository/keyspace"
)

// store is the consumer interface for documents (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
}

// Repo stores indexed documents as hashes.
type Repo struct {
	store store
	space keyspace.Space
}

// New creates a document repository.
func New(s store, space keyspace.Space) *Repo {
	return &Repo{store: s, space: space}
}

// Exists reports whether a document is stored under id.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	ok, err := r.store.Exists(ctx, r.space.DocKey(id))
	if err != nil {
		return false, fmt.Errorf("exists %s: %w", id, err)
	}
	return ok, nil
}

// UpsertBatch writes docs with their vectors in one pipeline.
// vectors[i] belongs to docs[i]. Existing documents are overwritten.
func (r *Repo) UpsertBatch(ctx context.Context, docs []domdoc.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return fmt.Errorf("upsert batch: %d documents, %d vectors", len(docs), len(vectors))
	}
	items := make([]db.HashSetItem, len(docs))
	for i := range docs {
		items[i] = db.HashSetItem{
			Key:    r.space.DocKey(docs[i].ID()),
			Fields: buildHashFields(&docs[i], vectors[i]),
		}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset documents: %w", err)
	}
	return nil
}

// Get loads a stored document without its vector.
func (r *Repo) Get(ctx context.Context, id string) (domdoc.Document, error) {
	m, err := r.store.HGetAll(ctx, r.space.DocKey(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domdoc.Document{}, domain.ErrDocumentNotFound
		}
		return domdoc.Document{}, fmt.Errorf("hgetall %s: %w", id, err)
	}
	return parseHashFields(id, m), nil
}

// Delete removes a document. A missing document yields domain.ErrDocumentNotFound.
func (r *Repo) Delete(ctx context.Context, id string) error {
	n, err := r.store.Del(ctx, r.space.DocKey(id))
	if err != nil {
		return fmt.Errorf("del %s: %w", id, err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
