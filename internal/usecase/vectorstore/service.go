package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/db"
	"github.com/kailas-cloud/zotsearch/internal/domain"
	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/filter"
	"github.com/kailas-cloud/zotsearch/internal/repository/collection"
)

// Info summarises the collection for status reporting.
type Info struct {
	Name             string `json:"name"`
	Count            int    `json:"count"`
	EmbeddingModel   string `json:"embedding_model"`
	PersistDirectory string `json:"persist_directory"`
	Error            string `json:"error,omitempty"`
}

// Service is the vector store used by sync and search: documents keyed by
// item key, embedded on write.
type Service struct {
	cols          CollectionRepository
	docs          DocumentRepository
	search        SearchRepository
	docEmbedder   domain.Embedder
	queryEmbedder domain.Embedder
	name          string
	location      string
	logger        *zap.Logger
}

// New creates a vector store. location describes where the data lives
// (database addresses) and is only reported back in Info.
func New(
	cols CollectionRepository, docs DocumentRepository, search SearchRepository,
	docEmbedder, queryEmbedder domain.Embedder,
	name, location string, logger *zap.Logger,
) *Service {
	return &Service{
		cols:          cols,
		docs:          docs,
		search:        search,
		docEmbedder:   docEmbedder,
		queryEmbedder: queryEmbedder,
		name:          name,
		location:      location,
		logger:        logger,
	}
}

// EnsureCollection creates the index if it is missing.
func (s *Service) EnsureCollection(ctx context.Context) error {
	created, err := s.cols.Ensure(ctx)
	if err != nil {
		return fmt.Errorf("ensure collection: %w", err)
	}
	if created {
		s.logger.Info("Created search collection", zap.String("collection", s.name))
	}
	return nil
}

// DocumentExists reports whether key is indexed.
func (s *Service) DocumentExists(ctx context.Context, key string) (bool, error) {
	ok, err := s.docs.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("document exists: %w", err)
	}
	return ok, nil
}

// UpsertDocuments embeds all texts in one batch and writes the documents.
// Either the whole batch is written or an error is returned.
func (s *Service) UpsertDocuments(ctx context.Context, docs []domdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i := range docs {
		texts[i] = docs[i].Text()
	}

	res, err := domain.EmbedAll(ctx, s.docEmbedder, texts)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(res.Embeddings) != len(docs) {
		return fmt.Errorf("expected %d embeddings, got %d: %w",
			len(docs), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	if err := s.docs.UpsertBatch(ctx, docs, res.Embeddings); err != nil {
		return fmt.Errorf("upsert documents: %w", err)
	}
	return nil
}

// ResetCollection deletes every document and recreates an empty index.
func (s *Service) ResetCollection(ctx context.Context) error {
	removed, err := s.cols.Reset(ctx)
	if err != nil {
		return fmt.Errorf("reset collection: %w", err)
	}
	s.logger.Info("Reset search collection",
		zap.String("collection", s.name),
		zap.Int("removed", removed),
	)
	return nil
}

// CollectionInfo never fails: lookup errors are reported in Info.Error.
func (s *Service) CollectionInfo(ctx context.Context) Info {
	info := Info{Name: s.name, PersistDirectory: s.location}

	ci, err := s.cols.Info(ctx)
	if err != nil {
		info.Error = err.Error()
		return info
	}
	info.Count = ci.Count
	info.EmbeddingModel = ci.Meta.EmbeddingModel
	return info
}

// Search embeds query and returns up to n nearest documents matching where.
// Only the TAG-indexed metadata fields can be used in where.
func (s *Service) Search(ctx context.Context, query string, n int, where map[string]string) ([]domdoc.Hit, error) {
	for k := range where {
		if !slices.Contains(collection.FilterableFields, k) {
			return nil, fmt.Errorf("%w: field %q is not filterable", domain.ErrInvalidFilter, k)
		}
	}
	expr, err := filter.FromMap(where)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
	}

	res, err := s.queryEmbedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := s.search.SearchKNN(ctx, res.Embedding, expr, n)
	if err != nil {
		if errors.Is(err, db.ErrIndexNotFound) {
			return []domdoc.Hit{}, nil
		}
		return nil, fmt.Errorf("search: %w", err)
	}
	return hits, nil
}

// DeleteDocument removes one document by item key.
func (s *Service) DeleteDocument(ctx context.Context, key string) error {
	if err := s.docs.Delete(ctx, key); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
