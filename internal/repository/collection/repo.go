package collection

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/zotsearch/internal/db"
	"github.com/kailas-cloud/zotsearch/internal/repository/keyspace"
)

// delChunk bounds the number of keys per DEL during a reset.
const delChunk = 500

// store is the consumer interface for collections (ISP).
//
//nolint:interfacebloat // collection repo needs hash + index management operations
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) (int64, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	DropIndex(ctx context.Context, name string) error
	IndexExists(ctx context.Context, name string) (bool, error)
	IndexInfo(ctx context.Context, name string) (db.IndexInfo, error)
}

// HNSWConfig HNSW index parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo manages the lifecycle of the single search collection.
type Repo struct {
	store store
	space keyspace.Space
	meta  Meta
	hnsw  HNSWConfig
	now   func() int64
}

// New creates a collection repository. meta describes the embedding setup
// the collection is created with.
func New(s store, space keyspace.Space, meta Meta, now func() int64) *Repo {
	return &Repo{store: s, space: space, meta: meta, hnsw: HNSWConfig{M: 16, EFConstruct: 200}, now: now}
}

// WithHNSW configures HNSW index parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

// Ensure creates the collection if its index does not exist yet.
// It reports whether the index was created by this call.
func (r *Repo) Ensure(ctx context.Context) (bool, error) {
	exists, err := r.store.IndexExists(ctx, r.space.IndexName())
	if err != nil {
		return false, fmt.Errorf("check index exists: %w", err)
	}
	if exists {
		return false, nil
	}
	if err := r.create(ctx); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			// lost a race with another process; the index is there
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Reset drops the index, deletes every document of the collection and
// recreates an empty index. It returns how many documents were removed.
func (r *Repo) Reset(ctx context.Context) (int, error) {
	if err := r.store.DropIndex(ctx, r.space.IndexName()); err != nil && !errors.Is(err, db.ErrIndexNotFound) {
		return 0, fmt.Errorf("drop index: %w", err)
	}

	keys, err := r.store.Scan(ctx, r.space.DocPattern())
	if err != nil {
		return 0, fmt.Errorf("scan documents: %w", err)
	}

	var removed int
	for start := 0; start < len(keys); start += delChunk {
		end := min(start+delChunk, len(keys))
		n, err := r.store.Del(ctx, keys[start:end]...)
		if err != nil {
			return removed, fmt.Errorf("delete documents: %w", err)
		}
		removed += int(n)
	}

	if err := r.create(ctx); err != nil {
		return removed, fmt.Errorf("recreate collection: %w", err)
	}
	return removed, nil
}

// Info returns the document count and the stored collection metadata.
func (r *Repo) Info(ctx context.Context) (Info, error) {
	idx, err := r.store.IndexInfo(ctx, r.space.IndexName())
	if err != nil {
		return Info{}, fmt.Errorf("index info: %w", err)
	}

	info := Info{Name: r.space.Collection(), Count: idx.NumDocs, Meta: r.meta}
	m, err := r.store.HGetAll(ctx, r.space.MetaKey())
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		// index created by an older build without the metadata hash
	case err != nil:
		return Info{}, fmt.Errorf("hgetall collection meta: %w", err)
	default:
		info.Meta, info.CreatedAt = metaFromHash(m)
	}
	return info, nil
}

// create stores the metadata hash, then FT.CREATE. The hash is rolled back if
// the index cannot be created.
func (r *Repo) create(ctx context.Context) error {
	def, err := r.indexDefinition()
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}

	metaKey := r.space.MetaKey()
	hash := metaToHash(r.meta, r.now())
	if err := r.store.HSetMulti(ctx, []db.HashSetItem{{Key: metaKey, Fields: hash}}); err != nil {
		return fmt.Errorf("hset collection meta: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return err
		}
		_, cleanupErr := r.store.Del(ctx, metaKey)
		return errors.Join(err, cleanupErr)
	}
	return nil
}
