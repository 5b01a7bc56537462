package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/zotsearch/internal/db"
	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn   func(ctx context.Context, key string) (map[string]string, error)
	delFn       func(ctx context.Context, keys ...string) (int64, error)
	existsFn    func(ctx context.Context, key string) (bool, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) Del(ctx context.Context, keys ...string) (int64, error) {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return int64(len(keys)), nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	space, err := keyspace.New("zotsearch:", "zotero_library")
	if err != nil {
		t.Fatal(err)
	}
	ms := &mockStore{}
	return New(ms, space), ms
}

func testDoc(id, text string) domdoc.Document {
	return domdoc.Reconstruct(id, text, domdoc.Metadata{ItemKey: id, ItemType: "book", Title: text})
}
