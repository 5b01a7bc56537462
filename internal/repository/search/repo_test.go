package search

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/zotsearch/internal/db"
	"github.com/kailas-cloud/zotsearch/internal/domain/filter"
)

func TestSearchKNN_BuildsQuery(t *testing.T) {
	repo, ms := newTestRepo(t)
	expr, _ := filter.FromMap(map[string]string{"item_type": "book"})

	ms.searchKNNFn = func(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
		if q.IndexName != "zotsearch:zotero_library:idx" {
			t.Errorf("index = %q", q.IndexName)
		}
		if q.K != 5 || len(q.Vector) != 2 {
			t.Errorf("unexpected query %+v", q)
		}
		if q.Filters.IsEmpty() {
			t.Error("filters dropped")
		}
		if q.ReturnFields[0] != "__content" {
			t.Errorf("return fields = %v", q.ReturnFields)
		}
		return &db.SearchResult{}, nil
	}

	hits, err := repo.SearchKNN(context.Background(), []float32{1, 0}, expr, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no hits, got %d", len(hits))
	}
}

func TestSearchKNN_MapsEntries(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{
				Key:      "zotsearch:zotero_library:AAA",
				Distance: 0.2,
				Fields:   map[string]string{"__content": "deep learning", "item_key": "AAA", "title": "DL"},
			},
			{
				Key:      "zotsearch:zotero_library:BBB",
				Distance: 0.5,
				Fields:   map[string]string{"__content": "no key field"},
			},
		}}, nil
	}

	hits, err := repo.SearchKNN(context.Background(), []float32{1}, filter.Expression{}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Document.ID() != "AAA" || hits[0].Document.Text() != "deep learning" || hits[0].Distance != 0.2 {
		t.Errorf("unexpected first hit %+v", hits[0])
	}
	if hits[0].Document.Metadata().Title != "DL" {
		t.Errorf("metadata not mapped: %+v", hits[0].Document.Metadata())
	}
	if hits[1].Document.ID() != "BBB" {
		t.Errorf("id should fall back to key suffix, got %q", hits[1].Document.ID())
	}
}

func TestSearchKNN_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.searchKNNFn = func(_ context.Context, _ *db.KNNQuery) (*db.SearchResult, error) {
		return nil, db.ErrIndexNotFound
	}

	if _, err := repo.SearchKNN(context.Background(), []float32{1}, filter.Expression{}, 1); !errors.Is(err, db.ErrIndexNotFound) {
		t.Fatalf("expected ErrIndexNotFound, got %v", err)
	}
}
