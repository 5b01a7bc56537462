package itemcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
)

type fakeSource struct {
	calls map[string]int
	items map[string]item.Item
	err   error
}

func (f *fakeSource) Item(_ context.Context, key string) (item.Item, error) {
	f.calls[key]++
	if f.err != nil {
		return item.Item{}, f.err
	}
	it, ok := f.items[key]
	if !ok {
		return item.Item{}, domain.ErrItemNotFound
	}
	return it, nil
}

func newSource() *fakeSource {
	return &fakeSource{
		calls: map[string]int{},
		items: map[string]item.Item{"A": item.New("A", "book", 1, nil)},
	}
}

func TestItem_CachesHits(t *testing.T) {
	src := newSource()
	c := New(src, 8, time.Minute, nil)
	ctx := context.Background()

	for range 3 {
		it, err := c.Item(ctx, "A")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if it.Key() != "A" {
			t.Errorf("Key() = %q", it.Key())
		}
	}
	if src.calls["A"] != 1 {
		t.Errorf("source called %d times, want 1", src.calls["A"])
	}
}

func TestItem_RemembersNotFound(t *testing.T) {
	src := newSource()
	c := New(src, 8, time.Minute, nil)
	ctx := context.Background()

	for range 2 {
		if _, err := c.Item(ctx, "GONE"); !errors.Is(err, domain.ErrItemNotFound) {
			t.Fatalf("expected ErrItemNotFound, got %v", err)
		}
	}
	if src.calls["GONE"] != 1 {
		t.Errorf("source called %d times, want 1", src.calls["GONE"])
	}
}

func TestItem_DoesNotCacheTransientErrors(t *testing.T) {
	src := newSource()
	src.err = domain.ErrRateLimited
	c := New(src, 8, time.Minute, nil)
	ctx := context.Background()

	_, _ = c.Item(ctx, "A")
	src.err = nil
	if _, err := c.Item(ctx, "A"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.calls["A"] != 2 {
		t.Errorf("source called %d times, want 2", src.calls["A"])
	}
}

func TestInvalidate(t *testing.T) {
	src := newSource()
	c := New(src, 8, time.Minute, nil)
	ctx := context.Background()

	_, _ = c.Item(ctx, "A")
	c.Invalidate("A")
	_, _ = c.Item(ctx, "A")
	if src.calls["A"] != 2 {
		t.Errorf("source called %d times, want 2", src.calls["A"])
	}
}
