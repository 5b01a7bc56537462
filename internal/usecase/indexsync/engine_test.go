package indexsync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
	"github.com/kailas-cloud/zotsearch/internal/domain/update"
)

// --- Fakes ---

type fakeLibrary struct {
	items   []item.Item
	err     error
	errAt   int // offset that fails when err is set
	offsets []int
}

func (f *fakeLibrary) FetchPage(_ context.Context, offset, limit int) ([]item.Item, error) {
	f.offsets = append(f.offsets, offset)
	if f.err != nil && offset == f.errAt {
		return nil, f.err
	}
	if offset >= len(f.items) {
		return nil, nil
	}
	return f.items[offset:min(offset+limit, len(f.items))], nil
}

type fakeStore struct {
	docs       map[string]domdoc.Document
	existsErr  map[string]error
	resetErr   error
	upsertErr  error
	failOnCall int // 1-based upsert call that returns upsertErr; 0 = every call

	resets      int
	upsertCalls int
	batchSizes  []int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: map[string]domdoc.Document{}, existsErr: map[string]error{}}
}

func (s *fakeStore) ResetCollection(_ context.Context) error {
	if s.resetErr != nil {
		return s.resetErr
	}
	s.resets++
	s.docs = map[string]domdoc.Document{}
	return nil
}

func (s *fakeStore) DocumentExists(_ context.Context, key string) (bool, error) {
	if err := s.existsErr[key]; err != nil {
		return false, err
	}
	_, ok := s.docs[key]
	return ok, nil
}

func (s *fakeStore) UpsertDocuments(_ context.Context, docs []domdoc.Document) error {
	s.upsertCalls++
	s.batchSizes = append(s.batchSizes, len(docs))
	if s.upsertErr != nil && (s.failOnCall == 0 || s.failOnCall == s.upsertCalls) {
		return s.upsertErr
	}
	for _, d := range docs {
		s.docs[d.ID()] = d
	}
	return nil
}

type fakeSaver struct {
	saved []update.Config
	err   error
}

func (f *fakeSaver) Save(cfg update.Config) error {
	f.saved = append(f.saved, cfg)
	return f.err
}

// --- Helpers ---

var t0 = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// tickingClock advances one second per call.
func tickingClock() func() time.Time {
	now := t0
	return func() time.Time {
		cur := now
		now = now.Add(time.Second)
		return cur
	}
}

func paper(i int) item.Item {
	return item.New(fmt.Sprintf("K%05d", i), "journalArticle", 1, map[string]any{
		"title": fmt.Sprintf("Paper %d", i),
	})
}

func papers(n int) []item.Item {
	out := make([]item.Item, n)
	for i := range out {
		out[i] = paper(i)
	}
	return out
}

type fixture struct {
	lib    *fakeLibrary
	store  *fakeStore
	saver  *fakeSaver
	engine *Engine
}

func newFixture(items []item.Item, opts ...Option) *fixture {
	f := &fixture{
		lib:   &fakeLibrary{items: items},
		store: newFakeStore(),
		saver: &fakeSaver{},
	}
	opts = append([]Option{WithClock(tickingClock())}, opts...)
	f.engine = New(f.lib, f.store, f.saver, zap.NewNop(), opts...)
	return f
}

func (f *fixture) sync(t *testing.T, force bool, limit int) (reportView, update.Config) {
	t.Helper()
	r, cfg := f.engine.Sync(context.Background(), update.Defaults(), Options{ForceRebuild: force, Limit: limit})
	return reportView{
		total: r.TotalItems, processed: r.ProcessedItems, added: r.AddedItems,
		updated: r.UpdatedItems, skipped: r.SkippedItems, errors: r.Errors, err: r.Error,
	}, cfg
}

type reportView struct {
	total, processed, added, updated, skipped, errors int

	err string
}

// --- Tests ---

func TestSync_FirstRunTwoPages(t *testing.T) {
	f := newFixture(papers(120))

	got, cfg := f.sync(t, false, 0)

	want := reportView{total: 120, processed: 120, added: 120}
	if got != want {
		t.Fatalf("report = %+v, want %+v", got, want)
	}
	if len(f.lib.offsets) != 2 || f.lib.offsets[0] != 0 || f.lib.offsets[1] != 100 {
		t.Errorf("fetched offsets = %v, want [0 100]", f.lib.offsets)
	}
	if len(f.store.docs) != 120 {
		t.Errorf("store holds %d docs, want 120", len(f.store.docs))
	}
	if cfg.LastUpdate == nil {
		t.Fatal("LastUpdate not stamped")
	}
	if len(f.saver.saved) != 1 || !f.saver.saved[0].LastUpdate.Equal(*cfg.LastUpdate) {
		t.Errorf("saved = %+v", f.saver.saved)
	}
}

func TestSync_ReportTimes(t *testing.T) {
	f := newFixture(papers(3))

	r, cfg := f.engine.Sync(context.Background(), update.Defaults(), Options{})
	if !r.StartTime.Equal(t0) {
		t.Errorf("StartTime = %v, want %v", r.StartTime, t0)
	}
	if r.Duration != "1s" {
		t.Errorf("Duration = %q, want 1s", r.Duration)
	}
	if !cfg.LastUpdate.Equal(r.EndTime) {
		t.Errorf("LastUpdate = %v, want end time %v", cfg.LastUpdate, r.EndTime)
	}
}

func TestSync_Idempotent(t *testing.T) {
	f := newFixture(papers(120))
	f.sync(t, false, 0)

	got, _ := f.sync(t, false, 0)
	if got.added != 0 {
		t.Errorf("added = %d, want 0", got.added)
	}
	if got.skipped != got.total || got.total != 120 {
		t.Errorf("skipped = %d, total = %d", got.skipped, got.total)
	}
	if f.store.upsertCalls != 3 {
		t.Errorf("second run must not upsert, calls = %d", f.store.upsertCalls)
	}
}

func TestSync_ForceRebuildReaddsEverything(t *testing.T) {
	f := newFixture(papers(120))
	f.sync(t, false, 0)

	got, _ := f.sync(t, true, 0)
	if f.store.resets != 1 {
		t.Errorf("resets = %d, want 1", f.store.resets)
	}
	if got.added != 120 || got.skipped != 0 || got.errors != 0 {
		t.Errorf("report = %+v", got)
	}
	if got.updated != 0 {
		t.Errorf("updated = %d, want 0", got.updated)
	}
}

func TestSync_ForceSkipsExistenceCheck(t *testing.T) {
	f := newFixture(papers(5))
	f.store.existsErr["K00002"] = errors.New("timeout")

	got, _ := f.sync(t, true, 0)
	if got.added != 5 || got.errors != 0 {
		t.Errorf("report = %+v", got)
	}
}

func TestSync_FiltersAttachmentsAndNotes(t *testing.T) {
	items := papers(100)
	for i := 0; i < 10; i++ {
		items[i*10] = item.New(fmt.Sprintf("ATT%02d", i), item.TypeAttachment, 1, map[string]any{"title": "pdf"})
	}
	items[5] = item.New("NOTE1", item.TypeNote, 1, map[string]any{"note": "<p>hi</p>"})
	items = append(items, papers(130)[100:]...)

	f := newFixture(items)
	got, _ := f.sync(t, false, 0)

	if got.total != 119 {
		t.Errorf("total = %d, want 119", got.total)
	}
	// the first page is full before filtering, so the second page is fetched
	if len(f.lib.offsets) != 2 {
		t.Errorf("fetched offsets = %v", f.lib.offsets)
	}
	for key := range f.store.docs {
		if strings.HasPrefix(key, "ATT") || key == "NOTE1" {
			t.Errorf("excluded item %s was indexed", key)
		}
	}
}

func TestSync_EmptyTextIsSkipped(t *testing.T) {
	items := []item.Item{
		paper(1),
		item.New("EMPTY", "journalArticle", 1, map[string]any{"title": "  ", "url": "https://x"}),
	}
	f := newFixture(items)

	got, _ := f.sync(t, false, 0)
	if got.added != 1 || got.skipped != 1 || got.processed != 1 {
		t.Errorf("report = %+v", got)
	}
	if _, ok := f.store.docs["EMPTY"]; ok {
		t.Error("empty-text item was indexed")
	}
}

func TestSync_MissingKeyIsSkipped(t *testing.T) {
	items := []item.Item{paper(1), item.New("", "book", 1, map[string]any{"title": "Orphan"})}
	f := newFixture(items)

	got, _ := f.sync(t, false, 0)
	if got.total != 2 || got.added != 1 || got.skipped != 1 {
		t.Errorf("report = %+v", got)
	}
}

func TestSync_Limit(t *testing.T) {
	f := newFixture(papers(250))

	got, _ := f.sync(t, false, 150)
	if got.total != 150 || got.added != 150 {
		t.Errorf("report = %+v", got)
	}
	if len(f.lib.offsets) != 2 {
		t.Errorf("fetched offsets = %v, want [0 100]", f.lib.offsets)
	}
}

func TestSync_LimitStopsBeforeNextFetch(t *testing.T) {
	f := newFixture(papers(250))

	got, _ := f.sync(t, false, 100)
	if got.total != 100 {
		t.Errorf("total = %d, want 100", got.total)
	}
	if len(f.lib.offsets) != 1 {
		t.Errorf("fetched offsets = %v, want [0]", f.lib.offsets)
	}
}

func TestSync_PaginationTermination(t *testing.T) {
	tests := []struct {
		name        string
		n           int
		wantOffsets []int
	}{
		{"empty library", 0, []int{0}},
		{"single short page", 42, []int{0}},
		{"exact multiple ends on empty page", 200, []int{0, 100, 200}},
		{"short final page", 230, []int{0, 100, 200}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(papers(tc.n))
			got, _ := f.sync(t, false, 0)

			if got.total != tc.n {
				t.Errorf("total = %d, want %d", got.total, tc.n)
			}
			if fmt.Sprint(f.lib.offsets) != fmt.Sprint(tc.wantOffsets) {
				t.Errorf("offsets = %v, want %v", f.lib.offsets, tc.wantOffsets)
			}
		})
	}
}

func TestSync_PageSizeOption(t *testing.T) {
	f := newFixture(papers(25), WithPageSize(10))

	got, _ := f.sync(t, false, 0)
	if got.total != 25 {
		t.Errorf("total = %d, want 25", got.total)
	}
	if fmt.Sprint(f.lib.offsets) != "[0 10 20]" {
		t.Errorf("offsets = %v", f.lib.offsets)
	}
}

func TestSync_BatchSizeOption(t *testing.T) {
	f := newFixture(papers(25), WithBatchSize(10))

	f.sync(t, false, 0)
	if fmt.Sprint(f.store.batchSizes) != "[10 10 5]" {
		t.Errorf("batch sizes = %v", f.store.batchSizes)
	}
}

func TestSync_FetchErrorKeepsLastUpdate(t *testing.T) {
	f := newFixture(papers(150))
	f.lib.err = errors.New("502 bad gateway")
	f.lib.errAt = 100

	got, cfg := f.sync(t, false, 0)
	if got.err == "" || !strings.Contains(got.err, "502") {
		t.Errorf("Error = %q", got.err)
	}
	if got.added != 0 || got.total != 0 {
		t.Errorf("report = %+v", got)
	}
	if cfg.LastUpdate != nil {
		t.Error("LastUpdate must not advance on a failed run")
	}
	if len(f.saver.saved) != 0 {
		t.Error("config must not be saved on a failed run")
	}
}

func TestSync_ResetErrorAbortsBeforeFetch(t *testing.T) {
	f := newFixture(papers(10))
	f.store.resetErr = errors.New("READONLY")

	got, cfg := f.sync(t, true, 0)
	if !strings.Contains(got.err, "reset collection") {
		t.Errorf("Error = %q", got.err)
	}
	if len(f.lib.offsets) != 0 {
		t.Error("nothing should be fetched after a failed reset")
	}
	if cfg.LastUpdate != nil {
		t.Error("LastUpdate must not advance on a failed run")
	}
}

func TestSync_UpsertFailureCountsWholeBatch(t *testing.T) {
	f := newFixture(papers(120))
	f.store.upsertErr = errors.New("OOM")
	f.store.failOnCall = 2

	got, cfg := f.sync(t, false, 0)
	if got.added != 70 || got.errors != 50 {
		t.Errorf("added = %d, errors = %d, want 70/50", got.added, got.errors)
	}
	if got.processed != 120 {
		t.Errorf("processed = %d, want 120", got.processed)
	}
	if got.err != "" {
		t.Errorf("batch failures must not fail the run, Error = %q", got.err)
	}
	if cfg.LastUpdate == nil {
		t.Error("LastUpdate should advance after a completed run")
	}
}

func TestSync_ExistenceFaultIsPerItem(t *testing.T) {
	f := newFixture(papers(10))
	f.store.existsErr["K00003"] = errors.New("conn reset")

	got, _ := f.sync(t, false, 0)
	if got.errors != 1 || got.added != 9 || got.processed != 9 {
		t.Errorf("report = %+v", got)
	}
	if _, ok := f.store.docs["K00003"]; ok {
		t.Error("faulted item must not be written")
	}
}

func TestSync_SaveFailureDoesNotFailRun(t *testing.T) {
	f := newFixture(papers(3))
	f.saver.err = errors.New("permission denied")

	got, cfg := f.sync(t, false, 0)
	if got.err != "" {
		t.Errorf("Error = %q", got.err)
	}
	if cfg.LastUpdate == nil {
		t.Error("returned config should still carry LastUpdate")
	}
}

func TestSync_CancelledBeforeBatches(t *testing.T) {
	f := newFixture(papers(10))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, cfg := f.engine.Sync(ctx, update.Defaults(), Options{})
	if !strings.Contains(r.Error, "interrupted") {
		t.Errorf("Error = %q", r.Error)
	}
	if r.TotalItems != 10 || r.AddedItems != 0 {
		t.Errorf("report = %+v", r)
	}
	if cfg.LastUpdate != nil {
		t.Error("LastUpdate must not advance on an interrupted run")
	}
}

func TestSync_PreservesOtherConfigFields(t *testing.T) {
	f := newFixture(papers(1))
	in := update.Config{AutoUpdate: true, Frequency: "every_3", UpdateDays: 3}

	_, out := f.engine.Sync(context.Background(), in, Options{})
	if !out.AutoUpdate || out.Frequency != "every_3" || out.UpdateDays != 3 {
		t.Errorf("config = %+v", out)
	}
}
