// Package indexsync reconciles the vector index with the remote library.
package indexsync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domdoc "github.com/kailas-cloud/zotsearch/internal/domain/document"
	"github.com/kailas-cloud/zotsearch/internal/domain/item"
	"github.com/kailas-cloud/zotsearch/internal/domain/syncrun"
	"github.com/kailas-cloud/zotsearch/internal/domain/update"
	"github.com/kailas-cloud/zotsearch/internal/metrics"
)

// Defaults for Engine options.
const (
	DefaultPageSize  = 100
	DefaultBatchSize = 50
)

const (
	modeIncremental = "incremental"
	modeRebuild     = "rebuild"
)

// Options control a single run.
type Options struct {
	ForceRebuild bool
	Limit        int // <= 0 means no limit
}

// Engine runs syncs. It holds no per-run state and gives no mutual
// exclusion; callers serialise runs.
type Engine struct {
	lib       Library
	store     Store
	saver     ConfigSaver
	logger    *zap.Logger
	pageSize  int
	batchSize int
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithPageSize sets how many items are requested per page.
func WithPageSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// WithBatchSize sets how many items are upserted per store call.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine.
func New(lib Library, store Store, saver ConfigSaver, logger *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		lib:       lib,
		store:     store,
		saver:     saver,
		logger:    logger,
		pageSize:  DefaultPageSize,
		batchSize: DefaultBatchSize,
		now:       time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Sync runs one pass over the library and returns the report together with
// cfg, stamped with the end time when the run succeeded.
//
// Reset and fetch failures abort the run: the report carries the error and
// cfg is returned unchanged. Per-item and per-batch failures are counted
// under Errors and the run continues.
func (e *Engine) Sync(ctx context.Context, cfg update.Config, opts Options) (syncrun.Report, update.Config) {
	mode := modeIncremental
	if opts.ForceRebuild {
		mode = modeRebuild
	}
	log := e.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("mode", mode),
		zap.Int("limit", opts.Limit),
	)

	report := syncrun.Report{StartTime: e.now()}
	log.Info("Sync started")

	if opts.ForceRebuild {
		if err := e.store.ResetCollection(ctx); err != nil {
			return e.fail(&report, cfg, mode, log, fmt.Errorf("reset collection: %w", err))
		}
		log.Info("Collection reset")
	}

	items, err := e.fetch(ctx, opts.Limit)
	if err != nil {
		return e.fail(&report, cfg, mode, log, err)
	}
	report.TotalItems = len(items)
	log.Info("Items fetched", zap.Int("total", len(items)))

	for start := 0; start < len(items); start += e.batchSize {
		if err := ctx.Err(); err != nil {
			return e.fail(&report, cfg, mode, log, fmt.Errorf("sync interrupted: %w", err))
		}
		end := min(start+e.batchSize, len(items))
		e.processBatch(ctx, items[start:end], opts.ForceRebuild, &report, log)
	}

	report.Finish(e.now())
	cfg = cfg.WithLastUpdate(report.EndTime)
	if err := e.saver.Save(cfg); err != nil {
		log.Warn("Failed to save update config", zap.Error(err))
	}

	metrics.SyncRunsTotal.WithLabelValues("ok", mode).Inc()
	metrics.SyncRunDuration.Observe(report.EndTime.Sub(report.StartTime).Seconds())
	metrics.SyncLastSuccessTimestamp.Set(float64(report.EndTime.Unix()))

	log.Info("Sync finished",
		zap.Int("total", report.TotalItems),
		zap.Int("added", report.AddedItems),
		zap.Int("skipped", report.SkippedItems),
		zap.Int("errors", report.Errors),
		zap.String("duration", report.Duration),
	)
	return report, cfg
}

func (e *Engine) fail(
	report *syncrun.Report, cfg update.Config, mode string, log *zap.Logger, err error,
) (syncrun.Report, update.Config) {
	report.Error = err.Error()
	report.Finish(e.now())

	metrics.SyncRunsTotal.WithLabelValues("failed", mode).Inc()
	metrics.SyncRunDuration.Observe(report.EndTime.Sub(report.StartTime).Seconds())

	log.Error("Sync failed",
		zap.Error(err),
		zap.Int("added", report.AddedItems),
		zap.Int("errors", report.Errors),
	)
	return *report, cfg
}

// fetch collects indexable items page by page. The short-page check uses the
// unfiltered page length.
func (e *Engine) fetch(ctx context.Context, limit int) ([]item.Item, error) {
	var items []item.Item
	for offset := 0; ; offset += e.pageSize {
		if limit > 0 && len(items) >= limit {
			break
		}
		page, err := e.lib.FetchPage(ctx, offset, e.pageSize)
		if err != nil {
			return nil, fmt.Errorf("fetch items at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}
		for _, it := range page {
			if !it.Excluded() {
				items = append(items, it)
			}
		}
		if len(page) < e.pageSize {
			break
		}
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (e *Engine) processBatch(
	ctx context.Context, batch []item.Item, force bool, report *syncrun.Report, log *zap.Logger,
) {
	pending := make([]domdoc.Document, 0, len(batch))
	for _, it := range batch {
		o, doc := e.examine(ctx, it, force)
		report.Record(o)
		metrics.SyncItemsTotal.WithLabelValues(string(o.Status()), outcomeReason(o)).Inc()

		switch o.Status() {
		case syncrun.StatusQueued:
			pending = append(pending, doc)
		case syncrun.StatusFault:
			log.Warn("Item check failed", zap.String("item_key", o.Key()), zap.Error(o.Err()))
		}
	}
	if len(pending) == 0 {
		return
	}

	if err := e.store.UpsertDocuments(ctx, pending); err != nil {
		report.Errors += len(pending)
		metrics.SyncUpsertedTotal.WithLabelValues("error").Add(float64(len(pending)))
		log.Error("Batch upsert failed", zap.Int("size", len(pending)), zap.Error(err))
		return
	}
	report.AddedItems += len(pending)
	metrics.SyncUpsertedTotal.WithLabelValues("ok").Add(float64(len(pending)))
	log.Debug("Batch upserted", zap.Int("size", len(pending)))
}

func (e *Engine) examine(ctx context.Context, it item.Item, force bool) (syncrun.Outcome, domdoc.Document) {
	key := it.Key()
	if key == "" {
		return syncrun.Skipped("", syncrun.SkipMissingKey), domdoc.Document{}
	}
	if !force {
		exists, err := e.store.DocumentExists(ctx, key)
		if err != nil {
			return syncrun.Fault(key, err), domdoc.Document{}
		}
		if exists {
			return syncrun.Skipped(key, syncrun.SkipAlreadyIndexed), domdoc.Document{}
		}
	}
	doc := domdoc.Build(it)
	if strings.TrimSpace(doc.Text()) == "" {
		return syncrun.Skipped(key, syncrun.SkipEmptyText), domdoc.Document{}
	}
	return syncrun.Queued(key), doc
}

func outcomeReason(o syncrun.Outcome) string {
	switch o.Status() {
	case syncrun.StatusSkipped:
		return string(o.Reason())
	case syncrun.StatusFault:
		return "check_failed"
	default:
		return ""
	}
}
