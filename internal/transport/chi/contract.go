package chi

import (
	"context"

	"github.com/kailas-cloud/zotsearch/internal/domain/syncrun"
	"github.com/kailas-cloud/zotsearch/internal/usecase/health"
	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
	"github.com/kailas-cloud/zotsearch/internal/usecase/search"
	"github.com/kailas-cloud/zotsearch/internal/usecase/updater"
)

// Searcher answers semantic queries.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (search.Response, error)
}

// Updater runs syncs and reports database status.
type Updater interface {
	Run(ctx context.Context, opts indexsync.Options) (syncrun.Report, error)
	Status(ctx context.Context) (updater.Status, error)
}

// DocumentDeleter removes a single item from the index.
type DocumentDeleter interface {
	DeleteDocument(ctx context.Context, key string) error
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}
