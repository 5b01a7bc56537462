package updater

import (
	"context"

	"github.com/kailas-cloud/zotsearch/internal/domain/syncrun"
	"github.com/kailas-cloud/zotsearch/internal/domain/update"
	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
	"github.com/kailas-cloud/zotsearch/internal/usecase/vectorstore"
)

// ConfigStore loads and saves the persisted update state.
type ConfigStore interface {
	Load() (update.Config, error)
	Path() string
}

// Syncer runs one sync pass.
type Syncer interface {
	Sync(ctx context.Context, cfg update.Config, opts indexsync.Options) (syncrun.Report, update.Config)
}

// CollectionInspector reports on the vector index.
type CollectionInspector interface {
	CollectionInfo(ctx context.Context) vectorstore.Info
}

// Locker excludes sync runs in other processes. Acquire returns
// domain.ErrSyncInProgress when the lock is held elsewhere.
type Locker interface {
	Acquire(ctx context.Context) (release func(), err error)
}
