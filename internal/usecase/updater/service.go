// Package updater coordinates sync runs for the CLI and the HTTP API.
package updater

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/domain"
	"github.com/kailas-cloud/zotsearch/internal/domain/syncrun"
	"github.com/kailas-cloud/zotsearch/internal/domain/update"
	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
	"github.com/kailas-cloud/zotsearch/internal/usecase/vectorstore"
)

// Status is the database status returned to clients.
type Status struct {
	CollectionInfo vectorstore.Info `json:"collection_info"`
	UpdateConfig   update.Config    `json:"update_config"`
	ShouldUpdate   bool             `json:"should_update"`
	LastUpdate     *time.Time       `json:"last_update"`
	ConfigPath     string           `json:"config_path"`
	SyncInProgress bool             `json:"sync_in_progress"`
}

// Service allows at most one sync in flight per process.
type Service struct {
	store   ConfigStore
	engine  Syncer
	index   CollectionInspector
	lock    Locker
	logger  *zap.Logger
	now     func() time.Time
	mu      sync.Mutex
	running atomic.Bool
}

// New creates a Service.
func New(store ConfigStore, engine Syncer, index CollectionInspector, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		index:  index,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces time.Now for policy checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithLock adds a cross-process lock taken around every run.
func (s *Service) WithLock(lock Locker) *Service {
	s.lock = lock
	return s
}

// Run syncs unconditionally. It returns domain.ErrSyncInProgress when
// another run holds the lock.
func (s *Service) Run(ctx context.Context, opts indexsync.Options) (syncrun.Report, error) {
	if !s.mu.TryLock() {
		return syncrun.Report{}, domain.ErrSyncInProgress
	}
	defer s.mu.Unlock()

	release, err := s.acquire(ctx)
	if err != nil {
		return syncrun.Report{}, err
	}
	defer release()

	return s.run(ctx, s.loadConfig(), opts), nil
}

// RunIfDue syncs only when the update policy says so. ran is false when the
// policy declined.
func (s *Service) RunIfDue(ctx context.Context) (report syncrun.Report, ran bool, err error) {
	if !s.mu.TryLock() {
		return syncrun.Report{}, false, domain.ErrSyncInProgress
	}
	defer s.mu.Unlock()

	cfg := s.loadConfig()
	if !update.ShouldSync(cfg, s.now()) {
		s.logger.Debug("Automatic sync not due",
			zap.Bool("auto_update", cfg.AutoUpdate),
			zap.String("frequency", cfg.Frequency),
		)
		return syncrun.Report{}, false, nil
	}

	release, err := s.acquire(ctx)
	if err != nil {
		return syncrun.Report{}, false, err
	}
	defer release()

	s.logger.Info("Automatic sync due", zap.String("frequency", cfg.Frequency))
	return s.run(ctx, cfg, indexsync.Options{}), true, nil
}

// Status reports the index state and the update schedule. Index failures
// are carried inside CollectionInfo.Error.
func (s *Service) Status(ctx context.Context) (Status, error) {
	cfg, err := s.store.Load()
	if err != nil {
		return Status{}, fmt.Errorf("load update config: %w", err)
	}
	return Status{
		CollectionInfo: s.index.CollectionInfo(ctx),
		UpdateConfig:   cfg,
		ShouldUpdate:   update.ShouldSync(cfg, s.now()),
		LastUpdate:     cfg.LastUpdate,
		ConfigPath:     s.store.Path(),
		SyncInProgress: s.running.Load(),
	}, nil
}

func (s *Service) run(ctx context.Context, cfg update.Config, opts indexsync.Options) syncrun.Report {
	s.running.Store(true)
	defer s.running.Store(false)

	report, _ := s.engine.Sync(ctx, cfg, opts)
	return report
}

func (s *Service) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}
	release, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync lock: %w", err)
	}
	return release, nil
}

// loadConfig falls back to defaults when the file cannot be parsed. The
// engine's save will then fail and leave the file alone.
func (s *Service) loadConfig() update.Config {
	cfg, err := s.store.Load()
	if err != nil {
		s.logger.Warn("Failed to load update config, using defaults",
			zap.String("path", s.store.Path()),
			zap.Error(err),
		)
		return update.Defaults()
	}
	return cfg
}
