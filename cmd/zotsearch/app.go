package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/config"
	dbRedis "github.com/kailas-cloud/zotsearch/internal/db/redis"
	"github.com/kailas-cloud/zotsearch/internal/domain"
	logpkg "github.com/kailas-cloud/zotsearch/internal/logger"
	"github.com/kailas-cloud/zotsearch/internal/metrics"
	collectionrepo "github.com/kailas-cloud/zotsearch/internal/repository/collection"
	documentrepo "github.com/kailas-cloud/zotsearch/internal/repository/document"
	"github.com/kailas-cloud/zotsearch/internal/repository/embcache"
	"github.com/kailas-cloud/zotsearch/internal/repository/itemcache"
	"github.com/kailas-cloud/zotsearch/internal/repository/keyspace"
	searchrepo "github.com/kailas-cloud/zotsearch/internal/repository/search"
	"github.com/kailas-cloud/zotsearch/internal/repository/synclock"
	"github.com/kailas-cloud/zotsearch/internal/repository/updateconfig"
	openaiEmb "github.com/kailas-cloud/zotsearch/internal/transport/openai"
	"github.com/kailas-cloud/zotsearch/internal/transport/zotero"
	embeddinguc "github.com/kailas-cloud/zotsearch/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/zotsearch/internal/usecase/health"
	"github.com/kailas-cloud/zotsearch/internal/usecase/indexsync"
	searchuc "github.com/kailas-cloud/zotsearch/internal/usecase/search"
	"github.com/kailas-cloud/zotsearch/internal/usecase/updater"
	"github.com/kailas-cloud/zotsearch/internal/usecase/vectorstore"
)

// app is the composition root shared by all subcommands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *dbRedis.Store
	lockRDB redis.UniversalClient
	items   *itemcache.Cache
	vectors *vectorstore.Service
	updater *updater.Service
	search  *searchuc.Service
	health  *healthuc.Service
}

// newApp connects to the database and wires every service. configPath,
// when set, overrides update.config_path.
func newApp(ctx context.Context, opts *rootOptions, configPath string) (*app, error) {
	cfg, err := opts.loadConfig()
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg.Update.ConfigPath = configPath
	}

	logger, err := logpkg.NewLogger(opts.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSyncMetrics()

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second
	if err := store.WaitForReady(ctx, readiness); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Debug("Connected to database",
		zap.String("driver", cfg.Database.Driver),
		zap.Strings("addrs", cfg.Database.Addrs),
	)

	a, err := wire(cfg, store, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	if !cfg.Update.DisableLock {
		a.lockRDB = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		space, _ := keyspace.New(cfg.Search.KeyPrefix, cfg.Search.Collection)
		a.updater.WithLock(synclock.New(a.lockRDB, space.LockKey(),
			time.Duration(cfg.Update.LockTTLSec)*time.Second, logger.Named("synclock")))
	}
	if err := a.vectors.EnsureCollection(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func wire(cfg config.Config, store *dbRedis.Store, logger *zap.Logger) (*app, error) {
	if cfg.Embedding.Provider != "openai" {
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Embedding.Provider)
	}

	space, err := keyspace.New(cfg.Search.KeyPrefix, cfg.Search.Collection)
	if err != nil {
		return nil, fmt.Errorf("search keyspace: %w", err)
	}

	library, err := zotero.New(zotero.Config{
		LibraryID:   cfg.Zotero.LibraryID,
		LibraryType: cfg.Zotero.LibraryType,
		APIKey:      cfg.Zotero.APIKey,
		Local:       cfg.Zotero.Local,
		BaseURL:     cfg.Zotero.BaseURL,
		Timeout:     time.Duration(cfg.Zotero.TimeoutSec) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("zotero client: %w", err)
	}
	items := itemcache.New(library, cfg.Zotero.ItemCacheSize,
		time.Duration(cfg.Zotero.ItemCacheTTLSec)*time.Second, metrics.ItemCacheTotal)

	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, cfg.Search.KeyPrefix, store, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, cfg.Search.KeyPrefix, store, logger)

	collRepo := collectionrepo.New(store, space, collectionrepo.Meta{
		EmbeddingModel: cfg.Embedding.Model,
		VectorDim:      cfg.Embedding.Dimensions,
	}, func() int64 { return time.Now().UnixMilli() }).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Search.HNSWM,
		EFConstruct: cfg.Search.HNSWEFConstruct,
	})

	vectors := vectorstore.New(
		collRepo, documentrepo.New(store, space), searchrepo.New(store, space),
		docEmbedder, queryEmbedder,
		space.Collection(), strings.Join(cfg.Database.Addrs, ","), logger,
	)

	configStore := updateconfig.New(cfg.Update.ConfigPath)
	engine := indexsync.New(library, vectors, configStore, logger.Named("sync"),
		indexsync.WithPageSize(cfg.Search.PageSize),
		indexsync.WithBatchSize(cfg.Search.BatchSize),
	)

	indexCheck := healthuc.CheckerFunc(func(ctx context.Context) error {
		if info := vectors.CollectionInfo(ctx); info.Error != "" {
			return errors.New(info.Error)
		}
		return nil
	})

	return &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		items:   items,
		vectors: vectors,
		updater: updater.New(configStore, engine, vectors, logger),
		search:  searchuc.New(vectors, items, logger),
		health:  healthuc.New(store, newEmbeddingHealthChecker(docEmbedder), indexCheck),
	}, nil
}

func (a *app) Close() {
	if a.lockRDB != nil {
		_ = a.lockRDB.Close()
	}
	a.store.Close()
	_ = a.logger.Sync()
}

// DeleteDocument drops the item from the index and from the lookup cache.
func (a *app) DeleteDocument(ctx context.Context, key string) error {
	a.items.Invalidate(key)
	return a.vectors.DeleteDocument(ctx, key)
}

// embeddingHealthChecker adapts domain.Embedder to health.Checker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	cfg config.EmbeddingConfig,
	instruction string,
	keyPrefix string,
	store *dbRedis.Store,
	logger *zap.Logger,
) domain.Embedder {
	var embedder domain.Embedder = openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
	})

	if cfg.Cache.Enabled {
		embedder = embcache.New(embedder, store, embcache.Options{
			KeyPrefix: keyPrefix,
			Model:     cfg.Model,
			TTL:       time.Duration(cfg.Cache.TTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, cfg.Model, cfg.Dimensions, logger)

	// outermost, so the cache key includes the instruction
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}
	return embedder
}
