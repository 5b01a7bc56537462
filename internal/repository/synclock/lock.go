// Package synclock keeps sync runs on one collection exclusive across
// processes sharing the database.
package synclock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kailas-cloud/zotsearch/internal/domain"
)

// DefaultTTL bounds how long a crashed holder blocks other runs.
const DefaultTTL = 10 * time.Minute

const releaseTimeout = 5 * time.Second

// Lock is a Redis lease refreshed while the holder runs.
type Lock struct {
	client *redislock.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

// New creates a Lock on key. ttl <= 0 means DefaultTTL.
func New(rdb redis.UniversalClient, key string, ttl time.Duration, logger *zap.Logger) *Lock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Lock{
		client: redislock.New(rdb),
		key:    key,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire takes the lease without waiting. It returns domain.ErrSyncInProgress
// when another process holds it. The returned release is safe to call twice.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	lease, err := l.client.Obtain(ctx, l.key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrSyncInProgress
	}
	if err != nil {
		return nil, fmt.Errorf("obtain sync lock: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lease, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if err := lease.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				l.logger.Warn("Failed to release sync lock", zap.String("key", l.key), zap.Error(err))
			}
		})
	}, nil
}

func (l *Lock) keepAlive(lease *redislock.Lock, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), l.ttl/2)
			err := lease.Refresh(ctx, l.ttl, nil)
			cancel()
			if err == nil {
				continue
			}
			l.logger.Warn("Failed to refresh sync lock", zap.String("key", l.key), zap.Error(err))
			if errors.Is(err, redislock.ErrNotObtained) {
				// lost to another holder
				return
			}
		}
	}
}
