package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appcatalog "github.com/marketplace/backend/internal/application/catalog"
	"github.com/marketplace/backend/internal/infrastructure/config"
)

const (
	defaultLockTTL       = 2 * time.Minute
	defaultRetryInterval = 100 * time.Millisecond
	lockKeyPrefix        = "marketplace:lock:"
)

// releaseScript deletes the lock only while it still carries our token, so a
// holder whose TTL expired cannot release somebody else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a cluster-wide lock built on SET NX PX
type RedisLocker struct {
	client        redis.UniversalClient
	ttl           time.Duration
	retryInterval time.Duration
	logger        *zap.Logger
}

// NewRedisLocker creates a locker whose locks expire after ttl if never released
func NewRedisLocker(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *RedisLocker {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLocker{
		client:        client,
		ttl:           ttl,
		retryInterval: defaultRetryInterval,
		logger:        logger.Named("redis_locker"),
	}
}

// Acquire polls until the lock is free or ctx is done
func (l *RedisLocker) Acquire(ctx context.Context, key string) (appcatalog.Unlock, error) {
	redisKey := lockKeyPrefix + key
	token := uuid.NewString()

	ticker := time.NewTicker(l.retryInterval)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, redisKey, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			return l.unlockFunc(redisKey, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (l *RedisLocker) unlockFunc(redisKey, token string) appcatalog.Unlock {
	var once sync.Once
	return func() {
		once.Do(func() {
			// The caller's context may already be canceled by the time we release
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{redisKey}, token).Err(); err != nil && !errors.Is(err, redis.Nil) {
				l.logger.Warn("failed to release lock", zap.String("key", redisKey), zap.Error(err))
			}
		})
	}
}

// InMemoryLocker serializes work per key inside one process
type InMemoryLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

// NewInMemoryLocker creates a new InMemoryLocker
func NewInMemoryLocker() *InMemoryLocker {
	return &InMemoryLocker{locks: make(map[string]chan struct{})}
}

// Acquire blocks until key is free or ctx is done
func (l *InMemoryLocker) Acquire(ctx context.Context, key string) (appcatalog.Unlock, error) {
	sem := l.semaphore(key)
	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() { <-sem })
	}, nil
}

func (l *InMemoryLocker) semaphore(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	sem, ok := l.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		l.locks[key] = sem
	}
	return sem
}

// NewLocker returns a Redis locker when a client is available and an
// in-process locker otherwise
func NewLocker(client redis.UniversalClient, cfg config.FeedConfig, logger *zap.Logger) appcatalog.Locker {
	if client == nil {
		if logger != nil {
			logger.Warn("Redis disabled, feed ingestion is only serialized within this process")
		}
		return NewInMemoryLocker()
	}
	return NewRedisLocker(client, cfg.LockTTL, logger)
}
