package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a Redis lease lives between refreshes.
const DefaultTTL = 30 * time.Second

// Redis is a Locker backed by redislock. Leases are refreshed in the
// background at half their TTL until released, so long imports keep the
// lock while a crashed process loses it after one TTL.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
}

// NewRedis wraps rdb. A non-positive ttl uses DefaultTTL.
func NewRedis(rdb redis.UniversalClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Redis{client: redislock.New(rdb), ttl: ttl}
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

// Obtain implements Locker.
func (r *Redis) Obtain(ctx context.Context, key string) (Lease, error) {
	l, err := r.client.Obtain(ctx, key, r.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ErrBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", key, err)
	}

	lease := &redisLease{lock: l, done: make(chan struct{})}
	go lease.keepAlive(r.ttl)
	return lease, nil
}

type redisLease struct {
	lock *redislock.Lock
	done chan struct{}
	once sync.Once
}

func (l *redisLease) keepAlive(ttl time.Duration) {
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), ttl/4)
			err := l.lock.Refresh(ctx, ttl, nil)
			cancel()
			if err != nil {
				slog.Warn("import lock refresh failed", "key", l.lock.Key(), "error", err)
				return
			}
		}
	}
}

func (l *redisLease) Release(ctx context.Context) error {
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.lock.Release(ctx)
		if errors.Is(err, redislock.ErrLockNotHeld) {
			err = nil
		}
	})
	return err
}
