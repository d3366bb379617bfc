// Package bootstrap wires the import service from configuration. Both the
// HTTP server and the CLI start from here.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/weaveops/internal/config"
	"github.com/JonMunkholm/weaveops/internal/core"
	_ "github.com/JonMunkholm/weaveops/internal/core/schemas" // Register all entities
	"github.com/JonMunkholm/weaveops/internal/lock"
	"github.com/JonMunkholm/weaveops/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Runtime holds the service and the connections it depends on.
type Runtime struct {
	Service *core.Service
	Pool    *pgxpool.Pool
	Redis   *redis.Client
}

// Close releases the database pool and the Redis client.
func (rt *Runtime) Close() {
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			slog.Warn("close redis", "error", err)
		}
	}
	if rt.Pool != nil {
		rt.Pool.Close()
	}
}

// Open connects to PostgreSQL (and Redis when REDIS_URL is set) and
// builds a Service configured from cfg.
func Open(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "name", databaseName(cfg.Database.URL))

	rt := &Runtime{Pool: pool}

	var locker lock.Locker = lock.NewLocal()
	if cfg.Redis.URL != "" {
		rdb, err := lock.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.Redis = rdb
		locker = lock.NewRedis(rdb, cfg.Import.LockTTL)
		slog.Info("using redis import locks", "ttl", cfg.Import.LockTTL)
	} else {
		slog.Info("using in-process import locks")
	}

	rt.Service = NewService(store.NewPostgres(pool), locker, cfg)
	return rt, nil
}

// NewService builds a Service over st using the import settings in cfg.
func NewService(st store.Store, locker lock.Locker, cfg *config.Config) *core.Service {
	limiter := core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime)
	return core.NewService(st, locker, limiter, core.Options{
		BatchSize:   cfg.Import.BatchSize,
		Delimiter:   cfg.Import.DelimiterRune(),
		MaxFileSize: cfg.Import.MaxFileSize,
		Validator: core.ValidatorOptions{
			Defaults:    cfg.Import.Defaults(),
			PhoneRegion: cfg.Import.PhoneRegion,
		},
		Logger: slog.Default(),
	})
}

func databaseName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
