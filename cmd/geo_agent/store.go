package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jonathan/geo-visibility/internal/cache"
	"github.com/jonathan/geo-visibility/internal/config"
	"github.com/jonathan/geo-visibility/internal/db"
)

// storage is the analysis store chosen from configuration. DB is set only
// for Postgres, which also backs accounts and history.
type storage struct {
	Store cache.Store
	DB    *db.DB
	Kind  string
	close func()
}

// Close releases the store's connections.
func (s *storage) Close() {
	if s.close != nil {
		s.close()
	}
}

// openStorage picks Postgres when DATABASE_URL is set, then Redis when
// REDIS_ADDR is set, and otherwise an in-process cache.
func openStorage(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*storage, error) {
	ttl := time.Duration(cfg.CacheTTL)

	switch {
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, err
		}
		logger.Info("using postgres analysis store")
		return &storage{Store: database, DB: database, Kind: "postgres", close: database.Close}, nil

	case cfg.RedisAddr != "":
		rs, err := cache.NewRedisStore(ctx, cache.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      ttl,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to open redis store: %w", err)
		}
		logger.WithField("addr", cfg.RedisAddr).Info("using redis analysis store")
		return &storage{Store: rs, Kind: "redis", close: func() { _ = rs.Close() }}, nil

	default:
		logger.Info("using in-memory analysis store")
		return &storage{Store: cache.NewMemoryStore(ttl, 10*time.Minute), Kind: "memory"}, nil
	}
}
