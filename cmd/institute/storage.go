package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/alem-hub/institute-hub/config"
	"github.com/alem-hub/institute-hub/internal/application/registry"
	"github.com/alem-hub/institute-hub/internal/domain/institute"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/document"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/file"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/postgres"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/institute-hub/internal/infrastructure/persistence/sqlite"
	"github.com/alem-hub/institute-hub/pkg/logger"
)

// storage is an opened repository plus what is needed to release it.
type storage struct {
	repo     institute.Repository
	location string
	close    func()
}

// openStorage connects the backend named by cfg.Storage.Backend. Remote
// backends are wrapped with retries and a per-call timeout.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	var codec document.Codec
	if cfg.Storage.Format != "" {
		c, err := document.ByName(cfg.Storage.Format)
		if err != nil {
			return nil, err
		}
		codec = c
	}

	log = log.With(logger.Backend(string(cfg.Storage.Backend)))

	switch cfg.Storage.Backend {
	case config.BackendFile:
		location := cfg.Storage.Path
		if abs, err := filepath.Abs(location); err == nil {
			location = abs
		}
		log.Info("using file storage", logger.String("path", location))
		return &storage{
			repo:     file.NewStore(cfg.Storage.Path, codec),
			location: location,
			close:    func() {},
		}, nil

	case config.BackendSQLite:
		store, err := sqlite.Open(ctx, cfg.Storage.SQLiteDSN, codec)
		if err != nil {
			return nil, err
		}
		log.Info("connected to sqlite")
		return &storage{
			repo:     retrying(store, cfg, log),
			location: "sqlite",
			close: func() {
				if err := store.Close(); err != nil {
					log.Error("failed to close sqlite", logger.Err(err))
				}
			},
		}, nil

	case config.BackendPostgres:
		opts := postgres.DefaultPoolOptions()
		if cfg.Database.MaxConns > 0 {
			opts.MaxConns = cfg.Database.MaxConns
		}
		conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, opts)
		if err != nil {
			return nil, err
		}
		log.Info("connected to PostgreSQL")

		applied, err := postgres.NewMigrator(conn).Migrate(ctx)
		if err != nil {
			conn.Close()
			return nil, err
		}
		log.Info("migrations applied", logger.Int("count", applied))

		return &storage{
			repo:     retrying(postgres.NewDocumentRepository(conn, codec), cfg, log),
			location: "postgres",
			close: func() {
				log.Info("closing database connection")
				conn.Close()
			},
		}, nil

	case config.BackendRedis:
		rc := redis.DefaultConfig()
		rc.Host = cfg.Redis.Host
		rc.Port = cfg.Redis.Port
		rc.Password = cfg.Redis.Password
		rc.DB = cfg.Redis.DB
		if cfg.Redis.DialTimeout > 0 {
			rc.DialTimeout = cfg.Redis.DialTimeout
		}
		client, err := redis.NewClient(ctx, rc)
		if err != nil {
			return nil, err
		}
		store, err := redis.NewStore(client, cfg.Redis.Key, codec)
		if err != nil {
			client.Close()
			return nil, err
		}
		log.Info("connected to Redis", logger.String("addr", rc.Addr()), logger.String("key", store.Key()))
		return &storage{
			repo:     retrying(store, cfg, log),
			location: "redis key " + store.Key(),
			close: func() {
				if err := client.Close(); err != nil {
					log.Error("failed to close redis", logger.Err(err))
				}
			},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func retrying(repo institute.Repository, cfg *config.Config, log *logger.Logger) institute.Repository {
	return registry.NewRetryingRepository(repo, cfg.Storage.RetryAttempts, cfg.Storage.Timeout, log)
}
