package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/config"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
	"github.com/koji-portfolio/portfolio-backend/internal/storage/postgres"
)

// OpenStore builds the project store named by cfg.Storage.Backend. The
// returned close function releases its connections.
func OpenStore(ctx context.Context, cfg *config.Config) (repository.Store, func() error, error) {
	logger := zerolog.Ctx(ctx)
	noop := func() error { return nil }

	switch cfg.Storage.Backend {
	case config.BackendFile:
		logger.Info().Str("path", cfg.Storage.ProjectsFile).Msg("using file storage")
		return repository.NewFileStore(cfg.Storage.ProjectsFile), noop, nil

	case config.BackendPostgres:
		db, err := postgres.NewConnection(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Msg("using postgres storage")
		return repository.NewPostgresStore(db), db.Close, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("using redis storage")
		return repository.NewRedisStore(client), client.Close, nil

	case config.BackendSQLite:
		store, err := repository.OpenSQLiteStore(cfg.Storage.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.Storage.SQLitePath).Msg("using sqlite storage")
		return store, store.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
