package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koji-portfolio/portfolio-backend/config"
	"github.com/koji-portfolio/portfolio-backend/internal/storage/postgres"
)

// OpenPool opens a pgx pool for schema work. The request path uses
// database/sql through postgres.NewConnection instead.
func OpenPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	if cfg.DSN == "" && cfg.Host == "" {
		return nil, fmt.Errorf("DB_DSN or DB_HOST is not set")
	}

	pcfg, err := pgxpool.ParseConfig(postgres.DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.MaxConns = 2
	pcfg.MaxConnIdleTime = time.Minute

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(cctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	pctx, pcancel := context.WithTimeout(ctx, 2*time.Second)
	defer pcancel()

	if err := pool.Ping(pctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return pool, nil
}
