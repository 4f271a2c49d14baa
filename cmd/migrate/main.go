package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/config"
	"github.com/koji-portfolio/portfolio-backend/internal/bootstrap"
	"github.com/koji-portfolio/portfolio-backend/internal/logging"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [command]

Commands:
  (default)     apply pending migrations
  seed <file>   replace the projects table with a {"projects": [...]} document`)
	os.Exit(1)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.App.LogLevel, cfg.App.Environment)
	ctx := logger.WithContext(context.Background())

	pool, err := bootstrap.OpenPool(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect failed")
	}
	defer pool.Close()

	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "":
		if err := runMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	case "seed":
		if len(os.Args) < 3 {
			usage()
		}
		if err := runMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		if err := seed(ctx, pool, os.Args[2]); err != nil {
			logger.Fatal().Err(err).Msg("seed failed")
		}
	default:
		usage()
	}
}

func upFiles() ([]string, error) {
	names, err := fs.Glob(migrationFiles, "migrations/*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	logger := zerolog.Ctx(ctx)

	if _, err := pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	files, err := upFiles()
	if err != nil {
		return err
	}

	applied := 0
	for _, file := range files {
		name := strings.TrimSuffix(strings.TrimPrefix(file, "migrations/"), ".up.sql")

		var exists bool
		if err := pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name=$1)", name).Scan(&exists); err != nil {
			return fmt.Errorf("check %s: %w", name, err)
		}
		if exists {
			continue
		}

		sql, err := migrationFiles.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, string(sql)); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, "INSERT INTO schema_migrations (name) VALUES ($1)", name)
			return err
		})
		if err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
		logger.Info().Str("migration", name).Msg("applied")
		applied++
	}

	logger.Info().Int("applied", applied).Int("total", len(files)).Msg("migrations complete")
	return nil
}

// seed loads a projects document with the file store and writes it into the
// table in one transaction.
func seed(ctx context.Context, pool *pgxpool.Pool, path string) error {
	projects, err := repository.NewFileStore(path).ListAll(ctx)
	if err != nil {
		return err
	}
	for i, p := range projects {
		if !p.HasTitle() {
			return fmt.Errorf("project %d has no title", i)
		}
	}

	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM projects`); err != nil {
			return err
		}

		// explicit ids first so the sequence can be moved past them before
		// any id is generated
		withID, withoutID := &pgx.Batch{}, &pgx.Batch{}
		for _, p := range projects {
			tech, err := p.Technologies.Value()
			if err != nil {
				return err
			}
			if p.ID > 0 {
				withID.Queue(`INSERT INTO projects (id, title, description, category, technologies, image, github_url, live_url, completed_date, featured)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10)`,
					p.ID, p.Title, p.Description, p.Category, tech, p.Image, p.GithubURL, p.LiveURL, p.CompletedDate, p.Featured)
			} else {
				withoutID.Queue(`INSERT INTO projects (title, description, category, technologies, image, github_url, live_url, completed_date, featured)
VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9)`,
					p.Title, p.Description, p.Category, tech, p.Image, p.GithubURL, p.LiveURL, p.CompletedDate, p.Featured)
			}
		}
		if err := tx.SendBatch(ctx, withID).Close(); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `SELECT setval(pg_get_serial_sequence('projects', 'id'), COALESCE((SELECT MAX(id) FROM projects), 0) + 1, false)`); err != nil {
			return err
		}
		return tx.SendBatch(ctx, withoutID).Close()
	})
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Info().Int("projects", len(projects)).Str("file", path).Msg("seeded")
	return nil
}
