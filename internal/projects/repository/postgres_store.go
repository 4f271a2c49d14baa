package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

const projectColumns = `id, title, description, category, technologies, image, github_url, live_url, completed_date, featured`

// PostgresStore keeps projects in the "projects" table. Ids come from the
// table's identity sequence unless the caller supplies one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new table-backed store
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (r *PostgresStore) Backend() string { return "postgres" }

func (r *PostgresStore) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return unavailable("ping postgres", err)
	}
	return nil
}

// ListAll returns every project in ascending id order.
func (r *PostgresStore) ListAll(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects ORDER BY id ASC;`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, unavailable("list projects", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, unavailable("scan project", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list projects", err)
	}
	return out, nil
}

// Insert adds one project. A supplied id is kept and the sequence is moved
// past it so later generated ids do not collide.
func (r *PostgresStore) Insert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := validateTitle(p); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin insert", err)
	}
	defer tx.Rollback()

	created, err := insertRow(ctx, tx, p)
	if err != nil {
		return nil, err
	}
	if p.ID > 0 {
		if err := resyncSequence(ctx, tx); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit insert", err)
	}
	return created, nil
}

// Update merges the supplied fields over the stored row. Unsupplied fields
// arrive as NULL and COALESCE keeps the stored value.
func (r *PostgresStore) Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	const q = `
UPDATE projects SET
  title = COALESCE($2, title),
  description = COALESCE($3, description),
  category = COALESCE($4, category),
  technologies = COALESCE($5::jsonb, technologies),
  image = COALESCE($6, image),
  github_url = COALESCE($7, github_url),
  live_url = COALESCE($8, live_url),
  completed_date = COALESCE($9, completed_date),
  featured = COALESCE($10, featured)
WHERE id = $1
RETURNING ` + projectColumns + `;`

	row := r.db.QueryRowContext(ctx, q,
		id,
		patch.Title,
		patch.Description,
		patch.Category,
		patch.Technologies,
		patch.Image,
		patch.GithubURL,
		patch.LiveURL,
		patch.CompletedDate,
		patch.Featured,
	)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("update project", err)
	}
	return p, nil
}

// Delete removes the row and returns what was stored.
func (r *PostgresStore) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	const q = `DELETE FROM projects WHERE id = $1 RETURNING ` + projectColumns + `;`

	p, err := scanProject(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("delete project", err)
	}
	return p, nil
}

// ReplaceAll swaps the whole table inside one transaction. Rows with an id
// are written first, then the sequence is moved past them, then rows without
// an id take generated ones. The result keeps the input order.
func (r *PostgresStore) ReplaceAll(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	for i, p := range projects {
		if err := validateTitle(p); err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM projects;`); err != nil {
		return nil, unavailable("clear projects", err)
	}

	out := make([]domain.Project, len(projects))
	for i, p := range projects {
		if p.ID <= 0 {
			continue
		}
		created, err := insertRow(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		out[i] = *created
	}

	if err := resyncSequence(ctx, tx); err != nil {
		return nil, err
	}

	for i, p := range projects {
		if p.ID > 0 {
			continue
		}
		created, err := insertRow(ctx, tx, p)
		if err != nil {
			return nil, err
		}
		out[i] = *created
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit replace", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID,
		&p.Title,
		&p.Description,
		&p.Category,
		&p.Technologies,
		&p.Image,
		&p.GithubURL,
		&p.LiveURL,
		&p.CompletedDate,
		&p.Featured,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func insertRow(ctx context.Context, tx *sql.Tx, p domain.Project) (*domain.Project, error) {
	var row *sql.Row
	if p.ID > 0 {
		const q = `
INSERT INTO projects (` + projectColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING ` + projectColumns + `;`
		row = tx.QueryRowContext(ctx, q,
			p.ID, p.Title, p.Description, p.Category, p.Technologies,
			p.Image, p.GithubURL, p.LiveURL, p.CompletedDate, p.Featured,
		)
	} else {
		const q = `
INSERT INTO projects (title, description, category, technologies, image, github_url, live_url, completed_date, featured)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + projectColumns + `;`
		row = tx.QueryRowContext(ctx, q,
			p.Title, p.Description, p.Category, p.Technologies,
			p.Image, p.GithubURL, p.LiveURL, p.CompletedDate, p.Featured,
		)
	}

	created, err := scanProject(row)
	if err != nil {
		// unique violation on id
		var pgErr *pq.Error
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: project id %d already exists", domain.ErrInvalidInput, p.ID)
		}
		return nil, unavailable("insert project", err)
	}
	return created, nil
}

func resyncSequence(ctx context.Context, tx *sql.Tx) error {
	const q = `SELECT setval(pg_get_serial_sequence('projects', 'id'), COALESCE((SELECT MAX(id) FROM projects), 0) + 1, false);`
	if _, err := tx.ExecContext(ctx, q); err != nil {
		return unavailable("resync id sequence", err)
	}
	return nil
}
