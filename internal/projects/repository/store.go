package repository

import (
	"context"
	"fmt"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

// Store is the persistence adapter for the project list. Implementations are
// interchangeable; callers never branch on which one is in use.
//
// Update and Delete fail with domain.ErrNotFound for a missing id on every
// backend. Backend I/O failures wrap domain.ErrStorageUnavailable.
type Store interface {
	ListAll(ctx context.Context) ([]domain.Project, error)
	ReplaceAll(ctx context.Context, projects []domain.Project) ([]domain.Project, error)
	Insert(ctx context.Context, p domain.Project) (*domain.Project, error)
	Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id int64) (*domain.Project, error)

	Ping(ctx context.Context) error
	Backend() string
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStorageUnavailable, op, err)
}

func validateTitle(p domain.Project) error {
	if !p.HasTitle() {
		return domain.ErrTitleRequired
	}
	return nil
}

func maxID(projects []domain.Project) int64 {
	var max int64
	for _, p := range projects {
		if p.ID > max {
			max = p.ID
		}
	}
	return max
}

// assignIDs returns a copy of projects where every entry without an id gets
// one above the largest supplied id, in order. Duplicate supplied ids are
// rejected.
func assignIDs(projects []domain.Project) ([]domain.Project, error) {
	out := make([]domain.Project, len(projects))
	seen := make(map[int64]struct{}, len(projects))
	for i, p := range projects {
		if err := validateTitle(p); err != nil {
			return nil, fmt.Errorf("project %d: %w", i, err)
		}
		if p.ID > 0 {
			if _, dup := seen[p.ID]; dup {
				return nil, fmt.Errorf("%w: duplicate project id %d", domain.ErrInvalidInput, p.ID)
			}
			seen[p.ID] = struct{}{}
		}
		out[i] = p
	}

	next := maxID(out) + 1
	for i := range out {
		if out[i].ID <= 0 {
			out[i].ID = next
			next++
		}
	}
	return out, nil
}
