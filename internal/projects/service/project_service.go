package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
)

// ProjectService handles project-related business logic
type ProjectService struct {
	store repository.Store
}

// NewProjectService creates a new project service
func NewProjectService(store repository.Store) *ProjectService {
	return &ProjectService{
		store: store,
	}
}

// Backend names the storage adapter in use.
func (s *ProjectService) Backend() string {
	return s.store.Backend()
}

// Ping checks that the storage backend is reachable.
func (s *ProjectService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// List returns every project
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	return s.store.ListAll(ctx)
}

// Replace swaps the whole collection for projects
func (s *ProjectService) Replace(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	for i, p := range projects {
		if !p.HasTitle() {
			return nil, fmt.Errorf("project %d: %w", i, domain.ErrTitleRequired)
		}
	}

	stored, err := s.store.ReplaceAll(ctx, projects)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().
		Int("count", len(stored)).
		Str("backend", s.store.Backend()).
		Msg("project list replaced")
	return stored, nil
}

// Create adds one project
func (s *ProjectService) Create(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if !p.HasTitle() {
		return nil, domain.ErrTitleRequired
	}

	created, err := s.store.Insert(ctx, p)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().
		Int64("project_id", created.ID).
		Str("title", created.Title).
		Msg("project created")
	return created, nil
}

// Update merges the supplied fields into an existing project
func (s *ProjectService) Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int64("project_id", id).Msg("project updated")
	return updated, nil
}

// Delete removes a project and returns it
func (s *ProjectService) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Info().Int64("project_id", id).Msg("project deleted")
	return deleted, nil
}
