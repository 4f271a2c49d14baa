package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

// FileStore keeps the project list in a single JSON document of the form
// {"projects": [...]}. Every call reads the whole file; every mutation
// rewrites it through a temp file and rename, so a failed write leaves the
// previous document in place.
//
// The mutex only serializes writers inside this process. Two processes
// sharing the file can still lose updates.
type FileStore struct {
	path string
	mu   sync.Mutex
}

type projectsDocument struct {
	Projects []domain.Project `json:"projects"`
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Backend() string { return "file" }

func (s *FileStore) Ping(ctx context.Context) error {
	_, err := s.load()
	return err
}

func (s *FileStore) ListAll(ctx context.Context) ([]domain.Project, error) {
	return s.load()
}

func (s *FileStore) ReplaceAll(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	stored, err := assignIDs(projects)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.save(stored); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *FileStore) Insert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := validateTitle(p); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	if p.ID <= 0 {
		p.ID = maxID(projects) + 1
	} else if indexOf(projects, p.ID) >= 0 {
		return nil, fmt.Errorf("%w: project id %d already exists", domain.ErrInvalidInput, p.ID)
	}

	projects = append(projects, p)
	if err := s.save(projects); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *FileStore) Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(projects, id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	patch.Apply(&projects[i])
	if err := s.save(projects); err != nil {
		return nil, err
	}
	updated := projects[i]
	return &updated, nil
}

func (s *FileStore) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	projects, err := s.load()
	if err != nil {
		return nil, err
	}

	i := indexOf(projects, id)
	if i < 0 {
		return nil, domain.ErrNotFound
	}

	deleted := projects[i]
	projects = append(projects[:i], projects[i+1:]...)
	if err := s.save(projects); err != nil {
		return nil, err
	}
	return &deleted, nil
}

// load treats a missing or blank file as an empty collection; anything that
// does not parse is a storage failure.
func (s *FileStore) load() ([]domain.Project, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Project{}, nil
	}
	if err != nil {
		return nil, unavailable("read projects file", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []domain.Project{}, nil
	}

	var doc projectsDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, unavailable("parse projects file", err)
	}
	if doc.Projects == nil {
		doc.Projects = []domain.Project{}
	}
	return doc.Projects, nil
}

func (s *FileStore) save(projects []domain.Project) error {
	if projects == nil {
		projects = []domain.Project{}
	}
	data, err := json.MarshalIndent(projectsDocument{Projects: projects}, "", "  ")
	if err != nil {
		return unavailable("encode projects", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return unavailable("create data dir", err)
	}

	tmp, err := os.CreateTemp(dir, ".projects-*.json")
	if err != nil {
		return unavailable("create temp file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return unavailable("write temp file", err)
	}
	if err := tmp.Close(); err != nil {
		return unavailable("close temp file", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return unavailable("commit projects file", err)
	}
	return nil
}

func indexOf(projects []domain.Project, id int64) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}
