// Package snapshot periodically exports the project collection to JSON
// documents in the same {"projects": [...]} shape the file store reads, so a
// snapshot can be restored with `migrate seed` or served directly with
// STORAGE_BACKEND=file.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
	"github.com/koji-portfolio/portfolio-backend/internal/projects/repository"
)

const (
	filePrefix = "projects-"
	fileSuffix = ".json"
	timeLayout = "20060102T150405Z"
)

// Lister is the read side of a project store.
type Lister interface {
	ListAll(ctx context.Context) ([]domain.Project, error)
}

type Scheduler struct {
	source Lister
	dir    string
	keep   int
	now    func() time.Time
	cron   *cron.Cron
}

// NewScheduler writes snapshots of source into dir, keeping the newest keep
// files. keep <= 0 keeps everything.
func NewScheduler(source Lister, dir string, keep int) *Scheduler {
	return &Scheduler{
		source: source,
		dir:    dir,
		keep:   keep,
		now:    time.Now,
	}
}

// Start schedules Run on a six-field cron expression (seconds first).
func (s *Scheduler) Start(ctx context.Context, schedule string) error {
	c := cron.New(cron.WithSeconds())
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.Run(ctx); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("project snapshot failed")
		}
	})
	if err != nil {
		return fmt.Errorf("invalid snapshot schedule %q: %w", schedule, err)
	}

	s.cron = c
	c.Start()
	zerolog.Ctx(ctx).Info().Str("schedule", schedule).Str("dir", s.dir).Msg("snapshot scheduler started")
	return nil
}

// Stop waits for a running snapshot to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// Run writes one snapshot and returns its path.
func (s *Scheduler) Run(ctx context.Context) (string, error) {
	projects, err := s.source.ListAll(ctx)
	if err != nil {
		return "", err
	}

	name := filePrefix + s.now().UTC().Format(timeLayout) + fileSuffix
	path := filepath.Join(s.dir, name)
	if _, err := repository.NewFileStore(path).ReplaceAll(ctx, projects); err != nil {
		return "", err
	}

	zerolog.Ctx(ctx).Info().Str("file", path).Int("projects", len(projects)).Msg("project snapshot written")

	if err := s.prune(); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("snapshot prune failed")
	}
	return path, nil
}

func (s *Scheduler) prune() error {
	if s.keep <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), filePrefix) && strings.HasSuffix(e.Name(), fileSuffix) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.keep {
		return nil
	}

	// timestamps sort lexically
	sort.Strings(names)
	for _, name := range names[:len(names)-s.keep] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			return err
		}
	}
	return nil
}
