package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

type projectRow struct {
	ID            int64              `gorm:"primaryKey;autoIncrement"`
	Title         string             `gorm:"not null"`
	Description   string             `gorm:"not null;default:''"`
	Category      string             `gorm:"not null;default:''"`
	Technologies  domain.StringSlice `gorm:"type:text;not null;default:'[]'"`
	Image         string             `gorm:"not null;default:''"`
	GithubURL     string             `gorm:"column:github_url;not null;default:''"`
	LiveURL       string             `gorm:"column:live_url;not null;default:''"`
	CompletedDate string             `gorm:"not null;default:''"`
	Featured      bool               `gorm:"not null;default:false"`
}

func (projectRow) TableName() string { return "projects" }

func toRow(p domain.Project) projectRow {
	return projectRow{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Category:      p.Category,
		Technologies:  p.Technologies,
		Image:         p.Image,
		GithubURL:     p.GithubURL,
		LiveURL:       p.LiveURL,
		CompletedDate: p.CompletedDate,
		Featured:      p.Featured,
	}
}

func (r projectRow) toProject() domain.Project {
	return domain.Project{
		ID:            r.ID,
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		Technologies:  r.Technologies,
		Image:         r.Image,
		GithubURL:     r.GithubURL,
		LiveURL:       r.LiveURL,
		CompletedDate: r.CompletedDate,
		Featured:      r.Featured,
	}
}

// SQLiteStore keeps projects in an embedded SQLite table through gorm.
type SQLiteStore struct {
	db *gorm.DB
}

// OpenSQLiteStore opens (creating if needed) the database at path and
// migrates the projects table.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	if err := db.AutoMigrate(&projectRow{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}
	return NewSQLiteStore(db), nil
}

func NewSQLiteStore(db *gorm.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Backend() string { return "sqlite" }

func (s *SQLiteStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return unavailable("sqlite handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unavailable("ping sqlite", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *SQLiteStore) ListAll(ctx context.Context) ([]domain.Project, error) {
	var rows []projectRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, unavailable("list projects", err)
	}
	out := make([]domain.Project, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toProject())
	}
	return out, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if err := validateTitle(p); err != nil {
		return nil, err
	}
	if p.ID < 0 {
		p.ID = 0
	}

	row := toRow(p)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if row.ID > 0 {
			var n int64
			if err := tx.Model(&projectRow{}).Where("id = ?", row.ID).Count(&n).Error; err != nil {
				return unavailable("check project id", err)
			}
			if n > 0 {
				return fmt.Errorf("%w: project id %d already exists", domain.ErrInvalidInput, row.ID)
			}
		}
		if err := tx.Create(&row).Error; err != nil {
			return unavailable("insert project", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	created := row.toProject()
	return &created, nil
}

func (s *SQLiteStore) Update(ctx context.Context, id int64, patch domain.ProjectPatch) (*domain.Project, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	var updated domain.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findRow(tx, id)
		if err != nil {
			return err
		}
		updated = row.toProject()
		patch.Apply(&updated)
		next := toRow(updated)
		if err := tx.Save(&next).Error; err != nil {
			return unavailable("update project", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	var deleted domain.Project
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := findRow(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Delete(&projectRow{}, id).Error; err != nil {
			return unavailable("delete project", err)
		}
		deleted = row.toProject()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func (s *SQLiteStore) ReplaceAll(ctx context.Context, projects []domain.Project) ([]domain.Project, error) {
	stored, err := assignIDs(projects)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&projectRow{}).Error; err != nil {
			return unavailable("clear projects", err)
		}
		if len(stored) == 0 {
			return nil
		}
		rows := make([]projectRow, len(stored))
		for i, p := range stored {
			rows[i] = toRow(p)
		}
		if err := tx.CreateInBatches(rows, 100).Error; err != nil {
			return unavailable("insert projects", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func findRow(tx *gorm.DB, id int64) (*projectRow, error) {
	var row projectRow
	if err := tx.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, unavailable("get project", err)
	}
	return &row, nil
}
