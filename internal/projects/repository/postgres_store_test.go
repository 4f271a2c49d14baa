package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koji-portfolio/portfolio-backend/internal/projects/domain"
)

var pgColumns = []string{
	"id", "title", "description", "category", "technologies",
	"image", "github_url", "live_url", "completed_date", "featured",
}

func newMockPostgres(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func anyArgs(n int) []driver.Value {
	args := make([]driver.Value, n)
	for i := range args {
		args[i] = sqlmock.AnyArg()
	}
	return args
}

func TestPostgresStore_ListAll(t *testing.T) {
	store, mock := newMockPostgres(t)

	rows := sqlmock.NewRows(pgColumns).
		AddRow(int64(1), "Site", "portfolio", "web", []byte(`["Go","React"]`), "", "https://github.com/x/site", "", "2024-01", true).
		AddRow(int64(2), "Tool", "", "", []byte(`[]`), "", "", "", "", false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM projects ORDER BY id ASC")).WillReturnRows(rows)

	projects, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 2)
	assert.Equal(t, "Site", projects[0].Title)
	assert.Equal(t, []string{"Go", "React"}, []string(projects[0].Technologies))
	assert.True(t, projects[0].Featured)
	assert.Equal(t, int64(2), projects[1].ID)
	assert.Empty(t, projects[1].Technologies)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListAllQueryError(t *testing.T) {
	store, mock := newMockPostgres(t)
	mock.ExpectQuery("FROM projects").WillReturnError(errors.New("connection refused"))

	_, err := store.ListAll(context.Background())
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertGeneratedID(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (title,")).
		WithArgs(anyArgs(9)...).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(5), "New", "desc", "", []byte(`[]`), "", "", "", "", false))
	mock.ExpectCommit()

	created, err := store.Insert(context.Background(), domain.Project{Title: "New", Description: "desc"})
	require.NoError(t, err)
	assert.Equal(t, int64(5), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertExplicitIDResyncsSequence(t *testing.T) {
	store, mock := newMockPostgres(t)

	args := append([]driver.Value{int64(40)}, anyArgs(9)...)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (id,")).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(40), "Pinned", "", "", []byte(`[]`), "", "", "", "", false))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(pg_get_serial_sequence('projects', 'id')")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := store.Insert(context.Background(), domain.Project{ID: 40, Title: "Pinned"})
	require.NoError(t, err)
	assert.Equal(t, int64(40), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertDuplicateID(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (id,")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectRollback()

	_, err := store.Insert(context.Background(), domain.Project{ID: 1, Title: "Dup"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_InsertRequiresTitle(t *testing.T) {
	store, mock := newMockPostgres(t)

	_, err := store.Insert(context.Background(), domain.Project{Title: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	store, mock := newMockPostgres(t)

	args := append([]driver.Value{int64(1)}, anyArgs(9)...)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects SET")).
		WithArgs(args...).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(1), "Site", "new", "web", []byte(`["Go"]`), "", "", "", "", true))

	desc := "new"
	updated, err := store.Update(context.Background(), 1, domain.ProjectPatch{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "new", updated.Description)
	assert.Equal(t, "Site", updated.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateMissing(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE projects SET")).
		WillReturnError(sql.ErrNoRows)

	title := "x"
	_, err := store.Update(context.Background(), 99, domain.ProjectPatch{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Delete(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(3), "Gone", "", "", []byte(`[]`), "", "", "", "", false))

	deleted, err := store.Delete(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Gone", deleted.Title)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(pgColumns))

	_, err = store.Delete(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRejectsBlankTitle(t *testing.T) {
	store, mock := newMockPostgres(t)

	_, err := store.Update(context.Background(), 1, domain.ProjectPatch{Title: strPtr("  ")})
	assert.ErrorIs(t, err, domain.ErrTitleRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceAll(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects;")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (id,")).
		WithArgs(append([]driver.Value{int64(10)}, anyArgs(9)...)...).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(10), "Kept", "", "", []byte(`[]`), "", "", "", "", false))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (title,")).
		WithArgs(anyArgs(9)...).
		WillReturnRows(sqlmock.NewRows(pgColumns).
			AddRow(int64(11), "Fresh", "", "", []byte(`[]`), "", "", "", "", false))
	mock.ExpectCommit()

	// the id-less entry comes first in the input and must stay first
	stored, err := store.ReplaceAll(context.Background(), []domain.Project{
		{Title: "Fresh"},
		{ID: 10, Title: "Kept"},
	})
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, int64(11), stored[0].ID)
	assert.Equal(t, int64(10), stored[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceAllRollsBackOnFailure(t *testing.T) {
	store, mock := newMockPostgres(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects;")).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("SELECT setval(")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO projects (title,")).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := store.ReplaceAll(context.Background(), []domain.Project{{Title: "A"}})
	assert.ErrorIs(t, err, domain.ErrStorageUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ReplaceAllValidatesBeforeTouchingTable(t *testing.T) {
	store, mock := newMockPostgres(t)

	_, err := store.ReplaceAll(context.Background(), []domain.Project{{Title: "ok"}, {Title: ""}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.NoError(t, mock.ExpectationsWereMet())
}
