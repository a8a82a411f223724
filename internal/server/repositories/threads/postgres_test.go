package threads

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threadCols = []string{"id", "user_id", "title", "status", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_EmptyTitleIsNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec(`(?s)INSERT\s+INTO\s+threads`).
		WithArgs("th1", "u1", sql.NullString{}, models.ThreadActive, now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	_, err := repo.Create(context.Background(), &models.Thread{
		ID: "th1", UserID: "u1", Status: models.ThreadActive, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM\s+threads\s+WHERE\s+id\s*=\s*\$1`).
		WithArgs("th1").
		WillReturnRows(sqlmock.NewRows(threadCols).AddRow("th1", "u1", nil, "archived", now, now))

	got, err := repo.GetByID(context.Background(), "th1")
	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Equal(t, models.ThreadArchived, got.Status)

	mock.ExpectQuery(`FROM\s+threads`).WithArgs("nope").WillReturnError(sql.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListByUserAndStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+status\s*=\s*\$2\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u1", models.ThreadActive).
		WillReturnRows(sqlmock.NewRows(threadCols).
			AddRow("th2", "u1", "plan", "active", now, now).
			AddRow("th1", "u1", nil, "active", now.Add(-time.Hour), now))

	got, err := repo.ListByUserAndStatus(context.Background(), "u1", models.ThreadActive)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "plan", got[0].Title)
}

func TestSetStatus(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(`UPDATE\s+threads\s+SET\s+status\s*=\s*\$2`).
		WithArgs("th1", models.ThreadArchived, at).
		WillReturnRows(sqlmock.NewRows(threadCols).AddRow("th1", "u1", nil, "archived", at, at))

	got, err := repo.SetStatus(context.Background(), "th1", models.ThreadArchived, at)
	require.NoError(t, err)
	assert.Equal(t, models.ThreadArchived, got.Status)
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+threads`).WithArgs("th1").WillReturnError(errors.New("db err"))

	err := repo.Delete(context.Background(), "th1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}
