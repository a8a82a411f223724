package preferences

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var cols = []string{"id", "user_id", "email_notifications_enabled", "ai_assistant_enabled", "reminder_time", "theme", "default_view", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestGetOrCreate_InsertIgnoresConflictThenSelects(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	defaults := models.DefaultPreferences("p-new", "u1", now)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+user_preferences.*ON\s+CONFLICT\s+\(user_id\)\s+DO\s+NOTHING`).
		WithArgs("p-new", "u1", true, true, sql.NullString{}, models.ThemeSystem, models.ViewAll, now, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM\s+user_preferences\s+WHERE\s+user_id\s*=\s*\$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p-old", "u1", false, true, "08:00", "dark", "active", now, now))

	got, err := repo.GetOrCreate(context.Background(), defaults)
	require.NoError(t, err)
	assert.Equal(t, "p-old", got.ID)
	assert.False(t, got.EmailNotificationsEnabled)
	assert.Equal(t, "08:00", got.ReminderTime)
	assert.Equal(t, models.ThemeDark, got.Theme)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`WHERE\s+user_id`).WithArgs("u1").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpdate_OnlySetsPatchedColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	dark := models.ThemeDark
	off := false

	mock.ExpectQuery(`^UPDATE\s+user_preferences\s+SET\s+email_notifications_enabled\s*=\s*\$2,\s*theme\s*=\s*\$3,\s*updated_at\s*=\s*\$4\s+WHERE\s+user_id\s*=\s*\$1\s+RETURNING`).
		WithArgs("u1", false, models.ThemeDark, at).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", false, true, nil, "dark", "all", at, at))

	got, err := repo.Update(context.Background(), "u1", models.PreferencesPatch{EmailNotificationsEnabled: &off, Theme: &dark}, at)
	require.NoError(t, err)
	assert.Equal(t, models.ThemeDark, got.Theme)
	assert.Empty(t, got.ReminderTime)
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`DELETE\s+FROM\s+user_preferences`).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "p1"), common.ErrNotFound)
}
