package todos

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var todoCols = []string{"id", "user_id", "text", "completed", "priority", "due_date", "tags", "created_at", "updated_at", "completed_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	todo := &models.Todo{
		ID: "t1", UserID: "u1", Text: "buy milk", Priority: models.PriorityHigh,
		Tags: []string{"home"}, CreatedAt: now, UpdatedAt: now,
	}

	q := `(?s)^\s*INSERT\s+INTO\s+todos\s*\(id,.*completed_at\)\s*VALUES\s*\(\$1,.*\$10\)\s*$`
	mock.ExpectExec(q).
		WithArgs("t1", "u1", "buy milk", false, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), now, now, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	got, err := repo.Create(context.Background(), todo)
	require.NoError(t, err)
	assert.Equal(t, "t1", got.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+todos`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Todo{ID: "t1", UserID: "u1", Text: "x"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	due := created.Add(48 * time.Hour)
	rows := sqlmock.NewRows(todoCols).
		AddRow("t1", "u1", "write report", false, "medium", due, []byte("{work,urgent}"), created, created, nil)

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+todos\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("t1").
		WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Text)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, got.DueDate.Equal(due))
	assert.Equal(t, []string{"work", "urgent"}, got.Tags)
	assert.Nil(t, got.CompletedAt)
}

func TestGetByID_NullableColumns(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Now()
	rows := sqlmock.NewRows(todoCols).
		AddRow("t1", "u1", "plain", true, nil, nil, nil, created, created, created)

	mock.ExpectQuery(`FROM\s+todos\s+WHERE\s+id`).WithArgs("t1").WillReturnRows(rows)

	got, err := repo.GetByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, models.PriorityNone, got.Priority)
	assert.Nil(t, got.DueDate)
	assert.Nil(t, got.Tags)
	require.NotNil(t, got.CompletedAt)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+todos\s+WHERE\s+id`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestListByUser_OrdersNewestFirst(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(todoCols).
		AddRow("t2", "u1", "second", false, nil, nil, nil, now, now, nil).
		AddRow("t1", "u1", "first", false, nil, nil, nil, now.Add(-time.Minute), now, nil)

	mock.ExpectQuery(`(?s)FROM\s+todos\s+WHERE\s+user_id\s*=\s*\$1\s+ORDER\s+BY\s+created_at\s+DESC$`).
		WithArgs("u1").
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "t2", got[0].ID)
}

func TestListByUserAndCompleted(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+user_id\s*=\s*\$1\s+AND\s+completed\s*=\s*\$2`).
		WithArgs("u1", true).
		WillReturnRows(sqlmock.NewRows(todoCols))

	got, err := repo.ListByUserAndCompleted(context.Background(), "u1", true)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListByUser_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id"}).AddRow("t1")
	mock.ExpectQuery(`FROM\s+todos`).WillReturnRows(rows)

	_, err := repo.ListByUser(context.Background(), "u1")
	if err == nil || !regexp.MustCompile(`scan error`).MatchString(err.Error()) {
		t.Fatalf("expected scan error, got %v", err)
	}
}

func TestUpdateText_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	mock.ExpectQuery(`(?s)^UPDATE\s+todos\s+SET\s+text\s*=\s*\$2,\s*updated_at\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`).
		WithArgs("t1", "new", at).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateText(context.Background(), "t1", "new", at)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestToggleCompleted_SingleStatement(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC)
	created := at.Add(-time.Hour)
	rows := sqlmock.NewRows(todoCols).
		AddRow("t1", "u1", "x", true, nil, nil, nil, created, at, at)

	mock.ExpectQuery(`(?s)^\s*UPDATE\s+todos\s+SET\s+completed\s*=\s*NOT\s+completed,.*CASE\s+WHEN\s+completed\s+THEN\s+NULL`).
		WithArgs("t1", at).
		WillReturnRows(rows)

	got, err := repo.ToggleCompleted(context.Background(), "t1", at)
	require.NoError(t, err)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedAt)
	assert.True(t, got.CompletedAt.Equal(at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCompleted_False_ClearsCompletedAt(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Now()
	rows := sqlmock.NewRows(todoCols).AddRow("t1", "u1", "x", false, nil, nil, nil, at, at, nil)

	mock.ExpectQuery(`UPDATE\s+todos\s+SET\s+completed\s*=\s*\$2,\s*completed_at\s*=\s*\$3`).
		WithArgs("t1", false, sql.NullTime{}, at).
		WillReturnRows(rows)

	got, err := repo.SetCompleted(context.Background(), "t1", false, at)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+todos\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`^DELETE\s+FROM\s+todos`).
		WithArgs("t2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "t1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "t2"), common.ErrNotFound)
}

func TestDeleteCompletedByUser_DeletesEach(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)

	now := time.Now()
	rows := sqlmock.NewRows(todoCols).
		AddRow("t1", "u1", "a", true, nil, nil, nil, now, now, now).
		AddRow("t2", "u1", "b", true, nil, nil, nil, now, now, now)

	mock.ExpectQuery(`WHERE\s+user_id\s*=\s*\$1\s+AND\s+completed`).
		WithArgs("u1", true).
		WillReturnRows(rows)
	mock.ExpectExec(`DELETE\s+FROM\s+todos`).WithArgs("t1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE\s+FROM\s+todos`).WithArgs("t2").WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.DeleteCompletedByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteCompletedByUser_ListError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+todos`).WillReturnError(errors.New("db err"))

	_, err := repo.DeleteCompletedByUser(context.Background(), "u1")
	require.Error(t, err)
}
