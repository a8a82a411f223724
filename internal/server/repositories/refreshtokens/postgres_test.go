package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/focustodo/internal/common"
)

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

	fixed := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	q := `(?s)^\s*INSERT\s+INTO\s+refresh_tokens\b.*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*$`
	mock.ExpectExec(q).
		WithArgs("u1", "tok123", fixed.Add(30*time.Minute)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Create(context.Background(), "u1", "tok123", 30*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`INSERT\s+INTO\s+refresh_tokens`).
		WithArgs("u1", "tok123", sqlmock.AnyArg()).
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), "u1", "tok123", time.Hour)
	if err == nil || !regexp.MustCompile(`error performing sql request: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestFind_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*SELECT\s+id,\s*user_id,\s*token,\s*expires_at,\s*created_at\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s*$`

	expires := time.Now().Add(10 * time.Minute)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
		AddRow("7", "u1", "tok123", expires, time.Now())
	mock.ExpectQuery(q).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || got.Token != "tok123" || !got.Expires.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}
}

func TestFind_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`FROM\s+refresh_tokens`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestConsume_DeletesAndReturnsRow(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^\s*DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1\s+RETURNING\s+id,\s*user_id,\s*token,\s*expires_at,\s*created_at\s*$`

	expires := time.Now().Add(time.Hour)
	rows := sqlmock.NewRows([]string{"id", "user_id", "token", "expires_at", "created_at"}).
		AddRow("7", "u1", "tok123", expires, time.Now())
	mock.ExpectQuery(q).WithArgs("tok123").WillReturnRows(rows)

	got, err := repo.Consume(context.Background(), "tok123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.UserID != "u1" || !got.Expires.Equal(expires) {
		t.Fatalf("unexpected row: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestConsume_AlreadyUsed(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE\s+FROM\s+refresh_tokens`).WithArgs("used").WillReturnError(sql.ErrNoRows)

	_, err := repo.Consume(context.Background(), "used")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestConsume_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`DELETE\s+FROM\s+refresh_tokens`).WithArgs("tok").WillReturnError(errors.New("conn reset"))

	_, err := repo.Consume(context.Background(), "tok")
	if err == nil || errors.Is(err, common.ErrNotFound) || !regexp.MustCompile(`db error: .*conn reset`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+token\s*=\s*\$1$`).
		WithArgs("tok123").
		WillReturnError(errors.New("db err"))

	err := repo.Delete(context.Background(), "tok123")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDeleteByUser(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`^DELETE\s+FROM\s+refresh_tokens\s+WHERE\s+user_id\s*=\s*\$1$`).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 3))

	if err := repo.DeleteByUser(context.Background(), "u1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()

	_ = r.Create(ctx, "u1", "a", time.Hour)
	_ = r.Create(ctx, "u1", "b", time.Hour)
	_ = r.Create(ctx, "u2", "c", time.Hour)

	rt, err := r.Find(ctx, "a")
	if err != nil || rt.UserID != "u1" || !rt.Expires.After(rt.CreatedAt) {
		t.Fatalf("unexpected token: %+v %v", rt, err)
	}

	_ = r.DeleteByUser(ctx, "u1")
	if _, err := r.Find(ctx, "b"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want not found, got %v", err)
	}
	if _, err := r.Find(ctx, "c"); err != nil {
		t.Fatalf("other user's token removed: %v", err)
	}
}

func TestMemory_ConsumeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	_ = r.Create(ctx, "u1", "tok", time.Hour)

	const callers = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rt, err := r.Consume(ctx, "tok")
			if err != nil {
				if !errors.Is(err, common.ErrNotFound) {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if rt.UserID != "u1" {
				t.Errorf("unexpected owner %q", rt.UserID)
			}
			mu.Lock()
			winners++
			mu.Unlock()
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Fatalf("token consumed %d times, want 1", winners)
	}
	if _, err := r.Find(ctx, "tok"); !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("token still stored: %v", err)
	}
}
