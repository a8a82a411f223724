package todos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

const columns = `id, user_id, text, completed, priority, due_date, tags, created_at, updated_at, completed_at`

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTodo(row scanner) (*models.Todo, error) {
	var (
		t           models.Todo
		priority    sql.NullString
		dueDate     sql.NullTime
		tags        pq.StringArray
		completedAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Text, &t.Completed, &priority, &dueDate, &tags,
		&t.CreatedAt, &t.UpdatedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	t.Priority = models.Priority(priority.String)
	if dueDate.Valid {
		t.DueDate = &dueDate.Time
	}
	if tags != nil {
		t.Tags = []string(tags)
	}
	if completedAt.Valid {
		t.CompletedAt = &completedAt.Time
	}
	return &t, nil
}

func nullPriority(p models.Priority) sql.NullString {
	return sql.NullString{String: string(p), Valid: p != models.PriorityNone}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Todo, error) {
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, todo *models.Todo) (*models.Todo, error) {
	query := `
		INSERT INTO todos (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		todo.ID, todo.UserID, todo.Text, todo.Completed, nullPriority(todo.Priority),
		nullTime(todo.DueDate), pq.StringArray(todo.Tags), todo.CreatedAt, todo.UpdatedAt,
		nullTime(todo.CompletedAt))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return todo, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Todo, error) {
	query := `SELECT ` + columns + ` FROM todos WHERE id = $1`
	return r.queryOne(ctx, query, id)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Todo, error) {
	query := `SELECT ` + columns + ` FROM todos WHERE user_id = $1 ORDER BY created_at DESC`
	return r.queryList(ctx, query, userID)
}

func (r *PostgresRepository) ListByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]*models.Todo, error) {
	query := `SELECT ` + columns + ` FROM todos WHERE user_id = $1 AND completed = $2 ORDER BY created_at DESC`
	return r.queryList(ctx, query, userID, completed)
}

func (r *PostgresRepository) UpdateText(ctx context.Context, id string, text string, at time.Time) (*models.Todo, error) {
	query := `UPDATE todos SET text = $2, updated_at = $3 WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, id, text, at)
}

func (r *PostgresRepository) UpdatePriority(ctx context.Context, id string, priority models.Priority, at time.Time) (*models.Todo, error) {
	query := `UPDATE todos SET priority = $2, updated_at = $3 WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, id, nullPriority(priority), at)
}

func (r *PostgresRepository) UpdateDueDate(ctx context.Context, id string, due *time.Time, at time.Time) (*models.Todo, error) {
	query := `UPDATE todos SET due_date = $2, updated_at = $3 WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, id, nullTime(due), at)
}

func (r *PostgresRepository) UpdateTags(ctx context.Context, id string, tags []string, at time.Time) (*models.Todo, error) {
	query := `UPDATE todos SET tags = $2, updated_at = $3 WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, id, pq.StringArray(tags), at)
}

func (r *PostgresRepository) ToggleCompleted(ctx context.Context, id string, at time.Time) (*models.Todo, error) {
	query := `
		UPDATE todos
		SET completed = NOT completed,
		    completed_at = CASE WHEN completed THEN NULL ELSE $2::timestamptz END,
		    updated_at = $2
		WHERE id = $1
		RETURNING ` + columns
	return r.queryOne(ctx, query, id, at)
}

func (r *PostgresRepository) SetCompleted(ctx context.Context, id string, completed bool, at time.Time) (*models.Todo, error) {
	var completedAt *time.Time
	if completed {
		completedAt = &at
	}
	query := `UPDATE todos SET completed = $2, completed_at = $3, updated_at = $4 WHERE id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, id, completed, nullTime(completedAt), at)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = dbx.ExpectRows(res)
	return err
}

// DeleteCompletedByUser lists the completed todos and deletes them one by
// one concurrently, waiting for every delete to finish.
func (r *PostgresRepository) DeleteCompletedByUser(ctx context.Context, userID string) (int, error) {
	completed, err := r.ListByUserAndCompleted(ctx, userID, true)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range completed {
		id := t.ID
		g.Go(func() error {
			return r.Delete(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(completed), nil
}
