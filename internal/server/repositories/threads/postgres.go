package threads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

const columns = `id, user_id, title, status, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanThread(row scanner) (*models.Thread, error) {
	var (
		t     models.Thread
		title sql.NullString
	)
	if err := row.Scan(&t.ID, &t.UserID, &title, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Title = title.String
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.Thread, error) {
	t, err := scanThread(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.Thread, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Thread, 0)
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, thread *models.Thread) (*models.Thread, error) {
	query := `
		INSERT INTO threads (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, thread.ID, thread.UserID, nullString(thread.Title),
		thread.Status, thread.CreatedAt, thread.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return thread, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Thread, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM threads WHERE id = $1`, id)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Thread, error) {
	return r.queryList(ctx, `SELECT `+columns+` FROM threads WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListByUserAndStatus(ctx context.Context, userID string, status models.ThreadStatus) ([]*models.Thread, error) {
	return r.queryList(ctx,
		`SELECT `+columns+` FROM threads WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`,
		userID, status)
}

func (r *PostgresRepository) UpdateTitle(ctx context.Context, id string, title string, at time.Time) (*models.Thread, error) {
	return r.queryOne(ctx,
		`UPDATE threads SET title = $2, updated_at = $3 WHERE id = $1 RETURNING `+columns,
		id, nullString(title), at)
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.ThreadStatus, at time.Time) (*models.Thread, error) {
	return r.queryOne(ctx,
		`UPDATE threads SET status = $2, updated_at = $3 WHERE id = $1 RETURNING `+columns,
		id, status, at)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM threads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = dbx.ExpectRows(res)
	return err
}
