package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
	"golang.org/x/sync/errgroup"
)

const columns = `id, thread_id, user_id, role, content, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ThreadID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) Create(ctx context.Context, msg *models.Message) (*models.Message, error) {
	query := `
		INSERT INTO messages (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.ThreadID, msg.UserID, msg.Role, msg.Content, msg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Message, error) {
	m := &models.Message{}
	err := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM messages WHERE id = $1`, id).
		Scan(&m.ID, &m.ThreadID, &m.UserID, &m.Role, &m.Content, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return m, nil
}

func (r *PostgresRepository) ListByThread(ctx context.Context, threadID string) ([]*models.Message, error) {
	return r.queryList(ctx, `SELECT `+columns+` FROM messages WHERE thread_id = $1 ORDER BY created_at ASC`, threadID)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.Message, error) {
	return r.queryList(ctx, `SELECT `+columns+` FROM messages WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListRecentByThread(ctx context.Context, threadID string, n int) ([]*models.Message, error) {
	list, err := r.queryList(ctx,
		`SELECT `+columns+` FROM messages WHERE thread_id = $1 ORDER BY created_at DESC LIMIT $2`,
		threadID, n)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	return list, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = dbx.ExpectRows(res)
	return err
}

// DeleteByThread deletes the thread's messages concurrently, one statement
// per message, and waits for all of them.
func (r *PostgresRepository) DeleteByThread(ctx context.Context, threadID string) (int, error) {
	list, err := r.ListByThread(ctx, threadID)
	if err != nil {
		return 0, err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, m := range list {
		id := m.ID
		g.Go(func() error {
			return r.Delete(gctx, id)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(list), nil
}
