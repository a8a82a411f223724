package notifications

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

const columns = `id, user_id, type, recipient, subject, status, sent_at, error, created_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(row scanner) (*models.EmailNotification, error) {
	var (
		n       models.EmailNotification
		sentAt  sql.NullTime
		errText sql.NullString
	)
	err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Recipient, &n.Subject, &n.Status, &sentAt, &errText, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	if sentAt.Valid {
		n.SentAt = &sentAt.Time
	}
	n.Error = errText.String
	return &n, nil
}

func (r *PostgresRepository) queryList(ctx context.Context, query string, args ...any) ([]*models.EmailNotification, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.EmailNotification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

// Create stores n with status pending.
func (r *PostgresRepository) Create(ctx context.Context, n *models.EmailNotification) (*models.EmailNotification, error) {
	query := `
		INSERT INTO email_notifications (id, user_id, type, recipient, subject, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	n.Status = models.NotificationPending
	_, err := r.db.ExecContext(ctx, query, n.ID, n.UserID, n.Type, n.Recipient, n.Subject, n.Status, n.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.EmailNotification, error) {
	n, err := scanNotification(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM email_notifications WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*models.EmailNotification, error) {
	return r.queryList(ctx,
		`SELECT `+columns+` FROM email_notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *PostgresRepository) ListByUserAndStatus(ctx context.Context, userID string, status models.NotificationStatus) ([]*models.EmailNotification, error) {
	return r.queryList(ctx,
		`SELECT `+columns+` FROM email_notifications WHERE user_id = $1 AND status = $2 ORDER BY created_at DESC`,
		userID, status)
}

func (r *PostgresRepository) ListPending(ctx context.Context) ([]*models.EmailNotification, error) {
	return r.queryList(ctx,
		`SELECT `+columns+` FROM email_notifications WHERE status = $1 ORDER BY created_at ASC`,
		models.NotificationPending)
}

func (r *PostgresRepository) ListFailed(ctx context.Context) ([]*models.EmailNotification, error) {
	return r.queryList(ctx,
		`SELECT `+columns+` FROM email_notifications WHERE status = $1 ORDER BY created_at DESC`,
		models.NotificationFailed)
}

func (r *PostgresRepository) transition(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = dbx.ExpectRows(res)
	return err
}

func (r *PostgresRepository) MarkSent(ctx context.Context, id string, at time.Time) error {
	return r.transition(ctx,
		`UPDATE email_notifications SET status = 'sent', sent_at = $2 WHERE id = $1 AND status = 'pending'`,
		id, at)
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.transition(ctx,
		`UPDATE email_notifications SET status = 'failed', error = $2 WHERE id = $1 AND status = 'pending'`,
		id, reason)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	return r.transition(ctx, `DELETE FROM email_notifications WHERE id = $1`, id)
}
