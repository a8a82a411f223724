package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/common"
	"github.com/dmitrijs2005/focustodo/internal/dbx"
	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

const columns = `id, user_id, email_notifications_enabled, ai_assistant_enabled, reminder_time, theme, default_view, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r *PostgresRepository) queryOne(ctx context.Context, query string, args ...any) (*models.UserPreferences, error) {
	var (
		p        models.UserPreferences
		reminder sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.UserID, &p.EmailNotificationsEnabled,
		&p.AIAssistantEnabled, &reminder, &p.Theme, &p.DefaultView, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	p.ReminderTime = reminder.String
	return &p, nil
}

func (r *PostgresRepository) insert(ctx context.Context, suffix string, p *models.UserPreferences) (sql.Result, error) {
	query := `
		INSERT INTO user_preferences (` + columns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	` + suffix
	return r.db.ExecContext(ctx, query, p.ID, p.UserID, p.EmailNotificationsEnabled, p.AIAssistantEnabled,
		nullString(p.ReminderTime), p.Theme, p.DefaultView, p.CreatedAt, p.UpdatedAt)
}

func (r *PostgresRepository) Create(ctx context.Context, prefs *models.UserPreferences) (*models.UserPreferences, error) {
	if _, err := r.insert(ctx, "", prefs); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return prefs, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.UserPreferences, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM user_preferences WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error) {
	return r.queryOne(ctx, `SELECT `+columns+` FROM user_preferences WHERE user_id = $1`, userID)
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, defaults *models.UserPreferences) (*models.UserPreferences, error) {
	if _, err := r.insert(ctx, "ON CONFLICT (user_id) DO NOTHING", defaults); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return r.GetByUserID(ctx, defaults.UserID)
}

func (r *PostgresRepository) Update(ctx context.Context, userID string, patch models.PreferencesPatch, at time.Time) (*models.UserPreferences, error) {
	sets := make([]string, 0, 6)
	args := []any{userID}
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.EmailNotificationsEnabled != nil {
		set("email_notifications_enabled", *patch.EmailNotificationsEnabled)
	}
	if patch.AIAssistantEnabled != nil {
		set("ai_assistant_enabled", *patch.AIAssistantEnabled)
	}
	if patch.ReminderTime != nil {
		set("reminder_time", nullString(*patch.ReminderTime))
	}
	if patch.Theme != nil {
		set("theme", *patch.Theme)
	}
	if patch.DefaultView != nil {
		set("default_view", *patch.DefaultView)
	}
	set("updated_at", at)

	query := `UPDATE user_preferences SET ` + strings.Join(sets, ", ") + ` WHERE user_id = $1 RETURNING ` + columns
	return r.queryOne(ctx, query, args...)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_preferences WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	_, err = dbx.ExpectRows(res)
	return err
}
