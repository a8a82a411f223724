// Package preferences stores the per-user settings record. Each user has
// at most one.
package preferences

import (
	"context"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, prefs *models.UserPreferences) (*models.UserPreferences, error)
	GetByID(ctx context.Context, id string) (*models.UserPreferences, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserPreferences, error)
	// GetOrCreate inserts defaults unless a record for defaults.UserID
	// already exists, then returns the stored record. Concurrent callers
	// observe the same record.
	GetOrCreate(ctx context.Context, defaults *models.UserPreferences) (*models.UserPreferences, error)
	Update(ctx context.Context, userID string, patch models.PreferencesPatch, at time.Time) (*models.UserPreferences, error)
	Delete(ctx context.Context, id string) error
}
