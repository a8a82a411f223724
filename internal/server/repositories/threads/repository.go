// Package threads stores assistant conversation threads.
package threads

import (
	"context"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// Repository persists threads. Lists are ordered newest first.
type Repository interface {
	Create(ctx context.Context, thread *models.Thread) (*models.Thread, error)
	GetByID(ctx context.Context, id string) (*models.Thread, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Thread, error)
	ListByUserAndStatus(ctx context.Context, userID string, status models.ThreadStatus) ([]*models.Thread, error)
	UpdateTitle(ctx context.Context, id string, title string, at time.Time) (*models.Thread, error)
	SetStatus(ctx context.Context, id string, status models.ThreadStatus, at time.Time) (*models.Thread, error)
	// Delete removes the thread row only. Callers delete its messages first.
	Delete(ctx context.Context, id string) error
}
