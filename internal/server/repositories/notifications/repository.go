// Package notifications stores the email notification log.
package notifications

import (
	"context"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// Repository persists email notifications. MarkSent and MarkFailed only
// apply to pending records and return common.ErrNotFound otherwise.
type Repository interface {
	Create(ctx context.Context, n *models.EmailNotification) (*models.EmailNotification, error)
	GetByID(ctx context.Context, id string) (*models.EmailNotification, error)
	ListByUser(ctx context.Context, userID string) ([]*models.EmailNotification, error)
	ListByUserAndStatus(ctx context.Context, userID string, status models.NotificationStatus) ([]*models.EmailNotification, error)
	// ListPending returns pending notifications of all users, oldest first.
	ListPending(ctx context.Context) ([]*models.EmailNotification, error)
	// ListFailed returns failed notifications of all users, newest first.
	ListFailed(ctx context.Context) ([]*models.EmailNotification, error)
	MarkSent(ctx context.Context, id string, at time.Time) error
	MarkFailed(ctx context.Context, id string, reason string) error
	Delete(ctx context.Context, id string) error
}
