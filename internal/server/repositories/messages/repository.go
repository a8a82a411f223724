// Package messages stores the immutable messages of assistant threads.
package messages

import (
	"context"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// Repository persists messages. Thread listings are chronological, user
// listings newest first.
type Repository interface {
	Create(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetByID(ctx context.Context, id string) (*models.Message, error)
	ListByThread(ctx context.Context, threadID string) ([]*models.Message, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Message, error)
	// ListRecentByThread returns the last n messages of a thread, oldest first.
	ListRecentByThread(ctx context.Context, threadID string, n int) ([]*models.Message, error)
	Delete(ctx context.Context, id string) error
	// DeleteByThread removes every message of threadID and returns the count.
	DeleteByThread(ctx context.Context, threadID string) (int, error)
}
