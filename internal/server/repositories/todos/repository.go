// Package todos declares the todo store contract and its PostgreSQL and
// in-memory implementations. It is the only package that reads or writes
// the todos table.
package todos

import (
	"context"
	"time"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

// Repository persists todos. Lists are ordered newest first. Lookups and
// updates of a missing id return common.ErrNotFound.
type Repository interface {
	Create(ctx context.Context, todo *models.Todo) (*models.Todo, error)
	GetByID(ctx context.Context, id string) (*models.Todo, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Todo, error)
	ListByUserAndCompleted(ctx context.Context, userID string, completed bool) ([]*models.Todo, error)

	UpdateText(ctx context.Context, id string, text string, at time.Time) (*models.Todo, error)
	UpdatePriority(ctx context.Context, id string, priority models.Priority, at time.Time) (*models.Todo, error)
	UpdateDueDate(ctx context.Context, id string, due *time.Time, at time.Time) (*models.Todo, error)
	UpdateTags(ctx context.Context, id string, tags []string, at time.Time) (*models.Todo, error)

	// ToggleCompleted flips completed in one step, setting completedAt to at
	// when the todo becomes completed and clearing it otherwise.
	ToggleCompleted(ctx context.Context, id string, at time.Time) (*models.Todo, error)
	SetCompleted(ctx context.Context, id string, completed bool, at time.Time) (*models.Todo, error)

	Delete(ctx context.Context, id string) error
	// DeleteCompletedByUser removes every completed todo of userID and
	// returns how many were removed.
	DeleteCompletedByUser(ctx context.Context, userID string) (int, error)
}

func CountByUser(ctx context.Context, r Repository, userID string) (int, error) {
	list, err := r.ListByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func CountActiveByUser(ctx context.Context, r Repository, userID string) (int, error) {
	list, err := r.ListByUserAndCompleted(ctx, userID, false)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

func CountCompletedByUser(ctx context.Context, r Repository, userID string) (int, error) {
	list, err := r.ListByUserAndCompleted(ctx, userID, true)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}
