// Package users stores account records for the bearer-token auth layer.
package users

import (
	"context"

	"github.com/dmitrijs2005/focustodo/internal/server/models"
)

type Repository interface {
	// Create returns common.ErrEmailTaken when the email is already used.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
