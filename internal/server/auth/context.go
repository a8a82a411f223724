package auth

import (
	"context"

	"github.com/dmitrijs2005/focustodo/internal/common"
)

type ctxKey struct{}

// WithUserID returns a child context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext returns the authenticated user id or
// common.ErrUnauthenticated when the request carries no identity.
func UserIDFromContext(ctx context.Context) (string, error) {
	id, ok := ctx.Value(ctxKey{}).(string)
	if !ok || id == "" {
		return "", common.ErrUnauthenticated
	}
	return id, nil
}
