package auth

import (
	"context"

	"github.com/google/uuid"
)

// contextKey is a private type for context keys to avoid collisions with
// other packages.
type contextKey string

const userIDContextKey contextKey = "userID"

// NewContextWithUserID returns a child context carrying the authenticated
// user id. Set by the auth middleware on every allowed protected request.
func NewContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts the authenticated user id set by the middleware.
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	return userID, ok
}
