package userctx

import (
	"context"

	"github.com/google/uuid"
)

// User is the authenticated caller as asserted by the external auth
// service. Only the claims this service needs, not a full user record.
type User struct {
	ID    uuid.UUID
	Email string
}

type ctxKey string

const userKey ctxKey = "user"

// Create a new context with the user
func New(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// Extract the user from the context
func FromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}
