// Package reqctx keeps per request values: the authenticated user and the request id.
package reqctx

import (
	"context"

	"github.com/nkiryanov/starterkit/internal/models"
)

type ctxKey int

const (
	userKey ctxKey = iota
	requestIDKey
)

func WithUser(ctx context.Context, u models.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// User put by the auth middleware; false on routes without authentication
func User(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userKey).(models.User)
	return u, ok
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID or empty string if the request logger is not in the chain
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
