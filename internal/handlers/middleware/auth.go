package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
	"github.com/nkiryanov/starterkit/internal/models"
)

type authenticator interface {
	// Return user the access token in header value belongs to
	Authenticate(ctx context.Context, header string) (models.User, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// AuthMiddleware verifies access token and puts its owner to request context
func AuthMiddleware(as authenticator, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), r.Header.Get("Authorization"))

			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(reqctx.WithUser(r.Context(), user)))
			case errors.Is(err, apperrors.ErrMissingHeader):
				render.Unauthorized(w, "Authorization header required")
			case errors.Is(err, apperrors.ErrMalformedHeader), errors.Is(err, apperrors.ErrInvalidToken):
				render.Unauthorized(w, "Invalid or expired token")
			case errors.Is(err, apperrors.ErrUserNotFound):
				render.ServiceError(w, "User not found", http.StatusNotFound)
			default:
				l.Error("Failed to authenticate request", "error", err)
				sentry.CaptureException(err)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}
		})
	}
}

// RequireRole passes only users with the role. Must be used after AuthMiddleware
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := reqctx.User(r.Context())
			if !ok {
				render.Unauthorized(w, "Unauthorized")
				return
			}
			if user.Role != role {
				render.ServiceError(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
