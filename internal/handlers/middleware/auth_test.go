package middleware

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"io"
	"net/http"
	"net/http/httptest"

	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/starterkit/internal/apperrors"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
	"github.com/nkiryanov/starterkit/internal/models"
)

// Allow to use a function as authenticator
type authFunc func(ctx context.Context, header string) (models.User, error)

func (f authFunc) Authenticate(ctx context.Context, header string) (models.User, error) {
	return f(ctx, header)
}

type errorLoggerFunc func(string, ...any)

func (f errorLoggerFunc) Error(msg string, v ...any) { f(msg, v...) }

var noErrorLog = errorLoggerFunc(func(string, ...any) {})

// Simple handler that writes user email from context to response
func emailHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Must always be true cause middleware has to set user to context or write error to response
		user, ok := reqctx.User(r.Context())
		require.True(t, ok)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(user.Email))
		require.NoError(t, err, "should write email to response")
	})
}

func doGet(t *testing.T, h http.Handler, header string) (*http.Response, string) {
	srv := httptest.NewServer(h)
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/test", nil)
	require.NoError(t, err)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	client := &http.Client{CheckRedirect: func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }}
	resp, err := client.Do(req)
	require.NoError(t, err, "should make request to test server")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "should read response body")
	defer resp.Body.Close() // nolint:errcheck

	return resp, string(body)
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("auth ok", func(t *testing.T) {
		var gotHeader string
		middleware := AuthMiddleware(authFunc(func(ctx context.Context, header string) (models.User, error) {
			gotHeader = header
			return models.User{Email: "a@b.com"}, nil
		}), noErrorLog)

		resp, body := doGet(t, middleware(emailHandler(t)), "Bearer token")

		require.Equalf(t, http.StatusOK, resp.StatusCode, "should return status OK. Resp: %s", body)
		require.Equal(t, "a@b.com", body, "should return email in response")
		require.Equal(t, "Bearer token", gotHeader, "header has to be passed as is")
	})

	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{"no header", apperrors.ErrMissingHeader, http.StatusUnauthorized, "Authorization header required"},
		{"not bearer", apperrors.ErrMalformedHeader, http.StatusUnauthorized, "Invalid or expired token"},
		{"invalid token", fmt.Errorf("%w: bad signature", apperrors.ErrInvalidToken), http.StatusUnauthorized, "Invalid or expired token"},
		{"expired token", fmt.Errorf("%w: %w", apperrors.ErrInvalidToken, apperrors.ErrTokenExpired), http.StatusUnauthorized, "Invalid or expired token"},
		{"user gone", apperrors.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"unexpected", errors.New("db is down"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logged := 0
			l := errorLoggerFunc(func(string, ...any) { logged++ })
			middleware := AuthMiddleware(authFunc(func(context.Context, string) (models.User, error) {
				return models.User{}, tt.err
			}), l)

			resp, body := doGet(t, middleware(emailHandler(t)), "Bearer token")

			require.Equalf(t, tt.code, resp.StatusCode, "not expected code. Resp: %s", body)
			require.JSONEq(t, fmt.Sprintf(`{"error": "service_error", "message": %q}`, tt.message), body)
			if tt.code == http.StatusInternalServerError {
				require.Equal(t, 1, logged, "unexpected errors must be logged")
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	withUser := func(user models.User, next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(reqctx.WithUser(r.Context(), user)))
		})
	}

	t.Run("admin passes", func(t *testing.T) {
		h := withUser(models.User{Email: "boss@b.com", Role: models.RoleAdmin}, RequireRole(models.RoleAdmin)(emailHandler(t)))

		resp, body := doGet(t, h, "")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Equal(t, "boss@b.com", body)
	})

	t.Run("user forbidden", func(t *testing.T) {
		h := withUser(models.User{Role: models.RoleUser}, RequireRole(models.RoleAdmin)(emailHandler(t)))

		resp, body := doGet(t, h, "")

		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.JSONEq(t, `{"error": "service_error", "message": "Forbidden"}`, body)
	})

	t.Run("no user", func(t *testing.T) {
		resp, _ := doGet(t, RequireRole(models.RoleAdmin)(emailHandler(t)), "")
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}
