package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGate(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	gate := Gate(DefaultGateConfig())(ok)

	tests := []struct {
		name     string
		path     string
		header   string
		code     int
		location string
	}{
		{name: "root is public", path: "/", code: http.StatusOK},
		{name: "login page is public", path: "/auth/login", code: http.StatusOK},
		{name: "health is public", path: "/healthz", code: http.StatusOK},
		{name: "login api is public", path: "/api/auth/login", code: http.StatusOK},
		{name: "refresh api is public", path: "/api/auth/refresh", code: http.StatusOK},
		{name: "products are public", path: "/api/products/SKU-1", code: http.StatusOK},
		{name: "me without header", path: "/api/auth/me", code: http.StatusUnauthorized},
		{name: "posts with basic auth", path: "/api/posts", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "posts with any bearer", path: "/api/posts", header: "Bearer not-verified", code: http.StatusOK},
		{name: "dashboard redirects", path: "/dashboard/stats", code: http.StatusFound, location: "/auth/login?redirect=%2Fdashboard%2Fstats"},
		{name: "profile with bearer", path: "/profile", header: "Bearer x", code: http.StatusOK},
		{name: "other pages pass", path: "/docs", code: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			gate.ServeHTTP(rec, req)

			require.Equalf(t, tt.code, rec.Code, "body: %s", rec.Body.String())
			if tt.location != "" {
				require.Equal(t, tt.location, rec.Header().Get("Location"))
			}
		})
	}

	t.Run("api messages", func(t *testing.T) {
		rec := httptest.NewRecorder()
		gate.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/me", nil))
		require.JSONEq(t, `{"error": "service_error", "message": "Authorization header required"}`, rec.Body.String())

		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		req.Header.Set("Authorization", "Token abc")
		rec = httptest.NewRecorder()
		gate.ServeHTTP(rec, req)
		require.JSONEq(t, `{"error": "service_error", "message": "Invalid authorization header format"}`, rec.Body.String())
	})
}
