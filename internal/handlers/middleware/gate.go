package middleware

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/nkiryanov/starterkit/internal/handlers/render"
)

type GateConfig struct {
	// Paths admitted as is (exact match)
	PublicPaths []string

	// Paths admitted as is (prefix match)
	PublicPrefixes []string

	// Requests under the prefix without bearer credential get 401
	APIPrefix string

	// Pages under these prefixes without bearer credential are redirected to LoginPath
	ProtectedPrefixes []string
	LoginPath         string
}

func DefaultGateConfig() GateConfig {
	return GateConfig{
		PublicPaths: []string{"/", "/auth/login", "/auth/register", "/healthz"},
		PublicPrefixes: []string{
			"/api/auth/login",
			"/api/auth/register",
			"/api/auth/refresh",
			"/api/auth/logout",
			"/api/products",
		},
		APIPrefix:         "/api/",
		ProtectedPrefixes: []string{"/dashboard", "/profile"},
		LoginPath:         "/auth/login",
	}
}

// Gate admits requests by presence of 'Authorization: Bearer ...' header only.
// The token itself is not verified here: endpoints do it with Auth middleware.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	hasPrefix := func(path string, prefixes []string) bool {
		return slices.ContainsFunc(prefixes, func(p string) bool { return strings.HasPrefix(path, p) })
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if slices.Contains(cfg.PublicPaths, path) || hasPrefix(path, cfg.PublicPrefixes) {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")

			switch {
			case cfg.APIPrefix != "" && strings.HasPrefix(path, cfg.APIPrefix):
				if header == "" {
					render.Unauthorized(w, "Authorization header required")
					return
				}
				if !strings.HasPrefix(header, "Bearer ") {
					render.Unauthorized(w, "Invalid authorization header format")
					return
				}
			case hasPrefix(path, cfg.ProtectedPrefixes):
				if !strings.HasPrefix(header, "Bearer ") {
					target := cfg.LoginPath + "?" + url.Values{"redirect": {path}}.Encode()
					http.Redirect(w, r, target, http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
