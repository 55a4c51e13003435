package handlers

import (
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
	"github.com/nkiryanov/starterkit/internal/logger"
)

// Log unexpected error, report it to sentry and hide details from client
func internalError(w http.ResponseWriter, r *http.Request, l logger.Logger, msg string, err error) {
	id := reqctx.RequestID(r.Context())
	l.Error(msg, "request_id", id, "error", err)

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("request_id", id)
		scope.SetTag("path", r.URL.Path)
		sentry.CaptureException(err)
	})
	render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
}
