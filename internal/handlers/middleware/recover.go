package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/nkiryanov/starterkit/internal/handlers/render"
	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
)

// RecoverMiddleware turns panic into 500 response and reports it to sentry
func RecoverMiddleware(l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// Server has to abort the response
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				stack := string(debug.Stack())
				sentry.WithScope(func(scope *sentry.Scope) {
					scope.SetExtra("panic", rec)
					scope.SetExtra("stack", stack)
					scope.SetTag("path", r.URL.Path)
					scope.SetTag("request_id", reqctx.RequestID(r.Context()))
					sentry.CaptureMessage("panic in request")
				})

				l.Error("Panic recovered", "request_id", reqctx.RequestID(r.Context()), "method", r.Method, "path", r.URL.Path, "panic", rec, "stack", stack)
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
