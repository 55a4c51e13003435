package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/starterkit/internal/handlers/reqctx"
)

const RequestIDHeader = "X-Request-ID"

type requestLogger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// statusRecorder remembers status code and body size written by the handler
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	n, err := r.ResponseWriter.Write(p)
	r.size += n
	return n, err
}

// Let http.ResponseController reach the wrapped writer
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggerMiddleware tags every request with an id and logs it when the handler returns.
// Id from the X-Request-ID request header is reused; 5xx answers are logged as warnings.
func LoggerMiddleware(l requestLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" || len(id) > 64 {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r.WithContext(reqctx.WithRequestID(r.Context(), id)))

			log := l.Info
			if rec.status >= http.StatusInternalServerError {
				log = l.Warn
			}
			log("HTTP request served",
				"request_id", id,
				"method", r.Method,
				"uri", r.RequestURI,
				"ip", ClientIP(r),
				"status", rec.status,
				"size", rec.size,
				"duration", time.Since(start),
			)
		})
	}
}
