package middleware

import (
	"log/slog"
	"net/http"

	"github.com/libris-project/libris-api/internal/api/shared"
)

// NewTraceMiddleware returns middleware that adds a trace ID to the request
// context and logs the incoming request. It should be applied early in the
// chain so all subsequent handlers see the trace ID.
func NewTraceMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := shared.SetTraceID(r.Context())
			traceID := shared.GetTraceID(ctx)

			logger.Debug("request started",
				slog.String("trace_id", traceID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
